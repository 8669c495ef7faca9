// Package benchmark holds performance benchmarks for projsnap.
//
// Run benchmarks with:
//
//	go test -bench=. -benchmem ./internal/tests/benchmark/...
//
// Run only the store benchmarks at a larger scale:
//
//	go test -bench=BenchmarkStore -benchmem -benchtime=5s ./internal/tests/benchmark/...
//
// Compare results across changes:
//
//	go test -bench=. -benchmem -count=5 ./internal/tests/benchmark/... | tee new.txt
//	benchstat old.txt new.txt
package benchmark
