package benchmark

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/yndnr/projsnap/internal/storage/snapshot"
)

// FileCounts defines project sizes for benchmarking.
var FileCounts = []int{10, 100, 1000}

// fileSize is the approximate size of each generated source file.
const fileSize = 4 << 10

// makeProject writes count text files spread over nested directories and
// returns the project root.
func makeProject(b *testing.B, count int) string {
	b.Helper()

	root := b.TempDir()
	line := "func example() { return strings.Repeat(\"x\", 42) }\n"
	body := strings.Repeat(line, fileSize/len(line))

	for i := 0; i < count; i++ {
		dir := filepath.Join(root, fmt.Sprintf("pkg%02d", i%16), fmt.Sprintf("sub%d", i%4))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			b.Fatalf("MkdirAll() error = %v", err)
		}
		path := filepath.Join(dir, fmt.Sprintf("file%04d.go", i))
		if err := os.WriteFile(path, []byte(fmt.Sprintf("// %d\n%s", i, body)), 0o644); err != nil {
			b.Fatalf("WriteFile() error = %v", err)
		}
	}
	return root
}

// openStore opens a store in a fresh directory with a stepping clock so
// every capture gets its own id.
func openStore(b *testing.B, dir string) *snapshot.Store {
	b.Helper()

	cfg := snapshot.DefaultConfig(dir)
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	next := time.UnixMilli(1700000000000)
	cfg.Now = func() time.Time {
		next = next.Add(time.Millisecond)
		return next
	}

	store, err := snapshot.Open(cfg)
	if err != nil {
		b.Fatalf("snapshot.Open() error = %v", err)
	}
	return store
}

// reportMemory reports heap usage after a GC.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
	b.ReportMetric(float64(m.NumGC), prefix+"_GC")
}

// runWithFileCounts runs benchFn once per project size.
func runWithFileCounts(b *testing.B, counts []int, benchFn func(b *testing.B, count int)) {
	for _, count := range counts {
		b.Run(fmt.Sprintf("files_%d", count), func(b *testing.B) {
			benchFn(b, count)
		})
	}
}
