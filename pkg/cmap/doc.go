// Package cmap provides a sharded map safe for concurrent use.
//
// Keys are spread over a power-of-two number of shards, each guarded by
// its own RWMutex, so unrelated keys rarely contend:
//
//	m := cmap.New[string, *rate.Limiter]()
//	l, _ := m.GetOrCreate(ip, func() *rate.Limiter { return rate.NewLimiter(10, 20) })
//	m.DeleteIf(func(ip string, l *rate.Limiter) bool { return idle(l) })
package cmap
