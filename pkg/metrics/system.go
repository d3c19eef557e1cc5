package metrics

import (
	"context"
	"runtime"
	"time"
)

const nanosecondsPerMillisecond = 1e6

// RunSystemUpdater samples runtime memory, goroutine and GC figures at the
// manager's refresh interval until ctx is done.
func RunSystemUpdater(ctx context.Context) {
	globalManager.runUpdater(ctx, UpdateSystemMetrics)
}

func (m *Manager) runUpdater(ctx context.Context, sample func()) {
	if !m.enabled {
		return
	}
	ticker := time.NewTicker(m.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sample()
		}
	}
}

// UpdateSystemMetrics records one sample of the system metrics.
func UpdateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	UpdateSystemMemoryUsage(m.Alloc)
	UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		RecordSystemGCPauseTime(avgPauseMs)
	}
}
