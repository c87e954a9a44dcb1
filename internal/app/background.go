package service

import (
	"context"
	"runtime"
	"time"

	"github.com/okian/arena/pkg/logger"
	"github.com/okian/arena/pkg/metrics"
)

const (
	defaultMetricsInterval    = 5 * time.Second
	nanosecondsPerMillisecond = 1e6
)

// RebuildLoop refits the clusters on a fixed period. It implements
// suture.Service.
type RebuildLoop struct {
	svc      *Service
	interval time.Duration
}

// NewRebuildLoop returns a loop that rebuilds svc's clusters every interval.
// A non-positive interval falls back to the service's configured period.
func NewRebuildLoop(svc *Service, interval time.Duration) *RebuildLoop {
	if interval <= 0 {
		interval = svc.RebuildInterval()
	}
	return &RebuildLoop{svc: svc, interval: interval}
}

// Serve runs until ctx is cancelled.
func (l *RebuildLoop) Serve(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			l.rebuild(ctx)
		}
	}
}

func (l *RebuildLoop) rebuild(ctx context.Context) {
	report, err := l.svc.RebuildClusters(ctx)
	if err != nil {
		// Not started yet or shutting down; the next tick retries.
		l.svc.log().Warn(ctx, "cluster rebuild failed", logger.Error(err))
		return
	}
	if report.Skipped {
		l.svc.log().Debug(ctx, "cluster rebuild skipped", logger.Int("profiles", report.Profiles))
		return
	}
	l.svc.log().Info(ctx, "clusters rebuilt",
		logger.Int("profiles", report.Profiles),
		logger.Int("clusters", report.Clusters),
		logger.Duration("took", report.Duration),
	)
}

func (l *RebuildLoop) String() string { return "cluster-rebuild" }

// MetricsLoop publishes runtime and service gauges. It implements
// suture.Service.
type MetricsLoop struct {
	svc      *Service
	interval time.Duration
}

// NewMetricsLoop returns a loop that samples metrics every interval.
func NewMetricsLoop(svc *Service, interval time.Duration) *MetricsLoop {
	if interval <= 0 {
		interval = defaultMetricsInterval
	}
	return &MetricsLoop{svc: svc, interval: interval}
}

// Serve runs until ctx is cancelled.
func (l *MetricsLoop) Serve(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			updateSystemMetrics()
			l.updateServiceMetrics()
		}
	}
}

func (l *MetricsLoop) String() string { return "metrics-updater" }

func (l *MetricsLoop) updateServiceMetrics() {
	stats := l.svc.GetStats()

	if queueLen, ok := stats["queueLength"].(int); ok {
		metrics.UpdateQueueSize(queueLen)
	}
	if total, ok := stats["totalProfiles"].(int); ok {
		metrics.UpdateProfilesTotal(total)
	}
	if workerCount, ok := stats["workerCount"].(int); ok {
		metrics.UpdateWorkerCount(workerCount)
	}
}

func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
