package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
)

// StatsTicker drives the periodic daily-stats aggregation. It runs once
// immediately on start so a fresh deployment has a snapshot before the first
// interval elapses, then on every tick.
type StatsTicker struct {
	service  *Service
	clock    clockwork.Clock
	interval time.Duration
}

func NewStatsTicker(service *Service, clock clockwork.Clock, interval time.Duration) *StatsTicker {
	return &StatsTicker{service: service, clock: clock, interval: interval}
}

// Run blocks until ctx is cancelled.
func (t *StatsTicker) Run(ctx context.Context) {
	t.runOnce(ctx)

	ticker := t.clock.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			t.runOnce(ctx)
		}
	}
}

func (t *StatsTicker) runOnce(ctx context.Context) {
	stats, err := t.service.AggregateStats(ctx)
	if err != nil {
		slog.WarnContext(ctx, "StatsTicker: aggregation failed", "error", err)
		return
	}
	slog.DebugContext(ctx, "StatsTicker: snapshot refreshed",
		"date", stats.Date.Format("2006-01-02"),
		"total_issues", stats.TotalIssues)
}
