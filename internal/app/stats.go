package app

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/akm-xdd/Trackly-core/internal/domain"
	"github.com/akm-xdd/Trackly-core/internal/metrics"
)

// AggregateStats recomputes today's issue counts, upserts the snapshot, and
// broadcasts a summary event. Called by the ticker and by the manual admin
// trigger; both paths are identical.
func (s *Service) AggregateStats(ctx context.Context) (*domain.DailyStats, error) {
	start := s.clock.Now()

	stats, err := s.computeStats(ctx)
	if err != nil {
		metrics.StatsAggregationRuns.WithLabelValues("error").Inc()
		return nil, err
	}

	saved, err := s.stats.Upsert(ctx, stats)
	if err != nil {
		metrics.StatsAggregationRuns.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.StatsAggregationRuns.WithLabelValues("ok").Inc()
	metrics.StatsAggregationDuration.Observe(s.clock.Since(start).Seconds())

	payload, _ := json.Marshal(map[string]any{
		"date":         saved.Date.Format("2006-01-02"),
		"total_issues": saved.TotalIssues,
		"by_status": map[string]int64{
			string(domain.StatusOpen):       saved.StatusOpen,
			string(domain.StatusTriaged):    saved.StatusTriaged,
			string(domain.StatusInProgress): saved.StatusInProgress,
			string(domain.StatusDone):       saved.StatusDone,
		},
		"by_severity": map[string]int64{
			string(domain.SeverityLow):      saved.SeverityLow,
			string(domain.SeverityMedium):   saved.SeverityMedium,
			string(domain.SeverityHigh):     saved.SeverityHigh,
			string(domain.SeverityCritical): saved.SeverityCritical,
		},
	})
	s.publish(domain.Event{
		Kind:      domain.EventStatsSummary,
		SubjectID: saved.ID,
		OwnerID:   uuid.Nil,
		Scope:     domain.ScopeRoleRestricted,
		Payload:   payload,
	})
	return saved, nil
}

func (s *Service) computeStats(ctx context.Context) (*domain.DailyStats, error) {
	total, err := s.issues.Count(ctx)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.issues.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	bySeverity, err := s.issues.CountBySeverity(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	return &domain.DailyStats{
		Date:             time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		TotalIssues:      total,
		StatusOpen:       byStatus[domain.StatusOpen],
		StatusTriaged:    byStatus[domain.StatusTriaged],
		StatusInProgress: byStatus[domain.StatusInProgress],
		StatusDone:       byStatus[domain.StatusDone],
		SeverityLow:      bySeverity[domain.SeverityLow],
		SeverityMedium:   bySeverity[domain.SeverityMedium],
		SeverityHigh:     bySeverity[domain.SeverityHigh],
		SeverityCritical: bySeverity[domain.SeverityCritical],
	}, nil
}

// GetDailyStats returns the snapshot for a given date (midnight UTC).
func (s *Service) GetDailyStats(ctx context.Context, date time.Time) (*domain.DailyStats, error) {
	d := date.UTC()
	return s.stats.GetByDate(ctx, time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC))
}
