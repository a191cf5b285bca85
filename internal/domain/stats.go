package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DailyStats is one aggregated snapshot of the issue corpus for a given day.
// Recomputed periodically by the aggregation ticker and upserted by date.
type DailyStats struct {
	ID               uuid.UUID
	Date             time.Time
	TotalIssues      int64
	StatusOpen       int64
	StatusTriaged    int64
	StatusInProgress int64
	StatusDone       int64
	SeverityLow      int64
	SeverityMedium   int64
	SeverityHigh     int64
	SeverityCritical int64
	CreatedAt        time.Time
}

type StatsRepository interface {
	Upsert(ctx context.Context, stats *DailyStats) (*DailyStats, error)
	GetByDate(ctx context.Context, date time.Time) (*DailyStats, error)
}
