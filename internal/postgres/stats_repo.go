package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/akm-xdd/Trackly-core/internal/domain"
)

const statsColumns = `id, date, total_issues, status_open, status_triaged, status_in_progress, status_done,
	severity_low, severity_medium, severity_high, severity_critical, created_at`

// StatsRepo implements domain.StatsRepository backed by PostgreSQL.
type StatsRepo struct {
	pool *pgxpool.Pool
}

func NewStatsRepo(pool *pgxpool.Pool) *StatsRepo {
	return &StatsRepo{pool: pool}
}

func scanStats(row pgx.Row) (*domain.DailyStats, error) {
	var stats domain.DailyStats
	err := row.Scan(
		&stats.ID, &stats.Date, &stats.TotalIssues,
		&stats.StatusOpen, &stats.StatusTriaged, &stats.StatusInProgress, &stats.StatusDone,
		&stats.SeverityLow, &stats.SeverityMedium, &stats.SeverityHigh, &stats.SeverityCritical,
		&stats.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *StatsRepo) Upsert(ctx context.Context, stats *domain.DailyStats) (*domain.DailyStats, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO daily_stats (date, total_issues, status_open, status_triaged, status_in_progress, status_done,
			severity_low, severity_medium, severity_high, severity_critical)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (date) DO UPDATE SET
			total_issues = EXCLUDED.total_issues,
			status_open = EXCLUDED.status_open,
			status_triaged = EXCLUDED.status_triaged,
			status_in_progress = EXCLUDED.status_in_progress,
			status_done = EXCLUDED.status_done,
			severity_low = EXCLUDED.severity_low,
			severity_medium = EXCLUDED.severity_medium,
			severity_high = EXCLUDED.severity_high,
			severity_critical = EXCLUDED.severity_critical
		RETURNING `+statsColumns,
		stats.Date, stats.TotalIssues,
		stats.StatusOpen, stats.StatusTriaged, stats.StatusInProgress, stats.StatusDone,
		stats.SeverityLow, stats.SeverityMedium, stats.SeverityHigh, stats.SeverityCritical,
	)

	saved, err := scanStats(row)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert daily stats: %w", err)
	}
	return saved, nil
}

func (r *StatsRepo) GetByDate(ctx context.Context, date time.Time) (*domain.DailyStats, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+statsColumns+` FROM daily_stats WHERE date = $1`, date)

	stats, err := scanStats(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrStatsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get daily stats: %w", err)
	}
	return stats, nil
}
