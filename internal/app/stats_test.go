package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akm-xdd/Trackly-core/internal/domain"
)

func TestAggregateStats_CountsAndPublishesSummary(t *testing.T) {
	f := newFixture(t)
	reporter := f.addUser(t, domain.RoleReporter)

	for _, severity := range []domain.IssueSeverity{domain.SeverityLow, domain.SeverityLow, domain.SeverityCritical} {
		_, err := f.service.CreateIssue(context.Background(), identity(reporter), CreateIssueInput{
			Title:    "issue",
			Severity: severity,
		})
		require.NoError(t, err)
	}

	stats, err := f.service.AggregateStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.TotalIssues)
	assert.Equal(t, int64(3), stats.StatusOpen)
	assert.Equal(t, int64(2), stats.SeverityLow)
	assert.Equal(t, int64(1), stats.SeverityCritical)

	event, ok := f.pub.lastEvent()
	require.True(t, ok)
	assert.Equal(t, domain.EventStatsSummary, event.Kind)
	assert.Equal(t, domain.ScopeRoleRestricted, event.Scope)
	assert.Contains(t, string(event.Payload), `"total_issues":3`)
}

func TestAggregateStats_UpsertsSameDate(t *testing.T) {
	f := newFixture(t)

	first, err := f.service.AggregateStats(context.Background())
	require.NoError(t, err)

	second, err := f.service.AggregateStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.Date, second.Date)

	got, err := f.service.GetDailyStats(context.Background(), f.clock.Now())
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)
}

func TestGetDailyStats_MissingDate(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.GetDailyStats(context.Background(), f.clock.Now().Add(-24*time.Hour))
	assert.ErrorIs(t, err, domain.ErrStatsNotFound)
}

func TestStatsTicker_RunsImmediatelyAndOnEachTick(t *testing.T) {
	f := newFixture(t)
	ticker := NewStatsTicker(f.service, f.clock, 30*time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		ticker.Run(ctx)
		close(done)
	}()

	// Immediate run happens before the first tick.
	require.Eventually(t, func() bool {
		return f.stats.upsertCount() == 1
	}, time.Second, 5*time.Millisecond)

	f.clock.BlockUntilContext(ctx, 1)
	f.clock.Advance(30 * time.Minute)

	require.Eventually(t, func() bool {
		return f.stats.upsertCount() == 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("ticker did not stop on context cancel")
	}
}

func TestStatsTicker_LogsAndContinuesOnError(t *testing.T) {
	f := newFixture(t)
	broken := &failingIssueRepo{mockIssueRepo: f.issues}
	f.service.issues = broken

	ticker := NewStatsTicker(f.service, f.clock, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ticker.Run(ctx)

	f.clock.BlockUntilContext(ctx, 1)
	f.clock.Advance(time.Minute)
	f.clock.BlockUntilContext(ctx, 1)

	assert.Zero(t, f.stats.upsertCount())
}

type failingIssueRepo struct {
	*mockIssueRepo
}

func (f *failingIssueRepo) Count(context.Context) (int64, error) {
	return 0, assert.AnError
}
