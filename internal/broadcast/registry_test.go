package broadcast

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akm-xdd/Trackly-core/internal/domain"
)

func testIdentity(role domain.Role) domain.Identity {
	return domain.Identity{UserID: uuid.New(), Role: role}
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	reg := NewRegistry()
	clock := clockwork.NewFakeClock()

	conn := newConnection(uuid.New(), testIdentity(domain.RoleReporter), clock.Now(), 16)
	require.NoError(t, reg.Register(conn))

	assert.Equal(t, 1, reg.Len())
	assert.Same(t, conn, reg.Get(conn.ID()))
}

func TestRegistry_DuplicateConnectionRejected(t *testing.T) {
	reg := NewRegistry()
	clock := clockwork.NewFakeClock()

	id := uuid.New()
	first := newConnection(id, testIdentity(domain.RoleReporter), clock.Now(), 16)
	second := newConnection(id, testIdentity(domain.RoleAdmin), clock.Now(), 16)

	require.NoError(t, reg.Register(first))
	err := reg.Register(second)
	require.ErrorIs(t, err, domain.ErrDuplicateConnection)

	// The original registration stays live.
	assert.Equal(t, 1, reg.Len())
	assert.Same(t, first, reg.Get(id))
}

func TestRegistry_UnregisterIdempotent(t *testing.T) {
	reg := NewRegistry()
	clock := clockwork.NewFakeClock()

	conn := newConnection(uuid.New(), testIdentity(domain.RoleReporter), clock.Now(), 16)
	require.NoError(t, reg.Register(conn))

	reg.Unregister(conn.ID())
	assert.Equal(t, 0, reg.Len())

	// Second removal is a no-op, as is removing an id that never existed.
	assert.NotPanics(t, func() {
		reg.Unregister(conn.ID())
		reg.Unregister(uuid.New())
	})
	assert.Equal(t, 0, reg.Len())

	select {
	case <-conn.Done():
	default:
		t.Fatal("expected connection to be closed after unregister")
	}
}

func TestRegistry_TouchHeartbeatAbsentIsNoop(t *testing.T) {
	reg := NewRegistry()
	clock := clockwork.NewFakeClock()

	assert.NotPanics(t, func() {
		reg.TouchHeartbeat(uuid.New(), clock)
	})
}

func TestRegistry_SnapshotStableDuringMutation(t *testing.T) {
	reg := NewRegistry()
	clock := clockwork.NewFakeClock()

	for range 50 {
		conn := newConnection(uuid.New(), testIdentity(domain.RoleReporter), clock.Now(), 16)
		require.NoError(t, reg.Register(conn))
	}

	snapshot := reg.Snapshot()
	require.Len(t, snapshot, 50)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for _, conn := range snapshot {
			reg.Unregister(conn.ID())
		}
	}()
	go func() {
		defer wg.Done()
		for range 50 {
			conn := newConnection(uuid.New(), testIdentity(domain.RoleAdmin), clock.Now(), 16)
			_ = reg.Register(conn)
		}
	}()

	// Iterating the snapshot while both goroutines mutate must stay safe.
	count := 0
	for _, conn := range snapshot {
		if conn != nil {
			count++
		}
	}
	wg.Wait()

	assert.Equal(t, 50, count)
	assert.Equal(t, 50, reg.Len())
}

func TestRegistry_ReaperEvictsStaleConnections(t *testing.T) {
	reg := NewRegistry()
	clock := clockwork.NewFakeClock()

	const (
		interval = time.Second
		timeout  = 30 * time.Second
	)

	stale := newConnection(uuid.New(), testIdentity(domain.RoleReporter), clock.Now(), 16)
	fresh := newConnection(uuid.New(), testIdentity(domain.RoleReporter), clock.Now(), 16)
	require.NoError(t, reg.Register(stale))
	require.NoError(t, reg.Register(fresh))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		reg.RunReaper(ctx, clock, interval, timeout)
	}()

	// Wait until the reaper is parked on its ticker.
	require.NoError(t, clock.BlockUntilContext(ctx, 1))

	// Age both connections close to the deadline, keep one alive.
	clock.Advance(timeout)
	reg.TouchHeartbeat(fresh.ID(), clock)
	clock.Advance(interval)

	require.Eventually(t, func() bool {
		return reg.Len() == 1
	}, time.Second, time.Millisecond)
	assert.Nil(t, reg.Get(stale.ID()))
	assert.NotNil(t, reg.Get(fresh.ID()))

	select {
	case <-stale.Done():
	default:
		t.Fatal("expected reaped connection to be closed")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reaper did not stop on context cancellation")
	}
}
