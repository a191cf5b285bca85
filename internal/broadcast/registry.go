package broadcast

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/akm-xdd/Trackly-core/internal/domain"
	"github.com/akm-xdd/Trackly-core/internal/metrics"
)

// Registry is the only shared mutable state in the broadcast core. All
// connection lifecycle goes through it: registration, heartbeats, and
// removal. Iteration uses Snapshot so fan-out never holds the lock.
type Registry struct {
	mu          sync.RWMutex
	connections map[uuid.UUID]*Connection
}

func NewRegistry() *Registry {
	return &Registry{connections: make(map[uuid.UUID]*Connection)}
}

// Register adds a connection. Reusing a live connection id is a transport
// bug, rejected with ErrDuplicateConnection.
func (r *Registry) Register(conn *Connection) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.connections[conn.id]; exists {
		return domain.ErrDuplicateConnection
	}
	r.connections[conn.id] = conn
	metrics.BroadcastActiveConnections.Set(float64(len(r.connections)))
	return nil
}

// Unregister removes and closes a connection. Idempotent: unregistering an
// absent id is a no-op, so transport teardown and write-failure eviction can
// race without harm.
func (r *Registry) Unregister(id uuid.UUID) {
	r.mu.Lock()
	conn, exists := r.connections[id]
	if exists {
		delete(r.connections, id)
		metrics.BroadcastActiveConnections.Set(float64(len(r.connections)))
	}
	r.mu.Unlock()

	if exists {
		conn.close()
	}
}

// Get returns the connection for id, or nil.
func (r *Registry) Get(id uuid.UUID) *Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.connections[id]
}

// Snapshot returns the current connection set. The slice is stable for the
// caller to iterate while registrations and removals continue concurrently.
func (r *Registry) Snapshot() []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := make([]*Connection, 0, len(r.connections))
	for _, conn := range r.connections {
		snapshot = append(snapshot, conn)
	}
	return snapshot
}

// Len returns the number of registered connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.connections)
}

// TouchHeartbeat records client liveness. A touch racing with removal is
// expected and ignored.
func (r *Registry) TouchHeartbeat(id uuid.UUID, clock clockwork.Clock) {
	r.mu.RLock()
	conn := r.connections[id]
	r.mu.RUnlock()

	if conn != nil {
		conn.touchHeartbeat(clock.Now())
	}
}

// RunReaper evicts connections whose last heartbeat is older than timeout,
// checking every interval. Blocks until ctx is cancelled.
func (r *Registry) RunReaper(ctx context.Context, clock clockwork.Clock, interval, timeout time.Duration) {
	ticker := clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			r.reap(clock, timeout)
		}
	}
}

func (r *Registry) reap(clock clockwork.Clock, timeout time.Duration) {
	now := clock.Now()

	var stale []uuid.UUID
	for _, conn := range r.Snapshot() {
		if conn.heartbeatAge(now) > timeout {
			stale = append(stale, conn.id)
		}
	}

	for _, id := range stale {
		slog.Info("Reaping stale connection", "connection_id", id.String(), "timeout", timeout)
		metrics.BroadcastReaperEvictions.Inc()
		r.Unregister(id)
	}
}
