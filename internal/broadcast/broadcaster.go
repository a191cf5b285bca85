package broadcast

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/akm-xdd/Trackly-core/internal/domain"
	"github.com/akm-xdd/Trackly-core/internal/metrics"
)

const (
	// defaultBufferSize is the per-connection outbound buffer. A client that
	// falls this many events behind is considered dead and evicted.
	defaultBufferSize = 16
)

// envelope is the wire shape of a broadcast event. Data carries the
// serialized subject summary the producer attached.
type envelope struct {
	Type      string          `json:"type"`
	SubjectID uuid.UUID       `json:"subject_id"`
	OwnerID   uuid.UUID       `json:"owner_id"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// Broadcaster fans committed domain events out to live connections. It owns
// admission, heartbeats, and removal on write failure; the registry is its
// only state. Publish may be called concurrently from any producer.
type Broadcaster struct {
	registry   *Registry
	clock      clockwork.Clock
	bufferSize int
}

func NewBroadcaster(registry *Registry, clock clockwork.Clock) *Broadcaster {
	return &Broadcaster{
		registry:   registry,
		clock:      clock,
		bufferSize: defaultBufferSize,
	}
}

// Subscribe admits a new connection for a pre-authenticated identity. The
// transport layer picks the connection id; reuse of a live id is rejected
// with domain.ErrDuplicateConnection.
func (b *Broadcaster) Subscribe(id uuid.UUID, identity domain.Identity) (*Connection, error) {
	conn := newConnection(id, identity, b.clock.Now(), b.bufferSize)
	if err := b.registry.Register(conn); err != nil {
		return nil, err
	}
	slog.Debug("Connection subscribed",
		"connection_id", id.String(),
		"user_id", identity.UserID.String(),
		"role", string(identity.Role),
	)
	return conn, nil
}

// Unsubscribe removes a connection. Idempotent.
func (b *Broadcaster) Unsubscribe(id uuid.UUID) {
	b.registry.Unregister(id)
}

// Heartbeat records client liveness for the reaper. No-op for unknown ids.
func (b *Broadcaster) Heartbeat(id uuid.UUID) {
	b.registry.TouchHeartbeat(id, b.clock)
}

// Publish fans one event out to every admitted connection. It snapshots the
// registry once, filters per connection, and attempts a bounded non-blocking
// write to each. A failed write evicts exactly that connection; failures are
// contained and only visible in the aggregate report.
func (b *Broadcaster) Publish(event domain.Event) domain.DeliveryReport {
	start := b.clock.Now()
	defer func() {
		metrics.BroadcastPublishDuration.Observe(b.clock.Since(start).Seconds())
	}()

	metrics.BroadcastEventsPublished.WithLabelValues(string(event.Kind)).Inc()

	payload, err := json.Marshal(envelope{
		Type:      string(event.Kind),
		SubjectID: event.SubjectID,
		OwnerID:   event.OwnerID,
		Timestamp: event.Timestamp,
		Data:      event.Payload,
	})
	if err != nil {
		// Payload is producer-built RawMessage; this only trips on invalid JSON.
		slog.Error("Failed to marshal event envelope", "kind", string(event.Kind), "error", err)
		return domain.DeliveryReport{}
	}

	var report domain.DeliveryReport
	for _, conn := range b.registry.Snapshot() {
		if !CanDeliver(event, conn.Identity()) {
			report.Suppressed++
			continue
		}

		if err := conn.deliver(payload); err != nil {
			report.Failed = append(report.Failed, conn.ID())
			slog.Warn("Evicting connection after failed write",
				"connection_id", conn.ID().String(),
				"kind", string(event.Kind),
				"error", err,
			)
			metrics.BroadcastDeliveryFailures.Inc()
			b.registry.Unregister(conn.ID())
			continue
		}
		report.Delivered++
	}

	metrics.BroadcastEventsDelivered.Add(float64(report.Delivered))
	metrics.BroadcastEventsSuppressed.Add(float64(report.Suppressed))
	return report
}

// Close tears down every connection, e.g. on server shutdown.
func (b *Broadcaster) Close() {
	for _, conn := range b.registry.Snapshot() {
		b.registry.Unregister(conn.ID())
	}
	slog.Info("Broadcaster closed, all connections released")
}
