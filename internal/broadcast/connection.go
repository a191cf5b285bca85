package broadcast

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/akm-xdd/Trackly-core/internal/domain"
)

var (
	errConnectionClosed = errors.New("connection closed")
	errChannelFull      = errors.New("send channel full")
)

// Connection is one client's live subscription to the event stream. The
// registry owns its lifecycle; the transport layer drains Events() and
// watches Done() to learn when the subscription has been torn down.
type Connection struct {
	id          uuid.UUID
	identity    domain.Identity
	connectedAt time.Time

	mu            sync.Mutex
	lastHeartbeat time.Time

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newConnection(id uuid.UUID, identity domain.Identity, now time.Time, bufferSize int) *Connection {
	return &Connection{
		id:            id,
		identity:      identity,
		connectedAt:   now,
		lastHeartbeat: now,
		send:          make(chan []byte, bufferSize),
		done:          make(chan struct{}),
	}
}

// ID returns the opaque connection id.
func (c *Connection) ID() uuid.UUID { return c.id }

// Identity returns the (user, role) pair snapshotted at registration.
func (c *Connection) Identity() domain.Identity { return c.identity }

// Events is the outbound delivery channel the transport layer drains.
func (c *Connection) Events() <-chan []byte { return c.send }

// Done is closed when the connection is unregistered.
func (c *Connection) Done() <-chan struct{} { return c.done }

// deliver attempts a non-blocking write. It fails immediately when the
// connection is closed or its buffer is full; it never blocks the fan-out.
func (c *Connection) deliver(payload []byte) error {
	select {
	case <-c.done:
		return errConnectionClosed
	default:
	}

	select {
	case c.send <- payload:
		return nil
	case <-c.done:
		return errConnectionClosed
	default:
		return errChannelFull
	}
}

// close tears the connection down. Safe to call multiple times.
func (c *Connection) close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

func (c *Connection) touchHeartbeat(now time.Time) {
	c.mu.Lock()
	c.lastHeartbeat = now
	c.mu.Unlock()
}

func (c *Connection) heartbeatAge(now time.Time) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return now.Sub(c.lastHeartbeat)
}
