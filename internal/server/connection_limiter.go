package server

import "sync/atomic"

// connectionLimiter caps concurrent stream connections per instance. Lock-free
// so the acquire path stays off the handler's critical section.
type connectionLimiter struct {
	current atomic.Int64
	max     int64
}

func newConnectionLimiter(max int) *connectionLimiter {
	return &connectionLimiter{max: int64(max)}
}

// acquire claims a slot; false means the instance is at capacity.
func (l *connectionLimiter) acquire() bool {
	for {
		current := l.current.Load()
		if current >= l.max {
			return false
		}
		if l.current.CompareAndSwap(current, current+1) {
			return true
		}
	}
}

func (l *connectionLimiter) release() {
	l.current.Add(-1)
}

func (l *connectionLimiter) count() int64 {
	return l.current.Load()
}
