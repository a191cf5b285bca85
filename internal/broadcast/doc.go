// Package broadcast implements the real-time event fan-out core.
//
// Producers call Publish after committing a mutation. The broadcaster snapshots the
// registry, applies the role/scope authorization filter per connection, and attempts a
// non-blocking write to each admitted connection's channel. Slow or dead connections are
// unregistered immediately; one subscriber can never stall delivery to the others.
package broadcast
