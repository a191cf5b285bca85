package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventKind identifies what happened to the subject entity.
type EventKind string

const (
	EventIssueCreated       EventKind = "issue.created"
	EventIssueUpdated       EventKind = "issue.updated"
	EventIssueDeleted       EventKind = "issue.deleted"
	EventIssueStatusChanged EventKind = "issue.status_changed"
	EventCommentAdded       EventKind = "issue.comment_added"
	EventFileUploaded       EventKind = "file.uploaded"
	EventStatsSummary       EventKind = "stats.summary"
)

// EventScope is the visibility class of an event. The authorization filter
// combines scope with the subscriber's role and ownership to decide delivery.
type EventScope string

const (
	// ScopePublic events are delivered to every connected client.
	ScopePublic EventScope = "public"
	// ScopeRoleRestricted events go to admins and maintainers, plus the
	// subject's owner and assignee regardless of their role.
	ScopeRoleRestricted EventScope = "role-restricted"
	// ScopeOwnerOnly events go to admins and the subject's owner/assignee
	// only. Used for private drafts and other reporter-scoped changes.
	ScopeOwnerOnly EventScope = "owner-only"
)

// Event is an immutable record of a committed state change. Producers build
// one after their mutation is durable and hand it to the broadcaster; it is
// fanned out once and discarded, never persisted.
type Event struct {
	Kind       EventKind
	SubjectID  uuid.UUID
	OwnerID    uuid.UUID
	AssigneeID *uuid.UUID
	Scope      EventScope
	Payload    json.RawMessage
	Timestamp  time.Time
}

// DeliveryReport summarizes one fan-out pass. Individual subscriber failures
// never surface as errors to the producer; they only appear here.
type DeliveryReport struct {
	Delivered  int
	Suppressed int
	Failed     []uuid.UUID
}

// EventPublisher is the producer-facing contract of the broadcast core.
type EventPublisher interface {
	Publish(event Event) DeliveryReport
}
