package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type IssueSeverity string

const (
	SeverityLow      IssueSeverity = "LOW"
	SeverityMedium   IssueSeverity = "MEDIUM"
	SeverityHigh     IssueSeverity = "HIGH"
	SeverityCritical IssueSeverity = "CRITICAL"
)

func (s IssueSeverity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

type IssueStatus string

const (
	StatusOpen       IssueStatus = "OPEN"
	StatusTriaged    IssueStatus = "TRIAGED"
	StatusInProgress IssueStatus = "IN_PROGRESS"
	StatusDone       IssueStatus = "DONE"
)

func (s IssueStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusTriaged, StatusInProgress, StatusDone:
		return true
	}
	return false
}

type Issue struct {
	ID          uuid.UUID
	Title       string
	Description string
	Severity    IssueSeverity
	Status      IssueStatus
	CreatedBy   uuid.UUID
	AssignedTo  *uuid.UUID
	FileURL     *string
	UpdatedBy   *uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IssueUpdate carries partial updates; nil fields are left untouched.
type IssueUpdate struct {
	Title       *string
	Description *string
	Severity    *IssueSeverity
	Status      *IssueStatus
	AssignedTo  *uuid.UUID
	FileURL     *string
}

type Comment struct {
	ID        uuid.UUID
	IssueID   uuid.UUID
	AuthorID  uuid.UUID
	Body      string
	CreatedAt time.Time
}

// IssueFilter narrows List queries. Zero value means no filtering.
type IssueFilter struct {
	Status    *IssueStatus
	CreatedBy *uuid.UUID
}

type IssueRepository interface {
	Create(ctx context.Context, issue *Issue) error
	GetByID(ctx context.Context, id uuid.UUID) (*Issue, error)
	List(ctx context.Context, filter IssueFilter, offset, limit int) ([]*Issue, error)
	Update(ctx context.Context, id uuid.UUID, update IssueUpdate, updatedBy uuid.UUID) (*Issue, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context) (map[IssueStatus]int64, error)
	CountBySeverity(ctx context.Context) (map[IssueSeverity]int64, error)
	AddComment(ctx context.Context, comment *Comment) error
	ListComments(ctx context.Context, issueID uuid.UUID) ([]*Comment, error)
}
