package app

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"

	"github.com/akm-xdd/Trackly-core/internal/domain"
)

// CreateIssueInput is the validated payload for a new issue.
type CreateIssueInput struct {
	Title       string
	Description string
	Severity    domain.IssueSeverity
	AssignedTo  *uuid.UUID
	FileURL     *string
}

func (s *Service) CreateIssue(ctx context.Context, actor domain.Identity, in CreateIssueInput) (*domain.Issue, error) {
	issue := &domain.Issue{
		Title:       in.Title,
		Description: in.Description,
		Severity:    in.Severity,
		Status:      domain.StatusOpen,
		CreatedBy:   actor.UserID,
		AssignedTo:  in.AssignedTo,
		FileURL:     in.FileURL,
	}
	if err := s.issues.Create(ctx, issue); err != nil {
		return nil, err
	}

	s.publishIssueEvent(domain.EventIssueCreated, issue)
	return issue, nil
}

func (s *Service) GetIssue(ctx context.Context, actor domain.Identity, id uuid.UUID) (*domain.Issue, error) {
	issue, err := s.issues.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canAccessIssue(actor, issue) {
		return nil, domain.ErrForbidden
	}
	return issue, nil
}

// ListIssues returns a page of issues. Reporters only ever see their own;
// the filter is forced server-side rather than trusted from the request.
func (s *Service) ListIssues(ctx context.Context, actor domain.Identity, filter domain.IssueFilter, offset, limit int) ([]*domain.Issue, error) {
	if actor.Role == domain.RoleReporter {
		uid := actor.UserID
		filter.CreatedBy = &uid
	}
	return s.issues.List(ctx, filter, offset, limit)
}

// ListUserIssues returns issues created by a specific user. Reporters may
// only query themselves.
func (s *Service) ListUserIssues(ctx context.Context, actor domain.Identity, userID uuid.UUID, offset, limit int) ([]*domain.Issue, error) {
	if actor.Role == domain.RoleReporter && actor.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return s.issues.List(ctx, domain.IssueFilter{CreatedBy: &userID}, offset, limit)
}

func (s *Service) UpdateIssue(ctx context.Context, actor domain.Identity, id uuid.UUID, update domain.IssueUpdate) (*domain.Issue, error) {
	current, err := s.issues.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canModifyIssue(actor, current) {
		return nil, domain.ErrForbidden
	}

	updated, err := s.issues.Update(ctx, id, update, actor.UserID)
	if err != nil {
		return nil, err
	}

	kind := domain.EventIssueUpdated
	if update.Status != nil && *update.Status != current.Status {
		kind = domain.EventIssueStatusChanged
	}
	s.publishIssueEvent(kind, updated)
	return updated, nil
}

func (s *Service) DeleteIssue(ctx context.Context, actor domain.Identity, id uuid.UUID) error {
	issue, err := s.issues.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !canDeleteIssue(actor, issue) {
		return domain.ErrForbidden
	}
	if err := s.issues.Delete(ctx, id); err != nil {
		return err
	}

	s.publishIssueEvent(domain.EventIssueDeleted, issue)
	return nil
}

func (s *Service) AddComment(ctx context.Context, actor domain.Identity, issueID uuid.UUID, body string) (*domain.Comment, error) {
	issue, err := s.issues.GetByID(ctx, issueID)
	if err != nil {
		return nil, err
	}
	if !canAccessIssue(actor, issue) {
		return nil, domain.ErrForbidden
	}

	comment := &domain.Comment{
		IssueID:  issueID,
		AuthorID: actor.UserID,
		Body:     body,
	}
	if err := s.issues.AddComment(ctx, comment); err != nil {
		return nil, err
	}

	payload, _ := json.Marshal(map[string]any{
		"comment_id": comment.ID,
		"issue_id":   issueID,
		"author_id":  actor.UserID,
	})
	s.publish(domain.Event{
		Kind:       domain.EventCommentAdded,
		SubjectID:  issueID,
		OwnerID:    issue.CreatedBy,
		AssigneeID: issue.AssignedTo,
		Scope:      issueScope(issue.Severity),
		Payload:    payload,
	})
	return comment, nil
}

func (s *Service) ListComments(ctx context.Context, actor domain.Identity, issueID uuid.UUID) ([]*domain.Comment, error) {
	issue, err := s.issues.GetByID(ctx, issueID)
	if err != nil {
		return nil, err
	}
	if !canAccessIssue(actor, issue) {
		return nil, domain.ErrForbidden
	}
	return s.issues.ListComments(ctx, issueID)
}

func (s *Service) CountIssues(ctx context.Context) (int64, error) {
	return s.issues.Count(ctx)
}

func (s *Service) CountIssuesByStatus(ctx context.Context) (map[domain.IssueStatus]int64, error) {
	return s.issues.CountByStatus(ctx)
}

func (s *Service) CountIssuesBySeverity(ctx context.Context) (map[domain.IssueSeverity]int64, error) {
	return s.issues.CountBySeverity(ctx)
}

// canAccessIssue mirrors read visibility: admins and maintainers see
// everything, reporters see what they created or are assigned to.
func canAccessIssue(actor domain.Identity, issue *domain.Issue) bool {
	if actor.Role == domain.RoleAdmin || actor.Role == domain.RoleMaintainer {
		return true
	}
	if issue.CreatedBy == actor.UserID {
		return true
	}
	return issue.AssignedTo != nil && *issue.AssignedTo == actor.UserID
}

func canModifyIssue(actor domain.Identity, issue *domain.Issue) bool {
	if actor.Role == domain.RoleAdmin || actor.Role == domain.RoleMaintainer {
		return true
	}
	return issue.CreatedBy == actor.UserID
}

// Deletion is narrower than modification: maintainers triage, they do not
// destroy records.
func canDeleteIssue(actor domain.Identity, issue *domain.Issue) bool {
	if actor.Role == domain.RoleAdmin {
		return true
	}
	return actor.Role == domain.RoleReporter && issue.CreatedBy == actor.UserID
}

// issueScope classifies an issue event for the authorization filter.
// Critical issues are broadcast to everyone; the rest stay within the
// admin/maintainer circle plus owner and assignee.
func issueScope(severity domain.IssueSeverity) domain.EventScope {
	if severity == domain.SeverityCritical {
		return domain.ScopePublic
	}
	return domain.ScopeRoleRestricted
}

func (s *Service) publishIssueEvent(kind domain.EventKind, issue *domain.Issue) {
	payload, _ := json.Marshal(map[string]any{
		"issue_id": issue.ID,
		"title":    issue.Title,
		"severity": issue.Severity,
		"status":   issue.Status,
	})
	s.publish(domain.Event{
		Kind:       kind,
		SubjectID:  issue.ID,
		OwnerID:    issue.CreatedBy,
		AssigneeID: issue.AssignedTo,
		Scope:      issueScope(issue.Severity),
		Payload:    payload,
	})
}

// publish stamps and fans out an event. Delivery outcomes are logged, never
// returned: a slow websocket must not fail the HTTP request that caused it.
func (s *Service) publish(event domain.Event) {
	event.Timestamp = s.clock.Now()
	report := s.publisher.Publish(event)
	if len(report.Failed) > 0 {
		slog.Warn("event delivery failures",
			"kind", event.Kind,
			"subject_id", event.SubjectID,
			"failed", len(report.Failed))
	}
}
