package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/akm-xdd/Trackly-core/internal/domain"
)

const issueColumns = `id, title, description, severity, status, created_by, assigned_to, file_url, updated_by, created_at, updated_at`

// IssueRepo implements domain.IssueRepository backed by PostgreSQL.
type IssueRepo struct {
	pool *pgxpool.Pool
}

func NewIssueRepo(pool *pgxpool.Pool) *IssueRepo {
	return &IssueRepo{pool: pool}
}

func scanIssue(row pgx.Row) (*domain.Issue, error) {
	var issue domain.Issue
	err := row.Scan(
		&issue.ID, &issue.Title, &issue.Description, &issue.Severity, &issue.Status,
		&issue.CreatedBy, &issue.AssignedTo, &issue.FileURL, &issue.UpdatedBy,
		&issue.CreatedAt, &issue.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &issue, nil
}

func (r *IssueRepo) Create(ctx context.Context, issue *domain.Issue) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO issues (title, description, severity, status, created_by, assigned_to, file_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+issueColumns,
		issue.Title, issue.Description, issue.Severity, issue.Status,
		issue.CreatedBy, issue.AssignedTo, issue.FileURL,
	)

	created, err := scanIssue(row)
	if err != nil {
		return fmt.Errorf("failed to create issue: %w", err)
	}

	*issue = *created
	return nil
}

func (r *IssueRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Issue, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+issueColumns+` FROM issues WHERE id = $1`, id)

	issue, err := scanIssue(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrIssueNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get issue: %w", err)
	}
	return issue, nil
}

func (r *IssueRepo) List(ctx context.Context, filter domain.IssueFilter, offset, limit int) ([]*domain.Issue, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+issueColumns+` FROM issues
		WHERE ($1::text IS NULL OR status = $1)
		  AND ($2::uuid IS NULL OR created_by = $2)
		ORDER BY created_at DESC
		OFFSET $3 LIMIT $4`,
		filter.Status, filter.CreatedBy, offset, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list issues: %w", err)
	}
	defer rows.Close()

	var issues []*domain.Issue
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan issue: %w", err)
		}
		issues = append(issues, issue)
	}
	return issues, rows.Err()
}

func (r *IssueRepo) Update(ctx context.Context, id uuid.UUID, update domain.IssueUpdate, updatedBy uuid.UUID) (*domain.Issue, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE issues
		SET title = COALESCE($2::text, title),
		    description = COALESCE($3::text, description),
		    severity = COALESCE($4::text, severity),
		    status = COALESCE($5::text, status),
		    assigned_to = COALESCE($6::uuid, assigned_to),
		    file_url = COALESCE($7::text, file_url),
		    updated_by = $8,
		    updated_at = now()
		WHERE id = $1
		RETURNING `+issueColumns,
		id, update.Title, update.Description, update.Severity, update.Status,
		update.AssignedTo, update.FileURL, updatedBy,
	)

	issue, err := scanIssue(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrIssueNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update issue: %w", err)
	}
	return issue, nil
}

func (r *IssueRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM issues WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete issue: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrIssueNotFound
	}
	return nil
}

func (r *IssueRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM issues`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count issues: %w", err)
	}
	return count, nil
}

func (r *IssueRepo) CountByStatus(ctx context.Context) (map[domain.IssueStatus]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, count(*) FROM issues GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count issues by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.IssueStatus]int64)
	for rows.Next() {
		var status domain.IssueStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (r *IssueRepo) CountBySeverity(ctx context.Context) (map[domain.IssueSeverity]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT severity, count(*) FROM issues GROUP BY severity`)
	if err != nil {
		return nil, fmt.Errorf("failed to count issues by severity: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.IssueSeverity]int64)
	for rows.Next() {
		var severity domain.IssueSeverity
		var count int64
		if err := rows.Scan(&severity, &count); err != nil {
			return nil, fmt.Errorf("failed to scan severity count: %w", err)
		}
		counts[severity] = count
	}
	return counts, rows.Err()
}

func (r *IssueRepo) AddComment(ctx context.Context, comment *domain.Comment) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO issue_comments (issue_id, author_id, body)
		VALUES ($1, $2, $3)
		RETURNING id, issue_id, author_id, body, created_at`,
		comment.IssueID, comment.AuthorID, comment.Body,
	)

	var created domain.Comment
	err := row.Scan(&created.ID, &created.IssueID, &created.AuthorID, &created.Body, &created.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add comment: %w", err)
	}

	*comment = created
	return nil
}

func (r *IssueRepo) ListComments(ctx context.Context, issueID uuid.UUID) ([]*domain.Comment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, issue_id, author_id, body, created_at
		FROM issue_comments
		WHERE issue_id = $1
		ORDER BY created_at ASC`,
		issueID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []*domain.Comment
	for rows.Next() {
		var comment domain.Comment
		if err := rows.Scan(&comment.ID, &comment.IssueID, &comment.AuthorID, &comment.Body, &comment.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, &comment)
	}
	return comments, rows.Err()
}
