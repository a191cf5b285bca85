package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/akm-xdd/Trackly-core/internal/domain"
)

const fileColumns = `id, file_id, original_filename, file_size, content_type, file_url, uploaded_by, status, created_at`

// FileRepo implements domain.FileRepository backed by PostgreSQL.
type FileRepo struct {
	pool *pgxpool.Pool
}

func NewFileRepo(pool *pgxpool.Pool) *FileRepo {
	return &FileRepo{pool: pool}
}

func scanFile(row pgx.Row) (*domain.StoredFile, error) {
	var file domain.StoredFile
	err := row.Scan(
		&file.ID, &file.FileID, &file.OriginalFilename, &file.Size,
		&file.ContentType, &file.URL, &file.UploadedBy, &file.Status, &file.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &file, nil
}

func (r *FileRepo) Create(ctx context.Context, file *domain.StoredFile) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO files (file_id, original_filename, file_size, content_type, file_url, uploaded_by, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+fileColumns,
		file.FileID, file.OriginalFilename, file.Size, file.ContentType,
		file.URL, file.UploadedBy, file.Status,
	)

	created, err := scanFile(row)
	if err != nil {
		return fmt.Errorf("failed to create file record: %w", err)
	}

	*file = *created
	return nil
}

func (r *FileRepo) GetByFileID(ctx context.Context, fileID string) (*domain.StoredFile, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+fileColumns+` FROM files
		WHERE file_id = $1 AND status = $2`,
		fileID, domain.FileActive,
	)

	file, err := scanFile(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrFileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	return file, nil
}

func (r *FileRepo) List(ctx context.Context, offset, limit int) ([]*domain.StoredFile, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+fileColumns+` FROM files
		WHERE status = $1
		ORDER BY created_at DESC
		OFFSET $2 LIMIT $3`,
		domain.FileActive, offset, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer rows.Close()

	var files []*domain.StoredFile
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		files = append(files, file)
	}
	return files, rows.Err()
}

func (r *FileRepo) MarkDeleted(ctx context.Context, fileID string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE files SET status = $2
		WHERE file_id = $1 AND status = $3`,
		fileID, domain.FileDeleted, domain.FileActive,
	)
	if err != nil {
		return fmt.Errorf("failed to mark file deleted: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrFileNotFound
	}
	return nil
}
