package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/akm-xdd/Trackly-core/internal/domain"
	"github.com/akm-xdd/Trackly-core/internal/storage"
)

// UploadFile streams an attachment to the blob store, records its metadata,
// and notifies the uploader's stream subscribers. The stored name is the
// generated file id plus the original name, so blobs never collide and the
// URL stays human-readable.
func (s *Service) UploadFile(ctx context.Context, actor domain.Identity, filename, contentType string, size int64, content io.Reader) (*domain.StoredFile, error) {
	fileID := storage.NewFileID()
	blobName := fmt.Sprintf("%s_%s", fileID, filename)

	url, err := s.blobs.Upload(ctx, blobName, contentType, content)
	if err != nil {
		return nil, fmt.Errorf("failed to store file content: %w", err)
	}

	file := &domain.StoredFile{
		FileID:           fileID,
		OriginalFilename: filename,
		Size:             size,
		ContentType:      contentType,
		URL:              url,
		UploadedBy:       actor.UserID,
		Status:           domain.FileActive,
	}
	if err := s.files.Create(ctx, file); err != nil {
		// The blob is orphaned if this cleanup fails too; log-and-continue
		// beats failing the request twice.
		if rmErr := s.blobs.Remove(ctx, blobName); rmErr != nil {
			err = fmt.Errorf("%w (blob cleanup also failed: %v)", err, rmErr)
		}
		return nil, err
	}

	payload, _ := json.Marshal(map[string]any{
		"file_id":  file.FileID,
		"filename": file.OriginalFilename,
		"url":      file.URL,
		"size":     file.Size,
	})
	s.publish(domain.Event{
		Kind:      domain.EventFileUploaded,
		SubjectID: file.ID,
		OwnerID:   actor.UserID,
		Scope:     domain.ScopeOwnerOnly,
		Payload:   payload,
	})
	return file, nil
}

func (s *Service) GetFile(ctx context.Context, fileID string) (*domain.StoredFile, error) {
	return s.files.GetByFileID(ctx, fileID)
}

func (s *Service) ListFiles(ctx context.Context, offset, limit int) ([]*domain.StoredFile, error) {
	return s.files.List(ctx, offset, limit)
}

// DeleteFile soft-deletes the metadata and removes the blob. Uploaders may
// delete their own files; admins may delete any.
func (s *Service) DeleteFile(ctx context.Context, actor domain.Identity, fileID string) error {
	file, err := s.files.GetByFileID(ctx, fileID)
	if err != nil {
		return err
	}
	if actor.Role != domain.RoleAdmin && file.UploadedBy != actor.UserID {
		return domain.ErrForbidden
	}

	if err := s.files.MarkDeleted(ctx, fileID); err != nil {
		return err
	}

	blobName := fmt.Sprintf("%s_%s", file.FileID, file.OriginalFilename)
	return s.blobs.Remove(ctx, blobName)
}
