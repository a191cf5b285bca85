package domain

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

type FileStatus string

const (
	FileActive  FileStatus = "ACTIVE"
	FileDeleted FileStatus = "DELETED"
)

// StoredFile is the metadata record for an uploaded attachment. FileID is
// the short public identifier ("F" + 7 characters), distinct from the row id.
type StoredFile struct {
	ID               uuid.UUID
	FileID           string
	OriginalFilename string
	Size             int64
	ContentType      string
	URL              string
	UploadedBy       uuid.UUID
	Status           FileStatus
	CreatedAt        time.Time
}

type FileRepository interface {
	Create(ctx context.Context, file *StoredFile) error
	GetByFileID(ctx context.Context, fileID string) (*StoredFile, error)
	List(ctx context.Context, offset, limit int) ([]*StoredFile, error)
	MarkDeleted(ctx context.Context, fileID string) error
}

// BlobStore is the boundary to the external file storage backend. The
// protocol behind it (cloud blob service, local disk) is not this service's
// concern; it only needs content in and a stable URL out.
type BlobStore interface {
	Upload(ctx context.Context, name string, contentType string, content io.Reader) (url string, err error)
	Remove(ctx context.Context, name string) error
}
