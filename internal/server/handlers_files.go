package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/akm-xdd/Trackly-core/internal/domain"
)

// maxUploadBytes caps multipart uploads at 25 MiB.
const maxUploadBytes = 25 << 20

type fileResponse struct {
	FileID           string    `json:"file_id"`
	OriginalFilename string    `json:"original_filename"`
	Size             int64     `json:"size"`
	ContentType      string    `json:"content_type"`
	URL              string    `json:"url"`
	UploadedBy       string    `json:"uploaded_by"`
	CreatedAt        time.Time `json:"created_at"`
}

func toFileResponse(f *domain.StoredFile) fileResponse {
	return fileResponse{
		FileID:           f.FileID,
		OriginalFilename: f.OriginalFilename,
		Size:             f.Size,
		ContentType:      f.ContentType,
		URL:              f.URL,
		UploadedBy:       f.UploadedBy.String(),
		CreatedAt:        f.CreatedAt,
	}
}

func (s *Server) handleUploadFile(c echo.Context) error {
	c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, maxUploadBytes)

	header, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing file field")
	}

	src, err := header.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable file upload")
	}
	defer src.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	file, err := s.service.UploadFile(c.Request().Context(), currentIdentity(c),
		header.Filename, contentType, header.Size, src)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, toFileResponse(file))
}

func (s *Server) handleListFiles(c echo.Context) error {
	offset, limit := pagination(c)

	files, err := s.service.ListFiles(c.Request().Context(), offset, limit)
	if err != nil {
		return httpError(err)
	}

	out := make([]fileResponse, 0, len(files))
	for _, f := range files {
		out = append(out, toFileResponse(f))
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleGetFile(c echo.Context) error {
	file, err := s.service.GetFile(c.Request().Context(), c.Param("fileID"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, toFileResponse(file))
}

func (s *Server) handleDeleteFile(c echo.Context) error {
	err := s.service.DeleteFile(c.Request().Context(), currentIdentity(c), c.Param("fileID"))
	if err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
