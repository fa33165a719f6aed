// Package storage keeps uploaded statement PDFs on disk.
package storage

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no stored file matches the user and file ID.
var ErrNotFound = errors.New("stored file not found")

// FileInfo contains metadata about a stored file
type FileInfo struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	Path        string    `json:"path"` // relative to the user's directory
	CreatedAt   time.Time `json:"created_at"`
}

// File is an open stored file. Name reports its filesystem path.
type File interface {
	io.ReadSeekCloser
	Name() string
}

// Storage defines the file operations the statement service needs.
type Storage interface {
	// Upload stores a file and returns its metadata
	Upload(ctx context.Context, userID uuid.UUID, filename string, contentType string, r io.Reader) (*FileInfo, error)

	// Open returns a seekable handle on a stored file
	Open(ctx context.Context, userID uuid.UUID, fileID uuid.UUID) (File, error)

	// Delete removes a file and its metadata. Deleting a missing file is not an error.
	Delete(ctx context.Context, userID uuid.UUID, fileID uuid.UUID) error

	// GetInfo returns metadata for a file
	GetInfo(ctx context.Context, userID uuid.UUID, fileID uuid.UUID) (*FileInfo, error)
}
