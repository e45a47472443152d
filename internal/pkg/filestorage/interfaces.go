package filestorage

import (
	"errors"
	"mime/multipart"
)

var (
	// ErrInvalidName is returned for names that would escape the storage directory
	ErrInvalidName = errors.New("invalid file name")
	// ErrFileNotFound is returned when a stored file does not exist
	ErrFileNotFound = errors.New("file not found")
	// ErrExtensionNotAllowed is returned when an upload has a rejected extension
	ErrExtensionNotAllowed = errors.New("file extension not allowed")
)

// FileStorage defines the interface for file storage operations
type FileStorage interface {
	// Save stores an upload under a generated name and returns that name.
	// When allowedExts is non-empty the upload's extension must be one of them.
	Save(fileHeader *multipart.FileHeader, allowedExts ...string) (string, error)

	// Path resolves a stored name to its filesystem path
	Path(name string) (string, error)

	// DeleteFile removes a file from storage. Missing files are not an error.
	DeleteFile(name string) error
}
