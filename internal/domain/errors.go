package domain

import (
	"errors"
	"fmt"
	"net/http"

	"medialib/internal/domain/models"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a folder is not known to the client
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
	}
)

func (e *NotFoundError) Error() string   { return e.Message }
func (e *ValidationError) Error() string { return e.Message }

func (e *NotFoundError) StatusCode() int   { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int { return http.StatusBadRequest }

func (e *NotFoundError) Is(target error) bool   { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("already exists")
	ErrValidation = errors.New("validation failed")
	ErrNotEmpty   = errors.New("folder not empty")
	ErrRemote     = errors.New("remote store failure")
)

// ConflictError represents a duplicate folder name within the same parent scope.
// It is produced locally by the uniqueness check, before any remote write.
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (folder)
	ResourceID   string // ID of the folder being renamed, empty on create
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return e.Message
}

// StatusCode implements the HTTPError interface
func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// NonEmptyKind names the condition that blocked a delete.
type NonEmptyKind string

const (
	NonEmptyAssets     NonEmptyKind = "asset"
	NonEmptySubfolders NonEmptyKind = "subfolder"
)

// NonEmptyFolderError is returned when a delete is blocked by child assets or child folders.
type NonEmptyFolderError struct {
	FolderID string
	Kind     NonEmptyKind
	Count    int
}

func (e *NonEmptyFolderError) Error() string {
	return fmt.Sprintf("cannot delete folder with %d %s(s)", e.Count, e.Kind)
}

func (e *NonEmptyFolderError) StatusCode() int {
	return http.StatusConflict
}

func (e *NonEmptyFolderError) Is(target error) bool {
	return target == ErrNotEmpty
}

// RemoteError wraps a transport or server failure of the remote document store.
type RemoteError struct {
	Message string
	Status  int
	Err     error
}

func (e *RemoteError) Error() string {
	return e.Message
}

// StatusCode returns the remote status, or 500 when the failure carried none.
func (e *RemoteError) StatusCode() int {
	if e.Status == 0 {
		return http.StatusInternalServerError
	}
	return e.Status
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

func (e *RemoteError) Is(target error) bool {
	return target == ErrRemote
}

// NewRemoteError wraps err unless it already carries a status code.
func NewRemoteError(err error) error {
	if err == nil {
		return nil
	}
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return err
	}
	msg := err.Error()
	if msg == "" {
		msg = "internal error"
	}
	return &RemoteError{Message: msg, Err: err}
}

// ToErrorInfo flattens an error into the form stored on folder items.
func ToErrorInfo(err error) *models.ErrorInfo {
	if err == nil {
		return nil
	}
	status := http.StatusInternalServerError
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		status = httpErr.StatusCode()
	}
	msg := err.Error()
	if msg == "" {
		msg = "internal error"
	}
	return &models.ErrorInfo{Message: msg, StatusCode: status}
}
