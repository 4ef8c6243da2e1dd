package domain

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/boulevard/bicycles/internal/stacktrace"
)

// ErrNotFound is returned by repositories when no document matches.
var ErrNotFound = errors.New("resource not found")

// DefaultPath is the field path of an error that does not name one.
const DefaultPath = "unknown"

// StatusError is an application failure that carries its own HTTP status.
// It is never mutated after construction.
type StatusError struct {
	Label   string
	Message string
	Status  int
	Kind    string
	Value   any
	Path    string

	stack string
}

// NewStatusError creates a StatusError. An empty path becomes DefaultPath and
// a status outside 100-599 becomes 500.
func NewStatusError(label, message string, status int, kind string, value any, path string) *StatusError {
	if path == "" {
		path = DefaultPath
	}
	if status < 100 || status > 599 {
		status = http.StatusInternalServerError
	}
	return &StatusError{
		Label:   label,
		Message: message,
		Status:  status,
		Kind:    kind,
		Value:   value,
		Path:    path,
		stack:   stacktrace.Capture(1),
	}
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Label, e.Status, e.Message)
}

// StackTrace returns the frames captured at construction.
func (e *StatusError) StackTrace() string {
	return e.stack
}

// NotFound reports a missing resource.
func NotFound(message string, value any, path string) *StatusError {
	return NewStatusError("NotFoundError", message, http.StatusNotFound, "not_found", value, path)
}

// Unauthorized reports a missing or invalid credential.
func Unauthorized(message, path string) *StatusError {
	return NewStatusError("AuthenticationError", message, http.StatusUnauthorized, "unauthorized", nil, path)
}

// Forbidden reports an authenticated caller lacking permission.
func Forbidden(message, path string) *StatusError {
	return NewStatusError("AuthorizationError", message, http.StatusForbidden, "forbidden", nil, path)
}

// Conflict reports a request that conflicts with current state.
func Conflict(label, message, kind string, value any, path string) *StatusError {
	return NewStatusError(label, message, http.StatusConflict, kind, value, path)
}

// BadRequest reports a request the server refuses to process.
func BadRequest(label, message, kind string, value any, path string) *StatusError {
	return NewStatusError(label, message, http.StatusBadRequest, kind, value, path)
}

// CastError reports a value that could not be converted to the type a field
// requires, typically a malformed ObjectId.
type CastError struct {
	Path   string
	Value  any
	Kind   string
	Reason error

	stack string
}

// NewCastError creates a CastError.
func NewCastError(path string, value any, kind string, reason error) *CastError {
	return &CastError{
		Path:   path,
		Value:  value,
		Kind:   kind,
		Reason: reason,
		stack:  stacktrace.Capture(1),
	}
}

func (e *CastError) Error() string {
	return fmt.Sprintf("cast to %s failed for value %q at path %q", e.Kind, fmt.Sprint(e.Value), e.Path)
}

func (e *CastError) Unwrap() error { return e.Reason }

// StackTrace returns the frames captured at construction.
func (e *CastError) StackTrace() string {
	return e.stack
}
