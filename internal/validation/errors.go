package validation

import (
	"fmt"
	"strings"

	"github.com/boulevard/bicycles/internal/stacktrace"
)

// Issue codes. They follow the codes the storefront client already handles.
const (
	CodeInvalidType      = "invalid_type"
	CodeUnrecognizedKeys = "unrecognized_keys"
	CodeTooSmall         = "too_small"
	CodeTooBig           = "too_big"
	CodeInvalidEnumValue = "invalid_enum_value"
	CodeInvalidString    = "invalid_string"
	CodeCustom           = "custom"
)

// ErrorName is the family name reported for schema validation failures.
const ErrorName = "ValidationError"

// ParseFailed tags a request body that is not valid JSON.
const ParseFailed = "entity.parse.failed"

// Issue is a single schema violation.
type Issue struct {
	Code    string
	Path    []string
	Message string

	// Expected and Received are set for CodeInvalidType.
	Expected string
	Received string

	// Keys is set for CodeUnrecognizedKeys.
	Keys []string
}

// JoinedPath returns the issue path with segments joined by ".".
func (i Issue) JoinedPath() string {
	return strings.Join(i.Path, ".")
}

// Error is a failed schema validation carrying every issue found.
type Error struct {
	Issues []Issue

	stack string
}

// NewError creates an Error from issues.
func NewError(issues []Issue) *Error {
	return &Error{Issues: issues, stack: stacktrace.Capture(1)}
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.JoinedPath()+": "+issue.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Name returns the family name of the error.
func (e *Error) Name() string { return ErrorName }

// StackTrace returns the frames captured at construction.
func (e *Error) StackTrace() string { return e.stack }

// ParseError reports a request body that could not be parsed as JSON.
type ParseError struct {
	Body string
	Err  error
}

// NewParseError creates a ParseError for body.
func NewParseError(body []byte, err error) *ParseError {
	return &ParseError{Body: string(body), Err: err}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse request body: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Type returns the parse failure tag.
func (e *ParseError) Type() string { return ParseFailed }
