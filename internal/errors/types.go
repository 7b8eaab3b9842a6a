// Package errors provides the structured error type shared by the content
// resolver, configuration loading and the HTTP layer.
//
// A FolioError carries a Type (the broad category used to decide how a
// failure is surfaced) and a Code (the precise reason). Content parse steps
// return FolioErrors instead of logging themselves so that callers can decide
// whether an item is dropped, reported or turned into a 404.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeSecurity   ErrorType = "security"
	ErrorTypeInternal   ErrorType = "internal"
)

// Content and request error codes.
const (
	ErrCodeFrontmatterMissing = "FRONTMATTER_MISSING"
	ErrCodeFrontmatterInvalid = "FRONTMATTER_INVALID"
	ErrCodeTitleMissing       = "TITLE_MISSING"
	ErrCodeDateMissing        = "DATE_MISSING"
	ErrCodeDateInvalid        = "DATE_INVALID"
	ErrCodeLanguageMismatch   = "LANGUAGE_MISMATCH"
	ErrCodeSlugInvalid        = "SLUG_INVALID"
	ErrCodeSlugDuplicate      = "SLUG_DUPLICATE"
	ErrCodeReadFailed         = "READ_FAILED"
	ErrCodePostNotFound       = "POST_NOT_FOUND"
	ErrCodeLegalNotFound      = "LEGAL_NOT_FOUND"
	ErrCodeConfigInvalid      = "CONFIG_INVALID"
	ErrCodePathTraversal      = "PATH_TRAVERSAL"
	ErrCodeUnsafeRedirect     = "UNSAFE_REDIRECT"
	ErrCodeRateLimited        = "RATE_LIMITED"
	ErrCodeOriginRejected     = "ORIGIN_REJECTED"
	ErrCodeResumeNotFound     = "RESUME_NOT_FOUND"
	ErrCodeResumeInvalid      = "RESUME_INVALID"
	ErrCodeProjectsFailed     = "PROJECTS_UNAVAILABLE"
)

// FolioError is a structured error type with context.
type FolioError struct {
	Type    ErrorType
	Code    string
	Message string
	Cause   error
	Path    string
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *FolioError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Path != "" {
		parts = append(parts, e.Path+":")
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *FolioError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison on type and code.
func (e *FolioError) Is(target error) bool {
	var t *FolioError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *FolioError) WithContext(key string, value interface{}) *FolioError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithPath records the source file the error relates to.
func (e *FolioError) WithPath(path string) *FolioError {
	e.Path = path

	return e
}

// Fields flattens the error into key/value pairs for structured logging.
func (e *FolioError) Fields() []interface{} {
	fields := []interface{}{"error_type", string(e.Type), "code", e.Code}
	if e.Path != "" {
		fields = append(fields, "path", e.Path)
	}
	for k, v := range e.Context {
		fields = append(fields, k, v)
	}

	return fields
}

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *FolioError {
	return &FolioError{
		Type:    ErrorTypeValidation,
		Code:    code,
		Message: message,
	}
}

// NewNotFoundError creates a not-found error.
func NewNotFoundError(code, message string) *FolioError {
	return &FolioError{
		Type:    ErrorTypeNotFound,
		Code:    code,
		Message: message,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *FolioError {
	return &FolioError{
		Type:    ErrorTypeIO,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *FolioError {
	return &FolioError{
		Type:    ErrorTypeConfig,
		Code:    code,
		Message: message,
	}
}

// NewSecurityError creates a security error.
func NewSecurityError(code, message string) *FolioError {
	return &FolioError{
		Type:    ErrorTypeSecurity,
		Code:    code,
		Message: message,
	}
}

// IsNotFound reports whether err is a not-found FolioError.
func IsNotFound(err error) bool {
	return hasType(err, ErrorTypeNotFound)
}

// IsValidation reports whether err is a validation FolioError.
func IsValidation(err error) bool {
	return hasType(err, ErrorTypeValidation)
}

// IsSecurityError checks if an error is security-related.
func IsSecurityError(err error) bool {
	return hasType(err, ErrorTypeSecurity)
}

// CodeOf returns the code of the first FolioError in the chain, or "".
func CodeOf(err error) string {
	var fe *FolioError
	if errors.As(err, &fe) {
		return fe.Code
	}

	return ""
}

func hasType(err error, t ErrorType) bool {
	var fe *FolioError
	if errors.As(err, &fe) {
		return fe.Type == t
	}

	return false
}

// ErrPathTraversal creates a path traversal security error.
func ErrPathTraversal(path string) *FolioError {
	return NewSecurityError(ErrCodePathTraversal, "path traversal attempt: "+path)
}

// ErrPostNotFound creates the not-found error returned for unknown posts.
func ErrPostNotFound(slug, lang string) *FolioError {
	return NewNotFoundError(ErrCodePostNotFound, "post not found: "+slug).
		WithContext("slug", slug).
		WithContext("language", lang)
}

// ErrLegalNotFound creates the not-found error returned for unknown legal documents.
func ErrLegalNotFound(slug, lang string) *FolioError {
	return NewNotFoundError(ErrCodeLegalNotFound, "legal document not found: "+slug).
		WithContext("slug", slug).
		WithContext("language", lang)
}
