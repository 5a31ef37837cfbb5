package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// Client errors
	ErrorTypeBadRequest ErrorType = "bad_request"
	ErrorTypeNotFound   ErrorType = "not_found"

	// Server errors
	ErrorTypeStorage   ErrorType = "storage"
	ErrorTypeTranscode ErrorType = "transcode"
	ErrorTypeBlocking  ErrorType = "blocking"
	ErrorTypeInternal  ErrorType = "internal"
)

// Error codes written to clients
const (
	CodeBadRequest    = "BAD_REQUEST"
	CodeNotFound      = "NOT_FOUND"
	CodeStorage       = "STORAGE_ERROR"
	CodeIO            = "IO_ERROR"
	CodeBlocking      = "BLOCKING_ERROR"
	CodeInternalError = "INTERNAL_ERROR"
)

// AppError represents a structured application error.
// Message is safe to show to clients; InnerError is for logs only.
type AppError struct {
	Type       ErrorType `json:"type"`
	Code       string    `json:"code"`
	Message    string    `json:"message"`
	InnerError error     `json:"-"`
	HTTPStatus int       `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.InnerError != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.InnerError)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Type, e.Message)
	}
	return string(e.Type)
}

// Unwrap returns the inner error
func (e *AppError) Unwrap() error {
	return e.InnerError
}

// Is reports whether target is an *AppError of the same type.
func (e *AppError) Is(target error) bool {
	if t, ok := target.(*AppError); ok {
		return e.Type == t.Type
	}
	return false
}

// WithMessage replaces the client facing message
func (e *AppError) WithMessage(msg string) *AppError {
	e.Message = msg
	return e
}

// WithInnerError sets the inner error
func (e *AppError) WithInnerError(err error) *AppError {
	e.InnerError = err
	return e
}

// New creates a new AppError
func New(errType ErrorType, code, message string, status int) *AppError {
	return &AppError{
		Type:       errType,
		Code:       code,
		Message:    message,
		HTTPStatus: status,
	}
}

func NewBadRequest(message string) *AppError {
	return New(ErrorTypeBadRequest, CodeBadRequest, message, http.StatusBadRequest)
}

func NewNotFound(resource string) *AppError {
	return New(ErrorTypeNotFound, CodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

// NewStorage is returned for any backend failure, remote or local.
func NewStorage(err error) *AppError {
	return New(ErrorTypeStorage, CodeStorage, "storage backend error", http.StatusInternalServerError).
		WithInnerError(err)
}

// NewTranscode reports a decode or encode failure as a generic I/O error.
func NewTranscode(err error) *AppError {
	return New(ErrorTypeTranscode, CodeIO, "i/o error", http.StatusInternalServerError).
		WithInnerError(err)
}

func NewBlocking(err error) *AppError {
	return New(ErrorTypeBlocking, CodeBlocking, "blocking task failed", http.StatusInternalServerError).
		WithInnerError(err)
}

func NewInternal(err error) *AppError {
	return New(ErrorTypeInternal, CodeInternalError, "internal server error", http.StatusInternalServerError).
		WithInnerError(err)
}

// FromError converts a standard error to AppError
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternal(err)
}

// IsType reports whether err carries an AppError of the given type.
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}

// StatusOf returns the HTTP status for err, 500 when unknown.
func StatusOf(err error) int {
	appErr := FromError(err)
	if appErr == nil {
		return http.StatusOK
	}
	if appErr.HTTPStatus > 0 {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}
