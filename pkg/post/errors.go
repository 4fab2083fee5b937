package post

import (
	"errors"
	"fmt"
	"net/http"
)

// NotFoundError is returned when no post exists for an id.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("post %d not found", e.ID)
}

// StatusCode returns the HTTP status code for this error.
func (e *NotFoundError) StatusCode() int {
	return http.StatusNotFound
}

// Hint returns a user-friendly suggestion for resolving this error.
func (e *NotFoundError) Hint() string {
	return fmt.Sprintf("Check that post %d exists. Use GET /api/posts to list available posts.", e.ID)
}

// ValidationError is returned when a guard check fails.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
	}
	return e.Message
}

// StatusCode returns the HTTP status code for this error.
func (e *ValidationError) StatusCode() int {
	return http.StatusBadRequest
}

// Hint returns a user-friendly suggestion for resolving this error.
func (e *ValidationError) Hint() string {
	if e.Field != "" {
		return fmt.Sprintf("Check the value of field %q in your request body.", e.Field)
	}
	return "Check your request body format and required fields."
}

// ConflictError is returned when an update carries a version that no longer
// matches the stored one.
type ConflictError struct {
	ID      int64
	Version int64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("post %d was modified concurrently (version %d is stale)", e.ID, e.Version)
}

// StatusCode returns the HTTP status code for this error.
func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Hint returns a user-friendly suggestion for resolving this error.
func (e *ConflictError) Hint() string {
	return fmt.Sprintf("Fetch post %d again and retry the update with its current version.", e.ID)
}

// StatusCodeError is an error that carries an HTTP status code.
type StatusCodeError interface {
	error
	StatusCode() int
}

// HintError is an error that carries a resolution hint.
type HintError interface {
	error
	Hint() string
}

// ErrorResponse is the JSON body written for failed requests.
type ErrorResponse struct {
	// Error is a short machine-readable code
	Error string `json:"error"`
	// Message is a human-readable description
	Message string `json:"message"`
	// Field is the field that failed validation, if any
	Field string `json:"field,omitempty"`
	// Hint suggests how to resolve the error
	Hint string `json:"hint,omitempty"`
	// StatusCode mirrors the HTTP status
	StatusCode int `json:"-"`
}

// ToErrorResponse converts err into an ErrorResponse. Unknown errors become
// a generic 500 without leaking their text.
func ToErrorResponse(err error) *ErrorResponse {
	var (
		notFound   *NotFoundError
		validation *ValidationError
		conflict   *ConflictError
	)

	switch {
	case errors.As(err, &notFound):
		return &ErrorResponse{
			Error:      "not_found",
			Message:    notFound.Error(),
			Hint:       notFound.Hint(),
			StatusCode: notFound.StatusCode(),
		}
	case errors.As(err, &validation):
		return &ErrorResponse{
			Error:      "validation_error",
			Message:    validation.Error(),
			Field:      validation.Field,
			Hint:       validation.Hint(),
			StatusCode: validation.StatusCode(),
		}
	case errors.As(err, &conflict):
		return &ErrorResponse{
			Error:      "version_conflict",
			Message:    conflict.Error(),
			Hint:       conflict.Hint(),
			StatusCode: conflict.StatusCode(),
		}
	default:
		return &ErrorResponse{
			Error:      "internal_error",
			Message:    "An internal error occurred",
			StatusCode: http.StatusInternalServerError,
		}
	}
}
