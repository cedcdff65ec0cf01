package errors

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
)

var (
	// ErrInvalidCredentials is returned when email or password is incorrect.
	// The message never reveals which of the two was wrong.
	ErrInvalidCredentials = errors.New("these credentials do not match our records")
	// ErrUnauthenticated is returned when a bearer token is missing, malformed, unknown or expired.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden is returned when the caller does not own the resource.
	ErrForbidden = errors.New("this action is unauthorized")
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrPostNotFound is returned when a post is not found.
	ErrPostNotFound = errors.New("post not found")
	// ErrCommentNotFound is returned when a comment is not found.
	ErrCommentNotFound = errors.New("comment not found")
)

// ValidationError carries field level validation messages.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError builds a ValidationError with a single message.
func NewValidationError(field, message string) *ValidationError {
	v := &ValidationError{}
	v.Add(field, message)
	return v
}

// Add appends a message for field.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

// HasErrors reports whether any field failed.
func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	if !e.HasErrors() {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	first := e.Fields[keys[0]][0]
	if len(keys) == 1 && len(e.Fields[keys[0]]) == 1 {
		return first
	}
	return fmt.Sprintf("%s (and %d more errors)", first, countMessages(e.Fields)-1)
}

func countMessages(fields map[string][]string) int {
	n := 0
	for _, msgs := range fields {
		n += len(msgs)
	}
	return n
}

// RateLimitError is returned when a client is throttled.
type RateLimitError struct {
	RetryAfter int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("too many login attempts. please try again in %d seconds", e.RetryAfter)
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error      string              `json:"error"`
	Code       string              `json:"code"`
	Errors     map[string][]string `json:"errors,omitempty"`
	RetryAfter int                 `json:"retry_after,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
	Fields     map[string][]string
	RetryAfter int
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error:      e.Message,
		Code:       e.Code,
		Errors:     e.Fields,
		RetryAfter: e.RetryAfter,
	}
}

// IsServerError reports whether the error maps to a 5xx status.
func (e *HTTPError) IsServerError() bool {
	return e.StatusCode >= http.StatusInternalServerError
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		httpErr := NewHTTPError(http.StatusUnprocessableEntity, validationErr.Error(), "VALIDATION_ERROR")
		httpErr.Fields = validationErr.Fields
		return httpErr
	}

	var rateErr *RateLimitError
	if errors.As(err, &rateErr) {
		httpErr := NewHTTPError(http.StatusTooManyRequests, rateErr.Error(), "TOO_MANY_ATTEMPTS")
		httpErr.RetryAfter = rateErr.RetryAfter
		return httpErr
	}

	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrUnauthenticated):
		return NewHTTPError(http.StatusUnauthorized, ErrUnauthenticated.Error(), "UNAUTHENTICATED")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, ErrForbidden.Error(), "FORBIDDEN")
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, ErrUserNotFound.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrPostNotFound):
		return NewHTTPError(http.StatusNotFound, ErrPostNotFound.Error(), "POST_NOT_FOUND")
	case errors.Is(err, ErrCommentNotFound):
		return NewHTTPError(http.StatusNotFound, ErrCommentNotFound.Error(), "COMMENT_NOT_FOUND")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}

// Is forwards to errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As forwards to errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}
