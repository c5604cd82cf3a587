package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds. Every Error carries exactly one of them, so callers can
// use errors.Is(err, ErrNotFound) regardless of wrapping.
var (
	ErrAuth      = errors.New("authentication failed")
	ErrForbidden = errors.New("access forbidden")
	ErrNotFound  = errors.New("not found")
	ErrAPI       = errors.New("api request failed")
	ErrNetwork   = errors.New("network error")
	ErrTimeout   = errors.New("request timed out")
	ErrRange     = errors.New("out of range")
	ErrParse     = errors.New("unexpected response")
	ErrQuota     = errors.New("quota exceeded")
)

var (
	// ErrNoComments is returned when there is nothing to send to the LLM.
	ErrNoComments = errors.New("no review comments found to analyze")
	// ErrNotImage marks an attachment URL that answered with something other
	// than an image, typically an HTML sign-in page.
	ErrNotImage = errors.New("not an image")
)

// Error is a classified failure of a remote or local operation.
type Error struct {
	Kind     error
	Status   int
	Resource string
	Body     string
	Err      error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()

	switch {
	case errors.Is(e.Kind, ErrAuth):
		msg = "authentication failed: please check your access token"
	case errors.Is(e.Kind, ErrAPI) && e.Status != 0:
		msg = fmt.Sprintf("api request failed with status %d", e.Status)
	}

	if e.Resource != "" {
		msg += ": " + e.Resource
	}
	if e.Body != "" {
		msg += ": " + e.Body
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}

	return []error{e.Kind, e.Err}
}

// NewStatusError maps an HTTP status code onto the error taxonomy.
func NewStatusError(status int, resource, body string) *Error {
	kind := ErrAPI

	switch status {
	case http.StatusUnauthorized:
		kind = ErrAuth
	case http.StatusForbidden:
		kind = ErrForbidden
	case http.StatusNotFound:
		kind = ErrNotFound
	}

	return &Error{Kind: kind, Status: status, Resource: resource, Body: body}
}

// NewRangeError reports invalid input detected locally.
func NewRangeError(format string, args ...any) *Error {
	return &Error{Kind: ErrRange, Resource: fmt.Sprintf(format, args...)}
}

// IsRetryable reports whether a caller may reasonably retry the operation.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrNetwork)
}
