package apmec

import (
	"errors"
	"fmt"
	"net/http"
)

// NotFoundError is returned when the orchestration API answers 404.
type NotFoundError struct {
	Kind Kind
	ID   string
	// Message is the server supplied explanation, if any.
	Message string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Kind.Plural())
	}
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// IsNotFound reports whether err is, or wraps, a *NotFoundError.
func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr)
}

// StatusError is a non-2xx answer other than 404.
type StatusError struct {
	StatusCode int
	// Message is extracted from the error envelope of the response.
	Message string
	// Body is the raw response body.
	Body string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s (status code = %d): %s", StatusCodeRangeOf(e.StatusCode), e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s (status code = %d)", StatusCodeRangeOf(e.StatusCode), e.StatusCode)
}

// Transient reports whether retrying later could succeed.
func (e *StatusError) Transient() bool {
	switch e.StatusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return true
	}
	return e.StatusCode >= 500
}

// DecodeError is returned when a response body is not the expected JSON.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: malformed response: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// TransportError wraps failures to reach the API at all (DNS, refused
// connections, TLS, timeouts).
type TransportError struct {
	Op       string
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransient reports whether err is a failure the next poll may not see:
// transport failures, malformed responses, 5xx, 408 and 429.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return true
	}
	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		return true
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Transient()
	}
	return false
}
