package api

import (
	"errors"
	"fmt"
)

// Sentinel and typed errors for transport-level reporting.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrOffline      = errors.New("offline")
	// ErrInvalidImage means the service accepted the upload but could not decode it.
	ErrInvalidImage = errors.New("invalid image")
)

// RateLimitedError includes optional retry-after seconds.
type RateLimitedError struct {
	RetryAfterSeconds int
	Remote            ErrorBody
}

func (e RateLimitedError) Error() string {
	if e.RetryAfterSeconds > 0 {
		return fmt.Sprintf("rate limited, retry after %ds: %s", e.RetryAfterSeconds, e.Remote.Message())
	}
	return fmt.Sprintf("rate limited: %s", e.Remote.Message())
}

// RemoteError wraps non-specific remote errors with status code and optional request ID.
type RemoteError struct {
	StatusCode int
	RequestID  string
	Remote     ErrorBody
}

func (e RemoteError) Error() string {
	msg := e.Remote.Message()
	switch {
	case msg != "" && e.RequestID != "":
		return fmt.Sprintf("remote error %d: %s [request_id=%s]", e.StatusCode, msg, e.RequestID)
	case msg != "":
		return fmt.Sprintf("remote error %d: %s", e.StatusCode, msg)
	default:
		return fmt.Sprintf("remote error %d", e.StatusCode)
	}
}
