package api

import (
	"errors"
	"fmt"
)

// AuthError reports rejected credentials or an invalidated session.
// When SessionExpired is set the dispatcher has already erased the stored
// credential and notified the invalidation hook; callers only need to
// surface the message.
type AuthError struct {
	Message        string
	SessionExpired bool
}

func (e *AuthError) Error() string {
	if e.SessionExpired {
		return "session expired, log in again"
	}
	if e.Message != "" {
		return e.Message
	}
	return "authentication failed"
}

// NetworkError reports an unreachable backend or a timed-out request
type NetworkError struct {
	Err     error
	Timeout bool
}

func (e *NetworkError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("request timed out: %v", e.Err)
	}
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError reports a non-auth HTTP failure from the backend
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	switch {
	case e.Status == 0:
		return fmt.Sprintf("server error: %s", e.Message)
	case e.Message != "":
		return fmt.Sprintf("server error %d: %s", e.Status, e.Message)
	default:
		return fmt.Sprintf("server error %d", e.Status)
	}
}

// ValidationError reports client-side input rejected before any
// request was sent
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// IsUnauthorized reports whether err is an authorization failure
func IsUnauthorized(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// IsTimeout reports whether err is a request timeout
func IsTimeout(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr) && netErr.Timeout
}
