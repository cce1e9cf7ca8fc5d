package rest

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials is returned by the session store when the
	// login endpoint rejects the submitted email/password pair.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNotAuthenticated is returned for operations that require a
	// signed-in user before any network round-trip is attempted.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrSessionExpired is returned when a request other than the
	// identity bootstrap calls comes back 401. Local session state has
	// already been torn down by the time callers see it.
	ErrSessionExpired = errors.New("session expired")
)

// APIError is a structured rejection from the server. Detail carries
// the server message verbatim when one was present.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

// NetworkError wraps a transport-level failure: timeout, refused
// connection, unreachable host.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network failure during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }
