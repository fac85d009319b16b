package transport

import (
	"errors"
	"fmt"
)

// Kind classifies a request failure. The set is closed: classification
// happens once, here, and is never re-derived from response shape by
// callers.
//
// Kind instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Kind uint8

const (
	// KindNetwork means no response was received (connectivity loss or
	// per-attempt timeout). Transient.
	KindNetwork Kind = iota + 1
	// KindServer means the server answered with status >= 500. Transient.
	KindServer
	// KindClient means a non-401 4xx. Never retried; surfaced verbatim.
	KindClient
	// KindUnauthorized means a 401 that has not yet been through the
	// refresh hand-off.
	KindUnauthorized
	// KindSessionExpired means a 401 that survived a failed or
	// already-attempted refresh. Terminal for the request.
	KindSessionExpired
)

// ErrSessionExpired is an exported constant or variable used by the drive client.
var ErrSessionExpired = errors.New("session expired")

const (
	genericMessage = "An error occurred. Please try again."
	networkMessage = "No response from server. Please check your connection."
	expiredMessage = "Session expired. Please login again."
)

// Error is the single failure type produced by this package. Message is
// always human-readable: the server's message field when present, else a
// generic fallback.
//
// Error instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Error struct {
	Kind       Kind
	StatusCode int
	Message    string
	Err        error
}

// Error describes the error operation and its observable behavior.
//
// Error may return an error when input validation, dependency calls, or security checks fail.
// Error does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("transport: %s (status %d)", e.Message, e.StatusCode)
	}
	return "transport: " + e.Message
}

// Unwrap describes the unwrap operation and its observable behavior.
//
// Unwrap may return an error when input validation, dependency calls, or security checks fail.
// Unwrap does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Error) Unwrap() error {
	return e.Err
}

// Transient reports whether the failure is expected to be recoverable by
// retrying.
func (e *Error) Transient() bool {
	return e.Kind == KindNetwork || e.Kind == KindServer
}

func sessionExpired(cause error) *Error {
	return &Error{
		Kind:       KindSessionExpired,
		StatusCode: 401,
		Message:    expiredMessage,
		Err:        errors.Join(ErrSessionExpired, cause),
	}
}
