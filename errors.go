package goDrive

import (
	"errors"

	"github.com/ferndrop/goDrive/transport"
)

var (
	// ErrInvalidCredentials is an exported constant or variable used by the drive client.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrRefreshFailed is an exported constant or variable used by the drive client.
	ErrRefreshFailed = errors.New("refresh failed")
	// ErrNotAuthenticated is an exported constant or variable used by the drive client.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrClientNotReady is an exported constant or variable used by the drive client.
	ErrClientNotReady = errors.New("client not ready")
	// ErrBuilderReused is an exported constant or variable used by the drive client.
	ErrBuilderReused = errors.New("builder already built")
)

// ErrSessionExpired is the terminal error for requests whose 401 survived a
// failed or already-attempted refresh. It is the only error with a side
// effect beyond the failing request: the shared session is cleared and the
// session-expired handler fires once per refresh cycle.
var ErrSessionExpired = transport.ErrSessionExpired

// IsTransient reports whether err is a transport failure expected to be
// recoverable by retrying (connectivity loss, timeout, 5xx). Transient
// failures are retried internally; seeing one here means the retry budget
// was exhausted.
func IsTransient(err error) bool {
	var terr *transport.Error
	return errors.As(err, &terr) && terr.Transient()
}

// ErrorMessage extracts the human-readable message carried by a transport
// failure, falling back to err.Error() for everything else. The UI layer is
// expected to display it verbatim.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var terr *transport.Error
	if errors.As(err, &terr) && terr.Message != "" {
		return terr.Message
	}
	return err.Error()
}
