package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformed is an exported constant or variable used by the drive client.
var ErrMalformed = errors.New("malformed access token")

// Info is the client-visible view of an access token's claims.
//
// Info instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Info struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Inspect parses raw without verifying its signature and returns the claims
// the client cares about. Tokens whose claims omit exp or iat yield zero
// times rather than errors.
//
// Inspect may return an error when input validation, dependency calls, or security checks fail.
// Inspect does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func Inspect(raw string) (Info, error) {
	if raw == "" {
		return Info{}, ErrMalformed
	}

	parser := jwt.NewParser()
	claims := jwt.RegisteredClaims{}
	if _, _, err := parser.ParseUnverified(raw, &claims); err != nil {
		return Info{}, errors.Join(ErrMalformed, err)
	}

	info := Info{Subject: claims.Subject}
	if claims.IssuedAt != nil {
		info.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info, nil
}

// Expired reports whether the token's exp claim has passed at now. Tokens
// without an exp claim never report expired; the server remains the
// authority either way.
func (i Info) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && now.After(i.ExpiresAt)
}
