package transport

import (
	"context"
	"errors"
)

// TokenSource yields the current access token. It is consulted fresh on
// every send, never cached at construction, so a token rotated by a
// concurrent refresh is picked up by the next attempt.
type TokenSource interface {
	AccessToken() string
}

// RefreshCoordinator is the single-flight refresh the authenticated client
// hands off to on a 401. AwaitRefresh blocks until the shared refresh cycle
// settles and returns the new token or the cycle's error.
type RefreshCoordinator interface {
	AwaitRefresh(ctx context.Context) (string, error)
}

// AuthClient is the authenticated variant of [Client]: it signs every
// request with the current bearer token and recovers from token expiry by
// awaiting the shared refresh and replaying the request once.
//
// AuthClient instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuthClient struct {
	base    *Client
	tokens  TokenSource
	refresh RefreshCoordinator

	// OnReplay fires when a request is re-sent after a refresh, for metrics.
	OnReplay func()
}

// NewAuthClient describes the newauthclient operation and its observable behavior.
//
// NewAuthClient may return an error when input validation, dependency calls, or security checks fail.
// NewAuthClient does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewAuthClient(base *Client, tokens TokenSource, refresh RefreshCoordinator) (*AuthClient, error) {
	if base == nil {
		return nil, errors.New("transport: nil base client")
	}
	if tokens == nil {
		return nil, errors.New("transport: nil token source")
	}
	if refresh == nil {
		return nil, errors.New("transport: nil refresh coordinator")
	}
	return &AuthClient{base: base, tokens: tokens, refresh: refresh}, nil
}

// Do sends one authenticated request. The flow on a 401 is strict:
//
//  1. The request is handed to the coordinator; many requests may do this
//     concurrently, all sharing one refresh call.
//  2. On a delivered token the request is re-signed and re-sent exactly
//     once.
//  3. A coordinator failure, or a second 401 on the replay, is terminal:
//     the request fails with [KindSessionExpired] and is never replayed
//     again.
//
// Transient retrying below this level is unchanged: each of the two logical
// sends carries its own retry budget for network/5xx failures.
//
// Do may return an error when input validation, dependency calls, or security checks fail.
// Do does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (a *AuthClient) Do(ctx context.Context, method, path string, body, out any) error {
	err := a.base.DoBearer(ctx, method, path, a.tokens.AccessToken(), body, out)

	var terr *Error
	if err == nil || !errors.As(err, &terr) || terr.Kind != KindUnauthorized {
		return err
	}

	token, rerr := a.refresh.AwaitRefresh(ctx)
	if rerr != nil {
		return sessionExpired(rerr)
	}

	if a.OnReplay != nil {
		a.OnReplay()
	}
	err = a.base.DoBearer(ctx, method, path, token, body, out)
	if errors.As(err, &terr) && terr.Kind == KindUnauthorized {
		// Already replayed once; a fresh token that still yields 401 means
		// the session is gone.
		return sessionExpired(terr)
	}
	return err
}
