package goDrive

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// GuardState defines a public type used by goDrive APIs.
//
// GuardState instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type GuardState uint8

const (
	// GuardChecking means the session is authenticated but the profile has
	// not been fetched yet; render a neutral loading placeholder.
	GuardChecking GuardState = iota
	// GuardAuthenticated is an exported constant or variable used by the drive client.
	GuardAuthenticated
	// GuardUnauthenticated is an exported constant or variable used by the drive client.
	GuardUnauthenticated
)

// String describes the string operation and its observable behavior.
//
// String may return an error when input validation, dependency calls, or security checks fail.
// String does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s GuardState) String() string {
	switch s {
	case GuardChecking:
		return "checking"
	case GuardAuthenticated:
		return "authenticated"
	case GuardUnauthenticated:
		return "unauthenticated"
	default:
		return fmt.Sprintf("guardstate(%d)", uint8(s))
	}
}

// Decision is the presentation-agnostic outcome of a guard check.
//
// Decision instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Decision uint8

const (
	// ShowLoading means neither protected content nor a redirect: a fetch
	// is still deciding the session's fate.
	ShowLoading Decision = iota
	// ShowContent permits rendering protected children.
	ShowContent
	// RedirectToLogin sends the caller to the login entry point; the
	// originally requested destination is remembered for post-login return.
	RedirectToLogin
)

// RouteGuard gates which views may render based on authentication state. It
// is a decision function over session state, not a renderer: callers map
// decisions onto their own presentation (HTTP middleware, TUI, tests).
//
// A guard registers itself with its client: explicit logout and terminal
// refresh failure force Unauthenticated from any state.
//
// RouteGuard instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RouteGuard struct {
	client    *Client
	loginPath string

	fetchGroup singleflight.Group

	mu             sync.Mutex
	state          GuardState
	returnTo       string
	fetchedVersion uint64
}

// NewRouteGuard derives the guard's initial state from the client's current
// (typically just-rehydrated) session: Checking when a token exists without
// user data, Authenticated when both exist, Unauthenticated otherwise.
//
// NewRouteGuard may return an error when input validation, dependency calls, or security checks fail.
// NewRouteGuard does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewRouteGuard(client *Client) (*RouteGuard, error) {
	if client == nil {
		return nil, ErrClientNotReady
	}

	g := &RouteGuard{
		client:    client,
		loginPath: client.config.Guard.LoginPath,
	}
	g.state = deriveState(client.Session())
	client.registerInvalidListener(g.invalidate)
	return g, nil
}

func deriveState(s Session) GuardState {
	switch {
	case s.IsAuthenticated && s.User == nil:
		return GuardChecking
	case s.IsAuthenticated:
		return GuardAuthenticated
	default:
		return GuardUnauthenticated
	}
}

// State describes the state operation and its observable behavior.
//
// State may return an error when input validation, dependency calls, or security checks fail.
// State does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (g *RouteGuard) State() GuardState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// LoginPath returns the login entry point redirects target.
func (g *RouteGuard) LoginPath() string {
	return g.loginPath
}

// ReturnTo reports the destination remembered by the most recent redirect
// decision, for post-login return.
func (g *RouteGuard) ReturnTo() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.returnTo
}

// invalidate is the logout / session-expired hook: any state collapses to
// Unauthenticated.
func (g *RouteGuard) invalidate(error) {
	g.mu.Lock()
	g.state = GuardUnauthenticated
	g.mu.Unlock()
}

// Decide evaluates the guard for a navigation to destination without
// blocking. When the session needs a profile fetch the fetch is kicked off
// in the background and ShowLoading is returned; a later Decide observes the
// settled state.
//
// Decide may return an error when input validation, dependency calls, or security checks fail.
// Decide does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (g *RouteGuard) Decide(ctx context.Context, destination string) Decision {
	switch g.sync(destination) {
	case GuardAuthenticated:
		return ShowContent
	case GuardUnauthenticated:
		return RedirectToLogin
	default:
		go g.resolveChecking(context.WithoutCancel(ctx))
		return ShowLoading
	}
}

// Authorize evaluates the guard for a navigation to destination, blocking
// through the profile fetch when the session is in Checking. It never
// returns ShowLoading.
//
// Authorize may return an error when input validation, dependency calls, or security checks fail.
// Authorize does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (g *RouteGuard) Authorize(ctx context.Context, destination string) Decision {
	switch g.sync(destination) {
	case GuardAuthenticated:
		return ShowContent
	case GuardUnauthenticated:
		return RedirectToLogin
	}

	g.resolveChecking(ctx)
	if g.State() == GuardAuthenticated {
		return ShowContent
	}

	g.mu.Lock()
	if destination != "" {
		g.returnTo = destination
	}
	g.mu.Unlock()
	return RedirectToLogin
}

// sync reconciles the guard with the client's session before a decision and
// records the requested destination when it will be redirected.
func (g *RouteGuard) sync(destination string) GuardState {
	derived := deriveState(g.client.Session())

	g.mu.Lock()
	defer g.mu.Unlock()

	g.state = derived
	if g.state == GuardUnauthenticated && destination != "" {
		g.returnTo = destination
	}
	return g.state
}

// resolveChecking performs the lazy profile fetch for a rehydrated session.
// Concurrent callers share one fetch via singleflight, and the session
// version stamp keeps one session generation from ever fetching twice.
func (g *RouteGuard) resolveChecking(ctx context.Context) {
	version := g.client.SessionVersion()

	g.mu.Lock()
	alreadyFetched := g.fetchedVersion == version && version != 0
	g.mu.Unlock()
	if alreadyFetched {
		return
	}

	_, err, _ := g.fetchGroup.Do("profile", func() (any, error) {
		u, err := g.client.FetchUser(ctx)
		if err != nil {
			return nil, err
		}
		return u, nil
	})

	g.mu.Lock()
	defer g.mu.Unlock()
	g.fetchedVersion = version
	if err != nil {
		g.state = GuardUnauthenticated
	} else {
		g.state = GuardAuthenticated
	}
	if err != nil {
		// Per contract: a failed profile fetch clears the session so a
		// reload lands directly in Unauthenticated.
		g.client.clearSession(context.WithoutCancel(ctx))
	}
}
