package goDrive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/ferndrop/goDrive/session"
	"github.com/ferndrop/goDrive/token"
	"github.com/ferndrop/goDrive/transport"
)

// Endpoint paths on the identity/storage backend.
const (
	pathLogin        = "auth/login"
	pathRefresh      = "auth/refresh"
	pathLogout       = "auth/logout"
	pathProfile      = "user/profile"
	pathCreateFolder = "user/create-folder"
	pathRenameFolder = "user/rename-folder"
	pathFetchHome    = "user/fetch-home"
	pathChildFolders = "user/fetch-child-folders/"
)

// Client defines a public type used by goDrive APIs.
//
// Client instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Client struct {
	config      Config
	plain       *transport.Client
	authed      *transport.AuthClient
	store       session.Store
	coordinator *refreshCoordinator
	metrics     *Metrics
	logger      *slog.Logger

	mu      sync.Mutex
	session session.Session
	version uint64

	listenerMu       sync.Mutex
	invalidListeners []func(err error)
	onSessionExpired func(err error)
}

/*
====================================
SESSION STATE
====================================
*/

// Session returns a snapshot of the current session. Mutations are
// serialized; a snapshot never observes a partially-applied transition.
func (c *Client) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Clone()
}

// AccessToken implements [transport.TokenSource]: the bearer token is read
// fresh here at send time, never cached by the transport.
func (c *Client) AccessToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.AccessToken
}

// SessionVersion increments on every session mutation. The route guard uses
// it to deduplicate profile fetches per session generation.
func (c *Client) SessionVersion() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

// TokenInfo inspects the current access token's claims without verifying
// the signature. Diagnostics only; authorization stays with the server.
func (c *Client) TokenInfo() (token.Info, error) {
	tok := c.AccessToken()
	if tok == "" {
		return token.Info{}, ErrNotAuthenticated
	}
	return token.Inspect(tok)
}

// setSession installs s as the current session and writes the persisted
// subset. The write happens before the caller surfaces any result. A failed
// write is logged, not returned: losing durability must not invalidate an
// otherwise successful transition.
func (c *Client) setSession(ctx context.Context, s session.Session) {
	s.Normalize()

	c.mu.Lock()
	c.session = s
	c.version++
	c.mu.Unlock()

	if err := c.store.Save(ctx, &s); err != nil {
		c.logger.WarnContext(ctx, "session persist failed", "err", err)
	}
}

func (c *Client) clearSession(ctx context.Context) {
	c.setSession(ctx, session.Session{})
}

// registerInvalidListener subscribes to session invalidation (explicit
// logout or terminal refresh failure). err is nil for logout.
func (c *Client) registerInvalidListener(fn func(err error)) {
	c.listenerMu.Lock()
	c.invalidListeners = append(c.invalidListeners, fn)
	c.listenerMu.Unlock()
}

func (c *Client) notifyInvalidated(err error) {
	c.listenerMu.Lock()
	listeners := make([]func(error), len(c.invalidListeners))
	copy(listeners, c.invalidListeners)
	c.listenerMu.Unlock()

	for _, fn := range listeners {
		fn(err)
	}
}

/*
====================================
AUTH OPERATIONS
====================================
*/

// Rehydrate restores the session from the durable store. It must run before
// any protected route renders. The restored session may carry a token but no
// user; the route guard lazily fetches the profile in that case.
//
// Rehydrate may return an error when input validation, dependency calls, or security checks fail.
// Rehydrate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Rehydrate(ctx context.Context) (Session, error) {
	stored, err := c.store.Load(ctx)
	if err != nil {
		return Session{}, err
	}
	stored.Normalize()

	c.mu.Lock()
	c.session = *stored
	c.version++
	snapshot := c.session.Clone()
	c.mu.Unlock()

	c.metrics.Inc(MetricRehydrate)
	if snapshot.IsAuthenticated {
		if info, err := token.Inspect(snapshot.AccessToken); err == nil {
			c.logger.DebugContext(ctx, "session rehydrated",
				"subject", info.Subject,
				"expiresAt", info.ExpiresAt,
				"hasUser", snapshot.User != nil,
			)
		}
	}
	return snapshot, nil
}

// Login authenticates against /auth/login and installs the returned session.
// The refresh credential arrives as a server cookie and lands in the shared
// jar.
//
// Login may return an error when input validation, dependency calls, or security checks fail.
// Login does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Login(ctx context.Context, creds Credentials) (Session, error) {
	if err := creds.Validate(); err != nil {
		return c.Session(), fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}

	var resp loginResponse
	err := c.plain.Do(ctx, http.MethodPost, pathLogin, creds, &resp)
	if err != nil {
		c.metrics.Inc(MetricLoginFailure)
		var terr *transport.Error
		if errors.As(err, &terr) && (terr.StatusCode == http.StatusBadRequest || terr.StatusCode == http.StatusUnauthorized) {
			return c.Session(), fmt.Errorf("%w: %s", ErrInvalidCredentials, terr.Message)
		}
		return c.Session(), err
	}
	if resp.AccessToken == "" {
		c.metrics.Inc(MetricLoginFailure)
		return c.Session(), fmt.Errorf("%w: login response carried no access token", ErrInvalidCredentials)
	}

	c.setSession(ctx, session.Session{
		AccessToken:     resp.AccessToken,
		User:            resp.User,
		IsAuthenticated: true,
	})
	c.metrics.Inc(MetricLoginSuccess)
	c.logger.DebugContext(ctx, "login succeeded", "hasUser", resp.User != nil)
	return c.Session(), nil
}

// Refresh rotates the access token through the shared refresh coordinator,
// so an explicit call and interceptor-driven refreshes can never race into
// two outstanding refresh calls.
//
// Refresh may return an error when input validation, dependency calls, or security checks fail.
// Refresh does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Refresh(ctx context.Context) (Session, error) {
	if _, err := c.coordinator.AwaitRefresh(ctx); err != nil {
		return c.Session(), err
	}
	return c.Session(), nil
}

// doRefresh is the coordinator's single outstanding refresh call. On success
// the new session is installed and persisted before the token is released to
// any waiter.
func (c *Client) doRefresh(ctx context.Context) (string, error) {
	var resp loginResponse
	err := c.plain.Do(ctx, http.MethodPost, pathRefresh, nil, &resp)
	if err != nil {
		c.metrics.Inc(MetricRefreshFailure)
		return "", fmt.Errorf("%w: %s", ErrRefreshFailed, ErrorMessage(err))
	}
	if resp.AccessToken == "" {
		c.metrics.Inc(MetricRefreshFailure)
		return "", fmt.Errorf("%w: refresh response carried no access token", ErrRefreshFailed)
	}

	c.setSession(ctx, session.Session{
		AccessToken:     resp.AccessToken,
		User:            resp.User,
		IsAuthenticated: true,
	})
	c.metrics.Inc(MetricRefreshSuccess)
	return resp.AccessToken, nil
}

// onRefreshExpired is the terminal path of a failed refresh cycle: clear the
// shared session, tell the guards, and fire the navigation handler exactly
// once for the whole queue of failed requests.
func (c *Client) onRefreshExpired(err error) {
	ctx := context.Background()
	c.clearSession(ctx)
	c.metrics.Inc(MetricSessionExpired)
	c.notifyInvalidated(err)

	c.listenerMu.Lock()
	handler := c.onSessionExpired
	c.listenerMu.Unlock()
	if handler != nil {
		handler(err)
	}
}

// Logout notifies the server on a best-effort basis and always clears the
// local session. A server failure here silently diverges server and client
// state until the next failed authenticated call; that trade-off is
// deliberate — logout must never strand the user in a session they asked to
// leave.
//
// Logout may return an error when input validation, dependency calls, or security checks fail.
// Logout does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Logout(ctx context.Context) {
	tok := c.AccessToken()
	if tok != "" {
		if err := c.plain.DoBearer(ctx, http.MethodPost, pathLogout, tok, nil, nil); err != nil {
			c.logger.DebugContext(ctx, "server logout failed, clearing local session anyway", "err", err)
		}
	}

	c.clearSession(ctx)
	c.metrics.Inc(MetricLogout)
	c.notifyInvalidated(nil)
}

// FetchUser loads the profile for the current session and stores it.
// Idempotent and safe to call repeatedly; concurrent deduplication per
// session version is the route guard's job.
//
// FetchUser may return an error when input validation, dependency calls, or security checks fail.
// FetchUser does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) FetchUser(ctx context.Context) (*UserProfile, error) {
	if c.AccessToken() == "" {
		return nil, ErrNotAuthenticated
	}

	var resp profileResponse
	if err := c.authed.Do(ctx, http.MethodGet, pathProfile, nil, &resp); err != nil {
		c.metrics.Inc(MetricProfileFetchFailure)
		return nil, err
	}
	if resp.User == nil {
		c.metrics.Inc(MetricProfileFetchFailure)
		return nil, fmt.Errorf("profile response carried no user")
	}

	c.mu.Lock()
	current := c.session.Clone()
	c.mu.Unlock()
	current.User = resp.User
	c.setSession(ctx, current)

	c.metrics.Inc(MetricProfileFetchSuccess)
	u := *resp.User
	return &u, nil
}

/*
====================================
FOLDER OPERATIONS
====================================
*/

// CreateFolder describes the createfolder operation and its observable behavior.
//
// CreateFolder may return an error when input validation, dependency calls, or security checks fail.
// CreateFolder does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) CreateFolder(ctx context.Context, name, parentID string) (*Folder, error) {
	if err := validation.Validate(name, validation.Required, validation.Length(1, 255)); err != nil {
		return nil, fmt.Errorf("folder name: %w", err)
	}

	var resp folderResponse
	req := createFolderRequest{Name: name, FolderID: parentID}
	if err := c.authed.Do(ctx, http.MethodPost, pathCreateFolder, req, &resp); err != nil {
		return nil, err
	}
	return &resp.Folder, nil
}

// RenameFolder describes the renamefolder operation and its observable behavior.
//
// RenameFolder may return an error when input validation, dependency calls, or security checks fail.
// RenameFolder does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) RenameFolder(ctx context.Context, folderID, name string) (*Folder, error) {
	if err := validation.Validate(folderID, validation.Required); err != nil {
		return nil, fmt.Errorf("folder id: %w", err)
	}
	if err := validation.Validate(name, validation.Required, validation.Length(1, 255)); err != nil {
		return nil, fmt.Errorf("folder name: %w", err)
	}

	var resp folderResponse
	req := renameFolderRequest{FolderID: folderID, Name: name}
	if err := c.authed.Do(ctx, http.MethodPatch, pathRenameFolder, req, &resp); err != nil {
		return nil, err
	}
	return &resp.Folder, nil
}

// FetchHome describes the fetchhome operation and its observable behavior.
//
// FetchHome may return an error when input validation, dependency calls, or security checks fail.
// FetchHome does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) FetchHome(ctx context.Context) ([]Folder, error) {
	var resp folderListResponse
	if err := c.authed.Do(ctx, http.MethodGet, pathFetchHome, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Folders, nil
}

// FetchChildFolders describes the fetchchildfolders operation and its observable behavior.
//
// FetchChildFolders may return an error when input validation, dependency calls, or security checks fail.
// FetchChildFolders does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) FetchChildFolders(ctx context.Context, folderID string) ([]Folder, error) {
	if err := validation.Validate(folderID, validation.Required); err != nil {
		return nil, fmt.Errorf("folder id: %w", err)
	}

	var resp folderListResponse
	if err := c.authed.Do(ctx, http.MethodGet, pathChildFolders+folderID, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Folders, nil
}

/*
====================================
OBSERVABILITY
====================================
*/

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) MetricsSnapshot() MetricsSnapshot {
	if c == nil || c.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return c.metrics.Snapshot()
}
