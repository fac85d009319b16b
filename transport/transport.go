package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
)

const (
	// DefaultTimeout is an exported constant or variable used by the drive client.
	DefaultTimeout = 30 * time.Second
	// DefaultMaxRetries is an exported constant or variable used by the drive client.
	DefaultMaxRetries = 3
	// DefaultRetryBaseDelay is an exported constant or variable used by the drive client.
	DefaultRetryBaseDelay = 100 * time.Millisecond

	maxErrorBodyBytes = 1 << 20
)

// Config defines a public type used by goDrive APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	RetryBaseDelay time.Duration
	UserAgent      string

	// Jar holds the server-issued refresh cookie. Plain and authenticated
	// clients must share one jar so the refresh credential set at login is
	// presented on /auth/refresh.
	Jar http.CookieJar

	Logger *slog.Logger

	// OnRetry fires once per transient retry, for metrics.
	OnRetry func()
}

// Client is the unauthenticated HTTP client: login, refresh, and logout run
// through it. Authenticated traffic goes through [AuthClient] on top of it.
//
// Client instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Client struct {
	baseURL        *url.URL
	http           *http.Client
	maxRetries     int
	retryBaseDelay time.Duration
	userAgent      string
	logger         *slog.Logger
	onRetry        func()
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("transport: BaseURL must be set")
	}
	if !strings.HasSuffix(cfg.BaseURL, "/") {
		cfg.BaseURL += "/"
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, errors.New("transport: BaseURL is not a valid URL")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries < 0 {
		return nil, errors.New("transport: MaxRetries must be >= 0")
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = DefaultRetryBaseDelay
	}
	jar := cfg.Jar
	if jar == nil {
		jar, err = cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: cfg.Timeout,
			Jar:     jar,
		},
		maxRetries:     cfg.MaxRetries,
		retryBaseDelay: cfg.RetryBaseDelay,
		userAgent:      cfg.UserAgent,
		logger:         logger,
		onRetry:        cfg.OnRetry,
	}, nil
}

// Jar exposes the cookie jar so a second client can share the refresh
// cookie.
func (c *Client) Jar() http.CookieJar {
	return c.http.Jar
}

// Do describes the do operation and its observable behavior.
//
// Do may return an error when input validation, dependency calls, or security checks fail.
// Do does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	return c.DoBearer(ctx, method, path, "", body, out)
}

// DoBearer sends one logical request, retrying transient failures up to the
// configured budget with exponentially increasing delay. When token is
// non-empty it is attached as an Authorization bearer header on every
// attempt.
//
// DoBearer may return an error when input validation, dependency calls, or security checks fail.
// DoBearer does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) DoBearer(ctx context.Context, method, path, token string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return &Error{Kind: KindClient, Message: genericMessage, Err: err}
		}
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.retryBaseDelay
	bo.RandomizationFactor = 0
	bo.Multiplier = 2
	bo.MaxInterval = 30 * time.Second
	bo.MaxElapsedTime = 0

	for attempt := 0; ; attempt++ {
		err := c.attempt(ctx, method, path, token, payload, out)
		if err == nil {
			return nil
		}

		var terr *Error
		if !errors.As(err, &terr) {
			return err
		}
		if !terr.Transient() || attempt >= c.maxRetries {
			return terr
		}

		delay := bo.NextBackOff()
		c.logger.DebugContext(ctx, "retrying transient failure",
			"method", method,
			"path", path,
			"attempt", attempt+1,
			"delay", delay,
			"status", terr.StatusCode,
		)
		if c.onRetry != nil {
			c.onRetry()
		}

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return &Error{Kind: KindNetwork, Message: networkMessage, Err: ctx.Err()}
		}
	}
}

// attempt performs a single HTTP round trip and classifies its outcome.
func (c *Client) attempt(ctx context.Context, method, path, token string, payload []byte, out any) error {
	u, err := c.baseURL.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return &Error{Kind: KindClient, Message: genericMessage, Err: err}
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return &Error{Kind: KindClient, Message: genericMessage, Err: err}
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Kind: KindNetwork, Message: networkMessage, Err: err}
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBodyBytes))
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode >= 500:
		return &Error{Kind: KindServer, StatusCode: resp.StatusCode, Message: bodyMessage(resp.Body)}
	case resp.StatusCode == http.StatusUnauthorized:
		return &Error{Kind: KindUnauthorized, StatusCode: resp.StatusCode, Message: bodyMessage(resp.Body)}
	case resp.StatusCode >= 400:
		return &Error{Kind: KindClient, StatusCode: resp.StatusCode, Message: bodyMessage(resp.Body)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			// Empty success body with a caller expecting one: leave out as-is.
			return nil
		}
		return &Error{Kind: KindServer, StatusCode: resp.StatusCode, Message: genericMessage, Err: err}
	}
	return nil
}

// bodyMessage extracts the server's message field, falling back to a generic
// string when the body is absent or not the expected shape.
func bodyMessage(r io.Reader) string {
	var apiErr struct {
		Message string `json:"message"`
	}
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBodyBytes))
	if err != nil || len(data) == 0 {
		return genericMessage
	}
	if err := json.Unmarshal(data, &apiErr); err != nil || apiErr.Message == "" {
		return genericMessage
	}
	return apiErr.Message
}
