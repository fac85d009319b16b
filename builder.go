package goDrive

import (
	"log/slog"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/ferndrop/goDrive/session"
	"github.com/ferndrop/goDrive/transport"
)

// Builder defines a public type used by goDrive APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	store  session.Store
	redis  *redis.Client
	jar    http.CookieJar
	logger *slog.Logger

	onSessionExpired func(err error)

	built bool
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig may return an error when input validation, dependency calls, or security checks fail.
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithBaseURL describes the withbaseurl operation and its observable behavior.
//
// WithBaseURL may return an error when input validation, dependency calls, or security checks fail.
// WithBaseURL does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithBaseURL(baseURL string) *Builder {
	b.config.Transport.BaseURL = baseURL
	return b
}

// WithSessionStore describes the withsessionstore operation and its observable behavior.
//
// WithSessionStore may return an error when input validation, dependency calls, or security checks fail.
// WithSessionStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithSessionStore(store session.Store) *Builder {
	b.store = store
	return b
}

// WithRedis is a convenience for deployments persisting the session in
// Redis: the store is built from the client using Session.RedisPrefix.
//
// WithRedis may return an error when input validation, dependency calls, or security checks fail.
// WithRedis does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithCookieJar describes the withcookiejar operation and its observable behavior.
//
// WithCookieJar may return an error when input validation, dependency calls, or security checks fail.
// WithCookieJar does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithCookieJar(jar http.CookieJar) *Builder {
	b.jar = jar
	return b
}

// WithLogger describes the withlogger operation and its observable behavior.
//
// WithLogger may return an error when input validation, dependency calls, or security checks fail.
// WithLogger does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithSessionExpiredHandler registers the one navigation hook: it fires
// exactly once per failed refresh cycle, after the session is cleared and
// every queued request has been rejected.
//
// WithSessionExpiredHandler may return an error when input validation, dependency calls, or security checks fail.
// WithSessionExpiredHandler does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithSessionExpiredHandler(fn func(err error)) *Builder {
	b.onSessionExpired = fn
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build() (*Client, error) {
	if b.built {
		return nil, ErrBuilderReused
	}
	if err := validateConfig(b.config); err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	store := b.store
	if store == nil && b.redis != nil {
		store = session.NewRedisStore(b.redis, b.config.Session.RedisPrefix)
	}
	if store == nil {
		store = session.NewMemoryStore()
	}

	metrics := NewMetrics(b.config.Metrics)

	client := &Client{
		config:           b.config,
		store:            store,
		metrics:          metrics,
		logger:           logger,
		onSessionExpired: b.onSessionExpired,
	}

	plain, err := transport.New(transport.Config{
		BaseURL:        b.config.Transport.BaseURL,
		Timeout:        b.config.Transport.Timeout,
		MaxRetries:     b.config.Transport.MaxRetries,
		RetryBaseDelay: b.config.Transport.RetryBaseDelay,
		UserAgent:      b.config.Transport.UserAgent,
		Jar:            b.jar,
		Logger:         logger,
		OnRetry:        func() { metrics.Inc(MetricRequestRetry) },
	})
	if err != nil {
		return nil, err
	}
	client.plain = plain

	coordinator := newRefreshCoordinator(client.doRefresh)
	coordinator.logger = logger
	coordinator.onExpired = client.onRefreshExpired
	coordinator.onCoalesced = func() { metrics.Inc(MetricRefreshCoalesced) }
	client.coordinator = coordinator

	authed, err := transport.NewAuthClient(plain, client, coordinator)
	if err != nil {
		return nil, err
	}
	authed.OnReplay = func() { metrics.Inc(MetricRequestReplayed) }
	client.authed = authed

	b.built = true
	return client, nil
}
