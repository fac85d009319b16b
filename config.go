package goDrive

import (
	"errors"
	"strings"
	"time"

	"github.com/ferndrop/goDrive/transport"
)

// Config defines a public type used by goDrive APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Transport TransportConfig
	Session   SessionConfig
	Guard     GuardConfig
	Metrics   MetricsConfig
}

/*
====================================
TRANSPORT CONFIG
====================================
*/

// TransportConfig defines a public type used by goDrive APIs.
//
// TransportConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TransportConfig struct {
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	RetryBaseDelay time.Duration
	UserAgent      string
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig defines a public type used by goDrive APIs.
//
// SessionConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SessionConfig struct {
	// RedisPrefix namespaces the persisted session key when the store is
	// built from a Redis client via [Builder.WithRedis].
	RedisPrefix string
}

/*
====================================
GUARD CONFIG
====================================
*/

// GuardConfig defines a public type used by goDrive APIs.
//
// GuardConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type GuardConfig struct {
	// LoginPath is the entry point unauthenticated navigation redirects to.
	LoginPath string
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig defines a public type used by goDrive APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled bool
}

func defaultConfig() Config {
	return Config{
		Transport: TransportConfig{
			Timeout:        transport.DefaultTimeout,
			MaxRetries:     transport.DefaultMaxRetries,
			RetryBaseDelay: transport.DefaultRetryBaseDelay,
			UserAgent:      "goDrive/1",
		},
		Session: SessionConfig{
			RedisPrefix: "gd",
		},
		Guard: GuardConfig{
			LoginPath: "/login",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func validateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.Transport.BaseURL) == "" {
		return errors.New("Transport BaseURL must be set")
	}
	if cfg.Transport.Timeout <= 0 {
		return errors.New("Transport Timeout must be > 0")
	}
	if cfg.Transport.MaxRetries < 0 {
		return errors.New("Transport MaxRetries must be >= 0")
	}
	if cfg.Transport.MaxRetries > 10 {
		return errors.New("Transport MaxRetries must be <= 10")
	}
	if cfg.Transport.RetryBaseDelay <= 0 {
		return errors.New("Transport RetryBaseDelay must be > 0")
	}
	if cfg.Guard.LoginPath == "" {
		return errors.New("Guard LoginPath must be set")
	}
	if !strings.HasPrefix(cfg.Guard.LoginPath, "/") {
		return errors.New("Guard LoginPath must start with '/'")
	}
	return nil
}
