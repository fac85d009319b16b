package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// StorageKey is the versioned key under which the persisted session subset
// is stored. Bumping the schema version retires old records in place.
const StorageKey = "auth.v1"

// ErrStoreUnavailable is an exported constant or variable used by the drive client.
var ErrStoreUnavailable = errors.New("session store unavailable")

// Store is the durable home of the persisted session subset.
//
// Load never fails on missing, corrupt, or schema-incompatible records; it
// returns an empty session instead. Save must be durable before it returns:
// callers surface operation results only after the persisted subset is
// written.
type Store interface {
	Save(ctx context.Context, s *Session) error
	Load(ctx context.Context) (*Session, error)
	Clear(ctx context.Context) error
}

// RedisStore persists the session blob in Redis. It suits deployments where
// several client processes share one logical session (kiosks, worker fleets
// driving the same account).
//
// RedisStore instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RedisStore struct {
	rdb *redis.Client
	key string
}

// NewRedisStore describes the newredisstore operation and its observable behavior.
//
// NewRedisStore may return an error when input validation, dependency calls, or security checks fail.
// NewRedisStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "gd"
	}
	return &RedisStore{
		rdb: rdb,
		key: prefix + ":" + StorageKey,
	}
}

// Save describes the save operation and its observable behavior.
//
// Save may return an error when input validation, dependency calls, or security checks fail.
// Save does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	blob, err := Encode(s)
	if err != nil {
		return err
	}
	if err := r.rdb.Set(ctx, r.key, blob, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Load describes the load operation and its observable behavior.
//
// Load may return an error when input validation, dependency calls, or security checks fail.
// Load does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r *RedisStore) Load(ctx context.Context) (*Session, error) {
	blob, err := r.rdb.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return &Session{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	s, err := Decode(blob)
	if err != nil {
		// Corrupt or future-versioned record: treat as signed out.
		return &Session{}, nil
	}
	return s, nil
}

// Clear describes the clear operation and its observable behavior.
//
// Clear may return an error when input validation, dependency calls, or security checks fail.
// Clear does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r *RedisStore) Clear(ctx context.Context) error {
	if err := r.rdb.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
