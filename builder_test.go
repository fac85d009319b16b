package goDrive

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/ferndrop/goDrive/session"
)

func TestBuildRequiresBaseURL(t *testing.T) {
	_, err := New().Build()
	if err == nil {
		t.Fatal("expected build to fail without a base URL")
	}
	if !strings.Contains(err.Error(), "BaseURL") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBuilderRejectsReuse(t *testing.T) {
	b := New().WithBaseURL("https://drive.example.com")
	if _, err := b.Build(); err != nil {
		t.Fatalf("first build failed: %v", err)
	}
	if _, err := b.Build(); !errors.Is(err, ErrBuilderReused) {
		t.Fatalf("expected ErrBuilderReused, got %v", err)
	}
}

func TestBuildDefaultsToMemoryStore(t *testing.T) {
	client, err := New().WithBaseURL("https://drive.example.com").Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if _, ok := client.store.(*session.MemoryStore); !ok {
		t.Fatalf("expected memory store fallback, got %T", client.store)
	}
}

func TestBuildWithRedisPersistsUnderPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	client, err := New().
		WithBaseURL("https://drive.example.com").
		WithRedis(rdb).
		Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	client.setSession(context.Background(), session.Session{AccessToken: "T1", IsAuthenticated: true})

	key := "gd:" + session.StorageKey
	if !mr.Exists(key) {
		t.Fatalf("expected session persisted under %q", key)
	}
}

func TestExplicitStoreWinsOverRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	mem := session.NewMemoryStore()
	client, err := New().
		WithBaseURL("https://drive.example.com").
		WithRedis(rdb).
		WithSessionStore(mem).
		Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if client.store != session.Store(mem) {
		t.Fatalf("expected explicit store to win, got %T", client.store)
	}
}
