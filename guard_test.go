package goDrive

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/ferndrop/goDrive/session"
)

func newTestGuard(t *testing.T, env *testEnv) *RouteGuard {
	t.Helper()
	guard, err := NewRouteGuard(env.client)
	if err != nil {
		t.Fatalf("guard build failed: %v", err)
	}
	return guard
}

func TestGuardInitialStates(t *testing.T) {
	cases := []struct {
		name  string
		token string
		user  *session.User
		want  GuardState
	}{
		{"no session", "", nil, GuardUnauthenticated},
		{"token without profile", "T1", nil, GuardChecking},
		{"token with profile", "T1", &session.User{ID: 1}, GuardAuthenticated},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			if tc.token != "" {
				env.seedSession(t, tc.token, tc.user)
			}
			guard := newTestGuard(t, env)
			if got := guard.State(); got != tc.want {
				t.Fatalf("initial state = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestGuardAuthorizeResolvesCheckingWithOneFetch(t *testing.T) {
	env := newTestEnv(t)
	env.seedSession(t, "T1", nil) // rehydrated token, profile unknown
	guard := newTestGuard(t, env)

	if got := guard.State(); got != GuardChecking {
		t.Fatalf("expected Checking before first decision, got %v", got)
	}

	const n = 4
	var wg sync.WaitGroup
	decisions := make([]Decision, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			decisions[i] = guard.Authorize(context.Background(), "/files")
		}(i)
	}
	wg.Wait()

	for i, d := range decisions {
		if d != ShowContent {
			t.Fatalf("decision %d = %v, want ShowContent", i, d)
		}
	}
	if got := env.backend.profileCalls.Load(); got != 1 {
		t.Fatalf("expected one profile fetch across concurrent authorizations, got %d", got)
	}
	if got := guard.State(); got != GuardAuthenticated {
		t.Fatalf("expected Authenticated after resolution, got %v", got)
	}
}

func TestGuardDecideReturnsLoadingThenContent(t *testing.T) {
	env := newTestEnv(t)
	env.seedSession(t, "T1", nil)
	guard := newTestGuard(t, env)

	if d := guard.Decide(context.Background(), "/files"); d != ShowLoading {
		t.Fatalf("first decision = %v, want ShowLoading", d)
	}

	deadline := time.Now().Add(2 * time.Second)
	for guard.State() == GuardChecking {
		if time.Now().After(deadline) {
			t.Fatal("checking never resolved")
		}
		time.Sleep(time.Millisecond)
	}

	if d := guard.Decide(context.Background(), "/files"); d != ShowContent {
		t.Fatalf("settled decision = %v, want ShowContent", d)
	}
}

func TestGuardFailedProfileFetchClearsSession(t *testing.T) {
	env := newTestEnv(t)
	env.backend.refreshStatus = http.StatusForbidden
	env.seedSession(t, "revoked-token", nil)
	guard := newTestGuard(t, env)

	if d := guard.Authorize(context.Background(), "/files"); d != RedirectToLogin {
		t.Fatalf("decision = %v, want RedirectToLogin", d)
	}
	if got := guard.State(); got != GuardUnauthenticated {
		t.Fatalf("state = %v, want Unauthenticated", got)
	}
	if s := env.client.Session(); !s.Empty() {
		t.Fatalf("expected session cleared after failed resolution, got %+v", s)
	}
	if got := guard.ReturnTo(); got != "/files" {
		t.Fatalf("return destination = %q, want /files", got)
	}
}

func TestGuardLogoutForcesUnauthenticated(t *testing.T) {
	env := newTestEnv(t)
	env.seedSession(t, "T1", &session.User{ID: 1})
	guard := newTestGuard(t, env)

	if d := guard.Authorize(context.Background(), "/files"); d != ShowContent {
		t.Fatalf("decision = %v, want ShowContent", d)
	}

	env.client.Logout(context.Background())

	if got := guard.State(); got != GuardUnauthenticated {
		t.Fatalf("state after logout = %v, want Unauthenticated", got)
	}
	if d := guard.Authorize(context.Background(), "/files"); d != RedirectToLogin {
		t.Fatalf("post-logout decision = %v, want RedirectToLogin", d)
	}
}

func TestGuardLoginFlipsRedirectToContent(t *testing.T) {
	env := newTestEnv(t)
	guard := newTestGuard(t, env)

	if d := guard.Authorize(context.Background(), "/files/shared"); d != RedirectToLogin {
		t.Fatalf("pre-login decision = %v, want RedirectToLogin", d)
	}
	if got := guard.ReturnTo(); got != "/files/shared" {
		t.Fatalf("return destination = %q, want /files/shared", got)
	}

	if _, err := env.client.Login(context.Background(), Credentials{LoginID: "u1", Password: "correct-password-123"}); err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if d := guard.Authorize(context.Background(), "/files/shared"); d != ShowContent {
		t.Fatalf("post-login decision = %v, want ShowContent", d)
	}
}

func TestGuardRefetchesProfileForNewSessionGeneration(t *testing.T) {
	env := newTestEnv(t)
	env.seedSession(t, "T1", nil)
	guard := newTestGuard(t, env)

	if d := guard.Authorize(context.Background(), "/files"); d != ShowContent {
		t.Fatalf("decision = %v, want ShowContent", d)
	}
	first := env.backend.profileCalls.Load()

	// A new login is a new session generation: rehydrated Checking there must
	// fetch again rather than trust the old generation's stamp.
	env.client.Logout(context.Background())
	env.seedSession(t, "T1", nil)

	if d := guard.Authorize(context.Background(), "/files"); d != ShowContent {
		t.Fatalf("second-generation decision = %v, want ShowContent", d)
	}
	if got := env.backend.profileCalls.Load(); got != first+1 {
		t.Fatalf("expected one more profile fetch for the new generation, got %d total", got)
	}
}
