package token

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, claims jwt.RegisteredClaims) string {
	t.Helper()

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	return raw
}

func TestInspectReadsSubjectAndExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	iat := time.Now().Truncate(time.Second)
	raw := signedToken(t, jwt.RegisteredClaims{
		Subject:   "user-7",
		IssuedAt:  jwt.NewNumericDate(iat),
		ExpiresAt: jwt.NewNumericDate(exp),
	})

	info, err := Inspect(raw)
	if err != nil {
		t.Fatalf("inspect failed: %v", err)
	}
	if info.Subject != "user-7" {
		t.Fatalf("unexpected subject %q", info.Subject)
	}
	if !info.ExpiresAt.Equal(exp) {
		t.Fatalf("unexpected expiry %v, want %v", info.ExpiresAt, exp)
	}
	if info.Expired(time.Now()) {
		t.Fatal("token should not be expired yet")
	}
	if !info.Expired(exp.Add(time.Second)) {
		t.Fatal("token should be expired past exp")
	}
}

func TestInspectWithoutExpNeverExpires(t *testing.T) {
	raw := signedToken(t, jwt.RegisteredClaims{Subject: "user-7"})

	info, err := Inspect(raw)
	if err != nil {
		t.Fatalf("inspect failed: %v", err)
	}
	if info.Expired(time.Now().Add(100 * 365 * 24 * time.Hour)) {
		t.Fatal("token without exp must never report expired")
	}
}

func TestInspectRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "not-a-token", "a.b", "a.b.c"} {
		if _, err := Inspect(raw); !errors.Is(err, ErrMalformed) {
			t.Fatalf("expected ErrMalformed for %q, got %v", raw, err)
		}
	}
}
