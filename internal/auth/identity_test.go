package auth

import (
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("irrelevant"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return raw
}

func TestUserIDFromStringSubject(t *testing.T) {
	got, err := UserID(sign(t, jwt.MapClaims{"sub": "42"}))
	if err != nil {
		t.Fatalf("UserID: %v", err)
	}
	if got != "42" {
		t.Fatalf("got %q, want 42", got)
	}
}

func TestUserIDFromNumericSubject(t *testing.T) {
	// json decodes numbers as float64; ids must come back without a fraction
	got, err := UserID(sign(t, jwt.MapClaims{"sub": 42}))
	if err != nil {
		t.Fatalf("UserID: %v", err)
	}
	if got != "42" {
		t.Fatalf("got %q, want 42", got)
	}
}

func TestUserIDFallsBackToUserIDClaim(t *testing.T) {
	got, err := UserID(sign(t, jwt.MapClaims{"user_id": "abc"}))
	if err != nil {
		t.Fatalf("UserID: %v", err)
	}
	if got != "abc" {
		t.Fatalf("got %q, want abc", got)
	}
}

func TestUserIDWithoutSubject(t *testing.T) {
	_, err := UserID(sign(t, jwt.MapClaims{"role": "customer"}))
	if !errors.Is(err, ErrNoSubject) {
		t.Fatalf("err = %v, want ErrNoSubject", err)
	}
}

func TestUserIDGarbageToken(t *testing.T) {
	if _, err := UserID("not-a-token"); err == nil {
		t.Fatalf("expected an error for a malformed token")
	}
}
