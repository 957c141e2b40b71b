package utils

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestVerifyTokenSuccess(t *testing.T) {
	secret := "monitor-secret"
	tok := signToken(t, secret, jwt.MapClaims{"sub": "proctor-1", "exp": time.Now().Add(time.Hour).Unix()})

	req := httptest.NewRequest(http.MethodGet, "/api/details/INT-1", nil)
	req.Header.Set("Authorization", "Bearer "+tok)

	claims, err := VerifyToken(req, secret)
	if err != nil {
		t.Fatalf("expected token to verify, got %v", err)
	}
	if got := SubjectFromClaims(claims); got != "proctor-1" {
		t.Fatalf("expected subject proctor-1, got %q", got)
	}
}

func TestVerifyTokenMissingHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err := VerifyToken(req, "secret"); !errors.Is(err, ErrMissingAuthHeader) {
		t.Fatalf("expected ErrMissingAuthHeader, got %v", err)
	}

	req.Header.Set("Authorization", "Basic abc")
	if _, err := VerifyToken(req, "secret"); !errors.Is(err, ErrMissingAuthHeader) {
		t.Fatalf("expected ErrMissingAuthHeader for non-bearer, got %v", err)
	}
}

func TestVerifyTokenInvalid(t *testing.T) {
	cases := map[string]string{
		"wrong secret": signToken(t, "other", jwt.MapClaims{"sub": "x"}),
		"expired":      signToken(t, "secret", jwt.MapClaims{"sub": "x", "exp": time.Now().Add(-time.Minute).Unix()}),
		"garbage":      "not-a-token",
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer "+tok)
			if _, err := VerifyToken(req, "secret"); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestVerifyTokenNonMapClaims(t *testing.T) {
	orig := parseJWT
	defer func() { parseJWT = orig }()
	parseJWT = func(string, jwt.Keyfunc) (*jwt.Token, error) {
		return &jwt.Token{Valid: true, Claims: &jwt.RegisteredClaims{}}, nil
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer anything")
	if _, err := VerifyToken(req, "secret"); !errors.Is(err, ErrInvalidClaims) {
		t.Fatalf("expected ErrInvalidClaims, got %v", err)
	}
}
