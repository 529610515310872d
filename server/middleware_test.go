package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MasahideMori-SimpleAppli/delta-trace-db-go-server/lib/query"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

// signToken creates a signed HMAC token for the auth tests
func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

// postWithToken sends a count query with the given Authorization header
func postWithToken(s *Server, header string) *httptest.ResponseRecorder {
	body, _ := json.Marshal(query.NewCount("users", nil))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/backend", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	s.router().ServeHTTP(w, req)
	return w
}

// TestAuthValidToken tests that a valid token passes through to the handler
func TestAuthValidToken(t *testing.T) {
	s := newTestServer(t, func(cfg *Config) { cfg.AuthSecret = testSecret })

	token := signToken(t, testSecret, jwt.MapClaims{
		"sub": "alice",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	w := postWithToken(s, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
}

// TestAuthMissingToken tests rejection of requests without a bearer token
func TestAuthMissingToken(t *testing.T) {
	s := newTestServer(t, func(cfg *Config) { cfg.AuthSecret = testSecret })

	for _, header := range []string{"", "Bearer ", "Basic dXNlcg=="} {
		w := postWithToken(s, header)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "header: %q", header)
	}
}

// TestAuthInvalidToken tests rejection of bad signatures and expired tokens
func TestAuthInvalidToken(t *testing.T) {
	s := newTestServer(t, func(cfg *Config) { cfg.AuthSecret = testSecret })

	wrongKey := signToken(t, "other-secret", jwt.MapClaims{"sub": "alice"})
	expired := signToken(t, testSecret, jwt.MapClaims{
		"sub": "alice",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	for _, token := range []string{wrongKey, expired, "garbage"} {
		w := postWithToken(s, "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
}

// TestAuthDisabled tests that requests pass without a token when auth is off
func TestAuthDisabled(t *testing.T) {
	s := newTestServer(t, nil)

	w := postWithToken(s, "")
	assert.Equal(t, http.StatusOK, w.Code)
}
