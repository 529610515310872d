package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/MasahideMori-SimpleAppli/delta-trace-db-go-server/lib/db"
	"github.com/MasahideMori-SimpleAppli/delta-trace-db-go-server/lib/query"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer creates a server with temporary journal/backup folders
func newTestServer(t *testing.T, mutate func(*Config)) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	cfg := Config{
		Endpoint:    "127.0.0.1:0",
		CORSOrigins: []string{"*"},
		Prohibit:    DefaultProhibit(),
		JournalDir:  filepath.Join(dir, "logs"),
		BackupDir:   filepath.Join(dir, "backups"),
		BackupKeep:  7,
		LogLevel:    "error",
	}
	if mutate != nil {
		mutate(&cfg)
	}

	log := logrus.New()
	log.SetOutput(io.Discard)

	s, err := New(cfg, db.New(), log)
	require.NoError(t, err)
	return s
}

// postBackend sends a request body to the backend endpoint
func postBackend(s *Server, body []byte) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/backend", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	s.router().ServeHTTP(w, req)
	return w
}

// TestBackendAdd tests a successful add query through the HTTP layer
func TestBackendAdd(t *testing.T) {
	s := newTestServer(t, nil)

	q := query.NewAdd("users", map[string]any{"name": "alice"})
	q.ReturnData = true
	body, err := json.Marshal(q)
	require.NoError(t, err)

	w := postBackend(s, body)
	assert.Equal(t, http.StatusOK, w.Code)

	result, err := query.ParseResult(w.Body.Bytes())
	require.NoError(t, err)
	assert.True(t, result.IsSuccess)
	assert.Equal(t, 1, result.DBLength)
	require.Len(t, result.Result, 1)
	assert.Equal(t, "alice", result.Result[0]["name"])
}

// TestBackendMalformed tests the 400 response for unparseable bodies
func TestBackendMalformed(t *testing.T) {
	s := newTestServer(t, nil)

	for _, body := range []string{"not json", `{"className":"Nope"}`, `{"className":"Query","type":"add"}`} {
		w := postBackend(s, []byte(body))
		assert.Equal(t, http.StatusBadRequest, w.Code, "body: %s", body)
		assert.JSONEq(t, `{"detail": "Processing failed."}`, w.Body.String())
	}
}

// TestBackendProhibited tests the 403 response for prohibited operations
func TestBackendProhibited(t *testing.T) {
	s := newTestServer(t, nil)

	// seed a document so a leaked clear would be visible
	seed, _ := json.Marshal(query.NewAdd("users", map[string]any{"name": "alice"}))
	require.Equal(t, http.StatusOK, postBackend(s, seed).Code)

	for _, q := range []*query.Query{
		query.NewClear("users", false),
		query.NewClearAdd("users", false, map[string]any{"x": 1}),
		query.NewConformToTemplate("users", map[string]any{"name": ""}),
		query.NewRenameField("users", "name", "fullName"),
	} {
		body, err := json.Marshal(q)
		require.NoError(t, err)

		w := postBackend(s, body)
		assert.Equal(t, http.StatusForbidden, w.Code, "type: %s", q.Type.String())
		assert.JSONEq(t, `{"detail": "Operation not permitted."}`, w.Body.String())
	}

	assert.Equal(t, 1, s.db.Collection("users").Length(), "prohibited queries must not change state")
}

// TestBackendFailureIsStill200 tests that ordinary failures are reported in the body
func TestBackendFailureIsStill200(t *testing.T) {
	s := newTestServer(t, nil)

	// update without overrideData fails validation but is not prohibited
	body := []byte(`{"className":"Query","target":"users","type":"update"}`)

	w := postBackend(s, body)
	assert.Equal(t, http.StatusOK, w.Code)

	result, err := query.ParseResult(w.Body.Bytes())
	require.NoError(t, err)
	assert.False(t, result.IsSuccess)
	assert.NotEmpty(t, result.ErrorMessage)
}

// TestBackendJournal tests that successful queries are journaled and failures are not
func TestBackendJournal(t *testing.T) {
	s := newTestServer(t, nil)

	seed, _ := json.Marshal(query.NewAdd("users", map[string]any{"name": "alice"}))
	require.Equal(t, http.StatusOK, postBackend(s, seed).Code)

	paths, err := s.journal.List()
	require.NoError(t, err)
	require.Len(t, paths, 1)

	// the journal holds the raw query, not the result
	raw, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.JSONEq(t, string(seed), string(raw))

	// failed and malformed requests leave no journal entry
	postBackend(s, []byte("not json"))
	postBackend(s, []byte(`{"className":"Query","target":"users","type":"update"}`))

	paths, err = s.journal.List()
	require.NoError(t, err)
	assert.Len(t, paths, 1)
}

// TestBackendTransaction tests a transaction through the HTTP layer
func TestBackendTransaction(t *testing.T) {
	s := newTestServer(t, nil)

	tq := query.NewTransaction(
		query.NewAdd("users", map[string]any{"name": "alice"}),
		query.NewAdd("users", map[string]any{"name": "bob"}),
	)
	body, err := json.Marshal(tq)
	require.NoError(t, err)

	w := postBackend(s, body)
	assert.Equal(t, http.StatusOK, w.Code)

	var result query.TransactionResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.IsSuccess)
	assert.Len(t, result.Results, 2)
	assert.Equal(t, 2, s.db.Collection("users").Length())
}

// TestHealthEndpoint tests the liveness endpoint
func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	s.db.Collection("users").Add([]map[string]any{{"name": "alice"}}, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	s.router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var health map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, float64(1), health["collections"])
	assert.Equal(t, float64(1), health["documents"])
}
