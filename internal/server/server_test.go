package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/raaihank/grammar-sentinel/internal/config"
	"github.com/raaihank/grammar-sentinel/internal/grammar"
	"github.com/raaihank/grammar-sentinel/internal/history"
	"github.com/raaihank/grammar-sentinel/internal/logger"
)

func testConfig() *config.Config {
	cfg := config.GetDefaults()
	cfg.WebSocket.Enabled = false
	cfg.RateLimit.Enabled = false
	return cfg
}

func newTestServer(t *testing.T, cfg *config.Config, withHistory bool) *Server {
	t.Helper()
	var deps Dependencies
	if withHistory {
		dsn := "file:" + filepath.Join(t.TempDir(), "history.db")
		store, err := history.Open(&history.Config{Driver: "sqlite", DSN: dsn, MaxOpenConns: 1}, zap.NewNop())
		require.NoError(t, err)
		t.Cleanup(func() { store.Close() })
		deps.History = store
	}
	s, err := New(cfg, logger.NewNop(), deps)
	require.NoError(t, err)
	return s
}

func do(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.RemoteAddr = "192.0.2.1:1234"
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHandleCorrect(t *testing.T) {
	s := newTestServer(t, testConfig(), true)

	t.Run("Scenario", func(t *testing.T) {
		rec := do(t, s, http.MethodPost, "/v1/correct", map[string]interface{}{"text": "I are going too school", "tier": 12})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

		resp := decode[CorrectResponse](t, rec)
		assert.Equal(t, "I am going to school", resp.CorrectedText)
		assert.Equal(t, 75, resp.Score)
		assert.Equal(t, grammar.BandIntermediate, resp.Band)
		assert.Equal(t, 4, resp.Stars)
		assert.Len(t, resp.Findings, 2)
		assert.Len(t, resp.Groups, 2)
		assert.Equal(t, rec.Header().Get("X-Request-ID"), resp.RequestID)
		assert.NotEmpty(t, resp.HistoryID)
		assert.False(t, resp.Cached)
	})

	t.Run("DefaultTier", func(t *testing.T) {
		rec := do(t, s, http.MethodPost, "/v1/correct", map[string]string{"text": "i think so"})
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode[CorrectResponse](t, rec)
		assert.Equal(t, 12, resp.Tier)
		assert.Equal(t, "I think so", resp.CorrectedText)
	})

	t.Run("EmptyText", func(t *testing.T) {
		rec := do(t, s, http.MethodPost, "/v1/correct", map[string]string{"text": ""})
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode[CorrectResponse](t, rec)
		assert.Zero(t, resp.Score)
		assert.Empty(t, resp.Findings)
		assert.NotEmpty(t, resp.Feedback)
	})

	t.Run("RequestIDEchoed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/correct", bytes.NewBufferString(`{"text":"ok"}`))
		req.Header.Set("X-Request-ID", "abc-123")
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, req)
		assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
	})

	t.Run("BadJSON", func(t *testing.T) {
		rec := do(t, s, http.MethodPost, "/v1/correct", `{"text":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decode[map[string]string](t, rec)["error"], "invalid request body")
	})

	t.Run("UnknownField", func(t *testing.T) {
		rec := do(t, s, http.MethodPost, "/v1/correct", `{"text":"hi","level":3}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("MethodNotAllowed", func(t *testing.T) {
		rec := do(t, s, http.MethodGet, "/v1/correct", nil)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.Equal(t, "method GET not allowed on /v1/correct", decode[map[string]string](t, rec)["error"])

		rec = do(t, s, http.MethodPost, "/v1/rules", nil)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})

	t.Run("UnknownRoute", func(t *testing.T) {
		rec := do(t, s, http.MethodPost, "/v1/corrections", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "not found", decode[map[string]string](t, rec)["error"])
	})
}

func TestHandleCorrectLimits(t *testing.T) {
	cfg := testConfig()
	cfg.Grammar.MaxTextLength = 10
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerSecond: 0.001, Burst: 2}
	s := newTestServer(t, cfg, false)

	rec := do(t, s, http.MethodPost, "/v1/correct", map[string]string{"text": "this text is too long"})
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec = do(t, s, http.MethodPost, "/v1/correct", map[string]string{"text": "short"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodPost, "/v1/correct", map[string]string{"text": "short"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// Health checks are not rate limited.
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/health", nil).Code)
}

func TestHandleRules(t *testing.T) {
	s := newTestServer(t, testConfig(), false)
	catalog := grammar.DefaultCatalog()

	rec := do(t, s, http.MethodGet, "/v1/rules", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	all := decode[RulesResponse](t, rec)
	assert.Equal(t, catalog.Len(), all.Count)
	assert.Equal(t, catalog.Fingerprint(), all.Fingerprint)
	assert.Equal(t, "sva-i-are", all.Rules[0].ID)

	rec = do(t, s, http.MethodGet, "/v1/rules?band=Basic", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	basic := decode[RulesResponse](t, rec)
	assert.Equal(t, len(catalog.SelectBand(grammar.BandBasic)), basic.Count)
	for _, r := range basic.Rules {
		assert.Equal(t, grammar.BandBasic, r.Band, r.ID)
	}

	rec = do(t, s, http.MethodGet, "/v1/rules?tier=12", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, len(catalog.Select(12)), decode[RulesResponse](t, rec).Count)

	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/v1/rules?band=expert", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/v1/rules?tier=ten", nil).Code)
}

func TestHandleHistory(t *testing.T) {
	s := newTestServer(t, testConfig(), true)

	rec := do(t, s, http.MethodPost, "/v1/correct", map[string]interface{}{"text": "She don't have no money", "tier": 16, "source": "tests"})
	require.Equal(t, http.StatusOK, rec.Code)
	id := decode[CorrectResponse](t, rec).HistoryID
	require.NotEmpty(t, id)

	rec = do(t, s, http.MethodGet, "/v1/history/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	entry := decode[history.Entry](t, rec)
	assert.Equal(t, "She doesn't have any money", entry.CorrectedText)
	assert.Equal(t, "tests", entry.Source)
	assert.Len(t, entry.Findings, 2)

	rec = do(t, s, http.MethodGet, "/v1/history?source=tests&limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode[map[string]interface{}](t, rec)["count"])

	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodGet, "/v1/history/nope", nil).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodGet, "/v1/history?limit=x", nil).Code)

	rec = do(t, s, http.MethodGet, "/v1/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[StatsResponse](t, rec)
	assert.Equal(t, int64(1), stats.Corrections)
	require.NotNil(t, stats.History)
	assert.Equal(t, int64(1), stats.History.TotalCorrections)
	assert.Equal(t, int64(1), stats.History.ByBand["advanced"])
	assert.Nil(t, stats.Cache)
}

func TestDisabledFeatures(t *testing.T) {
	s := newTestServer(t, testConfig(), false)

	assert.Equal(t, http.StatusServiceUnavailable, do(t, s, http.MethodGet, "/v1/history", nil).Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(t, s, http.MethodGet, "/v1/history/x", nil).Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(t, s, http.MethodDelete, "/v1/cache", nil).Code)

	rec := do(t, s, http.MethodPost, "/v1/correct", map[string]string{"text": "I are ok"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[CorrectResponse](t, rec).HistoryID)
}

func TestHealthAndInfo(t *testing.T) {
	s := newTestServer(t, testConfig(), false)

	rec := do(t, s, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode[map[string]string](t, rec)["status"])

	rec = do(t, s, http.MethodGet, "/info", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	info := decode[map[string]interface{}](t, rec)
	assert.Equal(t, "grammar-sentinel", info["name"])
	assert.Equal(t, true, info["structural_checks"])
	assert.EqualValues(t, grammar.DefaultCatalog().Len(), info["rules"])
}

func TestReloadRules(t *testing.T) {
	s := newTestServer(t, testConfig(), false)
	before := s.Checker().Catalog().Fingerprint()

	pack := filepath.Join(t.TempDir(), "slang.yaml")
	require.NoError(t, os.WriteFile(pack, []byte(`
name: slang
rules:
  - id: slang-lemme
    trigger: '\blemme\b'
    correction: let me
    category: Informal Language
    severity: low
    band: basic
`), 0o644))

	require.NoError(t, s.ReloadRules([]string{pack}))
	assert.NotEqual(t, before, s.Checker().Catalog().Fingerprint())

	rec := do(t, s, http.MethodPost, "/v1/correct", map[string]interface{}{"text": "lemme see", "tier": 5})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Let me see", decode[CorrectResponse](t, rec).CorrectedText)

	t.Run("BrokenPackKeepsCatalog", func(t *testing.T) {
		current := s.Checker()
		assert.Error(t, s.ReloadRules([]string{filepath.Join(t.TempDir(), "missing.yaml")}))
		assert.Same(t, current, s.Checker())
	})
}

func TestRateLimiterCleanup(t *testing.T) {
	limiter := NewRateLimiter(config.RateLimitConfig{RequestsPerSecond: 1, Burst: 1, IdleTimeout: time.Minute})
	assert.True(t, limiter.Allow("a"))
	assert.False(t, limiter.Allow("a"))
	assert.True(t, limiter.Allow("b"))

	assert.Zero(t, limiter.Cleanup(time.Now()))
	assert.Equal(t, 2, limiter.Cleanup(time.Now().Add(2*time.Minute)))
}

func TestClientKey(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "198.51.100.7:5555"
	assert.Equal(t, "198.51.100.7", clientKey(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", clientKey(r))
}
