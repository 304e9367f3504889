package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Gouliath1/portfolio-tracker-sub001/src/database"
	"github.com/Gouliath1/portfolio-tracker-sub001/src/events"
	"github.com/Gouliath1/portfolio-tracker-sub001/src/portfolio"
	"github.com/Gouliath1/portfolio-tracker-sub001/src/prices"
	"github.com/Gouliath1/portfolio-tracker-sub001/src/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) http.Handler {
	t.Helper()

	t.Setenv("DATABASE_DRIVER", database.DriverSQLite)
	t.Setenv("DATABASE_PATH", filepath.Join(t.TempDir(), "portfolio.db"))
	require.NoError(t, database.InitMainDB())
	t.Cleanup(func() {
		require.NoError(t, database.CloseMainDB())
	})

	db := database.MainDB
	sets := repository.NewPositionSetRepositoryWithDB(db)
	history := repository.NewHistoricalPriceRepositoryWithDB(db)
	hub := events.NewHub()
	config := portfolio.Config{MaxStaleTradingDays: 1, DefaultSetName: "default", DefaultSetLabel: "My Portfolio"}

	deps := Dependencies{
		Portfolio: portfolio.NewService(sets, hub, config),
		Evaluator: portfolio.NewEvaluator(sets, history, config),
		Refresher: prices.NewRefresher(sets, history, nil, 30, hub),
		Hub:       hub,
		Ready: func(ctx context.Context) error {
			return database.Ready(ctx, db)
		},
	}

	return NewRouter(&Config{Port: "9898", AllowedOrigins: []string{"*"}}, deps)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRouter_EmptyDatabase(t *testing.T) {
	router := setupRouter(t)

	rr := do(t, router, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok","database":"ready"}`, rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get("X-Request-Id"))

	rr = do(t, router, http.MethodGet, "/position-sets", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"position_sets":[],"active_set":null}`, rr.Body.String())

	for i := 0; i < 2; i++ {
		rr = do(t, router, http.MethodGet, "/historical-data/status", "")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"needsRefresh":true,"lastDataDate":null,"reason":"No historical data found"}`, rr.Body.String())
	}

	rr = do(t, router, http.MethodGet, "/demo-status", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"isDemoData":false,"isDemo":false,"positionSet":null}`, rr.Body.String())

	rr = do(t, router, http.MethodGet, "/historical-prices", "")
	assert.Equal(t, http.StatusNotImplemented, rr.Code)

	rr = do(t, router, http.MethodPost, "/historical-data/refresh", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"updated":0,"symbols":0}`, rr.Body.String())
}

func TestRouter_ValidationBoundary(t *testing.T) {
	router := setupRouter(t)

	rr := do(t, router, http.MethodPost, "/position-sets/abc/activate", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, router, http.MethodDelete, "/position-sets/abc", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, router, http.MethodGet, "/position-sets/18446744073709551615/export", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, router, http.MethodPost, "/positions/update", `{"positions":{"not":"an array"}}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// nothing was persisted
	rr = do(t, router, http.MethodGet, "/position-sets", "")
	assert.JSONEq(t, `{"position_sets":[],"active_set":null}`, rr.Body.String())
}

func TestRouter_PositionSetLifecycle(t *testing.T) {
	router := setupRouter(t)

	rr := do(t, router, http.MethodPost, "/positions/update", `{"positions":[{"ticker":"AAPL","quantity":10,"costPerUnit":"150","currency":"USD"}]}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"success":true}`, rr.Body.String())

	rr = do(t, router, http.MethodGet, "/position-sets/1/export", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, `attachment; filename="default-positions.json"`, rr.Header().Get("Content-Disposition"))
	exported := rr.Body.String()

	rr = do(t, router, http.MethodPost, "/position-sets/import", strings.Replace(exported, `"name": "default"`, `"name": "copy"`, 1))
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = do(t, router, http.MethodPost, "/position-sets/import", exported)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = do(t, router, http.MethodPost, "/position-sets/2/activate", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"Position set activated successfully"}`, rr.Body.String())

	rr = do(t, router, http.MethodGet, "/position-sets", "")
	var overview struct {
		PositionSets []struct {
			ID       uint `json:"id"`
			IsActive bool `json:"is_active"`
		} `json:"position_sets"`
		ActiveSet struct {
			ID uint `json:"id"`
		} `json:"active_set"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &overview))
	require.Len(t, overview.PositionSets, 2)
	assert.False(t, overview.PositionSets[0].IsActive)
	assert.True(t, overview.PositionSets[1].IsActive)
	assert.Equal(t, uint(2), overview.ActiveSet.ID)

	rr = do(t, router, http.MethodDelete, "/position-sets/2", "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, router, http.MethodGet, "/position-sets/2/export", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, router, http.MethodPost, "/position-sets/2/activate", "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	router := setupRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/position-sets", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_RequestIDIsPropagated(t *testing.T) {
	router := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/brokers", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "abc-123", rr.Header().Get("X-Request-Id"))
}

func TestConfig_ListenPort(t *testing.T) {
	assert.Equal(t, "9898", (&Config{Port: "9898"}).ListenPort())
	assert.Equal(t, "8080", (&Config{Port: "9898", ServerPort: "8080"}).ListenPort())
}
