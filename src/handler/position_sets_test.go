package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Gouliath1/portfolio-tracker-sub001/src/model"
	"github.com/Gouliath1/portfolio-tracker-sub001/src/portfolio"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockPositionSetService parses ids like the real service and records calls
// that reach past validation.
type mockPositionSetService struct {
	overview    portfolio.Overview
	export      *portfolio.Export
	imported    *model.PositionSet
	err         error
	calledCount int
	lastID      uint
	lastDoc     portfolio.ImportDocument
}

func (m *mockPositionSetService) parse(raw string) error {
	id, err := portfolio.ParseID(raw)
	if err != nil {
		return err
	}
	m.calledCount++
	m.lastID = id
	return nil
}

func (m *mockPositionSetService) ListOverview(context.Context) (portfolio.Overview, error) {
	m.calledCount++
	return m.overview, m.err
}

func (m *mockPositionSetService) Activate(_ context.Context, rawID string) error {
	if err := m.parse(rawID); err != nil {
		return err
	}
	return m.err
}

func (m *mockPositionSetService) Delete(_ context.Context, rawID string) error {
	if err := m.parse(rawID); err != nil {
		return err
	}
	return m.err
}

func (m *mockPositionSetService) Export(_ context.Context, rawID string) (*portfolio.Export, error) {
	if err := m.parse(rawID); err != nil {
		return nil, err
	}
	return m.export, m.err
}

func (m *mockPositionSetService) Import(_ context.Context, doc portfolio.ImportDocument) (*model.PositionSet, error) {
	m.calledCount++
	m.lastDoc = doc
	return m.imported, m.err
}

func newPositionSetRouter(svc *mockPositionSetService) http.Handler {
	r := chi.NewRouter()
	r.Get("/position-sets", ListPositionSetsHandler(svc))
	r.Post("/position-sets/import", ImportPositionSetHandler(svc))
	r.Post("/position-sets/{id}/activate", ActivatePositionSetHandler(svc))
	r.Delete("/position-sets/{id}", DeletePositionSetHandler(svc))
	r.Get("/position-sets/{id}/export", ExportPositionSetHandler(svc))
	return r
}

func serve(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
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

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestListPositionSetsHandler(t *testing.T) {
	active := model.PositionSet{ID: 2, Name: "main", DisplayName: "Main", IsActive: true}
	svc := &mockPositionSetService{overview: portfolio.Overview{
		PositionSets: []model.PositionSet{{ID: 1, Name: "old", DisplayName: "Old"}, active},
		ActiveSet:    &active,
	}}

	rr := serve(t, newPositionSetRouter(svc), http.MethodGet, "/position-sets", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		PositionSets []model.PositionSet `json:"position_sets"`
		ActiveSet    *model.PositionSet  `json:"active_set"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Len(t, body.PositionSets, 2)
	require.NotNil(t, body.ActiveSet)
	assert.Equal(t, uint(2), body.ActiveSet.ID)
	assert.True(t, body.ActiveSet.IsActive)
}

func TestListPositionSetsHandler_Empty(t *testing.T) {
	svc := &mockPositionSetService{overview: portfolio.Overview{PositionSets: []model.PositionSet{}}}

	rr := serve(t, newPositionSetRouter(svc), http.MethodGet, "/position-sets", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"position_sets":[],"active_set":null}`, rr.Body.String())
}

func TestListPositionSetsHandler_Failure(t *testing.T) {
	svc := &mockPositionSetService{err: assert.AnError}

	rr := serve(t, newPositionSetRouter(svc), http.MethodGet, "/position-sets", "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Failed to fetch position sets", decodeError(t, rr).Error)
}

func TestPositionSetHandlers_InvalidID(t *testing.T) {
	routes := []struct{ method, path string }{
		{http.MethodPost, "/position-sets/abc/activate"},
		{http.MethodDelete, "/position-sets/abc"},
		{http.MethodGet, "/position-sets/abc/export"},
		{http.MethodPost, "/position-sets/0/activate"},
		{http.MethodDelete, "/position-sets/-4"},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			svc := &mockPositionSetService{}
			rr := serve(t, newPositionSetRouter(svc), route.method, route.path, "")

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, "Invalid position set ID", decodeError(t, rr).Error)
			assert.Zero(t, svc.calledCount, "store must not be reached")
		})
	}
}

func TestActivatePositionSetHandler(t *testing.T) {
	svc := &mockPositionSetService{}

	rr := serve(t, newPositionSetRouter(svc), http.MethodPost, "/position-sets/3/activate", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"Position set activated successfully"}`, rr.Body.String())
	assert.Equal(t, uint(3), svc.lastID)
}

func TestActivateAndDelete_NotFoundIs500(t *testing.T) {
	svc := &mockPositionSetService{err: portfolio.ErrNotFound}
	router := newPositionSetRouter(svc)

	rr := serve(t, router, http.MethodPost, "/position-sets/9/activate", "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	body := decodeError(t, rr)
	assert.Equal(t, "Failed to activate position set", body.Error)
	assert.Contains(t, body.Details, "not found")

	rr = serve(t, router, http.MethodDelete, "/position-sets/9", "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Failed to delete position set", decodeError(t, rr).Error)
}

func TestDeletePositionSetHandler(t *testing.T) {
	svc := &mockPositionSetService{}

	rr := serve(t, newPositionSetRouter(svc), http.MethodDelete, "/position-sets/5", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"Position set deleted successfully"}`, rr.Body.String())
	assert.Equal(t, uint(5), svc.lastID)
}

func TestExportPositionSetHandler(t *testing.T) {
	export := &portfolio.Export{
		PositionSet: model.PositionSet{ID: 4, Name: "family", DisplayName: "Family"},
		Positions: []model.RawPosition{
			{Ticker: "VOO", Quantity: decimal.NewFromInt(3), CostPerUnit: decimal.RequireFromString("410.5"), Currency: "USD"},
		},
		Filename: "family-positions.json",
	}
	svc := &mockPositionSetService{export: export}
	router := newPositionSetRouter(svc)

	first := serve(t, router, http.MethodGet, "/position-sets/4/export", "")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, `attachment; filename="family-positions.json"`, first.Header().Get("Content-Disposition"))
	assert.Equal(t, "application/json", first.Header().Get("Content-Type"))

	var body struct {
		PositionSet model.PositionSet   `json:"positionSet"`
		Positions   []model.RawPosition `json:"positions"`
	}
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &body))
	assert.Equal(t, "family", body.PositionSet.Name)
	require.Len(t, body.Positions, 1)
	assert.Equal(t, "VOO", body.Positions[0].Ticker)

	second := serve(t, router, http.MethodGet, "/position-sets/4/export", "")
	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestExportPositionSetHandler_NotFound(t *testing.T) {
	cases := map[string]error{
		"typed":   portfolio.ErrNotFound,
		"message": fmt.Errorf("position set 8 Not Found in store"),
	}
	for name, err := range cases {
		t.Run(name, func(t *testing.T) {
			svc := &mockPositionSetService{err: err}
			rr := serve(t, newPositionSetRouter(svc), http.MethodGet, "/position-sets/8/export", "")
			assert.Equal(t, http.StatusNotFound, rr.Code)
			assert.Equal(t, "Position set not found", decodeError(t, rr).Error)
		})
	}
}

func TestExportPositionSetHandler_Failure(t *testing.T) {
	svc := &mockPositionSetService{err: &portfolio.PersistenceError{Op: "export position set", Err: errors.New("disk I/O error")}}

	rr := serve(t, newPositionSetRouter(svc), http.MethodGet, "/position-sets/8/export", "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, decodeError(t, rr).Details, "disk I/O error")
}

func TestImportPositionSetHandler(t *testing.T) {
	svc := &mockPositionSetService{imported: &model.PositionSet{ID: 7, Name: "copy", DisplayName: "Copy"}}
	body := `{"positionSet":{"name":"copy","display_name":"Copy"},"positions":[{"ticker":"AAPL","quantity":"2","costPerUnit":"180"}]}`

	rr := serve(t, newPositionSetRouter(svc), http.MethodPost, "/position-sets/import", body)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "copy", svc.lastDoc.PositionSet.Name)
	require.Len(t, svc.lastDoc.Positions, 1)
	assert.True(t, decimal.NewFromInt(2).Equal(svc.lastDoc.Positions[0].Quantity))

	var resp importResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, uint(7), resp.PositionSet.ID)
}

func TestImportPositionSetHandler_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
		calls  int
	}{
		{name: "malformed json", body: `{"positionSet":`, status: http.StatusBadRequest},
		{name: "validation", body: `{"positionSet":{}}`, err: &portfolio.ValidationError{Field: "positionSet.name", Reason: "is required"}, status: http.StatusBadRequest, calls: 1},
		{name: "conflict", body: `{"positionSet":{"name":"dup"}}`, err: portfolio.ErrConflict, status: http.StatusConflict, calls: 1},
		{name: "store failure", body: `{"positionSet":{"name":"x"}}`, err: assert.AnError, status: http.StatusInternalServerError, calls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockPositionSetService{err: tt.err}
			rr := serve(t, newPositionSetRouter(svc), http.MethodPost, "/position-sets/import", tt.body)
			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, tt.calls, svc.calledCount)
			assert.NotEmpty(t, decodeError(t, rr).Error)
		})
	}
}
