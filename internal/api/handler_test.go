package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"gostatcore/adapters/memory"
	"gostatcore/app"
	"gostatcore/internal"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*gin.Engine, *memory.ResultStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := memory.NewResultStore()
	logger := internal.NewLogger(internal.LogLevelError)
	h := NewAnalysisHandler(func() app.Deps { return app.Deps{Sink: store, Logger: logger} }, store, logger)
	return NewRouter(h, true), store
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

var numericScore = map[string]any{"name": "score", "type": "NUMERIC", "measure": "scale"}

func TestRunFrequencies_PersistsAndLists(t *testing.T) {
	router, _ := newTestRouter(t)

	w := do(t, router, http.MethodPost, "/api/v1/analyses/frequencies", map[string]any{
		"variableData": []any{map[string]any{"variable": numericScore, "data": []any{1, 2, 2, nil}}},
		"options":      map[string]any{"displayFrequency": true},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp AnalysisResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Frequencies", resp.Title)
	assert.Equal(t, "Idle", resp.State)
	require.Len(t, resp.Statistics, 1)
	assert.Equal(t, "table", resp.Statistics[0].Components)
	assert.Contains(t, string(resp.Statistics[0].Output), `"tables"`)

	w = do(t, router, http.MethodGet, "/api/v1/analytics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Analytics []struct {
			ID    uuid.UUID `json:"id"`
			Title string    `json:"title"`
		} `json:"analytics"`
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Equal(t, 1, list.Count)

	w = do(t, router, http.MethodGet, "/api/v1/analytics/"+list.Analytics[0].ID.String()+"/statistics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)
}

func TestRunChiSquare_DefaultsToEqualExpected(t *testing.T) {
	router, _ := newTestRouter(t)

	w := do(t, router, http.MethodPost, "/api/v1/analyses/chi-square", map[string]any{
		"variables": []any{map[string]any{"variable": numericScore, "data": []any{1, 1, 2, 2, 2, 3}}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp AnalysisResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.ErrorMsg)
	titles := []string{}
	for _, s := range resp.Statistics {
		titles = append(titles, s.Title)
	}
	assert.Equal(t, []string{"Frequencies", "Test Statistics"}, titles)
}

func TestRunRuns_ValidationIsBadRequest(t *testing.T) {
	router, store := newTestRouter(t)

	w := do(t, router, http.MethodPost, "/api/v1/analyses/runs", map[string]any{
		"variables": []any{map[string]any{"variable": numericScore, "data": []any{1, 2}}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Please select at least one cut point.")

	analytics, err := store.ListAnalytics(t.Context(), 0)
	require.NoError(t, err)
	assert.Empty(t, analytics)

	w = do(t, router, http.MethodPost, "/api/v1/analyses/runs", "not an object")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalytics_Errors(t *testing.T) {
	router, _ := newTestRouter(t)

	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodGet, "/api/v1/analytics/not-a-uuid", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/api/v1/analytics/"+uuid.NewString(), nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/api/v1/analytics/"+uuid.NewString()+"/statistics", nil).Code)
}

func TestHealthAndMetrics(t *testing.T) {
	router, _ := newTestRouter(t)

	w := do(t, router, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(t, router, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "gostatcore_active_units")
}
