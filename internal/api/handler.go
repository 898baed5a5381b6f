// Package api exposes the analyses and their stored results over HTTP.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"gostatcore/app"
	"gostatcore/domain/analysis"
	"gostatcore/internal"
	apperrors "gostatcore/internal/errors"
	"gostatcore/ports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	defaultListLimit = 20
	maxListLimit     = 200
)

// AnalysisHandler runs analyses synchronously and serves persisted results
type AnalysisHandler struct {
	deps    func() app.Deps
	results ports.ResultReader
	logger  *internal.Logger
}

// NewAnalysisHandler creates a handler. deps is called once per request so
// every run gets its own analysis state.
func NewAnalysisHandler(deps func() app.Deps, results ports.ResultReader, logger *internal.Logger) *AnalysisHandler {
	return &AnalysisHandler{deps: deps, results: results, logger: logger.With("API")}
}

// StatisticView is a statistic with its output decoded for JSON clients
type StatisticView struct {
	Title       string          `json:"title"`
	Components  string          `json:"components"`
	Description string          `json:"description"`
	Output      json.RawMessage `json:"output"`
}

// AnalysisResponse is the body returned after a run
type AnalysisResponse struct {
	Title      string          `json:"title,omitempty"`
	Log        string          `json:"log,omitempty"`
	Note       string          `json:"note,omitempty"`
	ErrorMsg   string          `json:"errorMsg,omitempty"`
	State      string          `json:"state"`
	Statistics []StatisticView `json:"statistics"`
}

// RunFrequencies handles POST /api/v1/analyses/frequencies
func (h *AnalysisHandler) RunFrequencies(c *gin.Context) {
	var req analysis.FrequenciesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	a := app.NewFrequenciesAnalysis(h.deps())
	defer a.Close()
	h.respond(c, func(ctx context.Context) (app.Outcome, error) { return a.Run(ctx, req) })
}

// RunChiSquare handles POST /api/v1/analyses/chi-square
func (h *AnalysisHandler) RunChiSquare(c *gin.Context) {
	req := app.ChiSquareRequest{Options: analysis.ChiSquareOptions{
		ExpectedRange: analysis.ExpectedRange{GetFromData: true},
		ExpectedValue: analysis.ExpectedValue{AllCategoriesEqual: true},
	}}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	a := app.NewChiSquareAnalysis(h.deps())
	defer a.Close()
	h.respond(c, func(ctx context.Context) (app.Outcome, error) { return a.Run(ctx, req) })
}

// RunRuns handles POST /api/v1/analyses/runs
func (h *AnalysisHandler) RunRuns(c *gin.Context) {
	var req app.RunsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	a := app.NewRunsAnalysis(h.deps())
	defer a.Close()
	h.respond(c, func(ctx context.Context) (app.Outcome, error) { return a.Run(ctx, req) })
}

func (h *AnalysisHandler) respond(c *gin.Context, run func(context.Context) (app.Outcome, error)) {
	out, err := run(c.Request.Context())
	switch {
	case apperrors.GetCode(err) == apperrors.CodeValidationError:
		c.JSON(http.StatusBadRequest, gin.H{"error": out.ErrorMsg})
		return
	case err != nil:
		h.logger.Warn("analysis aborted: %v", err)
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "Analysis did not finish"})
		return
	}

	resp := AnalysisResponse{ErrorMsg: out.ErrorMsg, State: out.State.String(), Statistics: []StatisticView{}}
	if r := out.Result; r != nil {
		resp.Title, resp.Log, resp.Note = r.Title, r.Log, r.Note
		for _, s := range r.Statistics {
			resp.Statistics = append(resp.Statistics, StatisticView{
				Title:       s.Title,
				Components:  s.Components,
				Description: s.Description,
				Output:      json.RawMessage(s.OutputData),
			})
		}
	}

	status := http.StatusOK
	if out.State == app.StateFailed {
		status = http.StatusInternalServerError
	}
	c.JSON(status, resp)
}

// ListAnalytics handles GET /api/v1/analytics
func (h *AnalysisHandler) ListAnalytics(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultListLimit)))
	if err != nil || limit < 1 || limit > maxListLimit {
		limit = defaultListLimit
	}

	analytics, err := h.results.ListAnalytics(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list analytics: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve analytics"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"analytics": analytics, "count": len(analytics)})
}

// GetAnalytic handles GET /api/v1/analytics/:id
func (h *AnalysisHandler) GetAnalytic(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	analytic, err := h.results.GetAnalytic(c.Request.Context(), id)
	if err != nil {
		h.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, analytic)
}

// ListStatistics handles GET /api/v1/analytics/:id/statistics
func (h *AnalysisHandler) ListStatistics(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if _, err := h.results.GetAnalytic(c.Request.Context(), id); err != nil {
		h.storeError(c, err)
		return
	}
	stats, err := h.results.ListStatistics(c.Request.Context(), id)
	if err != nil {
		h.storeError(c, err)
		return
	}

	views := make([]StatisticView, 0, len(stats))
	for _, s := range stats {
		views = append(views, StatisticView{
			Title:       s.Title,
			Components:  s.Components,
			Description: s.Description,
			Output:      json.RawMessage(s.OutputData),
		})
	}
	c.JSON(http.StatusOK, gin.H{"statistics": views, "count": len(views)})
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid analytic ID"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *AnalysisHandler) storeError(c *gin.Context, err error) {
	if apperrors.GetCode(err) == apperrors.CodeNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "Analytic not found"})
		return
	}
	h.logger.Error("result store: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve results"})
}
