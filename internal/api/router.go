package api

import (
	"net/http"

	"gostatcore/internal/metrics"

	"github.com/gin-gonic/gin"
)

// NewRouter wires the analysis routes, health check and optional metrics
func NewRouter(h *AnalysisHandler, metricsEnabled bool) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(h.logger))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if metricsEnabled {
		router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	v1 := router.Group("/api/v1")
	{
		v1.POST("/analyses/frequencies", h.RunFrequencies)
		v1.POST("/analyses/chi-square", h.RunChiSquare)
		v1.POST("/analyses/runs", h.RunRuns)

		v1.GET("/analytics", h.ListAnalytics)
		v1.GET("/analytics/:id", h.GetAnalytic)
		v1.GET("/analytics/:id/statistics", h.ListStatistics)
	}
	return router
}
