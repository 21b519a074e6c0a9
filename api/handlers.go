// Package api exposes the TF-IDF index over HTTP.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/go-tfidf-search/config"
	"github.com/gcbaptista/go-tfidf-search/internal/metrics"
	"github.com/gcbaptista/go-tfidf-search/services"
)

// snapshotWriter is implemented by engines that can persist in the background.
type snapshotWriter interface {
	PersistAsync() (string, error)
}

// API holds dependencies for API handlers, primarily the index manager.
type API struct {
	engine  services.IndexManager
	metrics *metrics.Metrics
}

// NewAPI creates a new API handler structure.
func NewAPI(engine services.IndexManager, m *metrics.Metrics) *API {
	return &API{
		engine:  engine,
		metrics: m,
	}
}

// NewRouter builds a gin engine with the standard middleware chain and all routes.
func NewRouter(engine services.IndexManager, m *metrics.Metrics, settings config.Settings) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(LoggingMiddleware())
	router.Use(MetricsMiddleware(m))
	router.Use(CORSMiddleware())
	router.Use(RequestSizeLimitMiddleware(settings.Server.MaxRequestBytes))

	SetupRoutes(router, engine, m, settings)
	return router
}

// SetupRoutes defines all the API routes for the search service.
func SetupRoutes(router *gin.Engine, engine services.IndexManager, m *metrics.Metrics, settings config.Settings) {
	apiHandler := NewAPI(engine, m)

	// Health check route
	router.GET("/health", apiHandler.HealthCheckHandler)

	if settings.Metrics.Enabled && m != nil {
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}

	// Job management routes
	router.GET("/jobs", apiHandler.ListJobsHandler)
	jobRoutes := router.Group("/jobs")
	{
		jobRoutes.GET("/metrics", apiHandler.GetJobMetricsHandler) // Get job performance metrics
		jobRoutes.GET("/:jobId", apiHandler.GetJobHandler)         // Get job status by ID
	}

	apiRoutes := router.Group("/api")
	{
		apiRoutes.POST("/search", apiHandler.SearchHandler)
		apiRoutes.GET("/stats", apiHandler.StatsHandler)
		apiRoutes.POST("/reindex", apiHandler.ReindexHandler)
		apiRoutes.POST("/persist", apiHandler.PersistHandler)

		apiRoutes.GET("/documents", apiHandler.GetDocumentsHandler)       // List document ids with pagination
		apiRoutes.GET("/document", apiHandler.GetDocumentHandler)         // ?id=<path>
		apiRoutes.DELETE("/document", apiHandler.DeleteDocumentHandler) // ?id=<path>
	}
}

// HealthCheckHandler provides a simple health check endpoint
func (api *API) HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "go-tfidf-search",
		"timestamp": fmt.Sprintf("%d", time.Now().Unix()),
	})
}

// StatsHandler returns corpus size and the outcome of the last reindex.
func (api *API) StatsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, api.engine.Stats())
}

// ReindexHandler starts an asynchronous reindex of the corpus root.
func (api *API) ReindexHandler(c *gin.Context) {
	jobID, err := api.engine.ReindexAsync()
	if err != nil {
		SendAppError(c, ErrorCodeIndexingFailed, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status":  "accepted",
		"message": "Reindex started",
		"job_id":  jobID,
	})
}

// PersistHandler writes the index snapshot in a background job.
func (api *API) PersistHandler(c *gin.Context) {
	writer, ok := api.engine.(snapshotWriter)
	if !ok {
		if err := api.engine.Persist(); err != nil {
			SendAppError(c, ErrorCodePersistenceFailed, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "persisted"})
		return
	}

	jobID, err := writer.PersistAsync()
	if err != nil {
		SendAppError(c, ErrorCodeJobExecutionFailed, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status":  "accepted",
		"message": "Snapshot write started",
		"job_id":  jobID,
	})
}
