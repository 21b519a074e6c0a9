package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/go-tfidf-search/internal/jobs"
	"github.com/gcbaptista/go-tfidf-search/model"
	"github.com/gcbaptista/go-tfidf-search/services"
)

// jobMetricsProvider is implemented by engines that track job statistics.
type jobMetricsProvider interface {
	GetJobMetrics() jobs.JobMetricsData
}

// GetJobHandler handles requests to get job status by ID
func (api *API) GetJobHandler(c *gin.Context) {
	jobID := c.Param("jobId")

	jobManager, ok := api.engine.(services.JobManager)
	if !ok {
		SendError(c, http.StatusNotImplemented, ErrorCodeNotSupported, "Job management not supported by this engine")
		return
	}

	job, err := jobManager.GetJob(jobID)
	if err != nil {
		SendAppError(c, ErrorCodeInternalError, err)
		return
	}

	c.JSON(http.StatusOK, job)
}

// ListJobsHandler lists jobs, newest first, optionally filtered by ?status=.
func (api *API) ListJobsHandler(c *gin.Context) {
	jobManager, ok := api.engine.(services.JobManager)
	if !ok {
		SendError(c, http.StatusNotImplemented, ErrorCodeNotSupported, "Job management not supported by this engine")
		return
	}

	var statusFilter *model.JobStatus
	if statusParam := c.Query("status"); statusParam != "" {
		status := model.JobStatus(statusParam)
		if !status.Valid() {
			result := &ValidationResult{Valid: true}
			result.AddError("status", "Unknown job status '"+statusParam+"'")
			SendValidationError(c, result)
			return
		}
		statusFilter = &status
	}

	jobList := jobManager.ListJobs(c.Query("target"), statusFilter)
	c.JSON(http.StatusOK, gin.H{
		"jobs":  jobList,
		"total": len(jobList),
	})
}

// GetJobMetricsHandler handles requests to get job performance metrics
func (api *API) GetJobMetricsHandler(c *gin.Context) {
	provider, ok := api.engine.(jobMetricsProvider)
	if !ok {
		SendError(c, http.StatusNotImplemented, ErrorCodeNotSupported, "Job metrics not supported by this engine")
		return
	}

	c.JSON(http.StatusOK, gin.H{"metrics": provider.GetJobMetrics()})
}
