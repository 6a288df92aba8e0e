package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/binarydooms-ai/youtube-downloader-api/internal/app"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	jobs *app.JobService
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(jobs *app.JobService) *HealthHandler {
	return &HealthHandler{
		jobs: jobs,
	}
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: "1.0.0",
	})
}

// Ready handles GET /ready. The service is ready once the job store
// answers queries.
func (h *HealthHandler) Ready(c *gin.Context) {
	if _, err := h.jobs.Stats(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "job store unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
