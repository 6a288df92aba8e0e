package handlers

import (
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/binarydooms-ai/youtube-downloader-api/internal/app"
	"github.com/binarydooms-ai/youtube-downloader-api/internal/domain"
)

// JobHandler serves the download job endpoints
type JobHandler struct {
	jobs   *app.JobService
	logger *zap.Logger
}

// NewJobHandler creates a new job handler
func NewJobHandler(jobs *app.JobService, logger *zap.Logger) *JobHandler {
	return &JobHandler{
		jobs:   jobs,
		logger: logger,
	}
}

// CreateJobRequest is the request body for POST /api/v1/jobs. Either
// stream_id (progressive) or both video_stream_id and audio_stream_id
// (mux) must be provided.
type CreateJobRequest struct {
	VideoID       string `json:"video_id" binding:"required"`
	Title         string `json:"title"`
	Thumbnail     string `json:"thumbnail"`
	Quality       string `json:"quality"`
	Format        string `json:"format"`
	StreamID      string `json:"stream_id"`
	VideoStreamID string `json:"video_stream_id"`
	AudioStreamID string `json:"audio_stream_id"`
}

// CreateJob handles POST /api/v1/jobs
func (h *JobHandler) CreateJob(c *gin.Context) {
	var req CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	job, err := h.jobs.StartDownload(c.Request.Context(), app.DownloadRequest{
		VideoID:       req.VideoID,
		Title:         req.Title,
		Thumbnail:     req.Thumbnail,
		Quality:       req.Quality,
		Format:        req.Format,
		StreamID:      req.StreamID,
		VideoStreamID: req.VideoStreamID,
		AudioStreamID: req.AudioStreamID,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, job)
}

// ListJobs handles GET /api/v1/jobs
func (h *JobHandler) ListJobs(c *gin.Context) {
	jobs, err := h.jobs.ListJobs()
	if err != nil {
		h.logger.Error("listing jobs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list jobs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"jobs": jobs, "count": len(jobs)})
}

// GetJob handles GET /api/v1/jobs/:id
func (h *JobHandler) GetJob(c *gin.Context) {
	job, err := h.jobs.GetJob(c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
			return
		}
		h.logger.Error("fetching job", zap.String("job_id", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch job"})
		return
	}
	c.JSON(http.StatusOK, job)
}

// GetJobFile handles GET /api/v1/jobs/:id/file, streaming the completed
// download as an attachment.
func (h *JobHandler) GetJobFile(c *gin.Context) {
	job, err := h.jobs.GetJob(c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch job"})
		return
	}

	if job.Status != domain.StatusCompleted || job.FilePath == "" {
		c.JSON(http.StatusConflict, gin.H{"error": "job has no completed file"})
		return
	}
	info, err := os.Stat(job.FilePath)
	if err != nil || info.IsDir() {
		c.JSON(http.StatusNotFound, gin.H{"error": domain.ErrFileSystem.Error()})
		return
	}

	c.FileAttachment(job.FilePath, info.Name())
}

// DeleteJob handles DELETE /api/v1/jobs/:id. Deleting an unknown id is not
// an error; the response reports whether anything was removed.
func (h *JobHandler) DeleteJob(c *gin.Context) {
	deleted, err := h.jobs.DeleteJob(c.Param("id"))
	if err != nil {
		h.logger.Error("deleting job", zap.String("job_id", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete job"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// ClearJobs handles DELETE /api/v1/jobs
func (h *JobHandler) ClearJobs(c *gin.Context) {
	if err := h.jobs.Clear(); err != nil {
		h.logger.Error("clearing jobs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear jobs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cleared": true})
}

// GetStats handles GET /api/v1/jobs/stats
func (h *JobHandler) GetStats(c *gin.Context) {
	stats, err := h.jobs.Stats()
	if err != nil {
		h.logger.Error("fetching stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}
