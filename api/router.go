package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/binarydooms-ai/youtube-downloader-api/api/handlers"
	"github.com/binarydooms-ai/youtube-downloader-api/api/middleware"
	"github.com/binarydooms-ai/youtube-downloader-api/internal/app"
)

// SetupRouter sets up the HTTP router
func SetupRouter(
	resolver *app.FormatResolver,
	jobService *app.JobService,
	hub *handlers.ProgressHub,
	log *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS())

	// Health endpoints
	healthHandler := handlers.NewHealthHandler(jobService)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		formatHandler := handlers.NewFormatHandler(resolver, log)
		v1.POST("/formats", formatHandler.ResolveFormats)

		jobHandler := handlers.NewJobHandler(jobService, log)
		jobs := v1.Group("/jobs")
		{
			jobs.POST("", jobHandler.CreateJob)
			jobs.GET("", jobHandler.ListJobs)
			jobs.DELETE("", jobHandler.ClearJobs)
			jobs.GET("/stats", jobHandler.GetStats)
			jobs.GET("/ws", hub.HandleWebSocket)
			jobs.GET("/:id", jobHandler.GetJob)
			jobs.GET("/:id/file", jobHandler.GetJobFile)
			jobs.DELETE("/:id", jobHandler.DeleteJob)
		}
	}

	return router
}
