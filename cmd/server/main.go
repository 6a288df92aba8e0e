package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/binarydooms-ai/youtube-downloader-api/api"
	"github.com/binarydooms-ai/youtube-downloader-api/api/handlers"
	"github.com/binarydooms-ai/youtube-downloader-api/internal/app"
	"github.com/binarydooms-ai/youtube-downloader-api/internal/domain"
	"github.com/binarydooms-ai/youtube-downloader-api/internal/infrastructure"
	"github.com/binarydooms-ai/youtube-downloader-api/pkg/logger"
)

var configPath = flag.String("config", "", "Path to config file")

func main() {
	flag.Parse()

	// Load configuration
	config, err := app.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:      config.Logging.Level,
		Format:     config.Logging.Format,
		OutputPath: config.Logging.OutputPath,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting YouTube downloader server",
		zap.String("version", "1.0.0"),
		zap.String("host", config.Server.Host),
		zap.Int("port", config.Server.Port),
		zap.String("output_dir", config.Download.OutputDir))

	// Create directories
	if err := createDirectories(config); err != nil {
		log.Fatal("Failed to create directories", zap.Error(err))
	}

	// Initialize repository
	repo, err := infrastructure.NewSQLiteJobRepository(config.Database.Path)
	if err != nil {
		log.Fatal("Failed to initialize repository", zap.Error(err))
	}
	defer repo.Close()

	// Initialize infrastructure services
	catalog := infrastructure.NewYouTubeCatalog(config.Download.ClientTimeout, log)
	processor := infrastructure.NewFFmpegProcessor(config.Download.FFmpegBinary, log)
	notifier := infrastructure.NewNotificationService(&config.Notification, log)

	// Wire the application services
	hub := handlers.NewProgressHub(log)
	orchestrator := app.NewOrchestrator(repo, catalog, processor, &config.Download, log, hub.Publish)
	jobService := app.NewJobService(repo, orchestrator, notifier, config.Download.ConcurrentLimit, log)
	resolver := app.NewFormatResolver(catalog, log)

	// Setup HTTP router
	router := api.SetupRouter(resolver, jobService, hub, log)

	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info("HTTP server listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Shutdown HTTP server, then wait for in-flight downloads
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	jobService.Wait()

	log.Info("Server exited")
}

func createDirectories(config *domain.Config) error {
	dirs := []string{
		config.Download.OutputDir,
		config.Download.TempDir,
		filepath.Dir(config.Database.Path),
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
