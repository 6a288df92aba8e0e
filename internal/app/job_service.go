package app

import (
	"context"
	"errors"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/binarydooms-ai/youtube-downloader-api/internal/domain"
)

// Notifier sends desktop notifications on job completion
type Notifier interface {
	NotifyJobCompleted(title string)
	NotifyJobFailed(title string)
}

// DownloadRequest is a validated request to start one download job
type DownloadRequest struct {
	VideoID       string
	Title         string
	Thumbnail     string
	Quality       string
	Format        string
	StreamID      string
	VideoStreamID string
	AudioStreamID string
}

// isMux reports whether the request targets the two-stream mux pipeline
func (r *DownloadRequest) isMux() bool {
	return r.VideoStreamID != "" && r.AudioStreamID != ""
}

// JobService manages download jobs: creation, bounded background execution,
// queries and cleanup of finished artifacts.
type JobService struct {
	repo         domain.JobRepository
	orchestrator *Orchestrator
	notifier     Notifier
	logger       *zap.Logger
	sem          chan struct{}
	wg           sync.WaitGroup
}

// NewJobService creates a job service running at most concurrentLimit
// downloads at once. notifier may be nil.
func NewJobService(
	repo domain.JobRepository,
	orchestrator *Orchestrator,
	notifier Notifier,
	concurrentLimit int,
	logger *zap.Logger,
) *JobService {
	if concurrentLimit < 1 {
		concurrentLimit = 1
	}
	return &JobService{
		repo:         repo,
		orchestrator: orchestrator,
		notifier:     notifier,
		logger:       logger,
		sem:          make(chan struct{}, concurrentLimit),
	}
}

// StartDownload creates a pending job and schedules it for background
// processing. It returns as soon as the job record exists; callers observe
// progress through queries or the live feed.
func (s *JobService) StartDownload(ctx context.Context, req DownloadRequest) (*domain.Job, error) {
	if req.VideoID == "" {
		return nil, errors.New("video_id is required")
	}
	if req.StreamID == "" && !req.isMux() {
		return nil, errors.New("either stream_id or both video_stream_id and audio_stream_id are required")
	}
	if req.StreamID != "" && req.isMux() {
		return nil, errors.New("stream_id and video/audio stream ids are mutually exclusive")
	}

	job := domain.NewJob(req.VideoID, req.Title, req.Thumbnail, req.Quality, req.Format)
	if err := s.repo.Create(job); err != nil {
		return nil, err
	}

	s.logger.Info("job queued",
		zap.String("job_id", job.ID),
		zap.String("video_id", job.VideoID),
		zap.String("quality", job.Quality),
		zap.String("format", job.Format))

	s.wg.Add(1)
	go s.run(job, req)

	return job, nil
}

// run executes one job behind the concurrency gate. Jobs stay pending while
// waiting for a slot.
func (s *JobService) run(job *domain.Job, req DownloadRequest) {
	defer s.wg.Done()
	s.sem <- struct{}{}
	defer func() { <-s.sem }()

	ctx := context.Background()
	if req.isMux() {
		s.orchestrator.ProcessMux(ctx, job, req.VideoStreamID, req.AudioStreamID)
	} else {
		s.orchestrator.ProcessProgressive(ctx, job, req.StreamID, req.Format)
	}

	if s.notifier == nil {
		return
	}
	switch job.Status {
	case domain.StatusCompleted:
		s.notifier.NotifyJobCompleted(job.Title)
	case domain.StatusFailed:
		s.notifier.NotifyJobFailed(job.Title)
	}
}

// GetJob returns one job by id
func (s *JobService) GetJob(id string) (*domain.Job, error) {
	return s.repo.FindByID(id)
}

// ListJobs returns all jobs, newest first
func (s *JobService) ListJobs() ([]*domain.Job, error) {
	return s.repo.FindAll()
}

// DeleteJob removes a job record and its downloaded file, if any. Deleting
// an unknown id reports false without an error.
func (s *JobService) DeleteJob(id string) (bool, error) {
	job, err := s.repo.FindByID(id)
	if errors.Is(err, domain.ErrJobNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if job.FilePath != "" {
		if err := os.Remove(job.FilePath); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("removing job file", zap.String("path", job.FilePath), zap.Error(err))
		}
	}
	return s.repo.Delete(id)
}

// Clear removes every job record and every downloaded file
func (s *JobService) Clear() error {
	jobs, err := s.repo.FindAll()
	if err != nil {
		return err
	}
	for _, job := range jobs {
		if job.FilePath == "" {
			continue
		}
		if err := os.Remove(job.FilePath); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("removing job file", zap.String("path", job.FilePath), zap.Error(err))
		}
	}
	return s.repo.Clear()
}

// Stats returns aggregate job counts by status
func (s *JobService) Stats() (*domain.JobStats, error) {
	return s.repo.GetStats()
}

// Wait blocks until every scheduled job has finished processing
func (s *JobService) Wait() {
	s.wg.Wait()
}
