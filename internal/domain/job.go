package domain

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the current status of a download job
type JobStatus string

const (
	StatusPending     JobStatus = "pending"
	StatusDownloading JobStatus = "downloading"
	StatusCompleted   JobStatus = "completed"
	StatusFailed      JobStatus = "failed"
)

// Job represents a single download job. A job moves forward-only through
// pending -> downloading -> completed|failed and is mutated exclusively by
// the orchestrator once the download starts.
type Job struct {
	ID           string     `json:"id" gorm:"primaryKey"`
	VideoID      string     `json:"video_id" gorm:"not null;index"`
	Title        string     `json:"title"`
	Thumbnail    string     `json:"thumbnail,omitempty"`
	Quality      string     `json:"quality,omitempty"`
	Format       string     `json:"format,omitempty"`
	Status       JobStatus  `json:"status" gorm:"not null;index"`
	Progress     int        `json:"progress"`
	FilePath     string     `json:"file_path,omitempty"`
	FileSize     string     `json:"file_size,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// NewJob creates a new pending job. Title, thumbnail, quality and format are
// descriptive metadata copied verbatim from the client's request.
func NewJob(videoID, title, thumbnail, quality, format string) *Job {
	return &Job{
		ID:        uuid.New().String(),
		VideoID:   videoID,
		Title:     title,
		Thumbnail: thumbnail,
		Quality:   quality,
		Format:    format,
		Status:    StatusPending,
		Progress:  0,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// MarkDownloading marks the job as downloading
func (j *Job) MarkDownloading() {
	j.Status = StatusDownloading
	j.UpdatedAt = time.Now()
}

// SetProgress raises the job's progress. Progress is monotonically
// non-decreasing while downloading; stale or out-of-order values are ignored.
func (j *Job) SetProgress(percent int) bool {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	if j.Status != StatusDownloading || percent <= j.Progress {
		return false
	}
	j.Progress = percent
	j.UpdatedAt = time.Now()
	return true
}

// MarkCompleted marks the job as completed with the final file path and size
func (j *Job) MarkCompleted(filePath, fileSize string) {
	j.Status = StatusCompleted
	j.Progress = 100
	j.FilePath = filePath
	j.FileSize = fileSize
	now := time.Now()
	j.CompletedAt = &now
	j.UpdatedAt = now
}

// MarkFailed marks the job as failed and resets progress
func (j *Job) MarkFailed(err error) {
	j.Status = StatusFailed
	j.Progress = 0
	if err != nil {
		j.ErrorMessage = err.Error()
	}
	j.UpdatedAt = time.Now()
}

// IsTerminal checks if the job is in a terminal state
func (j *Job) IsTerminal() bool {
	return j.Status == StatusCompleted || j.Status == StatusFailed
}
