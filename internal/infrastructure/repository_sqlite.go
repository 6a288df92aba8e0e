package infrastructure

import (
	"errors"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/binarydooms-ai/youtube-downloader-api/internal/domain"
)

// SQLiteJobRepository implements JobRepository using SQLite
type SQLiteJobRepository struct {
	db *gorm.DB
}

// NewSQLiteJobRepository creates a new SQLite repository
func NewSQLiteJobRepository(dbPath string) (*SQLiteJobRepository, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&domain.Job{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &SQLiteJobRepository{db: db}, nil
}

// Create creates a new job
func (r *SQLiteJobRepository) Create(job *domain.Job) error {
	return r.db.Create(job).Error
}

// Update updates an existing job
func (r *SQLiteJobRepository) Update(job *domain.Job) error {
	return r.db.Save(job).Error
}

// Delete deletes a job by ID, reporting whether a record existed
func (r *SQLiteJobRepository) Delete(id string) (bool, error) {
	result := r.db.Delete(&domain.Job{}, "id = ?", id)
	return result.RowsAffected > 0, result.Error
}

// FindByID finds a job by ID
func (r *SQLiteJobRepository) FindByID(id string) (*domain.Job, error) {
	var job domain.Job
	err := r.db.First(&job, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// FindByStatus finds jobs by status
func (r *SQLiteJobRepository) FindByStatus(status domain.JobStatus) ([]*domain.Job, error) {
	var jobs []*domain.Job
	err := r.db.Where("status = ?", status).Order("created_at DESC").Find(&jobs).Error
	return jobs, err
}

// FindAll returns all jobs, newest first
func (r *SQLiteJobRepository) FindAll() ([]*domain.Job, error) {
	var jobs []*domain.Job
	err := r.db.Order("created_at DESC").Find(&jobs).Error
	return jobs, err
}

// Clear removes every job record
func (r *SQLiteJobRepository) Clear() error {
	return r.db.Where("1 = 1").Delete(&domain.Job{}).Error
}

// Count returns the total number of jobs
func (r *SQLiteJobRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&domain.Job{}).Count(&count).Error
	return count, err
}

// CountByStatus returns the number of jobs by status
func (r *SQLiteJobRepository) CountByStatus(status domain.JobStatus) (int64, error) {
	var count int64
	err := r.db.Model(&domain.Job{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

// GetStats returns job statistics
func (r *SQLiteJobRepository) GetStats() (*domain.JobStats, error) {
	stats := &domain.JobStats{}

	if err := r.db.Model(&domain.Job{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	statusCounts := []struct {
		Status domain.JobStatus
		Count  int64
	}{}

	if err := r.db.Model(&domain.Job{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		return nil, err
	}

	for _, sc := range statusCounts {
		switch sc.Status {
		case domain.StatusPending:
			stats.Pending = sc.Count
		case domain.StatusDownloading:
			stats.Downloading = sc.Count
		case domain.StatusCompleted:
			stats.Completed = sc.Count
		case domain.StatusFailed:
			stats.Failed = sc.Count
		}
	}

	return stats, nil
}

// Close closes the database connection
func (r *SQLiteJobRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
