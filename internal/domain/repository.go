package domain

// JobRepository defines the interface for job persistence
type JobRepository interface {
	// Create creates a new job record
	Create(job *Job) error

	// Update updates an existing job record
	Update(job *Job) error

	// Delete deletes a job by ID, reporting whether a record existed
	Delete(id string) (bool, error)

	// FindByID finds a job by ID, returning ErrJobNotFound when absent
	FindByID(id string) (*Job, error)

	// FindByStatus finds jobs by status
	FindByStatus(status JobStatus) ([]*Job, error)

	// FindAll returns all jobs ordered newest-first
	FindAll() ([]*Job, error)

	// Clear removes every job record; clearing an empty store is a no-op
	Clear() error

	// Count returns the total number of jobs
	Count() (int64, error)

	// CountByStatus returns the number of jobs with the given status
	CountByStatus(status JobStatus) (int64, error)

	// GetStats returns job statistics
	GetStats() (*JobStats, error)
}

// JobStats represents job statistics
type JobStats struct {
	Total       int64 `json:"total"`
	Pending     int64 `json:"pending"`
	Downloading int64 `json:"downloading"`
	Completed   int64 `json:"completed"`
	Failed      int64 `json:"failed"`
}
