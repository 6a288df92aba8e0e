package infrastructure

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binarydooms-ai/youtube-downloader-api/internal/domain"
)

func newTestRepo(t *testing.T) *SQLiteJobRepository {
	t.Helper()
	repo, err := NewSQLiteJobRepository(filepath.Join(t.TempDir(), "jobs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestRepository_CreateAndFind(t *testing.T) {
	repo := newTestRepo(t)

	job := domain.NewJob("vid123", "Test Video", "", "1080p", "mp4")
	require.NoError(t, repo.Create(job))

	found, err := repo.FindByID(job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, found.ID)
	assert.Equal(t, "vid123", found.VideoID)
	assert.Equal(t, domain.StatusPending, found.Status)
}

func TestRepository_FindByID_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.FindByID("missing")
	assert.ErrorIs(t, err, domain.ErrJobNotFound)
}

func TestRepository_Update(t *testing.T) {
	repo := newTestRepo(t)

	job := domain.NewJob("vid123", "Test Video", "", "1080p", "mp4")
	require.NoError(t, repo.Create(job))

	job.MarkDownloading()
	job.SetProgress(42)
	require.NoError(t, repo.Update(job))

	found, err := repo.FindByID(job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDownloading, found.Status)
	assert.Equal(t, 42, found.Progress)
}

func TestRepository_Delete(t *testing.T) {
	repo := newTestRepo(t)

	job := domain.NewJob("vid123", "Test Video", "", "1080p", "mp4")
	require.NoError(t, repo.Create(job))

	deleted, err := repo.Delete(job.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	// Deleting again reports absence without error
	deleted, err = repo.Delete(job.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestRepository_FindAll_NewestFirst(t *testing.T) {
	repo := newTestRepo(t)

	older := domain.NewJob("vid1", "First", "", "720p", "mp4")
	require.NoError(t, repo.Create(older))

	newer := domain.NewJob("vid2", "Second", "", "720p", "mp4")
	newer.CreatedAt = older.CreatedAt.Add(time.Second)
	require.NoError(t, repo.Create(newer))

	jobs, err := repo.FindAll()
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, "vid2", jobs[0].VideoID)
	assert.Equal(t, "vid1", jobs[1].VideoID)
}

func TestRepository_FindByStatus(t *testing.T) {
	repo := newTestRepo(t)

	pending := domain.NewJob("vid1", "a", "", "", "")
	require.NoError(t, repo.Create(pending))

	failed := domain.NewJob("vid2", "b", "", "", "")
	failed.MarkDownloading()
	failed.MarkFailed(nil)
	require.NoError(t, repo.Create(failed))

	jobs, err := repo.FindByStatus(domain.StatusFailed)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "vid2", jobs[0].VideoID)
}

func TestRepository_Clear(t *testing.T) {
	repo := newTestRepo(t)

	// Clearing an empty store is a no-op
	require.NoError(t, repo.Clear())

	require.NoError(t, repo.Create(domain.NewJob("vid1", "a", "", "", "")))
	require.NoError(t, repo.Create(domain.NewJob("vid2", "b", "", "", "")))

	require.NoError(t, repo.Clear())
	count, err := repo.Count()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRepository_GetStats(t *testing.T) {
	repo := newTestRepo(t)

	pending := domain.NewJob("v1", "a", "", "", "")
	require.NoError(t, repo.Create(pending))

	completed := domain.NewJob("v2", "b", "", "", "")
	completed.MarkDownloading()
	completed.MarkCompleted("/tmp/x.mp4", "1.0MB")
	require.NoError(t, repo.Create(completed))

	failed := domain.NewJob("v3", "c", "", "", "")
	failed.MarkDownloading()
	failed.MarkFailed(nil)
	require.NoError(t, repo.Create(failed))

	stats, err := repo.GetStats()
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(1), stats.Pending)
	assert.Equal(t, int64(1), stats.Completed)
	assert.Equal(t, int64(1), stats.Failed)
	assert.Equal(t, int64(0), stats.Downloading)
}
