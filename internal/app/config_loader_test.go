package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binarydooms-ai/youtube-downloader-api/internal/domain"
)

func TestLoadConfig_FromFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: 0.0.0.0
  port: 9090
download:
  output_dir: /tmp/videos
  temp_dir: /tmp/videos/tmp
  ffmpeg_binary: /usr/local/bin/ffmpeg
  concurrent_limit: 4
  client_timeout: 5m
  default_audio_bitrate: 320
database:
  path: /tmp/videos/jobs.db
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

	config, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", config.Server.Host)
	assert.Equal(t, 9090, config.Server.Port)
	assert.Equal(t, "/tmp/videos", config.Download.OutputDir)
	assert.Equal(t, "/usr/local/bin/ffmpeg", config.Download.FFmpegBinary)
	assert.Equal(t, 4, config.Download.ConcurrentLimit)
	assert.Equal(t, 5*time.Minute, config.Download.ClientTimeout)
	assert.Equal(t, 320, config.Download.DefaultAudioBitrate)
	assert.Equal(t, "debug", config.Logging.Level)
}

func TestLoadConfig_DefaultsWhenFileMissing(t *testing.T) {
	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 8080, config.Server.Port)
	assert.Equal(t, "ffmpeg", config.Download.FFmpegBinary)
	assert.Equal(t, 2, config.Download.ConcurrentLimit)
	assert.NotContains(t, config.Download.OutputDir, "$HOME")
}

func TestLoadConfig_InvalidPortRejected(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("server:\n  port: 99999\n"), 0644))

	_, err := LoadConfig(configPath)
	assert.Error(t, err)
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "nested", "config.yaml")

	config := domain.DefaultConfig()
	config.Server.Host = "127.0.0.1"
	config.Server.Port = 7070
	config.Download.OutputDir = "/tmp/rt/videos"
	config.Download.ConcurrentLimit = 3
	config.Download.ClientTimeout = 90 * time.Second
	config.Database.Path = "/tmp/rt/jobs.db"
	config.Logging.Level = "warn"
	require.NoError(t, SaveConfig(config, configPath))

	loaded, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", loaded.Server.Host)
	assert.Equal(t, 7070, loaded.Server.Port)
	assert.Equal(t, "/tmp/rt/videos", loaded.Download.OutputDir)
	assert.Equal(t, 3, loaded.Download.ConcurrentLimit)
	assert.Equal(t, 90*time.Second, loaded.Download.ClientTimeout)
	assert.Equal(t, "/tmp/rt/jobs.db", loaded.Database.Path)
	assert.Equal(t, "warn", loaded.Logging.Level)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "videos"), expandPath("~/videos"))
	assert.Equal(t, home+"/videos", expandPath("$HOME/videos"))
	assert.Equal(t, "/absolute/path", expandPath("/absolute/path"))
}
