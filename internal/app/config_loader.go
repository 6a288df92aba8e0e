package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/binarydooms-ai/youtube-downloader-api/internal/domain"
)

// LoadConfig loads configuration from file and environment
func LoadConfig(configPath string) (*domain.Config, error) {
	// Start with default config
	config := domain.DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	// If config path is provided, use it
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in standard locations
		v.SetConfigName("config")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.yt-downloader")
		v.AddConfigPath("/etc/yt-downloader")
	}

	// Read environment variables
	v.SetEnvPrefix("YTDL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Try to read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults
	}

	// Unmarshal into config struct
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Expand environment variables in paths
	config = expandPaths(config)

	// Validate config
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// expandPaths expands environment variables in path configurations
func expandPaths(config *domain.Config) *domain.Config {
	config.Download.OutputDir = expandPath(config.Download.OutputDir)
	config.Download.TempDir = expandPath(config.Download.TempDir)
	config.Database.Path = expandPath(config.Database.Path)

	if config.Logging.OutputPath != "stdout" && config.Logging.OutputPath != "stderr" {
		config.Logging.OutputPath = expandPath(config.Logging.OutputPath)
	}

	return config
}

// expandPath expands environment variables and ~ in paths
func expandPath(path string) string {
	// Expand environment variables
	path = os.ExpandEnv(path)

	// Expand home directory
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	}

	// Replace $HOME
	if strings.Contains(path, "$HOME") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = strings.ReplaceAll(path, "$HOME", home)
		}
	}

	return path
}

// validateConfig validates the configuration
func validateConfig(config *domain.Config) error {
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Download.OutputDir == "" {
		return fmt.Errorf("download output directory not configured")
	}

	if config.Download.ConcurrentLimit < 1 {
		return fmt.Errorf("concurrent limit must be at least 1")
	}

	if config.Download.FFmpegBinary == "" {
		return fmt.Errorf("ffmpeg binary not configured")
	}

	if config.Database.Path == "" {
		return fmt.Errorf("database path not configured")
	}

	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}

	return nil
}

// SaveConfig writes the configuration to a yaml file that LoadConfig can
// read back. Keys are set individually so they match the mapstructure tags.
func SaveConfig(config *domain.Config, path string) error {
	v := viper.New()
	v.SetConfigType("yaml")

	v.Set("server.host", config.Server.Host)
	v.Set("server.port", config.Server.Port)
	v.Set("download.output_dir", config.Download.OutputDir)
	v.Set("download.temp_dir", config.Download.TempDir)
	v.Set("download.ffmpeg_binary", config.Download.FFmpegBinary)
	v.Set("download.concurrent_limit", config.Download.ConcurrentLimit)
	v.Set("download.client_timeout", config.Download.ClientTimeout.String())
	v.Set("download.default_audio_bitrate", config.Download.DefaultAudioBitrate)
	v.Set("database.path", config.Database.Path)
	v.Set("notification.enabled", config.Notification.Enabled)
	v.Set("notification.method", config.Notification.Method)
	v.Set("logging.level", config.Logging.Level)
	v.Set("logging.format", config.Logging.Format)
	v.Set("logging.output_path", config.Logging.OutputPath)

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Write config file
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
