package domain

import "time"

// Config represents the application configuration
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Download     DownloadConfig     `mapstructure:"download"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Notification NotificationConfig `mapstructure:"notification"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// DownloadConfig contains download-related configuration
type DownloadConfig struct {
	OutputDir           string        `mapstructure:"output_dir"`
	TempDir             string        `mapstructure:"temp_dir"`
	FFmpegBinary        string        `mapstructure:"ffmpeg_binary"`
	ConcurrentLimit     int           `mapstructure:"concurrent_limit"`
	ClientTimeout       time.Duration `mapstructure:"client_timeout"`
	DefaultAudioBitrate int           `mapstructure:"default_audio_bitrate"` // kbps
}

// DatabaseConfig contains persistence configuration
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// NotificationConfig contains desktop notification configuration
type NotificationConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Method  string `mapstructure:"method"` // osascript, notify-send
}

// LoggingConfig contains logging-related configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, or file path
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8080,
		},
		Download: DownloadConfig{
			OutputDir:           "$HOME/Downloads/yt-downloads",
			TempDir:             "$HOME/Downloads/yt-downloads/tmp",
			FFmpegBinary:        "ffmpeg",
			ConcurrentLimit:     2,
			ClientTimeout:       2 * time.Minute,
			DefaultAudioBitrate: 192,
		},
		Database: DatabaseConfig{
			Path: "$HOME/Downloads/yt-downloads/jobs.db",
		},
		Notification: NotificationConfig{
			Enabled: false,
			Method:  "notify-send",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			OutputPath: "stdout",
		},
	}
}
