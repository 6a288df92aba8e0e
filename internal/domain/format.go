package domain

import (
	"fmt"
	"strings"
	"time"
)

// StreamDescriptor describes one encoding variant offered by the catalog
// service. At least one of HasVideo/HasAudio is always true.
type StreamDescriptor struct {
	ID            string `json:"id"`
	Container     string `json:"container"`
	VideoCodec    string `json:"video_codec,omitempty"`
	AudioCodec    string `json:"audio_codec,omitempty"`
	QualityLabel  string `json:"quality_label,omitempty"`
	HasVideo      bool   `json:"has_video"`
	HasAudio      bool   `json:"has_audio"`
	Bitrate       int    `json:"bitrate,omitempty"` // bits per second
	ContentLength int64  `json:"content_length,omitempty"`
}

// DownloadMethod discriminates how a format option is downloaded
type DownloadMethod string

const (
	// MethodProgressive downloads a single stream that already contains
	// every track the output needs.
	MethodProgressive DownloadMethod = "progressive"
	// MethodMux downloads separate video-only and audio-only streams and
	// combines them with a lossless stream copy.
	MethodMux DownloadMethod = "mux"
)

// FormatOption is one downloadable entry of the resolved format menu
type FormatOption struct {
	Method        DownloadMethod `json:"download_method"`
	StreamID      string         `json:"stream_id,omitempty"`
	VideoStreamID string         `json:"video_stream_id,omitempty"`
	AudioStreamID string         `json:"audio_stream_id,omitempty"`
	Quality       string         `json:"quality"`
	Container     string         `json:"container"`
	FileSize      int64          `json:"file_size"`
	FileSizeLabel string         `json:"file_size_label,omitempty"`
}

// FormatMenu is the resolver output: video options sorted by resolution
// descending, then audio options, plus top-level video metadata.
type FormatMenu struct {
	VideoID   string         `json:"video_id"`
	Title     string         `json:"title"`
	Thumbnail string         `json:"thumbnail,omitempty"`
	Duration  string         `json:"duration"`
	Views     string         `json:"views"`
	Options   []FormatOption `json:"options"`
}

// ResolutionPriority ranks a quality label for menu ordering. Unknown labels
// rank below every known resolution.
func ResolutionPriority(label string) int {
	switch {
	case strings.HasPrefix(label, "2160"), strings.EqualFold(label, "4k"):
		return 9000
	case strings.HasPrefix(label, "1440"), strings.EqualFold(label, "2k"):
		return 8000
	case strings.HasPrefix(label, "1080"):
		return 7000
	case strings.HasPrefix(label, "720"):
		return 6000
	case strings.HasPrefix(label, "480"):
		return 5000
	case strings.HasPrefix(label, "360"):
		return 4000
	case strings.HasPrefix(label, "240"):
		return 3000
	case strings.HasPrefix(label, "144"):
		return 2000
	default:
		return 1000
	}
}

// IsAVCFamily reports whether a video codec belongs to the H.264/AVC family
func IsAVCFamily(codec string) bool {
	return strings.HasPrefix(codec, "avc1") ||
		strings.HasPrefix(codec, "avc3") ||
		strings.HasPrefix(codec, "h264")
}

// IsAACFamily reports whether an audio codec belongs to the AAC family
func IsAACFamily(codec string) bool {
	return strings.HasPrefix(codec, "mp4a") || strings.HasPrefix(codec, "aac")
}

// IsOpusAudio reports whether an audio stream can be carried in a webm
// container without re-encoding.
func IsOpusAudio(d *StreamDescriptor) bool {
	return strings.HasPrefix(d.AudioCodec, "opus") || d.Container == "webm"
}

// AudioQualityBucket maps a source audio bitrate (bits per second) to the
// displayed mp3 quality label.
func AudioQualityBucket(bitrate int) string {
	kbps := bitrate / 1000
	switch {
	case kbps >= 250:
		return "320kbps"
	case kbps >= 160:
		return "192kbps"
	default:
		return "128kbps"
	}
}

// FormatFileSize renders a byte count human-readable
func FormatFileSize(n int64) string {
	const unit = 1024
	if n <= 0 {
		return "0B"
	}
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}
	div, exp := int64(unit), 0
	for n >= unit*div && exp < 3 {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%s", float64(n)/float64(div), []string{"KB", "MB", "GB", "TB"}[exp])
}

// FormatDuration renders a duration as H:MM:SS, or M:SS under an hour
func FormatDuration(d time.Duration) string {
	total := int(d.Seconds())
	if total < 0 {
		total = 0
	}
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// FormatViews renders a view count with thousands separators
func FormatViews(views int) string {
	if views < 0 {
		views = 0
	}
	s := fmt.Sprintf("%d", views)
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String() + " views"
}
