package infrastructure

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/binarydooms-ai/youtube-downloader-api/internal/domain"
)

func TestCopyMuxArgs(t *testing.T) {
	args := CopyMuxArgs("/tmp/v.mp4", "/tmp/a.m4a", "/out/final.mp4")

	assert.Equal(t, []string{
		"-y", "-loglevel", "error", "-nostdin",
		"-progress", "pipe:1", "-nostats",
		"-i", "/tmp/v.mp4",
		"-i", "/tmp/a.m4a",
		"-c", "copy",
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-shortest",
		"/out/final.mp4",
	}, args)
}

func TestTranscodeAudioArgs(t *testing.T) {
	args := TranscodeAudioArgs("/tmp/a.webm", "/out/final.mp3", 192)

	assert.Contains(t, args, "-vn")
	assert.Contains(t, args, "libmp3lame")
	assert.Contains(t, args, "192k")
	assert.Equal(t, "/out/final.mp3", args[len(args)-1])
}

func TestTranscodeAudioArgs_DefaultBitrate(t *testing.T) {
	args := TranscodeAudioArgs("/tmp/a.webm", "/out/final.mp3", 0)
	assert.Contains(t, args, "128k")
}

func TestHandleProgressLine(t *testing.T) {
	p := NewFFmpegProcessor("ffmpeg", zap.NewNop())

	var got []float64
	opts := domain.ProcessOptions{
		Duration:   100 * time.Second,
		OnProgress: func(pct float64) { got = append(got, pct) },
	}

	// out_time_ms carries microseconds
	p.handleProgressLine("out_time_ms=25000000", opts)
	p.handleProgressLine("out_time_ms=50000000", opts)
	p.handleProgressLine("frame=123", opts)
	p.handleProgressLine("progress=continue", opts)
	p.handleProgressLine("progress=end", opts)

	assert.Equal(t, []float64{25, 50, 100}, got)
}

func TestHandleProgressLine_ClampsOver100(t *testing.T) {
	p := NewFFmpegProcessor("ffmpeg", zap.NewNop())

	var got []float64
	opts := domain.ProcessOptions{
		Duration:   10 * time.Second,
		OnProgress: func(pct float64) { got = append(got, pct) },
	}

	p.handleProgressLine("out_time_ms=20000000", opts)
	assert.Equal(t, []float64{100}, got)
}

func TestHandleProgressLine_IgnoresGarbage(t *testing.T) {
	p := NewFFmpegProcessor("ffmpeg", zap.NewNop())

	called := false
	opts := domain.ProcessOptions{
		Duration:   10 * time.Second,
		OnProgress: func(float64) { called = true },
	}

	p.handleProgressLine("out_time_ms=N/A", opts)
	p.handleProgressLine("out_time_ms=-5", opts)
	assert.False(t, called)
}

func TestHandleProgressLine_NoDurationSuppressesTimeEvents(t *testing.T) {
	p := NewFFmpegProcessor("ffmpeg", zap.NewNop())

	var got []float64
	opts := domain.ProcessOptions{
		OnProgress: func(pct float64) { got = append(got, pct) },
	}

	p.handleProgressLine("out_time_ms=5000000", opts)
	p.handleProgressLine("progress=end", opts)
	assert.Equal(t, []float64{100}, got)
}
