package infrastructure

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/binarydooms-ai/youtube-downloader-api/internal/domain"
)

// FFmpegProcessor implements domain.MediaProcessor by shelling out to
// ffmpeg. Progress is read from the machine-readable key=value feed ffmpeg
// writes to stdout with -progress pipe:1.
type FFmpegProcessor struct {
	binary string
	logger *zap.Logger
}

// NewFFmpegProcessor creates a processor using the given ffmpeg binary
func NewFFmpegProcessor(binary string, logger *zap.Logger) *FFmpegProcessor {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &FFmpegProcessor{binary: binary, logger: logger}
}

// CopyMux combines a video-only and an audio-only file into one container
// without re-encoding either stream.
func (p *FFmpegProcessor) CopyMux(ctx context.Context, videoPath, audioPath, outputPath string, opts domain.ProcessOptions) error {
	return p.run(ctx, CopyMuxArgs(videoPath, audioPath, outputPath), opts)
}

// TranscodeAudio re-encodes an audio file to mp3 at the requested bitrate
func (p *FFmpegProcessor) TranscodeAudio(ctx context.Context, inputPath, outputPath string, opts domain.ProcessOptions) error {
	return p.run(ctx, TranscodeAudioArgs(inputPath, outputPath, opts.BitrateKbps), opts)
}

// CopyMuxArgs builds the argument list for a lossless mux
func CopyMuxArgs(videoPath, audioPath, outputPath string) []string {
	return []string{
		"-y", "-loglevel", "error", "-nostdin",
		"-progress", "pipe:1", "-nostats",
		"-i", videoPath,
		"-i", audioPath,
		"-c", "copy",
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-shortest",
		outputPath,
	}
}

// TranscodeAudioArgs builds the argument list for an mp3 transcode
func TranscodeAudioArgs(inputPath, outputPath string, bitrateKbps int) []string {
	if bitrateKbps <= 0 {
		bitrateKbps = 128
	}
	return []string{
		"-y", "-loglevel", "error", "-nostdin",
		"-progress", "pipe:1", "-nostats",
		"-i", inputPath,
		"-vn",
		"-acodec", "libmp3lame",
		"-ar", "44100",
		"-b:a", fmt.Sprintf("%dk", bitrateKbps),
		outputPath,
	}
}

// run executes ffmpeg to completion, streaming progress events and
// surfacing stderr on failure.
func (p *FFmpegProcessor) run(ctx context.Context, args []string, opts domain.ProcessOptions) error {
	cmd := exec.CommandContext(ctx, p.binary, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrExternalTool, err)
	}

	p.logger.Debug("running media tool", zap.String("cmd", ShellEscapeCommand(p.binary, args...)))

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: starting %s: %v", domain.ErrExternalTool, p.binary, err)
	}

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		p.handleProgressLine(scanner.Text(), opts)
	}

	if err := cmd.Wait(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return fmt.Errorf("%w: %s: %s", domain.ErrExternalTool, p.binary, detail)
	}
	return nil
}

// handleProgressLine parses one line of ffmpeg's -progress feed. Despite
// the name, out_time_ms carries microseconds.
func (p *FFmpegProcessor) handleProgressLine(line string, opts domain.ProcessOptions) {
	if opts.OnProgress == nil {
		return
	}
	switch {
	case strings.HasPrefix(line, "out_time_ms="):
		if opts.Duration <= 0 {
			return
		}
		value := strings.TrimPrefix(line, "out_time_ms=")
		micros, err := strconv.ParseInt(value, 10, 64)
		if err != nil || micros < 0 {
			return
		}
		pct := float64(micros) / float64(opts.Duration.Microseconds()) * 100
		if pct > 100 {
			pct = 100
		}
		opts.OnProgress(pct)
	case line == "progress=end":
		opts.OnProgress(100)
	}
}
