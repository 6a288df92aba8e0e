package domain

import (
	"context"
	"io"
	"time"
)

// VideoDetails is the catalog adapter's view of one remote video
type VideoDetails struct {
	ID        string
	Title     string
	Author    string
	Thumbnail string
	Duration  time.Duration
	Views     int
	Streams   []StreamDescriptor
}

// StreamCatalog wraps the remote extraction service
type StreamCatalog interface {
	// Resolve returns the full set of available encodings for a video
	Resolve(ctx context.Context, videoID string) (*VideoDetails, error)

	// OpenStream opens the raw byte stream for one encoding variant and
	// reports its total length (0 when unknown)
	OpenStream(ctx context.Context, videoID, streamID string) (io.ReadCloser, int64, error)
}

// ProcessOptions carries the inputs of one external media operation
type ProcessOptions struct {
	// Duration of the source media, used to translate the tool's time
	// offsets into percentages. Zero suppresses progress events.
	Duration time.Duration

	// BitrateKbps is the target audio bitrate for transcodes
	BitrateKbps int

	// OnProgress receives percentage-complete events in [0,100]
	OnProgress func(percent float64)
}

// MediaProcessor is the external mux/transcode command. Both operations run
// the tool to true completion before returning.
type MediaProcessor interface {
	// CopyMux combines a video-only and an audio-only file into one
	// container with stream-copy semantics (no re-encoding)
	CopyMux(ctx context.Context, videoPath, audioPath, outputPath string, opts ProcessOptions) error

	// TranscodeAudio re-encodes an audio file to mp3
	TranscodeAudio(ctx context.Context, inputPath, outputPath string, opts ProcessOptions) error
}
