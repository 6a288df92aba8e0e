package domain

import "errors"

// Error taxonomy for the download pipeline. Background processing catches
// all of these at the job boundary and converts them into a failed status;
// they never crash the orchestrating process.
var (
	// ErrVideoNotFound covers catalog lookups that fail or yield no
	// usable streams (invalid or unplayable identifier)
	ErrVideoNotFound = errors.New("video not found or unplayable")

	// ErrFormatUnavailable is returned when a requested stream id is
	// absent and no fallback rule applies
	ErrFormatUnavailable = errors.New("requested format unavailable")

	// ErrTransfer covers network or write failures during a fetch
	ErrTransfer = errors.New("stream transfer failed")

	// ErrExternalTool is returned when the mux/transcode process fails
	ErrExternalTool = errors.New("media tool failed")

	// ErrFileSystem covers a final file missing or unreadable on retrieval
	ErrFileSystem = errors.New("file missing or unreadable")

	// ErrJobNotFound is returned by the job store for unknown job ids
	ErrJobNotFound = errors.New("job not found")
)
