package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/binarydooms-ai/youtube-downloader-api/internal/domain"
)

// Orchestrator executes download jobs end to end: fetching streams, driving
// the external media tool, persisting progress and cleaning up on failure.
// It owns all job mutations after the pending state.
type Orchestrator struct {
	repo      domain.JobRepository
	catalog   domain.StreamCatalog
	processor domain.MediaProcessor
	config    *domain.DownloadConfig
	logger    *zap.Logger
	publish   func(*domain.Job)
}

// NewOrchestrator creates a download orchestrator. publish may be nil when no
// live progress fan-out is wired.
func NewOrchestrator(
	repo domain.JobRepository,
	catalog domain.StreamCatalog,
	processor domain.MediaProcessor,
	config *domain.DownloadConfig,
	logger *zap.Logger,
	publish func(*domain.Job),
) *Orchestrator {
	return &Orchestrator{
		repo:      repo,
		catalog:   catalog,
		processor: processor,
		config:    config,
		logger:    logger,
		publish:   publish,
	}
}

// ProcessProgressive downloads a single self-contained stream. Only a
// requested format of mp3 triggers a transcode; everything else is saved
// as-is under the stream's own container, with the raw fetch covering the
// whole progress window.
func (o *Orchestrator) ProcessProgressive(ctx context.Context, job *domain.Job, streamID, format string) {
	o.markDownloading(job)

	details, err := o.catalog.Resolve(ctx, job.VideoID)
	if err != nil {
		o.fail(job, fmt.Errorf("%w: %v", domain.ErrVideoNotFound, err), nil)
		return
	}

	if strings.EqualFold(format, "mp3") {
		o.processAudio(ctx, job, details, streamID)
		return
	}

	stream := findStream(details.Streams, streamID)
	if stream == nil {
		o.fail(job, fmt.Errorf("%w: stream %s", domain.ErrFormatUnavailable, streamID), nil)
		return
	}

	finalPath := filepath.Join(o.config.OutputDir, safeFileName(job.Title, job.ID)+"."+stream.Container)
	if err := o.fetchStream(ctx, job, stream.ID, finalPath, 0, 100); err != nil {
		o.fail(job, err, []string{finalPath})
		return
	}
	o.complete(job, finalPath)
}

// processAudio fetches the source audio into a temp file (progress 0-70) and
// transcodes it to mp3 (progress 75-100).
func (o *Orchestrator) processAudio(ctx context.Context, job *domain.Job, details *domain.VideoDetails, streamID string) {
	stream := pickAudioStream(details.Streams, streamID)
	if stream == nil {
		o.fail(job, fmt.Errorf("%w: no audio stream", domain.ErrFormatUnavailable), nil)
		return
	}

	tempPath := filepath.Join(o.config.TempDir, job.ID+"_audio."+stream.Container)
	finalPath := filepath.Join(o.config.OutputDir, safeFileName(job.Title, job.ID)+".mp3")
	cleanup := []string{tempPath, finalPath}

	if err := o.fetchStream(ctx, job, stream.ID, tempPath, 0, 70); err != nil {
		o.fail(job, err, cleanup)
		return
	}

	bitrate := stream.Bitrate / 1000
	if bitrate <= 0 {
		bitrate = o.config.DefaultAudioBitrate
	}
	o.setProgress(job, 75)
	err := o.processor.TranscodeAudio(ctx, tempPath, finalPath, domain.ProcessOptions{
		Duration:    details.Duration,
		BitrateKbps: bitrate,
		OnProgress: func(pct float64) {
			o.setProgress(job, 75+int(math.Round(pct*0.25)))
		},
	})
	if err != nil {
		o.fail(job, fmt.Errorf("%w: %v", domain.ErrExternalTool, err), cleanup)
		return
	}

	o.removeFiles(tempPath)
	o.complete(job, finalPath)
}

// ProcessMux downloads a video-only and an audio-only stream concurrently,
// then stream-copies both into one container. Fetching covers progress 0-80,
// muxing 81-99, completion sets 100.
func (o *Orchestrator) ProcessMux(ctx context.Context, job *domain.Job, videoStreamID, audioStreamID string) {
	o.markDownloading(job)

	details, err := o.catalog.Resolve(ctx, job.VideoID)
	if err != nil {
		o.fail(job, fmt.Errorf("%w: %v", domain.ErrVideoNotFound, err), nil)
		return
	}

	video := findStream(details.Streams, videoStreamID)
	if video == nil {
		o.fail(job, fmt.Errorf("%w: video stream %s", domain.ErrFormatUnavailable, videoStreamID), nil)
		return
	}
	audio := findStream(details.Streams, audioStreamID)
	if audio == nil {
		o.fail(job, fmt.Errorf("%w: audio stream %s", domain.ErrFormatUnavailable, audioStreamID), nil)
		return
	}

	container := o.deriveMuxContainer(job, video, audio)
	videoTemp := filepath.Join(o.config.TempDir, job.ID+"_video."+video.Container)
	audioTemp := filepath.Join(o.config.TempDir, job.ID+"_audio."+audio.Container)
	base := filepath.Join(o.config.OutputDir, safeFileName(job.Title, job.ID))
	finalPath := base + "." + container
	// A partial output may exist under either container when the tool
	// aborts midway, so cleanup covers both.
	cleanup := []string{videoTemp, audioTemp, base + ".mp4", base + ".webm"}

	progress := newMuxProgress()
	fetchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	fetch := func(slot int, streamID, path string) {
		defer wg.Done()
		err := o.fetchStreamFunc(fetchCtx, job.VideoID, streamID, path, func(written, total int64) {
			if pct, ok := progress.observe(slot, written, total); ok {
				o.setProgress(job, pct)
			}
		})
		if err != nil {
			errs[slot] = err
			cancel()
		}
	}
	wg.Add(2)
	go fetch(0, video.ID, videoTemp)
	go fetch(1, audio.ID, audioTemp)
	wg.Wait()

	// Report the root cause: the leg that failed first cancels the other,
	// whose error is just the cancellation.
	var fetchErr error
	for _, err := range errs {
		if err == nil {
			continue
		}
		if fetchErr == nil || (errors.Is(fetchErr, context.Canceled) && !errors.Is(err, context.Canceled)) {
			fetchErr = err
		}
	}
	if fetchErr != nil {
		o.fail(job, fetchErr, cleanup)
		return
	}

	o.setProgress(job, 81)
	err = o.processor.CopyMux(ctx, videoTemp, audioTemp, finalPath, domain.ProcessOptions{
		Duration: details.Duration,
		OnProgress: func(pct float64) {
			o.setProgress(job, 81+int(math.Round(pct*0.18)))
		},
	})
	if err != nil {
		o.fail(job, fmt.Errorf("%w: %v", domain.ErrExternalTool, err), cleanup)
		return
	}

	o.removeFiles(videoTemp, audioTemp)
	o.complete(job, finalPath)
}

// deriveMuxContainer picks the output container both source codecs can be
// stream-copied into. Incompatible pairs fall back to mp4 with a warning.
func (o *Orchestrator) deriveMuxContainer(job *domain.Job, video, audio *domain.StreamDescriptor) string {
	switch {
	case domain.IsAVCFamily(video.VideoCodec) && domain.IsAACFamily(audio.AudioCodec):
		return "mp4"
	case video.Container == "webm" && audio.Container == "webm":
		return "webm"
	case strings.HasPrefix(video.VideoCodec, "vp9") && strings.HasPrefix(audio.AudioCodec, "opus"):
		return "webm"
	default:
		o.logger.Warn("codec pair has no lossless container, defaulting to mp4",
			zap.String("job_id", job.ID),
			zap.String("video_codec", video.VideoCodec),
			zap.String("audio_codec", audio.AudioCodec))
		return "mp4"
	}
}

// fetchStream downloads one stream into path, mapping byte progress onto the
// [from, to] percentage window.
func (o *Orchestrator) fetchStream(ctx context.Context, job *domain.Job, streamID, path string, from, to int) error {
	return o.fetchStreamFunc(ctx, job.VideoID, streamID, path, func(written, total int64) {
		if total <= 0 {
			return
		}
		frac := float64(written) / float64(total)
		o.setProgress(job, from+int(math.Round(frac*float64(to-from))))
	})
}

// fetchStreamFunc downloads one stream into path, invoking report after each
// chunk. The file is synced to disk before the function returns nil, so a
// follow-up mux or transcode never reads a partially flushed input.
func (o *Orchestrator) fetchStreamFunc(ctx context.Context, videoID, streamID, path string, report func(written, total int64)) error {
	reader, total, err := o.catalog.OpenStream(ctx, videoID, streamID)
	if err != nil {
		return fmt.Errorf("%w: opening stream %s: %v", domain.ErrTransfer, streamID, err)
	}
	defer reader.Close()

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %v", domain.ErrTransfer, path, err)
	}

	written, copyErr := copyWithContext(ctx, file, reader, func(n int64) {
		report(n, total)
	})
	if copyErr == nil {
		copyErr = file.Sync()
	}
	if closeErr := file.Close(); copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		return fmt.Errorf("%w: fetching stream %s after %d bytes: %w", domain.ErrTransfer, streamID, written, copyErr)
	}
	return nil
}

// copyWithContext copies src to dst in fixed-size chunks, honoring context
// cancellation between chunks and reporting the running byte count.
func copyWithContext(ctx context.Context, dst io.Writer, src io.Reader, report func(written int64)) (int64, error) {
	buf := make([]byte, 64*1024)
	var written int64
	for {
		select {
		case <-ctx.Done():
			return written, ctx.Err()
		default:
		}
		n, readErr := src.Read(buf)
		if n > 0 {
			if _, writeErr := dst.Write(buf[:n]); writeErr != nil {
				return written, writeErr
			}
			written += int64(n)
			report(written)
		}
		if readErr == io.EOF {
			return written, nil
		}
		if readErr != nil {
			return written, readErr
		}
	}
}

// muxProgress aggregates the two fetch legs of a mux download into a single
// percentage. It reports only once both stream totals are known, keeping the
// combined value monotonic.
type muxProgress struct {
	mu      sync.Mutex
	written [2]int64
	total   [2]int64
}

func newMuxProgress() *muxProgress { return &muxProgress{} }

// observe records one leg's byte count and returns the aggregate percentage
// scaled to the 0-80 fetch window.
func (p *muxProgress) observe(slot int, written, total int64) (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.written[slot] = written
	p.total[slot] = total
	if p.total[0] <= 0 || p.total[1] <= 0 {
		return 0, false
	}
	f0 := float64(p.written[0]) / float64(p.total[0])
	f1 := float64(p.written[1]) / float64(p.total[1])
	return int(math.Round((f0 + f1) / 2 * 80)), true
}

func (o *Orchestrator) markDownloading(job *domain.Job) {
	job.MarkDownloading()
	o.persist(job)
}

func (o *Orchestrator) setProgress(job *domain.Job, percent int) {
	if job.SetProgress(percent) {
		o.persist(job)
	}
}

// complete stats the final file for its display size and marks the job done
func (o *Orchestrator) complete(job *domain.Job, finalPath string) {
	size := ""
	if info, err := os.Stat(finalPath); err == nil {
		size = domain.FormatFileSize(info.Size())
	}
	job.MarkCompleted(finalPath, size)
	o.persist(job)
	o.logger.Info("download completed",
		zap.String("job_id", job.ID),
		zap.String("file", finalPath),
		zap.String("size", size))
}

// fail marks the job failed and removes any temp or partial output files
func (o *Orchestrator) fail(job *domain.Job, err error, cleanup []string) {
	o.logger.Error("download failed",
		zap.String("job_id", job.ID),
		zap.String("video_id", job.VideoID),
		zap.Error(err))
	o.removeFiles(cleanup...)
	job.MarkFailed(err)
	o.persist(job)
}

func (o *Orchestrator) removeFiles(paths ...string) {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			o.logger.Warn("cleanup failed", zap.String("path", path), zap.Error(err))
		}
	}
}

func (o *Orchestrator) persist(job *domain.Job) {
	if err := o.repo.Update(job); err != nil {
		o.logger.Error("persisting job state", zap.String("job_id", job.ID), zap.Error(err))
	}
	if o.publish != nil {
		o.publish(job)
	}
}

// findStream returns the descriptor with the exact id, or nil
func findStream(streams []domain.StreamDescriptor, id string) *domain.StreamDescriptor {
	for i := range streams {
		if streams[i].ID == id {
			return &streams[i]
		}
	}
	return nil
}

// pickAudioStream resolves the mp3 source audio: the exact id when present,
// else the highest-bitrate audio-only stream, else any stream carrying
// audio. Only the mp3 path falls back; everywhere else an absent id fails.
func pickAudioStream(streams []domain.StreamDescriptor, id string) *domain.StreamDescriptor {
	if s := findStream(streams, id); s != nil {
		return s
	}
	var best *domain.StreamDescriptor
	for i := range streams {
		d := &streams[i]
		if !d.HasAudio || d.HasVideo {
			continue
		}
		if best == nil || d.Bitrate > best.Bitrate {
			best = d
		}
	}
	if best != nil {
		return best
	}
	for i := range streams {
		if streams[i].HasAudio {
			return &streams[i]
		}
	}
	return nil
}

// safeFileName produces a filesystem-safe base name, suffixed with a short
// job id fragment to keep concurrent downloads of the same video distinct.
func safeFileName(title, jobID string) string {
	if title == "" {
		title = "download"
	}
	replacer := strings.NewReplacer(
		"/", "_", "\\", "_", ":", "_", "*", "_",
		"?", "_", "\"", "_", "<", "_", ">", "_", "|", "_",
	)
	name := strings.TrimSpace(replacer.Replace(title))
	if len(name) > 120 {
		name = name[:120]
	}
	suffix := jobID
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	return name + "_" + suffix
}
