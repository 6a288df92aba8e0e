package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/kkdai/youtube/v2"
	"go.uber.org/zap"

	"github.com/binarydooms-ai/youtube-downloader-api/internal/domain"
)

// YouTubeCatalog implements domain.StreamCatalog against YouTube's player
// API. Resolved videos are cached so the metadata lookup and the stream
// opens of one job hit the network once.
type YouTubeCatalog struct {
	client *youtube.Client
	logger *zap.Logger

	mu    sync.Mutex
	cache map[string]*youtube.Video
}

// NewYouTubeCatalog creates a catalog adapter with the given HTTP timeout
func NewYouTubeCatalog(timeout time.Duration, logger *zap.Logger) *YouTubeCatalog {
	return &YouTubeCatalog{
		client: &youtube.Client{
			HTTPClient: &http.Client{Timeout: timeout},
		},
		logger: logger,
		cache:  make(map[string]*youtube.Video),
	}
}

// Resolve fetches video metadata and maps every playable format to a
// stream descriptor.
func (c *YouTubeCatalog) Resolve(ctx context.Context, videoID string) (*domain.VideoDetails, error) {
	video, err := c.lookup(ctx, videoID)
	if err != nil {
		return nil, err
	}

	details := &domain.VideoDetails{
		ID:       video.ID,
		Title:    video.Title,
		Author:   video.Author,
		Duration: video.Duration,
		Views:    video.Views,
		Streams:  make([]domain.StreamDescriptor, 0, len(video.Formats)),
	}
	if len(video.Thumbnails) > 0 {
		details.Thumbnail = video.Thumbnails[len(video.Thumbnails)-1].URL
	}
	for i := range video.Formats {
		if d, ok := describeFormat(&video.Formats[i]); ok {
			details.Streams = append(details.Streams, d)
		}
	}

	c.logger.Debug("video resolved",
		zap.String("video_id", video.ID),
		zap.String("title", video.Title),
		zap.Int("streams", len(details.Streams)))

	return details, nil
}

// OpenStream opens the raw byte stream for one format by stream id
func (c *YouTubeCatalog) OpenStream(ctx context.Context, videoID, streamID string) (io.ReadCloser, int64, error) {
	video, err := c.lookup(ctx, videoID)
	if err != nil {
		return nil, 0, err
	}

	itag, err := strconv.Atoi(streamID)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: bad stream id %q", domain.ErrFormatUnavailable, streamID)
	}
	matches := video.Formats.Itag(itag)
	if len(matches) == 0 {
		return nil, 0, fmt.Errorf("%w: itag %d", domain.ErrFormatUnavailable, itag)
	}
	format := &matches[0]

	reader, size, err := c.client.GetStreamContext(ctx, video, format)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", domain.ErrTransfer, err)
	}
	return reader, size, nil
}

// lookup fetches the video or returns a cached copy
func (c *YouTubeCatalog) lookup(ctx context.Context, videoID string) (*youtube.Video, error) {
	c.mu.Lock()
	if video, ok := c.cache[videoID]; ok {
		c.mu.Unlock()
		return video, nil
	}
	c.mu.Unlock()

	video, err := c.client.GetVideoContext(ctx, videoID)
	if err != nil {
		return nil, mapLookupError(err)
	}

	c.mu.Lock()
	c.cache[video.ID] = video
	if video.ID != videoID {
		c.cache[videoID] = video
	}
	c.mu.Unlock()
	return video, nil
}

// mapLookupError folds the extraction library's error zoo into the
// not-found taxonomy entry, keeping the original text.
func mapLookupError(err error) error {
	var playability *youtube.ErrPlayabiltyStatus
	if errors.Is(err, youtube.ErrVideoPrivate) ||
		errors.Is(err, youtube.ErrLoginRequired) ||
		errors.Is(err, youtube.ErrNotPlayableInEmbed) ||
		errors.As(err, &playability) {
		return fmt.Errorf("%w: not playable: %v", domain.ErrVideoNotFound, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrVideoNotFound, err)
}

// describeFormat maps one raw format to a stream descriptor. Formats whose
// mime type cannot be parsed are dropped.
func describeFormat(f *youtube.Format) (domain.StreamDescriptor, bool) {
	mediaType, params, err := mime.ParseMediaType(f.MimeType)
	if err != nil {
		return domain.StreamDescriptor{}, false
	}

	container := containerFromMediaType(mediaType)
	hasVideo := strings.HasPrefix(mediaType, "video/")
	hasAudio := f.AudioChannels > 0 || strings.HasPrefix(mediaType, "audio/")
	if !hasVideo && !hasAudio {
		return domain.StreamDescriptor{}, false
	}

	d := domain.StreamDescriptor{
		ID:            strconv.Itoa(f.ItagNo),
		Container:     container,
		QualityLabel:  f.QualityLabel,
		HasVideo:      hasVideo,
		HasAudio:      hasAudio,
		Bitrate:       f.Bitrate,
		ContentLength: f.ContentLength,
	}
	if d.Bitrate == 0 {
		d.Bitrate = f.AverageBitrate
	}

	codecs := strings.Split(params["codecs"], ",")
	for i := range codecs {
		codecs[i] = strings.TrimSpace(codecs[i])
	}
	if hasVideo {
		if len(codecs) > 0 {
			d.VideoCodec = codecs[0]
		}
		if len(codecs) > 1 {
			d.AudioCodec = codecs[1]
		}
	} else if len(codecs) > 0 {
		d.AudioCodec = codecs[0]
	}

	return d, true
}

// containerFromMediaType derives the container name from the mime subtype
func containerFromMediaType(mediaType string) string {
	parts := strings.SplitN(mediaType, "/", 2)
	if len(parts) != 2 {
		return "mp4"
	}
	subtype := parts[1]
	if subtype == "3gpp" {
		return "3gp"
	}
	return subtype
}
