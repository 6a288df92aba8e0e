package app

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/binarydooms-ai/youtube-downloader-api/internal/domain"
)

// FormatResolver turns the raw stream catalog of one video into a
// deduplicated, ranked menu of downloadable options.
type FormatResolver struct {
	catalog domain.StreamCatalog
	logger  *zap.Logger
}

// NewFormatResolver creates a new format resolver
func NewFormatResolver(catalog domain.StreamCatalog, logger *zap.Logger) *FormatResolver {
	return &FormatResolver{
		catalog: catalog,
		logger:  logger,
	}
}

// Resolve fetches the catalog for a video and builds its format menu. An
// empty menu is valid when no acceptable quality survives filtering.
func (r *FormatResolver) Resolve(ctx context.Context, videoID string) (*domain.FormatMenu, error) {
	details, err := r.catalog.Resolve(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("resolving catalog: %w", err)
	}

	menu := &domain.FormatMenu{
		VideoID:   details.ID,
		Title:     details.Title,
		Thumbnail: details.Thumbnail,
		Duration:  domain.FormatDuration(details.Duration),
		Views:     domain.FormatViews(details.Views),
		Options:   BuildOptions(details.Streams),
	}

	r.logger.Debug("format menu resolved",
		zap.String("video_id", details.ID),
		zap.Int("streams", len(details.Streams)),
		zap.Int("options", len(menu.Options)))

	return menu, nil
}

// BuildOptions resolves the downloadable option list for one descriptor set:
// at most one video option per quality label (progressive preferred over a
// synthesized video+audio pairing), followed by the mp3 audio menu.
func BuildOptions(streams []domain.StreamDescriptor) []domain.FormatOption {
	var progressive, videoOnly, audioOnly []*domain.StreamDescriptor
	for i := range streams {
		d := &streams[i]
		switch {
		case d.HasVideo && d.HasAudio:
			if d.QualityLabel != "" {
				progressive = append(progressive, d)
			}
		case d.HasVideo:
			if d.QualityLabel != "" {
				videoOnly = append(videoOnly, d)
			}
		case d.HasAudio:
			audioOnly = append(audioOnly, d)
		}
	}

	options := make([]domain.FormatOption, 0, len(streams))
	for _, quality := range qualityLabels(progressive, videoOnly) {
		if opt, ok := resolveVideoOption(quality, progressive, videoOnly, audioOnly); ok {
			options = append(options, opt)
		}
	}
	options = append(options, buildAudioOptions(audioOnly)...)
	return options
}

// qualityLabels enumerates the distinct quality labels across the
// progressive and video-only sets, highest resolution first. Ties keep the
// original catalog order.
func qualityLabels(sets ...[]*domain.StreamDescriptor) []string {
	seen := make(map[string]bool)
	var labels []string
	for _, set := range sets {
		for _, d := range set {
			if !seen[d.QualityLabel] {
				seen[d.QualityLabel] = true
				labels = append(labels, d.QualityLabel)
			}
		}
	}
	sort.SliceStable(labels, func(i, j int) bool {
		return domain.ResolutionPriority(labels[i]) > domain.ResolutionPriority(labels[j])
	})
	return labels
}

// resolveVideoOption produces the single option for one quality label, or
// nothing when no playable pairing exists at that quality.
func resolveVideoOption(quality string, progressive, videoOnly, audioOnly []*domain.StreamDescriptor) (domain.FormatOption, bool) {
	// A progressive stream needs no pairing and wins outright.
	if p := pickByContainer(progressive, quality, ""); p != nil {
		return domain.FormatOption{
			Method:        domain.MethodProgressive,
			StreamID:      p.ID,
			Quality:       quality,
			Container:     p.Container,
			FileSize:      p.ContentLength,
			FileSizeLabel: domain.FormatFileSize(p.ContentLength),
		}, true
	}

	v := pickByContainer(videoOnly, quality, "")
	if v == nil || len(audioOnly) == 0 {
		return domain.FormatOption{}, false
	}

	// Pair an audio stream whose codec the video container can carry
	// without re-encoding; otherwise this quality is omitted.
	var a *domain.StreamDescriptor
	outputContainer := ""
	switch {
	case v.Container == "mp4" || domain.IsAVCFamily(v.VideoCodec):
		if a = bestAudio(audioOnly, func(d *domain.StreamDescriptor) bool { return domain.IsAACFamily(d.AudioCodec) }); a != nil {
			outputContainer = "mp4"
			break
		}
		// No AAC audio: retry the pairing on webm streams at this quality
		if wv := pickByContainer(videoOnly, quality, "webm"); wv != nil {
			if wa := bestAudio(audioOnly, func(d *domain.StreamDescriptor) bool { return domain.IsOpusAudio(d) }); wa != nil {
				v, a, outputContainer = wv, wa, "webm"
			}
		}
	case v.Container == "webm":
		if a = bestAudio(audioOnly, func(d *domain.StreamDescriptor) bool { return domain.IsOpusAudio(d) }); a != nil {
			outputContainer = "webm"
		}
	}
	if a == nil || outputContainer == "" {
		return domain.FormatOption{}, false
	}

	size := v.ContentLength + a.ContentLength
	return domain.FormatOption{
		Method:        domain.MethodMux,
		VideoStreamID: v.ID,
		AudioStreamID: a.ID,
		Quality:       quality,
		Container:     outputContainer,
		FileSize:      size,
		FileSizeLabel: domain.FormatFileSize(size),
	}, true
}

// pickByContainer selects a stream at the given quality, preferring mp4,
// then webm, then any container. A non-empty container restricts the match.
func pickByContainer(set []*domain.StreamDescriptor, quality, container string) *domain.StreamDescriptor {
	preferences := []string{"mp4", "webm", ""}
	if container != "" {
		preferences = []string{container}
	}
	for _, pref := range preferences {
		for _, d := range set {
			if d.QualityLabel != quality {
				continue
			}
			if pref == "" || d.Container == pref {
				return d
			}
		}
	}
	return nil
}

// bestAudio returns the highest-bitrate audio stream matching the predicate
func bestAudio(set []*domain.StreamDescriptor, match func(*domain.StreamDescriptor) bool) *domain.StreamDescriptor {
	var best *domain.StreamDescriptor
	for _, d := range set {
		if !match(d) {
			continue
		}
		if best == nil || d.Bitrate > best.Bitrate {
			best = d
		}
	}
	return best
}

// buildAudioOptions maps every distinct audio-only stream to an mp3 target,
// highest bitrate first. The download step transcodes to mp3 regardless of
// the source codec.
func buildAudioOptions(audioOnly []*domain.StreamDescriptor) []domain.FormatOption {
	seen := make(map[string]bool)
	var distinct []*domain.StreamDescriptor
	for _, d := range audioOnly {
		if !seen[d.ID] {
			seen[d.ID] = true
			distinct = append(distinct, d)
		}
	}
	sort.SliceStable(distinct, func(i, j int) bool {
		return distinct[i].Bitrate > distinct[j].Bitrate
	})

	options := make([]domain.FormatOption, 0, len(distinct))
	for _, d := range distinct {
		options = append(options, domain.FormatOption{
			Method:        domain.MethodProgressive,
			StreamID:      d.ID,
			Quality:       domain.AudioQualityBucket(d.Bitrate),
			Container:     "mp3",
			FileSize:      d.ContentLength,
			FileSizeLabel: domain.FormatFileSize(d.ContentLength),
		})
	}
	return options
}
