package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binarydooms-ai/youtube-downloader-api/internal/domain"
)

func progressiveStream(id, container, quality string) domain.StreamDescriptor {
	return domain.StreamDescriptor{
		ID: id, Container: container, QualityLabel: quality,
		VideoCodec: "avc1.42001E", AudioCodec: "mp4a.40.2",
		HasVideo: true, HasAudio: true,
		Bitrate: 1_000_000, ContentLength: 50_000_000,
	}
}

func videoOnlyStream(id, container, codec, quality string, size int64) domain.StreamDescriptor {
	return domain.StreamDescriptor{
		ID: id, Container: container, QualityLabel: quality,
		VideoCodec: codec, HasVideo: true,
		Bitrate: 2_000_000, ContentLength: size,
	}
}

func audioOnlyStream(id, container, codec string, bitrate int, size int64) domain.StreamDescriptor {
	return domain.StreamDescriptor{
		ID: id, Container: container, AudioCodec: codec,
		HasAudio: true, Bitrate: bitrate, ContentLength: size,
	}
}

func TestBuildOptions_ProgressiveWithAudio(t *testing.T) {
	streams := []domain.StreamDescriptor{
		progressiveStream("18", "mp4", "720p"),
		audioOnlyStream("140", "m4a", "mp4a.40.2", 128_000, 3_000_000),
	}

	options := BuildOptions(streams)
	require.Len(t, options, 2)

	assert.Equal(t, domain.MethodProgressive, options[0].Method)
	assert.Equal(t, "720p", options[0].Quality)
	assert.Equal(t, "mp4", options[0].Container)
	assert.Equal(t, "18", options[0].StreamID)

	assert.Equal(t, "128kbps", options[1].Quality)
	assert.Equal(t, "mp3", options[1].Container)
	assert.Equal(t, "140", options[1].StreamID)
}

func TestBuildOptions_AVCPrefersAACForMux(t *testing.T) {
	streams := []domain.StreamDescriptor{
		videoOnlyStream("137", "mp4", "avc1.640028", "1080p", 80_000_000),
		audioOnlyStream("140", "m4a", "mp4a.40.2", 160_000, 4_000_000),
		audioOnlyStream("251", "webm", "opus", 192_000, 5_000_000),
	}

	options := BuildOptions(streams)
	require.NotEmpty(t, options)

	mux := options[0]
	assert.Equal(t, domain.MethodMux, mux.Method)
	assert.Equal(t, "1080p", mux.Quality)
	assert.Equal(t, "mp4", mux.Container)
	assert.Equal(t, "137", mux.VideoStreamID)
	assert.Equal(t, "140", mux.AudioStreamID)
	assert.Equal(t, int64(84_000_000), mux.FileSize)
}

func TestBuildOptions_WebmVideoPairsOpus(t *testing.T) {
	streams := []domain.StreamDescriptor{
		videoOnlyStream("248", "webm", "vp9", "1080p", 70_000_000),
		audioOnlyStream("251", "webm", "opus", 160_000, 5_000_000),
	}

	options := BuildOptions(streams)
	require.NotEmpty(t, options)

	mux := options[0]
	assert.Equal(t, domain.MethodMux, mux.Method)
	assert.Equal(t, "webm", mux.Container)
	assert.Equal(t, "248", mux.VideoStreamID)
	assert.Equal(t, "251", mux.AudioStreamID)
}

func TestBuildOptions_OmitsQualityWithoutCompatibleAudio(t *testing.T) {
	// vp9 webm video with only AAC audio available: no lossless pairing
	streams := []domain.StreamDescriptor{
		videoOnlyStream("248", "webm", "vp9", "1080p", 70_000_000),
		audioOnlyStream("140", "m4a", "mp4a.40.2", 128_000, 4_000_000),
	}

	options := BuildOptions(streams)
	for _, o := range options {
		assert.NotEqual(t, "1080p", o.Quality, "1080p should be omitted")
	}
	// The audio menu is still offered
	require.Len(t, options, 1)
	assert.Equal(t, "mp3", options[0].Container)
}

func TestBuildOptions_MP4FallsBackToWebmPairing(t *testing.T) {
	// AVC video but no AAC audio anywhere: retry the quality on webm streams
	streams := []domain.StreamDescriptor{
		videoOnlyStream("137", "mp4", "avc1.640028", "1080p", 80_000_000),
		videoOnlyStream("248", "webm", "vp9", "1080p", 70_000_000),
		audioOnlyStream("251", "webm", "opus", 160_000, 5_000_000),
	}

	options := BuildOptions(streams)
	require.NotEmpty(t, options)

	mux := options[0]
	assert.Equal(t, "webm", mux.Container)
	assert.Equal(t, "248", mux.VideoStreamID)
	assert.Equal(t, "251", mux.AudioStreamID)
}

func TestBuildOptions_UniquenessPerQuality(t *testing.T) {
	streams := []domain.StreamDescriptor{
		progressiveStream("22", "mp4", "720p"),
		progressiveStream("18", "webm", "720p"),
		videoOnlyStream("136", "mp4", "avc1.4d401f", "720p", 30_000_000),
		videoOnlyStream("137", "mp4", "avc1.640028", "1080p", 80_000_000),
		videoOnlyStream("248", "webm", "vp9", "1080p", 70_000_000),
		audioOnlyStream("140", "m4a", "mp4a.40.2", 128_000, 4_000_000),
		audioOnlyStream("251", "webm", "opus", 160_000, 5_000_000),
	}

	options := BuildOptions(streams)
	seen := map[string]int{}
	for _, o := range options {
		if o.Container != "mp3" {
			seen[o.Quality]++
		}
	}
	for quality, count := range seen {
		assert.Equal(t, 1, count, "quality %s emitted %d times", quality, count)
	}
}

func TestBuildOptions_SortedByResolutionDescending(t *testing.T) {
	streams := []domain.StreamDescriptor{
		videoOnlyStream("160", "mp4", "avc1.4d400c", "144p", 2_000_000),
		videoOnlyStream("137", "mp4", "avc1.640028", "1080p", 80_000_000),
		videoOnlyStream("136", "mp4", "avc1.4d401f", "720p", 30_000_000),
		audioOnlyStream("140", "m4a", "mp4a.40.2", 128_000, 4_000_000),
	}

	options := BuildOptions(streams)
	require.Len(t, options, 4)
	assert.Equal(t, "1080p", options[0].Quality)
	assert.Equal(t, "720p", options[1].Quality)
	assert.Equal(t, "144p", options[2].Quality)
}

func TestBuildOptions_ProgressivePrefersMP4Container(t *testing.T) {
	webm := progressiveStream("43", "webm", "360p")
	webm.VideoCodec = "vp8"
	webm.AudioCodec = "vorbis"
	streams := []domain.StreamDescriptor{
		webm,
		progressiveStream("18", "mp4", "360p"),
	}

	options := BuildOptions(streams)
	require.NotEmpty(t, options)
	assert.Equal(t, "mp4", options[0].Container)
	assert.Equal(t, "18", options[0].StreamID)
}

func TestBuildOptions_AudioMenuSortedAndBucketed(t *testing.T) {
	streams := []domain.StreamDescriptor{
		audioOnlyStream("139", "m4a", "mp4a.40.5", 48_000, 1_000_000),
		audioOnlyStream("251", "webm", "opus", 256_000, 6_000_000),
		audioOnlyStream("140", "m4a", "mp4a.40.2", 160_000, 4_000_000),
	}

	options := BuildOptions(streams)
	require.Len(t, options, 3)
	assert.Equal(t, "320kbps", options[0].Quality)
	assert.Equal(t, "192kbps", options[1].Quality)
	assert.Equal(t, "128kbps", options[2].Quality)
	for _, o := range options {
		assert.Equal(t, "mp3", o.Container)
		assert.Equal(t, domain.MethodProgressive, o.Method)
	}
}

func TestBuildOptions_BucketMonotonicWithBitrate(t *testing.T) {
	rank := map[string]int{"128kbps": 0, "192kbps": 1, "320kbps": 2}
	prev := -1
	for _, bitrate := range []int{32_000, 96_000, 160_000, 200_000, 250_000, 320_000} {
		bucket := domain.AudioQualityBucket(bitrate)
		assert.GreaterOrEqual(t, rank[bucket], prev, "bitrate %d", bitrate)
		prev = rank[bucket]
	}
}

func TestBuildOptions_DropsVideoWithoutQualityLabel(t *testing.T) {
	unlabeled := videoOnlyStream("0", "mp4", "avc1.640028", "", 10_000_000)
	streams := []domain.StreamDescriptor{
		unlabeled,
		audioOnlyStream("140", "m4a", "mp4a.40.2", 128_000, 4_000_000),
	}

	options := BuildOptions(streams)
	require.Len(t, options, 1)
	assert.Equal(t, "mp3", options[0].Container)
}

func TestBuildOptions_EmptyInput(t *testing.T) {
	assert.Empty(t, BuildOptions(nil))
}
