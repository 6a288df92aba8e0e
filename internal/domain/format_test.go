package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolutionPriority_Ordering(t *testing.T) {
	labels := []string{"2160p", "1440p", "1080p60", "720p", "480p", "360p", "240p", "144p"}
	for i := 1; i < len(labels); i++ {
		assert.Greater(t, ResolutionPriority(labels[i-1]), ResolutionPriority(labels[i]),
			"%s should outrank %s", labels[i-1], labels[i])
	}
}

func TestResolutionPriority_UnknownRanksLast(t *testing.T) {
	assert.Equal(t, 1000, ResolutionPriority("tiny"))
	assert.Less(t, ResolutionPriority("whatever"), ResolutionPriority("144p"))
}

func TestResolutionPriority_Aliases(t *testing.T) {
	assert.Equal(t, ResolutionPriority("2160p"), ResolutionPriority("4K"))
	assert.Equal(t, ResolutionPriority("1440p"), ResolutionPriority("2k"))
}

func TestAudioQualityBucket(t *testing.T) {
	tests := []struct {
		bitrate int
		want    string
	}{
		{320000, "320kbps"},
		{250000, "320kbps"},
		{249999, "192kbps"},
		{160000, "192kbps"},
		{159999, "128kbps"},
		{64000, "128kbps"},
		{0, "128kbps"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AudioQualityBucket(tt.bitrate), "bitrate %d", tt.bitrate)
	}
}

func TestCodecFamilies(t *testing.T) {
	assert.True(t, IsAVCFamily("avc1.42001E"))
	assert.True(t, IsAVCFamily("avc3.640028"))
	assert.True(t, IsAVCFamily("h264"))
	assert.False(t, IsAVCFamily("vp9"))
	assert.False(t, IsAVCFamily("av01.0.08M.08"))

	assert.True(t, IsAACFamily("mp4a.40.2"))
	assert.True(t, IsAACFamily("aac"))
	assert.False(t, IsAACFamily("opus"))
}

func TestIsOpusAudio(t *testing.T) {
	assert.True(t, IsOpusAudio(&StreamDescriptor{AudioCodec: "opus", Container: "webm"}))
	assert.True(t, IsOpusAudio(&StreamDescriptor{AudioCodec: "vorbis", Container: "webm"}))
	assert.False(t, IsOpusAudio(&StreamDescriptor{AudioCodec: "mp4a.40.2", Container: "mp4"}))
}

func TestFormatFileSize(t *testing.T) {
	assert.Equal(t, "0B", FormatFileSize(0))
	assert.Equal(t, "512B", FormatFileSize(512))
	assert.Equal(t, "1.0KB", FormatFileSize(1024))
	assert.Equal(t, "1.5MB", FormatFileSize(1572864))
	assert.Equal(t, "2.0GB", FormatFileSize(2147483648))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0:05", FormatDuration(5*time.Second))
	assert.Equal(t, "3:27", FormatDuration(207*time.Second))
	assert.Equal(t, "1:02:03", FormatDuration(3723*time.Second))
}

func TestFormatViews(t *testing.T) {
	assert.Equal(t, "0 views", FormatViews(0))
	assert.Equal(t, "999 views", FormatViews(999))
	assert.Equal(t, "1,000 views", FormatViews(1000))
	assert.Equal(t, "12,345,678 views", FormatViews(12345678))
}
