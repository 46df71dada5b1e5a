package analysis_test

import (
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/glowguide/internal/domain/analysis"
)

// smallest valid PNG header, enough for content sniffing
var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestParseDataURL(t *testing.T) {
	b64 := base64.StdEncoding.EncodeToString(pngBytes)

	img, payload, err := analysis.ParseDataURL("data:image/jpeg;base64," + b64)
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, pngBytes, img.Data)
	assert.Equal(t, b64, payload)
	assert.Equal(t, "png", img.Ext())
}

func TestParseDataURLErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"empty", "  ", analysis.ErrImageRequired},
		{"no comma", "data:image/png;base64", analysis.ErrInvalidImageData},
		{"empty payload", "data:image/png;base64,", analysis.ErrInvalidImageData},
		{"bad base64", "data:image/png;base64,!!!", analysis.ErrInvalidImageData},
		{"not an image", "data:text/plain;base64," + base64.StdEncoding.EncodeToString([]byte("hello world")), analysis.ErrInvalidImageData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := analysis.ParseDataURL(tt.input)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestImageExtDefaultsToJPG(t *testing.T) {
	assert.Equal(t, "jpg", analysis.Image{ContentType: "image/jpeg"}.Ext())
	assert.Equal(t, "jpg", analysis.Image{}.Ext())
	assert.Equal(t, "webp", analysis.Image{ContentType: "image/webp"}.Ext())
}

func TestExtractPreview(t *testing.T) {
	data := json.RawMessage(`{
		"perceived_age": 31.6,
		"preview_insights": [
			{"star_rating": 4, "emotional_hook": "You carry tension", "conversion_tease": "See why", "category": "stress"},
			"garbage",
			{"star_rating": 9, "category": "skin"}
		],
		"recommendations": {"diet": {"add": ["greens"]}}
	}`)

	age, insights := analysis.ExtractPreview(data)
	assert.Equal(t, 31, age)
	require.Len(t, insights, 2)
	assert.Equal(t, analysis.PreviewInsight{StarRating: 4, EmotionalHook: "You carry tension", ConversionTease: "See why", Category: "stress"}, insights[0])
	assert.Equal(t, 5, insights[1].StarRating)
}

func TestExtractPreviewInvalid(t *testing.T) {
	age, insights := analysis.ExtractPreview(json.RawMessage(`not json`))
	assert.Zero(t, age)
	assert.Nil(t, insights)
}

func TestCountdown(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, int64(3600), analysis.Remaining(now.Add(time.Hour), now))
	assert.Equal(t, int64(59), analysis.Remaining(now.Add(59*time.Second+900*time.Millisecond), now))
	assert.Equal(t, int64(0), analysis.Remaining(now.Add(-time.Minute), now))

	assert.Equal(t, "60:00", analysis.FormatCountdown(3600))
	assert.Equal(t, "05:09", analysis.FormatCountdown(309))
	assert.Equal(t, "00:00", analysis.FormatCountdown(-3))
	assert.Equal(t, "120:00", analysis.FormatCountdown(7200))
}

func TestExpiry(t *testing.T) {
	now := time.Now()
	ticket := &analysis.TempAnalysis{ExpiresAt: now}
	assert.True(t, ticket.Expired(now))
	assert.False(t, ticket.Expired(now.Add(-time.Nanosecond)))

	report := &analysis.Analysis{ExpiresAt: now}
	assert.False(t, report.Expired(now))
	assert.True(t, report.Expired(now.Add(time.Nanosecond)))
}

func TestNewTempID(t *testing.T) {
	id := analysis.NewTempID()
	assert.Regexp(t, `^temp_[0-9a-f-]{36}$`, string(id))
	assert.NotEqual(t, id, analysis.NewTempID())
}
