package browser

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyxmakerx/a11y-engine/internal/a11y/effects"
)

func TestParseRGB(t *testing.T) {
	tests := []struct {
		in   string
		want effects.RGB
	}{
		{"rgb(255, 255, 255)", effects.RGB{R: 255, G: 255, B: 255}},
		{"rgba(12, 34, 56, 0.5)", effects.RGB{R: 12, G: 34, B: 56}},
		{" rgb(0 128 255) ", effects.RGB{R: 0, G: 128, B: 255}},
		{"rgb(10 20 30 / 50%)", effects.RGB{R: 10, G: 20, B: 30}},
		{"rgb(10.4, 20.6, 30)", effects.RGB{R: 10, G: 21, B: 30}},
	}
	for _, tt := range tests {
		got, err := parseRGB(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestParseRGB_Rejects(t *testing.T) {
	for _, in := range []string{"", "transparent", "#ffffff", "hsl(0, 0%, 0%)", "rgb(1, 2)", "rgb(300, 0, 0)", "rgb(a, b, c)"} {
		_, err := parseRGB(in)
		assert.Error(t, err, in)
	}
}

func TestFirstPixel(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA{R: 30, G: 60, B: 90, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	got, err := firstPixel(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, effects.RGB{R: 30, G: 60, B: 90}, got)

	_, err = firstPixel([]byte("not a png"))
	assert.Error(t, err)
}
