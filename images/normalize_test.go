package images

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, width, height int) *bytes.Buffer {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x += 10 {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 255), G: uint8(y % 255), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return &buf
}

func TestNormalizeScalesDownLongEdge(t *testing.T) {
	buf := encodePNG(t, 2400, 1200)

	out, err := Normalize(buf, "image/png")
	require.NoError(t, err)

	assert.Equal(t, 1200, out.Width)
	assert.Equal(t, 600, out.Height)
	assert.True(t, strings.HasPrefix(out.DataURL, "data:image/jpeg;base64,"))
	assert.True(t, out.SizeKB < MaxSizeKB || out.Quality == 10,
		"either under budget or stopped at the quality floor")
}

func TestNormalizeNeverUpscales(t *testing.T) {
	buf := encodePNG(t, 320, 200)

	out, err := Normalize(buf, "image/png")
	require.NoError(t, err)

	assert.Equal(t, 320, out.Width)
	assert.Equal(t, 200, out.Height)
}

func TestNormalizePortraitOrientation(t *testing.T) {
	buf := encodePNG(t, 600, 1800)

	out, err := Normalize(buf, "image/png")
	require.NoError(t, err)

	assert.Equal(t, 400, out.Width)
	assert.Equal(t, 1200, out.Height)
}

func TestNormalizeRejectsNonImageType(t *testing.T) {
	_, err := Normalize(strings.NewReader("plain text"), "text/plain")
	assert.ErrorIs(t, err, ErrInvalidType)
}

func TestNormalizeRejectsCorruptData(t *testing.T) {
	_, err := Normalize(strings.NewReader("not really an image"), "image/png")
	assert.ErrorIs(t, err, ErrDecode)
}

func TestEstimateKBUsesFixedRatio(t *testing.T) {
	// 4096 characters × 0.75 = 3072 bytes = 3 KiB
	assert.InDelta(t, 3.0, EstimateKB(strings.Repeat("a", 4096)), 1e-9)
}
