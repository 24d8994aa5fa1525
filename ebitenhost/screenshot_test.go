package ebitenhost

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeLabel(t *testing.T) {
	assert.Equal(t, "unlabeled", sanitizeLabel("  "))
	assert.Equal(t, "fountain-01.v2", sanitizeLabel("fountain-01.v2"))
	assert.Equal(t, "a_b_c", sanitizeLabel("a/b c"))
}

func TestUnpremultiply(t *testing.T) {
	pixels := []byte{
		128, 64, 0, 128, // half-transparent orange
		255, 255, 255, 255,
		0, 0, 0, 0,
	}
	img := unpremultiply(pixels, 3, 1)
	assert.Equal(t, []uint8{255, 127, 0, 128}, img.Pix[0:4])
	assert.Equal(t, []uint8{255, 255, 255, 255}, img.Pix[4:8])
	assert.Equal(t, []uint8{0, 0, 0, 0}, img.Pix[8:12])
}

func TestWritePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.png")
	src := unpremultiply([]byte{10, 20, 30, 255}, 1, 1)
	require.NoError(t, writePNG(path, src))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 1, 1), img.Bounds())

	assert.Error(t, writePNG(filepath.Join(t.TempDir(), "missing", "frame.png"), src))
}
