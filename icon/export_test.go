package icon

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportFrame(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "frame.png")
	c := cellColor(3)

	require.NoError(t, ExportFrame(path, solidNRGBA(16, 16, c)))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	m, err := png.Decode(f)
	require.NoError(t, err)

	assert.Equal(t, image.Rect(0, 0, 16, 16), m.Bounds())
	r, g, b, a := m.At(0, 0).RGBA()
	assert.Equal(t, uint32(c.R), r>>8)
	assert.Equal(t, uint32(c.G), g>>8)
	assert.Equal(t, uint32(c.B), b>>8)
	assert.Equal(t, uint32(c.A), a>>8)

	// No stray temporary files left next to the export.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestExportFrameFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "frame.png")

	// A zero-size image cannot be encoded; the failed export must not
	// leave the destination or a temporary file behind.
	err := ExportFrame(path, image.NewNRGBA(image.Rectangle{}))
	assert.Error(t, err)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExportFrameMissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "frame.png")
	assert.Error(t, ExportFrame(path, solidNRGBA(16, 16, cellColor(0))))
}

func TestExportAnimation(t *testing.T) {
	frames := testRawState("x", 1, 2, 2, 16).Images
	b, err := Animate(frames, 0, nil)
	require.NoError(t, err)
	anim, err := NewAnimation(b)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "anim.gif")
	require.NoError(t, ExportAnimation(path, anim))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, anim.Bytes, got)
}

func TestExportAnimationEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "anim.gif")

	assert.ErrorIs(t, ExportAnimation(path, nil), ErrNoAnimation)
	assert.ErrorIs(t, ExportAnimation(path, &Animation{}), ErrNoAnimation)

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
