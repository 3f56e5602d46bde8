package dmi

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidNRGBA(w, h int, c color.NRGBA) *image.NRGBA {
	m := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(m.Pix); i += 4 {
		m.Pix[i+0] = c.R
		m.Pix[i+1] = c.G
		m.Pix[i+2] = c.B
		m.Pix[i+3] = c.A
	}
	return m
}

// cellColor gives every sheet cell its own colour so tests can tell
// which cell ended up where.
func cellColor(i int) color.NRGBA {
	return color.NRGBA{R: uint8(10 + 25*i), G: uint8(200 - 20*i), B: 90, A: 255}
}

func testState(name string, dirs, frames, cells int) *State {
	s := &State{Name: name, Dirs: dirs, Frames: frames}
	for i := 0; i < cells; i++ {
		s.Images = append(s.Images, solidNRGBA(DefaultSize, DefaultSize, cellColor(len(s.Images))))
	}
	return s
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	idle := testState("idle", 4, 2, 8)
	idle.Delay = []float64{1, 2.5}
	blink := testState("blink", 1, 1, 1)
	blink.Loop = 3
	blink.Movement = true

	src := &Icon{Width: DefaultSize, Height: DefaultSize, States: []*State{idle, blink}}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, src))

	m, err := Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	assert.Equal(t, DefaultSize, m.Width)
	assert.Equal(t, DefaultSize, m.Height)
	require.Len(t, m.States, 2)

	got := m.States[0]
	assert.Equal(t, "idle", got.Name)
	assert.Equal(t, 4, got.Dirs)
	assert.Equal(t, 2, got.Frames)
	assert.Equal(t, []float64{1, 2.5}, got.Delay)
	require.Len(t, got.Images, 8)
	for i, frame := range got.Images {
		assert.Equal(t, image.Rect(0, 0, DefaultSize, DefaultSize), frame.Bounds())
		assert.Equal(t, cellColor(i), frame.At(0, 0), "cell %d", i)
	}

	got = m.States[1]
	assert.Equal(t, "blink", got.Name)
	assert.Equal(t, uint(3), got.Loop)
	assert.True(t, got.Movement)
	require.Len(t, got.Images, 1)
	assert.Equal(t, cellColor(0), got.Images[0].At(16, 16))
}

func TestDecodeTruncatedSheet(t *testing.T) {
	// Eight cells declared, six present. The first state soaks up what
	// there is and the second comes up empty.
	short := testState("short", 4, 2, 6)
	late := testState("late", 1, 1, 0)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, &Icon{
		Width:  DefaultSize,
		Height: DefaultSize,
		States: []*State{short, late},
	}))

	m, err := Decode(&buf)
	require.NoError(t, err)

	require.Len(t, m.States, 2)
	assert.Len(t, m.States[0].Images, 6)
	assert.Empty(t, m.States[1].Images)
	for i, frame := range m.States[0].Images {
		assert.Equal(t, cellColor(i), frame.At(0, 0), "cell %d", i)
	}
}

func TestDecodeConfig(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, &Icon{
		Width:  16,
		Height: 16,
		States: []*State{{Name: "only", Dirs: 1, Frames: 1, Images: []*image.NRGBA{solidNRGBA(16, 16, cellColor(0))}}},
	}))

	cfg, err := DecodeConfig(&buf)
	require.NoError(t, err)

	assert.Equal(t, 16, cfg.Width)
	assert.Equal(t, 16, cfg.Height)
	require.Len(t, cfg.States, 1)
	assert.Equal(t, "only", cfg.States[0].Name)
	assert.Nil(t, cfg.States[0].Images)
}

func TestDecodeNotPNG(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("certainly not a PNG")))
	assert.ErrorIs(t, err, errNotPNG)
}

func TestDecodePlainPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solidNRGBA(32, 32, cellColor(0))))

	_, err := Decode(&buf)
	assert.ErrorIs(t, err, ErrNoMetadata)
}

func TestDecodeTEXtChunk(t *testing.T) {
	var sheet bytes.Buffer
	require.NoError(t, png.Encode(&sheet, solidNRGBA(32, 32, cellColor(2))))
	b := sheet.Bytes()

	// Splice an uncompressed tEXt chunk in after IHDR by hand, the way
	// some third-party editors write the metadata.
	text := serializeMetadata(&Icon{
		Width:  DefaultSize,
		Height: DefaultSize,
		States: []*State{{Name: "flat", Dirs: 1, Frames: 1}},
	})
	data := append([]byte(keyword), 0)
	data = append(data, text...)

	end := len(pngSignature) + 12 + int(binary.BigEndian.Uint32(b[len(pngSignature):]))
	var out bytes.Buffer
	out.Write(b[:end])
	e := encoder{w: &out}
	require.NoError(t, e.writeChunk("tEXt", data))
	out.Write(b[end:])

	m, err := Decode(&out)
	require.NoError(t, err)

	require.Len(t, m.States, 1)
	assert.Equal(t, "flat", m.States[0].Name)
	require.Len(t, m.States[0].Images, 1)
	assert.Equal(t, cellColor(2), m.States[0].Images[0].At(0, 0))
}

func TestDecodeCorruptMetadata(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, &Icon{
		Width:  DefaultSize,
		Height: DefaultSize,
		States: []*State{testState("x", 1, 1, 1)},
	}))

	b := buf.Bytes()
	i := bytes.Index(b, []byte("zTXt"))
	require.True(t, i > 0)
	b[i+4+len(keyword)+3] ^= 0xff // inside the compressed stream

	_, err := Decode(bytes.NewReader(b))
	assert.ErrorIs(t, err, errBadChunk)
}

func TestEncodeBadCellSize(t *testing.T) {
	var buf bytes.Buffer
	err := Encode(&buf, &Icon{Width: 0, Height: 32})
	assert.ErrorIs(t, err, errCellSize)
}
