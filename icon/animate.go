package icon

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"math"

	"github.com/ericpauley/go-quantize/quantize"
)

// ErrNoFrames is returned when animation synthesis is asked to encode an
// empty frame sequence.
var ErrNoFrames = errors.New("icon: animation needs at least one frame")

// Animation pairs an encoded GIF with its decoded form. GIF is always
// decoded from the exact bytes in Bytes so the two cannot diverge.
type Animation struct {
	Bytes []byte
	GIF   *gif.GIF
}

// NewAnimation decodes b and returns the paired handle.
func NewAnimation(b []byte) (*Animation, error) {
	g, err := gif.DecodeAll(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	return &Animation{Bytes: b, GIF: g}, nil
}

// delayAt returns the delay of frame i in ticks. Entries the sequence is
// missing count as one tick, never zero.
func delayAt(delay []float64, i int) float64 {
	if i >= len(delay) {
		return 1
	}
	return delay[i]
}

// Animate encodes frames in order as a single GIF. loop 0 repeats
// forever, anything else repeats that many times. delay entries are in
// ticks of a tenth of a second.
func Animate(frames []*image.NRGBA, loop uint, delay []float64) ([]byte, error) {
	if len(frames) == 0 {
		return nil, ErrNoFrames
	}

	// Leave one palette slot free for the transparent entry.
	q := quantize.MedianCutQuantizer{AddTransparent: true}

	g := &gif.GIF{
		Image:     make([]*image.Paletted, len(frames)),
		Delay:     make([]int, len(frames)),
		Disposal:  make([]byte, len(frames)),
		LoopCount: int(loop),
	}

	for i, m := range frames {
		b := m.Bounds()
		pm := image.NewPaletted(b, q.Quantize(make(color.Palette, 0, 255), m))
		draw.Draw(pm, b, m, b.Min, draw.Src)

		ms := math.Round(delayAt(delay, i) * 100)
		if ms < 0 {
			ms = 0
		}

		g.Image[i] = pm
		g.Delay[i] = int(math.Round(ms / 10))
		g.Disposal[i] = gif.DisposalBackground
	}

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, g); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
