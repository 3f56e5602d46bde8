package icon

import (
	"fmt"
	"image"
	"math"
	"strings"

	"golang.org/x/image/draw"
)

// Filter selects the resampling kernel used when frames are resized.
type Filter int

const (
	// Nearest picks the closest source pixel, keeping hard sprite
	// edges. It is the default.
	Nearest Filter = iota
	// Triangle is bilinear interpolation.
	Triangle
	// CatmullRom is a cubic Catmull-Rom spline.
	CatmullRom
	// Gaussian blurs with a sigma 0.5 gaussian window.
	Gaussian
	// Lanczos3 is a three-lobe windowed sinc.
	Lanczos3
)

var filterNames = [...]string{
	"nearest",
	"triangle",
	"catmull-rom",
	"gaussian",
	"lanczos3",
}

func (f Filter) String() string {
	if f < Nearest || f > Lanczos3 {
		return fmt.Sprintf("Filter(%d)", int(f))
	}
	return filterNames[f]
}

// ParseFilter returns the Filter named by s.
func ParseFilter(s string) (Filter, error) {
	for i, name := range filterNames {
		if strings.EqualFold(s, name) {
			return Filter(i), nil
		}
	}
	return Nearest, fmt.Errorf("icon: unknown filter %q", s)
}

func sinc(t float64) float64 {
	if t == 0 {
		return 1
	}
	t *= math.Pi
	return math.Sin(t) / t
}

var (
	gaussian = &draw.Kernel{Support: 3, At: func(t float64) float64 {
		return math.Exp(-2 * t * t)
	}}
	lanczos3 = &draw.Kernel{Support: 3, At: func(t float64) float64 {
		if t >= 3 {
			return 0
		}
		return sinc(t) * sinc(t/3)
	}}
)

func (f Filter) scaler() draw.Scaler {
	switch f {
	case Triangle:
		return draw.BiLinear
	case CatmullRom:
		return draw.CatmullRom
	case Gaussian:
		return gaussian
	case Lanczos3:
		return lanczos3
	default:
		return draw.NearestNeighbor
	}
}

// resizeFrames resamples every frame to exactly width by height pixels,
// stretching to fit. The input frames are left untouched.
func resizeFrames(frames []*image.NRGBA, width, height int, f Filter) []*image.NRGBA {
	if len(frames) == 0 {
		return nil
	}

	s := f.scaler()
	out := make([]*image.NRGBA, len(frames))
	for i, m := range frames {
		dst := image.NewNRGBA(image.Rect(0, 0, width, height))
		s.Scale(dst, dst.Bounds(), m, m.Bounds(), draw.Src, nil)
		out[i] = dst
	}
	return out
}
