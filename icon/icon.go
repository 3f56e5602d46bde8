/*
Package icon builds a queryable model from a decoded DreamMaker icon:
states keyed by name, directions keyed by compass facing, per-direction
frame sequences with prebuilt GIF renditions, and non-destructive
resizing of the displayed copies.
*/
package icon

import (
	"image"
	"image/draw"
	"sort"

	"github.com/rs/zerolog"

	"github.com/VladOS-0/dmi-assistant/dmi"
)

// Target is a requested display size. The zero value keeps the original
// dimensions.
type Target struct {
	Width, Height int
}

// IsZero reports whether t requests the original dimensions.
func (t Target) IsZero() bool {
	return t == Target{}
}

// Icon is the parsed form of a decoded icon. It is built once per load
// and owned by a single caller; Resize mutates it in place and must not
// run concurrently with anything else touching the same Icon.
type Icon struct {
	OriginalWidth  int
	OriginalHeight int

	// DisplayedWidth and DisplayedHeight are the dimensions consumers
	// render at. They equal the originals unless a resize is active.
	DisplayedWidth  int
	DisplayedHeight int

	// States maps state name to state. Duplicate names in the source
	// collapse to the last one declared.
	States map[string]*State

	logger zerolog.Logger
}

// State is one named animation and its directional frame sequences.
type State struct {
	Name       string
	Delay      []float64 // per-frame delay in ticks of a tenth of a second
	Loop       uint      // repeat count, 0 loops forever
	Rewind     bool
	Movement   bool
	FrameCount int

	// Truncated counts frames the source declared but did not contain,
	// summed across directions.
	Truncated int

	Dirs map[Direction]*DirImage
}

// DirImage holds the frame sequence of one direction together with its
// prebuilt animations. Resized and ResizedAnim are independently
// optional: frame resizing can succeed while animation synthesis fails.
type DirImage struct {
	Originals []*image.NRGBA
	Resized   []*image.NRGBA

	Anim        *Animation
	ResizedAnim *Animation
}

// Frame returns the displayed variant of frame i, preferring the resized
// copy when one exists. It returns nil when i is out of range.
func (di *DirImage) Frame(i int) *image.NRGBA {
	if i >= 0 && i < len(di.Resized) {
		return di.Resized[i]
	}
	return di.OriginalFrame(i)
}

// OriginalFrame returns frame i at the original size, or nil when i is
// out of range.
func (di *DirImage) OriginalFrame(i int) *image.NRGBA {
	if i < 0 || i >= len(di.Originals) {
		return nil
	}
	return di.Originals[i]
}

// Animation returns the displayed animation, preferring the resized one
// when it exists. It returns nil when synthesis produced nothing.
func (di *DirImage) Animation() *Animation {
	if di.ResizedAnim != nil {
		return di.ResizedAnim
	}
	return di.Anim
}

// OriginalAnimation returns the animation at the original size, or nil.
func (di *DirImage) OriginalAnimation() *Animation {
	return di.Anim
}

// Directions returns the populated directions in ordinal order.
func (s *State) Directions() []Direction {
	dirs := make([]Direction, 0, len(s.Dirs))
	for d := range s.Dirs {
		dirs = append(dirs, d)
	}
	sort.Slice(dirs, func(i, j int) bool { return dirs[i] < dirs[j] })
	return dirs
}

// New builds the model from a decoded icon. target and filter request an
// initial resize under the same clamp policy as Resize; the zero Target
// keeps the original size.
func New(raw *dmi.Icon, target Target, filter Filter, logger zerolog.Logger) *Icon {
	ic := &Icon{
		OriginalWidth:  raw.Width,
		OriginalHeight: raw.Height,
		States:         make(map[string]*State, len(raw.States)),
		logger:         logger,
	}

	for _, rs := range raw.States {
		if _, ok := ic.States[rs.Name]; ok {
			ic.logger.Debug().Str("state", rs.Name).Msg("duplicate state name, keeping the last")
		}
		ic.States[rs.Name] = ic.newState(rs)
	}

	ic.Resize(target, filter)

	return ic
}

func (ic *Icon) newState(rs *dmi.State) *State {
	s := &State{
		Name:       rs.Name,
		Delay:      append([]float64(nil), rs.Delay...),
		Loop:       rs.Loop,
		Rewind:     rs.Rewind,
		Movement:   rs.Movement,
		FrameCount: rs.Frames,
		Dirs:       make(map[Direction]*DirImage, rs.Dirs),
	}

	for d := 0; d < rs.Dirs; d++ {
		dir := DirectionOf(d)
		di := &DirImage{Originals: extractFrames(rs, d)}

		if missing := rs.Frames - len(di.Originals); missing > 0 {
			s.Truncated += missing
			ic.logger.Warn().
				Str("state", rs.Name).
				Stringer("dir", dir).
				Int("missing", missing).
				Msg("truncated frame sequence")
		}

		di.Anim = ic.animate(di.Originals, s, dir, "animation")

		s.Dirs[dir] = di
	}

	return s
}

// animate synthesizes the GIF for one direction. Failures are logged and
// yield nil; the still frames stay usable either way.
func (ic *Icon) animate(frames []*image.NRGBA, s *State, dir Direction, what string) *Animation {
	if len(frames) == 0 {
		return nil
	}

	b, err := Animate(frames, s.Loop, s.Delay)
	if err == nil {
		var anim *Animation
		if anim, err = NewAnimation(b); err == nil {
			return anim
		}
	}

	ic.logger.Warn().
		Err(err).
		Str("state", s.Name).
		Stringer("dir", dir).
		Msgf("no %s synthesized", what)
	return nil
}

// extractFrames gathers the frame sequence of direction d from the flat
// cell list of rs. Cells are frame-major, so frame f of direction d sits
// at index d + f*Dirs. Extraction stops at the first index past the end
// of the list.
func extractFrames(rs *dmi.State, d int) []*image.NRGBA {
	frames := make([]*image.NRGBA, 0, rs.Frames)
	for f := 0; f < rs.Frames; f++ {
		i := d + f*rs.Dirs
		if i >= len(rs.Images) {
			break
		}
		frames = append(frames, cloneNRGBA(rs.Images[i]))
	}
	return frames
}

func cloneNRGBA(m *image.NRGBA) *image.NRGBA {
	dup := image.NewNRGBA(m.Bounds())
	draw.Draw(dup, dup.Bounds(), m, m.Bounds().Min, draw.Src)
	return dup
}

// Resize applies the clamp policy to target and recomputes every resized
// derivative in place. A request that exceeds the original size in
// neither dimension reverts the icon to its original presentation.
// Original frames are never touched.
func (ic *Icon) Resize(target Target, filter Filter) {
	eff := ic.clamp(target)

	if eff.IsZero() {
		ic.DisplayedWidth, ic.DisplayedHeight = ic.OriginalWidth, ic.OriginalHeight
	} else {
		ic.DisplayedWidth, ic.DisplayedHeight = eff.Width, eff.Height
	}

	for _, s := range ic.States {
		ic.resizeState(s, eff, filter)
	}
}

// clamp reduces target to the effective request: a dimension that does
// not exceed the original reverts to the original, and when neither
// exceeds it the whole request reverts to the zero Target. Resizing is
// strictly an upscale-or-noop operation.
func (ic *Icon) clamp(target Target) Target {
	switch {
	case target.Width > ic.OriginalWidth && target.Height > ic.OriginalHeight:
		return target
	case target.Height > ic.OriginalHeight:
		return Target{Width: ic.OriginalWidth, Height: target.Height}
	case target.Width > ic.OriginalWidth:
		return Target{Width: target.Width, Height: ic.OriginalHeight}
	default:
		return Target{}
	}
}

func (ic *Icon) resizeState(s *State, eff Target, filter Filter) {
	for dir, di := range s.Dirs {
		if eff.IsZero() {
			di.Resized, di.ResizedAnim = nil, nil
			continue
		}

		di.Resized = resizeFrames(di.Originals, eff.Width, eff.Height, filter)
		di.ResizedAnim = ic.animate(di.Resized, s, dir, "resized animation")
	}
}

// Frame returns the displayed image of the named state at the given
// direction and frame index, or nil when any of them is absent.
func (ic *Icon) Frame(state string, dir Direction, i int) *image.NRGBA {
	if di := ic.dirImage(state, dir); di != nil {
		return di.Frame(i)
	}
	return nil
}

// OriginalFrame is Frame at the original size.
func (ic *Icon) OriginalFrame(state string, dir Direction, i int) *image.NRGBA {
	if di := ic.dirImage(state, dir); di != nil {
		return di.OriginalFrame(i)
	}
	return nil
}

// Animation returns the displayed animation of the named state at the
// given direction, or nil.
func (ic *Icon) Animation(state string, dir Direction) *Animation {
	if di := ic.dirImage(state, dir); di != nil {
		return di.Animation()
	}
	return nil
}

// OriginalAnimation is Animation at the original size.
func (ic *Icon) OriginalAnimation(state string, dir Direction) *Animation {
	if di := ic.dirImage(state, dir); di != nil {
		return di.OriginalAnimation()
	}
	return nil
}

// StateNames returns every state name in sorted order.
func (ic *Icon) StateNames() []string {
	names := make([]string, 0, len(ic.States))
	for name := range ic.States {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (ic *Icon) dirImage(state string, dir Direction) *DirImage {
	if s := ic.States[state]; s != nil {
		return s.Dirs[dir]
	}
	return nil
}
