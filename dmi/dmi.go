/*
Package dmi implements a DreamMaker icon decoder and encoder.

A DreamMaker icon is a PNG image carrying icon metadata in a zTXt or tEXt
chunk under the "Description" keyword. The pixel data is a sprite sheet of
fixed-size cells laid out row-major, and the metadata describes how those
cells group into named states.

The metadata is a line-oriented block bracketed by "# BEGIN DMI" and
"# END DMI". A header declares the format version and the cell dimensions,
which default to 32 by 32 pixels. Each following state block names one
state and declares how many directions (1, 4 or 8) and animation frames it
spans, along with optional per-frame delays, a loop count, rewind and
movement flags, and a hotspot. A state owns dirs times frames consecutive
cells ordered frame-major: the cells for every direction of the first
frame, then every direction of the second frame, and so on.
*/
package dmi

import (
	"image"
	"time"
)

const (
	// DefaultSize is the cell width and height assumed when the header
	// omits the dimensions.
	DefaultSize = 32

	// Version is the metadata version written by Encode. Any 4.x
	// version is accepted when decoding.
	Version = "4.0"

	// Tick is the unit of State delays.
	Tick = 100 * time.Millisecond
)

// keyword identifies the PNG text chunk holding the metadata.
const keyword = "Description"

// Hotspot marks the pixel a cursor aligns to when the icon is used as a
// mouse pointer. Frame counts from one.
type Hotspot struct {
	X, Y  int
	Frame int
}

// State is one named animation within an icon. Duplicate names are legal
// in the wire format.
type State struct {
	Name     string
	Dirs     int
	Frames   int
	Delay    []float64 // per-frame delay in Ticks, nil for the default
	Loop     uint      // repeat count, 0 loops forever
	Rewind   bool
	Movement bool
	Hotspot  *Hotspot

	// Images holds up to Dirs*Frames cells in frame-major order. It is
	// nil when the state came from DecodeConfig, and shorter than
	// declared when the source sheet ran out of cells.
	Images []*image.NRGBA
}

// Icon is a decoded DreamMaker icon.
type Icon struct {
	// Width and Height are the dimensions of a single cell, not of the
	// backing sheet.
	Width, Height int

	States []*State
}

// Config is the icon metadata without any decoded pixel data.
type Config struct {
	Width, Height int
	States        []*State
}
