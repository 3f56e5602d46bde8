package dmi

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"image"
	"image/draw"
	"image/png"
	"io"

	"github.com/klauspost/compress/zlib"
)

var (
	errNotPNG      = errors.New("dmi: not a PNG file")
	errNotEnough   = errors.New("dmi: not enough data")
	errBadChunk    = errors.New("dmi: metadata chunk CRC mismatch")
	errCompression = errors.New("dmi: unknown text compression method")

	// ErrNoMetadata is returned when the PNG carries no icon metadata
	// and is therefore a plain image rather than an icon.
	ErrNoMetadata = errors.New("dmi: no icon metadata")
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

type decoder struct {
	data []byte

	cfg   Config
	sheet image.Image
}

// description walks the PNG chunk list and returns the text of the first
// zTXt or tEXt chunk keyed by the metadata keyword.
func (d *decoder) description() (string, error) {
	if !bytes.HasPrefix(d.data, pngSignature) {
		return "", errNotPNG
	}

	for b := d.data[len(pngSignature):]; len(b) > 0; {
		if len(b) < 12 {
			return "", errNotEnough
		}
		n := int(binary.BigEndian.Uint32(b))
		if n < 0 || len(b) < 12+n {
			return "", errNotEnough
		}
		typ, data := string(b[4:8]), b[8:8+n]

		switch typ {
		case "IEND":
			return "", ErrNoMetadata
		case "zTXt", "tEXt":
			i := bytes.IndexByte(data, 0)
			if i < 0 || string(data[:i]) != keyword {
				break
			}
			if crc32.ChecksumIEEE(b[4:8+n]) != binary.BigEndian.Uint32(b[8+n:]) {
				return "", errBadChunk
			}
			if typ == "tEXt" {
				return string(data[i+1:]), nil
			}
			if len(data) < i+2 || data[i+1] != 0 {
				return "", errCompression
			}
			zr, err := zlib.NewReader(bytes.NewReader(data[i+2:]))
			if err != nil {
				return "", fmt.Errorf("dmi: %w", err)
			}
			text, err := io.ReadAll(zr)
			zr.Close()
			if err != nil {
				return "", fmt.Errorf("dmi: %w", err)
			}
			return string(text), nil
		}

		b = b[12+n:]
	}

	return "", ErrNoMetadata
}

func (d *decoder) decode(r io.Reader, configOnly bool) error {
	var err error
	if d.data, err = io.ReadAll(r); err != nil {
		return err
	}

	text, err := d.description()
	if err != nil {
		return err
	}

	if d.cfg, err = parseMetadata(text); err != nil {
		return err
	}

	if configOnly {
		return nil
	}

	if d.sheet, err = png.Decode(bytes.NewReader(d.data)); err != nil {
		return fmt.Errorf("dmi: %w", err)
	}

	return nil
}

// slice cuts the decoded sheet into cells and deals them out to the
// states in declaration order. A sheet with fewer cells than the states
// declare yields short Images slices, never an error.
func (d *decoder) slice(m *Icon) {
	bounds := d.sheet.Bounds()
	cols := bounds.Dx() / m.Width
	rows := bounds.Dy() / m.Height
	cells := cols * rows

	next := 0
	for _, s := range m.States {
		n := s.Dirs * s.Frames
		avail := cells - next
		if avail > n {
			avail = n
		}

		for i := 0; i < avail; i++ {
			x := bounds.Min.X + ((next+i)%cols)*m.Width
			y := bounds.Min.Y + ((next+i)/cols)*m.Height
			cell := image.NewNRGBA(image.Rect(0, 0, m.Width, m.Height))
			draw.Draw(cell, cell.Bounds(), d.sheet, image.Pt(x, y), draw.Src)
			s.Images = append(s.Images, cell)
		}

		next += n
	}
}

// Decode reads a DreamMaker icon from r and returns it with every cell
// sliced out of the sheet as its own image.
func Decode(r io.Reader) (*Icon, error) {
	var d decoder
	if err := d.decode(r, false); err != nil {
		return nil, err
	}

	m := &Icon{
		Width:  d.cfg.Width,
		Height: d.cfg.Height,
		States: d.cfg.States,
	}
	d.slice(m)

	return m, nil
}

// DecodeConfig returns the icon metadata without decoding any pixel
// data.
func DecodeConfig(r io.Reader) (Config, error) {
	var d decoder
	if err := d.decode(r, true); err != nil {
		return Config{}, err
	}
	return d.cfg, nil
}
