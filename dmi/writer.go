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
	"math"

	"github.com/klauspost/compress/zlib"
)

var errCellSize = errors.New("dmi: invalid cell size")

type encoder struct {
	w io.Writer
}

func (e *encoder) writeChunk(typ string, data []byte) error {
	var hdr [8]byte
	binary.BigEndian.PutUint32(hdr[:4], uint32(len(data)))
	copy(hdr[4:], typ)
	if _, err := e.w.Write(hdr[:]); err != nil {
		return err
	}
	if _, err := e.w.Write(data); err != nil {
		return err
	}

	crc := crc32.NewIEEE()
	crc.Write(hdr[4:])
	crc.Write(data)
	var sum [4]byte
	binary.BigEndian.PutUint32(sum[:], crc.Sum32())
	_, err := e.w.Write(sum[:])
	return err
}

// splice copies an encoded PNG to the output with a zTXt metadata chunk
// inserted directly after the IHDR chunk.
func (e *encoder) splice(b []byte, text string) error {
	if len(b) < len(pngSignature)+12 {
		return errNotEnough
	}
	end := len(pngSignature) + 12 + int(binary.BigEndian.Uint32(b[len(pngSignature):]))
	if _, err := e.w.Write(b[:end]); err != nil {
		return err
	}

	var data bytes.Buffer
	data.WriteString(keyword)
	data.WriteByte(0) // keyword terminator
	data.WriteByte(0) // deflate compression
	zw := zlib.NewWriter(&data)
	if _, err := zw.Write([]byte(text)); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}
	if err := e.writeChunk("zTXt", data.Bytes()); err != nil {
		return err
	}

	_, err := e.w.Write(b[end:])
	return err
}

// Encode writes the icon m to w in DMI format. The cells of every state
// are packed row-major into a near-square sheet, the way the icon editor
// lays them out.
func Encode(w io.Writer, m *Icon) error {
	if m.Width < 1 || m.Height < 1 {
		return errCellSize
	}

	total := 0
	for _, s := range m.States {
		total += len(s.Images)
	}

	cols, rows := 1, 1
	if total > 0 {
		cols = int(math.Ceil(math.Sqrt(float64(total))))
		rows = (total + cols - 1) / cols
	}

	sheet := image.NewNRGBA(image.Rect(0, 0, cols*m.Width, rows*m.Height))
	cell := 0
	for _, s := range m.States {
		for _, frame := range s.Images {
			x := (cell % cols) * m.Width
			y := (cell / cols) * m.Height
			r := image.Rect(x, y, x+m.Width, y+m.Height)
			draw.Draw(sheet, r, frame, frame.Bounds().Min, draw.Src)
			cell++
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, sheet); err != nil {
		return fmt.Errorf("dmi: %w", err)
	}

	e := encoder{w: w}
	return e.splice(buf.Bytes(), serializeMetadata(m))
}
