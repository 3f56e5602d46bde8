package icon

import (
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
)

// ErrNoAnimation is returned when an export is asked to write an
// animation that was never synthesized.
var ErrNoAnimation = errors.New("icon: no animation to export")

// ExportFrame writes m to path as a PNG. The file is written under a
// temporary name in the destination directory and renamed into place so
// a failed write never leaves a partial file behind.
func ExportFrame(path string, m image.Image) error {
	return exportFile(path, func(f *os.File) error {
		return png.Encode(f, m)
	})
}

// ExportAnimation writes the encoded animation to path. The bytes are
// already a complete GIF, so nothing is re-encoded.
func ExportAnimation(path string, anim *Animation) error {
	if anim == nil || len(anim.Bytes) == 0 {
		return ErrNoAnimation
	}
	return exportFile(path, func(f *os.File) error {
		_, err := f.Write(anim.Bytes)
		return err
	})
}

func exportFile(path string, write func(*os.File) error) error {
	f, err := os.CreateTemp(filepath.Dir(path), ".dmi-export-*")
	if err != nil {
		return err
	}

	if err := write(f); err != nil {
		f.Close()
		os.Remove(f.Name())
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return err
	}

	if err := os.Rename(f.Name(), path); err != nil {
		os.Remove(f.Name())
		return err
	}

	return nil
}
