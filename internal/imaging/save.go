package imaging

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"

	"github.com/disintegration/imaging"
)

// JPEGQuality is the quality used when the output extension selects JPEG.
const JPEGQuality = 95

// Save encodes img to a new file at path. The format is chosen from the file
// extension. An existing file is never overwritten, and a partially written
// file is removed on failure.
func Save(img image.Image, path string) error {
	format, err := imaging.FormatFromFilename(path)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", ErrOutputAlreadyExists, path)
		}
		return fmt.Errorf("%w: %s: %v", ErrOutputNotWritable, path, err)
	}

	if err := imaging.Encode(f, img, format, imaging.JPEGQuality(JPEGQuality)); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("failed to encode image: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to write image: %w", err)
	}
	return nil
}

// SavePreview writes img to path, replacing any existing file. It is meant for
// scratch previews, never for the session output.
func SavePreview(img image.Image, path string) error {
	if err := imaging.Save(img, path, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return fmt.Errorf("failed to write preview: %w", err)
	}
	return nil
}
