package imaging

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/disintegration/imaging"
)

// CheckInput verifies that path names an existing regular file.
func CheckInput(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		return fmt.Errorf("%w: %s: %v", ErrInputNotFound, path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", ErrInputNotFound, path)
	}
	return nil
}

// CheckOutput verifies that a new file can be written at path without touching
// anything already there.
//
// The check creates the file exclusively and removes it again, so a
// successful check leaves the filesystem unchanged.
//
// # Errors
//
//   - ErrOutputAlreadyExists if anything exists at path
//   - ErrUnsupportedFormat if the extension has no encoder
//   - ErrOutputNotWritable if the file cannot be created
func CheckOutput(path string) error {
	if _, err := os.Lstat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrOutputAlreadyExists, path)
	}

	if _, err := imaging.FormatFromFilename(path); err != nil {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", ErrOutputAlreadyExists, path)
		}
		return fmt.Errorf("%w: %s: %v", ErrOutputNotWritable, path, err)
	}
	f.Close()

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to remove scratch file: %w", err)
	}
	return nil
}
