package imaging

import "errors"

var (
	// ErrInputNotFound is returned when the input path does not name a
	// readable regular file.
	ErrInputNotFound = errors.New("input image not found")

	// ErrOutputAlreadyExists is returned when the output path is already
	// taken. Existing files are never overwritten.
	ErrOutputAlreadyExists = errors.New("output file already exists")

	// ErrOutputNotWritable is returned when the output path cannot be
	// created.
	ErrOutputNotWritable = errors.New("output file is not writable")

	// ErrUnsupportedFormat is returned when the output extension does not map
	// to a known encoder.
	ErrUnsupportedFormat = errors.New("unsupported image format")

	// ErrCropOutOfBounds is returned when a crop region reaches outside the
	// source raster.
	ErrCropOutOfBounds = errors.New("crop region outside image bounds")

	// ErrEmptyCropRegion is returned when a crop region has no pixels.
	ErrEmptyCropRegion = errors.New("crop region is empty")
)
