// Package imaging provides the raster operations behind an assisted
// rotate-and-crop session: loading, pre-flight checks on the input and output
// paths, rotation about the raster center, circular and rectangular crops, and
// saving.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based and relative to the
// raster's bounds:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, the top-left corner is inclusive and the bottom-right
//     corner exclusive
//
// # Ownership
//
// Input rasters are never modified. Every crop and rotation returns a newly
// allocated raster that shares no pixel memory with its source.
//
// # Error Handling
//
// Failures are reported with sentinel errors wrapped with context:
//   - ErrInputNotFound, ErrOutputAlreadyExists, ErrOutputNotWritable and
//     ErrUnsupportedFormat from pre-flight, Load and Save
//   - ErrCropOutOfBounds and ErrEmptyCropRegion from the crop functions
//
// Test for them with errors.Is.
//
// # Output Safety
//
// CheckOutput and Save both create the output with O_EXCL, so an existing
// file is never truncated or replaced.
package imaging
