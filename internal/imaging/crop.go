package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// CropCircle extracts the disk of radius r centered on (cx, cy) into a new
// (2r+1) x (2r+1) raster. Pixels outside the disk are white.
//
// The disk is copied scanline by scanline. For each offset i in [0, r) the
// half-width is dx = floor(sqrt(r²-i²)); source row cy-i, columns
// [cx-dx, cx+dx), lands on destination row r-i, columns [r-dx, r+dx), and for
// i > 0 source row cy+i lands on destination row r+i. Only whole pixels are
// copied.
//
// Parameters:
//   - src: The source raster. Coordinates are relative to its bounds.
//   - cx, cy: Disk center in source pixels.
//   - r: Disk radius in pixels.
//
// # Errors
//
//   - ErrEmptyCropRegion if r < 1
//   - ErrCropOutOfBounds if any scanline run falls outside src; nothing is
//     copied in that case
func CropCircle(src image.Image, cx, cy, r int) (*image.NRGBA, error) {
	if r < 1 {
		return nil, fmt.Errorf("%w: radius %d", ErrEmptyCropRegion, r)
	}

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	// The widest run is the center row; the outermost rows are cy±(r-1).
	if cx-r < 0 || cx+r > w || cy-(r-1) < 0 || cy+(r-1) >= h {
		return nil, fmt.Errorf("%w: circle (%d, %d) r=%d in %dx%d image",
			ErrCropOutOfBounds, cx, cy, r, w, h)
	}

	size := 2*r + 1
	dst := imaging.New(size, size, color.White)
	for i := 0; i < r; i++ {
		dx := int(math.Floor(math.Sqrt(float64(r*r - i*i))))
		copyRun(dst, src, r-dx, r-i, cx-dx, cy-i, 2*dx)
		if i > 0 {
			copyRun(dst, src, r-dx, r+i, cx-dx, cy+i, 2*dx)
		}
	}
	return dst, nil
}

// copyRun copies n pixels of src row sy starting at column sx to dst row dy
// starting at column dx. Source coordinates are relative to src's bounds.
func copyRun(dst draw.Image, src image.Image, dx, dy, sx, sy, n int) {
	if n <= 0 {
		return
	}
	origin := src.Bounds().Min
	sr := image.Rect(sx, sy, sx+n, sy+1).Add(origin)
	draw.Copy(dst, image.Pt(dx, dy), src, sr, draw.Src, nil)
}

// CropRect extracts the axis-aligned rectangle spanned by two opposite corners
// into a new raster. The corners may be given in any order; the region covers
// [min, max) on both axes.
//
// # Errors
//
//   - ErrEmptyCropRegion if the normalized width or height is not positive
//   - ErrCropOutOfBounds if the region reaches outside src
func CropRect(src image.Image, a, b image.Point) (*image.NRGBA, error) {
	region := image.Rect(a.X, a.Y, b.X, b.Y) // image.Rect normalizes
	if region.Dx() <= 0 || region.Dy() <= 0 {
		return nil, fmt.Errorf("%w: (%d, %d) -> (%d, %d)", ErrEmptyCropRegion, a.X, a.Y, b.X, b.Y)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if region.Min.X < 0 || region.Min.Y < 0 || region.Max.X > w || region.Max.Y > h {
		return nil, fmt.Errorf("%w: region (%d,%d)-(%d,%d) in %dx%d image",
			ErrCropOutOfBounds, region.Min.X, region.Min.Y, region.Max.X, region.Max.Y, w, h)
	}

	return imaging.Crop(src, region.Add(bounds.Min)), nil
}
