// Package vision declares the 2-D computer-vision primitives the rest of the
// module consumes: Canny edges, the probabilistic Hough line transform, the
// Hough circle transform, contour polygon approximation and affine warping.
//
// The primitives are treated as a trusted oracle. This package only fixes
// their input and output contracts; the OpenCV-backed implementation lives in
// the opencv subpackage so that packages depending on the contract can be
// built and tested without cgo.
package vision

import (
	"image"

	"github.com/ironsheep/artifact-crop/internal/geometry"
)

// Segment is a line segment reported by HoughLinesP, in the pixel space of the
// edge image it was detected on.
type Segment struct {
	X1, Y1, X2, Y2 int
}

// Circle is a circle reported by HoughCircles, in the pixel space of the
// image it was detected on.
type Circle struct {
	X, Y, Radius float64
}

// LineParams configures the probabilistic Hough line transform.
type LineParams struct {
	Rho           float64 // distance resolution in pixels
	Theta         float64 // angle resolution in radians
	Threshold     int     // accumulator votes required
	MinLineLength float64 // shortest segment reported
	MaxLineGap    float64 // largest gap bridged within one segment
}

// CircleParams configures the Hough gradient circle transform.
type CircleParams struct {
	DP        float64 // inverse accumulator resolution
	MinDist   float64 // minimum distance between detected centers
	Param1    float64 // upper Canny threshold used internally
	Param2    float64 // accumulator threshold for centers
	MinRadius int
	MaxRadius int
}

// Primitives is the contract for the external computer-vision library.
//
// Rasters passed in are not modified. Returned rasters are newly allocated and
// owned by the caller.
type Primitives interface {
	// Canny returns a binary edge map (0 or 255) of a grayscale image.
	Canny(src *image.Gray, low, high float64) (*image.Gray, error)

	// HoughLinesP detects line segments in a binary edge map.
	HoughLinesP(edges *image.Gray, params LineParams) ([]Segment, error)

	// HoughCircles detects circles in a grayscale image.
	HoughCircles(src *image.Gray, params CircleParams) ([]Circle, error)

	// ApproxPolygons extracts every contour of a binary image (full tree,
	// no chain approximation) and approximates each one as a closed polygon
	// with tolerance epsilonFraction times the contour perimeter.
	ApproxPolygons(binary *image.Gray, epsilonFraction float64) ([][]image.Point, error)

	// WarpAffine maps src through m onto a canvas of the given size using
	// bilinear sampling and a black constant border.
	WarpAffine(src image.Image, m geometry.Affine, size image.Point) (image.Image, error)
}
