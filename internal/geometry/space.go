// Package geometry provides the coordinate spaces and transforms shared by the
// detection, cropping and rendering packages.
//
// Three pixel spaces are in play:
//
//   - Original: the full-resolution source raster. Every candidate that lives
//     longer than a single detection or render pass is stored here.
//   - Analysis: a reduced resolution at which the expensive detection
//     primitives run.
//   - Display: the resolution a preview is rendered at to fit the viewport.
//
// Analysis and display values are ephemeral: they are derived from original
// space for a detection or a render and then thrown away.
package geometry

import (
	"fmt"
	"image"
	"math"
)

// Space identifies one of the three pixel coordinate spaces.
type Space int

const (
	Original Space = iota
	Analysis
	Display
)

func (s Space) String() string {
	switch s {
	case Original:
		return "original"
	case Analysis:
		return "analysis"
	case Display:
		return "display"
	default:
		return fmt.Sprintf("space(%d)", int(s))
	}
}

// Point is a 2D coordinate with floating-point components.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// FromImagePoint converts an integer image point.
func FromImagePoint(p image.Point) Point {
	return Point{X: float64(p.X), Y: float64(p.Y)}
}

// Trunc converts to an integer image point by truncating toward zero.
func (p Point) Trunc() image.Point {
	return image.Point{X: int(p.X), Y: int(p.Y)}
}

// Transform holds the two independent ratios that map analysis and display
// coordinates back to original coordinates:
//
//	original = analysis * AnalysisToOriginal
//	original = display  * DisplayToOriginal
//
// A zero ratio is treated as 1 so the zero Transform is the identity.
type Transform struct {
	AnalysisToOriginal float64 `json:"analysis_to_original"`
	DisplayToOriginal  float64 `json:"display_to_original"`
}

// Identity returns a transform where all three spaces coincide.
func Identity() Transform {
	return Transform{AnalysisToOriginal: 1, DisplayToOriginal: 1}
}

// Ratio returns the factor that takes a value in space s to original space.
func (t Transform) Ratio(s Space) float64 {
	var r float64
	switch s {
	case Analysis:
		r = t.AnalysisToOriginal
	case Display:
		r = t.DisplayToOriginal
	default:
		return 1
	}
	if r == 0 {
		return 1
	}
	return r
}

// Affine returns the scale that maps points from one space to another,
// passing through original space.
func (t Transform) Affine(from, to Space) Affine {
	if from == to {
		return IdentityAffine()
	}
	return ScaleAffine(t.Ratio(from)).Then(ScaleAffine(1 / t.Ratio(to)))
}

// ToOriginal maps a point from space s into original space.
func (t Transform) ToOriginal(p Point, from Space) Point {
	return t.Convert(p, from, Original)
}

// FromOriginal maps an original-space point into space s.
func (t Transform) FromOriginal(p Point, to Space) Point {
	return t.Convert(p, Original, to)
}

// Convert maps a point between any two spaces.
func (t Transform) Convert(p Point, from, to Space) Point {
	return t.Affine(from, to).Apply(p)
}

// Length maps a scalar length (radius, stroke, offset) between spaces.
func (t Transform) Length(v float64, from, to Space) float64 {
	if from == to {
		return v
	}
	return v * t.Ratio(from) / t.Ratio(to)
}

// AnalysisRatio returns the ratio that shrinks a width x height raster so its
// shorter side equals analysisSize.
func AnalysisRatio(width, height, analysisSize int) float64 {
	if analysisSize <= 0 {
		return 1
	}
	return float64(min(width, height)) / float64(analysisSize)
}

// FitRatio returns the ratio that shrinks a width x height raster until it fits
// inside a maxWidth x maxHeight viewport while keeping its aspect. The larger
// of the two per-axis ratios wins.
func FitRatio(width, height, maxWidth, maxHeight int) float64 {
	if maxWidth <= 0 || maxHeight <= 0 {
		return 1
	}
	return math.Max(float64(width)/float64(maxWidth), float64(height)/float64(maxHeight))
}

// ScaledSize returns the dimensions of a width x height raster divided by
// ratio, truncated, never smaller than 1x1.
func ScaledSize(width, height int, ratio float64) image.Point {
	if ratio <= 0 {
		ratio = 1
	}
	w := int(float64(width) / ratio)
	h := int(float64(height) / ratio)
	return image.Point{X: max(w, 1), Y: max(h, 1)}
}
