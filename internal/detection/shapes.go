package detection

import (
	"errors"
	"fmt"
	"image"
	"sort"

	"github.com/ironsheep/artifact-crop/internal/vision"
)

// ErrNoShapeCandidates is returned when a shape detector finds nothing usable.
// Callers offer the whole-image rectangle instead of failing.
var ErrNoShapeCandidates = errors.New("no shape candidates detected")

// CircleCandidate is a proposed circular crop in original-image pixels.
type CircleCandidate struct {
	CenterX int `json:"center_x"`
	CenterY int `json:"center_y"`
	Radius  int `json:"radius"`
}

// String formats the candidate as "(x, y), r".
func (c CircleCandidate) String() string {
	return fmt.Sprintf("(%d, %d), %d", c.CenterX, c.CenterY, c.Radius)
}

// Center returns the center as an image point.
func (c CircleCandidate) Center() image.Point {
	return image.Point{X: c.CenterX, Y: c.CenterY}
}

// RectCandidate is a proposed axis-aligned rectangular crop in original-image
// pixels. Area is (MaxX-MinX)*(MaxY-MinY).
type RectCandidate struct {
	MinX int `json:"min_x"`
	MinY int `json:"min_y"`
	MaxX int `json:"max_x"`
	MaxY int `json:"max_y"`
	Area int `json:"area"`
}

// NewRectCandidate builds a candidate from two opposite corners in any order.
func NewRectCandidate(a, b image.Point) RectCandidate {
	r := RectCandidate{
		MinX: min(a.X, b.X),
		MinY: min(a.Y, b.Y),
		MaxX: max(a.X, b.X),
		MaxY: max(a.Y, b.Y),
	}
	r.Area = (r.MaxX - r.MinX) * (r.MaxY - r.MinY)
	return r
}

// WholeImage returns the rectangle covering all of bounds.
func WholeImage(bounds image.Rectangle) RectCandidate {
	return NewRectCandidate(image.Point{}, image.Point{X: bounds.Dx(), Y: bounds.Dy()})
}

// String formats the candidate as "(x1, y1) -> (x2, y2)".
func (r RectCandidate) String() string {
	return fmt.Sprintf("(%d, %d) -> (%d, %d)", r.MinX, r.MinY, r.MaxX, r.MaxY)
}

// Min returns the top-left corner.
func (r RectCandidate) Min() image.Point {
	return image.Point{X: r.MinX, Y: r.MinY}
}

// Max returns the bottom-right corner.
func (r RectCandidate) Max() image.Point {
	return image.Point{X: r.MaxX, Y: r.MaxY}
}

// FilterCircles keeps the circles lying strictly inside the
// analysisSize x analysisSize square, rescales them to original space by
// ratio (truncating), and sorts them by radius, largest first.
//
// The bounds test uses analysisSize on both axes even when the analysis image
// is longer than it is wide, so circles reaching past the square on the long
// axis are discarded.
func FilterCircles(raw []vision.Circle, analysisSize int, ratio float64) []CircleCandidate {
	size := float64(analysisSize)
	circles := make([]CircleCandidate, 0, len(raw))
	for _, c := range raw {
		if c.X-c.Radius > 0 &&
			c.Y-c.Radius > 0 &&
			c.X+c.Radius < size &&
			c.Y+c.Radius < size {
			circles = append(circles, CircleCandidate{
				CenterX: int(c.X * ratio),
				CenterY: int(c.Y * ratio),
				Radius:  int(c.Radius * ratio),
			})
		}
	}

	sort.SliceStable(circles, func(i, j int) bool {
		return circles[i].Radius > circles[j].Radius
	})
	return circles
}

// RectsFromPolygons keeps the four-vertex polygons, takes each one's
// axis-aligned bounding box, rescales the bounds to original space by ratio
// (truncating), and sorts the result by area, largest first.
func RectsFromPolygons(polygons [][]image.Point, ratio float64) []RectCandidate {
	rects := make([]RectCandidate, 0)
	for _, poly := range polygons {
		if len(poly) != 4 {
			continue
		}

		minX, minY := poly[0].X, poly[0].Y
		maxX, maxY := minX, minY
		for _, p := range poly[1:] {
			minX = min(minX, p.X)
			minY = min(minY, p.Y)
			maxX = max(maxX, p.X)
			maxY = max(maxY, p.Y)
		}

		r := RectCandidate{
			MinX: int(float64(minX) * ratio),
			MinY: int(float64(minY) * ratio),
			MaxX: int(float64(maxX) * ratio),
			MaxY: int(float64(maxY) * ratio),
		}
		r.Area = (r.MaxX - r.MinX) * (r.MaxY - r.MinY)
		rects = append(rects, r)
	}

	sort.SliceStable(rects, func(i, j int) bool {
		return rects[i].Area > rects[j].Area
	})
	return rects
}
