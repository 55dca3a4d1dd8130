package detection

import (
	"errors"
	"math"
	"sort"

	"github.com/ironsheep/artifact-crop/internal/vision"
)

// ErrNoRotationCandidates is returned when line detection finds no segments.
// Callers offer a 0° identity candidate instead of failing.
var ErrNoRotationCandidates = errors.New("no rotation candidates: no line segments detected")

// LineSegment is a detected straight edge in analysis-space pixel coordinates.
// Segments compare equal when all four coordinates match.
type LineSegment struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Length returns the Euclidean length of the segment.
func (s LineSegment) Length() float64 {
	dx := float64(s.X2 - s.X1)
	dy := float64(s.Y2 - s.Y1)
	return math.Sqrt(dx*dx + dy*dy)
}

// AngleDegrees returns the segment's binning angle.
//
// A vertical segment (dx == 0) is exactly 90. Otherwise the angle is
// atan(dy/dx) in degrees rounded half to even. Plain atan is used rather than
// atan2, so segments whose dx and dy both flip sign land in the same bin: the
// angle describes the line's slope, not its direction.
func (s LineSegment) AngleDegrees() int {
	dx := s.X2 - s.X1
	dy := s.Y2 - s.Y1
	if dx == 0 {
		return 90
	}
	deg := math.Atan(float64(dy)/float64(dx)) * 180 / math.Pi
	return int(math.RoundToEven(deg))
}

// AngleBin accumulates the unique segments sharing one rounded angle.
type AngleBin struct {
	Angle       int
	Segments    []LineSegment
	TotalLength float64

	seen map[LineSegment]struct{}
}

// add inserts a segment unless the same coordinate tuple is already present.
// It reports whether the segment was new.
func (b *AngleBin) add(s LineSegment) bool {
	if b.seen == nil {
		b.seen = make(map[LineSegment]struct{})
	}
	if _, dup := b.seen[s]; dup {
		return false
	}
	b.seen[s] = struct{}{}
	b.Segments = append(b.Segments, s)
	b.TotalLength += s.Length()
	return true
}

// RotationCandidate is a proposed rotation angle ranked by the total length of
// the edges supporting it.
//
// Angle may be edited by the operator after ranking; TotalLength and Segments
// keep describing the original detection.
type RotationCandidate struct {
	Angle       float64       `json:"angle"`
	TotalLength float64       `json:"total_length"`
	Segments    []LineSegment `json:"segments"`
}

// ClusterLines groups segments by rounded angle and returns one candidate per
// angle, sorted by total supported length, largest first. Equal totals keep the
// order in which their angles were first seen.
//
// Returns ErrNoRotationCandidates when segments is empty.
func ClusterLines(segments []LineSegment) ([]RotationCandidate, error) {
	if len(segments) == 0 {
		return nil, ErrNoRotationCandidates
	}

	bins := make(map[int]*AngleBin)
	order := make([]int, 0)
	for _, s := range segments {
		angle := s.AngleDegrees()
		bin, ok := bins[angle]
		if !ok {
			bin = &AngleBin{Angle: angle}
			bins[angle] = bin
			order = append(order, angle)
		}
		bin.add(s)
	}

	candidates := make([]RotationCandidate, 0, len(order))
	for _, angle := range order {
		bin := bins[angle]
		candidates = append(candidates, RotationCandidate{
			Angle:       float64(bin.Angle),
			TotalLength: bin.TotalLength,
			Segments:    bin.Segments,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].TotalLength > candidates[j].TotalLength
	})

	return candidates, nil
}

// segmentsFromVision converts primitive output into LineSegments.
func segmentsFromVision(raw []vision.Segment) []LineSegment {
	segments := make([]LineSegment, 0, len(raw))
	for _, r := range raw {
		segments = append(segments, LineSegment{X1: r.X1, Y1: r.Y1, X2: r.X2, Y2: r.Y2})
	}
	return segments
}
