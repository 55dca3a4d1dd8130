package detection

import (
	"errors"
	"math"
	"testing"
)

// segmentAt creates a segment of the given length starting at (x, y) and
// pointing at deg degrees.
func segmentAt(x, y int, deg, length float64) LineSegment {
	rad := deg * math.Pi / 180
	return LineSegment{
		X1: x,
		Y1: y,
		X2: x + int(math.Round(length*math.Cos(rad))),
		Y2: y + int(math.Round(length*math.Sin(rad))),
	}
}

func TestLineSegment_AngleDegrees(t *testing.T) {
	tests := []struct {
		name string
		seg  LineSegment
		want int
	}{
		{"horizontal", LineSegment{0, 10, 100, 10}, 0},
		{"vertical down", LineSegment{5, 0, 5, 100}, 90},
		{"vertical up", LineSegment{5, 100, 5, 0}, 90},
		{"zero length", LineSegment{7, 7, 7, 7}, 90},
		{"diagonal", LineSegment{0, 0, 50, 50}, 45},
		{"anti-diagonal", LineSegment{0, 50, 50, 0}, -45},
		{"shallow", LineSegment{0, 0, 100, 10}, 6},
		{"steep", LineSegment{0, 0, 10, 100}, 84},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.seg.AngleDegrees(); got != tt.want {
				t.Errorf("AngleDegrees() = %d, want %d", got, tt.want)
			}
		})
	}
}

// Plain atan folds opposite directions onto the same slope. A segment and its
// reverse therefore always share a bin.
func TestLineSegment_AngleDegrees_OppositeDirectionsShareBin(t *testing.T) {
	pairs := [][2]LineSegment{
		{{0, 0, 10, 10}, {10, 10, 0, 0}},
		{{0, 10, 10, 0}, {10, 0, 0, 10}},
		{{0, 0, 100, 3}, {100, 3, 0, 0}},
	}

	for _, p := range pairs {
		a, b := p[0].AngleDegrees(), p[1].AngleDegrees()
		if a != b {
			t.Errorf("%v -> %d, reversed %v -> %d; expected the same bin", p[0], a, p[1], b)
		}
	}

	candidates, err := ClusterLines([]LineSegment{{0, 0, 10, 10}, {30, 30, 20, 20}})
	if err != nil {
		t.Fatalf("ClusterLines failed: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate for opposite directions, got %d", len(candidates))
	}
	if candidates[0].Angle != 45 {
		t.Errorf("expected angle 45, got %v", candidates[0].Angle)
	}
}

func TestLineSegment_Length(t *testing.T) {
	s := LineSegment{0, 0, 3, 4}
	if got := s.Length(); got != 5 {
		t.Errorf("Length() = %v, want 5", got)
	}
}

func TestClusterLines_SingleLineAtTheta(t *testing.T) {
	for _, theta := range []float64{-45, -30, -7, -0.4, 0, 2, 17, 33, 45} {
		seg := segmentAt(200, 200, theta, 150)
		candidates, err := ClusterLines([]LineSegment{seg})
		if err != nil {
			t.Fatalf("theta %v: ClusterLines failed: %v", theta, err)
		}
		if len(candidates) != 1 {
			t.Fatalf("theta %v: expected 1 candidate, got %d", theta, len(candidates))
		}
		top := candidates[0]
		if math.Abs(top.Angle-math.Round(theta)) > 1 {
			t.Errorf("theta %v: top angle %v not within 1 degree", theta, top.Angle)
		}
		if top.TotalLength <= 0 {
			t.Errorf("theta %v: expected positive total length, got %v", theta, top.TotalLength)
		}
	}
}

func TestClusterLines_RanksByTotalLength(t *testing.T) {
	segments := []LineSegment{
		{0, 0, 30, 0},  // 0°, 30
		{0, 0, 0, 20},  // 90°, 20
		{0, 5, 30, 5},  // 0°, 30
		{0, 0, 0, 100}, // 90°, 100
		{0, 0, 40, 40}, // 45°, ~56.6
	}

	candidates, err := ClusterLines(segments)
	if err != nil {
		t.Fatalf("ClusterLines failed: %v", err)
	}

	want := []float64{90, 0, 45}
	if len(candidates) != len(want) {
		t.Fatalf("expected %d candidates, got %d", len(want), len(candidates))
	}
	for i, angle := range want {
		if candidates[i].Angle != angle {
			t.Errorf("candidate %d: angle %v, want %v", i, candidates[i].Angle, angle)
		}
	}
	if candidates[0].TotalLength != 120 {
		t.Errorf("expected 90° total 120, got %v", candidates[0].TotalLength)
	}
	if len(candidates[1].Segments) != 2 {
		t.Errorf("expected 2 segments in 0° bin, got %d", len(candidates[1].Segments))
	}
}

func TestClusterLines_DuplicateTuplesCountedOnce(t *testing.T) {
	seg := LineSegment{10, 10, 110, 10}
	candidates, err := ClusterLines([]LineSegment{seg, seg, seg})
	if err != nil {
		t.Fatalf("ClusterLines failed: %v", err)
	}
	if len(candidates[0].Segments) != 1 {
		t.Errorf("expected duplicates dropped, got %d segments", len(candidates[0].Segments))
	}
	if candidates[0].TotalLength != 100 {
		t.Errorf("expected total 100, got %v", candidates[0].TotalLength)
	}
}

func TestClusterLines_TiesKeepFirstSeenOrder(t *testing.T) {
	horizontal := LineSegment{0, 0, 10, 0}
	vertical := LineSegment{0, 0, 0, 10}

	candidates, _ := ClusterLines([]LineSegment{horizontal, vertical})
	if candidates[0].Angle != 0 || candidates[1].Angle != 90 {
		t.Errorf("expected [0 90], got [%v %v]", candidates[0].Angle, candidates[1].Angle)
	}

	candidates, _ = ClusterLines([]LineSegment{vertical, horizontal})
	if candidates[0].Angle != 90 || candidates[1].Angle != 0 {
		t.Errorf("expected [90 0], got [%v %v]", candidates[0].Angle, candidates[1].Angle)
	}
}

func TestClusterLines_Empty(t *testing.T) {
	candidates, err := ClusterLines(nil)
	if !errors.Is(err, ErrNoRotationCandidates) {
		t.Errorf("expected ErrNoRotationCandidates, got %v", err)
	}
	if candidates != nil {
		t.Errorf("expected no candidates, got %v", candidates)
	}
}
