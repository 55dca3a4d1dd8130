package geometry

import (
	"image"
	"math"
	"testing"
)

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestTransform_RoundTrip(t *testing.T) {
	tr := Transform{AnalysisToOriginal: 7.5, DisplayToOriginal: 2.25}

	tests := []struct {
		name  string
		space Space
		p     Point
		want  Point
	}{
		{"analysis", Analysis, Pt(10, 20), Pt(75, 150)},
		{"display", Display, Pt(100, 40), Pt(225, 90)},
		{"original", Original, Pt(3, 4), Pt(3, 4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tr.ToOriginal(tt.p, tt.space)
			if !approxEqual(got.X, tt.want.X, 1e-9) || !approxEqual(got.Y, tt.want.Y, 1e-9) {
				t.Errorf("ToOriginal: got %+v, want %+v", got, tt.want)
			}
			back := tr.FromOriginal(got, tt.space)
			if !approxEqual(back.X, tt.p.X, 1e-9) || !approxEqual(back.Y, tt.p.Y, 1e-9) {
				t.Errorf("FromOriginal: got %+v, want %+v", back, tt.p)
			}
		})
	}
}

func TestTransform_Convert(t *testing.T) {
	tr := Transform{AnalysisToOriginal: 4, DisplayToOriginal: 2}

	got := tr.Convert(Pt(10, 10), Analysis, Display)
	if got != Pt(20, 20) {
		t.Errorf("Convert analysis->display: got %+v, want (20,20)", got)
	}
	if got := tr.Convert(Pt(7, 3), Display, Display); got != Pt(7, 3) {
		t.Errorf("Convert within one space: got %+v", got)
	}
	if m := tr.Affine(Original, Display).Matrix(); !approxEqual(m[0][0], 0.5, 1e-12) || m[0][2] != 0 {
		t.Errorf("Affine original->display: got %v", m)
	}
	if l := tr.Length(5, Display, Analysis); l != 2.5 {
		t.Errorf("Length display->analysis: got %v, want 2.5", l)
	}
}

func TestTransform_ZeroValueIsIdentity(t *testing.T) {
	var tr Transform
	p := Pt(12.5, 3)
	if got := tr.ToOriginal(p, Analysis); got != p {
		t.Errorf("zero transform changed point: %+v", got)
	}
	if got := tr.ToOriginal(p, Display); got != p {
		t.Errorf("zero transform changed point: %+v", got)
	}
}

func TestAnalysisRatio(t *testing.T) {
	if r := AnalysisRatio(4000, 3000, 400); r != 7.5 {
		t.Errorf("AnalysisRatio: got %v, want 7.5", r)
	}
	size := ScaledSize(4000, 3000, 7.5)
	if size != (image.Point{X: 533, Y: 400}) {
		t.Errorf("ScaledSize: got %v, want (533,400)", size)
	}
}

func TestFitRatio(t *testing.T) {
	tests := []struct {
		name         string
		w, h, vw, vh int
		want         float64
	}{
		{"wide image", 4000, 1000, 1000, 1000, 4},
		{"tall image", 1000, 3000, 1000, 1000, 3},
		{"already fits", 500, 250, 1000, 1000, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FitRatio(tt.w, tt.h, tt.vw, tt.vh); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRotationAbout_MatchesOpenCVConvention(t *testing.T) {
	center := RasterCenter(101, 101)
	if center != Pt(50, 50) {
		t.Fatalf("RasterCenter: got %+v", center)
	}

	m := RotationAbout(center, 90)

	// The pivot stays put.
	c := m.Apply(center)
	if !approxEqual(c.X, 50, 1e-9) || !approxEqual(c.Y, 50, 1e-9) {
		t.Errorf("center moved to %+v", c)
	}

	// A point right of center maps above it (counter-clockwise on screen).
	p := m.Apply(Pt(60, 50))
	if !approxEqual(p.X, 50, 1e-9) || !approxEqual(p.Y, 40, 1e-9) {
		t.Errorf("(60,50) mapped to %+v, want (50,40)", p)
	}
}

func TestAffine_ThenComposesInOrder(t *testing.T) {
	scale := ScaleAffine(2)
	rot := RotationAbout(Pt(0, 0), 90)

	p := scale.Then(rot).Apply(Pt(1, 0))
	if !approxEqual(p.X, 0, 1e-9) || !approxEqual(p.Y, -2, 1e-9) {
		t.Errorf("scale then rotate: got %+v, want (0,-2)", p)
	}
}

func TestAffine_FullTurnIsIdentity(t *testing.T) {
	center := RasterCenter(64, 48)
	m := IdentityAffine()
	for i := 0; i < 4; i++ {
		m = m.Then(RotationAbout(center, 90))
	}
	if !m.IsIdentity(1e-9) {
		t.Errorf("four quarter turns not identity: %v", m.Matrix())
	}

	var zero Affine
	if !zero.IsIdentity(0) {
		t.Error("zero Affine should behave as identity")
	}
}
