package opencv

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/ironsheep/artifact-crop/internal/geometry"
	"github.com/ironsheep/artifact-crop/internal/vision"
)

// createGray returns a black w x h grayscale image.
func createGray(w, h int) *image.Gray {
	return image.NewGray(image.Rect(0, 0, w, h))
}

func fillRect(img *image.Gray, r image.Rectangle) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}
}

func fillDisk(img *image.Gray, cx, cy, r int) {
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r*r {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
}

func TestCanny(t *testing.T) {
	src := createGray(60, 60)
	fillRect(src, image.Rect(20, 20, 40, 40))

	edges, err := New().Canny(src, 50, 150)
	if err != nil {
		t.Fatalf("Canny failed: %v", err)
	}
	if edges.Bounds().Size() != src.Bounds().Size() {
		t.Fatalf("size: got %v, want %v", edges.Bounds().Size(), src.Bounds().Size())
	}

	var onEdge, interior int
	for y := 0; y < 60; y++ {
		for x := 0; x < 60; x++ {
			v := edges.GrayAt(x, y).Y
			if v != 0 && v != 255 {
				t.Fatalf("edge map should be binary, got %d at (%d,%d)", v, x, y)
			}
			if v == 0 {
				continue
			}
			if x > 22 && x < 37 && y > 22 && y < 37 {
				interior++
			} else {
				onEdge++
			}
		}
	}
	if onEdge == 0 {
		t.Error("expected edge pixels around the square")
	}
	if interior != 0 {
		t.Errorf("expected no edges inside the square, got %d", interior)
	}
}

func TestCanny_NilImage(t *testing.T) {
	if _, err := New().Canny(nil, 50, 150); err == nil {
		t.Error("Canny should fail for a nil image")
	}
}

func TestHoughLinesP_Horizontal(t *testing.T) {
	edges := createGray(200, 100)
	fillRect(edges, image.Rect(20, 50, 180, 51))

	segments, err := New().HoughLinesP(edges, vision.LineParams{
		Rho:           1,
		Theta:         math.Pi / 180,
		Threshold:     50,
		MinLineLength: 50,
		MaxLineGap:    5,
	})
	if err != nil {
		t.Fatalf("HoughLinesP failed: %v", err)
	}
	if len(segments) == 0 {
		t.Fatal("expected at least one segment")
	}
	for _, s := range segments {
		if s.Y1 != 50 || s.Y2 != 50 {
			t.Errorf("segment should lie on y=50, got %+v", s)
		}
	}
}

func TestHoughLinesP_Empty(t *testing.T) {
	segments, err := New().HoughLinesP(createGray(50, 50), vision.LineParams{
		Rho: 1, Theta: math.Pi / 180, Threshold: 10, MinLineLength: 10, MaxLineGap: 1,
	})
	if err != nil {
		t.Fatalf("HoughLinesP failed: %v", err)
	}
	if len(segments) != 0 {
		t.Errorf("expected no segments, got %d", len(segments))
	}
}

func TestHoughCircles_Disk(t *testing.T) {
	src := createGray(200, 200)
	fillDisk(src, 100, 90, 40)

	circles, err := New().HoughCircles(src, vision.CircleParams{
		DP:        1,
		MinDist:   50,
		Param1:    100,
		Param2:    20,
		MinRadius: 20,
		MaxRadius: 60,
	})
	if err != nil {
		t.Fatalf("HoughCircles failed: %v", err)
	}
	if len(circles) == 0 {
		t.Fatal("expected the disk to be detected")
	}

	c := circles[0]
	if math.Abs(c.X-100) > 2 || math.Abs(c.Y-90) > 2 || math.Abs(c.Radius-40) > 2 {
		t.Errorf("circle: got %+v, want about (100, 90) r=40", c)
	}
}

func TestApproxPolygons_Rectangle(t *testing.T) {
	binary := createGray(120, 100)
	fillRect(binary, image.Rect(20, 30, 90, 70))

	polygons, err := New().ApproxPolygons(binary, 0.02)
	if err != nil {
		t.Fatalf("ApproxPolygons failed: %v", err)
	}
	if len(polygons) != 1 {
		t.Fatalf("expected one polygon, got %d", len(polygons))
	}
	if len(polygons[0]) != 4 {
		t.Fatalf("expected 4 vertices, got %v", polygons[0])
	}
	for _, p := range polygons[0] {
		if (p.X != 20 && p.X != 89) || (p.Y != 30 && p.Y != 69) {
			t.Errorf("unexpected vertex %v", p)
		}
	}
}

func TestWarpAffine(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 40, 30))
	src.Set(10, 5, color.RGBA{255, 0, 0, 255})

	tests := []struct {
		name string
		m    geometry.Affine
		size image.Point
		at   image.Point
	}{
		{"identity", geometry.IdentityAffine(), image.Pt(40, 30), image.Pt(10, 5)},
		{"translate", geometry.NewAffine(1, 0, 3, 0, 1, 4), image.Pt(40, 30), image.Pt(13, 9)},
		{"larger canvas", geometry.NewAffine(1, 0, 20, 0, 1, 20), image.Pt(80, 70), image.Pt(30, 25)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := New().WarpAffine(src, tt.m, tt.size)
			if err != nil {
				t.Fatalf("WarpAffine failed: %v", err)
			}
			if out.Bounds().Size() != tt.size {
				t.Fatalf("size: got %v, want %v", out.Bounds().Size(), tt.size)
			}
			r, g, b, _ := out.At(tt.at.X, tt.at.Y).RGBA()
			if r>>8 < 250 || g>>8 > 5 || b>>8 > 5 {
				t.Errorf("pixel at %v: got (%d,%d,%d), want red", tt.at, r>>8, g>>8, b>>8)
			}
			r, g, b, _ = out.At(0, 0).RGBA()
			if r != 0 || g != 0 || b != 0 {
				t.Errorf("border should be black, got (%d,%d,%d)", r>>8, g>>8, b>>8)
			}
		})
	}
}

func TestGrayToMat_SubImage(t *testing.T) {
	parent := createGray(50, 50)
	parent.SetGray(12, 13, color.Gray{Y: 200})
	sub := parent.SubImage(image.Rect(10, 10, 30, 30)).(*image.Gray)

	m, err := grayToMat(sub)
	if err != nil {
		t.Fatalf("grayToMat failed: %v", err)
	}
	defer m.Close()

	if m.Cols() != 20 || m.Rows() != 20 {
		t.Fatalf("size: got %dx%d, want 20x20", m.Cols(), m.Rows())
	}
	if v := m.GetUCharAt(3, 2); v != 200 {
		t.Errorf("pixel (2,3): got %d, want 200", v)
	}
}
