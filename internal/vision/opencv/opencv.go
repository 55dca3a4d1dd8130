// Package opencv implements vision.Primitives on top of OpenCV via gocv.
package opencv

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/ironsheep/artifact-crop/internal/geometry"
	"github.com/ironsheep/artifact-crop/internal/vision"

	"gocv.io/x/gocv"
)

// Primitives is the gocv-backed vision.Primitives. It holds no state and is
// safe to share.
type Primitives struct{}

var _ vision.Primitives = (*Primitives)(nil)

// New returns the OpenCV primitives.
func New() *Primitives {
	return &Primitives{}
}

// Canny runs cv::Canny on a grayscale image.
func (p *Primitives) Canny(src *image.Gray, low, high float64) (*image.Gray, error) {
	m, err := grayToMat(src)
	if err != nil {
		return nil, err
	}
	defer m.Close()

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(m, &edges, float32(low), float32(high))

	return matToGray(edges)
}

// HoughLinesP runs cv::HoughLinesP on an edge map.
func (p *Primitives) HoughLinesP(edges *image.Gray, params vision.LineParams) ([]vision.Segment, error) {
	m, err := grayToMat(edges)
	if err != nil {
		return nil, err
	}
	defer m.Close()

	lines := gocv.NewMat()
	defer lines.Close()
	gocv.HoughLinesPWithParams(m, &lines, float32(params.Rho), float32(params.Theta),
		params.Threshold, float32(params.MinLineLength), float32(params.MaxLineGap))

	if lines.Empty() {
		return nil, nil
	}

	segments := make([]vision.Segment, 0, lines.Rows())
	for i := 0; i < lines.Rows(); i++ {
		v := lines.GetVeciAt(i, 0)
		segments = append(segments, vision.Segment{
			X1: int(v[0]),
			Y1: int(v[1]),
			X2: int(v[2]),
			Y2: int(v[3]),
		})
	}
	return segments, nil
}

// HoughCircles runs cv::HoughCircles with the gradient method.
func (p *Primitives) HoughCircles(src *image.Gray, params vision.CircleParams) ([]vision.Circle, error) {
	m, err := grayToMat(src)
	if err != nil {
		return nil, err
	}
	defer m.Close()

	circles := gocv.NewMat()
	defer circles.Close()
	gocv.HoughCirclesWithParams(m, &circles, gocv.HoughGradient, params.DP, params.MinDist,
		params.Param1, params.Param2, params.MinRadius, params.MaxRadius)

	if circles.Empty() || circles.Cols() == 0 {
		return nil, nil
	}

	found := make([]vision.Circle, 0, circles.Cols())
	for i := 0; i < circles.Cols(); i++ {
		found = append(found, vision.Circle{
			X:      float64(circles.GetFloatAt(0, i*3)),
			Y:      float64(circles.GetFloatAt(0, i*3+1)),
			Radius: float64(circles.GetFloatAt(0, i*3+2)),
		})
	}
	return found, nil
}

// ApproxPolygons finds every contour in a binary image and approximates each
// one with cv::approxPolyDP.
func (p *Primitives) ApproxPolygons(binary *image.Gray, epsilonFraction float64) ([][]image.Point, error) {
	m, err := grayToMat(binary)
	if err != nil {
		return nil, err
	}
	defer m.Close()

	contours := gocv.FindContours(m, gocv.RetrievalTree, gocv.ChainApproxNone)
	defer contours.Close()

	polygons := make([][]image.Point, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)
		epsilon := epsilonFraction * gocv.ArcLength(contour, true)
		approx := gocv.ApproxPolyDP(contour, epsilon, true)
		polygons = append(polygons, approx.ToPoints())
		approx.Close()
	}
	return polygons, nil
}

// WarpAffine runs cv::warpAffine with bilinear interpolation and a black
// constant border.
func (p *Primitives) WarpAffine(src image.Image, m geometry.Affine, size image.Point) (image.Image, error) {
	in, err := gocv.ImageToMatRGB(src)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image to mat: %w", err)
	}
	defer in.Close()

	coeffs := m.Matrix()
	transform := gocv.NewMatWithSize(2, 3, gocv.MatTypeCV64F)
	defer transform.Close()
	for row := 0; row < 2; row++ {
		for col := 0; col < 3; col++ {
			transform.SetDoubleAt(row, col, coeffs[row][col])
		}
	}

	out := gocv.NewMat()
	defer out.Close()
	gocv.WarpAffine(in, &out, transform, size)

	img, err := out.ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to convert warped mat to image: %w", err)
	}
	return img, nil
}

// grayToMat copies a grayscale image into a single-channel Mat. The input is
// repacked first when its rows are not contiguous or it does not start at the
// origin.
func grayToMat(img *image.Gray) (gocv.Mat, error) {
	if img == nil {
		return gocv.NewMat(), fmt.Errorf("nil image")
	}
	b := img.Bounds()
	if b.Min != (image.Point{}) || img.Stride != b.Dx() {
		packed := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(packed, packed.Bounds(), img, b.Min, draw.Src)
		img = packed
	}
	m, err := gocv.ImageGrayToMatGray(img)
	if err != nil {
		return m, fmt.Errorf("failed to convert gray image to mat: %w", err)
	}
	return m, nil
}

func matToGray(m gocv.Mat) (*image.Gray, error) {
	img, err := m.ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to convert mat to image: %w", err)
	}
	if g, ok := img.(*image.Gray); ok {
		return g, nil
	}
	b := img.Bounds()
	g := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(g, g.Bounds(), img, b.Min, draw.Src)
	return g, nil
}
