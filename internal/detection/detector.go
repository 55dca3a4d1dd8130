package detection

import (
	"fmt"
	"image"
	"log/slog"
	"math"

	"github.com/ironsheep/artifact-crop/internal/geometry"
	"github.com/ironsheep/artifact-crop/internal/vision"
)

// LineParams configures the rotation-candidate pipeline.
type LineParams struct {
	// Viewport is the line-analysis resolution: the source is fitted inside
	// it before edge detection.
	Viewport image.Point

	BlurKernel int
	CannyLow   float64
	CannyHigh  float64
	Hough      vision.LineParams
}

// CircleParams configures the circle-candidate pipeline.
type CircleParams struct {
	AnalysisSize int
	Threshold    uint8
	Hough        vision.CircleParams
}

// RectParams configures the rectangle-candidate pipeline.
type RectParams struct {
	AnalysisSize    int
	Threshold       uint8
	EpsilonFraction float64
}

// Params groups the tuning for all three detectors.
type Params struct {
	Lines   LineParams
	Circles CircleParams
	Rects   RectParams
}

// DefaultParams returns the tuning used for photographed coin and die
// impressions.
func DefaultParams() Params {
	return Params{
		Lines: LineParams{
			Viewport:   image.Point{X: 1280, Y: 720},
			BlurKernel: 7,
			CannyLow:   50,
			CannyHigh:  150,
			Hough: vision.LineParams{
				Rho:           1,
				Theta:         math.Pi / 180,
				Threshold:     15,
				MinLineLength: 50,
				MaxLineGap:    20,
			},
		},
		Circles: CircleParams{
			AnalysisSize: 400,
			Threshold:    60,
			Hough: vision.CircleParams{
				DP:        1,
				MinDist:   20,
				Param1:    50,
				Param2:    30,
				MinRadius: 0,
				MaxRadius: 0, // AnalysisSize/2
			},
		},
		Rects: RectParams{
			AnalysisSize:    600,
			Threshold:       240,
			EpsilonFraction: 0.01,
		},
	}
}

// LineAnalysis is the result of the rotation-candidate pipeline.
type LineAnalysis struct {
	// Candidates is ranked by supported length, largest first.
	Candidates []RotationCandidate

	// Edges is the Canny edge map in analysis space, kept for the edge
	// overlay.
	Edges *image.Gray

	// Size is the analysis raster size.
	Size image.Point

	// Transform maps analysis space to original space.
	Transform geometry.Transform
}

// Detector runs the three candidate pipelines over a vision backend.
type Detector struct {
	prim   vision.Primitives
	params Params
	logger *slog.Logger
}

// NewDetector creates a detector. A nil logger falls back to slog.Default.
func NewDetector(prim vision.Primitives, params Params, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{prim: prim, params: params, logger: logger}
}

// Params returns the detector's tuning.
func (d *Detector) Params() Params {
	return d.params
}

// Lines proposes rotation angles for src.
//
// When no segment is found the returned analysis still carries the edge map,
// together with ErrNoRotationCandidates.
func (d *Detector) Lines(src image.Image) (*LineAnalysis, error) {
	p := d.params.Lines
	b := src.Bounds()
	ratio := geometry.FitRatio(b.Dx(), b.Dy(), p.Viewport.X, p.Viewport.Y)
	size := geometry.ScaledSize(b.Dx(), b.Dy(), ratio)

	gray := lineAnalysisImage(src, size, p.BlurKernel)
	edges, err := d.prim.Canny(gray, p.CannyLow, p.CannyHigh)
	if err != nil {
		return nil, fmt.Errorf("edge detection failed: %w", err)
	}

	raw, err := d.prim.HoughLinesP(edges, p.Hough)
	if err != nil {
		return nil, fmt.Errorf("line detection failed: %w", err)
	}

	analysis := &LineAnalysis{
		Edges:     edges,
		Size:      size,
		Transform: geometry.Transform{AnalysisToOriginal: ratio},
	}

	candidates, err := ClusterLines(segmentsFromVision(raw))
	if err != nil {
		d.logger.Info("no line segments detected", "width", size.X, "height", size.Y)
		return analysis, err
	}
	analysis.Candidates = candidates

	d.logger.Debug("line analysis complete",
		"segments", len(raw),
		"candidates", len(candidates),
		"top_angle", candidates[0].Angle)
	return analysis, nil
}

// Circles proposes circular crops for src, in src pixel space.
func (d *Detector) Circles(src image.Image) ([]CircleCandidate, error) {
	p := d.params.Circles
	b := src.Bounds()
	ratio := geometry.AnalysisRatio(b.Dx(), b.Dy(), p.AnalysisSize)
	size := geometry.ScaledSize(b.Dx(), b.Dy(), ratio)

	gray := circleAnalysisImage(src, size, p.Threshold)

	hough := p.Hough
	if hough.MaxRadius <= 0 {
		hough.MaxRadius = p.AnalysisSize / 2
	}
	raw, err := d.prim.HoughCircles(gray, hough)
	if err != nil {
		return nil, fmt.Errorf("circle detection failed: %w", err)
	}

	circles := FilterCircles(raw, p.AnalysisSize, ratio)
	d.logger.Debug("circle detection complete", "raw", len(raw), "kept", len(circles))
	if len(circles) == 0 {
		return nil, ErrNoShapeCandidates
	}
	return circles, nil
}

// Rectangles proposes axis-aligned rectangular crops for src, in src pixel
// space.
func (d *Detector) Rectangles(src image.Image) ([]RectCandidate, error) {
	p := d.params.Rects
	b := src.Bounds()
	ratio := geometry.AnalysisRatio(b.Dx(), b.Dy(), p.AnalysisSize)
	size := geometry.ScaledSize(b.Dx(), b.Dy(), ratio)

	binary := rectAnalysisImage(src, size, p.Threshold)
	polygons, err := d.prim.ApproxPolygons(binary, p.EpsilonFraction)
	if err != nil {
		return nil, fmt.Errorf("contour extraction failed: %w", err)
	}

	rects := RectsFromPolygons(polygons, ratio)
	d.logger.Debug("rectangle detection complete", "polygons", len(polygons), "kept", len(rects))
	if len(rects) == 0 {
		return nil, ErrNoShapeCandidates
	}
	return rects, nil
}
