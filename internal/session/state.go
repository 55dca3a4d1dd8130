package session

import (
	"fmt"
	"image"

	"github.com/ironsheep/artifact-crop/internal/detection"
	"github.com/ironsheep/artifact-crop/internal/geometry"
)

// Phase is a step of the rotate-crop-save workflow.
type Phase int

const (
	PhaseLoad Phase = iota
	PhaseRotate
	PhaseCrop
	PhaseSave
	PhaseDone
	PhaseCancelled
)

func (p Phase) String() string {
	switch p {
	case PhaseLoad:
		return "load"
	case PhaseRotate:
		return "rotate"
	case PhaseCrop:
		return "crop"
	case PhaseSave:
		return "save"
	case PhaseDone:
		return "done"
	case PhaseCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Phase) UnmarshalText(text []byte) error {
	for ph := PhaseLoad; ph <= PhaseCancelled; ph++ {
		if ph.String() == string(text) {
			*p = ph
			return nil
		}
	}
	return fmt.Errorf("unknown phase: %q", text)
}

// Terminal reports whether no further command can change the session.
func (p Phase) Terminal() bool {
	return p == PhaseDone || p == PhaseCancelled
}

// Selection is the active crop region: exactly one of CircleSelection,
// RectSelection or FreeformSelection.
type Selection interface {
	Mode() CropMode
}

// CircleSelection points at a circle candidate.
type CircleSelection struct {
	Index int
}

// RectSelection points at a rectangle candidate.
type RectSelection struct {
	Index int
}

// FreeformSelection is an operator-drawn rectangle in display space. The
// corners are normalized only when the crop is committed.
type FreeformSelection struct {
	Corner1  geometry.Point
	Corner2  geometry.Point
	Dragging bool
}

func (CircleSelection) Mode() CropMode { return ModeCircle }
func (RectSelection) Mode() CropMode { return ModeRectangle }
func (FreeformSelection) Mode() CropMode { return ModeFreeform }

// Overlays holds the preview toggles.
type Overlays struct {
	Edges bool `json:"edges"`
	Lines bool `json:"lines"`
	Grid  bool `json:"grid"`
}

// Toggle flips the named overlay. It reports false for an unknown kind.
func (o Overlays) Toggle(kind OverlayKind) (Overlays, bool) {
	switch kind {
	case OverlayEdges:
		o.Edges = !o.Edges
	case OverlayLines:
		o.Lines = !o.Lines
	case OverlayGrid:
		o.Grid = !o.Grid
	default:
		return o, false
	}
	return o, true
}

// State is a snapshot of one session. It is a value: Controller.Apply returns
// a new State and never modifies the one it was given. Rasters referenced by
// a State are shared between snapshots and must not be written to.
type State struct {
	Phase Phase

	// Source is the decoded input, never modified.
	Source image.Image

	// Rotated is Source rotated by the angle RotationKey names. It is nil
	// until the first rotation commit.
	Rotated     image.Image
	RotationKey string

	// Lines is the rotation-candidate analysis of Source.
	Lines  *detection.LineAnalysis
	Angles Cursor[detection.RotationCandidate]

	// Circles and Rects are candidates on Rotated, in Rotated pixel space.
	Circles Cursor[detection.CircleCandidate]
	Rects   Cursor[detection.RectCandidate]

	Mode      CropMode
	Selection Selection
	Overlays  Overlays

	// Final is the committed crop, an independent raster.
	Final image.Image

	// Revision increases with every applied command. Renderers use it to
	// invalidate cached previews.
	Revision uint64

	// Viewport is the display area previews are fitted into.
	Viewport image.Point
}

// SelectedAngle returns the selected rotation candidate's angle, or 0 when
// there is none.
func (s State) SelectedAngle() float64 {
	c, ok := s.Angles.Current()
	if !ok {
		return 0
	}
	return c.Angle
}

// SelectedCircle returns the circle under the active selection.
func (s State) SelectedCircle() (detection.CircleCandidate, bool) {
	sel, ok := s.Selection.(CircleSelection)
	if !ok || sel.Index < 0 || sel.Index >= s.Circles.Len() {
		return detection.CircleCandidate{}, false
	}
	return s.Circles.Items()[sel.Index], true
}

// SelectedRect returns the rectangle under the active selection.
func (s State) SelectedRect() (detection.RectCandidate, bool) {
	sel, ok := s.Selection.(RectSelection)
	if !ok || sel.Index < 0 || sel.Index >= s.Rects.Len() {
		return detection.RectCandidate{}, false
	}
	return s.Rects.Items()[sel.Index], true
}

// DisplayImage returns the raster the current phase previews.
func (s State) DisplayImage() image.Image {
	switch s.Phase {
	case PhaseCrop:
		return s.Rotated
	case PhaseSave, PhaseDone:
		if s.Final != nil {
			return s.Final
		}
	}
	return s.Source
}

// DisplayTransform maps between the current phase's display space and the
// pixel space of DisplayImage.
//
// In the rotate phase the display is the line-analysis raster, so analysis
// and display space coincide.
func (s State) DisplayTransform() geometry.Transform {
	if s.Phase == PhaseRotate && s.Lines != nil {
		r := s.Lines.Transform.AnalysisToOriginal
		return geometry.Transform{AnalysisToOriginal: r, DisplayToOriginal: r}
	}
	img := s.DisplayImage()
	if img == nil {
		return geometry.Identity()
	}
	b := img.Bounds()
	return geometry.Transform{
		AnalysisToOriginal: 1,
		DisplayToOriginal:  geometry.FitRatio(b.Dx(), b.Dy(), s.Viewport.X, s.Viewport.Y),
	}
}

// AngleLabel formats a rotation candidate for a list.
func AngleLabel(c detection.RotationCandidate) string {
	return fmt.Sprintf("%0.2f°", c.Angle)
}

// Labels returns the list entries of the phase's active candidate list and
// the selected position.
func (s State) Labels() ([]string, int) {
	switch s.Phase {
	case PhaseRotate:
		labels := make([]string, 0, s.Angles.Len())
		for _, c := range s.Angles.Items() {
			labels = append(labels, AngleLabel(c))
		}
		return labels, s.Angles.Index()
	case PhaseCrop:
		switch s.Mode {
		case ModeCircle:
			labels := make([]string, 0, s.Circles.Len())
			for _, c := range s.Circles.Items() {
				labels = append(labels, c.String())
			}
			return labels, s.Circles.Index()
		case ModeRectangle:
			labels := make([]string, 0, s.Rects.Len())
			for _, r := range s.Rects.Items() {
				labels = append(labels, r.String())
			}
			return labels, s.Rects.Index()
		}
	}
	return nil, 0
}
