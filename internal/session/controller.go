package session

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/ironsheep/artifact-crop/internal/detection"
	"github.com/ironsheep/artifact-crop/internal/geometry"
	"github.com/ironsheep/artifact-crop/internal/imaging"
)

var (
	// ErrSessionCancelled is returned by Cancel and by any command applied
	// to a cancelled session. Drivers treat it as a clean exit.
	ErrSessionCancelled = errors.New("session cancelled")

	// ErrCommandNotAllowed is returned for a command the current phase does
	// not accept.
	ErrCommandNotAllowed = errors.New("command not allowed in this phase")

	// ErrInvalidIndex is returned by Select for an index outside the active
	// list.
	ErrInvalidIndex = errors.New("candidate index out of range")
)

// Detector proposes rotation and crop candidates. *detection.Detector
// satisfies it.
type Detector interface {
	Lines(src image.Image) (*detection.LineAnalysis, error)
	Circles(src image.Image) ([]detection.CircleCandidate, error)
	Rectangles(src image.Image) ([]detection.RectCandidate, error)
}

// Options configures a Controller.
type Options struct {
	// Viewport is the display area previews and pointer input refer to.
	Viewport image.Point

	// InitialMode is the crop mode offered after the first rotation.
	InitialMode CropMode

	// OutputPath is where Save writes the final image.
	OutputPath string

	// CacheSize bounds how many rotated rasters are kept.
	CacheSize int
}

// Controller applies commands to session states. It holds no per-session
// state of its own apart from the rotation cache, which only ever holds
// rasters derived from the current source.
type Controller struct {
	detector Detector
	warper   imaging.Warper
	cache    *imaging.RotationCache
	opts     Options
	logger   *slog.Logger
}

// NewController creates a controller. A nil logger falls back to
// slog.Default.
func NewController(detector Detector, warper imaging.Warper, opts Options, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		detector: detector,
		warper:   warper,
		cache:    imaging.NewRotationCache(opts.CacheSize),
		opts:     opts,
		logger:   logger,
	}
}

// Start runs line analysis on src and returns the first rotate-phase state.
// When no line is found a single 0° candidate is offered.
func (c *Controller) Start(src image.Image) (State, error) {
	c.cache.Clear()

	analysis, err := c.detector.Lines(src)
	if err != nil && !errors.Is(err, detection.ErrNoRotationCandidates) {
		return State{}, fmt.Errorf("failed to analyse lines: %w", err)
	}

	if analysis == nil {
		analysis = &detection.LineAnalysis{Transform: geometry.Identity()}
	}
	candidates := analysis.Candidates
	if len(candidates) == 0 {
		c.logger.Info("no rotation candidates, offering 0°")
		candidates = []detection.RotationCandidate{{Angle: 0}}
	}

	s := State{
		Phase:    PhaseRotate,
		Source:   src,
		Lines:    analysis,
		Angles:   NewCursor(candidates),
		Mode:     c.opts.InitialMode,
		Overlays: Overlays{Lines: true, Grid: true},
		Revision: 1,
		Viewport: c.opts.Viewport,
	}

	c.logger.Info("session started",
		"width", src.Bounds().Dx(),
		"height", src.Bounds().Dy(),
		"candidates", len(candidates),
		"top_angle", candidates[0].Angle)
	return s, nil
}

// Apply runs cmd against s and returns the resulting state.
//
// Apply never modifies s. On error the returned state is s itself, with one
// exception: Cancel returns the cancelled state together with
// ErrSessionCancelled.
func (c *Controller) Apply(s State, cmd Command) (State, error) {
	if s.Phase == PhaseCancelled {
		return s, ErrSessionCancelled
	}
	if _, ok := cmd.(Cancel); ok {
		c.logger.Info("session cancelled", "phase", s.Phase)
		s.Phase = PhaseCancelled
		s.Revision++
		return s, ErrSessionCancelled
	}

	next, err := c.apply(s, cmd)
	if err != nil {
		c.logger.Debug("command rejected", "command", cmd.Name(), "phase", s.Phase, "error", err)
		return s, err
	}
	next.Revision = s.Revision + 1

	if next.Phase != s.Phase {
		c.logger.Info("phase changed", "from", s.Phase, "to", next.Phase, "command", cmd.Name())
	}
	return next, nil
}

func (c *Controller) apply(s State, cmd Command) (State, error) {
	switch s.Phase {
	case PhaseRotate:
		return c.applyRotate(s, cmd)
	case PhaseCrop:
		return c.applyCrop(s, cmd)
	case PhaseSave:
		return c.applySave(s, cmd)
	}
	return s, notAllowed(s, cmd)
}

func notAllowed(s State, cmd Command) error {
	return fmt.Errorf("%w: %s during %s", ErrCommandNotAllowed, cmd.Name(), s.Phase)
}

func (c *Controller) applyRotate(s State, cmd Command) (State, error) {
	switch cmd := cmd.(type) {
	case SelectPrevious:
		s.Angles = s.Angles.Previous()
	case SelectNext:
		s.Angles = s.Angles.Next()
	case Select:
		angles, ok := s.Angles.Select(cmd.Index)
		if !ok {
			return s, fmt.Errorf("%w: %d of %d", ErrInvalidIndex, cmd.Index, s.Angles.Len())
		}
		s.Angles = angles
	case AdjustAngle:
		s.Angles = s.Angles.Update(func(r detection.RotationCandidate) detection.RotationCandidate {
			r.Angle = imaging.NormalizeAngle(r.Angle + cmd.Delta)
			return r
		})
	case ToggleOverlay:
		overlays, ok := s.Overlays.Toggle(cmd.Kind)
		if !ok {
			return s, fmt.Errorf("unknown overlay: %q", cmd.Kind)
		}
		s.Overlays = overlays
	case SetCropMode:
		if cmd.Mode != ModeCircle && cmd.Mode != ModeRectangle && cmd.Mode != ModeFreeform {
			return s, fmt.Errorf("unknown crop mode: %v", cmd.Mode)
		}
		s.Mode = cmd.Mode
	case CommitRotation:
		return c.commitRotation(s)
	default:
		return s, notAllowed(s, cmd)
	}
	return s, nil
}

// commitRotation rotates the source by the selected angle and, when the angle
// key changed, replaces the shape candidates.
func (c *Controller) commitRotation(s State) (State, error) {
	angle := s.SelectedAngle()
	key := imaging.RotationKey(angle)

	if key == s.RotationKey && s.Rotated != nil {
		c.logger.Debug("rotation unchanged, keeping candidates", "angle", key)
		return c.enterCrop(s), nil
	}

	rotated, key, hit, err := c.cache.Rotate(c.warper, s.Source, angle)
	if err != nil {
		return s, err
	}
	c.logger.Debug("rotated source", "angle", key, "cache_hit", hit)

	circles, err := c.detector.Circles(rotated)
	if err != nil && !errors.Is(err, detection.ErrNoShapeCandidates) {
		return s, fmt.Errorf("failed to detect circles: %w", err)
	}
	rects, err := c.detector.Rectangles(rotated)
	if err != nil && !errors.Is(err, detection.ErrNoShapeCandidates) {
		return s, fmt.Errorf("failed to detect rectangles: %w", err)
	}
	if len(rects) == 0 {
		c.logger.Info("no rectangle candidates, offering whole image")
		rects = []detection.RectCandidate{detection.WholeImage(rotated.Bounds())}
	}

	s.Rotated = rotated
	s.RotationKey = key
	s.Circles = NewCursor(circles)
	s.Rects = NewCursor(rects)
	s.Selection = nil

	c.logger.Info("shape detection complete",
		"angle", key,
		"circles", len(circles),
		"rectangles", len(rects))
	return c.enterCrop(s), nil
}

// enterCrop moves to the crop phase with the selection pointing at the
// current mode's list. Circle mode falls back to rectangles when no circle
// was found.
func (c *Controller) enterCrop(s State) State {
	s.Phase = PhaseCrop
	mode := s.Mode
	if mode == ModeCircle && s.Circles.Len() == 0 {
		c.logger.Info("no circle candidates, switching to rectangle mode")
		mode = ModeRectangle
	}
	return s.withMode(mode)
}

// withMode sets the crop mode and points the selection at the matching
// list's cursor. Freeform starts out covering the whole display.
func (s State) withMode(mode CropMode) State {
	s.Mode = mode
	switch mode {
	case ModeCircle:
		s.Selection = CircleSelection{Index: s.Circles.Index()}
	case ModeRectangle:
		s.Selection = RectSelection{Index: s.Rects.Index()}
	case ModeFreeform:
		if sel, ok := s.Selection.(FreeformSelection); ok {
			s.Selection = sel
			break
		}
		var size image.Point
		if s.Rotated != nil {
			t := s.DisplayTransform()
			b := s.Rotated.Bounds()
			size = geometry.ScaledSize(b.Dx(), b.Dy(), t.DisplayToOriginal)
		}
		s.Selection = FreeformSelection{Corner2: geometry.FromImagePoint(size)}
	}
	return s
}

func (c *Controller) applyCrop(s State, cmd Command) (State, error) {
	switch cmd := cmd.(type) {
	case SelectPrevious:
		return s.moveSelection(true)
	case SelectNext:
		return s.moveSelection(false)
	case Select:
		return s.selectIndex(cmd.Index)
	case AdjustRadius:
		return s.adjustShape(cmd.Delta, 0, 0)
	case MoveCenter:
		return s.adjustShape(0, cmd.DX, cmd.DY)
	case SetCropMode:
		switch cmd.Mode {
		case ModeCircle:
			if s.Circles.Len() == 0 {
				return s, fmt.Errorf("circle mode: %w", detection.ErrNoShapeCandidates)
			}
		case ModeRectangle, ModeFreeform:
		default:
			return s, fmt.Errorf("unknown crop mode: %v", cmd.Mode)
		}
		return s.withMode(cmd.Mode), nil
	case ToggleOverlay:
		overlays, ok := s.Overlays.Toggle(cmd.Kind)
		if !ok {
			return s, fmt.Errorf("unknown overlay: %q", cmd.Kind)
		}
		s.Overlays = overlays
		return s, nil
	case PointerDown:
		s.Mode = ModeFreeform
		p := geometry.Pt(cmd.X, cmd.Y)
		s.Selection = FreeformSelection{Corner1: p, Corner2: p, Dragging: true}
		return s, nil
	case PointerMove:
		sel, ok := s.Selection.(FreeformSelection)
		if ok && sel.Dragging {
			sel.Corner2 = geometry.Pt(cmd.X, cmd.Y)
			s.Selection = sel
		}
		return s, nil
	case PointerUp:
		sel, ok := s.Selection.(FreeformSelection)
		if ok && sel.Dragging {
			sel.Corner2 = geometry.Pt(cmd.X, cmd.Y)
			sel.Dragging = false
			s.Selection = sel
		}
		return s, nil
	case CommitCrop:
		return c.commitCrop(s)
	case Back:
		s.Phase = PhaseRotate
		return s, nil
	}
	return s, notAllowed(s, cmd)
}

// moveSelection steps the active list one rank down, or up when back is set.
// Freeform has no list.
func (s State) moveSelection(back bool) (State, error) {
	switch s.Selection.(type) {
	case CircleSelection:
		if back {
			s.Circles = s.Circles.Previous()
		} else {
			s.Circles = s.Circles.Next()
		}
	case RectSelection:
		if back {
			s.Rects = s.Rects.Previous()
		} else {
			s.Rects = s.Rects.Next()
		}
	default:
		return s, fmt.Errorf("%w: no candidate list in %s mode", ErrCommandNotAllowed, s.Mode)
	}
	return s.withMode(s.Mode), nil
}

func (s State) selectIndex(i int) (State, error) {
	var ok bool
	switch s.Selection.(type) {
	case CircleSelection:
		s.Circles, ok = s.Circles.Select(i)
		if !ok {
			return s, fmt.Errorf("%w: %d of %d", ErrInvalidIndex, i, s.Circles.Len())
		}
	case RectSelection:
		s.Rects, ok = s.Rects.Select(i)
		if !ok {
			return s, fmt.Errorf("%w: %d of %d", ErrInvalidIndex, i, s.Rects.Len())
		}
	default:
		return s, fmt.Errorf("%w: no candidate list in %s mode", ErrCommandNotAllowed, s.Mode)
	}
	return s.withMode(s.Mode), nil
}

// adjustShape grows the selected shape by dr and shifts it by (dx, dy). A
// circle's radius and a rectangle's sides never shrink below zero.
func (s State) adjustShape(dr, dx, dy int) (State, error) {
	switch s.Selection.(type) {
	case CircleSelection:
		s.Circles = s.Circles.Update(func(c detection.CircleCandidate) detection.CircleCandidate {
			c.Radius = max(c.Radius+dr, 0)
			c.CenterX += dx
			c.CenterY += dy
			return c
		})
	case RectSelection:
		s.Rects = s.Rects.Update(func(r detection.RectCandidate) detection.RectCandidate {
			if r.MaxX-r.MinX+2*dr >= 0 && r.MaxY-r.MinY+2*dr >= 0 {
				r.MinX -= dr
				r.MinY -= dr
				r.MaxX += dr
				r.MaxY += dr
			}
			return detection.NewRectCandidate(
				image.Pt(r.MinX+dx, r.MinY+dy),
				image.Pt(r.MaxX+dx, r.MaxY+dy))
		})
	default:
		return s, fmt.Errorf("%w: freeform selections are adjusted by dragging", ErrCommandNotAllowed)
	}
	return s, nil
}

// commitCrop extracts the selection from the rotated raster. A failed crop
// leaves the session in the crop phase.
func (c *Controller) commitCrop(s State) (State, error) {
	var (
		out image.Image
		err error
	)

	switch sel := s.Selection.(type) {
	case CircleSelection:
		circle, ok := s.SelectedCircle()
		if !ok {
			return s, fmt.Errorf("%w: no circle selected", ErrInvalidIndex)
		}
		out, err = cropCircle(s.Rotated, circle)
	case RectSelection:
		rect, ok := s.SelectedRect()
		if !ok {
			return s, fmt.Errorf("%w: no rectangle selected", ErrInvalidIndex)
		}
		out, err = cropRect(s.Rotated, rect.Min(), rect.Max())
	case FreeformSelection:
		t := s.DisplayTransform()
		a := t.ToOriginal(sel.Corner1, geometry.Display).Trunc()
		b := t.ToOriginal(sel.Corner2, geometry.Display).Trunc()
		out, err = cropRect(s.Rotated, a, b)
	default:
		return s, fmt.Errorf("%w: nothing selected", ErrCommandNotAllowed)
	}
	if err != nil {
		c.logger.Warn("crop failed", "mode", s.Mode, "error", err)
		return s, err
	}

	s.Final = out
	s.Phase = PhaseSave
	c.logger.Info("crop committed",
		"mode", s.Mode,
		"width", out.Bounds().Dx(),
		"height", out.Bounds().Dy())
	return s, nil
}

// cropCircle and cropRect return a nil interface on error rather than a typed
// nil pointer.
func cropCircle(src image.Image, c detection.CircleCandidate) (image.Image, error) {
	out, err := imaging.CropCircle(src, c.CenterX, c.CenterY, c.Radius)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func cropRect(src image.Image, a, b image.Point) (image.Image, error) {
	out, err := imaging.CropRect(src, a, b)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Controller) applySave(s State, cmd Command) (State, error) {
	switch cmd.(type) {
	case Save:
		if c.opts.OutputPath == "" {
			return s, fmt.Errorf("%w: no output path", imaging.ErrOutputNotWritable)
		}
		if err := imaging.Save(s.Final, c.opts.OutputPath); err != nil {
			return s, err
		}
		c.logger.Info("saved", "path", c.opts.OutputPath)
		s.Phase = PhaseDone
		return s, nil
	case Back:
		s.Final = nil
		s.Phase = PhaseCrop
		return s, nil
	}
	return s, notAllowed(s, cmd)
}
