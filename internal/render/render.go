package render

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/ironsheep/artifact-crop/internal/geometry"
	"github.com/ironsheep/artifact-crop/internal/imaging"
	"github.com/ironsheep/artifact-crop/internal/session"
)

// ErrNothingToRender is returned for a state with no raster to show.
var ErrNothingToRender = errors.New("nothing to render")

// gridOffset is the position of the first grid line.
const gridOffset = 1

// Renderer draws display-space previews of session states. It keeps the last
// preview and returns it again while the state revision is unchanged, so a
// Renderer should serve a single session; call Reset before reusing it.
type Renderer struct {
	opts    Options
	colors  palette
	warper  imaging.Warper
	mu      sync.Mutex
	last    image.Image
	lastRev uint64
}

// NewRenderer creates a renderer. The warper rotates rotate-phase previews.
func NewRenderer(opts Options, warper imaging.Warper) (*Renderer, error) {
	colors, err := opts.palette()
	if err != nil {
		return nil, err
	}
	return &Renderer{opts: opts, colors: colors, warper: warper}, nil
}

// Reset drops the cached preview.
func (r *Renderer) Reset() {
	r.mu.Lock()
	r.last = nil
	r.lastRev = 0
	r.mu.Unlock()
}

// Preview returns the display image for the state's phase. The result is
// shared with later calls at the same revision and must not be modified.
func (r *Renderer) Preview(s session.State) (image.Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.last != nil && r.lastRev == s.Revision {
		return r.last, nil
	}

	var (
		img image.Image
		err error
	)
	switch s.Phase {
	case session.PhaseRotate:
		img, err = r.rotatePreview(s)
	case session.PhaseCrop:
		img, err = r.cropPreview(s)
	default:
		img, err = r.plainPreview(s)
	}
	if err != nil {
		return nil, err
	}

	r.last = img
	r.lastRev = s.Revision
	return img, nil
}

// displaySize is the size of the state's display image after fitting.
func displaySize(s session.State) image.Point {
	b := s.DisplayImage().Bounds()
	return geometry.ScaledSize(b.Dx(), b.Dy(), s.DisplayTransform().DisplayToOriginal)
}

// rotatePreview shows the source or its edge map at analysis size turned by
// the selected angle, with the selected candidate's segments and the grid
// drawn on top.
func (r *Renderer) rotatePreview(s session.State) (image.Image, error) {
	if s.Source == nil {
		return nil, ErrNothingToRender
	}

	base := s.Source
	if s.Overlays.Edges && s.Lines != nil && s.Lines.Edges != nil {
		base = s.Lines.Edges
	}
	size := displaySize(s)
	angle := s.SelectedAngle()

	rotated, err := imaging.Rotate(r.warper, fit(base, size), angle)
	if err != nil {
		return nil, fmt.Errorf("failed to rotate preview: %w", err)
	}
	if !s.Overlays.Lines && !s.Overlays.Grid {
		return rotated, nil
	}
	out := toRGBA(rotated)

	if s.Overlays.Lines {
		if c, ok := s.Angles.Current(); ok && len(c.Segments) > 0 {
			// Segments are in analysis space and turn with the raster.
			m := s.DisplayTransform().Affine(geometry.Analysis, geometry.Display).
				Then(geometry.RotationAbout(geometry.RasterCenter(size.X, size.Y), imaging.NormalizeAngle(angle)))
			p := newPen(out, r.opts.LineWidth, r.colors.line)
			for _, seg := range c.Segments {
				p.line(m.Apply(geometry.Pt(float64(seg.X1), float64(seg.Y1))), m.Apply(geometry.Pt(float64(seg.X2), float64(seg.Y2))))
			}
			p.flush()
		}
	}
	if s.Overlays.Grid {
		drawGrid(out, r.opts.GridSpacing, gridOffset, r.colors.grid)
	}
	return out, nil
}

// cropPreview shows the rotated raster with the active selection outlined.
func (r *Renderer) cropPreview(s session.State) (image.Image, error) {
	if s.Rotated == nil {
		return nil, ErrNothingToRender
	}
	canvas := fit(s.Rotated, displaySize(s))
	t := s.DisplayTransform()

	m := t.Affine(geometry.Original, geometry.Display)
	toDisplay := func(x, y int) geometry.Point {
		return m.Apply(geometry.Pt(float64(x), float64(y)))
	}

	switch sel := s.Selection.(type) {
	case session.CircleSelection:
		c, ok := s.SelectedCircle()
		if !ok {
			break
		}
		square := newPen(canvas, r.opts.StrokeWidth, r.colors.square)
		square.rect(toDisplay(c.CenterX-c.Radius, c.CenterY-c.Radius), toDisplay(c.CenterX+c.Radius, c.CenterY+c.Radius))
		square.flush()

		circle := newPen(canvas, r.opts.StrokeWidth, r.colors.circle)
		circle.circle(toDisplay(c.CenterX, c.CenterY), t.Length(float64(c.Radius), geometry.Original, geometry.Display))
		circle.flush()
	case session.RectSelection:
		rc, ok := s.SelectedRect()
		if !ok {
			break
		}
		p := newPen(canvas, r.opts.StrokeWidth, r.colors.rect)
		p.rect(toDisplay(rc.MinX, rc.MinY), toDisplay(rc.MaxX, rc.MaxY))
		p.flush()
	case session.FreeformSelection:
		p := newPen(canvas, r.opts.StrokeWidth, r.colors.freeform)
		p.rect(sel.Corner1, sel.Corner2)
		p.flush()
	}
	return canvas, nil
}

// plainPreview fits the phase's display image without overlays.
func (r *Renderer) plainPreview(s session.State) (image.Image, error) {
	if s.DisplayImage() == nil {
		return nil, ErrNothingToRender
	}
	return fit(s.DisplayImage(), displaySize(s)), nil
}
