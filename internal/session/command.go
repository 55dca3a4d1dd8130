package session

import "fmt"

// Command is one operator action. Commands are plain values; Controller.Apply
// interprets them against the current State.
type Command interface {
	// Name identifies the command in logs and on the JSON-RPC surface.
	Name() string
}

// SelectPrevious moves the active list's selection up one rank.
type SelectPrevious struct{}

// SelectNext moves the active list's selection down one rank.
type SelectNext struct{}

// Select jumps to a zero-based index in the active list.
type Select struct {
	Index int `json:"index"`
}

// AdjustAngle adds Delta degrees to the selected rotation candidate.
type AdjustAngle struct {
	Delta float64 `json:"delta"`
}

// AdjustRadius grows or shrinks the selected circle, or every side of the
// selected rectangle, by Delta pixels.
type AdjustRadius struct {
	Delta int `json:"delta"`
}

// MoveCenter shifts the selected circle or rectangle by (DX, DY) pixels.
type MoveCenter struct {
	DX int `json:"dx"`
	DY int `json:"dy"`
}

// ToggleOverlay flips one preview overlay on or off.
type ToggleOverlay struct {
	Kind OverlayKind `json:"kind"`
}

// SetCropMode switches between circle, rectangle and freeform cropping.
type SetCropMode struct {
	Mode CropMode `json:"mode"`
}

// PointerDown starts a freeform drag at a display-space position.
type PointerDown struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PointerMove extends a freeform drag.
type PointerMove struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PointerUp finishes a freeform drag.
type PointerUp struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// CommitRotation rotates the source by the selected angle and runs shape
// detection on the result.
type CommitRotation struct{}

// CommitCrop extracts the active selection from the rotated image.
type CommitCrop struct{}

// Back returns to the previous phase, keeping candidate edits.
type Back struct{}

// Save writes the final image to the output path.
type Save struct{}

// Cancel ends the session without writing anything.
type Cancel struct{}

func (SelectPrevious) Name() string { return "select_previous" }
func (SelectNext) Name() string { return "select_next" }
func (Select) Name() string { return "select" }
func (AdjustAngle) Name() string { return "adjust_angle" }
func (AdjustRadius) Name() string { return "adjust_radius" }
func (MoveCenter) Name() string { return "move_center" }
func (ToggleOverlay) Name() string { return "toggle_overlay" }
func (SetCropMode) Name() string { return "set_crop_mode" }
func (PointerDown) Name() string { return "pointer_down" }
func (PointerMove) Name() string { return "pointer_move" }
func (PointerUp) Name() string { return "pointer_up" }
func (CommitRotation) Name() string { return "commit_rotation" }
func (CommitCrop) Name() string { return "commit_crop" }
func (Back) Name() string { return "back" }
func (Save) Name() string { return "save" }
func (Cancel) Name() string { return "cancel" }

// OverlayKind names a preview overlay.
type OverlayKind string

const (
	// OverlayEdges replaces the preview with the computed edge map.
	OverlayEdges OverlayKind = "edges"
	// OverlayLines draws the selected angle's supporting segments.
	OverlayLines OverlayKind = "lines"
	// OverlayGrid draws an alignment grid.
	OverlayGrid OverlayKind = "grid"
)

// CropMode selects which kind of crop region is active.
type CropMode int

const (
	ModeCircle CropMode = iota
	ModeRectangle
	ModeFreeform
)

func (m CropMode) String() string {
	switch m {
	case ModeCircle:
		return "circle"
	case ModeRectangle:
		return "rectangle"
	case ModeFreeform:
		return "freeform"
	default:
		return fmt.Sprintf("CropMode(%d)", int(m))
	}
}

// ParseCropMode parses "circle", "rectangle" or "freeform".
func ParseCropMode(s string) (CropMode, error) {
	switch s {
	case "circle":
		return ModeCircle, nil
	case "rectangle", "rect":
		return ModeRectangle, nil
	case "freeform":
		return ModeFreeform, nil
	default:
		return ModeCircle, fmt.Errorf("unknown crop mode: %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m CropMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *CropMode) UnmarshalText(text []byte) error {
	mode, err := ParseCropMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}
