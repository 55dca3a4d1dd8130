// Package keys drives a crop session from named key presses, one per line.
package keys

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ironsheep/artifact-crop/internal/session"
)

// ErrUnknownKey is returned by Lookup for a key with no binding in the
// current phase.
var ErrUnknownKey = errors.New("unknown key")

// Applier applies commands to session states. *session.Controller satisfies
// it.
type Applier interface {
	Apply(s session.State, cmd session.Command) (session.State, error)
}

var rotateKeys = map[string]session.Command{
	"pgup":  session.SelectPrevious{},
	"pgdn":  session.SelectNext{},
	"tab":   session.AdjustAngle{Delta: 90},
	"up":    session.AdjustAngle{Delta: 1},
	"down":  session.AdjustAngle{Delta: -1},
	"left":  session.AdjustAngle{Delta: 0.1},
	"right": session.AdjustAngle{Delta: -0.1},
	"space": session.ToggleOverlay{Kind: session.OverlayLines},
	"e":     session.ToggleOverlay{Kind: session.OverlayEdges},
	"g":     session.ToggleOverlay{Kind: session.OverlayGrid},
	"c":     session.SetCropMode{Mode: session.ModeCircle},
	"r":     session.SetCropMode{Mode: session.ModeRectangle},
	"f":     session.SetCropMode{Mode: session.ModeFreeform},
	"enter": session.CommitRotation{},
}

var cropKeys = map[string]session.Command{
	"pgup":      session.SelectPrevious{},
	"pgdn":      session.SelectNext{},
	"w":         session.AdjustRadius{Delta: 1},
	"s":         session.AdjustRadius{Delta: -1},
	"left":      session.MoveCenter{DX: -1},
	"right":     session.MoveCenter{DX: 1},
	"up":        session.MoveCenter{DY: -1},
	"down":      session.MoveCenter{DY: 1},
	"c":         session.SetCropMode{Mode: session.ModeCircle},
	"r":         session.SetCropMode{Mode: session.ModeRectangle},
	"f":         session.SetCropMode{Mode: session.ModeFreeform},
	"enter":     session.CommitCrop{},
	"backspace": session.Back{},
}

var saveKeys = map[string]session.Command{
	"enter":     session.Save{},
	"backspace": session.Back{},
}

var aliases = map[string]string{
	"pageup":   "pgup",
	"pagedown": "pgdn",
	"return":   "enter",
	"escape":   "esc",
}

func normalize(key string) string {
	if key == " " {
		return "space"
	}
	key = strings.ToLower(strings.TrimSpace(key))
	if alias, ok := aliases[key]; ok {
		return alias
	}
	return key
}

// Lookup returns the command bound to key in phase. Esc cancels in every
// phase.
func Lookup(phase session.Phase, key string) (session.Command, error) {
	key = normalize(key)
	if key == "esc" {
		return session.Cancel{}, nil
	}

	var bindings map[string]session.Command
	switch phase {
	case session.PhaseRotate:
		bindings = rotateKeys
	case session.PhaseCrop:
		bindings = cropKeys
	case session.PhaseSave:
		bindings = saveKeys
	}
	cmd, ok := bindings[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q during %s", ErrUnknownKey, key, phase)
	}
	return cmd, nil
}

// Run reads one key name per line from r and applies it to s until the
// session is done or cancelled. Unknown keys and rejected commands are logged
// and skipped. after, when non-nil, is called with every new state.
//
// Run returns the final state. Cancelling is not an error; running out of
// input before the session ends is.
func Run(r io.Reader, a Applier, s session.State, after func(session.State) error, logger *slog.Logger) (session.State, error) {
	if logger == nil {
		logger = slog.Default()
	}

	scanner := bufio.NewScanner(r)
	for !s.Phase.Terminal() && scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" && line != " " {
			continue
		}

		cmd, err := Lookup(s.Phase, line)
		if err != nil {
			logger.Warn("ignoring key", "error", err)
			continue
		}

		next, err := a.Apply(s, cmd)
		if err != nil && !errors.Is(err, session.ErrSessionCancelled) {
			logger.Warn("command failed", "command", cmd.Name(), "phase", s.Phase, "error", err)
			continue
		}
		s = next

		if after != nil {
			if err := after(s); err != nil {
				return s, err
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return s, fmt.Errorf("failed to read keys: %w", err)
	}
	if !s.Phase.Terminal() {
		return s, fmt.Errorf("input closed during %s: %w", s.Phase, io.ErrUnexpectedEOF)
	}
	return s, nil
}
