package keys

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/ironsheep/artifact-crop/internal/session"
)

// scriptedApplier walks the phases on commit commands and rejects radius
// shrinking.
type scriptedApplier struct {
	applied []string
}

var errRejected = errors.New("rejected")

func (a *scriptedApplier) Apply(s session.State, cmd session.Command) (session.State, error) {
	a.applied = append(a.applied, cmd.Name())
	switch cmd := cmd.(type) {
	case session.CommitRotation:
		s.Phase = session.PhaseCrop
	case session.CommitCrop:
		s.Phase = session.PhaseSave
	case session.Save:
		s.Phase = session.PhaseDone
	case session.Back:
		s.Phase--
	case session.Cancel:
		s.Phase = session.PhaseCancelled
		s.Revision++
		return s, session.ErrSessionCancelled
	case session.AdjustRadius:
		if cmd.Delta < 0 {
			return s, errRejected
		}
	}
	s.Revision++
	return s, nil
}

func TestLookup(t *testing.T) {
	tests := []struct {
		phase session.Phase
		key   string
		want  session.Command
	}{
		{session.PhaseRotate, "tab", session.AdjustAngle{Delta: 90}},
		{session.PhaseRotate, "Left", session.AdjustAngle{Delta: 0.1}},
		{session.PhaseRotate, "down", session.AdjustAngle{Delta: -1}},
		{session.PhaseRotate, "PageUp", session.SelectPrevious{}},
		{session.PhaseRotate, " ", session.ToggleOverlay{Kind: session.OverlayLines}},
		{session.PhaseRotate, "G", session.ToggleOverlay{Kind: session.OverlayGrid}},
		{session.PhaseRotate, "return", session.CommitRotation{}},
		{session.PhaseCrop, "W", session.AdjustRadius{Delta: 1}},
		{session.PhaseCrop, "up", session.MoveCenter{DY: -1}},
		{session.PhaseCrop, "f", session.SetCropMode{Mode: session.ModeFreeform}},
		{session.PhaseCrop, "enter", session.CommitCrop{}},
		{session.PhaseCrop, "backspace", session.Back{}},
		{session.PhaseSave, "enter", session.Save{}},
		{session.PhaseSave, "esc", session.Cancel{}},
		{session.PhaseRotate, "Escape", session.Cancel{}},
	}

	for _, tt := range tests {
		t.Run(tt.phase.String()+"/"+tt.key, func(t *testing.T) {
			got, err := Lookup(tt.phase, tt.key)
			if err != nil {
				t.Fatalf("Lookup failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestLookup_Unknown(t *testing.T) {
	tests := []struct {
		phase session.Phase
		key   string
	}{
		{session.PhaseRotate, "w"},
		{session.PhaseRotate, "backspace"},
		{session.PhaseSave, "pgdn"},
		{session.PhaseDone, "enter"},
	}

	for _, tt := range tests {
		if _, err := Lookup(tt.phase, tt.key); !errors.Is(err, ErrUnknownKey) {
			t.Errorf("Lookup(%v, %q): expected ErrUnknownKey, got %v", tt.phase, tt.key, err)
		}
	}
}

func TestRun_ToDone(t *testing.T) {
	a := &scriptedApplier{}
	input := strings.Join([]string{"tab", "", "bogus", "enter", "w", "s", "enter", "enter", "tab"}, "\n")

	var seen []session.Phase
	final, err := Run(strings.NewReader(input), a, session.State{Phase: session.PhaseRotate}, func(s session.State) error {
		seen = append(seen, s.Phase)
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if final.Phase != session.PhaseDone {
		t.Errorf("final phase: got %v, want done", final.Phase)
	}

	want := []string{"adjust_angle", "commit_rotation", "adjust_radius", "adjust_radius", "commit_crop", "save"}
	if strings.Join(a.applied, ",") != strings.Join(want, ",") {
		t.Errorf("applied %v, want %v", a.applied, want)
	}
	// The rejected radius change does not reach the hook.
	if len(seen) != 5 {
		t.Errorf("hook called %d times, want 5", len(seen))
	}
}

func TestRun_Cancel(t *testing.T) {
	a := &scriptedApplier{}
	final, err := Run(strings.NewReader("enter\nesc\nenter\n"), a, session.State{Phase: session.PhaseRotate}, nil, nil)
	if err != nil {
		t.Fatalf("cancel should not be an error, got %v", err)
	}
	if final.Phase != session.PhaseCancelled {
		t.Errorf("final phase: got %v, want cancelled", final.Phase)
	}
	if len(a.applied) != 2 {
		t.Errorf("keys after cancel should be ignored, applied %v", a.applied)
	}
}

func TestRun_InputClosedEarly(t *testing.T) {
	_, err := Run(strings.NewReader("tab\n"), &scriptedApplier{}, session.State{Phase: session.PhaseRotate}, nil, nil)
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("expected io.ErrUnexpectedEOF, got %v", err)
	}
}

func TestRun_HookError(t *testing.T) {
	hookErr := errors.New("preview failed")
	_, err := Run(strings.NewReader("tab\ntab\n"), &scriptedApplier{}, session.State{Phase: session.PhaseRotate}, func(session.State) error {
		return hookErr
	}, nil)
	if !errors.Is(err, hookErr) {
		t.Errorf("expected the hook error, got %v", err)
	}
}
