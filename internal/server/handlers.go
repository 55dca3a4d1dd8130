package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/ironsheep/artifact-crop/internal/imaging"
	"github.com/ironsheep/artifact-crop/internal/session"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "session_status", "session_command").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "session_status":
		return s.status(), nil
	case "session_candidates":
		return s.candidates(), nil
	case "session_preview":
		return s.handlePreview()
	case "session_command":
		return s.handleCommand(args)
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Inspection Handlers ===

// Status is the session_status result.
type Status struct {
	Phase       session.Phase      `json:"phase"`
	Revision    uint64             `json:"revision"`
	Angle       float64            `json:"angle"`
	RotationKey string             `json:"rotation_key,omitempty"`
	Mode        session.CropMode   `json:"mode"`
	Selection   string             `json:"selection,omitempty"`
	Overlays    session.Overlays   `json:"overlays"`
	FinalWidth  int                `json:"final_width,omitempty"`
	FinalHeight int                `json:"final_height,omitempty"`
	Source      *imaging.ImageInfo `json:"source,omitempty"`
}

func (s *Server) status() *Status {
	st := s.state
	out := &Status{
		Phase:       st.Phase,
		Revision:    st.Revision,
		Angle:       st.SelectedAngle(),
		RotationKey: st.RotationKey,
		Mode:        st.Mode,
		Overlays:    st.Overlays,
		Source:      s.source,
	}

	if st.Phase == session.PhaseCrop {
		switch sel := st.Selection.(type) {
		case session.CircleSelection:
			if c, ok := st.SelectedCircle(); ok {
				out.Selection = c.String()
			}
		case session.RectSelection:
			if r, ok := st.SelectedRect(); ok {
				out.Selection = r.String()
			}
		case session.FreeformSelection:
			out.Selection = fmt.Sprintf("(%.0f, %.0f) -> (%.0f, %.0f) display",
				sel.Corner1.X, sel.Corner1.Y, sel.Corner2.X, sel.Corner2.Y)
		}
	}

	if st.Final != nil {
		out.FinalWidth = st.Final.Bounds().Dx()
		out.FinalHeight = st.Final.Bounds().Dy()
	}
	return out
}

// Candidates is the session_candidates result.
type Candidates struct {
	Phase    session.Phase `json:"phase"`
	Labels   []string      `json:"labels"`
	Selected int           `json:"selected"`
	Items    interface{}   `json:"items,omitempty"`
}

func (s *Server) candidates() *Candidates {
	st := s.state
	labels, selected := st.Labels()
	out := &Candidates{Phase: st.Phase, Labels: labels, Selected: selected}

	switch {
	case st.Phase == session.PhaseRotate:
		out.Items = st.Angles.Items()
	case st.Phase == session.PhaseCrop && st.Mode == session.ModeCircle:
		out.Items = st.Circles.Items()
	case st.Phase == session.PhaseCrop && st.Mode == session.ModeRectangle:
		out.Items = st.Rects.Items()
	}
	return out
}

func (s *Server) handlePreview() (interface{}, error) {
	img, err := s.previewer.Preview(s.state)
	if err != nil {
		return nil, err
	}
	return imaging.EncodePNG(img)
}

// === Command Handler ===

type commandArgs struct {
	Command string  `json:"command"`
	Index   int     `json:"index"`
	Delta   float64 `json:"delta"`
	DX      int     `json:"dx"`
	DY      int     `json:"dy"`
	Kind    string  `json:"kind"`
	Mode    string  `json:"mode"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}

// commandTable maps command names to constructors, in tools/list order.
var commandTable = []struct {
	name  string
	build func(a commandArgs) (session.Command, error)
}{
	{"select_previous", func(commandArgs) (session.Command, error) { return session.SelectPrevious{}, nil }},
	{"select_next", func(commandArgs) (session.Command, error) { return session.SelectNext{}, nil }},
	{"select", func(a commandArgs) (session.Command, error) { return session.Select{Index: a.Index}, nil }},
	{"adjust_angle", func(a commandArgs) (session.Command, error) { return session.AdjustAngle{Delta: a.Delta}, nil }},
	{"adjust_radius", func(a commandArgs) (session.Command, error) {
		if a.Delta != math.Trunc(a.Delta) {
			return nil, fmt.Errorf("adjust_radius delta must be a whole number of pixels, got %v", a.Delta)
		}
		return session.AdjustRadius{Delta: int(a.Delta)}, nil
	}},
	{"move_center", func(a commandArgs) (session.Command, error) { return session.MoveCenter{DX: a.DX, DY: a.DY}, nil }},
	{"toggle_overlay", func(a commandArgs) (session.Command, error) {
		return session.ToggleOverlay{Kind: session.OverlayKind(a.Kind)}, nil
	}},
	{"set_crop_mode", func(a commandArgs) (session.Command, error) {
		mode, err := session.ParseCropMode(a.Mode)
		if err != nil {
			return nil, err
		}
		return session.SetCropMode{Mode: mode}, nil
	}},
	{"pointer_down", func(a commandArgs) (session.Command, error) { return session.PointerDown{X: a.X, Y: a.Y}, nil }},
	{"pointer_move", func(a commandArgs) (session.Command, error) { return session.PointerMove{X: a.X, Y: a.Y}, nil }},
	{"pointer_up", func(a commandArgs) (session.Command, error) { return session.PointerUp{X: a.X, Y: a.Y}, nil }},
	{"commit_rotation", func(commandArgs) (session.Command, error) { return session.CommitRotation{}, nil }},
	{"commit_crop", func(commandArgs) (session.Command, error) { return session.CommitCrop{}, nil }},
	{"back", func(commandArgs) (session.Command, error) { return session.Back{}, nil }},
	{"save", func(commandArgs) (session.Command, error) { return session.Save{}, nil }},
	{"cancel", func(commandArgs) (session.Command, error) { return session.Cancel{}, nil }},
}

func commandNames() []string {
	names := make([]string, 0, len(commandTable))
	for _, c := range commandTable {
		names = append(names, c.name)
	}
	return names
}

func parseCommand(a commandArgs) (session.Command, error) {
	for _, c := range commandTable {
		if c.name == a.Command {
			return c.build(a)
		}
	}
	return nil, fmt.Errorf("unknown command: %q", a.Command)
}

// handleCommand applies a command. Cancelling is reported through the status,
// not as a tool failure.
func (s *Server) handleCommand(args json.RawMessage) (interface{}, error) {
	var a commandArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	cmd, err := parseCommand(a)
	if err != nil {
		return nil, err
	}

	next, err := s.controller.Apply(s.state, cmd)
	if err != nil {
		if _, cancel := cmd.(session.Cancel); !cancel || !errors.Is(err, session.ErrSessionCancelled) {
			return nil, err
		}
	}
	s.state = next
	return s.status(), nil
}
