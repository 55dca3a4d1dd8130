package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Session inspection
		{
			Name:        "session_status",
			Description: "Get the session phase, selected angle, crop mode, active selection and overlay toggles.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "session_candidates",
			Description: "List the candidates of the current phase: rotation angles ranked by supporting edge length, or circle/rectangle crop regions in rotated-image pixels.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "session_preview",
			Description: "Render the current phase's preview (rotated source with overlays, crop selection, or final image) and return it as base64-encoded PNG.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},

		// Session control
		{
			Name:        "session_command",
			Description: "Apply one operator command to the session and return the new status. A rejected command leaves the session unchanged.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"command": map[string]interface{}{
						"type":        "string",
						"enum":        commandNames(),
						"description": "Command to apply",
					},
					"index": map[string]interface{}{
						"type":        "integer",
						"description": "Candidate index for select (0-based)",
					},
					"delta": map[string]interface{}{
						"type":        "number",
						"description": "Degrees for adjust_angle, pixels for adjust_radius",
					},
					"dx": map[string]interface{}{
						"type":        "integer",
						"description": "Horizontal shift in pixels for move_center",
					},
					"dy": map[string]interface{}{
						"type":        "integer",
						"description": "Vertical shift in pixels for move_center (positive is down)",
					},
					"kind": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"edges", "lines", "grid"},
						"description": "Overlay for toggle_overlay",
					},
					"mode": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"circle", "rectangle", "freeform"},
						"description": "Crop mode for set_crop_mode",
					},
					"x": map[string]interface{}{
						"type":        "number",
						"description": "Display X coordinate for pointer commands",
					},
					"y": map[string]interface{}{
						"type":        "number",
						"description": "Display Y coordinate for pointer commands",
					},
				},
				"required": []string{"command"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
