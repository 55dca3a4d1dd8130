// Package server exposes a crop session over MCP (Model Context Protocol).
//
// This package provides a JSON-RPC 2.0 server that lets an MCP client drive
// the same rotate, crop and save workflow as the interactive key loop. Every
// command goes through the session controller, so both drivers behave
// identically.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
//   - session_status: Phase, selected angle, crop mode and selection
//   - session_candidates: Ranked candidates of the current phase
//   - session_preview: Current preview as base64-encoded PNG
//   - session_command: Apply one operator command
//
// The server returns once the session is saved or cancelled.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// A rejected command leaves the session state unchanged.
package server
