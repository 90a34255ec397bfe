// Package server implements the MCP (Model Context Protocol) server for memezap.
//
// This package provides a JSON-RPC 2.0 server that exposes the meme pipeline
// through the MCP protocol, so an assistant can caption images, inspect their
// text and manage the template index.
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
// Rendering:
//   - meme_render: Caption an image, reusing a matched template when one exists
//
// Text:
//   - meme_detect_text: Find merged text regions
//   - meme_remove_text: Inpaint the text away
//
// Template index:
//   - index_search: Top-k similar templates
//   - index_add: Add one template
//   - index_stats: Size, dimension and paths
//
// Fonts and diagnostics:
//   - font_fit: Font size for a caption in a box
//   - system_info: OCR engine, extractor, index and cache in use
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// A render only fails when its input cannot be read or its output cannot be
// written. Pipeline stages that fail along the way are reported in the
// result's trace instead.
//
// Logs go to the configured logger and never to stdout.
package server
