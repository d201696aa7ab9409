// Package server implements the MCP (Model Context Protocol) server for the
// band-pass decomposition tools.
//
// This package provides a JSON-RPC 2.0 server that exposes box blurring and
// multi-scale band decomposition through the MCP protocol, so MCP-compatible
// clients can split an image into detail bands and inspect them.
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
// Basic Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//
// Smoothing:
//   - image_box_blur: Repeated border-clipped box blur, saved to a file
//
// Band Decomposition:
//   - image_bandpass: Write the tiny, small and medium band images
//   - image_band_stats: Per-band statistics without writing files
//
// # Image Caching
//
// The server maintains an in-memory cache of decoded images. Images are cached
// by path and reused across multiple tool calls, avoiding redundant disk I/O.
// The cache persists for the lifetime of the server process.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
//	srv := server.New(&bandpass.Options{MaxChains: 2})
//	if err := srv.Serve(os.Stdin, os.Stdout); err != nil {
//	    log.Fatal(err)
//	}
package server
