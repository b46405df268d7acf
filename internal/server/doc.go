// Package server implements the MCP (Model Context Protocol) server for image conversion.
//
// This package provides a JSON-RPC 2.0 server that exposes the converter in
// pkg/convert as MCP tools, so MCP clients can detect, inspect and convert
// image values without linking the library.
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
//   - image_detect: Classify a value as url, file or base64_text
//   - image_convert: Convert a value to bytes, base64, a file, an image or an array
//   - image_info: Report kind, dimensions, color mode, format and size
//
// Tool values arrive as JSON strings. With an explicit kind of bytes or
// base64 the string is passed to the converter as a byte slice; otherwise it
// is detected like any other string. Binary results are base64-encoded in
// the response.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// Lines that are not valid JSON get a -32700 parse error with a null id.
//
// # Usage
//
//	srv := server.New(conv, server.WithLogger(logger))
//	if err := srv.Run(ctx); err != nil {
//	    logger.Fatal("server error", zap.Error(err))
//	}
package server
