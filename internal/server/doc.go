// Package server implements the MCP (Model Context Protocol) server used to
// inspect and calibrate the ball detector from an MCP client.
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
// Detection:
//   - ball_detect: Run the detector on a captured frame
//   - ball_annotate: Detections plus the annotated frame as PNG
//
// Calibration:
//   - ball_sample_hsv: 8-bit HSV at a pixel and the classes it matches
//   - ball_mask: The cleaned mask for one color class
//   - ball_grid: Coordinate grid overlay for reading off pixel positions
//   - ball_color_classes: The color table in detection order
//   - ball_cache_clear: Forget cached images after frames are re-captured
//
// # Image Caching
//
// Images are cached by path and reused across tool calls for the lifetime of
// the server process, or until ball_cache_clear drops them.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with code
// -32000 and the Go error string as data.
//
// # Usage
//
//	det, _ := detection.NewDetector(cfg.ColorTable())
//	srv := server.New(det, logger, version)
//	if err := srv.Run(); err != nil {
//	    logger.Fatal("mcp server", zap.Error(err))
//	}
package server
