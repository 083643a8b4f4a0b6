// Package imaging provides the pixel-level building blocks for ball detection.
//
// It defines the Frame type handed to the detector, converts pixels into the
// 8-bit HSV space that color classes are expressed in, and loads, caches and
// encodes images for the CLI and the MCP server.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//
// Frames are never flipped or rotated; a coordinate reported by the detector
// indexes the same pixel in the buffer the caller supplied.
//
// # Channel Order
//
// Frames are always red-first (LayoutRGB or LayoutRGBA). Frame.Validate
// rejects anything else with ErrInvalidFrame, so a BGR camera buffer cannot
// silently produce swapped hues.
//
// # HSV Convention
//
// HSV values use one byte per channel: hue is degrees/2 (0-179), saturation
// and value are 0-255. This matches the bounds tables commonly tuned with
// OpenCV tools, so existing calibrations can be reused unchanged.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Frame operations are
// stateless; a Frame may be read from several goroutines as long as nobody
// writes to its Pix buffer.
package imaging
