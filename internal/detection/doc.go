// Package detection finds colored balls in a single video frame.
//
// For every configured color class the detector reports at most one ball: the
// largest blob of that color. Nothing is carried from one frame to the next;
// there is no tracking, smoothing or multi-ball support.
//
// # Pipeline
//
//  1. Segment: convert the frame to 8-bit HSV once and threshold it against
//     each ColorClass, producing one Mask per class.
//  2. Open: erode then dilate each mask (OpenIterations each, 3x3 square) to
//     remove isolated noise.
//  3. Contours: trace the outer boundary of every 8-connected region. Holes
//     are ignored.
//  4. Select: keep the contour with the largest enclosed area. Ties go to the
//     region found first in raster order.
//  5. Fit: minimum enclosing circle (position and radius) and moment centroid.
//
// Detector.Detect runs the whole pipeline and returns detections in color
// table order.
//
// # Coordinate System
//
// Coordinates are in source frame pixels with the origin at the top-left
// corner, X increasing rightward and Y increasing downward. Contour points are
// pixel centres.
//
// # Errors
//
//   - ErrInvalidFrame: the frame is too small, has an unknown layout, or its
//     buffer does not match its dimensions. Returned to the caller.
//   - ErrDegenerateBlob: the largest contour encloses no area. Returned by
//     ExtractBlob; Detector drops that color for the frame and carries on.
//
// # Radius Gate
//
// Detections with a radius of MarkRadius or less are still returned; the gate
// only controls whether Annotate draws them.
package detection
