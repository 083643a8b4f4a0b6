package detection

import (
	"github.com/pkg/errors"
)

// ErrDegenerateBlob is returned by ExtractBlob when the largest contour
// encloses no area, so no centroid can be computed. Detector treats it as "no
// ball of this color" and does not surface it.
var ErrDegenerateBlob = errors.New("degenerate blob")

// MarkRadius is the enclosing circle radius, in pixels, above which a
// detection is drawn by Annotate. It does not filter detections.
const MarkRadius = 10

// Detection is the largest blob of one color found in one frame.
type Detection struct {
	// Color is the name of the color class the blob matched.
	Color string `json:"color"`

	// X and Y are the centre of the minimum enclosing circle.
	X float64 `json:"x"`
	Y float64 `json:"y"`

	// Radius is the radius of the minimum enclosing circle.
	Radius float64 `json:"radius"`

	// CentroidX and CentroidY are the area centroid from the contour moments,
	// truncated toward zero.
	CentroidX int `json:"centroid_x"`
	CentroidY int `json:"centroid_y"`

	// Area is the area enclosed by the blob's outer contour.
	Area float64 `json:"area"`

	// Markable is true when Radius > MarkRadius.
	Markable bool `json:"markable"`
}

// ExtractBlob turns one color mask into at most one detection.
//
// Steps:
//  1. Open the mask (OpenIterations erosions, then dilations) to drop specks.
//  2. Find the outer contour of every connected region.
//  3. Keep the contour with the largest area; the first one found wins ties.
//  4. Fit the minimum enclosing circle and compute the moment centroid.
//
// Returns (nil, nil) when the mask has no regions left after opening, and
// ErrDegenerateBlob when the largest contour has zero area.
func ExtractBlob(mask Mask, color string) (*Detection, error) {
	opened := Open(mask, OpenIterations)

	contours := FindExternalContours(opened)
	if len(contours) == 0 {
		return nil, nil
	}

	best, bestArea := 0, contours[0].Area()
	for i := 1; i < len(contours); i++ {
		if a := contours[i].Area(); a > bestArea {
			best, bestArea = i, a
		}
	}
	return fitBlob(contours[best], color)
}

// fitBlob computes the detection for a selected contour.
func fitBlob(contour Contour, color string) (*Detection, error) {
	moments := ContourMoments(contour)
	cx, cy, ok := moments.Centroid()
	if !ok {
		return nil, errors.Wrapf(ErrDegenerateBlob, "%s contour of %d points", color, len(contour))
	}
	circle := MinEnclosingCircle(contour)

	return &Detection{
		Color:     color,
		X:         circle.X,
		Y:         circle.Y,
		Radius:    circle.Radius,
		CentroidX: cx,
		CentroidY: cy,
		Area:      moments.M00,
		Markable:  circle.Radius > MarkRadius,
	}, nil
}
