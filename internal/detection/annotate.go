package detection

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/ironsheep/ball-info/internal/imaging"
)

var (
	circleColor   = color.RGBA{R: 255, G: 255, A: 255} // yellow
	centroidColor = color.RGBA{R: 255, A: 255}         // red
)

const (
	circleLineWidth = 2
	centroidRadius  = 5
)

// Annotate draws detections onto a copy of the frame.
//
// Each Markable detection gets its enclosing circle, a dot on its centroid and
// its color name in the class's own color. Detections at or below MarkRadius
// are skipped. The frame and the detections are not modified, and the result
// has no bearing on what Detect returns.
func (d *Detector) Annotate(frame imaging.Frame, detections []Detection) (*image.RGBA, error) {
	if err := frame.Validate(); err != nil {
		return nil, err
	}

	img := frame.ToImage()
	dc := gg.NewContextForRGBA(img)
	dc.SetFontFace(basicfont.Face7x13)

	for _, det := range detections {
		if !det.Markable {
			continue
		}

		dc.SetColor(circleColor)
		dc.SetLineWidth(circleLineWidth)
		dc.DrawCircle(det.X, det.Y, det.Radius)
		dc.Stroke()

		dc.SetColor(centroidColor)
		dc.DrawCircle(float64(det.CentroidX), float64(det.CentroidY), centroidRadius)
		dc.Fill()

		label := color.Color(color.White)
		if class, ok := d.table.Lookup(det.Color); ok {
			label = class.Mid().RGB()
		}
		dc.SetColor(label)
		dc.DrawStringAnchored(det.Color, det.X, det.Y-det.Radius-4, 0.5, 0)
	}

	return img, nil
}
