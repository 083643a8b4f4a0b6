package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"

	"github.com/fogleman/gg"
	"github.com/pkg/errors"
	"golang.org/x/image/font/basicfont"
)

// DefaultGridSpacing is the line spacing used when none is given.
const DefaultGridSpacing = 50

// GridOverlay draws a labelled coordinate grid over a copy of img.
//
// It is a calibration aid: the labels give the pixel coordinates to pass to
// SampleHSV when picking class bounds off a captured frame.
//
// Parameters:
//   - img: Source image, not modified
//   - spacing: Distance between grid lines in pixels (<= 0 uses DefaultGridSpacing)
//   - labels: Whether to print "x,y" at each intersection
//   - lineHex: Line color as "#RRGGBB" or "#RRGGBBAA"; invalid values fall
//     back to semi-transparent red
//
// Returns the overlaid image with its origin at (0, 0).
func GridOverlay(img image.Image, spacing int, labels bool, lineHex string) *image.RGBA {
	if spacing <= 0 {
		spacing = DefaultGridSpacing
	}
	lineColor, err := ParseHexColor(lineHex)
	if err != nil {
		lineColor = color.NRGBA{R: 255, A: 128}
	}

	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	dc := gg.NewContextForRGBA(dst)

	w, h := dc.Width(), dc.Height()
	dc.SetColor(lineColor)
	dc.SetLineWidth(1)
	for x := spacing; x < w; x += spacing {
		dc.DrawLine(float64(x)+0.5, 0, float64(x)+0.5, float64(h))
	}
	for y := spacing; y < h; y += spacing {
		dc.DrawLine(0, float64(y)+0.5, float64(w), float64(y)+0.5)
	}
	dc.Stroke()

	if labels {
		dc.SetFontFace(basicfont.Face7x13)
		for y := spacing; y < h; y += spacing {
			for x := spacing; x < w; x += spacing {
				label := fmt.Sprintf("%d,%d", x, y)
				tw, th := dc.MeasureString(label)
				dc.SetRGBA(0, 0, 0, 0.7)
				dc.DrawRectangle(float64(x+2), float64(y+2), tw+2, th+2)
				dc.Fill()
				dc.SetRGB(1, 1, 1)
				dc.DrawStringAnchored(label, float64(x+3), float64(y+3), 0, 1)
			}
		}
	}

	return dst
}

// ParseHexColor parses "#RRGGBB" or "#RRGGBBAA"; the leading '#' is optional.
// The alpha byte is straight, not premultiplied.
func ParseHexColor(hex string) (color.NRGBA, error) {
	if len(hex) > 0 && hex[0] == '#' {
		hex = hex[1:]
	}
	if len(hex) != 6 && len(hex) != 8 {
		return color.NRGBA{}, errors.Errorf("invalid hex color %q", hex)
	}
	val, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, errors.Wrapf(err, "invalid hex color %q", hex)
	}
	if len(hex) == 6 {
		return color.NRGBA{R: uint8(val >> 16), G: uint8(val >> 8), B: uint8(val), A: 255}, nil
	}
	return color.NRGBA{R: uint8(val >> 24), G: uint8(val >> 16), B: uint8(val >> 8), A: uint8(val)}, nil
}
