package imaging

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
)

// HueMax is the largest hue value in the 8-bit HSV convention used throughout
// this module. Hue is stored as degrees/2 so the full circle fits in a byte.
const HueMax = 179

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// HSV represents a color in the 8-bit HSV convention popularised by OpenCV.
//
// Component ranges:
//   - H: 0-179 (degrees divided by two; 0=red, 60=green, 120=blue)
//   - S: 0-255 (0=gray, 255=fully saturated)
//   - V: 0-255 (0=black, 255=brightest)
//
// Values come from rounding the floating-point conversion, so each component is
// within one unit of what OpenCV's fixed-point COLOR_RGB2HSV produces for the
// same pixel (hue compared around the circle).
//
// Color class bounds are expressed in this space, so HSV values sampled from a
// frame can be pasted straight into the configuration.
type HSV struct {
	H uint8 `json:"h"`
	S uint8 `json:"s"`
	V uint8 `json:"v"`
}

// String formats the triple the way it appears in configuration files.
func (c HSV) String() string {
	return fmt.Sprintf("[%d, %d, %d]", c.H, c.S, c.V)
}

// RGB converts the HSV triple back to an opaque RGBA color.
//
// The round trip through RGBToHSV is exact to within one unit per channel.
func (c HSV) RGB() color.RGBA {
	col := colorful.Hsv(float64(c.H)*2, float64(c.S)/255, float64(c.V)/255).Clamped()
	r, g, b := col.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

// RGBToHSV converts 8-bit RGB components to 8-bit HSV.
//
// go-colorful produces hue in degrees [0, 360) and saturation/value in [0, 1].
// These are scaled and rounded to the byte convention: hue is halved and wraps
// at 180, so a hue of 359 degrees maps to 0 rather than 180.
func RGBToHSV(r, g, b uint8) HSV {
	h, s, v := colorful.Color{
		R: float64(r) / 255,
		G: float64(g) / 255,
		B: float64(b) / 255,
	}.Hsv()

	hue := int(math.Round(h / 2))
	if hue > HueMax {
		hue -= HueMax + 1
	}
	return HSV{
		H: uint8(hue),
		S: uint8(math.Round(s * 255)),
		V: uint8(math.Round(v * 255)),
	}
}

// ToHSV converts every pixel of a frame to HSV.
//
// The result is row-major with one entry per pixel. The frame must already be
// valid; ToHSV does not check it.
func ToHSV(f Frame) []HSV {
	out := make([]HSV, f.Width*f.Height)
	ch := f.Layout.Channels()
	for i := range out {
		p := f.Pix[i*ch : i*ch+3]
		out[i] = RGBToHSV(p[0], p[1], p[2])
	}
	return out
}

// HSVSample is the color at a single pixel in both RGB and HSV form.
type HSVSample struct {
	X   int      `json:"x"`   // X coordinate that was sampled
	Y   int      `json:"y"`   // Y coordinate that was sampled
	Hex string   `json:"hex"` // Hex format "#RRGGBB"
	RGB RGBColor `json:"rgb"` // RGB components
	HSV HSV      `json:"hsv"` // 8-bit HSV, same convention as color class bounds
}

// SampleHSV extracts the color at a pixel coordinate.
//
// It is meant for calibrating color class bounds: point it at a ball in a
// captured frame and copy the HSV triple into the configuration with some
// margin on each side.
//
// Returns an error if (x, y) lies outside the image bounds.
func SampleHSV(img image.Image, x, y int) (*HSVSample, error) {
	bounds := img.Bounds()
	if x < bounds.Min.X || x >= bounds.Max.X || y < bounds.Min.Y || y >= bounds.Max.Y {
		return nil, errors.Errorf("coordinates (%d,%d) outside image bounds", x, y)
	}

	r, g, b, _ := img.At(x, y).RGBA()
	// Convert from 16-bit to 8-bit
	r8, g8, b8 := uint8(r>>8), uint8(g>>8), uint8(b>>8)

	return &HSVSample{
		X:   x,
		Y:   y,
		Hex: fmt.Sprintf("#%02X%02X%02X", r8, g8, b8),
		RGB: RGBColor{R: r8, G: g8, B: b8},
		HSV: RGBToHSV(r8, g8, b8),
	}, nil
}
