package imaging

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// ErrInvalidFrame is returned when a frame cannot be processed: zero or
// too-small dimensions, an unknown pixel layout, or a pixel buffer whose
// length does not match the declared geometry.
var ErrInvalidFrame = errors.New("invalid frame")

// MinFrameDimension is the smallest accepted width and height.
const MinFrameDimension = 2

// PixelLayout describes how the channels of a pixel are stored in Frame.Pix.
//
// Only red-first layouts exist on purpose. Camera drivers that deliver BGR must
// be converted before the frame reaches the detector (ffmpeg does this for us
// with pix_fmt=rgb24).
type PixelLayout int

const (
	// LayoutRGB stores 3 bytes per pixel in R, G, B order.
	LayoutRGB PixelLayout = iota + 1
	// LayoutRGBA stores 4 bytes per pixel in R, G, B, A order. Alpha is ignored.
	LayoutRGBA
)

// Channels returns the number of bytes per pixel, or 0 for an unknown layout.
func (l PixelLayout) Channels() int {
	switch l {
	case LayoutRGB:
		return 3
	case LayoutRGBA:
		return 4
	default:
		return 0
	}
}

func (l PixelLayout) String() string {
	switch l {
	case LayoutRGB:
		return "rgb"
	case LayoutRGBA:
		return "rgba"
	default:
		return "unknown"
	}
}

// Frame is a single video frame as a tightly packed, row-major pixel buffer.
//
// The detector never retains a Frame past the call it was passed to and never
// writes to Pix, so callers may reuse the buffer once the call returns.
type Frame struct {
	Width  int
	Height int
	Layout PixelLayout
	Pix    []byte
}

// NewFrame allocates a zeroed RGB frame.
func NewFrame(width, height int) Frame {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return Frame{
		Width:  width,
		Height: height,
		Layout: LayoutRGB,
		Pix:    make([]byte, width*height*3),
	}
}

// Validate checks the frame geometry against its buffer.
//
// Every failure wraps ErrInvalidFrame so callers can test with errors.Is.
func (f Frame) Validate() error {
	if f.Width < MinFrameDimension || f.Height < MinFrameDimension {
		return errors.Wrapf(ErrInvalidFrame, "dimensions %dx%d below minimum %dx%d",
			f.Width, f.Height, MinFrameDimension, MinFrameDimension)
	}
	ch := f.Layout.Channels()
	if ch == 0 {
		return errors.Wrapf(ErrInvalidFrame, "unsupported pixel layout %d", int(f.Layout))
	}
	if want := f.Width * f.Height * ch; len(f.Pix) != want {
		return errors.Wrapf(ErrInvalidFrame, "buffer holds %d bytes, %dx%d %s needs %d",
			len(f.Pix), f.Width, f.Height, f.Layout, want)
	}
	return nil
}

// RGBAt returns the color components at (x, y). No bounds checking is
// performed; caller must ensure coordinates are valid.
func (f Frame) RGBAt(x, y int) (r, g, b uint8) {
	ch := f.Layout.Channels()
	i := (y*f.Width + x) * ch
	return f.Pix[i], f.Pix[i+1], f.Pix[i+2]
}

// SetRGB writes the color components at (x, y). Out of range coordinates are
// ignored.
func (f Frame) SetRGB(x, y int, r, g, b uint8) {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return
	}
	ch := f.Layout.Channels()
	i := (y*f.Width + x) * ch
	f.Pix[i], f.Pix[i+1], f.Pix[i+2] = r, g, b
	if ch == 4 {
		f.Pix[i+3] = 0xff
	}
}

// FrameFromImage converts any image into an RGB frame.
//
// The image is first normalised to NRGBA with imaging.Clone, which also moves
// the origin to (0, 0). Alpha is dropped, not premultiplied.
func FrameFromImage(img image.Image) Frame {
	src := imaging.Clone(img)
	b := src.Bounds()
	f := NewFrame(b.Dx(), b.Dy())
	for y := 0; y < f.Height; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+f.Width*4]
		out := f.Pix[y*f.Width*3 : (y+1)*f.Width*3]
		for x := 0; x < f.Width; x++ {
			out[x*3] = row[x*4]
			out[x*3+1] = row[x*4+1]
			out[x*3+2] = row[x*4+2]
		}
	}
	return f
}

// ToImage copies the frame into a new opaque RGBA image.
func (f Frame) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	ch := f.Layout.Channels()
	if ch == 0 {
		return img
	}
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			i := (y*f.Width + x) * ch
			if i+2 >= len(f.Pix) {
				return img
			}
			img.SetRGBA(x, y, color.RGBA{R: f.Pix[i], G: f.Pix[i+1], B: f.Pix[i+2], A: 0xff})
		}
	}
	return img
}
