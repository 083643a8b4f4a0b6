package imaging

import (
	"image"
	"image/color"
	"testing"

	"github.com/pkg/errors"
)

func TestFrame_Validate(t *testing.T) {
	tests := []struct {
		name    string
		frame   Frame
		wantErr bool
	}{
		{"rgb ok", NewFrame(4, 3), false},
		{"rgba ok", Frame{Width: 2, Height: 2, Layout: LayoutRGBA, Pix: make([]byte, 16)}, false},
		{"minimum size", NewFrame(2, 2), false},
		{"zero", NewFrame(0, 0), true},
		{"one by one", NewFrame(1, 1), true},
		{"one row", NewFrame(10, 1), true},
		{"negative", Frame{Width: -2, Height: 2, Layout: LayoutRGB}, true},
		{"unknown layout", Frame{Width: 2, Height: 2, Pix: make([]byte, 12)}, true},
		{"short buffer", Frame{Width: 2, Height: 2, Layout: LayoutRGB, Pix: make([]byte, 11)}, true},
		{"long buffer", Frame{Width: 2, Height: 2, Layout: LayoutRGB, Pix: make([]byte, 16)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.frame.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidFrame) {
					t.Errorf("Validate() = %v, want ErrInvalidFrame", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestPixelLayout(t *testing.T) {
	if LayoutRGB.Channels() != 3 || LayoutRGBA.Channels() != 4 || PixelLayout(0).Channels() != 0 {
		t.Error("unexpected channel counts")
	}
	if LayoutRGB.String() != "rgb" || LayoutRGBA.String() != "rgba" || PixelLayout(9).String() != "unknown" {
		t.Error("unexpected layout names")
	}
}

func TestFrame_SetRGBAndRGBAt(t *testing.T) {
	f := NewFrame(3, 2)
	f.SetRGB(2, 1, 10, 20, 30)
	f.SetRGB(3, 0, 1, 1, 1)  // ignored
	f.SetRGB(-1, 0, 1, 1, 1) // ignored

	r, g, b := f.RGBAt(2, 1)
	if r != 10 || g != 20 || b != 30 {
		t.Errorf("RGBAt(2,1) = (%d,%d,%d), want (10,20,30)", r, g, b)
	}
	if i := (1*3 + 2) * 3; f.Pix[i] != 10 {
		t.Errorf("pixel stored at wrong offset")
	}

	rgba := Frame{Width: 2, Height: 2, Layout: LayoutRGBA, Pix: make([]byte, 16)}
	rgba.SetRGB(1, 1, 5, 6, 7)
	if got := rgba.Pix[12:16]; got[0] != 5 || got[1] != 6 || got[2] != 7 || got[3] != 255 {
		t.Errorf("RGBA pixel = %v, want [5 6 7 255]", got)
	}
}

func TestFrameFromImage(t *testing.T) {
	img := createPatternImage(10, 8)

	f := FrameFromImage(img)
	if f.Width != 10 || f.Height != 8 || f.Layout != LayoutRGB {
		t.Fatalf("got %dx%d %s, want 10x8 rgb", f.Width, f.Height, f.Layout)
	}
	if err := f.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}

	if r, g, b := f.RGBAt(0, 0); r != 255 || g != 0 || b != 0 {
		t.Errorf("top-left = (%d,%d,%d), want red", r, g, b)
	}
	if r, g, b := f.RGBAt(9, 7); r != 255 || g != 255 || b != 255 {
		t.Errorf("bottom-right = (%d,%d,%d), want white", r, g, b)
	}
}

func TestFrameFromImage_OffsetBounds(t *testing.T) {
	img := image.NewRGBA(image.Rect(5, 5, 9, 8))
	img.Set(5, 5, color.RGBA{0, 0, 255, 255})

	f := FrameFromImage(img)
	if f.Width != 4 || f.Height != 3 {
		t.Fatalf("got %dx%d, want 4x3", f.Width, f.Height)
	}
	if _, _, b := f.RGBAt(0, 0); b != 255 {
		t.Error("origin was not moved to (0,0)")
	}
}

func TestFrame_ToImage(t *testing.T) {
	f := NewFrame(3, 3)
	f.SetRGB(1, 2, 200, 100, 50)

	img := f.ToImage()
	if img.Bounds() != image.Rect(0, 0, 3, 3) {
		t.Fatalf("bounds = %v", img.Bounds())
	}
	if got := img.RGBAAt(1, 2); got != (color.RGBA{200, 100, 50, 255}) {
		t.Errorf("pixel = %v", got)
	}

	img.SetRGBA(0, 0, color.RGBA{1, 2, 3, 255})
	if f.Pix[0] != 0 {
		t.Error("ToImage must copy the pixels")
	}
}
