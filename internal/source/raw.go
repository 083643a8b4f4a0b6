package source

import (
	"context"
	"io"

	"github.com/pkg/errors"

	"github.com/ironsheep/ball-info/internal/imaging"
)

// RawReader decodes a stream of packed rgb24 frames of a fixed size, the
// format ffmpeg writes for -f rawvideo -pix_fmt rgb24.
type RawReader struct {
	r      io.Reader
	width  int
	height int
}

// NewRawReader reads width x height frames from r. If r is an io.Closer,
// Close closes it.
func NewRawReader(r io.Reader, width, height int) (*RawReader, error) {
	if width < imaging.MinFrameDimension || height < imaging.MinFrameDimension {
		return nil, errors.Errorf("raw frame size %dx%d below minimum", width, height)
	}
	return &RawReader{r: r, width: width, height: height}, nil
}

// FrameSize is the number of bytes in one frame.
func (rr *RawReader) FrameSize() int {
	return rr.width * rr.height * imaging.LayoutRGB.Channels()
}

// Next reads the next full frame. A trailing partial frame is dropped and
// reported as io.EOF.
func (rr *RawReader) Next(ctx context.Context) (imaging.Frame, error) {
	if err := ctx.Err(); err != nil {
		return imaging.Frame{}, err
	}
	f := imaging.NewFrame(rr.width, rr.height)
	if _, err := io.ReadFull(rr.r, f.Pix); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return imaging.Frame{}, io.EOF
		}
		return imaging.Frame{}, err
	}
	return f, nil
}

// Close closes the underlying reader when it supports it.
func (rr *RawReader) Close() error {
	if c, ok := rr.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
