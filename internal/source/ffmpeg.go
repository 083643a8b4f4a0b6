package source

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapio"

	"github.com/ironsheep/ball-info/internal/imaging"
)

// FFmpegConfig describes the ffmpeg input and the frame geometry it is
// converted to.
type FFmpegConfig struct {
	// Input is anything ffmpeg can open: /dev/video0, a file, an rtsp URL.
	Input string
	// Format is the ffmpeg input format (-f), e.g. v4l2. Empty lets ffmpeg detect it.
	Format string
	// Width and Height are the output frame size; ffmpeg scales to it.
	Width  int
	Height int
	// FPS limits the output frame rate. Zero keeps the input rate.
	FPS int
}

// Validate checks the geometry.
func (c FFmpegConfig) Validate() error {
	if c.Input == "" {
		return errors.New("ffmpeg input is empty")
	}
	if c.Width < imaging.MinFrameDimension || c.Height < imaging.MinFrameDimension {
		return errors.Errorf("ffmpeg frame size %dx%d below minimum", c.Width, c.Height)
	}
	if c.FPS < 0 {
		return errors.Errorf("negative fps %d", c.FPS)
	}
	return nil
}

// stream builds the ffmpeg graph: the configured input decoded to packed
// rgb24 at the configured size on stdout.
func (c FFmpegConfig) stream() *ffmpeg.Stream {
	in := ffmpeg.KwArgs{}
	if c.Format != "" {
		in["format"] = c.Format
	}
	out := ffmpeg.KwArgs{
		"format":  "rawvideo",
		"pix_fmt": "rgb24",
		"s":       fmt.Sprintf("%dx%d", c.Width, c.Height),
	}
	if c.FPS > 0 {
		out["r"] = strconv.Itoa(c.FPS)
	}
	return ffmpeg.Input(c.Input, in).Output("pipe:1", out)
}

// FFmpegSource reads frames from an ffmpeg child process.
//
// ffmpeg runs in its own goroutine and writes into an io.Pipe that a
// RawReader decodes. Cancelling the context passed to NewFFmpegSource or to
// Next, or calling Close, kills the process and unblocks any pending Next.
type FFmpegSource struct {
	reader *RawReader
	pipe   *io.PipeReader
	cancel context.CancelFunc
	done   chan struct{}
	ctx    context.Context
	logger *zap.Logger

	mu     sync.Mutex
	runErr error
}

// NewFFmpegSource starts ffmpeg. It returns once the process is launched, not
// when the first frame arrives.
func NewFFmpegSource(ctx context.Context, cfg FFmpegConfig, logger *zap.Logger) (*FFmpegSource, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("ffmpeg")

	ctx, cancel := context.WithCancel(ctx)
	pr, pw := io.Pipe()
	reader, err := NewRawReader(pr, cfg.Width, cfg.Height)
	if err != nil {
		cancel()
		return nil, err
	}

	s := &FFmpegSource{
		reader: reader,
		pipe:   pr,
		cancel: cancel,
		done:   make(chan struct{}),
		ctx:    ctx,
		logger: logger,
	}

	stderr := &zapio.Writer{Log: logger, Level: zap.DebugLevel}
	stream := cfg.stream().WithOutput(pw).WithErrorOutput(stderr)
	stream.Context = ctx

	logger.Info("starting ffmpeg",
		zap.String("input", cfg.Input),
		zap.String("format", cfg.Format),
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
		zap.Int("fps", cfg.FPS),
		zap.Int("frame_bytes", reader.FrameSize()))

	go func() {
		defer close(s.done)
		defer stderr.Close()
		err := stream.Run()
		if err != nil && ctx.Err() == nil {
			s.mu.Lock()
			s.runErr = errors.Wrap(err, "ffmpeg")
			s.mu.Unlock()
			logger.Warn("ffmpeg exited", zap.Error(err))
		}
		// A nil error closes the pipe with io.EOF.
		pw.CloseWithError(s.err())
	}()

	return s, nil
}

func (s *FFmpegSource) err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runErr
}

// Next returns the next decoded frame. If ctx ends while Next is blocked on
// the pipe, ffmpeg is stopped and Next returns ctx.Err(); the source is
// finished after that.
func (s *FFmpegSource) Next(ctx context.Context) (imaging.Frame, error) {
	stop := context.AfterFunc(ctx, func() {
		s.pipe.CloseWithError(ctx.Err())
		s.cancel()
	})
	defer stop()

	f, err := s.reader.Next(ctx)
	if err == nil {
		return f, nil
	}
	if ctx.Err() != nil {
		return imaging.Frame{}, ctx.Err()
	}
	if s.ctx.Err() != nil {
		return imaging.Frame{}, s.ctx.Err()
	}
	return imaging.Frame{}, err
}

// Close stops ffmpeg and waits for it to exit.
func (s *FFmpegSource) Close() error {
	s.cancel()
	s.pipe.Close()
	<-s.done
	return nil
}
