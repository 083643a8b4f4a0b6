// Package source delivers frames to the detector.
//
// A Source hands out one imaging.Frame per Next call and returns io.EOF when
// the stream is exhausted. Three implementations exist:
//
//   - FFmpegSource runs ffmpeg and decodes its rawvideo rgb24 output. It
//     covers V4L2 cameras, video files and network streams.
//   - RawReader decodes fixed-size rgb24 frames from any io.Reader.
//   - ImageSource replays still images from disk, which is how recorded
//     frames are re-run through the detector.
//
// Open picks between FFmpegSource and ImageSource from the configuration.
package source

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ironsheep/ball-info/internal/config"
	"github.com/ironsheep/ball-info/internal/imaging"
)

// Source produces frames. Implementations are not safe for concurrent use.
type Source interface {
	// Next blocks until a frame is available. It returns io.EOF at the end of
	// the stream and ctx.Err() once the context is done.
	Next(ctx context.Context) (imaging.Frame, error)
	Close() error
}

var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".bmp":  true,
}

// IsImageFile reports whether path has an extension ImageSource can decode.
func IsImageFile(path string) bool {
	return imageExts[strings.ToLower(filepath.Ext(path))]
}

// Open returns the source described by cfg. Directories and image files are
// replayed with ImageSource; everything else goes through ffmpeg.
func Open(ctx context.Context, cfg config.SourceConfig, logger *zap.Logger) (Source, error) {
	if cfg.Input == "" {
		return nil, errors.New("no source input configured")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if info, err := os.Stat(cfg.Input); (err == nil && info.IsDir()) || IsImageFile(cfg.Input) {
		src, err := NewImageSource(cfg.Input)
		if err != nil {
			return nil, err
		}
		logger.Info("replaying images", zap.String("input", cfg.Input), zap.Int("images", len(src.Paths())))
		return src, nil
	}
	return NewFFmpegSource(ctx, FFmpegConfig{
		Input:  cfg.Input,
		Format: cfg.Format,
		Width:  cfg.Width,
		Height: cfg.Height,
		FPS:    cfg.FPS,
	}, logger)
}
