package source

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"

	"github.com/ironsheep/ball-info/internal/imaging"
)

// ImageSource replays image files as frames, in lexical path order.
type ImageSource struct {
	paths []string
	next  int
}

// NewImageSource accepts a single image file or a directory. For a directory
// every file with a known image extension is used; subdirectories are not
// walked.
func NewImageSource(path string) (*ImageSource, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrap(err, "open image source")
	}
	if !info.IsDir() {
		return &ImageSource{paths: []string{path}}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, errors.Wrap(err, "list image source")
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !IsImageFile(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(path, e.Name()))
	}
	if len(paths) == 0 {
		return nil, errors.Errorf("no images in %s", path)
	}
	sort.Strings(paths)
	return &ImageSource{paths: paths}, nil
}

// Paths returns the files in replay order.
func (s *ImageSource) Paths() []string {
	return append([]string(nil), s.paths...)
}

// Next decodes the next file. A file that cannot be decoded is reported as
// imaging.ErrInvalidFrame so that callers can skip it and carry on.
func (s *ImageSource) Next(ctx context.Context) (imaging.Frame, error) {
	if err := ctx.Err(); err != nil {
		return imaging.Frame{}, err
	}
	if s.next >= len(s.paths) {
		return imaging.Frame{}, io.EOF
	}
	path := s.paths[s.next]
	s.next++
	f, err := imaging.LoadFrameFile(path)
	if err != nil {
		return imaging.Frame{}, errors.Wrapf(imaging.ErrInvalidFrame, "%s: %v", path, err)
	}
	return f, nil
}

// Close is a no-op.
func (s *ImageSource) Close() error {
	return nil
}
