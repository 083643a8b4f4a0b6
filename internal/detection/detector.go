package detection

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ironsheep/ball-info/internal/imaging"
)

// ErrInvalidFrame is the same value as imaging.ErrInvalidFrame, re-exported so
// callers of this package need not import imaging to test for it.
var ErrInvalidFrame = imaging.ErrInvalidFrame

// Detector finds the largest blob of each configured color in a frame.
//
// A Detector is immutable after construction and keeps no state between
// calls, so one instance can serve several goroutines.
type Detector struct {
	table  ColorTable
	logger *zap.Logger
}

// Option configures a Detector.
type Option func(*Detector)

// WithLogger sets the logger used for per-color debug messages. The default
// discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Detector) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDetector validates the color table and returns a detector for it. The
// table is copied; later changes to the argument have no effect.
func NewDetector(table ColorTable, opts ...Option) (*Detector, error) {
	if err := table.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid color table")
	}
	d := &Detector{
		table:  append(ColorTable(nil), table...),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Classes returns a copy of the color table in detection order.
func (d *Detector) Classes() ColorTable {
	return append(ColorTable(nil), d.table...)
}

// Detect segments the frame and extracts at most one blob per color class.
//
// Detections are returned in color table order; colors with no blob, or
// whose blob is degenerate, are left out. The only error is ErrInvalidFrame
// (wrapped), in which case the caller should skip the frame.
func (d *Detector) Detect(frame imaging.Frame) ([]Detection, error) {
	masks, err := Segment(frame, d.table)
	if err != nil {
		return nil, err
	}

	detections := make([]Detection, 0, len(masks))
	for i, mask := range masks {
		name := d.table[i].Name
		det, err := ExtractBlob(mask, name)
		if err != nil {
			// ErrDegenerateBlob is the only error ExtractBlob returns; one bad
			// color must not cost the others.
			d.logger.Debug("discarding blob", zap.String("color", name), zap.Error(err))
			continue
		}
		if det == nil {
			continue
		}
		detections = append(detections, *det)
	}
	return detections, nil
}

// Mask returns the opened mask for a single color class, the same mask
// ExtractBlob searches for contours. It is meant for calibration tooling.
func (d *Detector) Mask(frame imaging.Frame, color string) (Mask, error) {
	class, ok := d.table.Lookup(color)
	if !ok {
		return Mask{}, errors.Errorf("unknown color class %q", color)
	}
	masks, err := Segment(frame, ColorTable{class})
	if err != nil {
		return Mask{}, err
	}
	return Open(masks[0], OpenIterations), nil
}
