// Package node runs the detection loop: frames from a source go through the
// detector and the results go to the publishers, one frame at a time.
package node

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ironsheep/ball-info/internal/detection"
	"github.com/ironsheep/ball-info/internal/imaging"
	"github.com/ironsheep/ball-info/internal/publisher"
	"github.com/ironsheep/ball-info/internal/source"
)

// Node wires a source to a detector and a set of publishers.
type Node struct {
	Source     source.Source
	Detector   *detection.Detector
	Publishers []publisher.Publisher
	Logger     *zap.Logger

	// PublishEmpty publishes a message for frames without detections too.
	// By default only frames with at least one ball are published.
	PublishEmpty bool

	// AnnotateDir, when set, receives an annotated PNG of every
	// AnnotateEvery-th frame. Failures are logged and otherwise ignored.
	AnnotateDir   string
	AnnotateEvery int

	// Now stamps messages; time.Now when nil.
	Now func() time.Time

	frames     atomic.Uint64
	skipped    atomic.Uint64
	published  atomic.Uint64
	detections atomic.Uint64
	annotated  atomic.Uint64
}

// Stats counts what the node has done so far.
type Stats struct {
	Frames     uint64 `json:"frames"`
	Skipped    uint64 `json:"skipped"`
	Published  uint64 `json:"published"`
	Detections uint64 `json:"detections"`
	Annotated  uint64 `json:"annotated"`
}

// Stats may be called while Run is in progress.
func (n *Node) Stats() Stats {
	return Stats{
		Frames:     n.frames.Load(),
		Skipped:    n.skipped.Load(),
		Published:  n.published.Load(),
		Detections: n.detections.Load(),
		Annotated:  n.annotated.Load(),
	}
}

// Run processes frames until the source is exhausted, the context is done or
// the source fails.
//
// Invalid frames are logged and skipped. Publish errors are logged and do
// not stop the loop. Run returns nil at the end of the stream and ctx.Err()
// on cancellation.
func (n *Node) Run(ctx context.Context) error {
	if n.Source == nil || n.Detector == nil {
		return errors.New("node needs a source and a detector")
	}
	logger := n.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := n.Now
	if now == nil {
		now = time.Now
	}
	pub := publisher.Multi(n.Publishers)

	var seq uint64
	for {
		frame, err := n.Source.Next(ctx)
		switch {
		case err == nil:
		case ctx.Err() != nil:
			return ctx.Err()
		case errors.Is(err, io.EOF):
			logger.Info("source exhausted", zap.Uint64("frames", n.frames.Load()))
			return nil
		case errors.Is(err, imaging.ErrInvalidFrame):
			n.skipped.Add(1)
			logger.Warn("skipping frame", zap.Error(err))
			continue
		default:
			return errors.Wrap(err, "read frame")
		}

		index := n.frames.Add(1)
		dets, err := n.Detector.Detect(frame)
		if err != nil {
			n.skipped.Add(1)
			logger.Warn("skipping frame", zap.Uint64("frame", index), zap.Error(err))
			continue
		}
		n.detections.Add(uint64(len(dets)))

		if n.AnnotateDir != "" && n.AnnotateEvery > 0 && index%uint64(n.AnnotateEvery) == 0 {
			n.annotate(logger, index, frame, dets)
		}

		if len(dets) == 0 && !n.PublishEmpty {
			continue
		}
		seq++
		msg := publisher.NewMessage(seq, now(), dets)
		if err := pub.Publish(ctx, msg); err != nil {
			logger.Warn("publish failed", zap.Uint64("seq", seq), zap.Error(err))
			continue
		}
		n.published.Add(1)
		logger.Debug("published", zap.Uint64("seq", seq), zap.Int("balls", len(msg.Balls)))
	}
}

func (n *Node) annotate(logger *zap.Logger, index uint64, frame imaging.Frame, dets []detection.Detection) {
	img, err := n.Detector.Annotate(frame, dets)
	if err != nil {
		logger.Debug("annotate failed", zap.Uint64("frame", index), zap.Error(err))
		return
	}
	path := filepath.Join(n.AnnotateDir, fmt.Sprintf("frame-%06d.png", index))
	if err := imaging.SavePNG(path, img); err != nil {
		logger.Warn("annotate failed", zap.String("path", path), zap.Error(err))
		return
	}
	n.annotated.Add(1)
}
