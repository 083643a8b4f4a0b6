// Package publisher delivers detection results to consumers.
//
// One Message is built per processed frame. It carries the ball list in the
// shape the robot's consumers already expect (color plus integer pixel
// position and radius) and is handed to every configured Publisher: a JSON
// lines writer, the websocket Hub, or both through Multi.
package publisher

import (
	"context"
	"time"

	"go.uber.org/multierr"

	"github.com/ironsheep/ball-info/internal/detection"
)

// BallInfo is one detected ball on the wire. Values are truncated toward
// zero from the detector's floating point results.
type BallInfo struct {
	Color  string `json:"color"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Radius int    `json:"radius"`
}

// Message is everything published for one frame.
type Message struct {
	Seq   uint64     `json:"seq"`
	Time  time.Time  `json:"time"`
	Balls []BallInfo `json:"balls"`
}

// NewMessage converts detections to a message. Position and radius come from
// the enclosing circle. Balls is never nil so it encodes as [].
func NewMessage(seq uint64, t time.Time, detections []detection.Detection) Message {
	balls := make([]BallInfo, 0, len(detections))
	for _, d := range detections {
		balls = append(balls, BallInfo{
			Color:  d.Color,
			X:      int(d.X),
			Y:      int(d.Y),
			Radius: int(d.Radius),
		})
	}
	return Message{Seq: seq, Time: t, Balls: balls}
}

// Publisher sends a message somewhere. Implementations must be safe for
// concurrent use.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
}

// Multi publishes to every publisher in order. All publishers are tried even
// when one fails; the failures are combined.
type Multi []Publisher

// Publish implements Publisher.
func (m Multi) Publish(ctx context.Context, msg Message) error {
	var err error
	for _, p := range m {
		err = multierr.Append(err, p.Publish(ctx, msg))
	}
	return err
}

// Func adapts a function to Publisher.
type Func func(ctx context.Context, msg Message) error

// Publish implements Publisher.
func (f Func) Publish(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}
