package publisher

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/pkg/errors"
)

// JSONLines writes each message as one JSON object followed by a newline.
type JSONLines struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewJSONLines writes to w. Writes are serialised, so w need not be safe for
// concurrent use.
func NewJSONLines(w io.Writer) *JSONLines {
	return &JSONLines{enc: json.NewEncoder(w)}
}

// Publish implements Publisher.
func (j *JSONLines) Publish(_ context.Context, msg Message) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.enc.Encode(msg); err != nil {
		return errors.Wrap(err, "write json line")
	}
	return nil
}
