package change

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"sync"

	"github.com/gogpu/compose"
)

// ErrSinkClosed is returned when sending to a closed sink.
var ErrSinkClosed = errors.New("change: sink closed")

// Sink receives one batch per update pass and must apply its records in
// the given order. Returning an error rejects the whole batch.
type Sink interface {
	Send(ctx context.Context, batch Batch) error
	Close() error
}

// BatchFunc handles a batch in process.
type BatchFunc func(ctx context.Context, batch Batch) error

// Callback delivers batches through a function call.
type Callback struct {
	fn BatchFunc
}

// NewCallback creates a Callback sink. fn may be nil.
func NewCallback(fn BatchFunc) *Callback {
	return &Callback{fn: fn}
}

func (c *Callback) Send(ctx context.Context, batch Batch) error {
	if c.fn != nil {
		return c.fn(ctx, batch)
	}
	return nil
}

func (c *Callback) Close() error { return nil }

// JSONLines writes one JSON envelope per batch to an io.Writer.
type JSONLines struct {
	mu     sync.Mutex
	enc    *json.Encoder
	closed bool
}

// NewJSONLines creates a JSONLines sink. If w is nil, os.Stdout is used.
func NewJSONLines(w io.Writer) *JSONLines {
	if w == nil {
		w = os.Stdout
	}
	return &JSONLines{enc: json.NewEncoder(w)}
}

func (s *JSONLines) Send(_ context.Context, batch Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSinkClosed
	}
	return s.enc.Encode(envelope{Type: "batch", Data: batch})
}

func (s *JSONLines) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

type envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Multi fans batches out to several sinks. Every sink receives the batch;
// failures are logged and the first one is returned.
type Multi struct {
	sinks []Sink
}

// NewMulti creates a fan-out sink.
func NewMulti(sinks ...Sink) *Multi {
	return &Multi{sinks: sinks}
}

func (m *Multi) Send(ctx context.Context, batch Batch) error {
	var firstErr error
	for _, s := range m.sinks {
		if err := s.Send(ctx, batch); err != nil {
			compose.Logger().Warn("change: send batch failed", "seq", batch.Seq, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (m *Multi) Close() error {
	var errs []error
	for _, s := range m.sinks {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}
