package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/crimson-sun/beacon/internal/analytics"
	"github.com/crimson-sun/beacon/internal/logging"
	"github.com/crimson-sun/beacon/internal/model"
)

const (
	defaultBufferSize   = 256
	defaultDrainTimeout = 5 * time.Second
)

// Option configures an Async wrapper.
type Option func(*Async)

// WithBufferSize sets the channel buffer capacity. Default: 256.
func WithBufferSize(n int) Option {
	return func(a *Async) { a.bufSize = n }
}

// WithOnError sets the callback invoked when the inner sink's Write fails.
// Default: logs a warning via slog.
func WithOnError(f func(error)) Option {
	return func(a *Async) { a.errFunc = f }
}

// Async decouples event production from delivery via a buffered channel,
// so a slow sink never blocks the caller's inference path. Events that
// arrive while the buffer is full are dropped — telemetry is best-effort
// and a dropped event is permanently dropped.
type Async struct {
	inner     analytics.Sink
	ch        chan model.InferenceEvent
	done      chan struct{}
	errFunc   func(error)
	log       *slog.Logger
	bufSize   int
	closeOnce sync.Once
}

// New wraps a sink in an async channel-based writer.
// The background drain goroutine starts immediately.
func New(inner analytics.Sink, opts ...Option) *Async {
	a := &Async{
		inner:   inner,
		bufSize: defaultBufferSize,
		log:     logging.Component("async"),
	}
	a.errFunc = func(err error) { a.log.Warn("sink write error", "error", err) }
	for _, opt := range opts {
		opt(a)
	}
	a.ch = make(chan model.InferenceEvent, a.bufSize)
	a.done = make(chan struct{})
	go a.drain()
	return a
}

// Write sends the event into the channel, dropping it when the buffer is
// full. Never blocks and never returns an error for a dropped event.
func (a *Async) Write(_ context.Context, event model.InferenceEvent) error {
	select {
	case a.ch <- event:
	default:
		a.log.Warn("buffer full, dropping event",
			"event", event.Kind, "behavior", event.BehaviorName)
	}
	return nil
}

// Close closes the channel, waits for the drain goroutine to finish
// (with a timeout), then closes the inner sink.
func (a *Async) Close() error {
	var err error
	a.closeOnce.Do(func() {
		close(a.ch)
		select {
		case <-a.done:
		case <-time.After(defaultDrainTimeout):
			a.log.Warn("drain timed out")
		}
		err = a.inner.Close()
	})
	return err
}

// drain reads events from the channel and writes them to the inner sink.
func (a *Async) drain() {
	defer close(a.done)
	for event := range a.ch {
		if err := a.inner.Write(context.Background(), event); err != nil {
			a.errFunc(err)
		}
	}
}
