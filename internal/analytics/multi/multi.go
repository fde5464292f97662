package multi

import (
	"context"
	"errors"

	"github.com/crimson-sun/beacon/internal/analytics"
	"github.com/crimson-sun/beacon/internal/model"
)

// Multi fans out telemetry events to multiple sinks. Each Write call
// delivers the event to every wrapped sink sequentially. If one sink
// fails, the remaining sinks still receive the event.
type Multi struct {
	sinks []analytics.Sink
}

// New creates a Multi that fans out to the given sinks.
func New(sinks ...analytics.Sink) *Multi {
	return &Multi{sinks: sinks}
}

// Write delivers the event to every wrapped sink. Errors are collected
// but do not prevent delivery to subsequent sinks.
func (m *Multi) Write(ctx context.Context, event model.InferenceEvent) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Write(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close calls Close on every wrapped sink, collecting errors.
func (m *Multi) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
