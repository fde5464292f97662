package analytics

import (
	"context"
	"fmt"
	"sync"

	"github.com/crimson-sun/beacon/internal/model"
)

// Status is the advisory outcome of an Emit call. Callers treat emission as
// fire-and-forget; the status exists for sinks' own accounting and tests.
type Status int

const (
	StatusOK Status = iota
	StatusRateLimited
	StatusError
)

// String returns the lowercase name of the status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusRateLimited:
		return "rate_limited"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Sink is a destination for telemetry events.
type Sink interface {
	Write(ctx context.Context, event model.InferenceEvent) error
	Close() error
}

// Service is the analytics collaborator the reporter talks to: an
// enablement check, idempotent event-kind registration, and fire-and-forget
// emission.
type Service interface {
	Enabled() bool
	Register(r model.Registration) error
	Emit(ctx context.Context, event model.InferenceEvent) Status
	Close() error
}

// Option configures a Client.
type Option func(*Client)

// WithEnabled sets the enablement check. Default: enabled whenever the
// client has a sink.
func WithEnabled(f func() bool) Option {
	return func(c *Client) { c.enabled = f }
}

// Client is the default Service implementation: it delivers events to a
// Sink, enforcing each registered kind's hourly budget. A nil sink makes
// the client permanently disabled.
type Client struct {
	sink    Sink
	enabled func() bool

	mu    sync.Mutex
	kinds map[string]*kindLimit
}

// New creates a Client delivering to sink. sink may be nil, in which case
// Enabled reports false and Emit drops everything.
func New(sink Sink, opts ...Option) *Client {
	c := &Client{
		sink:  sink,
		kinds: make(map[string]*kindLimit),
	}
	c.enabled = func() bool { return c.sink != nil }
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enabled reports whether telemetry should be collected at all.
func (c *Client) Enabled() bool {
	return c.enabled()
}

// Register declares an event kind and its budget. Registering the same kind
// name again is a no-op.
func (c *Client) Register(r model.Registration) error {
	if r.Name == "" {
		return fmt.Errorf("analytics: registration requires an event kind name")
	}
	if !c.Enabled() {
		return fmt.Errorf("analytics: disabled")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.kinds[r.Name]; ok {
		return nil
	}
	c.kinds[r.Name] = newKindLimit(r)
	return nil
}

// Emit delivers the event to the sink. Events of unregistered kinds and
// events over their kind's hourly budget are dropped; a dropped event is
// never retried.
func (c *Client) Emit(ctx context.Context, event model.InferenceEvent) Status {
	if c.sink == nil || !c.Enabled() {
		return StatusError
	}

	c.mu.Lock()
	kl, ok := c.kinds[event.Kind]
	c.mu.Unlock()
	if !ok {
		return StatusError
	}
	if !kl.allow() {
		return StatusRateLimited
	}

	if err := c.sink.Write(ctx, event); err != nil {
		return StatusError
	}
	return StatusOK
}

// Close closes the underlying sink.
func (c *Client) Close() error {
	if c.sink == nil {
		return nil
	}
	return c.sink.Close()
}
