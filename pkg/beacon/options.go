package beacon

import (
	"time"

	"github.com/crimson-sun/beacon/internal/analytics"
	"github.com/crimson-sun/beacon/internal/model"
)

type options struct {
	sinkName     string
	sinkTarget   string
	sinkHeaders  map[string]string
	mirrorName   string
	mirrorTarget string
	async        bool
	enabled      func() bool
	service      analytics.Service
	reg          model.Registration
	version      string
	clock        func() time.Time
}

// Option configures a Reporter.
type Option func(*options)

// WithSink selects the analytics sink by name ("stdout", "jsonl",
// "webhook") and its target (file path or URL; ignored by stdout).
// Without a sink the Reporter is permanently disabled.
func WithSink(name, target string) Option {
	return func(o *options) {
		o.sinkName = name
		o.sinkTarget = target
	}
}

// WithMirrorSink adds a secondary sink that receives a copy of every
// event, e.g. a local jsonl audit trail alongside a webhook primary.
// Mirror failures do not affect primary delivery.
func WithMirrorSink(name, target string) Option {
	return func(o *options) {
		o.mirrorName = name
		o.mirrorTarget = target
	}
}

// WithAsyncDelivery moves sink writes onto a background goroutine so a
// slow sink never blocks the caller. Events that arrive while the
// delivery buffer is full are dropped.
func WithAsyncDelivery() Option {
	return func(o *options) { o.async = true }
}

// WithSinkHeaders sets transport headers attached by sinks that support
// them (the webhook sink sends these with every POST).
func WithSinkHeaders(h map[string]string) Option {
	return func(o *options) { o.sinkHeaders = h }
}

// WithEnabled sets the host-level telemetry enablement check, consulted on
// every Report call before any other work.
func WithEnabled(f func() bool) Option {
	return func(o *options) { o.enabled = f }
}

// WithEventKind overrides the registered event kind name.
// Default: "beacon.inference_model_set".
func WithEventKind(name string) Option {
	return func(o *options) { o.reg.Name = name }
}

// WithEventBudget sets the hourly event budget and payload element cap
// registered with the analytics service. Defaults: 1000 and 1000.
func WithEventBudget(maxPerHour, maxElements int) Option {
	return func(o *options) {
		o.reg.MaxPerHour = maxPerHour
		o.reg.MaxElements = maxElements
	}
}

// WithVendorKey sets the vendor key the backend files events under.
// Default: "crimson-sun.beacon".
func WithVendorKey(key string) Option {
	return func(o *options) { o.reg.VendorKey = key }
}

// WithVersion overrides the package version stamped on every event.
func WithVersion(v string) Option {
	return func(o *options) { o.version = v }
}

// WithClock overrides the event timestamp source. Intended for tests.
func WithClock(f func() time.Time) Option {
	return func(o *options) { o.clock = f }
}

// withService injects a Service directly, bypassing sink resolution.
// Used by tests.
func withService(svc analytics.Service) Option {
	return func(o *options) { o.service = svc }
}

func defaultOptions() options {
	return options{
		reg: model.Registration{
			Name:        "beacon.inference_model_set",
			MaxPerHour:  1000,
			MaxElements: 1000,
			VendorKey:   "crimson-sun.beacon",
		},
		version: Version,
		clock:   time.Now,
	}
}
