package beacon

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/crimson-sun/beacon/internal/analytics"
	"github.com/crimson-sun/beacon/internal/analytics/async"
	"github.com/crimson-sun/beacon/internal/analytics/multi"
	"github.com/crimson-sun/beacon/internal/dedup"
	"github.com/crimson-sun/beacon/internal/fingerprint"
	"github.com/crimson-sun/beacon/internal/metrics"
	"github.com/crimson-sun/beacon/internal/model"

	// Register builtin sinks.
	_ "github.com/crimson-sun/beacon/internal/analytics/jsonl"
	_ "github.com/crimson-sun/beacon/internal/analytics/stdout"
	_ "github.com/crimson-sun/beacon/internal/analytics/webhook"
)

// Version is stamped on every emitted event.
const Version = "0.1.0"

// Result reports what Report did with a model.
type Result int

const (
	// ResultSent means an event was handed to the analytics service.
	// Whatever the service then does with it (rate limiting, transport
	// failure) is not surfaced — emission is fire-and-forget.
	ResultSent Result = iota

	// ResultSkippedDisabled means telemetry is off or the analytics
	// service rejected registration. No work was done.
	ResultSkippedDisabled

	// ResultSkippedDuplicate means this model instance was already
	// reported by this Reporter.
	ResultSkippedDuplicate
)

// String returns the lowercase name of the result.
func (r Result) String() string {
	switch r {
	case ResultSent:
		return "sent"
	case ResultSkippedDisabled:
		return "skipped_disabled"
	case ResultSkippedDuplicate:
		return "skipped_duplicate"
	default:
		return "unknown"
	}
}

// Reporter emits at most one telemetry event per model instance. It owns
// its seen set and session ID, so independent Reporters report
// independently. Safe for concurrent use.
type Reporter struct {
	svc     analytics.Service
	reg     model.Registration
	version string
	session string
	clock   func() time.Time

	mu         sync.Mutex
	registered bool

	seen *dedup.Gate
}

// New creates a Reporter. Without WithSink the Reporter is valid but
// permanently disabled: every Report returns ResultSkippedDisabled.
func New(opts ...Option) (*Reporter, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	svc := o.service
	if svc == nil {
		sink, err := assembleSink(o)
		if err != nil {
			return nil, fmt.Errorf("beacon: %w", err)
		}
		var copts []analytics.Option
		if o.enabled != nil {
			copts = append(copts, analytics.WithEnabled(o.enabled))
		}
		svc = analytics.New(sink, copts...)
	}

	return &Reporter{
		svc:     svc,
		reg:     o.reg,
		version: o.version,
		session: uuid.New().String(),
		clock:   o.clock,
		seen:    dedup.New(),
	}, nil
}

// Report emits a telemetry event for m on first sight, and does nothing on
// later calls with the same instance. Disabled telemetry short-circuits
// before any fingerprinting or seen-set mutation. A nil model is ignored.
// No analytics failure ever propagates: the worst outcome is a skipped
// event.
func (r *Reporter) Report(ctx context.Context, m *Model, rctx ReportContext) Result {
	if m == nil || !r.svc.Enabled() {
		metrics.ReportSkippedDisabled(ctx)
		return ResultSkippedDisabled
	}
	if !r.ensureRegistered() {
		metrics.ReportSkippedDisabled(ctx)
		return ResultSkippedDisabled
	}
	if !r.seen.FirstSight(m) {
		metrics.ReportSkippedDuplicate(ctx)
		return ResultSkippedDuplicate
	}

	if r.svc.Emit(ctx, r.buildEvent(m, rctx)) == analytics.StatusRateLimited {
		metrics.EmitRateLimited(ctx)
	}
	metrics.ReportSent(ctx)
	return ResultSent
}

// Seen returns how many distinct model instances this Reporter has
// reported.
func (r *Reporter) Seen() int {
	return r.seen.Len()
}

// Close releases the underlying sink. The Reporter must not be used after
// Close.
func (r *Reporter) Close() error {
	return r.svc.Close()
}

// assembleSink builds the sink chain from the options: primary, optional
// mirror fan-out, optional async wrapper. Returns nil when no sink is
// configured.
func assembleSink(o options) (analytics.Sink, error) {
	if o.sinkName == "" {
		return nil, nil
	}
	sink, err := buildSink(o.sinkName, o.sinkTarget, o.sinkHeaders)
	if err != nil {
		return nil, err
	}
	if o.mirrorName != "" {
		mirror, err := buildSink(o.mirrorName, o.mirrorTarget, nil)
		if err != nil {
			sink.Close()
			return nil, err
		}
		sink = multi.New(sink, mirror)
	}
	if o.async {
		sink = async.New(sink)
	}
	return sink, nil
}

func buildSink(name, target string, headers map[string]string) (analytics.Sink, error) {
	ctor, err := analytics.GetSink(name)
	if err != nil {
		return nil, err
	}
	return ctor(analytics.SinkConfig{Target: target, Headers: headers})
}

// ensureRegistered lazily registers the event kind, re-attempting on every
// call until one succeeds; success is cached for the life of the process.
func (r *Reporter) ensureRegistered() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.registered {
		return true
	}
	if err := r.svc.Register(r.reg); err != nil {
		return false
	}
	r.registered = true
	return true
}

// buildEvent assembles the telemetry record, invoking the fingerprint
// engine for the digest and size.
func (r *Reporter) buildEvent(m *Model, rctx ReportContext) model.InferenceEvent {
	im := internalModel(m)
	producer, producerVersion := model.NormalizeProducer(m.Producer, m.ProducerVersion)

	specs := make([]model.ObservationSpec, 0, len(rctx.ObservationSpecs))
	for _, s := range rctx.ObservationSpecs {
		specs = append(specs, model.ObservationSpec{
			SensorName:      model.CanonicalName(s.SensorName),
			Shape:           s.Shape,
			ObservationType: s.ObservationType,
		})
	}

	return model.InferenceEvent{
		Kind:             r.reg.Name,
		BehaviorName:     model.CanonicalName(rctx.BehaviorName),
		ModelDigest:      fingerprint.Digest(im),
		ModelWeightBytes: fingerprint.TotalWeightBytes(im),
		Producer:         producer,
		ProducerVersion:  producerVersion,
		InferenceDevice:  rctx.InferenceDevice,
		ActionSpec: model.ActionSpec{
			ContinuousActions: rctx.ActionSpec.ContinuousActions,
			DiscreteBranches:  rctx.ActionSpec.DiscreteBranches,
		},
		ObservationSpecs: specs,
		PackageVersion:   r.version,
		SessionID:        r.session,
		Timestamp:        r.clock().UTC(),
	}
}

// internalModel copies the public model into the internal representation
// the fingerprint engine consumes. Weight slices are shared, not copied.
func internalModel(m *Model) model.Model {
	im := model.Model{
		Name:   m.Name,
		Layers: make([]model.Layer, len(m.Layers)),
	}
	for i, l := range m.Layers {
		im.Layers[i] = model.Layer{
			Name:         l.Name,
			Weights:      l.Weights,
			DatasetBytes: l.DatasetBytes,
		}
	}
	return im
}
