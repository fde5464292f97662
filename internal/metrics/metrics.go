// Package metrics records beacon's own emission outcomes through the
// OpenTelemetry metric API. Without a meter provider installed by the host
// these are no-ops, so the reporter stays silent by default.
package metrics

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/crimson-sun/beacon"

// instruments caches the counters so each is created once per process.
// Creation errors leave the counter nil; recording on a nil counter is
// skipped — self-metrics must never interfere with the caller either.
var instruments struct {
	once             sync.Once
	sent             metric.Int64Counter
	skippedDisabled  metric.Int64Counter
	skippedDuplicate metric.Int64Counter
	rateLimited      metric.Int64Counter
}

func load() {
	instruments.once.Do(func() {
		meter := otel.Meter(meterName)
		instruments.sent, _ = meter.Int64Counter("beacon.reports.sent")
		instruments.skippedDisabled, _ = meter.Int64Counter("beacon.reports.skipped_disabled")
		instruments.skippedDuplicate, _ = meter.Int64Counter("beacon.reports.skipped_duplicate")
		instruments.rateLimited, _ = meter.Int64Counter("beacon.emit.rate_limited")
	})
}

// ReportSent counts a report delivered to the analytics service.
func ReportSent(ctx context.Context) {
	load()
	add(ctx, instruments.sent)
}

// ReportSkippedDisabled counts a report skipped because telemetry is off.
func ReportSkippedDisabled(ctx context.Context) {
	load()
	add(ctx, instruments.skippedDisabled)
}

// ReportSkippedDuplicate counts a report skipped for an already-seen model.
func ReportSkippedDuplicate(ctx context.Context) {
	load()
	add(ctx, instruments.skippedDuplicate)
}

// EmitRateLimited counts an emission dropped by the hourly budget.
func EmitRateLimited(ctx context.Context) {
	load()
	add(ctx, instruments.rateLimited)
}

func add(ctx context.Context, c metric.Int64Counter) {
	if c == nil {
		return
	}
	c.Add(ctx, 1)
}
