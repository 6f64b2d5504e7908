// Package telemetry provides hierarchical timing collection for operations.
// Timings form a tree so a report shows where time went at each level.
//
// Collectors travel through context so instrumentation stays non-intrusive:
// call sites time themselves unconditionally, and without a collector in
// the context the timers are no-ops.
//
// Example usage:
//
//	collector := telemetry.NewTimingCollector()
//	ctx := telemetry.WithCollector(context.Background(), collector)
//
//	timer := telemetry.StartTimer(ctx, "load file")
//	defer timer.End()
//
//	childTimer := timer.Child("parse")
//	// ... work ...
//	childTimer.End()
//
//	collector.Report(os.Stderr)
package telemetry

import (
	"context"
	"io"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey struct{}

var collectorKey = contextKey{}

// Collector collects telemetry data.
type Collector interface {
	// Start begins timing an operation and returns a Timer. The timer
	// should be ended with End() when the operation completes.
	Start(name string) Timer

	// Report outputs the collected telemetry to a writer. The format is
	// implementation-specific.
	Report(w io.Writer)
}

// Timer tracks a single operation's timing. Timers nest via Child().
type Timer interface {
	// End stops the timer and records the duration.
	End()

	// Child creates a nested timer under this timer.
	Child(name string) Timer
}

// WithCollector adds a collector to a context. The collector can be
// retrieved later with FromContext.
func WithCollector(ctx context.Context, collector Collector) context.Context {
	return context.WithValue(ctx, collectorKey, collector)
}

// FromContext extracts the collector from context. If no collector is
// present, returns a no-op collector.
func FromContext(ctx context.Context) Collector {
	if collector, ok := ctx.Value(collectorKey).(Collector); ok {
		return collector
	}
	return noOpCollector{}
}
