package telemetry

import "context"

var rootTimerKey = struct{ name string }{"rootTimer"}

// WithRootTimer stores a timer in the context so nested operations can
// attach themselves as children instead of starting new top-level timers.
func WithRootTimer(ctx context.Context, timer Timer) context.Context {
	return context.WithValue(ctx, rootTimerKey, timer)
}

// RootTimerFromContext extracts the root timer from context, if any.
func RootTimerFromContext(ctx context.Context) (Timer, bool) {
	timer, ok := ctx.Value(rootTimerKey).(Timer)
	return timer, ok
}

// StartTimer starts a timer for an operation, nesting it under the context's
// root timer when one is present. Without a collector in the context this is
// a no-op timer, so call sites never need to guard.
func StartTimer(ctx context.Context, name string) Timer {
	if root, ok := RootTimerFromContext(ctx); ok {
		return root.Child(name)
	}
	return FromContext(ctx).Start(name)
}
