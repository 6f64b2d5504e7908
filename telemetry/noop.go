package telemetry

import "io"

// noOpCollector is the collector used when telemetry is disabled. It does
// nothing and allocates nothing per call.
type noOpCollector struct{}

func (noOpCollector) Start(name string) Timer { return noOpTimer{} }

func (noOpCollector) Report(w io.Writer) {}

// noOpTimer is a timer that does nothing.
type noOpTimer struct{}

func (noOpTimer) End() {}

func (noOpTimer) Child(name string) Timer { return noOpTimer{} }
