package trace

import "errors"

// Errors a Provider.Initialize may return, matching
// openracing-tracing's TracingError variants that have a Go-side
// equivalent. The providers in this package (RingProvider,
// NoopProvider) always return nil from Initialize. BufferOverflow is deliberately not an error here: per
// spec.md §4.H overflow is silent and only increments a counter, so it
// never reaches this type.
var (
	ErrPlatformNotSupported = errors.New("trace: platform not supported for native tracing")
	ErrNotInitialized       = errors.New("trace: provider not initialized")
)

// Metrics is a point-in-time snapshot of a provider's bookkeeping
// counters, mirroring openracing-tracing's TracingMetrics.
type Metrics struct {
	EventsEmitted   uint64
	EventsLost      uint64
	AppEventsEmitted uint64
}

// Provider is the tracing back-end contract. EmitRTEvent is the only
// method the RT thread calls and must meet the non-blocking,
// non-allocating, bounded-time guarantees of spec.md §4.H; everything
// else may do normal Go things (allocate, lock, block briefly).
type Provider interface {
	Initialize() error
	EmitRTEvent(e RTEvent)
	EmitAppEvent(e AppEvent)
	Metrics() Metrics
	IsEnabled() bool
	Shutdown()
}
