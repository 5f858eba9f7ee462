// Package trace provides the RT-safe event emission hooks used by the
// engine's real-time loop, plus a slower, richer channel for
// non-real-time application events. The split mirrors
// openracing-tracing's TracingProvider trait: emitRTEvent must never
// allocate, block, or take a lock, while emitAppEvent may do all three.
package trace

// RTCategory identifies one of the five fixed real-time event points
// named in spec.md §4.H. The set is closed: a new category requires a
// code change, not configuration.
type RTCategory uint8

const (
	TickStart RTCategory = iota
	TickEnd
	HIDWrite
	DeadlineMiss
	PipelineFault
	rtCategoryCount
)

func (c RTCategory) String() string {
	switch c {
	case TickStart:
		return "tick_start"
	case TickEnd:
		return "tick_end"
	case HIDWrite:
		return "hid_write"
	case DeadlineMiss:
		return "deadline_miss"
	case PipelineFault:
		return "pipeline_fault"
	default:
		return "unknown"
	}
}

// RTEvent is a single real-time trace point. It is a plain value type
// (no pointers, no slices) so emitting one never allocates.
type RTEvent struct {
	Category    RTCategory
	TimestampNs int64
	TickCount   uint64
	// Value carries the category-specific payload. The engine sets
	// it only for HIDWrite (the encoded HID payload length); for the
	// other categories it emits Value as zero.
	Value int64
}

// AppCategory identifies a non-real-time, richer event emitted from
// control-plane code: config reloads, safety state transitions,
// provider lifecycle. Unlike RTCategory this set is open to callers;
// it exists only to group events for filtering and logging.
type AppCategory uint8

const (
	ConfigChanged AppCategory = iota
	SafetyTransition
	ProviderLifecycle
	Diagnostic
)

func (c AppCategory) String() string {
	switch c {
	case ConfigChanged:
		return "config_changed"
	case SafetyTransition:
		return "safety_transition"
	case ProviderLifecycle:
		return "provider_lifecycle"
	case Diagnostic:
		return "diagnostic"
	default:
		return "unknown"
	}
}

// AppEvent is a non-real-time trace event. Message may describe
// detail that would be too expensive to compute on the RT thread.
type AppEvent struct {
	Category    AppCategory
	TimestampNs int64
	Message     string
}
