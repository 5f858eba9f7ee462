package safety

// StateKind is the interlock's top-level state (spec.md §4.F). Faulted and
// SoftStopping carry extra data, held in the sibling fields of State rather
// than as a separate Go sum type: State is a Copy-friendly struct so the
// RT loop can read a consistent snapshot without heap indirection, the
// same design call pipeline.node makes for its tagged-variant nodes.
type StateKind uint8

const (
	SafeTorque StateKind = iota
	HighTorqueRequested
	HighTorqueArmed
	HighTorqueActive
	Faulted
	SoftStopping
)

func (k StateKind) String() string {
	switch k {
	case SafeTorque:
		return "safe_torque"
	case HighTorqueRequested:
		return "high_torque_requested"
	case HighTorqueArmed:
		return "high_torque_armed"
	case HighTorqueActive:
		return "high_torque_active"
	case Faulted:
		return "faulted"
	case SoftStopping:
		return "soft_stopping"
	default:
		return "unknown"
	}
}

// State is a snapshot of the interlock's current state, safe to copy and
// hand to a non-RT observer.
type State struct {
	Kind StateKind
	// Faults is meaningful whenever any fault is outstanding, which can be
	// true in Faulted or SoftStopping.
	Faults FaultSet
	// RampStartNs and InitialTorqueNm are meaningful only when Kind ==
	// SoftStopping.
	RampStartNs     int64
	InitialTorqueNm float32
}
