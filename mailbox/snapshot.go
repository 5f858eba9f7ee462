package mailbox

// EffectMode selects how the game/host drives the wheelbase. Supplemental
// to spec.md's bare `effect_mode: enum` field (see SPEC_FULL.md §3,
// "CapabilityNegotiator"); never consulted on the RT path, only used by the
// non-RT mode-negotiation helper in package engine.
type EffectMode uint8

const (
	// PidPassthrough means the game emits DirectInput/PID effects and the
	// device itself processes them; the host pipeline only applies safety
	// clamping.
	PidPassthrough EffectMode = iota
	// RawTorque means the host synthesizes torque at tick rate and sends
	// it directly to the device.
	RawTorque
	// TelemetrySynth means the host computes torque from game telemetry
	// (no direct FFB channel from the game).
	TelemetrySynth
)

// InputSnapshot is the opaque Copy record delivered through the mailbox
// from the non-RT input producer (game or telemetry adapter) to the RT
// loop. One producer writes it; the RT loop reads one snapshot per tick.
type InputSnapshot struct {
	// FFBIn is the commanded force, normalized to [-1.0, 1.0].
	FFBIn float32
	// WheelSpeedHint is an estimate of wheel angular velocity in rad/s,
	// derived from telemetry when no direct sensor reading is available.
	WheelSpeedHint float32
	// Gain is a user-configured output scale in [0.0, 1.0].
	Gain float32
	// Mode selects how the commanded force should be interpreted.
	Mode EffectMode
	// ProducerSeq is a monotonic sequence number assigned by the producer,
	// used by observers to detect stalled input without inspecting payload
	// content.
	ProducerSeq uint32
}

// Mailbox is the producer/RT-loop boundary for InputSnapshot values.
type Mailbox struct {
	cell *Cell[InputSnapshot]
}

// NewMailbox constructs a Mailbox seeded with the zero InputSnapshot.
func NewMailbox() *Mailbox {
	return &Mailbox{cell: NewCell(InputSnapshot{})}
}

// Publish is called by the non-RT input producer once per update.
func (m *Mailbox) Publish(s InputSnapshot) {
	m.cell.Write(s)
}

// Latest is called by the RT loop once per tick.
func (m *Mailbox) Latest() InputSnapshot {
	return m.cell.Read()
}
