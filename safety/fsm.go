package safety

import (
	"errors"
	"math"
	"time"
)

// Config is the immutable safety configuration for one RT loop lifetime
// (spec.md §4.F, §6).
type Config struct {
	MaxSafeTorqueNm  float32
	MaxHighTorqueNm  float32
	HandsOffTimeout  time.Duration
	ComboHoldMinimum time.Duration
	SoftStopDuration time.Duration
}

// Token authorizes one high-torque arming attempt. Issued by
// RequestHighTorque, consumed by ProvideUIConsent/ReportComboStart/
// ConfirmHighTorque; a stale or mismatched token is rejected.
type Token uint32

// InterlockAck is the final confirmation presented to ConfirmHighTorque,
// grounded on spec.md §4.F's "combo_start + hold_duration + ack" edge.
type InterlockAck struct {
	Token         Token
	ComboComplete bool
	ComboHold     time.Duration
}

var (
	ErrWrongState  = errors.New("safety: operation not valid in current state")
	ErrBadToken    = errors.New("safety: token does not match the outstanding challenge")
	ErrComboTooBrief = errors.New("safety: combo hold shorter than configured minimum")
)

// FSM is the safety interlock state machine. One instance is owned
// exclusively by the RT loop; ClampTorqueNm and Tick run once per tick,
// the arming transitions are invoked from a non-RT control surface that
// serializes calls into the RT loop's command queue (engine package).
type FSM struct {
	cfg   Config
	state State
	sink  AlertSink

	token        Token
	nextToken    Token
	comboStartNs int64

	handsOffAsserted bool
	handsOffSinceNs  int64
}

// NewFSM constructs an FSM starting in SafeTorque. sink may be nil, in
// which case transitions are silently discarded.
func NewFSM(cfg Config, sink AlertSink) *FSM {
	if sink == nil {
		sink = NoopAlertSink{}
	}
	return &FSM{cfg: cfg, state: State{Kind: SafeTorque}, sink: sink}
}

func (f *FSM) setState(next State) {
	prev := f.state.Kind
	f.state = next
	if next.Kind != prev {
		f.sink.SafetyStateChanged(prev, next.Kind)
	}
}

// State returns a snapshot of the current interlock state.
func (f *FSM) State() State { return f.state }

// RequestHighTorque begins an arming sequence, valid only from SafeTorque.
func (f *FSM) RequestHighTorque() (Token, error) {
	if f.state.Kind != SafeTorque {
		return 0, ErrWrongState
	}
	f.nextToken++
	f.token = f.nextToken
	f.setState(State{Kind: HighTorqueRequested})
	return f.token, nil
}

// ProvideUIConsent advances an in-flight request to HighTorqueArmed.
func (f *FSM) ProvideUIConsent(tok Token) error {
	if f.state.Kind != HighTorqueRequested {
		return ErrWrongState
	}
	if tok != f.token {
		return ErrBadToken
	}
	f.setState(State{Kind: HighTorqueArmed})
	return nil
}

// ReportComboStart records the timestamp the operator began holding the
// physical arming combination.
func (f *FSM) ReportComboStart(tok Token, nowNs int64) error {
	if f.state.Kind != HighTorqueArmed {
		return ErrWrongState
	}
	if tok != f.token {
		return ErrBadToken
	}
	f.comboStartNs = nowNs
	return nil
}

// ConfirmHighTorque completes arming, transitioning to HighTorqueActive.
// Requires the combo hold to have lasted at least ComboHoldMinimum.
func (f *FSM) ConfirmHighTorque(ack InterlockAck) error {
	if f.state.Kind != HighTorqueArmed {
		return ErrWrongState
	}
	if ack.Token != f.token {
		return ErrBadToken
	}
	if !ack.ComboComplete || ack.ComboHold < f.cfg.ComboHoldMinimum {
		return ErrComboTooBrief
	}
	f.setState(State{Kind: HighTorqueActive})
	return nil
}

// DetectFault unions kind into the outstanding fault bitset and applies
// the transition spec.md §4.F describes: from an active-torque state it
// initiates soft-stop from the currently commanded torque. During
// SoftStopping the new fault only joins the bitset and the running ramp
// is not reset; in Faulted the machine stays Faulted. From any other
// state, if the fault's fixed policy calls for a ramp, it initiates
// soft-stop from whatever torque is presently commanded (near zero
// outside high-torque states); faults whose policy is immediate-zero or
// log-only leave the machine in Faulted with torque already clamped to
// zero by ClampTorqueNm's Faulted case.
func (f *FSM) DetectFault(kind FaultType, nowNs int64, currentTorqueNm float32) {
	faults := f.state.Faults.Union(kind)
	f.sink.FaultDetected(kind, SeverityOf(kind))

	switch {
	case f.state.Kind == HighTorqueActive || f.state.Kind == HighTorqueArmed:
		f.setState(State{Kind: SoftStopping, Faults: faults, RampStartNs: nowNs, InitialTorqueNm: currentTorqueNm})
	case f.state.Kind == SoftStopping:
		f.setState(State{Kind: SoftStopping, Faults: faults, RampStartNs: f.state.RampStartNs, InitialTorqueNm: f.state.InitialTorqueNm})
	case ActionOf(kind) == SoftStop && f.state.Kind != Faulted:
		f.setState(State{Kind: SoftStopping, Faults: faults, RampStartNs: nowNs, InitialTorqueNm: currentTorqueNm})
	default:
		f.setState(State{Kind: Faulted, Faults: faults, RampStartNs: f.state.RampStartNs, InitialTorqueNm: f.state.InitialTorqueNm})
	}
}

// Shutdown forces the interlock back to SafeTorque regardless of the
// current state. Called once, by the RT loop's graceful-stop sequence
// (spec.md §5, "Graceful stop"): an operator-requested exit is not a
// fault and must not leave Faulted or SoftStopping outstanding for the
// next session to inherit.
func (f *FSM) Shutdown() {
	f.setState(State{Kind: SafeTorque})
}

// ClearFault removes kind from the outstanding fault bitset. Once the set
// is empty and the machine is in Faulted, it returns to SafeTorque
// (spec.md §4.F: "when set is empty, transitions to SafeTorque").
// Clearing during SoftStopping only updates the bitset; the ramp is never
// interrupted.
func (f *FSM) ClearFault(kind FaultType) {
	f.state.Faults = f.state.Faults.Clear(kind)
	f.sink.FaultCleared(kind)
	if f.state.Kind == Faulted && f.state.Faults.Empty() {
		f.setState(State{Kind: SafeTorque})
	}
}

// Tick advances timing-dependent state: the soft-stop ramp, and the
// hands-off timeout while HighTorqueActive. Called once per tick from the
// RT loop, after the pipeline and before ClampTorqueNm.
func (f *FSM) Tick(handsOff bool, nowNs int64) {
	if f.state.Kind == SoftStopping {
		progress := rampProgress(f.cfg.SoftStopDuration, f.state.RampStartNs, nowNs)
		if progress >= 1 {
			f.setState(State{Kind: Faulted, Faults: f.state.Faults})
		}
		return
	}

	if f.state.Kind != HighTorqueActive {
		f.handsOffAsserted = false
		return
	}
	if !handsOff {
		f.handsOffAsserted = false
		return
	}
	if !f.handsOffAsserted {
		f.handsOffAsserted = true
		f.handsOffSinceNs = nowNs
		return
	}
	if time.Duration(nowNs-f.handsOffSinceNs) >= f.cfg.HandsOffTimeout {
		f.DetectFault(HandsOff, nowNs, 0)
	}
}

// ClampTorqueNm applies the current state's torque-cap rule (spec.md
// §4.F). NaN/Inf is coerced to 0 before clamping.
func (f *FSM) ClampTorqueNm(requestedNm float32, nowNs int64) float32 {
	requestedNm = coerceFinite(requestedNm)

	switch f.state.Kind {
	case SafeTorque, HighTorqueRequested, HighTorqueArmed:
		return clampf(requestedNm, f.cfg.MaxSafeTorqueNm)
	case HighTorqueActive:
		return clampf(requestedNm, f.cfg.MaxHighTorqueNm)
	case Faulted:
		return 0
	case SoftStopping:
		progress := rampProgress(f.cfg.SoftStopDuration, f.state.RampStartNs, nowNs)
		if progress >= 1 {
			return 0
		}
		return f.state.InitialTorqueNm * (1 - float32(progress))
	default:
		return 0
	}
}

func rampProgress(duration time.Duration, rampStartNs, nowNs int64) float64 {
	if duration <= 0 {
		return 1
	}
	elapsed := nowNs - rampStartNs
	return float64(elapsed) / float64(duration.Nanoseconds())
}

func coerceFinite(v float32) float32 {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return v
}

func clampf(v, max float32) float32 {
	if v > max {
		return max
	}
	if v < -max {
		return -max
	}
	return v
}
