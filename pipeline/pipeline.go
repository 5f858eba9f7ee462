package pipeline

import (
	"math"

	"github.com/trackforce/ffbcore/frame"
)

// node is one compiled pipeline entry: a kind tag plus its state, stored
// inline so Pipeline.Process never indirects through a pointer to reach
// per-node state (spec.md §4.D: "cache-locality, no indirection per node").
type node struct {
	kind Kind

	reconstruction reconstructionState
	responseCurve  responseCurveState
	friction       frictionState
	damper         damperState
	inertia        inertiaState
	notch          notchState
	slewRate       slewRateState
	bumpstop       bumpstopState
	handsOff       handsOffState
	torqueCap      torqueCapState
}

// Pipeline is the ordered, allocation-free DSP chain compiled from a
// FilterConfig by package compiler. It is owned exclusively by the RT loop
// and replaced only by atomic swap at a tick boundary (see Handle).
type Pipeline struct {
	nodes []node
	// hash is the deterministic config hash computed at compile time, so
	// external code can detect "has the pipeline changed?" without
	// sampling content (spec.md §4.D).
	hash uint64
}

// Hash returns the deterministic config hash this pipeline was compiled
// from.
func (p *Pipeline) Hash() uint64 {
	return p.hash
}

// Len reports the number of compiled nodes.
func (p *Pipeline) Len() int {
	return len(p.nodes)
}

// Process runs one Frame through every compiled node in order. It performs
// no heap allocation and never blocks. An empty pipeline is a passthrough:
// it copies FFBIn into TorqueOut, replacing whatever the caller set there.
func (p *Pipeline) Process(f *frame.Frame) frame.Error {
	if len(p.nodes) == 0 {
		f.TorqueOut = f.FFBIn
		return frame.ErrNone
	}
	y := f.TorqueOut
	sawTorqueCap := false
	for i := range p.nodes {
		n := &p.nodes[i]
		switch n.kind {
		case Reconstruction:
			y = stepReconstruction(&n.reconstruction, f.FFBIn)
		case ResponseCurve:
			y = stepResponseCurve(&n.responseCurve, f.FFBIn)
		case Friction:
			y = stepFriction(&n.friction, y, f.WheelSpeed)
		case Damper:
			y = stepDamper(&n.damper, y, f.WheelSpeed)
		case Inertia:
			y = stepInertia(&n.inertia, y, f.WheelSpeed)
		case Notch:
			y = stepNotch(&n.notch, y)
		case SlewRate:
			y = stepSlewRate(&n.slewRate, y)
		case Bumpstop:
			// Bumpstop reacts to wheel position; this module tracks
			// position via integrated wheel speed in the frame's
			// timestamp-relative sense is out of scope for the closed
			// Frame type, so bumpstop here reacts to the caller-supplied
			// wheel_speed as a proxy deflection signal, matching the
			// compiled-state-only contract (no node may reach outside its
			// own state slice and the Frame).
			y = stepBumpstop(&n.bumpstop, y, f.WheelSpeed)
		case HandsOff:
			f.HandsOff = stepHandsOff(&n.handsOff, f.WheelSpeed)
		case TorqueCap:
			y = stepTorqueCap(&n.torqueCap, y)
			sawTorqueCap = true
		}
	}
	f.TorqueOut = y
	return validateExit(f, sawTorqueCap)
}

// validateExit implements the pinned NaN policy (DESIGN.md "Open Question
// decisions"): a TorqueCap node already coerces NaN/Inf to 0 and clamps
// magnitude, so in the normal case this only ever sees a finite result. If
// it doesn't — whether because no TorqueCap was compiled in, or because a
// compiled-in cap's own bound was misconfigured above 1.0 — the RT loop
// must never forward an unsafe value, so it is reported as a pipeline
// fault without mutating torque_out further.
func validateExit(f *frame.Frame, sawTorqueCap bool) frame.Error {
	_ = sawTorqueCap
	if isFinite(f.TorqueOut) && absf32(f.TorqueOut) <= 1.0 {
		return frame.ErrNone
	}
	return frame.ErrPipelineFault
}

func isFinite(v float32) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
