// Package compiler turns a validated FilterConfig into an executable
// pipeline.Pipeline. It runs once at load time and on every profile change,
// never on the RT loop: all allocation, curve inversion, and biquad
// coefficient derivation happen here so pipeline.Process stays allocation-
// free (spec.md §4.E).
package compiler

import "github.com/trackforce/ffbcore/curve"

// FilterConfig enumerates, in the fixed canonical schedule compiler uses to
// order nodes, which filter nodes are active and their parameters. A nil
// field means the node is absent from the compiled pipeline, matching
// spec.md §6's "enumerating ... which filter nodes are active" inbound
// record. Field shapes are grounded on the original profile schema's
// FilterConfig (reconstruction/friction/damper/inertia/notch_filters/
// slew_rate/curve_points), extended with the nodes spec.md adds that the
// schema's profile-only view omits (bumpstop, hands-off, torque cap).
type FilterConfig struct {
	Reconstruction *ReconstructionConfig
	ResponseCurve  *ResponseCurveConfig
	Friction       *FrictionConfig
	Damper         *DamperConfig
	Inertia        *InertiaConfig
	Notches        []NotchConfig
	SlewRate       *SlewRateConfig
	Bumpstop       *BumpstopConfig
	HandsOff       *HandsOffConfig
	TorqueCap      *TorqueCapConfig
}

// ReconstructionConfig parametrizes the one-pole anti-alias low-pass by its
// cutoff frequency rather than a raw coefficient, so the compiler (not the
// caller) is responsible for deriving a coefficient valid at the engine's
// fixed 1kHz sample rate.
type ReconstructionConfig struct {
	CutoffHz float32
}

// ResponseCurveConfig is specified as exactly one of a four-point cubic
// Bezier or a parametric curve family (spec.md §6).
type ResponseCurveConfig struct {
	Bezier     *curve.Cubic
	Parametric *ParametricCurveConfig
}

// ParametricCurveConfig selects one of curve.Type's closed set of curve
// families and its shape parameter.
type ParametricCurveConfig struct {
	Type     curve.Type
	Exponent float64
}

type FrictionConfig struct {
	Coeff      float32
	SpeedScale float32
}

type DamperConfig struct {
	Coeff float32
}

type InertiaConfig struct {
	Coeff float32
}

// NotchConfig describes one biquad band-reject stage by center frequency,
// quality factor, and notch depth, matching the original profile schema's
// NotchFilter{hz, q, gain_db} fields. GainDB is negative attenuation at the
// notch center; 0 dB compiles to an identity (bypass) stage rather than a
// full null, so a caller can dial in partial notch depth.
type NotchConfig struct {
	Hz     float32
	Q      float32
	GainDB float32
}

type SlewRateConfig struct {
	MaxDeltaPerTick float32
}

type BumpstopConfig struct {
	AngleLimit float32
	Stiffness  float32
}

// HandsOffConfig's timeout is expressed in milliseconds, converted at
// compile time to a tick count against the engine's fixed 1kHz tick rate.
type HandsOffConfig struct {
	ThresholdRadPerSec float32
	TimeoutMs          uint32
}

type TorqueCapConfig struct {
	Max float32
}
