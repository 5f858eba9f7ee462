package compiler

import (
	"fmt"

	"github.com/trackforce/ffbcore/curve"
)

// InvalidConfig is returned by Compile when a FilterConfig fails range or
// consistency validation (spec.md §4.E). On InvalidConfig, Compile produces
// no pipeline; the caller keeps running its current one.
type InvalidConfig struct {
	Which  string
	Reason string
}

func (e *InvalidConfig) Error() string {
	return fmt.Sprintf("invalid filter config: %s: %s", e.Which, e.Reason)
}

const sampleRateHz = 1000

func validate(cfg FilterConfig) error {
	if cfg.Reconstruction != nil {
		c := cfg.Reconstruction
		if c.CutoffHz <= 0 || c.CutoffHz >= sampleRateHz/2 {
			return &InvalidConfig{"reconstruction.cutoff_hz", "must be in (0, nyquist)"}
		}
	}
	if cfg.ResponseCurve != nil {
		if err := validateResponseCurve(cfg.ResponseCurve); err != nil {
			return err
		}
	}
	if cfg.Friction != nil {
		c := cfg.Friction
		if c.Coeff < 0 {
			return &InvalidConfig{"friction.coeff", "must be >= 0"}
		}
		if c.SpeedScale < 0 {
			return &InvalidConfig{"friction.speed_scale", "must be >= 0"}
		}
	}
	if cfg.Damper != nil && cfg.Damper.Coeff < 0 {
		return &InvalidConfig{"damper.coeff", "must be >= 0"}
	}
	if cfg.Inertia != nil && cfg.Inertia.Coeff < 0 {
		return &InvalidConfig{"inertia.coeff", "must be >= 0"}
	}
	for i, n := range cfg.Notches {
		if n.Hz <= 0 || n.Hz >= sampleRateHz/2 {
			return &InvalidConfig{fmt.Sprintf("notch[%d].hz", i), "must be in (0, nyquist)"}
		}
		if n.Q <= 0 {
			return &InvalidConfig{fmt.Sprintf("notch[%d].q", i), "must be > 0"}
		}
	}
	if cfg.SlewRate != nil && cfg.SlewRate.MaxDeltaPerTick <= 0 {
		return &InvalidConfig{"slew_rate.max_delta_per_tick", "must be > 0"}
	}
	if cfg.Bumpstop != nil {
		c := cfg.Bumpstop
		if c.AngleLimit <= 0 {
			return &InvalidConfig{"bumpstop.angle_limit", "must be > 0"}
		}
		if c.Stiffness < 0 {
			return &InvalidConfig{"bumpstop.stiffness", "must be >= 0"}
		}
	}
	if cfg.HandsOff != nil {
		c := cfg.HandsOff
		if c.ThresholdRadPerSec < 0 {
			return &InvalidConfig{"hands_off.threshold_rad_per_sec", "must be >= 0"}
		}
		if c.TimeoutMs == 0 {
			return &InvalidConfig{"hands_off.timeout_ms", "must be > 0"}
		}
	}
	if cfg.TorqueCap != nil && cfg.TorqueCap.Max <= 0 {
		return &InvalidConfig{"torque_cap.max", "must be > 0"}
	}
	return nil
}

func validateResponseCurve(c *ResponseCurveConfig) error {
	switch {
	case c.Bezier != nil && c.Parametric != nil:
		return &InvalidConfig{"response_curve", "specify either bezier or parametric, not both"}
	case c.Bezier == nil && c.Parametric == nil:
		return &InvalidConfig{"response_curve", "must specify bezier or parametric"}
	case c.Parametric != nil && c.Parametric.Type != curve.Linear && c.Parametric.Exponent <= 0:
		return &InvalidConfig{"response_curve.parametric.exponent", "must be > 0"}
	}
	return nil
}
