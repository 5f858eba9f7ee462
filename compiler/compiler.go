package compiler

import (
	"math"
	"strconv"

	"github.com/trackforce/ffbcore/pipeline"
)

// Compile validates cfg and, on success, produces an executable Pipeline in
// the fixed canonical node order: reconstruction, response curve, friction,
// damper, inertia, notch stages in declaration order, slew rate, bumpstop,
// hands-off, torque cap last (spec.md §4.D, §4.E). On InvalidConfig, the
// caller's existing pipeline keeps running unmodified.
func Compile(cfg FilterConfig) (*pipeline.Pipeline, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}

	hash, err := hashConfig(cfg)
	if err != nil {
		return nil, err
	}

	var b pipeline.Builder

	if cfg.Reconstruction != nil {
		b.AddReconstruction(reconstructionAlpha(cfg.Reconstruction.CutoffHz))
	}
	if cfg.ResponseCurve != nil {
		lut, err := compileResponseCurve(cfg.ResponseCurve)
		if err != nil {
			return nil, err
		}
		b.AddResponseCurve(lut)
	}
	if cfg.Friction != nil {
		b.AddFriction(cfg.Friction.Coeff, cfg.Friction.SpeedScale)
	}
	if cfg.Damper != nil {
		b.AddDamper(cfg.Damper.Coeff)
	}
	if cfg.Inertia != nil {
		b.AddInertia(cfg.Inertia.Coeff)
	}
	for i, n := range cfg.Notches {
		b0, b1, b2, a1, a2, err := notchCoeffs(n, notchWhich(i))
		if err != nil {
			return nil, err
		}
		b.AddNotch(b0, b1, b2, a1, a2)
	}
	if cfg.SlewRate != nil {
		b.AddSlewRate(cfg.SlewRate.MaxDeltaPerTick)
	}
	if cfg.Bumpstop != nil {
		b.AddBumpstop(cfg.Bumpstop.AngleLimit, cfg.Bumpstop.Stiffness)
	}
	if cfg.HandsOff != nil {
		windowTicks := uint32(cfg.HandsOff.TimeoutMs) // 1 tick == 1ms at the fixed 1kHz rate
		b.AddHandsOff(cfg.HandsOff.ThresholdRadPerSec, windowTicks)
	}
	if cfg.TorqueCap != nil {
		b.AddTorqueCap(cfg.TorqueCap.Max)
	}

	return b.Build(hash), nil
}

// reconstructionAlpha derives a one-pole low-pass coefficient from a cutoff
// frequency at the fixed 1kHz sample rate, using the standard exponential
// moving-average approximation alpha = 1 - e^(-2*pi*fc/fs).
func reconstructionAlpha(cutoffHz float32) float32 {
	return float32(1 - math.Exp(-2*math.Pi*float64(cutoffHz)/sampleRateHz))
}

func notchWhich(i int) string {
	return "notch[" + strconv.Itoa(i) + "]"
}
