package scheduler

// AdaptiveSchedulingConfig configures the opt-in adaptive spin-window
// variant (SPEC_FULL.md §3, "AdaptiveSchedulingConfig/State"). Plain
// spec.md only requires a fixed SPIN_THRESHOLD; this supplements it
// with a widen-under-load / narrow-under-quiet policy so a quiet host
// doesn't waste CPU spinning for longer than recent experience shows
// is needed to hit deadline, while a loaded host gets a wider margin
// before it resorts to a missed-tick fast-forward.
type AdaptiveSchedulingConfig struct {
	// MinSpinThresholdNs and MaxSpinThresholdNs bound the adaptive
	// window.
	MinSpinThresholdNs int64
	MaxSpinThresholdNs int64
	// WidenFactor multiplies the current window when the recent miss
	// rate exceeds HighMissRate. NarrowFactor does the same when it
	// drops below LowMissRate.
	WidenFactor  float64
	NarrowFactor float64
	HighMissRate float64
	LowMissRate  float64
}

// DefaultAdaptiveSchedulingConfig returns a conservative policy: widen
// quickly on sustained misses, narrow slowly once things are quiet.
func DefaultAdaptiveSchedulingConfig() AdaptiveSchedulingConfig {
	return AdaptiveSchedulingConfig{
		MinSpinThresholdNs: 20_000,
		MaxSpinThresholdNs: 300_000,
		WidenFactor:        1.25,
		NarrowFactor:       0.97,
		HighMissRate:       0.02,
		LowMissRate:        0.001,
	}
}

// AdaptiveSchedulingState tracks the current spin window for one
// AbsoluteScheduler. It is updated once per tick from the scheduler's
// own miss-rate statistics, never allocates, and is safe to call only
// from the RT loop goroutine (same caller as WaitForTick).
type AdaptiveSchedulingState struct {
	cfg       AdaptiveSchedulingConfig
	currentNs int64
}

func newAdaptiveSchedulingState(cfg AdaptiveSchedulingConfig) *AdaptiveSchedulingState {
	return &AdaptiveSchedulingState{cfg: cfg, currentNs: spinThresholdNs}
}

func (a *AdaptiveSchedulingState) adjust(missRate float64) {
	switch {
	case missRate > a.cfg.HighMissRate:
		a.currentNs = int64(float64(a.currentNs) * a.cfg.WidenFactor)
		if a.currentNs > a.cfg.MaxSpinThresholdNs {
			a.currentNs = a.cfg.MaxSpinThresholdNs
		}
	case missRate < a.cfg.LowMissRate:
		a.currentNs = int64(float64(a.currentNs) * a.cfg.NarrowFactor)
		if a.currentNs < a.cfg.MinSpinThresholdNs {
			a.currentNs = a.cfg.MinSpinThresholdNs
		}
	}
}

// SpinThresholdNs reports the adaptive state's current spin window.
func (a *AdaptiveSchedulingState) SpinThresholdNs() int64 { return a.currentNs }
