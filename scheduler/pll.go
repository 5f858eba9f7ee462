package scheduler

// PLLState tracks the scheduler's running estimate of the true tick
// period, correcting for drift between the monotonic clock and the
// nominal cadence (spec.md §4.C). The correction is a slow
// proportional-integral controller, not a per-tick snap: its
// bandwidth must stay far below the tick rate or it would chase
// per-tick scheduling noise instead of genuine clock drift.
type PLLState struct {
	nominalNs int64

	kp float64
	ki float64
	// deltaBound is the maximum fractional deviation of
	// periodEstimateNs from nominalNs, e.g. 0.001 for ±0.1%.
	deltaBound float64

	periodEstimateNs float64
	integral         float64
}

// NewPLLState builds a PLLState for the given nominal tick period.
// The gains and bound match spec.md §4.C's "bandwidth << 1 Hz" and
// "δ small (e.g. 0.1%)" guidance.
func NewPLLState(nominalNs int64) PLLState {
	return PLLState{
		nominalNs:        nominalNs,
		kp:               0.01,
		ki:               0.0005,
		deltaBound:       0.001,
		periodEstimateNs: float64(nominalNs),
	}
}

// Period returns the current period estimate in nanoseconds, rounded
// to the nearest integer tick duration the scheduler can sleep to.
func (p *PLLState) Period() int64 {
	return int64(p.periodEstimateNs + 0.5)
}

// Update folds one tick's observed arrival error (actual − expected,
// in nanoseconds) into the estimate and returns the new period.
func (p *PLLState) Update(errorNs float64) int64 {
	p.integral += errorNs
	nominal := float64(p.nominalNs)
	estimate := nominal + p.kp*errorNs + p.ki*p.integral

	lo := nominal * (1 - p.deltaBound)
	hi := nominal * (1 + p.deltaBound)
	switch {
	case estimate < lo:
		estimate = lo
	case estimate > hi:
		estimate = hi
	}
	p.periodEstimateNs = estimate
	return p.Period()
}
