package scheduler

import "sort"

// jitterWindowSize bounds the rolling sample set used for the on-demand
// p99 computation. Large enough to give a stable percentile at 1 kHz
// (roughly one second of history) without growing unbounded.
const jitterWindowSize = 1024

// JitterMetrics records per-tick arrival error and exposes summary
// statistics. The hot path (Record) is O(1) and allocation-free;
// percentile computation (P99) is explicitly non-RT and only ever
// called from control-plane / observer code (spec.md §4.C).
type JitterMetrics struct {
	totalTicks  uint64
	missedTicks uint64
	maxJitterNs int64

	window [jitterWindowSize]int64
	cursor int
	filled int
}

// Record folds one tick's arrival error (actual − expected, in
// nanoseconds; always ≥ 0) into the running statistics.
func (j *JitterMetrics) Record(jitterNs int64, missed bool) {
	j.totalTicks++
	if missed {
		j.missedTicks++
	}
	if jitterNs > j.maxJitterNs {
		j.maxJitterNs = jitterNs
	}
	j.window[j.cursor] = jitterNs
	j.cursor = (j.cursor + 1) % jitterWindowSize
	if j.filled < jitterWindowSize {
		j.filled++
	}
}

// TotalTicks returns the number of ticks observed so far.
func (j *JitterMetrics) TotalTicks() uint64 { return j.totalTicks }

// MissedTicks returns the number of ticks whose deadline had already
// passed by the time wait_for_tick was called.
func (j *JitterMetrics) MissedTicks() uint64 { return j.missedTicks }

// MaxJitterNs returns the largest arrival error observed so far.
func (j *JitterMetrics) MaxJitterNs() int64 { return j.maxJitterNs }

// P99 computes the 99th percentile of the rolling jitter window. Not
// RT-safe: it sorts a copy of the window and must only be called from
// non-RT code (a metrics sampler, a test, an HTTP handler).
func (j *JitterMetrics) P99() int64 {
	if j.filled == 0 {
		return 0
	}
	samples := make([]int64, j.filled)
	copy(samples, j.window[:j.filled])
	sort.Slice(samples, func(a, b int) bool { return samples[a] < samples[b] })
	idx := (len(samples)*99 + 99) / 100
	if idx >= len(samples) {
		idx = len(samples) - 1
	}
	return samples[idx]
}
