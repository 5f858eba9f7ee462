// Package scheduler implements the absolute tick scheduler: a
// strictly monotonic 1 kHz (by default) cadence generator with PLL
// drift correction and jitter statistics, the real-time heartbeat the
// engine's filter pipeline runs on.
package scheduler

import (
	"errors"
	"time"
)

// ErrTimingViolation is reported when the sustained miss rate crosses
// the configured threshold (spec.md §4.C, "Failure modes").
var ErrTimingViolation = errors.New("scheduler: sustained tick miss rate exceeded threshold")

// Config configures an AbsoluteScheduler.
type Config struct {
	// PeriodNs is the nominal tick period, default 1_000_000 (1 kHz).
	PeriodNs int64
	// MissRateWindow is how many recent ticks the miss-rate check
	// considers.
	MissRateWindow uint64
	// MaxMissRate is the fraction of ticks in MissRateWindow that
	// may be missed before TimingViolation is reported.
	MaxMissRate float64
}

// DefaultConfig returns the spec's default cadence and a permissive
// miss-rate threshold suitable for tests on non-RT hardware.
func DefaultConfig() Config {
	return Config{
		PeriodNs:       1_000_000,
		MissRateWindow: 1000,
		MaxMissRate:    0.05,
	}
}

// AbsoluteScheduler produces a strictly monotonic sequence of tick
// events at a target period, correcting for clock drift via an
// internal PLLState and recording arrival jitter.
type AbsoluteScheduler struct {
	cfg Config
	pll PLLState

	start         time.Time
	tickCount     uint64
	nextDeadline  int64
	recentMissed  []bool
	recentCursor  int

	adaptive *AdaptiveSchedulingState

	Metrics JitterMetrics
}

// NewAbsoluteScheduler creates a scheduler anchored to the current
// monotonic time, using the fixed SPIN_THRESHOLD spec.md §4.C
// requires.
func NewAbsoluteScheduler(cfg Config) *AbsoluteScheduler {
	return &AbsoluteScheduler{
		cfg:          cfg,
		pll:          NewPLLState(cfg.PeriodNs),
		start:        time.Now(),
		nextDeadline: cfg.PeriodNs,
		recentMissed: make([]bool, cfg.MissRateWindow),
	}
}

// NewAdaptive creates a scheduler that additionally widens and
// narrows its busy-spin window based on recent miss-rate pressure
// (SPEC_FULL.md §3, "AdaptiveSchedulingConfig/State"). Opt-in: not
// required by any invariant; a scheduler built with
// NewAbsoluteScheduler has no adaptive state and keeps the fixed
// threshold.
func NewAdaptive(cfg Config, adaptiveCfg AdaptiveSchedulingConfig) *AbsoluteScheduler {
	s := NewAbsoluteScheduler(cfg)
	s.adaptive = newAdaptiveSchedulingState(adaptiveCfg)
	return s
}

func (s *AbsoluteScheduler) spinThreshold() int64 {
	if s.adaptive != nil {
		return s.adaptive.SpinThresholdNs()
	}
	return spinThresholdNs
}

func (s *AbsoluteScheduler) nowNs() int64 {
	return time.Since(s.start).Nanoseconds()
}

// NowNs exposes the scheduler's own monotonic clock, in the same
// frame WaitForTick's deadlines live in, so callers can timestamp a
// Frame consistently with the scheduler that produced its tick.
func (s *AbsoluteScheduler) NowNs() int64 {
	return s.nowNs()
}

// WaitForTick blocks until the next tick deadline (or returns
// immediately with a missed-tick count if the deadline has already
// passed), then returns the new tick count. Must only be called from
// the RT loop goroutine; it is not safe for concurrent use.
func (s *AbsoluteScheduler) WaitForTick() uint64 {
	target := s.nextDeadline
	now := s.nowNs()

	if now >= target {
		period := s.pll.Period()
		missedTicks := (now-target)/period + 1
		s.tickCount += uint64(missedTicks)
		s.nextDeadline = target + missedTicks*period
		s.recordMiss(true)
		s.Metrics.Record(now-target, true)
		if s.adaptive != nil {
			s.adaptive.adjust(s.MissRate())
		}
		return s.tickCount
	}

	sleepUntil(target-s.spinThreshold(), now)
	for s.nowNs() < target {
		// busy-spin through the last spinThreshold()
	}

	actual := s.nowNs()
	errorNs := float64(actual - target)
	s.pll.Update(errorNs)
	s.recordMiss(false)
	s.Metrics.Record(actual-target, false)

	if s.adaptive != nil {
		s.adaptive.adjust(s.MissRate())
	}

	s.tickCount++
	s.nextDeadline = target + s.pll.Period()
	return s.tickCount
}

func (s *AbsoluteScheduler) recordMiss(missed bool) {
	if len(s.recentMissed) == 0 {
		return
	}
	s.recentMissed[s.recentCursor] = missed
	s.recentCursor = (s.recentCursor + 1) % len(s.recentMissed)
}

// MissRate reports the fraction of missed ticks among the most recent
// MissRateWindow ticks observed so far.
func (s *AbsoluteScheduler) MissRate() float64 {
	if len(s.recentMissed) == 0 {
		return 0
	}
	n := len(s.recentMissed)
	if s.tickCount < uint64(n) {
		n = int(s.tickCount)
	}
	if n == 0 {
		return 0
	}
	missed := 0
	for i := 0; i < n; i++ {
		if s.recentMissed[i] {
			missed++
		}
	}
	return float64(missed) / float64(n)
}

// CheckTimingViolation returns ErrTimingViolation if the recent miss
// rate exceeds the configured threshold.
func (s *AbsoluteScheduler) CheckTimingViolation() error {
	if s.MissRate() > s.cfg.MaxMissRate {
		return ErrTimingViolation
	}
	return nil
}

// TickCount returns the number of ticks produced so far.
func (s *AbsoluteScheduler) TickCount() uint64 { return s.tickCount }
