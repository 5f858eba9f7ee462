package scheduler

import "testing"

func TestPLLStaysWithinBound(t *testing.T) {
	p := NewPLLState(1_000_000)
	for i := 0; i < 500; i++ {
		p.Update(50_000) // persistent +50us error every tick
	}
	nominal := 1_000_000.0
	got := float64(p.Period())
	bound := nominal * 0.001
	if got < nominal-bound || got > nominal+bound {
		t.Fatalf("Period() = %v, want within [%v, %v]", got, nominal-bound, nominal+bound)
	}
}

func TestPLLTracksNoError(t *testing.T) {
	p := NewPLLState(1_000_000)
	for i := 0; i < 10; i++ {
		p.Update(0)
	}
	if got := p.Period(); got != 1_000_000 {
		t.Fatalf("Period() = %d, want 1000000 with zero error", got)
	}
}

func TestJitterMetricsRecord(t *testing.T) {
	var j JitterMetrics
	j.Record(100, false)
	j.Record(200, false)
	j.Record(50, true)
	if j.TotalTicks() != 3 {
		t.Fatalf("TotalTicks() = %d, want 3", j.TotalTicks())
	}
	if j.MissedTicks() != 1 {
		t.Fatalf("MissedTicks() = %d, want 1", j.MissedTicks())
	}
	if j.MaxJitterNs() != 200 {
		t.Fatalf("MaxJitterNs() = %d, want 200", j.MaxJitterNs())
	}
}

func TestJitterMetricsP99(t *testing.T) {
	var j JitterMetrics
	for i := 1; i <= 100; i++ {
		j.Record(int64(i), false)
	}
	if got := j.P99(); got < 95 || got > 100 {
		t.Fatalf("P99() = %d, want close to 99", got)
	}
}

func TestJitterMetricsP99Empty(t *testing.T) {
	var j JitterMetrics
	if got := j.P99(); got != 0 {
		t.Fatalf("P99() on empty = %d, want 0", got)
	}
}

func TestWaitForTickMonotonic(t *testing.T) {
	s := NewAbsoluteScheduler(Config{
		PeriodNs:       100_000, // 100us, fast enough to not slow the test down much
		MissRateWindow: 16,
		MaxMissRate:    0.5,
	})
	var last uint64
	for i := 0; i < 5; i++ {
		got := s.WaitForTick()
		if got <= last {
			t.Fatalf("tick %d: WaitForTick() = %d, want > %d", i, got, last)
		}
		last = got
	}
}

func TestMissRateAndTimingViolation(t *testing.T) {
	s := NewAbsoluteScheduler(Config{
		PeriodNs:       1_000_000,
		MissRateWindow: 4,
		MaxMissRate:    0.1,
	})
	// Force misses by advancing nextDeadline into the past relative
	// to the scheduler's own clock.
	s.nextDeadline = -1
	for i := 0; i < 4; i++ {
		s.WaitForTick()
		s.nextDeadline = s.nowNs() - 1
	}
	if s.MissRate() == 0 {
		t.Fatal("MissRate() = 0 after forcing every tick to miss")
	}
	if err := s.CheckTimingViolation(); err != ErrTimingViolation {
		t.Fatalf("CheckTimingViolation() = %v, want ErrTimingViolation", err)
	}
}
