//go:build linux

package scheduler

import "golang.org/x/sys/unix"

// sleepUntilPlatform sleeps for the remaining duration to targetNs
// using clock_nanosleep against CLOCK_MONOTONIC, the mechanism
// spec.md §4.C names for Linux. The sleep is relative (not
// TIMER_ABSTIME) since targetNs/nowNs live in this scheduler's own
// monotonic frame (time.Since of its start), not the kernel's
// CLOCK_MONOTONIC epoch; the caller always busy-spins any remainder,
// so sub-microsecond drift between the two clocks is absorbed there.
func sleepUntilPlatform(targetNs, nowNs int64) {
	remaining := targetNs - nowNs
	if remaining <= 0 {
		return
	}
	ts := unix.NsecToTimespec(remaining)
	for {
		rem := &unix.Timespec{}
		err := unix.ClockNanosleep(unix.CLOCK_MONOTONIC, 0, &ts, rem)
		if err == nil || err != unix.EINTR {
			return
		}
		ts = *rem
	}
}
