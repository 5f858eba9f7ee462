//go:build !linux && !windows

package scheduler

import "time"

// sleepUntilPlatform is the portable fallback named in spec.md §4.C:
// plain thread sleep for the bulk of the wait, busy-spin for the
// rest.
func sleepUntilPlatform(targetNs, nowNs int64) {
	remaining := targetNs - nowNs
	if remaining <= 0 {
		return
	}
	time.Sleep(time.Duration(remaining))
}
