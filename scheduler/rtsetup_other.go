//go:build !linux && !windows

package scheduler

// rtSetupPlatform is a no-op on platforms with no supported real-time
// setup path; the scheduler still runs, with whatever jitter the host
// OS scheduler provides.
func rtSetupPlatform() {}
