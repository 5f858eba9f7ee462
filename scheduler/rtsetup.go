package scheduler

// RTSetup attempts to configure the calling OS thread for real-time
// execution: elevated scheduling priority, CPU affinity pinning, and
// locking the process's memory pages to prevent paging-induced
// latency spikes. Every step is best-effort: spec.md §4.C requires
// none of them to be fatal on failure, since the scheduler must still
// run (with worse jitter) on a desktop OS or in a container without
// the relevant privileges.
//
// Implemented per-OS in rtsetup_linux.go, rtsetup_windows.go and
// rtsetup_other.go.
func RTSetup() {
	rtSetupPlatform()
}
