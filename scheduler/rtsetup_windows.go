//go:build windows

package scheduler

import "golang.org/x/sys/windows"

const (
	processModeBackgroundEnd = 0x00200000
	realtimePriorityClass    = 0x00000100
)

// rtSetupPlatform requests the real-time priority class for the
// current process. CPU affinity and page locking are left to the
// platform default: SetProcessAffinityMask and VirtualLock exist but
// need a real deployment target to tune sensibly, unlike the fixed
// single-core assumption rtsetup_linux.go makes.
func rtSetupPlatform() {
	handle, err := windows.GetCurrentProcess()
	if err != nil {
		return
	}
	windows.SetPriorityClass(handle, realtimePriorityClass)
}
