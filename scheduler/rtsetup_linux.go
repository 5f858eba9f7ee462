//go:build linux

package scheduler

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// schedParam mirrors struct sched_param from <sched.h>; x/sys/unix
// has no typed wrapper for sched_setscheduler, so the call goes
// through a raw syscall the same way cmd/controller's debug_rpi.go
// issues SYS_IOCTL directly for a termios struct x/sys/unix also
// doesn't wrap at the syscall level.
type schedParam struct {
	priority int32
}

const schedFIFO = 1

// rtSetupPlatform requests SCHED_FIFO at a fixed priority, pins the
// calling thread to CPU 0, and locks all current and future memory
// pages. Every step's error is discarded: none of this is fatal, it
// only improves jitter when the privileges are available (typically
// CAP_SYS_NICE in a container, or root).
func rtSetupPlatform() {
	param := schedParam{priority: 80}
	unix.Syscall(unix.SYS_SCHED_SETSCHEDULER, 0, uintptr(schedFIFO), uintptr(unsafe.Pointer(&param)))

	var set unix.CPUSet
	set.Zero()
	set.Set(0)
	unix.SchedSetaffinity(0, &set)

	unix.Mlockall(unix.MCL_CURRENT | unix.MCL_FUTURE)
}
