//go:build linux

package trace

import (
	"golang.org/x/sys/unix"
)

// traceMarkerPath is ftrace's userspace injection point. Writing a
// line here makes an RT event show up interleaved with kernel trace
// events under /sys/kernel/debug/tracing/trace, the same mechanism
// openracing-tracing's LinuxTracepointsProvider uses.
const traceMarkerPath = "/sys/kernel/debug/tracing/trace_marker"

// linuxTracepointsProvider layers a best-effort write to the kernel's
// trace_marker on top of RingProvider's lock-free bookkeeping. Opening
// trace_marker can fail (missing debugfs mount, no permission); when
// it does, the provider degrades to the in-process ring only rather
// than failing Initialize, since RT tracing must never become a hard
// dependency on kernel debug facilities.
type linuxTracepointsProvider struct {
	*RingProvider
	fd int
}

func newPlatformProvider() (Provider, error) {
	p := &linuxTracepointsProvider{RingProvider: NewRingProvider(), fd: -1}
	fd, err := unix.Open(traceMarkerPath, unix.O_WRONLY, 0)
	if err == nil {
		p.fd = fd
	}
	return p, nil
}

func (p *linuxTracepointsProvider) EmitRTEvent(e RTEvent) {
	p.RingProvider.EmitRTEvent(e)
	if p.fd >= 0 {
		// Best-effort, bounded-size, no retry: a dropped marker
		// write must never stall the RT thread.
		unix.Write(p.fd, []byte(e.Category.String()))
	}
}

func (p *linuxTracepointsProvider) Shutdown() {
	p.RingProvider.Shutdown()
	if p.fd >= 0 {
		unix.Close(p.fd)
		p.fd = -1
	}
}
