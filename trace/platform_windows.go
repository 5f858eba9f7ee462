//go:build windows

package trace

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// windowsETWProvider stands in for a real ETW (Event Tracing for
// Windows) provider. Registering a proper ETW provider needs a
// manifest and a provider GUID, out of scope for a reference
// implementation (spec.md §1). RT events stay on RingProvider's
// lock-free path unchanged — ETW registration would be needed to emit
// them without a non-RT-safe syscall, which this does not attempt.
// App events, already off the RT thread, are additionally surfaced
// through OutputDebugString so they are visible in DebugView without
// a kernel-mode dependency.
type windowsETWProvider struct {
	*RingProvider
	outputDebugStringW *windows.LazyProc
}

func newPlatformProvider() (Provider, error) {
	dll := windows.NewLazySystemDLL("kernel32.dll")
	p := &windowsETWProvider{
		RingProvider:       NewRingProvider(),
		outputDebugStringW: dll.NewProc("OutputDebugStringW"),
	}
	return p, nil
}

func (p *windowsETWProvider) EmitAppEvent(e AppEvent) {
	p.RingProvider.EmitAppEvent(e)
	if err := p.outputDebugStringW.Find(); err == nil {
		if msg, merr := windows.UTF16PtrFromString(e.Category.String() + ": " + e.Message); merr == nil {
			p.outputDebugStringW.Call(uintptr(unsafe.Pointer(msg)))
		}
	}
}
