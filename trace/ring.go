package trace

import (
	"sync"
	"sync/atomic"
)

// ringCapacity bounds the RT event ring. It only needs to absorb the
// burst between RT ticks and a drain cycle, not to retain long
// history — a consumer that falls behind sees EventsLost grow instead
// of the ring growing unbounded.
const ringCapacity = 256

// RingProvider is a concrete Provider suitable for the RT thread: RT
// events land in a lock-free SPSC overwrite ring (the same head/tail
// atomic-counter shape as encoder.StagingQueue, justified there and
// reused here for the identical reason — the RT producer must never
// block on a mutex), and a separate goroutine drains it with Drain.
// App events go through a small mutex-guarded slice since they are
// never emitted from the RT thread.
type RingProvider struct {
	events [ringCapacity]RTEvent
	tail   atomic.Uint64
	head   atomic.Uint64

	emitted atomic.Uint64
	lost    atomic.Uint64

	enabled atomic.Bool

	appMu     sync.Mutex
	appEvents []AppEvent
	appCount  atomic.Uint64
}

func NewRingProvider() *RingProvider {
	p := &RingProvider{}
	p.enabled.Store(true)
	return p
}

func (p *RingProvider) Initialize() error {
	p.enabled.Store(true)
	return nil
}

// EmitRTEvent stages e in the ring. It never allocates or blocks: on
// overflow it overwrites the oldest unread slot and counts the loss,
// exactly as spec.md §4.H specifies.
func (p *RingProvider) EmitRTEvent(e RTEvent) {
	if !p.enabled.Load() {
		return
	}
	t := p.tail.Load()
	h := p.head.Load()
	if t-h >= ringCapacity {
		p.lost.Add(1)
	}
	p.events[t%ringCapacity] = e
	p.tail.Store(t + 1)
	p.emitted.Add(1)
}

// Drain removes and returns all events staged since the last Drain.
// Only the consumer goroutine may call Drain.
func (p *RingProvider) Drain(buf []RTEvent) []RTEvent {
	h := p.head.Load()
	t := p.tail.Load()
	if t-h > ringCapacity {
		h = t - ringCapacity
	}
	for h != t {
		buf = append(buf, p.events[h%ringCapacity])
		h++
	}
	p.head.Store(h)
	return buf
}

func (p *RingProvider) EmitAppEvent(e AppEvent) {
	p.appMu.Lock()
	p.appEvents = append(p.appEvents, e)
	p.appMu.Unlock()
	p.appCount.Add(1)
}

// DrainAppEvents returns and clears all staged app events.
func (p *RingProvider) DrainAppEvents() []AppEvent {
	p.appMu.Lock()
	out := p.appEvents
	p.appEvents = nil
	p.appMu.Unlock()
	return out
}

func (p *RingProvider) Metrics() Metrics {
	return Metrics{
		EventsEmitted:    p.emitted.Load(),
		EventsLost:       p.lost.Load(),
		AppEventsEmitted: p.appCount.Load(),
	}
}

func (p *RingProvider) IsEnabled() bool { return p.enabled.Load() }

func (p *RingProvider) Shutdown() { p.enabled.Store(false) }

var _ Provider = (*RingProvider)(nil)
