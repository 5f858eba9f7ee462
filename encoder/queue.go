package encoder

import "sync/atomic"

// maxReportLen bounds the staging queue's fixed per-slot buffer. 64 bytes
// covers every HID output/feature report size in common wheelbase
// firmwares; a vendor encoder needing more would need a larger bound, but
// none in scope here does.
const maxReportLen = 64

// Report is one encoded output report staged for the I/O writer.
type Report struct {
	Data [maxReportLen]byte
	Len  int
}

const queueCapacity = 8

// StagingQueue is a bounded, lock-free single-producer single-consumer
// ring buffer between the RT thread (producer, via Push) and the I/O
// writer goroutine (consumer, via Pop). The RT loop must never block on a
// mutex (spec.md §5), so slot indices are plain monotonic counters
// exchanged through atomics rather than guarded by a lock — the same
// "atomic index publishes a plain data write" pattern package mailbox's
// Cell uses, justified there by the same memory-model reasoning. On
// overflow the producer overwrites the oldest unread slot; the consumer
// detects this by comparing indices and fast-forwards, so newer torque
// commands always supersede older ones without the producer ever waiting
// on the consumer (spec.md §4.G). Shape grounded on stepper.knotBuffer's
// circular buffer, generalized from a single-goroutine panic-on-overflow
// queue to a cross-goroutine drop-oldest one.
type StagingQueue struct {
	reports [queueCapacity]Report
	tail    atomic.Uint64 // next write index; producer-owned
	head    atomic.Uint64 // next read index; consumer-owned
}

// Push stages a report, returning true if doing so overwrote a report the
// consumer had not yet read. Only the RT thread may call Push.
func (q *StagingQueue) Push(r Report) (dropped bool) {
	t := q.tail.Load()
	h := q.head.Load()
	dropped = t-h >= queueCapacity
	q.reports[t%queueCapacity] = r
	q.tail.Store(t + 1)
	return dropped
}

// Pop removes and returns the oldest still-valid staged report. Only the
// I/O writer goroutine may call Pop.
func (q *StagingQueue) Pop() (Report, bool) {
	h := q.head.Load()
	t := q.tail.Load()
	if h == t {
		return Report{}, false
	}
	if t-h > queueCapacity {
		h = t - queueCapacity // producer has overwritten everything older
	}
	r := q.reports[h%queueCapacity]
	q.head.Store(h + 1)
	return r, true
}

// Len reports the number of currently staged, unread reports.
func (q *StagingQueue) Len() int {
	t := q.tail.Load()
	h := q.head.Load()
	if t-h > queueCapacity {
		return queueCapacity
	}
	return int(t - h)
}
