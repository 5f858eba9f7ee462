package engine

import "github.com/trackforce/ffbcore/safety"

// EventKind discriminates the three things an AlertSink reports.
type EventKind uint8

const (
	EventStateChanged EventKind = iota
	EventFaultDetected
	EventFaultCleared
)

// Event is a safety-interlock notification forwarded off the RT
// thread. Consumers read these from Engine.Events.
type Event struct {
	Kind     EventKind
	From, To safety.StateKind
	Fault    safety.FaultType
	Severity safety.Severity
}

// channelAlertSink adapts safety.AlertSink to a bounded channel so the
// FSM (called from the RT loop) never blocks delivering a
// notification to a slow consumer: a full channel silently drops the
// event rather than stalling the tick.
type channelAlertSink struct {
	ch chan Event
}

func newChannelAlertSink(capacity int) *channelAlertSink {
	return &channelAlertSink{ch: make(chan Event, capacity)}
}

func (s *channelAlertSink) send(e Event) {
	select {
	case s.ch <- e:
	default:
	}
}

func (s *channelAlertSink) SafetyStateChanged(from, to safety.StateKind) {
	s.send(Event{Kind: EventStateChanged, From: from, To: to})
}

func (s *channelAlertSink) FaultDetected(kind safety.FaultType, severity safety.Severity) {
	s.send(Event{Kind: EventFaultDetected, Fault: kind, Severity: severity})
}

func (s *channelAlertSink) FaultCleared(kind safety.FaultType) {
	s.send(Event{Kind: EventFaultCleared, Fault: kind})
}

var _ safety.AlertSink = (*channelAlertSink)(nil)
