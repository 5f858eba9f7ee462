package trace

import "testing"

func TestRingProviderDrainOrder(t *testing.T) {
	p := NewRingProvider()
	for i := 0; i < 3; i++ {
		p.EmitRTEvent(RTEvent{Category: TickStart, TickCount: uint64(i)})
	}
	got := p.Drain(nil)
	if len(got) != 3 {
		t.Fatalf("Drain returned %d events, want 3", len(got))
	}
	for i, e := range got {
		if e.TickCount != uint64(i) {
			t.Fatalf("Drain[%d].TickCount = %d, want %d", i, e.TickCount, i)
		}
	}
	if m := p.Metrics(); m.EventsEmitted != 3 || m.EventsLost != 0 {
		t.Fatalf("Metrics = %+v, want 3 emitted, 0 lost", m)
	}
}

func TestRingProviderOverflowCountsLoss(t *testing.T) {
	p := NewRingProvider()
	for i := 0; i < ringCapacity+5; i++ {
		p.EmitRTEvent(RTEvent{Category: TickEnd, TickCount: uint64(i)})
	}
	got := p.Drain(nil)
	if len(got) != ringCapacity {
		t.Fatalf("Drain returned %d events, want %d", len(got), ringCapacity)
	}
	if got[0].TickCount != 5 {
		t.Fatalf("oldest surviving TickCount = %d, want 5 (first 5 overwritten)", got[0].TickCount)
	}
	if m := p.Metrics(); m.EventsLost != 5 {
		t.Fatalf("EventsLost = %d, want 5", m.EventsLost)
	}
}

func TestRingProviderAppEvents(t *testing.T) {
	p := NewRingProvider()
	p.EmitAppEvent(AppEvent{Category: ConfigChanged, Message: "reload"})
	p.EmitAppEvent(AppEvent{Category: SafetyTransition, Message: "armed"})
	events := p.DrainAppEvents()
	if len(events) != 2 {
		t.Fatalf("DrainAppEvents returned %d events, want 2", len(events))
	}
	if events := p.DrainAppEvents(); len(events) != 0 {
		t.Fatalf("second DrainAppEvents returned %d events, want 0", len(events))
	}
	if m := p.Metrics(); m.AppEventsEmitted != 2 {
		t.Fatalf("AppEventsEmitted = %d, want 2", m.AppEventsEmitted)
	}
}

func TestRingProviderShutdownDisablesEmission(t *testing.T) {
	p := NewRingProvider()
	p.Shutdown()
	if p.IsEnabled() {
		t.Fatal("IsEnabled() true after Shutdown")
	}
	p.EmitRTEvent(RTEvent{Category: DeadlineMiss})
	if m := p.Metrics(); m.EventsEmitted != 0 {
		t.Fatalf("EventsEmitted = %d after shutdown, want 0", m.EventsEmitted)
	}
}

func TestNoopProviderDiscardsEverything(t *testing.T) {
	var p NoopProvider
	p.EmitRTEvent(RTEvent{Category: PipelineFault})
	p.EmitAppEvent(AppEvent{Category: Diagnostic})
	if p.IsEnabled() {
		t.Fatal("NoopProvider.IsEnabled() = true, want false")
	}
	if m := p.Metrics(); m != (Metrics{}) {
		t.Fatalf("Metrics() = %+v, want zero value", m)
	}
}

func TestRTCategoryString(t *testing.T) {
	cases := map[RTCategory]string{
		TickStart:     "tick_start",
		TickEnd:       "tick_end",
		HIDWrite:      "hid_write",
		DeadlineMiss:  "deadline_miss",
		PipelineFault: "pipeline_fault",
	}
	for cat, want := range cases {
		if got := cat.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", cat, got, want)
		}
	}
}
