package safety

import (
	"testing"
	"time"
)

func testConfig() Config {
	return Config{
		MaxSafeTorqueNm:  5,
		MaxHighTorqueNm:  20,
		HandsOffTimeout:  2 * time.Second,
		ComboHoldMinimum: 2 * time.Second,
		SoftStopDuration: 500 * time.Millisecond,
	}
}

func armToActive(t *testing.T, f *FSM) Token {
	t.Helper()
	tok, err := f.RequestHighTorque()
	if err != nil {
		t.Fatalf("RequestHighTorque: %v", err)
	}
	if err := f.ProvideUIConsent(tok); err != nil {
		t.Fatalf("ProvideUIConsent: %v", err)
	}
	if err := f.ReportComboStart(tok, 0); err != nil {
		t.Fatalf("ReportComboStart: %v", err)
	}
	if err := f.ConfirmHighTorque(InterlockAck{Token: tok, ComboComplete: true, ComboHold: 3 * time.Second}); err != nil {
		t.Fatalf("ConfirmHighTorque: %v", err)
	}
	if f.State().Kind != HighTorqueActive {
		t.Fatalf("State = %v, want HighTorqueActive", f.State().Kind)
	}
	return tok
}

func TestSafeTorqueClampsToMaxSafe(t *testing.T) {
	f := NewFSM(testConfig(), nil)
	if got := f.ClampTorqueNm(100, 0); got != 5 {
		t.Fatalf("ClampTorqueNm = %v, want 5", got)
	}
	if got := f.ClampTorqueNm(-100, 0); got != -5 {
		t.Fatalf("ClampTorqueNm = %v, want -5", got)
	}
}

func TestArmingSequenceReachesHighTorqueActive(t *testing.T) {
	f := NewFSM(testConfig(), nil)
	armToActive(t, f)
	if got := f.ClampTorqueNm(100, 0); got != 20 {
		t.Fatalf("ClampTorqueNm = %v, want 20", got)
	}
}

func TestConfirmHighTorqueRejectsShortCombo(t *testing.T) {
	f := NewFSM(testConfig(), nil)
	tok, _ := f.RequestHighTorque()
	f.ProvideUIConsent(tok)
	err := f.ConfirmHighTorque(InterlockAck{Token: tok, ComboComplete: true, ComboHold: 1 * time.Second})
	if err != ErrComboTooBrief {
		t.Fatalf("err = %v, want ErrComboTooBrief", err)
	}
}

func TestRequestHighTorqueRejectsWrongState(t *testing.T) {
	f := NewFSM(testConfig(), nil)
	armToActive(t, f)
	if _, err := f.RequestHighTorque(); err != ErrWrongState {
		t.Fatalf("err = %v, want ErrWrongState", err)
	}
}

func TestDetectFaultFromActiveInitiatesSoftStop(t *testing.T) {
	f := NewFSM(testConfig(), nil)
	armToActive(t, f)
	f.DetectFault(OverTemperature, 1_000_000, 15)
	if f.State().Kind != SoftStopping {
		t.Fatalf("State = %v, want SoftStopping", f.State().Kind)
	}
	if f.State().InitialTorqueNm != 15 {
		t.Fatalf("InitialTorqueNm = %v, want 15", f.State().InitialTorqueNm)
	}
}

func TestSoftStopRampReachesZeroAndBecomesFaulted(t *testing.T) {
	f := NewFSM(testConfig(), nil)
	armToActive(t, f)
	f.DetectFault(OverTemperature, 0, 15)

	mid := f.ClampTorqueNm(15, 250_000_000) // halfway through 500ms ramp
	if mid <= 0 || mid >= 15 {
		t.Fatalf("mid-ramp torque = %v, want strictly between 0 and 15", mid)
	}

	f.Tick(false, 600_000_000) // past ramp duration
	if f.State().Kind != Faulted {
		t.Fatalf("State = %v, want Faulted after ramp completes", f.State().Kind)
	}
	if got := f.ClampTorqueNm(15, 600_000_000); got != 0 {
		t.Fatalf("ClampTorqueNm after fault = %v, want 0", got)
	}
}

func TestImmediateZeroFaultFromSafeTorqueGoesDirectlyToFaulted(t *testing.T) {
	f := NewFSM(testConfig(), nil)
	f.DetectFault(PipelineFault, 0, 0)
	if f.State().Kind != Faulted {
		t.Fatalf("State = %v, want Faulted", f.State().Kind)
	}
	if got := f.ClampTorqueNm(5, 0); got != 0 {
		t.Fatalf("ClampTorqueNm = %v, want 0", got)
	}
}

func TestClearFaultReturnsToSafeTorqueWhenSetEmpty(t *testing.T) {
	f := NewFSM(testConfig(), nil)
	f.DetectFault(PipelineFault, 0, 0)
	f.DetectFault(UsbError, 0, 0)
	f.ClearFault(PipelineFault)
	if f.State().Kind != Faulted {
		t.Fatalf("State = %v, want still Faulted", f.State().Kind)
	}
	f.ClearFault(UsbError)
	if f.State().Kind != SafeTorque {
		t.Fatalf("State = %v, want SafeTorque", f.State().Kind)
	}
}

func TestHandsOffTimeoutRaisesFaultDuringHighTorqueActive(t *testing.T) {
	f := NewFSM(testConfig(), nil)
	armToActive(t, f)
	f.Tick(true, 0)
	f.Tick(true, int64(2*time.Second)+1)
	if f.State().Kind != SoftStopping {
		t.Fatalf("State = %v, want SoftStopping after hands-off timeout", f.State().Kind)
	}
	if !f.State().Faults.Has(HandsOff) {
		t.Fatal("fault set does not contain HandsOff")
	}
}

func TestHandsOffClearsWhenWheelMoves(t *testing.T) {
	f := NewFSM(testConfig(), nil)
	armToActive(t, f)
	f.Tick(true, 0)
	f.Tick(false, int64(3*time.Second))
	if f.State().Kind != HighTorqueActive {
		t.Fatalf("State = %v, want still HighTorqueActive", f.State().Kind)
	}
}

func TestClampTorqueNmCoercesNaN(t *testing.T) {
	f := NewFSM(testConfig(), nil)
	got := f.ClampTorqueNm(float32(nan()), 0)
	if got != 0 {
		t.Fatalf("ClampTorqueNm(NaN) = %v, want 0", got)
	}
}

func nan() float64 {
	var zero float64
	return zero / zero
}

func TestFaultSetUnionAndClear(t *testing.T) {
	var s FaultSet
	s = s.Union(OverTorque)
	s = s.Union(UsbError)
	if !s.Has(OverTorque) || !s.Has(UsbError) {
		t.Fatal("FaultSet missing expected bits")
	}
	s = s.Clear(OverTorque)
	if s.Has(OverTorque) {
		t.Fatal("Clear did not remove OverTorque")
	}
	if !s.Has(UsbError) {
		t.Fatal("Clear removed the wrong bit")
	}
}

type recordingSink struct {
	transitions []StateKind
	faults      []FaultType
}

func (r *recordingSink) SafetyStateChanged(from, to StateKind) {
	r.transitions = append(r.transitions, to)
}
func (r *recordingSink) FaultDetected(kind FaultType, severity Severity) {
	r.faults = append(r.faults, kind)
}
func (r *recordingSink) FaultCleared(kind FaultType) {}

func TestAlertSinkReceivesTransitionsAndFaults(t *testing.T) {
	sink := &recordingSink{}
	f := NewFSM(testConfig(), sink)
	f.DetectFault(PipelineFault, 0, 0)
	if len(sink.faults) != 1 || sink.faults[0] != PipelineFault {
		t.Fatalf("faults = %v, want [PipelineFault]", sink.faults)
	}
	if len(sink.transitions) != 1 || sink.transitions[0] != Faulted {
		t.Fatalf("transitions = %v, want [Faulted]", sink.transitions)
	}
}

func TestShutdownForcesSafeTorqueFromAnyState(t *testing.T) {
	f := NewFSM(testConfig(), nil)
	f.DetectFault(PipelineFault, 0, 0)
	if f.State().Kind != Faulted {
		t.Fatalf("precondition: state = %v, want Faulted", f.State().Kind)
	}
	f.Shutdown()
	if f.State().Kind != SafeTorque {
		t.Fatalf("state after Shutdown = %v, want SafeTorque", f.State().Kind)
	}
}

func TestRecoveryContextEligibility(t *testing.T) {
	r := NewRecoveryContext()
	r.Observe(OverTemperature, 0)
	if r.Eligible(OverTemperature, int64(1*time.Second)) {
		t.Fatal("Eligible too early, grace period is 5s")
	}
	if !r.Eligible(OverTemperature, int64(6*time.Second)) {
		t.Fatal("Eligible should be true after grace period elapses")
	}
	r.Forget(OverTemperature)
	if r.Eligible(OverTemperature, int64(10*time.Second)) {
		t.Fatal("Eligible should be false once forgotten")
	}
}
