package safety

import "time"

// RecoveryPolicy supplements the bare clear_fault transition spec.md §4.F
// specifies with the richer per-fault recovery procedure
// openracing-fmea's RecoveryProcedure/RecoveryContext track: a grace
// period that must elapse before a fault is even eligible for clearing,
// and whether clearing requires an explicit external acknowledgement
// (e.g. a UI button) or may happen automatically once the grace period
// passes and the underlying condition is no longer asserted.
type RecoveryPolicy struct {
	GracePeriod       time.Duration
	RequiresAck       bool
}

// DefaultRecoveryPolicies is a fixed table keyed by FaultType, grounded on
// the severity/action split in fault.go: Critical faults require an
// explicit acknowledgement before they can clear; Warn faults may clear
// automatically after their grace period; Info faults have no grace
// period.
var DefaultRecoveryPolicies = [faultTypeCount]RecoveryPolicy{
	HandsOff:                 {GracePeriod: 0, RequiresAck: false},
	OverTorque:                {GracePeriod: 2 * time.Second, RequiresAck: true},
	OverTemperature:           {GracePeriod: 5 * time.Second, RequiresAck: false},
	UsbDisconnect:             {GracePeriod: 1 * time.Second, RequiresAck: true},
	UsbError:                  {GracePeriod: 500 * time.Millisecond, RequiresAck: false},
	DeviceTimeout:             {GracePeriod: 1 * time.Second, RequiresAck: true},
	PipelineFault:             {GracePeriod: 1 * time.Second, RequiresAck: true},
	TimingViolation:           {GracePeriod: 500 * time.Millisecond, RequiresAck: false},
	WatchdogTimeout:           {GracePeriod: 2 * time.Second, RequiresAck: true},
	EncoderError:              {GracePeriod: 1 * time.Second, RequiresAck: true},
	FirmwareUpdateInProgress:  {GracePeriod: 0, RequiresAck: false},
}

// RecoveryContext tracks, per outstanding fault, how long it has been
// since DetectFault last raised it, so a non-RT observer can decide when
// ClearFault is permitted.
type RecoveryContext struct {
	detectedAtNs map[FaultType]int64
}

// NewRecoveryContext constructs an empty RecoveryContext.
func NewRecoveryContext() *RecoveryContext {
	return &RecoveryContext{detectedAtNs: make(map[FaultType]int64)}
}

// Observe records that kind was detected at nowNs. Called by the
// non-RT observer alongside FSM.DetectFault (RecoveryContext itself is
// not on the RT path and allocates on first use of a new fault kind).
func (r *RecoveryContext) Observe(kind FaultType, nowNs int64) {
	r.detectedAtNs[kind] = nowNs
}

// Eligible reports whether kind's grace period has elapsed as of nowNs.
// If kind was never observed, it is not eligible.
func (r *RecoveryContext) Eligible(kind FaultType, nowNs int64) bool {
	at, ok := r.detectedAtNs[kind]
	if !ok {
		return false
	}
	policy := DefaultRecoveryPolicies[kind]
	return time.Duration(nowNs-at) >= policy.GracePeriod
}

// Forget drops the recovery bookkeeping for kind, called once the fault
// actually clears.
func (r *RecoveryContext) Forget(kind FaultType) {
	delete(r.detectedAtNs, kind)
}
