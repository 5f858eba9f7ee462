// Package safety implements the FMEA (Failure Mode & Effects Analysis)
// interlock state machine: high-torque arming, fault detection, and the
// soft-stop torque ramp that brings the device to zero smoothly rather
// than abruptly (spec.md §4.F). It runs once per tick on the RT loop
// alongside the filter pipeline, but owns no allocation of its own beyond
// construction.
package safety

import "fmt"

// FaultType is the closed taxonomy of detectable fault conditions
// (spec.md §4.F). Each has a fixed Severity and Action looked up via
// Severity and Action below; neither varies per instance, matching the
// teacher's closed, table-driven enums (driver/tmc2209's diagnostic
// register bit names).
type FaultType uint8

const (
	HandsOff FaultType = iota
	OverTorque
	OverTemperature
	UsbDisconnect
	UsbError
	DeviceTimeout
	PipelineFault
	TimingViolation
	WatchdogTimeout
	EncoderError
	FirmwareUpdateInProgress

	faultTypeCount
)

func (k FaultType) String() string {
	switch k {
	case HandsOff:
		return "hands_off"
	case OverTorque:
		return "over_torque"
	case OverTemperature:
		return "over_temperature"
	case UsbDisconnect:
		return "usb_disconnect"
	case UsbError:
		return "usb_error"
	case DeviceTimeout:
		return "device_timeout"
	case PipelineFault:
		return "pipeline_fault"
	case TimingViolation:
		return "timing_violation"
	case WatchdogTimeout:
		return "watchdog_timeout"
	case EncoderError:
		return "encoder_error"
	case FirmwareUpdateInProgress:
		return "firmware_update_in_progress"
	default:
		return fmt.Sprintf("fault(%d)", uint8(k))
	}
}

// Severity classifies how urgently an operator or observer must be told
// about a fault.
type Severity uint8

const (
	Info Severity = iota
	Warn
	Critical
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warn:
		return "warn"
	case Critical:
		return "critical"
	default:
		return "unknown"
	}
}

// Action is the policy applied to the commanded torque when a fault of a
// given type is detected.
type Action uint8

const (
	// LogOnly leaves torque command flow untouched; the fault is recorded
	// and reported but does not affect the interlock state.
	LogOnly Action = iota
	// SoftStop initiates a linear torque ramp to zero.
	SoftStop
	// ImmediateZero commands zero torque on the next tick, no ramp.
	ImmediateZero
)

// severityTable and actionTable are the fixed policy assignments for each
// fault kind. Values are an operational judgment call: faults indicating
// the operator has already lost safe control (OverTorque, UsbDisconnect,
// DeviceTimeout, PipelineFault, WatchdogTimeout, EncoderError) are
// immediate-zero rather than soft-stop, since a ramp assumes the
// commanded torque itself is still trustworthy. FSM.DetectFault consults
// the action only outside HighTorqueArmed/HighTorqueActive: from those
// two states every fault, immediate-zero ones included, starts the
// soft-stop ramp.
var severityTable = [faultTypeCount]Severity{
	HandsOff:                 Warn,
	OverTorque:                Critical,
	OverTemperature:           Warn,
	UsbDisconnect:             Critical,
	UsbError:                  Warn,
	DeviceTimeout:              Critical,
	PipelineFault:              Critical,
	TimingViolation:            Warn,
	WatchdogTimeout:            Critical,
	EncoderError:               Critical,
	FirmwareUpdateInProgress:   Info,
}

var actionTable = [faultTypeCount]Action{
	HandsOff:                 SoftStop,
	OverTorque:                ImmediateZero,
	OverTemperature:           SoftStop,
	UsbDisconnect:             ImmediateZero,
	UsbError:                  SoftStop,
	DeviceTimeout:              ImmediateZero,
	PipelineFault:              ImmediateZero,
	TimingViolation:            SoftStop,
	WatchdogTimeout:            ImmediateZero,
	EncoderError:               ImmediateZero,
	FirmwareUpdateInProgress:   LogOnly,
}

// SeverityOf reports the fixed severity for a fault kind.
func SeverityOf(k FaultType) Severity { return severityTable[k] }

// ActionOf reports the fixed action policy for a fault kind.
func ActionOf(k FaultType) Action { return actionTable[k] }

// FaultSet is a bitset over FaultType, grounded on the teacher's Axis
// bitmask pattern in stepper.go ("blocked |= axis"): faults accumulate by
// OR and ClearFault removes them one at a time; only FSM.Shutdown drops
// the whole set at once.
type FaultSet uint16

func faultBit(k FaultType) FaultSet { return 1 << FaultSet(k) }

func (s FaultSet) Has(k FaultType) bool { return s&faultBit(k) != 0 }
func (s FaultSet) Empty() bool          { return s == 0 }
func (s FaultSet) Union(k FaultType) FaultSet {
	return s | faultBit(k)
}
func (s FaultSet) Clear(k FaultType) FaultSet {
	return s &^ faultBit(k)
}
