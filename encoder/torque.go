// Package encoder implements the narrow boundary between the RT loop and
// vendor-specific device transports: fixed-point torque encoding, the
// TorqueEncoder/DeviceWriter contracts, and a bounded staging queue
// between them (spec.md §4.G). Vendor byte layouts themselves are out of
// scope; this package only defines the interfaces and one reference
// implementation used by the demo binary.
package encoder

// TorqueQ8_8 is a signed Q8.8 fixed-point Newton-meter value: 1.0 Nm ==
// 256. Fixed-point avoids float-to-int conversion anomalies at the
// wire boundary and is compact (spec.md §4.G).
type TorqueQ8_8 int16

// NewTorqueQ8_8 converts a float32 Newton-meter value to Q8.8, saturating
// at the representable range rather than wrapping.
func NewTorqueQ8_8(nm float32) TorqueQ8_8 {
	scaled := nm * 256
	switch {
	case scaled > 32767:
		return 32767
	case scaled < -32768:
		return -32768
	default:
		return TorqueQ8_8(scaled)
	}
}

// Nm converts back to a float32 Newton-meter value.
func (t TorqueQ8_8) Nm() float32 {
	return float32(t) / 256
}

// TorqueEncoder is the vendor-specific, allocation-free torque-to-bytes
// encoder the RT loop calls once per tick. Rust's `TorqueEncoder<const N:
// usize>` const-generic payload length has no Go equivalent (Go generics
// do not parametrize array length by value), so the contract instead
// reports its required buffer size via PayloadLen and writes into a
// caller-supplied slice of at least that length — the caller
// pre-allocates once at startup and reuses the same backing array every
// tick, preserving the "no allocation on the hot path" invariant without
// a language feature Go doesn't have.
type TorqueEncoder interface {
	// PayloadLen reports the number of bytes Encode and EncodeZero write.
	PayloadLen() int
	// Encode writes the output report for torque, returning the payload
	// length written. out must have length >= PayloadLen().
	Encode(torque TorqueQ8_8, seq uint16, flags uint8, out []byte) int
	// EncodeZero writes a safe-state zero-torque report.
	EncodeZero(out []byte) int
	// ClampMin and ClampMax report this encoder's saturation limits.
	ClampMin() TorqueQ8_8
	ClampMax() TorqueQ8_8
	// PositiveIsClockwise reports the encoder's sign convention.
	PositiveIsClockwise() bool
}
