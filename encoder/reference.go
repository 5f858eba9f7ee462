package encoder

import "encoding/binary"

// ReferenceEncoder is a minimal concrete TorqueEncoder used by
// cmd/ffbenchd and by this package's own tests. Its wire layout (6 bytes:
// big-endian Q8.8 torque, sequence, flags) is not a real vendor format —
// real formats are explicitly out of scope (spec.md §1) — but it
// exercises the full contract shape, matching spec.md §4.G's
// `writeDatagram`-style fixed-layout encoding the way
// driver/tmc2209.writeDatagram does for its own (also fixed, also
// internal) register protocol.
type ReferenceEncoder struct {
	Min, Max        TorqueQ8_8
	ClockwiseIsPlus bool
}

const referencePayloadLen = 6

func (e ReferenceEncoder) PayloadLen() int { return referencePayloadLen }

func (e ReferenceEncoder) Encode(torque TorqueQ8_8, seq uint16, flags uint8, out []byte) int {
	if torque < e.Min {
		torque = e.Min
	}
	if torque > e.Max {
		torque = e.Max
	}
	binary.BigEndian.PutUint16(out[0:2], uint16(torque))
	binary.BigEndian.PutUint16(out[2:4], seq)
	out[4] = flags
	out[5] = 0
	return referencePayloadLen
}

func (e ReferenceEncoder) EncodeZero(out []byte) int {
	return e.Encode(0, 0, 0, out)
}

func (e ReferenceEncoder) ClampMin() TorqueQ8_8 { return e.Min }
func (e ReferenceEncoder) ClampMax() TorqueQ8_8 { return e.Max }

func (e ReferenceEncoder) PositiveIsClockwise() bool { return e.ClockwiseIsPlus }
