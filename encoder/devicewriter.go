package encoder

import (
	"errors"
	"fmt"

	"github.com/tarm/serial"
)

// DeviceWriter is the narrow, non-RT-safe boundary to a physical device.
// It may block briefly and is called only from a separate I/O goroutine
// that drains a StagingQueue, never from the RT thread (spec.md §4.G).
type DeviceWriter interface {
	WriteOutputReport(data []byte) (int, error)
	WriteFeatureReport(data []byte) (int, error)
}

// ErrWriteVerifyFailed is returned by SerialDeviceWriter when a write
// succeeds at the transport level but the device's echoed acknowledgement
// does not match, mirroring the write-then-verify discipline
// driver/tmc2209's Device.write uses (read IFCNT before and after a write
// to confirm it actually landed).
var ErrWriteVerifyFailed = errors.New("encoder: device did not acknowledge write")

// writeAttempts bounds the retry loop, matching driver/tmc2209's fixed
// attempt count for a register write.
const writeAttempts = 3

// SerialDeviceWriter is a reference DeviceWriter over a serial transport,
// for use in place of a real vendor USB HID stack (out of scope, spec.md
// §1); cmd/ffbenchd does not use it. It retries each write up to
// writeAttempts times, matching driver/tmc2209's retry-with-verify write
// loop generalized from a register protocol to a framed report protocol:
// every write is followed by reading back one acknowledgement byte, and a
// mismatch is retried rather than silently accepted.
type SerialDeviceWriter struct {
	port *serial.Port
	ack  [1]byte
}

// NewSerialDeviceWriter opens a serial port as a DeviceWriter.
func NewSerialDeviceWriter(name string, baud int) (*SerialDeviceWriter, error) {
	port, err := serial.OpenPort(&serial.Config{Name: name, Baud: baud})
	if err != nil {
		return nil, fmt.Errorf("encoder: open serial port: %w", err)
	}
	return &SerialDeviceWriter{port: port}, nil
}

func (w *SerialDeviceWriter) WriteOutputReport(data []byte) (int, error) {
	return w.writeWithVerify(data)
}

func (w *SerialDeviceWriter) WriteFeatureReport(data []byte) (int, error) {
	return w.writeWithVerify(data)
}

func (w *SerialDeviceWriter) writeWithVerify(data []byte) (int, error) {
	var lastErr error
	for i := 0; i < writeAttempts; i++ {
		n, err := w.port.Write(data)
		if err != nil {
			lastErr = fmt.Errorf("encoder: write: %w", err)
			continue
		}
		if _, err := w.port.Read(w.ack[:]); err != nil {
			lastErr = fmt.Errorf("encoder: read ack: %w", err)
			continue
		}
		if w.ack[0] != 0x06 { // ASCII ACK
			lastErr = ErrWriteVerifyFailed
			continue
		}
		return n, nil
	}
	return 0, lastErr
}

// Close releases the underlying serial port.
func (w *SerialDeviceWriter) Close() error {
	return w.port.Close()
}
