package encoder

import "testing"

func TestTorqueQ8_8RoundTrip(t *testing.T) {
	q := NewTorqueQ8_8(1.5)
	if q != 384 {
		t.Fatalf("NewTorqueQ8_8(1.5) = %d, want 384", q)
	}
	if got := q.Nm(); got != 1.5 {
		t.Fatalf("Nm() = %v, want 1.5", got)
	}
}

func TestTorqueQ8_8Saturates(t *testing.T) {
	if got := NewTorqueQ8_8(1000); got != 32767 {
		t.Fatalf("NewTorqueQ8_8(1000) = %d, want 32767", got)
	}
	if got := NewTorqueQ8_8(-1000); got != -32768 {
		t.Fatalf("NewTorqueQ8_8(-1000) = %d, want -32768", got)
	}
}

func TestReferenceEncoderClamps(t *testing.T) {
	e := ReferenceEncoder{Min: -256, Max: 256}
	var buf [referencePayloadLen]byte
	n := e.Encode(NewTorqueQ8_8(10), 1, 0, buf[:])
	if n != referencePayloadLen {
		t.Fatalf("Encode returned %d, want %d", n, referencePayloadLen)
	}
	got := int16(uint16(buf[0])<<8 | uint16(buf[1]))
	if TorqueQ8_8(got) != 256 {
		t.Fatalf("encoded torque = %d, want clamped to 256", got)
	}
}

func TestReferenceEncoderZero(t *testing.T) {
	e := ReferenceEncoder{Min: -256, Max: 256}
	var buf [referencePayloadLen]byte
	e.EncodeZero(buf[:])
	if buf[0] != 0 || buf[1] != 0 {
		t.Fatalf("EncodeZero did not write zero torque: %v", buf[:2])
	}
}

func TestStagingQueuePushPopOrder(t *testing.T) {
	var q StagingQueue
	for i := 0; i < 3; i++ {
		var r Report
		r.Data[0] = byte(i)
		r.Len = 1
		if dropped := q.Push(r); dropped {
			t.Fatalf("unexpected drop at push %d", i)
		}
	}
	for i := 0; i < 3; i++ {
		r, ok := q.Pop()
		if !ok {
			t.Fatalf("Pop %d: queue empty", i)
		}
		if r.Data[0] != byte(i) {
			t.Fatalf("Pop %d: Data[0] = %d, want %d", i, r.Data[0], i)
		}
	}
	if _, ok := q.Pop(); ok {
		t.Fatal("Pop on empty queue returned ok=true")
	}
}

func TestStagingQueueDropsOldestOnOverflow(t *testing.T) {
	var q StagingQueue
	for i := 0; i < queueCapacity; i++ {
		var r Report
		r.Data[0] = byte(i)
		q.Push(r)
	}
	var overflow Report
	overflow.Data[0] = 0xFF
	if dropped := q.Push(overflow); !dropped {
		t.Fatal("Push did not report a drop on a full queue")
	}
	r, ok := q.Pop()
	if !ok {
		t.Fatal("Pop after overflow: queue empty")
	}
	if r.Data[0] != 1 {
		t.Fatalf("oldest surviving entry Data[0] = %d, want 1 (entry 0 dropped)", r.Data[0])
	}
}

func TestStagingQueueLen(t *testing.T) {
	var q StagingQueue
	if q.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", q.Len())
	}
	q.Push(Report{})
	q.Push(Report{})
	if q.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", q.Len())
	}
	q.Pop()
	if q.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", q.Len())
	}
}
