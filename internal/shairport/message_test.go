package shairport

import (
	"encoding/binary"
	"testing"
)

func TestParseNoPayloadControl(t *testing.T) {
	msg := Parse([]byte("ssncpaus"))
	if msg.Kind != MsgControl || msg.Code != "ssncpaus" {
		t.Fatalf("got %+v", msg)
	}
}

func TestParseTextControl(t *testing.T) {
	raw := append([]byte("coreasar"), []byte("Radiohead")...)
	msg := Parse(raw)
	if msg.Kind != MsgControl || msg.Text != "Radiohead" {
		t.Fatalf("got %+v", msg)
	}
}

func TestParseU16Control(t *testing.T) {
	payload := make([]byte, 2)
	binary.BigEndian.PutUint16(payload, 7)
	raw := append([]byte("coreastn"), payload...)
	msg := Parse(raw)
	if msg.Kind != MsgControl || msg.U16 != 7 {
		t.Fatalf("got %+v", msg)
	}
}

func TestParseUnknownShortDatagram(t *testing.T) {
	msg := Parse([]byte("ab"))
	if msg.Kind != MsgUnknown {
		t.Fatalf("got %+v", msg)
	}
}

func buildChunk(chunkID, total uint32, dataType string, payload []byte) []byte {
	buf := make([]byte, 24+len(payload))
	copy(buf[:8], chunkMagic)
	binary.BigEndian.PutUint32(buf[8:12], chunkID)
	binary.BigEndian.PutUint32(buf[12:16], total)
	copy(buf[16:24], dataType)
	copy(buf[24:], payload)
	return buf
}

func TestParseChunkStripsLeadingNULs(t *testing.T) {
	raw := buildChunk(0, 1, "ssncasar", append([]byte{0, 0, 0}, []byte("Thom")...))
	msg := Parse(raw)
	if msg.Kind != MsgChunkData || string(msg.Data) != "Thom" {
		t.Fatalf("got %+v", msg)
	}
}

func TestChunkCollectorReassemblesInOrderRegardlessOfArrival(t *testing.T) {
	c := NewChunkCollector()

	if _, ok := c.Add("ssncasar", 1, 2, []byte("world")); ok {
		t.Fatal("should not complete with one of two chunks")
	}
	out, ok := c.Add("ssncasar", 0, 2, []byte("hello "))
	if !ok {
		t.Fatal("expected completion on second chunk")
	}
	if string(out) != "hello world" {
		t.Fatalf("got %q", out)
	}
	if c.PendingCount() != 0 {
		t.Fatalf("expected no pending entries, got %d", c.PendingCount())
	}
}

func TestChunkCollectorTracksMultipleTagsIndependently(t *testing.T) {
	c := NewChunkCollector()
	c.Add("ssncasar", 0, 2, []byte("a"))
	c.Add("ssncasal", 0, 2, []byte("b"))
	if c.PendingCount() != 2 {
		t.Fatalf("got %d", c.PendingCount())
	}
}
