package remote

import (
	"bytes"
	"testing"

	"github.com/cascade-hdl/cascade/internal/ir"
	"github.com/cascade-hdl/cascade/pkg/bitvector"
)

func TestHeaderRoundTrip(t *testing.T) {
	want := Header{Type: RPCEvaluate, ProcessID: 7, EngineID: 3, N: 128}
	var buf bytes.Buffer
	if err := WriteHeader(&buf, want); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	got, err := ReadHeader(&buf)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestStreamEventRoundTrip(t *testing.T) {
	cases := []StreamEvent{
		{Kind: EventTask, Task: &SysTask{Kind: ir.TaskDisplay, Text: "hello %d", Args: []uint32{1, 2, 3}}},
		{Kind: EventValue, Val: &Value{Vid: 4, Bits: bitvector.Value{Words: []uint32{0xdeadbeef, 1}, Width: 40, Signed: true}}},
	}
	for _, want := range cases {
		var buf bytes.Buffer
		if err := WriteStreamEvent(&buf, want); err != nil {
			t.Fatalf("WriteStreamEvent(%v): %v", want.Kind, err)
		}
		ev, hdr, err := ReadStreamTailItem(&buf)
		if err != nil {
			t.Fatalf("ReadStreamTailItem(%v): %v", want.Kind, err)
		}
		if hdr != nil {
			t.Fatalf("got a terminating Header, want an event")
		}
		if ev.Kind != want.Kind {
			t.Fatalf("kind: got %d, want %d", ev.Kind, want.Kind)
		}
		switch want.Kind {
		case EventTask:
			if ev.Task.Text != want.Task.Text || ev.Task.Kind != want.Task.Kind || len(ev.Task.Args) != len(want.Task.Args) {
				t.Fatalf("task: got %+v, want %+v", ev.Task, want.Task)
			}
		case EventValue:
			if ev.Val.Vid != want.Val.Vid || ev.Val.Bits.Width != want.Val.Bits.Width || ev.Val.Bits.Signed != want.Val.Bits.Signed {
				t.Fatalf("value: got %+v, want %+v", ev.Val, want.Val)
			}
		}
	}
}

// TestStreamTailTerminatesOnHeader checks that a bare Header (no event
// prefix byte) is recognized as the tail's terminator rather than
// misparsed as an event, since OKAY/FAIL's RPCType codes sit outside
// {EventTask, EventValue}.
func TestStreamTailTerminatesOnHeader(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteHeader(&buf, Header{Type: RPCOkay, ProcessID: 1, EngineID: 2}); err != nil {
		t.Fatalf("WriteHeader: %v", err)
	}
	ev, hdr, err := ReadStreamTailItem(&buf)
	if err != nil {
		t.Fatalf("ReadStreamTailItem: %v", err)
	}
	if ev != nil {
		t.Fatalf("got an event, want a terminating Header")
	}
	if hdr.Type != RPCOkay || hdr.ProcessID != 1 || hdr.EngineID != 2 {
		t.Fatalf("got %+v, want OKAY/1/2", hdr)
	}
}

func TestReadExactZeroLength(t *testing.T) {
	b, err := readExact(bytes.NewReader(nil), 0)
	if err != nil || b != nil {
		t.Fatalf("readExact(0): got %v, %v", b, err)
	}
}
