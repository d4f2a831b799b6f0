// Package remote implements the two-party remote proxy protocol spec.md
// §4.H: a control+stream socket pair per client process, the engine ABI
// proxied RPC-for-RPC, a compile slot state machine, and a synthesis
// bitstream cache. Wire encoding follows the teacher's pkg/gpu/cuda.go
// convention — encoding/binary.Write/Read of fixed-size fields straight
// over the pipe/socket — rather than a schema library, since every
// message here is a small fixed-layout struct, exactly the shape cuda.go
// already uses for its candidate/fingerprint protocol.
package remote

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/cascade-hdl/cascade/internal/ir"
	"github.com/cascade-hdl/cascade/pkg/bitvector"
)

// RPCType enumerates the engine ABI one-for-one plus the six control
// codes and the OKAY/FAIL replies from spec.md §4.H.
type RPCType uint8

const (
	RPCGetState RPCType = iota
	RPCSetState
	RPCGetInput
	RPCSetInput
	RPCFinalize
	RPCOverridesDoneStep
	RPCOverridesDoneSimulation
	RPCRead
	RPCEvaluate
	RPCThereAreUpdates
	RPCUpdate
	RPCThereWereTasks
	RPCConditionalUpdate
	RPCOpenLoop
	RPCDoneStep
	RPCDoneSimulation

	RPCCompile
	RPCStopCompile
	RPCOpenConn1
	RPCOpenConn2
	RPCCloseConn
	RPCTeardownEngine

	RPCOkay
	RPCFail
)

// Header is every request's fixed-size tag, exactly spec.md §4.H's
// `{type: u8, process_id: u32, engine_id: u32, n: u32}`.
type Header struct {
	Type      RPCType
	ProcessID uint32
	EngineID  uint32
	N         uint32
}

// WriteHeader writes h in a fixed 13-byte layout.
func WriteHeader(w io.Writer, h Header) error {
	if err := binary.Write(w, binary.LittleEndian, h.Type); err != nil {
		return err
	}
	var rest [12]byte
	binary.LittleEndian.PutUint32(rest[0:4], h.ProcessID)
	binary.LittleEndian.PutUint32(rest[4:8], h.EngineID)
	binary.LittleEndian.PutUint32(rest[8:12], h.N)
	_, err := w.Write(rest[:])
	return err
}

// ReadHeader reads a Header written by WriteHeader.
func ReadHeader(r io.Reader) (Header, error) {
	var h Header
	if err := binary.Read(r, binary.LittleEndian, &h.Type); err != nil {
		return h, err
	}
	var rest [12]byte
	if _, err := io.ReadFull(r, rest[:]); err != nil {
		return h, err
	}
	h.ProcessID = binary.LittleEndian.Uint32(rest[0:4])
	h.EngineID = binary.LittleEndian.Uint32(rest[4:8])
	h.N = binary.LittleEndian.Uint32(rest[8:12])
	return h, nil
}

// SysTask carries one dispatched system-task call across the stream
// socket. ProxyEngine reports Text to its Reporter as-is; Args is carried
// on the wire but not used for formatting on the client.
type SysTask struct {
	Kind ir.SystemTaskKind
	Text string
	Args []uint32 // resolved operand words, already read out of the table
}

// Value carries one bitvector.Value across the wire — the streamed
// write-to-peer half of an evaluate/update/open_loop reply.
type Value struct {
	Vid  uint32
	Bits bitvector.Value
}

// StreamEvent is one record of the `{SysTask | Value}* OKAY` tail spec.md
// §6 describes for evaluate/update/conditional_update/open_loop replies:
// a prefix byte 0 (SysTask) or 1 (Value) before each payload, with the
// whole tail terminated by a trailing OKAY/FAIL Header rather than a
// dedicated end-of-stream marker.
type StreamEvent struct {
	Kind byte // EventTask or EventValue
	Task *SysTask
	Val  *Value
}

const (
	EventTask  byte = 0
	EventValue byte = 1
)

// WriteStreamEvent serializes one event (never the terminating header —
// callers write that directly with WriteHeader once the tail is done).
func WriteStreamEvent(w io.Writer, ev StreamEvent) error {
	if _, err := w.Write([]byte{ev.Kind}); err != nil {
		return err
	}
	switch ev.Kind {
	case EventTask:
		return writeTask(w, ev.Task)
	case EventValue:
		return writeValue(w, ev.Val)
	default:
		return fmt.Errorf("remote: unknown stream event kind %d", ev.Kind)
	}
}

// ReadStreamTailItem reads one element of a `{SysTask | Value}* OKAY`
// tail. It returns either a StreamEvent (more tail to come) or a Header
// (the tail's trailing OKAY/FAIL, only one of the two is non-nil),
// distinguishing them by whether the leading byte is 0/1 (an event kind)
// or some other RPCType value (the start of the terminating Header) —
// safe because OKAY/FAIL's RPCType codes are defined well outside {0,1}.
func ReadStreamTailItem(r io.Reader) (*StreamEvent, *Header, error) {
	var kind [1]byte
	if _, err := io.ReadFull(r, kind[:]); err != nil {
		return nil, nil, err
	}
	switch kind[0] {
	case EventTask:
		t, err := readTask(r)
		if err != nil {
			return nil, nil, err
		}
		return &StreamEvent{Kind: EventTask, Task: t}, nil, nil
	case EventValue:
		v, err := readValue(r)
		if err != nil {
			return nil, nil, err
		}
		return &StreamEvent{Kind: EventValue, Val: v}, nil, nil
	default:
		var rest [12]byte
		if _, err := io.ReadFull(r, rest[:]); err != nil {
			return nil, nil, err
		}
		h := Header{
			Type:      RPCType(kind[0]),
			ProcessID: binary.LittleEndian.Uint32(rest[0:4]),
			EngineID:  binary.LittleEndian.Uint32(rest[4:8]),
			N:         binary.LittleEndian.Uint32(rest[8:12]),
		}
		return nil, &h, nil
	}
}

func writeTask(w io.Writer, t *SysTask) error {
	if err := binary.Write(w, binary.LittleEndian, t.Kind); err != nil {
		return err
	}
	if err := writeString(w, t.Text); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(t.Args))); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, t.Args)
}

func readTask(r io.Reader) (*SysTask, error) {
	t := &SysTask{}
	if err := binary.Read(r, binary.LittleEndian, &t.Kind); err != nil {
		return nil, err
	}
	text, err := readString(r)
	if err != nil {
		return nil, err
	}
	t.Text = text
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	t.Args = make([]uint32, n)
	if n > 0 {
		if err := binary.Read(r, binary.LittleEndian, t.Args); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func writeValue(w io.Writer, v *Value) error {
	if err := binary.Write(w, binary.LittleEndian, v.Vid); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, v.Bits.Width); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, v.Bits.Signed); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(v.Bits.Words))); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, v.Bits.Words)
}

func readValue(r io.Reader) (*Value, error) {
	v := &Value{}
	if err := binary.Read(r, binary.LittleEndian, &v.Vid); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &v.Bits.Width); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &v.Bits.Signed); err != nil {
		return nil, err
	}
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	v.Bits.Words = make([]uint32, n)
	if n > 0 {
		if err := binary.Read(r, binary.LittleEndian, v.Bits.Words); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func writeString(w io.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString(r io.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if n > 0 {
		if _, err := io.ReadFull(r, buf); err != nil {
			return "", err
		}
	}
	return string(buf), nil
}

// readExact reads exactly n bytes — every ABI/COMPILE payload's length
// already travels in its preceding Header.N field, so the payload itself
// carries no separate length prefix.
func readExact(r io.Reader, n uint32) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
