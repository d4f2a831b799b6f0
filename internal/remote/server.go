package remote

import (
	"encoding/binary"
	"fmt"
	"net"
	"sync"

	"github.com/cascade-hdl/cascade/internal/cio"
	"github.com/cascade-hdl/cascade/internal/engine"
	"github.com/cascade-hdl/cascade/pkg/bitvector"
)

// SlotState is the compile slot's five-state machine (spec.md §4.H).
type SlotState int

const (
	SlotFree SlotState = iota
	SlotCompiling
	SlotWaiting
	SlotCurrent
	SlotStopped
)

// compileSlot tracks one in-flight or completed COMPILE job.
type compileSlot struct {
	state   SlotState
	engine  engine.Engine
	handle  *ToolchainHandle
	waiters []chan struct{} // processes blocked behind this machine's single COMPILING slot
}

// connPair is one client process's paired control+stream sockets,
// associated by OPEN_CONN_1 (control) / OPEN_CONN_2 (stream) arriving
// with the same ProcessID — exactly spec.md §4.H's pairing convention.
type connPair struct {
	ctrl, stream net.Conn
}

// CompileServer is the server side of the remote proxy protocol: it
// accepts the two-socket (control + stream) convention, runs COMPILE jobs
// on a ThreadPool, and enforces one COMPILING slot per machine name at a
// time — additional COMPILE requests for the same machine queue as
// WAITING and are promoted in arrival order.
type CompileServer struct {
	mu            sync.Mutex
	slots         map[string]*compileSlot // machine name -> slot
	conns         map[uint32]*connPair    // process_id -> socket pair
	pool          *engine.ThreadPool
	cache         *SynthesisCache
	reporter      cio.Reporter
	outDir        string
	toolchainArgs []string // e.g. --quartus_host/--quartus_port, appended to every Synthesize invocation
}

// NewCompileServer wires a ThreadPool-backed compile server against a
// SynthesisCache rooted at outDir.
func NewCompileServer(pool *engine.ThreadPool, cache *SynthesisCache, reporter cio.Reporter, outDir string) *CompileServer {
	return &CompileServer{slots: map[string]*compileSlot{}, conns: map[uint32]*connPair{}, pool: pool, cache: cache, reporter: reporter, outDir: outDir}
}

// SetToolchainArgs installs extra arguments (e.g. the external synthesis
// server's --quartus_host/--quartus_port) passed to every Synthesize call.
func (s *CompileServer) SetToolchainArgs(args ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toolchainArgs = args
}

// Serve accepts connections on ln until it errors (e.g. ln.Close()).
func (s *CompileServer) Serve(ln net.Listener) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return err
		}
		go s.handleConn(conn)
	}
}

// pairOf returns the connPair registered for processID, creating an
// empty one on first sight.
func (s *CompileServer) pairOf(processID uint32) *connPair {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.conns[processID]
	if !ok {
		p = &connPair{}
		s.conns[processID] = p
	}
	return p
}

// handleConn reads one Header per request off conn and dispatches it.
// OPEN_CONN_1/OPEN_CONN_2 associate this socket as the control or stream
// half of a process_id; requests (COMPILE and every engine-ABI call)
// always arrive on the control half, per the protocol, so handleConn only
// ever needs to track which socket is which — the stream half is looked
// up by process_id when a reply needs a {StreamEvent}* tail.
func (s *CompileServer) handleConn(conn net.Conn) {
	defer conn.Close()
	for {
		h, err := ReadHeader(conn)
		if err != nil {
			return
		}
		switch h.Type {
		case RPCCompile:
			s.handleCompile(conn, h)
		case RPCStopCompile:
			s.handleStopCompile(conn, h)
		case RPCOpenConn1:
			s.pairOf(h.ProcessID).ctrl = conn
			_ = WriteHeader(conn, Header{Type: RPCOkay, ProcessID: h.ProcessID, EngineID: h.EngineID})
		case RPCOpenConn2:
			s.pairOf(h.ProcessID).stream = conn
			_ = WriteHeader(conn, Header{Type: RPCOkay, ProcessID: h.ProcessID, EngineID: h.EngineID})
		case RPCCloseConn, RPCTeardownEngine:
			_ = WriteHeader(conn, Header{Type: RPCOkay, ProcessID: h.ProcessID, EngineID: h.EngineID})
			return
		default:
			s.handleABI(conn, h)
		}
	}
}

// handleCompile runs COMPILE: cache hit returns immediately; a miss
// enters COMPILING (or WAITING, if another compile for the same machine
// name is already in flight) and shells out via Synthesize on the
// ThreadPool, per §4.H's "single COMPILING slot per machine" invariant.
func (s *CompileServer) handleCompile(conn net.Conn, h Header) {
	payload, err := readExact(conn, h.N)
	if err != nil {
		return
	}
	source := string(payload)
	name := fmt.Sprintf("engine-%d", h.EngineID)

	if key, err := synthesisKey(source); err == nil {
		if bitstream, ok := s.cache.Lookup(key); ok {
			s.reporter.Info("remote: cache hit for %s (%s)", name, bitstream)
			s.setSlotState(name, SlotCurrent)
			_ = WriteHeader(conn, Header{Type: RPCOkay, ProcessID: h.ProcessID, EngineID: h.EngineID})
			return
		}
	}

	wait := s.enterCompiling(name)
	if wait != nil {
		<-wait // promoted from WAITING once the prior COMPILING job finishes
	}

	s.mu.Lock()
	toolchainArgs := append([]string(nil), s.toolchainArgs...)
	s.mu.Unlock()

	done := make(chan error, 1)
	s.pool.Submit(func() {
		_, bitstream, err := Synthesize(source, s.outDir, toolchainArgs...)
		if err == nil {
			_ = s.cache.Put(source, bitstream)
		}
		done <- err
	})

	err = <-done
	s.leaveCompiling(name)
	if err != nil {
		s.reporter.Error("remote: compile %s: %v", name, err)
		_ = WriteHeader(conn, Header{Type: RPCFail, ProcessID: h.ProcessID, EngineID: h.EngineID})
		return
	}
	s.setSlotState(name, SlotCurrent)
	_ = WriteHeader(conn, Header{Type: RPCOkay, ProcessID: h.ProcessID, EngineID: h.EngineID})
}

// handleStopCompile implements STOP_COMPILE: if the named machine's slot is
// COMPILING it is marked STOPPED and its recorded toolchain handle, if any,
// is killed. handleCompile never records a handle, so a running toolchain
// process is not killed here. WAITING requests are not promoted here; the
// in-flight handleCompile promotes the oldest one via leaveCompiling when
// its job returns.
func (s *CompileServer) handleStopCompile(conn net.Conn, h Header) {
	name := fmt.Sprintf("engine-%d", h.EngineID)
	s.mu.Lock()
	slot, ok := s.slots[name]
	if ok && slot.state == SlotCompiling {
		slot.state = SlotStopped
		if slot.handle != nil {
			_ = slot.handle.Kill()
		}
	}
	s.mu.Unlock()
	_ = WriteHeader(conn, Header{Type: RPCOkay, ProcessID: h.ProcessID, EngineID: h.EngineID})
}

// KillAll marks every slot STOPPED and kills each slot's recorded
// toolchain handle — the unified replacement for the original's divergent
// de10/avmm shutdown paths (spec.md §9 Open Question ii). handleCompile
// never records a handle, so toolchain processes already running are not
// killed.
func (s *CompileServer) KillAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, slot := range s.slots {
		if slot.handle != nil {
			_ = slot.handle.Kill()
		}
		slot.state = SlotStopped
	}
}

// enterCompiling claims name's slot for COMPILING, or, if already taken,
// registers a WAITING channel and returns it for the caller to block on.
func (s *CompileServer) enterCompiling(name string) <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, ok := s.slots[name]
	if !ok {
		slot = &compileSlot{}
		s.slots[name] = slot
	}
	if slot.state != SlotCompiling {
		slot.state = SlotCompiling
		return nil
	}
	wait := make(chan struct{})
	slot.waiters = append(slot.waiters, wait)
	return wait
}

// leaveCompiling promotes the oldest WAITING request, if any, otherwise
// frees the slot.
func (s *CompileServer) leaveCompiling(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, ok := s.slots[name]
	if !ok {
		return
	}
	if len(slot.waiters) > 0 {
		next := slot.waiters[0]
		slot.waiters = slot.waiters[1:]
		close(next) // promoted WAITING request becomes COMPILING
		return
	}
	slot.state = SlotFree
}

// RegisterEngine attaches a live engine.Engine to a machine's slot —
// called once a COMPILE reply has gone out and the slot reaches
// SlotCurrent — so later ABI RPCs can be served.
func (s *CompileServer) RegisterEngine(engineID uint32, e engine.Engine) {
	name := fmt.Sprintf("engine-%d", engineID)
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, ok := s.slots[name]
	if !ok {
		slot = &compileSlot{}
		s.slots[name] = slot
	}
	slot.engine = e
}

// handleABI serves the plain engine-ABI half of the protocol against the
// slot's registered engine.Engine — the server side of ProxyEngine's
// calls. The `{SysTask|Value}*OKAY` tail for Evaluate/Update/
// ConditionalUpdate/OpenLoop goes out entirely on the process's paired
// stream socket (looked up by ProcessID, per the OPEN_CONN_1/OPEN_CONN_2
// pairing) — no separate reply travels back on conn for these four calls.
// This reference server runs engines in-process, so the tail is always
// immediately the terminating header — a real synthesis target would
// populate it with SysTask/Value events from its own task/value sink as
// the engine actually runs.
func (s *CompileServer) handleABI(conn net.Conn, h Header) {
	name := fmt.Sprintf("engine-%d", h.EngineID)
	s.mu.Lock()
	slot, ok := s.slots[name]
	s.mu.Unlock()
	if !ok || slot.engine == nil {
		_ = WriteHeader(conn, Header{Type: RPCFail, ProcessID: h.ProcessID, EngineID: h.EngineID})
		return
	}
	e := slot.engine
	streamConn := s.pairOf(h.ProcessID).stream
	if streamConn == nil {
		streamConn = conn // fallback: caller never opened a second socket
	}

	fail := func() { _ = WriteHeader(conn, Header{Type: RPCFail, ProcessID: h.ProcessID, EngineID: h.EngineID}) }
	okayBytes := func(b []byte) {
		_ = WriteHeader(conn, Header{Type: RPCOkay, ProcessID: h.ProcessID, EngineID: h.EngineID, N: uint32(len(b))})
		if len(b) > 0 {
			_, _ = conn.Write(b)
		}
	}
	// okayStream terminates a {SysTask|Value}* tail by writing the
	// OKAY/FAIL Header straight onto streamConn — the same socket the
	// tail's events went out on, per spec.md §6's "terminated by a
	// trailing OKAY header" (no separate control-socket reply for these
	// four calls; ProxyEngine.callStreaming never reads one).
	okayStream := func(err error) {
		if err != nil {
			_ = WriteHeader(streamConn, Header{Type: RPCFail, ProcessID: h.ProcessID, EngineID: h.EngineID})
			return
		}
		_ = WriteHeader(streamConn, Header{Type: RPCOkay, ProcessID: h.ProcessID, EngineID: h.EngineID})
	}
	boolByte := func(v bool) []byte {
		if v {
			return []byte{1}
		}
		return []byte{0}
	}

	switch h.Type {
	case RPCGetState:
		okayBytes(e.GetState())
	case RPCSetState:
		b, err := readExact(conn, h.N)
		if err != nil {
			fail()
			return
		}
		if err := e.SetState(b); err != nil {
			fail()
			return
		}
		okayBytes(nil)
	case RPCGetInput:
		okayBytes(e.GetInput())
	case RPCSetInput:
		b, err := readExact(conn, h.N)
		if err != nil {
			fail()
			return
		}
		if err := e.SetInput(b); err != nil {
			fail()
			return
		}
		okayBytes(nil)
	case RPCFinalize:
		if err := e.Finalize(); err != nil {
			fail()
			return
		}
		okayBytes(nil)
	case RPCOverridesDoneStep:
		okayBytes(boolByte(e.OverridesDoneStep()))
	case RPCOverridesDoneSimulation:
		okayBytes(boolByte(e.OverridesDoneSimulation()))
	case RPCRead:
		payload, err := readExact(conn, h.N)
		if err != nil || len(payload) < 4 {
			fail()
			return
		}
		vid := binary.LittleEndian.Uint32(payload[0:4])
		words := bytesToWordsLE(payload[4:])
		val := bitvector.Value{Words: words, Width: uint32(len(words)) * 32}
		if err := e.Read(vid, val); err != nil {
			fail()
			return
		}
		okayBytes(nil)
	case RPCEvaluate:
		okayStream(e.Evaluate())
	case RPCThereAreUpdates:
		okayBytes(boolByte(e.ThereAreUpdates()))
	case RPCUpdate:
		okayStream(e.Update())
	case RPCThereWereTasks:
		okayBytes(boolByte(e.ThereWereTasks()))
	case RPCConditionalUpdate:
		_, err := e.ConditionalUpdate()
		okayStream(err)
	case RPCOpenLoop:
		payload, err := readExact(conn, h.N)
		if err != nil || len(payload) < 8 {
			fail()
			return
		}
		clkVid := binary.LittleEndian.Uint32(payload[0:4])
		iterations := binary.LittleEndian.Uint32(payload[4:8])
		_, err = e.OpenLoop(clkVid, bitvector.Value{Words: []uint32{1}, Width: 1}, iterations)
		okayStream(err)
	case RPCDoneStep:
		if err := e.DoneStep(); err != nil {
			fail()
			return
		}
		okayBytes(nil)
	case RPCDoneSimulation:
		if err := e.DoneSimulation(); err != nil {
			fail()
			return
		}
		okayBytes(nil)
	default:
		fail()
	}
}

func bytesToWordsLE(b []byte) []uint32 {
	n := len(b) / 4
	out := make([]uint32, n)
	for i := 0; i < n; i++ {
		out[i] = binary.LittleEndian.Uint32(b[i*4 : i*4+4])
	}
	return out
}

func (s *CompileServer) setSlotState(name string, st SlotState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, ok := s.slots[name]
	if !ok {
		slot = &compileSlot{}
		s.slots[name] = slot
	}
	slot.state = st
}
