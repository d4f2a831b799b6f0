package remote

import (
	"net"
	"testing"

	"github.com/cascade-hdl/cascade/internal/cio"
	"github.com/cascade-hdl/cascade/internal/engine"
	"github.com/cascade-hdl/cascade/pkg/bitvector"
)

// fakeEngine is a minimal engine.Engine stand-in for exercising
// CompileServer/ProxyEngine's wire plumbing without a real compiled
// design.
type fakeEngine struct {
	state      []byte
	lastRead   bitvector.Value
	evaluated  int
	updates    bool
	updateSeen int
}

func (f *fakeEngine) GetState() []byte        { return f.state }
func (f *fakeEngine) SetState(b []byte) error { f.state = append([]byte(nil), b...); return nil }
func (f *fakeEngine) GetInput() []byte        { return nil }
func (f *fakeEngine) SetInput([]byte) error   { return nil }
func (f *fakeEngine) Finalize() error         { return nil }

func (f *fakeEngine) OverridesDoneStep() bool       { return false }
func (f *fakeEngine) OverridesDoneSimulation() bool { return false }

func (f *fakeEngine) Read(vid uint32, bits bitvector.Value) error {
	f.lastRead = bits
	return nil
}
func (f *fakeEngine) Evaluate() error { f.evaluated++; return nil }

func (f *fakeEngine) ThereAreUpdates() bool { return f.updates }
func (f *fakeEngine) Update() error         { f.updateSeen++; f.updates = false; return nil }
func (f *fakeEngine) ThereWereTasks() bool  { return false }
func (f *fakeEngine) ConditionalUpdate() (bool, error) {
	if !f.updates {
		return false, nil
	}
	return true, f.Update()
}
func (f *fakeEngine) OpenLoop(clkVid uint32, val bitvector.Value, iterations uint32) (uint32, error) {
	return iterations, nil
}
func (f *fakeEngine) DoneStep() error       { return nil }
func (f *fakeEngine) DoneSimulation() error { return nil }

var _ engine.Engine = (*fakeEngine)(nil)

func TestProxyEngineAgainstCompileServer(t *testing.T) {
	pool := engine.NewThreadPool(1)
	defer pool.Stop()
	cache, err := NewSynthesisCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewSynthesisCache: %v", err)
	}
	defer cache.Close()

	srv := NewCompileServer(pool, cache, cio.StdReporter{}, t.TempDir())
	fe := &fakeEngine{state: []byte{1, 2, 3, 4}}
	srv.RegisterEngine(9, fe)

	ctrlServer, ctrlClient := net.Pipe()
	streamServer, streamClient := net.Pipe()
	go srv.handleConn(ctrlServer)
	go srv.handleConn(streamServer)

	const processID = 42
	if err := WriteHeader(ctrlClient, Header{Type: RPCOpenConn1, ProcessID: processID, EngineID: 9}); err != nil {
		t.Fatalf("OPEN_CONN_1: %v", err)
	}
	if _, err := expectOkay(ctrlClient); err != nil {
		t.Fatalf("OPEN_CONN_1 reply: %v", err)
	}
	if err := WriteHeader(streamClient, Header{Type: RPCOpenConn2, ProcessID: processID, EngineID: 9}); err != nil {
		t.Fatalf("OPEN_CONN_2: %v", err)
	}
	if _, err := expectOkay(streamClient); err != nil {
		t.Fatalf("OPEN_CONN_2 reply: %v", err)
	}

	pe := NewProxyEngine(ctrlClient, streamClient, processID, 9, cio.StdReporter{}, nil)

	if got := pe.GetState(); string(got) != string(fe.state) {
		t.Fatalf("GetState: got %v, want %v", got, fe.state)
	}
	if err := pe.SetState([]byte{9, 9}); err != nil {
		t.Fatalf("SetState: %v", err)
	}
	if string(fe.state) != string([]byte{9, 9}) {
		t.Fatalf("SetState did not reach server engine: got %v", fe.state)
	}
	if err := pe.Evaluate(); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if fe.evaluated != 1 {
		t.Fatalf("evaluated count: got %d, want 1", fe.evaluated)
	}
	if err := pe.Read(3, bitvector.Value{Words: []uint32{7}, Width: 32}); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if fe.lastRead.Words[0] != 7 {
		t.Fatalf("Read did not reach server engine: got %+v", fe.lastRead)
	}

	if err := pe.CloseConn(); err != nil {
		t.Fatalf("CloseConn: %v", err)
	}
}
