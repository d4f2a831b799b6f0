package remote

import (
	"fmt"
	"net"
	"sync"

	"github.com/cascade-hdl/cascade/internal/cio"
	"github.com/cascade-hdl/cascade/internal/engine"
	"github.com/cascade-hdl/cascade/internal/ir"
	"github.com/cascade-hdl/cascade/pkg/bitvector"
)

// ProxyEngine implements engine.Engine on the client side of the remote
// proxy protocol (spec.md §4.H): every ABI call is serialized as a Header
// over ctrl, and the four call-with-a-stream-tail methods (Evaluate,
// Update, ConditionalUpdate, OpenLoop) additionally drain a
// `{StreamEvent}* OKAY` reply off stream, fanning SysTask events to
// reporter and Value events to peers (other engines registered under the
// same Scheduler, addressed by EngineID — the proxy's stand-in for a
// cross-process wire between two HDL modules).
//
// Modeled on teacher pkg/gpu/cuda.go's CUDAProcess: one mutex serializes
// all traffic on the pair, since the protocol is strictly request/reply.
type ProxyEngine struct {
	mu        sync.Mutex
	ctrl      net.Conn
	stream    net.Conn
	processID uint32
	engineID  uint32
	reporter  cio.Reporter
	peers     map[uint32]engine.Engine // other ProxyEngines or local engines sharing this connection's scheduler
}

// NewProxyEngine wraps an already-established two-socket connection
// (opened via OPEN_CONN_1/OPEN_CONN_2, see Dial) as an engine.Engine.
func NewProxyEngine(ctrl, stream net.Conn, processID, engineID uint32, reporter cio.Reporter, peers map[uint32]engine.Engine) *ProxyEngine {
	return &ProxyEngine{ctrl: ctrl, stream: stream, processID: processID, engineID: engineID, reporter: reporter, peers: peers}
}

// Dial opens both sockets of the convention against addr and performs the
// OPEN_CONN_1 (control) / OPEN_CONN_2 (stream) handshake, pairing them by
// processID the way spec.md §4.H requires.
func Dial(network, addr string, processID, engineID uint32) (ctrl, stream net.Conn, err error) {
	ctrl, err = net.Dial(network, addr)
	if err != nil {
		return nil, nil, err
	}
	if err = WriteHeader(ctrl, Header{Type: RPCOpenConn1, ProcessID: processID, EngineID: engineID}); err != nil {
		ctrl.Close()
		return nil, nil, err
	}
	if _, err = expectOkay(ctrl); err != nil {
		ctrl.Close()
		return nil, nil, err
	}

	stream, err = net.Dial(network, addr)
	if err != nil {
		ctrl.Close()
		return nil, nil, err
	}
	if err = WriteHeader(stream, Header{Type: RPCOpenConn2, ProcessID: processID, EngineID: engineID}); err != nil {
		ctrl.Close()
		stream.Close()
		return nil, nil, err
	}
	if _, err = expectOkay(stream); err != nil {
		ctrl.Close()
		stream.Close()
		return nil, nil, err
	}
	return ctrl, stream, nil
}

func expectOkay(c net.Conn) (Header, error) {
	h, err := ReadHeader(c)
	if err != nil {
		return h, err
	}
	if h.Type == RPCFail {
		return h, fmt.Errorf("remote: peer replied FAIL")
	}
	if h.Type != RPCOkay {
		return h, fmt.Errorf("remote: expected OKAY, got %d", h.Type)
	}
	return h, nil
}

// RequestCompile issues COMPILE over ctrl with source as its payload and
// waits for the server's OKAY/FAIL, mirroring CompileServer.handleCompile.
func RequestCompile(ctrl net.Conn, processID, engineID uint32, source string) error {
	payload := []byte(source)
	if err := WriteHeader(ctrl, Header{Type: RPCCompile, ProcessID: processID, EngineID: engineID, N: uint32(len(payload))}); err != nil {
		return err
	}
	if len(payload) > 0 {
		if _, err := ctrl.Write(payload); err != nil {
			return err
		}
	}
	_, err := expectOkay(ctrl)
	return err
}

// RequestStopCompile issues STOP_COMPILE for engineID and waits for OKAY.
func RequestStopCompile(ctrl net.Conn, processID, engineID uint32) error {
	if err := WriteHeader(ctrl, Header{Type: RPCStopCompile, ProcessID: processID, EngineID: engineID}); err != nil {
		return err
	}
	_, err := expectOkay(ctrl)
	return err
}

func (p *ProxyEngine) call(t RPCType, payload []byte) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	h := Header{Type: t, ProcessID: p.processID, EngineID: p.engineID, N: uint32(len(payload))}
	if err := WriteHeader(p.ctrl, h); err != nil {
		return nil, err
	}
	if len(payload) > 0 {
		if _, err := p.ctrl.Write(payload); err != nil {
			return nil, err
		}
	}
	reply, err := ReadHeader(p.ctrl)
	if err != nil {
		return nil, err
	}
	if reply.Type == RPCFail {
		return nil, fmt.Errorf("remote: %v call failed", t)
	}
	return readExact(p.ctrl, reply.N)
}

// callStreaming issues t and drains the stream socket's `{StreamEvent}*
// OKAY` tail before returning. Tasks are reported; values are forwarded
// to the named peer engine's Read.
func (p *ProxyEngine) callStreaming(t RPCType, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	h := Header{Type: t, ProcessID: p.processID, EngineID: p.engineID, N: uint32(len(payload))}
	if err := WriteHeader(p.ctrl, h); err != nil {
		return err
	}
	if len(payload) > 0 {
		if _, err := p.ctrl.Write(payload); err != nil {
			return err
		}
	}

	for {
		ev, hdr, err := ReadStreamTailItem(p.stream)
		if err != nil {
			return err
		}
		if hdr != nil {
			if hdr.Type == RPCFail {
				return fmt.Errorf("remote: %v call failed", t)
			}
			return nil
		}
		switch ev.Kind {
		case EventTask:
			p.dispatchTask(ev.Task)
		case EventValue:
			if peer, ok := p.peers[ev.Val.Vid]; ok {
				if err := peer.Read(ev.Val.Vid, ev.Val.Bits); err != nil {
					return err
				}
			}
		}
	}
}

func (p *ProxyEngine) dispatchTask(t *SysTask) {
	if t == nil {
		return
	}
	switch t.Kind {
	case ir.TaskDisplay:
		p.reporter.Display(t.Text)
	case ir.TaskWrite:
		p.reporter.Write(t.Text)
	case ir.TaskError:
		p.reporter.Error("%s", t.Text)
	case ir.TaskWarning:
		p.reporter.Warning("%s", t.Text)
	case ir.TaskInfo:
		p.reporter.Info("%s", t.Text)
	case ir.TaskFinish:
		p.reporter.Finish(0)
	}
}

func (p *ProxyEngine) GetState() []byte {
	b, err := p.call(RPCGetState, nil)
	if err != nil {
		return nil
	}
	return b
}

func (p *ProxyEngine) SetState(b []byte) error {
	_, err := p.call(RPCSetState, b)
	return err
}

func (p *ProxyEngine) GetInput() []byte {
	b, err := p.call(RPCGetInput, nil)
	if err != nil {
		return nil
	}
	return b
}

func (p *ProxyEngine) SetInput(b []byte) error {
	_, err := p.call(RPCSetInput, b)
	return err
}

func (p *ProxyEngine) Finalize() error {
	_, err := p.call(RPCFinalize, nil)
	return err
}

func (p *ProxyEngine) OverridesDoneStep() bool {
	b, err := p.call(RPCOverridesDoneStep, nil)
	return err == nil && len(b) > 0 && b[0] != 0
}

func (p *ProxyEngine) OverridesDoneSimulation() bool {
	b, err := p.call(RPCOverridesDoneSimulation, nil)
	return err == nil && len(b) > 0 && b[0] != 0
}

func (p *ProxyEngine) Read(vid uint32, bits bitvector.Value) error {
	payload := make([]byte, 4)
	payload[0] = byte(vid)
	payload[1] = byte(vid >> 8)
	payload[2] = byte(vid >> 16)
	payload[3] = byte(vid >> 24)
	vb := make([]byte, 0, 4+len(bits.Words)*4)
	vb = append(vb, payload...)
	for _, w := range bits.Words {
		vb = append(vb, byte(w), byte(w>>8), byte(w>>16), byte(w>>24))
	}
	_, err := p.call(RPCRead, vb)
	return err
}

func (p *ProxyEngine) Evaluate() error { return p.callStreaming(RPCEvaluate, nil) }

func (p *ProxyEngine) ThereAreUpdates() bool {
	b, err := p.call(RPCThereAreUpdates, nil)
	return err == nil && len(b) > 0 && b[0] != 0
}

func (p *ProxyEngine) Update() error { return p.callStreaming(RPCUpdate, nil) }

func (p *ProxyEngine) ThereWereTasks() bool {
	b, err := p.call(RPCThereWereTasks, nil)
	return err == nil && len(b) > 0 && b[0] != 0
}

func (p *ProxyEngine) ConditionalUpdate() (bool, error) {
	err := p.callStreaming(RPCConditionalUpdate, nil)
	if err != nil {
		return false, err
	}
	return p.ThereWereTasks(), nil
}

func (p *ProxyEngine) OpenLoop(clkVid uint32, val bitvector.Value, iterations uint32) (uint32, error) {
	payload := make([]byte, 8)
	payload[0], payload[1], payload[2], payload[3] = byte(clkVid), byte(clkVid>>8), byte(clkVid>>16), byte(clkVid>>24)
	payload[4], payload[5], payload[6], payload[7] = byte(iterations), byte(iterations>>8), byte(iterations>>16), byte(iterations>>24)
	if err := p.callStreaming(RPCOpenLoop, payload); err != nil {
		return 0, err
	}
	return iterations, nil
}

func (p *ProxyEngine) DoneStep() error {
	_, err := p.call(RPCDoneStep, nil)
	return err
}

func (p *ProxyEngine) DoneSimulation() error {
	_, err := p.call(RPCDoneSimulation, nil)
	return err
}

// CloseConn sends CLOSE_CONN and closes both sockets.
func (p *ProxyEngine) CloseConn() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = WriteHeader(p.ctrl, Header{Type: RPCCloseConn, ProcessID: p.processID, EngineID: p.engineID})
	p.ctrl.Close()
	return p.stream.Close()
}

var _ engine.Engine = (*ProxyEngine)(nil)
