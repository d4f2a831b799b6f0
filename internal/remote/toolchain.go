package remote

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
)

// ToolchainBinaryPath is the external FPGA synthesis toolchain invoked on
// a cache miss. §6's Non-goals place the concrete toolchain out of scope
// as an external collaborator; this is the boundary this module defines
// for it, the way CUDABinaryPath names the teacher's GPU child binary.
var ToolchainBinaryPath = "quartus_sh"

// ToolchainHandle wraps one synthesis child process, grounded on teacher
// pkg/gpu/cuda.go's CUDAProcess: started via os/exec, torn down by a
// recorded process handle rather than shelling out to pkill/killall
// (spec.md §9 Open Question ii, resolved in DESIGN.md).
type ToolchainHandle struct {
	mu  sync.Mutex
	cmd *exec.Cmd
}

// Synthesize runs the toolchain against source, writing the bitstream to
// outDir and returning its filename. Unlike CUDAProcess, this is a
// one-shot run-to-completion invocation (a synthesis pass, not a
// query-serving server), so it starts the command and waits for it to
// exit (cmd.Start then cmd.Wait) rather than piping stdin.
// extraArgs is appended verbatim to the invocation — CompileServer uses it
// to pass --quartus_host/--quartus_port through to the toolchain, since
// the synthesis server address is the toolchain's concern, not a second
// wire protocol this package defines.
func Synthesize(source, outDir string, extraArgs ...string) (*ToolchainHandle, string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, "", err
	}
	srcFile := filepath.Join(outDir, "synth_input.v")
	if err := os.WriteFile(srcFile, []byte(source), 0o644); err != nil {
		return nil, "", err
	}
	outFile := filepath.Join(outDir, fmt.Sprintf("bitstream_%08x.sof", fnvKey(source)))

	args := append([]string{"--compile", srcFile, "-o", outFile}, extraArgs...)
	cmd := exec.Command(ToolchainBinaryPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	h := &ToolchainHandle{cmd: cmd}
	if err := cmd.Start(); err != nil {
		return nil, "", fmt.Errorf("remote: start %s: %w", ToolchainBinaryPath, err)
	}
	if err := cmd.Wait(); err != nil {
		return h, "", fmt.Errorf("remote: %s: %w: %s", ToolchainBinaryPath, err, stderr.String())
	}
	return h, filepath.Base(outFile), nil
}

func fnvKey(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}

// Kill terminates the child process if still running. Unifies the
// original's divergent `de10` (killall) / `avmm` (pkill) shutdown paths
// behind os/exec's own process handle — no shell-string construction,
// no platform-specific signal tool.
func (h *ToolchainHandle) Kill() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cmd == nil || h.cmd.Process == nil {
		return nil
	}
	return h.cmd.Process.Kill()
}
