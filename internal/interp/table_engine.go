package interp

import (
	"encoding/binary"
	"sort"
	"strings"

	"github.com/cascade-hdl/cascade/internal/analyze"
	"github.com/cascade-hdl/cascade/internal/cio"
	"github.com/cascade-hdl/cascade/internal/ir"
	"github.com/cascade-hdl/cascade/internal/machinify"
	"github.com/cascade-hdl/cascade/internal/mangle"
	"github.com/cascade-hdl/cascade/internal/vartable"
	"github.com/cascade-hdl/cascade/pkg/bitvector"
)

// shadowPair links a mangle.MangleRest shadow entry (__shadow_x) back to
// the real variable (x) it commits into on Update.
type shadowPair struct {
	shadow, real vartable.Entry
}

// tableEngine is the production backend: a module lowered all the way to
// machinify.StateMachines plus a vartable.Table, executed without any
// further HDL-level dispatch (spec.md §4.G).
type tableEngine struct {
	mod      *ir.ModuleDeclaration
	info     *analyze.ModuleInfo
	table    *vartable.Table
	comp     *machinify.Composite
	sites    []mangle.TaskSite
	reporter cio.Reporter

	pc      []int
	shadows []shadowPair
	inputs  []vartable.Entry // sorted, the vid-addressable subset

	updateMask     vartable.Entry
	prevUpdateMask vartable.Entry

	tasksThisStep bool
	stopped       bool
}

func newTableEngine(mod *ir.ModuleDeclaration, info *analyze.ModuleInfo, table *vartable.Table, comp *machinify.Composite, sites []mangle.TaskSite, reporter cio.Reporter) *tableEngine {
	te := &tableEngine{
		mod: mod, info: info, table: table, comp: comp, sites: sites, reporter: reporter,
		pc: make([]int, len(comp.Machines)),
	}
	for _, e := range table.Entries {
		if strings.HasPrefix(e.Name, "__shadow_") {
			realName := strings.TrimPrefix(e.Name, "__shadow_")
			if real, ok := table.Find(realName); ok {
				te.shadows = append(te.shadows, shadowPair{shadow: e, real: real})
			}
		}
	}
	var inputNames []string
	for name := range info.Input {
		inputNames = append(inputNames, name)
	}
	sort.Strings(inputNames)
	for _, name := range inputNames {
		if e, ok := table.Find(name); ok {
			te.inputs = append(te.inputs, e)
		}
	}
	te.updateMask, _ = table.Find("__update_mask")
	te.prevUpdateMask, _ = table.Find("__prev_update_mask")
	return te
}

func (te *tableEngine) GetState() []byte { return wordsToBytes(te.table.Words) }

func (te *tableEngine) SetState(b []byte) error {
	words := bytesToWords(b)
	copy(te.table.Words, words)
	return nil
}

func (te *tableEngine) GetInput() []byte {
	var words []uint32
	for _, e := range te.inputs {
		words = append(words, te.table.ReadElement(e, 0)...)
	}
	return wordsToBytes(words)
}

func (te *tableEngine) SetInput(b []byte) error {
	words := bytesToWords(b)
	off := 0
	for _, e := range te.inputs {
		n := int(e.WordsPerElement)
		if off+n > len(words) {
			break
		}
		te.table.WriteElement(e, 0, words[off:off+n])
		off += n
	}
	return nil
}

func (te *tableEngine) Finalize() error { return nil }

func (te *tableEngine) OverridesDoneStep() bool       { return false }
func (te *tableEngine) OverridesDoneSimulation() bool { return false }

// Read pushes a peer-driven value onto input vid, the way a port
// connection's upstream engine re-targets this engine between Steps.
func (te *tableEngine) Read(vid uint32, bits bitvector.Value) error {
	if int(vid) >= len(te.inputs) {
		return nil
	}
	e := te.inputs[vid]
	words := make([]uint32, e.WordsPerElement)
	copy(words, bits.Words)
	te.table.WriteElement(e, 0, words)
	return nil
}

// Evaluate runs every ContinuousAssign, then executes every machine's
// current state once, dispatching any
// task writes observed, and computes each machine's pending next state —
// committed on the following Update, per §4.G's "straight-line
// interpreter, no further HDL-level dispatch" design.
func (te *tableEngine) Evaluate() error {
	te.tasksThisStep = false
	var errOut error
	te.mod.Items.Each(func(_ int, item ir.Node) {
		if ca, ok := item.(*ir.ContinuousAssign); ok && errOut == nil {
			errOut = execStmt(ca, te.table)
		}
	})
	if errOut != nil {
		return errOut
	}
	for i, sm := range te.comp.Machines {
		state := sm.States[te.pc[i]]
		for _, stmt := range state.Stmts {
			if err := execStmt(stmt, te.table); err != nil {
				return err
			}
			if k, ok := taskIDWritten(stmt, te.table); ok {
				te.dispatchTask(k)
			}
		}
	}
	return nil
}

// dispatchTask formats and reports the task at call-site index k through
// the Reporter, the scheduler's fan-out point for $display/$write/etc.
func (te *tableEngine) dispatchTask(k int) {
	if k < 0 || k >= len(te.sites) {
		return
	}
	site := te.sites[k]
	te.tasksThisStep = true
	var operands []vartable.Operand
	for _, arg := range site.Args {
		if ident, ok := arg.(*ir.Identifier); ok {
			if e, ok := te.table.Find(ident.Name); ok {
				operands = append(operands, vartable.Operand{Entry: e, Element: 0})
			}
		}
	}
	text := cio.FormatTask(site.Text, operands, te.table)
	switch site.Kind {
	case ir.TaskDisplay:
		te.reporter.Display(text)
	case ir.TaskWrite:
		te.reporter.Write(text)
	case ir.TaskError:
		te.reporter.Error("%s", text)
	case ir.TaskWarning:
		te.reporter.Warning("%s", text)
	case ir.TaskInfo:
		te.reporter.Info("%s", text)
	case ir.TaskFinish:
		te.stopped = true
		te.reporter.Finish(0)
	}
}

// taskIDWritten reports whether stmt assigns a constant to __task_id and,
// if so, the site index it was mangled from.
func taskIDWritten(stmt ir.Node, t *vartable.Table) (int, bool) {
	assign, ok := stmt.(*ir.BlockingAssign)
	if !ok {
		return 0, false
	}
	ident, ok := assign.Lhs.(*ir.Identifier)
	if !ok || ident.Name != "__task_id" {
		return 0, false
	}
	num, ok := assign.Rhs.(*ir.Number)
	if !ok {
		return 0, false
	}
	k := int(num.Value.Int64())
	if k < 0 {
		return 0, false
	}
	return k, true
}

// ThereAreUpdates reports whether __update_mask and __prev_update_mask
// still disagree, per spec.md's XOR-mask "pending update" signal: every
// non-blocking assign XORs its variable's bit into __prev_update_mask
// (rest.go's rewriteNonblocking), and Update acknowledges by copying that
// into __update_mask once the shadow writes are committed.
func (te *tableEngine) ThereAreUpdates() bool {
	return !wordsEqual(te.table.ReadElement(te.updateMask, 0), te.table.ReadElement(te.prevUpdateMask, 0))
}

// Update commits every pending shadow write into its real variable,
// acknowledges the mask (so ThereAreUpdates goes quiet until the next
// non-blocking assign XORs prev again), then advances every machine's
// program counter by evaluating its current state's transitions in order.
func (te *tableEngine) Update() error {
	for _, p := range te.shadows {
		te.table.WriteElement(p.real, 0, te.table.ReadElement(p.shadow, 0))
	}
	te.table.WriteElement(te.updateMask, 0, te.table.ReadElement(te.prevUpdateMask, 0))
	for i, sm := range te.comp.Machines {
		state := sm.States[te.pc[i]]
		next := te.pc[i]
		for _, tr := range state.Transitions {
			if tr.Cond == nil {
				next = tr.To
				break
			}
			val, err := evalRuntime(tr.Cond, te.table)
			if err != nil {
				return err
			}
			if val.ReduceOr() != 0 {
				next = tr.To
				break
			}
		}
		te.pc[i] = next
	}
	return nil
}

func (te *tableEngine) ThereWereTasks() bool { return te.tasksThisStep }

// ConditionalUpdate applies one Update only when it would not be a no-op
// (i.e. ThereAreUpdates holds), reporting whether it did — the scheduler's
// open-loop fast path uses this to avoid committing silent empty cycles.
func (te *tableEngine) ConditionalUpdate() (bool, error) {
	if !te.ThereAreUpdates() {
		return false, nil
	}
	return true, te.Update()
}

// OpenLoop drives the clock input through alternating edges (val first,
// then val with bit 0 flipped, and so on) for up to iterations steps,
// stopping early if a task fires (spec.md §4.F's
// open-loop fast path must still surface I/O to the scheduler).
func (te *tableEngine) OpenLoop(clkVid uint32, val bitvector.Value, iterations uint32) (uint32, error) {
	clk := val
	var ran uint32
	for ; ran < iterations; ran++ {
		if te.stopped {
			break
		}
		if err := te.Read(clkVid, clk); err != nil {
			return ran, err
		}
		next := bitvector.New(clk.Width, clk.Signed)
		copy(next.Words, clk.Words)
		next.Words[0] ^= 1
		clk = next
		if err := te.Evaluate(); err != nil {
			return ran, err
		}
		for te.ThereAreUpdates() {
			if err := te.Update(); err != nil {
				return ran, err
			}
		}
		if te.tasksThisStep {
			ran++
			break
		}
	}
	return ran, nil
}

func (te *tableEngine) DoneStep() error       { return nil }
func (te *tableEngine) DoneSimulation() error { return nil }

func wordsEqual(a, b []uint32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func wordsToBytes(words []uint32) []byte {
	out := make([]byte, len(words)*4)
	for i, w := range words {
		binary.LittleEndian.PutUint32(out[i*4:], w)
	}
	return out
}

func bytesToWords(b []byte) []uint32 {
	n := len(b) / 4
	out := make([]uint32, n)
	for i := 0; i < n; i++ {
		out[i] = binary.LittleEndian.Uint32(b[i*4 : i*4+4])
	}
	return out
}
