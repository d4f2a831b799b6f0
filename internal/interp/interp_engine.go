package interp

import (
	"sort"

	"github.com/cascade-hdl/cascade/internal/analyze"
	"github.com/cascade-hdl/cascade/internal/cio"
	"github.com/cascade-hdl/cascade/internal/ir"
	"github.com/cascade-hdl/cascade/internal/vartable"
	"github.com/cascade-hdl/cascade/pkg/bitvector"
)

// InterpEngine is the minimal backend (spec.md §3.G / §4.G): a direct AST
// walker with no machinify or mangle pass, used when a module has no
// always-block and lowering to a state machine would add nothing (the
// §8 hello_1 scenario: an initial-only $display).
type InterpEngine struct {
	mod      *ir.ModuleDeclaration
	info     *analyze.ModuleInfo
	table    *vartable.Table
	reporter cio.Reporter
	inputs   []vartable.Entry
	ran      bool
}

// NewInterpEngine builds a flat table straight from mod's declared
// nets/regs/ports (no control registers, no machinify state) and leaves
// execution of initial/continuous bodies to Evaluate's first call.
func NewInterpEngine(mod *ir.ModuleDeclaration, info *analyze.ModuleInfo, reporter cio.Reporter) *InterpEngine {
	names := map[string]ir.Node{}
	for name, decl := range info.Local {
		names[name] = decl
	}
	for name, decl := range info.Input {
		names[name] = decl
	}
	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)

	t := vartable.New()
	var cursor uint32
	for _, name := range sorted {
		bits := declWidth(names[name])
		wordsPer := (bits + 31) / 32
		if wordsPer == 0 {
			wordsPer = 1
		}
		t.Entries = append(t.Entries, vartable.Entry{Name: name, Begin: cursor, Elements: 1, WordsPerElement: wordsPer, BitsPerElement: bits})
		cursor += wordsPer
	}
	t.Words = make([]uint32, cursor)

	ie := &InterpEngine{mod: mod, info: info, table: t, reporter: reporter}
	var inputNames []string
	for name := range info.Input {
		inputNames = append(inputNames, name)
	}
	sort.Strings(inputNames)
	for _, name := range inputNames {
		if e, ok := t.Find(name); ok {
			ie.inputs = append(ie.inputs, e)
		}
	}
	return ie
}

func declWidth(decl ir.Node) uint32 {
	var widthExpr ir.Node
	switch d := decl.(type) {
	case *ir.PortDeclaration:
		widthExpr = d.Width
	case *ir.NetDeclaration:
		widthExpr = d.Width
	case *ir.RegDeclaration:
		widthExpr = d.Width
	}
	if widthExpr == nil {
		return 1
	}
	if v, err := analyze.Evaluate(widthExpr); err == nil && v.Uint64() > 0 {
		return uint32(v.Uint64())
	}
	return 1
}

func (ie *InterpEngine) GetState() []byte       { return wordsToBytes(ie.table.Words) }
func (ie *InterpEngine) SetState(b []byte) error { copy(ie.table.Words, bytesToWords(b)); return nil }

func (ie *InterpEngine) GetInput() []byte {
	var words []uint32
	for _, e := range ie.inputs {
		words = append(words, ie.table.ReadElement(e, 0)...)
	}
	return wordsToBytes(words)
}

func (ie *InterpEngine) SetInput(b []byte) error {
	words := bytesToWords(b)
	off := 0
	for _, e := range ie.inputs {
		n := int(e.WordsPerElement)
		if off+n > len(words) {
			break
		}
		ie.table.WriteElement(e, 0, words[off:off+n])
		off += n
	}
	return nil
}

func (ie *InterpEngine) Finalize() error { return nil }

func (ie *InterpEngine) OverridesDoneStep() bool       { return false }
func (ie *InterpEngine) OverridesDoneSimulation() bool { return false }

func (ie *InterpEngine) Read(vid uint32, bits bitvector.Value) error {
	if int(vid) >= len(ie.inputs) {
		return nil
	}
	e := ie.inputs[vid]
	words := make([]uint32, e.WordsPerElement)
	copy(words, bits.Words)
	ie.table.WriteElement(e, 0, words)
	return nil
}

// Evaluate runs every ContinuousAssign and, once only (the first call),
// every InitialConstruct body — a direct-interpretation stand-in for the
// synthesis-time "run to quiescence once at time zero" semantics, since
// there is no clock to re-trigger these bodies.
func (ie *InterpEngine) Evaluate() error {
	var errOut error
	ie.mod.Items.Each(func(_ int, item ir.Node) {
		if errOut != nil {
			return
		}
		switch v := item.(type) {
		case *ir.ContinuousAssign:
			errOut = execStmt(v, ie.table)
		case *ir.InitialConstruct:
			if !ie.ran {
				errOut = ie.runInitial(v.Body)
			}
		}
	})
	ie.ran = true
	return errOut
}

// runInitial walks Body directly, dispatching raw (un-mangled)
// SystemTaskEnableStatements straight to the Reporter rather than through
// a __task_id landmark, since this backend never runs mangle.
func (ie *InterpEngine) runInitial(stmt ir.Node) error {
	switch v := stmt.(type) {
	case *ir.SeqBlock:
		var errOut error
		v.Items.Each(func(_ int, item ir.Node) {
			if errOut != nil {
				return
			}
			errOut = ie.runInitial(item)
		})
		return errOut
	case *ir.ParBlock:
		var errOut error
		v.Items.Each(func(_ int, item ir.Node) {
			if errOut != nil {
				return
			}
			errOut = ie.runInitial(item)
		})
		return errOut
	case *ir.ConditionalStatement:
		cond, err := evalRuntime(v.Cond, ie.table)
		if err != nil {
			return err
		}
		if cond.ReduceOr() != 0 {
			return ie.runInitial(v.Then)
		}
		if v.Else != nil {
			return ie.runInitial(v.Else)
		}
		return nil
	case *ir.SystemTaskEnableStatement:
		return ie.runTask(v)
	default:
		return execStmt(v, ie.table)
	}
}

func (ie *InterpEngine) runTask(v *ir.SystemTaskEnableStatement) error {
	var operands []vartable.Operand
	v.Args.Each(func(_ int, arg ir.Node) {
		if ident, ok := arg.(*ir.Identifier); ok {
			if e, ok := ie.table.Find(ident.Name); ok {
				operands = append(operands, vartable.Operand{Entry: e, Element: 0})
			}
		}
	})
	text := cio.FormatTask(v.Text, operands, ie.table)
	switch v.Kind {
	case ir.TaskDisplay:
		ie.reporter.Display(text)
	case ir.TaskWrite:
		ie.reporter.Write(text)
	case ir.TaskError:
		ie.reporter.Error("%s", text)
	case ir.TaskWarning:
		ie.reporter.Warning("%s", text)
	case ir.TaskInfo:
		ie.reporter.Info("%s", text)
	case ir.TaskFinish:
		ie.reporter.Finish(0)
	}
	return nil
}

func (ie *InterpEngine) ThereAreUpdates() bool                { return false }
func (ie *InterpEngine) Update() error                        { return nil }
func (ie *InterpEngine) ThereWereTasks() bool                 { return false }
func (ie *InterpEngine) ConditionalUpdate() (bool, error)     { return false, nil }
func (ie *InterpEngine) OpenLoop(clkVid uint32, val bitvector.Value, iterations uint32) (uint32, error) {
	return iterations, nil
}
func (ie *InterpEngine) DoneStep() error       { return nil }
func (ie *InterpEngine) DoneSimulation() error { return nil }
