// Package mangle rewrites a module's statement text so all observable
// state lives in a vartable.Table and all I/O tasks become writes to the
// __task_id control register, per spec.md §4.E. It exposes two entry
// points — MangleSystemTasks and MangleRest — because machinify must run
// in between: MangleSystemTasks plants the __task_id landmark assigns
// machinify keys off of, and MangleRest's declaration-removal and
// non-blocking-assign rewrite only make sense once machinify has already
// captured the block's control flow.
package mangle

import (
	"github.com/cascade-hdl/cascade/internal/ir"
	"github.com/cascade-hdl/cascade/pkg/bitvector"
)

// TaskSite records one system-task call site's rewrite, consumed later by
// the scheduler's task dispatch (internal/cio.FormatTask for $display/
// $write; the engine backend for $finish/$fopen/etc).
type TaskSite struct {
	Kind ir.SystemTaskKind
	Text string
	Args []ir.Node
	K    int
}

// IsTaskWrite reports whether stmt is an assignment to __task_id, the
// landmark machinify keys its state-boundary detection off of.
func IsTaskWrite(stmt ir.Node) bool {
	var lhs ir.Node
	switch v := stmt.(type) {
	case *ir.BlockingAssign:
		lhs = v.Lhs
	case *ir.NonblockingAssign:
		lhs = v.Lhs
	default:
		return false
	}
	ident, ok := lhs.(*ir.Identifier)
	return ok && ident.Name == "__task_id"
}

// MangleSystemTasks replaces every SystemTaskEnableStatement reachable
// from mod's always/initial bodies with `__task_id := k` (k unique per
// call site within the module), returning the recorded TaskSite table in
// call-site order.
func MangleSystemTasks(mod *ir.ModuleDeclaration) []TaskSite {
	m := &taskMangler{}
	mod.Items.Each(func(_ int, item ir.Node) {
		switch v := item.(type) {
		case *ir.AlwaysConstruct:
			v.Timing.SetBody(m.rewrite(v.Timing.Body))
		case *ir.InitialConstruct:
			v.SetBody(m.rewrite(v.Body))
		}
	})
	return m.sites
}

type taskMangler struct {
	sites []TaskSite
}

func (m *taskMangler) rewrite(stmt ir.Node) ir.Node {
	switch v := stmt.(type) {
	case *ir.SeqBlock:
		items := make([]ir.Node, v.Items.Len())
		v.Items.Each(func(i int, item ir.Node) { items[i] = m.rewrite(item) })
		v.ReplaceItems(items)
		return v
	case *ir.ParBlock:
		items := make([]ir.Node, v.Items.Len())
		v.Items.Each(func(i int, item ir.Node) { items[i] = m.rewrite(item) })
		v.ReplaceItems(items)
		return v
	case *ir.ConditionalStatement:
		v.SetThen(m.rewrite(v.Then))
		if v.Else != nil {
			v.SetElse(m.rewrite(v.Else))
		}
		return v
	case *ir.CaseStatement:
		v.Items.Each(func(_ int, item *ir.CaseItem) { item.SetBody(m.rewrite(item.Body)) })
		return v
	case *ir.TimingControlStatement:
		v.SetBody(m.rewrite(v.Body))
		return v
	case *ir.LoopStatement:
		if v.Body != nil {
			v.SetBody(m.rewrite(v.Body))
		}
		return v
	case *ir.SystemTaskEnableStatement:
		return m.rewriteTask(v)
	default:
		return v
	}
}

func (m *taskMangler) rewriteTask(v *ir.SystemTaskEnableStatement) ir.Node {
	k := len(m.sites)
	m.sites = append(m.sites, TaskSite{Kind: v.Kind, Text: v.Text, Args: v.Args.Slice(), K: k})

	pos := v.Position()
	assign := ir.NewBlockingAssign(
		ir.NewIdentifier("__task_id", pos),
		ir.NewNumber(bitvector.FromUint64(uint64(k), 32), bitvector.FormatDecimal, pos),
		pos,
	)
	return assign
}
