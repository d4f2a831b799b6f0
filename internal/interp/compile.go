package interp

import (
	"github.com/cascade-hdl/cascade/internal/analyze"
	"github.com/cascade-hdl/cascade/internal/cio"
	"github.com/cascade-hdl/cascade/internal/elaborate"
	"github.com/cascade-hdl/cascade/internal/engine"
	"github.com/cascade-hdl/cascade/internal/ir"
	"github.com/cascade-hdl/cascade/internal/machinify"
	"github.com/cascade-hdl/cascade/internal/mangle"
)

// Options controls Compile's lowering choices.
type Options struct {
	// EnableInlining is forwarded to elaborate.Options.
	EnableInlining bool
	// OpenLoopFriendly runs machinify.PruneTrivialReschedule on any
	// machine whose always-block's only sensitivity is a single edge
	// (the scheduler's own clock), per spec.md's trigger_reschedule
	// supplement.
	OpenLoopFriendly bool
}

// Compile runs elaborate → analyze → machinify → mangle → tableEngine for
// any module with at least one AlwaysConstruct (the "production backend"
// path); modules with no always-block (pure initial/continuous-assign
// designs, e.g. a $display-only testbench) compile instead to an
// InterpEngine, which walks the AST directly without machinify or mangle.
func Compile(source *ir.SourceText, mod *ir.ModuleDeclaration, reporter cio.Reporter, opts Options) (engine.Engine, error) {
	analyze.Run(mod)
	if err := elaborate.Elaborate(source, mod, elaborate.Options{EnableInlining: opts.EnableInlining}); err != nil {
		return nil, err
	}
	analyze.Run(mod)
	info := analyze.Info(mod)

	if !hasAlways(mod) {
		return NewInterpEngine(mod, info, reporter), nil
	}

	sites := mangle.MangleSystemTasks(mod)
	bits := mangle.MaskBits(info)

	var machines []*machinify.StateMachine
	mod.Items.Each(func(_ int, item ir.Node) {
		ac, ok := item.(*ir.AlwaysConstruct)
		if !ok {
			return
		}
		sm, err := machinify.Machinify(ac)
		if err != nil {
			return
		}
		for i := range sm.States {
			for j, stmt := range sm.States[i].Stmts {
				sm.States[i].Stmts[j] = mangle.RewriteStmt(stmt, bits)
			}
		}
		if opts.OpenLoopFriendly && soleSensitivityIsClock(ac) {
			machinify.PruneTrivialReschedule(sm)
		}
		machines = append(machines, sm)
	})
	comp := machinify.ComposeMachines(machines)

	mangle.MangleRest(mod, bits)

	table := mangle.Layout(mod, info)

	return newTableEngine(mod, info, table, comp, sites, reporter), nil
}

func hasAlways(mod *ir.ModuleDeclaration) bool {
	found := false
	mod.Items.Each(func(_ int, item ir.Node) {
		if _, ok := item.(*ir.AlwaysConstruct); ok {
			found = true
		}
	})
	return found
}

// soleSensitivityIsClock reports whether ac's sensitivity list names
// exactly one edge — the condition PruneTrivialReschedule's caller
// contract requires before the rewrite is sound.
func soleSensitivityIsClock(ac *ir.AlwaysConstruct) bool {
	return len(ac.Timing.Sensitivities) == 1
}
