package machinify

import "github.com/cascade-hdl/cascade/internal/ir"

// PruneTrivialReschedule drops the `__trigger ? 0 : __state` fallback
// inside the final state's `__state` reset write, collapsing it to a bare
// `__state`. It is only correct when the always-block's sole sensitivity
// is the scheduler's own open-loop clock, so the caller — interp.Compile,
// gated on Options.OpenLoopFriendly — is responsible for checking that
// before calling this; PruneTrivialReschedule does not re-derive
// eligibility from the machine itself, since StateMachine no longer
// carries the original sensitivity list.
func PruneTrivialReschedule(sm *StateMachine) {
	for _, stmt := range sm.States[sm.FinalState].Stmts {
		assign, ok := stmt.(*ir.BlockingAssign)
		if !ok {
			continue
		}
		ident, ok := assign.Lhs.(*ir.Identifier)
		if !ok || ident.Name != "__state" {
			continue
		}
		outer, ok := assign.Rhs.(*ir.ConditionalExpression)
		if !ok {
			continue
		}
		inner, ok := outer.Else.(*ir.ConditionalExpression)
		if !ok {
			continue
		}
		outer.SetElse(inner.Else.Clone())
	}
}
