// Package machinify lowers an edge-triggered always-block into a
// reentrant, program-counter-keyed state machine executable as a single
// straight-line pass per scheduler tick.
package machinify

import (
	"github.com/cascade-hdl/cascade/internal/ir"
	"github.com/cascade-hdl/cascade/internal/mangle"
	"github.com/cascade-hdl/cascade/pkg/bitvector"
)

// Transition guards entry into To; guards are evaluated in order and the
// first one whose Cond is non-nil-true wins. A nil Cond is an unconditional
// fallthrough and must be last.
type Transition struct {
	Cond ir.Node
	To   int
}

// State is one program-counter value's worth of straight-line statements
// plus the guarded transitions out of it.
type State struct {
	Stmts       []ir.Node
	Transitions []Transition
}

// StateMachine is the output of Machinify for a single always-block.
// States[0] is entry; FinalState is the terminal state index, whose only
// statements are the reset envelope wrapEnvelope appends.
type StateMachine struct {
	States     []State
	FinalState int
}

// builder accumulates states while walking the always-block's body.
type builder struct {
	states []State
}

func (b *builder) newState() int {
	b.states = append(b.states, State{})
	return len(b.states) - 1
}

func (b *builder) emit(state int, stmt ir.Node) {
	b.states[state].Stmts = append(b.states[state].Stmts, stmt)
}

// Machinify implements spec.md §4.D: walk always.Timing.Body, splitting at
// every task-landmark assign (planted by mangle.MangleSystemTasks before
// this pass runs) into a new state, then wrap the result in the
// reset/guard envelope and record FinalState.
func Machinify(always *ir.AlwaysConstruct) (*StateMachine, error) {
	b := &builder{}
	entry := b.newState()
	final := walkStmt(b, entry, always.Timing.Body, true)
	// The terminal state gets no body statements: if the walk ended in a
	// state holding any, a fresh state follows it. wrapEnvelope then
	// appends only the reset envelope to the terminal state.
	if len(b.states[final].Stmts) != 0 {
		next := b.newState()
		b.states[final].Transitions = append(b.states[final].Transitions, Transition{To: next})
		final = next
	}
	sm := &StateMachine{States: b.states, FinalState: final}
	wrapEnvelope(sm)
	return sm, nil
}

// walkStmt appends stmt's effect to state cur, returning the state the
// control flow has reached once stmt completes. isTail reports whether
// stmt is the last statement of its enclosing seq-block, used by the
// conditional join-elision rule.
func walkStmt(b *builder, cur int, stmt ir.Node, isTail bool) int {
	switch v := stmt.(type) {
	case nil:
		return cur
	case *ir.SeqBlock:
		n := v.Items.Len()
		for i := 0; i < n; i++ {
			cur = walkStmt(b, cur, v.Items.At(i), i == n-1)
		}
		return cur
	case *ir.ParBlock:
		n := v.Items.Len()
		for i := 0; i < n; i++ {
			cur = walkStmt(b, cur, v.Items.At(i), i == n-1)
		}
		return cur
	case *ir.BlockingAssign, *ir.NonblockingAssign, *ir.ContinuousAssign:
		if isLandmark(v) {
			b.emit(cur, v)
			next := b.newState()
			b.states[cur].Transitions = append(b.states[cur].Transitions, Transition{To: next})
			return next
		}
		b.emit(cur, v)
		return cur
	case *ir.SystemTaskEnableStatement:
		b.emit(cur, v)
		if v.IsLandmark() {
			next := b.newState()
			b.states[cur].Transitions = append(b.states[cur].Transitions, Transition{To: next})
			return next
		}
		return cur
	case *ir.ConditionalStatement:
		return walkConditional(b, cur, v, isTail)
	case *ir.CaseStatement:
		return walkCase(b, cur, v)
	default:
		b.emit(cur, v)
		return cur
	}
}

// isLandmark reports whether stmt is a task-landmark assign, already
// planted by a prior mangle.MangleSystemTasks pass.
func isLandmark(stmt ir.Node) bool {
	return mangle.IsTaskWrite(stmt)
}

func hasLandmark(stmt ir.Node) bool {
	switch v := stmt.(type) {
	case nil:
		return false
	case *ir.SeqBlock:
		found := false
		v.Items.Each(func(_ int, item ir.Node) { found = found || hasLandmark(item) })
		return found
	case *ir.ParBlock:
		found := false
		v.Items.Each(func(_ int, item ir.Node) { found = found || hasLandmark(item) })
		return found
	case *ir.ConditionalStatement:
		if hasLandmark(v.Then) {
			return true
		}
		return hasLandmark(v.Else)
	case *ir.CaseStatement:
		found := false
		v.Items.Each(func(_ int, item *ir.CaseItem) { found = found || hasLandmark(item.Body) })
		return found
	case *ir.SystemTaskEnableStatement:
		return v.IsLandmark()
	default:
		return isLandmark(v)
	}
}

// walkConditional implements §4.D step 2's if/then/else handling: inline
// when neither arm contains a landmark, otherwise fork into per-arm states
// joined back together (unless isTail elides the join).
func walkConditional(b *builder, cur int, v *ir.ConditionalStatement, isTail bool) int {
	if !hasLandmark(v.Then) && !hasLandmark(v.Else) {
		b.emit(cur, v)
		return cur
	}

	thenState := b.newState()
	thenExit := walkStmt(b, thenState, v.Then, true)

	var elseState, elseExit int
	hasElse := v.Else != nil
	if hasElse {
		elseState = b.newState()
		elseExit = walkStmt(b, elseState, v.Else, true)
	}

	b.states[cur].Transitions = append(b.states[cur].Transitions, Transition{Cond: v.Cond, To: thenState})
	if hasElse {
		b.states[cur].Transitions = append(b.states[cur].Transitions, Transition{To: elseState})
	}

	elideJoin := isTail && !hasElse
	if elideJoin {
		return thenExit
	}

	join := b.newState()
	b.states[thenExit].Transitions = append(b.states[thenExit].Transitions, Transition{To: join})
	if hasElse {
		b.states[elseExit].Transitions = append(b.states[elseExit].Transitions, Transition{To: join})
	} else {
		b.states[cur].Transitions = append(b.states[cur].Transitions, Transition{To: join})
	}
	return join
}

// walkCase is symmetric to walkConditional, one arm per CaseItem.
func walkCase(b *builder, cur int, v *ir.CaseStatement) int {
	anyLandmark := false
	v.Items.Each(func(_ int, item *ir.CaseItem) { anyLandmark = anyLandmark || hasLandmark(item.Body) })
	if !anyLandmark {
		b.emit(cur, v)
		return cur
	}

	join := b.newState()
	n := v.Items.Len()
	for i := 0; i < n; i++ {
		item := v.Items.At(i)
		armState := b.newState()
		armExit := walkStmt(b, armState, item.Body, true)
		b.states[armExit].Transitions = append(b.states[armExit].Transitions, Transition{To: join})

		var guard ir.Node
		if item.Values.Len() > 0 {
			guard = caseItemGuard(v.Selector, item)
		}
		b.states[cur].Transitions = append(b.states[cur].Transitions, Transition{Cond: guard, To: armState})
	}
	return join
}

func caseItemGuard(selector ir.Node, item *ir.CaseItem) ir.Node {
	var guard ir.Node
	item.Values.Each(func(_ int, val ir.Node) {
		eq := ir.NewBinaryExpression(ir.OpCaseEq, selector.Clone(), val.Clone(), item.Position())
		if guard == nil {
			guard = eq
		} else {
			guard = ir.NewBinaryExpression(ir.OpLogOr, guard, eq, item.Position())
		}
	})
	return guard
}

// wrapEnvelope implements §4.D step 3: the __continue guard at entry and
// the __state/__task_id reset logic appended at every exit transition
// into sm.FinalState.
func wrapEnvelope(sm *StateMachine) {
	pos := ir.Pos{}
	entryGuard := ir.NewConditionalStatement(
		ir.NewIdentifier("__continue", pos),
		ir.NewBlockingAssign(ir.NewIdentifier("__task_id", pos), ir.NewNumber(bitvector.FromUint64(0, 32), bitvector.FormatDecimal, pos), pos),
		pos,
	)
	sm.States[0].Stmts = append([]ir.Node{entryGuard}, sm.States[0].Stmts...)

	resetState := ir.NewBlockingAssign(
		ir.NewIdentifier("__state", pos),
		ir.NewConditionalExpression(
			ir.NewIdentifier("__reset", pos),
			ir.NewIdentifier("__final", pos),
			ir.NewConditionalExpression(
				ir.NewIdentifier("__trigger", pos),
				ir.NewNumber(bitvector.FromUint64(0, 32), bitvector.FormatDecimal, pos),
				ir.NewIdentifier("__state", pos),
				pos,
			),
			pos,
		),
		pos,
	)
	resetTask := ir.NewBlockingAssign(
		ir.NewIdentifier("__task_id", pos),
		ir.NewConditionalExpression(
			ir.NewIdentifier("__reset", pos),
			ir.NewNumber(bitvector.FromInt64(-1, 32), bitvector.FormatDecimal, pos),
			ir.NewIdentifier("__task_id", pos),
			pos,
		),
		pos,
	)
	sm.States[sm.FinalState].Stmts = append(sm.States[sm.FinalState].Stmts, resetState, resetTask)
}
