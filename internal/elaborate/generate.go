package elaborate

import (
	"fmt"

	"github.com/cascade-hdl/cascade/internal/analyze"
	"github.com/cascade-hdl/cascade/internal/ir"
	"github.com/cascade-hdl/cascade/pkg/bitvector"
)

// ExpandGenerates walks mod's items (recursing into nested generate
// blocks) evaluating every generate construct's guard/selector/bound and
// splicing the selected block's items into the enclosing list in the
// construct's place. The construct itself is left reachable through the
// cached gen field rather than discarded, so a later pass can still find
// the un-expanded source for diagnostics.
func ExpandGenerates(mod *ir.ModuleDeclaration) error {
	items, err := expandList(mod.Items.Slice())
	if err != nil {
		return err
	}
	mod.ReplaceItems(items)
	return nil
}

func expandList(items []ir.Node) ([]ir.Node, error) {
	out := make([]ir.Node, 0, len(items))
	for _, item := range items {
		expanded, err := expandItem(item)
		if err != nil {
			return nil, err
		}
		out = append(out, expanded...)
	}
	return out, nil
}

func expandItem(item ir.Node) ([]ir.Node, error) {
	switch v := item.(type) {
	case *ir.IfGenerateConstruct:
		return expandIf(v)
	case *ir.CaseGenerateConstruct:
		return expandCase(v)
	case *ir.LoopGenerateConstruct:
		return expandLoop(v)
	default:
		return []ir.Node{item}, nil
	}
}

func expandIf(n *ir.IfGenerateConstruct) ([]ir.Node, error) {
	if g := n.Gen(); g != nil {
		return flattenBlock(g)
	}
	cond, err := analyze.Evaluate(n.Cond)
	if err != nil {
		return nil, fmt.Errorf("%s:%d: if-generate guard: %w", n.Position().File, n.Position().Line, err)
	}
	var selected *ir.GenerateBlock
	if cond.ReduceOr() != 0 {
		selected = n.ThenBlock.Clone().(*ir.GenerateBlock)
	} else if n.ElseBlock != nil {
		selected = n.ElseBlock.Clone().(*ir.GenerateBlock)
	} else {
		selected = ir.NewGenerateBlock("", n.Position())
	}
	n.SetGen(selected)
	return flattenBlock(selected)
}

func expandCase(n *ir.CaseGenerateConstruct) ([]ir.Node, error) {
	if g := n.Gen(); g != nil {
		return flattenBlock(g)
	}
	selector, err := analyze.Evaluate(n.Selector)
	if err != nil {
		return nil, fmt.Errorf("%s:%d: case-generate selector: %w", n.Position().File, n.Position().Line, err)
	}
	var chosen *ir.CaseItem
	var def *ir.CaseItem
	n.Items.Each(func(_ int, item *ir.CaseItem) {
		if chosen != nil {
			return
		}
		if item.Values.Len() == 0 {
			def = item
			return
		}
		item.Values.Each(func(_ int, val ir.Node) {
			if chosen != nil {
				return
			}
			v, err := analyze.Evaluate(val)
			if err == nil && v.Equal(selector.ZeroExtend(v.Width)) {
				chosen = item
			}
		})
	})
	if chosen == nil {
		chosen = def
	}
	var selected *ir.GenerateBlock
	if chosen == nil {
		selected = ir.NewGenerateBlock("", n.Position())
	} else if gb, ok := chosen.Body.(*ir.GenerateBlock); ok {
		selected = gb.Clone().(*ir.GenerateBlock)
	} else {
		return nil, fmt.Errorf("%s:%d: case-generate item body is not a generate block", n.Position().File, n.Position().Line)
	}
	n.SetGen(selected)
	return flattenBlock(selected)
}

func expandLoop(n *ir.LoopGenerateConstruct) ([]ir.Node, error) {
	if g := n.Gen(); g != nil {
		var out []ir.Node
		for _, gb := range g {
			items, err := flattenBlock(gb)
			if err != nil {
				return nil, err
			}
			out = append(out, items...)
		}
		return out, nil
	}

	init, err := analyze.Evaluate(n.Init)
	if err != nil {
		return nil, fmt.Errorf("%s:%d: loop-generate init: %w", n.Position().File, n.Position().Line, err)
	}
	genvarDecl := ir.NewLocalparamDeclaration(n.Genvar, ir.NewNumber(init, bitvector.FormatDecimal, n.Position()), n.Position())

	var blocks []*ir.GenerateBlock
	var out []ir.Node
	current := init
	const maxIterations = 1 << 20 // backstop against a malformed (never-false) bound
	for i := 0; i < maxIterations; i++ {
		genvarDecl.SetDefault(ir.NewNumber(current, bitvector.FormatDecimal, n.Position()))
		body := n.Body.Clone().(*ir.GenerateBlock)
		body.ScopeIndex().Declare(n.Genvar, genvarDecl.Clone())
		stillRunning, err := evaluateLoopCond(n.Cond, n.Genvar, current)
		if err != nil {
			return nil, err
		}
		if !stillRunning {
			break
		}
		blocks = append(blocks, body)
		items, err := flattenBlock(body)
		if err != nil {
			return nil, err
		}
		out = append(out, items...)

		next, err := evaluateLoopStep(n.Step, n.Genvar, current)
		if err != nil {
			return nil, err
		}
		current = next
	}
	n.SetGen(blocks)
	return out, nil
}

// evaluateLoopCond/evaluateLoopStep bind the genvar to value before
// evaluating cond/step, without mutating the shared loop AST: they clone
// cond/step is unnecessary since Evaluate only reads through resolved
// identifiers — instead we substitute via a throwaway scope on a bare
// GenerateBlock that shadows the genvar's declaration.
func evaluateLoopCond(cond ir.Node, genvar string, value bitvector.Value) (bool, error) {
	v, err := evaluateWithGenvar(cond, genvar, value)
	if err != nil {
		return false, err
	}
	return v.ReduceOr() != 0, nil
}

func evaluateLoopStep(step ir.Node, genvar string, value bitvector.Value) (bitvector.Value, error) {
	return evaluateWithGenvar(step, genvar, value)
}

func evaluateWithGenvar(expr ir.Node, genvar string, value bitvector.Value) (bitvector.Value, error) {
	scratch := ir.NewGenerateBlock("", expr.Position())
	decl := ir.NewLocalparamDeclaration(genvar, ir.NewNumber(value, bitvector.FormatDecimal, expr.Position()), expr.Position())
	scratch.ScopeIndex().Declare(genvar, decl)
	clone := expr.Clone()
	rebindIdentifiers(clone, scratch)
	return analyze.Evaluate(clone)
}

// rebindIdentifiers reparents every Identifier in tree named like a
// declaration in scratch's scope so Resolve finds the scratch binding
// first, without disturbing tree's real parent chain beyond the root.
func rebindIdentifiers(tree ir.Node, scratch *ir.GenerateBlock) {
	scratch.Append(wrapExpr(tree))
}

// wrapExpr adapts a bare expression into something GenerateBlock.Append
// (which expects an ir.Node item) can hold; ContinuousAssign is reused as
// an inert carrier since it only needs an Lhs/Rhs pair and nothing reads
// its Lhs here.
func wrapExpr(expr ir.Node) ir.Node {
	return ir.NewContinuousAssign(ir.NewIdentifier("__genvar_scratch", expr.Position()), expr, expr.Position())
}

// flattenBlock runs analyze.Run-equivalent declaration bookkeeping isn't
// needed here (a GenerateBlock clone produced by expand* carries no nested
// generate constructs requiring their own scope rebuild before its items
// are spliced upward), so flattenBlock simply expands any generate
// constructs nested directly inside the block and returns its item list.
func flattenBlock(gb *ir.GenerateBlock) ([]ir.Node, error) {
	return expandList(gb.Items.Slice())
}
