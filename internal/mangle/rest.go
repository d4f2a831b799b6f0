package mangle

import (
	"sort"

	"github.com/cascade-hdl/cascade/internal/analyze"
	"github.com/cascade-hdl/cascade/internal/ir"
	"github.com/cascade-hdl/cascade/pkg/bitvector"
)

// MaskBits assigns each of info's stateful variables a dense bit index into
// the single 32-bit __update_mask/__prev_update_mask pair, derived from the
// sorted stateful-name list the same way Layout orders table entries. The
// indices are collision-free for up to 32 stateful variables; beyond that
// they wrap (i % 32) and share bits, same as the mask registers' own width
// ceiling.
func MaskBits(info *analyze.ModuleInfo) map[string]uint32 {
	names := make([]string, 0, len(info.Stateful))
	for name := range info.Stateful {
		names = append(names, name)
	}
	sort.Strings(names)

	bits := make(map[string]uint32, len(names))
	for i, name := range names {
		bits[name] = uint32(i % 32)
	}
	return bits
}

// MangleRest performs §4.E items 1-3: drop declarations (state now lives
// in the vartable.Table built by Layout), rewrite feof(fd) into an
// expression-table slot read, and rewrite non-blocking assigns into the
// shadow-write-plus-__update_mask-XOR pair. Run after machinify, since
// machinify's landmark detection needs the original non-blocking-assign
// shape MangleSystemTasks leaves intact.
func MangleRest(mod *ir.ModuleDeclaration, bits map[string]uint32) {
	dropDeclarations(mod)
	r := &restMangler{bits: bits}
	mod.Items.Each(func(_ int, item ir.Node) {
		switch v := item.(type) {
		case *ir.AlwaysConstruct:
			v.Timing.SetBody(r.rewrite(v.Timing.Body))
		case *ir.InitialConstruct:
			v.SetBody(r.rewrite(v.Body))
		case *ir.ContinuousAssign:
			v.SetRhs(r.rewriteExpr(v.Rhs))
		}
	})
}

// dropDeclarations removes NetDeclaration/RegDeclaration/
// ParameterDeclaration/LocalparamDeclaration/GenvarDeclaration from mod's
// item list; PortDeclaration stays (it is not an Items entry) since port
// directionality still matters to the engine ABI's get/set input/state.
func dropDeclarations(mod *ir.ModuleDeclaration) {
	var kept []ir.Node
	mod.Items.Each(func(_ int, item ir.Node) {
		switch item.(type) {
		case *ir.NetDeclaration, *ir.RegDeclaration, *ir.ParameterDeclaration,
			*ir.LocalparamDeclaration, *ir.GenvarDeclaration:
			return
		}
		kept = append(kept, item)
	})
	mod.ReplaceItems(kept)
}

// RewriteStmt applies the same declaration-free, feof/non-blocking-assign
// rewrite MangleRest performs over a module's top-level constructs to a
// single statement subtree. interp.Compile uses this to bring
// machinify.StateMachine's captured Stmts — built from the pre-mangle
// tree, since Machinify runs before MangleRest — up to date, rather than
// re-deriving states from the post-MangleRest tree.
func RewriteStmt(stmt ir.Node, bits map[string]uint32) ir.Node {
	return (&restMangler{bits: bits}).rewrite(stmt)
}

type restMangler struct {
	bits map[string]uint32
}

func (r *restMangler) rewrite(stmt ir.Node) ir.Node {
	switch v := stmt.(type) {
	case *ir.SeqBlock:
		items := make([]ir.Node, v.Items.Len())
		v.Items.Each(func(i int, item ir.Node) { items[i] = r.rewrite(item) })
		v.ReplaceItems(items)
		return v
	case *ir.ParBlock:
		items := make([]ir.Node, v.Items.Len())
		v.Items.Each(func(i int, item ir.Node) { items[i] = r.rewrite(item) })
		v.ReplaceItems(items)
		return v
	case *ir.ConditionalStatement:
		v.SetCond(r.rewriteExpr(v.Cond))
		v.SetThen(r.rewrite(v.Then))
		if v.Else != nil {
			v.SetElse(r.rewrite(v.Else))
		}
		return v
	case *ir.CaseStatement:
		v.SetSelector(r.rewriteExpr(v.Selector))
		v.Items.Each(func(_ int, item *ir.CaseItem) { item.SetBody(r.rewrite(item.Body)) })
		return v
	case *ir.TimingControlStatement:
		v.SetBody(r.rewrite(v.Body))
		return v
	case *ir.BlockingAssign:
		v.SetRhs(r.rewriteExpr(v.Rhs))
		return v
	case *ir.NonblockingAssign:
		return r.rewriteNonblocking(v)
	default:
		return v
	}
}

// rewriteNonblocking implements §4.E item 3: `x <= e` becomes a SeqBlock
// of `__shadow_x := e` followed by `__prev_update_mask := __prev_update_mask ^
// maskBitFor(x)`.
func (r *restMangler) rewriteNonblocking(v *ir.NonblockingAssign) ir.Node {
	pos := v.Position()
	ident, ok := v.Lhs.(*ir.Identifier)
	if !ok {
		// A range-select lvalue still gets a shadow write; the mask bit is
		// keyed on the base identifier's name.
		if rng, ok := v.Lhs.(*ir.RangeExpression); ok {
			if base, ok := rng.BaseExpr.(*ir.Identifier); ok {
				ident = base
			}
		}
	}
	shadowName := "__shadow_" + identNameOr(ident, "unknown")

	out := ir.NewSeqBlock(pos)
	shadowWrite := ir.NewBlockingAssign(ir.NewIdentifier(shadowName, pos), r.rewriteExpr(v.Rhs), pos)
	out.Append(shadowWrite)

	maskBit := ir.NewBinaryExpression(ir.OpBitXor,
		ir.NewIdentifier("__prev_update_mask", pos),
		r.maskBitFor(ident, pos),
		pos,
	)
	maskWrite := ir.NewBlockingAssign(ir.NewIdentifier("__prev_update_mask", pos), maskBit, pos)
	out.Append(maskWrite)
	return out
}

func identNameOr(ident *ir.Identifier, fallback string) string {
	if ident == nil {
		return fallback
	}
	return ident.Name
}

// maskBitFor looks up the dense bit index MaskBits assigned to ident's
// name. A name absent from r.bits (a non-stateful lvalue, or no map at
// all) falls back to bit 0 rather than panicking — the mask is a liveness
// hint, not a correctness-critical index.
func (r *restMangler) maskBitFor(ident *ir.Identifier, pos ir.Pos) ir.Node {
	var bit uint32
	if r.bits != nil {
		bit = r.bits[identNameOr(ident, "unknown")]
	}
	return ir.NewNumber(bitvector.FromUint64(1<<bit, 32), bitvector.FormatHex, pos)
}

func (r *restMangler) rewriteExpr(n ir.Node) ir.Node {
	switch v := n.(type) {
	case *ir.FeofExpression:
		return r.rewriteFeof(v)
	case *ir.BinaryExpression:
		v.SetLhs(r.rewriteExpr(v.Lhs))
		v.SetRhs(r.rewriteExpr(v.Rhs))
		return v
	case *ir.UnaryExpression:
		v.SetOperand(r.rewriteExpr(v.Operand))
		return v
	case *ir.ConditionalExpression:
		v.SetCond(r.rewriteExpr(v.Cond))
		v.SetThen(r.rewriteExpr(v.Then))
		v.SetElse(r.rewriteExpr(v.Else))
		return v
	case *ir.ConcatenationExpression:
		n := v.Operands.Len()
		for i := 0; i < n; i++ {
			v.Operands.Set(i, r.rewriteExpr(v.Operands.At(i)))
		}
		return v
	case *ir.RangeExpression:
		v.SetBase(r.rewriteExpr(v.BaseExpr))
		return v
	default:
		return n
	}
}

// rewriteFeof implements §4.E item 2: feof(fd) becomes a read of fd's
// dedicated expression-table slot, named __feof_<fd> (fd is itself a
// constant file-descriptor identifier/number by construction of $fopen's
// mangled result).
func (r *restMangler) rewriteFeof(v *ir.FeofExpression) ir.Node {
	pos := v.Position()
	if ident, ok := v.Fd.(*ir.Identifier); ok {
		return ir.NewIdentifier("__feof_"+ident.Name, pos)
	}
	return ir.NewIdentifier("__feof_expr", pos)
}
