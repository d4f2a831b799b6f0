// Package interp is the synchronous, in-process backend: Compile lowers a
// navigated, elaborated module all the way to an engine.Engine via
// machinify and mangle (tableEngine, the "production backend"), falling
// back to a direct AST walk (InterpEngine, the "minimal backend") for
// modules trivial enough that lowering buys nothing.
package interp

import (
	"fmt"

	"github.com/cascade-hdl/cascade/internal/ir"
	"github.com/cascade-hdl/cascade/internal/vartable"
	"github.com/cascade-hdl/cascade/pkg/bitvector"
)

// readVar reads e's element i out of t as a bitvector.Value of e's
// declared width.
func readVar(t *vartable.Table, e vartable.Entry, i uint32) bitvector.Value {
	words := t.ReadElement(e, i)
	v := bitvector.New(e.BitsPerElement, false)
	copy(v.Words, words)
	return v
}

// writeVar writes val (truncated/zero-extended to e's declared width) into
// element i of e.
func writeVar(t *vartable.Table, e vartable.Entry, i uint32, val bitvector.Value) {
	val = val.ZeroExtend(e.BitsPerElement)
	words := make([]uint32, e.WordsPerElement)
	copy(words, val.Words)
	t.WriteElement(e, i, words)
}

// evalRuntime evaluates n against live table state, unlike
// analyze.Evaluate which only folds compile-time constants. Identifiers
// read straight out of the table rather than resolving through a scope
// chain, since by this stage (post-mangle) every identifier names a table
// entry, not a declaration.
func evalRuntime(n ir.Node, t *vartable.Table) (bitvector.Value, error) {
	switch v := n.(type) {
	case *ir.Number:
		return v.Value, nil
	case *ir.Identifier:
		e, ok := t.Find(v.Name)
		if !ok {
			return bitvector.Value{}, fmt.Errorf("%s:%d: %q has no table entry", v.Position().File, v.Position().Line, v.Name)
		}
		return readVar(t, e, 0), nil
	case *ir.BinaryExpression:
		return evalBinary(v, t)
	case *ir.UnaryExpression:
		return evalUnary(v, t)
	case *ir.ConditionalExpression:
		cond, err := evalRuntime(v.Cond, t)
		if err != nil {
			return bitvector.Value{}, err
		}
		if cond.ReduceOr() != 0 {
			return evalRuntime(v.Then, t)
		}
		return evalRuntime(v.Else, t)
	case *ir.RangeExpression:
		return evalRange(v, t)
	case *ir.ConcatenationExpression:
		return evalConcat(v, t)
	case *ir.FeofExpression:
		return evalRuntime(v.Fd, t)
	default:
		return bitvector.Value{}, fmt.Errorf("%s:%d: expression kind not runtime-evaluable", n.Position().File, n.Position().Line)
	}
}

func evalBinary(n *ir.BinaryExpression, t *vartable.Table) (bitvector.Value, error) {
	lhs, err := evalRuntime(n.Lhs, t)
	if err != nil {
		return bitvector.Value{}, err
	}
	rhs, err := evalRuntime(n.Rhs, t)
	if err != nil {
		return bitvector.Value{}, err
	}
	width := lhs.Width
	if rhs.Width > width {
		width = rhs.Width
	}
	signed := lhs.Signed && rhs.Signed
	boolVal := func(b bool) bitvector.Value {
		if b {
			return bitvector.FromUint64(1, 1)
		}
		return bitvector.FromUint64(0, 1)
	}
	switch n.Op {
	case ir.OpAdd:
		return lhs.Add(rhs), nil
	case ir.OpSub:
		return lhs.Sub(rhs), nil
	case ir.OpMul:
		return bitvector.FromUint64(lhs.Uint64()*rhs.Uint64(), width*2), nil
	case ir.OpDiv:
		if rhs.Uint64() == 0 {
			return bitvector.New(width, false), nil
		}
		return bitvector.FromUint64(lhs.Uint64()/rhs.Uint64(), width), nil
	case ir.OpMod:
		if rhs.Uint64() == 0 {
			return bitvector.New(width, false), nil
		}
		return bitvector.FromUint64(lhs.Uint64()%rhs.Uint64(), width), nil
	case ir.OpLogAnd:
		return boolVal(lhs.ReduceOr() != 0 && rhs.ReduceOr() != 0), nil
	case ir.OpLogOr:
		return boolVal(lhs.ReduceOr() != 0 || rhs.ReduceOr() != 0), nil
	case ir.OpBitAnd:
		return bitwiseRT(lhs, rhs, width, func(a, b uint32) uint32 { return a & b }), nil
	case ir.OpBitOr:
		return bitwiseRT(lhs, rhs, width, func(a, b uint32) uint32 { return a | b }), nil
	case ir.OpBitXor:
		return bitwiseRT(lhs, rhs, width, func(a, b uint32) uint32 { return a ^ b }), nil
	case ir.OpBitXnor:
		return bitwiseRT(lhs, rhs, width, func(a, b uint32) uint32 { return ^(a ^ b) }), nil
	case ir.OpEq, ir.OpCaseEq:
		return boolVal(lhs.ZeroExtend(width).Equal(rhs.ZeroExtend(width))), nil
	case ir.OpNeq, ir.OpCaseNeq:
		return boolVal(!lhs.ZeroExtend(width).Equal(rhs.ZeroExtend(width))), nil
	case ir.OpLt:
		return boolVal(signedVal(lhs, signed) < signedVal(rhs, signed)), nil
	case ir.OpLte:
		return boolVal(signedVal(lhs, signed) <= signedVal(rhs, signed)), nil
	case ir.OpGt:
		return boolVal(signedVal(lhs, signed) > signedVal(rhs, signed)), nil
	case ir.OpGte:
		return boolVal(signedVal(lhs, signed) >= signedVal(rhs, signed)), nil
	case ir.OpShl:
		return bitvector.FromUint64(lhs.Uint64()<<rhs.Uint64(), lhs.Width), nil
	case ir.OpShr:
		return bitvector.FromUint64(lhs.Uint64()>>rhs.Uint64(), lhs.Width), nil
	case ir.OpAShr:
		return bitvector.FromInt64(lhs.Int64()>>rhs.Uint64(), lhs.Width), nil
	default:
		return bitvector.Value{}, fmt.Errorf("%s:%d: unknown binary operator", n.Position().File, n.Position().Line)
	}
}

func signedVal(v bitvector.Value, signed bool) int64 {
	if signed {
		return v.Int64()
	}
	return int64(v.Uint64())
}

func bitwiseRT(lhs, rhs bitvector.Value, width uint32, op func(a, b uint32) uint32) bitvector.Value {
	a := lhs.ZeroExtend(width)
	b := rhs.ZeroExtend(width)
	out := bitvector.New(width, lhs.Signed && rhs.Signed)
	for i := range out.Words {
		var aw, bw uint32
		if i < len(a.Words) {
			aw = a.Words[i]
		}
		if i < len(b.Words) {
			bw = b.Words[i]
		}
		out.Words[i] = op(aw, bw)
	}
	return out
}

func evalUnary(n *ir.UnaryExpression, t *vartable.Table) (bitvector.Value, error) {
	operand, err := evalRuntime(n.Operand, t)
	if err != nil {
		return bitvector.Value{}, err
	}
	bit := func(b uint8) bitvector.Value { return bitvector.FromUint64(uint64(b), 1) }
	switch n.Op {
	case ir.OpNeg:
		return operand.Negate(), nil
	case ir.OpLogNot:
		if operand.ReduceOr() != 0 {
			return bit(0), nil
		}
		return bit(1), nil
	case ir.OpBitNot:
		return bitwiseRT(operand, operand, operand.Width, func(a, _ uint32) uint32 { return ^a }), nil
	case ir.OpReduceAnd:
		return bit(operand.ReduceAnd()), nil
	case ir.OpReduceNand:
		return bit(operand.ReduceNand()), nil
	case ir.OpReduceOr:
		return bit(operand.ReduceOr()), nil
	case ir.OpReduceNor:
		return bit(operand.ReduceNor()), nil
	case ir.OpReduceXor:
		return bit(operand.ReduceXor()), nil
	case ir.OpReduceXnor:
		return bit(operand.ReduceXnor()), nil
	default:
		return bitvector.Value{}, fmt.Errorf("%s:%d: unknown unary operator", n.Position().File, n.Position().Line)
	}
}

func evalRange(n *ir.RangeExpression, t *vartable.Table) (bitvector.Value, error) {
	base, err := evalRuntime(n.BaseExpr, t)
	if err != nil {
		return bitvector.Value{}, err
	}
	lo, err := evalRuntime(n.Lo, t)
	if err != nil {
		return bitvector.Value{}, err
	}
	if n.Hi == nil {
		return bitvector.FromUint64(uint64(base.Bit(uint32(lo.Uint64()))), 1), nil
	}
	hi, err := evalRuntime(n.Hi, t)
	if err != nil {
		return bitvector.Value{}, err
	}
	width := uint32(hi.Uint64()-lo.Uint64()) + 1
	out := bitvector.New(width, false)
	for i := uint32(0); i < width; i++ {
		if base.Bit(uint32(lo.Uint64())+i) != 0 {
			setBitRT(&out, i)
		}
	}
	return out, nil
}

func setBitRT(v *bitvector.Value, i uint32) {
	idx := i / 32
	for uint32(len(v.Words)) <= idx {
		v.Words = append(v.Words, 0)
	}
	v.Words[idx] |= 1 << (i % 32)
}

func evalConcat(n *ir.ConcatenationExpression, t *vartable.Table) (bitvector.Value, error) {
	var pieces []bitvector.Value
	var total uint32
	var evalErr error
	n.Operands.Each(func(_ int, op ir.Node) {
		if evalErr != nil {
			return
		}
		v, err := evalRuntime(op, t)
		if err != nil {
			evalErr = err
			return
		}
		pieces = append(pieces, v)
		total += v.Width
	})
	if evalErr != nil {
		return bitvector.Value{}, evalErr
	}
	out := bitvector.New(total, false)
	var pos uint32
	for i := len(pieces) - 1; i >= 0; i-- {
		p := pieces[i]
		for b := uint32(0); b < p.Width; b++ {
			if p.Bit(b) != 0 {
				setBitRT(&out, pos+b)
			}
		}
		pos += p.Width
	}
	return out, nil
}

// assign writes val into lhs's table slot, handling plain identifiers,
// bit/part-selects and concatenation lvalues (the three lvalue shapes
// mangle.MangleRest's rewrites and plain ContinuousAssigns can produce).
func assign(lhs ir.Node, val bitvector.Value, t *vartable.Table) error {
	switch v := lhs.(type) {
	case *ir.Identifier:
		e, ok := t.Find(v.Name)
		if !ok {
			return fmt.Errorf("%s:%d: %q has no table entry", v.Position().File, v.Position().Line, v.Name)
		}
		writeVar(t, e, 0, val)
		return nil
	case *ir.RangeExpression:
		base, err := evalRuntime(v.BaseExpr, t)
		if err != nil {
			return err
		}
		lo, err := evalRuntime(v.Lo, t)
		if err != nil {
			return err
		}
		hi := lo
		if v.Hi != nil {
			hi, err = evalRuntime(v.Hi, t)
			if err != nil {
				return err
			}
		}
		for i := uint32(0); i <= uint32(hi.Uint64())-uint32(lo.Uint64()); i++ {
			bit := val.Bit(i)
			if bit != 0 {
				setBitRT(&base, uint32(lo.Uint64())+i)
			} else {
				clearBitRT(&base, uint32(lo.Uint64())+i)
			}
		}
		return assign(v.BaseExpr, base, t)
	case *ir.ConcatenationExpression:
		var pos uint32
		var errOut error
		n := v.Operands.Len()
		for i := n - 1; i >= 0; i-- {
			op := v.Operands.At(i)
			width := widthOf(op, t)
			piece := bitvector.New(width, false)
			for b := uint32(0); b < width; b++ {
				if val.Bit(pos+b) != 0 {
					setBitRT(&piece, b)
				}
			}
			if err := assign(op, piece, t); err != nil {
				errOut = err
			}
			pos += width
		}
		return errOut
	default:
		return fmt.Errorf("%s:%d: unsupported lvalue shape", lhs.Position().File, lhs.Position().Line)
	}
}

func clearBitRT(v *bitvector.Value, i uint32) {
	idx := i / 32
	for uint32(len(v.Words)) <= idx {
		v.Words = append(v.Words, 0)
	}
	v.Words[idx] &^= 1 << (i % 32)
}

func widthOf(n ir.Node, t *vartable.Table) uint32 {
	v, err := evalRuntime(n, t)
	if err != nil {
		return 32
	}
	return v.Width
}
