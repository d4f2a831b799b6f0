package analyze

import (
	"fmt"

	"github.com/cascade-hdl/cascade/internal/ir"
	"github.com/cascade-hdl/cascade/pkg/bitvector"
)

// NotConstantError reports an expression Evaluate cannot fold because it
// reaches a non-constant Identifier (a net/reg rather than a parameter or
// genvar bound to a literal).
type NotConstantError struct {
	Name string
	Pos  ir.Pos
}

func (e *NotConstantError) Error() string {
	return fmt.Sprintf("%s:%d: %q is not a compile-time constant", e.Pos.File, e.Pos.Line, e.Name)
}

// Evaluate constant-folds n into a bitvector.Value. Identifiers must
// resolve (via Resolved) to a ParameterDeclaration or LocalparamDeclaration
// whose own default value is itself constant; anything else, including a
// GenvarDeclaration, is a NotConstantError. Used by elaborate for generate
// guards/selectors/bounds and for parameter defaults, always before
// machinify runs.
func Evaluate(n ir.Node) (bitvector.Value, error) {
	switch v := n.(type) {
	case *ir.Number:
		return v.Value, nil
	case *ir.Identifier:
		return evaluateIdentifier(v)
	case *ir.BinaryExpression:
		return evaluateBinary(v)
	case *ir.UnaryExpression:
		return evaluateUnary(v)
	case *ir.ConditionalExpression:
		cond, err := Evaluate(v.Cond)
		if err != nil {
			return bitvector.Value{}, err
		}
		if cond.ReduceOr() != 0 {
			return Evaluate(v.Then)
		}
		return Evaluate(v.Else)
	case *ir.RangeExpression:
		return evaluateRange(v)
	case *ir.ConcatenationExpression:
		return evaluateConcat(v)
	default:
		return bitvector.Value{}, fmt.Errorf("%s:%d: expression kind not constant-foldable", n.Position().File, n.Position().Line)
	}
}

func evaluateIdentifier(ident *ir.Identifier) (bitvector.Value, error) {
	decl, err := Resolved(ident)
	if err != nil {
		return bitvector.Value{}, err
	}
	switch d := decl.(type) {
	case *ir.ParameterDeclaration:
		return Evaluate(d.Default)
	case *ir.LocalparamDeclaration:
		return Evaluate(d.Default)
	default:
		return bitvector.Value{}, &NotConstantError{Name: ident.Name, Pos: ident.Position()}
	}
}

func evaluateBinary(n *ir.BinaryExpression) (bitvector.Value, error) {
	lhs, err := Evaluate(n.Lhs)
	if err != nil {
		return bitvector.Value{}, err
	}
	rhs, err := Evaluate(n.Rhs)
	if err != nil {
		return bitvector.Value{}, err
	}
	width := lhs.Width
	if rhs.Width > width {
		width = rhs.Width
	}
	signed := lhs.Signed && rhs.Signed
	boolResult := func(b bool) bitvector.Value {
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
			return bitvector.Value{}, fmt.Errorf("%s:%d: division by zero in constant expression", n.Position().File, n.Position().Line)
		}
		return bitvector.FromUint64(lhs.Uint64()/rhs.Uint64(), width), nil
	case ir.OpMod:
		if rhs.Uint64() == 0 {
			return bitvector.Value{}, fmt.Errorf("%s:%d: modulo by zero in constant expression", n.Position().File, n.Position().Line)
		}
		return bitvector.FromUint64(lhs.Uint64()%rhs.Uint64(), width), nil
	case ir.OpLogAnd:
		return boolResult(lhs.ReduceOr() != 0 && rhs.ReduceOr() != 0), nil
	case ir.OpLogOr:
		return boolResult(lhs.ReduceOr() != 0 || rhs.ReduceOr() != 0), nil
	case ir.OpBitAnd:
		return bitwise(lhs, rhs, width, func(a, b uint32) uint32 { return a & b }), nil
	case ir.OpBitOr:
		return bitwise(lhs, rhs, width, func(a, b uint32) uint32 { return a | b }), nil
	case ir.OpBitXor:
		return bitwise(lhs, rhs, width, func(a, b uint32) uint32 { return a ^ b }), nil
	case ir.OpBitXnor:
		return bitwise(lhs, rhs, width, func(a, b uint32) uint32 { return ^(a ^ b) }), nil
	case ir.OpEq, ir.OpCaseEq:
		return boolResult(lhs.ZeroExtend(width).Equal(rhs.ZeroExtend(width))), nil
	case ir.OpNeq, ir.OpCaseNeq:
		return boolResult(!lhs.ZeroExtend(width).Equal(rhs.ZeroExtend(width))), nil
	case ir.OpLt:
		return boolResult(signedOrNot(lhs, signed) < signedOrNot(rhs, signed)), nil
	case ir.OpLte:
		return boolResult(signedOrNot(lhs, signed) <= signedOrNot(rhs, signed)), nil
	case ir.OpGt:
		return boolResult(signedOrNot(lhs, signed) > signedOrNot(rhs, signed)), nil
	case ir.OpGte:
		return boolResult(signedOrNot(lhs, signed) >= signedOrNot(rhs, signed)), nil
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

func signedOrNot(v bitvector.Value, signed bool) int64 {
	if signed {
		return v.Int64()
	}
	return int64(v.Uint64())
}

func bitwise(lhs, rhs bitvector.Value, width uint32, op func(a, b uint32) uint32) bitvector.Value {
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

func evaluateUnary(n *ir.UnaryExpression) (bitvector.Value, error) {
	operand, err := Evaluate(n.Operand)
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
		return bitwise(operand, operand, operand.Width, func(a, _ uint32) uint32 { return ^a }), nil
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

func evaluateRange(n *ir.RangeExpression) (bitvector.Value, error) {
	base, err := Evaluate(n.BaseExpr)
	if err != nil {
		return bitvector.Value{}, err
	}
	lo, err := Evaluate(n.Lo)
	if err != nil {
		return bitvector.Value{}, err
	}
	if n.Hi == nil {
		return bitvector.FromUint64(uint64(base.Bit(uint32(lo.Uint64()))), 1), nil
	}
	hi, err := Evaluate(n.Hi)
	if err != nil {
		return bitvector.Value{}, err
	}
	width := uint32(hi.Uint64()-lo.Uint64()) + 1
	out := bitvector.New(width, false)
	for i := uint32(0); i < width; i++ {
		out = setResultBit(out, i, base.Bit(uint32(lo.Uint64())+i))
	}
	return out, nil
}

func setResultBit(v bitvector.Value, i uint32, bit uint8) bitvector.Value {
	shifted := bitvector.FromUint64(uint64(bit)<<uint(i%32), v.Width)
	if bit == 0 {
		return v
	}
	return bitwise(v, shifted, v.Width, func(a, b uint32) uint32 { return a | b })
}

func evaluateConcat(n *ir.ConcatenationExpression) (bitvector.Value, error) {
	var pieces []bitvector.Value
	var total uint32
	var evalErr error
	n.Operands.Each(func(_ int, op ir.Node) {
		if evalErr != nil {
			return
		}
		v, err := Evaluate(op)
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
			out = setResultBit(out, pos+b, p.Bit(b))
		}
		pos += p.Width
	}
	return out, nil
}
