package ir

import "github.com/cascade-hdl/cascade/pkg/bitvector"

// BinaryOp enumerates binary expression operators.
type BinaryOp uint8

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpLogAnd
	OpLogOr
	OpBitAnd
	OpBitOr
	OpBitXor
	OpBitXnor
	OpEq
	OpNeq
	OpCaseEq
	OpCaseNeq
	OpLt
	OpLte
	OpGt
	OpGte
	OpShl
	OpShr
	OpAShr
)

// UnaryOp enumerates unary and reduction expression operators.
type UnaryOp uint8

const (
	OpNeg UnaryOp = iota
	OpLogNot
	OpBitNot
	OpReduceAnd
	OpReduceNand
	OpReduceOr
	OpReduceNor
	OpReduceXor
	OpReduceXnor
)

// Identifier references a declaration by name. Resolution is a derived
// cache (spec.md §4.B Resolve): resolvedAt is the Navigate generation the
// cache was computed against, so a stale cache is detected cheaply rather
// than invalidated eagerly. Clone never copies the cache.
type Identifier struct {
	base
	Name string

	resolved   Node
	resolvedAt uint64
}

func NewIdentifier(name string, pos Pos) *Identifier {
	return &Identifier{base: base{tag: TagIdentifier, pos: pos}, Name: name}
}

func (n *Identifier) Clone() Node {
	return &Identifier{base: base{tag: n.tag, pos: n.pos, Flags: n.Flags}, Name: n.Name}
}

func (n *Identifier) Accept(v Visitor)      { v.VisitIdentifier(n) }
func (n *Identifier) Edit(e Editor)         { e.EditIdentifier(n) }
func (n *Identifier) Build(b Builder) Node  { return b.BuildIdentifier(n) }
func (n *Identifier) Rewrite(r Rewriter) Node { return r.RewriteIdentifier(n) }

// Resolution returns the cached declaration and the generation it was
// resolved against, for analyze.Resolve to validate against the current
// scope generation before trusting it.
func (n *Identifier) Resolution() (Node, uint64) { return n.resolved, n.resolvedAt }

// SetResolution caches a resolved declaration at the given scope generation.
func (n *Identifier) SetResolution(decl Node, gen uint64) {
	n.resolved = decl
	n.resolvedAt = gen
}

// Number is a constant literal, value and metadata pre-evaluated by the
// parser (Width/Signed/Format) and available for analyze.Evaluate without
// re-parsing the literal text.
type Number struct {
	base
	Value  bitvector.Value
	Format bitvector.Format
}

func NewNumber(v bitvector.Value, format bitvector.Format, pos Pos) *Number {
	n := &Number{base: base{tag: TagNumber, pos: pos}, Value: v, Format: format}
	n.setFlag(FlagSigned, v.Signed)
	return n
}

func (n *Number) Clone() Node {
	return &Number{base: base{tag: n.tag, pos: n.pos, Flags: n.Flags}, Value: n.Value, Format: n.Format}
}

func (n *Number) Accept(v Visitor)      { v.VisitNumber(n) }
func (n *Number) Edit(e Editor)         { e.EditNumber(n) }
func (n *Number) Build(b Builder) Node  { return b.BuildNumber(n) }
func (n *Number) Rewrite(r Rewriter) Node { return r.RewriteNumber(n) }

// BinaryExpression is a two-operand expression; Lhs/Rhs are owned pointer
// children.
type BinaryExpression struct {
	base
	Op       BinaryOp
	Lhs, Rhs Node
}

func NewBinaryExpression(op BinaryOp, lhs, rhs Node, pos Pos) *BinaryExpression {
	n := &BinaryExpression{base: base{tag: TagBinaryExpression, pos: pos}, Op: op, Lhs: lhs, Rhs: rhs}
	lhs.setParent(n)
	rhs.setParent(n)
	return n
}

func (n *BinaryExpression) SetLhs(v Node) { v.setParent(n); n.Lhs = v }
func (n *BinaryExpression) SetRhs(v Node) { v.setParent(n); n.Rhs = v }

func (n *BinaryExpression) Clone() Node {
	c := &BinaryExpression{base: base{tag: n.tag, pos: n.pos, Flags: n.Flags}, Op: n.Op}
	c.SetLhs(n.Lhs.Clone())
	c.SetRhs(n.Rhs.Clone())
	return c
}

func (n *BinaryExpression) Accept(v Visitor) {
	v.VisitBinaryExpression(n)
}
func (n *BinaryExpression) Edit(e Editor) { e.EditBinaryExpression(n) }
func (n *BinaryExpression) Build(b Builder) Node {
	return b.BuildBinaryExpression(n)
}
func (n *BinaryExpression) Rewrite(r Rewriter) Node {
	return r.RewriteBinaryExpression(n)
}

// UnaryExpression is a single-operand (including reduction) expression.
type UnaryExpression struct {
	base
	Op      UnaryOp
	Operand Node
}

func NewUnaryExpression(op UnaryOp, operand Node, pos Pos) *UnaryExpression {
	n := &UnaryExpression{base: base{tag: TagUnaryExpression, pos: pos}, Op: op, Operand: operand}
	operand.setParent(n)
	return n
}

func (n *UnaryExpression) SetOperand(v Node) { v.setParent(n); n.Operand = v }

func (n *UnaryExpression) Clone() Node {
	c := &UnaryExpression{base: base{tag: n.tag, pos: n.pos, Flags: n.Flags}, Op: n.Op}
	c.SetOperand(n.Operand.Clone())
	return c
}

func (n *UnaryExpression) Accept(v Visitor)      { v.VisitUnaryExpression(n) }
func (n *UnaryExpression) Edit(e Editor)         { e.EditUnaryExpression(n) }
func (n *UnaryExpression) Build(b Builder) Node  { return b.BuildUnaryExpression(n) }
func (n *UnaryExpression) Rewrite(r Rewriter) Node { return r.RewriteUnaryExpression(n) }

// ConditionalExpression is HDL's `cond ? then : else`.
type ConditionalExpression struct {
	base
	Cond, Then, Else Node
}

func NewConditionalExpression(cond, then, els Node, pos Pos) *ConditionalExpression {
	n := &ConditionalExpression{base: base{tag: TagConditionalExpression, pos: pos}}
	n.SetCond(cond)
	n.SetThen(then)
	n.SetElse(els)
	return n
}

func (n *ConditionalExpression) SetCond(v Node) { v.setParent(n); n.Cond = v }
func (n *ConditionalExpression) SetThen(v Node) { v.setParent(n); n.Then = v }
func (n *ConditionalExpression) SetElse(v Node) { v.setParent(n); n.Else = v }

func (n *ConditionalExpression) Clone() Node {
	return NewConditionalExpression(n.Cond.Clone(), n.Then.Clone(), n.Else.Clone(), n.pos)
}

func (n *ConditionalExpression) Accept(v Visitor) { v.VisitConditionalExpression(n) }
func (n *ConditionalExpression) Edit(e Editor)    { e.EditConditionalExpression(n) }
func (n *ConditionalExpression) Build(b Builder) Node {
	return b.BuildConditionalExpression(n)
}
func (n *ConditionalExpression) Rewrite(r Rewriter) Node {
	return r.RewriteConditionalExpression(n)
}

// ConcatenationExpression is HDL's `{a, b, c}`.
type ConcatenationExpression struct {
	base
	Operands NodeList[Node]
}

func NewConcatenationExpression(pos Pos) *ConcatenationExpression {
	return &ConcatenationExpression{base: base{tag: TagConcatenationExpression, pos: pos}}
}

func (n *ConcatenationExpression) Append(v Node) {
	v.setParent(n)
	n.Operands.PushBack(v)
}

func (n *ConcatenationExpression) Clone() Node {
	c := NewConcatenationExpression(n.pos)
	c.Flags = n.Flags
	n.Operands.Each(func(_ int, v Node) { c.Append(v.Clone()) })
	return c
}

func (n *ConcatenationExpression) Accept(v Visitor) { v.VisitConcatenationExpression(n) }
func (n *ConcatenationExpression) Edit(e Editor)    { e.EditConcatenationExpression(n) }
func (n *ConcatenationExpression) Build(b Builder) Node {
	return b.BuildConcatenationExpression(n)
}
func (n *ConcatenationExpression) Rewrite(r Rewriter) Node {
	return r.RewriteConcatenationExpression(n)
}

// RangeExpression selects a single bit (Lo only) or a part-select range
// (Hi and Lo) of Base.
type RangeExpression struct {
	base
	BaseExpr Node
	Hi, Lo   Node // Hi is nil for a single-bit select
}

func NewBitSelect(baseExpr, lo Node, pos Pos) *RangeExpression {
	n := &RangeExpression{base: base{tag: TagRangeExpression, pos: pos}}
	n.SetBase(baseExpr)
	n.SetLo(lo)
	return n
}

func NewPartSelect(baseExpr, hi, lo Node, pos Pos) *RangeExpression {
	n := NewBitSelect(baseExpr, lo, pos)
	n.SetHi(hi)
	return n
}

func (n *RangeExpression) SetBase(v Node) { v.setParent(n); n.BaseExpr = v }
func (n *RangeExpression) SetHi(v Node)   { v.setParent(n); n.Hi = v }
func (n *RangeExpression) SetLo(v Node)   { v.setParent(n); n.Lo = v }

func (n *RangeExpression) Clone() Node {
	var hi Node
	if n.Hi != nil {
		hi = n.Hi.Clone()
	}
	c := &RangeExpression{base: base{tag: n.tag, pos: n.pos, Flags: n.Flags}}
	c.SetBase(n.BaseExpr.Clone())
	if hi != nil {
		c.SetHi(hi)
	}
	c.SetLo(n.Lo.Clone())
	return c
}

func (n *RangeExpression) Accept(v Visitor) { v.VisitRangeExpression(n) }
func (n *RangeExpression) Edit(e Editor)    { e.EditRangeExpression(n) }
func (n *RangeExpression) Build(b Builder) Node {
	return b.BuildRangeExpression(n)
}
func (n *RangeExpression) Rewrite(r Rewriter) Node {
	return r.RewriteRangeExpression(n)
}

// FeofExpression is `feof(fd)`, rewritten by mangle.MangleRest (spec.md
// §4.E item 2) into a read of the file descriptor's expression-table slot.
type FeofExpression struct {
	base
	Fd Node
}

func NewFeofExpression(fd Node, pos Pos) *FeofExpression {
	n := &FeofExpression{base: base{tag: TagFeofExpression, pos: pos}}
	n.SetFd(fd)
	return n
}

func (n *FeofExpression) SetFd(v Node) { v.setParent(n); n.Fd = v }

func (n *FeofExpression) Clone() Node {
	return NewFeofExpression(n.Fd.Clone(), n.pos)
}

func (n *FeofExpression) Accept(v Visitor)      { v.VisitFeofExpression(n) }
func (n *FeofExpression) Edit(e Editor)         { e.EditFeofExpression(n) }
func (n *FeofExpression) Build(b Builder) Node  { return b.BuildFeofExpression(n) }
func (n *FeofExpression) Rewrite(r Rewriter) Node { return r.RewriteFeofExpression(n) }
