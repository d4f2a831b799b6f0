package ir

// SeqBlock is a `begin ... end` block with sequential statement semantics.
// It is scope-bearing (local reg/parameter declarations may appear at its
// head in the items list alongside statements).
type SeqBlock struct {
	base
	scope ScopeIndex
	Items NodeList[Node]
}

func NewSeqBlock(pos Pos) *SeqBlock {
	return &SeqBlock{base: base{tag: TagSeqBlock, pos: pos}}
}

func (n *SeqBlock) ScopeIndex() *ScopeIndex { return &n.scope }

func (n *SeqBlock) Append(v Node) {
	v.setParent(n)
	n.Items.PushBack(v)
}

// ReplaceItems discards the current item list and installs items,
// reparenting each (see ModuleDeclaration.ReplaceItems) — used by mangle's
// rewrite passes, which produce a new statement list rather than editing
// one statement at a time.
func (n *SeqBlock) ReplaceItems(items []Node) {
	n.Items = NodeList[Node]{}
	for _, it := range items {
		n.Append(it)
	}
}

func (n *SeqBlock) Clone() Node {
	c := NewSeqBlock(n.pos)
	c.Flags = n.Flags
	n.Items.Each(func(_ int, v Node) { c.Append(v.Clone()) })
	return c
}

func (n *SeqBlock) Accept(v Visitor)      { v.VisitSeqBlock(n) }
func (n *SeqBlock) Edit(e Editor)         { e.EditSeqBlock(n) }
func (n *SeqBlock) Build(b Builder) Node  { return b.BuildSeqBlock(n) }
func (n *SeqBlock) Rewrite(r Rewriter) Node { return r.RewriteSeqBlock(n) }

// ParBlock is a `fork ... join` block with concurrent statement semantics.
// Cascade does not schedule its statements concurrently at the engine
// level (spec.md §5: simulation is cooperative and single-threaded per
// engine) — ParBlock is retained for source fidelity and machinify treats
// it the same as SeqBlock, per the algorithm in spec.md §4.D which does
// not distinguish them.
type ParBlock struct {
	base
	scope ScopeIndex
	Items NodeList[Node]
}

func NewParBlock(pos Pos) *ParBlock {
	return &ParBlock{base: base{tag: TagParBlock, pos: pos}}
}

func (n *ParBlock) ScopeIndex() *ScopeIndex { return &n.scope }

func (n *ParBlock) Append(v Node) {
	v.setParent(n)
	n.Items.PushBack(v)
}

// ReplaceItems discards the current item list and installs items,
// reparenting each (see ModuleDeclaration.ReplaceItems).
func (n *ParBlock) ReplaceItems(items []Node) {
	n.Items = NodeList[Node]{}
	for _, it := range items {
		n.Append(it)
	}
}

func (n *ParBlock) Clone() Node {
	c := NewParBlock(n.pos)
	c.Flags = n.Flags
	n.Items.Each(func(_ int, v Node) { c.Append(v.Clone()) })
	return c
}

func (n *ParBlock) Accept(v Visitor)      { v.VisitParBlock(n) }
func (n *ParBlock) Edit(e Editor)         { e.EditParBlock(n) }
func (n *ParBlock) Build(b Builder) Node  { return b.BuildParBlock(n) }
func (n *ParBlock) Rewrite(r Rewriter) Node { return r.RewriteParBlock(n) }

// BlockingAssign is `lhs = rhs`.
type BlockingAssign struct {
	base
	Lhs, Rhs Node
}

func NewBlockingAssign(lhs, rhs Node, pos Pos) *BlockingAssign {
	n := &BlockingAssign{base: base{tag: TagBlockingAssign, pos: pos}}
	n.SetLhs(lhs)
	n.SetRhs(rhs)
	return n
}

func (n *BlockingAssign) SetLhs(v Node) { v.setParent(n); n.Lhs = v }
func (n *BlockingAssign) SetRhs(v Node) { v.setParent(n); n.Rhs = v }

func (n *BlockingAssign) Clone() Node {
	return NewBlockingAssign(n.Lhs.Clone(), n.Rhs.Clone(), n.pos)
}

func (n *BlockingAssign) Accept(v Visitor)      { v.VisitBlockingAssign(n) }
func (n *BlockingAssign) Edit(e Editor)         { e.EditBlockingAssign(n) }
func (n *BlockingAssign) Build(b Builder) Node  { return b.BuildBlockingAssign(n) }
func (n *BlockingAssign) Rewrite(r Rewriter) Node { return r.RewriteBlockingAssign(n) }

// NonblockingAssign is `lhs <= rhs`, rewritten by mangle.MangleRest into
// the shadow-write-plus-mask-xor pair described in spec.md §4.E item 3.
type NonblockingAssign struct {
	base
	Lhs, Rhs Node
}

func NewNonblockingAssign(lhs, rhs Node, pos Pos) *NonblockingAssign {
	n := &NonblockingAssign{base: base{tag: TagNonblockingAssign, pos: pos}}
	n.SetLhs(lhs)
	n.SetRhs(rhs)
	return n
}

func (n *NonblockingAssign) SetLhs(v Node) { v.setParent(n); n.Lhs = v }
func (n *NonblockingAssign) SetRhs(v Node) { v.setParent(n); n.Rhs = v }

func (n *NonblockingAssign) Clone() Node {
	return NewNonblockingAssign(n.Lhs.Clone(), n.Rhs.Clone(), n.pos)
}

func (n *NonblockingAssign) Accept(v Visitor)      { v.VisitNonblockingAssign(n) }
func (n *NonblockingAssign) Edit(e Editor)         { e.EditNonblockingAssign(n) }
func (n *NonblockingAssign) Build(b Builder) Node  { return b.BuildNonblockingAssign(n) }
func (n *NonblockingAssign) Rewrite(r Rewriter) Node { return r.RewriteNonblockingAssign(n) }

// ConditionalStatement is `if (cond) then else else`. Else is nil ("maybe")
// when there is no else-arm.
type ConditionalStatement struct {
	base
	Cond, Then, Else Node
}

func NewConditionalStatement(cond, then Node, pos Pos) *ConditionalStatement {
	n := &ConditionalStatement{base: base{tag: TagConditionalStatement, pos: pos}}
	n.SetCond(cond)
	n.SetThen(then)
	return n
}

func (n *ConditionalStatement) SetCond(v Node) { v.setParent(n); n.Cond = v }
func (n *ConditionalStatement) SetThen(v Node) { v.setParent(n); n.Then = v }
func (n *ConditionalStatement) SetElse(v Node) {
	if v != nil {
		v.setParent(n)
	}
	n.Else = v
}

func (n *ConditionalStatement) Clone() Node {
	c := NewConditionalStatement(n.Cond.Clone(), n.Then.Clone(), n.pos)
	c.Flags = n.Flags
	if n.Else != nil {
		c.SetElse(n.Else.Clone())
	}
	return c
}

func (n *ConditionalStatement) Accept(v Visitor)      { v.VisitConditionalStatement(n) }
func (n *ConditionalStatement) Edit(e Editor)         { e.EditConditionalStatement(n) }
func (n *ConditionalStatement) Build(b Builder) Node  { return b.BuildConditionalStatement(n) }
func (n *ConditionalStatement) Rewrite(r Rewriter) Node {
	return r.RewriteConditionalStatement(n)
}

// CaseItem is one arm of a CaseStatement: a set of matching value
// expressions (empty means `default`) guarding Body.
type CaseItem struct {
	base
	Values NodeList[Node]
	Body   Node
}

func NewCaseItem(pos Pos) *CaseItem {
	return &CaseItem{base: base{tag: TagCaseItem, pos: pos}}
}

func (n *CaseItem) AppendValue(v Node) { v.setParent(n); n.Values.PushBack(v) }
func (n *CaseItem) SetBody(v Node)     { v.setParent(n); n.Body = v }

func (n *CaseItem) Clone() Node {
	c := NewCaseItem(n.pos)
	c.Flags = n.Flags
	n.Values.Each(func(_ int, v Node) { c.AppendValue(v.Clone()) })
	c.SetBody(n.Body.Clone())
	return c
}

func (n *CaseItem) Accept(v Visitor)      { v.VisitCaseItem(n) }
func (n *CaseItem) Edit(e Editor)         { e.EditCaseItem(n) }
func (n *CaseItem) Build(b Builder) Node  { return b.BuildCaseItem(n) }
func (n *CaseItem) Rewrite(r Rewriter) Node { return r.RewriteCaseItem(n) }

// CaseStatement is `case (Selector) ... endcase`.
type CaseStatement struct {
	base
	Selector Node
	Items    NodeList[*CaseItem]
}

func NewCaseStatement(selector Node, pos Pos) *CaseStatement {
	n := &CaseStatement{base: base{tag: TagCaseStatement, pos: pos}}
	n.SetSelector(selector)
	return n
}

func (n *CaseStatement) SetSelector(v Node) { v.setParent(n); n.Selector = v }
func (n *CaseStatement) AppendItem(v *CaseItem) {
	v.setParent(n)
	n.Items.PushBack(v)
}

func (n *CaseStatement) Clone() Node {
	c := NewCaseStatement(n.Selector.Clone(), n.pos)
	c.Flags = n.Flags
	n.Items.Each(func(_ int, v *CaseItem) { c.AppendItem(v.Clone().(*CaseItem)) })
	return c
}

func (n *CaseStatement) Accept(v Visitor)      { v.VisitCaseStatement(n) }
func (n *CaseStatement) Edit(e Editor)         { e.EditCaseStatement(n) }
func (n *CaseStatement) Build(b Builder) Node  { return b.BuildCaseStatement(n) }
func (n *CaseStatement) Rewrite(r Rewriter) Node { return r.RewriteCaseStatement(n) }

// LoopKind distinguishes the HDL loop statement forms.
type LoopKind uint8

const (
	LoopFor LoopKind = iota
	LoopWhile
)

// LoopStatement is `for (...)` or `while (...)`. Init/Step are nil for
// LoopWhile.
type LoopStatement struct {
	base
	Kind       LoopKind
	Init, Step Node // maybe
	Cond       Node
	Body       Node
}

func NewLoopStatement(kind LoopKind, cond, body Node, pos Pos) *LoopStatement {
	n := &LoopStatement{base: base{tag: TagLoopStatement, pos: pos}, Kind: kind}
	n.SetCond(cond)
	n.SetBody(body)
	return n
}

func (n *LoopStatement) SetInit(v Node) { setParent2(n, v); n.Init = v }
func (n *LoopStatement) SetCond(v Node) { v.setParent(n); n.Cond = v }
func (n *LoopStatement) SetStep(v Node) { setParent2(n, v); n.Step = v }
func (n *LoopStatement) SetBody(v Node) { v.setParent(n); n.Body = v }

func (n *LoopStatement) Clone() Node {
	c := NewLoopStatement(n.Kind, n.Cond.Clone(), n.Body.Clone(), n.pos)
	c.Flags = n.Flags
	if n.Init != nil {
		c.SetInit(n.Init.Clone())
	}
	if n.Step != nil {
		c.SetStep(n.Step.Clone())
	}
	return c
}

func (n *LoopStatement) Accept(v Visitor)      { v.VisitLoopStatement(n) }
func (n *LoopStatement) Edit(e Editor)         { e.EditLoopStatement(n) }
func (n *LoopStatement) Build(b Builder) Node  { return b.BuildLoopStatement(n) }
func (n *LoopStatement) Rewrite(r Rewriter) Node { return r.RewriteLoopStatement(n) }

// EdgeKind distinguishes posedge/negedge/either in a timing control's
// sensitivity list.
type EdgeKind uint8

const (
	EdgeEither EdgeKind = iota
	EdgePos
	EdgeNeg
)

// Sensitivity is one `edge signal` entry in an `@(...)` list.
type Sensitivity struct {
	Edge   EdgeKind
	Signal Node
}

// TimingControlStatement is `@(sensitivity-list) Body`. An AlwaysConstruct
// wraps exactly one of these.
type TimingControlStatement struct {
	base
	Sensitivities []Sensitivity
	Body          Node
}

func NewTimingControlStatement(body Node, pos Pos) *TimingControlStatement {
	n := &TimingControlStatement{base: base{tag: TagTimingControlStatement, pos: pos}}
	n.SetBody(body)
	return n
}

func (n *TimingControlStatement) AddSensitivity(edge EdgeKind, signal Node) {
	signal.setParent(n)
	n.Sensitivities = append(n.Sensitivities, Sensitivity{Edge: edge, Signal: signal})
}

func (n *TimingControlStatement) SetBody(v Node) { v.setParent(n); n.Body = v }

func (n *TimingControlStatement) Clone() Node {
	c := NewTimingControlStatement(n.Body.Clone(), n.pos)
	c.Flags = n.Flags
	for _, s := range n.Sensitivities {
		c.AddSensitivity(s.Edge, s.Signal.Clone())
	}
	return c
}

func (n *TimingControlStatement) Accept(v Visitor)      { v.VisitTimingControlStatement(n) }
func (n *TimingControlStatement) Edit(e Editor)         { e.EditTimingControlStatement(n) }
func (n *TimingControlStatement) Build(b Builder) Node  { return b.BuildTimingControlStatement(n) }
func (n *TimingControlStatement) Rewrite(r Rewriter) Node {
	return r.RewriteTimingControlStatement(n)
}

// SystemTaskKind enumerates the I/O system tasks rewritten by
// mangle.MangleSystemTasks (spec.md §4.E item 4).
type SystemTaskKind uint8

const (
	TaskDisplay SystemTaskKind = iota
	TaskWrite
	TaskFinish
	TaskFseek
	TaskFflush
	TaskFopen
	TaskGet
	TaskPut
	TaskRestart
	TaskRetarget
	TaskSave
	TaskError
	TaskWarning
	TaskInfo
)

// SystemTaskEnableStatement is a call to one of the I/O system tasks,
// e.g. `$display("%d", x)`.
type SystemTaskEnableStatement struct {
	base
	Kind SystemTaskKind
	Text string // format string / file path literal, task-dependent
	Args NodeList[Node]
}

func NewSystemTaskEnableStatement(kind SystemTaskKind, text string, pos Pos) *SystemTaskEnableStatement {
	return &SystemTaskEnableStatement{base: base{tag: TagSystemTaskEnableStatement, pos: pos}, Kind: kind, Text: text}
}

func (n *SystemTaskEnableStatement) AppendArg(v Node) {
	v.setParent(n)
	n.Args.PushBack(v)
}

func (n *SystemTaskEnableStatement) Clone() Node {
	c := NewSystemTaskEnableStatement(n.Kind, n.Text, n.pos)
	c.Flags = n.Flags
	n.Args.Each(func(_ int, v Node) { c.AppendArg(v.Clone()) })
	return c
}

func (n *SystemTaskEnableStatement) Accept(v Visitor)      { v.VisitSystemTaskEnableStatement(n) }
func (n *SystemTaskEnableStatement) Edit(e Editor)         { e.EditSystemTaskEnableStatement(n) }
func (n *SystemTaskEnableStatement) Build(b Builder) Node  { return b.BuildSystemTaskEnableStatement(n) }
func (n *SystemTaskEnableStatement) Rewrite(r Rewriter) Node {
	return r.RewriteSystemTaskEnableStatement(n)
}

// IsLandmark reports whether this statement has been marked by machinify
// as forcing a state boundary (spec.md §4.D step 2).
func (n *SystemTaskEnableStatement) IsLandmark() bool { return n.hasFlag(FlagLandmark) }
func (n *SystemTaskEnableStatement) SetLandmark(v bool) { n.setFlag(FlagLandmark, v) }
