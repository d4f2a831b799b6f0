package ir

// ModuleDeclaration is `module Name(ports); items endmodule`. It is
// scope-bearing and carries a decoration-free ModuleInfo cache (set by
// analyze.Info, never copied by Clone) in info.
type ModuleDeclaration struct {
	base
	Name  string
	Ports NodeList[*PortDeclaration]
	Items NodeList[Node]
	scope ScopeIndex

	// info holds the *analyze.ModuleInfo cache. Declared as `any` to avoid
	// ir importing analyze; analyze type-asserts it back.
	info any
}

func NewModuleDeclaration(name string, pos Pos) *ModuleDeclaration {
	return &ModuleDeclaration{base: base{tag: TagModuleDeclaration, pos: pos}, Name: name}
}

func (n *ModuleDeclaration) ScopeIndex() *ScopeIndex { return &n.scope }

func (n *ModuleDeclaration) AddPort(p *PortDeclaration) {
	p.setParent(n)
	n.Ports.PushBack(p)
}

func (n *ModuleDeclaration) Append(item Node) {
	item.setParent(n)
	n.Items.PushBack(item)
}

// ReplaceItems discards the current item list and installs items,
// reparenting each — used by elaborate's generate expansion and
// instantiation inlining, which rebuild a module's item list wholesale
// rather than editing it one splice at a time.
func (n *ModuleDeclaration) ReplaceItems(items []Node) {
	n.Items = NodeList[Node]{}
	for _, it := range items {
		n.Append(it)
	}
}

// Info returns the cached decoration, or nil if none has been computed yet.
func (n *ModuleDeclaration) Info() any { return n.info }

// SetInfo installs (or clears, with nil) the cached decoration.
func (n *ModuleDeclaration) SetInfo(v any) { n.info = v }

func (n *ModuleDeclaration) Clone() Node {
	c := NewModuleDeclaration(n.Name, n.pos)
	c.Flags = n.Flags
	n.Ports.Each(func(_ int, p *PortDeclaration) { c.AddPort(p.Clone().(*PortDeclaration)) })
	n.Items.Each(func(_ int, it Node) { c.Append(it.Clone()) })
	return c
}

func (n *ModuleDeclaration) Accept(v Visitor)      { v.VisitModuleDeclaration(n) }
func (n *ModuleDeclaration) Edit(e Editor)         { e.EditModuleDeclaration(n) }
func (n *ModuleDeclaration) Build(b Builder) Node  { return b.BuildModuleDeclaration(n) }
func (n *ModuleDeclaration) Rewrite(r Rewriter) Node { return r.RewriteModuleDeclaration(n) }

// ModuleInstantiation instantiates ModuleName as InstanceName with the
// given port connections. inst caches the resolved+cloned declaration
// (spec.md §4.C), owned by the instantiation, recomputed lazily.
type ModuleInstantiation struct {
	base
	ModuleName   string
	InstanceName string
	Connections  NodeList[*PortConnection]

	inst *ModuleDeclaration
}

func NewModuleInstantiation(moduleName, instanceName string, pos Pos) *ModuleInstantiation {
	return &ModuleInstantiation{base: base{tag: TagModuleInstantiation, pos: pos}, ModuleName: moduleName, InstanceName: instanceName}
}

func (n *ModuleInstantiation) AddConnection(c *PortConnection) {
	c.setParent(n)
	n.Connections.PushBack(c)
}

// ResolvedInstance returns the cached cloned declaration for this
// instantiation, set by elaborate.Elaborate.
func (n *ModuleInstantiation) ResolvedInstance() *ModuleDeclaration { return n.inst }

func (n *ModuleInstantiation) SetResolvedInstance(m *ModuleDeclaration) { n.inst = m }

func (n *ModuleInstantiation) Clone() Node {
	c := NewModuleInstantiation(n.ModuleName, n.InstanceName, n.pos)
	c.Flags = n.Flags
	n.Connections.Each(func(_ int, v *PortConnection) { c.AddConnection(v.Clone().(*PortConnection)) })
	return c
}

func (n *ModuleInstantiation) Accept(v Visitor)      { v.VisitModuleInstantiation(n) }
func (n *ModuleInstantiation) Edit(e Editor)         { e.EditModuleInstantiation(n) }
func (n *ModuleInstantiation) Build(b Builder) Node  { return b.BuildModuleInstantiation(n) }
func (n *ModuleInstantiation) Rewrite(r Rewriter) Node { return r.RewriteModuleInstantiation(n) }

// AlwaysConstruct is `always @(...) body`. machinify.Machinify consumes
// the Timing field's body.
type AlwaysConstruct struct {
	base
	Timing *TimingControlStatement
}

func NewAlwaysConstruct(timing *TimingControlStatement, pos Pos) *AlwaysConstruct {
	n := &AlwaysConstruct{base: base{tag: TagAlwaysConstruct, pos: pos}}
	timing.setParent(n)
	n.Timing = timing
	return n
}

func (n *AlwaysConstruct) Clone() Node {
	return NewAlwaysConstruct(n.Timing.Clone().(*TimingControlStatement), n.pos)
}

func (n *AlwaysConstruct) Accept(v Visitor)      { v.VisitAlwaysConstruct(n) }
func (n *AlwaysConstruct) Edit(e Editor)         { e.EditAlwaysConstruct(n) }
func (n *AlwaysConstruct) Build(b Builder) Node  { return b.BuildAlwaysConstruct(n) }
func (n *AlwaysConstruct) Rewrite(r Rewriter) Node { return r.RewriteAlwaysConstruct(n) }

// InitialConstruct is `initial body`. InterpEngine runs it once, on its
// first Evaluate call; tableEngine does not execute initial bodies.
type InitialConstruct struct {
	base
	Body Node
}

func NewInitialConstruct(body Node, pos Pos) *InitialConstruct {
	n := &InitialConstruct{base: base{tag: TagInitialConstruct, pos: pos}}
	n.SetBody(body)
	return n
}

func (n *InitialConstruct) SetBody(v Node) { v.setParent(n); n.Body = v }

func (n *InitialConstruct) Clone() Node {
	return NewInitialConstruct(n.Body.Clone(), n.pos)
}

func (n *InitialConstruct) Accept(v Visitor)      { v.VisitInitialConstruct(n) }
func (n *InitialConstruct) Edit(e Editor)         { e.EditInitialConstruct(n) }
func (n *InitialConstruct) Build(b Builder) Node  { return b.BuildInitialConstruct(n) }
func (n *InitialConstruct) Rewrite(r Rewriter) Node { return r.RewriteInitialConstruct(n) }

// ContinuousAssign is `assign lhs = rhs`, re-evaluated combinationally
// every engine Evaluate call.
type ContinuousAssign struct {
	base
	Lhs, Rhs Node
}

func NewContinuousAssign(lhs, rhs Node, pos Pos) *ContinuousAssign {
	n := &ContinuousAssign{base: base{tag: TagContinuousAssign, pos: pos}}
	n.SetLhs(lhs)
	n.SetRhs(rhs)
	return n
}

func (n *ContinuousAssign) SetLhs(v Node) { v.setParent(n); n.Lhs = v }
func (n *ContinuousAssign) SetRhs(v Node) { v.setParent(n); n.Rhs = v }

func (n *ContinuousAssign) Clone() Node {
	return NewContinuousAssign(n.Lhs.Clone(), n.Rhs.Clone(), n.pos)
}

func (n *ContinuousAssign) Accept(v Visitor)      { v.VisitContinuousAssign(n) }
func (n *ContinuousAssign) Edit(e Editor)         { e.EditContinuousAssign(n) }
func (n *ContinuousAssign) Build(b Builder) Node  { return b.BuildContinuousAssign(n) }
func (n *ContinuousAssign) Rewrite(r Rewriter) Node { return r.RewriteContinuousAssign(n) }

// GenerateBlock is `begin ... end` scoped to a generate-construct arm. It
// is scope-bearing like SeqBlock.
type GenerateBlock struct {
	base
	Label string
	scope ScopeIndex
	Items NodeList[Node]
}

func NewGenerateBlock(label string, pos Pos) *GenerateBlock {
	return &GenerateBlock{base: base{tag: TagGenerateBlock, pos: pos}, Label: label}
}

func (n *GenerateBlock) ScopeIndex() *ScopeIndex { return &n.scope }

func (n *GenerateBlock) Append(v Node) {
	v.setParent(n)
	n.Items.PushBack(v)
}

// ReplaceItems discards the current item list and installs items,
// reparenting each (see ModuleDeclaration.ReplaceItems).
func (n *GenerateBlock) ReplaceItems(items []Node) {
	n.Items = NodeList[Node]{}
	for _, it := range items {
		n.Append(it)
	}
}

func (n *GenerateBlock) Clone() Node {
	c := NewGenerateBlock(n.Label, n.pos)
	c.Flags = n.Flags
	n.Items.Each(func(_ int, v Node) { c.Append(v.Clone()) })
	return c
}

func (n *GenerateBlock) Accept(v Visitor)      { v.VisitGenerateBlock(n) }
func (n *GenerateBlock) Edit(e Editor)         { e.EditGenerateBlock(n) }
func (n *GenerateBlock) Build(b Builder) Node  { return b.BuildGenerateBlock(n) }
func (n *GenerateBlock) Rewrite(r Rewriter) Node { return r.RewriteGenerateBlock(n) }

// IfGenerateConstruct is `if (Cond) generate ThenBlock [else ElseBlock]`.
// gen caches the selected, already-cloned block per spec.md §4.C ("Expanded
// clones are cached on the construct (gen decoration) and owned by it").
type IfGenerateConstruct struct {
	base
	Cond               Node
	ThenBlock, ElseBlock *GenerateBlock // ElseBlock is "maybe"

	gen *GenerateBlock
}

func NewIfGenerateConstruct(cond Node, then *GenerateBlock, pos Pos) *IfGenerateConstruct {
	n := &IfGenerateConstruct{base: base{tag: TagIfGenerateConstruct, pos: pos}}
	n.SetCond(cond)
	n.SetThenBlock(then)
	return n
}

func (n *IfGenerateConstruct) SetCond(v Node) { v.setParent(n); n.Cond = v }
func (n *IfGenerateConstruct) SetThenBlock(v *GenerateBlock) {
	v.setParent(n)
	n.ThenBlock = v
}
func (n *IfGenerateConstruct) SetElseBlock(v *GenerateBlock) {
	if v != nil {
		v.setParent(n)
	}
	n.ElseBlock = v
}

func (n *IfGenerateConstruct) Gen() *GenerateBlock         { return n.gen }
func (n *IfGenerateConstruct) SetGen(g *GenerateBlock)      { n.gen = g }

func (n *IfGenerateConstruct) Clone() Node {
	c := NewIfGenerateConstruct(n.Cond.Clone(), n.ThenBlock.Clone().(*GenerateBlock), n.pos)
	c.Flags = n.Flags
	if n.ElseBlock != nil {
		c.SetElseBlock(n.ElseBlock.Clone().(*GenerateBlock))
	}
	return c
}

func (n *IfGenerateConstruct) Accept(v Visitor)      { v.VisitIfGenerateConstruct(n) }
func (n *IfGenerateConstruct) Edit(e Editor)         { e.EditIfGenerateConstruct(n) }
func (n *IfGenerateConstruct) Build(b Builder) Node  { return b.BuildIfGenerateConstruct(n) }
func (n *IfGenerateConstruct) Rewrite(r Rewriter) Node { return r.RewriteIfGenerateConstruct(n) }

// CaseGenerateConstruct is `case (Selector) generate ... endcase`. Each
// CaseItem's Body must be a *GenerateBlock.
type CaseGenerateConstruct struct {
	base
	Selector Node
	Items    NodeList[*CaseItem]

	gen *GenerateBlock
}

func NewCaseGenerateConstruct(selector Node, pos Pos) *CaseGenerateConstruct {
	n := &CaseGenerateConstruct{base: base{tag: TagCaseGenerateConstruct, pos: pos}}
	n.SetSelector(selector)
	return n
}

func (n *CaseGenerateConstruct) SetSelector(v Node) { v.setParent(n); n.Selector = v }
func (n *CaseGenerateConstruct) AppendItem(v *CaseItem) {
	v.setParent(n)
	n.Items.PushBack(v)
}
func (n *CaseGenerateConstruct) Gen() *GenerateBlock    { return n.gen }
func (n *CaseGenerateConstruct) SetGen(g *GenerateBlock) { n.gen = g }

func (n *CaseGenerateConstruct) Clone() Node {
	c := NewCaseGenerateConstruct(n.Selector.Clone(), n.pos)
	c.Flags = n.Flags
	n.Items.Each(func(_ int, v *CaseItem) { c.AppendItem(v.Clone().(*CaseItem)) })
	return c
}

func (n *CaseGenerateConstruct) Accept(v Visitor)      { v.VisitCaseGenerateConstruct(n) }
func (n *CaseGenerateConstruct) Edit(e Editor)         { e.EditCaseGenerateConstruct(n) }
func (n *CaseGenerateConstruct) Build(b Builder) Node  { return b.BuildCaseGenerateConstruct(n) }
func (n *CaseGenerateConstruct) Rewrite(r Rewriter) Node {
	return r.RewriteCaseGenerateConstruct(n)
}

// LoopGenerateConstruct is `for (genvar ...) generate Body`. gen caches the
// full sequence of iterated, cloned blocks (one per loop iteration).
type LoopGenerateConstruct struct {
	base
	Genvar             string
	Init, Cond, Step   Node
	Body               *GenerateBlock

	gen []*GenerateBlock
}

func NewLoopGenerateConstruct(genvar string, init, cond, step Node, body *GenerateBlock, pos Pos) *LoopGenerateConstruct {
	n := &LoopGenerateConstruct{base: base{tag: TagLoopGenerateConstruct, pos: pos}, Genvar: genvar}
	n.SetInit(init)
	n.SetCond(cond)
	n.SetStep(step)
	n.SetBody(body)
	return n
}

func (n *LoopGenerateConstruct) SetInit(v Node) { v.setParent(n); n.Init = v }
func (n *LoopGenerateConstruct) SetCond(v Node) { v.setParent(n); n.Cond = v }
func (n *LoopGenerateConstruct) SetStep(v Node) { v.setParent(n); n.Step = v }
func (n *LoopGenerateConstruct) SetBody(v *GenerateBlock) { v.setParent(n); n.Body = v }

func (n *LoopGenerateConstruct) Gen() []*GenerateBlock      { return n.gen }
func (n *LoopGenerateConstruct) SetGen(g []*GenerateBlock)  { n.gen = g }

func (n *LoopGenerateConstruct) Clone() Node {
	c := NewLoopGenerateConstruct(n.Genvar, n.Init.Clone(), n.Cond.Clone(), n.Step.Clone(), n.Body.Clone().(*GenerateBlock), n.pos)
	c.Flags = n.Flags
	return c
}

func (n *LoopGenerateConstruct) Accept(v Visitor)      { v.VisitLoopGenerateConstruct(n) }
func (n *LoopGenerateConstruct) Edit(e Editor)         { e.EditLoopGenerateConstruct(n) }
func (n *LoopGenerateConstruct) Build(b Builder) Node  { return b.BuildLoopGenerateConstruct(n) }
func (n *LoopGenerateConstruct) Rewrite(r Rewriter) Node {
	return r.RewriteLoopGenerateConstruct(n)
}

// SourceText is the root node: an ordered set of module declarations.
type SourceText struct {
	base
	Modules NodeList[*ModuleDeclaration]
}

func NewSourceText(pos Pos) *SourceText {
	return &SourceText{base: base{tag: TagSourceText, pos: pos}}
}

func (n *SourceText) AddModule(m *ModuleDeclaration) {
	m.setParent(n)
	n.Modules.PushBack(m)
}

// FindModule returns the declaration with the given name, or nil.
func (n *SourceText) FindModule(name string) *ModuleDeclaration {
	var found *ModuleDeclaration
	n.Modules.Each(func(_ int, m *ModuleDeclaration) {
		if found == nil && m.Name == name {
			found = m
		}
	})
	return found
}

func (n *SourceText) Clone() Node {
	c := NewSourceText(n.pos)
	c.Flags = n.Flags
	n.Modules.Each(func(_ int, m *ModuleDeclaration) { c.AddModule(m.Clone().(*ModuleDeclaration)) })
	return c
}

func (n *SourceText) Accept(v Visitor)      { v.VisitSourceText(n) }
func (n *SourceText) Edit(e Editor)         { e.EditSourceText(n) }
func (n *SourceText) Build(b Builder) Node  { return b.BuildSourceText(n) }
func (n *SourceText) Rewrite(r Rewriter) Node { return r.RewriteSourceText(n) }
