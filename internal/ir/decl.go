package ir

// PortDirection is the direction of a module port.
type PortDirection uint8

const (
	PortInput PortDirection = iota
	PortOutput
	PortInout
)

// PortDeclaration declares one module port.
type PortDeclaration struct {
	base
	Name      string
	Direction PortDirection
	Width     Node // maybe: nil means 1-bit scalar
}

func NewPortDeclaration(name string, dir PortDirection, pos Pos) *PortDeclaration {
	return &PortDeclaration{base: base{tag: TagPortDeclaration, pos: pos}, Name: name, Direction: dir}
}

func (n *PortDeclaration) SetWidth(v Node) {
	if v != nil {
		v.setParent(n)
	}
	n.Width = v
}

func (n *PortDeclaration) Clone() Node {
	c := NewPortDeclaration(n.Name, n.Direction, n.pos)
	c.Flags = n.Flags
	if n.Width != nil {
		c.SetWidth(n.Width.Clone())
	}
	return c
}

func (n *PortDeclaration) Accept(v Visitor)      { v.VisitPortDeclaration(n) }
func (n *PortDeclaration) Edit(e Editor)         { e.EditPortDeclaration(n) }
func (n *PortDeclaration) Build(b Builder) Node  { return b.BuildPortDeclaration(n) }
func (n *PortDeclaration) Rewrite(r Rewriter) Node { return r.RewritePortDeclaration(n) }

// setParent2 is a small helper for optional ("maybe") children set through
// a non-base-embedding setter, so the parent link is still maintained by
// the owning node's mutator rather than by the child itself.
func setParent2(owner Node, child Node) { child.setParent(owner) }

// NetDeclaration declares a `wire`-like net.
type NetDeclaration struct {
	base
	Name        string
	Width       Node
	ArrayLength Node
}

func NewNetDeclaration(name string, pos Pos) *NetDeclaration {
	return &NetDeclaration{base: base{tag: TagNetDeclaration, pos: pos}, Name: name}
}

func (n *NetDeclaration) SetWidth(v Node)       { setParent2(n, v); n.Width = v }
func (n *NetDeclaration) SetArrayLength(v Node) { setParent2(n, v); n.ArrayLength = v }

func (n *NetDeclaration) Clone() Node {
	c := NewNetDeclaration(n.Name, n.pos)
	c.Flags = n.Flags
	if n.Width != nil {
		c.SetWidth(n.Width.Clone())
	}
	if n.ArrayLength != nil {
		c.SetArrayLength(n.ArrayLength.Clone())
	}
	return c
}

func (n *NetDeclaration) Accept(v Visitor)      { v.VisitNetDeclaration(n) }
func (n *NetDeclaration) Edit(e Editor)         { e.EditNetDeclaration(n) }
func (n *NetDeclaration) Build(b Builder) Node  { return b.BuildNetDeclaration(n) }
func (n *NetDeclaration) Rewrite(r Rewriter) Node { return r.RewriteNetDeclaration(n) }

// RegDeclaration declares a `reg`-like stateful variable.
type RegDeclaration struct {
	base
	Name        string
	Width       Node
	ArrayLength Node
}

func NewRegDeclaration(name string, pos Pos) *RegDeclaration {
	return &RegDeclaration{base: base{tag: TagRegDeclaration, pos: pos}, Name: name}
}

func (n *RegDeclaration) SetWidth(v Node)       { setParent2(n, v); n.Width = v }
func (n *RegDeclaration) SetArrayLength(v Node) { setParent2(n, v); n.ArrayLength = v }

func (n *RegDeclaration) Clone() Node {
	c := NewRegDeclaration(n.Name, n.pos)
	c.Flags = n.Flags
	if n.Width != nil {
		c.SetWidth(n.Width.Clone())
	}
	if n.ArrayLength != nil {
		c.SetArrayLength(n.ArrayLength.Clone())
	}
	return c
}

func (n *RegDeclaration) Accept(v Visitor)      { v.VisitRegDeclaration(n) }
func (n *RegDeclaration) Edit(e Editor)         { e.EditRegDeclaration(n) }
func (n *RegDeclaration) Build(b Builder) Node  { return b.BuildRegDeclaration(n) }
func (n *RegDeclaration) Rewrite(r Rewriter) Node { return r.RewriteRegDeclaration(n) }

// ParameterDeclaration declares a compile-time constant overridable at
// instantiation.
type ParameterDeclaration struct {
	base
	Name    string
	Default Node // pointer: constant expression
}

func NewParameterDeclaration(name string, def Node, pos Pos) *ParameterDeclaration {
	n := &ParameterDeclaration{base: base{tag: TagParameterDeclaration, pos: pos}, Name: name}
	n.SetDefault(def)
	return n
}

func (n *ParameterDeclaration) SetDefault(v Node) { v.setParent(n); n.Default = v }

func (n *ParameterDeclaration) Clone() Node {
	return NewParameterDeclaration(n.Name, n.Default.Clone(), n.pos)
}

func (n *ParameterDeclaration) Accept(v Visitor)      { v.VisitParameterDeclaration(n) }
func (n *ParameterDeclaration) Edit(e Editor)         { e.EditParameterDeclaration(n) }
func (n *ParameterDeclaration) Build(b Builder) Node  { return b.BuildParameterDeclaration(n) }
func (n *ParameterDeclaration) Rewrite(r Rewriter) Node { return r.RewriteParameterDeclaration(n) }

// LocalparamDeclaration is like ParameterDeclaration but not overridable
// from outside the module.
type LocalparamDeclaration struct {
	base
	Name    string
	Default Node
}

func NewLocalparamDeclaration(name string, def Node, pos Pos) *LocalparamDeclaration {
	n := &LocalparamDeclaration{base: base{tag: TagLocalparamDeclaration, pos: pos}, Name: name}
	n.SetDefault(def)
	return n
}

func (n *LocalparamDeclaration) SetDefault(v Node) { v.setParent(n); n.Default = v }

func (n *LocalparamDeclaration) Clone() Node {
	return NewLocalparamDeclaration(n.Name, n.Default.Clone(), n.pos)
}

func (n *LocalparamDeclaration) Accept(v Visitor)     { v.VisitLocalparamDeclaration(n) }
func (n *LocalparamDeclaration) Edit(e Editor)        { e.EditLocalparamDeclaration(n) }
func (n *LocalparamDeclaration) Build(b Builder) Node { return b.BuildLocalparamDeclaration(n) }
func (n *LocalparamDeclaration) Rewrite(r Rewriter) Node {
	return r.RewriteLocalparamDeclaration(n)
}

// GenvarDeclaration declares a generate-loop induction variable.
type GenvarDeclaration struct {
	base
	Name string
}

func NewGenvarDeclaration(name string, pos Pos) *GenvarDeclaration {
	return &GenvarDeclaration{base: base{tag: TagGenvarDeclaration, pos: pos}, Name: name}
}

func (n *GenvarDeclaration) Clone() Node {
	return NewGenvarDeclaration(n.Name, n.pos)
}

func (n *GenvarDeclaration) Accept(v Visitor)      { v.VisitGenvarDeclaration(n) }
func (n *GenvarDeclaration) Edit(e Editor)         { e.EditGenvarDeclaration(n) }
func (n *GenvarDeclaration) Build(b Builder) Node  { return b.BuildGenvarDeclaration(n) }
func (n *GenvarDeclaration) Rewrite(r Rewriter) Node { return r.RewriteGenvarDeclaration(n) }

// PortConnection binds an instantiation's port name to a connecting
// expression (usually an Identifier in the instantiating module's scope).
type PortConnection struct {
	base
	PortName string
	Expr     Node
}

func NewPortConnection(portName string, expr Node, pos Pos) *PortConnection {
	n := &PortConnection{base: base{tag: TagPortConnection, pos: pos}, PortName: portName}
	n.SetExpr(expr)
	return n
}

func (n *PortConnection) SetExpr(v Node) { v.setParent(n); n.Expr = v }

func (n *PortConnection) Clone() Node {
	return NewPortConnection(n.PortName, n.Expr.Clone(), n.pos)
}

func (n *PortConnection) Accept(v Visitor)      { v.VisitPortConnection(n) }
func (n *PortConnection) Edit(e Editor)         { e.EditPortConnection(n) }
func (n *PortConnection) Build(b Builder) Node  { return b.BuildPortConnection(n) }
func (n *PortConnection) Rewrite(r Rewriter) Node { return r.RewritePortConnection(n) }
