package analyze

import "github.com/cascade-hdl/cascade/internal/ir"

// Navigate (re)builds the ScopeIndex carried by every scope-bearing node
// reachable from root, declaring each declaration found directly among a
// scope's items. It does not recurse into nested scopes' own declarations
// — each scope owns only its own names, and Resolve walks outward through
// scopeChain to reach the rest.
type Navigate struct {
	ir.BaseVisitor
}

// Run declares every name visible in mod's own scope and in each nested
// scope-bearing node beneath it, then recurses into child constructs so
// nested blocks get their own index populated too.
func Run(mod *ir.ModuleDeclaration) {
	declareModule(mod)
	mod.Items.Each(func(_ int, item ir.Node) { walk(item) })
}

func declareModule(mod *ir.ModuleDeclaration) {
	mod.ScopeIndex().Invalidate()
	mod.Ports.Each(func(_ int, p *ir.PortDeclaration) { mod.ScopeIndex().Declare(p.Name, p) })
	mod.Items.Each(func(_ int, item ir.Node) {
		switch d := item.(type) {
		case *ir.NetDeclaration:
			mod.ScopeIndex().Declare(d.Name, d)
		case *ir.RegDeclaration:
			mod.ScopeIndex().Declare(d.Name, d)
		case *ir.ParameterDeclaration:
			mod.ScopeIndex().Declare(d.Name, d)
		case *ir.LocalparamDeclaration:
			mod.ScopeIndex().Declare(d.Name, d)
		case *ir.GenvarDeclaration:
			mod.ScopeIndex().Declare(d.Name, d)
		}
	})
}

func declareBlockItems(scope ir.Scope, items *ir.NodeList[ir.Node]) {
	scope.ScopeIndex().Invalidate()
	items.Each(func(_ int, item ir.Node) {
		switch d := item.(type) {
		case *ir.NetDeclaration:
			scope.ScopeIndex().Declare(d.Name, d)
		case *ir.RegDeclaration:
			scope.ScopeIndex().Declare(d.Name, d)
		case *ir.ParameterDeclaration:
			scope.ScopeIndex().Declare(d.Name, d)
		case *ir.LocalparamDeclaration:
			scope.ScopeIndex().Declare(d.Name, d)
		}
	})
}

// walk dispatches into the constructs that can carry nested scopes or
// further constructs; statement bodies are handled by walkStmt.
func walk(n ir.Node) {
	switch v := n.(type) {
	case *ir.AlwaysConstruct:
		walkStmt(v.Timing)
	case *ir.InitialConstruct:
		walkStmt(v.Body)
	case *ir.ModuleInstantiation:
		// no nested scope: the instantiated module is resolved/cloned by
		// elaborate, not navigated here.
	case *ir.IfGenerateConstruct:
		if v.ThenBlock != nil {
			walkGenerateBlock(v.ThenBlock)
		}
		if v.ElseBlock != nil {
			walkGenerateBlock(v.ElseBlock)
		}
	case *ir.CaseGenerateConstruct:
		v.Items.Each(func(_ int, item *ir.CaseItem) {
			if gb, ok := item.Body.(*ir.GenerateBlock); ok {
				walkGenerateBlock(gb)
			}
		})
	case *ir.LoopGenerateConstruct:
		walkGenerateBlock(v.Body)
	}
}

func walkGenerateBlock(gb *ir.GenerateBlock) {
	declareBlockItems(gb, &gb.Items)
	gb.Items.Each(func(_ int, item ir.Node) { walk(item) })
}

// walkStmt recurses into statement bodies, declaring nested SeqBlock/
// ParBlock scopes as it goes.
func walkStmt(n ir.Node) {
	switch v := n.(type) {
	case *ir.SeqBlock:
		declareBlockItems(v, &v.Items)
		v.Items.Each(func(_ int, item ir.Node) { walkStmt(item) })
	case *ir.ParBlock:
		declareBlockItems(v, &v.Items)
		v.Items.Each(func(_ int, item ir.Node) { walkStmt(item) })
	case *ir.ConditionalStatement:
		walkStmt(v.Then)
		if v.Else != nil {
			walkStmt(v.Else)
		}
	case *ir.CaseStatement:
		v.Items.Each(func(_ int, item *ir.CaseItem) { walkStmt(item.Body) })
	case *ir.LoopStatement:
		walkStmt(v.Body)
	case *ir.TimingControlStatement:
		walkStmt(v.Body)
	}
}
