// Package analyze implements the read-only analysis passes that sit
// between parsing and elaboration: scope resolution, per-module derived
// identifier sets, and constant folding.
package analyze

import (
	"fmt"

	"github.com/cascade-hdl/cascade/internal/ir"
)

// UnresolvedError reports an Identifier with no declaration in any
// enclosing scope.
type UnresolvedError struct {
	Name string
	Pos  ir.Pos
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("%s:%d: unresolved identifier %q", e.Pos.File, e.Pos.Line, e.Name)
}

// enclosingScope walks up the parent chain starting at n (inclusive of a
// port connection's owning instantiation's parent module) and returns the
// first ir.Scope found.
func enclosingScope(n ir.Node) ir.Scope {
	for cur := n; cur != nil; cur = cur.Parent() {
		if s, ok := cur.(ir.Scope); ok {
			return s
		}
		if pc, ok := cur.(*ir.PortConnection); ok {
			if inst, ok := pc.Parent().(*ir.ModuleInstantiation); ok {
				cur = inst
				continue
			}
		}
	}
	return nil
}

// scopeChain returns every enclosing ir.Scope from innermost to outermost.
func scopeChain(n ir.Node) []ir.Scope {
	var chain []ir.Scope
	for cur := enclosingScope(n); cur != nil; cur = enclosingScope(cur.Parent()) {
		chain = append(chain, cur)
	}
	return chain
}

// Resolve binds ident to its declaration, walking the scope chain from
// innermost (the nearest SeqBlock/ParBlock/GenerateBlock) out to the
// enclosing ModuleDeclaration. A prior resolution cached on ident is
// trusted only if it was computed at the current generation of the scope
// that produced it; otherwise Resolve redoes the walk.
func Resolve(ident *ir.Identifier) (ir.Node, error) {
	for _, scope := range scopeChain(ident) {
		if decl, ok := scope.ScopeIndex().Lookup(ident.Name); ok {
			ident.SetResolution(decl, scope.ScopeIndex().NextUpdate)
			return decl, nil
		}
	}
	return nil, &UnresolvedError{Name: ident.Name, Pos: ident.Position()}
}

// Resolved returns ident's cached resolution if it is still valid against
// its scope's current generation, re-resolving via Resolve otherwise.
func Resolved(ident *ir.Identifier) (ir.Node, error) {
	if decl, gen := ident.Resolution(); decl != nil {
		for _, scope := range scopeChain(ident) {
			if _, ok := scope.ScopeIndex().Lookup(ident.Name); ok {
				if scope.ScopeIndex().NextUpdate == gen {
					return decl, nil
				}
				break
			}
		}
	}
	return Resolve(ident)
}
