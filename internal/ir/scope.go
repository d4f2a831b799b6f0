package ir

// ScopeIndex is the cached name table carried by every scope-bearing node
// (module, generate block, seq/par block — spec.md §3). NextUpdate
// advances whenever the scope's declarations change, so analyze.Resolve
// can detect a stale Identifier.resolvedAt cache without eagerly walking
// the scope on every mutation.
type ScopeIndex struct {
	table      map[string]Node
	NextUpdate uint64
}

// Declare adds or replaces name's declaration and bumps NextUpdate.
func (s *ScopeIndex) Declare(name string, decl Node) {
	if s.table == nil {
		s.table = make(map[string]Node)
	}
	s.table[name] = decl
	s.NextUpdate++
}

// Lookup returns the declaration bound to name in this scope only (not
// outer scopes — walking outward is analyze.Resolve's job).
func (s *ScopeIndex) Lookup(name string) (Node, bool) {
	decl, ok := s.table[name]
	return decl, ok
}

// Invalidate bumps NextUpdate without changing the table, for callers that
// mutated a declaration's identity in place (spec.md §4.B Navigate).
func (s *ScopeIndex) Invalidate() { s.NextUpdate++ }

// Scope is implemented by every scope-bearing node.
type Scope interface {
	Node
	ScopeIndex() *ScopeIndex
}
