package analyze

import "github.com/cascade-hdl/cascade/internal/ir"

// ModuleInfo is the derived, memoized decoration computed once per
// ModuleDeclaration by Info and cached on the node itself (mod.Info()/
// SetInfo) so repeat callers in the same compile don't recompute it.
type ModuleInfo struct {
	Local    map[string]ir.Node
	External map[string]ir.Node
	Input    map[string]ir.Node
	Output   map[string]ir.Node
	Stateful map[string]ir.Node

	Reads  map[string]bool
	Writes map[string]bool

	PortConnections map[string]ir.Node

	generation uint64
}

// Info returns mod's cached ModuleInfo, recomputing it if the module's
// scope has changed (its ScopeIndex generation) since the cache was built.
func Info(mod *ir.ModuleDeclaration) *ModuleInfo {
	if cached, ok := mod.Info().(*ModuleInfo); ok && cached.generation == mod.ScopeIndex().NextUpdate {
		return cached
	}
	info := compute(mod)
	mod.SetInfo(info)
	return info
}

func compute(mod *ir.ModuleDeclaration) *ModuleInfo {
	info := &ModuleInfo{
		Local:           map[string]ir.Node{},
		External:        map[string]ir.Node{},
		Input:           map[string]ir.Node{},
		Output:          map[string]ir.Node{},
		Stateful:        map[string]ir.Node{},
		Reads:           map[string]bool{},
		Writes:          map[string]bool{},
		PortConnections: map[string]ir.Node{},
		generation:      mod.ScopeIndex().NextUpdate,
	}

	mod.Ports.Each(func(_ int, p *ir.PortDeclaration) {
		switch p.Direction {
		case ir.PortInput:
			info.Input[p.Name] = p
			info.External[p.Name] = p
		case ir.PortOutput:
			info.Output[p.Name] = p
			info.Local[p.Name] = p
		case ir.PortInout:
			info.Input[p.Name] = p
			info.Output[p.Name] = p
			info.Local[p.Name] = p
		}
	})

	mod.Items.Each(func(_ int, item ir.Node) {
		switch d := item.(type) {
		case *ir.NetDeclaration:
			info.Local[d.Name] = d
		case *ir.RegDeclaration:
			info.Local[d.Name] = d
			info.Stateful[d.Name] = d
		case *ir.AlwaysConstruct:
			markReadsWrites(info, d.Timing)
		case *ir.InitialConstruct:
			markReadsWrites(info, d.Body)
		case *ir.ContinuousAssign:
			markExprReads(info, d.Rhs)
			markExprReads(info, d.Lhs)
			markWrite(info, d.Lhs)
		case *ir.ModuleInstantiation:
			d.Connections.Each(func(_ int, c *ir.PortConnection) {
				info.PortConnections[c.PortName] = c.Expr
				markExprReads(info, c.Expr)
			})
		}
	})

	return info
}

func markReadsWrites(info *ModuleInfo, n ir.Node) {
	switch v := n.(type) {
	case *ir.SeqBlock:
		v.Items.Each(func(_ int, item ir.Node) { markReadsWrites(info, item) })
	case *ir.ParBlock:
		v.Items.Each(func(_ int, item ir.Node) { markReadsWrites(info, item) })
	case *ir.BlockingAssign:
		markExprReads(info, v.Rhs)
		markWrite(info, v.Lhs)
	case *ir.NonblockingAssign:
		markExprReads(info, v.Rhs)
		markWrite(info, v.Lhs)
	case *ir.ConditionalStatement:
		markExprReads(info, v.Cond)
		markReadsWrites(info, v.Then)
		if v.Else != nil {
			markReadsWrites(info, v.Else)
		}
	case *ir.CaseStatement:
		markExprReads(info, v.Selector)
		v.Items.Each(func(_ int, item *ir.CaseItem) {
			item.Values.Each(func(_ int, val ir.Node) { markExprReads(info, val) })
			markReadsWrites(info, item.Body)
		})
	case *ir.LoopStatement:
		markExprReads(info, v.Cond)
		markReadsWrites(info, v.Body)
	case *ir.TimingControlStatement:
		for _, s := range v.Sensitivities {
			markExprReads(info, s.Signal)
		}
		markReadsWrites(info, v.Body)
	case *ir.SystemTaskEnableStatement:
		v.Args.Each(func(_ int, arg ir.Node) { markExprReads(info, arg) })
	}
}

func markExprReads(info *ModuleInfo, n ir.Node) {
	switch v := n.(type) {
	case *ir.Identifier:
		info.Reads[v.Name] = true
	case *ir.BinaryExpression:
		markExprReads(info, v.Lhs)
		markExprReads(info, v.Rhs)
	case *ir.UnaryExpression:
		markExprReads(info, v.Operand)
	case *ir.ConditionalExpression:
		markExprReads(info, v.Cond)
		markExprReads(info, v.Then)
		markExprReads(info, v.Else)
	case *ir.ConcatenationExpression:
		v.Operands.Each(func(_ int, op ir.Node) { markExprReads(info, op) })
	case *ir.RangeExpression:
		markExprReads(info, v.BaseExpr)
	case *ir.FeofExpression:
		markExprReads(info, v.Fd)
	}
}

func markWrite(info *ModuleInfo, lhs ir.Node) {
	switch v := lhs.(type) {
	case *ir.Identifier:
		info.Writes[v.Name] = true
	case *ir.RangeExpression:
		markWrite(info, v.BaseExpr)
	case *ir.ConcatenationExpression:
		v.Operands.Each(func(_ int, op ir.Node) { markWrite(info, op) })
	}
}
