package elaborate

import (
	"fmt"

	"github.com/cascade-hdl/cascade/internal/ir"
	"github.com/cascade-hdl/cascade/pkg/bitvector"
)

// ResolveInstantiations looks up every ModuleInstantiation directly inside
// mod's item list against source, clones the resolved declaration into the
// instantiation's cached slot, and (when opts.EnableInlining is set)
// splices the clone into mod's own item list behind a synthesized
// always-true IfGenerateConstruct guard.
func ResolveInstantiations(source *ir.SourceText, mod *ir.ModuleDeclaration, opts Options) error {
	var out []ir.Node
	var errOut error
	mod.Items.Each(func(_ int, item ir.Node) {
		if errOut != nil {
			return
		}
		inst, ok := item.(*ir.ModuleInstantiation)
		if !ok {
			out = append(out, item)
			return
		}
		decl := source.FindModule(inst.ModuleName)
		if decl == nil {
			errOut = fmt.Errorf("%s:%d: instantiation of unknown module %q", inst.Position().File, inst.Position().Line, inst.ModuleName)
			return
		}
		clone := decl.Clone().(*ir.ModuleDeclaration)
		inst.SetResolvedInstance(clone)

		if !opts.EnableInlining {
			out = append(out, item)
			return
		}
		out = append(out, item)
		out = append(out, inlineGuard(inst, clone))
	})
	if errOut != nil {
		return errOut
	}
	mod.ReplaceItems(out)
	return nil
}

// inlineGuard wraps clone's items in a synthesized always-true
// IfGenerateConstruct whose block is labelled with the instance name, so
// StripInlining can recognise it and remove it from the item list.
func inlineGuard(inst *ir.ModuleInstantiation, clone *ir.ModuleDeclaration) ir.Node {
	pos := inst.Position()
	guardTrue := ir.NewNumber(bitvector.FromUint64(1, 1), bitvector.FormatDecimal, pos)
	block := ir.NewGenerateBlock(inst.InstanceName, pos)
	clone.Items.Each(func(_ int, item ir.Node) { block.Append(item.Clone()) })
	construct := ir.NewIfGenerateConstruct(guardTrue, block, pos)
	construct.SetGen(block)
	return construct
}

// StripInlining reverses a prior EnableInlining pass: any IfGenerateConstruct
// synthesized by inlineGuard is recognized by its generate block sharing an
// instance name with a sibling ModuleInstantiation, and is removed from the
// item list, leaving the bare instantiation for re-elaboration.
func StripInlining(mod *ir.ModuleDeclaration) {
	names := map[string]bool{}
	mod.Items.Each(func(_ int, item ir.Node) {
		if inst, ok := item.(*ir.ModuleInstantiation); ok {
			names[inst.InstanceName] = true
		}
	})
	var out []ir.Node
	mod.Items.Each(func(_ int, item ir.Node) {
		if ifg, ok := item.(*ir.IfGenerateConstruct); ok {
			if g := ifg.Gen(); g != nil && names[g.Label] {
				return
			}
		}
		out = append(out, item)
	})
	mod.ReplaceItems(out)
}
