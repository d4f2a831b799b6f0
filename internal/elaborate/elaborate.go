// Package elaborate expands generate constructs and resolves module
// instantiations, turning a parsed, Navigate-d module into the flat tree
// machinify and mangle operate on.
package elaborate

import (
	"fmt"

	"github.com/cascade-hdl/cascade/internal/analyze"
	"github.com/cascade-hdl/cascade/internal/ir"
	"github.com/cascade-hdl/cascade/pkg/bitvector"
)

// Options controls the optional instantiation-inlining step.
type Options struct {
	// EnableInlining substitutes a resolved instantiation's cloned
	// declaration directly into the parent's item list, gated by a
	// synthesized always-true IfGenerateConstruct so StripInlining can
	// later restore the un-inlined tree by removing that construct.
	EnableInlining bool
}

// Elaborate runs the three elaboration steps against mod in order:
// parameter resolution, generate expansion, then instantiation resolution.
// source is the module registry used to look up instantiated module names.
func Elaborate(source *ir.SourceText, mod *ir.ModuleDeclaration, opts Options) error {
	if err := ResolveParameters(mod, nil); err != nil {
		return err
	}
	if err := ExpandGenerates(mod); err != nil {
		return err
	}
	if err := ResolveInstantiations(source, mod, opts); err != nil {
		return err
	}
	return nil
}

// ResolveParameters folds every ParameterDeclaration's default expression
// (after substituting an instantiation-site override of the same name, if
// present in overrides) into a constant Number, in place.
func ResolveParameters(mod *ir.ModuleDeclaration, overrides map[string]ir.Node) error {
	var errOut error
	mod.Items.Each(func(_ int, item ir.Node) {
		if errOut != nil {
			return
		}
		p, ok := item.(*ir.ParameterDeclaration)
		if !ok {
			return
		}
		expr := p.Default
		if overrides != nil {
			if ov, ok := overrides[p.Name]; ok {
				expr = ov
			}
		}
		val, err := analyze.Evaluate(expr)
		if err != nil {
			errOut = fmt.Errorf("parameter %q: %w", p.Name, err)
			return
		}
		p.SetDefault(ir.NewNumber(val, bitvector.FormatDecimal, p.Position()))
	})
	return errOut
}
