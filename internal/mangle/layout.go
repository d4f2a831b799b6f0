package mangle

import (
	"sort"

	"github.com/cascade-hdl/cascade/internal/analyze"
	"github.com/cascade-hdl/cascade/internal/ir"
	"github.com/cascade-hdl/cascade/internal/vartable"
)

// controlRegisters are the fixed-width singleton entries appended after
// every module's user variables, in a fixed lexicographic slot so the
// layout is deterministic regardless of which user variables exist.
var controlRegisters = []string{
	"__apply_update",
	"__continue",
	"__debug",
	"__done",
	"__drop_update",
	"__final",
	"__open_loop",
	"__prev_update_mask",
	"__reset",
	"__resume",
	"__state",
	"__task_id",
	"__there_are_updates",
	"__there_were_tasks",
	"__trigger",
	"__update_mask",
}

// Layout computes info's module's vartable.Table: info.Stateful ∪
// info.Input ∪ info.Local names, sorted, each given a contiguous
// Elements×WordsPerElement range, followed by the fixed control registers
// in their own lexicographic slot.
func Layout(mod *ir.ModuleDeclaration, info *analyze.ModuleInfo) *vartable.Table {
	names := map[string]ir.Node{}
	for name, decl := range info.Stateful {
		names[name] = decl
		// rest.go's rewriteNonblocking targets __shadow_<name> for every
		// non-blocking assign to a stateful variable; give it a slot shaped
		// like the real variable whether or not this particular one ends up
		// assigned non-blockingly.
		names["__shadow_"+name] = decl
	}
	for name, decl := range info.Input {
		names[name] = decl
	}
	for name, decl := range info.Local {
		names[name] = decl
	}

	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)

	t := vartable.New()
	var cursor uint32
	for _, name := range sorted {
		elements, wordsPer, bitsPer := shapeOf(names[name])
		t.Entries = append(t.Entries, vartable.Entry{
			Name: name, Begin: cursor, Elements: elements,
			WordsPerElement: wordsPer, BitsPerElement: bitsPer,
		})
		cursor += elements * wordsPer
	}

	ctrl := make([]string, len(controlRegisters))
	copy(ctrl, controlRegisters)
	sort.Strings(ctrl)
	for _, name := range ctrl {
		t.Entries = append(t.Entries, vartable.Entry{
			Name: name, Begin: cursor, Elements: 1, WordsPerElement: 1, BitsPerElement: 32,
		})
		cursor++
	}

	t.Words = make([]uint32, cursor)
	return t
}

// shapeOf derives a declaration's table footprint. Width/ArrayLength
// default to 1 when absent (scalar, single element) or unevaluable (a
// parser-level port with no explicit width).
func shapeOf(decl ir.Node) (elements, wordsPerElement, bitsPerElement uint32) {
	var widthExpr, arrayExpr ir.Node
	switch d := decl.(type) {
	case *ir.PortDeclaration:
		widthExpr = d.Width
	case *ir.NetDeclaration:
		widthExpr, arrayExpr = d.Width, d.ArrayLength
	case *ir.RegDeclaration:
		widthExpr, arrayExpr = d.Width, d.ArrayLength
	}

	bits := uint32(1)
	if widthExpr != nil {
		if v, err := analyze.Evaluate(widthExpr); err == nil {
			bits = uint32(v.Uint64())
			if bits == 0 {
				bits = 1
			}
		}
	}
	elements = 1
	if arrayExpr != nil {
		if v, err := analyze.Evaluate(arrayExpr); err == nil && v.Uint64() > 0 {
			elements = uint32(v.Uint64())
		}
	}
	wordsPerElement = (bits + 31) / 32
	if wordsPerElement == 0 {
		wordsPerElement = 1
	}
	return elements, wordsPerElement, bits
}
