package main

import (
	"fmt"
	"sort"

	"github.com/cascade-hdl/cascade/internal/ir"
)

// builtinFixtures stands in for the out-of-scope HDL lexer/parser (spec.md
// §1): each entry builds an already-elaborated ir.SourceText/
// ir.ModuleDeclaration directly through the IR builder API, exactly the
// way an embedding front end (or this repository's own test suite) would
// hand a module to interp.Compile without ever reading HDL source text.
// `run` resolves its module argument against this registry rather than
// against a file path.
var builtinFixtures = map[string]func() (*ir.SourceText, *ir.ModuleDeclaration){
	"hello_1": newHello1,
}

func fixtureNames() []string {
	names := make([]string, 0, len(builtinFixtures))
	for name := range builtinFixtures {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func lookupFixture(name string) (*ir.SourceText, *ir.ModuleDeclaration, error) {
	build, ok := builtinFixtures[name]
	if !ok {
		return nil, nil, fmt.Errorf("no built-in fixture %q (have: %v)", name, fixtureNames())
	}
	source, mod := build()
	return source, mod, nil
}

// newHello1 builds spec.md §8's hello_1 regression scenario: an
// initial block that displays "Hello World" and finishes.
func newHello1() (*ir.SourceText, *ir.ModuleDeclaration) {
	mod := ir.NewModuleDeclaration("hello_1", ir.Pos{})

	body := ir.NewSeqBlock(ir.Pos{})
	body.Append(ir.NewSystemTaskEnableStatement(ir.TaskDisplay, "Hello World", ir.Pos{}))
	body.Append(ir.NewSystemTaskEnableStatement(ir.TaskFinish, "", ir.Pos{}))
	mod.Append(ir.NewInitialConstruct(body, ir.Pos{}))

	source := ir.NewSourceText(ir.Pos{})
	source.AddModule(mod)
	return source, mod
}
