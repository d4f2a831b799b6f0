package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cascade-hdl/cascade/internal/ir"
)

// spyReporter records every Display/Finish call instead of writing to
// stdio, the way a test harness observes a running engine's output.
type spyReporter struct {
	displayed []string
	finished  bool
	code      int
}

func (s *spyReporter) Error(format string, args ...any)   {}
func (s *spyReporter) Warning(format string, args ...any) {}
func (s *spyReporter) Info(format string, args ...any)    {}
func (s *spyReporter) Display(text string)                { s.displayed = append(s.displayed, text) }
func (s *spyReporter) Write(text string)                  { s.displayed = append(s.displayed, text) }
func (s *spyReporter) Finish(code int)                    { s.finished = true; s.code = code }

func buildHelloModule() (*ir.SourceText, *ir.ModuleDeclaration) {
	mod := ir.NewModuleDeclaration("hello_1", ir.Pos{})
	body := ir.NewSeqBlock(ir.Pos{})
	body.Append(ir.NewSystemTaskEnableStatement(ir.TaskDisplay, "Hello World", ir.Pos{}))
	body.Append(ir.NewSystemTaskEnableStatement(ir.TaskFinish, "", ir.Pos{}))
	mod.Append(ir.NewInitialConstruct(body, ir.Pos{}))

	source := ir.NewSourceText(ir.Pos{})
	source.AddModule(mod)
	return source, mod
}

// TestCompileNoAlwaysUsesInterpEngine exercises spec.md §8's hello_1
// scenario end to end: an initial-only module compiles to an InterpEngine
// (no machinify/mangle) and a single Evaluate prints and finishes.
func TestCompileNoAlwaysUsesInterpEngine(t *testing.T) {
	source, mod := buildHelloModule()
	reporter := &spyReporter{}

	eng, err := Compile(source, mod, reporter, Options{})
	require.NoError(t, err)
	require.IsType(t, &InterpEngine{}, eng)

	require.NoError(t, eng.Evaluate())
	assert.Equal(t, []string{"Hello World"}, reporter.displayed)
	assert.True(t, reporter.finished)

	// A second Evaluate must not re-run the initial block (it only fires
	// once, per InterpEngine's "first call" contract).
	require.NoError(t, eng.Evaluate())
	assert.Equal(t, []string{"Hello World"}, reporter.displayed)
}

// TestCompileDeterministicLayout is spec.md §8's determinism property cut
// down to the in-process backend: two independent compilations of the
// same module produce identical initial variable-table state.
func TestCompileDeterministicLayout(t *testing.T) {
	source1, mod1 := buildHelloModule()
	source2, mod2 := buildHelloModule()

	eng1, err := Compile(source1, mod1, &spyReporter{}, Options{})
	require.NoError(t, err)
	eng2, err := Compile(source2, mod2, &spyReporter{}, Options{})
	require.NoError(t, err)

	assert.Equal(t, eng1.GetState(), eng2.GetState())
}
