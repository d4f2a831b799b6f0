package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cascade-hdl/cascade/internal/cio"
	"github.com/cascade-hdl/cascade/pkg/bitvector"
)

// stubEngine is a hand-wound Engine: pendingUpdates counts down to zero
// across successive Update calls, letting tests drive Step's drain loop
// without a real compiled module.
type stubEngine struct {
	evaluated      int
	pendingUpdates int
	updatesSeen    int
	doneStepCalls  int
	overridesStep  bool
	openLoopCalls  int
	finalized      bool
	doneSimulation bool
}

func (e *stubEngine) GetState() []byte      { return nil }
func (e *stubEngine) SetState([]byte) error { return nil }
func (e *stubEngine) GetInput() []byte      { return nil }
func (e *stubEngine) SetInput([]byte) error { return nil }
func (e *stubEngine) Finalize() error       { e.finalized = true; return nil }

func (e *stubEngine) OverridesDoneStep() bool       { return e.overridesStep }
func (e *stubEngine) OverridesDoneSimulation() bool { return true }

func (e *stubEngine) Read(vid uint32, bits bitvector.Value) error { return nil }
func (e *stubEngine) Evaluate() error                             { e.evaluated++; return nil }

func (e *stubEngine) ThereAreUpdates() bool { return e.pendingUpdates > 0 }
func (e *stubEngine) Update() error {
	e.pendingUpdates--
	e.updatesSeen++
	return nil
}
func (e *stubEngine) ThereWereTasks() bool { return false }
func (e *stubEngine) ConditionalUpdate() (bool, error) {
	if e.pendingUpdates <= 0 {
		return false, nil
	}
	return true, e.Update()
}
func (e *stubEngine) OpenLoop(clkVid uint32, val bitvector.Value, iterations uint32) (uint32, error) {
	e.openLoopCalls++
	return iterations, nil
}
func (e *stubEngine) DoneStep() error       { e.doneStepCalls++; return nil }
func (e *stubEngine) DoneSimulation() error { e.doneSimulation = true; return nil }

var _ Engine = (*stubEngine)(nil)

// TestSchedulerQuiescence is spec.md §8's scheduler-quiescence property:
// an engine with no pending updates and no done_step override makes one
// Step a no-op beyond the mandatory Evaluate.
func TestSchedulerQuiescence(t *testing.T) {
	sched := NewScheduler(cio.StdReporter{}, 1)
	defer sched.Pool().Stop()

	e := &stubEngine{}
	sched.Add("m", e)

	require.NoError(t, sched.Step())
	assert.Equal(t, 1, e.evaluated)
	assert.Equal(t, 0, e.updatesSeen)
	assert.Equal(t, 0, e.doneStepCalls)
}

// TestSchedulerDrainsUpdatesToQuiescence checks Step keeps calling Update
// until ThereAreUpdates reports false, per §4.F point 4's drain loop.
func TestSchedulerDrainsUpdatesToQuiescence(t *testing.T) {
	sched := NewScheduler(cio.StdReporter{}, 1)
	defer sched.Pool().Stop()

	e := &stubEngine{pendingUpdates: 3, overridesStep: true}
	sched.Add("m", e)

	require.NoError(t, sched.Step())
	assert.Equal(t, 3, e.updatesSeen)
	assert.Equal(t, 0, e.pendingUpdates)
	assert.Equal(t, 1, e.doneStepCalls)
}

// TestSchedulerInactiveEngineSkipped verifies SetActive(false) removes an
// engine from Step's evaluate/update/done_step passes.
func TestSchedulerInactiveEngineSkipped(t *testing.T) {
	sched := NewScheduler(cio.StdReporter{}, 1)
	defer sched.Pool().Stop()

	e := &stubEngine{pendingUpdates: 1, overridesStep: true}
	sched.Add("m", e)
	sched.SetActive("m", false)

	require.NoError(t, sched.Step())
	assert.Equal(t, 0, e.evaluated)
	assert.Equal(t, 0, e.updatesSeen)
	assert.Equal(t, 0, e.doneStepCalls)
}

// TestSchedulerOpenLoopRunsOnlyClockEngine checks SetOpenLoop scopes the
// post-quiescence OpenLoop call to the designated clock engine.
func TestSchedulerOpenLoopRunsOnlyClockEngine(t *testing.T) {
	sched := NewScheduler(cio.StdReporter{}, 1)
	defer sched.Pool().Stop()

	clk := &stubEngine{}
	other := &stubEngine{}
	sched.Add("clk", clk)
	sched.Add("other", other)
	sched.SetOpenLoop("clk", 0, 4)

	require.NoError(t, sched.Step())
	assert.Equal(t, 1, clk.openLoopCalls)
	assert.Equal(t, 0, other.openLoopCalls)
}

// TestSchedulerFinalizeAndDoneSimulation checks both lifecycle hooks reach
// every registered engine and that DoneSimulation stops the pool.
func TestSchedulerFinalizeAndDoneSimulation(t *testing.T) {
	sched := NewScheduler(cio.StdReporter{}, 1)

	e1 := &stubEngine{}
	e2 := &stubEngine{}
	sched.Add("a", e1)
	sched.Add("b", e2)

	require.NoError(t, sched.Finalize())
	assert.True(t, e1.finalized)
	assert.True(t, e2.finalized)

	require.NoError(t, sched.DoneSimulation())
	assert.True(t, e1.doneSimulation)
	assert.True(t, e2.doneSimulation)
	assert.True(t, sched.Pool().stopped)
}

// TestSchedulerStopRequestedHaltsStep ensures RequestStop is observed
// between engines within a single Step.
func TestSchedulerStopRequestedHaltsStep(t *testing.T) {
	sched := NewScheduler(cio.StdReporter{}, 1)
	defer sched.Pool().Stop()

	e := &stubEngine{}
	sched.Add("m", e)
	sched.RequestStop()

	require.NoError(t, sched.Step())
	assert.Equal(t, 0, e.evaluated)
	assert.True(t, sched.StopRequested())
}
