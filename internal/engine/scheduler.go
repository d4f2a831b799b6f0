package engine

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/cascade-hdl/cascade/internal/cio"
	"github.com/cascade-hdl/cascade/pkg/bitvector"
)

// engineSlot pairs an Engine with the bookkeeping the Scheduler needs to
// keep cross-engine iteration order deterministic and to know which
// lifecycle hooks it actually has to call.
type engineSlot struct {
	name   string
	engine Engine
	active bool
}

// Scheduler owns a set of engines and drives them with a single-threaded
// cooperative loop; the only concurrency anywhere near simulation is the
// separate ThreadPool for host jobs (spec.md §5). engines is kept sorted
// by name (Add inserts in place; engines sharing a name keep Add order)
// and iterated in that slot order, never map order, so two runs of the
// same module set evaluate in the same sequence.
type Scheduler struct {
	mu             sync.Mutex
	engines        []*engineSlot
	pool           *ThreadPool
	reporter       cio.Reporter
	stopFlag       atomic.Bool
	clockVid       uint32
	clockEngine    string
	openLoopTarget uint32
}

// NewScheduler builds a Scheduler with the given Reporter and a ThreadPool
// of poolSize workers for host jobs.
func NewScheduler(reporter cio.Reporter, poolSize int) *Scheduler {
	return &Scheduler{
		reporter: reporter,
		pool:     NewThreadPool(poolSize),
	}
}

// Add registers an engine under name, active by default, at its sorted
// slot position.
func (s *Scheduler) Add(name string, e Engine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := sort.Search(len(s.engines), func(i int) bool { return s.engines[i].name > name })
	s.engines = append(s.engines, nil)
	copy(s.engines[i+1:], s.engines[i:])
	s.engines[i] = &engineSlot{name: name, engine: e, active: true}
}

// SetActive toggles whether name's engine is evaluated on future Step calls.
func (s *Scheduler) SetActive(name string, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, slot := range s.engines {
		if slot.name == name {
			slot.active = active
			return
		}
	}
}

// SetOpenLoop designates the clock engine and vid OpenLoop is invoked
// against on quiescence, and the per-call iteration budget.
func (s *Scheduler) SetOpenLoop(engineName string, clkVid uint32, target uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clockEngine = engineName
	s.clockVid = clkVid
	s.openLoopTarget = target
}

// Pool returns the scheduler's ThreadPool for host-job submission.
func (s *Scheduler) Pool() *ThreadPool { return s.pool }

// RequestStop is non-blocking and idempotent: it sets a flag Step polls
// between engines.
func (s *Scheduler) RequestStop() { s.stopFlag.Store(true) }

// StopRequested reports whether RequestStop has been called.
func (s *Scheduler) StopRequested() bool { return s.stopFlag.Load() }

// WaitForStop blocks until StopRequested is true; callers that already
// poll StopRequested directly (the Step loop itself) do not need this —
// it exists for an external caller (the remote proxy's control goroutine)
// that only cares about the terminal state.
func (s *Scheduler) WaitForStop() {
	for !s.StopRequested() {
	}
}

// Step runs one scheduler iteration per §4.F point 4: evaluate every
// active engine in slot order, drain updates to quiescence, call DoneStep
// on engines overriding it, then — if nothing asked to stop and a clock
// engine is configured — run OpenLoop on it for the configured budget.
func (s *Scheduler) Step() error {
	s.mu.Lock()
	slots := append([]*engineSlot(nil), s.engines...)
	s.mu.Unlock()

	for _, slot := range slots {
		if s.StopRequested() {
			return nil
		}
		if !slot.active {
			continue
		}
		if err := slot.engine.Evaluate(); err != nil {
			return err
		}
		if slot.engine.ThereWereTasks() {
			s.reporter.Info("engine %s emitted tasks", slot.name)
		}
	}

	for _, slot := range slots {
		if s.StopRequested() {
			return nil
		}
		for slot.active && slot.engine.ThereAreUpdates() {
			if err := slot.engine.Update(); err != nil {
				return err
			}
		}
	}

	for _, slot := range slots {
		if slot.active && slot.engine.OverridesDoneStep() {
			if err := slot.engine.DoneStep(); err != nil {
				return err
			}
		}
	}

	if s.StopRequested() || s.clockEngine == "" {
		return nil
	}
	for _, slot := range slots {
		if slot.name != s.clockEngine || !slot.active {
			continue
		}
		if _, err := slot.engine.OpenLoop(s.clockVid, bitvector.FromUint64(1, 1), s.openLoopTarget); err != nil {
			return err
		}
	}
	return nil
}

// Finalize calls Finalize on every registered engine, in slot order.
func (s *Scheduler) Finalize() error {
	s.mu.Lock()
	slots := append([]*engineSlot(nil), s.engines...)
	s.mu.Unlock()
	for _, slot := range slots {
		if err := slot.engine.Finalize(); err != nil {
			return err
		}
	}
	return nil
}

// DoneSimulation calls DoneSimulation on every engine overriding it, then
// stops the pool.
func (s *Scheduler) DoneSimulation() error {
	s.mu.Lock()
	slots := append([]*engineSlot(nil), s.engines...)
	s.mu.Unlock()
	for _, slot := range slots {
		if slot.engine.OverridesDoneSimulation() {
			if err := slot.engine.DoneSimulation(); err != nil {
				return err
			}
		}
	}
	s.pool.Stop()
	return nil
}
