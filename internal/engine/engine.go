// Package engine defines the runtime Engine ABI every compiled module
// honors, and the cooperative single-threaded Scheduler that drives a set
// of engines plus the bounded worker pool that runs host jobs alongside it.
package engine

import "github.com/cascade-hdl/cascade/pkg/bitvector"

// Engine is the contract every compiled module (interp's tableEngine and
// InterpEngine, and any future backend) honors so the Scheduler can drive
// it without knowing which backend produced it.
type Engine interface {
	GetState() []byte
	SetState([]byte) error
	GetInput() []byte
	SetInput([]byte) error

	Finalize() error

	OverridesDoneStep() bool
	OverridesDoneSimulation() bool

	Read(vid uint32, bits bitvector.Value) error
	Evaluate() error
	ThereAreUpdates() bool
	Update() error
	ThereWereTasks() bool
	ConditionalUpdate() (bool, error)
	OpenLoop(clkVid uint32, val bitvector.Value, iterations uint32) (uint32, error)

	DoneStep() error
	DoneSimulation() error
}
