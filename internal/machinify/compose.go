package machinify

// Composite is the result of ComposeMachines: the per-module aggregate
// quiescence/task signals derived from every always-block's machine.
type Composite struct {
	Machines []*StateMachine
	// AllFinal names the AND over i of "Machines[i] is in its FinalState".
	// ComposeMachines leaves it false and nothing computes it; tableEngine
	// tracks each machine's position in its own pc slice instead.
	AllFinal bool
	// TheseWereTasks names the OR over i of "a task fired during the last
	// step". ComposeMachines leaves it false; tableEngine reports tasks
	// through its own tasksThisStep flag instead.
	TheseWereTasks bool
}

// ComposeMachines groups every always-block machine belonging to one
// module into a Composite. It only records the machine list; it does not
// compute __all_final or __there_were_tasks.
func ComposeMachines(machines []*StateMachine) *Composite {
	return &Composite{Machines: machines}
}
