package progress

// allowedTransitions encodes the task status state machine from spec
// 4.4.1. COMPLETED/FAILED/CANCELLED are terminal; the only way out of
// COMPLETED is the distinct Reopen operation, never a plain transition.
var allowedTransitions = map[Status]map[Status]bool{
	StatusPending: {
		StatusInProgress: true,
		StatusBlocked:    true,
		StatusCancelled:  true,
	},
	StatusInProgress: {
		StatusCompleted: true,
		StatusBlocked:   true,
		StatusFailed:    true,
		StatusCancelled: true,
	},
	StatusBlocked: {
		StatusInProgress: true,
		StatusCancelled:  true,
		StatusFailed:     true,
	},
}

// canTransition reports whether a plain UpdateTaskStatus call from one
// status to another is legal. Reopen is handled separately since it is
// the sole escape hatch from a terminal state.
func canTransition(from, to Status) bool {
	if from == to {
		return !from.IsTerminal()
	}
	return allowedTransitions[from][to]
}
