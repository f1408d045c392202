package progress

import "fmt"

// UnknownTaskError is returned when an operation references a task id
// that does not exist in the tracked plan.
type UnknownTaskError struct {
	TaskID string
}

func (e *UnknownTaskError) Error() string {
	return fmt.Sprintf("progress: unknown task %q", e.TaskID)
}

// IllegalTransitionError is returned when a status update would violate
// the task status state machine.
type IllegalTransitionError struct {
	From Status
	To   Status
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("progress: illegal transition %s -> %s", e.From, e.To)
}
