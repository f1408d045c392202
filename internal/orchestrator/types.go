// Package orchestrator is a reference Temporal workflow that drives the
// external dispatcher role described in the coordinator's assignment
// output: for every ready instruction it hands the task to a worker
// (via Dispatcher), waits for the worker to report a result, and
// records that result back onto the owning project's progress tracker.
//
// It is reference glue, not core engine logic — spec §1 and §5 both
// describe task execution and the worker pool as external
// collaborators, so nothing here computes schedules or assignments;
// it only ferries already-computed instructions to a worker and the
// worker's outcome back to the coordinator.
package orchestrator

import "time"

// DispatchRequest is the workflow input: one project's ready phases,
// already computed by the coordinator's SubmitPlan pipeline.
type DispatchRequest struct {
	ProjectID string
	Phases    []PhaseInstructions
}

// PhaseInstructions is every instruction belonging to one assignment
// phase, executed as a batch of concurrent activities before the
// workflow advances to the next phase.
type PhaseInstructions struct {
	PhaseID      string
	Instructions []WorkItem
}

// WorkItem is one task instruction bound to the agent that owns it.
type WorkItem struct {
	TaskID string
	Agent  string
}

// DispatchOutcome is what a worker reports back for one task.
type DispatchOutcome struct {
	TaskID        string
	Succeeded     bool
	ResultSummary string
	Err           string
}

// DispatchRunResult summarizes a completed DispatcherWorkflow run.
type DispatchRunResult struct {
	ProjectID      string
	PhasesRun      int
	TasksCompleted int
	TasksFailed    int
	FinishedAt     time.Time
}
