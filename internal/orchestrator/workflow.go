package orchestrator

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// DispatcherWorkflow drives one project's phases to completion in
// order: every instruction in a phase is dispatched concurrently, and
// the workflow only advances to the next phase once every instruction
// in the current one has reported an outcome. This mirrors the
// scheduler's own phase structure (§2: a phase is a set of tasks with
// no ordering constraint between them).
func DispatcherWorkflow(ctx workflow.Context, req DispatchRequest) (DispatchRunResult, error) {
	logger := workflow.GetLogger(ctx)
	var a *Activities

	dispatchOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 15 * time.Minute,
		HeartbeatTimeout:    30 * time.Second,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 2},
	}
	recordOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 3},
	}

	result := DispatchRunResult{ProjectID: req.ProjectID}

	for _, phase := range req.Phases {
		logger.Info("dispatching phase", "phase_id", phase.PhaseID, "tasks", len(phase.Instructions))

		futures := make([]workflow.Future, 0, len(phase.Instructions))
		dispatchCtx := workflow.WithActivityOptions(ctx, dispatchOpts)
		for _, item := range phase.Instructions {
			futures = append(futures, workflow.ExecuteActivity(dispatchCtx, a.DispatchInstructionActivity, item))
		}

		for _, f := range futures {
			var outcome DispatchOutcome
			if err := f.Get(ctx, &outcome); err != nil {
				result.TasksFailed++
				continue
			}

			recordCtx := workflow.WithActivityOptions(ctx, recordOpts)
			if err := workflow.ExecuteActivity(recordCtx, a.RecordOutcomeActivity, outcome).Get(ctx, nil); err != nil {
				result.TasksFailed++
				continue
			}
			if outcome.Succeeded {
				result.TasksCompleted++
			} else {
				result.TasksFailed++
			}
		}
		result.PhasesRun++
	}

	result.FinishedAt = workflow.Now(ctx)
	return result, nil
}
