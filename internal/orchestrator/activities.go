package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.temporal.io/sdk/activity"

	"github.com/antigravity-dev/pec/internal/coordinator"
	"github.com/antigravity-dev/pec/internal/progress"
)

// Dispatcher hands a task instruction to a worker and waits for it to
// finish. internal/dispatcher's Docker-backed implementation and any
// test double both satisfy this.
type Dispatcher interface {
	Dispatch(ctx context.Context, taskID, agent string) (DispatchOutcome, error)
}

// Activities holds the dependencies Temporal activity methods close
// over: the coordinator handle whose progress tracker gets updated,
// and the dispatcher used to actually run the work.
type Activities struct {
	Handle     *coordinator.ProjectHandle
	Dispatcher Dispatcher
	Logger     *slog.Logger
}

// DispatchInstructionActivity hands one work item to the dispatcher
// and marks the task in_progress before doing so.
func (a *Activities) DispatchInstructionActivity(ctx context.Context, item WorkItem) (DispatchOutcome, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("dispatching task", "task_id", item.TaskID, "agent", item.Agent)

	if _, err := a.Handle.UpdateTaskStatus(item.TaskID, progress.StatusInProgress, nil, "", time.Now()); err != nil {
		return DispatchOutcome{}, fmt.Errorf("orchestrator: mark in_progress: %w", err)
	}

	outcome, err := a.Dispatcher.Dispatch(ctx, item.TaskID, item.Agent)
	if err != nil {
		return DispatchOutcome{TaskID: item.TaskID, Succeeded: false, Err: err.Error()}, nil
	}
	return outcome, nil
}

// RecordOutcomeActivity applies a worker's outcome to the project's
// progress tracker, completing the task on success and marking it
// blocked (with the worker's error as the note) on failure.
func (a *Activities) RecordOutcomeActivity(ctx context.Context, outcome DispatchOutcome) error {
	if outcome.Succeeded {
		_, err := a.Handle.CompleteTask(outcome.TaskID, outcome.ResultSummary, time.Now())
		return err
	}
	_, err := a.Handle.UpdateTaskStatus(outcome.TaskID, progress.StatusBlocked, nil, outcome.Err, time.Now())
	return err
}
