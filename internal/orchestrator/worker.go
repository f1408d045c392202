package orchestrator

import (
	"fmt"
	"log/slog"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/antigravity-dev/pec/internal/assignment"
	"github.com/antigravity-dev/pec/internal/coordinator"
)

// StartWorker connects to Temporal at hostPort and runs the dispatcher
// workflow/activities on taskQueue until the process is interrupted.
func StartWorker(hostPort, namespace, taskQueue string, handle *coordinator.ProjectHandle, dispatcher Dispatcher, logger *slog.Logger) error {
	c, err := client.Dial(client.Options{HostPort: hostPort, Namespace: namespace})
	if err != nil {
		return fmt.Errorf("orchestrator: dial temporal: %w", err)
	}
	defer c.Close()

	w := worker.New(c, taskQueue, worker.Options{})

	acts := &Activities{Handle: handle, Dispatcher: dispatcher, Logger: logger}

	w.RegisterWorkflow(DispatcherWorkflow)
	w.RegisterActivity(acts.DispatchInstructionActivity)
	w.RegisterActivity(acts.RecordOutcomeActivity)

	logger.Info("orchestrator worker started", "task_queue", taskQueue)
	return w.Run(worker.InterruptCh())
}

// PhasesFromAssignment turns an assignment.Result's phase records into
// the work-item batches DispatcherWorkflow consumes.
func PhasesFromAssignment(projectID string, phases []assignment.PhaseRecord) DispatchRequest {
	req := DispatchRequest{ProjectID: projectID}
	for _, p := range phases {
		items := make([]WorkItem, 0, len(p.Tasks))
		for _, t := range p.Tasks {
			items = append(items, WorkItem{TaskID: t.TaskID, Agent: t.OwningAgent})
		}
		req.Phases = append(req.Phases, PhaseInstructions{PhaseID: p.PhaseID, Instructions: items})
	}
	return req
}
