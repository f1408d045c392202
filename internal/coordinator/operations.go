package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/antigravity-dev/pec/internal/compiler"
	"github.com/antigravity-dev/pec/internal/events"
	"github.com/antigravity-dev/pec/internal/plan"
	"github.com/antigravity-dev/pec/internal/progress"
	"github.com/antigravity-dev/pec/internal/scheduler"
)

// progressTrackerFor builds a Tracker for a freshly scheduled project
// and wires its completion callback to publish on the handle's bus.
// handle.dag/schedule/assignment must already be set.
func progressTrackerFor(dag *plan.DAG, sched *scheduler.Schedule, milestones []plan.Milestone, handle *ProjectHandle, logger *slog.Logger) *progress.Tracker {
	tracker := progress.NewTracker(dag, sched, handle.assignment, milestones, logger)
	tracker.OnCompletion(func(evt progress.CompletionEvent) {
		handle.Bus.Publish(events.Event{
			Kind:      events.KindTaskCompleted,
			ProjectID: handle.ID,
			TaskID:    evt.TaskID,
			Payload: map[string]any{
				"phase_completed":  evt.PhaseCompleted,
				"unblocked_tasks":  evt.UnblockedTasks,
			},
		})
		if evt.PhaseCompleted {
			handle.Bus.Publish(events.Event{Kind: events.KindPhaseCompleted, ProjectID: handle.ID, TaskID: evt.TaskID})
		}
		if evt.MilestoneStatus != nil && *evt.MilestoneStatus == progress.StatusCompleted {
			handle.Bus.Publish(events.Event{Kind: events.KindMilestoneCompleted, ProjectID: handle.ID, TaskID: evt.TaskID})
		}
		if evt.CheckpointTriggered != nil {
			handle.Bus.Publish(events.Event{Kind: events.KindCheckpointTriggered, ProjectID: handle.ID, Payload: map[string]any{"checkpoint_id": *evt.CheckpointTriggered}})
		}
	})
	return tracker
}

// GetSchedule returns the schedule computed by the last SubmitPlan call.
func (h *ProjectHandle) GetSchedule() (*scheduler.Schedule, error) {
	sched := h.Schedule()
	if sched == nil {
		return nil, fmt.Errorf("coordinator: project %s has no schedule yet", h.ID)
	}
	return sched, nil
}

// UpdateTaskStatus forwards to the project's tracker, publishing a
// task_status_changed event on success.
func (h *ProjectHandle) UpdateTaskStatus(taskID string, status progress.Status, completionPct *float64, notes string, now time.Time) (progress.ProgressRecord, error) {
	rec, err := h.Tracker.UpdateTaskStatus(taskID, status, completionPct, notes, now)
	if err != nil {
		return rec, err
	}
	h.Bus.Publish(events.Event{Kind: events.KindTaskStatusChanged, ProjectID: h.ID, TaskID: taskID})
	return rec, nil
}

// CompleteTask forwards to the project's tracker; the tracker's own
// OnCompletion callback publishes the resulting events.
func (h *ProjectHandle) CompleteTask(taskID, resultSummary string, now time.Time) (progress.CompletionEvent, error) {
	return h.Tracker.CompleteTask(taskID, resultSummary, now)
}

// ReopenTask forwards to the project's tracker.
func (h *ProjectHandle) ReopenTask(taskID, reason string, now time.Time) (progress.ProgressRecord, error) {
	rec, err := h.Tracker.ReopenTask(taskID, reason, now)
	if err != nil {
		return rec, err
	}
	h.Bus.Publish(events.Event{Kind: events.KindTaskStatusChanged, ProjectID: h.ID, TaskID: taskID})
	return rec, nil
}

// GetProjectProgress returns the rolled-up project progress snapshot.
func (h *ProjectHandle) GetProjectProgress() progress.ProjectProgress {
	return h.Tracker.GetProjectProgress()
}

// GetBottlenecks returns the tracker's current bottleneck analysis.
func (h *ProjectHandle) GetBottlenecks(now time.Time) []progress.Bottleneck {
	return h.Tracker.GetBottlenecks(now)
}

// GetAtRiskTasks returns the tracker's current at-risk classification.
func (h *ProjectHandle) GetAtRiskTasks(now, estimatedStart time.Time, projectBehind bool) []progress.AtRiskTask {
	return h.Tracker.DetectAtRiskTasks(now, estimatedStart, projectBehind)
}

// VerifyCheckpoint forwards to the project's tracker.
func (h *ProjectHandle) VerifyCheckpoint(checkpointID string) (progress.VerificationResult, error) {
	return h.Tracker.VerifyCheckpoint(checkpointID)
}

// Subscribe returns a stream of events for this project.
func (h *ProjectHandle) Subscribe(buffer int) (<-chan events.Event, func()) {
	return h.Bus.Subscribe(buffer)
}

// RegisterArtifact forwards to the project's artifact assembly.
func (h *ProjectHandle) RegisterArtifact(art compiler.Artifact) (compiler.Artifact, *compiler.Resolution) {
	return h.Assembly.RegisterArtifact(art)
}

// BulkRegister forwards to the project's artifact assembly.
func (h *ProjectHandle) BulkRegister(artifacts []compiler.Artifact) ([]compiler.Artifact, []compiler.Resolution) {
	return h.Assembly.BulkRegister(artifacts)
}

// ResolveConflicts forwards to the project's artifact assembly.
func (h *ProjectHandle) ResolveConflicts() []compiler.Resolution {
	return h.Assembly.ResolveConflicts()
}

// Materialize forwards to the project's artifact assembly.
func (h *ProjectHandle) Materialize(ctx context.Context, outputDir string, now time.Time) (compiler.CompilationResult, error) {
	return h.Assembly.Materialize(ctx, outputDir, now)
}
