package coordinator

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/antigravity-dev/pec/internal/compiler"
	"github.com/antigravity-dev/pec/internal/events"
	"github.com/antigravity-dev/pec/internal/plan"
	"github.com/antigravity-dev/pec/internal/store"
)

// Rehydrate reconstructs a ProjectHandle from persisted state for a
// fresh process — the CLI has no long-lived Coordinator, so every
// invocation that needs to act on an existing project reloads it from
// the store rather than keeping it resident. A project that has not
// had a plan submitted yet rehydrates to a bare handle (no dag,
// schedule, assignment, or tracker) ready for SubmitPlan.
func (c *Coordinator) Rehydrate(projectID string, logger *slog.Logger) (*ProjectHandle, error) {
	if c.db == nil {
		return nil, fmt.Errorf("coordinator: rehydrate requires a store")
	}

	meta, err := c.db.LoadProjectMeta(projectID)
	if err != nil {
		return nil, err
	}

	assembly := compiler.NewProjectAssembly(meta.Name, meta.ProjectType)
	if artifacts, err := c.db.LoadArtifacts(projectID); err == nil {
		assembly.BulkRegister(artifacts)
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("coordinator: rehydrate %s: %w", projectID, err)
	}

	p, tasks, err := c.db.LoadPlan(projectID)
	if errors.Is(err, store.ErrNotFound) {
		handle := &ProjectHandle{ID: meta.ID, Name: meta.Name, ProjectType: meta.ProjectType, CreatedAt: meta.CreatedAt, Assembly: assembly, Bus: events.NewBus()}
		c.mu.Lock()
		c.projects[meta.ID] = handle
		c.mu.Unlock()
		return handle, nil
	}
	if err != nil {
		return nil, fmt.Errorf("coordinator: rehydrate %s: %w", projectID, err)
	}
	sched, err := c.db.LoadSchedule(projectID)
	if err != nil {
		return nil, fmt.Errorf("coordinator: rehydrate %s: %w", projectID, err)
	}
	result, err := c.db.LoadAssignment(projectID)
	if err != nil {
		return nil, fmt.Errorf("coordinator: rehydrate %s: %w", projectID, err)
	}

	milestoneOrder := plan.MilestoneOrder(p.Milestones)
	tasks = plan.InferDependencies(tasks, milestoneOrder, c.inferDependenciesEnabled())
	dag := plan.BuildDAG(tasks)

	handle := &ProjectHandle{
		ID:          meta.ID,
		Name:        meta.Name,
		ProjectType: meta.ProjectType,
		CreatedAt:   meta.CreatedAt,
		dag:         dag,
		schedule:    sched,
		assignment:  result,
		Assembly:    assembly,
		Bus:         events.NewBus(),
	}
	handle.Tracker = progressTrackerFor(dag, sched, p.Milestones, handle, logger)

	records, err := c.db.LoadProgressRecords(projectID)
	if err != nil {
		return nil, fmt.Errorf("coordinator: rehydrate %s: %w", projectID, err)
	}
	handle.Tracker.RestoreRecords(records)

	c.mu.Lock()
	c.projects[meta.ID] = handle
	c.mu.Unlock()

	return handle, nil
}
