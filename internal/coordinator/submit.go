package coordinator

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/antigravity-dev/pec/internal/assignment"
	"github.com/antigravity-dev/pec/internal/plan"
	"github.com/antigravity-dev/pec/internal/scheduler"
	"golang.org/x/sync/errgroup"
)

// SubmitResult is the outcome of running a plan through the full
// ingest -> schedule -> assign pipeline for one project.
type SubmitResult struct {
	ProjectID string
	Warnings  []string
	Schedule  *scheduler.Schedule
	Result    *assignment.Result
}

// ValidatePlan runs ingestion without committing state, returning the
// warnings and any structural error a caller can surface before
// submitting for real.
func (c *Coordinator) ValidatePlan(p *plan.Plan) ([]string, error) {
	_, warnings, err := plan.IngestPlan(p)
	return warnings, err
}

// SubmitPlan ingests p, infers dependencies, builds the critical-path
// schedule, and runs the full assignment pipeline for handle, then
// wires the progress tracker's completion callback to publish on the
// project's event bus.
func (c *Coordinator) SubmitPlan(handle *ProjectHandle, p *plan.Plan, now time.Time, logger *slog.Logger) (*SubmitResult, error) {
	tasks, warnings, err := plan.IngestPlan(p)
	if err != nil {
		return nil, fmt.Errorf("coordinator: ingest plan: %w", err)
	}

	milestoneOrder := plan.MilestoneOrder(p.Milestones)
	tasks = plan.InferDependencies(tasks, milestoneOrder, c.inferDependenciesEnabled())

	dag := plan.BuildDAG(tasks)
	if err := dag.AssertAcyclic(); err != nil {
		return nil, fmt.Errorf("coordinator: %w", err)
	}

	sched, err := scheduler.BuildSchedule(handle.ID, dag)
	if err != nil {
		return nil, fmt.Errorf("coordinator: build schedule: %w", err)
	}

	skillReqs := make(map[string]plan.SkillRequirement, len(tasks))
	for _, t := range tasks {
		skillReqs[t.ID] = plan.ComputeSkillRequirements(t)
	}

	result, err := assignment.Build(dag, sched, skillReqs, milestoneOrder, c.scheduleConfig())
	if err != nil {
		return nil, fmt.Errorf("coordinator: build assignment: %w", err)
	}

	handle.mu.Lock()
	handle.dag = dag
	handle.schedule = sched
	handle.assignment = result
	handle.Tracker = progressTrackerFor(dag, sched, p.Milestones, handle, logger)
	handle.mu.Unlock()

	if c.db != nil {
		if err := c.db.SavePlan(handle.ID, p, tasks, now); err != nil {
			return nil, err
		}
		if err := c.db.SaveSchedule(handle.ID, sched, now); err != nil {
			return nil, err
		}
		if err := c.db.SaveAssignment(handle.ID, result, now); err != nil {
			return nil, err
		}
	}

	return &SubmitResult{ProjectID: handle.ID, Warnings: warnings, Schedule: sched, Result: result}, nil
}

// SubmitPlans runs SubmitPlan concurrently for every (handle, plan)
// pair. It waits for every submission to finish and returns the first
// error any of them produced; a failure does not cancel the others.
func (c *Coordinator) SubmitPlans(submissions map[*ProjectHandle]*plan.Plan, now time.Time, logger *slog.Logger) (map[string]*SubmitResult, error) {
	results := make(map[string]*SubmitResult, len(submissions))
	var mu sync.Mutex
	var g errgroup.Group

	for handle, p := range submissions {
		handle, p := handle, p
		g.Go(func() error {
			res, err := c.SubmitPlan(handle, p, now, logger)
			if err != nil {
				return fmt.Errorf("project %s: %w", handle.Name, err)
			}
			mu.Lock()
			results[res.ProjectID] = res
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
