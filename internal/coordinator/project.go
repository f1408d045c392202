// Package coordinator implements the external interface (§6) that
// wires the plan, schedule, assignment, progress, and compile engines
// together behind a single project handle.
package coordinator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/antigravity-dev/pec/internal/assignment"
	"github.com/antigravity-dev/pec/internal/compiler"
	"github.com/antigravity-dev/pec/internal/config"
	"github.com/antigravity-dev/pec/internal/events"
	"github.com/antigravity-dev/pec/internal/plan"
	"github.com/antigravity-dev/pec/internal/progress"
	"github.com/antigravity-dev/pec/internal/scheduler"
	"github.com/antigravity-dev/pec/internal/store"
	"github.com/google/uuid"
)

// ProjectHandle bundles one project's plan/schedule/assignment state
// (one protected region, guarded by mu; task progress records sit
// behind the Tracker's own lock) with
// its artifact collection (a second, independent protected region
// inside ProjectAssembly), matching spec §5's concurrency model.
type ProjectHandle struct {
	ID          string
	Name        string
	ProjectType compiler.ProjectType
	CreatedAt   time.Time

	mu         sync.RWMutex
	dag        *plan.DAG
	schedule   *scheduler.Schedule
	assignment *assignment.Result

	Tracker  *progress.Tracker
	Assembly *compiler.ProjectAssembly
	Bus      *events.Bus
}

func (h *ProjectHandle) Schedule() *scheduler.Schedule {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.schedule
}

func (h *ProjectHandle) Assignment() *assignment.Result {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.assignment
}

func (h *ProjectHandle) DAG() *plan.DAG {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.dag
}

// Coordinator owns every project handle and the shared config/store
// used to persist and rehydrate them.
type Coordinator struct {
	mu       sync.RWMutex
	projects map[string]*ProjectHandle
	cfg      *config.Config
	db       *store.Store
}

// New constructs a Coordinator. db may be nil for a purely in-memory
// coordinator (useful in tests or one-shot CLI invocations).
func New(cfg *config.Config, db *store.Store) *Coordinator {
	return &Coordinator{
		projects: make(map[string]*ProjectHandle),
		cfg:      cfg,
		db:       db,
	}
}

// SetConfig replaces the coordinator's config snapshot. Wire it to a
// config.RWMutexManager's OnReload so schedule policy (checkpoint
// cadence, workload imbalance threshold, dependency inference) picks
// up a hot-reloaded config file without restarting the daemon.
func (c *Coordinator) SetConfig(cfg *config.Config) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg = cfg
}

// CreateProject registers a new project and returns its handle, suffixing
// name on collision via compiler.CreateProject's version-suffix rule.
func (c *Coordinator) CreateProject(ctx context.Context, name string, pt compiler.ProjectType, now time.Time) (*ProjectHandle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	existingNames := make(map[string]bool, len(c.projects))
	for _, h := range c.projects {
		existingNames[h.Name] = true
	}
	assembly := compiler.CreateProject(name, pt, existingNames)

	id := uuid.NewString()
	handle := &ProjectHandle{
		ID:          id,
		Name:        assembly.Name,
		ProjectType: pt,
		CreatedAt:   now,
		Assembly:    assembly,
		Bus:         events.NewBus(),
	}
	c.projects[id] = handle

	if c.db != nil {
		if err := c.db.CreateProject(id, handle.Name, pt, now); err != nil {
			delete(c.projects, id)
			return nil, err
		}
	}
	return handle, nil
}

// Project returns a previously created project handle.
func (c *Coordinator) Project(id string) (*ProjectHandle, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	h, ok := c.projects[id]
	if !ok {
		return nil, fmt.Errorf("coordinator: unknown project %q", id)
	}
	return h, nil
}

// scheduleConfig derives an assignment.Config from the coordinator's
// loaded configuration, falling back to spec defaults when unset.
func (c *Coordinator) scheduleConfig() assignment.Config {
	if c.cfg == nil {
		return assignment.DefaultConfig()
	}
	return assignment.Config{
		CheckpointEveryNPhases:     c.cfg.Schedule.CheckpointEveryNPhases,
		WorkloadImbalanceThreshold: c.cfg.Schedule.WorkloadImbalanceThreshold,
		MaxProjectDurationDays:     c.cfg.Schedule.MaxProjectDurationDays,
	}
}

func (c *Coordinator) inferDependenciesEnabled() bool {
	if c.cfg == nil {
		return true
	}
	return c.cfg.Schedule.InferDependencies
}
