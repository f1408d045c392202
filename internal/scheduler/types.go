// Package scheduler computes Critical Path Method timing over a task
// DAG: earliest/latest start and finish times, the critical path,
// parallel execution phases, and task priorities.
package scheduler

import "github.com/antigravity-dev/pec/internal/plan"

// Priority is the CPM-derived urgency of a task.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// TaskNode is a Task annotated with CPM timing, owned by a Schedule.
type TaskNode struct {
	TaskID        string   `json:"task_id"`
	EarliestStart int      `json:"earliest_start"`
	EarliestFinish int     `json:"earliest_finish"`
	LatestStart   int      `json:"latest_start"`
	LatestFinish  int      `json:"latest_finish"`
	IsCritical    bool     `json:"is_critical"`
	Priority      Priority `json:"priority"`
}

// Slack is latest_start - earliest_start.
func (n TaskNode) Slack() int {
	return n.LatestStart - n.EarliestStart
}

// Checkpoint is a verification point inserted after every Nth phase.
type Checkpoint struct {
	CheckpointID     string `json:"checkpoint_id"`
	AfterPhase       int    `json:"after_phase"`
	MilestoneReached int    `json:"milestone_reached"`
}

// Timeline summarizes phase-level and total project timing.
type Timeline struct {
	PhaseDays        map[int]PhaseDays `json:"phase_days"`
	TotalDurationDays int              `json:"total_duration_days"`
}

// PhaseDays is the start/end day offset for one phase.
type PhaseDays struct {
	StartDay int `json:"start_day"`
	EndDay   int `json:"end_day"`
}

// Schedule is the full CPM output over a task DAG.
type Schedule struct {
	PlanID       string              `json:"plan_id"`
	Nodes        map[string]TaskNode `json:"nodes"`
	Edges        [][2]string         `json:"edges"`
	CriticalPath []string            `json:"critical_path"`
	Phases       [][]string          `json:"phases"`
	Checkpoints  []Checkpoint        `json:"checkpoints"`
	Timeline     Timeline            `json:"timeline"`
}

// taskDuration resolves a TaskId's duration in days via the DAG.
func taskDuration(g *plan.DAG, id string) int {
	t, ok := g.Task(id)
	if !ok {
		return 1
	}
	return t.Effort.Days()
}
