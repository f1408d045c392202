// Package plan parses and normalizes an input project plan into an
// acyclic task graph: atomic tasks, inferred dependencies, and
// per-task skill requirements.
package plan

import "time"

// Effort is the coarse sizing used throughout the plan and schedule.
type Effort string

const (
	EffortLow    Effort = "low"
	EffortMedium Effort = "medium"
	EffortHigh   Effort = "high"
)

// Days maps an Effort to its abstract duration in days, matching
// the original coordinator's LOW=1/MEDIUM=2/HIGH=3 scale.
func (e Effort) Days() int {
	switch e {
	case EffortHigh:
		return 3
	case EffortMedium:
		return 2
	case EffortLow:
		return 1
	default:
		return 1
	}
}

// Milestone is a named grouping of tasks within a project plan.
type Milestone struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	TaskIDs     []string `json:"task_ids" yaml:"task_ids"`
}

// Task is an atomic unit of work within a plan.
type Task struct {
	ID           string   `json:"id" yaml:"id"`
	MilestoneID  string   `json:"milestone_id" yaml:"milestone_id"`
	Name         string   `json:"name" yaml:"name"`
	Description  string   `json:"description" yaml:"description"`
	Effort       Effort   `json:"effort" yaml:"effort"`
	DependsOn    []string `json:"depends_on" yaml:"depends_on"`
	SkillHints   []string `json:"skill_hints,omitempty" yaml:"skill_hints,omitempty"`
}

// Plan is the raw, declarative input: a hierarchical set of milestones
// and tasks, prior to dependency inference or scheduling.
type Plan struct {
	ID          string      `json:"id" yaml:"id"`
	Name        string      `json:"name" yaml:"name"`
	Description string      `json:"description" yaml:"description"`
	CreatedAt   time.Time   `json:"created_at" yaml:"created_at"`
	Milestones  []Milestone `json:"milestones" yaml:"milestones"`
	Tasks       []Task      `json:"tasks" yaml:"tasks"`
}

// SkillRequirement is the scored mapping from a task to the agent types
// best equipped to execute it, keyed by agent type name.
type SkillRequirement struct {
	TaskID string             `json:"task_id"`
	Scores map[string]float64 `json:"scores"`
}

// BestAgentType returns the highest-scoring agent type, falling back to
// full_stack_developer when every score is below 0.5, matching
// determine_skill_requirements's fallback rule.
func (r SkillRequirement) BestAgentType() string {
	best, bestScore := "full_stack_developer", 0.0
	for agentType, score := range r.Scores {
		if score > bestScore {
			best, bestScore = agentType, score
		}
	}
	if bestScore < 0.5 {
		return "full_stack_developer"
	}
	return best
}
