// Package assignment matches scheduled tasks to agent types by skill
// score, balances workload across agents, and produces per-agent
// ordered work queues plus phase/checkpoint structure and plan
// validation.
package assignment

import "github.com/antigravity-dev/pec/internal/scheduler"

// agentTieBreakOrder is the fixed tie-break order used when two agent
// types score equally for a task.
var agentTieBreakOrder = []string{
	"solution_architect", "full_stack_developer", "qa_test", "project_manager",
}

// Instruction is one unit of work handed to an agent type.
type Instruction struct {
	TaskID               string              `json:"task_id"`
	Priority             scheduler.Priority  `json:"priority"`
	EarliestStart        int                 `json:"earliest_start"`
	PredecessorOwnership map[string]string   `json:"predecessor_ownership"`
	IsCritical           bool                `json:"is_critical"`
}

// PhaseTaskAssignment records which agent owns a task within a phase.
type PhaseTaskAssignment struct {
	TaskID      string             `json:"task_id"`
	OwningAgent string             `json:"owning_agent"`
	Priority    scheduler.Priority `json:"priority"`
	IsCritical  bool               `json:"is_critical"`
}

// PhaseRecord is one parallel-execution phase with its task assignments.
type PhaseRecord struct {
	PhaseID string                `json:"phase_id"`
	Tasks   []PhaseTaskAssignment `json:"tasks"`
}

// ValidationResult reports whether a plan is executable as scheduled.
type ValidationResult struct {
	IsValid bool     `json:"is_valid"`
	Issues  []string `json:"issues"`
}

// Result is the full output of the Assignment Engine.
type Result struct {
	Assignments map[string][]Instruction     `json:"assignments"`
	Phases      []PhaseRecord                `json:"phases"`
	Checkpoints []scheduler.Checkpoint       `json:"checkpoints"`
	Validation  ValidationResult             `json:"validation"`
	AgentOfTask map[string]string            `json:"agent_of_task"`
}
