package assignment

import (
	"fmt"
	"sort"

	"github.com/antigravity-dev/pec/internal/plan"
	"github.com/antigravity-dev/pec/internal/scheduler"
	"github.com/google/uuid"
)

// Config carries the tunables §6 names for the Assignment Engine.
type Config struct {
	CheckpointEveryNPhases int
	WorkloadImbalanceThreshold int
	MaxProjectDurationDays int
}

// DefaultConfig matches the configuration defaults named in spec §6.
func DefaultConfig() Config {
	return Config{
		CheckpointEveryNPhases:     3,
		WorkloadImbalanceThreshold: 2,
		MaxProjectDurationDays:     90,
	}
}

// Build runs the full Assignment Engine pipeline: skill match, workload
// balancing, per-agent ordering, phase/checkpoint construction, and
// plan validation. skillReqs must contain one entry per scheduled task.
// milestoneOrder maps a milestone id to its stable 0-based index.
func Build(g *plan.DAG, sched *scheduler.Schedule, skillReqs map[string]plan.SkillRequirement, milestoneOrder map[string]int, cfg Config) (*Result, error) {
	agentOfTask := make(map[string]string, len(sched.Nodes))
	for taskID := range sched.Nodes {
		req, ok := skillReqs[taskID]
		if !ok {
			req = plan.SkillRequirement{TaskID: taskID}
		}
		agentOfTask[taskID] = MatchAgent(req)
	}

	agentOfTask = BalanceWorkload(agentOfTask, sched.Nodes, cfg.WorkloadImbalanceThreshold)

	instructions := buildInstructions(g, sched, agentOfTask)
	phases := buildPhaseRecords(sched, agentOfTask)
	checkpoints := BuildCheckpoints(g, sched, milestoneOrder, cfg.CheckpointEveryNPhases)
	validation := validate(sched, agentOfTask, phases, cfg)

	return &Result{
		Assignments: instructions,
		Phases:      phases,
		Checkpoints: checkpoints,
		Validation:  validation,
		AgentOfTask: agentOfTask,
	}, nil
}

// buildInstructions produces, per agent type, an ordered queue of
// Instructions sorted by (priority desc, earliest_start asc, id asc).
// predecessor_ownership maps each of a task's dependencies to the agent
// that owns it.
func buildInstructions(g *plan.DAG, sched *scheduler.Schedule, agentOfTask map[string]string) map[string][]Instruction {
	out := make(map[string][]Instruction)
	for taskID, node := range sched.Nodes {
		agent := agentOfTask[taskID]
		ownership := make(map[string]string)
		for _, dep := range g.Predecessors(taskID) {
			ownership[dep] = agentOfTask[dep]
		}
		out[agent] = append(out[agent], Instruction{
			TaskID:               taskID,
			Priority:             node.Priority,
			EarliestStart:        node.EarliestStart,
			PredecessorOwnership: ownership,
			IsCritical:           node.IsCritical,
		})
	}

	for agent := range out {
		queue := out[agent]
		sort.Slice(queue, func(i, j int) bool {
			pi, pj := priorityRank(queue[i].Priority), priorityRank(queue[j].Priority)
			if pi != pj {
				return pi < pj
			}
			if queue[i].EarliestStart != queue[j].EarliestStart {
				return queue[i].EarliestStart < queue[j].EarliestStart
			}
			return queue[i].TaskID < queue[j].TaskID
		})
		out[agent] = queue
	}
	return out
}

func priorityRank(p scheduler.Priority) int {
	switch p {
	case scheduler.PriorityCritical:
		return 0
	case scheduler.PriorityHigh:
		return 1
	case scheduler.PriorityMedium:
		return 2
	default:
		return 3
	}
}

func buildPhaseRecords(sched *scheduler.Schedule, agentOfTask map[string]string) []PhaseRecord {
	phases := make([]PhaseRecord, 0, len(sched.Phases))
	for _, members := range sched.Phases {
		tasks := make([]PhaseTaskAssignment, 0, len(members))
		for _, taskID := range members {
			node := sched.Nodes[taskID]
			tasks = append(tasks, PhaseTaskAssignment{
				TaskID:      taskID,
				OwningAgent: agentOfTask[taskID],
				Priority:    node.Priority,
				IsCritical:  node.IsCritical,
			})
		}
		phases = append(phases, PhaseRecord{PhaseID: uuid.NewString(), Tasks: tasks})
	}
	return phases
}

// BuildCheckpoints inserts a checkpoint after every Nth phase; its
// milestone_reached is the highest milestone index of any task whose
// earliest_start is <= the phase index.
func BuildCheckpoints(g *plan.DAG, sched *scheduler.Schedule, milestoneOrder map[string]int, every int) []scheduler.Checkpoint {
	if every <= 0 {
		every = 3
	}
	var checkpoints []scheduler.Checkpoint
	for phaseIdx := range sched.Phases {
		phaseNumber := phaseIdx + 1
		if phaseNumber%every != 0 {
			continue
		}
		milestoneReached := 0
		for taskID, node := range sched.Nodes {
			if node.EarliestStart > phaseIdx {
				continue
			}
			t, ok := g.Task(taskID)
			if !ok {
				continue
			}
			if idx, ok := milestoneOrder[t.MilestoneID]; ok && idx > milestoneReached {
				milestoneReached = idx
			}
		}
		checkpoints = append(checkpoints, scheduler.Checkpoint{
			CheckpointID:     uuid.NewString(),
			AfterPhase:       phaseIdx,
			MilestoneReached: milestoneReached,
		})
	}
	return checkpoints
}

// validate checks the three plan-validity rules: every critical-path
// task is assigned, every phase has at least one task, and
// total_duration_days is within (0, MaxProjectDurationDays].
func validate(sched *scheduler.Schedule, agentOfTask map[string]string, phases []PhaseRecord, cfg Config) ValidationResult {
	var issues []string

	for _, taskID := range sched.CriticalPath {
		if _, ok := agentOfTask[taskID]; !ok {
			issues = append(issues, fmt.Sprintf("critical-path task %s has no agent assignment", taskID))
		}
	}

	for i, phase := range phases {
		if len(phase.Tasks) == 0 {
			issues = append(issues, fmt.Sprintf("phase %d has no tasks", i))
		}
	}

	total := sched.Timeline.TotalDurationDays
	if total <= 0 {
		issues = append(issues, "total_duration_days must be greater than 0")
	}
	max := cfg.MaxProjectDurationDays
	if max <= 0 {
		max = 90
	}
	if total > max {
		issues = append(issues, fmt.Sprintf("total_duration_days %d exceeds configured maximum %d", total, max))
	}

	return ValidationResult{IsValid: len(issues) == 0, Issues: issues}
}
