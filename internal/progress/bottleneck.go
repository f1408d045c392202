package progress

import (
	"fmt"
	"sort"
	"time"

	"github.com/antigravity-dev/pec/internal/plan"
)

// GetBottlenecks emits a bottleneck record for every task matching one
// of the three rules in spec 4.4.4, sorted by impact then id.
func (t *Tracker) GetBottlenecks(now time.Time) []Bottleneck {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []Bottleneck
	for _, taskID := range sortedTaskIDs(t.records) {
		rec := t.records[taskID]

		if rec.Status == StatusBlocked {
			successors := t.transitiveSuccessorsLocked(taskID)
			impact := ImpactMedium
			if len(successors) > 2 {
				impact = ImpactHigh
			}
			out = append(out, Bottleneck{
				TaskID: taskID,
				Reason: fmt.Sprintf("task is blocked with %d transitive successors", len(successors)),
				Impact: impact,
			})
			continue
		}

		if rec.Status != StatusCompleted && t.hasCompletedSuccessorLocked(taskID) {
			out = append(out, Bottleneck{
				TaskID: taskID,
				Reason: "task is incomplete but blocks an already-completed successor",
				Impact: ImpactMedium,
			})
			continue
		}

		node, isScheduled := t.schedule.Nodes[taskID]
		if isScheduled && node.IsCritical && rec.Status == StatusInProgress && rec.StartTimestamp != nil {
			daysInProgress := int(now.Sub(*rec.StartTimestamp).Hours() / 24)
			duration := taskDurationDays(t.graph, taskID)
			if daysInProgress > duration {
				out = append(out, Bottleneck{
					TaskID: taskID,
					Reason: fmt.Sprintf("on critical path, %d days in progress exceeds estimated %d", daysInProgress, duration),
					Impact: ImpactCritical,
				})
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := impactRank(out[i].Impact), impactRank(out[j].Impact)
		if ri != rj {
			return ri < rj
		}
		return out[i].TaskID < out[j].TaskID
	})
	return out
}

func impactRank(i Impact) int {
	switch i {
	case ImpactCritical:
		return 0
	case ImpactHigh:
		return 1
	default:
		return 2
	}
}

// transitiveSuccessorsLocked performs a DFS over the dependency graph to
// count every task transitively blocked by taskID.
func (t *Tracker) transitiveSuccessorsLocked(taskID string) []string {
	seen := make(map[string]bool)
	var stack []string
	stack = append(stack, t.graph.Successors(taskID)...)
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[id] {
			continue
		}
		seen[id] = true
		stack = append(stack, t.graph.Successors(id)...)
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	return out
}

func (t *Tracker) hasCompletedSuccessorLocked(taskID string) bool {
	for _, succ := range t.graph.Successors(taskID) {
		if t.records[succ].Status == StatusCompleted {
			return true
		}
	}
	return false
}

func sortedTaskIDs(records map[string]*ProgressRecord) []string {
	out := make([]string, 0, len(records))
	for id := range records {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func taskDurationDays(g *plan.DAG, taskID string) int {
	task, ok := g.Task(taskID)
	if !ok {
		return 1
	}
	return task.Effort.Days()
}
