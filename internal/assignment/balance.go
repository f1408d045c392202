package assignment

import (
	"sort"

	"github.com/antigravity-dev/pec/internal/scheduler"
)

// transferable is a candidate task for workload transfer.
type transferable struct {
	taskID   string
	agent    string
	priority scheduler.Priority
	es       int
}

// BalanceWorkload rebalances agentOfTask in place (a copy is returned)
// so that max(count) - min(count) <= imbalanceThreshold, moving only
// LOW/MEDIUM priority tasks (never HIGH/CRITICAL) from the most-loaded
// agent to the least-loaded, lowest-priority-first, tie-broken by the
// latest earliest_start. Stops when no transferable candidate remains,
// even if the bound is not yet satisfied.
func BalanceWorkload(agentOfTask map[string]string, nodes map[string]scheduler.TaskNode, imbalanceThreshold int) map[string]string {
	assigned := make(map[string]string, len(agentOfTask))
	for k, v := range agentOfTask {
		assigned[k] = v
	}

	for {
		counts := countByAgent(assigned)
		maxAgent, minAgent, maxCount, minCount := extrema(counts)
		if maxAgent == "" || maxCount-minCount <= imbalanceThreshold {
			return assigned
		}

		candidate := pickTransferable(assigned, nodes, maxAgent)
		if candidate == nil {
			return assigned
		}
		assigned[candidate.taskID] = minAgent
	}
}

func countByAgent(assigned map[string]string) map[string]int {
	counts := make(map[string]int)
	for _, agent := range assigned {
		counts[agent]++
	}
	return counts
}

func extrema(counts map[string]int) (maxAgent, minAgent string, maxCount, minCount int) {
	first := true
	for agent, count := range counts {
		if first || count > maxCount {
			maxAgent, maxCount = agent, count
		}
		if first || count < minCount {
			minAgent, minCount = agent, count
		}
		first = false
	}
	return
}

// pickTransferable finds the lowest-priority, latest-ES task currently
// owned by fromAgent that is eligible to move (priority LOW or MEDIUM
// only).
func pickTransferable(assigned map[string]string, nodes map[string]scheduler.TaskNode, fromAgent string) *transferable {
	var candidates []transferable
	for taskID, agent := range assigned {
		if agent != fromAgent {
			continue
		}
		node := nodes[taskID]
		if node.Priority != scheduler.PriorityLow && node.Priority != scheduler.PriorityMedium {
			continue
		}
		candidates = append(candidates, transferable{
			taskID: taskID, agent: agent, priority: node.Priority, es: node.EarliestStart,
		})
	}
	if len(candidates) == 0 {
		return nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		pi, pj := transferPriorityRank(candidates[i].priority), transferPriorityRank(candidates[j].priority)
		if pi != pj {
			return pi > pj // lowest priority (highest rank number) first
		}
		return candidates[i].es > candidates[j].es // latest ES first
	})
	return &candidates[0]
}

// transferPriorityRank ranks LOW above MEDIUM so the lowest-priority
// task is always preferred for transfer first.
func transferPriorityRank(p scheduler.Priority) int {
	switch p {
	case scheduler.PriorityLow:
		return 1
	case scheduler.PriorityMedium:
		return 0
	default:
		return -1
	}
}
