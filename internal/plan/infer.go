package plan

import "strings"

// lifecyclePairs are recognized verb transitions that imply a predecessor
// relationship between two task names, e.g. "design the schema" must
// precede "implement the schema".
var lifecyclePairs = [][2]string{
	{"design", "implement"},
	{"implement", "test"},
	{"create", "use"},
	{"setup", "configure"},
}

// IsLogicalDependency reports whether task p is a logical predecessor of
// task t, either because their names share at least two lowercase tokens
// or because their names contain a recognized lifecycle verb pair.
func IsLogicalDependency(p, t Task) bool {
	pTokens := tokenSet(p.Name)
	tTokens := tokenSet(t.Name)

	shared := 0
	for tok := range pTokens {
		if tTokens[tok] {
			shared++
		}
	}
	if shared >= 2 {
		return true
	}

	pName := strings.ToLower(p.Name)
	tName := strings.ToLower(t.Name)
	for _, pair := range lifecyclePairs {
		if strings.Contains(pName, pair[0]) && strings.Contains(tName, pair[1]) {
			return true
		}
	}
	return false
}

func tokenSet(name string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(strings.ToLower(name)) {
		set[tok] = true
	}
	return set
}

// InferDependencies adds cross-milestone inferred dependency edges to a
// normalized task set. For every task t in milestone i, every task p in
// an earlier milestone j < i is a candidate predecessor; p is added to
// t's DependsOn iff IsLogicalDependency(p, t) holds and the edge is not
// already present. The input slice is not mutated; a copy is returned.
//
// When enabled is false, this is a no-op copy, honoring the
// [schedule] infer_dependencies configuration flag.
func InferDependencies(tasks []Task, milestoneOrder map[string]int, enabled bool) []Task {
	out := make([]Task, len(tasks))
	copy(out, tasks)
	for i := range out {
		out[i].DependsOn = append([]string(nil), tasks[i].DependsOn...)
	}
	if !enabled {
		return out
	}

	for i := range out {
		t := out[i]
		tIdx := milestoneOrder[t.MilestoneID]
		existing := make(map[string]bool, len(t.DependsOn))
		for _, d := range t.DependsOn {
			existing[d] = true
		}
		for _, p := range tasks {
			if p.ID == t.ID {
				continue
			}
			pIdx, ok := milestoneOrder[p.MilestoneID]
			if !ok || pIdx >= tIdx {
				continue
			}
			if existing[p.ID] {
				continue
			}
			if IsLogicalDependency(p, t) {
				out[i].DependsOn = append(out[i].DependsOn, p.ID)
				existing[p.ID] = true
			}
		}
	}
	return out
}

// MilestoneOrder builds the stable 0-based index used by InferDependencies
// from a Plan's milestone ordering.
func MilestoneOrder(milestones []Milestone) map[string]int {
	order := make(map[string]int, len(milestones))
	for i, m := range milestones {
		order[m.ID] = i
	}
	return order
}
