package scheduler

import (
	"sort"

	"github.com/antigravity-dev/pec/internal/plan"
)

// BuildSchedule runs the CPM pipeline over a DAG: forward pass, backward
// pass, critical path extraction, priority assignment, phase grouping
// and timeline estimation. Checkpoint insertion is the Assignment
// Engine's responsibility (spec 4.3 step 4; see assignment.BuildCheckpoints).
func BuildSchedule(planID string, g *plan.DAG) (*Schedule, error) {
	topo, err := g.TopologicalOrder()
	if err != nil {
		return nil, &SchedulerError{Kind: NonDAG, Err: err}
	}

	nodes := forwardPass(g, topo)
	backwardPass(g, topo, nodes)
	critical := criticalPath(nodes)
	criticalSet := make(map[string]bool, len(critical))
	for _, id := range critical {
		criticalSet[id] = true
	}
	assignPriorities(g, nodes, criticalSet)

	edges := collectEdges(g)
	phases := parallelPhases(nodes)
	timeline := buildTimeline(g, phases)

	out := make(map[string]TaskNode, len(nodes))
	for id, n := range nodes {
		out[id] = *n
	}

	return &Schedule{
		PlanID:       planID,
		Nodes:        out,
		Edges:        edges,
		CriticalPath: critical,
		Phases:       phases,
		Timeline:     timeline,
	}, nil
}

// forwardPass computes ES/EF in topological order:
// ES(v) = max(EF(u) for u -> v), 0 if no predecessors;
// EF(v) = ES(v) + duration(effort(v)).
func forwardPass(g *plan.DAG, topo []string) map[string]*TaskNode {
	nodes := make(map[string]*TaskNode, len(topo))
	for _, id := range topo {
		es := 0
		for _, dep := range g.Predecessors(id) {
			if nodes[dep].EarliestFinish > es {
				es = nodes[dep].EarliestFinish
			}
		}
		ef := es + taskDuration(g, id)
		nodes[id] = &TaskNode{TaskID: id, EarliestStart: es, EarliestFinish: ef}
	}
	return nodes
}

// backwardPass computes LS/LF in reverse topological order:
// LF(v) = min(LS(w) for v -> w), PROJECT_END if no successors;
// LS(v) = LF(v) - duration(effort(v)).
func backwardPass(g *plan.DAG, topo []string, nodes map[string]*TaskNode) {
	projectEnd := 0
	for _, n := range nodes {
		if n.EarliestFinish > projectEnd {
			projectEnd = n.EarliestFinish
		}
	}

	for i := len(topo) - 1; i >= 0; i-- {
		id := topo[i]
		successors := g.Successors(id)
		lf := projectEnd
		if len(successors) > 0 {
			lf = nodes[successors[0]].LatestStart
			for _, succ := range successors[1:] {
				if nodes[succ].LatestStart < lf {
					lf = nodes[succ].LatestStart
				}
			}
		}
		nodes[id].LatestFinish = lf
		nodes[id].LatestStart = lf - taskDuration(g, id)
	}
}

// criticalPath returns the ids with zero slack, sorted ascending by
// earliest_start then lexicographically by id for determinism.
func criticalPath(nodes map[string]*TaskNode) []string {
	var critical []string
	for id, n := range nodes {
		if n.Slack() == 0 {
			critical = append(critical, id)
			n.IsCritical = true
		}
	}
	sort.Slice(critical, func(i, j int) bool {
		ni, nj := nodes[critical[i]], nodes[critical[j]]
		if ni.EarliestStart != nj.EarliestStart {
			return ni.EarliestStart < nj.EarliestStart
		}
		return critical[i] < critical[j]
	})
	return critical
}

// assignPriorities applies the CRITICAL/HIGH/MEDIUM/LOW rule table:
// CRITICAL if on critical path; HIGH if a direct predecessor of any
// critical task, or effort is HIGH; LOW if slack > 3; MEDIUM otherwise.
func assignPriorities(g *plan.DAG, nodes map[string]*TaskNode, criticalSet map[string]bool) {
	predecessorOfCritical := make(map[string]bool)
	for id := range criticalSet {
		for _, dep := range g.Predecessors(id) {
			predecessorOfCritical[dep] = true
		}
	}

	for id, n := range nodes {
		t, _ := g.Task(id)
		switch {
		case criticalSet[id]:
			n.Priority = PriorityCritical
		case predecessorOfCritical[id] || t.Effort == plan.EffortHigh:
			n.Priority = PriorityHigh
		case n.Slack() > 3:
			n.Priority = PriorityLow
		default:
			n.Priority = PriorityMedium
		}
	}
}

func collectEdges(g *plan.DAG) [][2]string {
	var edges [][2]string
	for _, t := range g.Tasks() {
		for _, dep := range g.Predecessors(t.ID) {
			edges = append(edges, [2]string{dep, t.ID})
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i][0] != edges[j][0] {
			return edges[i][0] < edges[j][0]
		}
		return edges[i][1] < edges[j][1]
	})
	return edges
}

// parallelPhases buckets task ids by earliest_start, emitting buckets in
// ascending ES order; within a phase, tasks are ordered by priority then
// id (the stable order callers should read them in; priority-ordering the
// bucket keys makes the grouping deterministic for display, the actual
// set membership is what matters for coverage).
func parallelPhases(nodes map[string]*TaskNode) [][]string {
	buckets := make(map[int][]string)
	for id, n := range nodes {
		buckets[n.EarliestStart] = append(buckets[n.EarliestStart], id)
	}
	var keys []int
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	phases := make([][]string, 0, len(keys))
	for _, k := range keys {
		members := buckets[k]
		sort.Slice(members, func(i, j int) bool {
			pi, pj := priorityRank(nodes[members[i]].Priority), priorityRank(nodes[members[j]].Priority)
			if pi != pj {
				return pi < pj
			}
			return members[i] < members[j]
		})
		phases = append(phases, members)
	}
	return phases
}

func priorityRank(p Priority) int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	default:
		return 3
	}
}

// buildTimeline computes phase duration as the max task duration within
// the phase, and sums phase durations for total_duration_days.
func buildTimeline(g *plan.DAG, phases [][]string) Timeline {
	phaseDays := make(map[int]PhaseDays, len(phases))
	day := 0
	for i, phase := range phases {
		maxDur := 0
		for _, id := range phase {
			if d := taskDuration(g, id); d > maxDur {
				maxDur = d
			}
		}
		start := day
		end := day + maxDur
		phaseDays[i] = PhaseDays{StartDay: start, EndDay: end}
		day = end
	}
	return Timeline{PhaseDays: phaseDays, TotalDurationDays: day}
}
