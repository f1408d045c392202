package plan

import "sort"

// DAG is the in-memory, adjacency-map task graph produced by C1.
// Mirrors the shape of a dependency graph built once from a normalized
// task set: forward edges (a task's dependencies) and reverse edges
// (the tasks it blocks), both keyed by task id.
type DAG struct {
	nodes   map[string]Task
	forward map[string][]string // task -> depends on these
	reverse map[string][]string // task -> blocked-by-this these
	order   []string            // insertion order, for deterministic iteration
}

// BuildDAG constructs a DAG from a normalized task set. Tasks are copied
// to avoid aliasing the caller's slice.
func BuildDAG(tasks []Task) *DAG {
	g := &DAG{
		nodes:   make(map[string]Task, len(tasks)),
		forward: make(map[string][]string, len(tasks)),
		reverse: make(map[string][]string, len(tasks)),
		order:   make([]string, 0, len(tasks)),
	}
	for _, t := range tasks {
		cp := t
		cp.DependsOn = append([]string(nil), t.DependsOn...)
		g.nodes[t.ID] = cp
		g.order = append(g.order, t.ID)
	}
	for _, t := range tasks {
		for _, dep := range t.DependsOn {
			g.forward[t.ID] = append(g.forward[t.ID], dep)
			g.reverse[dep] = append(g.reverse[dep], t.ID)
		}
	}
	return g
}

// Task returns the task for id and whether it exists.
func (g *DAG) Task(id string) (Task, bool) {
	t, ok := g.nodes[id]
	return t, ok
}

// Tasks returns all tasks in insertion order.
func (g *DAG) Tasks() []Task {
	out := make([]Task, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}
	return out
}

// Predecessors returns the ids this task depends on.
func (g *DAG) Predecessors(id string) []string {
	return append([]string(nil), g.forward[id]...)
}

// Successors returns the ids blocked by this task.
func (g *DAG) Successors(id string) []string {
	return append([]string(nil), g.reverse[id]...)
}

// TopologicalOrder computes a deterministic topological ordering of the
// DAG using Kahn's algorithm, breaking ties lexicographically by id so
// the result is reproducible across runs.
func (g *DAG) TopologicalOrder() ([]string, error) {
	indegree := make(map[string]int, len(g.nodes))
	for id := range g.nodes {
		indegree[id] = 0
	}
	for id := range g.nodes {
		for range g.forward[id] {
			indegree[id]++
		}
	}

	var ready []string
	for id, deg := range indegree {
		if deg == 0 {
			ready = append(ready, id)
		}
	}
	sort.Strings(ready)

	var topo []string
	for len(ready) > 0 {
		sort.Strings(ready)
		n := ready[0]
		ready = ready[1:]
		topo = append(topo, n)

		var newlyReady []string
		for _, succ := range g.reverse[n] {
			indegree[succ]--
			if indegree[succ] == 0 {
				newlyReady = append(newlyReady, succ)
			}
		}
		sort.Strings(newlyReady)
		ready = append(ready, newlyReady...)
	}

	if len(topo) != len(g.nodes) {
		cycle := findCycle(g)
		return nil, &CircularDependencyError{Cycle: cycle}
	}
	return topo, nil
}

// AssertAcyclic verifies the DAG contains no cycle, returning a
// CircularDependencyError naming the offending path if one exists.
func (g *DAG) AssertAcyclic() error {
	_, err := g.TopologicalOrder()
	return err
}

// findCycle performs a DFS to extract one concrete cycle path for the
// error message, once TopologicalOrder has already determined a cycle
// exists.
func findCycle(g *DAG) []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(g.nodes))
	var path []string
	var cycle []string

	var visit func(id string) bool
	visit = func(id string) bool {
		color[id] = gray
		path = append(path, id)
		for _, dep := range g.forward[id] {
			switch color[dep] {
			case white:
				if visit(dep) {
					return true
				}
			case gray:
				// found the back edge; extract the cycle portion of path.
				start := 0
				for i, p := range path {
					if p == dep {
						start = i
						break
					}
				}
				cycle = append(append([]string(nil), path[start:]...), dep)
				return true
			}
		}
		path = path[:len(path)-1]
		color[id] = black
		return false
	}

	ids := append([]string(nil), g.order...)
	sort.Strings(ids)
	for _, id := range ids {
		if color[id] == white {
			if visit(id) {
				return cycle
			}
		}
	}
	return cycle
}
