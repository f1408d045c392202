package plan

import "testing"

func TestIsLogicalDependencySharedTokens(t *testing.T) {
	p := Task{Name: "Design user schema"}
	tk := Task{Name: "Build user schema API"}
	if !IsLogicalDependency(p, tk) {
		t.Fatalf("expected shared-token dependency between %q and %q", p.Name, tk.Name)
	}
}

func TestIsLogicalDependencyLifecyclePair(t *testing.T) {
	p := Task{Name: "Design the login flow"}
	tk := Task{Name: "Implement the login flow"}
	if !IsLogicalDependency(p, tk) {
		t.Fatalf("expected lifecycle-pair dependency between %q and %q", p.Name, tk.Name)
	}
}

func TestIsLogicalDependencyUnrelated(t *testing.T) {
	p := Task{Name: "Write release notes"}
	tk := Task{Name: "Deploy billing service"}
	if IsLogicalDependency(p, tk) {
		t.Fatalf("did not expect dependency between unrelated tasks")
	}
}

func TestInferDependenciesAcrossMilestones(t *testing.T) {
	tasks := []Task{
		{ID: "a", MilestoneID: "m1", Name: "Design auth schema"},
		{ID: "b", MilestoneID: "m2", Name: "Implement auth schema"},
	}
	order := map[string]int{"m1": 0, "m2": 1}

	out := InferDependencies(tasks, order, true)
	b := findTask(out, "b")
	if len(b.DependsOn) != 1 || b.DependsOn[0] != "a" {
		t.Fatalf("expected task b to depend on a, got %v", b.DependsOn)
	}
}

func TestInferDependenciesDisabled(t *testing.T) {
	tasks := []Task{
		{ID: "a", MilestoneID: "m1", Name: "Design auth schema"},
		{ID: "b", MilestoneID: "m2", Name: "Implement auth schema"},
	}
	order := map[string]int{"m1": 0, "m2": 1}

	out := InferDependencies(tasks, order, false)
	b := findTask(out, "b")
	if len(b.DependsOn) != 0 {
		t.Fatalf("expected no inferred dependencies when disabled, got %v", b.DependsOn)
	}
}

func findTask(tasks []Task, id string) Task {
	for _, t := range tasks {
		if t.ID == id {
			return t
		}
	}
	return Task{}
}
