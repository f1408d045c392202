package plan

import "testing"

func TestComputeSkillRequirementsArchitect(t *testing.T) {
	task := Task{ID: "t1", Name: "Design system architecture", Effort: EffortMedium}
	req := ComputeSkillRequirements(task)
	if req.Scores["solution_architect"] != 0.8 {
		t.Fatalf("expected solution_architect score 0.8, got %v", req.Scores)
	}
	if req.BestAgentType() != "solution_architect" {
		t.Fatalf("expected solution_architect, got %s", req.BestAgentType())
	}
}

func TestComputeSkillRequirementsHighEffortBump(t *testing.T) {
	task := Task{ID: "t1", Name: "Implement and build the service", Effort: EffortHigh}
	req := ComputeSkillRequirements(task)
	if req.Scores["full_stack_developer"] != 1.0 {
		t.Fatalf("expected bumped score 1.0, got %v", req.Scores["full_stack_developer"])
	}
}

func TestComputeSkillRequirementsDefaultFallback(t *testing.T) {
	task := Task{ID: "t1", Name: "Unrelated free-text task", Effort: EffortLow}
	req := ComputeSkillRequirements(task)
	if req.Scores["full_stack_developer"] != 0.5 {
		t.Fatalf("expected default fallback 0.5, got %v", req.Scores)
	}
	if req.BestAgentType() != "full_stack_developer" {
		t.Fatalf("expected fallback agent type, got %s", req.BestAgentType())
	}
}
