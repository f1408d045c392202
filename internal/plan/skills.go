package plan

import "strings"

// skillKeywordClasses maps each keyword to the agent type it votes for
// and the base score that vote contributes.
var skillKeywordClasses = []struct {
	keywords  []string
	agentType string
	score     float64
}{
	{[]string{"architect", "design", "system", "structure"}, "solution_architect", 0.8},
	{[]string{"develop", "implement", "code", "build", "create"}, "full_stack_developer", 0.8},
	{[]string{"test", "qa", "quality", "validation", "verify"}, "qa_test", 0.8},
	{[]string{"plan", "coordinate", "schedule", "manage"}, "project_manager", 0.8},
}

// ComputeSkillRequirements scores a task's fit against each known agent
// type, based on keyword matches in its name and description. If the
// task's effort is HIGH, the top-scoring agent's score is bumped by 0.2
// (clamped at 1.0). If every score ends up below 0.5, full_stack_developer
// is forced to 0.5 as the default generalist fallback.
func ComputeSkillRequirements(t Task) SkillRequirement {
	text := strings.ToLower(t.Name + " " + t.Description + " " + strings.Join(t.SkillHints, " "))
	scores := make(map[string]float64)

	for _, class := range skillKeywordClasses {
		for _, kw := range class.keywords {
			if strings.Contains(text, kw) {
				if scores[class.agentType] < class.score {
					scores[class.agentType] = class.score
				}
				break
			}
		}
	}

	if t.Effort == EffortHigh && len(scores) > 0 {
		topAgent, topScore := "", -1.0
		for agent, score := range scores {
			if score > topScore {
				topAgent, topScore = agent, score
			}
		}
		bumped := topScore + 0.2
		if bumped > 1.0 {
			bumped = 1.0
		}
		scores[topAgent] = bumped
	}

	allBelowHalf := true
	for _, score := range scores {
		if score >= 0.5 {
			allBelowHalf = false
			break
		}
	}
	if allBelowHalf {
		scores["full_stack_developer"] = 0.5
	}

	return SkillRequirement{TaskID: t.ID, Scores: scores}
}
