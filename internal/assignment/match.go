package assignment

import "github.com/antigravity-dev/pec/internal/plan"

// MatchAgent chooses the agent type maximizing skill_requirements[agent]
// for a single task, tie-breaking by the fixed agentTieBreakOrder, and
// falling back to full_stack_developer when no score is recorded at all.
func MatchAgent(req plan.SkillRequirement) string {
	if len(req.Scores) == 0 {
		return "full_stack_developer"
	}

	best, bestScore := "", -1.0
	for _, candidate := range agentTieBreakOrder {
		score, ok := req.Scores[candidate]
		if !ok {
			continue
		}
		if score > bestScore {
			best, bestScore = candidate, score
		}
	}
	// Cover agent types outside the fixed tie-break list (there are none
	// in the closed keyword-class set, but this keeps the function total
	// rather than silently dropping an unrecognized agent type).
	for agent, score := range req.Scores {
		if score > bestScore {
			best, bestScore = agent, score
		}
	}
	if best == "" {
		return "full_stack_developer"
	}
	return best
}
