package plan

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// IngestPlan normalizes a raw Plan into a flat Task set, assigning a
// stable id to every task (the plan-provided id if unique, otherwise a
// synthesized one) and recording milestone order. It returns any
// non-fatal warnings alongside the normalized tasks.
func IngestPlan(p *Plan) (tasks []Task, warnings []string, err error) {
	if p == nil {
		return nil, nil, &InvalidPlanError{Reason: "nil plan"}
	}
	if len(p.Milestones) == 0 {
		return nil, nil, &InvalidPlanError{Reason: "plan has no milestones"}
	}

	milestoneIndex := make(map[string]int, len(p.Milestones))
	for i, m := range p.Milestones {
		if m.ID == "" {
			return nil, nil, &InvalidPlanError{Reason: fmt.Sprintf("milestone at index %d has no id", i)}
		}
		if _, dup := milestoneIndex[m.ID]; dup {
			return nil, nil, &InvalidPlanError{Reason: fmt.Sprintf("duplicate milestone id %q", m.ID)}
		}
		milestoneIndex[m.ID] = i
	}

	seenIDs := make(map[string]bool, len(p.Tasks))
	out := make([]Task, 0, len(p.Tasks))
	for _, t := range p.Tasks {
		cp := t
		if cp.MilestoneID == "" {
			return nil, nil, &InvalidPlanError{Reason: fmt.Sprintf("task %q has no milestone_id", cp.Name)}
		}
		if _, ok := milestoneIndex[cp.MilestoneID]; !ok {
			return nil, nil, &InvalidPlanError{Reason: fmt.Sprintf("task %q references unknown milestone %q", cp.Name, cp.MilestoneID)}
		}
		if cp.Effort == "" {
			cp.Effort = EffortMedium
			warnings = append(warnings, fmt.Sprintf("task %q has no effort, defaulting to medium", cp.Name))
		}
		if cp.ID == "" || seenIDs[cp.ID] {
			cp.ID = uuid.NewString()
			warnings = append(warnings, fmt.Sprintf("task %q had no unique id, synthesized %s", cp.Name, cp.ID))
		}
		seenIDs[cp.ID] = true
		cp.DependsOn = append([]string(nil), t.DependsOn...)
		out = append(out, cp)
	}

	idSet := make(map[string]bool, len(out))
	for _, t := range out {
		idSet[t.ID] = true
	}
	for _, t := range out {
		for _, dep := range t.DependsOn {
			if !idSet[dep] {
				return nil, nil, &InvalidPlanError{Reason: fmt.Sprintf("task %q declares unknown dependency %q", t.ID, dep)}
			}
		}
	}

	return out, warnings, nil
}

// LoadJSON reads a Plan document encoded as JSON from path.
func LoadJSON(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("plan: read %s: %w", path, err)
	}
	var p Plan
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("plan: decode json %s: %w", path, err)
	}
	return &p, nil
}

// LoadYAML reads a Plan document encoded as YAML from path.
func LoadYAML(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("plan: read %s: %w", path, err)
	}
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("plan: decode yaml %s: %w", path, err)
	}
	return &p, nil
}
