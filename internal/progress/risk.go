package progress

import (
	"sort"
	"time"
)

// DetectAtRiskTasks assigns a RiskLevel to every non-terminal task by
// accumulating the risk factors from spec 4.4.6 and taking their max.
// estimatedStart is the project's day-0 date, against which each task's
// planned phase end day is placed; projectBehind reports whether the project as a whole is behind
// schedule (from AnalyzeTimelineAdherence).
func (t *Tracker) DetectAtRiskTasks(now, estimatedStart time.Time, projectBehind bool) []AtRiskTask {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []AtRiskTask
	for _, taskID := range sortedTaskIDs(t.records) {
		rec := t.records[taskID]
		if rec.Status.IsTerminal() {
			continue
		}

		level := RiskNone
		var reasons []string
		raise := func(r RiskLevel, reason string) {
			if r > level {
				level = r
			}
			reasons = append(reasons, reason)
		}

		node, isCritical := t.schedule.Nodes[taskID]
		onCriticalPath := isCritical && node.IsCritical

		if onCriticalPath {
			raise(RiskMedium, "task is on the critical path")
		}

		phaseIdx, hasPhase := t.phaseOf[taskID]
		var phaseEndDay int
		if hasPhase {
			phaseEndDay = t.schedule.Timeline.PhaseDays[phaseIdx].EndDay
		}
		daysElapsed := int(now.Sub(estimatedStart).Hours() / 24)
		overdue := hasPhase && daysElapsed > phaseEndDay

		if overdue && rec.Status == StatusPending {
			raise(RiskHigh, "task is overdue and still pending")
		} else if overdue && rec.Status == StatusInProgress {
			raise(RiskMedium, "task is overdue and in progress")
		}

		if hasPhase {
			daysToPhaseEnd := phaseEndDay - daysElapsed
			if daysToPhaseEnd <= 2 {
				if rec.Status == StatusPending {
					raise(RiskHigh, "phase ends within 2 days and task has not started")
				} else {
					raise(RiskMedium, "phase ends within 2 days")
				}
			}
		}

		duration := taskDurationDays(t.graph, taskID)
		daysRemaining := duration
		if rec.StartTimestamp != nil {
			daysRemaining = duration - int(now.Sub(*rec.StartTimestamp).Hours()/24)
		}
		task, ok := t.graph.Task(taskID)
		if ok && task.Effort.Days() == 3 && daysRemaining <= 3 {
			raise(RiskHigh, "high-effort task with 3 or fewer days remaining")
		}

		anyBlockedPred, anyFailedPred := false, false
		for _, dep := range t.graph.Predecessors(taskID) {
			switch t.records[dep].Status {
			case StatusBlocked:
				anyBlockedPred = true
			case StatusFailed:
				anyFailedPred = true
			}
		}
		if anyBlockedPred {
			raise(RiskHigh, "a predecessor is blocked")
		}
		if anyFailedPred {
			raise(RiskCritical, "a predecessor failed")
		}
		if rec.Status == StatusBlocked {
			raise(RiskCritical, "task itself is blocked")
		}
		if projectBehind && onCriticalPath {
			raise(RiskHigh, "project is behind schedule and task is on the critical path")
		}

		if level == RiskNone {
			continue
		}
		out = append(out, AtRiskTask{
			TaskID:     taskID,
			RiskLevel:  level,
			IsCritical: onCriticalPath,
			Reasons:    reasons,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].RiskLevel != out[j].RiskLevel {
			return out[i].RiskLevel > out[j].RiskLevel
		}
		if out[i].IsCritical != out[j].IsCritical {
			return out[i].IsCritical
		}
		return out[i].TaskID < out[j].TaskID
	})
	return out
}
