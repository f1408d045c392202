package progress

import "sort"

// milestoneStatusLocked computes a milestone's rollup status. Caller
// must hold t.mu.
func (t *Tracker) milestoneStatusLocked(milestoneID string) Status {
	taskIDs := t.milestoneTasks[milestoneID]
	return rollupStatus(taskIDs, t.records)
}

// phaseCompleteLocked reports whether every task in a phase is
// COMPLETED. Caller must hold t.mu.
func (t *Tracker) phaseCompleteLocked(phaseIdx int) bool {
	if phaseIdx < 0 || phaseIdx >= len(t.schedule.Phases) {
		return false
	}
	for _, id := range t.schedule.Phases[phaseIdx] {
		if t.records[id].Status != StatusCompleted {
			return false
		}
	}
	return true
}

func (t *Tracker) allPredecessorsCompletedLocked(taskID string) bool {
	for _, dep := range t.graph.Predecessors(taskID) {
		if t.records[dep].Status != StatusCompleted {
			return false
		}
	}
	return true
}

// rollupStatus applies the milestone/phase/project status rule: status
// = COMPLETED iff all member tasks COMPLETED; BLOCKED if any BLOCKED;
// IN_PROGRESS if any IN_PROGRESS; PENDING otherwise.
func rollupStatus(taskIDs []string, records map[string]*ProgressRecord) Status {
	if len(taskIDs) == 0 {
		return StatusPending
	}
	allCompleted := true
	anyBlocked := false
	anyInProgress := false
	for _, id := range taskIDs {
		rec := records[id]
		if rec == nil {
			continue
		}
		if rec.Status != StatusCompleted {
			allCompleted = false
		}
		if rec.Status == StatusBlocked {
			anyBlocked = true
		}
		if rec.Status == StatusInProgress {
			anyInProgress = true
		}
	}
	switch {
	case allCompleted:
		return StatusCompleted
	case anyBlocked:
		return StatusBlocked
	case anyInProgress:
		return StatusInProgress
	default:
		return StatusPending
	}
}

// rollupCompletion computes the mean completion percentage over a set
// of tasks: COMPLETED counts as 100, IN_PROGRESS contributes its own
// completion_percentage, everything else contributes 0.
func rollupCompletion(taskIDs []string, records map[string]*ProgressRecord) float64 {
	if len(taskIDs) == 0 {
		return 0
	}
	var sum float64
	for _, id := range taskIDs {
		rec := records[id]
		if rec == nil {
			continue
		}
		switch rec.Status {
		case StatusCompleted:
			sum += 100
		case StatusInProgress:
			sum += rec.CompletionPercentage
		}
	}
	return sum / float64(len(taskIDs))
}

// GetProjectProgress computes the full project rollup: overall status,
// completion percentage, critical-path progress and trend, per-milestone
// and per-phase summaries, and the recent-activity feed.
func (t *Tracker) GetProjectProgress() ProjectProgress {
	t.mu.RLock()
	defer t.mu.RUnlock()

	allTaskIDs := make([]string, 0, len(t.records))
	for id := range t.records {
		allTaskIDs = append(allTaskIDs, id)
	}
	sort.Strings(allTaskIDs)

	overall := projectOverallStatus(allTaskIDs, t.records)
	completion := rollupCompletion(allTaskIDs, t.records)

	var criticalIDs []string
	for _, id := range t.schedule.CriticalPath {
		criticalIDs = append(criticalIDs, id)
	}
	criticalCompletion := rollupCompletion(criticalIDs, t.records)
	trend := TrendOnTrack
	if criticalCompletion < completion {
		trend = TrendBehind
	}

	var milestoneIDs []string
	for id := range t.milestoneTasks {
		milestoneIDs = append(milestoneIDs, id)
	}
	sort.Slice(milestoneIDs, func(i, j int) bool {
		return t.milestoneIndex[milestoneIDs[i]] < t.milestoneIndex[milestoneIDs[j]]
	})
	milestones := make([]MilestoneSummary, 0, len(milestoneIDs))
	for _, mid := range milestoneIDs {
		milestones = append(milestones, MilestoneSummary{
			MilestoneID: mid,
			Status:      t.milestoneStatusLocked(mid),
			Completion:  rollupCompletion(t.milestoneTasks[mid], t.records),
		})
	}

	phases := make([]PhaseSummary, 0, len(t.schedule.Phases))
	for idx, members := range t.schedule.Phases {
		phases = append(phases, PhaseSummary{
			PhaseIndex: idx,
			Status:     rollupStatus(members, t.records),
			Completion: rollupCompletion(members, t.records),
		})
	}

	return ProjectProgress{
		OverallStatus:          overall,
		CompletionPercentage:   completion,
		CriticalPathCompletion: criticalCompletion,
		CriticalPathTrend:      trend,
		Milestones:             milestones,
		Phases:                 phases,
		RecentActivity:         t.recentUpdatesLocked(10),
	}
}

// projectOverallStatus applies the project-level precedence rule:
// completed > blocked > issues (failed) > in_progress > pending.
func projectOverallStatus(taskIDs []string, records map[string]*ProgressRecord) OverallStatus {
	if len(taskIDs) == 0 {
		return OverallPending
	}
	allCompleted := true
	anyBlocked, anyFailed, anyInProgress := false, false, false
	for _, id := range taskIDs {
		rec := records[id]
		if rec == nil {
			continue
		}
		if rec.Status != StatusCompleted {
			allCompleted = false
		}
		switch rec.Status {
		case StatusBlocked:
			anyBlocked = true
		case StatusFailed:
			anyFailed = true
		case StatusInProgress:
			anyInProgress = true
		}
	}
	switch {
	case allCompleted:
		return OverallCompleted
	case anyBlocked:
		return OverallBlocked
	case anyFailed:
		return OverallIssues
	case anyInProgress:
		return OverallInProgress
	default:
		return OverallPending
	}
}

// RecentUpdates returns the n most-recent updates across all tasks,
// newest first.
func (t *Tracker) RecentUpdates(n int) []Update {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.recentUpdatesLocked(n)
}

func (t *Tracker) recentUpdatesLocked(n int) []Update {
	var all []Update
	for _, rec := range t.records {
		all = append(all, rec.Updates...)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].Timestamp.After(all[j].Timestamp)
	})
	if len(all) > n {
		all = all[:n]
	}
	return all
}
