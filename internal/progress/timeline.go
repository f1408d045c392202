package progress

import (
	"time"

	"github.com/antigravity-dev/pec/internal/scheduler"
)

// AnalyzeTimelineAdherence compares planned phase timing against actual
// task timestamps, per spec 4.4.5. estimatedStart is the project's
// planned start date.
func (t *Tracker) AnalyzeTimelineAdherence(estimatedStart, currentDate time.Time) TimelineAdherence {
	t.mu.RLock()
	defer t.mu.RUnlock()

	daysElapsed := int(currentDate.Sub(estimatedStart).Hours() / 24)
	if daysElapsed < 0 {
		daysElapsed = 0
	}

	variances := make([]TimelineVariance, 0, len(t.schedule.Phases))
	currentExpectedPhase := 0
	currentActualPhase := -1

	for idx, members := range t.schedule.Phases {
		planned := t.schedule.Timeline.PhaseDays[idx]
		var actualStart, actualEnd *int
		var earliestStart, latestEnd time.Time
		haveStart, haveEnd := false, false

		for _, id := range members {
			rec := t.records[id]
			if rec.StartTimestamp != nil {
				if !haveStart || rec.StartTimestamp.Before(earliestStart) {
					earliestStart = *rec.StartTimestamp
					haveStart = true
				}
			}
			if rec.CompletionTimestamp != nil {
				if !haveEnd || rec.CompletionTimestamp.After(latestEnd) {
					latestEnd = *rec.CompletionTimestamp
					haveEnd = true
				}
			}
		}

		variance := 0
		if haveStart {
			d := int(earliestStart.Sub(estimatedStart).Hours() / 24)
			actualStart = &d
		}
		if haveEnd {
			d := int(latestEnd.Sub(estimatedStart).Hours() / 24)
			actualEnd = &d
			variance = d - planned.EndDay
		} else if haveStart {
			variance = *actualStart - planned.StartDay
		}

		phaseStatus := classifyPhaseStatus(members, t.records, planned, daysElapsed, haveStart, haveEnd)
		if phaseStatus != "pending" {
			currentActualPhase = idx
		}
		if daysElapsed >= planned.StartDay {
			currentExpectedPhase = idx
		}

		variances = append(variances, TimelineVariance{
			PhaseIndex:  idx,
			PlannedDays: [2]int{planned.StartDay, planned.EndDay},
			ActualStart: actualStart,
			ActualEnd:   actualEnd,
			Variance:    variance,
			PhaseStatus: phaseStatus,
		})
	}

	projectVariance := 0
	for _, v := range variances {
		if v.PhaseStatus == "in_progress" || v.PhaseStatus == "completed" || v.PhaseStatus == "delayed" {
			if v.Variance > projectVariance {
				projectVariance = v.Variance
			}
		}
	}

	status := "unknown"
	switch {
	case currentActualPhase < 0:
		status = "unknown"
	case currentActualPhase > currentExpectedPhase:
		status = "ahead"
	case currentActualPhase < currentExpectedPhase:
		status = "behind"
	default:
		status = "on_schedule"
	}

	return TimelineAdherence{
		DaysElapsed:          daysElapsed,
		PhaseVariances:       variances,
		ProjectVarianceDays:  projectVariance,
		CurrentExpectedPhase: currentExpectedPhase,
		CurrentActualPhase:   currentActualPhase,
		Status:               status,
	}
}

func classifyPhaseStatus(members []string, records map[string]*ProgressRecord, planned scheduler.PhaseDays, daysElapsed int, haveStart, haveEnd bool) string {
	allCompleted := true
	anyInProgress := false
	for _, id := range members {
		rec := records[id]
		if rec.Status != StatusCompleted {
			allCompleted = false
		}
		if rec.Status == StatusInProgress {
			anyInProgress = true
		}
	}

	if allCompleted {
		return "completed"
	}
	if anyInProgress {
		if daysElapsed > planned.EndDay {
			return "delayed"
		}
		return "in_progress"
	}
	if daysElapsed > planned.StartDay {
		return "delayed"
	}
	return "pending"
}
