package progress

import "sort"

// BurndownPoint is one day's ideal-vs-actual remaining-work sample.
type BurndownPoint struct {
	Day            int     `json:"day"`
	IdealRemaining float64 `json:"ideal_remaining"`
	ActualRemaining float64 `json:"actual_remaining"`
}

// MilestoneProgressPoint is one milestone's completion for a progress
// bar rendering (data only; no rendering happens here).
type MilestoneProgressPoint struct {
	MilestoneID string  `json:"milestone_id"`
	Completion  float64 `json:"completion_percentage"`
}

// VisualizationData is the structured data a presentation layer would
// render into charts; PEC's core computes the data only (spec's
// Non-goals exclude the rendering itself).
type VisualizationData struct {
	BurndownChart       []BurndownPoint          `json:"burndown_chart"`
	StatusDistribution  map[Status]int           `json:"status_distribution"`
	MilestoneProgress   []MilestoneProgressPoint `json:"milestone_progress"`
	TimelineVariance    []TimelineVariance       `json:"timeline_variance"`
}

// BuildVisualizationData assembles the full structured-data bundle for
// external presentation layers.
func (t *Tracker) BuildVisualizationData(adherence TimelineAdherence) VisualizationData {
	t.mu.RLock()
	defer t.mu.RUnlock()

	totalTasks := len(t.records)
	distribution := make(map[Status]int)
	for _, rec := range t.records {
		distribution[rec.Status]++
	}

	totalDays := t.schedule.Timeline.TotalDurationDays
	burndown := make([]BurndownPoint, 0, totalDays+1)
	for day := 0; day <= totalDays; day++ {
		idealRemaining := float64(totalTasks) * (1 - float64(day)/float64(max1(totalDays)))
		if idealRemaining < 0 {
			idealRemaining = 0
		}
		actualRemaining := float64(totalTasks - distribution[StatusCompleted])
		burndown = append(burndown, BurndownPoint{
			Day: day, IdealRemaining: idealRemaining, ActualRemaining: actualRemaining,
		})
	}

	var milestoneIDs []string
	for id := range t.milestoneTasks {
		milestoneIDs = append(milestoneIDs, id)
	}
	sort.Slice(milestoneIDs, func(i, j int) bool {
		return t.milestoneIndex[milestoneIDs[i]] < t.milestoneIndex[milestoneIDs[j]]
	})
	milestoneProgress := make([]MilestoneProgressPoint, 0, len(milestoneIDs))
	for _, mid := range milestoneIDs {
		milestoneProgress = append(milestoneProgress, MilestoneProgressPoint{
			MilestoneID: mid,
			Completion:  rollupCompletion(t.milestoneTasks[mid], t.records),
		})
	}

	return VisualizationData{
		BurndownChart:      burndown,
		StatusDistribution: distribution,
		MilestoneProgress:  milestoneProgress,
		TimelineVariance:   adherence.PhaseVariances,
	}
}

func max1(n int) int {
	if n <= 0 {
		return 1
	}
	return n
}
