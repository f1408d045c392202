// Package progress ingests task status updates and completion events,
// maintains task/milestone/phase/project rollups, and surfaces
// bottleneck, at-risk, and timeline-adherence analytics.
package progress

import "time"

// Status is the lifecycle state of a task's ProgressRecord.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusBlocked    Status = "blocked"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

// IsTerminal reports whether a status has no further transitions other
// than an explicit Reopen out of COMPLETED.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Update is one append-only entry in a ProgressRecord's history.
type Update struct {
	Timestamp            time.Time `json:"timestamp"`
	Status                Status    `json:"status"`
	CompletionPercentage float64   `json:"completion_percentage"`
	Notes                 string    `json:"notes,omitempty"`
}

// ProgressRecord is the mutable, lifecycle-tracked state of one task.
type ProgressRecord struct {
	TaskID                  string     `json:"task_id"`
	Status                  Status     `json:"status"`
	CompletionPercentage    float64    `json:"completion_percentage"`
	StartTimestamp          *time.Time `json:"start_timestamp,omitempty"`
	CompletionTimestamp     *time.Time `json:"completion_timestamp,omitempty"`
	LatestUpdateTimestamp   time.Time  `json:"latest_update_timestamp"`
	Updates                 []Update   `json:"updates"`
}

// RiskLevel classifies how much attention a non-terminal task needs.
type RiskLevel int

const (
	RiskNone RiskLevel = iota
	RiskLow
	RiskMedium
	RiskHigh
	RiskCritical
)

func (r RiskLevel) String() string {
	switch r {
	case RiskCritical:
		return "critical"
	case RiskHigh:
		return "high"
	case RiskMedium:
		return "medium"
	case RiskLow:
		return "low"
	default:
		return "none"
	}
}

// Impact classifies how disruptive a bottleneck is.
type Impact string

const (
	ImpactCritical Impact = "critical"
	ImpactHigh     Impact = "high"
	ImpactMedium   Impact = "medium"
)

// Bottleneck is a task flagged as blocking or impeding downstream work.
type Bottleneck struct {
	TaskID string `json:"task_id"`
	Reason string `json:"reason"`
	Impact Impact `json:"impact"`
}

// AtRiskTask is a non-terminal task whose computed risk exceeds NONE.
type AtRiskTask struct {
	TaskID     string    `json:"task_id"`
	RiskLevel  RiskLevel `json:"risk_level"`
	IsCritical bool      `json:"is_critical"`
	Reasons    []string  `json:"reasons"`
}

// OverallStatus is the project-wide rollup status.
type OverallStatus string

const (
	OverallCompleted  OverallStatus = "completed"
	OverallBlocked    OverallStatus = "blocked"
	OverallIssues     OverallStatus = "issues"
	OverallInProgress OverallStatus = "in_progress"
	OverallPending    OverallStatus = "pending"
)

// CriticalPathTrend describes whether critical-path progress is keeping
// up with overall progress.
type CriticalPathTrend string

const (
	TrendOnTrack CriticalPathTrend = "on_track"
	TrendBehind  CriticalPathTrend = "behind"
)

// MilestoneSummary is the rollup for one milestone.
type MilestoneSummary struct {
	MilestoneID string  `json:"milestone_id"`
	Status      Status  `json:"status"`
	Completion  float64 `json:"completion_percentage"`
}

// PhaseSummary is the rollup for one schedule phase.
type PhaseSummary struct {
	PhaseIndex int     `json:"phase_index"`
	Status     Status  `json:"status"`
	Completion float64 `json:"completion_percentage"`
}

// ProjectProgress is the full project-wide rollup.
type ProjectProgress struct {
	OverallStatus          OverallStatus      `json:"overall_status"`
	CompletionPercentage   float64            `json:"completion_percentage"`
	CriticalPathCompletion float64            `json:"critical_path_completion_percentage"`
	CriticalPathTrend      CriticalPathTrend  `json:"critical_path_trend"`
	Milestones             []MilestoneSummary `json:"milestones"`
	Phases                 []PhaseSummary     `json:"phases"`
	RecentActivity         []Update           `json:"recent_activity"`
}

// VerificationStatus is the outcome of VerifyCheckpoint.
type VerificationStatus string

const (
	Verified           VerificationStatus = "verified"
	PartiallyVerified  VerificationStatus = "partially_verified"
	NotVerified        VerificationStatus = "not_verified"
)

// VerificationResult is the output of VerifyCheckpoint.
type VerificationResult struct {
	CheckpointID string             `json:"checkpoint_id"`
	Status       VerificationStatus `json:"status"`
}

// CompletionEvent is emitted by CompleteTask, per spec 4.4.3.
type CompletionEvent struct {
	TaskID             string   `json:"task_id"`
	MilestoneStatus    *Status  `json:"milestone_status,omitempty"`
	PhaseCompleted     bool     `json:"phase_completed"`
	CheckpointTriggered *string `json:"checkpoint_triggered,omitempty"`
	UnblockedTasks      []string `json:"unblocked_tasks"`
}

// TimelineVariance is the planned-vs-actual comparison for one phase.
type TimelineVariance struct {
	PhaseIndex  int    `json:"phase_index"`
	PlannedDays [2]int `json:"planned_days"` // [start_day, end_day]
	ActualStart *int   `json:"actual_start_day,omitempty"`
	ActualEnd   *int   `json:"actual_end_day,omitempty"`
	Variance    int    `json:"variance_days"`
	PhaseStatus string `json:"phase_status"`
}

// TimelineAdherence is the project-level schedule comparison.
type TimelineAdherence struct {
	DaysElapsed           int                `json:"days_elapsed"`
	PhaseVariances        []TimelineVariance `json:"phase_variances"`
	ProjectVarianceDays   int                `json:"project_variance_days"`
	CurrentExpectedPhase  int                `json:"current_expected_phase"`
	CurrentActualPhase    int                `json:"current_actual_phase"`
	Status                string             `json:"status"` // ahead | on_schedule | behind | unknown
}
