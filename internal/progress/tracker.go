package progress

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/antigravity-dev/pec/internal/assignment"
	"github.com/antigravity-dev/pec/internal/plan"
	"github.com/antigravity-dev/pec/internal/scheduler"
)

// Tracker is the long-lived, per-project state machine (C4). It
// serializes mutations to the task set and rollups behind a single
// readers-writer lock, mirroring the teacher's RWMutexManager: readers
// (Get*) take RLock, writers (UpdateTaskStatus, CompleteTask,
// ReopenTask) take Lock.
type Tracker struct {
	mu     sync.RWMutex
	logger *slog.Logger

	graph      *plan.DAG
	schedule   *scheduler.Schedule
	assignment *assignment.Result

	milestoneOf      map[string]string // task id -> milestone id
	milestoneIndex   map[string]int    // milestone id -> order
	milestoneByOrder map[int]string    // order -> milestone id
	milestoneTasks   map[string][]string
	phaseOf          map[string]int // task id -> phase index
	checkpoints      map[string]scheduler.Checkpoint // checkpoint id -> checkpoint

	records map[string]*ProgressRecord

	callbacks []func(CompletionEvent)
	inCallback bool
}

// checkpointAfterPhaseLocked returns the id of the checkpoint due after
// phaseIdx, if any. Callers must hold t.mu.
func (t *Tracker) checkpointAfterPhaseLocked(phaseIdx int) (string, bool) {
	for id, cp := range t.checkpoints {
		if cp.AfterPhase == phaseIdx {
			return id, true
		}
	}
	return "", false
}

// NewTracker builds a Tracker over a scheduled, assigned plan. Every
// ProgressRecord starts PENDING, per spec's Task lifecycle.
func NewTracker(g *plan.DAG, sched *scheduler.Schedule, asg *assignment.Result, milestones []plan.Milestone, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	t := &Tracker{
		logger:           logger,
		graph:            g,
		schedule:         sched,
		assignment:       asg,
		milestoneOf:      make(map[string]string),
		milestoneIndex:   plan.MilestoneOrder(milestones),
		milestoneByOrder: make(map[int]string, len(milestones)),
		milestoneTasks:   make(map[string][]string),
		phaseOf:          make(map[string]int),
		checkpoints:      make(map[string]scheduler.Checkpoint),
		records:          make(map[string]*ProgressRecord),
	}

	for i, m := range milestones {
		t.milestoneByOrder[i] = m.ID
	}
	for _, task := range g.Tasks() {
		t.milestoneOf[task.ID] = task.MilestoneID
		t.milestoneTasks[task.MilestoneID] = append(t.milestoneTasks[task.MilestoneID], task.ID)
		t.records[task.ID] = &ProgressRecord{TaskID: task.ID, Status: StatusPending}
	}
	for idx, members := range sched.Phases {
		for _, id := range members {
			t.phaseOf[id] = idx
		}
	}
	for _, cp := range asg.Checkpoints {
		t.checkpoints[cp.CheckpointID] = cp
	}

	return t
}

// OnCompletion registers a callback invoked synchronously whenever
// CompleteTask fires a checkpoint or completion event. Per spec 5,
// callbacks must never re-enter a mutating Tracker method; doing so
// returns an error rather than deadlocking.
func (t *Tracker) OnCompletion(fn func(CompletionEvent)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.callbacks = append(t.callbacks, fn)
}

func (t *Tracker) guardReentrancy() (func(), error) {
	if t.inCallback {
		return func() {}, fmt.Errorf("progress: re-entrant mutation from within a CheckpointTriggered callback")
	}
	return func() {}, nil
}

// UpdateTaskStatus applies a status transition to a task, appending to
// its update history. It rejects illegal transitions and unknown tasks.
func (t *Tracker) UpdateTaskStatus(taskID string, newStatus Status, completionPct *float64, notes string, now time.Time) (ProgressRecord, error) {
	if _, err := t.guardReentrancy(); err != nil {
		return ProgressRecord{}, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.records[taskID]
	if !ok {
		return ProgressRecord{}, &UnknownTaskError{TaskID: taskID}
	}
	if !canTransition(rec.Status, newStatus) {
		return ProgressRecord{}, &IllegalTransitionError{From: rec.Status, To: newStatus}
	}

	pct := rec.CompletionPercentage
	if completionPct != nil {
		pct = *completionPct
	}

	if newStatus == StatusInProgress && rec.StartTimestamp == nil {
		ts := now
		rec.StartTimestamp = &ts
	}
	if newStatus == StatusCompleted {
		ts := now
		rec.CompletionTimestamp = &ts
		pct = 100
	}

	rec.Status = newStatus
	rec.CompletionPercentage = pct
	rec.LatestUpdateTimestamp = now
	rec.Updates = append(rec.Updates, Update{
		Timestamp: now, Status: newStatus, CompletionPercentage: pct, Notes: notes,
	})

	t.logger.Info("task status updated", "task_id", taskID, "status", newStatus)
	return *cloneRecord(rec), nil
}

// CompleteTask is the exact event-propagation algorithm from spec
// 4.4.3: applies the COMPLETED transition, determines phase completion,
// fires CheckpointTriggered if due, and returns the unblocked-tasks set.
func (t *Tracker) CompleteTask(taskID string, resultSummary string, now time.Time) (CompletionEvent, error) {
	if _, err := t.guardReentrancy(); err != nil {
		return CompletionEvent{}, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.records[taskID]
	if !ok {
		return CompletionEvent{}, &UnknownTaskError{TaskID: taskID}
	}
	if !canTransition(rec.Status, StatusCompleted) {
		return CompletionEvent{}, &IllegalTransitionError{From: rec.Status, To: StatusCompleted}
	}

	ts := now
	rec.Status = StatusCompleted
	rec.CompletionPercentage = 100
	rec.CompletionTimestamp = &ts
	rec.LatestUpdateTimestamp = now
	rec.Updates = append(rec.Updates, Update{
		Timestamp: now, Status: StatusCompleted, CompletionPercentage: 100, Notes: resultSummary,
	})

	event := CompletionEvent{TaskID: taskID}

	milestoneID := t.milestoneOf[taskID]
	if milestoneID != "" {
		status := t.milestoneStatusLocked(milestoneID)
		event.MilestoneStatus = &status
	}

	phaseIdx, hasPhase := t.phaseOf[taskID]
	if hasPhase {
		phaseComplete := t.phaseCompleteLocked(phaseIdx)
		event.PhaseCompleted = phaseComplete
		if phaseComplete {
			if cpID, due := t.checkpointAfterPhaseLocked(phaseIdx); due {
				event.CheckpointTriggered = &cpID
			}
		}
	}

	var unblocked []string
	for _, succID := range t.graph.Successors(taskID) {
		if t.allPredecessorsCompletedLocked(succID) && t.records[succID].Status == StatusPending {
			unblocked = append(unblocked, succID)
		}
	}
	sort.Strings(unblocked)
	event.UnblockedTasks = unblocked

	t.logger.Info("task completed", "task_id", taskID, "phase_completed", event.PhaseCompleted)

	t.inCallback = true
	for _, cb := range t.callbacks {
		cb(event)
	}
	t.inCallback = false

	return event, nil
}

// ReopenTask is the sole escape hatch from COMPLETED back to
// IN_PROGRESS. It records a new update entry and resets
// completion_timestamp to nil.
func (t *Tracker) ReopenTask(taskID, reason string, now time.Time) (ProgressRecord, error) {
	if _, err := t.guardReentrancy(); err != nil {
		return ProgressRecord{}, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.records[taskID]
	if !ok {
		return ProgressRecord{}, &UnknownTaskError{TaskID: taskID}
	}
	if rec.Status != StatusCompleted {
		return ProgressRecord{}, &IllegalTransitionError{From: rec.Status, To: StatusInProgress}
	}

	rec.Status = StatusInProgress
	rec.CompletionTimestamp = nil
	rec.LatestUpdateTimestamp = now
	rec.Updates = append(rec.Updates, Update{
		Timestamp: now, Status: StatusInProgress, CompletionPercentage: rec.CompletionPercentage, Notes: reason,
	})

	t.logger.Warn("task reopened", "task_id", taskID, "reason", reason)
	return *cloneRecord(rec), nil
}

// Record returns a copy of a task's current ProgressRecord.
func (t *Tracker) Record(taskID string) (ProgressRecord, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rec, ok := t.records[taskID]
	if !ok {
		return ProgressRecord{}, false
	}
	return *cloneRecord(rec), true
}

// RestoreRecords replaces the tracker's in-memory ProgressRecord set
// with previously persisted records, for rehydrating a Tracker in a
// fresh process (the CLI has no long-lived coordinator). Unknown task
// ids in records are ignored; tasks with no persisted record keep
// their PENDING default.
func (t *Tracker) RestoreRecords(records []*ProgressRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, rec := range records {
		if _, ok := t.records[rec.TaskID]; ok {
			t.records[rec.TaskID] = cloneRecord(rec)
		}
	}
}

// AllRecords returns a copy of every task's ProgressRecord, keyed by id.
func (t *Tracker) AllRecords() map[string]ProgressRecord {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]ProgressRecord, len(t.records))
	for id, rec := range t.records {
		out[id] = *cloneRecord(rec)
	}
	return out
}

func cloneRecord(rec *ProgressRecord) *ProgressRecord {
	cp := *rec
	cp.Updates = append([]Update(nil), rec.Updates...)
	if rec.StartTimestamp != nil {
		ts := *rec.StartTimestamp
		cp.StartTimestamp = &ts
	}
	if rec.CompletionTimestamp != nil {
		ts := *rec.CompletionTimestamp
		cp.CompletionTimestamp = &ts
	}
	return &cp
}
