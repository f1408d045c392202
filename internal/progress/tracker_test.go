package progress

import (
	"testing"
	"time"

	"github.com/antigravity-dev/pec/internal/assignment"
	"github.com/antigravity-dev/pec/internal/plan"
	"github.com/antigravity-dev/pec/internal/scheduler"
)

func buildTestTracker(t *testing.T) (*Tracker, *plan.DAG, *scheduler.Schedule) {
	t.Helper()
	tasks := []plan.Task{
		{ID: "t1", MilestoneID: "m1", Effort: plan.EffortMedium},
		{ID: "t2", MilestoneID: "m1", Effort: plan.EffortMedium},
		{ID: "t3", MilestoneID: "m1", Effort: plan.EffortMedium},
	}
	g := plan.BuildDAG(tasks)
	sched, err := scheduler.BuildSchedule("p1", g)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	asg := &assignment.Result{AgentOfTask: map[string]string{}}
	milestones := []plan.Milestone{{ID: "m1", Name: "M"}}
	tracker := NewTracker(g, sched, asg, milestones, nil)
	return tracker, g, sched
}

func TestStateMachineRejectsIllegalTransition(t *testing.T) {
	tracker, _, _ := buildTestTracker(t)
	now := time.Now()

	if _, err := tracker.UpdateTaskStatus("t1", StatusCompleted, nil, "", now); err == nil {
		t.Fatal("expected illegal transition PENDING -> COMPLETED to be rejected")
	}
}

func TestStateMachineHappyPath(t *testing.T) {
	tracker, _, _ := buildTestTracker(t)
	now := time.Now()

	if _, err := tracker.UpdateTaskStatus("t1", StatusInProgress, nil, "", now); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec, _ := tracker.Record("t1")
	if rec.StartTimestamp == nil {
		t.Fatal("expected start_timestamp to be set on first IN_PROGRESS")
	}

	if _, err := tracker.CompleteTask("t1", "done", now.Add(time.Hour)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec, _ = tracker.Record("t1")
	if rec.Status != StatusCompleted || rec.CompletionPercentage != 100 {
		t.Fatalf("expected COMPLETED at 100%%, got %+v", rec)
	}
}

func TestReopenThenCompleteAgain(t *testing.T) {
	tracker, _, _ := buildTestTracker(t)
	now := time.Now()

	tracker.UpdateTaskStatus("t1", StatusInProgress, nil, "", now)
	tracker.CompleteTask("t1", "done", now.Add(time.Hour))
	if _, err := tracker.ReopenTask("t1", "rejected by reviewer", now.Add(2*time.Hour)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := tracker.CompleteTask("t1", "done again", now.Add(3*time.Hour)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rec, _ := tracker.Record("t1")
	if len(rec.Updates) < 3 {
		t.Fatalf("expected at least 3 updates, got %d", len(rec.Updates))
	}
	if rec.Status != StatusCompleted {
		t.Fatalf("expected final status COMPLETED, got %s", rec.Status)
	}
}

func TestMilestoneRollupS5(t *testing.T) {
	tracker, _, _ := buildTestTracker(t)
	now := time.Now()

	tracker.UpdateTaskStatus("t1", StatusInProgress, nil, "", now)
	tracker.CompleteTask("t1", "done", now)
	half := 50.0
	tracker.UpdateTaskStatus("t2", StatusInProgress, &half, "", now)

	proj := tracker.GetProjectProgress()
	if len(proj.Milestones) != 1 {
		t.Fatalf("expected 1 milestone summary, got %d", len(proj.Milestones))
	}
	m := proj.Milestones[0]
	if m.Completion != 50 {
		t.Fatalf("expected milestone completion 50, got %v", m.Completion)
	}
	if m.Status != StatusInProgress {
		t.Fatalf("expected milestone status IN_PROGRESS, got %s", m.Status)
	}
}

func TestUnknownTaskError(t *testing.T) {
	tracker, _, _ := buildTestTracker(t)
	_, err := tracker.UpdateTaskStatus("nope", StatusInProgress, nil, "", time.Now())
	if err == nil {
		t.Fatal("expected unknown task error")
	}
}
