package progress

import "testing"

func TestRestoreRecordsAppliesPersistedStateAndIgnoresUnknownTasks(t *testing.T) {
	tracker, _, _ := buildTestTracker(t)

	tracker.RestoreRecords([]*ProgressRecord{
		{TaskID: "t1", Status: StatusCompleted, CompletionPercentage: 100},
		{TaskID: "ghost", Status: StatusCompleted, CompletionPercentage: 100},
	})

	rec, ok := tracker.Record("t1")
	if !ok || rec.Status != StatusCompleted {
		t.Fatalf("expected t1 restored to COMPLETED, got %+v ok=%v", rec, ok)
	}

	rec2, _ := tracker.Record("t2")
	if rec2.Status != StatusPending {
		t.Fatalf("expected t2 to keep its PENDING default, got %s", rec2.Status)
	}

	if _, ok := tracker.Record("ghost"); ok {
		t.Fatal("expected unknown task id to be ignored, not inserted")
	}
}
