package coordinator

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/antigravity-dev/pec/internal/compiler"
	"github.com/antigravity-dev/pec/internal/progress"
	"github.com/antigravity-dev/pec/internal/store"
)

func TestRehydrateRestoresScheduleAssignmentAndProgress(t *testing.T) {
	db, err := store.Open(filepath.Join(t.TempDir(), "pec.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	c := New(nil, db)
	handle, err := c.CreateProject(context.Background(), "widget", compiler.ProjectTypeGoService, time.Now())
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}
	if _, err := c.SubmitPlan(handle, buildTestPlan(), time.Now(), nil); err != nil {
		t.Fatalf("SubmitPlan failed: %v", err)
	}
	now := time.Now()
	if _, err := handle.UpdateTaskStatus("design", progress.StatusInProgress, nil, "", now); err != nil {
		t.Fatalf("UpdateTaskStatus failed: %v", err)
	}
	if err := db.SaveProgressRecord(handle.ID, mustRecord(t, handle, "design"), now); err != nil {
		t.Fatalf("SaveProgressRecord failed: %v", err)
	}

	fresh := New(nil, db)
	rehydrated, err := fresh.Rehydrate(handle.ID, nil)
	if err != nil {
		t.Fatalf("Rehydrate failed: %v", err)
	}

	if rehydrated.Name != "widget" {
		t.Fatalf("expected name widget, got %s", rehydrated.Name)
	}
	if len(rehydrated.Schedule().CriticalPath) != 3 {
		t.Fatalf("expected restored schedule's critical path to have 3 tasks, got %v", rehydrated.Schedule().CriticalPath)
	}
	rec, ok := rehydrated.Tracker.Record("design")
	if !ok || rec.Status != progress.StatusInProgress {
		t.Fatalf("expected restored progress record in_progress, got %+v ok=%v", rec, ok)
	}
}

func TestRehydrateOfFreshProjectWithNoPlanReturnsBareHandle(t *testing.T) {
	db, err := store.Open(filepath.Join(t.TempDir(), "pec.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	c := New(nil, db)
	handle, err := c.CreateProject(context.Background(), "widget", compiler.ProjectTypeGoService, time.Now())
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}

	fresh := New(nil, db)
	rehydrated, err := fresh.Rehydrate(handle.ID, nil)
	if err != nil {
		t.Fatalf("Rehydrate failed: %v", err)
	}
	if rehydrated.Name != "widget" {
		t.Fatalf("expected name widget, got %s", rehydrated.Name)
	}
	if rehydrated.Schedule() != nil {
		t.Fatalf("expected no schedule on a bare handle, got %+v", rehydrated.Schedule())
	}
	if rehydrated.Tracker != nil {
		t.Fatalf("expected no tracker on a bare handle")
	}

	if _, err := fresh.SubmitPlan(rehydrated, buildTestPlan(), time.Now(), nil); err != nil {
		t.Fatalf("SubmitPlan on rehydrated bare handle failed: %v", err)
	}
}

func mustRecord(t *testing.T, handle *ProjectHandle, taskID string) *progress.ProgressRecord {
	t.Helper()
	rec, ok := handle.Tracker.Record(taskID)
	if !ok {
		t.Fatalf("no record for %s", taskID)
	}
	return &rec
}
