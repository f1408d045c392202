package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/antigravity-dev/pec/internal/assignment"
	"github.com/antigravity-dev/pec/internal/compiler"
	"github.com/antigravity-dev/pec/internal/plan"
	"github.com/antigravity-dev/pec/internal/progress"
	"github.com/antigravity-dev/pec/internal/scheduler"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pec.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateProjectAndListIDs(t *testing.T) {
	s := openTestStore(t)
	now := time.Now()

	if err := s.CreateProject("p1", "Widget", compiler.ProjectTypeGoService, now); err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}
	if err := s.CreateProject("p2", "Gadget", compiler.ProjectTypeGeneric, now.Add(time.Second)); err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}

	ids, err := s.ProjectIDs()
	if err != nil {
		t.Fatalf("ProjectIDs failed: %v", err)
	}
	if len(ids) != 2 || ids[0] != "p1" || ids[1] != "p2" {
		t.Fatalf("unexpected project ids: %v", ids)
	}
}

func TestSaveAndLoadPlanRoundTrips(t *testing.T) {
	s := openTestStore(t)
	now := time.Now()
	s.CreateProject("p1", "Widget", compiler.ProjectTypeGeneric, now)

	p := &plan.Plan{Name: "Widget", Milestones: []plan.Milestone{{ID: "m1", Name: "M1"}}}
	tasks := []plan.Task{{ID: "t1", MilestoneID: "m1", Name: "Design", Effort: plan.EffortMedium}}

	if err := s.SavePlan("p1", p, tasks, now); err != nil {
		t.Fatalf("SavePlan failed: %v", err)
	}
	loadedPlan, loadedTasks, err := s.LoadPlan("p1")
	if err != nil {
		t.Fatalf("LoadPlan failed: %v", err)
	}
	if loadedPlan.Name != "Widget" || len(loadedTasks) != 1 || loadedTasks[0].ID != "t1" {
		t.Fatalf("unexpected round trip: %+v %+v", loadedPlan, loadedTasks)
	}
}

func TestSaveAndLoadScheduleRoundTrips(t *testing.T) {
	s := openTestStore(t)
	now := time.Now()
	s.CreateProject("p1", "Widget", compiler.ProjectTypeGeneric, now)

	sched := &scheduler.Schedule{PlanID: "p1", Timeline: scheduler.Timeline{TotalDurationDays: 10}}
	if err := s.SaveSchedule("p1", sched, now); err != nil {
		t.Fatalf("SaveSchedule failed: %v", err)
	}
	loaded, err := s.LoadSchedule("p1")
	if err != nil {
		t.Fatalf("LoadSchedule failed: %v", err)
	}
	if loaded.Timeline.TotalDurationDays != 10 {
		t.Fatalf("unexpected schedule round trip: %+v", loaded)
	}
}

func TestSaveAndLoadAssignmentRoundTrips(t *testing.T) {
	s := openTestStore(t)
	now := time.Now()
	s.CreateProject("p1", "Widget", compiler.ProjectTypeGeneric, now)

	result := &assignment.Result{AgentOfTask: map[string]string{"t1": "full_stack_developer"}}
	if err := s.SaveAssignment("p1", result, now); err != nil {
		t.Fatalf("SaveAssignment failed: %v", err)
	}
	loaded, err := s.LoadAssignment("p1")
	if err != nil {
		t.Fatalf("LoadAssignment failed: %v", err)
	}
	if loaded.AgentOfTask["t1"] != "full_stack_developer" {
		t.Fatalf("unexpected assignment round trip: %+v", loaded)
	}
}

func TestSaveAndLoadProgressRecordsRoundTrip(t *testing.T) {
	s := openTestStore(t)
	now := time.Now()
	s.CreateProject("p1", "Widget", compiler.ProjectTypeGeneric, now)

	rec := &progress.ProgressRecord{TaskID: "t1", Status: progress.StatusInProgress, CompletionPercentage: 40}
	if err := s.SaveProgressRecord("p1", rec, now); err != nil {
		t.Fatalf("SaveProgressRecord failed: %v", err)
	}
	rec.CompletionPercentage = 75
	if err := s.SaveProgressRecord("p1", rec, now.Add(time.Minute)); err != nil {
		t.Fatalf("SaveProgressRecord (update) failed: %v", err)
	}

	records, err := s.LoadProgressRecords("p1")
	if err != nil {
		t.Fatalf("LoadProgressRecords failed: %v", err)
	}
	if len(records) != 1 || records[0].CompletionPercentage != 75 {
		t.Fatalf("expected upsert to replace the record, got %+v", records)
	}
}

func TestSaveAndLoadArtifactsRoundTrip(t *testing.T) {
	s := openTestStore(t)
	now := time.Now()
	s.CreateProject("p1", "Widget", compiler.ProjectTypeGeneric, now)

	art := compiler.Artifact{ID: "a1", Name: "index", ComponentType: compiler.ComponentCode, FilePath: "src/index.go", Timestamp: now}
	if err := s.SaveArtifact("p1", art, now); err != nil {
		t.Fatalf("SaveArtifact failed: %v", err)
	}

	artifacts, err := s.LoadArtifacts("p1")
	if err != nil {
		t.Fatalf("LoadArtifacts failed: %v", err)
	}
	if len(artifacts) != 1 || artifacts[0].FilePath != "src/index.go" {
		t.Fatalf("unexpected artifacts round trip: %+v", artifacts)
	}
}

func TestLoadPlanMissingProjectReturnsError(t *testing.T) {
	s := openTestStore(t)
	_, _, err := s.LoadPlan("nope")
	if err == nil {
		t.Fatal("expected error loading plan for unknown project")
	}
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLoadProjectMetaRoundTrips(t *testing.T) {
	s := openTestStore(t)
	now := time.Now()
	if err := s.CreateProject("p1", "Widget", compiler.ProjectTypeGoService, now); err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}

	meta, err := s.LoadProjectMeta("p1")
	if err != nil {
		t.Fatalf("LoadProjectMeta failed: %v", err)
	}
	if meta.Name != "Widget" || meta.ProjectType != compiler.ProjectTypeGoService {
		t.Fatalf("unexpected project meta: %+v", meta)
	}
}

func TestLoadProjectMetaMissingProjectReturnsError(t *testing.T) {
	s := openTestStore(t)
	_, err := s.LoadProjectMeta("nope")
	if err == nil {
		t.Fatal("expected error loading meta for unknown project")
	}
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
