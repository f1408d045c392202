package coordinator

import (
	"context"
	"testing"
	"time"

	"github.com/antigravity-dev/pec/internal/compiler"
	"github.com/antigravity-dev/pec/internal/events"
	"github.com/antigravity-dev/pec/internal/plan"
	"github.com/antigravity-dev/pec/internal/progress"
)

func buildTestPlan() *plan.Plan {
	return &plan.Plan{
		Name:       "Widget",
		Milestones: []plan.Milestone{{ID: "m1", Name: "Build"}},
		Tasks: []plan.Task{
			{ID: "design", MilestoneID: "m1", Name: "design the widget api", Effort: plan.EffortMedium},
			{ID: "implement", MilestoneID: "m1", Name: "implement the widget api", Effort: plan.EffortHigh, DependsOn: []string{"design"}},
			{ID: "test", MilestoneID: "m1", Name: "test the widget api", Effort: plan.EffortLow, DependsOn: []string{"implement"}},
		},
	}
}

func TestSubmitPlanBuildsScheduleAndAssignment(t *testing.T) {
	c := New(nil, nil)
	handle, err := c.CreateProject(context.Background(), "widget", compiler.ProjectTypeGoService, time.Now())
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}

	res, err := c.SubmitPlan(handle, buildTestPlan(), time.Now(), nil)
	if err != nil {
		t.Fatalf("SubmitPlan failed: %v", err)
	}
	if len(res.Schedule.CriticalPath) != 3 {
		t.Fatalf("expected all 3 tasks on the critical path for a linear chain, got %v", res.Schedule.CriticalPath)
	}
	if len(res.Result.AgentOfTask) != 3 {
		t.Fatalf("expected an agent assignment for every task, got %+v", res.Result.AgentOfTask)
	}
}

func TestCompleteTaskPublishesEventOnBus(t *testing.T) {
	c := New(nil, nil)
	handle, _ := c.CreateProject(context.Background(), "widget", compiler.ProjectTypeGoService, time.Now())
	if _, err := c.SubmitPlan(handle, buildTestPlan(), time.Now(), nil); err != nil {
		t.Fatalf("SubmitPlan failed: %v", err)
	}

	ch, unsubscribe := handle.Subscribe(8)
	defer unsubscribe()

	now := time.Now()
	if _, err := handle.UpdateTaskStatus("design", progress.StatusInProgress, nil, "", now); err != nil {
		t.Fatalf("UpdateTaskStatus failed: %v", err)
	}
	if _, err := handle.CompleteTask("design", "done", now.Add(time.Hour)); err != nil {
		t.Fatalf("CompleteTask failed: %v", err)
	}

	var sawStatusChange, sawCompletion bool
	for i := 0; i < 4; i++ {
		select {
		case evt := <-ch:
			switch evt.Kind {
			case events.KindTaskStatusChanged:
				sawStatusChange = true
			case events.KindTaskCompleted:
				sawCompletion = true
			}
		case <-time.After(time.Second):
		}
	}
	if !sawStatusChange || !sawCompletion {
		t.Fatalf("expected both status-changed and completed events, got status=%v completed=%v", sawStatusChange, sawCompletion)
	}
}

func TestRegisterArtifactAndMaterialize(t *testing.T) {
	c := New(nil, nil)
	handle, _ := c.CreateProject(context.Background(), "widget", compiler.ProjectTypeGeneric, time.Now())

	handle.RegisterArtifact(compiler.Artifact{
		ID: "a1", Name: "README", ComponentType: compiler.ComponentDocumentation,
		FilePath: "README.md", Content: "# widget\n", Timestamp: time.Now(),
	})

	dir := t.TempDir() + "/out"
	result, err := handle.Materialize(context.Background(), dir, time.Now())
	if err != nil {
		t.Fatalf("Materialize failed: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected successful materialization, got %+v", result)
	}
}

func TestCircularDependencyPassesValidatePlanButFailsAssertAcyclic(t *testing.T) {
	c := New(nil, nil)
	p := &plan.Plan{
		Name:       "Cyclic",
		Milestones: []plan.Milestone{{ID: "m1", Name: "M"}},
		Tasks: []plan.Task{
			{ID: "a", MilestoneID: "m1", DependsOn: []string{"b"}},
			{ID: "b", MilestoneID: "m1", DependsOn: []string{"a"}},
		},
	}
	if _, err := c.ValidatePlan(p); err != nil {
		t.Fatalf("unexpected ingestion error (cycle is caught at DAG build, not ingest): %v", err)
	}

	tasks, _, _ := plan.IngestPlan(p)
	dag := plan.BuildDAG(tasks)
	if err := dag.AssertAcyclic(); err == nil {
		t.Fatal("expected AssertAcyclic to reject the circular dependency")
	}
}
