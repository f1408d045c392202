package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/testsuite"

	"github.com/antigravity-dev/pec/internal/compiler"
	"github.com/antigravity-dev/pec/internal/coordinator"
	"github.com/antigravity-dev/pec/internal/plan"
)

type fakeDispatcher struct {
	outcome DispatchOutcome
	err     error
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, taskID, agent string) (DispatchOutcome, error) {
	return f.outcome, f.err
}

func testHandle(t *testing.T) *coordinator.ProjectHandle {
	t.Helper()
	c := coordinator.New(nil, nil)
	handle, err := c.CreateProject(context.Background(), "widget", compiler.ProjectTypeGoService, time.Now())
	require.NoError(t, err)

	p := &plan.Plan{
		Name:       "Widget",
		Milestones: []plan.Milestone{{ID: "m1", Name: "Build"}},
		Tasks:      []plan.Task{{ID: "design", MilestoneID: "m1", Name: "design the widget api"}},
	}
	_, err = c.SubmitPlan(handle, p, time.Now(), nil)
	require.NoError(t, err)
	return handle
}

func TestDispatchInstructionActivityMarksInProgress(t *testing.T) {
	handle := testHandle(t)
	disp := &fakeDispatcher{outcome: DispatchOutcome{TaskID: "design", Succeeded: true, ResultSummary: "ok"}}
	a := &Activities{Handle: handle, Dispatcher: disp}

	ts := testsuite.WorkflowTestSuite{}
	actEnv := ts.NewTestActivityEnvironment()

	val, err := actEnv.ExecuteActivity(a.DispatchInstructionActivity, WorkItem{TaskID: "design", Agent: "solution_architect"})
	require.NoError(t, err)

	var outcome DispatchOutcome
	require.NoError(t, val.Get(&outcome))
	require.True(t, outcome.Succeeded)

	rec, ok := handle.Tracker.Record("design")
	require.True(t, ok)
	require.NotNil(t, rec.StartTimestamp)
}

func TestRecordOutcomeActivityCompletesTaskOnSuccess(t *testing.T) {
	handle := testHandle(t)
	a := &Activities{Handle: handle, Dispatcher: &fakeDispatcher{outcome: DispatchOutcome{TaskID: "design", Succeeded: true}}}

	ts := testsuite.WorkflowTestSuite{}
	actEnv := ts.NewTestActivityEnvironment()

	_, err := actEnv.ExecuteActivity(a.DispatchInstructionActivity, WorkItem{TaskID: "design", Agent: "solution_architect"})
	require.NoError(t, err)

	_, err = actEnv.ExecuteActivity(a.RecordOutcomeActivity, DispatchOutcome{TaskID: "design", Succeeded: true, ResultSummary: "shipped"})
	require.NoError(t, err)

	rec, _ := handle.Tracker.Record("design")
	require.Equal(t, "completed", string(rec.Status))
}
