package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/testsuite"
)

func TestDispatcherWorkflowRunsPhasesInOrderAndTallies(t *testing.T) {
	s := testsuite.WorkflowTestSuite{}
	env := s.NewTestWorkflowEnvironment()
	var a *Activities

	env.OnActivity(a.DispatchInstructionActivity, mock.Anything, WorkItem{TaskID: "design", Agent: "solution_architect"}).
		Return(DispatchOutcome{TaskID: "design", Succeeded: true, ResultSummary: "done"}, nil)
	env.OnActivity(a.DispatchInstructionActivity, mock.Anything, WorkItem{TaskID: "implement", Agent: "full_stack_developer"}).
		Return(DispatchOutcome{TaskID: "implement", Succeeded: false, Err: "build failed"}, nil)
	env.OnActivity(a.RecordOutcomeActivity, mock.Anything, mock.Anything).Return(nil)

	req := DispatchRequest{
		ProjectID: "p1",
		Phases: []PhaseInstructions{
			{PhaseID: "phase-0", Instructions: []WorkItem{{TaskID: "design", Agent: "solution_architect"}}},
			{PhaseID: "phase-1", Instructions: []WorkItem{{TaskID: "implement", Agent: "full_stack_developer"}}},
		},
	}

	env.ExecuteWorkflow(DispatcherWorkflow, req)

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var result DispatchRunResult
	require.NoError(t, env.GetWorkflowResult(&result))
	require.Equal(t, 2, result.PhasesRun)
	require.Equal(t, 1, result.TasksCompleted)
	require.Equal(t, 1, result.TasksFailed)
}
