package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/seorec/internal/model"
)

func runFixture(t *testing.T, name string) *Result {
	t.Helper()
	scenario, err := LoadScenario("testdata/scenarios/" + name + ".yaml")
	require.NoError(t, err)
	result, err := Run(scenario)
	require.NoError(t, err)
	return result
}

func TestRun_Fixtures(t *testing.T) {
	for _, name := range []string{
		"replace_and_read",
		"atomic_failure",
		"validation_gate",
		"reader_never_throws",
		"status_update",
	} {
		t.Run(name, func(t *testing.T) {
			result := runFixture(t, name)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Empty(t, result.Errors)
		})
	}
}

func TestRun_AtomicFailureTrace(t *testing.T) {
	result := runFixture(t, "atomic_failure")
	require.Len(t, result.Trace, 3)

	failed := result.Trace[1]
	assert.Equal(t, "TRANSACTION", failed.Outcome)
	assert.Contains(t, failed.Message, "Failed to save recommendations: ")
	assert.Nil(t, failed.Saved)

	state := result.State["1"]
	require.Len(t, state, 1)
	assert.Equal(t, "rec_keep", state[0].RecID)
	assert.Equal(t, "batch-0001", state[0].BatchID)
}

func TestRun_StatusUpdateTrace(t *testing.T) {
	result := runFixture(t, "status_update")

	require.Len(t, result.State, 2)
	assert.Equal(t, string(model.StatusInProgress), result.State["1"][0].Status)
	assert.Equal(t, string(model.StatusPending), result.State["2"][0].Status)
}

func TestRun_ExpectMismatchFails(t *testing.T) {
	saved := 5
	scenario := &Scenario{
		Name:        "mismatch",
		Description: "expectations that cannot hold",
		Analyses:    []string{"https://x.example"},
		Flow: []FlowStep{
			{
				Op:       OpSave,
				Analysis: 1,
				Recommendations: []model.Recommendation{
					{RecID: "r", Title: "t", Priority: model.PriorityLow},
				},
				Expect: &ExpectClause{Saved: &saved},
			},
			{
				Op:       OpSave,
				Analysis: 1,
				Recommendations: []model.Recommendation{
					{RecID: "r", Title: "t", Priority: "urgent"},
				},
			},
			{
				Op:       OpRead,
				Analysis: 1,
				Expect:   &ExpectClause{Order: []string{"other"}},
			},
		},
		Assertions: []Assertion{
			{Type: AssertRowCount, Table: "recommendations", Count: 3},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 4)
	assert.Contains(t, result.Errors[0], "expected saved=5, got 1")
	assert.Contains(t, result.Errors[1], "unexpected failure VALIDATION")
	assert.Contains(t, result.Errors[2], "expected order [other], got [r]")
	assert.Contains(t, result.Errors[3], "Assertion failed: row_count")
}

func TestRun_SetStatusUnknownRecommendation(t *testing.T) {
	scenario := &Scenario{
		Name:        "missing_rec",
		Description: "set_status on a rec that does not exist",
		Analyses:    []string{"https://x.example"},
		Flow: []FlowStep{
			{Op: OpSetStatus, Analysis: 1, RecID: "ghost", Status: "completed"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Equal(t, "error", result.Trace[0].Outcome)
	assert.Contains(t, result.Trace[0].Message, "recommendation ghost not found")
}

func TestRun_IsolatedDatabases(t *testing.T) {
	first := runFixture(t, "validation_gate")
	second := runFixture(t, "validation_gate")

	assert.Equal(t, first.Trace, second.Trace)
	assert.Equal(t, first.State, second.State)
}

func TestRun_RejectsNonIntAnalysis(t *testing.T) {
	for _, op := range []string{OpSave, OpSetStatus} {
		t.Run(op, func(t *testing.T) {
			scenario := &Scenario{
				Name:        "int64_analysis",
				Description: "analysis built in Go as int64",
				Analyses:    []string{"https://x.example"},
				Flow: []FlowStep{{
					Op:       op,
					Analysis: int64(1),
					RecID:    "r",
					Status:   "completed",
					Recommendations: []model.Recommendation{
						{RecID: "r", Title: "t", Priority: model.PriorityLow},
					},
				}},
			}

			var result *Result
			var err error
			require.NotPanics(t, func() { result, err = Run(scenario) })
			require.Error(t, err)
			assert.Nil(t, result)
			assert.Contains(t, err.Error(), "integer analysis")
		})
	}
}

func TestRun_NilScenario(t *testing.T) {
	_, err := Run(nil)
	require.Error(t, err)
}
