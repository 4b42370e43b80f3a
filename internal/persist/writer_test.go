package persist

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/seorec/internal/model"
	"github.com/roach88/seorec/internal/testutil"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testOptions() []Option {
	return []Option{
		WithIDGenerator(testutil.NewListBatchGenerator("batch-0001")),
		WithClock(func() time.Time { return fixedNow }),
	}
}

func onePayload() model.Payload {
	return model.Payload{Recommendations: []model.Recommendation{{
		RecID:    "rec_1",
		Title:    "Add meta description",
		Priority: model.PriorityHigh,
	}}}
}

func TestSave_ConnectivityFailure(t *testing.T) {
	db, mock := newMock(t)
	tx := &fakeTx{}

	mock.ExpectQuery(q("SELECT 1")).WillReturnError(errors.New("disk I/O error"))

	n, err := SaveRecommendations(context.Background(), db, 1, onePayload(), tx, testOptions()...)
	require.Error(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, "Database connection test failed", err.Error())
	assert.True(t, IsKind(err, KindConnectivity))
	assert.Equal(t, 0, tx.begins)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSave_EmptyPayloadIsNoop(t *testing.T) {
	db, mock := newMock(t)
	tx := &fakeTx{}

	expectPing(mock)

	n, err := SaveRecommendations(context.Background(), db, 1, model.Payload{}, tx, testOptions()...)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 0, tx.begins, "empty save must not open a transaction")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSave_UnknownAnalysis(t *testing.T) {
	db, mock := newMock(t)
	tx := &fakeTx{}

	expectPing(mock)
	expectAnalysis(mock, 999, false)

	_, err := SaveRecommendations(context.Background(), db, 999, onePayload(), tx, testOptions()...)
	require.Error(t, err)
	assert.Equal(t, "Analysis ID 999 does not exist in database", err.Error())
	assert.True(t, IsKind(err, KindReferentialIntegrity))
	assert.Equal(t, 0, tx.begins)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSave_AnalysisLookupError(t *testing.T) {
	db, mock := newMock(t)
	tx := &fakeTx{}

	expectPing(mock)
	mock.ExpectQuery(q("SELECT 1 FROM analyses WHERE id = ?")).
		WithArgs(int64(5)).
		WillReturnError(errors.New("no such table: analyses"))

	_, err := SaveRecommendations(context.Background(), db, 5, onePayload(), tx, testOptions()...)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindConnectivity))
	assert.ErrorContains(t, errors.Unwrap(err), "no such table")
}

func TestSave_ValidationGate(t *testing.T) {
	db, mock := newMock(t)
	tx := &fakeTx{}

	expectPing(mock)
	expectAnalysis(mock, 1, true)

	payload := model.Payload{Recommendations: []model.Recommendation{
		{RecID: "ok", Title: "Fine", Priority: model.PriorityLow},
		{RecID: "bad_priority", Title: "Urgent thing", Priority: "urgent"},
		{RecID: "no_title", Priority: model.PriorityMedium},
	}}

	_, err := SaveRecommendations(context.Background(), db, 1, payload, tx, testOptions()...)
	require.Error(t, err)

	var pe *Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, KindValidation, pe.Kind)
	assert.Len(t, pe.Violations, 2, "every violation is reported")
	assert.Contains(t, pe.Message, "Validation errors: ")
	assert.Contains(t, pe.Message, `invalid priority "urgent"`)
	assert.Contains(t, pe.Message, "title is required")

	// No DELETE was issued, so prior data is untouched.
	assert.Equal(t, 0, tx.begins)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSave_EnumCaseVariantsRejected(t *testing.T) {
	db, mock := newMock(t)
	tx := &fakeTx{}

	expectPing(mock)
	expectAnalysis(mock, 1, true)

	payload := model.Payload{Recommendations: []model.Recommendation{{
		RecID:    "rec_caps",
		Title:    "Fix headings",
		Priority: "HIGH",
		Effort:   " QUICK ",
		Status:   "Completed",
	}}}

	_, err := SaveRecommendations(context.Background(), db, 1, payload, tx, testOptions()...)
	require.Error(t, err)

	var pe *Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, KindValidation, pe.Kind)
	assert.Len(t, pe.Violations, 3)
	assert.Contains(t, pe.Message, `invalid priority "HIGH"`)
	assert.Contains(t, pe.Message, `invalid effort " QUICK "`)
	assert.Contains(t, pe.Message, `invalid status "Completed"`)

	// Nothing past the analysis check ran: no transaction, no DELETE.
	assert.Equal(t, 0, tx.begins)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSave_SchemaGuard(t *testing.T) {
	db, mock := newMock(t)
	tx := &fakeTx{}

	expectPing(mock)
	expectAnalysis(mock, 1, true)
	mock.ExpectQuery(q("PRAGMA user_version")).
		WillReturnRows(sqlmock.NewRows([]string{"user_version"}).AddRow(1))

	opts := append(testOptions(), WithSchemaVersionGuard(2))
	_, err := SaveRecommendations(context.Background(), db, 1, onePayload(), tx, opts...)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindSchemaDrift))
	assert.Equal(t, "Database schema version 1 is older than required 2", err.Error())
	assert.Equal(t, 0, tx.begins)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSave_BeginFailure(t *testing.T) {
	db, mock := newMock(t)
	tx := &fakeTx{beginErr: errors.New("database is locked")}

	expectPing(mock)
	expectAnalysis(mock, 1, true)

	_, err := SaveRecommendations(context.Background(), db, 1, onePayload(), tx, testOptions()...)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindTransaction))
	assert.Contains(t, err.Error(), "database is locked")
	assert.Equal(t, 0, tx.rollbacks)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSave_InsertFailureRollsBack(t *testing.T) {
	db, mock := newMock(t)
	tx := &fakeTx{}

	expectPing(mock)
	expectAnalysis(mock, 1, true)
	expectDeletes(mock, 1)
	mock.ExpectExec(q("INSERT INTO recommendations")).
		WillReturnError(errors.New("constraint failed"))

	n, err := SaveRecommendations(context.Background(), db, 1, onePayload(), tx, testOptions()...)
	require.Error(t, err)
	assert.Equal(t, 0, n)
	assert.True(t, IsKind(err, KindTransaction))
	assert.Regexp(t, `^Failed to save recommendations: `, err.Error())
	assert.Contains(t, err.Error(), "constraint failed")
	assert.Equal(t, 1, tx.begins)
	assert.Equal(t, 1, tx.rollbacks)
	assert.Equal(t, 0, tx.commits)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSave_RollbackFailureKeepsCause(t *testing.T) {
	db, mock := newMock(t)
	tx := &fakeTx{rollbackErr: errors.New("rollback exploded")}

	expectPing(mock)
	expectAnalysis(mock, 1, true)
	mock.ExpectExec(q("DELETE FROM recommendation_actions")).
		WillReturnError(errors.New("delete failed"))

	_, err := SaveRecommendations(context.Background(), db, 1, onePayload(), tx, testOptions()...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delete failed")
	assert.NotContains(t, err.Error(), "rollback exploded")
	assert.Equal(t, 1, tx.rollbacks)
}

func TestSave_CommitFailureRollsBack(t *testing.T) {
	db, mock := newMock(t)
	tx := &fakeTx{commitErr: errors.New("disk full")}

	expectPing(mock)
	expectAnalysis(mock, 1, true)
	expectDeletes(mock, 1)
	mock.ExpectExec(q("INSERT INTO recommendations")).
		WillReturnResult(sqlmock.NewResult(10, 1))

	_, err := SaveRecommendations(context.Background(), db, 1, onePayload(), tx, testOptions()...)
	require.Error(t, err)
	assert.True(t, IsKind(err, KindTransaction))
	assert.Contains(t, err.Error(), "commit transaction: disk full")
	assert.Equal(t, 1, tx.commits)
	assert.Equal(t, 1, tx.rollbacks)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSave_StatementSequence(t *testing.T) {
	db, mock := newMock(t)
	tx := &fakeTx{}

	rec := model.Recommendation{
		RecID:         "rec_title",
		Title:         "  Improve title tag ",
		Priority:      model.PriorityHigh,
		Category:      "On-Page",
		Effort:        model.EffortQuick,
		ScoreIncrease: 5,
		Actions: []model.Action{
			{Step: 2, ActionText: "Second"},
			{Step: 1, ActionText: "First", ActionType: "edit"},
		},
		Example:   &model.Example{AfterExample: "<title>Better</title>"},
		Resources: []model.Resource{{Title: "Guide", URL: "https://guide.example"}},
	}

	expectPing(mock)
	expectAnalysis(mock, 3, true)
	expectDeletes(mock, 3)
	mock.ExpectExec(q("INSERT INTO recommendations")).
		WithArgs(int64(3), "rec_title", nil, "Improve title tag", "high", "On-Page", "",
			"quick", "", 5.0, 0.0, "", "pending", "batch-0001", fixedNow).
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectExec(q("INSERT INTO recommendation_actions")).
		WithArgs(int64(42), 1, "First", "edit").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(q("INSERT INTO recommendation_actions")).
		WithArgs(int64(42), 2, "Second", "").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectExec(q("INSERT INTO recommendation_examples")).
		WithArgs(int64(42), nil, "<title>Better</title>").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(q("INSERT INTO recommendation_resources")).
		WithArgs(int64(42), "Guide", "https://guide.example").
		WillReturnResult(sqlmock.NewResult(1, 1))

	n, err := SaveRecommendations(context.Background(), db, 3,
		model.Payload{Recommendations: []model.Recommendation{rec}}, tx, testOptions()...)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, tx.begins)
	assert.Equal(t, 1, tx.commits)
	assert.Equal(t, 0, tx.rollbacks)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderedActions(t *testing.T) {
	tests := []struct {
		name  string
		in    []model.Action
		steps []int
		texts []string
	}{
		{
			name:  "explicit steps sorted",
			in:    []model.Action{{Step: 3, ActionText: "c"}, {Step: 1, ActionText: "a"}, {Step: 2, ActionText: "b"}},
			steps: []int{1, 2, 3},
			texts: []string{"a", "b", "c"},
		},
		{
			name:  "missing steps use position",
			in:    []model.Action{{ActionText: "a"}, {ActionText: "b"}},
			steps: []int{1, 2},
			texts: []string{"a", "b"},
		},
		{
			name:  "ties keep input order",
			in:    []model.Action{{Step: 1, ActionText: "x"}, {Step: 1, ActionText: "y"}},
			steps: []int{1, 1},
			texts: []string{"x", "y"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := orderedActions(tt.in)
			require.Len(t, got, len(tt.steps))
			for i := range got {
				assert.Equal(t, tt.steps[i], got[i].Step)
				assert.Equal(t, tt.texts[i], got[i].ActionText)
			}
		})
	}
}

func TestUUIDv7Generator_Unique(t *testing.T) {
	var g UUIDv7Generator
	a, b := g.Generate(), g.Generate()
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 36)
}
