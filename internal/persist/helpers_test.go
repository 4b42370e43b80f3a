package persist

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

// fakeTx records coordinator calls.
type fakeTx struct {
	begins    int
	commits   int
	rollbacks int

	beginErr    error
	commitErr   error
	rollbackErr error
}

func (f *fakeTx) BeginTransaction(context.Context) (func() error, error) {
	f.begins++
	if f.beginErr != nil {
		return nil, f.beginErr
	}
	return func() error {
		f.rollbacks++
		return f.rollbackErr
	}, nil
}

func (f *fakeTx) CommitTransaction(context.Context) error {
	f.commits++
	return f.commitErr
}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func q(s string) string {
	return regexp.QuoteMeta(s)
}

func expectPing(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(q("SELECT 1")).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
}

func expectAnalysis(mock sqlmock.Sqlmock, id int64, exists bool) {
	rows := sqlmock.NewRows([]string{"1"})
	if exists {
		rows.AddRow(1)
	}
	mock.ExpectQuery(q("SELECT 1 FROM analyses WHERE id = ?")).
		WithArgs(id).
		WillReturnRows(rows)
}

func expectDeletes(mock sqlmock.Sqlmock, id int64) {
	for _, prefix := range []string{
		"DELETE FROM recommendation_actions",
		"DELETE FROM recommendation_examples",
		"DELETE FROM recommendation_resources",
		"DELETE FROM recommendations WHERE analysis_id = ?",
	} {
		mock.ExpectExec(q(prefix)).WithArgs(id).WillReturnResult(sqlmock.NewResult(0, 0))
	}
}

// expectHealthy queues a passing health probe.
func expectHealthy(mock sqlmock.Sqlmock) {
	expectPing(mock)
	mock.ExpectQuery(q("PRAGMA integrity_check")).
		WillReturnRows(sqlmock.NewRows([]string{"integrity_check"}).AddRow("ok"))
	mock.ExpectQuery(q("PRAGMA user_version")).
		WillReturnRows(sqlmock.NewRows([]string{"user_version"}).AddRow(2))
	mock.ExpectQuery(q("SELECT name FROM sqlite_master")).
		WithArgs("recommendations").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("recommendations"))
	mock.ExpectQuery(q("SELECT name FROM pragma_table_info(?)")).
		WithArgs("recommendations").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).
			AddRow("id").AddRow("analysis_id").AddRow("title").AddRow("priority"))
}
