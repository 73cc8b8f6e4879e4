package favorites

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock, db
}

func TestAdd(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	q := `(?s)^INSERT\s+INTO\s+favorites\s*\(device_id,\s*store_id\)\s*VALUES\s*\(\$1,\s*\$2\)\s*ON\s+CONFLICT.*DO\s+NOTHING$`
	mock.ExpectExec(q).WithArgs("d1", "s1").WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Add(context.Background(), "d1", "s1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAdd_DBError(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectExec(`INSERT INTO favorites`).WillReturnError(errors.New("db down"))

	err := repo.Add(context.Background(), "d1", "s1")
	assert.ErrorContains(t, err, "db error: db down")
}

func TestRemove(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	q := `(?s)^DELETE\s+FROM\s+favorites\s+WHERE\s+device_id\s*=\s*\$1\s+AND\s+store_id\s*=\s*\$2$`
	mock.ExpectExec(q).WithArgs("d1", "s1").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Remove(context.Background(), "d1", "s1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordEvent(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	q := `(?s)^INSERT\s+INTO\s+favorite_events\s*\(device_id,\s*store_id,\s*kind\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)$`
	mock.ExpectExec(q).WithArgs("d1", "s1", EventRemoved).WillReturnResult(sqlmock.NewResult(7, 1))

	require.NoError(t, repo.RecordEvent(context.Background(), "d1", "s1", EventRemoved))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListByDevice(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)
	now := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"device_id", "store_id", "created_at"}).
		AddRow("d1", "s2", now).
		AddRow("d1", "s1", now.Add(-time.Hour))
	mock.ExpectQuery(`(?s)^SELECT\s+device_id,\s*store_id,\s*created_at\s+FROM\s+favorites`).
		WithArgs("d1").WillReturnRows(rows)

	got, err := repo.ListByDevice(context.Background(), "d1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "s2", got[0].StoreID)
	assert.Equal(t, now, got[0].CreatedAt)
}

func TestListByDevice_QueryError(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectQuery(`SELECT`).WillReturnError(errors.New("boom"))

	_, err := repo.ListByDevice(context.Background(), "d1")
	assert.ErrorContains(t, err, "db error: boom")
}
