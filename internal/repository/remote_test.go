package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/teacher-eval-api/internal/models"
)

func newRemoteMock(t *testing.T) (*Store, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewRemoteStore(sqlx.NewDb(db, "postgres"), nil), mock, func() { db.Close() }
}

func TestRemoteCollectionListWithConditions(t *testing.T) {
	store, mock, cleanup := newRemoteMock(t)
	defer cleanup()

	rows := sqlmock.NewRows(InstitutionsTable.Columns).
		AddRow("inst-1", "Politécnico", "IPL", []byte(`["m@x.edu"]`), true, "2024/1", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, code, manager_emails, is_evaluation_open, evaluation_period_name, created_at FROM institutions WHERE is_evaluation_open = $1 ORDER BY created_at")).
		WithArgs(true).
		WillReturnRows(rows)

	items, err := store.Institutions.List(context.Background(), Eq("is_evaluation_open", true))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, models.StringList{"m@x.edu"}, items[0].ManagerEmails)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoteCollectionNullCondition(t *testing.T) {
	store, mock, cleanup := newRemoteMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM subjects WHERE institution_id = $1 AND teacher_id IS NULL")).
		WithArgs("inst-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	var teacher *string
	count, err := store.Subjects.Count(context.Background(), Eq("institution_id", "inst-1"), Eq("teacher_id", teacher))
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoteCollectionGetNotFound(t *testing.T) {
	store, mock, cleanup := newRemoteMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("FROM sessions WHERE id = $1 LIMIT 1")).
		WithArgs("sess-1").
		WillReturnRows(sqlmock.NewRows(SessionsTable.Columns))

	_, err := store.Sessions.Get(context.Background(), "sess-1")
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoteCollectionInsertAndUpdate(t *testing.T) {
	store, mock, cleanup := newRemoteMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO sessions (id, user_id, created_at) VALUES ($1, $2, $3)")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE sessions SET user_id = $1, created_at = $2 WHERE id = $3")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	session := &models.Session{ID: "sess-1", UserID: "u1", CreatedAt: time.Now()}
	require.NoError(t, store.Sessions.Insert(context.Background(), session))
	assert.ErrorIs(t, store.Sessions.Update(context.Background(), session), ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoteCollectionUpsertUsesConflictKey(t *testing.T) {
	store, mock, cleanup := newRemoteMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO self_evaluations") + ".*" +
		regexp.QuoteMeta("ON CONFLICT (teacher_id) DO UPDATE SET institution_id = EXCLUDED.institution_id")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.SelfEvaluations.Upsert(context.Background(), &models.SelfEvaluation{ID: "se_t1", TeacherID: "t1"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoteCollectionUpsertManyTransaction(t *testing.T) {
	store, mock, cleanup := newRemoteMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO scores")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO scores")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.Scores.UpsertMany(context.Background(), []models.CombinedScore{
		{ID: "score_t1", TeacherID: "t1"},
		{ID: "score_t2", TeacherID: "t2"},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoteCollectionUpsertManyRollsBack(t *testing.T) {
	store, mock, cleanup := newRemoteMock(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO scores")).WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	err := store.Scores.UpsertMany(context.Background(), []models.CombinedScore{{ID: "score_t1", TeacherID: "t1"}})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoteCollectionDelete(t *testing.T) {
	store, mock, cleanup := newRemoteMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = $1")).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = $1")).
		WithArgs("u2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.Users.Delete(context.Background(), "u1"))
	assert.ErrorIs(t, store.Users.Delete(context.Background(), "u2"), ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoteStorePingTableMissing(t *testing.T) {
	store, mock, cleanup := newRemoteMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users LIMIT 1")).
		WillReturnError(&pq.Error{Code: "42P01", Message: `relation "users" does not exist`})

	err := store.Ping(context.Background())
	assert.ErrorIs(t, err, ErrTableMissing)
	assert.Equal(t, ModeRemote, store.Mode())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoteStorePingEmptyTable(t *testing.T) {
	store, mock, cleanup := newRemoteMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users LIMIT 1")).
		WillReturnRows(sqlmock.NewRows(UsersTable.Columns))

	assert.NoError(t, store.Ping(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}
