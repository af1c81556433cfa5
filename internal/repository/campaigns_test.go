package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	rawDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = rawDB.Close() })
	return sqlx.NewDb(rawDB, "mysql"), mock
}

func TestGetByIDNoRows(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCampaignsRepository(db)

	mock.ExpectQuery("SELECT id, account_id").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	c, err := repo.GetByID(context.Background(), 42)
	require.NoError(t, err, "missing campaign is nil, not an error")
	assert.Nil(t, c)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCampaignsRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "account_id", "inbox_id", "name", "status", "daily_limit",
		"messages_sent_today", "last_reset_at", "paused_at", "pause_reason",
		"resume_at", "created_at", "updated_at",
	}).AddRow(1, 1, 1, "Spring Sale", "active", 500, 120, now, nil, nil, nil, now, now)

	mock.ExpectQuery("SELECT id, account_id").WithArgs(int64(1)).WillReturnRows(rows)

	c, err := repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "Spring Sale", c.Name)
	assert.Equal(t, 120, c.MessagesSentToday)
}

func TestIncrementSentTodayIsAtomic(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCampaignsRepository(db)

	// the increment must happen in SQL, not read-modify-write
	mock.ExpectExec(`SET messages_sent_today = messages_sent_today \+ \?`).
		WithArgs(25, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.IncrementSentToday(context.Background(), 1, 25))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResetQuotaWindow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCampaignsRepository(db)

	at := time.Now()
	mock.ExpectExec(`SET messages_sent_today = 0, last_reset_at = \?`).
		WithArgs(at, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.ResetQuotaWindow(context.Background(), 1, at))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkPausedWithinCallerTx(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCampaignsRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`SET status = 'paused'`).
		WithArgs(sqlmock.AnyArg(), "too many blocks", sqlmock.AnyArg(), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)

	at := time.Now()
	resume := at.Add(time.Hour)
	require.NoError(t, repo.MarkPaused(context.Background(), tx, 1, "too many blocks", at, &resume))
	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkActiveWithoutTxOpensOne(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCampaignsRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`SET status = 'active', paused_at = NULL`).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.MarkActive(context.Background(), nil, 1))
	require.NoError(t, mock.ExpectationsWereMet())
}
