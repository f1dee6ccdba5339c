package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestConsumeByHashSingleWinner(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTokenRepo(db)
	hash := "0cc175b9c0f1b6a831c399e269772661cadeadbeef000000000000000000aaaa"

	mock.ExpectExec("DELETE FROM refresh_tokens").WithArgs(hash).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM refresh_tokens").WithArgs(hash).
		WillReturnResult(sqlmock.NewResult(0, 0))

	consumed, err := repo.ConsumeByHash(context.Background(), hash)
	require.NoError(t, err)
	require.True(t, consumed, "first delete removes the row")

	consumed, err = repo.ConsumeByHash(context.Background(), hash)
	require.NoError(t, err)
	require.False(t, consumed, "second delete finds nothing to remove")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByHashUnknownToken(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTokenRepo(db)

	mock.ExpectQuery("SELECT user_id, expires_at FROM refresh_tokens").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, _, err := repo.FindByHash(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByHashReturnsOwnerAndExpiry(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTokenRepo(db)
	exp := time.Date(2026, 9, 8, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT user_id, expires_at FROM refresh_tokens").
		WithArgs("stored-hash").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at"}).AddRow(42, exp))

	userID, expiresAt, err := repo.FindByHash(context.Background(), "stored-hash")
	require.NoError(t, err)
	require.Equal(t, uint64(42), userID)
	require.True(t, exp.Equal(expiresAt))
	require.NoError(t, mock.ExpectationsWereMet())
}
