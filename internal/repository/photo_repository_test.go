package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestDuplicateReportGroupsSharedHashes(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPhotoRepo(db)

	rows := sqlmock.NewRows([]string{"sha256_hash", "registration_count", "registration_ids"}).
		AddRow("9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08", 2, "4,9").
		AddRow("2c26b46b68ffc68ff99b453c1d30413413422d706483bfa0f98a5e886266e7ae", 2, "3,17")
	mock.ExpectQuery("SELECT sha256_hash").WillReturnRows(rows)

	groups, err := repo.DuplicateReport(context.Background())
	require.NoError(t, err)
	require.Len(t, groups, 2)
	require.Equal(t, 2, groups[0].RegistrationCount)
	require.Equal(t, "4,9", groups[0].RegistrationIDs)
	require.Equal(t, "9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08", groups[0].Hash)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDuplicateReportNoSharedHashes(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPhotoRepo(db)

	mock.ExpectQuery("SELECT sha256_hash").
		WillReturnRows(sqlmock.NewRows([]string{"sha256_hash", "registration_count", "registration_ids"}))

	groups, err := repo.DuplicateReport(context.Background())
	require.NoError(t, err)
	require.Empty(t, groups)
	require.NoError(t, mock.ExpectationsWereMet())
}
