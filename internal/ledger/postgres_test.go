package ledger

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

func TestPostgresLedgerLoad(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rows := pgxmock.NewRows([]string{"page_url"}).
		AddRow("https://steamcommunity.com/sharedfiles/filedetails/?id=1").
		AddRow("https://steamcommunity.com/sharedfiles/filedetails/?id=2")
	mock.ExpectQuery("SELECT page_url FROM posted_screenshots").WillReturnRows(rows)

	l := NewPostgresLedgerWithDB(mock)
	require.NoError(t, l.Load(context.Background()))
	require.Equal(t, 2, l.Size())
	require.True(t, l.Contains("https://steamcommunity.com/sharedfiles/filedetails/?id=1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLedgerPersistUpserts(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	l := NewPostgresLedgerWithDB(mock)
	l.Add("url-1")
	l.Add("url-1")

	mock.ExpectExec("INSERT INTO posted_screenshots").
		WithArgs("url-1").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, l.Persist(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLedgerReset(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	l := NewPostgresLedgerWithDB(mock)
	l.Add("url-1")

	mock.ExpectExec("DELETE FROM posted_screenshots").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, l.Reset(context.Background()))
	require.Zero(t, l.Size())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLedgerPersistFailureKeepsMemoryIntact(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	l := NewPostgresLedgerWithDB(mock)
	l.Add("url-1")

	mock.ExpectExec("INSERT INTO posted_screenshots").
		WithArgs("url-1").
		WillReturnError(context.DeadlineExceeded)

	require.Error(t, l.Persist(context.Background()))
	require.True(t, l.Contains("url-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
