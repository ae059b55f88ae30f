package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAccountRepo(mock)
	now := time.Now().UTC().Truncate(time.Microsecond)

	mock.ExpectQuery("SELECT id, wallet_balance, updated_at FROM profiles").
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "wallet_balance", "updated_at"}).AddRow("user-1", int64(75000), now))

	acc, err := repo.GetByID(context.Background(), "user-1")
	require.NoError(t, err)
	require.NotNil(t, acc)
	assert.Equal(t, int64(75000), acc.WalletBalance)

	mock.ExpectQuery("SELECT id, wallet_balance, updated_at FROM profiles").
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)

	acc, err = repo.GetByID(context.Background(), "ghost")
	assert.NoError(t, err)
	assert.Nil(t, acc)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_GetBalanceForUpdate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAccountRepo(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT wallet_balance FROM profiles WHERE id = \\$1 FOR UPDATE").
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"wallet_balance"}).AddRow(int64(10000)))
	mock.ExpectQuery("SELECT wallet_balance FROM profiles WHERE id = \\$1 FOR UPDATE").
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)

	dbTx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	balance, err := repo.GetBalanceForUpdate(context.Background(), dbTx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(10000), balance)

	_, err = repo.GetBalanceForUpdate(context.Background(), dbTx, "ghost")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountRepo_UpdateBalance(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAccountRepo(mock)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE profiles SET wallet_balance").
		WithArgs(int64(60000), pgxmock.AnyArg(), "user-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE profiles SET wallet_balance").
		WithArgs(int64(60000), pgxmock.AnyArg(), "ghost").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	dbTx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	assert.NoError(t, repo.UpdateBalance(context.Background(), dbTx, "user-1", 60000))
	assert.ErrorContains(t, repo.UpdateBalance(context.Background(), dbTx, "ghost", 60000), "profile not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}
