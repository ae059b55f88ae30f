package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"klikjasa-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWalletTransaction() *domain.WalletTransaction {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return domain.NewTopup("3f2a9c1b-7d6e-4a1f", 50000, "TOPUP-3f2a9c1b-1718000000000", now)
}

func walletTxColumnNames() []string {
	return []string{"id", "user_id", "amount", "type", "status", "description", "metadata", "created_at"}
}

func walletTxRow(t *domain.WalletTransaction) *pgxmock.Rows {
	return pgxmock.NewRows(walletTxColumnNames()).AddRow(
		t.ID, t.UserID, t.Amount, t.Type, t.Status, t.Description, t.Metadata, t.CreatedAt,
	)
}

func TestWalletTransactionRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletTransactionRepo(mock)
	txn := newTestWalletTransaction()

	mock.ExpectExec("INSERT INTO wallet_transactions").
		WithArgs(txn.ID, txn.UserID, txn.Amount, txn.Type, txn.Status, txn.Description, txn.Metadata, txn.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Create(context.Background(), txn)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletTransactionRepo_Create_DuplicateOrderID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletTransactionRepo(mock)
	txn := newTestWalletTransaction()

	mock.ExpectExec("INSERT INTO wallet_transactions").
		WithArgs(txn.ID, txn.UserID, txn.Amount, txn.Type, txn.Status, txn.Description, txn.Metadata, txn.CreatedAt).
		WillReturnError(errors.New("duplicate key value violates unique constraint"))

	err = repo.Create(context.Background(), txn)
	assert.ErrorContains(t, err, "insert wallet transaction")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletTransactionRepo_GetByOrderID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletTransactionRepo(mock)
	txn := newTestWalletTransaction()

	mock.ExpectQuery("SELECT .+ FROM wallet_transactions WHERE metadata").
		WithArgs(txn.OrderID()).
		WillReturnRows(walletTxRow(txn))

	result, err := repo.GetByOrderID(context.Background(), txn.OrderID())
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, txn.ID, result.ID)
	assert.Equal(t, txn.UserID, result.UserID)
	assert.Equal(t, int64(50000), result.Amount)
	assert.Equal(t, domain.TransactionStatusPending, result.Status)
	assert.Equal(t, txn.OrderID(), result.OrderID())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletTransactionRepo_GetByOrderID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletTransactionRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM wallet_transactions WHERE metadata").
		WithArgs("TOPUP-missing").
		WillReturnError(pgx.ErrNoRows)

	result, err := repo.GetByOrderID(context.Background(), "TOPUP-missing")
	assert.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletTransactionRepo_GetByOrderIDForUpdate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletTransactionRepo(mock)
	txn := newTestWalletTransaction()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM wallet_transactions WHERE .+ FOR UPDATE").
		WithArgs(txn.OrderID()).
		WillReturnRows(walletTxRow(txn))

	dbTx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	result, err := repo.GetByOrderIDForUpdate(context.Background(), dbTx, txn.OrderID())
	require.NoError(t, err)
	assert.Equal(t, txn.ID, result.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletTransactionRepo_UpdateStatus(t *testing.T) {
	patch := domain.Metadata{domain.MetaTransactionStatus: "settlement"}

	t.Run("row was pending", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewWalletTransactionRepo(mock)
		id := uuid.New()

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE wallet_transactions SET status").
			WithArgs(domain.TransactionStatusCompleted, patch, id, domain.TransactionStatusPending).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		dbTx, err := mock.Begin(context.Background())
		require.NoError(t, err)

		ok, err := repo.UpdateStatus(context.Background(), dbTx, id,
			domain.TransactionStatusPending, domain.TransactionStatusCompleted, patch)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("row already settled", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewWalletTransactionRepo(mock)
		id := uuid.New()

		// no tx: runs on the pool
		mock.ExpectExec("UPDATE wallet_transactions SET status").
			WithArgs(domain.TransactionStatusFailed, patch, id, domain.TransactionStatusPending).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		ok, err := repo.UpdateStatus(context.Background(), nil, id,
			domain.TransactionStatusPending, domain.TransactionStatusFailed, patch)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestWalletTransactionRepo_MergeMetadata(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletTransactionRepo(mock)
	id := uuid.New()
	patch := domain.Metadata{domain.MetaRedirectURL: "https://app.sandbox.midtrans.com/snap/v2/vtweb/abc"}

	mock.ExpectExec("UPDATE wallet_transactions SET metadata").
		WithArgs(patch, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err = repo.MergeMetadata(context.Background(), nil, id, patch)
	assert.NoError(t, err)

	mock.ExpectExec("UPDATE wallet_transactions SET metadata").
		WithArgs(patch, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = repo.MergeMetadata(context.Background(), nil, id, patch)
	assert.ErrorContains(t, err, "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletTransactionRepo_ListStalePending(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletTransactionRepo(mock)
	first := newTestWalletTransaction()
	second := domain.NewTopup("user-2", 20000, "TOPUP-user-2-1", first.CreatedAt.Add(time.Second))
	cutoff := time.Now()

	rows := pgxmock.NewRows(walletTxColumnNames()).
		AddRow(first.ID, first.UserID, first.Amount, first.Type, first.Status, first.Description, first.Metadata, first.CreatedAt).
		AddRow(second.ID, second.UserID, second.Amount, second.Type, second.Status, second.Description, second.Metadata, second.CreatedAt)

	mock.ExpectQuery("SELECT .+ FROM wallet_transactions\\s+WHERE type = \\$1 AND status = \\$2").
		WithArgs(domain.TransactionTypeTopup, domain.TransactionStatusPending, cutoff, 50).
		WillReturnRows(rows)

	result, err := repo.ListStalePending(context.Background(), cutoff, 50)
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, first.OrderID(), result[0].OrderID())
	assert.Equal(t, second.OrderID(), result[1].OrderID())
	assert.NoError(t, mock.ExpectationsWereMet())
}
