package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"klikjasa-wallet/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedTopup(t *testing.T, s *Store, userID string, amount int64, orderID string, at time.Time) *domain.WalletTransaction {
	t.Helper()
	wt := domain.NewTopup(userID, amount, orderID, at)
	require.NoError(t, s.WalletTransactions().Create(context.Background(), wt))
	return wt
}

func TestWalletTransactionRepo_CreateAndLookup(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	wt := seedTopup(t, s, "user-1", 50000, "TOPUP-user-1-1", time.Now())

	got, err := s.WalletTransactions().GetByOrderID(ctx, "TOPUP-user-1-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, wt.ID, got.ID)
	assert.Equal(t, domain.TransactionStatusPending, got.Status)

	missing, err := s.WalletTransactions().GetByOrderID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	// profile is provisioned on first sight
	acc, err := s.Accounts().GetByID(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, acc)
	assert.Equal(t, int64(0), acc.WalletBalance)
}

func TestWalletTransactionRepo_DuplicateOrderID(t *testing.T) {
	s := NewStore()
	seedTopup(t, s, "user-1", 50000, "TOPUP-dup", time.Now())

	err := s.WalletTransactions().Create(context.Background(), domain.NewTopup("user-1", 50000, "TOPUP-dup", time.Now()))
	assert.ErrorContains(t, err, "duplicate order id")
}

func TestWalletTransactionRepo_ReturnsCopies(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	seedTopup(t, s, "user-1", 50000, "TOPUP-copy", time.Now())

	got, err := s.WalletTransactions().GetByOrderID(ctx, "TOPUP-copy")
	require.NoError(t, err)
	got.Metadata["snap_token"] = "mutated"
	got.Status = domain.TransactionStatusCompleted

	again, err := s.WalletTransactions().GetByOrderID(ctx, "TOPUP-copy")
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusPending, again.Status)
	assert.Empty(t, again.Metadata.String("snap_token"))
}

func TestWalletTransactionRepo_UpdateStatusCompareAndSwap(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	wt := seedTopup(t, s, "user-1", 50000, "TOPUP-cas", time.Now())
	repo := s.WalletTransactions()

	ok, err := repo.UpdateStatus(ctx, nil, wt.ID, domain.TransactionStatusPending, domain.TransactionStatusCompleted,
		domain.Metadata{domain.MetaTransactionStatus: "settlement"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.UpdateStatus(ctx, nil, wt.ID, domain.TransactionStatusPending, domain.TransactionStatusFailed, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	got, _ := repo.GetByOrderID(ctx, "TOPUP-cas")
	assert.Equal(t, domain.TransactionStatusCompleted, got.Status)
	assert.Equal(t, "settlement", got.Metadata.String(domain.MetaTransactionStatus))
	assert.Equal(t, "TOPUP-cas", got.OrderID())
}

func TestWalletTransactionRepo_MergeMetadata(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	wt := seedTopup(t, s, "user-1", 50000, "TOPUP-meta", time.Now())

	require.NoError(t, s.WalletTransactions().MergeMetadata(ctx, nil, wt.ID,
		domain.Metadata{domain.MetaRedirectURL: "https://pay.example/abc"}))

	got, _ := s.WalletTransactions().GetByOrderID(ctx, "TOPUP-meta")
	assert.Equal(t, "https://pay.example/abc", got.Metadata.String(domain.MetaRedirectURL))
	assert.Equal(t, domain.PaymentGatewayMidtrans, got.Metadata.String(domain.MetaPaymentGateway))
}

func TestWalletTransactionRepo_ListStalePending(t *testing.T) {
	s := NewStore()
	now := time.Now()
	old2 := seedTopup(t, s, "user-1", 10000, "TOPUP-old2", now.Add(-2*time.Hour))
	old3 := seedTopup(t, s, "user-1", 10000, "TOPUP-old3", now.Add(-3*time.Hour))
	seedTopup(t, s, "user-1", 10000, "TOPUP-fresh", now)
	done := seedTopup(t, s, "user-1", 10000, "TOPUP-done", now.Add(-5*time.Hour))
	_, err := s.WalletTransactions().UpdateStatus(context.Background(), nil, done.ID,
		domain.TransactionStatusPending, domain.TransactionStatusFailed, nil)
	require.NoError(t, err)

	stale, err := s.WalletTransactions().ListStalePending(context.Background(), now.Add(-time.Hour), 10)
	require.NoError(t, err)
	require.Len(t, stale, 2)
	assert.Equal(t, old3.ID, stale[0].ID)
	assert.Equal(t, old2.ID, stale[1].ID)

	stale, err = s.WalletTransactions().ListStalePending(context.Background(), now.Add(-time.Hour), 1)
	require.NoError(t, err)
	assert.Len(t, stale, 1)
}

func TestStore_CommitKeepsWrites(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	s.SetBalance("user-1", 1000)

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	bal, err := s.Accounts().GetBalanceForUpdate(ctx, tx, "user-1")
	require.NoError(t, err)
	require.NoError(t, s.Accounts().UpdateBalance(ctx, tx, "user-1", bal+500))
	require.NoError(t, s.NotificationLog().Create(ctx, tx, &domain.NotificationLog{OrderID: "TOPUP-x"}))
	require.NoError(t, tx.Commit(ctx))

	assert.ErrorIs(t, tx.Rollback(ctx), pgx.ErrTxClosed)
	assert.Equal(t, int64(1500), s.Balance("user-1"))
	assert.Len(t, s.Notifications("TOPUP-x"), 1)
}

func TestStore_RollbackRestoresSnapshot(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	wt := seedTopup(t, s, "user-1", 50000, "TOPUP-rb", time.Now())
	s.SetBalance("user-1", 1000)

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	_, err = s.WalletTransactions().UpdateStatus(ctx, tx, wt.ID, domain.TransactionStatusPending, domain.TransactionStatusCompleted, nil)
	require.NoError(t, err)
	require.NoError(t, s.Accounts().UpdateBalance(ctx, tx, "user-1", 51000))
	require.NoError(t, s.NotificationLog().Create(ctx, tx, &domain.NotificationLog{OrderID: "TOPUP-rb"}))
	require.NoError(t, tx.Rollback(ctx))

	got, _ := s.WalletTransactions().GetByOrderID(ctx, "TOPUP-rb")
	assert.Equal(t, domain.TransactionStatusPending, got.Status)
	assert.Equal(t, int64(1000), s.Balance("user-1"))
	assert.Empty(t, s.Notifications("TOPUP-rb"))
}

func TestStore_RejectsForeignOrClosedTx(t *testing.T) {
	s := NewStore()
	other := NewStore()
	ctx := context.Background()
	s.SetBalance("user-1", 1000)

	tx, err := other.Begin(ctx)
	require.NoError(t, err)
	_, err = s.Accounts().GetBalanceForUpdate(ctx, tx, "user-1")
	assert.ErrorIs(t, err, errForeignTx)
	require.NoError(t, tx.Rollback(ctx))

	tx, err = s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))
	_, err = s.Accounts().GetBalanceForUpdate(ctx, tx, "user-1")
	assert.ErrorIs(t, err, errForeignTx)
}

func TestAccountRepo_MissingProfile(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	acc, err := s.Accounts().GetByID(ctx, "ghost")
	require.NoError(t, err)
	assert.Nil(t, acc)

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx) //nolint:errcheck
	_, err = s.Accounts().GetBalanceForUpdate(ctx, tx, "ghost")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestStore_TransactionsSerialize(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	s.SetBalance("user-1", 0)

	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tx, err := s.Begin(ctx)
			if err != nil {
				return
			}
			defer tx.Rollback(ctx) //nolint:errcheck
			bal, err := s.Accounts().GetBalanceForUpdate(ctx, tx, "user-1")
			if err != nil {
				return
			}
			if err := s.Accounts().UpdateBalance(ctx, tx, "user-1", bal+100); err != nil {
				return
			}
			_ = tx.Commit(ctx)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(workers*100), s.Balance("user-1"))
}

func TestAuditRepo_Create(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Audit().Create(context.Background(), &domain.AuditLog{Action: domain.AuditActionTopupRequest}))
	logs := s.AuditLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, domain.AuditActionTopupRequest, logs[0].Action)
}
