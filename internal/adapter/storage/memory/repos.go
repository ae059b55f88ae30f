package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"klikjasa-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// AccountRepo implements ports.AccountRepository.
type AccountRepo struct{ s *Store }

func (r *AccountRepo) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.accounts[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *AccountRepo) GetBalanceForUpdate(ctx context.Context, tx pgx.Tx, id string) (int64, error) {
	if err := r.s.own(tx); err != nil {
		return 0, err
	}
	a, ok := r.s.accounts[id]
	if !ok {
		return 0, fmt.Errorf("lock profile %s: %w", id, pgx.ErrNoRows)
	}
	return a.WalletBalance, nil
}

func (r *AccountRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, id string, balance int64) error {
	if err := r.s.own(tx); err != nil {
		return err
	}
	a, ok := r.s.accounts[id]
	if !ok {
		return fmt.Errorf("profile not found: %s", id)
	}
	a.WalletBalance = balance
	a.UpdatedAt = time.Now()
	r.s.accounts[id] = a
	return nil
}

// WalletTransactionRepo implements ports.WalletTransactionRepository.
type WalletTransactionRepo struct{ s *Store }

// Create inserts a ledger row. Profiles are owned by the BaaS, so one is
// provisioned with a zero balance the first time a user is seen.
func (r *WalletTransactionRepo) Create(ctx context.Context, t *domain.WalletTransaction) error {
	return r.s.withWrite(nil, func() error {
		orderID := t.OrderID()
		if _, dup := r.s.byOrder[orderID]; dup && orderID != "" {
			return fmt.Errorf("insert wallet transaction: duplicate order id %s", orderID)
		}
		if _, ok := r.s.accounts[t.UserID]; !ok {
			r.s.accounts[t.UserID] = domain.Account{ID: t.UserID, UpdatedAt: time.Now()}
		}
		r.s.txns[t.ID] = cloneTxn(*t)
		if orderID != "" {
			r.s.byOrder[orderID] = t.ID
		}
		return nil
	})
}

func (r *WalletTransactionRepo) GetByOrderID(ctx context.Context, orderID string) (*domain.WalletTransaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.lookup(orderID), nil
}

func (r *WalletTransactionRepo) GetByOrderIDForUpdate(ctx context.Context, tx pgx.Tx, orderID string) (*domain.WalletTransaction, error) {
	if err := r.s.own(tx); err != nil {
		return nil, err
	}
	return r.lookup(orderID), nil
}

func (r *WalletTransactionRepo) UpdateStatus(
	ctx context.Context, tx pgx.Tx, id uuid.UUID, from, to domain.TransactionStatus, patch domain.Metadata,
) (bool, error) {
	var applied bool
	err := r.s.withWrite(tx, func() error {
		t, ok := r.s.txns[id]
		if !ok || t.Status != from {
			return nil
		}
		t.Status = to
		t.Metadata = t.Metadata.Merge(patch)
		r.s.txns[id] = t
		applied = true
		return nil
	})
	return applied, err
}

func (r *WalletTransactionRepo) MergeMetadata(ctx context.Context, tx pgx.Tx, id uuid.UUID, patch domain.Metadata) error {
	return r.s.withWrite(tx, func() error {
		t, ok := r.s.txns[id]
		if !ok {
			return fmt.Errorf("wallet transaction not found: %s", id)
		}
		t.Metadata = t.Metadata.Merge(patch)
		r.s.txns[id] = t
		return nil
	})
}

func (r *WalletTransactionRepo) ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]domain.WalletTransaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []domain.WalletTransaction
	for _, t := range r.s.txns {
		if t.Type == domain.TransactionTypeTopup && t.Status == domain.TransactionStatusPending && t.CreatedAt.Before(olderThan) {
			out = append(out, cloneTxn(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *WalletTransactionRepo) lookup(orderID string) *domain.WalletTransaction {
	id, ok := r.s.byOrder[orderID]
	if !ok {
		return nil
	}
	t := cloneTxn(r.s.txns[id])
	return &t
}

// NotificationRepo implements ports.NotificationRepository.
type NotificationRepo struct{ s *Store }

func (r *NotificationRepo) Create(ctx context.Context, tx pgx.Tx, n *domain.NotificationLog) error {
	return r.s.withWrite(tx, func() error {
		r.s.notifications = append(r.s.notifications, *n)
		return nil
	})
}

// AuditRepo implements ports.AuditRepository.
type AuditRepo struct{ s *Store }

func (r *AuditRepo) Create(ctx context.Context, log *domain.AuditLog) error {
	return r.s.withWrite(nil, func() error {
		r.s.audits = append(r.s.audits, *log)
		return nil
	})
}
