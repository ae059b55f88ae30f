// Package memory is a process-local storage backend used when
// database.driver is "memory" and in end-to-end tests.
package memory

import (
	"context"
	"errors"
	"sync"

	"klikjasa-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var errForeignTx = errors.New("memory: transaction does not belong to this store")

// Store holds all tables. An open transaction holds the write lock until it
// commits or rolls back, so transactions are fully serialized.
type Store struct {
	mu            sync.RWMutex
	accounts      map[string]domain.Account
	txns          map[uuid.UUID]domain.WalletTransaction
	byOrder       map[string]uuid.UUID
	notifications []domain.NotificationLog
	audits        []domain.AuditLog
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		accounts: make(map[string]domain.Account),
		txns:     make(map[uuid.UUID]domain.WalletTransaction),
		byOrder:  make(map[string]uuid.UUID),
	}
}

// Begin implements ports.DBTransactor.
func (s *Store) Begin(ctx context.Context) (pgx.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	return &memTx{store: s, snap: s.snapshot()}, nil
}

// SetBalance creates or overwrites a profile balance.
func (s *Store) SetBalance(userID string, balance int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[userID] = domain.Account{ID: userID, WalletBalance: balance}
}

// Balance returns the current balance of a profile (0 if unknown).
func (s *Store) Balance(userID string) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accounts[userID].WalletBalance
}

// Notifications returns the logged deliveries for an order.
func (s *Store) Notifications(orderID string) []domain.NotificationLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.NotificationLog
	for _, n := range s.notifications {
		if n.OrderID == orderID {
			out = append(out, n)
		}
	}
	return out
}

// AuditLogs returns a copy of all audit entries.
func (s *Store) AuditLogs() []domain.AuditLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.AuditLog(nil), s.audits...)
}

// Accounts returns the ports.AccountRepository view of the store.
func (s *Store) Accounts() *AccountRepo { return &AccountRepo{s: s} }

// WalletTransactions returns the ports.WalletTransactionRepository view of the store.
func (s *Store) WalletTransactions() *WalletTransactionRepo { return &WalletTransactionRepo{s: s} }

// NotificationLog returns the ports.NotificationRepository view of the store.
func (s *Store) NotificationLog() *NotificationRepo { return &NotificationRepo{s: s} }

// Audit returns the ports.AuditRepository view of the store.
func (s *Store) Audit() *AuditRepo { return &AuditRepo{s: s} }

// withWrite runs fn under the write lock: the caller's if tx is given,
// otherwise a short one of its own.
func (s *Store) withWrite(tx pgx.Tx, fn func() error) error {
	if tx != nil {
		if err := s.own(tx); err != nil {
			return err
		}
		return fn()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

func (s *Store) own(tx pgx.Tx) error {
	mt, ok := tx.(*memTx)
	if !ok || mt.store != s || mt.closed {
		return errForeignTx
	}
	return nil
}

type snapshot struct {
	accounts      map[string]domain.Account
	txns          map[uuid.UUID]domain.WalletTransaction
	byOrder       map[string]uuid.UUID
	notifications int
	audits        int
}

func (s *Store) snapshot() snapshot {
	snap := snapshot{
		accounts:      make(map[string]domain.Account, len(s.accounts)),
		txns:          make(map[uuid.UUID]domain.WalletTransaction, len(s.txns)),
		byOrder:       make(map[string]uuid.UUID, len(s.byOrder)),
		notifications: len(s.notifications),
		audits:        len(s.audits),
	}
	for k, v := range s.accounts {
		snap.accounts[k] = v
	}
	for k, v := range s.txns {
		snap.txns[k] = cloneTxn(v)
	}
	for k, v := range s.byOrder {
		snap.byOrder[k] = v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.accounts = snap.accounts
	s.txns = snap.txns
	s.byOrder = snap.byOrder
	s.notifications = s.notifications[:snap.notifications]
	s.audits = s.audits[:snap.audits]
}

func cloneTxn(t domain.WalletTransaction) domain.WalletTransaction {
	t.Metadata = domain.Metadata{}.Merge(t.Metadata)
	return t
}
