package ports

import (
	"context"
	"time"

	"klikjasa-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// AccountRepository reads and writes the wallet balance on user profiles.
// Methods accepting pgx.Tx are used inside transaction blocks for pessimistic locking.
type AccountRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetBalanceForUpdate(ctx context.Context, tx pgx.Tx, id string) (int64, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, id string, balance int64) error
}

// WalletTransactionRepository defines persistence operations for ledger rows.
// A nil tx runs the statement on its own connection.
type WalletTransactionRepository interface {
	Create(ctx context.Context, transaction *domain.WalletTransaction) error
	GetByOrderID(ctx context.Context, orderID string) (*domain.WalletTransaction, error)
	GetByOrderIDForUpdate(ctx context.Context, tx pgx.Tx, orderID string) (*domain.WalletTransaction, error)
	// UpdateStatus moves the row from one status to another and merges patch
	// into its metadata. Returns false when the row was not in status from.
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, from, to domain.TransactionStatus, patch domain.Metadata) (bool, error)
	MergeMetadata(ctx context.Context, tx pgx.Tx, id uuid.UUID, patch domain.Metadata) error
	// ListStalePending returns pending top-ups created before olderThan, oldest first.
	ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]domain.WalletTransaction, error)
}

// NotificationRepository appends gateway deliveries to the notification log.
type NotificationRepository interface {
	Create(ctx context.Context, tx pgx.Tx, log *domain.NotificationLog) error
}

// AuditRepository persists audit entries.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
