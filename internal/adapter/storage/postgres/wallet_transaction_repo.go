package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"klikjasa-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const walletTxColumns = `id, user_id, amount, type, status, description, metadata, created_at`

// WalletTransactionRepo implements ports.WalletTransactionRepository.
type WalletTransactionRepo struct {
	pool Pool
}

// NewWalletTransactionRepo creates a new WalletTransactionRepo.
func NewWalletTransactionRepo(pool Pool) *WalletTransactionRepo {
	return &WalletTransactionRepo{pool: pool}
}

// Create inserts a new ledger row.
func (r *WalletTransactionRepo) Create(ctx context.Context, t *domain.WalletTransaction) error {
	query := `INSERT INTO wallet_transactions (` + walletTxColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		t.ID, t.UserID, t.Amount, t.Type, t.Status, t.Description, t.Metadata, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert wallet transaction: %w", err)
	}
	return nil
}

// GetByOrderID fetches a row by metadata.order_id without locking.
func (r *WalletTransactionRepo) GetByOrderID(ctx context.Context, orderID string) (*domain.WalletTransaction, error) {
	query := `SELECT ` + walletTxColumns + ` FROM wallet_transactions WHERE metadata->>'order_id' = $1`

	return scanWalletTransaction(r.pool.QueryRow(ctx, query, orderID))
}

// GetByOrderIDForUpdate fetches a row by metadata.order_id and locks it
// until the surrounding transaction ends.
func (r *WalletTransactionRepo) GetByOrderIDForUpdate(ctx context.Context, tx pgx.Tx, orderID string) (*domain.WalletTransaction, error) {
	query := `SELECT ` + walletTxColumns + ` FROM wallet_transactions WHERE metadata->>'order_id' = $1 FOR UPDATE`

	return scanWalletTransaction(tx.QueryRow(ctx, query, orderID))
}

// UpdateStatus is a compare-and-swap on status; patch is merged into metadata.
func (r *WalletTransactionRepo) UpdateStatus(
	ctx context.Context, tx pgx.Tx, id uuid.UUID, from, to domain.TransactionStatus, patch domain.Metadata,
) (bool, error) {
	query := `UPDATE wallet_transactions SET status = $1, metadata = metadata || $2::jsonb
		WHERE id = $3 AND status = $4`

	tag, err := conn(r.pool, tx).Exec(ctx, query, to, patch, id, from)
	if err != nil {
		return false, fmt.Errorf("update wallet transaction status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// MergeMetadata merges patch into the stored metadata document.
func (r *WalletTransactionRepo) MergeMetadata(ctx context.Context, tx pgx.Tx, id uuid.UUID, patch domain.Metadata) error {
	query := `UPDATE wallet_transactions SET metadata = metadata || $1::jsonb WHERE id = $2`

	tag, err := conn(r.pool, tx).Exec(ctx, query, patch, id)
	if err != nil {
		return fmt.Errorf("merge wallet transaction metadata: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("wallet transaction not found: %s", id)
	}
	return nil
}

// ListStalePending returns pending top-ups created before olderThan, oldest first.
func (r *WalletTransactionRepo) ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]domain.WalletTransaction, error) {
	query := `SELECT ` + walletTxColumns + ` FROM wallet_transactions
		WHERE type = $1 AND status = $2 AND created_at < $3
		ORDER BY created_at ASC LIMIT $4`

	rows, err := r.pool.Query(ctx, query,
		domain.TransactionTypeTopup, domain.TransactionStatusPending, olderThan, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list stale pending: %w", err)
	}
	defer rows.Close()

	var txns []domain.WalletTransaction
	for rows.Next() {
		t, err := scanWalletTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallet transaction rows: %w", err)
	}
	return txns, nil
}

// scanWalletTransaction scans a single row. Returns nil, nil on no rows.
func scanWalletTransaction(row pgx.Row) (*domain.WalletTransaction, error) {
	t := &domain.WalletTransaction{}
	err := row.Scan(
		&t.ID, &t.UserID, &t.Amount, &t.Type, &t.Status, &t.Description, &t.Metadata, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan wallet transaction: %w", err)
	}
	return t, nil
}
