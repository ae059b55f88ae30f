package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"klikjasa-wallet/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// AccountRepo implements ports.AccountRepository on the profiles table.
type AccountRepo struct {
	pool Pool
}

// NewAccountRepo creates a new AccountRepo.
func NewAccountRepo(pool Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

// GetByID fetches a profile's balance. Returns nil, nil when the profile does not exist.
func (r *AccountRepo) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	query := `SELECT id, wallet_balance, updated_at FROM profiles WHERE id = $1`

	a := &domain.Account{}
	err := r.pool.QueryRow(ctx, query, id).Scan(&a.ID, &a.WalletBalance, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return a, nil
}

// GetBalanceForUpdate reads the balance with a row-level lock (SELECT ... FOR UPDATE).
// Must be called within a transaction.
func (r *AccountRepo) GetBalanceForUpdate(ctx context.Context, tx pgx.Tx, id string) (int64, error) {
	query := `SELECT wallet_balance FROM profiles WHERE id = $1 FOR UPDATE`

	var balance int64
	if err := tx.QueryRow(ctx, query, id).Scan(&balance); err != nil {
		return 0, fmt.Errorf("lock profile %s: %w", id, err)
	}
	return balance, nil
}

// UpdateBalance writes the new balance within a transaction.
func (r *AccountRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, id string, balance int64) error {
	query := `UPDATE profiles SET wallet_balance = $1, updated_at = $2 WHERE id = $3`

	tag, err := tx.Exec(ctx, query, balance, time.Now(), id)
	if err != nil {
		return fmt.Errorf("update wallet balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("profile not found: %s", id)
	}
	return nil
}
