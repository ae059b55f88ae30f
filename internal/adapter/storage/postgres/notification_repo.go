package postgres

import (
	"context"
	"fmt"

	"klikjasa-wallet/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// NotificationRepo implements ports.NotificationRepository.
type NotificationRepo struct {
	pool Pool
}

// NewNotificationRepo creates a new NotificationRepo.
func NewNotificationRepo(pool Pool) *NotificationRepo {
	return &NotificationRepo{pool: pool}
}

// Create appends a delivery to gateway_notifications. A nil tx writes outside any transaction.
func (r *NotificationRepo) Create(ctx context.Context, tx pgx.Tx, n *domain.NotificationLog) error {
	query := `INSERT INTO gateway_notifications (id, order_id, transaction_status, fraud_status, outcome, applied, payload, received_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := conn(r.pool, tx).Exec(ctx, query,
		n.ID, n.OrderID, n.TransactionStatus, n.FraudStatus, n.Outcome, n.Applied, jsonOrNil(n.Payload), n.ReceivedAt,
	)
	if err != nil {
		return fmt.Errorf("insert gateway notification: %w", err)
	}
	return nil
}

// jsonOrNil maps an empty document to SQL NULL.
func jsonOrNil(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
