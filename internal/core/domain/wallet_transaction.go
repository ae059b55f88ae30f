package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType represents the kind of wallet movement.
type TransactionType string

const (
	TransactionTypeTopup      TransactionType = "topup"
	TransactionTypeCommission TransactionType = "commission"
	TransactionTypePayout     TransactionType = "payout"
)

// TransactionStatus represents the lifecycle state of a wallet transaction.
// pending is the only non-terminal state.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// IsTerminal returns true for completed and failed.
func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionStatusCompleted || s == TransactionStatusFailed
}

// PaymentGatewayMidtrans is stored in metadata.payment_gateway.
const PaymentGatewayMidtrans = "midtrans"

const topupDescription = "Top up saldo KlikJasa"

// WalletTransaction is one ledger row. Top-ups are correlated with the gateway
// through metadata.order_id, which is unique across the table.
type WalletTransaction struct {
	ID          uuid.UUID         `json:"id"`
	UserID      string            `json:"user_id"`
	Amount      int64             `json:"amount"` // whole Rupiah
	Type        TransactionType   `json:"type"`
	Status      TransactionStatus `json:"status"`
	Description string            `json:"description"`
	Metadata    Metadata          `json:"metadata"`
	CreatedAt   time.Time         `json:"created_at"`
}

// NewTopup builds the pending ledger row for a new payment session.
func NewTopup(userID string, amount int64, orderID string, now time.Time) *WalletTransaction {
	return &WalletTransaction{
		ID:          uuid.New(),
		UserID:      userID,
		Amount:      amount,
		Type:        TransactionTypeTopup,
		Status:      TransactionStatusPending,
		Description: topupDescription,
		Metadata: Metadata{
			MetaOrderID:        orderID,
			MetaPaymentGateway: PaymentGatewayMidtrans,
		},
		CreatedAt: now,
	}
}

// IsTerminal returns true if the transaction can no longer change.
func (t *WalletTransaction) IsTerminal() bool {
	return t.Status.IsTerminal()
}

// OrderID returns the gateway correlation key.
func (t *WalletTransaction) OrderID() string {
	return t.Metadata.String(MetaOrderID)
}
