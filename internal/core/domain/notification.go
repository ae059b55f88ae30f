package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// NotificationLog records one delivery of a gateway notification, duplicates included.
type NotificationLog struct {
	ID                uuid.UUID         `json:"id"`
	OrderID           string            `json:"order_id"`
	TransactionStatus string            `json:"transaction_status"`
	FraudStatus       string            `json:"fraud_status"`
	Outcome           TransactionStatus `json:"outcome"`
	Applied           bool              `json:"applied"` // true only for the delivery that settled the row
	Payload           json.RawMessage   `json:"payload,omitempty"`
	ReceivedAt        time.Time         `json:"received_at"`
}
