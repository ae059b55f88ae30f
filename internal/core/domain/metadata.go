package domain

import (
	"fmt"
	"time"
)

// Metadata keys written on wallet transactions.
const (
	MetaOrderID              = "order_id"
	MetaPaymentGateway       = "payment_gateway"
	MetaRedirectURL          = "redirect_url"
	MetaSnapToken            = "snap_token"
	MetaTransactionStatus    = "transaction_status"
	MetaFraudStatus          = "fraud_status"
	MetaGatewayTransactionID = "gateway_transaction_id"
	MetaPaymentType          = "payment_type"
	MetaGatewayError         = "gateway_error"
	MetaExpiredReason        = "expired_reason"
	MetaUpdatedAt            = "updated_at"
)

// Metadata is the open key-value bag stored as JSONB. Updates are merged
// into the stored document, never replace it.
type Metadata map[string]any

// String returns the value under key rendered as a string, or "".
func (m Metadata) String(key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Merge returns a copy of m with patch applied on top.
func (m Metadata) Merge(patch Metadata) Metadata {
	out := make(Metadata, len(m)+len(patch))
	for k, v := range m {
		out[k] = v
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}

// GatewayStatusPatch records the last-seen gateway status for audit.
func GatewayStatusPatch(gs GatewayStatus, now time.Time) Metadata {
	patch := Metadata{
		MetaTransactionStatus: gs.TransactionStatus,
		MetaFraudStatus:       gs.FraudStatus,
		MetaUpdatedAt:         now.UTC().Format(time.RFC3339),
	}
	if gs.TransactionID != "" {
		patch[MetaGatewayTransactionID] = gs.TransactionID
	}
	if gs.PaymentType != "" {
		patch[MetaPaymentType] = gs.PaymentType
	}
	return patch
}
