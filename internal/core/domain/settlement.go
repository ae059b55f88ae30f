package domain

import "github.com/shopspring/decimal"

// Gateway transaction_status vocabulary (Midtrans).
const (
	GatewayStatusCapture    = "capture"
	GatewayStatusSettlement = "settlement"
	GatewayStatusPending    = "pending"
	GatewayStatusDeny       = "deny"
	GatewayStatusCancel     = "cancel"
	GatewayStatusExpire     = "expire"
)

// Gateway fraud_status vocabulary (Midtrans).
const (
	FraudStatusAccept    = "accept"
	FraudStatusChallenge = "challenge"
)

// GatewayStatus is a verified snapshot of a payment as the gateway sees it.
type GatewayStatus struct {
	OrderID           string
	TransactionStatus string
	FraudStatus       string
	StatusCode        string
	GrossAmount       decimal.Decimal
	TransactionID     string
	PaymentType       string
}

// Outcome maps the gateway status pair to the internal settlement state.
func (g GatewayStatus) Outcome() TransactionStatus {
	return MapGatewayStatus(g.TransactionStatus, g.FraudStatus)
}

// MatchesAmount reports whether the gateway charged exactly amount Rupiah.
func (g GatewayStatus) MatchesAmount(amount int64) bool {
	return g.GrossAmount.Equal(decimal.NewFromInt(amount))
}

// MapGatewayStatus translates a transaction_status/fraud_status pair.
// Anything not explicitly recognised stays pending; an unknown input must
// never credit a wallet.
func MapGatewayStatus(transactionStatus, fraudStatus string) TransactionStatus {
	switch transactionStatus {
	case GatewayStatusCapture:
		if fraudStatus == FraudStatusAccept {
			return TransactionStatusCompleted
		}
		return TransactionStatusPending
	case GatewayStatusSettlement:
		return TransactionStatusCompleted
	case GatewayStatusDeny, GatewayStatusCancel, GatewayStatusExpire:
		return TransactionStatusFailed
	default:
		return TransactionStatusPending
	}
}
