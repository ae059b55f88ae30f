package domain

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMapGatewayStatus(t *testing.T) {
	tests := []struct {
		name   string
		status string
		fraud  string
		want   TransactionStatus
	}{
		{"capture challenge", "capture", "challenge", TransactionStatusPending},
		{"capture accept", "capture", "accept", TransactionStatusCompleted},
		{"capture without fraud status", "capture", "", TransactionStatusPending},
		{"settlement", "settlement", "", TransactionStatusCompleted},
		{"settlement with accept", "settlement", "accept", TransactionStatusCompleted},
		{"deny", "deny", "", TransactionStatusFailed},
		{"cancel", "cancel", "", TransactionStatusFailed},
		{"expire", "expire", "", TransactionStatusFailed},
		{"pending", "pending", "", TransactionStatusPending},
		{"refund is not recognised", "refund", "", TransactionStatusPending},
		{"empty", "", "", TransactionStatusPending},
		{"case sensitive", "SETTLEMENT", "", TransactionStatusPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MapGatewayStatus(tt.status, tt.fraud))
		})
	}
}

func TestTransactionStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status TransactionStatus
		want   bool
	}{
		{TransactionStatusPending, false},
		{TransactionStatusCompleted, true},
		{TransactionStatusFailed, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			tx := &WalletTransaction{Status: tt.status}
			assert.Equal(t, tt.want, tx.IsTerminal())
		})
	}
}

func TestGatewayStatus_MatchesAmount(t *testing.T) {
	gs := GatewayStatus{GrossAmount: decimal.RequireFromString("50000.00")}
	assert.True(t, gs.MatchesAmount(50000))
	assert.False(t, gs.MatchesAmount(5000))

	assert.False(t, GatewayStatus{}.MatchesAmount(50000))
}

func TestNewTopup(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tx := NewTopup("user-1", 50000, "TOPUP-user-1-1", now)

	assert.Equal(t, "user-1", tx.UserID)
	assert.Equal(t, int64(50000), tx.Amount)
	assert.Equal(t, TransactionTypeTopup, tx.Type)
	assert.Equal(t, TransactionStatusPending, tx.Status)
	assert.Equal(t, "TOPUP-user-1-1", tx.OrderID())
	assert.Equal(t, PaymentGatewayMidtrans, tx.Metadata.String(MetaPaymentGateway))
	assert.Equal(t, now, tx.CreatedAt)
}

func TestBuildOrderID(t *testing.T) {
	now := time.UnixMilli(1718000000000)

	assert.Equal(t, "TOPUP-3f2a9c1b-1718000000000", BuildOrderID("3f2a9c1b-7d6e-4a1f-9b2c-0e1d2c3b4a59", now))
	assert.Equal(t, "TOPUP-abc-1718000000000", BuildOrderID("abc", now))

	id := BuildOrderID("user-0001-xyz", time.Now())
	assert.True(t, strings.HasPrefix(id, "TOPUP-user-000-"))
}

func TestBuildOrderID_GatewaySafe(t *testing.T) {
	now := time.UnixMilli(1718000000000)
	tests := []struct {
		name   string
		userID string
		want   string
	}{
		{"multi-byte runes are dropped", "ユーザー123", "TOPUP-123-1718000000000"},
		{"mixed scripts keep eight safe runes", "üser_ñame42", "TOPUP-ser_ame4-1718000000000"},
		{"quotes and ampersands are dropped", "o'neil&co", "TOPUP-oneilco-1718000000000"},
		{"nothing usable", "ユーザー", "TOPUP-1718000000000"},
		{"surrounding spaces", "  abc  ", "TOPUP-abc-1718000000000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := BuildOrderID(tt.userID, now)
			assert.Equal(t, tt.want, id)
			assert.True(t, utf8.ValidString(id))
		})
	}
}

func TestMetadata_Merge(t *testing.T) {
	base := Metadata{MetaOrderID: "o-1", MetaRedirectURL: "https://pay"}
	merged := base.Merge(Metadata{MetaTransactionStatus: "settlement", MetaRedirectURL: "https://new"})

	assert.Equal(t, "o-1", merged.String(MetaOrderID))
	assert.Equal(t, "settlement", merged.String(MetaTransactionStatus))
	assert.Equal(t, "https://new", merged.String(MetaRedirectURL))
	// original untouched
	assert.Equal(t, "https://pay", base.String(MetaRedirectURL))
	assert.Len(t, base, 2)
}

func TestGatewayStatusPatch(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	patch := GatewayStatusPatch(GatewayStatus{
		TransactionStatus: "capture",
		FraudStatus:       "accept",
		TransactionID:     "gw-1",
	}, now)

	assert.Equal(t, "capture", patch.String(MetaTransactionStatus))
	assert.Equal(t, "accept", patch.String(MetaFraudStatus))
	assert.Equal(t, "gw-1", patch.String(MetaGatewayTransactionID))
	assert.Equal(t, "2026-01-02T03:04:05Z", patch.String(MetaUpdatedAt))
	assert.NotContains(t, patch, MetaPaymentType)
}
