package ports

import (
	"context"
	"errors"

	"klikjasa-wallet/internal/core/domain"
)

var (
	// ErrInvalidNotification means the payload was malformed or its signature did not verify.
	ErrInvalidNotification = errors.New("invalid gateway notification")
	// ErrGatewayUnavailable means the gateway could not be reached or answered with a server error.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	// ErrGatewayOrderNotFound means the gateway has no record of the order.
	ErrGatewayOrderNotFound = errors.New("order not found at payment gateway")
)

// PaymentGateway is the hosted checkout provider.
type PaymentGateway interface {
	// CreateSession opens a hosted payment page for one order.
	CreateSession(ctx context.Context, req GatewaySessionRequest) (*GatewaySession, error)
	// VerifyNotification authenticates an inbound notification and returns the
	// status confirmed by the gateway's status API.
	VerifyNotification(ctx context.Context, payload []byte) (*domain.GatewayStatus, error)
	// FetchStatus asks the gateway for the current status of an order.
	FetchStatus(ctx context.Context, orderID string) (*domain.GatewayStatus, error)
}

// GatewaySessionRequest holds the order details sent to the gateway.
type GatewaySessionRequest struct {
	OrderID       string
	Amount        int64
	CustomerName  string
	CustomerEmail string
	ItemName      string
}

// GatewaySession is the hosted payment page handed to the client.
type GatewaySession struct {
	Token       string
	RedirectURL string
}
