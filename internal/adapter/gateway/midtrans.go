// Package gateway adapts the Midtrans Snap and Core APIs to ports.PaymentGateway.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"klikjasa-wallet/config"
	"klikjasa-wallet/internal/core/domain"
	"klikjasa-wallet/internal/core/ports"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const topupItemID = "TOPUP"

// snapAPI is the part of snap.Client used here.
type snapAPI interface {
	CreateTransaction(req *snap.Request) (*snap.Response, *midtrans.Error)
}

// statusAPI is the part of coreapi.Client used here.
type statusAPI interface {
	CheckTransaction(orderID string) (*coreapi.TransactionStatusResponse, *midtrans.Error)
}

// MidtransClient implements ports.PaymentGateway against Midtrans.
type MidtransClient struct {
	snap      snapAPI
	core      statusAPI
	serverKey string
	finishURL string
	log       zerolog.Logger
}

// NewMidtransClient builds Snap and Core API clients for the configured environment.
func NewMidtransClient(cfg config.MidtransConfig, log zerolog.Logger) *MidtransClient {
	var s snap.Client
	s.New(cfg.ServerKey, cfg.Environment())

	var c coreapi.Client
	c.New(cfg.ServerKey, cfg.Environment())

	return &MidtransClient{
		snap:      &s,
		core:      &c,
		serverKey: cfg.ServerKey,
		finishURL: cfg.FinishURL,
		log:       log.With().Str("component", "midtrans").Logger(),
	}
}

// CreateSession requests a Snap token and redirect URL for one order.
func (c *MidtransClient) CreateSession(ctx context.Context, req ports.GatewaySessionRequest) (*ports.GatewaySession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snapReq := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.OrderID,
			GrossAmt: req.Amount,
		},
		CreditCard: &snap.CreditCardDetails{
			Secure: true,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: req.CustomerName,
			Email: req.CustomerEmail,
		},
		Items: &[]midtrans.ItemDetails{
			{
				ID:    topupItemID,
				Name:  req.ItemName,
				Price: req.Amount,
				Qty:   1,
			},
		},
	}
	if c.finishURL != "" {
		snapReq.Callbacks = &snap.Callbacks{Finish: c.finishURL}
	}

	resp, mErr := c.snap.CreateTransaction(snapReq)
	if mErr != nil {
		return nil, fmt.Errorf("%w: snap create transaction: %s", ports.ErrGatewayUnavailable, mErr.GetMessage())
	}
	if resp == nil || resp.Token == "" {
		return nil, fmt.Errorf("%w: snap returned no token", ports.ErrGatewayUnavailable)
	}

	c.log.Debug().Str("order_id", req.OrderID).Msg("snap session created")

	return &ports.GatewaySession{
		Token:       resp.Token,
		RedirectURL: resp.RedirectURL,
	}, nil
}

// notification is the subset of the Midtrans HTTP notification body we read.
type notification struct {
	OrderID           string `json:"order_id"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
}

// VerifyNotification checks the notification signature, then re-reads the
// order from the status API. The payload's own status fields are never trusted.
func (c *MidtransClient) VerifyNotification(ctx context.Context, payload []byte) (*domain.GatewayStatus, error) {
	var n notification
	if err := json.Unmarshal(payload, &n); err != nil {
		return nil, fmt.Errorf("%w: malformed body: %v", ports.ErrInvalidNotification, err)
	}
	if n.OrderID == "" {
		return nil, fmt.Errorf("%w: missing order_id", ports.ErrInvalidNotification)
	}
	if !VerifySignature(n.OrderID, n.StatusCode, n.GrossAmount, c.serverKey, n.SignatureKey) {
		return nil, fmt.Errorf("%w: signature mismatch for %s", ports.ErrInvalidNotification, n.OrderID)
	}

	status, err := c.FetchStatus(ctx, n.OrderID)
	if err != nil {
		if errors.Is(err, ports.ErrGatewayOrderNotFound) {
			return nil, fmt.Errorf("%w: %v", ports.ErrInvalidNotification, err)
		}
		return nil, err
	}
	if status.OrderID != "" && status.OrderID != n.OrderID {
		return nil, fmt.Errorf("%w: status API returned order %s for %s", ports.ErrInvalidNotification, status.OrderID, n.OrderID)
	}
	if status.OrderID == "" {
		status.OrderID = n.OrderID
	}
	return status, nil
}

// FetchStatus reads GET /v2/{order_id}/status.
func (c *MidtransClient) FetchStatus(ctx context.Context, orderID string) (*domain.GatewayStatus, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, mErr := c.core.CheckTransaction(orderID)
	if mErr != nil {
		if mErr.GetStatusCode() == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ports.ErrGatewayOrderNotFound, orderID)
		}
		return nil, fmt.Errorf("%w: check transaction %s: %s", ports.ErrGatewayUnavailable, orderID, mErr.GetMessage())
	}
	if resp == nil {
		return nil, fmt.Errorf("%w: empty status response for %s", ports.ErrGatewayUnavailable, orderID)
	}
	if resp.StatusCode == "404" {
		return nil, fmt.Errorf("%w: %s", ports.ErrGatewayOrderNotFound, orderID)
	}

	gross := decimal.Zero
	if resp.GrossAmount != "" {
		parsed, err := decimal.NewFromString(resp.GrossAmount)
		if err != nil {
			return nil, fmt.Errorf("%w: gross_amount %q: %v", ports.ErrGatewayUnavailable, resp.GrossAmount, err)
		}
		gross = parsed
	}

	return &domain.GatewayStatus{
		OrderID:           resp.OrderID,
		TransactionStatus: resp.TransactionStatus,
		FraudStatus:       resp.FraudStatus,
		StatusCode:        resp.StatusCode,
		GrossAmount:       gross,
		TransactionID:     resp.TransactionID,
		PaymentType:       resp.PaymentType,
	}, nil
}
