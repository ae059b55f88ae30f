package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"klikjasa-wallet/internal/core/domain"
	"klikjasa-wallet/internal/core/ports"
	"klikjasa-wallet/pkg/apperror"

	"github.com/rs/zerolog"
)

// TopupServiceImpl implements ports.TopupService.
type TopupServiceImpl struct {
	txRepo    ports.WalletTransactionRepository
	gateway   ports.PaymentGateway
	minAmount int64
	now       func() time.Time
	log       zerolog.Logger
}

// NewTopupService creates a new TopupServiceImpl.
func NewTopupService(
	txRepo ports.WalletTransactionRepository,
	gateway ports.PaymentGateway,
	minAmount int64,
	log zerolog.Logger,
) *TopupServiceImpl {
	return &TopupServiceImpl{
		txRepo:    txRepo,
		gateway:   gateway,
		minAmount: minAmount,
		now:       time.Now,
		log:       log,
	}
}

// CreatePayment writes a pending ledger row, then opens a gateway session for it.
// The row exists before the gateway hears about the order, so every session
// the gateway knows has a local record to reconcile against.
func (s *TopupServiceImpl) CreatePayment(ctx context.Context, req ports.TopupRequest) (*ports.TopupSession, error) {
	if req.Amount < s.minAmount {
		return nil, apperror.ErrBelowMinimumTopup(s.minAmount)
	}
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return nil, apperror.ErrMissingUser()
	}

	now := s.now().UTC()
	orderID := domain.BuildOrderID(userID, now)
	txn := domain.NewTopup(userID, req.Amount, orderID, now)

	if err := s.txRepo.Create(ctx, txn); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("create pending topup: %w", err))
	}

	session, err := s.gateway.CreateSession(ctx, ports.GatewaySessionRequest{
		OrderID:       orderID,
		Amount:        req.Amount,
		CustomerName:  req.UserName,
		CustomerEmail: req.UserEmail,
		ItemName:      txn.Description,
	})
	if err != nil {
		s.markFailed(ctx, txn, err)
		return nil, apperror.ErrGateway(err)
	}

	patch := domain.Metadata{
		domain.MetaRedirectURL: session.RedirectURL,
		domain.MetaSnapToken:   session.Token,
	}
	if err := s.txRepo.MergeMetadata(ctx, nil, txn.ID, patch); err != nil {
		// The row is still pending under its order id; settlement does not need the redirect URL.
		s.log.Warn().Err(err).Str("order_id", orderID).Msg("failed to record gateway session on topup")
	}

	s.log.Info().
		Str("order_id", orderID).
		Str("user_id", userID).
		Int64("amount", req.Amount).
		Msg("topup payment session created")

	return &ports.TopupSession{
		Token:       session.Token,
		RedirectURL: session.RedirectURL,
		OrderID:     orderID,
	}, nil
}

// markFailed closes a pending row whose gateway session could not be opened.
func (s *TopupServiceImpl) markFailed(ctx context.Context, txn *domain.WalletTransaction, cause error) {
	patch := domain.Metadata{
		domain.MetaGatewayError: cause.Error(),
		domain.MetaUpdatedAt:    s.now().UTC().Format(time.RFC3339),
	}
	ok, err := s.txRepo.UpdateStatus(context.WithoutCancel(ctx), nil, txn.ID,
		domain.TransactionStatusPending, domain.TransactionStatusFailed, patch)
	switch {
	case err != nil:
		s.log.Error().Err(err).Str("order_id", txn.OrderID()).Msg("failed to mark topup failed after gateway error")
	case !ok:
		s.log.Warn().Str("order_id", txn.OrderID()).Msg("topup left pending state before gateway error was recorded")
	default:
		s.log.Warn().Err(cause).Str("order_id", txn.OrderID()).Msg("gateway rejected topup session")
	}
}
