package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"klikjasa-wallet/internal/core/domain"
	"klikjasa-wallet/internal/core/ports"
	"klikjasa-wallet/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// ReconcileServiceImpl implements ports.ReconcileService.
type ReconcileServiceImpl struct {
	txRepo      ports.WalletTransactionRepository
	accountRepo ports.AccountRepository
	notifRepo   ports.NotificationRepository
	transactor  ports.DBTransactor
	gateway     ports.PaymentGateway
	cache       ports.StatusCache // nil when Redis is disabled
	cacheTTL    time.Duration
	now         func() time.Time
	log         zerolog.Logger
}

// NewReconcileService creates a new ReconcileServiceImpl. cache may be nil.
func NewReconcileService(
	txRepo ports.WalletTransactionRepository,
	accountRepo ports.AccountRepository,
	notifRepo ports.NotificationRepository,
	transactor ports.DBTransactor,
	gateway ports.PaymentGateway,
	cache ports.StatusCache,
	cacheTTL time.Duration,
	log zerolog.Logger,
) *ReconcileServiceImpl {
	return &ReconcileServiceImpl{
		txRepo:      txRepo,
		accountRepo: accountRepo,
		notifRepo:   notifRepo,
		transactor:  transactor,
		gateway:     gateway,
		cache:       cache,
		cacheTTL:    cacheTTL,
		now:         time.Now,
		log:         log,
	}
}

// HandleNotification authenticates a gateway notification and applies the
// status confirmed by the gateway. Nothing is written when authentication fails.
func (s *ReconcileServiceImpl) HandleNotification(ctx context.Context, payload []byte) (*ports.ReconcileResult, error) {
	status, err := s.gateway.VerifyNotification(ctx, payload)
	if err != nil {
		if errors.Is(err, ports.ErrInvalidNotification) {
			s.log.Warn().Err(err).Msg("rejected gateway notification")
			return nil, apperror.ErrVerificationFailed("signature or status check failed")
		}
		return nil, apperror.ErrGateway(err)
	}
	return s.ApplyGatewayStatus(ctx, *status, payload)
}

// ApplyGatewayStatus settles the ledger row for gs.OrderID. The row is locked
// for the whole transaction and the status moves at most once out of pending,
// so duplicate or concurrent deliveries credit the wallet exactly once.
func (s *ReconcileServiceImpl) ApplyGatewayStatus(
	ctx context.Context, gs domain.GatewayStatus, payload []byte,
) (*ports.ReconcileResult, error) {
	outcome := gs.Outcome()

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	txn, err := s.txRepo.GetByOrderIDForUpdate(ctx, dbTx, gs.OrderID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("lock topup: %w", err))
	}
	if txn == nil {
		return nil, apperror.ErrTransactionNotFound()
	}

	if !gs.MatchesAmount(txn.Amount) {
		s.log.Warn().
			Str("order_id", gs.OrderID).
			Int64("ledger_amount", txn.Amount).
			Str("gross_amount", gs.GrossAmount.String()).
			Msg("gateway amount does not match ledger")
		return nil, apperror.ErrAmountMismatch()
	}

	now := s.now().UTC()
	patch := domain.GatewayStatusPatch(gs, now)
	result := &ports.ReconcileResult{
		OrderID: gs.OrderID,
		UserID:  txn.UserID,
		Status:  txn.Status,
	}

	if txn.IsTerminal() || !outcome.IsTerminal() {
		if err := s.txRepo.MergeMetadata(ctx, dbTx, txn.ID, patch); err != nil {
			return nil, apperror.ErrDatabaseError(fmt.Errorf("merge metadata: %w", err))
		}
	} else {
		applied, err := s.txRepo.UpdateStatus(ctx, dbTx, txn.ID, domain.TransactionStatusPending, outcome, patch)
		if err != nil {
			return nil, apperror.ErrDatabaseError(fmt.Errorf("update status: %w", err))
		}
		if !applied {
			return nil, apperror.InternalError(fmt.Errorf("topup %s left pending while locked", gs.OrderID))
		}
		if outcome == domain.TransactionStatusCompleted {
			if err := s.credit(ctx, dbTx, txn); err != nil {
				return nil, err
			}
		}
		result.Status = outcome
		result.Applied = true
	}

	if err := s.notifRepo.Create(ctx, dbTx, &domain.NotificationLog{
		ID:                uuid.New(),
		OrderID:           gs.OrderID,
		TransactionStatus: gs.TransactionStatus,
		FraudStatus:       gs.FraudStatus,
		Outcome:           outcome,
		Applied:           result.Applied,
		Payload:           payload,
		ReceivedAt:        now,
	}); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("log notification: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.cacheStatus(ctx, gs.OrderID, result.Status)

	s.log.Info().
		Str("order_id", gs.OrderID).
		Str("user_id", txn.UserID).
		Str("transaction_status", gs.TransactionStatus).
		Str("fraud_status", gs.FraudStatus).
		Str("status", string(result.Status)).
		Bool("applied", result.Applied).
		Msg("gateway status reconciled")

	return result, nil
}

// ExpirePending fails a pending top-up the gateway has no record of.
// Returns false when the row had already settled.
func (s *ReconcileServiceImpl) ExpirePending(ctx context.Context, orderID, reason string) (bool, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return false, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	txn, err := s.txRepo.GetByOrderIDForUpdate(ctx, dbTx, orderID)
	if err != nil {
		return false, apperror.ErrDatabaseError(fmt.Errorf("lock topup: %w", err))
	}
	if txn == nil {
		return false, apperror.ErrTransactionNotFound()
	}
	if txn.IsTerminal() {
		return false, nil
	}

	patch := domain.Metadata{
		domain.MetaExpiredReason: reason,
		domain.MetaUpdatedAt:     s.now().UTC().Format(time.RFC3339),
	}
	applied, err := s.txRepo.UpdateStatus(ctx, dbTx, txn.ID, domain.TransactionStatusPending, domain.TransactionStatusFailed, patch)
	if err != nil {
		return false, apperror.ErrDatabaseError(fmt.Errorf("expire topup: %w", err))
	}
	if err := dbTx.Commit(ctx); err != nil {
		return false, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	if applied {
		s.cacheStatus(ctx, orderID, domain.TransactionStatusFailed)
		s.log.Info().Str("order_id", orderID).Str("reason", reason).Msg("pending topup expired")
	}
	return applied, nil
}

// credit adds the top-up amount to the owner's balance under a profile lock.
func (s *ReconcileServiceImpl) credit(ctx context.Context, dbTx pgx.Tx, txn *domain.WalletTransaction) error {
	balance, err := s.accountRepo.GetBalanceForUpdate(ctx, dbTx, txn.UserID)
	if err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("lock profile: %w", err))
	}
	if err := s.accountRepo.UpdateBalance(ctx, dbTx, txn.UserID, balance+txn.Amount); err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("credit wallet: %w", err))
	}
	return nil
}

// cacheStatus stores terminal statuses for the poller (best-effort).
func (s *ReconcileServiceImpl) cacheStatus(ctx context.Context, orderID string, status domain.TransactionStatus) {
	if s.cache == nil || !status.IsTerminal() {
		return
	}
	if err := s.cache.Set(ctx, orderID, status, s.cacheTTL); err != nil {
		s.log.Warn().Err(err).Str("order_id", orderID).Msg("failed to cache topup status in redis")
	}
}
