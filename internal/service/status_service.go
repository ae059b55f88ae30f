package service

import (
	"context"
	"fmt"
	"strings"

	"klikjasa-wallet/internal/core/domain"
	"klikjasa-wallet/internal/core/ports"
	"klikjasa-wallet/pkg/apperror"

	"github.com/rs/zerolog"
)

// StatusServiceImpl implements ports.StatusService. It never writes.
type StatusServiceImpl struct {
	txRepo ports.WalletTransactionRepository
	cache  ports.StatusCache // nil when Redis is disabled
	log    zerolog.Logger
}

// NewStatusService creates a new StatusServiceImpl. cache may be nil.
func NewStatusService(txRepo ports.WalletTransactionRepository, cache ports.StatusCache, log zerolog.Logger) *StatusServiceImpl {
	return &StatusServiceImpl{txRepo: txRepo, cache: cache, log: log}
}

// CheckStatus returns the current status of a top-up by order id.
func (s *StatusServiceImpl) CheckStatus(ctx context.Context, orderID string) (domain.TransactionStatus, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return "", apperror.Validation("order_id is required")
	}

	// Only terminal statuses are cached, so a hit is final.
	if s.cache != nil {
		status, ok, err := s.cache.Get(ctx, orderID)
		if err != nil {
			s.log.Warn().Err(err).Str("order_id", orderID).Msg("redis status lookup failed, falling through to DB")
		} else if ok {
			return status, nil
		}
	}

	txn, err := s.txRepo.GetByOrderID(ctx, orderID)
	if err != nil {
		return "", apperror.ErrDatabaseError(fmt.Errorf("get topup: %w", err))
	}
	if txn == nil {
		return "", apperror.ErrTransactionNotFound()
	}
	return txn.Status, nil
}
