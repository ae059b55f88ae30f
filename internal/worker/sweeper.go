// Package worker runs background jobs next to the HTTP server.
package worker

import (
	"context"
	"errors"
	"time"

	"klikjasa-wallet/config"
	"klikjasa-wallet/internal/core/domain"
	"klikjasa-wallet/internal/core/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const expiredReason = "order unknown to payment gateway"

// SweepStats summarises one pass.
type SweepStats struct {
	Scanned int
	Settled int
	Expired int
	Failed  int
}

// Sweeper resolves top-ups that stayed pending because a notification never
// arrived or the process died between the gateway call and the metadata write.
type Sweeper struct {
	txRepo    ports.WalletTransactionRepository
	gateway   ports.PaymentGateway
	reconcile ports.ReconcileService
	audit     ports.AuditService // optional
	cfg       config.SweeperConfig
	now       func() time.Time
	log       zerolog.Logger
}

// NewSweeper creates a Sweeper. audit may be nil.
func NewSweeper(
	txRepo ports.WalletTransactionRepository,
	gateway ports.PaymentGateway,
	reconcile ports.ReconcileService,
	audit ports.AuditService,
	cfg config.SweeperConfig,
	log zerolog.Logger,
) *Sweeper {
	return &Sweeper{
		txRepo:    txRepo,
		gateway:   gateway,
		reconcile: reconcile,
		audit:     audit,
		cfg:       cfg,
		now:       time.Now,
		log:       log.With().Str("component", "sweeper").Logger(),
	}
}

// Run sweeps every cfg.Interval until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	s.log.Info().
		Dur("interval", s.cfg.Interval).
		Dur("pending_ttl", s.cfg.PendingTTL).
		Msg("pending sweeper started")

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("pending sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil {
				s.log.Error().Err(err).Msg("sweep failed")
			}
		}
	}
}

// SweepOnce processes one batch of stale pending top-ups.
func (s *Sweeper) SweepOnce(ctx context.Context) (SweepStats, error) {
	var stats SweepStats

	cutoff := s.now().Add(-s.cfg.PendingTTL)
	stale, err := s.txRepo.ListStalePending(ctx, cutoff, s.cfg.BatchSize)
	if err != nil {
		return stats, err
	}

	for i := range stale {
		if ctx.Err() != nil {
			break
		}
		stats.Scanned++
		txn := &stale[i]
		orderID := txn.OrderID()
		log := s.log.With().Str("order_id", orderID).Logger()

		gs, err := s.gateway.FetchStatus(ctx, orderID)
		switch {
		case errors.Is(err, ports.ErrGatewayOrderNotFound):
			expired, err := s.reconcile.ExpirePending(ctx, orderID, expiredReason)
			if err != nil {
				stats.Failed++
				log.Warn().Err(err).Msg("failed to expire pending topup")
				continue
			}
			if expired {
				stats.Expired++
				s.logExpired(ctx, txn)
			}
		case err != nil:
			stats.Failed++
			log.Warn().Err(err).Msg("gateway status lookup failed")
		default:
			if gs.OrderID == "" {
				gs.OrderID = orderID
			}
			res, err := s.reconcile.ApplyGatewayStatus(ctx, *gs, nil)
			if err != nil {
				stats.Failed++
				log.Warn().Err(err).Msg("failed to reconcile pending topup")
				continue
			}
			if res.Applied {
				stats.Settled++
			}
		}
	}

	if stats.Scanned > 0 {
		s.log.Info().
			Int("scanned", stats.Scanned).
			Int("settled", stats.Settled).
			Int("expired", stats.Expired).
			Int("failed", stats.Failed).
			Msg("sweep finished")
	}
	return stats, nil
}

func (s *Sweeper) logExpired(ctx context.Context, txn *domain.WalletTransaction) {
	if s.audit == nil {
		return
	}
	userID := txn.UserID
	s.audit.Log(ctx, &domain.AuditLog{
		ID:           uuid.New(),
		UserID:       &userID,
		Action:       domain.AuditActionPendingExpired,
		ResourceType: "wallet_transaction",
		ResourceID:   txn.OrderID(),
		Details:      `{"reason":"` + expiredReason + `"}`,
		CreatedAt:    s.now().UTC(),
	})
}
