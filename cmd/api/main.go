package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"klikjasa-wallet/config"
	"klikjasa-wallet/internal/adapter/gateway"
	httpHandler "klikjasa-wallet/internal/adapter/http/handler"
	memStorage "klikjasa-wallet/internal/adapter/storage/memory"
	pgStorage "klikjasa-wallet/internal/adapter/storage/postgres"
	redisStorage "klikjasa-wallet/internal/adapter/storage/redis"
	"klikjasa-wallet/internal/core/ports"
	"klikjasa-wallet/internal/service"
	"klikjasa-wallet/internal/worker"
	"klikjasa-wallet/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// storage groups the repositories of whichever backend is configured.
type storage struct {
	txRepo      ports.WalletTransactionRepository
	accountRepo ports.AccountRepository
	notifRepo   ports.NotificationRepository
	auditRepo   ports.AuditRepository
	transactor  ports.DBTransactor
	health      []ports.HealthChecker
	close       func()
}

func main() {
	// Load configuration
	cfg, err := config.Load(os.Getenv("KJ_CONFIG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Str("database", cfg.Database.Driver).
		Bool("midtrans_production", cfg.Midtrans.IsProduction).
		Msg("Starting KlikJasa wallet service")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := openStorage(ctx, cfg, log)
	defer store.close()

	// Redis is optional: without it the poller reads the ledger directly and
	// rate limits are kept in process.
	var (
		statusCache    ports.StatusCache
		rateLimitStore ports.RateLimitStore
	)
	if cfg.Redis.Enabled {
		rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		log.Info().Msg("Redis connected")

		statusCache = redisStorage.NewStatusCache(rdb)
		rateLimitStore = redisStorage.NewRateLimitStore(rdb)
		store.health = append(store.health, redisStorage.NewHealthCheck(rdb))
	}

	midtrans := gateway.NewMidtransClient(cfg.Midtrans, log)

	// Initialize business services
	topupSvc := service.NewTopupService(store.txRepo, midtrans, cfg.Topup.MinAmount, log)
	reconcileSvc := service.NewReconcileService(
		store.txRepo,
		store.accountRepo,
		store.notifRepo,
		store.transactor,
		midtrans,
		statusCache,
		cfg.Topup.StatusCacheTTL,
		log,
	)
	statusSvc := service.NewStatusService(store.txRepo, statusCache, log)
	auditSvc := service.NewAuditService(store.auditRepo, log)

	var tokenVerifier ports.TokenVerifier
	if cfg.Auth.JWTSecret != "" {
		tokenVerifier = service.NewJWTVerifier(cfg.Auth.JWTSecret)
	} else {
		log.Warn().Msg("auth.jwt_secret not set, create-payment accepts unauthenticated calls")
	}

	if cfg.Sweeper.Enabled {
		sweeper := worker.NewSweeper(store.txRepo, midtrans, reconcileSvc, auditSvc, cfg.Sweeper, log)
		go sweeper.Run(ctx)
	}

	gin.SetMode(ginMode(cfg.Server.Mode))
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		TopupSvc:       topupSvc,
		ReconcileSvc:   reconcileSvc,
		StatusSvc:      statusSvc,
		TokenVerifier:  tokenVerifier,
		RateLimitStore: rateLimitStore,
		HealthCheckers: store.health,
		AuditSvc:       auditSvc,
		AllowedOrigins: cfg.Server.CORSAllowedOrigins,
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) storage {
	if cfg.Database.InMemory() {
		log.Warn().Msg("Using in-memory storage, data is lost on restart")
		mem := memStorage.NewStore()
		return storage{
			txRepo:      mem.WalletTransactions(),
			accountRepo: mem.Accounts(),
			notifRepo:   mem.NotificationLog(),
			auditRepo:   mem.Audit(),
			transactor:  mem,
			close:       func() {},
		}
	}

	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	log.Info().Msg("PostgreSQL connected")

	if cfg.Database.AutoMigrate {
		if err := pgStorage.Migrate(ctx, pool, log); err != nil {
			pool.Close()
			log.Fatal().Err(err).Msg("Failed to apply migrations")
		}
	}

	return storage{
		txRepo:      pgStorage.NewWalletTransactionRepo(pool),
		accountRepo: pgStorage.NewAccountRepo(pool),
		notifRepo:   pgStorage.NewNotificationRepo(pool),
		auditRepo:   pgStorage.NewAuditRepo(pool),
		transactor:  pgStorage.NewTransactor(pool),
		health:      []ports.HealthChecker{pgStorage.NewHealthCheck(pool)},
		close:       pool.Close,
	}
}

func ginMode(mode string) string {
	switch mode {
	case gin.DebugMode, gin.TestMode:
		return mode
	}
	return gin.ReleaseMode
}
