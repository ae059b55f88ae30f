package handler

import (
	"time"

	"klikjasa-wallet/internal/adapter/http/middleware"
	"klikjasa-wallet/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	TopupSvc       ports.TopupService
	ReconcileSvc   ports.ReconcileService
	StatusSvc      ports.StatusService
	TokenVerifier  ports.TokenVerifier  // nil = bearer tokens not checked
	RateLimitStore ports.RateLimitStore // nil = in-process limiter only
	HealthCheckers []ports.HealthChecker
	AuditSvc       ports.AuditService // nil = audit logging disabled
	AllowedOrigins []string
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.CORS(deps.AllowedOrigins))
	r.Use(middleware.MaxBodySize(64 << 10))

	if deps.AuditSvc != nil {
		r.Use(middleware.AuditLog(deps.AuditSvc))
	}

	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	swagger := r.Group("/swagger")
	{
		swagger.GET("", SwaggerUI)
		swagger.GET("/spec", SwaggerSpec)
	}

	rules := middleware.DefaultRateLimitRules()
	local := middleware.NewLocalLimiter(3 * time.Minute)
	rl := func(group string) gin.HandlerFunc {
		return middleware.RateLimiter(deps.RateLimitStore, local, group, rules[group], deps.Logger)
	}

	auth := func(c *gin.Context) { c.Next() }
	if deps.TokenVerifier != nil {
		auth = middleware.BaaSAuth(deps.TokenVerifier, deps.Logger)
	}

	paymentHandler := NewPaymentHandler(deps.TopupSvc, deps.StatusSvc)
	webhookHandler := NewWebhookHandler(deps.ReconcileSvc)

	// The web client calls the bare paths; /api/v1/wallet is the versioned base.
	for _, g := range []*gin.RouterGroup{&r.RouterGroup, r.Group("/api/v1/wallet")} {
		g.POST("/create-payment", auth, rl("create_payment"), paymentHandler.CreatePayment)
		g.POST("/webhook", webhookHandler.Notify)
		g.POST("/check-status", rl("check_status"), paymentHandler.CheckStatus)
	}

	return r
}
