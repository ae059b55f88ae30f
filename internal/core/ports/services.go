package ports

import (
	"context"
	"time"

	"klikjasa-wallet/internal/core/domain"
)

// StatusCache is the Redis-layer cache of terminal statuses (fast path for polling).
type StatusCache interface {
	// Get returns the cached status and whether it was present.
	Get(ctx context.Context, orderID string) (domain.TransactionStatus, bool, error)
	Set(ctx context.Context, orderID string, status domain.TransactionStatus, ttl time.Duration) error
}

// RateLimitStore counts requests in fixed windows.
type RateLimitStore interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (*RateLimitResult, error)
}

// RateLimitResult holds the result of a rate limit check.
type RateLimitResult struct {
	Allowed   bool
	Limit     int64
	Remaining int64
	ResetAt   int64 // Unix timestamp
}

// TokenVerifier validates access tokens issued by the BaaS.
type TokenVerifier interface {
	Verify(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	UserID string
	Email  string
	Role   string
}

// --- Service Ports (Business Logic) ---

// TopupService opens payment sessions for wallet top-ups.
type TopupService interface {
	CreatePayment(ctx context.Context, req TopupRequest) (*TopupSession, error)
}

// TopupRequest holds validated input for a top-up.
type TopupRequest struct {
	Amount    int64
	UserID    string
	UserEmail string
	UserName  string
}

// TopupSession is returned to the client to open the hosted payment page.
type TopupSession struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
	OrderID     string `json:"order_id"`
}

// ReconcileService applies gateway status changes to the ledger.
type ReconcileService interface {
	HandleNotification(ctx context.Context, payload []byte) (*ReconcileResult, error)
	ApplyGatewayStatus(ctx context.Context, status domain.GatewayStatus, payload []byte) (*ReconcileResult, error)
	// ExpirePending fails a pending top-up the gateway never heard of.
	ExpirePending(ctx context.Context, orderID, reason string) (bool, error)
}

// ReconcileResult describes what a single reconciliation did.
type ReconcileResult struct {
	OrderID string
	UserID  string
	Status  domain.TransactionStatus
	Applied bool // status changed by this call
}

// StatusService answers client polling.
type StatusService interface {
	CheckStatus(ctx context.Context, orderID string) (domain.TransactionStatus, error)
}

// AuditService records audit entries.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}
