package middleware

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"klikjasa-wallet/internal/core/domain"
	"klikjasa-wallet/internal/core/ports"
	"klikjasa-wallet/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuditLog records successful top-up requests and gateway notifications.
// Handlers expose the affected order and user through CtxOrderID and CtxUserID.
func AuditLog(auditSvc ports.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Status() < 200 || c.Writer.Status() >= 300 {
			return
		}
		if c.Request.Method != http.MethodPost {
			return
		}

		action := mapPathToAction(c.Request.URL.Path)
		if action == "" {
			return
		}

		var userID *string
		if uid := c.GetString(CtxUserID); uid != "" {
			userID = &uid
		}

		details, _ := json.Marshal(map[string]interface{}{
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"request_id": c.GetString(response.CtxRequestID),
		})

		auditSvc.Log(c.Request.Context(), &domain.AuditLog{
			ID:           uuid.New(),
			UserID:       userID,
			Action:       action,
			ResourceType: "wallet_transaction",
			ResourceID:   c.GetString(CtxOrderID),
			IPAddress:    c.ClientIP(),
			Details:      string(details),
			CreatedAt:    time.Now().UTC(),
		})
	}
}

func mapPathToAction(path string) domain.AuditAction {
	path = strings.TrimPrefix(path, "/api/v1/wallet")
	switch path {
	case "/create-payment":
		return domain.AuditActionTopupRequest
	case "/webhook":
		return domain.AuditActionGatewayNotification
	}
	return ""
}
