package handler

import (
	"klikjasa-wallet/internal/adapter/http/dto"
	"klikjasa-wallet/internal/adapter/http/middleware"
	"klikjasa-wallet/internal/core/ports"
	"klikjasa-wallet/pkg/apperror"
	"klikjasa-wallet/pkg/response"

	"github.com/gin-gonic/gin"
)

// WebhookHandler receives payment notifications from the gateway.
type WebhookHandler struct {
	reconcileSvc ports.ReconcileService
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(reconcileSvc ports.ReconcileService) *WebhookHandler {
	return &WebhookHandler{reconcileSvc: reconcileSvc}
}

// Notify handles POST /webhook. The raw body is passed on untouched because
// the signature covers the exact gross_amount string.
func (h *WebhookHandler) Notify(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil || len(payload) == 0 {
		response.Error(c, apperror.Validation("Invalid notification body"))
		return
	}

	result, err := h.reconcileSvc.HandleNotification(c.Request.Context(), payload)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Set(middleware.CtxOrderID, result.OrderID)
	if result.UserID != "" {
		c.Set(middleware.CtxUserID, result.UserID)
	}
	response.OK(c, dto.WebhookResponse{Success: true})
}
