package handler

import (
	"klikjasa-wallet/internal/adapter/http/dto"
	"klikjasa-wallet/internal/adapter/http/middleware"
	"klikjasa-wallet/internal/core/ports"
	"klikjasa-wallet/pkg/apperror"
	"klikjasa-wallet/pkg/response"

	"github.com/gin-gonic/gin"
)

// PaymentHandler handles the top-up endpoints called by the web client.
type PaymentHandler struct {
	topupSvc  ports.TopupService
	statusSvc ports.StatusService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(topupSvc ports.TopupService, statusSvc ports.StatusService) *PaymentHandler {
	return &PaymentHandler{topupSvc: topupSvc, statusSvc: statusSvc}
}

// CreatePayment handles POST /create-payment.
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var req dto.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation("Invalid request body"))
		return
	}
	dto.SanitizeStruct(&req)

	// BaaSAuth sets CtxUserID; a token may only top up its own wallet.
	if sub := c.GetString(middleware.CtxUserID); sub != "" && req.UserID != "" && sub != req.UserID {
		response.Error(c, apperror.ErrForbiddenUser())
		return
	}

	session, err := h.topupSvc.CreatePayment(c.Request.Context(), ports.TopupRequest{
		Amount:    req.Amount,
		UserID:    req.UserID,
		UserEmail: req.UserEmail,
		UserName:  req.UserName,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Set(middleware.CtxUserID, req.UserID)
	c.Set(middleware.CtxOrderID, session.OrderID)

	response.OK(c, dto.CreatePaymentResponse{
		Token:       session.Token,
		RedirectURL: session.RedirectURL,
		OrderID:     session.OrderID,
	})
}

// CheckStatus handles POST /check-status.
func (h *PaymentHandler) CheckStatus(c *gin.Context) {
	var req dto.CheckStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation("Invalid request body"))
		return
	}
	c.Set(middleware.CtxOrderID, req.OrderID)

	status, err := h.statusSvc.CheckStatus(c.Request.Context(), req.OrderID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.CheckStatusResponse{Status: string(status)})
}
