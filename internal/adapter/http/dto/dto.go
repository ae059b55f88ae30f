package dto

// CreatePaymentRequest is the request body for opening a top-up session.
// amount and userId are checked by the top-up service so that the amount
// error wins when both are wrong.
type CreatePaymentRequest struct {
	Amount    int64  `json:"amount"`
	UserID    string `json:"userId" binding:"omitempty,max=64,safe_id"`
	UserEmail string `json:"userEmail" binding:"omitempty,max=254"`
	UserName  string `json:"userName" binding:"omitempty,max=100" sanitize:"html"`
}

// CreatePaymentResponse carries the hosted payment page to the web client.
type CreatePaymentResponse struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
	OrderID     string `json:"order_id"`
}

// CheckStatusRequest is the request body for polling a top-up.
type CheckStatusRequest struct {
	OrderID string `json:"order_id" binding:"omitempty,max=64,safe_id"`
}

// CheckStatusResponse is the response body for polling a top-up.
type CheckStatusResponse struct {
	Status string `json:"status"`
}

// WebhookResponse acknowledges a processed gateway notification.
type WebhookResponse struct {
	Success bool `json:"success"`
}
