package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without wrapped error",
			appErr:   ErrMissingUser(),
			expected: "[PAY_008] userId is required",
		},
		{
			name:     "with wrapped error",
			appErr:   ErrGateway(fmt.Errorf("snap: 401 unauthorized")),
			expected: "[PAY_009] Payment gateway error: snap: 401 unauthorized",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appErr.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("connection refused")
	appErr := ErrDatabaseError(inner)

	assert.True(t, errors.Is(appErr, inner))
	assert.Nil(t, ErrMissingUser().Unwrap())
}

func TestAppError_IsMatchesCode(t *testing.T) {
	wrapped := fmt.Errorf("check status: %w", ErrTransactionNotFound())

	assert.True(t, errors.Is(wrapped, ErrTransactionNotFound()))
	assert.False(t, errors.Is(wrapped, ErrMissingUser()))
	assert.True(t, errors.Is(ErrAmountMismatch(), ErrVerificationFailed("any")))
}

func TestErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"InvalidToken", ErrInvalidToken(), "SEC_001", http.StatusUnauthorized},
		{"VerificationFailed", ErrVerificationFailed("bad signature"), "SEC_002", http.StatusForbidden},
		{"ForbiddenUser", ErrForbiddenUser(), "SEC_003", http.StatusForbidden},
		{"BelowMinimum", ErrBelowMinimumTopup(10000), "PAY_002", http.StatusBadRequest},
		{"TransactionNotFound", ErrTransactionNotFound(), "PAY_004", http.StatusNotFound},
		{"MissingUser", ErrMissingUser(), "PAY_008", http.StatusBadRequest},
		{"Gateway", ErrGateway(errors.New("timeout")), "PAY_009", http.StatusInternalServerError},
		{"RateLimit", ErrRateLimitExceeded(), "RATE_001", http.StatusTooManyRequests},
		{"Internal", InternalError(errors.New("boom")), "SYS_001", http.StatusInternalServerError},
		{"Validation", Validation("order_id is required"), "PAY_002", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestErrBelowMinimumTopup_Message(t *testing.T) {
	assert.Equal(t, "Minimum top up is 10000", ErrBelowMinimumTopup(10000).Message)
}
