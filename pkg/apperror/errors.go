package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"error"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches any *AppError carrying the same code, so callers can write
// errors.Is(err, apperror.ErrTransactionNotFound()).
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Security (SEC) ----

func ErrInvalidToken() *AppError {
	return New("SEC_001", "Invalid or expired token", http.StatusUnauthorized)
}

// ErrVerificationFailed is returned when a gateway notification cannot be
// authenticated. Nothing is written when this is returned.
func ErrVerificationFailed(reason string) *AppError {
	return New("SEC_002", "Notification verification failed: "+reason, http.StatusForbidden)
}

func ErrForbiddenUser() *AppError {
	return New("SEC_003", "Token subject does not match userId", http.StatusForbidden)
}

// ---- Top-up Business Logic (PAY) ----

func ErrBelowMinimumTopup(minAmount int64) *AppError {
	return New("PAY_002", fmt.Sprintf("Minimum top up is %d", minAmount), http.StatusBadRequest)
}

func ErrNotFound(entity string) *AppError {
	return New("PAY_004", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrTransactionNotFound() *AppError {
	return ErrNotFound("Transaction")
}

func ErrAmountMismatch() *AppError {
	return New("SEC_002", "Notification verification failed: gross amount does not match ledger", http.StatusForbidden)
}

func ErrMissingUser() *AppError {
	return New("PAY_008", "userId is required", http.StatusBadRequest)
}

// ErrGateway wraps a failure of the payment gateway. The caller may retry the whole call.
func ErrGateway(err error) *AppError {
	return Wrap("PAY_009", "Payment gateway error", http.StatusInternalServerError, err)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a PAY_002-style validation error.
func Validation(message string) *AppError {
	return New("PAY_002", message, http.StatusBadRequest)
}
