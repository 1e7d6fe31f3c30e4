package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
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

// ---- Validation (VAL) ----

// Validation returns a generic validation error with a caller-supplied reason.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}

func ErrAmountBelowMinimum(minSat int64) *AppError {
	return New("VAL_002", fmt.Sprintf("The minimum amount is %d sats", minSat), http.StatusBadRequest)
}

func ErrAmountAboveMaximum(maxSat int64) *AppError {
	return New("VAL_003", fmt.Sprintf("The maximum amount is %d sats", maxSat), http.StatusBadRequest)
}

func ErrInvalidInvoice(err error) *AppError {
	return Wrap("VAL_004", "Invalid BOLT11 invoice", http.StatusBadRequest, err)
}

func ErrSelfPayment() *AppError {
	return New("VAL_005", "Cannot pay your own invoice", http.StatusBadRequest)
}

// ---- Admission control (ADM) ----

// Admission rejections are retryable: the caps free up as pending work
// settles, so they all map to 429.

func ErrTooManyPendingInvoices() *AppError {
	return New("ADM_001", "Too many pending invoices", http.StatusTooManyRequests)
}

func ErrTooManyPendingPayments() *AppError {
	return New("ADM_002", "Too many pending payments", http.StatusTooManyRequests)
}

func ErrRegistrationCapReached() *AppError {
	return New("ADM_003", "Registration is temporarily closed, please try again later", http.StatusTooManyRequests)
}

// ---- Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrUsernameExists() *AppError {
	return New("AUTH_002", "Username already exists", http.StatusConflict)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrUserNotFound() *AppError {
	return New("AUTH_004", "User not found", http.StatusNotFound)
}

// ---- Payment business logic (PAY) ----

func ErrInsufficientBalance() *AppError {
	return New("PAY_001", "Insufficient balance", http.StatusPaymentRequired)
}

// ---- Payment node (LN) ----

func ErrNodeUnavailable(err error) *AppError {
	return Wrap("LN_001", "Payment node request failed", http.StatusBadGateway, err)
}

// ---- Rate limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Integrity marks a broken exactly-once or balance guarantee. Callers must
// treat it as unrecoverable for the operation: the reconciliation loop stops
// rather than acknowledge the event that produced it.
func Integrity(message string, err error) *AppError {
	return Wrap("SYS_002", message, http.StatusInternalServerError, err)
}

// IsIntegrity reports whether err is (or wraps) an integrity violation.
func IsIntegrity(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == "SYS_002"
}
