package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	e := New("VAL_001", "bad input", http.StatusBadRequest)
	assert.Equal(t, "[VAL_001] bad input", e.Error())

	wrapped := Wrap("SYS_001", "internal", http.StatusInternalServerError, errors.New("db down"))
	assert.Equal(t, "[SYS_001] internal: db down", wrapped.Error())
}

func TestAppError_Unwrap(t *testing.T) {
	inner := errors.New("connection refused")
	e := InternalError(fmt.Errorf("query users: %w", inner))
	assert.True(t, errors.Is(e, inner))
}

func TestAppError_ErrorsAs(t *testing.T) {
	var appErr *AppError
	err := fmt.Errorf("handler: %w", ErrInsufficientBalance())
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, "PAY_001", appErr.Code)
	assert.Equal(t, http.StatusPaymentRequired, appErr.HTTPStatus)
}

func TestConstructors_StatusCodes(t *testing.T) {
	tests := []struct {
		err    *AppError
		code   string
		status int
	}{
		{Validation("nope"), "VAL_001", http.StatusBadRequest},
		{ErrAmountBelowMinimum(1), "VAL_002", http.StatusBadRequest},
		{ErrAmountAboveMaximum(100000), "VAL_003", http.StatusBadRequest},
		{ErrSelfPayment(), "VAL_005", http.StatusBadRequest},
		{ErrTooManyPendingInvoices(), "ADM_001", http.StatusTooManyRequests},
		{ErrTooManyPendingPayments(), "ADM_002", http.StatusTooManyRequests},
		{ErrRegistrationCapReached(), "ADM_003", http.StatusTooManyRequests},
		{ErrInvalidCredentials(), "AUTH_001", http.StatusUnauthorized},
		{ErrUsernameExists(), "AUTH_002", http.StatusConflict},
		{ErrInvalidToken(), "AUTH_003", http.StatusUnauthorized},
		{ErrInsufficientBalance(), "PAY_001", http.StatusPaymentRequired},
		{ErrNodeUnavailable(errors.New("timeout")), "LN_001", http.StatusBadGateway},
		{ErrRateLimitExceeded(), "RATE_001", http.StatusTooManyRequests},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.code, tt.err.Code)
		assert.Equal(t, tt.status, tt.err.HTTPStatus)
	}
}

func TestErrAmountBounds_Messages(t *testing.T) {
	assert.Contains(t, ErrAmountBelowMinimum(10).Message, "10 sats")
	assert.Contains(t, ErrAmountAboveMaximum(100000).Message, "100000 sats")
}

func TestIsIntegrity(t *testing.T) {
	e := Integrity("send record missing", nil)
	assert.True(t, IsIntegrity(e))
	assert.True(t, IsIntegrity(fmt.Errorf("reconcile: %w", e)))
	assert.False(t, IsIntegrity(ErrInsufficientBalance()))
	assert.False(t, IsIntegrity(errors.New("plain")))
}
