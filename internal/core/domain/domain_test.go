package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSendStatus_Valid(t *testing.T) {
	assert.True(t, SendStatusPending.Valid())
	assert.True(t, SendStatusSuccessful.Valid())
	assert.True(t, SendStatusFailed.Valid())
	assert.False(t, SendStatus("cancelled").Valid())
}

func TestSendStatus_Terminal(t *testing.T) {
	assert.False(t, SendStatusPending.Terminal())
	assert.True(t, SendStatusSuccessful.Terminal())
	assert.True(t, SendStatusFailed.Terminal())
}

func TestInvoice_IsExpired(t *testing.T) {
	now := time.Now().UTC()
	inv := Invoice{ExpiresAt: now.Add(time.Hour)}
	assert.False(t, inv.IsExpired(now))
	assert.True(t, inv.IsExpired(now.Add(2*time.Hour)))
}

func TestReceipt_AsPayment(t *testing.T) {
	now := time.Now().UTC()
	r := Receipt{
		PaymentHash: "abc123",
		Username:    "alice",
		AmountMsat:  250_000,
		Description: "coffee",
		Bolt11:      "lnbc...",
		CreatedAt:   now,
	}
	p := r.AsPayment()
	assert.Equal(t, "abc123", p.ID)
	assert.Equal(t, PaymentDirectionReceive, p.Direction)
	assert.Equal(t, int64(250_000), p.AmountMsat)
	assert.Equal(t, int64(0), p.FeeMsat)
	assert.Equal(t, "successful", p.Status)
}

func TestSend_AsPayment(t *testing.T) {
	addr := "bob@ln.example.com"
	s := Send{
		PaymentHash: "def456",
		Username:    "alice",
		AmountMsat:  100_000,
		FeeMsat:     1_050,
		Status:      SendStatusPending,
		LnAddress:   &addr,
	}
	p := s.AsPayment()
	assert.Equal(t, "def456", p.ID)
	assert.Equal(t, PaymentDirectionSend, p.Direction)
	assert.Equal(t, int64(1_050), p.FeeMsat)
	assert.Equal(t, "pending", p.Status)
	assert.Equal(t, &addr, p.LnAddress)
}

func TestInvoice_AsReceipt(t *testing.T) {
	now := time.Now().UTC()
	inv := Invoice{
		PaymentHash: "abc123",
		Username:    "bob",
		AmountMsat:  42_000,
		Description: "tip",
		Bolt11:      "lnbc...",
		ExpiresAt:   now.Add(time.Hour),
		CreatedAt:   now.Add(-time.Minute),
	}
	r := inv.AsReceipt(now)
	assert.Equal(t, inv.PaymentHash, r.PaymentHash)
	assert.Equal(t, inv.Username, r.Username)
	assert.Equal(t, inv.AmountMsat, r.AmountMsat)
	assert.Equal(t, now, r.CreatedAt)
}
