package dto

import (
	"time"

	"lnledger/internal/core/domain"
)

// RegisterRequest is the request body for account registration.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50,safe_id"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// LoginRequest is the request body for account login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is the response body for successful registration or login.
type AuthResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// CreateInvoiceRequest is the request body for issuing an invoice.
type CreateInvoiceRequest struct {
	AmountMsat  int64  `json:"amount_msat" binding:"required,gt=0"`
	Description string `json:"description" binding:"max=640"`
}

// InvoiceResponse is the response body for an issued invoice.
type InvoiceResponse struct {
	Bolt11      string `json:"bolt11"`
	PaymentHash string `json:"payment_hash"`
	AmountMsat  int64  `json:"amount_msat"`
	ExpiresAt   int64  `json:"expires_at"` // Unix timestamp
}

// PayRequest is the request body for submitting an outgoing payment.
// LnAddress, when present, records the Lightning Address the invoice was
// fetched for; it does not change submission semantics.
type PayRequest struct {
	Bolt11    string  `json:"bolt11" binding:"required"`
	LnAddress *string `json:"ln_address,omitempty"`
}

// QuoteRequest is the request body for pricing an invoice.
type QuoteRequest struct {
	Bolt11 string `json:"bolt11" binding:"required"`
}

// QuoteResponse is the decoded invoice plus the fee a send would incur.
type QuoteResponse struct {
	PaymentHash string `json:"payment_hash"`
	AmountMsat  int64  `json:"amount_msat"`
	FeeMsat     int64  `json:"fee_msat"`
	Description string `json:"description"`
	ExpirySecs  int64  `json:"expiry_secs"`
}

// BalanceResponse is the response for a balance query.
type BalanceResponse struct {
	BalanceMsat int64 `json:"balance_msat"`
}

// PaymentResponse is one entry of the merged payment history.
type PaymentResponse struct {
	ID          string  `json:"id"`
	Direction   string  `json:"direction"`
	AmountMsat  int64   `json:"amount_msat"`
	FeeMsat     int64   `json:"fee_msat"`
	Description string  `json:"description"`
	Bolt11      string  `json:"bolt11"`
	LnAddress   *string `json:"ln_address,omitempty"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"created_at"`
}

// FromPayment projects a domain payment into its response form.
func FromPayment(p domain.Payment) PaymentResponse {
	return PaymentResponse{
		ID:          p.ID,
		Direction:   string(p.Direction),
		AmountMsat:  p.AmountMsat,
		FeeMsat:     p.FeeMsat,
		Description: p.Description,
		Bolt11:      p.Bolt11,
		LnAddress:   p.LnAddress,
		Status:      p.Status,
		CreatedAt:   p.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// CreditRequest is the admin request body for crediting a user.
type CreditRequest struct {
	Username   string `json:"username" binding:"required,safe_id"`
	AmountMsat int64  `json:"amount_msat" binding:"required,gt=0"`
}

// UserInfoResponse is one row of the admin user listing.
type UserInfoResponse struct {
	Username    string `json:"username"`
	BalanceMsat int64  `json:"balance_msat"`
	CreatedAt   string `json:"created_at"`
}

// SendOnchainRequest is the admin request body for an on-chain send.
type SendOnchainRequest struct {
	Address      string `json:"address" binding:"required"`
	AmountSats   int64  `json:"amount_sats" binding:"required,gt=0"`
	FeeRateSatVB *int64 `json:"fee_rate_sat_vb,omitempty"`
}

// OpenChannelRequest is the admin request body for opening a channel.
type OpenChannelRequest struct {
	NodeID                 string `json:"node_id" binding:"required"`
	Address                string `json:"address" binding:"required"`
	ChannelAmountSats      int64  `json:"channel_amount_sats" binding:"required,gt=0"`
	PushToCounterpartyMsat *int64 `json:"push_to_counterparty_msat,omitempty"`
}

// CloseChannelRequest is the admin request body for closing a channel.
type CloseChannelRequest struct {
	ChannelID          string `json:"channel_id" binding:"required"`
	CounterpartyNodeID string `json:"counterparty_node_id" binding:"required"`
	Force              bool   `json:"force"`
}

// ConnectPeerRequest is the admin request body for connecting a peer.
type ConnectPeerRequest struct {
	NodeID  string `json:"node_id" binding:"required"`
	Address string `json:"address" binding:"required"`
	Persist bool   `json:"persist"`
}

// DisconnectPeerRequest is the admin request body for disconnecting a peer.
type DisconnectPeerRequest struct {
	NodeID string `json:"node_id" binding:"required"`
}

// LnurlPayInfoResponse is the LNURL-pay discovery document
// (LUD-06/LUD-16 field names).
type LnurlPayInfoResponse struct {
	Tag         string `json:"tag"`
	Callback    string `json:"callback"`
	MinSendable int64  `json:"minSendable"`
	MaxSendable int64  `json:"maxSendable"`
	Metadata    string `json:"metadata"`
}

// LnurlCallbackSuccess carries the issued invoice. LNURL clients expect the
// bolt11 string under "pr".
type LnurlCallbackSuccess struct {
	Pr string `json:"pr"`
}

// LnurlCallbackError is the LNURL-style error envelope, returned with
// HTTP 200 per the LNURL protocol.
type LnurlCallbackError struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}
