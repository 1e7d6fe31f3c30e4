package ports

import (
	"context"
	"time"

	"lnledger/internal/core/domain"
)

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT session credentials.
type TokenService interface {
	Generate(username string) (string, time.Time, error)
	Validate(tokenString string) (username string, err error)
}

// EventBus is the per-user fan-out of domain events to live subscribers.
// Publication is best-effort: no subscriber, or a subscriber that cannot
// keep up, means the event is dropped. The ledger stays correct regardless.
type EventBus interface {
	Publish(username string, event domain.AppEvent)
	// Subscribe returns a channel of events for one user, closed when the
	// returned cancel function runs. Only events published after the call
	// are delivered.
	Subscribe(username string) (<-chan domain.AppEvent, func())
}

// SettlementEngine applies confirmed payment outcomes to the ledger exactly
// once and announces the result. It never talks to the payment node.
type SettlementEngine interface {
	// SettleIncoming records a confirmed incoming payment idempotently and
	// publishes balance and payment events for the recipient.
	SettleIncoming(ctx context.Context, receipt domain.Receipt) error
	// SettleOutgoing finalizes a pending send and publishes events for its
	// owner. Returns the finalized send.
	SettleOutgoing(ctx context.Context, paymentHash string, succeeded bool) (*domain.Send, error)
}

// --- Service Ports (Business Logic) ---

// AuthService defines account registration and login.
type AuthService interface {
	// Register creates a user, enforcing the daily registration cap, and
	// returns a session token.
	Register(ctx context.Context, username, password string) (token string, expiry time.Time, err error)
	Login(ctx context.Context, username, password string) (token string, expiry time.Time, err error)
}

// InvoiceQuote is the decoded view of an invoice plus the fee this gateway
// would charge to pay it.
type InvoiceQuote struct {
	PaymentHash string
	AmountMsat  int64
	FeeMsat     int64
	Description string
	ExpirySecs  int64
}

// PaymentService defines the user-facing payment operations.
type PaymentService interface {
	// CreateInvoice issues a BOLT11 invoice for the user, enforcing the
	// pending-invoice cap and amount bounds.
	CreateInvoice(ctx context.Context, username string, amountMsat int64, description string) (*domain.Invoice, error)
	// SubmitPayment runs the admission-controlled submission protocol for
	// one invoice: caps, bounds, pricing, serialized balance check, the
	// intra-ledger shortcut, or network dispatch.
	SubmitPayment(ctx context.Context, username, bolt11 string, lnAddress *string) error
	// Quote decodes an invoice and prices the send without submitting it.
	Quote(ctx context.Context, bolt11 string) (*InvoiceQuote, error)
	Balance(ctx context.Context, username string) (int64, error)
	Payments(ctx context.Context, username string) ([]domain.Payment, error)
}

// AdminService defines administrator-only ledger operations.
type AdminService interface {
	// CreditUser mints a receipt for the user outside any invoice flow.
	CreditUser(ctx context.Context, username string, amountMsat int64) error
	ListUsers(ctx context.Context) ([]domain.UserInfo, error)
}

// RateService exposes best-effort fiat reference rates for balances.
type RateService interface {
	// Rates returns fiat currency units per BTC. Served from cache when the
	// feed is unavailable; staleness is acceptable.
	Rates(ctx context.Context) (map[string]float64, error)
}
