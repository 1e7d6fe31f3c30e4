package ports

import (
	"context"
	"time"

	"lnledger/internal/core/domain"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	// List returns every user with its computed balance.
	List(ctx context.Context) ([]domain.UserInfo, error)
	// CountRegisteredSince counts users created within the given window,
	// backing the daily-registration admission check.
	CountRegisteredSince(ctx context.Context, window time.Duration) (int64, error)
}

// InvoiceRepository defines persistence operations for pending receive intents.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *domain.Invoice) error
	GetByHash(ctx context.Context, paymentHash string) (*domain.Invoice, error)
	// CountPending counts invoices that are not expired and have no
	// matching receipt.
	CountPending(ctx context.Context, username string) (int64, error)
}

// ReceiptRepository defines persistence operations for confirmed incoming
// payments.
type ReceiptRepository interface {
	// InsertIdempotent inserts a receipt and reports whether a row was
	// written. A receipt with the same payment hash already existing is a
	// silent no-op, never a duplicate row and never an error: the
	// reconciliation loop may replay the same network event after a crash.
	InsertIdempotent(ctx context.Context, receipt *domain.Receipt) (bool, error)
	GetByHash(ctx context.Context, paymentHash string) (*domain.Receipt, error)
}

// SendRepository defines persistence operations for outgoing payments.
type SendRepository interface {
	Create(ctx context.Context, send *domain.Send) error
	GetByHash(ctx context.Context, paymentHash string) (*domain.Send, error)
	// Delete removes a provisional pending send whose network dispatch was
	// rejected before the node accepted it.
	Delete(ctx context.Context, paymentHash string) error
	CountPending(ctx context.Context, username string) (int64, error)
	// SumPending returns the total amount plus fee of the user's pending
	// sends. Admission subtracts this from the balance so in-flight sends
	// cannot spend the same funds twice.
	SumPending(ctx context.Context, username string) (int64, error)
	// UpdateStatus finalizes a pending send exactly once and returns the
	// updated row. Repeating a finalization is a no-op returning the
	// already-final row. A missing row is an integrity violation: the
	// caller only ever finalizes hashes it created.
	UpdateStatus(ctx context.Context, paymentHash string, status domain.SendStatus) (*domain.Send, error)
}

// RateCache stores the last known fiat exchange rates.
type RateCache interface {
	// Get returns the cached rates, or nil when empty or expired.
	Get(ctx context.Context) (map[string]float64, error)
	Set(ctx context.Context, rates map[string]float64, ttl time.Duration) error
}

// LedgerReader provides the derived read operations over the whole ledger.
type LedgerReader interface {
	// Balance computes sum(receipts) - sum(successful sends + fees) with a
	// consistent read, floored at zero. A negative computed sum is an
	// integrity violation, not a user-facing state.
	Balance(ctx context.Context, username string) (int64, error)
	// Payments returns the merged Receipt/Send projection ordered by
	// creation time.
	Payments(ctx context.Context, username string) ([]domain.Payment, error)
}
