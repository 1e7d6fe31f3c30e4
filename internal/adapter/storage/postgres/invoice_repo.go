package postgres

import (
	"context"
	"errors"
	"fmt"

	"lnledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// InvoiceRepo implements ports.InvoiceRepository.
type InvoiceRepo struct {
	pool Pool
}

// NewInvoiceRepo creates a new InvoiceRepo.
func NewInvoiceRepo(pool Pool) *InvoiceRepo {
	return &InvoiceRepo{pool: pool}
}

// Create inserts a new invoice. A duplicate payment hash returns
// domain.ErrAlreadyExists.
func (r *InvoiceRepo) Create(ctx context.Context, inv *domain.Invoice) error {
	query := `INSERT INTO invoices (payment_hash, username, amount_msat, description, bolt11, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		inv.PaymentHash, inv.Username, inv.AmountMsat, inv.Description,
		inv.Bolt11, inv.ExpiresAt, inv.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("insert invoice %s: %w", inv.PaymentHash, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// GetByHash fetches an invoice by payment hash. Returns nil when not found.
func (r *InvoiceRepo) GetByHash(ctx context.Context, paymentHash string) (*domain.Invoice, error) {
	query := `SELECT payment_hash, username, amount_msat, description, bolt11, expires_at, created_at
		FROM invoices WHERE payment_hash = $1`

	inv := &domain.Invoice{}
	err := r.pool.QueryRow(ctx, query, paymentHash).Scan(
		&inv.PaymentHash, &inv.Username, &inv.AmountMsat, &inv.Description,
		&inv.Bolt11, &inv.ExpiresAt, &inv.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice by hash: %w", err)
	}
	return inv, nil
}

// CountPending counts the user's unexpired, unsettled invoices. An invoice
// is settled once a receipt with the same payment hash exists.
func (r *InvoiceRepo) CountPending(ctx context.Context, username string) (int64, error) {
	query := `SELECT COUNT(*) FROM invoices i
		LEFT JOIN receipts rc ON rc.payment_hash = i.payment_hash
		WHERE i.username = $1 AND i.expires_at > NOW() AND rc.payment_hash IS NULL`

	var count int64
	if err := r.pool.QueryRow(ctx, query, username).Scan(&count); err != nil {
		return 0, fmt.Errorf("count pending invoices: %w", err)
	}
	return count, nil
}
