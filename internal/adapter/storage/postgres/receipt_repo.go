package postgres

import (
	"context"
	"errors"
	"fmt"

	"lnledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// ReceiptRepo implements ports.ReceiptRepository.
type ReceiptRepo struct {
	pool Pool
}

// NewReceiptRepo creates a new ReceiptRepo.
func NewReceiptRepo(pool Pool) *ReceiptRepo {
	return &ReceiptRepo{pool: pool}
}

// InsertIdempotent inserts a receipt. A receipt with the same payment hash
// already present leaves the existing row untouched and reports
// inserted=false, so settlement can be replayed safely.
func (r *ReceiptRepo) InsertIdempotent(ctx context.Context, rc *domain.Receipt) (bool, error) {
	query := `INSERT INTO receipts (payment_hash, username, amount_msat, description, bolt11, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (payment_hash) DO NOTHING`

	tag, err := r.pool.Exec(ctx, query,
		rc.PaymentHash, rc.Username, rc.AmountMsat, rc.Description, rc.Bolt11, rc.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("insert receipt: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// GetByHash fetches a receipt by payment hash. Returns nil when not found.
func (r *ReceiptRepo) GetByHash(ctx context.Context, paymentHash string) (*domain.Receipt, error) {
	query := `SELECT payment_hash, username, amount_msat, description, bolt11, created_at
		FROM receipts WHERE payment_hash = $1`

	rc := &domain.Receipt{}
	err := r.pool.QueryRow(ctx, query, paymentHash).Scan(
		&rc.PaymentHash, &rc.Username, &rc.AmountMsat, &rc.Description, &rc.Bolt11, &rc.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get receipt by hash: %w", err)
	}
	return rc, nil
}
