package postgres

import (
	"context"
	"fmt"

	"lnledger/internal/core/domain"
	"lnledger/pkg/apperror"
)

// LedgerRepo implements ports.LedgerReader over the receipts and sends
// tables.
type LedgerRepo struct {
	pool Pool
}

// NewLedgerRepo creates a new LedgerRepo.
func NewLedgerRepo(pool Pool) *LedgerRepo {
	return &LedgerRepo{pool: pool}
}

// Balance computes the user's spendable balance in a single statement so
// both sums come from one consistent snapshot. A negative sum means the
// ledger paid out more than it ever took in for this user.
func (r *LedgerRepo) Balance(ctx context.Context, username string) (int64, error) {
	query := `SELECT
			COALESCE((SELECT SUM(amount_msat) FROM receipts WHERE username = $1), 0)
			-
			COALESCE((SELECT SUM(amount_msat + fee_msat) FROM sends WHERE username = $1 AND status = 'successful'), 0)`

	var balance int64
	if err := r.pool.QueryRow(ctx, query, username).Scan(&balance); err != nil {
		return 0, fmt.Errorf("compute balance: %w", err)
	}
	if balance < 0 {
		return 0, apperror.Integrity(
			fmt.Sprintf("negative balance %d msat for user %q", balance, username), nil)
	}
	return balance, nil
}

// Payments returns the user's full history, receipts and sends merged,
// oldest first.
func (r *LedgerRepo) Payments(ctx context.Context, username string) ([]domain.Payment, error) {
	query := `SELECT payment_hash, 'receive' AS direction, amount_msat, 0 AS fee_msat,
			description, bolt11, NULL AS ln_address, 'successful' AS status, created_at
		FROM receipts WHERE username = $1
		UNION ALL
		SELECT payment_hash, 'send' AS direction, amount_msat, fee_msat,
			description, bolt11, ln_address, status, created_at
		FROM sends WHERE username = $1
		ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		var p domain.Payment
		err := rows.Scan(&p.ID, &p.Direction, &p.AmountMsat, &p.FeeMsat,
			&p.Description, &p.Bolt11, &p.LnAddress, &p.Status, &p.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payments: %w", err)
	}
	return payments, nil
}
