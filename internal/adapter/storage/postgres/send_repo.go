package postgres

import (
	"context"
	"errors"
	"fmt"

	"lnledger/internal/core/domain"
	"lnledger/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// SendRepo implements ports.SendRepository.
type SendRepo struct {
	pool Pool
}

// NewSendRepo creates a new SendRepo.
func NewSendRepo(pool Pool) *SendRepo {
	return &SendRepo{pool: pool}
}

// Create inserts a new send. A duplicate payment hash returns
// domain.ErrAlreadyExists.
func (r *SendRepo) Create(ctx context.Context, s *domain.Send) error {
	query := `INSERT INTO sends (payment_hash, username, amount_msat, fee_msat, description, bolt11, ln_address, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		s.PaymentHash, s.Username, s.AmountMsat, s.FeeMsat,
		s.Description, s.Bolt11, s.LnAddress, s.Status, s.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("insert send %s: %w", s.PaymentHash, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("insert send: %w", err)
	}
	return nil
}

// GetByHash fetches a send by payment hash. Returns nil when not found.
func (r *SendRepo) GetByHash(ctx context.Context, paymentHash string) (*domain.Send, error) {
	query := `SELECT payment_hash, username, amount_msat, fee_msat, description, bolt11, ln_address, status, created_at
		FROM sends WHERE payment_hash = $1`

	s, err := scanSend(r.pool.QueryRow(ctx, query, paymentHash))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get send by hash: %w", err)
	}
	return s, nil
}

// Delete removes a send row.
func (r *SendRepo) Delete(ctx context.Context, paymentHash string) error {
	query := `DELETE FROM sends WHERE payment_hash = $1`

	if _, err := r.pool.Exec(ctx, query, paymentHash); err != nil {
		return fmt.Errorf("delete send: %w", err)
	}
	return nil
}

// CountPending counts the user's in-flight sends.
func (r *SendRepo) CountPending(ctx context.Context, username string) (int64, error) {
	query := `SELECT COUNT(*) FROM sends WHERE username = $1 AND status = 'pending'`

	var count int64
	if err := r.pool.QueryRow(ctx, query, username).Scan(&count); err != nil {
		return 0, fmt.Errorf("count pending sends: %w", err)
	}
	return count, nil
}

// SumPending returns the total amount plus fee of the user's pending sends.
func (r *SendRepo) SumPending(ctx context.Context, username string) (int64, error) {
	query := `SELECT COALESCE(SUM(amount_msat + fee_msat), 0) FROM sends WHERE username = $1 AND status = 'pending'`

	var sum int64
	if err := r.pool.QueryRow(ctx, query, username).Scan(&sum); err != nil {
		return 0, fmt.Errorf("sum pending sends: %w", err)
	}
	return sum, nil
}

// UpdateStatus finalizes a pending send exactly once and returns the row as
// it stands after the call. The transition runs inside a transaction: the
// conditional UPDATE only touches a row still pending, then the row is read
// back. A row already final is left untouched. A missing row means the
// ledger lost a send it dispatched, which is an integrity violation.
func (r *SendRepo) UpdateStatus(ctx context.Context, paymentHash string, status domain.SendStatus) (*domain.Send, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin update send status: %w", err)
	}
	defer tx.Rollback(ctx)

	update := `UPDATE sends SET status = $1 WHERE payment_hash = $2 AND status = 'pending'`
	if _, err := tx.Exec(ctx, update, status, paymentHash); err != nil {
		return nil, fmt.Errorf("update send status: %w", err)
	}

	query := `SELECT payment_hash, username, amount_msat, fee_msat, description, bolt11, ln_address, status, created_at
		FROM sends WHERE payment_hash = $1`
	s, err := scanSend(tx.QueryRow(ctx, query, paymentHash))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.Integrity(
				fmt.Sprintf("send %s finalized but never recorded", paymentHash), err)
		}
		return nil, fmt.Errorf("reload send: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit update send status: %w", err)
	}
	return s, nil
}

func scanSend(row pgx.Row) (*domain.Send, error) {
	s := &domain.Send{}
	err := row.Scan(&s.PaymentHash, &s.Username, &s.AmountMsat, &s.FeeMsat,
		&s.Description, &s.Bolt11, &s.LnAddress, &s.Status, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}
