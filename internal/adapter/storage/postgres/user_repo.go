package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lnledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the PostgreSQL error code for duplicate keys.
const uniqueViolation = "23505"

// UserRepo implements ports.UserRepository.
type UserRepo struct {
	pool Pool
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(pool Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

// Create inserts a new user. A duplicate username returns
// domain.ErrAlreadyExists.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	query := `INSERT INTO users (username, password_hash, created_at) VALUES ($1, $2, $3)`

	_, err := r.pool.Exec(ctx, query, u.Username, u.PasswordHash, u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("insert user %q: %w", u.Username, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByUsername fetches a user by username. Returns nil when not found.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT username, password_hash, created_at FROM users WHERE username = $1`

	u := &domain.User{}
	err := r.pool.QueryRow(ctx, query, username).Scan(&u.Username, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return u, nil
}

// List returns every user with its computed balance, ordered by creation
// time. Balances are derived in a single statement so each row is a
// consistent read.
func (r *UserRepo) List(ctx context.Context) ([]domain.UserInfo, error) {
	query := `SELECT u.username, u.created_at,
			COALESCE(rcv.total, 0) - COALESCE(snd.total, 0) AS balance_msat
		FROM users u
		LEFT JOIN (
			SELECT username, SUM(amount_msat) AS total FROM receipts GROUP BY username
		) rcv ON rcv.username = u.username
		LEFT JOIN (
			SELECT username, SUM(amount_msat + fee_msat) AS total FROM sends
			WHERE status = 'successful' GROUP BY username
		) snd ON snd.username = u.username
		ORDER BY u.created_at`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []domain.UserInfo
	for rows.Next() {
		var info domain.UserInfo
		if err := rows.Scan(&info.Username, &info.CreatedAt, &info.BalanceMsat); err != nil {
			return nil, fmt.Errorf("scan user info: %w", err)
		}
		users = append(users, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

// CountRegisteredSince counts users created within the given window.
func (r *UserRepo) CountRegisteredSince(ctx context.Context, window time.Duration) (int64, error) {
	query := `SELECT COUNT(*) FROM users WHERE created_at > $1`

	var count int64
	cutoff := time.Now().UTC().Add(-window)
	if err := r.pool.QueryRow(ctx, query, cutoff).Scan(&count); err != nil {
		return 0, fmt.Errorf("count users registered since: %w", err)
	}
	return count, nil
}
