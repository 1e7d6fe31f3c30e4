package postgres

import (
	"context"
	"fmt"
)

// schema defines the four ledger tables. All monetary amounts are integer
// millisatoshis; payment_hash is the correlation key across invoices,
// receipts, and sends.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		username      TEXT PRIMARY KEY,
		password_hash TEXT NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS invoices (
		payment_hash TEXT PRIMARY KEY,
		username     TEXT NOT NULL REFERENCES users (username),
		amount_msat  BIGINT NOT NULL,
		description  TEXT NOT NULL DEFAULT '',
		bolt11       TEXT NOT NULL,
		expires_at   TIMESTAMPTZ NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS receipts (
		payment_hash TEXT PRIMARY KEY,
		username     TEXT NOT NULL REFERENCES users (username),
		amount_msat  BIGINT NOT NULL,
		description  TEXT NOT NULL DEFAULT '',
		bolt11       TEXT NOT NULL DEFAULT '',
		created_at   TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sends (
		payment_hash TEXT PRIMARY KEY,
		username     TEXT NOT NULL REFERENCES users (username),
		amount_msat  BIGINT NOT NULL,
		fee_msat     BIGINT NOT NULL,
		description  TEXT NOT NULL DEFAULT '',
		bolt11       TEXT NOT NULL,
		ln_address   TEXT,
		status       TEXT NOT NULL CHECK (status IN ('pending', 'successful', 'failed')),
		created_at   TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_invoices_username ON invoices (username)`,
	`CREATE INDEX IF NOT EXISTS idx_receipts_username ON receipts (username)`,
	`CREATE INDEX IF NOT EXISTS idx_sends_username_status ON sends (username, status)`,
	`CREATE INDEX IF NOT EXISTS idx_users_created_at ON users (created_at)`,
}

// Migrate creates the ledger schema if it does not exist. Called once at
// startup before any repository is used.
func Migrate(ctx context.Context, pool Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
	}
	return nil
}
