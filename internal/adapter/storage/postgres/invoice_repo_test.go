package postgres

import (
	"context"
	"testing"
	"time"

	"lnledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInvoice(username string) *domain.Invoice {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Invoice{
		PaymentHash: "f3a4b5c6d7e8f9a0b1c2d3e4f5a6b7c8d9e0f1a2b3c4d5e6f7a8b9c0d1e2f3a4",
		Username:    username,
		AmountMsat:  25_000_000,
		Description: "coffee",
		Bolt11:      "lnbc250u1p0example",
		ExpiresAt:   now.Add(time.Hour),
		CreatedAt:   now,
	}
}

func invoiceColumns() []string {
	return []string{"payment_hash", "username", "amount_msat", "description", "bolt11", "expires_at", "created_at"}
}

func invoiceRow(inv *domain.Invoice) *pgxmock.Rows {
	return pgxmock.NewRows(invoiceColumns()).AddRow(
		inv.PaymentHash, inv.Username, inv.AmountMsat, inv.Description,
		inv.Bolt11, inv.ExpiresAt, inv.CreatedAt,
	)
}

func TestInvoiceRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewInvoiceRepo(mock)
	inv := newTestInvoice("alice")

	mock.ExpectExec("INSERT INTO invoices").
		WithArgs(inv.PaymentHash, inv.Username, inv.AmountMsat, inv.Description,
			inv.Bolt11, inv.ExpiresAt, inv.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Create(context.Background(), inv)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceRepo_Create_Duplicate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewInvoiceRepo(mock)
	inv := newTestInvoice("alice")

	mock.ExpectExec("INSERT INTO invoices").
		WithArgs(inv.PaymentHash, inv.Username, inv.AmountMsat, inv.Description,
			inv.Bolt11, inv.ExpiresAt, inv.CreatedAt).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err = repo.Create(context.Background(), inv)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceRepo_GetByHash(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewInvoiceRepo(mock)
	inv := newTestInvoice("bob")

	mock.ExpectQuery("SELECT .+ FROM invoices WHERE payment_hash").
		WithArgs(inv.PaymentHash).
		WillReturnRows(invoiceRow(inv))

	result, err := repo.GetByHash(context.Background(), inv.PaymentHash)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, inv.Username, result.Username)
	assert.Equal(t, inv.AmountMsat, result.AmountMsat)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceRepo_GetByHash_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewInvoiceRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM invoices WHERE payment_hash").
		WithArgs("unknown").
		WillReturnError(pgx.ErrNoRows)

	result, err := repo.GetByHash(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceRepo_CountPending(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewInvoiceRepo(mock)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("alice").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(3)))

	count, err := repo.CountPending(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
