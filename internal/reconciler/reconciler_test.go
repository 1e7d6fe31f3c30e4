package reconciler

import (
	"context"
	"testing"
	"time"

	"lnledger/internal/core/domain"
	"lnledger/internal/core/ports"
	"lnledger/internal/core/ports/mocks"
	"lnledger/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func setupReconciler(t *testing.T) (
	*Reconciler,
	*mocks.MockLightningNode,
	*mocks.MockInvoiceRepository,
	*mocks.MockSettlementEngine,
	*gomock.Controller,
) {
	ctrl := gomock.NewController(t)
	node := mocks.NewMockLightningNode(ctrl)
	invoices := mocks.NewMockInvoiceRepository(ctrl)
	settlement := mocks.NewMockSettlementEngine(ctrl)

	rec := New(node, invoices, settlement, zerolog.Nop())
	return rec, node, invoices, settlement, ctrl
}

// blockUntilCancelled makes subsequent NextEvent calls wait for shutdown.
func blockUntilCancelled(node *mocks.MockLightningNode) {
	node.EXPECT().NextEvent(gomock.Any()).DoAndReturn(func(ctx context.Context) (*ports.NodeEvent, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}).AnyTimes()
}

func runUntilDone(t *testing.T, rec *Reconciler, cancel context.CancelFunc, done chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		cancel()
		t.Fatal("reconciler did not finish in time")
		return nil
	}
}

func TestReconciler_PaymentReceived(t *testing.T) {
	rec, node, invoices, settlement, ctrl := setupReconciler(t)
	defer ctrl.Finish()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	event := &ports.NodeEvent{
		ID:          "ev-1",
		Kind:        ports.NodeEventPaymentReceived,
		PaymentHash: "hash-1",
		AmountMsat:  25_000_000,
	}
	invoice := &domain.Invoice{
		PaymentHash: "hash-1",
		Username:    "alice",
		AmountMsat:  25_000_000,
		Bolt11:      "lnbc250u1p0example",
	}

	node.EXPECT().NextEvent(gomock.Any()).Return(event, nil)
	invoices.EXPECT().GetByHash(gomock.Any(), "hash-1").Return(invoice, nil)
	settlement.EXPECT().SettleIncoming(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, rc domain.Receipt) error {
		assert.Equal(t, "alice", rc.Username)
		assert.Equal(t, int64(25_000_000), rc.AmountMsat)
		return nil
	})
	node.EXPECT().AckEvent(gomock.Any(), "ev-1").DoAndReturn(func(context.Context, string) error {
		cancel()
		return nil
	})
	blockUntilCancelled(node)

	done := make(chan error, 1)
	go func() { done <- rec.Run(ctx) }()
	require.NoError(t, runUntilDone(t, rec, cancel, done))
}

func TestReconciler_LateReceiptAfterExpiryStillCredited(t *testing.T) {
	rec, node, invoices, settlement, ctrl := setupReconciler(t)
	defer ctrl.Finish()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	event := &ports.NodeEvent{
		ID:          "ev-late",
		Kind:        ports.NodeEventPaymentReceived,
		PaymentHash: "hash-late",
		AmountMsat:  10_000_000,
	}
	// Expiry only gates invoice admission counts. Money that arrived on an
	// expired invoice was still received and must be credited.
	invoice := &domain.Invoice{
		PaymentHash: "hash-late",
		Username:    "bob",
		AmountMsat:  10_000_000,
		ExpiresAt:   time.Now().UTC().Add(-time.Hour),
	}

	node.EXPECT().NextEvent(gomock.Any()).Return(event, nil)
	invoices.EXPECT().GetByHash(gomock.Any(), "hash-late").Return(invoice, nil)
	settlement.EXPECT().SettleIncoming(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, rc domain.Receipt) error {
		assert.Equal(t, "bob", rc.Username)
		assert.Equal(t, int64(10_000_000), rc.AmountMsat)
		return nil
	})
	node.EXPECT().AckEvent(gomock.Any(), "ev-late").DoAndReturn(func(context.Context, string) error {
		cancel()
		return nil
	})
	blockUntilCancelled(node)

	done := make(chan error, 1)
	go func() { done <- rec.Run(ctx) }()
	require.NoError(t, runUntilDone(t, rec, cancel, done))
}

func TestReconciler_PaymentSuccessful(t *testing.T) {
	rec, node, _, settlement, ctrl := setupReconciler(t)
	defer ctrl.Finish()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	event := &ports.NodeEvent{ID: "ev-2", Kind: ports.NodeEventPaymentSuccessful, PaymentHash: "hash-2"}

	node.EXPECT().NextEvent(gomock.Any()).Return(event, nil)
	settlement.EXPECT().SettleOutgoing(gomock.Any(), "hash-2", true).
		Return(&domain.Send{PaymentHash: "hash-2", Status: domain.SendStatusSuccessful}, nil)
	node.EXPECT().AckEvent(gomock.Any(), "ev-2").DoAndReturn(func(context.Context, string) error {
		cancel()
		return nil
	})
	blockUntilCancelled(node)

	done := make(chan error, 1)
	go func() { done <- rec.Run(ctx) }()
	require.NoError(t, runUntilDone(t, rec, cancel, done))
}

func TestReconciler_PaymentFailed(t *testing.T) {
	rec, node, _, settlement, ctrl := setupReconciler(t)
	defer ctrl.Finish()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	event := &ports.NodeEvent{ID: "ev-3", Kind: ports.NodeEventPaymentFailed, PaymentHash: "hash-3"}

	node.EXPECT().NextEvent(gomock.Any()).Return(event, nil)
	settlement.EXPECT().SettleOutgoing(gomock.Any(), "hash-3", false).
		Return(&domain.Send{PaymentHash: "hash-3", Status: domain.SendStatusFailed}, nil)
	node.EXPECT().AckEvent(gomock.Any(), "ev-3").DoAndReturn(func(context.Context, string) error {
		cancel()
		return nil
	})
	blockUntilCancelled(node)

	done := make(chan error, 1)
	go func() { done <- rec.Run(ctx) }()
	require.NoError(t, runUntilDone(t, rec, cancel, done))
}

func TestReconciler_ReceivedWithoutInvoiceHalts(t *testing.T) {
	rec, node, invoices, _, ctrl := setupReconciler(t)
	defer ctrl.Finish()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	event := &ports.NodeEvent{
		ID:          "ev-4",
		Kind:        ports.NodeEventPaymentReceived,
		PaymentHash: "orphan",
		AmountMsat:  1000,
	}

	// No AckEvent expectation: the offending event must stay unacknowledged.
	node.EXPECT().NextEvent(gomock.Any()).Return(event, nil)
	invoices.EXPECT().GetByHash(gomock.Any(), "orphan").Return(nil, nil)

	done := make(chan error, 1)
	go func() { done <- rec.Run(ctx) }()
	err := runUntilDone(t, rec, cancel, done)
	require.Error(t, err)
	assert.True(t, apperror.IsIntegrity(err))
}

func TestReconciler_AmountMismatchHalts(t *testing.T) {
	rec, node, invoices, _, ctrl := setupReconciler(t)
	defer ctrl.Finish()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	event := &ports.NodeEvent{
		ID:          "ev-5",
		Kind:        ports.NodeEventPaymentReceived,
		PaymentHash: "hash-5",
		AmountMsat:  999,
	}
	invoice := &domain.Invoice{PaymentHash: "hash-5", Username: "alice", AmountMsat: 1000}

	node.EXPECT().NextEvent(gomock.Any()).Return(event, nil)
	invoices.EXPECT().GetByHash(gomock.Any(), "hash-5").Return(invoice, nil)

	done := make(chan error, 1)
	go func() { done <- rec.Run(ctx) }()
	err := runUntilDone(t, rec, cancel, done)
	require.Error(t, err)
	assert.True(t, apperror.IsIntegrity(err))
}

func TestReconciler_StopsOnCancel(t *testing.T) {
	rec, node, _, _, ctrl := setupReconciler(t)
	defer ctrl.Finish()

	ctx, cancel := context.WithCancel(context.Background())
	blockUntilCancelled(node)

	done := make(chan error, 1)
	go func() { done <- rec.Run(ctx) }()

	cancel()
	require.NoError(t, runUntilDone(t, rec, cancel, done))
}
