package service

import (
	"context"
	"fmt"

	"lnledger/internal/core/domain"
	"lnledger/internal/core/ports"

	"github.com/rs/zerolog"
)

// SettlementEngineImpl implements ports.SettlementEngine. It is the only
// writer of receipts and the only finalizer of sends, so every balance
// change funnels through here regardless of whether the money moved over
// the network or stayed inside the ledger.
type SettlementEngineImpl struct {
	receiptRepo ports.ReceiptRepository
	sendRepo    ports.SendRepository
	ledger      ports.LedgerReader
	bus         ports.EventBus
	log         zerolog.Logger
}

// NewSettlementEngine creates a new SettlementEngineImpl.
func NewSettlementEngine(
	receiptRepo ports.ReceiptRepository,
	sendRepo ports.SendRepository,
	ledger ports.LedgerReader,
	bus ports.EventBus,
	log zerolog.Logger,
) *SettlementEngineImpl {
	return &SettlementEngineImpl{
		receiptRepo: receiptRepo,
		sendRepo:    sendRepo,
		ledger:      ledger,
		bus:         bus,
		log:         log.With().Str("component", "settlement").Logger(),
	}
}

// SettleIncoming credits a confirmed incoming payment. Replaying the same
// receipt is a no-op with no events, so the caller may retry freely.
func (s *SettlementEngineImpl) SettleIncoming(ctx context.Context, receipt domain.Receipt) error {
	inserted, err := s.receiptRepo.InsertIdempotent(ctx, &receipt)
	if err != nil {
		return fmt.Errorf("insert receipt: %w", err)
	}
	if !inserted {
		s.log.Debug().
			Str("payment_hash", receipt.PaymentHash).
			Msg("receipt already settled, skipping")
		return nil
	}

	s.log.Info().
		Str("payment_hash", receipt.PaymentHash).
		Str("username", receipt.Username).
		Int64("amount_msat", receipt.AmountMsat).
		Msg("payment received")

	s.publishBalance(ctx, receipt.Username)
	s.bus.Publish(receipt.Username, domain.PaymentEvent(receipt.AsPayment()))
	s.bus.Publish(receipt.Username, domain.NotificationEvent("Payment received"))
	return nil
}

// SettleOutgoing finalizes a pending send. The repository guarantees the
// pending to final transition happens at most once; a replay returns the
// already-final row and publishes nothing new.
func (s *SettlementEngineImpl) SettleOutgoing(ctx context.Context, paymentHash string, succeeded bool) (*domain.Send, error) {
	status := domain.SendStatusFailed
	if succeeded {
		status = domain.SendStatusSuccessful
	}

	send, err := s.sendRepo.UpdateStatus(ctx, paymentHash, status)
	if err != nil {
		return nil, fmt.Errorf("finalize send: %w", err)
	}
	if send.Status != status {
		// Already finalized to a different outcome by an earlier replay.
		s.log.Warn().
			Str("payment_hash", paymentHash).
			Str("status", string(send.Status)).
			Str("requested", string(status)).
			Msg("send already finalized, skipping")
		return send, nil
	}

	if succeeded {
		s.log.Info().
			Str("payment_hash", paymentHash).
			Str("username", send.Username).
			Int64("amount_msat", send.AmountMsat).
			Int64("fee_msat", send.FeeMsat).
			Msg("payment successful")
		s.publishBalance(ctx, send.Username)
		s.bus.Publish(send.Username, domain.PaymentEvent(send.AsPayment()))
		s.bus.Publish(send.Username, domain.NotificationEvent("Payment successful"))
	} else {
		s.log.Warn().
			Str("payment_hash", paymentHash).
			Str("username", send.Username).
			Msg("payment failed")
		// Balance is unchanged by a failed send.
		s.bus.Publish(send.Username, domain.PaymentEvent(send.AsPayment()))
		s.bus.Publish(send.Username, domain.NotificationEvent("Payment failed"))
	}
	return send, nil
}

func (s *SettlementEngineImpl) publishBalance(ctx context.Context, username string) {
	balance, err := s.ledger.Balance(ctx, username)
	if err != nil {
		s.log.Error().Err(err).Str("username", username).Msg("balance lookup for event failed")
		return
	}
	s.bus.Publish(username, domain.BalanceEvent(balance))
}
