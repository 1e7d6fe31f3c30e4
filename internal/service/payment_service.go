package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"lnledger/config"
	"lnledger/internal/core/domain"
	"lnledger/internal/core/ports"
	"lnledger/pkg/apperror"

	"github.com/rs/zerolog"
)

// PaymentServiceImpl implements ports.PaymentService.
//
// Submission is serialized by a process-wide mutex: the balance check, the
// intra-ledger shortcut, and the pending-send insert happen under the lock,
// so two concurrent submissions can never both spend the same balance.
type PaymentServiceImpl struct {
	invoiceRepo ports.InvoiceRepository
	sendRepo    ports.SendRepository
	ledger      ports.LedgerReader
	node        ports.LightningNode
	decode      ports.InvoiceDecoder
	settlement  ports.SettlementEngine
	bus         ports.EventBus
	fees        config.FeeConfig
	limits      config.LimitsConfig
	log         zerolog.Logger

	sendMu sync.Mutex
}

// NewPaymentService creates a new PaymentServiceImpl.
func NewPaymentService(
	invoiceRepo ports.InvoiceRepository,
	sendRepo ports.SendRepository,
	ledger ports.LedgerReader,
	node ports.LightningNode,
	decode ports.InvoiceDecoder,
	settlement ports.SettlementEngine,
	bus ports.EventBus,
	fees config.FeeConfig,
	limits config.LimitsConfig,
	log zerolog.Logger,
) *PaymentServiceImpl {
	return &PaymentServiceImpl{
		invoiceRepo: invoiceRepo,
		sendRepo:    sendRepo,
		ledger:      ledger,
		node:        node,
		decode:      decode,
		settlement:  settlement,
		bus:         bus,
		fees:        fees,
		limits:      limits,
		log:         log.With().Str("component", "payment").Logger(),
	}
}

// CreateInvoice issues a BOLT11 invoice on the node and records the receive
// intent.
func (s *PaymentServiceImpl) CreateInvoice(ctx context.Context, username string, amountMsat int64, description string) (*domain.Invoice, error) {
	pending, err := s.invoiceRepo.CountPending(ctx, username)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("count pending invoices: %w", err))
	}
	if pending >= s.limits.MaxPendingPerUser {
		return nil, apperror.ErrTooManyPendingInvoices()
	}

	if err := s.checkAmountBounds(amountMsat); err != nil {
		return nil, err
	}

	bolt11, err := s.node.Receive(ctx, amountMsat, description, s.limits.InvoiceExpirySecs)
	if err != nil {
		s.log.Error().Err(err).Msg("node invoice creation failed")
		return nil, apperror.ErrNodeUnavailable(err)
	}

	decoded, err := s.decode(bolt11)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("decode node invoice: %w", err))
	}

	now := time.Now().UTC()
	invoice := &domain.Invoice{
		PaymentHash: decoded.PaymentHash,
		Username:    username,
		AmountMsat:  amountMsat,
		Description: description,
		Bolt11:      bolt11,
		ExpiresAt:   now.Add(time.Duration(s.limits.InvoiceExpirySecs) * time.Second),
		CreatedAt:   now,
	}

	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("store invoice: %w", err))
	}

	s.log.Info().
		Str("username", username).
		Str("payment_hash", invoice.PaymentHash).
		Int64("amount_msat", amountMsat).
		Msg("invoice created")

	return invoice, nil
}

// Quote decodes an invoice and prices the send without admitting it.
func (s *PaymentServiceImpl) Quote(ctx context.Context, bolt11 string) (*ports.InvoiceQuote, error) {
	decoded, err := s.decode(bolt11)
	if err != nil {
		return nil, apperror.ErrInvalidInvoice(err)
	}
	if decoded.AmountMsat <= 0 {
		return nil, apperror.Validation("Invoice is missing amount")
	}

	return &ports.InvoiceQuote{
		PaymentHash: decoded.PaymentHash,
		AmountMsat:  decoded.AmountMsat,
		FeeMsat:     s.fees.FeeMsat(decoded.AmountMsat),
		Description: decoded.Description,
		ExpirySecs:  decoded.ExpirySecs,
	}, nil
}

// SubmitPayment admits and dispatches one outgoing payment.
func (s *PaymentServiceImpl) SubmitPayment(ctx context.Context, username, bolt11 string, lnAddress *string) error {
	pending, err := s.sendRepo.CountPending(ctx, username)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("count pending sends: %w", err))
	}
	if pending >= s.limits.MaxPendingPerUser {
		return apperror.ErrTooManyPendingPayments()
	}

	decoded, err := s.decode(bolt11)
	if err != nil {
		return apperror.ErrInvalidInvoice(err)
	}
	amountMsat := decoded.AmountMsat
	if amountMsat <= 0 {
		return apperror.Validation("Invoice is missing amount")
	}
	if err := s.checkAmountBounds(amountMsat); err != nil {
		return err
	}
	feeMsat := s.fees.FeeMsat(amountMsat)

	if err := s.admitAndDispatch(ctx, username, bolt11, decoded.PaymentHash, decoded.Description, amountMsat, feeMsat, lnAddress); err != nil {
		return err
	}

	// Events go out after the lock is released; subscribers see the send
	// as pending or already successful depending on the path taken.
	s.publishBalance(ctx, username)
	if send, err := s.sendRepo.GetByHash(ctx, decoded.PaymentHash); err == nil && send != nil {
		s.bus.Publish(username, domain.PaymentEvent(send.AsPayment()))
	}
	s.bus.Publish(username, domain.NotificationEvent("Initiated payment..."))
	return nil
}

// admitAndDispatch runs the serialized section of the submission protocol.
func (s *PaymentServiceImpl) admitAndDispatch(ctx context.Context, username, bolt11, paymentHash, description string, amountMsat, feeMsat int64, lnAddress *string) error {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	balance, err := s.ledger.Balance(ctx, username)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("balance check: %w", err))
	}
	// Pending sends do not show in the balance until they settle, but the
	// funds they hold are already spoken for.
	reserved, err := s.sendRepo.SumPending(ctx, username)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("pending send total: %w", err))
	}
	if balance-reserved < amountMsat+feeMsat {
		return apperror.ErrInsufficientBalance()
	}

	invoice, err := s.invoiceRepo.GetByHash(ctx, paymentHash)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("invoice lookup: %w", err))
	}

	now := time.Now().UTC()
	send := &domain.Send{
		PaymentHash: paymentHash,
		Username:    username,
		AmountMsat:  amountMsat,
		FeeMsat:     feeMsat,
		Description: description,
		Bolt11:      bolt11,
		LnAddress:   lnAddress,
		Status:      domain.SendStatusPending,
		CreatedAt:   now,
	}

	if invoice != nil {
		// The invoice is ours: settle inside the ledger, no network hop.
		if invoice.Username == username {
			return apperror.ErrSelfPayment()
		}
		if err := s.settlement.SettleIncoming(ctx, invoice.AsReceipt(now)); err != nil {
			return apperror.InternalError(fmt.Errorf("settle intra-ledger receive: %w", err))
		}
		send.Status = domain.SendStatusSuccessful
		if err := s.sendRepo.Create(ctx, send); err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				return apperror.Validation("This invoice was already paid")
			}
			return apperror.InternalError(fmt.Errorf("record intra-ledger send: %w", err))
		}
		s.log.Info().
			Str("username", username).
			Str("payee", invoice.Username).
			Str("payment_hash", paymentHash).
			Int64("amount_msat", amountMsat).
			Msg("intra-ledger payment settled")
		return nil
	}

	// The pending row is written before the node sees the payment, so a
	// crash between the two leaves a pending send and never an untracked
	// network payment. The row is removed if the node rejects the send.
	if err := s.sendRepo.Create(ctx, send); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return apperror.Validation("This invoice was already paid")
		}
		return apperror.InternalError(fmt.Errorf("record send: %w", err))
	}

	if err := s.node.Send(ctx, bolt11, feeMsat); err != nil {
		s.log.Error().Err(err).Str("payment_hash", paymentHash).Msg("node send rejected")
		if delErr := s.sendRepo.Delete(ctx, paymentHash); delErr != nil {
			s.log.Error().Err(delErr).Str("payment_hash", paymentHash).
				Msg("rollback of rejected send failed, row will sit pending")
		}
		return apperror.ErrNodeUnavailable(err)
	}

	s.log.Info().
		Str("username", username).
		Str("payment_hash", paymentHash).
		Int64("amount_msat", amountMsat).
		Int64("fee_msat", feeMsat).
		Msg("payment dispatched")
	return nil
}

// Balance returns the user's spendable balance.
func (s *PaymentServiceImpl) Balance(ctx context.Context, username string) (int64, error) {
	balance, err := s.ledger.Balance(ctx, username)
	if err != nil {
		if apperror.IsIntegrity(err) {
			return 0, err
		}
		return 0, apperror.InternalError(fmt.Errorf("balance: %w", err))
	}
	return balance, nil
}

// Payments returns the user's merged payment history, oldest first.
func (s *PaymentServiceImpl) Payments(ctx context.Context, username string) ([]domain.Payment, error) {
	payments, err := s.ledger.Payments(ctx, username)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("payments: %w", err))
	}
	return payments, nil
}

func (s *PaymentServiceImpl) checkAmountBounds(amountMsat int64) error {
	if amountMsat < s.limits.MinAmountMsat() {
		return apperror.ErrAmountBelowMinimum(s.limits.MinAmountSat)
	}
	if amountMsat > s.limits.MaxAmountMsat() {
		return apperror.ErrAmountAboveMaximum(s.limits.MaxAmountSat)
	}
	return nil
}

func (s *PaymentServiceImpl) publishBalance(ctx context.Context, username string) {
	balance, err := s.ledger.Balance(ctx, username)
	if err != nil {
		s.log.Error().Err(err).Str("username", username).Msg("balance lookup for event failed")
		return
	}
	s.bus.Publish(username, domain.BalanceEvent(balance))
}
