// Package reconciler drives the single loop that folds asynchronous node
// events into the ledger. One goroutine, strict order: settle first, then
// acknowledge. A crash between the two redelivers the event, and settlement
// is idempotent, so no outcome is ever lost or applied twice.
package reconciler

import (
	"context"
	"fmt"
	"time"

	"lnledger/internal/core/ports"
	"lnledger/pkg/apperror"

	"github.com/rs/zerolog"
)

// retryDelay spaces out retries after a transient failure so a flapping
// node or database does not spin the loop.
const retryDelay = 5 * time.Second

// Reconciler consumes node events and applies them via the settlement
// engine.
type Reconciler struct {
	node       ports.LightningNode
	invoices   ports.InvoiceRepository
	settlement ports.SettlementEngine
	log        zerolog.Logger
}

// New creates a Reconciler.
func New(
	node ports.LightningNode,
	invoices ports.InvoiceRepository,
	settlement ports.SettlementEngine,
	log zerolog.Logger,
) *Reconciler {
	return &Reconciler{
		node:       node,
		invoices:   invoices,
		settlement: settlement,
		log:        log.With().Str("component", "reconciler").Logger(),
	}
}

// Run processes events until ctx is cancelled or an integrity violation is
// detected. An integrity violation stops the loop without acknowledging the
// offending event: the ledger is wrong and must be inspected, not advanced.
func (r *Reconciler) Run(ctx context.Context) error {
	r.log.Info().Msg("reconciler started")

	for {
		event, err := r.node.NextEvent(ctx)
		if err != nil {
			if ctx.Err() != nil {
				r.log.Info().Msg("reconciler stopped")
				return nil
			}
			r.log.Warn().Err(err).Msg("event fetch failed, retrying")
			if !r.sleep(ctx) {
				return nil
			}
			continue
		}

		if err := r.apply(ctx, event); err != nil {
			if apperror.IsIntegrity(err) {
				r.log.Error().Err(err).
					Str("event_id", event.ID).
					Str("payment_hash", event.PaymentHash).
					Msg("integrity violation, halting reconciler")
				return err
			}
			if ctx.Err() != nil {
				return nil
			}
			r.log.Warn().Err(err).
				Str("event_id", event.ID).
				Msg("event settlement failed, will redeliver")
			if !r.sleep(ctx) {
				return nil
			}
			continue
		}

		if err := r.node.AckEvent(ctx, event.ID); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			// The event was settled; redelivery is absorbed by idempotent
			// settlement, so an ack failure is only noise.
			r.log.Warn().Err(err).Str("event_id", event.ID).Msg("event ack failed")
			if !r.sleep(ctx) {
				return nil
			}
		}
	}
}

func (r *Reconciler) apply(ctx context.Context, event *ports.NodeEvent) error {
	switch event.Kind {
	case ports.NodeEventPaymentReceived:
		return r.applyReceived(ctx, event)
	case ports.NodeEventPaymentSuccessful:
		_, err := r.settlement.SettleOutgoing(ctx, event.PaymentHash, true)
		return err
	case ports.NodeEventPaymentFailed:
		_, err := r.settlement.SettleOutgoing(ctx, event.PaymentHash, false)
		return err
	default:
		r.log.Debug().Str("kind", string(event.Kind)).Msg("ignoring event kind")
		return nil
	}
}

func (r *Reconciler) applyReceived(ctx context.Context, event *ports.NodeEvent) error {
	invoice, err := r.invoices.GetByHash(ctx, event.PaymentHash)
	if err != nil {
		return fmt.Errorf("invoice lookup: %w", err)
	}
	if invoice == nil {
		// The node reported money arriving on an invoice this ledger never
		// issued. Crediting it is impossible, dropping it loses funds.
		return apperror.Integrity(
			fmt.Sprintf("received payment %s with no matching invoice", event.PaymentHash), nil)
	}
	if event.AmountMsat != invoice.AmountMsat {
		return apperror.Integrity(
			fmt.Sprintf("received amount %d msat does not match invoice amount %d msat for %s",
				event.AmountMsat, invoice.AmountMsat, event.PaymentHash), nil)
	}

	if err := r.settlement.SettleIncoming(ctx, invoice.AsReceipt(time.Now().UTC())); err != nil {
		return err
	}
	return nil
}

// sleep waits out the retry delay. Returns false when ctx was cancelled.
func (r *Reconciler) sleep(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(retryDelay):
		return true
	}
}
