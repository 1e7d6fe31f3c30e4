package lightning

import (
	"fmt"
	"strings"

	"lnledger/internal/core/ports"

	decodepay "github.com/nbd-wtf/ln-decodepay"
)

// DecodeBolt11 parses a BOLT11 invoice into the fields the gateway uses.
// It implements ports.InvoiceDecoder.
func DecodeBolt11(bolt11 string) (ports.DecodedInvoice, error) {
	inv, err := decodepay.Decodepay(strings.ToLower(strings.TrimSpace(bolt11)))
	if err != nil {
		return ports.DecodedInvoice{}, fmt.Errorf("decode bolt11: %w", err)
	}
	return ports.DecodedInvoice{
		PaymentHash: inv.PaymentHash,
		AmountMsat:  inv.MSatoshi,
		Description: inv.Description,
		ExpirySecs:  int64(inv.Expiry),
	}, nil
}
