package domain

import "time"

// Invoice is a pending receive intent: a BOLT11 invoice issued by this
// gateway on behalf of a user. It is never mutated; it is considered
// settled once a Receipt with the same payment hash exists, and expired
// once now > ExpiresAt with no Receipt. Expiry gates admission counts
// only; a late Receipt for an expired Invoice is still credited.
type Invoice struct {
	PaymentHash string    `json:"payment_hash"`
	Username    string    `json:"username"`
	AmountMsat  int64     `json:"amount_msat"`
	Description string    `json:"description"`
	Bolt11      string    `json:"bolt11"`
	ExpiresAt   time.Time `json:"expires_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// IsExpired reports whether the invoice has passed its expiry.
func (i *Invoice) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}
