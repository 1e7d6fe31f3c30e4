package domain

import "time"

// SendStatus is the lifecycle state of an outgoing payment.
type SendStatus string

const (
	SendStatusPending    SendStatus = "pending"
	SendStatusSuccessful SendStatus = "successful"
	SendStatusFailed     SendStatus = "failed"
)

// Valid reports whether s is one of the known statuses.
func (s SendStatus) Valid() bool {
	switch s {
	case SendStatusPending, SendStatusSuccessful, SendStatusFailed:
		return true
	}
	return false
}

// Terminal reports whether s is a final state.
func (s SendStatus) Terminal() bool {
	return s == SendStatusSuccessful || s == SendStatusFailed
}

// Receipt is a confirmed incoming payment. At most one Receipt exists per
// payment hash; inserting a duplicate is a no-op. Receipts are the only
// entity that increases a user's balance.
type Receipt struct {
	PaymentHash string    `json:"payment_hash"`
	Username    string    `json:"username"`
	AmountMsat  int64     `json:"amount_msat"`
	Description string    `json:"description"`
	Bolt11      string    `json:"bolt11"`
	CreatedAt   time.Time `json:"created_at"`
}

// Send is an outgoing payment record. It is created pending (or directly
// successful for intra-ledger settlements) and transitions exactly once to
// successful or failed. Only successful Sends count against balance.
type Send struct {
	PaymentHash string     `json:"payment_hash"`
	Username    string     `json:"username"`
	AmountMsat  int64      `json:"amount_msat"`
	FeeMsat     int64      `json:"fee_msat"`
	Description string     `json:"description"`
	Bolt11      string     `json:"bolt11"`
	LnAddress   *string    `json:"ln_address,omitempty"`
	Status      SendStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
}

// PaymentDirection distinguishes receives from sends in the merged view.
type PaymentDirection string

const (
	PaymentDirectionReceive PaymentDirection = "receive"
	PaymentDirectionSend    PaymentDirection = "send"
)

// Payment is the common projection of Receipts and Sends returned by the
// payment-history operations and carried in payment events.
type Payment struct {
	ID          string           `json:"id"` // payment hash
	Direction   PaymentDirection `json:"direction"`
	AmountMsat  int64            `json:"amount_msat"`
	FeeMsat     int64            `json:"fee_msat"`
	Description string           `json:"description"`
	Bolt11      string           `json:"bolt11"`
	LnAddress   *string          `json:"ln_address,omitempty"`
	Status      string           `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
}

// AsPayment projects a Receipt into the common Payment view. Receipts are
// settled money, so the status is always successful.
func (r *Receipt) AsPayment() Payment {
	return Payment{
		ID:          r.PaymentHash,
		Direction:   PaymentDirectionReceive,
		AmountMsat:  r.AmountMsat,
		Description: r.Description,
		Bolt11:      r.Bolt11,
		Status:      string(SendStatusSuccessful),
		CreatedAt:   r.CreatedAt,
	}
}

// AsPayment projects a Send into the common Payment view.
func (s *Send) AsPayment() Payment {
	return Payment{
		ID:          s.PaymentHash,
		Direction:   PaymentDirectionSend,
		AmountMsat:  s.AmountMsat,
		FeeMsat:     s.FeeMsat,
		Description: s.Description,
		Bolt11:      s.Bolt11,
		LnAddress:   s.LnAddress,
		Status:      string(s.Status),
		CreatedAt:   s.CreatedAt,
	}
}

// AsReceipt builds the Receipt that settles this invoice.
func (i *Invoice) AsReceipt(now time.Time) Receipt {
	return Receipt{
		PaymentHash: i.PaymentHash,
		Username:    i.Username,
		AmountMsat:  i.AmountMsat,
		Description: i.Description,
		Bolt11:      i.Bolt11,
		CreatedAt:   now,
	}
}
