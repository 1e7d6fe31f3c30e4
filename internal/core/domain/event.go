package domain

// EventKind tags the variants of AppEvent.
type EventKind string

const (
	EventKindBalance      EventKind = "balance"
	EventKindPayment      EventKind = "payment"
	EventKindNotification EventKind = "notification"
)

// Balance is a user's spendable balance in millisatoshis.
type Balance struct {
	Msat int64 `json:"msat"`
}

// Notification is a human-readable message pushed to a user.
type Notification struct {
	Message string `json:"message"`
}

// AppEvent is an ephemeral domain event delivered to live subscribers of a
// single user. Events are never persisted and never replayed beyond the
// snapshot a subscriber takes when it attaches.
type AppEvent struct {
	Kind         EventKind     `json:"kind"`
	Balance      *Balance      `json:"balance,omitempty"`
	Payment      *Payment      `json:"payment,omitempty"`
	Notification *Notification `json:"notification,omitempty"`
}

// BalanceEvent builds a balance-changed event.
func BalanceEvent(msat int64) AppEvent {
	return AppEvent{Kind: EventKindBalance, Balance: &Balance{Msat: msat}}
}

// PaymentEvent builds a payment-changed event.
func PaymentEvent(p Payment) AppEvent {
	return AppEvent{Kind: EventKindPayment, Payment: &p}
}

// NotificationEvent builds a notification event.
func NotificationEvent(message string) AppEvent {
	return AppEvent{Kind: EventKindNotification, Notification: &Notification{Message: message}}
}
