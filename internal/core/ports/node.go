package ports

import "context"

// NodeEventKind enumerates the payment-outcome events reported by the node.
type NodeEventKind string

const (
	NodeEventPaymentReceived   NodeEventKind = "payment_received"
	NodeEventPaymentSuccessful NodeEventKind = "payment_successful"
	NodeEventPaymentFailed     NodeEventKind = "payment_failed"
)

// NodeEvent is one asynchronous payment outcome. Events are delivered in
// emission order, at least once: an event is redelivered until acknowledged.
type NodeEvent struct {
	ID          string        `json:"id"`
	Kind        NodeEventKind `json:"kind"`
	PaymentHash string        `json:"payment_hash"`
	AmountMsat  int64         `json:"amount_msat,omitempty"`
}

// ChannelInfo describes one channel of the node.
type ChannelInfo struct {
	ChannelID             string `json:"channel_id"`
	CounterpartyNodeID    string `json:"counterparty_node_id"`
	ChannelValueSats      int64  `json:"channel_value_sats"`
	OutboundCapacityMsat  int64  `json:"outbound_capacity_msat"`
	InboundCapacityMsat   int64  `json:"inbound_capacity_msat"`
	IsChannelReady        bool   `json:"is_channel_ready"`
	IsUsable              bool   `json:"is_usable"`
	IsOutbound            bool   `json:"is_outbound"`
	Confirmations         *int64 `json:"confirmations,omitempty"`
	ConfirmationsRequired *int64 `json:"confirmations_required,omitempty"`
}

// PeerInfo describes one peer connection of the node.
type PeerInfo struct {
	NodeID      string `json:"node_id"`
	Address     string `json:"address"`
	IsPersisted bool   `json:"is_persisted"`
	IsConnected bool   `json:"is_connected"`
}

// NodeBalances aggregates the node's on-chain and channel liquidity.
type NodeBalances struct {
	TotalOnchainBalanceSats    int64 `json:"total_onchain_balance_sats"`
	TotalInboundCapacityMsats  int64 `json:"total_inbound_capacity_msats"`
	TotalOutboundCapacityMsats int64 `json:"total_outbound_capacity_msats"`
}

// OpenChannelParams are the inputs for opening a channel.
type OpenChannelParams struct {
	NodeID                 string `json:"node_id"`
	Address                string `json:"address"`
	ChannelAmountSats      int64  `json:"channel_amount_sats"`
	PushToCounterpartyMsat *int64 `json:"push_to_counterparty_msat,omitempty"`
}

// DecodedInvoice is the parsed view of a BOLT11 invoice.
type DecodedInvoice struct {
	PaymentHash string
	AmountMsat  int64
	Description string
	ExpirySecs  int64
}

// InvoiceDecoder parses a BOLT11 string. Decoding is pure: it never touches
// the network or the node.
type InvoiceDecoder func(bolt11 string) (DecodedInvoice, error)

// LightningNode is the boundary with the external payment node. The gateway
// treats the node as an opaque service: no routing, signing, or channel
// logic lives on this side of the interface.
type LightningNode interface {
	// Receive creates a BOLT11 invoice on the node.
	Receive(ctx context.Context, amountMsat int64, description string, expirySecs int64) (bolt11 string, err error)
	// Send dispatches an invoice payment with a routing-fee ceiling. A nil
	// error means the node accepted the send; its outcome arrives later on
	// the event stream.
	Send(ctx context.Context, bolt11 string, feeCeilingMsat int64) error

	// NextEvent blocks until the next unacknowledged payment outcome is
	// available or ctx is done.
	NextEvent(ctx context.Context) (*NodeEvent, error)
	// AckEvent acknowledges an event so the node advances the stream.
	// Unacknowledged events are redelivered after a restart.
	AckEvent(ctx context.Context, eventID string) error

	// Admin pass-throughs.
	NodeID(ctx context.Context) (string, error)
	Balances(ctx context.Context) (*NodeBalances, error)
	NewAddress(ctx context.Context) (string, error)
	SendOnchain(ctx context.Context, address string, amountSats int64, feeRateSatVB *int64) error
	ListChannels(ctx context.Context) ([]ChannelInfo, error)
	OpenChannel(ctx context.Context, params OpenChannelParams) (channelID string, err error)
	CloseChannel(ctx context.Context, channelID, counterpartyNodeID string, force bool) error
	ListPeers(ctx context.Context) ([]PeerInfo, error)
	ConnectPeer(ctx context.Context, nodeID, address string, persist bool) error
	DisconnectPeer(ctx context.Context, nodeID string) error
}
