// Package lightning is the REST client for the external payment node. The
// node owns keys, channels, and routing; this side only asks it to issue
// invoices, dispatch payments, and hand over its event stream.
package lightning

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"lnledger/config"
	"lnledger/internal/core/ports"

	"github.com/rs/zerolog"
)

// Client implements ports.LightningNode over the node's HTTP API.
type Client struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
	pollClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a node client. Event long-polls use a separate client
// with a longer timeout than regular calls.
func NewClient(cfg config.NodeConfig, log zerolog.Logger) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		authToken:  cfg.AuthToken,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		pollClient: &http.Client{Timeout: cfg.PollTimeout},
		log:        log.With().Str("component", "node").Logger(),
	}
}

type receiveRequest struct {
	AmountMsat  int64  `json:"amount_msat"`
	Description string `json:"description"`
	ExpirySecs  int64  `json:"expiry_secs"`
}

type receiveResponse struct {
	Bolt11 string `json:"bolt11"`
}

// Receive creates a BOLT11 invoice on the node.
func (c *Client) Receive(ctx context.Context, amountMsat int64, description string, expirySecs int64) (string, error) {
	var resp receiveResponse
	err := c.do(ctx, c.httpClient, http.MethodPost, "/v1/invoices", receiveRequest{
		AmountMsat:  amountMsat,
		Description: description,
		ExpirySecs:  expirySecs,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Bolt11, nil
}

type sendRequest struct {
	Bolt11         string `json:"bolt11"`
	FeeCeilingMsat int64  `json:"fee_ceiling_msat"`
}

// Send dispatches an invoice payment with a routing-fee ceiling.
func (c *Client) Send(ctx context.Context, bolt11 string, feeCeilingMsat int64) error {
	return c.do(ctx, c.httpClient, http.MethodPost, "/v1/payments", sendRequest{
		Bolt11:         bolt11,
		FeeCeilingMsat: feeCeilingMsat,
	}, nil)
}

// NextEvent long-polls for the next unacknowledged payment outcome.
func (c *Client) NextEvent(ctx context.Context) (*ports.NodeEvent, error) {
	var event ports.NodeEvent
	if err := c.do(ctx, c.pollClient, http.MethodGet, "/v1/events/next", nil, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

type ackRequest struct {
	EventID string `json:"event_id"`
}

// AckEvent acknowledges an event so the node advances the stream.
func (c *Client) AckEvent(ctx context.Context, eventID string) error {
	return c.do(ctx, c.httpClient, http.MethodPost, "/v1/events/ack", ackRequest{EventID: eventID}, nil)
}

type nodeIDResponse struct {
	NodeID string `json:"node_id"`
}

// NodeID returns the node's public key.
func (c *Client) NodeID(ctx context.Context) (string, error) {
	var resp nodeIDResponse
	if err := c.do(ctx, c.httpClient, http.MethodGet, "/v1/node/id", nil, &resp); err != nil {
		return "", err
	}
	return resp.NodeID, nil
}

// Balances returns the node's on-chain and channel liquidity.
func (c *Client) Balances(ctx context.Context) (*ports.NodeBalances, error) {
	var resp ports.NodeBalances
	if err := c.do(ctx, c.httpClient, http.MethodGet, "/v1/node/balances", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type newAddressResponse struct {
	Address string `json:"address"`
}

// NewAddress returns a fresh on-chain deposit address.
func (c *Client) NewAddress(ctx context.Context) (string, error) {
	var resp newAddressResponse
	if err := c.do(ctx, c.httpClient, http.MethodPost, "/v1/onchain/address", nil, &resp); err != nil {
		return "", err
	}
	return resp.Address, nil
}

type sendOnchainRequest struct {
	Address      string `json:"address"`
	AmountSats   int64  `json:"amount_sats"`
	FeeRateSatVB *int64 `json:"fee_rate_sat_vb,omitempty"`
}

// SendOnchain moves on-chain funds out of the node wallet.
func (c *Client) SendOnchain(ctx context.Context, address string, amountSats int64, feeRateSatVB *int64) error {
	return c.do(ctx, c.httpClient, http.MethodPost, "/v1/onchain/send", sendOnchainRequest{
		Address:      address,
		AmountSats:   amountSats,
		FeeRateSatVB: feeRateSatVB,
	}, nil)
}

type listChannelsResponse struct {
	Channels []ports.ChannelInfo `json:"channels"`
}

// ListChannels lists the node's channels.
func (c *Client) ListChannels(ctx context.Context) ([]ports.ChannelInfo, error) {
	var resp listChannelsResponse
	if err := c.do(ctx, c.httpClient, http.MethodGet, "/v1/channels", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Channels, nil
}

type openChannelResponse struct {
	ChannelID string `json:"channel_id"`
}

// OpenChannel opens a channel to a peer.
func (c *Client) OpenChannel(ctx context.Context, params ports.OpenChannelParams) (string, error) {
	var resp openChannelResponse
	if err := c.do(ctx, c.httpClient, http.MethodPost, "/v1/channels/open", params, &resp); err != nil {
		return "", err
	}
	return resp.ChannelID, nil
}

type closeChannelRequest struct {
	ChannelID          string `json:"channel_id"`
	CounterpartyNodeID string `json:"counterparty_node_id"`
	Force              bool   `json:"force"`
}

// CloseChannel closes a channel, cooperatively or by force.
func (c *Client) CloseChannel(ctx context.Context, channelID, counterpartyNodeID string, force bool) error {
	return c.do(ctx, c.httpClient, http.MethodPost, "/v1/channels/close", closeChannelRequest{
		ChannelID:          channelID,
		CounterpartyNodeID: counterpartyNodeID,
		Force:              force,
	}, nil)
}

type listPeersResponse struct {
	Peers []ports.PeerInfo `json:"peers"`
}

// ListPeers lists the node's peer connections.
func (c *Client) ListPeers(ctx context.Context) ([]ports.PeerInfo, error) {
	var resp listPeersResponse
	if err := c.do(ctx, c.httpClient, http.MethodGet, "/v1/peers", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Peers, nil
}

type connectPeerRequest struct {
	NodeID  string `json:"node_id"`
	Address string `json:"address"`
	Persist bool   `json:"persist"`
}

// ConnectPeer connects (and optionally persists) a peer.
func (c *Client) ConnectPeer(ctx context.Context, nodeID, address string, persist bool) error {
	return c.do(ctx, c.httpClient, http.MethodPost, "/v1/peers/connect", connectPeerRequest{
		NodeID:  nodeID,
		Address: address,
		Persist: persist,
	}, nil)
}

type disconnectPeerRequest struct {
	NodeID string `json:"node_id"`
}

// DisconnectPeer disconnects a peer.
func (c *Client) DisconnectPeer(ctx context.Context, nodeID string) error {
	return c.do(ctx, c.httpClient, http.MethodPost, "/v1/peers/disconnect", disconnectPeerRequest{NodeID: nodeID}, nil)
}

// Ping checks node connectivity, implementing ports.HealthChecker.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.NodeID(ctx)
	return err
}

// Name returns the dependency name.
func (c *Client) Name() string {
	return "node"
}

// do performs one JSON round trip. Non-2xx responses become errors carrying
// the node's message.
func (c *Client) do(ctx context.Context, client *http.Client, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.authToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("node request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("node returned status %d for %s %s: %s", resp.StatusCode, method, path, string(data))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
