package lightning

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lnledger/config"
	"lnledger/internal/core/ports"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(config.NodeConfig{
		BaseURL:     server.URL,
		AuthToken:   "test-token",
		Timeout:     2 * time.Second,
		PollTimeout: 2 * time.Second,
	}, zerolog.Nop())
	return client, server
}

func TestClient_Receive(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/invoices", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, float64(25_000_000), req["amount_msat"])
		assert.Equal(t, "coffee", req["description"])
		assert.Equal(t, float64(3600), req["expiry_secs"])

		json.NewEncoder(w).Encode(map[string]string{"bolt11": "lnbc250u1p0example"})
	}))

	bolt11, err := client.Receive(context.Background(), 25_000_000, "coffee", 3600)
	require.NoError(t, err)
	assert.Equal(t, "lnbc250u1p0example", bolt11)
}

func TestClient_Send(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payments", r.URL.Path)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "lnbc100u1p0example", req["bolt11"])
		assert.Equal(t, float64(51_000), req["fee_ceiling_msat"])

		w.WriteHeader(http.StatusOK)
		w.Write([]byte("{}"))
	}))

	err := client.Send(context.Background(), "lnbc100u1p0example", 51_000)
	require.NoError(t, err)
}

func TestClient_Send_NodeError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"error":"no route"}`))
	}))

	err := client.Send(context.Background(), "lnbc100u1p0example", 51_000)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "no route")
}

func TestClient_NextEventAndAck(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/events/next":
			json.NewEncoder(w).Encode(ports.NodeEvent{
				ID:          "ev-9",
				Kind:        ports.NodeEventPaymentReceived,
				PaymentHash: "hash-9",
				AmountMsat:  1000,
			})
		case "/v1/events/ack":
			var req map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "ev-9", req["event_id"])
			w.Write([]byte("{}"))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))

	ctx := context.Background()
	event, err := client.NextEvent(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ev-9", event.ID)
	assert.Equal(t, ports.NodeEventPaymentReceived, event.Kind)
	assert.Equal(t, int64(1000), event.AmountMsat)

	require.NoError(t, client.AckEvent(ctx, event.ID))
}

func TestClient_NextEvent_ContextCancel(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.NextEvent(ctx)
	require.Error(t, err)
}

func TestClient_AdminPassThroughs(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/node/id":
			json.NewEncoder(w).Encode(map[string]string{"node_id": "02abcdef"})
		case "/v1/node/balances":
			json.NewEncoder(w).Encode(ports.NodeBalances{
				TotalOnchainBalanceSats:    500_000,
				TotalOutboundCapacityMsats: 1_000_000_000,
			})
		case "/v1/channels":
			json.NewEncoder(w).Encode(map[string]any{
				"channels": []ports.ChannelInfo{{ChannelID: "chan-1", IsUsable: true}},
			})
		case "/v1/peers":
			json.NewEncoder(w).Encode(map[string]any{
				"peers": []ports.PeerInfo{{NodeID: "02abcdef", IsConnected: true}},
			})
		case "/v1/onchain/address":
			json.NewEncoder(w).Encode(map[string]string{"address": "bc1qexample"})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))

	ctx := context.Background()

	nodeID, err := client.NodeID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "02abcdef", nodeID)

	balances, err := client.Balances(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(500_000), balances.TotalOnchainBalanceSats)

	channels, err := client.ListChannels(ctx)
	require.NoError(t, err)
	require.Len(t, channels, 1)
	assert.True(t, channels[0].IsUsable)

	peers, err := client.ListPeers(ctx)
	require.NoError(t, err)
	require.Len(t, peers, 1)

	address, err := client.NewAddress(ctx)
	require.NoError(t, err)
	assert.Equal(t, "bc1qexample", address)
}

func TestDecodeBolt11_RejectsGarbage(t *testing.T) {
	_, err := DecodeBolt11("not-an-invoice")
	require.Error(t, err)

	_, err = DecodeBolt11("")
	require.Error(t, err)
}
