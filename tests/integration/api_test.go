package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lnledger/config"
	httpHandler "lnledger/internal/adapter/http/handler"
	redisStorage "lnledger/internal/adapter/storage/redis"
	"lnledger/internal/core/ports"
	"lnledger/internal/eventbus"
	"lnledger/internal/reconciler"
	"lnledger/internal/service"
	"lnledger/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAdminToken = "integration-admin-token"

// testApp is the full application stack: real handlers, middleware,
// services, settlement, and reconciler over in-memory storage, a fake
// payment node, and miniredis for rate limiting.
type testApp struct {
	server *httptest.Server
	redis  *miniredis.Miniredis
	node   *fakeNode
	fees   config.FeeConfig
	cancel context.CancelFunc
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})

	store := newMemStore()
	userRepo := &memUserRepo{store: store}
	invoiceRepo := &memInvoiceRepo{store: store}
	receiptRepo := &memReceiptRepo{store: store}
	sendRepo := &memSendRepo{store: store}
	ledger := &memLedger{store: store}

	node := newFakeNode()
	log := logger.New("error", false)
	bus := eventbus.New(log)

	fees := config.FeeConfig{FeePPM: 10_000, BaseFeeMsat: 1_000}
	limits := config.LimitsConfig{
		MinAmountSat:      1,
		MaxAmountSat:      1_000_000,
		MaxPendingPerUser: 10,
		MaxDailyNewUsers:  100,
		InvoiceExpirySecs: 3600,
	}

	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService("integration-jwt-secret-32-bytes!", 24*time.Hour, "lnledger-test")

	settlementSvc := service.NewSettlementEngine(receiptRepo, sendRepo, ledger, bus, log)
	authSvc := service.NewAuthService(userRepo, hashSvc, tokenSvc, limits.MaxDailyNewUsers)
	paymentSvc := service.NewPaymentService(
		invoiceRepo, sendRepo, ledger, node, decodeFakeInvoice, settlementSvc, bus, fees, limits, log)
	adminSvc := service.NewAdminService(userRepo, settlementSvc, log)

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		PaymentSvc:     paymentSvc,
		AdminSvc:       adminSvc,
		TokenSvc:       tokenSvc,
		Bus:            bus,
		Node:           node,
		UserRepo:       userRepo,
		RateLimitStore: redisStorage.NewRateLimitStore(rdb),
		HealthCheckers: []ports.HealthChecker{redisStorage.NewHealthCheck(rdb)},
		Server:         config.ServerConfig{PublicBaseURL: "https://pay.example.com"},
		Admin:          config.AdminConfig{Token: testAdminToken},
		Limits:         limits,
		Logger:         log,
	})

	ctx, cancel := context.WithCancel(context.Background())
	rec := reconciler.New(node, invoiceRepo, settlementSvc, log)
	go rec.Run(ctx)

	return &testApp{
		server: httptest.NewServer(router),
		redis:  mr,
		node:   node,
		fees:   fees,
		cancel: cancel,
	}
}

func (a *testApp) close() {
	a.cancel()
	a.server.Close()
	a.redis.Close()
}

// request sends one JSON request and decodes the JSON body, if any.
func (a *testApp) request(t *testing.T, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, a.server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]interface{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	}
	return resp.StatusCode, decoded
}

func (a *testApp) register(t *testing.T, username string) string {
	t.Helper()
	status, body := a.request(t, http.MethodPost, "/api/v1/account/register", "", map[string]string{
		"username": username,
		"password": "CorrectHorse9Battery",
	})
	require.Equal(t, http.StatusCreated, status)
	data := body["data"].(map[string]interface{})
	return data["token"].(string)
}

func (a *testApp) credit(t *testing.T, username string, amountMsat int64) {
	t.Helper()
	status, _ := a.request(t, http.MethodPost, "/api/v1/admin/users/credit", testAdminToken, map[string]interface{}{
		"username":    username,
		"amount_msat": amountMsat,
	})
	require.Equal(t, http.StatusOK, status)
}

func (a *testApp) balance(t *testing.T, token string) int64 {
	t.Helper()
	status, body := a.request(t, http.MethodGet, "/api/v1/user/balance", token, nil)
	require.Equal(t, http.StatusOK, status)
	data := body["data"].(map[string]interface{})
	return int64(data["balance_msat"].(float64))
}

func (a *testApp) payments(t *testing.T, token string) []map[string]interface{} {
	t.Helper()
	status, body := a.request(t, http.MethodGet, "/api/v1/user/payments", token, nil)
	require.Equal(t, http.StatusOK, status)
	items := body["data"].([]interface{})
	out := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		out = append(out, item.(map[string]interface{}))
	}
	return out
}

// --- Integration Tests ---

func TestIntegration_HealthCheck(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	status, body := app.request(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])
}

func TestIntegration_RegisterAndLogin(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token := app.register(t, "alice")
	assert.NotEmpty(t, token)

	status, body := app.request(t, http.MethodPost, "/api/v1/account/login", "", map[string]string{
		"username": "alice",
		"password": "CorrectHorse9Battery",
	})
	assert.Equal(t, http.StatusOK, status)
	data := body["data"].(map[string]interface{})
	assert.NotEmpty(t, data["token"])

	// Same username again
	status, body = app.request(t, http.MethodPost, "/api/v1/account/register", "", map[string]string{
		"username": "alice",
		"password": "AnotherPassword1",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "AUTH_002", body["error_code"])

	status, _ = app.request(t, http.MethodPost, "/api/v1/account/login", "", map[string]string{
		"username": "alice",
		"password": "wrong-password-00",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestIntegration_IntraLedgerPayment(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	aliceToken := app.register(t, "alice")
	bobToken := app.register(t, "bob")

	app.credit(t, "alice", 1_000_000)
	require.Equal(t, int64(1_000_000), app.balance(t, aliceToken))

	status, body := app.request(t, http.MethodPost, "/api/v1/user/invoices", bobToken, map[string]interface{}{
		"amount_msat": 200_000,
		"description": "dinner",
	})
	require.Equal(t, http.StatusCreated, status)
	invoice := body["data"].(map[string]interface{})
	bolt11 := invoice["bolt11"].(string)
	require.NotEmpty(t, bolt11)

	status, body = app.request(t, http.MethodPost, "/api/v1/user/pay", aliceToken, map[string]interface{}{
		"bolt11": bolt11,
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["data"].(map[string]interface{})["accepted"])

	// Intra-ledger settlement is synchronous: both balances move before
	// the submission returns.
	fee := app.fees.FeeMsat(200_000)
	assert.Equal(t, 1_000_000-200_000-fee, app.balance(t, aliceToken))
	assert.Equal(t, int64(200_000), app.balance(t, bobToken))

	alicePayments := app.payments(t, aliceToken)
	require.Len(t, alicePayments, 2) // admin credit + send
	send := alicePayments[1]
	assert.Equal(t, "send", send["direction"])
	assert.Equal(t, "successful", send["status"])
	assert.Equal(t, float64(fee), send["fee_msat"])

	bobPayments := app.payments(t, bobToken)
	require.Len(t, bobPayments, 1)
	assert.Equal(t, "receive", bobPayments[0]["direction"])
	assert.Equal(t, float64(200_000), bobPayments[0]["amount_msat"])
}

func TestIntegration_SelfPaymentRejected(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token := app.register(t, "alice")
	app.credit(t, "alice", 500_000)

	status, body := app.request(t, http.MethodPost, "/api/v1/user/invoices", token, map[string]interface{}{
		"amount_msat": 100_000,
	})
	require.Equal(t, http.StatusCreated, status)
	bolt11 := body["data"].(map[string]interface{})["bolt11"].(string)

	status, body = app.request(t, http.MethodPost, "/api/v1/user/pay", token, map[string]interface{}{
		"bolt11": bolt11,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VAL_005", body["error_code"])
	assert.Equal(t, int64(500_000), app.balance(t, token))
}

func TestIntegration_InsufficientBalance(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token := app.register(t, "alice")

	external := encodeFakeInvoice(randomHash(), 100_000, 3600, "external")
	status, body := app.request(t, http.MethodPost, "/api/v1/user/pay", token, map[string]interface{}{
		"bolt11": external,
	})
	assert.Equal(t, http.StatusPaymentRequired, status)
	assert.Equal(t, "PAY_001", body["error_code"])
}

func TestIntegration_ExternalSendSettles(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token := app.register(t, "alice")
	app.credit(t, "alice", 1_000_000)

	external := encodeFakeInvoice(randomHash(), 300_000, 3600, "vpn subscription")
	status, _ := app.request(t, http.MethodPost, "/api/v1/user/pay", token, map[string]interface{}{
		"bolt11": external,
	})
	require.Equal(t, http.StatusOK, status)

	// The node reports success asynchronously; the reconciler finalizes
	// the send and only then does the balance move.
	fee := app.fees.FeeMsat(300_000)
	require.Eventually(t, func() bool {
		return app.balance(t, token) == 1_000_000-300_000-fee
	}, 3*time.Second, 25*time.Millisecond)

	payments := app.payments(t, token)
	require.Len(t, payments, 2)
	assert.Equal(t, "send", payments[1]["direction"])
	assert.Equal(t, "successful", payments[1]["status"])
}

func TestIntegration_ExternalReceiveSettles(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token := app.register(t, "bob")

	status, body := app.request(t, http.MethodPost, "/api/v1/user/invoices", token, map[string]interface{}{
		"amount_msat": 150_000,
		"description": "donation",
	})
	require.Equal(t, http.StatusCreated, status)
	hash := body["data"].(map[string]interface{})["payment_hash"].(string)

	app.node.emitReceived(hash, 150_000)

	require.Eventually(t, func() bool {
		return app.balance(t, token) == 150_000
	}, 3*time.Second, 25*time.Millisecond)

	// Replay of the same event must not double-credit.
	app.node.emitReceived(hash, 150_000)
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int64(150_000), app.balance(t, token))
}

func TestIntegration_LnurlPayFlow(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	app.register(t, "bob")

	status, body := app.request(t, http.MethodGet, "/.well-known/lnurlp/bob", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "payRequest", body["tag"])
	assert.Equal(t, "https://pay.example.com/lnurlp/callback/bob", body["callback"])
	assert.Equal(t, float64(1_000), body["minSendable"])

	status, body = app.request(t, http.MethodGet, "/lnurlp/callback/bob?amount=200000", "", nil)
	require.Equal(t, http.StatusOK, status)
	pr, ok := body["pr"].(string)
	require.True(t, ok, "callback body: %v", body)
	decoded, err := decodeFakeInvoice(pr)
	require.NoError(t, err)
	assert.Equal(t, int64(200_000), decoded.AmountMsat)

	// Wallet errors ride a 200 with an ERROR envelope.
	status, body = app.request(t, http.MethodGet, "/lnurlp/callback/bob?amount=1", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ERROR", body["status"])
	assert.NotEmpty(t, body["reason"])

	status, body = app.request(t, http.MethodGet, "/.well-known/lnurlp/nobody", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "AUTH_004", body["error_code"])
}

func TestIntegration_AdminAuth(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	app.register(t, "alice")
	app.credit(t, "alice", 42_000)

	status, _ := app.request(t, http.MethodGet, "/api/v1/admin/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = app.request(t, http.MethodGet, "/api/v1/admin/users", "wrong-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body := app.request(t, http.MethodGet, "/api/v1/admin/users", testAdminToken, nil)
	require.Equal(t, http.StatusOK, status)
	users := body["data"].([]interface{})
	require.Len(t, users, 1)
	user := users[0].(map[string]interface{})
	assert.Equal(t, "alice", user["username"])
	assert.Equal(t, float64(42_000), user["balance_msat"])
}
