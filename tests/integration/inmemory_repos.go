package integration

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"lnledger/internal/core/domain"
	"lnledger/internal/core/ports"
	"lnledger/pkg/apperror"
)

// memStore backs all repositories with plain maps behind one mutex, so the
// integration tests exercise the real services, handlers, and middleware
// without a PostgreSQL instance. Every method hands out copies; callers
// never see shared pointers.
type memStore struct {
	mu       sync.Mutex
	users    map[string]*domain.User
	invoices map[string]*domain.Invoice
	receipts map[string]*domain.Receipt
	sends    map[string]*domain.Send
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[string]*domain.User),
		invoices: make(map[string]*domain.Invoice),
		receipts: make(map[string]*domain.Receipt),
		sends:    make(map[string]*domain.Send),
	}
}

// balanceLocked mirrors the SQL balance computation: receipts minus
// successful sends with their fees. Caller holds the mutex.
func (s *memStore) balanceLocked(username string) (int64, error) {
	var balance int64
	for _, r := range s.receipts {
		if r.Username == username {
			balance += r.AmountMsat
		}
	}
	for _, snd := range s.sends {
		if snd.Username == username && snd.Status == domain.SendStatusSuccessful {
			balance -= snd.AmountMsat + snd.FeeMsat
		}
	}
	if balance < 0 {
		return 0, apperror.Integrity(
			fmt.Sprintf("negative balance %d msat for user %q", balance, username), nil)
	}
	return balance, nil
}

// --- UserRepository ---

type memUserRepo struct{ store *memStore }

func (r *memUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.users[user.Username]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *user
	r.store.users[user.Username] = &cp
	return nil
}

func (r *memUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	u, ok := r.store.users[username]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) List(ctx context.Context) ([]domain.UserInfo, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	infos := make([]domain.UserInfo, 0, len(r.store.users))
	for _, u := range r.store.users {
		balance, err := r.store.balanceLocked(u.Username)
		if err != nil {
			return nil, err
		}
		infos = append(infos, domain.UserInfo{
			Username:    u.Username,
			BalanceMsat: balance,
			CreatedAt:   u.CreatedAt,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Username < infos[j].Username })
	return infos, nil
}

func (r *memUserRepo) CountRegisteredSince(ctx context.Context, window time.Duration) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cutoff := time.Now().UTC().Add(-window)
	var count int64
	for _, u := range r.store.users {
		if u.CreatedAt.After(cutoff) {
			count++
		}
	}
	return count, nil
}

// --- InvoiceRepository ---

type memInvoiceRepo struct{ store *memStore }

func (r *memInvoiceRepo) Create(ctx context.Context, invoice *domain.Invoice) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.invoices[invoice.PaymentHash]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *invoice
	r.store.invoices[invoice.PaymentHash] = &cp
	return nil
}

func (r *memInvoiceRepo) GetByHash(ctx context.Context, paymentHash string) (*domain.Invoice, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	inv, ok := r.store.invoices[paymentHash]
	if !ok {
		return nil, nil
	}
	cp := *inv
	return &cp, nil
}

func (r *memInvoiceRepo) CountPending(ctx context.Context, username string) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	now := time.Now().UTC()
	var count int64
	for _, inv := range r.store.invoices {
		if inv.Username != username || inv.IsExpired(now) {
			continue
		}
		if _, settled := r.store.receipts[inv.PaymentHash]; settled {
			continue
		}
		count++
	}
	return count, nil
}

// --- ReceiptRepository ---

type memReceiptRepo struct{ store *memStore }

func (r *memReceiptRepo) InsertIdempotent(ctx context.Context, receipt *domain.Receipt) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.receipts[receipt.PaymentHash]; ok {
		return false, nil
	}
	cp := *receipt
	r.store.receipts[receipt.PaymentHash] = &cp
	return true, nil
}

func (r *memReceiptRepo) GetByHash(ctx context.Context, paymentHash string) (*domain.Receipt, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	rec, ok := r.store.receipts[paymentHash]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

// --- SendRepository ---

type memSendRepo struct{ store *memStore }

func (r *memSendRepo) Create(ctx context.Context, send *domain.Send) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.sends[send.PaymentHash]; ok {
		return domain.ErrAlreadyExists
	}
	cp := *send
	r.store.sends[send.PaymentHash] = &cp
	return nil
}

func (r *memSendRepo) GetByHash(ctx context.Context, paymentHash string) (*domain.Send, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	s, ok := r.store.sends[paymentHash]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *memSendRepo) Delete(ctx context.Context, paymentHash string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.sends, paymentHash)
	return nil
}

func (r *memSendRepo) CountPending(ctx context.Context, username string) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var count int64
	for _, s := range r.store.sends {
		if s.Username == username && s.Status == domain.SendStatusPending {
			count++
		}
	}
	return count, nil
}

func (r *memSendRepo) SumPending(ctx context.Context, username string) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var total int64
	for _, s := range r.store.sends {
		if s.Username == username && s.Status == domain.SendStatusPending {
			total += s.AmountMsat + s.FeeMsat
		}
	}
	return total, nil
}

func (r *memSendRepo) UpdateStatus(ctx context.Context, paymentHash string, status domain.SendStatus) (*domain.Send, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	s, ok := r.store.sends[paymentHash]
	if !ok {
		return nil, apperror.Integrity(
			fmt.Sprintf("send %s finalized but never recorded", paymentHash), nil)
	}
	if s.Status == domain.SendStatusPending {
		s.Status = status
	}
	cp := *s
	return &cp, nil
}

// --- LedgerReader ---

type memLedger struct{ store *memStore }

func (l *memLedger) Balance(ctx context.Context, username string) (int64, error) {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()
	return l.store.balanceLocked(username)
}

func (l *memLedger) Payments(ctx context.Context, username string) ([]domain.Payment, error) {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()
	var payments []domain.Payment
	for _, r := range l.store.receipts {
		if r.Username == username {
			payments = append(payments, r.AsPayment())
		}
	}
	for _, s := range l.store.sends {
		if s.Username == username {
			payments = append(payments, s.AsPayment())
		}
	}
	sort.Slice(payments, func(i, j int) bool {
		return payments[i].CreatedAt.Before(payments[j].CreatedAt)
	})
	return payments, nil
}

// --- Fake node and invoice encoding ---

// Fake invoices are "lnfake:<hash>:<amount_msat>:<expiry_secs>:<description>".
// The format round-trips through decodeFakeInvoice so the whole submission
// protocol runs without real BOLT11 signing.
func encodeFakeInvoice(paymentHash string, amountMsat, expirySecs int64, description string) string {
	return fmt.Sprintf("lnfake:%s:%d:%d:%s", paymentHash, amountMsat, expirySecs, description)
}

func decodeFakeInvoice(bolt11 string) (ports.DecodedInvoice, error) {
	parts := strings.SplitN(bolt11, ":", 5)
	if len(parts) != 5 || parts[0] != "lnfake" {
		return ports.DecodedInvoice{}, fmt.Errorf("not a fake invoice: %q", bolt11)
	}
	amount, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return ports.DecodedInvoice{}, fmt.Errorf("bad amount in fake invoice: %w", err)
	}
	expiry, err := strconv.ParseInt(parts[3], 10, 64)
	if err != nil {
		return ports.DecodedInvoice{}, fmt.Errorf("bad expiry in fake invoice: %w", err)
	}
	return ports.DecodedInvoice{
		PaymentHash: parts[1],
		AmountMsat:  amount,
		Description: parts[4],
		ExpirySecs:  expiry,
	}, nil
}

func randomHash() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}

// fakeNode stands in for the payment node. Every send is accepted and
// reported successful on the event stream. Incoming network payments are
// injected by tests through emitReceived.
type fakeNode struct {
	mu     sync.Mutex
	events chan *ports.NodeEvent
	acked  map[string]bool
	seq    int
}

func newFakeNode() *fakeNode {
	return &fakeNode{
		events: make(chan *ports.NodeEvent, 256),
		acked:  make(map[string]bool),
	}
}

func (n *fakeNode) emit(kind ports.NodeEventKind, paymentHash string, amountMsat int64) {
	n.mu.Lock()
	n.seq++
	id := fmt.Sprintf("evt-%d", n.seq)
	n.mu.Unlock()
	n.events <- &ports.NodeEvent{ID: id, Kind: kind, PaymentHash: paymentHash, AmountMsat: amountMsat}
}

// emitReceived simulates the node confirming an incoming payment.
func (n *fakeNode) emitReceived(paymentHash string, amountMsat int64) {
	n.emit(ports.NodeEventPaymentReceived, paymentHash, amountMsat)
}

func (n *fakeNode) Receive(ctx context.Context, amountMsat int64, description string, expirySecs int64) (string, error) {
	return encodeFakeInvoice(randomHash(), amountMsat, expirySecs, description), nil
}

func (n *fakeNode) Send(ctx context.Context, bolt11 string, feeCeilingMsat int64) error {
	decoded, err := decodeFakeInvoice(bolt11)
	if err != nil {
		return err
	}
	n.emit(ports.NodeEventPaymentSuccessful, decoded.PaymentHash, decoded.AmountMsat)
	return nil
}

// NextEvent delivers each event once. The production node redelivers until
// acked; these tests never crash mid-event, so once is enough.
func (n *fakeNode) NextEvent(ctx context.Context) (*ports.NodeEvent, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case event := <-n.events:
		return event, nil
	}
}

func (n *fakeNode) AckEvent(ctx context.Context, eventID string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.acked[eventID] = true
	return nil
}

func (n *fakeNode) NodeID(ctx context.Context) (string, error) { return "02fakenode", nil }

func (n *fakeNode) Balances(ctx context.Context) (*ports.NodeBalances, error) {
	return &ports.NodeBalances{}, nil
}

func (n *fakeNode) NewAddress(ctx context.Context) (string, error) { return "bcrt1qfakeaddr", nil }

func (n *fakeNode) SendOnchain(ctx context.Context, address string, amountSats int64, feeRateSatVB *int64) error {
	return nil
}

func (n *fakeNode) ListChannels(ctx context.Context) ([]ports.ChannelInfo, error) { return nil, nil }

func (n *fakeNode) OpenChannel(ctx context.Context, params ports.OpenChannelParams) (string, error) {
	return "fake-channel-1", nil
}

func (n *fakeNode) CloseChannel(ctx context.Context, channelID, counterpartyNodeID string, force bool) error {
	return nil
}

func (n *fakeNode) ListPeers(ctx context.Context) ([]ports.PeerInfo, error) { return nil, nil }

func (n *fakeNode) ConnectPeer(ctx context.Context, nodeID, address string, persist bool) error {
	return nil
}

func (n *fakeNode) DisconnectPeer(ctx context.Context, nodeID string) error { return nil }
