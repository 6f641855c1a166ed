package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/smartbank/banking-client/internal/domain"
	"github.com/smartbank/banking-client/internal/form"
	"github.com/smartbank/banking-client/pkg/bankclient"
)

type fakeNotifier struct {
	mu        sync.Mutex
	successes []string
	failures  []string
}

func (n *fakeNotifier) Success(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, msg)
}

func (n *fakeNotifier) Failure(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failures = append(n.failures, msg)
}

// fakeGateway scripts responses and counts calls.
type fakeGateway struct {
	mu sync.Mutex

	account    *domain.Account
	accountErr error
	txs        []domain.Transaction
	listErr    error
	created    *domain.Transaction
	createErr  error

	accountCalls int32
	listCalls    int32
	createCalls  int32

	// When set, ListTransactions blocks until the channel is closed.
	listGate chan struct{}
}

func (g *fakeGateway) GetAccount(ctx context.Context) (*domain.Account, error) {
	atomic.AddInt32(&g.accountCalls, 1)
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.account, g.accountErr
}

func (g *fakeGateway) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	atomic.AddInt32(&g.listCalls, 1)
	g.mu.Lock()
	gate := g.listGate
	g.mu.Unlock()
	if gate != nil {
		<-gate
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.txs, g.listErr
}

func (g *fakeGateway) CreateTransaction(ctx context.Context, req domain.TransactionRequest) (*domain.Transaction, error) {
	atomic.AddInt32(&g.createCalls, 1)
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.created, g.createErr
}

func newTestService(g *fakeGateway) (*Service, *fakeNotifier) {
	notifier := &fakeNotifier{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(g, notifier, logger), notifier
}

func validController() *form.Controller {
	fc := form.NewController()
	fc.SetAccount(&domain.Account{AccountNumber: "AC1"})
	fc.SetType(domain.TransactionTypeTransfer)
	fc.SetAmount("50.00")
	fc.SetTargetAccount("AC2")
	fc.SetPIN("1234")
	return fc
}

func TestRefreshJoinsBothFetches(t *testing.T) {
	g := &fakeGateway{
		account: &domain.Account{ID: 1, AccountNumber: "AC1", Balance: 5000},
		txs: []domain.Transaction{
			{ID: 2, TransactionStatus: domain.TransactionStatusPending},
			{ID: 1, TransactionStatus: domain.TransactionStatusCompleted},
		},
	}
	svc, _ := newTestService(g)

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	if got := atomic.LoadInt32(&g.accountCalls); got != 1 {
		t.Fatalf("expected 1 account fetch, got %d", got)
	}
	if got := atomic.LoadInt32(&g.listCalls); got != 1 {
		t.Fatalf("expected 1 transaction fetch, got %d", got)
	}
	if svc.Account() == nil || svc.Account().Balance != 5000 {
		t.Fatalf("expected cached account, got %+v", svc.Account())
	}
	if len(svc.Transactions()) != 2 {
		t.Fatalf("expected 2 cached transactions, got %d", len(svc.Transactions()))
	}

	summary := svc.Summary()
	if summary.TotalBalance != 5000 || summary.Count != 2 || summary.PendingCount != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestRefreshFailsWhenEitherFetchFails(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*fakeGateway)
	}{
		{name: "account fetch fails", mutate: func(g *fakeGateway) { g.accountErr = errors.New("boom") }},
		{name: "transaction fetch fails", mutate: func(g *fakeGateway) { g.listErr = errors.New("boom") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &fakeGateway{account: &domain.Account{ID: 1}}
			tt.mutate(g)
			svc, _ := newTestService(g)

			if err := svc.Refresh(context.Background()); err == nil {
				t.Fatal("expected Refresh to fail")
			}
			// Both fetches still ran: the join waits for both to settle.
			if atomic.LoadInt32(&g.accountCalls) != 1 || atomic.LoadInt32(&g.listCalls) != 1 {
				t.Fatal("expected both fetches to have run")
			}
		})
	}
}

func TestLoadDashboardNotifiesOnFailure(t *testing.T) {
	g := &fakeGateway{accountErr: errors.New("network down")}
	svc, notifier := newTestService(g)

	if err := svc.LoadDashboard(context.Background()); err == nil {
		t.Fatal("expected failure")
	}
	if len(notifier.failures) != 1 || notifier.failures[0] != "Failed to load dashboard" {
		t.Fatalf("expected dashboard failure notification, got %v", notifier.failures)
	}
}

func TestStaleRefreshIsDiscarded(t *testing.T) {
	gate := make(chan struct{})
	g := &fakeGateway{
		account:  &domain.Account{ID: 1, Balance: 100},
		txs:      []domain.Transaction{{ID: 1}},
		listGate: gate,
	}
	svc, _ := newTestService(g)

	done := make(chan error, 1)
	go func() { done <- svc.Refresh(context.Background()) }()

	// A newer refresh completes while the first is blocked on the gate.
	g.mu.Lock()
	g.listGate = nil
	g.account = &domain.Account{ID: 1, Balance: 999}
	g.txs = []domain.Transaction{{ID: 2}, {ID: 1}}
	g.mu.Unlock()
	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("second Refresh failed: %v", err)
	}

	close(gate)
	if err := <-done; err != nil {
		t.Fatalf("first Refresh failed: %v", err)
	}

	// The first (older) refresh must not clobber the newer state.
	if got := svc.Account().Balance; got != 999 {
		t.Fatalf("stale refresh overwrote state: balance %d", got)
	}
	if got := len(svc.Transactions()); got != 2 {
		t.Fatalf("stale refresh overwrote transactions: len %d", got)
	}
}

func TestSubmitTransactionValidationFailureMakesNoNetworkCall(t *testing.T) {
	g := &fakeGateway{}
	svc, notifier := newTestService(g)

	fc := validController()
	fc.SetTargetAccount("AC1") // identical to source

	if _, err := svc.SubmitTransaction(context.Background(), fc); err == nil {
		t.Fatal("expected validation failure")
	}
	if got := atomic.LoadInt32(&g.createCalls); got != 0 {
		t.Fatalf("expected no network call, got %d", got)
	}
	if len(notifier.failures) != 1 {
		t.Fatalf("expected one failure notification, got %v", notifier.failures)
	}
}

func TestSubmitTransactionSuccessRefetches(t *testing.T) {
	g := &fakeGateway{
		account: &domain.Account{ID: 1, AccountNumber: "AC1"},
		created: &domain.Transaction{ID: 7, TransactionStatus: domain.TransactionStatusCompleted},
	}
	svc, notifier := newTestService(g)

	fc := validController()
	tx, err := svc.SubmitTransaction(context.Background(), fc)
	if err != nil {
		t.Fatalf("SubmitTransaction failed: %v", err)
	}
	if tx.ID != 7 {
		t.Fatalf("expected transaction 7, got %d", tx.ID)
	}

	// The full refetch ran: one account fetch and one list fetch.
	if atomic.LoadInt32(&g.accountCalls) != 1 || atomic.LoadInt32(&g.listCalls) != 1 {
		t.Fatal("expected a full refetch after submission")
	}
	if len(notifier.successes) != 1 || notifier.successes[0] != "Transaction created successfully!" {
		t.Fatalf("expected success notification, got %v", notifier.successes)
	}
	// The form was reset for the next entry.
	if d := fc.Draft(); d.PIN != "" || d.Amount != "" {
		t.Fatalf("expected form reset after success, got %+v", d)
	}
}

func TestSubmitTransactionServerRejectionSurfacesVerbatim(t *testing.T) {
	g := &fakeGateway{
		createErr: &bankclient.APIError{Status: 400, Message: "Insufficient funds"},
	}
	svc, notifier := newTestService(g)

	fc := validController()
	if _, err := svc.SubmitTransaction(context.Background(), fc); err == nil {
		t.Fatal("expected submission failure")
	}

	if len(notifier.failures) != 1 || notifier.failures[0] != "Insufficient funds" {
		t.Fatalf("expected verbatim server message, got %v", notifier.failures)
	}
	// No refetch on failure, and the draft survives for correction.
	if atomic.LoadInt32(&g.accountCalls) != 0 {
		t.Fatal("expected no refetch after a rejected submission")
	}
	if d := fc.Draft(); d.Amount != "50.00" || d.PIN != "1234" {
		t.Fatalf("expected draft preserved after rejection, got %+v", d)
	}
}

func TestSubmitTransactionTransportFailureGenericMessage(t *testing.T) {
	g := &fakeGateway{createErr: errors.New("connection refused")}
	svc, notifier := newTestService(g)

	if _, err := svc.SubmitTransaction(context.Background(), validController()); err == nil {
		t.Fatal("expected submission failure")
	}
	if len(notifier.failures) != 1 || notifier.failures[0] != "Failed to create transaction" {
		t.Fatalf("expected generic failure message, got %v", notifier.failures)
	}
}
