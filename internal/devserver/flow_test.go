package devserver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/smartbank/banking-client/internal/app"
	"github.com/smartbank/banking-client/internal/domain"
	"github.com/smartbank/banking-client/internal/form"
	"github.com/smartbank/banking-client/internal/session"
	"github.com/smartbank/banking-client/pkg/bankclient"
)

type silentNotifier struct{}

func (silentNotifier) Success(string) {}
func (silentNotifier) Failure(string) {}

// TestFullClientFlow drives the real client stack against the dev server:
// signup, login, account opening, a deposit through the form, and finally a
// forced logout when the server rejects an expired credential.
func TestFullClientFlow(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := New(Config{JWTSecret: []byte("flow-secret"), TokenTTL: time.Minute}, logger)
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	store := session.NewStore(filepath.Join(t.TempDir(), "session.json"))
	manager := session.NewManager(store, silentNotifier{}, logger)
	manager.Initialize()
	if manager.IsAuthenticated() {
		t.Fatal("expected a fresh manager to be unauthenticated")
	}

	var forced atomic.Int32
	manager.OnForcedLogout(func() { forced.Add(1) })

	client := bankclient.NewClient(ts.URL, manager,
		bankclient.WithUnauthorizedHook(manager.Invalidate))
	ctx := context.Background()

	// Signup and login, then hand the credential to the session manager.
	if _, err := client.Signup(ctx, domain.SignupRequest{
		Name: "Flow", Email: "flow@b.com", Password: "secret",
	}); err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	login, err := client.Login(ctx, domain.LoginRequest{Email: "flow@b.com", Password: "secret"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if err := manager.Login(login.Token, login.User); err != nil {
		t.Fatalf("session login failed: %v", err)
	}

	account, err := client.CreateAccount(ctx, domain.AccountRequest{
		AccountType: domain.AccountTypeSavings, Branch: "Central", PIN: "1234",
	})
	if err != nil {
		t.Fatalf("account creation failed: %v", err)
	}

	service := app.NewService(client, silentNotifier{}, logger)
	if err := service.LoadDashboard(ctx); err != nil {
		t.Fatalf("dashboard load failed: %v", err)
	}

	fc := form.NewController()
	fc.SetAccount(service.Account())
	fc.SetType(domain.TransactionTypeDeposit)
	fc.SetAmount("150.00")
	fc.SetTargetAccount(account.AccountNumber)
	fc.SetPIN("1234")

	tx, err := service.SubmitTransaction(ctx, fc)
	if err != nil {
		t.Fatalf("deposit failed: %v", err)
	}
	if tx.Amount != 15000 {
		t.Fatalf("expected deposit of 15000, got %d", tx.Amount)
	}

	summary := service.Summary()
	if summary.TotalBalance != 15000 || summary.Count != 1 {
		t.Fatalf("unexpected summary after deposit: %+v", summary)
	}

	// Simulate a stale credential restored from disk: the next fetch must log
	// the user out and fire the redirect hook.
	expired, err := srv.IssueExpiredToken(login.User.ID)
	if err != nil {
		t.Fatalf("IssueExpiredToken failed: %v", err)
	}
	if err := manager.Login(expired, login.User); err != nil {
		t.Fatalf("session login with stale token failed: %v", err)
	}

	err = service.LoadDashboard(ctx)
	if !errors.Is(err, bankclient.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if manager.IsAuthenticated() {
		t.Fatal("expected forced logout after credential rejection")
	}
	if forced.Load() == 0 {
		t.Fatal("expected the forced-logout hook to fire")
	}

	// The persisted session is gone too.
	token, rawUser, err := store.Load()
	if err != nil {
		t.Fatalf("store load failed: %v", err)
	}
	if token != "" || len(rawUser) != 0 {
		t.Fatal("expected persisted session to be cleared")
	}
}

// TestServerRejectionSurfacesVerbatim checks that a business-rule rejection
// travels intact from the dev server through the client to the caller.
func TestServerRejectionSurfacesVerbatim(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := New(Config{JWTSecret: []byte("flow-secret"), TokenTTL: time.Minute}, logger)
	ts := httptest.NewServer(srv.Routes())
	defer ts.Close()

	store := session.NewStore(filepath.Join(t.TempDir(), "session.json"))
	manager := session.NewManager(store, silentNotifier{}, logger)
	manager.Initialize()

	client := bankclient.NewClient(ts.URL, manager)
	ctx := context.Background()

	if _, err := client.Signup(ctx, domain.SignupRequest{
		Name: "Flow", Email: "flow@b.com", Password: "secret",
	}); err != nil {
		t.Fatalf("signup failed: %v", err)
	}
	login, err := client.Login(ctx, domain.LoginRequest{Email: "flow@b.com", Password: "secret"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if err := manager.Login(login.Token, login.User); err != nil {
		t.Fatalf("session login failed: %v", err)
	}
	account, err := client.CreateAccount(ctx, domain.AccountRequest{
		AccountType: domain.AccountTypeSavings, Branch: "Central", PIN: "1234",
	})
	if err != nil {
		t.Fatalf("account creation failed: %v", err)
	}

	// Withdraw from an empty account.
	_, err = client.CreateTransaction(ctx, domain.TransactionRequest{
		Amount: 100, TransactionType: domain.TransactionTypeWithdrawal,
		PIN: "1234", SourceAccountNumber: account.AccountNumber,
	})
	var apiErr *bankclient.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Message != "insufficient funds" {
		t.Fatalf("expected the server's message verbatim, got %q", apiErr.Message)
	}
}
