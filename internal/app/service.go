/**
 * @description
 * This file contains the orchestration layer between the screens and the
 * SmartBank API. The `Service` struct owns the fetched account and transaction
 * state, coordinates the parallel dashboard load, and drives the
 * submit-then-refetch consistency policy for new transactions.
 *
 * Key features:
 * - Dashboard and transaction screens fetch the account and the transaction
 *   list concurrently and join on both: the screen leaves its loading state
 *   only when both calls have settled, and either failure fails the load.
 * - After any state-mutating call the service refetches everything instead of
 *   patching locally: the server may re-price, reject, or apply side effects
 *   the client has no authority to predict.
 * - A generation counter guards against stale completions: a fetch that
 *   finishes after a newer load began cannot clobber the newer state.
 *
 * @dependencies
 * - context, log/slog, sync: Standard Go libraries.
 * - internal/domain, internal/form, internal/notify, internal/views.
 */

package app

import (
	"context"
	"log/slog"
	"sync"

	"github.com/smartbank/banking-client/internal/domain"
	"github.com/smartbank/banking-client/internal/form"
	"github.com/smartbank/banking-client/internal/notify"
	"github.com/smartbank/banking-client/internal/views"
	"github.com/smartbank/banking-client/pkg/bankclient"
)

// Gateway is the slice of the API client the service depends on.
type Gateway interface {
	GetAccount(ctx context.Context) (*domain.Account, error)
	ListTransactions(ctx context.Context) ([]domain.Transaction, error)
	CreateTransaction(ctx context.Context, req domain.TransactionRequest) (*domain.Transaction, error)
}

// Service orchestrates fetches and transaction submission for the screens.
// It is safe for concurrent use.
type Service struct {
	gateway  Gateway
	notifier notify.Notifier
	logger   *slog.Logger

	mu           sync.Mutex
	generation   uint64
	account      *domain.Account
	transactions []domain.Transaction
}

// NewService creates the orchestration service.
func NewService(gateway Gateway, notifier notify.Notifier, logger *slog.Logger) *Service {
	return &Service{
		gateway:  gateway,
		notifier: notifier,
		logger:   logger,
	}
}

// Refresh fetches the account and the transaction list concurrently and joins
// on both completions. Either failure fails the refresh; successful results
// are kept only if no newer refresh started in the meantime.
func (s *Service) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	var (
		wg           sync.WaitGroup
		account      *domain.Account
		accountErr   error
		transactions []domain.Transaction
		listErr      error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		account, accountErr = s.gateway.GetAccount(ctx)
	}()
	go func() {
		defer wg.Done()
		transactions, listErr = s.gateway.ListTransactions(ctx)
	}()
	wg.Wait()

	if accountErr != nil {
		return accountErr
	}
	if listErr != nil {
		return listErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		// A newer load superseded this one; its results win.
		s.logger.Debug("discarding stale fetch result", "generation", gen)
		return nil
	}
	s.account = account
	s.transactions = transactions
	return nil
}

// LoadDashboard refreshes and notifies the user on failure, matching the
// dashboard screen's behavior.
func (s *Service) LoadDashboard(ctx context.Context) error {
	if err := s.Refresh(ctx); err != nil {
		s.logger.Error("dashboard load failed", "error", err)
		s.notifier.Failure("Failed to load dashboard")
		return err
	}
	return nil
}

// LoadTransactions refreshes for the transactions screen.
func (s *Service) LoadTransactions(ctx context.Context) error {
	if err := s.Refresh(ctx); err != nil {
		s.logger.Error("transactions load failed", "error", err)
		s.notifier.Failure("Failed to fetch data")
		return err
	}
	return nil
}

// SubmitTransaction validates the draft, submits it, and on success refetches
// all dependent state. Validation failures never reach the network. Server
// rejections surface their message verbatim and leave the draft untouched so
// the form stays open for correction.
func (s *Service) SubmitTransaction(ctx context.Context, fc *form.Controller) (*domain.Transaction, error) {
	req, err := fc.Validate()
	if err != nil {
		s.notifier.Failure(err.Error())
		return nil, err
	}

	tx, err := s.gateway.CreateTransaction(ctx, req)
	if err != nil {
		s.logger.Error("transaction submission failed", "error", err, "type", req.TransactionType)
		s.notifier.Failure(bankclient.UserMessage(err, "Failed to create transaction"))
		return nil, err
	}

	s.notifier.Success("Transaction created successfully!")
	fc.Reset()

	// Full refetch rather than an incremental merge: the server owns the
	// resulting balance and status.
	if err := s.Refresh(ctx); err != nil {
		s.logger.Warn("refetch after submission failed", "error", err)
	}
	return tx, nil
}

// Account returns the cached account, or nil when none exists.
func (s *Service) Account() *domain.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.account
}

// Transactions returns the cached transaction list in server order.
func (s *Service) Transactions() []domain.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transactions
}

// Filtered returns the cached transactions narrowed by the given filter.
func (s *Service) Filtered(f views.Filter) []domain.Transaction {
	return views.FilterByType(s.Transactions(), f)
}

// Summary returns the dashboard aggregate over the cached state.
func (s *Service) Summary() views.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return views.Aggregate(s.account, s.transactions)
}
