/**
 * @description
 * This package provides the client for the SmartBank API. It encapsulates the
 * logic for making authenticated HTTP requests to the backend's endpoints.
 *
 * Key features:
 * - Manages the API base URL and attaches the current session token as a
 *   bearer credential on every call that has one.
 * - One protocol-level rule is enforced here irrespective of endpoint: any
 *   response with status 401 invokes the registered invalidation hook before
 *   the error is returned, so a rejected credential forces logout process-wide.
 * - Handles JSON serialization/deserialization and maps failures onto the
 *   client's error taxonomy (transport error, APIError, ErrUnauthorized).
 * - No automatic retry anywhere: every failure is terminal for that attempt.
 *
 * @dependencies
 * - bytes, context, encoding/json, fmt, io, net/http, time: Standard Go libraries.
 * - github.com/google/uuid: Per-request correlation ids.
 * - The internal domain package for request/response models.
 */

package bankclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/smartbank/banking-client/internal/domain"
)

// TokenSource supplies the current credential token, or "" when there is none.
// The session manager implements it.
type TokenSource interface {
	Token() string
}

// Client is a client for the SmartBank API.
type Client struct {
	baseURL        string
	tokens         TokenSource
	onUnauthorized func()
	httpClient     *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the default request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithUnauthorizedHook registers the function invoked when any response
// reports credential rejection. The session manager's Invalidate goes here.
func WithUnauthorizedHook(fn func()) Option {
	return func(c *Client) {
		c.onUnauthorized = fn
	}
}

// NewClient creates a new SmartBank API client.
func NewClient(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		tokens:  tokens,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login exchanges credentials for a token and the user profile.
func (c *Client) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
	var resp domain.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Signup registers a new user.
func (c *Client) Signup(ctx context.Context, req domain.SignupRequest) (*domain.User, error) {
	var resp domain.User
	if err := c.do(ctx, http.MethodPost, "/auth/signup", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RequestOTP initiates the out-of-band one-time-code exchange for a password
// reset.
func (c *Client) RequestOTP(ctx context.Context, req domain.OTPRequest) error {
	return c.do(ctx, http.MethodPost, "/auth/otp/request", req, nil)
}

// ResetPassword completes the password reset with the received code.
func (c *Client) ResetPassword(ctx context.Context, req domain.PasswordResetRequest) error {
	return c.do(ctx, http.MethodPost, "/auth/otp/reset", req, nil)
}

// CreateAccount opens the user's account.
func (c *Client) CreateAccount(ctx context.Context, req domain.AccountRequest) (*domain.Account, error) {
	var resp domain.Account
	if err := c.do(ctx, http.MethodPost, "/account", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetAccount fetches the user's account. An absent account is an empty result,
// not an error: the response is (nil, nil).
func (c *Client) GetAccount(ctx context.Context) (*domain.Account, error) {
	var resp domain.Account
	found, err := c.doMaybeEmpty(ctx, http.MethodGet, "/account", nil, &resp)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &resp, nil
}

// CreateTransaction submits a new transaction for server-side processing.
func (c *Client) CreateTransaction(ctx context.Context, req domain.TransactionRequest) (*domain.Transaction, error) {
	var resp domain.Transaction
	if err := c.do(ctx, http.MethodPost, "/transaction", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListTransactions fetches the user's transactions, newest first.
func (c *Client) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	var resp []domain.Transaction
	if err := c.do(ctx, http.MethodGet, "/transaction", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// do is the shared helper for requests to the SmartBank API.
func (c *Client) do(ctx context.Context, method, path string, body, target interface{}) error {
	_, err := c.doMaybeEmpty(ctx, method, path, body, target)
	return err
}

// doMaybeEmpty performs a request and reports whether the response carried a
// body. A 2xx response with an empty body yields (false, nil), which GetAccount
// uses to represent "no account yet".
func (c *Client) doMaybeEmpty(ctx context.Context, method, path string, body, target interface{}) (bool, error) {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return false, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return false, fmt.Errorf("failed to create http request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode == http.StatusUnauthorized {
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return false, fmt.Errorf("%s %s: %w", method, path, ErrUnauthorized)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, &APIError{Status: resp.StatusCode, Message: serverMessage(respBody)}
	}

	if target == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(respBody, target); err != nil {
		return false, fmt.Errorf("failed to unmarshal response body: %w", err)
	}
	return true, nil
}

// serverMessage extracts the server's human-readable rejection message. The
// backend reports errors as {"message": "..."}; anything else falls back to
// the raw body so nothing is swallowed.
func serverMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return string(bytes.TrimSpace(body))
}
