/**
 * @description
 * In-memory SmartBank API stand-in. It implements the wire contract the client
 * consumes (auth, OTP password reset, account, transactions) with bcrypt
 * password hashing and HS256 bearer tokens, backed by maps instead of a
 * database so local development and the e2e tests stay hermetic.
 *
 * This is a test double, not a product: balance arithmetic is deliberately
 * naive and there is no fraud checking or concurrency beyond one mutex.
 *
 * @dependencies
 * - github.com/golang-jwt/jwt/v5: Token mint and verification.
 * - golang.org/x/crypto/bcrypt: Password and PIN hashing.
 * - internal/domain: The shared wire models.
 */

package devserver

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/smartbank/banking-client/internal/domain"
)

// Config carries the dev server's tunables.
type Config struct {
	JWTSecret []byte
	TokenTTL  time.Duration
}

type userRecord struct {
	user         domain.User
	passwordHash []byte
}

type accountRecord struct {
	account domain.Account
	pinHash []byte
}

// Server holds the in-memory state behind the API.
type Server struct {
	cfg    Config
	logger *slog.Logger

	mu           sync.Mutex
	usersByEmail map[string]*userRecord
	accounts     map[string]*accountRecord // keyed by account number
	accountByUID map[int64]string
	transactions map[int64][]domain.Transaction // per user, newest first
	otps         map[string]string              // email -> pending code
	nextUserID   int64
	nextAccID    int64
	nextTxID     int64
}

// New creates an empty dev server.
func New(cfg Config, logger *slog.Logger) *Server {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 30 * time.Minute
	}
	return &Server{
		cfg:          cfg,
		logger:       logger,
		usersByEmail: make(map[string]*userRecord),
		accounts:     make(map[string]*accountRecord),
		accountByUID: make(map[int64]string),
		transactions: make(map[int64][]domain.Transaction),
		otps:         make(map[string]string),
	}
}

// issueToken mints a bearer token for the user.
func (s *Server) issueToken(userID int64, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   fmt.Sprintf("%d", userID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.cfg.JWTSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// IssueExpiredToken mints an already-expired token. Tests use it to drive the
// forced-invalidation path.
func (s *Server) IssueExpiredToken(userID int64) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   fmt.Sprintf("%d", userID),
		IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.cfg.JWTSecret)
}

// verifyToken parses a bearer token and returns the user id it was issued to.
func (s *Server) verifyToken(tokenString string) (int64, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.cfg.JWTSecret, nil
	})
	if err != nil {
		return 0, err
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return 0, fmt.Errorf("invalid token")
	}
	var userID int64
	if _, err := fmt.Sscanf(claims.Subject, "%d", &userID); err != nil {
		return 0, fmt.Errorf("invalid token subject: %w", err)
	}
	return userID, nil
}

// registerUser stores a new user with a hashed password.
func (s *Server) registerUser(req domain.SignupRequest) (domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usersByEmail[req.Email]; exists {
		return domain.User{}, errEmailTaken
	}

	s.nextUserID++
	user := domain.User{
		ID:          s.nextUserID,
		Name:        req.Name,
		Email:       req.Email,
		CountryCode: req.CountryCode,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
	}
	s.usersByEmail[req.Email] = &userRecord{user: user, passwordHash: hash}
	return user, nil
}

// authenticate checks credentials and returns the user on success.
func (s *Server) authenticate(email, password string) (domain.User, error) {
	s.mu.Lock()
	rec, ok := s.usersByEmail[email]
	s.mu.Unlock()
	if !ok {
		return domain.User{}, errBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword(rec.passwordHash, []byte(password)); err != nil {
		return domain.User{}, errBadCredentials
	}
	return rec.user, nil
}

// generateOTP creates and stores a six-digit code for the email.
func (s *Server) generateOTP(email string) (string, error) {
	s.mu.Lock()
	_, known := s.usersByEmail[email]
	s.mu.Unlock()
	if !known {
		return "", errUnknownEmail
	}

	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}
	code := fmt.Sprintf("%06d", n.Int64())

	s.mu.Lock()
	s.otps[email] = code
	s.mu.Unlock()
	return code, nil
}

// resetPassword verifies the OTP and replaces the password hash.
func (s *Server) resetPassword(req domain.PasswordResetRequest) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.usersByEmail[req.Email]
	if !ok {
		return errUnknownEmail
	}
	code, pending := s.otps[req.Email]
	if !pending || code != req.OTP {
		return errBadOTP
	}
	delete(s.otps, req.Email)
	rec.passwordHash = hash
	return nil
}

// createAccount opens the user's single account with a hashed transaction PIN.
func (s *Server) createAccount(userID int64, req domain.AccountRequest) (domain.Account, error) {
	pinHash, err := bcrypt.GenerateFromPassword([]byte(req.PIN), bcrypt.DefaultCost)
	if err != nil {
		return domain.Account{}, fmt.Errorf("failed to hash pin: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accountByUID[userID]; exists {
		return domain.Account{}, errAccountExists
	}

	s.nextAccID++
	account := domain.Account{
		ID:            s.nextAccID,
		AccountNumber: fmt.Sprintf("AC%08d", s.nextAccID),
		AccountType:   req.AccountType,
		Branch:        req.Branch,
		UserID:        userID,
	}
	s.accounts[account.AccountNumber] = &accountRecord{account: account, pinHash: pinHash}
	s.accountByUID[userID] = account.AccountNumber
	return account, nil
}

// accountFor returns the user's account, if any.
func (s *Server) accountFor(userID int64) (domain.Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	number, ok := s.accountByUID[userID]
	if !ok {
		return domain.Account{}, false
	}
	return s.accounts[number].account, true
}

// listTransactions returns the user's transactions newest first.
func (s *Server) listTransactions(userID int64) []domain.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	txs := s.transactions[userID]
	out := make([]domain.Transaction, len(txs))
	copy(out, txs)
	return out
}

// applyTransaction validates and executes a transaction request for the user.
func (s *Server) applyTransaction(userID int64, req domain.TransactionRequest) (domain.Transaction, error) {
	if req.Amount <= 0 {
		return domain.Transaction{}, errBadAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	source, ok := s.accounts[req.SourceAccountNumber]
	if !ok || source.account.UserID != userID {
		return domain.Transaction{}, errUnknownAccount
	}
	if err := bcrypt.CompareHashAndPassword(source.pinHash, []byte(req.PIN)); err != nil {
		return domain.Transaction{}, errBadPIN
	}

	switch req.TransactionType {
	case domain.TransactionTypeDeposit:
		source.account.Balance += req.Amount
	case domain.TransactionTypeWithdrawal:
		if source.account.Balance < req.Amount {
			return domain.Transaction{}, errInsufficientFunds
		}
		source.account.Balance -= req.Amount
	case domain.TransactionTypeTransfer:
		target, ok := s.accounts[req.TargetAccountNumber]
		if !ok {
			return domain.Transaction{}, errUnknownAccount
		}
		if target.account.AccountNumber == source.account.AccountNumber {
			return domain.Transaction{}, errSameAccount
		}
		if source.account.Balance < req.Amount {
			return domain.Transaction{}, errInsufficientFunds
		}
		source.account.Balance -= req.Amount
		target.account.Balance += req.Amount
	default:
		return domain.Transaction{}, errBadType
	}

	s.nextTxID++
	tx := domain.Transaction{
		ID:                s.nextTxID,
		Amount:            req.Amount,
		TransactionDate:   time.Now().UTC(),
		TransactionType:   req.TransactionType,
		TransactionStatus: domain.TransactionStatusCompleted,
	}
	// Newest first, matching the contract the client assumes.
	s.transactions[userID] = append([]domain.Transaction{tx}, s.transactions[userID]...)
	return tx, nil
}
