/**
 * @description
 * HTTP layer of the dev server: the chi router, the bearer-token middleware,
 * and the endpoint handlers. Handlers parse requests, call the in-memory
 * state, and write JSON responses; rejections carry a {"message": ...} body,
 * which is the shape the client surfaces verbatim.
 */

package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/smartbank/banking-client/internal/domain"
)

var (
	errEmailTaken        = errors.New("email is already registered")
	errBadCredentials    = errors.New("invalid email or password")
	errUnknownEmail      = errors.New("no user with that email")
	errBadOTP            = errors.New("invalid or expired OTP")
	errAccountExists     = errors.New("account already exists")
	errUnknownAccount    = errors.New("account not found")
	errSameAccount       = errors.New("source and target accounts must be different")
	errBadPIN            = errors.New("invalid transaction PIN")
	errBadAmount         = errors.New("amount must be positive")
	errBadType           = errors.New("unknown transaction type")
	errInsufficientFunds = errors.New("insufficient funds")
)

type ctxKey string

const userIDKey ctxKey = "userID"

// Routes builds the dev server's HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	// The real deployment serves a browser client.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})

	r.Post("/auth/login", s.handleLogin)
	r.Post("/auth/signup", s.handleSignup)
	r.Post("/auth/otp/request", s.handleOTPRequest)
	r.Post("/auth/otp/reset", s.handleOTPReset)

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Post("/account", s.handleCreateAccount)
		r.Get("/account", s.handleGetAccount)
		r.Post("/transaction", s.handleCreateTransaction)
		r.Get("/transaction", s.handleListTransactions)
	})

	return r
}

// authMiddleware validates the bearer token and stores the user id in the
// request context. Every failure is a 401: that status is the one signal the
// client treats as credential rejection.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, http.StatusUnauthorized, "Authorization header required")
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			writeError(w, http.StatusUnauthorized, "Invalid Authorization header format")
			return
		}

		userID, err := s.verifyToken(tokenString)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userIDFrom(ctx context.Context) int64 {
	id, _ := ctx.Value(userIDKey).(int64)
	return id
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := s.authenticate(req.Email, req.Password)
	if err != nil {
		writeError(w, http.StatusBadRequest, errBadCredentials.Error())
		return
	}
	token, err := s.issueToken(user.ID, time.Now())
	if err != nil {
		s.logger.Error("token issue failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Unable to issue token")
		return
	}

	writeJSON(w, http.StatusOK, domain.LoginResponse{Token: token, User: user})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req domain.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" || req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name, email and password are required")
		return
	}

	user, err := s.registerUser(req)
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) handleOTPRequest(w http.ResponseWriter, r *http.Request) {
	var req domain.OTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	code, err := s.generateOTP(req.Email)
	if err != nil {
		// Do not reveal whether the email exists.
		w.WriteHeader(http.StatusOK)
		return
	}
	// A real deployment mails the code; the dev server logs it instead.
	s.logger.Info("issued password-reset otp", "email", req.Email, "otp", code)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleOTPReset(w http.ResponseWriter, r *http.Request) {
	var req domain.PasswordResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := s.resetPassword(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req domain.AccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.PIN == "" || req.Branch == "" {
		writeError(w, http.StatusBadRequest, "Account type, branch and PIN are required")
		return
	}

	account, err := s.createAccount(userIDFrom(r.Context()), req)
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	account, ok := s.accountFor(userIDFrom(r.Context()))
	if !ok {
		// Absent account is an empty result, not an error.
		w.WriteHeader(http.StatusOK)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req domain.TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tx, err := s.applyTransaction(userIDFrom(r.Context()), req)
	if err != nil {
		switch {
		case errors.Is(err, errBadPIN):
			writeError(w, http.StatusForbidden, err.Error())
		case errors.Is(err, errUnknownAccount):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.listTransactions(userIDFrom(r.Context())))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
