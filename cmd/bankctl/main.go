/**
 * @description
 * This is the main entry point for bankctl, the terminal client for the
 * SmartBank API. It wires configuration, the persisted session, the API
 * client, and the orchestration service together, then dispatches the
 * requested command.
 *
 * The session manager is initialized before any command runs, so commands
 * never observe the Initializing state. A 401 from any endpoint forces logout
 * through the client's unauthorized hook regardless of which command was
 * running.
 *
 * @dependencies
 * - flag, fmt, log/slog, os: Standard Go libraries.
 * - github.com/joho/godotenv: Optional .env loading.
 * - internal packages and pkg/bankclient for the actual behavior.
 */

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/smartbank/banking-client/internal/app"
	"github.com/smartbank/banking-client/internal/config"
	"github.com/smartbank/banking-client/internal/domain"
	"github.com/smartbank/banking-client/internal/form"
	"github.com/smartbank/banking-client/internal/session"
	"github.com/smartbank/banking-client/internal/views"
	"github.com/smartbank/banking-client/pkg/bankclient"
)

const usage = `Usage: bankctl <command> [flags]

Commands:
  signup         Register a new user
  login          Log in and persist the session
  logout         Log out and clear the session
  status         Show the current session state
  open-account   Open your bank account
  dashboard      Show the account summary and recent transactions
  transactions   List transactions, optionally filtered by type
  transact       Create a new transaction
  reset-request  Request a password-reset OTP
  reset          Reset the password with a received OTP
`

// terminalNotifier prints user-visible outcomes to stdout.
type terminalNotifier struct{}

func (terminalNotifier) Success(msg string) { fmt.Println(msg) }
func (terminalNotifier) Failure(msg string) { fmt.Println("Error:", msg) }

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	// A .env file is optional.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	notifier := terminalNotifier{}

	store := session.NewStore(cfg.SessionFile)
	manager := session.NewManager(store, notifier, logger)
	manager.OnForcedLogout(func() {
		fmt.Println("Your session has expired. Please log in again.")
	})
	// Restore before anything consults the session.
	manager.Initialize()

	client := bankclient.NewClient(cfg.APIBaseURL, manager,
		bankclient.WithTimeout(time.Duration(cfg.HTTPTimeoutSeconds)*time.Second),
		bankclient.WithUnauthorizedHook(manager.Invalidate),
	)
	service := app.NewService(client, notifier, logger)

	ctx := context.Background()
	command, args := os.Args[1], os.Args[2:]

	var cmdErr error
	switch command {
	case "signup":
		cmdErr = runSignup(ctx, client, args)
	case "login":
		cmdErr = runLogin(ctx, client, manager, args)
	case "logout":
		manager.Logout()
	case "status":
		runStatus(manager)
	case "open-account":
		cmdErr = runOpenAccount(ctx, client, manager, args)
	case "dashboard":
		cmdErr = runDashboard(ctx, service, manager)
	case "transactions":
		cmdErr = runTransactions(ctx, service, manager, args)
	case "transact":
		cmdErr = runTransact(ctx, service, manager, args)
	case "reset-request":
		cmdErr = runResetRequest(ctx, client, args)
	case "reset":
		cmdErr = runReset(ctx, client, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if cmdErr != nil {
		os.Exit(1)
	}
}

func requireAuth(m *session.Manager) error {
	if !m.IsAuthenticated() {
		fmt.Println("You are not logged in. Run: bankctl login")
		return fmt.Errorf("not authenticated")
	}
	return nil
}

func runSignup(ctx context.Context, client *bankclient.Client, args []string) error {
	fs := flag.NewFlagSet("signup", flag.ExitOnError)
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	country := fs.String("country", "", "country calling code")
	phone := fs.String("phone", "", "phone number")
	address := fs.String("address", "", "postal address")
	fs.Parse(args)

	user, err := client.Signup(ctx, domain.SignupRequest{
		Name:        *name,
		Email:       *email,
		Password:    *password,
		CountryCode: *country,
		PhoneNumber: *phone,
		Address:     *address,
	})
	if err != nil {
		fmt.Println("Error:", bankclient.UserMessage(err, "Registration failed"))
		return err
	}
	fmt.Printf("Registered %s. You can now log in.\n", user.Email)
	return nil
}

func runLogin(ctx context.Context, client *bankclient.Client, m *session.Manager, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	fs.Parse(args)

	resp, err := client.Login(ctx, domain.LoginRequest{Email: *email, Password: *password})
	if err != nil {
		fmt.Println("Error:", bankclient.UserMessage(err, "Login failed"))
		return err
	}
	return m.Login(resp.Token, resp.User)
}

func runStatus(m *session.Manager) {
	if user, ok := m.CurrentUser(); ok {
		fmt.Printf("Logged in as %s <%s>\n", user.Name, user.Email)
		return
	}
	fmt.Println("Not logged in.")
}

func runOpenAccount(ctx context.Context, client *bankclient.Client, m *session.Manager, args []string) error {
	if err := requireAuth(m); err != nil {
		return err
	}

	fs := flag.NewFlagSet("open-account", flag.ExitOnError)
	accType := fs.String("type", string(domain.AccountTypeSavings), "account type (SAVINGS, CURRENT, LOAN, CREDIT)")
	branch := fs.String("branch", "", "branch name")
	pin := fs.String("pin", "", "transaction PIN for the new account")
	fs.Parse(args)

	account, err := client.CreateAccount(ctx, domain.AccountRequest{
		AccountType: domain.AccountType(*accType),
		Branch:      *branch,
		PIN:         *pin,
	})
	if err != nil {
		fmt.Println("Error:", bankclient.UserMessage(err, "Failed to open account"))
		return err
	}
	fmt.Printf("Account %s opened at %s.\n", account.AccountNumber, account.Branch)
	return nil
}

func runDashboard(ctx context.Context, service *app.Service, m *session.Manager) error {
	if err := requireAuth(m); err != nil {
		return err
	}
	if err := service.LoadDashboard(ctx); err != nil {
		return err
	}

	if user, ok := m.CurrentUser(); ok {
		fmt.Printf("Welcome back, %s!\n\n", user.Name)
	}

	summary := service.Summary()
	fmt.Printf("Total Balance:       %s\n", domain.FormatAmount(summary.TotalBalance))
	fmt.Printf("Transactions:        %d\n", summary.Count)
	fmt.Printf("Pending:             %d\n\n", summary.PendingCount)

	if account := service.Account(); account != nil {
		fmt.Printf("Your Account: %s %s (branch %s)\n\n", account.AccountNumber, account.AccountType, account.Branch)
	} else {
		fmt.Println("No account found. Run: bankctl open-account")
	}

	recent := views.RecentN(service.Transactions(), 5)
	if len(recent) == 0 {
		fmt.Println("No transactions found.")
		return nil
	}
	fmt.Println("Recent Transactions:")
	printTransactions(recent)
	return nil
}

func runTransactions(ctx context.Context, service *app.Service, m *session.Manager, args []string) error {
	if err := requireAuth(m); err != nil {
		return err
	}

	fs := flag.NewFlagSet("transactions", flag.ExitOnError)
	filter := fs.String("filter", string(views.FilterAll), "ALL, DEPOSIT, WITHDRAWAL or TRANSFER")
	fs.Parse(args)

	if err := service.LoadTransactions(ctx); err != nil {
		return err
	}

	txs := service.Filtered(views.Filter(*filter))
	if len(txs) == 0 {
		fmt.Println("No transactions found.")
		return nil
	}
	fmt.Printf("Transaction History (%d)\n", len(txs))
	printTransactions(txs)
	return nil
}

func runTransact(ctx context.Context, service *app.Service, m *session.Manager, args []string) error {
	if err := requireAuth(m); err != nil {
		return err
	}

	fs := flag.NewFlagSet("transact", flag.ExitOnError)
	txType := fs.String("type", string(domain.TransactionTypeDeposit), "DEPOSIT, WITHDRAWAL or TRANSFER")
	amount := fs.String("amount", "", "amount, e.g. 150.00")
	source := fs.String("source", "", "source account number (defaults to your account)")
	target := fs.String("target", "", "target account number")
	pin := fs.String("pin", "", "transaction PIN")
	fs.Parse(args)

	// Fetch first so the form can default the source account to the user's own.
	if err := service.Refresh(ctx); err != nil {
		fmt.Println("Error: Failed to fetch data")
		return err
	}

	fc := form.NewController()
	fc.SetAccount(service.Account())
	fc.SetType(domain.TransactionType(*txType))
	fc.SetAmount(*amount)
	if *source != "" {
		fc.SetSourceAccount(*source)
	}
	if *target != "" {
		fc.SetTargetAccount(*target)
	}
	fc.SetPIN(*pin)

	tx, err := service.SubmitTransaction(ctx, fc)
	if err != nil {
		return err
	}
	fmt.Printf("Transaction %d is %s.\n", tx.ID, tx.TransactionStatus)
	return nil
}

func runResetRequest(ctx context.Context, client *bankclient.Client, args []string) error {
	fs := flag.NewFlagSet("reset-request", flag.ExitOnError)
	email := fs.String("email", "", "email address")
	fs.Parse(args)

	if err := client.RequestOTP(ctx, domain.OTPRequest{Email: *email}); err != nil {
		fmt.Println("Error:", bankclient.UserMessage(err, "Failed to request reset code"))
		return err
	}
	fmt.Println("If the email is registered, a reset code has been sent.")
	return nil
}

func runReset(ctx context.Context, client *bankclient.Client, args []string) error {
	fs := flag.NewFlagSet("reset", flag.ExitOnError)
	email := fs.String("email", "", "email address")
	otp := fs.String("otp", "", "one-time code")
	password := fs.String("password", "", "new password")
	fs.Parse(args)

	if err := client.ResetPassword(ctx, domain.PasswordResetRequest{
		Email:       *email,
		OTP:         *otp,
		NewPassword: *password,
	}); err != nil {
		fmt.Println("Error:", bankclient.UserMessage(err, "Failed to reset password"))
		return err
	}
	fmt.Println("Password updated. You can now log in.")
	return nil
}

func printTransactions(txs []domain.Transaction) {
	for _, tx := range txs {
		p := views.PresentType(tx.TransactionType)
		fmt.Printf("  %-12s %s%s  %s  [%s]\n",
			tx.TransactionType,
			p.Sign,
			domain.FormatAmount(tx.Amount),
			views.FormatDate(tx.TransactionDate),
			views.StatusPresentation(tx.TransactionStatus),
		)
	}
}
