package domain

// AccountType is the server-side classification of an account.
type AccountType string

const (
	AccountTypeSavings AccountType = "SAVINGS"
	AccountTypeCurrent AccountType = "CURRENT"
	AccountTypeLoan    AccountType = "LOAN"
	AccountTypeCredit  AccountType = "CREDIT"
)

// Account is the user's bank account as returned by GET /account. The client
// model assumes at most one account per user. AccountNumber is the user-facing
// identifier and is distinct from the internal ID.
type Account struct {
	ID            int64       `json:"id"`
	AccountNumber string      `json:"accountNumber"`
	AccountType   AccountType `json:"accountType"`
	Balance       int64       `json:"balance"` // in minor units
	Branch        string      `json:"branch"`
	UserID        int64       `json:"userId"`
}

// AccountRequest is the payload for POST /account. The pin establishes the
// account's transaction-authorization secret.
type AccountRequest struct {
	AccountType AccountType `json:"accountType"`
	Branch      string      `json:"branch"`
	PIN         string      `json:"pin"`
}
