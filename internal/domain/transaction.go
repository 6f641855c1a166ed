/**
 * @description
 * This file defines the transaction models exchanged with the SmartBank API.
 * Transactions are immutable once created; their status is assigned by the
 * server and only ever observed by the client.
 *
 * @notes
 * - Amounts are carried as `int64` in the smallest currency unit, which avoids
 *   floating-point inaccuracies with financial data. ParseAmount/FormatAmount
 *   in money.go convert at the user boundary.
 * - TransactionType and TransactionStatus are open string enums: the server is
 *   the authority on values, so code consuming them must carry a default arm.
 */

package domain

import "time"

// TransactionType is the operational kind of a transaction. It governs which
// fields a TransactionRequest must carry.
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal TransactionType = "WITHDRAWAL"
	TransactionTypeTransfer   TransactionType = "TRANSFER"
)

// TransactionTypes lists the known types in display order.
func TransactionTypes() []TransactionType {
	return []TransactionType{
		TransactionTypeDeposit,
		TransactionTypeWithdrawal,
		TransactionTypeTransfer,
	}
}

// TransactionStatus is the server-assigned processing state of a transaction.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// Transaction is one ledger entry as returned by GET /transaction. The server
// returns them newest-first.
type Transaction struct {
	ID                int64             `json:"id"`
	Amount            int64             `json:"amount"` // in minor units
	TransactionDate   time.Time         `json:"transactionDate"`
	TransactionType   TransactionType   `json:"transactionType"`
	TransactionStatus TransactionStatus `json:"transactionStatus"`
}

// TransactionRequest is the client-constructed payload for POST /transaction.
// It is never persisted; the PIN is a one-time credential. The target account
// is present only when the transaction type requires one.
type TransactionRequest struct {
	Amount              int64           `json:"amount"` // in minor units
	TransactionType     TransactionType `json:"transactionType"`
	PIN                 string          `json:"pin"`
	SourceAccountNumber string          `json:"sourceAccountNumber"`
	TargetAccountNumber string          `json:"targetAccountNumber,omitempty"`
}
