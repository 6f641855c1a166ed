/**
 * @description
 * Pure, deterministic derivation functions that sit between raw fetched
 * entities and the screen: filtered transaction subsets, recency-limited
 * lists, dashboard aggregates, and presentation metadata.
 *
 * Nothing here touches the network or mutates its inputs, and the
 * presentation mappings are total: server-provided enum values are not
 * compile-time guaranteed to match the client's constants, so every mapping
 * carries a default arm instead of crashing on the unknown.
 */

package views

import (
	"time"

	"github.com/smartbank/banking-client/internal/domain"
)

// Filter selects a transaction subset by type. The zero-ish value FilterAll
// passes everything through; it is UI-local state and never persisted.
type Filter string

// FilterAll matches every transaction type.
const FilterAll Filter = "ALL"

// FilterFor narrows to a single transaction type.
func FilterFor(t domain.TransactionType) Filter {
	return Filter(t)
}

// Filters lists the selectable filters in display order: ALL followed by the
// known transaction types.
func Filters() []Filter {
	fs := []Filter{FilterAll}
	for _, t := range domain.TransactionTypes() {
		fs = append(fs, FilterFor(t))
	}
	return fs
}

// FilterByType returns all transactions when the filter is ALL, else the
// exact-match subset by type. Input order is preserved; the canonical order is
// whatever the server provided (newest first).
func FilterByType(transactions []domain.Transaction, f Filter) []domain.Transaction {
	if f == FilterAll {
		return transactions
	}
	var out []domain.Transaction
	for _, tx := range transactions {
		if Filter(tx.TransactionType) == f {
			out = append(out, tx)
		}
	}
	return out
}

// RecentN returns the first n elements in the given order. It is a prefix
// take, not a re-sort: the server already orders newest first.
func RecentN(transactions []domain.Transaction, n int) []domain.Transaction {
	if n < 0 {
		n = 0
	}
	if n > len(transactions) {
		n = len(transactions)
	}
	return transactions[:n]
}

// StatusClass is a presentation class key for a transaction status.
type StatusClass string

const (
	StatusClassCompleted StatusClass = "completed"
	StatusClassPending   StatusClass = "pending"
	StatusClassFailed    StatusClass = "failed"
	StatusClassNeutral   StatusClass = "neutral"
)

// StatusPresentation maps a status to its class key. Unknown statuses map to
// the neutral class.
func StatusPresentation(status domain.TransactionStatus) StatusClass {
	switch status {
	case domain.TransactionStatusCompleted:
		return StatusClassCompleted
	case domain.TransactionStatusPending:
		return StatusClassPending
	case domain.TransactionStatusFailed:
		return StatusClassFailed
	default:
		return StatusClassNeutral
	}
}

// Sign is the displayed direction of a transaction amount.
type Sign int

const (
	// SignNeutral renders with no prefix; a TRANSFER is directionless at this
	// client.
	SignNeutral Sign = iota
	// SignCredit renders with a leading "+".
	SignCredit
	// SignDebit renders with a leading "-".
	SignDebit
)

func (s Sign) String() string {
	switch s {
	case SignCredit:
		return "+"
	case SignDebit:
		return "-"
	default:
		return ""
	}
}

// TypePresentation is the icon key and amount sign for a transaction type.
type TypePresentation struct {
	Icon string
	Sign Sign
}

// PresentType maps a transaction type to its presentation. The displayed sign
// is a pure function of the type: DEPOSIT credit, WITHDRAWAL debit, TRANSFER
// neutral. Unknown types get a neutral presentation rather than an error.
func PresentType(t domain.TransactionType) TypePresentation {
	switch t {
	case domain.TransactionTypeDeposit:
		return TypePresentation{Icon: "arrow-up", Sign: SignCredit}
	case domain.TransactionTypeWithdrawal:
		return TypePresentation{Icon: "arrow-down", Sign: SignDebit}
	case domain.TransactionTypeTransfer:
		return TypePresentation{Icon: "trending-up", Sign: SignNeutral}
	default:
		return TypePresentation{Icon: "circle", Sign: SignNeutral}
	}
}

// Summary is the dashboard aggregate over the account and transaction list.
type Summary struct {
	TotalBalance int64 // in minor units; zero when no account exists
	Count        int
	PendingCount int
}

// Aggregate folds the fetched entities into the dashboard summary.
func Aggregate(account *domain.Account, transactions []domain.Transaction) Summary {
	s := Summary{Count: len(transactions)}
	if account != nil {
		s.TotalBalance = account.Balance
	}
	for _, tx := range transactions {
		if tx.TransactionStatus == domain.TransactionStatusPending {
			s.PendingCount++
		}
	}
	return s
}

// FormatDate renders a transaction timestamp for list display.
func FormatDate(t time.Time) string {
	return t.Format("Jan 2, 2006 15:04")
}
