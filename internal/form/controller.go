/**
 * @description
 * This package contains the transaction-creation form model. The set of
 * required fields and the validation rules change with the selected
 * transaction type, driven by a per-type rule table rather than scattered
 * conditionals.
 *
 * Validation is resolved entirely client-side before any network attempt; the
 * backend stays authoritative only over business-rule rejections (insufficient
 * funds, unknown target account) that the client does not try to predict.
 *
 * @notes
 * - The target-account field is collected (and required) for DEPOSIT as well
 *   as TRANSFER, but the built request carries it only for TRANSFER. This
 *   mirrors the deployed form's behavior exactly, asymmetry included;
 *   changing it client-side would silently change what the server receives.
 */

package form

import (
	"fmt"
	"strings"

	"github.com/smartbank/banking-client/internal/domain"
)

// ErrorKind classifies a validation failure.
type ErrorKind int

const (
	// MissingField means the pin, amount, or source account is empty, or a
	// required target account is absent.
	MissingField ErrorKind = iota
	// NonPositiveAmount means the amount did not parse to a value > 0.
	NonPositiveAmount
	// IdenticalAccounts means a TRANSFER names the same source and target.
	IdenticalAccounts
)

// ValidationError is a client-local rejection of the form draft. It blocks
// submission and never reaches the network.
type ValidationError struct {
	Kind  ErrorKind
	Field string
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case NonPositiveAmount:
		return "amount must be greater than zero"
	case IdenticalAccounts:
		return "source and target accounts must be different"
	default:
		if e.Field != "" {
			return fmt.Sprintf("missing required field: %s", e.Field)
		}
		return "please fill in all required fields"
	}
}

// fieldRules captures what a transaction type demands of the form.
type fieldRules struct {
	// needsTargetInput requires a non-empty target-account field.
	needsTargetInput bool
	// sendsTarget attaches the target account to the built request.
	sendsTarget bool
	// distinctAccounts rejects source == target.
	distinctAccounts bool
}

// rulesByType is the per-type configuration. The DEPOSIT row collects a target
// account without sending one; see the package note.
var rulesByType = map[domain.TransactionType]fieldRules{
	domain.TransactionTypeDeposit:    {needsTargetInput: true},
	domain.TransactionTypeWithdrawal: {},
	domain.TransactionTypeTransfer:   {needsTargetInput: true, sendsTarget: true, distinctAccounts: true},
}

// Draft is the raw, user-entered state of the form. Amount stays a string
// until validation so partial input never crashes the model.
type Draft struct {
	Type          domain.TransactionType
	Amount        string
	SourceAccount string
	TargetAccount string
	PIN           string
}

// Controller owns the form draft across edits.
type Controller struct {
	draft         Draft
	accountNumber string
}

// NewController creates a form controller with DEPOSIT preselected, matching
// the form's initial state.
func NewController() *Controller {
	return &Controller{
		draft: Draft{Type: domain.TransactionTypeDeposit},
	}
}

// Draft returns a copy of the current draft.
func (c *Controller) Draft() Draft {
	return c.draft
}

// SetAccount records the user's own account once account data is available.
// The source-account field is auto-populated from it; the model does not
// forbid a later override.
func (c *Controller) SetAccount(account *domain.Account) {
	if account == nil {
		return
	}
	c.accountNumber = account.AccountNumber
	if c.draft.SourceAccount == "" {
		c.draft.SourceAccount = account.AccountNumber
	}
}

// SetType selects the transaction type. Moving away from TRANSFER clears any
// entered target account so a stale value cannot ride along on a later
// submission.
func (c *Controller) SetType(t domain.TransactionType) {
	c.draft.Type = t
	if t != domain.TransactionTypeTransfer {
		c.draft.TargetAccount = ""
	}
}

// SetAmount records the raw amount input.
func (c *Controller) SetAmount(s string) { c.draft.Amount = s }

// SetSourceAccount overrides the auto-populated source account.
func (c *Controller) SetSourceAccount(s string) { c.draft.SourceAccount = s }

// SetTargetAccount records the target account input.
func (c *Controller) SetTargetAccount(s string) { c.draft.TargetAccount = s }

// SetPIN records the one-time transaction pin.
func (c *Controller) SetPIN(s string) { c.draft.PIN = s }

// Reset returns the form to its initial state, re-seeding the source account
// from the known account. The pin is always dropped.
func (c *Controller) Reset() {
	c.draft = Draft{
		Type:          domain.TransactionTypeDeposit,
		SourceAccount: c.accountNumber,
	}
}

// Validate checks the draft against the rules for its type and builds the
// request to submit. The returned request carries the target account only
// when the type requires one on the wire.
func (c *Controller) Validate() (domain.TransactionRequest, error) {
	return ValidateDraft(c.draft)
}

// ValidateDraft is the pure form of Validate, usable without a controller.
func ValidateDraft(d Draft) (domain.TransactionRequest, error) {
	rules, ok := rulesByType[d.Type]
	if !ok {
		return domain.TransactionRequest{}, &ValidationError{Kind: MissingField, Field: "transactionType"}
	}

	pin := strings.TrimSpace(d.PIN)
	source := strings.TrimSpace(d.SourceAccount)
	target := strings.TrimSpace(d.TargetAccount)

	if pin == "" {
		return domain.TransactionRequest{}, &ValidationError{Kind: MissingField, Field: "pin"}
	}
	if source == "" {
		return domain.TransactionRequest{}, &ValidationError{Kind: MissingField, Field: "sourceAccount"}
	}
	if strings.TrimSpace(d.Amount) == "" {
		return domain.TransactionRequest{}, &ValidationError{Kind: MissingField, Field: "amount"}
	}
	if rules.needsTargetInput && target == "" {
		return domain.TransactionRequest{}, &ValidationError{Kind: MissingField, Field: "targetAccount"}
	}

	amount, err := domain.ParseAmount(d.Amount)
	if err != nil || amount <= 0 {
		return domain.TransactionRequest{}, &ValidationError{Kind: NonPositiveAmount, Field: "amount"}
	}

	if rules.distinctAccounts && source == target {
		return domain.TransactionRequest{}, &ValidationError{Kind: IdenticalAccounts}
	}

	req := domain.TransactionRequest{
		Amount:              amount,
		TransactionType:     d.Type,
		PIN:                 pin,
		SourceAccountNumber: source,
	}
	if rules.sendsTarget {
		req.TargetAccountNumber = target
	}
	return req, nil
}
