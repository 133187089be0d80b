// Package shared holds error values common to the ledger subpackages.
package shared

import "errors"

var (
	// ErrUnbalanced indicates debit != credit on a voucher submission.
	ErrUnbalanced = errors.New("ledger: voucher lines must balance")
	// ErrTooFewLines indicates fewer than two lines.
	ErrTooFewLines = errors.New("ledger: voucher requires at least two lines")
	// ErrZeroTotal indicates a voucher with no monetary effect.
	ErrZeroTotal = errors.New("ledger: voucher total must be nonzero")
	// ErrValidation indicates malformed or missing input.
	ErrValidation = errors.New("ledger: validation failed")
	// ErrAccountNotFound indicates a missing account.
	ErrAccountNotFound = errors.New("ledger: account not found")
	// ErrTransactionNotFound indicates a missing transaction.
	ErrTransactionNotFound = errors.New("ledger: transaction not found")
	// ErrAlreadyReversed indicates the transaction was reversed before.
	ErrAlreadyReversed = errors.New("ledger: transaction already reversed")
	// ErrInvalidStatus indicates a state transition that is not allowed.
	ErrInvalidStatus = errors.New("ledger: invalid status transition")
	// ErrPeriodLocked indicates the transaction date falls in a locked period.
	ErrPeriodLocked = errors.New("ledger: period locked")
	// ErrSourceConflict indicates the source document was already posted.
	ErrSourceConflict = errors.New("ledger: source already posted")
	// ErrSystemAccount indicates an attempt to delete a protected account.
	ErrSystemAccount = errors.New("ledger: system account cannot be deleted")
	// ErrAccountInUse indicates the account has posted entries.
	ErrAccountInUse = errors.New("ledger: account has posted entries")
	// ErrDuplicateCode indicates the account code exists for the company.
	ErrDuplicateCode = errors.New("ledger: account code already exists")
)
