package journals

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-ledger/internal/ledger"
	"github.com/meridian-erp/meridian-ledger/internal/ledger/shared"
)

// LineInput describes one leg of a voucher submission.
type LineInput struct {
	AccountID    int64
	Debit        decimal.Decimal
	Credit       decimal.Decimal
	Description  string
	PartyID      *int64
	PartyType    *ledger.PartyType
	CostCenterID *int64
}

// VoucherInput groups the fields required to create a transaction.
// The zero value of Draft posts immediately, which is the default for
// document-driven postings.
type VoucherInput struct {
	CompanyID     int64
	VoucherType   ledger.VoucherType
	Date          time.Time
	Description   string
	ReferenceType string
	ReferenceID   *uuid.UUID
	Draft         bool
	ActorID       int64
	Lines         []LineInput
}

// Validate checks the structural posting contract: a known voucher type,
// at least two lines, each line a strict debit xor credit, and column
// totals that balance within one minor unit after rounding.
func (in VoucherInput) Validate() error {
	if in.CompanyID == 0 {
		return fmt.Errorf("%w: company required", shared.ErrValidation)
	}
	if !in.VoucherType.Valid() {
		return fmt.Errorf("%w: unknown voucher type %q", shared.ErrValidation, in.VoucherType)
	}
	if in.Date.IsZero() {
		return fmt.Errorf("%w: transaction date required", shared.ErrValidation)
	}
	if len(in.Lines) < 2 {
		return shared.ErrTooFewLines
	}
	debit, credit := decimal.Zero, decimal.Zero
	for idx, line := range in.Lines {
		if line.AccountID == 0 {
			return fmt.Errorf("%w: line %d missing account", shared.ErrValidation, idx)
		}
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			return fmt.Errorf("%w: line %d negative amount", shared.ErrValidation, idx)
		}
		if line.Debit.IsPositive() && line.Credit.IsPositive() {
			return fmt.Errorf("%w: line %d cannot be both debit and credit", shared.ErrValidation, idx)
		}
		debit = debit.Add(ledger.Round2(line.Debit))
		credit = credit.Add(ledger.Round2(line.Credit))
	}
	if !ledger.Balanced(debit, credit) {
		return shared.ErrUnbalanced
	}
	if debit.IsZero() && credit.IsZero() {
		return shared.ErrZeroTotal
	}
	return nil
}

// Totals returns the rounded debit and credit column totals.
func (in VoucherInput) Totals() (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, line := range in.Lines {
		debit = debit.Add(ledger.Round2(line.Debit))
		credit = credit.Add(ledger.Round2(line.Credit))
	}
	return debit, credit
}
