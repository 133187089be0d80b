package reports

import (
	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-ledger/internal/ledger"
)

// Row is one account with aggregated debit/credit columns over some window,
// the input to every report builder. The classification flags let the cash
// flow builder tell money, receivable and payable accounts apart without
// knowing chart codes.
type Row struct {
	AccountID  int64
	Code       string
	Name       string
	Type       ledger.AccountType
	Debit      decimal.Decimal
	Credit     decimal.Decimal
	Cash       bool
	Receivable bool
	Payable    bool
}

// Balance returns the row's balance under the sign convention for its type.
func (r Row) Balance() decimal.Decimal {
	if r.Type.DebitNature() {
		return r.Debit.Sub(r.Credit)
	}
	return r.Credit.Sub(r.Debit)
}
