package reports

import (
	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-ledger/internal/ledger"
)

// CashFlow is an indirect-method cash flow statement derived entirely
// from ledger movements over the window. Because every transaction is
// balanced, Operating + Investing + Financing always equals the change
// in cash balances for the same window.
type CashFlow struct {
	NetIncome decimal.Decimal

	ReceivableChange decimal.Decimal
	PayableChange    decimal.Decimal
	Operating        decimal.Decimal

	Investing decimal.Decimal
	Financing decimal.Decimal

	OpeningCash decimal.Decimal
	ClosingCash decimal.Decimal
	NetChange   decimal.Decimal
}

// BuildCashFlow derives the statement from two row sets: opening rows
// are cumulative sums strictly before the window, period rows are the
// window's activity. Rows carry Cash/Receivable/Payable classification
// so the builder stays ignorant of chart codes.
func BuildCashFlow(opening, period []Row) CashFlow {
	var cf CashFlow

	openingCash := decimal.Zero
	for _, r := range opening {
		if r.Cash {
			openingCash = openingCash.Add(r.Balance())
		}
	}

	cashDelta := decimal.Zero
	arDelta := decimal.Zero
	apDelta := decimal.Zero
	otherAssetDelta := decimal.Zero
	otherLiabilityDelta := decimal.Zero
	equityDelta := decimal.Zero

	for _, r := range period {
		switch {
		case r.Cash:
			cashDelta = cashDelta.Add(r.Balance())
		case r.Receivable:
			arDelta = arDelta.Add(r.Balance())
		case r.Payable:
			apDelta = apDelta.Add(r.Balance())
		default:
			switch r.Type {
			case ledger.AccountTypeAsset:
				otherAssetDelta = otherAssetDelta.Add(r.Balance())
			case ledger.AccountTypeLiability:
				otherLiabilityDelta = otherLiabilityDelta.Add(r.Balance())
			case ledger.AccountTypeEquity:
				equityDelta = equityDelta.Add(r.Balance())
			case ledger.AccountTypeRevenue:
				cf.NetIncome = cf.NetIncome.Add(r.Credit.Sub(r.Debit))
			case ledger.AccountTypeExpense:
				cf.NetIncome = cf.NetIncome.Sub(r.Debit.Sub(r.Credit))
			}
		}
	}

	cf.ReceivableChange = arDelta
	cf.PayableChange = apDelta
	cf.Operating = cf.NetIncome.Sub(arDelta).Add(apDelta)
	cf.Investing = otherAssetDelta.Neg()
	cf.Financing = otherLiabilityDelta.Add(equityDelta)

	cf.OpeningCash = openingCash
	cf.NetChange = cf.Operating.Add(cf.Investing).Add(cf.Financing)
	cf.ClosingCash = openingCash.Add(cashDelta)

	return cf
}
