package reports

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-ledger/internal/ledger"
)

// BalanceSheetRow is one account's as-of balance in its natural sign.
type BalanceSheetRow struct {
	Code   string
	Name   string
	Amount decimal.Decimal
}

type BalanceSheetSection struct {
	Label string
	Rows  []BalanceSheetRow
	Total decimal.Decimal
}

// BalanceSheet is the as-of statement of financial position. Retained
// earnings is derived, never stored: it is the cumulative net income
// (all revenue less all expense) through the as-of date, surfaced as a
// synthetic equity line so Assets = Liabilities + Equity holds.
type BalanceSheet struct {
	Assets      BalanceSheetSection
	Liabilities BalanceSheetSection
	Equity      BalanceSheetSection
}

func (b BalanceSheet) IsBalanced() bool {
	diff := b.Assets.Total.Sub(b.Liabilities.Total).Sub(b.Equity.Total).Abs()
	return diff.LessThan(ledger.Tolerance)
}

// BuildBalanceSheet classifies cumulative as-of rows into the three
// sections. Input rows must be cumulative sums from the beginning of
// the ledger through the as-of date.
func BuildBalanceSheet(rows []Row) BalanceSheet {
	assets := BalanceSheetSection{Label: "Assets", Total: decimal.Zero}
	liabilities := BalanceSheetSection{Label: "Liabilities", Total: decimal.Zero}
	equity := BalanceSheetSection{Label: "Equity", Total: decimal.Zero}
	retained := decimal.Zero

	for _, r := range rows {
		amount := r.Balance()
		switch r.Type {
		case ledger.AccountTypeAsset:
			if amount.IsZero() {
				continue
			}
			assets.Rows = append(assets.Rows, BalanceSheetRow{Code: r.Code, Name: r.Name, Amount: amount})
			assets.Total = assets.Total.Add(amount)
		case ledger.AccountTypeLiability:
			if amount.IsZero() {
				continue
			}
			liabilities.Rows = append(liabilities.Rows, BalanceSheetRow{Code: r.Code, Name: r.Name, Amount: amount})
			liabilities.Total = liabilities.Total.Add(amount)
		case ledger.AccountTypeEquity:
			if amount.IsZero() {
				continue
			}
			equity.Rows = append(equity.Rows, BalanceSheetRow{Code: r.Code, Name: r.Name, Amount: amount})
			equity.Total = equity.Total.Add(amount)
		case ledger.AccountTypeRevenue:
			retained = retained.Add(r.Credit.Sub(r.Debit))
		case ledger.AccountTypeExpense:
			retained = retained.Sub(r.Debit.Sub(r.Credit))
		}
	}

	sort.Slice(assets.Rows, func(i, j int) bool { return assets.Rows[i].Code < assets.Rows[j].Code })
	sort.Slice(liabilities.Rows, func(i, j int) bool { return liabilities.Rows[i].Code < liabilities.Rows[j].Code })
	sort.Slice(equity.Rows, func(i, j int) bool { return equity.Rows[i].Code < equity.Rows[j].Code })

	if !retained.IsZero() {
		equity.Rows = append(equity.Rows, BalanceSheetRow{Name: "Retained Earnings", Amount: retained})
		equity.Total = equity.Total.Add(retained)
	}

	return BalanceSheet{Assets: assets, Liabilities: liabilities, Equity: equity}
}
