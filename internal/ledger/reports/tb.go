package reports

import (
	"sort"

	"github.com/shopspring/decimal"
)

// TrialBalanceRow classifies one account into the debit or credit column.
type TrialBalanceRow struct {
	Code   string
	Name   string
	Type   string
	Debit  decimal.Decimal
	Credit decimal.Decimal
}

// TrialBalance is the full listing with column totals. TotalDebit equals
// TotalCredit for any consistent ledger; IsBalanced exposes the check.
type TrialBalance struct {
	Rows        []TrialBalanceRow
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
	IsBalanced  bool
}

// BuildTrialBalance classifies every account with a nonzero balance into
// the debit or credit column.
func BuildTrialBalance(rows []Row) TrialBalance {
	tb := TrialBalance{TotalDebit: decimal.Zero, TotalCredit: decimal.Zero}
	for _, r := range rows {
		net := r.Debit.Sub(r.Credit)
		if net.IsZero() {
			continue
		}
		row := TrialBalanceRow{Code: r.Code, Name: r.Name, Type: string(r.Type), Debit: decimal.Zero, Credit: decimal.Zero}
		if net.IsPositive() {
			row.Debit = net
			tb.TotalDebit = tb.TotalDebit.Add(net)
		} else {
			row.Credit = net.Neg()
			tb.TotalCredit = tb.TotalCredit.Add(net.Neg())
		}
		tb.Rows = append(tb.Rows, row)
	}
	sort.Slice(tb.Rows, func(i, j int) bool { return tb.Rows[i].Code < tb.Rows[j].Code })
	tb.IsBalanced = tb.TotalDebit.Equal(tb.TotalCredit)
	return tb
}
