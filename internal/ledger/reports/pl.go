package reports

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-ledger/internal/ledger"
)

// ProfitAndLossRow is one revenue or expense account's period activity.
type ProfitAndLossRow struct {
	Code   string
	Name   string
	Amount decimal.Decimal
}

// ProfitAndLossSection groups accounts by nature.
type ProfitAndLossSection struct {
	Label string
	Rows  []ProfitAndLossRow
	Total decimal.Decimal
}

// ProfitAndLoss is revenue activity minus expense activity over a window.
type ProfitAndLoss struct {
	Revenue   ProfitAndLossSection
	Expense   ProfitAndLossSection
	NetProfit decimal.Decimal
}

// BuildProfitAndLoss aggregates period-activity rows into revenue and
// expense sections. Input rows must be windowed sums, not as-of balances.
func BuildProfitAndLoss(rows []Row) ProfitAndLoss {
	revenue := ProfitAndLossSection{Label: "Revenue", Total: decimal.Zero}
	expense := ProfitAndLossSection{Label: "Expense", Total: decimal.Zero}

	for _, r := range rows {
		switch r.Type {
		case ledger.AccountTypeRevenue:
			amount := r.Credit.Sub(r.Debit)
			revenue.Rows = append(revenue.Rows, ProfitAndLossRow{Code: r.Code, Name: r.Name, Amount: amount})
			revenue.Total = revenue.Total.Add(amount)
		case ledger.AccountTypeExpense:
			amount := r.Debit.Sub(r.Credit)
			expense.Rows = append(expense.Rows, ProfitAndLossRow{Code: r.Code, Name: r.Name, Amount: amount})
			expense.Total = expense.Total.Add(amount)
		}
	}

	sort.Slice(revenue.Rows, func(i, j int) bool { return revenue.Rows[i].Code < revenue.Rows[j].Code })
	sort.Slice(expense.Rows, func(i, j int) bool { return expense.Rows[i].Code < expense.Rows[j].Code })

	return ProfitAndLoss{
		Revenue:   revenue,
		Expense:   expense,
		NetProfit: revenue.Total.Sub(expense.Total),
	}
}
