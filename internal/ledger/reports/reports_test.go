package reports

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/meridian-erp/meridian-ledger/internal/ledger"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Rows mimicking a sales invoice of 11800 (10000 + 18% GST) collected in
// part: Dr AR 11800 / Cr Sales 10000, CGST 900, SGST 900, then a receipt
// Dr Cash 5000 / Cr AR 5000.
func sampleRows() []Row {
	return []Row{
		{AccountID: 1, Code: "1000", Name: "Cash", Type: ledger.AccountTypeAsset, Debit: dec("5000"), Credit: decimal.Zero, Cash: true},
		{AccountID: 2, Code: "1100", Name: "Accounts Receivable", Type: ledger.AccountTypeAsset, Debit: dec("11800"), Credit: dec("5000"), Receivable: true},
		{AccountID: 3, Code: "2310", Name: "Output CGST", Type: ledger.AccountTypeLiability, Debit: decimal.Zero, Credit: dec("900")},
		{AccountID: 4, Code: "2320", Name: "Output SGST", Type: ledger.AccountTypeLiability, Debit: decimal.Zero, Credit: dec("900")},
		{AccountID: 5, Code: "4100", Name: "Sales", Type: ledger.AccountTypeRevenue, Debit: decimal.Zero, Credit: dec("10000")},
	}
}

func TestBuildTrialBalanceBalances(t *testing.T) {
	tb := BuildTrialBalance(sampleRows())

	require.True(t, tb.IsBalanced)
	require.True(t, tb.TotalDebit.Equal(dec("11800")))
	require.True(t, tb.TotalCredit.Equal(dec("11800")))
	require.Len(t, tb.Rows, 5)
	require.Equal(t, "1000", tb.Rows[0].Code)
	require.True(t, tb.Rows[0].Debit.Equal(dec("5000")))
	require.True(t, tb.Rows[4].Credit.Equal(dec("10000")))
}

func TestBuildTrialBalanceSkipsZeroNet(t *testing.T) {
	rows := []Row{
		{Code: "1200", Name: "Inventory", Type: ledger.AccountTypeAsset, Debit: dec("300"), Credit: dec("300")},
	}
	tb := BuildTrialBalance(rows)
	require.Empty(t, tb.Rows)
	require.True(t, tb.IsBalanced)
}

func TestBuildProfitAndLoss(t *testing.T) {
	rows := []Row{
		{Code: "4100", Name: "Sales", Type: ledger.AccountTypeRevenue, Debit: dec("200"), Credit: dec("10200")},
		{Code: "5100", Name: "Purchases", Type: ledger.AccountTypeExpense, Debit: dec("4000"), Credit: decimal.Zero},
		{Code: "1000", Name: "Cash", Type: ledger.AccountTypeAsset, Debit: dec("6000"), Credit: decimal.Zero},
	}
	pl := BuildProfitAndLoss(rows)

	require.True(t, pl.Revenue.Total.Equal(dec("10000")))
	require.True(t, pl.Expense.Total.Equal(dec("4000")))
	require.True(t, pl.NetProfit.Equal(dec("6000")))
	require.Len(t, pl.Revenue.Rows, 1)
	require.Len(t, pl.Expense.Rows, 1)
}

func TestBuildBalanceSheetIdentity(t *testing.T) {
	bs := BuildBalanceSheet(sampleRows())

	// Assets: cash 5000 + AR 6800 = 11800.
	require.True(t, bs.Assets.Total.Equal(dec("11800")))
	// Liabilities: output GST 1800. Equity: retained earnings 10000.
	require.True(t, bs.Liabilities.Total.Equal(dec("1800")))
	require.True(t, bs.Equity.Total.Equal(dec("10000")))
	require.True(t, bs.IsBalanced())

	last := bs.Equity.Rows[len(bs.Equity.Rows)-1]
	require.Equal(t, "Retained Earnings", last.Name)
	require.True(t, last.Amount.Equal(dec("10000")))
}

func TestBuildCashFlowIdentity(t *testing.T) {
	opening := []Row{
		{Code: "1000", Name: "Cash", Type: ledger.AccountTypeAsset, Debit: dec("2000"), Credit: decimal.Zero, Cash: true},
		{Code: "3100", Name: "Retained Earnings", Type: ledger.AccountTypeEquity, Debit: decimal.Zero, Credit: dec("2000")},
	}
	cf := BuildCashFlow(opening, sampleRows())

	require.True(t, cf.NetIncome.Equal(dec("10000")))
	// AR rose 6800, AP unchanged: operating = 10000 - 6800 = 3200.
	require.True(t, cf.Operating.Equal(dec("3200")))
	require.True(t, cf.Investing.IsZero())
	// Output GST owed counts as financing under the liability bucket.
	require.True(t, cf.Financing.Equal(dec("1800")))

	require.True(t, cf.OpeningCash.Equal(dec("2000")))
	require.True(t, cf.NetChange.Equal(dec("5000")))
	require.True(t, cf.ClosingCash.Equal(dec("7000")))
	require.True(t, cf.OpeningCash.Add(cf.NetChange).Equal(cf.ClosingCash))
}

func TestBuildDayBookTotals(t *testing.T) {
	// Party IDs ride entry lines the same way transaction_entries stores
	// them, so the AR leg of an invoice carries its customer through.
	customer := int64(42)
	entries := []DayBookEntry{
		{TransactionID: 1, Number: "SAL-000001", AccountCode: "1100", PartyID: &customer, Debit: dec("11800"), Credit: decimal.Zero},
		{TransactionID: 1, Number: "SAL-000001", AccountCode: "4100", Debit: decimal.Zero, Credit: dec("10000")},
		{TransactionID: 1, Number: "SAL-000001", AccountCode: "2310", Debit: decimal.Zero, Credit: dec("900")},
		{TransactionID: 1, Number: "SAL-000001", AccountCode: "2320", Debit: decimal.Zero, Credit: dec("900")},
	}
	book := BuildDayBook(mustDate(t, "2024-04-05"), entries)

	require.True(t, book.TotalDebit.Equal(dec("11800")))
	require.True(t, book.TotalCredit.Equal(dec("11800")))
	require.Len(t, book.Entries, 4)
	require.Equal(t, customer, *book.Entries[0].PartyID)
	require.Nil(t, book.Entries[1].PartyID)
}
