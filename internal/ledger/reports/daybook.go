package reports

import (
	"time"

	"github.com/shopspring/decimal"
)

// DayBookEntry is one journal line on the day, in posting order.
// PartyID mirrors transaction_entries.party_id.
type DayBookEntry struct {
	TransactionID int64
	Number        string
	VoucherType   string
	Status        string
	Description   string
	AccountCode   string
	AccountName   string
	PartyID       *int64
	Debit         decimal.Decimal
	Credit        decimal.Decimal
}

type DayBook struct {
	Date        time.Time
	Entries     []DayBookEntry
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
}

// BuildDayBook totals the day's entries. Entries are expected in
// transaction then line order as fetched.
func BuildDayBook(date time.Time, entries []DayBookEntry) DayBook {
	book := DayBook{Date: date, Entries: entries, TotalDebit: decimal.Zero, TotalCredit: decimal.Zero}
	for _, e := range entries {
		book.TotalDebit = book.TotalDebit.Add(e.Debit)
		book.TotalCredit = book.TotalCredit.Add(e.Credit)
	}
	return book
}
