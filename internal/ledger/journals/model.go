package journals

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-ledger/internal/ledger"
)

// Transaction is one atomic, balanced accounting event (a voucher header).
// Once posted it is never mutated in place; corrections are reversals.
type Transaction struct {
	ID            int64
	CompanyID     int64
	Number        string
	Date          time.Time
	VoucherType   ledger.VoucherType
	Description   string
	ReferenceType string
	ReferenceID   *uuid.UUID
	Status        ledger.TransactionStatus
	TotalDebit    decimal.Decimal
	TotalCredit   decimal.Decimal
	ReversesID    *int64
	ReversedByID  *int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Entries       []TransactionEntry
}

// TransactionEntry is a single debit or credit leg. Exactly one of Debit
// and Credit is nonzero.
type TransactionEntry struct {
	ID            int64
	TransactionID int64
	AccountID     int64
	Debit         decimal.Decimal
	Credit        decimal.Decimal
	Description   string
	PartyID       *int64
	PartyType     *ledger.PartyType
	CostCenterID  *int64
	CreatedAt     time.Time
}
