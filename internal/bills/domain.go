// Package bills tracks how payments settle specific invoices and answers
// outstanding/aging questions about them.
package bills

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceType distinguishes receivable and payable invoices.
type InvoiceType string

const (
	InvoiceSales    InvoiceType = "SALES"
	InvoicePurchase InvoiceType = "PURCHASE"
)

// AllocationType classifies how a payment was applied.
type AllocationType string

const (
	AgainstReference AllocationType = "AGAINST_REFERENCE"
	NewReference     AllocationType = "NEW_REFERENCE"
	Advance          AllocationType = "ADVANCE"
	OnAccount        AllocationType = "ON_ACCOUNT"
)

// Invoice is the settlement-side view of a business document. Outstanding
// always equals total minus the sum of its allocations.
type Invoice struct {
	ID          int64
	CompanyID   int64
	Type        InvoiceType
	Number      string
	PartyID     int64
	InvoiceDate time.Time
	DueDate     time.Time
	Total       decimal.Decimal
	Outstanding decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Allocation records that a payment transaction settled part of an invoice.
type Allocation struct {
	ID                   int64
	CompanyID            int64
	PaymentTransactionID int64
	InvoiceID            int64
	InvoiceType          InvoiceType
	Type                 AllocationType
	Amount               decimal.Decimal
	Date                 time.Time
	CreatedAt            time.Time
}

var (
	// ErrInvoiceNotFound indicates a missing or foreign-tenant invoice.
	ErrInvoiceNotFound = errors.New("bills: invoice not found")
	// ErrOverAllocation indicates allocating more than the remaining
	// outstanding amount; never silently clamped.
	ErrOverAllocation = errors.New("bills: allocation exceeds outstanding amount")
	// ErrInvalidAmount indicates a non-positive allocation amount.
	ErrInvalidAmount = errors.New("bills: allocation amount must be positive")
)

// DefaultBucketBoundaries are the upper day limits of the standard aging
// buckets: 0-30, 31-60, 61-90, 91-180 and 180+.
var DefaultBucketBoundaries = []int{30, 60, 90, 180}
