package vouchers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockDirection tells whether a stock movement increases or decreases
// inventory value.
type StockDirection string

const (
	StockIn  StockDirection = "IN"
	StockOut StockDirection = "OUT"
)

// OrderKind distinguishes sales and purchase order confirmations.
type OrderKind string

const (
	OrderSales    OrderKind = "SALES"
	OrderPurchase OrderKind = "PURCHASE"
)

// SalesInvoiceInput carries a normalized sales invoice event.
type SalesInvoiceInput struct {
	CompanyID   int64
	InvoiceID   uuid.UUID
	Date        time.Time
	CustomerID  *int64
	Subtotal    decimal.Decimal
	GSTRate     decimal.Decimal
	IntraState  bool
	Description string
	ActorID     int64
}

// PurchaseInvoiceInput carries a normalized purchase invoice event.
// TDS is a payer-side withholding that reduces the net payable and books a
// separate liability to the tax authority.
type PurchaseInvoiceInput struct {
	CompanyID   int64
	InvoiceID   uuid.UUID
	Date        time.Time
	VendorID    *int64
	Subtotal    decimal.Decimal
	GSTRate     decimal.Decimal
	IntraState  bool
	TDSAmount   decimal.Decimal
	Description string
	ActorID     int64
}

// SettlementInput covers receipts against sales invoices and payments
// against purchase invoices.
type SettlementInput struct {
	CompanyID   int64
	ReferenceID *uuid.UUID
	Date        time.Time
	PartyID     *int64
	Amount      decimal.Decimal
	ViaBank     bool
	Description string
	ActorID     int64
}

// ContraInput is a cash/bank transfer between two money accounts.
type ContraInput struct {
	CompanyID       int64
	Date            time.Time
	FromAccountCode string
	ToAccountCode   string
	Amount          decimal.Decimal
	Description     string
	ActorID         int64
}

// StockMovementInput is the point where a stock movement emits a balanced
// journal entry against inventory.
type StockMovementInput struct {
	CompanyID   int64
	MovementID  uuid.UUID
	Date        time.Time
	Direction   StockDirection
	Amount      decimal.Decimal
	Adjustment  bool
	Description string
	ActorID     int64
}

// ReturnInput covers debit notes (sales returns) and credit notes
// (purchase returns).
type ReturnInput struct {
	CompanyID   int64
	NoteID      uuid.UUID
	Date        time.Time
	PartyID     *int64
	Subtotal    decimal.Decimal
	GSTRate     decimal.Decimal
	IntraState  bool
	Description string
	ActorID     int64
}

// OrderInput mirrors the invoice rule using the order's subtotal and tax.
type OrderInput struct {
	CompanyID   int64
	OrderID     uuid.UUID
	Kind        OrderKind
	Date        time.Time
	PartyID     *int64
	Subtotal    decimal.Decimal
	GSTRate     decimal.Decimal
	IntraState  bool
	Description string
	ActorID     int64
}
