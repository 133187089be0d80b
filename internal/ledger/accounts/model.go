package accounts

import (
	"time"

	"github.com/meridian-erp/meridian-ledger/internal/ledger"
)

// Account models a chart of accounts node. Balances are never stored on the
// account row; they are always derived from posted entries.
type Account struct {
	ID        int64
	CompanyID int64
	Code      string
	Name      string
	Type      ledger.AccountType
	ParentID  *int64
	IsSystem  bool
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Definition describes one entry of the standard chart.
type Definition struct {
	Code string
	Name string
	Type ledger.AccountType
}

// Well-known system account codes used by the posting rules.
const (
	CodeCash            = "1000"
	CodeBank            = "1010"
	CodeReceivable      = "1100"
	CodeInventory       = "1200"
	CodeInputCGST       = "1310"
	CodeInputSGST       = "1320"
	CodeInputIGST       = "1330"
	CodePayable         = "2100"
	CodeOutputCGST      = "2310"
	CodeOutputSGST      = "2320"
	CodeOutputIGST      = "2330"
	CodeTDSPayable      = "2400"
	CodeRetainedEarn    = "3100"
	CodeSales           = "4100"
	CodeOtherIncome     = "4900"
	CodePurchases       = "5100"
	CodeCOGS            = "5200"
	CodeStockAdjustment = "5300"
	CodeOtherExpense    = "5900"
	CodeRoundOff        = "5990"
)

// StandardChart lists the system accounts every company starts with.
// InitializeChart creates the missing ones; calling it repeatedly is a no-op.
var StandardChart = []Definition{
	{CodeCash, "Cash", ledger.AccountTypeAsset},
	{CodeBank, "Bank", ledger.AccountTypeAsset},
	{CodeReceivable, "Accounts Receivable", ledger.AccountTypeAsset},
	{CodeInventory, "Inventory", ledger.AccountTypeAsset},
	{CodeInputCGST, "Input CGST", ledger.AccountTypeAsset},
	{CodeInputSGST, "Input SGST", ledger.AccountTypeAsset},
	{CodeInputIGST, "Input IGST", ledger.AccountTypeAsset},
	{CodePayable, "Accounts Payable", ledger.AccountTypeLiability},
	{CodeOutputCGST, "Output CGST", ledger.AccountTypeLiability},
	{CodeOutputSGST, "Output SGST", ledger.AccountTypeLiability},
	{CodeOutputIGST, "Output IGST", ledger.AccountTypeLiability},
	{CodeTDSPayable, "TDS Payable", ledger.AccountTypeLiability},
	{CodeRetainedEarn, "Retained Earnings", ledger.AccountTypeEquity},
	{CodeSales, "Sales", ledger.AccountTypeRevenue},
	{CodeOtherIncome, "Other Income", ledger.AccountTypeRevenue},
	{CodePurchases, "Purchases", ledger.AccountTypeExpense},
	{CodeCOGS, "Cost of Goods Sold", ledger.AccountTypeExpense},
	{CodeStockAdjustment, "Stock Adjustment", ledger.AccountTypeExpense},
	{CodeOtherExpense, "Other Expense", ledger.AccountTypeExpense},
	{CodeRoundOff, "Round Off", ledger.AccountTypeExpense},
}
