// Package ledger defines the core types shared by the posting engine:
// account categories, voucher types, transaction statuses, and the
// monetary rounding policy used on every line written to the ledger.
package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AccountType enumerates chart-of-accounts categories.
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeRevenue   AccountType = "REVENUE"
	AccountTypeExpense   AccountType = "EXPENSE"
)

// Valid reports whether the account type is a known category.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue, AccountTypeExpense:
		return true
	}
	return false
}

// DebitNature reports whether the type increases with debits.
// Assets and expenses carry debit balances; the rest carry credit balances.
func (t AccountType) DebitNature() bool {
	return t == AccountTypeAsset || t == AccountTypeExpense
}

// VoucherType enumerates the business-event labels a transaction carries.
type VoucherType string

const (
	VoucherPayment      VoucherType = "PAYMENT"
	VoucherReceipt      VoucherType = "RECEIPT"
	VoucherContra       VoucherType = "CONTRA"
	VoucherJournal      VoucherType = "JOURNAL"
	VoucherSales        VoucherType = "SALES"
	VoucherPurchase     VoucherType = "PURCHASE"
	VoucherDebitNote    VoucherType = "DEBIT_NOTE"
	VoucherCreditNote   VoucherType = "CREDIT_NOTE"
	VoucherStockJournal VoucherType = "STOCK_JOURNAL"
)

// Valid reports whether the voucher type is known.
func (v VoucherType) Valid() bool {
	switch v {
	case VoucherPayment, VoucherReceipt, VoucherContra, VoucherJournal, VoucherSales,
		VoucherPurchase, VoucherDebitNote, VoucherCreditNote, VoucherStockJournal:
		return true
	}
	return false
}

// Prefix returns the voucher-number prefix for the type, e.g. SAL for sales.
func (v VoucherType) Prefix() string {
	switch v {
	case VoucherPayment:
		return "PAY"
	case VoucherReceipt:
		return "RCT"
	case VoucherContra:
		return "CTR"
	case VoucherJournal:
		return "JRN"
	case VoucherSales:
		return "SAL"
	case VoucherPurchase:
		return "PUR"
	case VoucherDebitNote:
		return "DBN"
	case VoucherCreditNote:
		return "CRN"
	case VoucherStockJournal:
		return "STK"
	default:
		return "TXN"
	}
}

// FormatNumber renders a zero-padded voucher number like SAL-000042.
func FormatNumber(v VoucherType, seq int64) string {
	return fmt.Sprintf("%s-%06d", v.Prefix(), seq)
}

// TransactionStatus enumerates the journal lifecycle.
type TransactionStatus string

const (
	StatusDraft    TransactionStatus = "DRAFT"
	StatusPosted   TransactionStatus = "POSTED"
	StatusReversed TransactionStatus = "REVERSED"
)

// PartyType tags the optional counterparty on an entry line.
type PartyType string

const (
	PartyCustomer PartyType = "CUSTOMER"
	PartyVendor   PartyType = "VENDOR"
)

// Round2 rounds a monetary amount to two places, half away from zero.
// Every amount is rounded with this before it is written to a line.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Tolerance is the largest debit/credit discrepancy accepted on a voucher,
// one minor currency unit.
var Tolerance = decimal.New(1, -2)

// Balanced reports whether two column totals agree within Tolerance.
func Balanced(debit, credit decimal.Decimal) bool {
	return debit.Sub(credit).Abs().Cmp(Tolerance) <= 0
}
