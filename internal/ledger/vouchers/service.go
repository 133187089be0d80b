// Package vouchers translates higher-level business documents into the
// fixed sets of debit/credit lines each event must generate. The rule table
// is deterministic: a document either maps to a balanced voucher or the
// posting is rejected outright.
package vouchers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-ledger/internal/ledger"
	"github.com/meridian-erp/meridian-ledger/internal/ledger/accounts"
	"github.com/meridian-erp/meridian-ledger/internal/ledger/journals"
	"github.com/meridian-erp/meridian-ledger/internal/ledger/shared"
)

// Poster commits balanced vouchers to the transaction store.
type Poster interface {
	CreateVoucher(ctx context.Context, in journals.VoucherInput) (journals.Transaction, error)
}

// Service applies the posting rule table.
type Service struct {
	accounts *accounts.Service
	poster   Poster
}

// NewService constructs the posting rules engine.
func NewService(accountSvc *accounts.Service, poster Poster) *Service {
	return &Service{accounts: accountSvc, poster: poster}
}

func dr(acc accounts.Account, amount decimal.Decimal, desc string, partyID *int64, partyType *ledger.PartyType) journals.LineInput {
	return journals.LineInput{AccountID: acc.ID, Debit: amount, Description: desc, PartyID: partyID, PartyType: partyType}
}

func cr(acc accounts.Account, amount decimal.Decimal, desc string, partyID *int64, partyType *ledger.PartyType) journals.LineInput {
	return journals.LineInput{AccountID: acc.ID, Credit: amount, Description: desc, PartyID: partyID, PartyType: partyType}
}

func requirePositive(amount decimal.Decimal, field string) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: %s must be positive", shared.ErrValidation, field)
	}
	return nil
}

// gstLines appends one tax line per nonzero breakup component.
func gstLines(ctx context.Context, resolver *accounts.Resolver, breakup GSTBreakup, output bool, desc string, debitSide bool) ([]journals.LineInput, error) {
	type leg struct {
		code   string
		amount decimal.Decimal
	}
	var legs []leg
	if output {
		legs = []leg{{accounts.CodeOutputCGST, breakup.CGST}, {accounts.CodeOutputSGST, breakup.SGST}, {accounts.CodeOutputIGST, breakup.IGST}}
	} else {
		legs = []leg{{accounts.CodeInputCGST, breakup.CGST}, {accounts.CodeInputSGST, breakup.SGST}, {accounts.CodeInputIGST, breakup.IGST}}
	}
	var out []journals.LineInput
	for _, l := range legs {
		if !l.amount.IsPositive() {
			continue
		}
		acc, err := resolver.System(ctx, l.code)
		if err != nil {
			return nil, err
		}
		if debitSide {
			out = append(out, dr(acc, l.amount, desc, nil, nil))
		} else {
			out = append(out, cr(acc, l.amount, desc, nil, nil))
		}
	}
	return out, nil
}

// PostSalesInvoice books Dr Accounts Receivable for the gross total against
// Cr Sales and the output tax legs.
func (s *Service) PostSalesInvoice(ctx context.Context, in SalesInvoiceInput) (journals.Transaction, error) {
	if err := requirePositive(in.Subtotal, "subtotal"); err != nil {
		return journals.Transaction{}, err
	}
	resolver := accounts.NewResolver(s.accounts, in.CompanyID)
	subtotal := ledger.Round2(in.Subtotal)
	gst := SplitGST(subtotal, in.GSTRate, in.IntraState)
	total := subtotal.Add(gst.Total)

	ar, err := resolver.System(ctx, accounts.CodeReceivable)
	if err != nil {
		return journals.Transaction{}, err
	}
	sales, err := resolver.System(ctx, accounts.CodeSales)
	if err != nil {
		return journals.Transaction{}, err
	}
	customer := ledger.PartyCustomer
	lines := []journals.LineInput{
		dr(ar, total, in.Description, in.CustomerID, &customer),
		cr(sales, subtotal, in.Description, nil, nil),
	}
	taxLines, err := gstLines(ctx, resolver, gst, true, in.Description, false)
	if err != nil {
		return journals.Transaction{}, err
	}
	lines = append(lines, taxLines...)

	return s.poster.CreateVoucher(ctx, journals.VoucherInput{
		CompanyID:     in.CompanyID,
		VoucherType:   ledger.VoucherSales,
		Date:          in.Date,
		Description:   in.Description,
		ReferenceType: "sales_invoice",
		ReferenceID:   &in.InvoiceID,
		ActorID:       in.ActorID,
		Lines:         lines,
	})
}

// PostPurchaseInvoice books Dr Purchases and input tax against Cr Accounts
// Payable (net of TDS) and Cr TDS Payable.
func (s *Service) PostPurchaseInvoice(ctx context.Context, in PurchaseInvoiceInput) (journals.Transaction, error) {
	if err := requirePositive(in.Subtotal, "subtotal"); err != nil {
		return journals.Transaction{}, err
	}
	if in.TDSAmount.IsNegative() {
		return journals.Transaction{}, fmt.Errorf("%w: tds amount cannot be negative", shared.ErrValidation)
	}
	resolver := accounts.NewResolver(s.accounts, in.CompanyID)
	subtotal := ledger.Round2(in.Subtotal)
	gst := SplitGST(subtotal, in.GSTRate, in.IntraState)
	total := subtotal.Add(gst.Total)
	tds := ledger.Round2(in.TDSAmount)
	if tds.Cmp(total) >= 0 {
		return journals.Transaction{}, fmt.Errorf("%w: tds exceeds invoice total", shared.ErrValidation)
	}
	netPayable := total.Sub(tds)

	purchases, err := resolver.System(ctx, accounts.CodePurchases)
	if err != nil {
		return journals.Transaction{}, err
	}
	ap, err := resolver.System(ctx, accounts.CodePayable)
	if err != nil {
		return journals.Transaction{}, err
	}
	vendor := ledger.PartyVendor
	lines := []journals.LineInput{
		dr(purchases, subtotal, in.Description, nil, nil),
	}
	taxLines, err := gstLines(ctx, resolver, gst, false, in.Description, true)
	if err != nil {
		return journals.Transaction{}, err
	}
	lines = append(lines, taxLines...)
	lines = append(lines, cr(ap, netPayable, in.Description, in.VendorID, &vendor))
	if tds.IsPositive() {
		tdsAcc, err := resolver.System(ctx, accounts.CodeTDSPayable)
		if err != nil {
			return journals.Transaction{}, err
		}
		lines = append(lines, cr(tdsAcc, tds, in.Description, nil, nil))
	}

	return s.poster.CreateVoucher(ctx, journals.VoucherInput{
		CompanyID:     in.CompanyID,
		VoucherType:   ledger.VoucherPurchase,
		Date:          in.Date,
		Description:   in.Description,
		ReferenceType: "purchase_invoice",
		ReferenceID:   &in.InvoiceID,
		ActorID:       in.ActorID,
		Lines:         lines,
	})
}

// PostReceipt books money received against a customer balance:
// Dr Cash/Bank, Cr Accounts Receivable.
func (s *Service) PostReceipt(ctx context.Context, in SettlementInput) (journals.Transaction, error) {
	if err := requirePositive(in.Amount, "amount"); err != nil {
		return journals.Transaction{}, err
	}
	resolver := accounts.NewResolver(s.accounts, in.CompanyID)
	money, err := resolver.System(ctx, moneyCode(in.ViaBank))
	if err != nil {
		return journals.Transaction{}, err
	}
	ar, err := resolver.System(ctx, accounts.CodeReceivable)
	if err != nil {
		return journals.Transaction{}, err
	}
	amount := ledger.Round2(in.Amount)
	customer := ledger.PartyCustomer
	return s.poster.CreateVoucher(ctx, journals.VoucherInput{
		CompanyID:     in.CompanyID,
		VoucherType:   ledger.VoucherReceipt,
		Date:          in.Date,
		Description:   in.Description,
		ReferenceType: "receipt",
		ReferenceID:   in.ReferenceID,
		ActorID:       in.ActorID,
		Lines: []journals.LineInput{
			dr(money, amount, in.Description, nil, nil),
			cr(ar, amount, in.Description, in.PartyID, &customer),
		},
	})
}

// PostPayment books money paid against a vendor balance:
// Dr Accounts Payable, Cr Cash/Bank.
func (s *Service) PostPayment(ctx context.Context, in SettlementInput) (journals.Transaction, error) {
	if err := requirePositive(in.Amount, "amount"); err != nil {
		return journals.Transaction{}, err
	}
	resolver := accounts.NewResolver(s.accounts, in.CompanyID)
	money, err := resolver.System(ctx, moneyCode(in.ViaBank))
	if err != nil {
		return journals.Transaction{}, err
	}
	ap, err := resolver.System(ctx, accounts.CodePayable)
	if err != nil {
		return journals.Transaction{}, err
	}
	amount := ledger.Round2(in.Amount)
	vendor := ledger.PartyVendor
	return s.poster.CreateVoucher(ctx, journals.VoucherInput{
		CompanyID:     in.CompanyID,
		VoucherType:   ledger.VoucherPayment,
		Date:          in.Date,
		Description:   in.Description,
		ReferenceType: "payment",
		ReferenceID:   in.ReferenceID,
		ActorID:       in.ActorID,
		Lines: []journals.LineInput{
			dr(ap, amount, in.Description, in.PartyID, &vendor),
			cr(money, amount, in.Description, nil, nil),
		},
	})
}

// PostContra transfers between two money accounts: Dr destination,
// Cr source.
func (s *Service) PostContra(ctx context.Context, in ContraInput) (journals.Transaction, error) {
	if err := requirePositive(in.Amount, "amount"); err != nil {
		return journals.Transaction{}, err
	}
	from, err := s.accounts.GetByCode(ctx, in.CompanyID, in.FromAccountCode)
	if err != nil {
		return journals.Transaction{}, err
	}
	to, err := s.accounts.GetByCode(ctx, in.CompanyID, in.ToAccountCode)
	if err != nil {
		return journals.Transaction{}, err
	}
	if from.Type != ledger.AccountTypeAsset || to.Type != ledger.AccountTypeAsset {
		return journals.Transaction{}, fmt.Errorf("%w: contra requires two asset accounts", shared.ErrValidation)
	}
	amount := ledger.Round2(in.Amount)
	return s.poster.CreateVoucher(ctx, journals.VoucherInput{
		CompanyID:   in.CompanyID,
		VoucherType: ledger.VoucherContra,
		Date:        in.Date,
		Description: in.Description,
		ActorID:     in.ActorID,
		Lines: []journals.LineInput{
			dr(to, amount, in.Description, nil, nil),
			cr(from, amount, in.Description, nil, nil),
		},
	})
}

// PostStockMovement emits the balanced COGS/Inventory entry for a stock
// movement: stock in debits Inventory against the offset account, stock out
// debits the offset against Inventory.
func (s *Service) PostStockMovement(ctx context.Context, in StockMovementInput) (journals.Transaction, error) {
	if err := requirePositive(in.Amount, "amount"); err != nil {
		return journals.Transaction{}, err
	}
	resolver := accounts.NewResolver(s.accounts, in.CompanyID)
	inventory, err := resolver.System(ctx, accounts.CodeInventory)
	if err != nil {
		return journals.Transaction{}, err
	}
	offsetCode := accounts.CodeCOGS
	if in.Adjustment {
		offsetCode = accounts.CodeStockAdjustment
	}
	offset, err := resolver.System(ctx, offsetCode)
	if err != nil {
		return journals.Transaction{}, err
	}
	amount := ledger.Round2(in.Amount)
	var lines []journals.LineInput
	switch in.Direction {
	case StockIn:
		lines = []journals.LineInput{
			dr(inventory, amount, in.Description, nil, nil),
			cr(offset, amount, in.Description, nil, nil),
		}
	case StockOut:
		lines = []journals.LineInput{
			dr(offset, amount, in.Description, nil, nil),
			cr(inventory, amount, in.Description, nil, nil),
		}
	default:
		return journals.Transaction{}, fmt.Errorf("%w: unknown stock direction %q", shared.ErrValidation, in.Direction)
	}
	return s.poster.CreateVoucher(ctx, journals.VoucherInput{
		CompanyID:     in.CompanyID,
		VoucherType:   ledger.VoucherStockJournal,
		Date:          in.Date,
		Description:   in.Description,
		ReferenceType: "stock_movement",
		ReferenceID:   &in.MovementID,
		ActorID:       in.ActorID,
		Lines:         lines,
	})
}

// PostDebitNote books a sales return: Dr Sales and output tax, Cr Accounts
// Receivable for the gross return amount.
func (s *Service) PostDebitNote(ctx context.Context, in ReturnInput) (journals.Transaction, error) {
	if err := requirePositive(in.Subtotal, "subtotal"); err != nil {
		return journals.Transaction{}, err
	}
	resolver := accounts.NewResolver(s.accounts, in.CompanyID)
	subtotal := ledger.Round2(in.Subtotal)
	gst := SplitGST(subtotal, in.GSTRate, in.IntraState)
	total := subtotal.Add(gst.Total)

	sales, err := resolver.System(ctx, accounts.CodeSales)
	if err != nil {
		return journals.Transaction{}, err
	}
	ar, err := resolver.System(ctx, accounts.CodeReceivable)
	if err != nil {
		return journals.Transaction{}, err
	}
	customer := ledger.PartyCustomer
	lines := []journals.LineInput{
		dr(sales, subtotal, in.Description, nil, nil),
	}
	taxLines, err := gstLines(ctx, resolver, gst, true, in.Description, true)
	if err != nil {
		return journals.Transaction{}, err
	}
	lines = append(lines, taxLines...)
	lines = append(lines, cr(ar, total, in.Description, in.PartyID, &customer))

	return s.poster.CreateVoucher(ctx, journals.VoucherInput{
		CompanyID:     in.CompanyID,
		VoucherType:   ledger.VoucherDebitNote,
		Date:          in.Date,
		Description:   in.Description,
		ReferenceType: "sales_return",
		ReferenceID:   &in.NoteID,
		ActorID:       in.ActorID,
		Lines:         lines,
	})
}

// PostCreditNote books a purchase return: Dr Accounts Payable, Cr Purchases
// and input tax.
func (s *Service) PostCreditNote(ctx context.Context, in ReturnInput) (journals.Transaction, error) {
	if err := requirePositive(in.Subtotal, "subtotal"); err != nil {
		return journals.Transaction{}, err
	}
	resolver := accounts.NewResolver(s.accounts, in.CompanyID)
	subtotal := ledger.Round2(in.Subtotal)
	gst := SplitGST(subtotal, in.GSTRate, in.IntraState)
	total := subtotal.Add(gst.Total)

	ap, err := resolver.System(ctx, accounts.CodePayable)
	if err != nil {
		return journals.Transaction{}, err
	}
	purchases, err := resolver.System(ctx, accounts.CodePurchases)
	if err != nil {
		return journals.Transaction{}, err
	}
	vendor := ledger.PartyVendor
	lines := []journals.LineInput{
		dr(ap, total, in.Description, in.PartyID, &vendor),
		cr(purchases, subtotal, in.Description, nil, nil),
	}
	taxLines, err := gstLines(ctx, resolver, gst, false, in.Description, false)
	if err != nil {
		return journals.Transaction{}, err
	}
	lines = append(lines, taxLines...)

	return s.poster.CreateVoucher(ctx, journals.VoucherInput{
		CompanyID:     in.CompanyID,
		VoucherType:   ledger.VoucherCreditNote,
		Date:          in.Date,
		Description:   in.Description,
		ReferenceType: "purchase_return",
		ReferenceID:   &in.NoteID,
		ActorID:       in.ActorID,
		Lines:         lines,
	})
}

// PostOrderConfirmation mirrors the corresponding invoice rule using the
// order's subtotal and tax.
func (s *Service) PostOrderConfirmation(ctx context.Context, in OrderInput) (journals.Transaction, error) {
	switch in.Kind {
	case OrderSales:
		txn, err := s.PostSalesInvoice(ctx, SalesInvoiceInput{
			CompanyID:   in.CompanyID,
			InvoiceID:   in.OrderID,
			Date:        in.Date,
			CustomerID:  in.PartyID,
			Subtotal:    in.Subtotal,
			GSTRate:     in.GSTRate,
			IntraState:  in.IntraState,
			Description: in.Description,
			ActorID:     in.ActorID,
		})
		return txn, err
	case OrderPurchase:
		txn, err := s.PostPurchaseInvoice(ctx, PurchaseInvoiceInput{
			CompanyID:   in.CompanyID,
			InvoiceID:   in.OrderID,
			Date:        in.Date,
			VendorID:    in.PartyID,
			Subtotal:    in.Subtotal,
			GSTRate:     in.GSTRate,
			IntraState:  in.IntraState,
			TDSAmount:   decimal.Zero,
			Description: in.Description,
			ActorID:     in.ActorID,
		})
		return txn, err
	default:
		return journals.Transaction{}, fmt.Errorf("%w: unknown order kind %q", shared.ErrValidation, in.Kind)
	}
}

// PostSimpleJournal books a two-line journal voucher between two explicit
// accounts. The recurring engine materializes through this.
func (s *Service) PostSimpleJournal(ctx context.Context, companyID int64, date time.Time, debitAccountID, creditAccountID int64, amount decimal.Decimal, description string, referenceType string, referenceID *uuid.UUID, actorID int64) (journals.Transaction, error) {
	if err := requirePositive(amount, "amount"); err != nil {
		return journals.Transaction{}, err
	}
	rounded := ledger.Round2(amount)
	return s.poster.CreateVoucher(ctx, journals.VoucherInput{
		CompanyID:     companyID,
		VoucherType:   ledger.VoucherJournal,
		Date:          date,
		Description:   description,
		ReferenceType: referenceType,
		ReferenceID:   referenceID,
		ActorID:       actorID,
		Lines: []journals.LineInput{
			{AccountID: debitAccountID, Debit: rounded, Description: description},
			{AccountID: creditAccountID, Credit: rounded, Description: description},
		},
	})
}

func moneyCode(viaBank bool) string {
	if viaBank {
		return accounts.CodeBank
	}
	return accounts.CodeCash
}
