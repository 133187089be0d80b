package vouchers

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/meridian-erp/meridian-ledger/internal/ledger"
	"github.com/meridian-erp/meridian-ledger/internal/ledger/accounts"
	"github.com/meridian-erp/meridian-ledger/internal/ledger/journals"
	"github.com/meridian-erp/meridian-ledger/internal/ledger/shared"
)

type accountStore struct {
	nextID int64
	byID   map[int64]accounts.Account
}

func newAccountStore() *accountStore {
	return &accountStore{nextID: 1, byID: make(map[int64]accounts.Account)}
}

func (s *accountStore) GetByCode(_ context.Context, companyID int64, code string) (accounts.Account, error) {
	for _, a := range s.byID {
		if a.CompanyID == companyID && a.Code == code {
			return a, nil
		}
	}
	return accounts.Account{}, shared.ErrAccountNotFound
}

func (s *accountStore) GetByID(_ context.Context, companyID, id int64) (accounts.Account, error) {
	a, ok := s.byID[id]
	if !ok || a.CompanyID != companyID {
		return accounts.Account{}, shared.ErrAccountNotFound
	}
	return a, nil
}

func (s *accountStore) Insert(_ context.Context, acc accounts.Account) (accounts.Account, error) {
	acc.ID = s.nextID
	s.nextID++
	s.byID[acc.ID] = acc
	return acc, nil
}

func (s *accountStore) List(_ context.Context, companyID int64) ([]accounts.Account, error) {
	var out []accounts.Account
	for id := int64(1); id < s.nextID; id++ {
		if a, ok := s.byID[id]; ok && a.CompanyID == companyID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *accountStore) HasPostedEntries(context.Context, int64) (bool, error) { return false, nil }

func (s *accountStore) Delete(_ context.Context, _ int64, id int64) error {
	delete(s.byID, id)
	return nil
}

func (s *accountStore) SetActive(_ context.Context, _ int64, id int64, active bool) error {
	a := s.byID[id]
	a.IsActive = active
	s.byID[id] = a
	return nil
}

type capturingPoster struct {
	inputs []journals.VoucherInput
}

func (p *capturingPoster) CreateVoucher(_ context.Context, in journals.VoucherInput) (journals.Transaction, error) {
	if err := in.Validate(); err != nil {
		return journals.Transaction{}, err
	}
	p.inputs = append(p.inputs, in)
	debit, credit := in.Totals()
	return journals.Transaction{
		ID:          int64(len(p.inputs)),
		CompanyID:   in.CompanyID,
		Number:      ledger.FormatNumber(in.VoucherType, int64(len(p.inputs))),
		Date:        in.Date,
		VoucherType: in.VoucherType,
		Status:      ledger.StatusPosted,
		TotalDebit:  debit,
		TotalCredit: credit,
	}, nil
}

func newTestService(t *testing.T) (*Service, *capturingPoster, *accountStore) {
	t.Helper()
	store := newAccountStore()
	poster := &capturingPoster{}
	return NewService(accounts.NewService(store), poster), poster, store
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func lineFor(t *testing.T, store *accountStore, in journals.VoucherInput, code string) journals.LineInput {
	t.Helper()
	for _, l := range in.Lines {
		acc, ok := store.byID[l.AccountID]
		if ok && acc.Code == code {
			return l
		}
	}
	t.Fatalf("no line posted to account %s", code)
	return journals.LineInput{}
}

func TestSplitGSTIntraStateResidualCent(t *testing.T) {
	// 18% of 100.09 is 18.0162 -> 18.02; halves are 9.01 each.
	gst := SplitGST(dec("100.09"), dec("18"), true)
	require.True(t, gst.Total.Equal(dec("18.02")))
	require.True(t, gst.CGST.Equal(dec("9.01")))
	require.True(t, gst.SGST.Equal(dec("9.01")))

	// 18% of 100.15 is 18.027 -> 18.03; the odd cent lands on SGST.
	gst = SplitGST(dec("100.15"), dec("18"), true)
	require.True(t, gst.Total.Equal(dec("18.03")))
	require.True(t, gst.CGST.Equal(dec("9.01")))
	require.True(t, gst.SGST.Equal(dec("9.02")))
	require.True(t, gst.CGST.Add(gst.SGST).Equal(gst.Total))
}

func TestSplitGSTInterState(t *testing.T) {
	gst := SplitGST(dec("10000"), dec("18"), false)
	require.True(t, gst.IGST.Equal(dec("1800")))
	require.True(t, gst.CGST.IsZero())
	require.True(t, gst.SGST.IsZero())
}

func TestPostSalesInvoiceIntraState(t *testing.T) {
	svc, poster, store := newTestService(t)
	customer := int64(42)

	txn, err := svc.PostSalesInvoice(context.Background(), SalesInvoiceInput{
		CompanyID:   1,
		InvoiceID:   uuid.New(),
		Date:        time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		CustomerID:  &customer,
		Subtotal:    dec("10000"),
		GSTRate:     dec("18"),
		IntraState:  true,
		Description: "Invoice INV-42",
		ActorID:     7,
	})
	require.NoError(t, err)
	require.Equal(t, ledger.VoucherSales, txn.VoucherType)
	require.True(t, txn.TotalDebit.Equal(dec("11800")))

	in := poster.inputs[0]
	require.Equal(t, "sales_invoice", in.ReferenceType)
	require.Len(t, in.Lines, 4)

	ar := lineFor(t, store, in, accounts.CodeReceivable)
	require.True(t, ar.Debit.Equal(dec("11800")))
	require.Equal(t, customer, *ar.PartyID)
	require.Equal(t, ledger.PartyCustomer, *ar.PartyType)

	require.True(t, lineFor(t, store, in, accounts.CodeSales).Credit.Equal(dec("10000")))
	require.True(t, lineFor(t, store, in, accounts.CodeOutputCGST).Credit.Equal(dec("900")))
	require.True(t, lineFor(t, store, in, accounts.CodeOutputSGST).Credit.Equal(dec("900")))
}

func TestPostSalesInvoiceInterStateUsesIGST(t *testing.T) {
	svc, poster, store := newTestService(t)

	_, err := svc.PostSalesInvoice(context.Background(), SalesInvoiceInput{
		CompanyID:  1,
		InvoiceID:  uuid.New(),
		Date:       time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Subtotal:   dec("10000"),
		GSTRate:    dec("18"),
		IntraState: false,
	})
	require.NoError(t, err)

	in := poster.inputs[0]
	require.Len(t, in.Lines, 3)
	require.True(t, lineFor(t, store, in, accounts.CodeOutputIGST).Credit.Equal(dec("1800")))
}

func TestPostPurchaseInvoiceWithTDS(t *testing.T) {
	svc, poster, store := newTestService(t)
	vendor := int64(9)

	_, err := svc.PostPurchaseInvoice(context.Background(), PurchaseInvoiceInput{
		CompanyID:  1,
		InvoiceID:  uuid.New(),
		Date:       time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		VendorID:   &vendor,
		Subtotal:   dec("50000"),
		GSTRate:    dec("18"),
		IntraState: true,
		TDSAmount:  dec("500"),
	})
	require.NoError(t, err)

	in := poster.inputs[0]
	require.Equal(t, ledger.VoucherPurchase, in.VoucherType)
	require.Len(t, in.Lines, 6)

	require.True(t, lineFor(t, store, in, accounts.CodePurchases).Debit.Equal(dec("50000")))
	require.True(t, lineFor(t, store, in, accounts.CodeInputCGST).Debit.Equal(dec("4500")))
	require.True(t, lineFor(t, store, in, accounts.CodeInputSGST).Debit.Equal(dec("4500")))
	require.True(t, lineFor(t, store, in, accounts.CodeTDSPayable).Credit.Equal(dec("500")))

	ap := lineFor(t, store, in, accounts.CodePayable)
	require.True(t, ap.Credit.Equal(dec("58500")), "net payable got %s", ap.Credit)
	require.Equal(t, vendor, *ap.PartyID)
}

func TestPostPurchaseInvoiceRejectsTDSAtOrAboveTotal(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.PostPurchaseInvoice(context.Background(), PurchaseInvoiceInput{
		CompanyID: 1,
		InvoiceID: uuid.New(),
		Date:      time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Subtotal:  dec("100"),
		GSTRate:   decimal.Zero,
		TDSAmount: dec("100"),
	})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestPostReceiptAndPayment(t *testing.T) {
	svc, poster, store := newTestService(t)
	party := int64(5)
	date := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)

	_, err := svc.PostReceipt(context.Background(), SettlementInput{
		CompanyID: 1, Date: date, PartyID: &party, Amount: dec("5000"), ViaBank: false,
	})
	require.NoError(t, err)
	receipt := poster.inputs[0]
	require.Equal(t, ledger.VoucherReceipt, receipt.VoucherType)
	require.True(t, lineFor(t, store, receipt, accounts.CodeCash).Debit.Equal(dec("5000")))
	require.True(t, lineFor(t, store, receipt, accounts.CodeReceivable).Credit.Equal(dec("5000")))

	_, err = svc.PostPayment(context.Background(), SettlementInput{
		CompanyID: 1, Date: date, PartyID: &party, Amount: dec("2000"), ViaBank: true,
	})
	require.NoError(t, err)
	payment := poster.inputs[1]
	require.Equal(t, ledger.VoucherPayment, payment.VoucherType)
	require.True(t, lineFor(t, store, payment, accounts.CodePayable).Debit.Equal(dec("2000")))
	require.True(t, lineFor(t, store, payment, accounts.CodeBank).Credit.Equal(dec("2000")))
}

func TestPostContraRequiresAssetAccounts(t *testing.T) {
	svc, poster, _ := newTestService(t)
	ctx := context.Background()
	date := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

	// Seed via the initialize path so codes resolve by lookup.
	require.NoError(t, svc.accounts.InitializeChart(ctx, 1))

	_, err := svc.PostContra(ctx, ContraInput{
		CompanyID: 1, Date: date,
		FromAccountCode: accounts.CodeCash, ToAccountCode: accounts.CodeBank,
		Amount: dec("1500"),
	})
	require.NoError(t, err)
	require.Equal(t, ledger.VoucherContra, poster.inputs[0].VoucherType)

	_, err = svc.PostContra(ctx, ContraInput{
		CompanyID: 1, Date: date,
		FromAccountCode: accounts.CodeCash, ToAccountCode: accounts.CodeSales,
		Amount: dec("1500"),
	})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestPostStockMovementDirections(t *testing.T) {
	svc, poster, store := newTestService(t)
	ctx := context.Background()
	date := time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC)

	_, err := svc.PostStockMovement(ctx, StockMovementInput{
		CompanyID: 1, MovementID: uuid.New(), Date: date, Direction: StockIn, Amount: dec("3000"),
	})
	require.NoError(t, err)
	in := poster.inputs[0]
	require.True(t, lineFor(t, store, in, accounts.CodeInventory).Debit.Equal(dec("3000")))
	require.True(t, lineFor(t, store, in, accounts.CodeCOGS).Credit.Equal(dec("3000")))

	_, err = svc.PostStockMovement(ctx, StockMovementInput{
		CompanyID: 1, MovementID: uuid.New(), Date: date, Direction: StockOut, Amount: dec("1000"), Adjustment: true,
	})
	require.NoError(t, err)
	out := poster.inputs[1]
	require.True(t, lineFor(t, store, out, accounts.CodeStockAdjustment).Debit.Equal(dec("1000")))
	require.True(t, lineFor(t, store, out, accounts.CodeInventory).Credit.Equal(dec("1000")))

	_, err = svc.PostStockMovement(ctx, StockMovementInput{
		CompanyID: 1, MovementID: uuid.New(), Date: date, Direction: "SIDEWAYS", Amount: dec("1"),
	})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestPostDebitNoteReversesSalesLegs(t *testing.T) {
	svc, poster, store := newTestService(t)

	_, err := svc.PostDebitNote(context.Background(), ReturnInput{
		CompanyID:  1,
		NoteID:     uuid.New(),
		Date:       time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC),
		Subtotal:   dec("1000"),
		GSTRate:    dec("18"),
		IntraState: true,
	})
	require.NoError(t, err)

	in := poster.inputs[0]
	require.Equal(t, ledger.VoucherDebitNote, in.VoucherType)
	require.True(t, lineFor(t, store, in, accounts.CodeSales).Debit.Equal(dec("1000")))
	require.True(t, lineFor(t, store, in, accounts.CodeOutputCGST).Debit.Equal(dec("90")))
	require.True(t, lineFor(t, store, in, accounts.CodeReceivable).Credit.Equal(dec("1180")))
}

func TestPostCreditNoteReversesPurchaseLegs(t *testing.T) {
	svc, poster, store := newTestService(t)

	_, err := svc.PostCreditNote(context.Background(), ReturnInput{
		CompanyID:  1,
		NoteID:     uuid.New(),
		Date:       time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC),
		Subtotal:   dec("1000"),
		GSTRate:    dec("18"),
		IntraState: false,
	})
	require.NoError(t, err)

	in := poster.inputs[0]
	require.Equal(t, ledger.VoucherCreditNote, in.VoucherType)
	require.True(t, lineFor(t, store, in, accounts.CodePayable).Debit.Equal(dec("1180")))
	require.True(t, lineFor(t, store, in, accounts.CodePurchases).Credit.Equal(dec("1000")))
	require.True(t, lineFor(t, store, in, accounts.CodeInputIGST).Credit.Equal(dec("180")))
}

func TestPostOrderConfirmationDispatch(t *testing.T) {
	svc, poster, _ := newTestService(t)
	ctx := context.Background()
	date := time.Date(2024, 6, 6, 0, 0, 0, 0, time.UTC)

	_, err := svc.PostOrderConfirmation(ctx, OrderInput{
		CompanyID: 1, OrderID: uuid.New(), Kind: OrderSales, Date: date,
		Subtotal: dec("100"), GSTRate: dec("18"), IntraState: true,
	})
	require.NoError(t, err)
	require.Equal(t, ledger.VoucherSales, poster.inputs[0].VoucherType)

	_, err = svc.PostOrderConfirmation(ctx, OrderInput{
		CompanyID: 1, OrderID: uuid.New(), Kind: OrderPurchase, Date: date,
		Subtotal: dec("100"), GSTRate: dec("18"), IntraState: true,
	})
	require.NoError(t, err)
	require.Equal(t, ledger.VoucherPurchase, poster.inputs[1].VoucherType)

	_, err = svc.PostOrderConfirmation(ctx, OrderInput{Kind: "LEASE"})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestPostSimpleJournalTwoLines(t *testing.T) {
	svc, poster, _ := newTestService(t)

	txn, err := svc.PostSimpleJournal(context.Background(), 1,
		time.Date(2024, 6, 7, 0, 0, 0, 0, time.UTC),
		11, 12, dec("250.555"), "monthly rent", "recurring", nil, 7)
	require.NoError(t, err)
	require.Equal(t, ledger.VoucherJournal, txn.VoucherType)

	in := poster.inputs[0]
	require.Len(t, in.Lines, 2)
	require.True(t, in.Lines[0].Debit.Equal(dec("250.56")))
	require.True(t, in.Lines[1].Credit.Equal(dec("250.56")))
}
