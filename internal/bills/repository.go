package bills

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-ledger/internal/platform/db"
)

// Repository encapsulates DB operations for invoices and allocations.
type Repository interface {
	GetInvoice(ctx context.Context, companyID, id int64) (Invoice, error)
	ListInvoices(ctx context.Context, companyID int64, invoiceType InvoiceType) ([]Invoice, error)
	ListOutstanding(ctx context.Context, companyID int64, invoiceType InvoiceType) ([]Invoice, error)
	ListAllocations(ctx context.Context, companyID, invoiceID int64) ([]Allocation, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes allocation mutations; allocation insert/delete and
// the outstanding recompute always commit together.
type TxRepository interface {
	GetInvoiceForUpdate(ctx context.Context, companyID, id int64) (Invoice, error)
	InsertAllocation(ctx context.Context, alloc Allocation) (Allocation, error)
	DeleteAllocationsForPayment(ctx context.Context, companyID, paymentTransactionID int64) ([]int64, error)
	SumAllocations(ctx context.Context, invoiceID int64) (decimal.Decimal, error)
	SetOutstanding(ctx context.Context, invoiceID int64, amount decimal.Decimal) error
	ListInvoiceIDs(ctx context.Context, companyID int64) ([]int64, error)
	InvoiceTotal(ctx context.Context, invoiceID int64) (decimal.Decimal, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository returns the pgx-backed bills repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const invoiceColumns = `id, company_id, invoice_type, number, party_id, invoice_date, due_date, total_amount, outstanding_amount, created_at, updated_at`

func scanInvoice(row pgx.Row) (Invoice, error) {
	var inv Invoice
	err := row.Scan(&inv.ID, &inv.CompanyID, &inv.Type, &inv.Number, &inv.PartyID,
		&inv.InvoiceDate, &inv.DueDate, &inv.Total, &inv.Outstanding, &inv.CreatedAt, &inv.UpdatedAt)
	return inv, err
}

func (r *repository) GetInvoice(ctx context.Context, companyID, id int64) (Invoice, error) {
	inv, err := scanInvoice(r.db.QueryRow(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE company_id=$1 AND id=$2`, companyID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Invoice{}, ErrInvoiceNotFound
	}
	return inv, err
}

func (r *repository) ListInvoices(ctx context.Context, companyID int64, invoiceType InvoiceType) ([]Invoice, error) {
	rows, err := r.db.Query(ctx, `SELECT `+invoiceColumns+` FROM invoices
WHERE company_id=$1 AND ($2 = '' OR invoice_type=$2) ORDER BY invoice_date DESC, id DESC`, companyID, string(invoiceType))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectInvoices(rows)
}

func (r *repository) ListOutstanding(ctx context.Context, companyID int64, invoiceType InvoiceType) ([]Invoice, error) {
	rows, err := r.db.Query(ctx, `SELECT `+invoiceColumns+` FROM invoices
WHERE company_id=$1 AND ($2 = '' OR invoice_type=$2) AND outstanding_amount > 0
ORDER BY due_date ASC, id ASC`, companyID, string(invoiceType))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectInvoices(rows)
}

func collectInvoices(rows pgx.Rows) ([]Invoice, error) {
	var out []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (r *repository) ListAllocations(ctx context.Context, companyID, invoiceID int64) ([]Allocation, error) {
	rows, err := r.db.Query(ctx, `SELECT id, company_id, payment_transaction_id, invoice_id, invoice_type, allocation_type, allocated_amount, allocation_date, created_at
FROM bill_allocations WHERE company_id=$1 AND invoice_id=$2 ORDER BY id ASC`, companyID, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Allocation
	for rows.Next() {
		var a Allocation
		if err := rows.Scan(&a.ID, &a.CompanyID, &a.PaymentTransactionID, &a.InvoiceID, &a.InvoiceType, &a.Type, &a.Amount, &a.Date, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) GetInvoiceForUpdate(ctx context.Context, companyID, id int64) (Invoice, error) {
	inv, err := scanInvoice(r.tx.QueryRow(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE company_id=$1 AND id=$2 FOR UPDATE`, companyID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Invoice{}, ErrInvoiceNotFound
	}
	return inv, err
}

func (r *txRepository) InsertAllocation(ctx context.Context, alloc Allocation) (Allocation, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO bill_allocations
(company_id, payment_transaction_id, invoice_id, invoice_type, allocation_type, allocated_amount, allocation_date)
VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING id, created_at`,
		alloc.CompanyID, alloc.PaymentTransactionID, alloc.InvoiceID, alloc.InvoiceType, alloc.Type, alloc.Amount, alloc.Date)
	if err := row.Scan(&alloc.ID, &alloc.CreatedAt); err != nil {
		return Allocation{}, err
	}
	return alloc, nil
}

func (r *txRepository) DeleteAllocationsForPayment(ctx context.Context, companyID, paymentTransactionID int64) ([]int64, error) {
	rows, err := r.tx.Query(ctx, `DELETE FROM bill_allocations
WHERE company_id=$1 AND payment_transaction_id=$2 RETURNING invoice_id`, companyID, paymentTransactionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *txRepository) SumAllocations(ctx context.Context, invoiceID int64) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.tx.QueryRow(ctx,
		`SELECT COALESCE(SUM(allocated_amount),0) FROM bill_allocations WHERE invoice_id=$1`, invoiceID).Scan(&sum)
	return sum, err
}

func (r *txRepository) SetOutstanding(ctx context.Context, invoiceID int64, amount decimal.Decimal) error {
	cmd, err := r.tx.Exec(ctx,
		`UPDATE invoices SET outstanding_amount=$2, updated_at=NOW() WHERE id=$1`, invoiceID, amount)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrInvoiceNotFound
	}
	return nil
}

func (r *txRepository) ListInvoiceIDs(ctx context.Context, companyID int64) ([]int64, error) {
	rows, err := r.tx.Query(ctx, `SELECT id FROM invoices WHERE company_id=$1 ORDER BY id ASC`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *txRepository) InvoiceTotal(ctx context.Context, invoiceID int64) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.tx.QueryRow(ctx, `SELECT total_amount FROM invoices WHERE id=$1`, invoiceID).Scan(&total)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, ErrInvoiceNotFound
	}
	return total, err
}
