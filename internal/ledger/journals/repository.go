package journals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-erp/meridian-ledger/internal/ledger"
	"github.com/meridian-erp/meridian-ledger/internal/ledger/shared"
	"github.com/meridian-erp/meridian-ledger/internal/platform/db"
)

// Repository encapsulates DB operations for transactions.
type Repository interface {
	Get(ctx context.Context, companyID, id int64) (Transaction, error)
	List(ctx context.Context, companyID int64, filter ListFilter) ([]Transaction, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// ListFilter narrows transaction listings.
type ListFilter struct {
	VoucherType ledger.VoucherType
	From        *time.Time
	To          *time.Time
	Status      ledger.TransactionStatus
}

// TxRepository exposes methods available within a posting transaction.
// Header, lines and source link commit atomically; a failure rolls back all
// of them so partial postings are never observable.
type TxRepository interface {
	NextNumber(ctx context.Context, companyID int64, vt ledger.VoucherType) (int64, error)
	InsertTransaction(ctx context.Context, txn Transaction) (Transaction, error)
	InsertEntries(ctx context.Context, transactionID int64, entries []TransactionEntry) error
	LinkSource(ctx context.Context, companyID int64, refType string, refID uuid.UUID, transactionID int64) error
	GetForUpdate(ctx context.Context, companyID, id int64) (Transaction, []TransactionEntry, error)
	UpdateStatus(ctx context.Context, id int64, status ledger.TransactionStatus) error
	SetReversal(ctx context.Context, originalID, reversalID int64) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository returns the pgx-backed transaction repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const txnColumns = `id, company_id, number, date, voucher_type, description, reference_type, reference_id, status, total_debit, total_credit, reverses_id, reversed_by_id, created_at, updated_at`

func scanTransaction(row pgx.Row) (Transaction, error) {
	var t Transaction
	err := row.Scan(&t.ID, &t.CompanyID, &t.Number, &t.Date, &t.VoucherType, &t.Description,
		&t.ReferenceType, &t.ReferenceID, &t.Status, &t.TotalDebit, &t.TotalCredit,
		&t.ReversesID, &t.ReversedByID, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (r *repository) Get(ctx context.Context, companyID, id int64) (Transaction, error) {
	txn, err := scanTransaction(r.db.QueryRow(ctx,
		`SELECT `+txnColumns+` FROM transactions WHERE company_id=$1 AND id=$2`, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Transaction{}, shared.ErrTransactionNotFound
		}
		return Transaction{}, err
	}
	entries, err := r.entries(ctx, id)
	if err != nil {
		return Transaction{}, err
	}
	txn.Entries = entries
	return txn, nil
}

func (r *repository) entries(ctx context.Context, transactionID int64) ([]TransactionEntry, error) {
	rows, err := r.db.Query(ctx, `SELECT id, transaction_id, account_id, debit, credit, description, party_id, party_type, cost_center_id, created_at
FROM transaction_entries WHERE transaction_id=$1 ORDER BY id ASC`, transactionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEntries(rows)
}

func collectEntries(rows pgx.Rows) ([]TransactionEntry, error) {
	var entries []TransactionEntry
	for rows.Next() {
		var e TransactionEntry
		if err := rows.Scan(&e.ID, &e.TransactionID, &e.AccountID, &e.Debit, &e.Credit,
			&e.Description, &e.PartyID, &e.PartyType, &e.CostCenterID, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *repository) List(ctx context.Context, companyID int64, filter ListFilter) ([]Transaction, error) {
	query := `SELECT ` + txnColumns + ` FROM transactions WHERE company_id=$1`
	args := []any{companyID}
	if filter.VoucherType != "" {
		args = append(args, filter.VoucherType)
		query += fmt.Sprintf(` AND voucher_type=$%d`, len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(` AND status=$%d`, len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		query += fmt.Sprintf(` AND date >= $%d`, len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += fmt.Sprintf(` AND date <= $%d`, len(args))
	}
	query += ` ORDER BY date DESC, id DESC`
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
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

// NextNumber advances the per (company, voucher type) counter. The upsert
// takes a row lock for the rest of the transaction, so concurrent postings
// of the same type serialize here and numbers never collide.
func (r *txRepository) NextNumber(ctx context.Context, companyID int64, vt ledger.VoucherType) (int64, error) {
	var seq int64
	err := r.tx.QueryRow(ctx, `INSERT INTO voucher_counters (company_id, voucher_type, value)
VALUES ($1,$2,1)
ON CONFLICT (company_id, voucher_type) DO UPDATE SET value = voucher_counters.value + 1
RETURNING value`, companyID, vt).Scan(&seq)
	return seq, err
}

func (r *txRepository) InsertTransaction(ctx context.Context, txn Transaction) (Transaction, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO transactions
(company_id, number, date, voucher_type, description, reference_type, reference_id, status, total_debit, total_credit, reverses_id)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
RETURNING id, created_at, updated_at`,
		txn.CompanyID, txn.Number, txn.Date, txn.VoucherType, txn.Description,
		txn.ReferenceType, txn.ReferenceID, txn.Status, txn.TotalDebit, txn.TotalCredit, txn.ReversesID)
	if err := row.Scan(&txn.ID, &txn.CreatedAt, &txn.UpdatedAt); err != nil {
		return Transaction{}, err
	}
	return txn, nil
}

func (r *txRepository) InsertEntries(ctx context.Context, transactionID int64, entries []TransactionEntry) error {
	for _, e := range entries {
		if _, err := r.tx.Exec(ctx, `INSERT INTO transaction_entries
(transaction_id, account_id, debit, credit, description, party_id, party_type, cost_center_id)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			transactionID, e.AccountID, e.Debit, e.Credit, e.Description, e.PartyID, e.PartyType, e.CostCenterID); err != nil {
			return err
		}
	}
	return nil
}

func (r *txRepository) LinkSource(ctx context.Context, companyID int64, refType string, refID uuid.UUID, transactionID int64) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO source_links (company_id, reference_type, reference_id, transaction_id)
VALUES ($1,$2,$3,$4)`, companyID, refType, refID, transactionID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return shared.ErrSourceConflict
		}
		return err
	}
	return nil
}

func (r *txRepository) GetForUpdate(ctx context.Context, companyID, id int64) (Transaction, []TransactionEntry, error) {
	txn, err := scanTransaction(r.tx.QueryRow(ctx,
		`SELECT `+txnColumns+` FROM transactions WHERE company_id=$1 AND id=$2 FOR UPDATE`, companyID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Transaction{}, nil, shared.ErrTransactionNotFound
		}
		return Transaction{}, nil, err
	}
	rows, err := r.tx.Query(ctx, `SELECT id, transaction_id, account_id, debit, credit, description, party_id, party_type, cost_center_id, created_at
FROM transaction_entries WHERE transaction_id=$1 ORDER BY id ASC`, id)
	if err != nil {
		return Transaction{}, nil, err
	}
	defer rows.Close()
	entries, err := collectEntries(rows)
	if err != nil {
		return Transaction{}, nil, err
	}
	return txn, entries, nil
}

func (r *txRepository) UpdateStatus(ctx context.Context, id int64, status ledger.TransactionStatus) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE transactions SET status=$2, updated_at=NOW() WHERE id=$1`, id, status)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrTransactionNotFound
	}
	return nil
}

func (r *txRepository) SetReversal(ctx context.Context, originalID, reversalID int64) error {
	_, err := r.tx.Exec(ctx, `UPDATE transactions SET reversed_by_id=$2, updated_at=NOW() WHERE id=$1`, originalID, reversalID)
	return err
}
