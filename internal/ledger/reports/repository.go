package reports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-erp/meridian-ledger/internal/ledger/accounts"
)

// RepositoryPort fetches the aggregated account rows the report builders
// consume. Same aggregation rules as the balance engine: non-draft
// transactions only, so reversed pairs net out.
type RepositoryPort interface {
	BalanceRows(ctx context.Context, companyID int64, from, to *time.Time) ([]Row, error)
	DayBookRows(ctx context.Context, companyID int64, date time.Time) ([]DayBookEntry, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository returns the pgx-backed report row repository.
func NewRepository(db *pgxpool.Pool) RepositoryPort {
	return &repository{db: db}
}

func (r *repository) BalanceRows(ctx context.Context, companyID int64, from, to *time.Time) ([]Row, error) {
	rows, err := r.db.Query(ctx, `SELECT a.id, a.code, a.name, a.type, COALESCE(SUM(e.debit),0), COALESCE(SUM(e.credit),0)
FROM transaction_entries e
JOIN transactions t ON t.id = e.transaction_id
JOIN accounts a ON a.id = e.account_id
WHERE t.company_id = $1
  AND t.status <> 'DRAFT'
  AND ($2::date IS NULL OR t.date >= $2)
  AND ($3::date IS NULL OR t.date <= $3)
GROUP BY a.id, a.code, a.name, a.type
ORDER BY a.code`, companyID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Row
	for rows.Next() {
		var row Row
		if err := rows.Scan(&row.AccountID, &row.Code, &row.Name, &row.Type, &row.Debit, &row.Credit); err != nil {
			return nil, err
		}
		classify(&row)
		out = append(out, row)
	}
	return out, rows.Err()
}

// classify flags money-movement accounts by their system chart codes so the
// cash flow builder can stay code-agnostic.
func classify(row *Row) {
	switch row.Code {
	case accounts.CodeCash, accounts.CodeBank:
		row.Cash = true
	case accounts.CodeReceivable:
		row.Receivable = true
	case accounts.CodePayable:
		row.Payable = true
	}
}

func (r *repository) DayBookRows(ctx context.Context, companyID int64, date time.Time) ([]DayBookEntry, error) {
	rows, err := r.db.Query(ctx, `SELECT t.id, t.number, t.voucher_type, t.status, COALESCE(NULLIF(e.description,''), t.description), a.code, a.name, e.party_id, e.debit, e.credit
FROM transaction_entries e
JOIN transactions t ON t.id = e.transaction_id
JOIN accounts a ON a.id = e.account_id
WHERE t.company_id = $1
  AND t.status <> 'DRAFT'
  AND t.date = $2::date
ORDER BY t.id ASC, e.id ASC`, companyID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []DayBookEntry
	for rows.Next() {
		var e DayBookEntry
		if err := rows.Scan(&e.TransactionID, &e.Number, &e.VoucherType, &e.Status, &e.Description, &e.AccountCode, &e.AccountName, &e.PartyID, &e.Debit, &e.Credit); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
