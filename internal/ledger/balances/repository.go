package balances

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Sums holds the aggregated debit and credit columns for one account.
type Sums struct {
	Debit  decimal.Decimal
	Credit decimal.Decimal
}

// StatementRow is one ledger line joined with its transaction header.
type StatementRow struct {
	EntryID     int64
	Date        time.Time
	Number      string
	Description string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
}

// RepositoryPort aggregates entries of non-draft transactions. Reversed
// originals stay in the aggregate alongside their reversing transactions,
// so a reversed pair nets to zero instead of double-counting.
type RepositoryPort interface {
	Sums(ctx context.Context, companyID int64, accountIDs []int64, from, to *time.Time) (map[int64]Sums, error)
	StatementRows(ctx context.Context, companyID, accountID int64, from, to *time.Time) ([]StatementRow, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository returns the pgx-backed aggregation repository.
func NewRepository(db *pgxpool.Pool) RepositoryPort {
	return &repository{db: db}
}

func (r *repository) Sums(ctx context.Context, companyID int64, accountIDs []int64, from, to *time.Time) (map[int64]Sums, error) {
	rows, err := r.db.Query(ctx, `SELECT e.account_id, COALESCE(SUM(e.debit),0), COALESCE(SUM(e.credit),0)
FROM transaction_entries e
JOIN transactions t ON t.id = e.transaction_id
WHERE t.company_id = $1
  AND e.account_id = ANY($2)
  AND t.status <> 'DRAFT'
  AND ($3::date IS NULL OR t.date >= $3)
  AND ($4::date IS NULL OR t.date <= $4)
GROUP BY e.account_id`, companyID, accountIDs, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[int64]Sums, len(accountIDs))
	for rows.Next() {
		var id int64
		var s Sums
		if err := rows.Scan(&id, &s.Debit, &s.Credit); err != nil {
			return nil, err
		}
		out[id] = s
	}
	return out, rows.Err()
}

func (r *repository) StatementRows(ctx context.Context, companyID, accountID int64, from, to *time.Time) ([]StatementRow, error) {
	rows, err := r.db.Query(ctx, `SELECT e.id, t.date, t.number, COALESCE(NULLIF(e.description,''), t.description), e.debit, e.credit
FROM transaction_entries e
JOIN transactions t ON t.id = e.transaction_id
WHERE t.company_id = $1
  AND e.account_id = $2
  AND t.status <> 'DRAFT'
  AND ($3::date IS NULL OR t.date >= $3)
  AND ($4::date IS NULL OR t.date <= $4)
ORDER BY t.date ASC, e.id ASC`, companyID, accountID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []StatementRow
	for rows.Next() {
		var row StatementRow
		if err := rows.Scan(&row.EntryID, &row.Date, &row.Number, &row.Description, &row.Debit, &row.Credit); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
