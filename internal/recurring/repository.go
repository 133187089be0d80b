package recurring

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository stores schedule templates.
type Repository interface {
	Insert(ctx context.Context, s *Schedule) error
	Get(ctx context.Context, companyID, id int64) (Schedule, error)
	ListDue(ctx context.Context, companyID int64, asOf time.Time) ([]Schedule, error)
	List(ctx context.Context, companyID int64, activeOnly bool) ([]Schedule, error)
	Advance(ctx context.Context, s Schedule) error
	SetActive(ctx context.Context, companyID, id int64, active bool) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository returns the pgx-backed schedule store.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const scheduleColumns = `id, company_id, name, voucher_type, amount, frequency, category,
start_date, end_date, next_date, day_of_month, day_of_week,
total_occurrences, occurrences_created, auto_create, is_active,
debit_account_id, credit_account_id, created_by, created_at, updated_at`

func (r *repository) Insert(ctx context.Context, s *Schedule) error {
	return r.db.QueryRow(ctx, `INSERT INTO recurring_transactions
(company_id, name, voucher_type, amount, frequency, category, start_date, end_date, next_date,
 day_of_month, day_of_week, total_occurrences, occurrences_created, auto_create, is_active,
 debit_account_id, credit_account_id, created_by)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
RETURNING id, created_at, updated_at`,
		s.CompanyID, s.Name, s.VoucherType, s.Amount, s.Frequency, s.Category,
		s.StartDate, s.EndDate, s.NextDate, s.DayOfMonth, s.DayOfWeek,
		s.TotalOccurrence, s.OccurrencesMade, s.AutoCreate, s.IsActive,
		s.DebitAccountID, s.CreditAccountID, s.CreatedBy,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

func scanSchedule(row pgx.Row) (Schedule, error) {
	var s Schedule
	err := row.Scan(&s.ID, &s.CompanyID, &s.Name, &s.VoucherType, &s.Amount, &s.Frequency, &s.Category,
		&s.StartDate, &s.EndDate, &s.NextDate, &s.DayOfMonth, &s.DayOfWeek,
		&s.TotalOccurrence, &s.OccurrencesMade, &s.AutoCreate, &s.IsActive,
		&s.DebitAccountID, &s.CreditAccountID, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Schedule{}, ErrScheduleNotFound
	}
	return s, err
}

func (r *repository) Get(ctx context.Context, companyID, id int64) (Schedule, error) {
	return scanSchedule(r.db.QueryRow(ctx, `SELECT `+scheduleColumns+`
FROM recurring_transactions WHERE company_id = $1 AND id = $2`, companyID, id))
}

func (r *repository) ListDue(ctx context.Context, companyID int64, asOf time.Time) ([]Schedule, error) {
	return r.queryMany(ctx, `SELECT `+scheduleColumns+`
FROM recurring_transactions
WHERE company_id = $1 AND is_active AND auto_create AND next_date <= $2
ORDER BY next_date ASC, id ASC`, companyID, asOf)
}

func (r *repository) List(ctx context.Context, companyID int64, activeOnly bool) ([]Schedule, error) {
	return r.queryMany(ctx, `SELECT `+scheduleColumns+`
FROM recurring_transactions
WHERE company_id = $1 AND ($2 = false OR is_active)
ORDER BY id ASC`, companyID, activeOnly)
}

func (r *repository) queryMany(ctx context.Context, sql string, args ...any) ([]Schedule, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Advance persists the post-materialization state in one statement.
func (r *repository) Advance(ctx context.Context, s Schedule) error {
	tag, err := r.db.Exec(ctx, `UPDATE recurring_transactions
SET next_date = $3, occurrences_created = $4, is_active = $5, updated_at = now()
WHERE company_id = $1 AND id = $2`,
		s.CompanyID, s.ID, s.NextDate, s.OccurrencesMade, s.IsActive)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrScheduleNotFound
	}
	return nil
}

func (r *repository) SetActive(ctx context.Context, companyID, id int64, active bool) error {
	tag, err := r.db.Exec(ctx, `UPDATE recurring_transactions
SET is_active = $3, updated_at = now()
WHERE company_id = $1 AND id = $2`, companyID, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrScheduleNotFound
	}
	return nil
}
