package periods

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryPort defines data access for period locks.
type RepositoryPort interface {
	Insert(ctx context.Context, lock Lock) (Lock, error)
	ListActiveCovering(ctx context.Context, companyID int64, date time.Time) ([]Lock, error)
	List(ctx context.Context, companyID int64) ([]Lock, error)
	Deactivate(ctx context.Context, companyID, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository returns the pgx-backed period lock repository.
func NewRepository(db *pgxpool.Pool) RepositoryPort {
	return &repository{db: db}
}

const lockColumns = `id, company_id, locked_from, locked_to, voucher_types, reason, is_active, created_at, updated_at`

func scanLock(row pgx.Row) (Lock, error) {
	var l Lock
	err := row.Scan(&l.ID, &l.CompanyID, &l.LockedFrom, &l.LockedTo, &l.VoucherTypes, &l.Reason, &l.IsActive, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

func (r *repository) Insert(ctx context.Context, lock Lock) (Lock, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO period_locks (company_id, locked_from, locked_to, voucher_types, reason, is_active)
VALUES ($1,$2,$3,$4,$5,TRUE) RETURNING id, is_active, created_at, updated_at`,
		lock.CompanyID, lock.LockedFrom, lock.LockedTo, lock.VoucherTypes, lock.Reason)
	if err := row.Scan(&lock.ID, &lock.IsActive, &lock.CreatedAt, &lock.UpdatedAt); err != nil {
		return Lock{}, err
	}
	return lock, nil
}

func (r *repository) ListActiveCovering(ctx context.Context, companyID int64, date time.Time) ([]Lock, error) {
	rows, err := r.db.Query(ctx, `SELECT `+lockColumns+` FROM period_locks
WHERE company_id=$1 AND is_active AND locked_from <= $2 AND locked_to >= $2
ORDER BY id ASC`, companyID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func (r *repository) List(ctx context.Context, companyID int64) ([]Lock, error) {
	rows, err := r.db.Query(ctx, `SELECT `+lockColumns+` FROM period_locks
WHERE company_id=$1 ORDER BY locked_from DESC, id DESC`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func collect(rows pgx.Rows) ([]Lock, error) {
	var out []Lock
	for rows.Next() {
		l, err := scanLock(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *repository) Deactivate(ctx context.Context, companyID, id int64) error {
	cmd, err := r.db.Exec(ctx, `UPDATE period_locks SET is_active=FALSE, updated_at=NOW() WHERE company_id=$1 AND id=$2`, companyID, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrLockNotFound
	}
	return nil
}
