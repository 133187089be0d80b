package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/meridian-erp/meridian-ledger/internal/jobs"
	"github.com/meridian-erp/meridian-ledger/internal/recurring"
)

// RecurringRunner materializes due schedules across companies.
type RecurringRunner struct {
	pool    *pgxpool.Pool
	service *recurring.Service
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewRecurringRunner constructs the runner.
func NewRecurringRunner(pool *pgxpool.Pool, service *recurring.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *RecurringRunner {
	return &RecurringRunner{pool: pool, service: service, logger: logger, metrics: metrics}
}

// Handle processes TaskRecurringProcess tasks.
func (r *RecurringRunner) Handle(ctx context.Context, t *asynq.Task) error {
	var payload RecurringProcessPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	tracker := r.metrics.Track("recurring_process")
	return tracker.End(r.run(ctx, payload.CompanyID))
}

func (r *RecurringRunner) run(ctx context.Context, companyID int64) error {
	companies := []int64{companyID}
	if companyID == 0 {
		var err error
		companies, err = r.companiesWithDueSchedules(ctx)
		if err != nil {
			return err
		}
	}
	for _, id := range companies {
		n, err := r.service.ProcessDue(ctx, id, 0)
		if err != nil {
			r.logger.Error("recurring run failed",
				slog.Int64("company_id", id),
				slog.Int("processed", n),
				slog.Any("error", err))
			return err
		}
		if n > 0 {
			r.logger.Info("recurring run completed",
				slog.Int64("company_id", id),
				slog.Int("processed", n))
		}
	}
	return nil
}

func (r *RecurringRunner) companiesWithDueSchedules(ctx context.Context) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT company_id
FROM recurring_transactions
WHERE is_active AND auto_create AND next_date <= now()`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
