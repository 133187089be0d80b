package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	jobmetrics "github.com/meridian-erp/meridian-ledger/internal/jobs"
)

// GLIntegrityScanner verifies that every company's non-draft entries still
// sum to equal debit and credit columns. A mismatch means a posting bug or
// manual tampering; the job fails loudly so the alert fires.
type GLIntegrityScanner struct {
	pool    *pgxpool.Pool
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewGLIntegrityScanner constructs the scanner.
func NewGLIntegrityScanner(pool *pgxpool.Pool, logger *slog.Logger, metrics *jobmetrics.Metrics) *GLIntegrityScanner {
	return &GLIntegrityScanner{pool: pool, logger: logger, metrics: metrics}
}

// Handle processes TaskGLIntegrity tasks.
func (s *GLIntegrityScanner) Handle(ctx context.Context, _ *asynq.Task) error {
	tracker := s.metrics.Track("gl_integrity")
	return tracker.End(s.scan(ctx))
}

func (s *GLIntegrityScanner) scan(ctx context.Context) error {
	rows, err := s.pool.Query(ctx, `SELECT t.company_id, COALESCE(SUM(e.debit),0), COALESCE(SUM(e.credit),0)
FROM transaction_entries e
JOIN transactions t ON t.id = e.transaction_id
WHERE t.status <> 'DRAFT'
GROUP BY t.company_id
ORDER BY t.company_id`)
	if err != nil {
		return err
	}
	defer rows.Close()

	var unbalanced []int64
	for rows.Next() {
		var companyID int64
		var debit, credit decimal.Decimal
		if err := rows.Scan(&companyID, &debit, &credit); err != nil {
			return err
		}
		if !debit.Equal(credit) {
			unbalanced = append(unbalanced, companyID)
			s.logger.Error("ledger out of balance",
				slog.Int64("company_id", companyID),
				slog.String("total_debit", debit.String()),
				slog.String("total_credit", credit.String()))
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(unbalanced) > 0 {
		return fmt.Errorf("gl integrity: %d companies out of balance", len(unbalanced))
	}
	s.logger.Info("gl integrity scan clean")
	return nil
}
