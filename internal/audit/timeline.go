package audit

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Timeline reads the mutation history of a single entity, newest first.
type Timeline struct {
	pool *pgxpool.Pool
}

// NewTimeline returns a timeline reader.
func NewTimeline(pool *pgxpool.Pool) *Timeline {
	return &Timeline{pool: pool}
}

// For returns the audit entries for one entity.
func (t *Timeline) For(ctx context.Context, companyID int64, entity, entityID string, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := t.pool.Query(ctx, `SELECT id, company_id, actor_id, action, entity, entity_id, meta, occurred_at
FROM audit_logs WHERE company_id=$1 AND entity=$2 AND entity_id=$3
ORDER BY occurred_at DESC, id DESC LIMIT $4`, companyID, entity, entityID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var e Entry
		var meta []byte
		if err := rows.Scan(&e.ID, &e.CompanyID, &e.ActorID, &e.Action, &e.Entity, &e.EntityID, &meta, &e.At); err != nil {
			return nil, err
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &e.Meta); err != nil {
				return nil, err
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
