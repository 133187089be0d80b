// Package jobs runs the background workloads: materializing due recurring
// schedules and scanning the ledger for integrity drift.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskRecurringProcess materializes due recurring schedules.
	TaskRecurringProcess = "recurring:process"
	// TaskGLIntegrity verifies every company's ledger still balances.
	TaskGLIntegrity = "gl:integrity"
)

// RecurringProcessPayload scopes a recurring run. CompanyID zero means all
// companies.
type RecurringProcessPayload struct {
	CompanyID int64 `json:"company_id"`
}

// NewRecurringProcessTask constructs the recurring-run task.
func NewRecurringProcessTask(payload RecurringProcessPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRecurringProcess, data), nil
}

// NewGLIntegrityTask constructs the ledger integrity scan task.
func NewGLIntegrityTask() *asynq.Task {
	return asynq.NewTask(TaskGLIntegrity, nil)
}
