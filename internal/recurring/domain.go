// Package recurring runs the standing-instruction engine: templates that
// materialize journal vouchers on a schedule. Processing is driven by an
// external caller, not an in-process timer.
package recurring

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-ledger/internal/ledger"
)

// Frequency is how often a schedule fires.
type Frequency string

const (
	FrequencyDaily      Frequency = "DAILY"
	FrequencyWeekly     Frequency = "WEEKLY"
	FrequencyBiweekly   Frequency = "BIWEEKLY"
	FrequencyMonthly    Frequency = "MONTHLY"
	FrequencyQuarterly  Frequency = "QUARTERLY"
	FrequencyHalfYearly Frequency = "HALF_YEARLY"
	FrequencyYearly     Frequency = "YEARLY"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly,
		FrequencyQuarterly, FrequencyHalfYearly, FrequencyYearly:
		return true
	}
	return false
}

// Category classifies templates with no explicit accounts so the engine
// can pick a ledger pair for them.
type Category string

const (
	CategoryIncome  Category = "INCOME"
	CategoryExpense Category = "EXPENSE"
)

var (
	ErrScheduleNotFound = errors.New("recurring: schedule not found")
	ErrScheduleInactive = errors.New("recurring: schedule inactive")
	ErrNotDue           = errors.New("recurring: schedule not due")
)

// Schedule is a standing-instruction template. NextDate always points at
// the next unprocessed occurrence; it advances before any subsequent
// due-check can re-read it, which is what makes processing once per
// occurrence safe.
type Schedule struct {
	ID              int64
	CompanyID       int64
	Name            string
	VoucherType     ledger.VoucherType
	Amount          decimal.Decimal
	Frequency       Frequency
	Category        Category
	StartDate       time.Time
	EndDate         *time.Time
	NextDate        time.Time
	DayOfMonth      *int
	DayOfWeek       *time.Weekday
	TotalOccurrence *int
	OccurrencesMade int
	AutoCreate      bool
	IsActive        bool
	DebitAccountID  *int64
	CreditAccountID *int64
	CreatedBy       int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Exhausted reports whether the schedule has hit an occurrence or
// end-date limit and must go inactive.
func (s Schedule) Exhausted() bool {
	if s.TotalOccurrence != nil && s.OccurrencesMade >= *s.TotalOccurrence {
		return true
	}
	if s.EndDate != nil && s.NextDate.After(*s.EndDate) {
		return true
	}
	return false
}
