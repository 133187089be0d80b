package recurring

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-ledger/internal/ledger"
	"github.com/meridian-erp/meridian-ledger/internal/ledger/accounts"
	"github.com/meridian-erp/meridian-ledger/internal/ledger/journals"
	"github.com/meridian-erp/meridian-ledger/internal/ledger/shared"
)

// Poster materializes a due occurrence as a journal voucher.
type Poster interface {
	PostSimpleJournal(ctx context.Context, companyID int64, date time.Time, debitAccountID, creditAccountID int64, amount decimal.Decimal, description string, referenceType string, referenceID *uuid.UUID, actorID int64) (journals.Transaction, error)
}

// Mapper looks up a company-configured account pair for a category. A nil
// Mapper (or a miss) falls back to the generic income/expense pair.
type Mapper interface {
	Accounts(ctx context.Context, companyID int64, category Category) (debitID, creditID int64, ok bool, err error)
}

// Service runs the schedule engine.
type Service struct {
	repo     Repository
	accounts *accounts.Service
	poster   Poster
	mapper   Mapper
	now      func() time.Time
}

// NewService constructs the engine. mapper may be nil.
func NewService(repo Repository, accountSvc *accounts.Service, poster Poster, mapper Mapper) *Service {
	return &Service{repo: repo, accounts: accountSvc, poster: poster, mapper: mapper, now: time.Now}
}

// WithNow overrides the clock, for tests.
func (s *Service) WithNow(now func() time.Time) *Service {
	s.now = now
	return s
}

// CreateInput describes a new standing instruction.
type CreateInput struct {
	CompanyID       int64
	Name            string
	Amount          decimal.Decimal
	Frequency       Frequency
	Category        Category
	StartDate       time.Time
	EndDate         *time.Time
	DayOfMonth      *int
	DayOfWeek       *time.Weekday
	TotalOccurrence *int
	AutoCreate      bool
	DebitAccountID  *int64
	CreditAccountID *int64
	ActorID         int64
}

func (in CreateInput) validate() error {
	switch {
	case in.CompanyID == 0:
		return fmt.Errorf("%w: company is required", shared.ErrValidation)
	case in.Name == "":
		return fmt.Errorf("%w: name is required", shared.ErrValidation)
	case !in.Frequency.Valid():
		return fmt.Errorf("%w: unknown frequency %q", shared.ErrValidation, in.Frequency)
	case !in.Amount.IsPositive():
		return fmt.Errorf("%w: amount must be positive", shared.ErrValidation)
	case in.StartDate.IsZero():
		return fmt.Errorf("%w: start date is required", shared.ErrValidation)
	}
	if in.EndDate != nil && in.EndDate.Before(in.StartDate) {
		return fmt.Errorf("%w: end date precedes start date", shared.ErrValidation)
	}
	if in.TotalOccurrence != nil && *in.TotalOccurrence < 1 {
		return fmt.Errorf("%w: total occurrences must be at least 1", shared.ErrValidation)
	}
	if in.Category != "" && in.Category != CategoryIncome && in.Category != CategoryExpense {
		return fmt.Errorf("%w: unknown category %q", shared.ErrValidation, in.Category)
	}
	if in.Category == "" && (in.DebitAccountID == nil || in.CreditAccountID == nil) {
		return fmt.Errorf("%w: explicit accounts or a category is required", shared.ErrValidation)
	}
	return nil
}

// Create registers a schedule with the first occurrence on the start date.
func (s *Service) Create(ctx context.Context, in CreateInput) (Schedule, error) {
	if err := in.validate(); err != nil {
		return Schedule{}, err
	}
	sched := Schedule{
		CompanyID:       in.CompanyID,
		Name:            in.Name,
		VoucherType:     ledger.VoucherJournal,
		Amount:          ledger.Round2(in.Amount),
		Frequency:       in.Frequency,
		Category:        in.Category,
		StartDate:       in.StartDate,
		EndDate:         in.EndDate,
		NextDate:        in.StartDate,
		DayOfMonth:      in.DayOfMonth,
		DayOfWeek:       in.DayOfWeek,
		TotalOccurrence: in.TotalOccurrence,
		AutoCreate:      in.AutoCreate,
		IsActive:        true,
		DebitAccountID:  in.DebitAccountID,
		CreditAccountID: in.CreditAccountID,
		CreatedBy:       in.ActorID,
	}
	if err := s.repo.Insert(ctx, &sched); err != nil {
		return Schedule{}, err
	}
	return sched, nil
}

// ListDue returns every active auto-create schedule whose next occurrence
// is at or before now.
func (s *Service) ListDue(ctx context.Context, companyID int64) ([]Schedule, error) {
	return s.repo.ListDue(ctx, companyID, s.now())
}

// List returns schedules, optionally only active ones.
func (s *Service) List(ctx context.Context, companyID int64, activeOnly bool) ([]Schedule, error) {
	return s.repo.List(ctx, companyID, activeOnly)
}

func (s *Service) Get(ctx context.Context, companyID, id int64) (Schedule, error) {
	return s.repo.Get(ctx, companyID, id)
}

// Pause suspends materialization without losing schedule state.
func (s *Service) Pause(ctx context.Context, companyID, id int64) error {
	return s.repo.SetActive(ctx, companyID, id, false)
}

// Resume reactivates a paused schedule.
func (s *Service) Resume(ctx context.Context, companyID, id int64) error {
	sched, err := s.repo.Get(ctx, companyID, id)
	if err != nil {
		return err
	}
	if sched.Exhausted() {
		return fmt.Errorf("%w: occurrence or end-date limit reached", ErrScheduleInactive)
	}
	return s.repo.SetActive(ctx, companyID, id, true)
}

// Process materializes the schedule's current occurrence as a journal
// voucher dated NextDate, then advances the schedule. Once advanced, an
// immediate second call finds the occurrence no longer due and fails with
// ErrNotDue instead of double-posting.
func (s *Service) Process(ctx context.Context, companyID, id int64, actorID int64) (journals.Transaction, error) {
	sched, err := s.repo.Get(ctx, companyID, id)
	if err != nil {
		return journals.Transaction{}, err
	}
	if !sched.IsActive {
		return journals.Transaction{}, ErrScheduleInactive
	}
	if sched.NextDate.After(s.now()) {
		return journals.Transaction{}, fmt.Errorf("%w: next occurrence is %s", ErrNotDue, sched.NextDate.Format("2006-01-02"))
	}

	debitID, creditID, err := s.resolveAccounts(ctx, sched)
	if err != nil {
		return journals.Transaction{}, err
	}

	desc := fmt.Sprintf("%s (recurring, %s)", sched.Name, sched.NextDate.Format("2006-01-02"))
	txn, err := s.poster.PostSimpleJournal(ctx, companyID, sched.NextDate, debitID, creditID, sched.Amount, desc, "recurring", nil, actorID)
	if err != nil {
		return journals.Transaction{}, err
	}

	sched.NextDate = NextDate(sched.NextDate, sched.Frequency, sched.DayOfMonth, sched.DayOfWeek)
	sched.OccurrencesMade++
	if sched.Exhausted() {
		sched.IsActive = false
	}
	if err := s.repo.Advance(ctx, sched); err != nil {
		return journals.Transaction{}, err
	}
	return txn, nil
}

// ProcessDue runs every due schedule for the company, returning how many
// materialized. The first failure stops the run so the batch job surfaces
// it rather than half-logging it.
func (s *Service) ProcessDue(ctx context.Context, companyID, actorID int64) (int, error) {
	due, err := s.ListDue(ctx, companyID)
	if err != nil {
		return 0, err
	}
	processed := 0
	for _, sched := range due {
		if _, err := s.Process(ctx, companyID, sched.ID, actorID); err != nil {
			return processed, fmt.Errorf("recurring: schedule %d: %w", sched.ID, err)
		}
		processed++
	}
	return processed, nil
}

// resolveAccounts picks the ledger pair: explicit template accounts win,
// then the company's category mapping, then the generic income/expense
// pair against cash.
func (s *Service) resolveAccounts(ctx context.Context, sched Schedule) (int64, int64, error) {
	if sched.DebitAccountID != nil && sched.CreditAccountID != nil {
		return *sched.DebitAccountID, *sched.CreditAccountID, nil
	}
	if s.mapper != nil {
		debitID, creditID, ok, err := s.mapper.Accounts(ctx, sched.CompanyID, sched.Category)
		if err != nil {
			return 0, 0, err
		}
		if ok {
			return debitID, creditID, nil
		}
	}
	resolver := accounts.NewResolver(s.accounts, sched.CompanyID)
	cash, err := resolver.System(ctx, accounts.CodeCash)
	if err != nil {
		return 0, 0, err
	}
	if sched.Category == CategoryIncome {
		income, err := resolver.System(ctx, accounts.CodeOtherIncome)
		if err != nil {
			return 0, 0, err
		}
		return cash.ID, income.ID, nil
	}
	expense, err := resolver.System(ctx, accounts.CodeOtherExpense)
	if err != nil {
		return 0, 0, err
	}
	return expense.ID, cash.ID, nil
}
