package recurring

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/meridian-erp/meridian-ledger/internal/ledger/journals"
)

type memoryRepo struct {
	nextID    int64
	schedules map[int64]Schedule
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{nextID: 1, schedules: make(map[int64]Schedule)}
}

func (m *memoryRepo) Insert(_ context.Context, s *Schedule) error {
	s.ID = m.nextID
	m.nextID++
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	m.schedules[s.ID] = *s
	return nil
}

func (m *memoryRepo) Get(_ context.Context, companyID, id int64) (Schedule, error) {
	s, ok := m.schedules[id]
	if !ok || s.CompanyID != companyID {
		return Schedule{}, ErrScheduleNotFound
	}
	return s, nil
}

func (m *memoryRepo) ListDue(_ context.Context, companyID int64, asOf time.Time) ([]Schedule, error) {
	var out []Schedule
	for _, s := range m.schedules {
		if s.CompanyID == companyID && s.IsActive && s.AutoCreate && !s.NextDate.After(asOf) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memoryRepo) List(_ context.Context, companyID int64, activeOnly bool) ([]Schedule, error) {
	var out []Schedule
	for _, s := range m.schedules {
		if s.CompanyID == companyID && (!activeOnly || s.IsActive) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memoryRepo) Advance(_ context.Context, s Schedule) error {
	if _, ok := m.schedules[s.ID]; !ok {
		return ErrScheduleNotFound
	}
	m.schedules[s.ID] = s
	return nil
}

func (m *memoryRepo) SetActive(_ context.Context, companyID, id int64, active bool) error {
	s, ok := m.schedules[id]
	if !ok || s.CompanyID != companyID {
		return ErrScheduleNotFound
	}
	s.IsActive = active
	m.schedules[id] = s
	return nil
}

type recordingPoster struct {
	posted []journals.VoucherInput
}

func (p *recordingPoster) PostSimpleJournal(_ context.Context, companyID int64, date time.Time, debitAccountID, creditAccountID int64, amount decimal.Decimal, description string, referenceType string, referenceID *uuid.UUID, actorID int64) (journals.Transaction, error) {
	p.posted = append(p.posted, journals.VoucherInput{
		CompanyID:   companyID,
		Date:        date,
		Description: description,
		Lines: []journals.LineInput{
			{AccountID: debitAccountID, Debit: amount},
			{AccountID: creditAccountID, Credit: amount},
		},
	})
	return journals.Transaction{ID: int64(len(p.posted)), CompanyID: companyID, Date: date}, nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestService(t *testing.T, now time.Time) (*Service, *memoryRepo, *recordingPoster) {
	t.Helper()
	repo := newMemoryRepo()
	poster := &recordingPoster{}
	svc := NewService(repo, nil, poster, nil).WithNow(fixedClock(now))
	return svc, repo, poster
}

func ptr[T any](v T) *T { return &v }

func TestProcessAdvancesAndBlocksImmediateRepeat(t *testing.T) {
	ctx := context.Background()
	now := date(2024, time.April, 10)
	svc, _, poster := newTestService(t, now)

	sched, err := svc.Create(ctx, CreateInput{
		CompanyID:       1,
		Name:            "Office rent",
		Amount:          decimal.NewFromInt(25000),
		Frequency:       FrequencyMonthly,
		StartDate:       date(2024, time.April, 5),
		DayOfMonth:      ptr(5),
		AutoCreate:      true,
		DebitAccountID:  ptr(int64(10)),
		CreditAccountID: ptr(int64(11)),
		ActorID:         7,
	})
	require.NoError(t, err)

	txn, err := svc.Process(ctx, 1, sched.ID, 7)
	require.NoError(t, err)
	require.Equal(t, date(2024, time.April, 5), txn.Date)
	require.Len(t, poster.posted, 1)

	// The advance moved next_date past now, so the same occurrence
	// cannot materialize twice.
	_, err = svc.Process(ctx, 1, sched.ID, 7)
	require.ErrorIs(t, err, ErrNotDue)
	require.Len(t, poster.posted, 1)

	after, err := svc.Get(ctx, 1, sched.ID)
	require.NoError(t, err)
	require.Equal(t, date(2024, time.May, 5), after.NextDate)
	require.Equal(t, 1, after.OccurrencesMade)
	require.True(t, after.IsActive)
}

func TestProcessDeactivatesAtOccurrenceLimit(t *testing.T) {
	ctx := context.Background()
	svc, _, poster := newTestService(t, date(2024, time.December, 31))

	sched, err := svc.Create(ctx, CreateInput{
		CompanyID:       1,
		Name:            "License fee",
		Amount:          decimal.NewFromInt(1200),
		Frequency:       FrequencyMonthly,
		StartDate:       date(2024, time.January, 15),
		DayOfMonth:      ptr(15),
		TotalOccurrence: ptr(3),
		AutoCreate:      true,
		DebitAccountID:  ptr(int64(10)),
		CreditAccountID: ptr(int64(11)),
	})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := svc.Process(ctx, 1, sched.ID, 7)
		require.NoError(t, err)
	}
	require.Len(t, poster.posted, 3)

	after, err := svc.Get(ctx, 1, sched.ID)
	require.NoError(t, err)
	require.False(t, after.IsActive)
	require.Equal(t, 3, after.OccurrencesMade)

	_, err = svc.Process(ctx, 1, sched.ID, 7)
	require.ErrorIs(t, err, ErrScheduleInactive)
}

func TestProcessDeactivatesPastEndDate(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, date(2024, time.June, 30))

	sched, err := svc.Create(ctx, CreateInput{
		CompanyID:       1,
		Name:            "Short retainer",
		Amount:          decimal.NewFromInt(500),
		Frequency:       FrequencyMonthly,
		StartDate:       date(2024, time.June, 1),
		EndDate:         ptr(date(2024, time.June, 30)),
		DayOfMonth:      ptr(1),
		AutoCreate:      true,
		DebitAccountID:  ptr(int64(10)),
		CreditAccountID: ptr(int64(11)),
	})
	require.NoError(t, err)

	_, err = svc.Process(ctx, 1, sched.ID, 7)
	require.NoError(t, err)

	after, err := svc.Get(ctx, 1, sched.ID)
	require.NoError(t, err)
	require.False(t, after.IsActive)
}

func TestListDueFiltersManualAndFuture(t *testing.T) {
	ctx := context.Background()
	now := date(2024, time.April, 10)
	svc, _, _ := newTestService(t, now)

	mk := func(name string, start time.Time, auto bool) {
		_, err := svc.Create(ctx, CreateInput{
			CompanyID:       1,
			Name:            name,
			Amount:          decimal.NewFromInt(100),
			Frequency:       FrequencyMonthly,
			StartDate:       start,
			AutoCreate:      auto,
			DebitAccountID:  ptr(int64(10)),
			CreditAccountID: ptr(int64(11)),
		})
		require.NoError(t, err)
	}
	mk("due", date(2024, time.April, 1), true)
	mk("manual", date(2024, time.April, 1), false)
	mk("future", date(2024, time.May, 1), true)

	due, err := svc.ListDue(ctx, 1)
	require.NoError(t, err)
	require.Len(t, due, 1)
	require.Equal(t, "due", due[0].Name)
}

func TestProcessDueBatch(t *testing.T) {
	ctx := context.Background()
	svc, _, poster := newTestService(t, date(2024, time.April, 10))

	for _, name := range []string{"a", "b"} {
		_, err := svc.Create(ctx, CreateInput{
			CompanyID:       1,
			Name:            name,
			Amount:          decimal.NewFromInt(100),
			Frequency:       FrequencyMonthly,
			StartDate:       date(2024, time.April, 1),
			AutoCreate:      true,
			DebitAccountID:  ptr(int64(10)),
			CreditAccountID: ptr(int64(11)),
		})
		require.NoError(t, err)
	}

	n, err := svc.ProcessDue(ctx, 1, 7)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Len(t, poster.posted, 2)

	n, err = svc.ProcessDue(ctx, 1, 7)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestPauseAndResume(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, date(2024, time.April, 10))

	sched, err := svc.Create(ctx, CreateInput{
		CompanyID:       1,
		Name:            "Hosting",
		Amount:          decimal.NewFromInt(900),
		Frequency:       FrequencyMonthly,
		StartDate:       date(2024, time.April, 1),
		AutoCreate:      true,
		DebitAccountID:  ptr(int64(10)),
		CreditAccountID: ptr(int64(11)),
	})
	require.NoError(t, err)

	require.NoError(t, svc.Pause(ctx, 1, sched.ID))
	_, err = svc.Process(ctx, 1, sched.ID, 7)
	require.ErrorIs(t, err, ErrScheduleInactive)

	require.NoError(t, svc.Resume(ctx, 1, sched.ID))
	_, err = svc.Process(ctx, 1, sched.ID, 7)
	require.NoError(t, err)
}
