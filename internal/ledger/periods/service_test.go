package periods

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/meridian-erp/meridian-ledger/internal/ledger"
	"github.com/meridian-erp/meridian-ledger/internal/ledger/shared"
)

type memoryRepo struct {
	nextID int64
	locks  map[int64]Lock
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{nextID: 1, locks: make(map[int64]Lock)}
}

func (m *memoryRepo) Insert(_ context.Context, lock Lock) (Lock, error) {
	lock.ID = m.nextID
	m.nextID++
	lock.IsActive = true
	lock.CreatedAt = time.Now()
	lock.UpdatedAt = lock.CreatedAt
	m.locks[lock.ID] = lock
	return lock, nil
}

func (m *memoryRepo) ListActiveCovering(_ context.Context, companyID int64, date time.Time) ([]Lock, error) {
	var out []Lock
	for id := int64(1); id < m.nextID; id++ {
		l, ok := m.locks[id]
		if !ok || l.CompanyID != companyID || !l.IsActive {
			continue
		}
		if date.Before(l.LockedFrom) || date.After(l.LockedTo) {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (m *memoryRepo) List(_ context.Context, companyID int64) ([]Lock, error) {
	var out []Lock
	for id := int64(1); id < m.nextID; id++ {
		if l, ok := m.locks[id]; ok && l.CompanyID == companyID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memoryRepo) Deactivate(_ context.Context, companyID, id int64) error {
	l, ok := m.locks[id]
	if !ok || l.CompanyID != companyID {
		return ErrLockNotFound
	}
	l.IsActive = false
	m.locks[id] = l
	return nil
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestGSTLockScopedToTaxVouchers(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	ctx := context.Background()

	_, err := svc.LockGSTPeriod(ctx, 1, time.March, 2024, "", 7)
	require.NoError(t, err)

	inside := day("2024-03-15")
	err = svc.ValidateTransactionDate(ctx, 1, inside, ledger.VoucherSales)
	require.ErrorIs(t, err, shared.ErrPeriodLocked)
	err = svc.ValidateTransactionDate(ctx, 1, inside, ledger.VoucherCreditNote)
	require.ErrorIs(t, err, shared.ErrPeriodLocked)

	// Non-tax vouchers stay open during a GST lock.
	require.NoError(t, svc.ValidateTransactionDate(ctx, 1, inside, ledger.VoucherJournal))
	require.NoError(t, svc.ValidateTransactionDate(ctx, 1, inside, ledger.VoucherReceipt))

	// Outside the month everything is open.
	require.NoError(t, svc.ValidateTransactionDate(ctx, 1, day("2024-04-01"), ledger.VoucherSales))
}

func TestLockFinancialYearSpansAprilToMarch(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	ctx := context.Background()

	lock, err := svc.LockFinancialYear(ctx, 1, 2023, "", 7)
	require.NoError(t, err)
	require.Equal(t, day("2023-04-01"), lock.LockedFrom)
	require.Equal(t, day("2024-03-31"), lock.LockedTo)
	require.Contains(t, lock.Reason, "2023-2024")

	require.ErrorIs(t, svc.ValidateTransactionDate(ctx, 1, day("2023-04-01"), ledger.VoucherJournal), shared.ErrPeriodLocked)
	require.ErrorIs(t, svc.ValidateTransactionDate(ctx, 1, day("2024-03-31"), ledger.VoucherPayment), shared.ErrPeriodLocked)
	require.NoError(t, svc.ValidateTransactionDate(ctx, 1, day("2024-04-01"), ledger.VoucherJournal))
	require.NoError(t, svc.ValidateTransactionDate(ctx, 1, day("2023-03-31"), ledger.VoucherJournal))
}

func TestOverlappingLocksAnyMatchBlocks(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	ctx := context.Background()

	_, err := svc.LockGSTPeriod(ctx, 1, time.June, 2024, "", 7)
	require.NoError(t, err)
	full, err := svc.CreateLock(ctx, Lock{
		CompanyID:  1,
		LockedFrom: day("2024-06-10"),
		LockedTo:   day("2024-06-20"),
		Reason:     "stock audit",
	}, 7)
	require.NoError(t, err)

	// Journal blocked only where the unrestricted lock overlaps.
	require.ErrorIs(t, svc.ValidateTransactionDate(ctx, 1, day("2024-06-15"), ledger.VoucherJournal), shared.ErrPeriodLocked)
	require.NoError(t, svc.ValidateTransactionDate(ctx, 1, day("2024-06-05"), ledger.VoucherJournal))

	// Deactivating the audit lock reopens journals; GST types stay locked.
	require.NoError(t, svc.Deactivate(ctx, 1, full.ID, 7))
	require.NoError(t, svc.ValidateTransactionDate(ctx, 1, day("2024-06-15"), ledger.VoucherJournal))
	require.ErrorIs(t, svc.ValidateTransactionDate(ctx, 1, day("2024-06-15"), ledger.VoucherSales), shared.ErrPeriodLocked)
}

func TestCreateLockValidation(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	ctx := context.Background()

	_, err := svc.CreateLock(ctx, Lock{CompanyID: 1, LockedFrom: day("2024-06-10"), LockedTo: day("2024-06-01")}, 7)
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.CreateLock(ctx, Lock{
		CompanyID: 1, LockedFrom: day("2024-06-01"), LockedTo: day("2024-06-30"),
		VoucherTypes: []string{"INVOICE"},
	}, 7)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestLocksAreTenantScoped(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	ctx := context.Background()

	_, err := svc.LockFinancialYear(ctx, 1, 2023, "", 7)
	require.NoError(t, err)

	require.NoError(t, svc.ValidateTransactionDate(ctx, 2, day("2023-06-15"), ledger.VoucherJournal))
	require.ErrorIs(t, svc.Deactivate(ctx, 2, 1, 7), ErrLockNotFound)
}

func TestIsLockedReturnsReason(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	ctx := context.Background()

	_, err := svc.LockGSTPeriod(ctx, 1, time.March, 2024, "GSTR-3B filed", 7)
	require.NoError(t, err)

	lock, reason, err := svc.IsLocked(ctx, 1, day("2024-03-15"), ledger.VoucherSales)
	require.NoError(t, err)
	require.NotNil(t, lock)
	require.Contains(t, reason, "2024-03-01 to 2024-03-31")
	require.Contains(t, reason, "GSTR-3B filed")
}
