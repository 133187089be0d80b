package periods

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/meridian-erp/meridian-ledger/internal/audit"
	"github.com/meridian-erp/meridian-ledger/internal/ledger"
	"github.com/meridian-erp/meridian-ledger/internal/ledger/shared"
)

// ErrLockNotFound indicates a missing period lock.
var ErrLockNotFound = errors.New("periods: lock not found")

// GST voucher types locked after a tax return is filed.
var gstVoucherTypes = []string{
	string(ledger.VoucherSales),
	string(ledger.VoucherPurchase),
	string(ledger.VoucherDebitNote),
	string(ledger.VoucherCreditNote),
}

// AuditPort records lock lifecycle events.
type AuditPort interface {
	Record(ctx context.Context, entry audit.Entry) error
}

// Service validates transaction dates against period locks and manages the
// locks themselves. It is the journals service's PeriodGuard.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
	now   func() time.Time
}

// NewService constructs the period lock service.
func NewService(repo RepositoryPort, auditor AuditPort) *Service {
	return &Service{repo: repo, audit: auditor, now: time.Now}
}

// IsLocked reports whether any active lock blocks the date for the voucher
// type, returning the matching lock and a human-readable reason.
func (s *Service) IsLocked(ctx context.Context, companyID int64, date time.Time, vt ledger.VoucherType) (*Lock, string, error) {
	locks, err := s.repo.ListActiveCovering(ctx, companyID, date)
	if err != nil {
		return nil, "", err
	}
	for i := range locks {
		if locks[i].Covers(date, vt) {
			lock := locks[i]
			reason := fmt.Sprintf("period %s to %s is locked",
				lock.LockedFrom.Format("2006-01-02"), lock.LockedTo.Format("2006-01-02"))
			if lock.Reason != "" {
				reason += ": " + lock.Reason
			}
			return &lock, reason, nil
		}
	}
	return nil, "", nil
}

// ValidateTransactionDate rejects postings dated inside a matching lock.
// This is the pre-condition check run before a voucher commits.
func (s *Service) ValidateTransactionDate(ctx context.Context, companyID int64, date time.Time, vt ledger.VoucherType) error {
	lock, reason, err := s.IsLocked(ctx, companyID, date, vt)
	if err != nil {
		return err
	}
	if lock != nil {
		return fmt.Errorf("%w: %s", shared.ErrPeriodLocked, reason)
	}
	return nil
}

// CreateLock records a new active lock. Overlapping locks are allowed;
// any match blocks posting.
func (s *Service) CreateLock(ctx context.Context, lock Lock, actorID int64) (Lock, error) {
	if lock.LockedTo.Before(lock.LockedFrom) {
		return Lock{}, fmt.Errorf("%w: locked_to before locked_from", shared.ErrValidation)
	}
	for _, t := range lock.VoucherTypes {
		if !ledger.VoucherType(t).Valid() {
			return Lock{}, fmt.Errorf("%w: unknown voucher type %q", shared.ErrValidation, t)
		}
	}
	created, err := s.repo.Insert(ctx, lock)
	if err != nil {
		return Lock{}, err
	}
	s.record(ctx, actorID, created.CompanyID, "period_lock.create", created.ID, map[string]any{
		"locked_from":   created.LockedFrom.Format("2006-01-02"),
		"locked_to":     created.LockedTo.Format("2006-01-02"),
		"voucher_types": created.VoucherTypes,
		"reason":        created.Reason,
	})
	return created, nil
}

// LockFinancialYear locks April 1 of startYear through March 31 of the
// following year for all voucher types.
func (s *Service) LockFinancialYear(ctx context.Context, companyID int64, startYear int, reason string, actorID int64) (Lock, error) {
	from := time.Date(startYear, time.April, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(startYear+1, time.March, 31, 0, 0, 0, 0, time.UTC)
	if reason == "" {
		reason = fmt.Sprintf("financial year %d-%d closed", startYear, startYear+1)
	}
	return s.CreateLock(ctx, Lock{CompanyID: companyID, LockedFrom: from, LockedTo: to, Reason: reason}, actorID)
}

// LockGSTPeriod locks one calendar month for the GST-relevant voucher
// types, used after a tax return is filed.
func (s *Service) LockGSTPeriod(ctx context.Context, companyID int64, month time.Month, year int, reason string, actorID int64) (Lock, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)
	if reason == "" {
		reason = fmt.Sprintf("GST return filed for %s %d", month, year)
	}
	return s.CreateLock(ctx, Lock{
		CompanyID:    companyID,
		LockedFrom:   from,
		LockedTo:     to,
		VoucherTypes: append([]string(nil), gstVoucherTypes...),
		Reason:       reason,
	}, actorID)
}

// Deactivate disables a lock. Deactivation is the only mutation path.
func (s *Service) Deactivate(ctx context.Context, companyID, id int64, actorID int64) error {
	if err := s.repo.Deactivate(ctx, companyID, id); err != nil {
		return err
	}
	s.record(ctx, actorID, companyID, "period_lock.deactivate", id, map[string]any{
		"before": "active",
		"after":  "inactive",
	})
	return nil
}

// List returns all locks for the company, newest range first.
func (s *Service) List(ctx context.Context, companyID int64) ([]Lock, error) {
	return s.repo.List(ctx, companyID)
}

func (s *Service) record(ctx context.Context, actorID, companyID int64, action string, lockID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, audit.Entry{
		CompanyID: companyID,
		ActorID:   actorID,
		Action:    action,
		Entity:    "period_lock",
		EntityID:  fmt.Sprintf("%d", lockID),
		Meta:      meta,
		At:        s.now(),
	})
}
