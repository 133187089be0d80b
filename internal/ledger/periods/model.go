package periods

import (
	"time"

	"github.com/meridian-erp/meridian-ledger/internal/ledger"
)

// Lock is a closed date range during which new postings are rejected.
// A lock may be scoped to specific voucher types; nil means all types.
// Locks are deactivated, never hard-deleted, and overlaps are allowed.
type Lock struct {
	ID           int64
	CompanyID    int64
	LockedFrom   time.Time
	LockedTo     time.Time
	VoucherTypes []string
	Reason       string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Covers reports whether the lock blocks a posting of the given type on
// the given date.
func (l Lock) Covers(date time.Time, vt ledger.VoucherType) bool {
	if !l.IsActive {
		return false
	}
	day := date.Truncate(24 * time.Hour)
	if day.Before(l.LockedFrom.Truncate(24*time.Hour)) || day.After(l.LockedTo.Truncate(24*time.Hour)) {
		return false
	}
	if len(l.VoucherTypes) == 0 {
		return true
	}
	for _, t := range l.VoucherTypes {
		if ledger.VoucherType(t) == vt {
			return true
		}
	}
	return false
}
