package bills

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-ledger/internal/audit"
	"github.com/meridian-erp/meridian-ledger/internal/ledger"
)

// AuditPort records allocation events.
type AuditPort interface {
	Record(ctx context.Context, entry audit.Entry) error
}

// Service applies payments to invoices and keeps outstanding amounts equal
// to total minus the sum of allocations.
type Service struct {
	repo  Repository
	audit AuditPort
	now   func() time.Time
}

// NewService constructs the bill allocation service.
func NewService(repo Repository, auditor AuditPort) *Service {
	return &Service{repo: repo, audit: auditor, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// AllocationInput describes one payment application.
type AllocationInput struct {
	CompanyID            int64
	PaymentTransactionID int64
	InvoiceID            int64
	Type                 AllocationType
	Amount               decimal.Decimal
	Date                 time.Time
	ActorID              int64
}

// AllocatePayment records the allocation and recomputes the invoice's
// outstanding amount in the same transaction. Allocating beyond the
// invoice's remaining outstanding is rejected, not clamped.
func (s *Service) AllocatePayment(ctx context.Context, in AllocationInput) (Allocation, error) {
	amount := ledger.Round2(in.Amount)
	if !amount.IsPositive() {
		return Allocation{}, ErrInvalidAmount
	}
	if in.Date.IsZero() {
		in.Date = s.now()
	}
	var alloc Allocation
	var before, after decimal.Decimal
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		inv, err := tx.GetInvoiceForUpdate(ctx, in.CompanyID, in.InvoiceID)
		if err != nil {
			return err
		}
		allocated, err := tx.SumAllocations(ctx, inv.ID)
		if err != nil {
			return err
		}
		if allocated.Add(amount).Sub(inv.Total).Cmp(ledger.Tolerance) > 0 {
			return fmt.Errorf("%w: invoice %s has %s outstanding", ErrOverAllocation,
				inv.Number, inv.Total.Sub(allocated).StringFixed(2))
		}
		alloc, err = tx.InsertAllocation(ctx, Allocation{
			CompanyID:            in.CompanyID,
			PaymentTransactionID: in.PaymentTransactionID,
			InvoiceID:            in.InvoiceID,
			InvoiceType:          inv.Type,
			Type:                 in.Type,
			Amount:               amount,
			Date:                 in.Date,
		})
		if err != nil {
			return err
		}
		before = inv.Outstanding
		after = inv.Total.Sub(allocated.Add(amount))
		return tx.SetOutstanding(ctx, inv.ID, after)
	})
	if err != nil {
		return Allocation{}, err
	}
	s.record(ctx, in.ActorID, in.CompanyID, "allocation.create", in.InvoiceID, map[string]any{
		"payment_transaction_id": in.PaymentTransactionID,
		"amount":                 amount.String(),
		"outstanding_before":     before.String(),
		"outstanding_after":      after.String(),
	})
	return alloc, nil
}

// UnwindPayment removes a payment's allocations and recomputes the affected
// invoices' outstanding amounts, all-or-nothing.
func (s *Service) UnwindPayment(ctx context.Context, companyID, paymentTransactionID, actorID int64) error {
	var touched []int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		ids, err := tx.DeleteAllocationsForPayment(ctx, companyID, paymentTransactionID)
		if err != nil {
			return err
		}
		touched = ids
		for _, id := range ids {
			if err := s.recompute(ctx, tx, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.record(ctx, actorID, companyID, "allocation.unwind", paymentTransactionID, map[string]any{
		"invoices": touched,
	})
	return nil
}

// RecalculateOutstanding recomputes every invoice's outstanding amount from
// scratch. A repair operation; running it twice yields the same result.
func (s *Service) RecalculateOutstanding(ctx context.Context, companyID int64) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		ids, err := tx.ListInvoiceIDs(ctx, companyID)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if err := s.recompute(ctx, tx, id); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Service) recompute(ctx context.Context, tx TxRepository, invoiceID int64) error {
	total, err := tx.InvoiceTotal(ctx, invoiceID)
	if err != nil {
		return err
	}
	allocated, err := tx.SumAllocations(ctx, invoiceID)
	if err != nil {
		return err
	}
	return tx.SetOutstanding(ctx, invoiceID, total.Sub(allocated))
}

// GetInvoice returns one invoice with its allocations.
func (s *Service) GetInvoice(ctx context.Context, companyID, id int64) (Invoice, []Allocation, error) {
	inv, err := s.repo.GetInvoice(ctx, companyID, id)
	if err != nil {
		return Invoice{}, nil, err
	}
	allocs, err := s.repo.ListAllocations(ctx, companyID, id)
	if err != nil {
		return Invoice{}, nil, err
	}
	return inv, allocs, nil
}

func (s *Service) record(ctx context.Context, actorID, companyID int64, action string, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, audit.Entry{
		CompanyID: companyID,
		ActorID:   actorID,
		Action:    action,
		Entity:    "invoice",
		EntityID:  fmt.Sprintf("%d", entityID),
		Meta:      meta,
		At:        s.now(),
	})
}

// Bucket is one aging day-range with its total.
type Bucket struct {
	Label   string
	MinDays int
	MaxDays int // -1 means open-ended
	Total   decimal.Decimal
}

// PartyAging summarizes one party's outstanding per bucket.
type PartyAging struct {
	PartyID int64
	Amounts []decimal.Decimal
	Total   decimal.Decimal
}

// AgingReport buckets outstanding invoices by days overdue.
type AgingReport struct {
	AsOf             time.Time
	Buckets          []Bucket
	Parties          []PartyAging
	TotalOutstanding decimal.Decimal
}

// Aging buckets outstanding invoices by days overdue at asOf. Invoices not
// yet due fall in the first bucket. The grand total always equals the sum
// of bucket totals and of the per-party totals.
func (s *Service) Aging(ctx context.Context, companyID int64, invoiceType InvoiceType, asOf time.Time, boundaries []int) (AgingReport, error) {
	if asOf.IsZero() {
		asOf = s.now()
	}
	if len(boundaries) == 0 {
		boundaries = DefaultBucketBoundaries
	}
	invoices, err := s.repo.ListOutstanding(ctx, companyID, invoiceType)
	if err != nil {
		return AgingReport{}, err
	}

	report := AgingReport{AsOf: asOf, TotalOutstanding: decimal.Zero}
	prev := 0
	for _, b := range boundaries {
		report.Buckets = append(report.Buckets, Bucket{
			Label:   fmt.Sprintf("%d-%d", prev, b),
			MinDays: prev,
			MaxDays: b,
			Total:   decimal.Zero,
		})
		prev = b + 1
	}
	report.Buckets = append(report.Buckets, Bucket{
		Label:   fmt.Sprintf("%d+", boundaries[len(boundaries)-1]),
		MinDays: prev,
		MaxDays: -1,
		Total:   decimal.Zero,
	})

	parties := make(map[int64]*PartyAging)
	for _, inv := range invoices {
		days := int(asOf.Sub(inv.DueDate).Hours() / 24)
		idx := bucketIndex(report.Buckets, days)
		report.Buckets[idx].Total = report.Buckets[idx].Total.Add(inv.Outstanding)
		report.TotalOutstanding = report.TotalOutstanding.Add(inv.Outstanding)

		pa, ok := parties[inv.PartyID]
		if !ok {
			pa = &PartyAging{PartyID: inv.PartyID, Amounts: zeroAmounts(len(report.Buckets)), Total: decimal.Zero}
			parties[inv.PartyID] = pa
		}
		pa.Amounts[idx] = pa.Amounts[idx].Add(inv.Outstanding)
		pa.Total = pa.Total.Add(inv.Outstanding)
	}

	for _, pa := range parties {
		report.Parties = append(report.Parties, *pa)
	}
	sort.Slice(report.Parties, func(i, j int) bool { return report.Parties[i].PartyID < report.Parties[j].PartyID })
	return report, nil
}

func bucketIndex(buckets []Bucket, days int) int {
	if days < 0 {
		return 0
	}
	for i, b := range buckets {
		if b.MaxDays < 0 || days <= b.MaxDays {
			return i
		}
	}
	return len(buckets) - 1
}

func zeroAmounts(n int) []decimal.Decimal {
	out := make([]decimal.Decimal, n)
	for i := range out {
		out[i] = decimal.Zero
	}
	return out
}
