package journals

import (
	"context"
	"fmt"
	"time"

	"github.com/meridian-erp/meridian-ledger/internal/audit"
	"github.com/meridian-erp/meridian-ledger/internal/ledger"
	"github.com/meridian-erp/meridian-ledger/internal/ledger/shared"
)

// PeriodGuard rejects postings dated inside a locked accounting period.
type PeriodGuard interface {
	ValidateTransactionDate(ctx context.Context, companyID int64, date time.Time, vt ledger.VoucherType) error
}

// AuditPort records ledger events for compliance.
type AuditPort interface {
	Record(ctx context.Context, entry audit.Entry) error
}

// Service coordinates creating, posting and reversing transactions.
type Service struct {
	repo  Repository
	guard PeriodGuard
	audit AuditPort
	now   func() time.Time
}

// NewService constructs the transaction store service.
func NewService(repo Repository, guard PeriodGuard, auditor AuditPort) *Service {
	return &Service{repo: repo, guard: guard, audit: auditor, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// CreateVoucher validates and persists a balanced transaction. Header,
// entry lines and the optional source link commit atomically; by default
// the transaction is posted immediately.
func (s *Service) CreateVoucher(ctx context.Context, in VoucherInput) (Transaction, error) {
	if err := in.Validate(); err != nil {
		return Transaction{}, err
	}
	status := ledger.StatusPosted
	if in.Draft {
		status = ledger.StatusDraft
	}
	if status == ledger.StatusPosted && s.guard != nil {
		if err := s.guard.ValidateTransactionDate(ctx, in.CompanyID, in.Date, in.VoucherType); err != nil {
			return Transaction{}, err
		}
	}
	debit, credit := in.Totals()
	var txn Transaction
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		seq, err := tx.NextNumber(ctx, in.CompanyID, in.VoucherType)
		if err != nil {
			return err
		}
		inserted, err := tx.InsertTransaction(ctx, Transaction{
			CompanyID:     in.CompanyID,
			Number:        ledger.FormatNumber(in.VoucherType, seq),
			Date:          in.Date,
			VoucherType:   in.VoucherType,
			Description:   in.Description,
			ReferenceType: in.ReferenceType,
			ReferenceID:   in.ReferenceID,
			Status:        status,
			TotalDebit:    debit,
			TotalCredit:   credit,
		})
		if err != nil {
			return err
		}
		entries := toEntries(inserted.ID, in.Lines)
		if err := tx.InsertEntries(ctx, inserted.ID, entries); err != nil {
			return err
		}
		if in.ReferenceID != nil && in.ReferenceType != "" {
			if err := tx.LinkSource(ctx, in.CompanyID, in.ReferenceType, *in.ReferenceID, inserted.ID); err != nil {
				return err
			}
		}
		inserted.Entries = entries
		txn = inserted
		return nil
	})
	if err != nil {
		return Transaction{}, err
	}
	s.record(ctx, in.ActorID, in.CompanyID, "transaction.create", txn.ID, map[string]any{
		"number":       txn.Number,
		"voucher_type": txn.VoucherType,
		"status":       txn.Status,
		"total":        txn.TotalDebit.String(),
	})
	return txn, nil
}

// PostDraft transitions a draft to posted, revalidating the line balance
// under lock as a defense against concurrent mutation.
func (s *Service) PostDraft(ctx context.Context, companyID, id int64, actorID int64) (Transaction, error) {
	var txn Transaction
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, entries, err := tx.GetForUpdate(ctx, companyID, id)
		if err != nil {
			return err
		}
		if current.Status != ledger.StatusDraft {
			return shared.ErrInvalidStatus
		}
		if err := validateEntryBalance(entries); err != nil {
			return err
		}
		if s.guard != nil {
			if err := s.guard.ValidateTransactionDate(ctx, companyID, current.Date, current.VoucherType); err != nil {
				return err
			}
		}
		if err := tx.UpdateStatus(ctx, current.ID, ledger.StatusPosted); err != nil {
			return err
		}
		current.Status = ledger.StatusPosted
		current.Entries = entries
		txn = current
		return nil
	})
	if err != nil {
		return Transaction{}, err
	}
	s.record(ctx, actorID, companyID, "transaction.post", txn.ID, map[string]any{
		"number": txn.Number,
		"before": ledger.StatusDraft,
		"after":  ledger.StatusPosted,
	})
	return txn, nil
}

// ReverseVoucher creates the companion transaction whose lines are the
// exact debit/credit swap of the original, links the pair, and marks the
// original reversed. A transaction can be reversed at most once.
func (s *Service) ReverseVoucher(ctx context.Context, companyID, id int64, date time.Time, reason string, actorID int64) (Transaction, error) {
	if date.IsZero() {
		date = s.now()
	}
	var reversal Transaction
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		original, entries, err := tx.GetForUpdate(ctx, companyID, id)
		if err != nil {
			return err
		}
		if original.ReversedByID != nil {
			return shared.ErrAlreadyReversed
		}
		if original.Status != ledger.StatusPosted {
			return shared.ErrInvalidStatus
		}
		if s.guard != nil {
			if err := s.guard.ValidateTransactionDate(ctx, companyID, date, original.VoucherType); err != nil {
				return err
			}
		}
		seq, err := tx.NextNumber(ctx, companyID, original.VoucherType)
		if err != nil {
			return err
		}
		inserted, err := tx.InsertTransaction(ctx, Transaction{
			CompanyID:     companyID,
			Number:        ledger.FormatNumber(original.VoucherType, seq),
			Date:          date,
			VoucherType:   original.VoucherType,
			Description:   reversalMemo(reason, original.Number),
			ReferenceType: original.ReferenceType,
			Status:        ledger.StatusPosted,
			TotalDebit:    original.TotalCredit,
			TotalCredit:   original.TotalDebit,
			ReversesID:    &original.ID,
		})
		if err != nil {
			return err
		}
		swapped := swapEntries(inserted.ID, entries)
		if err := tx.InsertEntries(ctx, inserted.ID, swapped); err != nil {
			return err
		}
		if err := tx.SetReversal(ctx, original.ID, inserted.ID); err != nil {
			return err
		}
		if err := tx.UpdateStatus(ctx, original.ID, ledger.StatusReversed); err != nil {
			return err
		}
		inserted.Entries = swapped
		reversal = inserted
		return nil
	})
	if err != nil {
		return Transaction{}, err
	}
	s.record(ctx, actorID, companyID, "transaction.reverse", id, map[string]any{
		"reversal_id":     reversal.ID,
		"reversal_number": reversal.Number,
		"reason":          reason,
		"before":          ledger.StatusPosted,
		"after":           ledger.StatusReversed,
	})
	return reversal, nil
}

// Get returns a transaction with its entries.
func (s *Service) Get(ctx context.Context, companyID, id int64) (Transaction, error) {
	return s.repo.Get(ctx, companyID, id)
}

// List returns transaction headers matching the filter.
func (s *Service) List(ctx context.Context, companyID int64, filter ListFilter) ([]Transaction, error) {
	return s.repo.List(ctx, companyID, filter)
}

func (s *Service) record(ctx context.Context, actorID, companyID int64, action string, transactionID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, audit.Entry{
		CompanyID: companyID,
		ActorID:   actorID,
		Action:    action,
		Entity:    "transaction",
		EntityID:  fmt.Sprintf("%d", transactionID),
		Meta:      meta,
		At:        s.now(),
	})
}

func toEntries(transactionID int64, lines []LineInput) []TransactionEntry {
	out := make([]TransactionEntry, 0, len(lines))
	for _, line := range lines {
		out = append(out, TransactionEntry{
			TransactionID: transactionID,
			AccountID:     line.AccountID,
			Debit:         ledger.Round2(line.Debit),
			Credit:        ledger.Round2(line.Credit),
			Description:   line.Description,
			PartyID:       line.PartyID,
			PartyType:     line.PartyType,
			CostCenterID:  line.CostCenterID,
		})
	}
	return out
}

func swapEntries(transactionID int64, entries []TransactionEntry) []TransactionEntry {
	out := make([]TransactionEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, TransactionEntry{
			TransactionID: transactionID,
			AccountID:     e.AccountID,
			Debit:         e.Credit,
			Credit:        e.Debit,
			Description:   e.Description,
			PartyID:       e.PartyID,
			PartyType:     e.PartyType,
			CostCenterID:  e.CostCenterID,
		})
	}
	return out
}

func validateEntryBalance(entries []TransactionEntry) error {
	if len(entries) < 2 {
		return shared.ErrTooFewLines
	}
	lines := make([]LineInput, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, LineInput{AccountID: e.AccountID, Debit: e.Debit, Credit: e.Credit})
	}
	debit, credit := VoucherInput{Lines: lines}.Totals()
	if !ledger.Balanced(debit, credit) {
		return shared.ErrUnbalanced
	}
	return nil
}

func reversalMemo(reason, number string) string {
	if reason != "" {
		return reason
	}
	return fmt.Sprintf("Reversal of %s", number)
}
