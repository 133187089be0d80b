// Package balances computes account balances and ledgers on demand by
// replaying posted entries. Balances are never stored; aggregation at read
// time is what lets concurrent postings append without row contention.
package balances

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-ledger/internal/ledger"
	"github.com/meridian-erp/meridian-ledger/internal/ledger/accounts"
)

// AccountPort resolves accounts for sign conventions.
type AccountPort interface {
	Get(ctx context.Context, companyID, id int64) (accounts.Account, error)
}

// Service is the read-side ledger query engine.
type Service struct {
	repo     RepositoryPort
	accounts AccountPort
}

// NewService constructs the query engine.
func NewService(repo RepositoryPort, accountPort AccountPort) *Service {
	return &Service{repo: repo, accounts: accountPort}
}

// signed applies the balance sign convention: assets and expenses carry
// debit balances, the rest carry credit balances.
func signed(typ ledger.AccountType, s Sums) decimal.Decimal {
	if typ.DebitNature() {
		return s.Debit.Sub(s.Credit)
	}
	return s.Credit.Sub(s.Debit)
}

// AccountBalance returns the account's balance as of the given date
// (inclusive). A nil date means the current balance.
func (s *Service) AccountBalance(ctx context.Context, companyID, accountID int64, asOf *time.Time) (decimal.Decimal, error) {
	acc, err := s.accounts.Get(ctx, companyID, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	sums, err := s.repo.Sums(ctx, companyID, []int64{accountID}, nil, asOf)
	if err != nil {
		return decimal.Zero, err
	}
	return signed(acc.Type, sums[accountID]), nil
}

// AccountBalances is the batched equivalent of AccountBalance and produces
// identical results to calling the single-account form per id.
func (s *Service) AccountBalances(ctx context.Context, companyID int64, accountIDs []int64, asOf *time.Time) (map[int64]decimal.Decimal, error) {
	sums, err := s.repo.Sums(ctx, companyID, accountIDs, nil, asOf)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]decimal.Decimal, len(accountIDs))
	for _, id := range accountIDs {
		acc, err := s.accounts.Get(ctx, companyID, id)
		if err != nil {
			return nil, err
		}
		out[id] = signed(acc.Type, sums[id])
	}
	return out, nil
}

// StatementEntry is one statement line with its running balance.
type StatementEntry struct {
	Date        time.Time
	Number      string
	Description string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Running     decimal.Decimal
}

// Statement is an account ledger for a window: opening balance, entries
// with a running balance column, closing balance, and column totals.
type Statement struct {
	AccountID      int64
	OpeningBalance decimal.Decimal
	Entries        []StatementEntry
	ClosingBalance decimal.Decimal
	TotalDebit     decimal.Decimal
	TotalCredit    decimal.Decimal
}

// AccountStatement builds the ledger for an account. The opening balance is
// the balance strictly before from; entries are ordered by transaction date
// then creation order.
func (s *Service) AccountStatement(ctx context.Context, companyID, accountID int64, from, to *time.Time) (Statement, error) {
	acc, err := s.accounts.Get(ctx, companyID, accountID)
	if err != nil {
		return Statement{}, err
	}
	opening := decimal.Zero
	if from != nil {
		before := from.AddDate(0, 0, -1)
		sums, err := s.repo.Sums(ctx, companyID, []int64{accountID}, nil, &before)
		if err != nil {
			return Statement{}, err
		}
		opening = signed(acc.Type, sums[accountID])
	}
	rows, err := s.repo.StatementRows(ctx, companyID, accountID, from, to)
	if err != nil {
		return Statement{}, err
	}
	st := Statement{
		AccountID:      accountID,
		OpeningBalance: opening,
		TotalDebit:     decimal.Zero,
		TotalCredit:    decimal.Zero,
	}
	running := opening
	for _, row := range rows {
		if acc.Type.DebitNature() {
			running = running.Add(row.Debit).Sub(row.Credit)
		} else {
			running = running.Add(row.Credit).Sub(row.Debit)
		}
		st.Entries = append(st.Entries, StatementEntry{
			Date:        row.Date,
			Number:      row.Number,
			Description: row.Description,
			Debit:       row.Debit,
			Credit:      row.Credit,
			Running:     running,
		})
		st.TotalDebit = st.TotalDebit.Add(row.Debit)
		st.TotalCredit = st.TotalCredit.Add(row.Credit)
	}
	st.ClosingBalance = running
	return st, nil
}

// PeriodActivity returns the account's flow within [from, to]: credit minus
// debit for credit-nature accounts, debit minus credit otherwise. Used by
// flow statements only, never for point-in-time balances.
func (s *Service) PeriodActivity(ctx context.Context, companyID, accountID int64, from, to time.Time) (decimal.Decimal, error) {
	acc, err := s.accounts.Get(ctx, companyID, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	sums, err := s.repo.Sums(ctx, companyID, []int64{accountID}, &from, &to)
	if err != nil {
		return decimal.Zero, err
	}
	return signed(acc.Type, sums[accountID]), nil
}
