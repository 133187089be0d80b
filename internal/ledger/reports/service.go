// Package reports assembles the financial statements from aggregated
// ledger rows. Builders are pure functions over fetched rows; the service
// wires fetching, caching and request coalescing around them.
package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const cacheTTL = 2 * time.Minute

// Service builds the financial reports. Identical concurrent requests are
// coalesced with singleflight; finished reports are cached briefly in redis
// keyed by company, report and window.
type Service struct {
	repo  RepositoryPort
	cache *redis.Client
	group singleflight.Group
}

// NewService constructs the report service. cache may be nil, in which
// case reports are rebuilt on every request.
func NewService(repo RepositoryPort, cache *redis.Client) *Service {
	return &Service{repo: repo, cache: cache}
}

func cacheKey(companyID int64, report string, from, to *time.Time) string {
	f, t := "-", "-"
	if from != nil {
		f = from.Format("2006-01-02")
	}
	if to != nil {
		t = to.Format("2006-01-02")
	}
	return fmt.Sprintf("reports:%d:%s:%s:%s", companyID, report, f, t)
}

// build runs fn once per key across concurrent callers, consulting and
// refreshing the cache around it. dest must be a pointer.
func (s *Service) build(ctx context.Context, key string, dest any, fn func(context.Context) (any, error)) error {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, key).Bytes(); err == nil {
			if err := json.Unmarshal(raw, dest); err == nil {
				return nil
			}
		}
	}

	ch := s.group.DoChan(key, func() (any, error) {
		return fn(ctx)
	})
	var result any
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return res.Err
		}
		result = res.Val
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return err
	}
	if s.cache != nil {
		// Best effort; a failed cache write never fails the report.
		_ = s.cache.Set(ctx, key, raw, cacheTTL).Err()
	}
	return json.Unmarshal(raw, dest)
}

// TrialBalance lists every account's cumulative balance through asOf.
func (s *Service) TrialBalance(ctx context.Context, companyID int64, asOf time.Time) (TrialBalance, error) {
	var tb TrialBalance
	err := s.build(ctx, cacheKey(companyID, "tb", nil, &asOf), &tb, func(ctx context.Context) (any, error) {
		rows, err := s.repo.BalanceRows(ctx, companyID, nil, &asOf)
		if err != nil {
			return nil, err
		}
		return BuildTrialBalance(rows), nil
	})
	return tb, err
}

// ProfitAndLoss reports revenue and expense activity over [from, to].
func (s *Service) ProfitAndLoss(ctx context.Context, companyID int64, from, to time.Time) (ProfitAndLoss, error) {
	var pl ProfitAndLoss
	err := s.build(ctx, cacheKey(companyID, "pl", &from, &to), &pl, func(ctx context.Context) (any, error) {
		rows, err := s.repo.BalanceRows(ctx, companyID, &from, &to)
		if err != nil {
			return nil, err
		}
		return BuildProfitAndLoss(rows), nil
	})
	return pl, err
}

// BalanceSheet reports financial position as of the given date.
func (s *Service) BalanceSheet(ctx context.Context, companyID int64, asOf time.Time) (BalanceSheet, error) {
	var bs BalanceSheet
	err := s.build(ctx, cacheKey(companyID, "bs", nil, &asOf), &bs, func(ctx context.Context) (any, error) {
		rows, err := s.repo.BalanceRows(ctx, companyID, nil, &asOf)
		if err != nil {
			return nil, err
		}
		return BuildBalanceSheet(rows), nil
	})
	return bs, err
}

// CashFlow derives the indirect-method statement for [from, to].
func (s *Service) CashFlow(ctx context.Context, companyID int64, from, to time.Time) (CashFlow, error) {
	var cf CashFlow
	err := s.build(ctx, cacheKey(companyID, "cf", &from, &to), &cf, func(ctx context.Context) (any, error) {
		before := from.AddDate(0, 0, -1)
		opening, err := s.repo.BalanceRows(ctx, companyID, nil, &before)
		if err != nil {
			return nil, err
		}
		period, err := s.repo.BalanceRows(ctx, companyID, &from, &to)
		if err != nil {
			return nil, err
		}
		return BuildCashFlow(opening, period), nil
	})
	return cf, err
}

// DayBook lists every line written on the given date. Day books are not
// cached: they are cheap and read right after posting.
func (s *Service) DayBook(ctx context.Context, companyID int64, date time.Time) (DayBook, error) {
	entries, err := s.repo.DayBookRows(ctx, companyID, date)
	if err != nil {
		return DayBook{}, err
	}
	return BuildDayBook(date, entries), nil
}
