package reports

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type countingRepo struct {
	balanceCalls atomic.Int64
	dayBookCalls atomic.Int64
}

func (c *countingRepo) BalanceRows(_ context.Context, _ int64, _, _ *time.Time) ([]Row, error) {
	c.balanceCalls.Add(1)
	return sampleRows(), nil
}

func (c *countingRepo) DayBookRows(_ context.Context, _ int64, _ time.Time) ([]DayBookEntry, error) {
	c.dayBookCalls.Add(1)
	return nil, nil
}

func newCachedService(t *testing.T) (*Service, *countingRepo) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	repo := &countingRepo{}
	return NewService(repo, client), repo
}

func TestTrialBalanceServedFromCache(t *testing.T) {
	svc, repo := newCachedService(t)
	ctx := context.Background()
	asOf := mustDate(t, "2024-06-30")

	first, err := svc.TrialBalance(ctx, 1, asOf)
	require.NoError(t, err)
	require.EqualValues(t, 1, repo.balanceCalls.Load())

	second, err := svc.TrialBalance(ctx, 1, asOf)
	require.NoError(t, err)
	require.EqualValues(t, 1, repo.balanceCalls.Load(), "second read must hit the cache")

	require.Len(t, second.Rows, len(first.Rows))
	require.True(t, second.TotalDebit.Equal(first.TotalDebit))
	require.True(t, second.TotalCredit.Equal(first.TotalCredit))
}

func TestCacheKeysSeparateWindowsAndCompanies(t *testing.T) {
	svc, repo := newCachedService(t)
	ctx := context.Background()

	_, err := svc.TrialBalance(ctx, 1, mustDate(t, "2024-06-30"))
	require.NoError(t, err)
	_, err = svc.TrialBalance(ctx, 1, mustDate(t, "2024-07-31"))
	require.NoError(t, err)
	_, err = svc.TrialBalance(ctx, 2, mustDate(t, "2024-06-30"))
	require.NoError(t, err)
	require.EqualValues(t, 3, repo.balanceCalls.Load())
}

func TestReportsDifferInCacheByKind(t *testing.T) {
	svc, repo := newCachedService(t)
	ctx := context.Background()
	asOf := mustDate(t, "2024-06-30")

	_, err := svc.TrialBalance(ctx, 1, asOf)
	require.NoError(t, err)
	_, err = svc.BalanceSheet(ctx, 1, asOf)
	require.NoError(t, err)
	require.EqualValues(t, 2, repo.balanceCalls.Load())

	_, err = svc.BalanceSheet(ctx, 1, asOf)
	require.NoError(t, err)
	require.EqualValues(t, 2, repo.balanceCalls.Load())
}

func TestCashFlowRoundTripsThroughCache(t *testing.T) {
	svc, repo := newCachedService(t)
	ctx := context.Background()
	from := mustDate(t, "2024-06-01")
	to := mustDate(t, "2024-06-30")

	first, err := svc.CashFlow(ctx, 1, from, to)
	require.NoError(t, err)
	// Opening and period row sets are both fetched on a miss.
	require.EqualValues(t, 2, repo.balanceCalls.Load())

	second, err := svc.CashFlow(ctx, 1, from, to)
	require.NoError(t, err)
	require.EqualValues(t, 2, repo.balanceCalls.Load())
	require.True(t, second.ClosingCash.Equal(first.ClosingCash))
	require.True(t, second.NetChange.Equal(first.NetChange))
}

func TestNilCacheRebuildsEveryRequest(t *testing.T) {
	repo := &countingRepo{}
	svc := NewService(repo, nil)
	ctx := context.Background()
	asOf := mustDate(t, "2024-06-30")

	_, err := svc.TrialBalance(ctx, 1, asOf)
	require.NoError(t, err)
	_, err = svc.TrialBalance(ctx, 1, asOf)
	require.NoError(t, err)
	require.EqualValues(t, 2, repo.balanceCalls.Load())
}

func TestDayBookIsNeverCached(t *testing.T) {
	svc, repo := newCachedService(t)
	ctx := context.Background()
	date := mustDate(t, "2024-06-15")

	_, err := svc.DayBook(ctx, 1, date)
	require.NoError(t, err)
	_, err = svc.DayBook(ctx, 1, date)
	require.NoError(t, err)
	require.EqualValues(t, 2, repo.dayBookCalls.Load())
}
