package recurring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextDateDaily(t *testing.T) {
	next := NextDate(date(2024, time.March, 31), FrequencyDaily, nil, nil)
	require.Equal(t, date(2024, time.April, 1), next)
}

func TestNextDateWeeklyPinned(t *testing.T) {
	// From a Friday, pinned to Monday: one week out lands on Friday,
	// then shifts forward to the following Monday.
	monday := time.Monday
	next := NextDate(date(2024, time.March, 1), FrequencyWeekly, nil, &monday)
	require.Equal(t, date(2024, time.March, 11), next)
	require.Equal(t, time.Monday, next.Weekday())
}

func TestNextDateBiweekly(t *testing.T) {
	next := NextDate(date(2024, time.March, 1), FrequencyBiweekly, nil, nil)
	require.Equal(t, date(2024, time.March, 15), next)
}

func TestNextDateMonthlyClampsToTwentyEight(t *testing.T) {
	pin := 31
	next := NextDate(date(2024, time.January, 31), FrequencyMonthly, &pin, nil)
	require.Equal(t, date(2024, time.February, 28), next)

	// Stays pinned at 28 afterwards rather than rolling to month end.
	next = NextDate(next, FrequencyMonthly, &pin, nil)
	require.Equal(t, date(2024, time.March, 28), next)
}

func TestNextDateMonthlyWithoutPinKeepsDay(t *testing.T) {
	next := NextDate(date(2024, time.April, 15), FrequencyMonthly, nil, nil)
	require.Equal(t, date(2024, time.May, 15), next)
}

func TestNextDateQuarterlyAndYearly(t *testing.T) {
	pin := 1
	next := NextDate(date(2024, time.January, 1), FrequencyQuarterly, &pin, nil)
	require.Equal(t, date(2024, time.April, 1), next)

	next = NextDate(date(2024, time.January, 1), FrequencyHalfYearly, &pin, nil)
	require.Equal(t, date(2024, time.July, 1), next)

	next = NextDate(date(2024, time.January, 1), FrequencyYearly, &pin, nil)
	require.Equal(t, date(2025, time.January, 1), next)
}

func TestScheduleExhausted(t *testing.T) {
	three := 3
	s := Schedule{TotalOccurrence: &three, OccurrencesMade: 2, NextDate: date(2024, time.June, 1)}
	require.False(t, s.Exhausted())

	s.OccurrencesMade = 3
	require.True(t, s.Exhausted())

	end := date(2024, time.May, 31)
	s = Schedule{EndDate: &end, NextDate: date(2024, time.June, 1)}
	require.True(t, s.Exhausted())
}
