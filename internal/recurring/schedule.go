package recurring

import "time"

// maxPinnedDay caps day-of-month pinning. Pinning past day 28 would skip
// short months entirely, so pinned days clamp to 28 rather than rolling to
// month end.
const maxPinnedDay = 28

// NextDate computes the occurrence after from. Pure function: monthly-family
// frequencies pin to dayOfMonth (clamped to 28), weekly-family frequencies
// pin to dayOfWeek.
func NextDate(from time.Time, freq Frequency, dayOfMonth *int, dayOfWeek *time.Weekday) time.Time {
	from = truncateDay(from)
	switch freq {
	case FrequencyDaily:
		return from.AddDate(0, 0, 1)
	case FrequencyWeekly:
		return pinWeekday(from.AddDate(0, 0, 7), dayOfWeek)
	case FrequencyBiweekly:
		return pinWeekday(from.AddDate(0, 0, 14), dayOfWeek)
	case FrequencyMonthly:
		return addMonthsPinned(from, 1, dayOfMonth)
	case FrequencyQuarterly:
		return addMonthsPinned(from, 3, dayOfMonth)
	case FrequencyHalfYearly:
		return addMonthsPinned(from, 6, dayOfMonth)
	case FrequencyYearly:
		return addMonthsPinned(from, 12, dayOfMonth)
	}
	return from.AddDate(0, 1, 0)
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// addMonthsPinned lands on the pinned day of the target month. Without a
// pin it keeps from's day, clamped the same way, so a Jan 31 monthly
// schedule fires Feb 28 and stays on 28 thereafter.
func addMonthsPinned(from time.Time, months int, dayOfMonth *int) time.Time {
	day := from.Day()
	if dayOfMonth != nil && *dayOfMonth >= 1 {
		day = *dayOfMonth
	}
	if day > maxPinnedDay {
		day = maxPinnedDay
	}
	y, m, _ := from.Date()
	return time.Date(y, m+time.Month(months), day, 0, 0, 0, 0, time.UTC)
}

// pinWeekday shifts the candidate forward to the requested weekday.
func pinWeekday(candidate time.Time, dayOfWeek *time.Weekday) time.Time {
	if dayOfWeek == nil {
		return candidate
	}
	diff := (int(*dayOfWeek) - int(candidate.Weekday()) + 7) % 7
	return candidate.AddDate(0, 0, diff)
}
