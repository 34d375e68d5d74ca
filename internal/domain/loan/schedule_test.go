package loan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"loantrack/internal/pkg/dates"
)

func d(y int, m time.Month, day int) dates.Date {
	return dates.New(y, m, day)
}

func TestParseStrategy(t *testing.T) {
	t.Run("should decode fixed day with parameter", func(t *testing.T) {
		s := ParseStrategy("FIXED_DAY:5")
		assert.Equal(t, StrategyFixedDay, s.Kind)
		assert.Equal(t, 5, s.Day)
	})

	t.Run("should fall back to day 15 for bad fixed day parameters", func(t *testing.T) {
		for _, descriptor := range []string{"FIXED_DAY", "FIXED_DAY:", "FIXED_DAY:0", "FIXED_DAY:32", "FIXED_DAY:abc"} {
			s := ParseStrategy(descriptor)
			assert.Equal(t, StrategyFixedDay, s.Kind, descriptor)
			assert.Equal(t, 15, s.Day, descriptor)
		}
	})

	t.Run("should decode interval with parameter", func(t *testing.T) {
		s := ParseStrategy("every_n_days:7")
		assert.Equal(t, StrategyEveryNDays, s.Kind)
		assert.Equal(t, 7, s.Interval)
	})

	t.Run("should fall back to 30 days for bad intervals", func(t *testing.T) {
		for _, descriptor := range []string{"EVERY_N_DAYS", "EVERY_N_DAYS:0", "EVERY_N_DAYS:-3", "EVERY_N_DAYS:x"} {
			s := ParseStrategy(descriptor)
			assert.Equal(t, StrategyEveryNDays, s.Kind, descriptor)
			assert.Equal(t, 30, s.Interval, descriptor)
		}
	})

	t.Run("should treat anything unrecognized as monthly", func(t *testing.T) {
		for _, descriptor := range []string{"", "MONTHLY", "WEEKLY", "garbage:99"} {
			s := ParseStrategy(descriptor)
			assert.Equal(t, StrategyMonthly, s.Kind, descriptor)
		}
	})

	t.Run("descriptor should round trip", func(t *testing.T) {
		for _, descriptor := range []string{"FIXED_DAY:5", "EVERY_N_DAYS:14", "END_OF_MONTH", "MONTHLY"} {
			assert.Equal(t, descriptor, ParseStrategy(descriptor).Descriptor())
		}
	})
}

func TestDueDatesFixedDay(t *testing.T) {
	strategy := PaymentStrategy{Kind: StrategyFixedDay, Day: 15}

	t.Run("should emit the target day each month when start precedes it", func(t *testing.T) {
		got := strategy.DueDates(d(2025, time.January, 1), d(2025, time.December, 31), 6)
		want := []dates.Date{
			d(2025, time.January, 15), d(2025, time.February, 15), d(2025, time.March, 15),
			d(2025, time.April, 15), d(2025, time.May, 15), d(2025, time.June, 15),
		}
		assert.Equal(t, want, got)
	})

	t.Run("should roll to next month when start is past the target day", func(t *testing.T) {
		got := strategy.DueDates(d(2025, time.January, 20), d(2025, time.December, 31), 2)
		want := []dates.Date{d(2025, time.February, 15), d(2025, time.March, 15)}
		assert.Equal(t, want, got)
	})

	t.Run("should include the target day when start lands exactly on it", func(t *testing.T) {
		got := strategy.DueDates(d(2025, time.January, 15), d(2025, time.December, 31), 1)
		assert.Equal(t, []dates.Date{d(2025, time.January, 15)}, got)
	})
}

func TestDueDatesEveryNDays(t *testing.T) {
	strategy := PaymentStrategy{Kind: StrategyEveryNDays, Interval: 30}

	t.Run("should step by the interval starting at start", func(t *testing.T) {
		got := strategy.DueDates(d(2025, time.January, 1), d(2025, time.December, 31), 4)
		want := []dates.Date{
			d(2025, time.January, 1), d(2025, time.January, 31),
			d(2025, time.March, 2), d(2025, time.April, 1),
		}
		assert.Equal(t, want, got)
	})
}

func TestDueDatesEndOfMonth(t *testing.T) {
	strategy := PaymentStrategy{Kind: StrategyEndOfMonth}

	t.Run("should emit the last day of each following month", func(t *testing.T) {
		got := strategy.DueDates(d(2025, time.January, 10), d(2025, time.December, 31), 3)
		want := []dates.Date{
			d(2025, time.February, 28), d(2025, time.March, 31), d(2025, time.April, 30),
		}
		assert.Equal(t, want, got)
	})

	t.Run("should handle leap February", func(t *testing.T) {
		got := strategy.DueDates(d(2024, time.January, 10), d(2024, time.December, 31), 1)
		assert.Equal(t, []dates.Date{d(2024, time.February, 29)}, got)
	})
}

func TestDueDatesMonthly(t *testing.T) {
	strategy := PaymentStrategy{Kind: StrategyMonthly}

	t.Run("should repeat the start day monthly", func(t *testing.T) {
		got := strategy.DueDates(d(2025, time.March, 10), d(2025, time.December, 31), 3)
		want := []dates.Date{d(2025, time.March, 10), d(2025, time.April, 10), d(2025, time.May, 10)}
		assert.Equal(t, want, got)
	})

	t.Run("should normalize day overflow on short months", func(t *testing.T) {
		got := strategy.DueDates(d(2025, time.January, 31), d(2025, time.December, 31), 2)
		// January 31 plus one month lands past February's end and normalizes
		// forward into March.
		want := []dates.Date{d(2025, time.January, 31), d(2025, time.March, 3)}
		assert.Equal(t, want, got)
	})
}

func TestDueDatesTruncation(t *testing.T) {
	t.Run("should stop silently at the end date", func(t *testing.T) {
		strategy := PaymentStrategy{Kind: StrategyFixedDay, Day: 15}
		got := strategy.DueDates(d(2025, time.January, 1), d(2025, time.March, 31), 12)
		assert.Len(t, got, 3)
		assert.Equal(t, d(2025, time.March, 15), got[2])
	})

	t.Run("should return an empty schedule when nothing fits", func(t *testing.T) {
		strategy := PaymentStrategy{Kind: StrategyFixedDay, Day: 15}
		got := strategy.DueDates(d(2025, time.January, 20), d(2025, time.February, 1), 12)
		assert.Empty(t, got)
	})

	t.Run("dates should be strictly increasing", func(t *testing.T) {
		for _, strategy := range []PaymentStrategy{
			{Kind: StrategyFixedDay, Day: 31},
			{Kind: StrategyEveryNDays, Interval: 7},
			{Kind: StrategyEndOfMonth},
			{Kind: StrategyMonthly},
		} {
			got := strategy.DueDates(d(2025, time.January, 28), d(2026, time.December, 31), 10)
			for i := 1; i < len(got); i++ {
				assert.True(t, got[i].After(got[i-1]),
					"%s: %s should come after %s", strategy.Descriptor(), got[i], got[i-1])
			}
		}
	})
}
