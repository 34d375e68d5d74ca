package loan

import (
	"fmt"
	"strconv"
	"strings"

	"loantrack/internal/pkg/dates"
)

type StrategyKind string

const (
	StrategyFixedDay   StrategyKind = "FIXED_DAY"
	StrategyEveryNDays StrategyKind = "EVERY_N_DAYS"
	StrategyEndOfMonth StrategyKind = "END_OF_MONTH"
	StrategyMonthly    StrategyKind = "MONTHLY"
)

const (
	defaultFixedDay = 15
	defaultInterval = 30
)

// PaymentStrategy is the decoded form of the payment-type descriptor. It is
// produced exactly once, at the loan-creation boundary; no other consumer
// pattern-matches the descriptor string.
type PaymentStrategy struct {
	Kind StrategyKind
	// Day is the target day of month for FIXED_DAY.
	Day int
	// Interval is the step in days for EVERY_N_DAYS.
	Interval int
}

// ParseStrategy decodes a descriptor of the form "FIXED_DAY:15",
// "EVERY_N_DAYS:30", "END_OF_MONTH" or "MONTHLY". Unrecognized descriptors and
// out-of-range parameters fall back to safe defaults rather than failing, so a
// loan can always be scheduled.
func ParseStrategy(descriptor string) PaymentStrategy {
	kind, param, _ := strings.Cut(strings.ToUpper(strings.TrimSpace(descriptor)), ":")

	switch StrategyKind(kind) {
	case StrategyFixedDay:
		day, err := strconv.Atoi(param)
		if err != nil || day < 1 || day > 31 {
			day = defaultFixedDay
		}
		return PaymentStrategy{Kind: StrategyFixedDay, Day: day}
	case StrategyEveryNDays:
		interval, err := strconv.Atoi(param)
		if err != nil || interval < 1 {
			interval = defaultInterval
		}
		return PaymentStrategy{Kind: StrategyEveryNDays, Interval: interval}
	case StrategyEndOfMonth:
		return PaymentStrategy{Kind: StrategyEndOfMonth}
	default:
		return PaymentStrategy{Kind: StrategyMonthly}
	}
}

// Descriptor renders the strategy back to its canonical string form, used for
// persistence and transport.
func (s PaymentStrategy) Descriptor() string {
	switch s.Kind {
	case StrategyFixedDay:
		return fmt.Sprintf("%s:%d", StrategyFixedDay, s.Day)
	case StrategyEveryNDays:
		return fmt.Sprintf("%s:%d", StrategyEveryNDays, s.Interval)
	case StrategyEndOfMonth:
		return string(StrategyEndOfMonth)
	default:
		return string(StrategyMonthly)
	}
}

// DueDates generates up to count due dates from start, advancing a cursor per
// the strategy. Generation stops silently as soon as the next computed due
// date would exceed end: fewer than count dates is a normal outcome, not an
// error.
func (s PaymentStrategy) DueDates(start, end dates.Date, count int) []dates.Date {
	out := make([]dates.Date, 0, count)
	cursor := start

	for i := 0; i < count; i++ {
		var due dates.Date

		switch s.Kind {
		case StrategyFixedDay:
			due = cursor.WithDay(s.Day)
			if due.Before(cursor) {
				due = due.AddMonths(1)
			}
		case StrategyEveryNDays:
			due = cursor
		case StrategyEndOfMonth:
			// Last calendar day of the month following the cursor's month.
			due = dates.New(cursor.Year, cursor.Month+2, 0)
		default:
			due = cursor
		}

		if due.After(end) {
			break
		}
		out = append(out, due)

		switch s.Kind {
		case StrategyFixedDay:
			cursor = due.AddMonths(1)
		case StrategyEveryNDays:
			cursor = cursor.AddDays(s.Interval)
		default:
			cursor = cursor.AddMonths(1)
		}
	}

	return out
}
