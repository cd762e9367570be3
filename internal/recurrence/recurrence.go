// Package recurrence computes due dates for recurring subscriptions.
// It is purely computational: no I/O, deterministic for identical inputs.
package recurrence

import (
	"errors"
	"fmt"
	"time"

	"github.com/subscry/subscry/internal/models"
)

// ErrUnsupportedFrequency indicates a frequency value outside the known
// set. This is a data-model violation, not a transient condition.
var ErrUnsupportedFrequency = errors.New("unsupported frequency")

// DefaultCustomIntervalDays is the period used for custom-frequency
// subscriptions that never set an interval.
const DefaultCustomIntervalDays = 30

// NextDue returns the next instant the subscription is due, advancing
// from the given reference instant.
//
// A subscription whose start date is strictly after the reference is due
// on its start date. Otherwise the start date is advanced one period at
// a time until the result is strictly after the reference; a result
// equal to the reference keeps advancing. If an end date is set and the
// computed value exceeds it, the end date is returned instead.
func NextDue(sub models.Subscription, from time.Time) (time.Time, error) {
	next := sub.StartDate
	if next.After(from) {
		return next, nil
	}

	step, err := stepper(sub)
	if err != nil {
		return time.Time{}, err
	}
	for !next.After(from) {
		next = step(next)
	}

	if sub.EndDate != nil && next.After(*sub.EndDate) {
		return *sub.EndDate, nil
	}
	return next, nil
}

// stepper returns the function that advances an instant by one period of
// the subscription's rule.
func stepper(sub models.Subscription) (func(time.Time) time.Time, error) {
	switch sub.Frequency {
	case models.FrequencyDaily:
		return func(t time.Time) time.Time { return t.AddDate(0, 0, 1) }, nil
	case models.FrequencyWeekly:
		return func(t time.Time) time.Time { return t.AddDate(0, 0, 7) }, nil
	case models.FrequencyMonthly:
		return func(t time.Time) time.Time { return addMonths(t, 1) }, nil
	case models.FrequencyYearly:
		return func(t time.Time) time.Time { return addYears(t, 1) }, nil
	case models.FrequencyCustom:
		// An unset, zero or negative interval falls back to the default;
		// a non-positive step would never pass the reference.
		days := DefaultCustomIntervalDays
		if sub.CustomIntervalDays != nil && *sub.CustomIntervalDays > 0 {
			days = *sub.CustomIntervalDays
		}
		return func(t time.Time) time.Time { return t.AddDate(0, 0, days) }, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFrequency, sub.Frequency)
	}
}

// addMonths advances t by whole calendar months, preserving the day of
// month when the target month has it and clamping to the target month's
// last day otherwise (Jan 31 + 1 month = Feb 28/29). The stdlib AddDate
// would normalize the overflow into March instead.
func addMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	if last := daysIn(first.Year(), first.Month(), t.Location()); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// addYears advances t by whole calendar years with the same day-of-month
// clamping as addMonths (Feb 29 + 1 year = Feb 28).
func addYears(t time.Time, years int) time.Time {
	y, m, d := t.Date()
	if last := daysIn(y+years, m, t.Location()); d > last {
		d = last
	}
	return time.Date(y+years, m, d,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	// Day zero of the following month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// DaysUntil returns the number of calendar days from the reference
// instant to the target, negative when the target has already passed.
// Only the calendar dates matter; times of day are ignored.
func DaysUntil(target, from time.Time) int {
	a := time.Date(target.Year(), target.Month(), target.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	return int(a.Sub(b) / (24 * time.Hour))
}
