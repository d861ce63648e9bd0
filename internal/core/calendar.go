// Package core holds the billing engine: calendar primitives, money handling,
// the subscription domain model, and the pure calculation functions for next
// bill dates, billing histories and spending summaries.
package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar date with day precision. The wall-clock part is always
// midnight UTC so comparisons and day arithmetic stay exact regardless of the
// host timezone.
type Date struct {
	time.Time
}

var ErrInvalidDate = errors.New("invalid date")

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an instant to its calendar date. The instant's own location
// decides which day it falls on, so passing a local time.Now() yields the
// local calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses a "YYYY-MM-DD" string as a plain calendar date. The string
// is taken literally with no timezone conversion; UTC-based parsing followed
// by a local read would shift the date by a day in western timezones.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// String formats the date as zero-padded "YYYY-MM-DD". The zero Date formats
// as the empty string, matching optional date fields in persisted documents.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// AddMonths steps the date forward by whole calendar months with native
// rollover semantics: Jan 31 + 1 month lands on Mar 2 or Mar 3 depending on
// leap year. Billing cycles have always stepped this way; do not clamp at
// month end.
func (d Date) AddMonths(months int) Date {
	return Date{Time: d.Time.AddDate(0, months, 0)}
}

// AddDays steps the date forward by whole days.
func (d Date) AddDays(days int) Date {
	return Date{Time: d.Time.AddDate(0, 0, days)}
}

// After reports whether d is strictly after other.
func (d Date) After(other Date) bool {
	return d.Time.After(other.Time)
}

// Before reports whether d is strictly before other.
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

// Equal reports whether d and other are the same calendar date.
func (d Date) Equal(other Date) bool {
	return d.Time.Equal(other.Time)
}

// Year returns the calendar year.
func (d Date) Year() int {
	return d.Time.Year()
}

// MarshalJSON encodes the date as a "YYYY-MM-DD" string, "" for the zero Date.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes a "YYYY-MM-DD" string; "" decodes to the zero Date.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// CycleMonths maps the month-based billing cycles to their step size. Custom
// cycles step by a day count instead.
var CycleMonths = map[BillingCycle]int{
	CycleMonthly:   1,
	CycleQuarterly: 3,
	CycleYearly:    12,
}

// cycleMonthStep returns the month step for a cycle, falling back to 1 for
// anything outside the table. The fallback preserves how legacy custom
// subscriptions without a day count have always billed; new input with that
// shape is rejected by Subscription.Validate before it gets here.
func cycleMonthStep(cycle BillingCycle) int {
	if months, ok := CycleMonths[cycle]; ok {
		return months
	}
	return 1
}
