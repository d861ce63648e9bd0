package core

import (
	"testing"
	"time"
)

// today used by most fixtures, pinned for determinism.
var testToday = NewDate(2026, 2, 27)

func mustDate(t *testing.T, s string) Date {
	t.Helper()
	d, err := ParseDate(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return d
}

func datesOf(records []BillingRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Date.String()
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func testSub(overrides func(*Subscription)) Subscription {
	sub := Subscription{
		ID:             "test-1",
		Name:           "Test Sub",
		Amount:         Money{Cents: 4800},
		Currency:       CNY,
		Cycle:          CycleMonthly,
		StartDate:      NewDate(2025, 12, 1),
		NextBillDate:   NewDate(2026, 3, 1),
		Category:       "工具软件",
		Color:          "#5B9EF4",
		Status:         StatusActive,
		CreatedAt:      time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt:      time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC),
		BillingHistory: nil,
	}
	if overrides != nil {
		overrides(&sub)
	}
	return sub
}

func TestGenerateBillingDates(t *testing.T) {
	cases := []struct {
		name       string
		start      string
		cycle      BillingCycle
		customDays int
		end        string
		want       []string
	}{
		{
			name:  "monthly from december",
			start: "2025-12-01", cycle: CycleMonthly, end: "2026-02-27",
			want: []string{"2025-12-01", "2026-01-01", "2026-02-01"},
		},
		{
			name:  "yearly",
			start: "2025-01-15", cycle: CycleYearly, end: "2026-02-27",
			want: []string{"2025-01-15", "2026-01-15"},
		},
		{
			name:  "quarterly",
			start: "2025-06-01", cycle: CycleQuarterly, end: "2026-02-27",
			want: []string{"2025-06-01", "2025-09-01", "2025-12-01"},
		},
		{
			name:  "custom 30 days",
			start: "2026-01-01", cycle: CycleCustom, customDays: 30, end: "2026-02-27",
			want: []string{"2026-01-01", "2026-01-31"},
		},
		{
			name:  "future start yields nothing",
			start: "2027-01-01", cycle: CycleMonthly, end: "2026-02-27",
			want: nil,
		},
		{
			name:  "start equals end",
			start: "2026-02-27", cycle: CycleMonthly, end: "2026-02-27",
			want: []string{"2026-02-27"},
		},
		{
			name:  "end lands exactly on a step",
			start: "2025-12-01", cycle: CycleMonthly, end: "2026-02-01",
			want: []string{"2025-12-01", "2026-01-01", "2026-02-01"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dates := GenerateBillingDates(mustDate(t, tc.start), tc.cycle, tc.customDays, mustDate(t, tc.end))
			got := make([]string, len(dates))
			for i, d := range dates {
				got[i] = d.String()
			}
			if !equalStrings(got, tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestGenerateBillingHistory(t *testing.T) {
	history := GenerateBillingHistory(NewDate(2025, 12, 1), CycleMonthly, 0, Money{Cents: 4800}, testToday)
	want := []string{"2025-12-01", "2026-01-01", "2026-02-01"}
	if !equalStrings(datesOf(history), want) {
		t.Fatalf("dates %v, want %v", datesOf(history), want)
	}
	for _, r := range history {
		if r.Amount.Cents != 4800 {
			t.Fatalf("every record carries the subscription amount, got %d", r.Amount.Cents)
		}
	}
}

func TestGenerateBillingHistoryIdempotent(t *testing.T) {
	first := GenerateBillingHistory(NewDate(2025, 6, 1), CycleQuarterly, 0, Money{Cents: 2500}, testToday)
	second := GenerateBillingHistory(NewDate(2025, 6, 1), CycleQuarterly, 0, Money{Cents: 2500}, testToday)
	if !equalStrings(datesOf(first), datesOf(second)) {
		t.Fatalf("regeneration at the same cutoff must be identical: %v vs %v", datesOf(first), datesOf(second))
	}
}

func TestNextBillDate(t *testing.T) {
	cases := []struct {
		name       string
		start      string
		cycle      BillingCycle
		customDays int
		want       string
	}{
		{"monthly mid-cycle", "2025-12-01", CycleMonthly, 0, "2026-03-01"},
		{"yearly", "2025-01-15", CycleYearly, 0, "2027-01-15"},
		{"quarterly", "2025-06-01", CycleQuarterly, 0, "2026-03-01"},
		{"custom 30 days", "2026-01-01", CycleCustom, 30, "2026-03-02"},
		{"custom lands on today advances once more", "2026-02-12", CycleCustom, 15, "2026-03-14"},
		{"start today", "2026-02-27", CycleMonthly, 0, "2026-03-27"},
		{"future start", "2026-06-01", CycleMonthly, 0, "2026-06-01"},
		{"custom missing day count falls back to monthly", "2025-12-05", CycleCustom, 0, "2026-03-05"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NextBillDate(mustDate(t, tc.start), tc.cycle, tc.customDays, testToday)
			if got.String() != tc.want {
				t.Fatalf("got %s, want %s", got, tc.want)
			}
			if !got.After(testToday) {
				t.Fatalf("next bill date %s must be strictly after today %s", got, testToday)
			}
		})
	}
}

func TestNextBillDateAlwaysFuture(t *testing.T) {
	// Sweep a few months of todays against mixed cycles; the calculator must
	// never return today or earlier.
	starts := []Date{NewDate(2025, 1, 31), NewDate(2025, 6, 15), NewDate(2026, 2, 27)}
	cycles := []struct {
		cycle BillingCycle
		days  int
	}{{CycleMonthly, 0}, {CycleQuarterly, 0}, {CycleYearly, 0}, {CycleCustom, 7}, {CycleCustom, 365}}

	today := NewDate(2026, 1, 1)
	for day := 0; day < 90; day++ {
		for _, start := range starts {
			for _, c := range cycles {
				got := NextBillDate(start, c.cycle, c.days, today)
				if !got.After(today) {
					t.Fatalf("NextBillDate(%s, %s, %d) at today=%s returned %s",
						start, c.cycle, c.days, today, got)
				}
			}
		}
		today = today.AddDays(1)
	}
}

func TestAdvanceBillingHistoryFillsMissing(t *testing.T) {
	sub := testSub(func(s *Subscription) {
		s.BillingHistory = []BillingRecord{{Date: NewDate(2025, 12, 1), Amount: Money{Cents: 4800}}}
	})

	history, next := AdvanceBillingHistory(sub, testToday)
	want := []string{"2025-12-01", "2026-01-01", "2026-02-01"}
	if !equalStrings(datesOf(history), want) {
		t.Fatalf("dates %v, want %v", datesOf(history), want)
	}
	if next.String() != "2026-03-01" {
		t.Fatalf("next bill date %s, want 2026-03-01", next)
	}
	// Input history must not be mutated.
	if len(sub.BillingHistory) != 1 {
		t.Fatalf("input history changed, len=%d", len(sub.BillingHistory))
	}
}

func TestAdvanceBillingHistoryEmptyHistory(t *testing.T) {
	sub := testSub(nil)
	history, _ := AdvanceBillingHistory(sub, testToday)
	// Anchor is startDate; the start date itself is not re-appended, only the
	// stepped dates that follow it.
	want := []string{"2026-01-01", "2026-02-01"}
	if !equalStrings(datesOf(history), want) {
		t.Fatalf("dates %v, want %v", datesOf(history), want)
	}
}

func TestAdvanceBillingHistoryCancelledNoOp(t *testing.T) {
	sub := testSub(func(s *Subscription) {
		s.Status = StatusCancelled
		s.BillingHistory = []BillingRecord{{Date: NewDate(2025, 12, 1), Amount: Money{Cents: 4800}}}
	})

	history, next := AdvanceBillingHistory(sub, testToday)
	if !equalStrings(datesOf(history), []string{"2025-12-01"}) {
		t.Fatalf("cancelled subscription must not advance, got %v", datesOf(history))
	}
	if !next.Equal(sub.NextBillDate) {
		t.Fatalf("cancelled subscription next bill date changed to %s", next)
	}
}

func TestAdvanceBillingHistoryFixedPoint(t *testing.T) {
	sub := testSub(func(s *Subscription) {
		s.BillingHistory = []BillingRecord{{Date: NewDate(2025, 12, 1), Amount: Money{Cents: 4800}}}
	})

	once, _ := AdvanceBillingHistory(sub, testToday)
	sub.BillingHistory = once
	twice, _ := AdvanceBillingHistory(sub, testToday)
	if len(twice) != len(once) {
		t.Fatalf("second advancement at the same today appended records: %v vs %v", datesOf(twice), datesOf(once))
	}
}

func TestAdvanceBillingHistoryAlreadyCurrent(t *testing.T) {
	sub := testSub(func(s *Subscription) {
		s.StartDate = NewDate(2026, 2, 1)
		s.BillingHistory = []BillingRecord{{Date: NewDate(2026, 2, 1), Amount: Money{Cents: 4800}}}
	})

	history, _ := AdvanceBillingHistory(sub, NewDate(2026, 2, 15))
	if !equalStrings(datesOf(history), []string{"2026-02-01"}) {
		t.Fatalf("up-to-date history must stay unchanged, got %v", datesOf(history))
	}
}

func TestAdvanceBillingHistoryCustomCycle(t *testing.T) {
	sub := testSub(func(s *Subscription) {
		s.Cycle = CycleCustom
		s.CustomCycleDays = 30
		s.StartDate = NewDate(2026, 1, 1)
		s.BillingHistory = []BillingRecord{{Date: NewDate(2026, 1, 1), Amount: Money{Cents: 4800}}}
	})

	history, next := AdvanceBillingHistory(sub, testToday)
	if !equalStrings(datesOf(history), []string{"2026-01-01", "2026-01-31"}) {
		t.Fatalf("dates %v", datesOf(history))
	}
	if next.String() != "2026-03-02" {
		t.Fatalf("next bill date %s, want 2026-03-02", next)
	}
}
