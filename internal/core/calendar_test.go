package core

import (
	"encoding/json"
	"testing"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in  string
		out Date
		ok  bool
	}{
		{"2026-02-27", NewDate(2026, 2, 27), true},
		{"2025-01-01", NewDate(2025, 1, 1), true},
		{"2025-13-01", Date{}, false},
		{"2025-1-1", Date{}, false}, // not zero-padded
		{"not-a-date", Date{}, false},
		{"", Date{}, false},
	}
	for _, tc := range cases {
		got, err := ParseDate(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(tc.out) {
				t.Fatalf("%q expected %v, got %v (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestDateString(t *testing.T) {
	if got := NewDate(2026, 2, 3).String(); got != "2026-02-03" {
		t.Fatalf("expected zero-padded date, got %q", got)
	}
	if got := (Date{}).String(); got != "" {
		t.Fatalf("zero date should format as empty string, got %q", got)
	}
}

func TestAddMonthsRollover(t *testing.T) {
	cases := []struct {
		name   string
		start  Date
		months int
		want   Date
	}{
		{"plain step", NewDate(2025, 12, 1), 1, NewDate(2026, 1, 1)},
		{"quarter step", NewDate(2025, 6, 1), 3, NewDate(2025, 9, 1)},
		{"jan 31 non-leap rolls to mar 3", NewDate(2025, 1, 31), 1, NewDate(2025, 3, 3)},
		{"jan 31 leap rolls to mar 2", NewDate(2024, 1, 31), 1, NewDate(2024, 3, 2)},
		{"oct 31 rolls to dec 1", NewDate(2025, 10, 31), 1, NewDate(2025, 12, 1)},
		{"year step keeps feb 29 out", NewDate(2024, 2, 29), 12, NewDate(2025, 3, 1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.start.AddMonths(tc.months); !got.Equal(tc.want) {
				t.Fatalf("%v + %d months = %v, want %v", tc.start, tc.months, got, tc.want)
			}
		})
	}
}

func TestDateJSONRoundTrip(t *testing.T) {
	d := NewDate(2026, 2, 27)
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"2026-02-27"` {
		t.Fatalf("unexpected encoding %s", b)
	}
	var back Date
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(d) {
		t.Fatalf("round trip changed date: %v != %v", back, d)
	}

	var zero Date
	if err := json.Unmarshal([]byte(`""`), &zero); err != nil {
		t.Fatalf("unmarshal empty: %v", err)
	}
	if !zero.IsZero() {
		t.Fatalf("empty string should decode to zero date")
	}
}

func TestCycleMonths(t *testing.T) {
	cases := []struct {
		cycle BillingCycle
		want  int
	}{
		{CycleMonthly, 1},
		{CycleQuarterly, 3},
		{CycleYearly, 12},
		{CycleCustom, 1}, // legacy fallback when no day count is set
	}
	for _, tc := range cases {
		if got := cycleMonthStep(tc.cycle); got != tc.want {
			t.Fatalf("cycleMonthStep(%s) = %d, want %d", tc.cycle, got, tc.want)
		}
	}
}
