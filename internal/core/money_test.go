package core

import (
	"encoding/json"
	"testing"
)

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"12.34", 1234, false},
		{"12,34", 1234, false},
		{"12", 1200, false},
		{"0.5", 50, false},
		{".5", 50, false},
		{"12.3", 1230, false},
		{"12.345", 1234, false},
		{"12.346", 1235, false},
		{"12.3449", 1234, false},
		{" 48 ", 4800, false},
		{"", 0, true},
		{"0", 0, true},
		{"0.00", 0, true},
		{"-1", 0, true},
		{"+1", 0, true},
		{"abc", 0, true},
		{"1.2.3", 0, true},
		{"12.x", 0, true},
		{"92233720368547759", 0, true},
	}

	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("ParseDecimalToCents(%q) expected error, got %d", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseDecimalToCents(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("ParseDecimalToCents(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestMoneyJSON(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{4800, "48"},
		{11988, "119.88"},
		{50, "0.5"},
		{1549, "15.49"},
	}

	for _, tc := range cases {
		b, err := json.Marshal(Money{Cents: tc.cents})
		if err != nil {
			t.Fatalf("marshal %d: %v", tc.cents, err)
		}
		if string(b) != tc.want {
			t.Fatalf("marshal %d = %s, want %s", tc.cents, b, tc.want)
		}

		var back Money
		if err := json.Unmarshal(b, &back); err != nil {
			t.Fatalf("unmarshal %s: %v", b, err)
		}
		if back.Cents != tc.cents {
			t.Fatalf("round trip %d -> %s -> %d", tc.cents, b, back.Cents)
		}
	}
}

func TestMoneyUnmarshalRounding(t *testing.T) {
	var m Money
	if err := json.Unmarshal([]byte("12.345"), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m.Cents != 1235 {
		t.Fatalf("12.345 rounded to %d cents, want 1235", m.Cents)
	}

	if err := json.Unmarshal([]byte(`"not a number"`), &m); err == nil {
		t.Fatal("expected error for non-numeric input")
	}
}

func TestMoneyUnmarshalString(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{`"12.34"`, 1234},
		{`"12,34"`, 1234},
		{`"12.346"`, 1235},
		{`"48"`, 4800},
	}
	for _, tc := range cases {
		var m Money
		if err := json.Unmarshal([]byte(tc.in), &m); err != nil {
			t.Fatalf("unmarshal %s: %v", tc.in, err)
		}
		if m.Cents != tc.want {
			t.Fatalf("unmarshal %s = %d cents, want %d", tc.in, m.Cents, tc.want)
		}
	}

	for _, in := range []string{`"-5"`, `""`, `"1.2.3"`} {
		var m Money
		if err := json.Unmarshal([]byte(in), &m); err == nil {
			t.Fatalf("expected error for %s", in)
		}
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 100}).Validate(); err != nil {
		t.Fatalf("positive amount: %v", err)
	}
	if err := (Money{}).Validate(); err != ErrInvalidAmount {
		t.Fatalf("zero amount: got %v", err)
	}
	if err := (Money{Cents: -5}).Validate(); err != ErrInvalidAmount {
		t.Fatalf("negative amount: got %v", err)
	}
}

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		cents    int64
		currency Currency
		want     string
	}{
		{4800, CNY, "¥48.00"},
		{11988, USD, "$119.88"},
		{5, CNY, "¥0.05"},
		{-1234, USD, "-$12.34"},
	}

	for _, tc := range cases {
		if got := FormatAmount(tc.cents, tc.currency); got != tc.want {
			t.Fatalf("FormatAmount(%d, %s) = %q, want %q", tc.cents, tc.currency, got, tc.want)
		}
	}
}
