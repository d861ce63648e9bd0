package core

import (
	"errors"
	"strings"
	"testing"
)

func TestSubscriptionValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Subscription)
		wantErr error
	}{
		{"valid", nil, nil},
		{"empty name", func(s *Subscription) { s.Name = "  " }, ErrEmptyName},
		{"zero amount", func(s *Subscription) { s.Amount = Money{} }, ErrInvalidAmount},
		{"negative amount", func(s *Subscription) { s.Amount = Money{Cents: -100} }, ErrInvalidAmount},
		{"unknown currency", func(s *Subscription) { s.Currency = "EUR" }, ErrInvalidCurrency},
		{"unknown cycle", func(s *Subscription) { s.Cycle = "weekly" }, ErrInvalidCycle},
		{"custom without days", func(s *Subscription) { s.Cycle = CycleCustom; s.CustomCycleDays = 0 }, ErrInvalidCustomDays},
		{"custom with negative days", func(s *Subscription) { s.Cycle = CycleCustom; s.CustomCycleDays = -7 }, ErrInvalidCustomDays},
		{"missing start date", func(s *Subscription) { s.StartDate = Date{} }, ErrMissingStartDate},
		{
			"history out of order",
			func(s *Subscription) {
				s.BillingHistory = []BillingRecord{
					{Date: NewDate(2026, 2, 1), Amount: Money{Cents: 4800}},
					{Date: NewDate(2026, 1, 1), Amount: Money{Cents: 4800}},
				}
			},
			ErrHistoryOrder,
		},
		{
			"duplicate history date",
			func(s *Subscription) {
				s.BillingHistory = []BillingRecord{
					{Date: NewDate(2026, 1, 1), Amount: Money{Cents: 4800}},
					{Date: NewDate(2026, 1, 1), Amount: Money{Cents: 4800}},
				}
			},
			ErrHistoryOrder,
		},
		{
			"negative history amount",
			func(s *Subscription) {
				s.BillingHistory = []BillingRecord{{Date: NewDate(2026, 1, 1), Amount: Money{Cents: -1}}}
			},
			ErrInvalidAmount,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sub := testSub(tc.mutate)
			err := sub.Validate()
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestSubscriptionValidateNameLength(t *testing.T) {
	sub := testSub(func(s *Subscription) { s.Name = strings.Repeat("a", 101) })
	if sub.Validate() == nil {
		t.Fatal("expected error for 101-character name")
	}
	sub = testSub(func(s *Subscription) { s.Name = strings.Repeat("a", 100) })
	if err := sub.Validate(); err != nil {
		t.Fatalf("100-character name must pass: %v", err)
	}
}

func TestLastBillDate(t *testing.T) {
	sub := testSub(nil)
	if !sub.LastBillDate().IsZero() {
		t.Fatal("empty history must yield the zero date")
	}

	sub.BillingHistory = []BillingRecord{
		{Date: NewDate(2026, 1, 1), Amount: Money{Cents: 4800}},
		{Date: NewDate(2026, 2, 1), Amount: Money{Cents: 4800}},
	}
	if got := sub.LastBillDate(); got.String() != "2026-02-01" {
		t.Fatalf("got %s, want 2026-02-01", got)
	}
}

func TestHasRecordOn(t *testing.T) {
	sub := testSub(func(s *Subscription) {
		s.BillingHistory = []BillingRecord{{Date: NewDate(2026, 1, 1), Amount: Money{Cents: 4800}}}
	})
	if !sub.HasRecordOn(NewDate(2026, 1, 1)) {
		t.Fatal("expected a record on 2026-01-01")
	}
	if sub.HasRecordOn(NewDate(2026, 1, 2)) {
		t.Fatal("no record expected on 2026-01-02")
	}
}

func TestCategoryValidate(t *testing.T) {
	if err := (Category{Name: "音乐", Color: "#FF6B8A"}).Validate(); err != nil {
		t.Fatalf("valid category: %v", err)
	}
	if err := (Category{Name: " ", Color: "#FF6B8A"}).Validate(); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("blank name: got %v", err)
	}
	if (Category{Name: "音乐"}).Validate() == nil {
		t.Fatal("expected error for missing color")
	}
}
