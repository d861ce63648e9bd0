package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Period selects the normalization target for projected spending.
type Period string

const (
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
)

var (
	three       = decimal.NewFromInt(3)
	four        = decimal.NewFromInt(4)
	twelve      = decimal.NewFromInt(12)
	thirty      = decimal.NewFromInt(30)
	daysPerYear = decimal.NewFromInt(365)
)

// ConvertToMonthly normalizes a cycle amount to a monthly rate. A custom cycle
// without a positive day count yields zero rather than an error; invalid input
// is rejected upstream and a defensive zero keeps aggregation total-safe.
func ConvertToMonthly(amount Money, cycle BillingCycle, customDays int) decimal.Decimal {
	switch cycle {
	case CycleQuarterly:
		return amount.Decimal().Div(three)
	case CycleYearly:
		return amount.Decimal().Div(twelve)
	case CycleCustom:
		if customDays <= 0 {
			return decimal.Zero
		}
		return amount.Decimal().Div(decimal.NewFromInt(int64(customDays)).Div(thirty))
	default:
		return amount.Decimal()
	}
}

// ConvertToYearly normalizes a cycle amount to a yearly rate.
func ConvertToYearly(amount Money, cycle BillingCycle, customDays int) decimal.Decimal {
	switch cycle {
	case CycleMonthly:
		return amount.Decimal().Mul(twelve)
	case CycleQuarterly:
		return amount.Decimal().Mul(four)
	case CycleCustom:
		if customDays <= 0 {
			return decimal.Zero
		}
		return amount.Decimal().Mul(daysPerYear.Div(decimal.NewFromInt(int64(customDays))))
	default:
		return amount.Decimal()
	}
}

// CurrencyTotals carries one ledger's projected rates.
type CurrencyTotals struct {
	Monthly float64 `json:"monthly"`
	Yearly  float64 `json:"yearly"`
}

// SpendingSummary is the projected recurring cost per currency ledger. The two
// ledgers are independent and never converted into each other.
type SpendingSummary struct {
	CNY CurrencyTotals `json:"CNY"`
	USD CurrencyTotals `json:"USD"`
}

// CalcSpendingSummary sums cycle-normalized amounts across active
// subscriptions. Cancelled subscriptions contribute nothing to projections.
func CalcSpendingSummary(subs []Subscription) SpendingSummary {
	totals := map[Currency][2]decimal.Decimal{
		CNY: {decimal.Zero, decimal.Zero},
		USD: {decimal.Zero, decimal.Zero},
	}
	for _, sub := range subs {
		if sub.Status != StatusActive {
			continue
		}
		t := totals[sub.Currency]
		t[0] = t[0].Add(ConvertToMonthly(sub.Amount, sub.Cycle, sub.CustomCycleDays))
		t[1] = t[1].Add(ConvertToYearly(sub.Amount, sub.Cycle, sub.CustomCycleDays))
		totals[sub.Currency] = t
	}
	return SpendingSummary{
		CNY: CurrencyTotals{Monthly: totals[CNY][0].InexactFloat64(), Yearly: totals[CNY][1].InexactFloat64()},
		USD: CurrencyTotals{Monthly: totals[USD][0].InexactFloat64(), Yearly: totals[USD][1].InexactFloat64()},
	}
}

// ActualSpending is the realized spend per currency ledger over a period.
type ActualSpending struct {
	CNY Money `json:"CNY"`
	USD Money `json:"USD"`
}

// CalcYearlyActualSpending sums every billing record dated in the given year.
// History is a fact of what was charged: cancelled subscriptions' records
// still count.
func CalcYearlyActualSpending(subs []Subscription, year int) ActualSpending {
	var out ActualSpending
	for _, sub := range subs {
		var cents int64
		for _, r := range sub.BillingHistory {
			if r.Date.Year() == year {
				cents += r.Amount.Cents
			}
		}
		switch sub.Currency {
		case USD:
			out.USD.Cents += cents
		default:
			out.CNY.Cents += cents
		}
	}
	return out
}

// BreakdownItem is one slice of a breakdown chart. Category is set only for
// item-level breakdowns.
type BreakdownItem struct {
	Name     string  `json:"name"`
	Value    float64 `json:"value"`
	Color    string  `json:"color"`
	Category string  `json:"category,omitempty"`
}

// CurrencyBreakdown is a breakdown split by currency ledger.
type CurrencyBreakdown struct {
	CNY []BreakdownItem `json:"CNY"`
	USD []BreakdownItem `json:"USD"`
}

// CalcCategoryBreakdown groups projected spending of active subscriptions by
// category, resolving colors against the known category list.
func CalcCategoryBreakdown(subs []Subscription, period Period, categories []Category) CurrencyBreakdown {
	convert := ConvertToMonthly
	if period == PeriodYearly {
		convert = ConvertToYearly
	}

	sums := map[Currency]map[string]decimal.Decimal{CNY: {}, USD: {}}
	for _, sub := range subs {
		if sub.Status != StatusActive {
			continue
		}
		m := sums[sub.Currency]
		if m == nil {
			continue
		}
		m[sub.Category] = m[sub.Category].Add(convert(sub.Amount, sub.Cycle, sub.CustomCycleDays))
	}

	return CurrencyBreakdown{
		CNY: categoryItems(sums[CNY], categories),
		USD: categoryItems(sums[USD], categories),
	}
}

// CalcYearlyCategoryBreakdown groups realized spending for the given year by
// category. Like CalcYearlyActualSpending it includes cancelled subscriptions,
// and categories with a zero year total are left out.
func CalcYearlyCategoryBreakdown(subs []Subscription, categories []Category, year int) CurrencyBreakdown {
	sums := map[Currency]map[string]decimal.Decimal{CNY: {}, USD: {}}
	for _, sub := range subs {
		var cents int64
		for _, r := range sub.BillingHistory {
			if r.Date.Year() == year {
				cents += r.Amount.Cents
			}
		}
		if cents <= 0 {
			continue
		}
		m := sums[sub.Currency]
		if m == nil {
			continue
		}
		m[sub.Category] = m[sub.Category].Add(decimal.New(cents, -2))
	}

	return CurrencyBreakdown{
		CNY: categoryItems(sums[CNY], categories),
		USD: categoryItems(sums[USD], categories),
	}
}

// categoryItems renders a category→value map as breakdown items sorted by
// name, with the deleted-category color fallback applied.
func categoryItems(sums map[string]decimal.Decimal, categories []Category) []BreakdownItem {
	items := make([]BreakdownItem, 0, len(sums))
	for name, value := range sums {
		items = append(items, BreakdownItem{
			Name:  name,
			Value: value.InexactFloat64(),
			Color: CategoryColor(categories, name),
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items
}

// CalcItemBreakdown lists each active subscription's projected rate for the
// given period, sorted by category then value descending.
func CalcItemBreakdown(subs []Subscription, period Period) CurrencyBreakdown {
	var out CurrencyBreakdown
	for _, sub := range subs {
		if sub.Status != StatusActive {
			continue
		}
		var value decimal.Decimal
		if period == PeriodYearly {
			value = ConvertToYearly(sub.Amount, sub.Cycle, sub.CustomCycleDays)
		} else {
			value = ConvertToMonthly(sub.Amount, sub.Cycle, sub.CustomCycleDays)
		}
		if value.Sign() <= 0 {
			continue
		}
		item := BreakdownItem{Name: sub.Name, Value: value.InexactFloat64(), Color: sub.Color, Category: sub.Category}
		if sub.Currency == USD {
			out.USD = append(out.USD, item)
		} else {
			out.CNY = append(out.CNY, item)
		}
	}
	sortItems(out.CNY)
	sortItems(out.USD)
	return out
}

// CalcYearlyItemBreakdown lists each subscription's realized spend for the
// given year, cancelled included, sorted by category then value descending.
func CalcYearlyItemBreakdown(subs []Subscription, year int) CurrencyBreakdown {
	var out CurrencyBreakdown
	for _, sub := range subs {
		var cents int64
		for _, r := range sub.BillingHistory {
			if r.Date.Year() == year {
				cents += r.Amount.Cents
			}
		}
		if cents <= 0 {
			continue
		}
		item := BreakdownItem{Name: sub.Name, Value: float64(cents) / 100.0, Color: sub.Color, Category: sub.Category}
		if sub.Currency == USD {
			out.USD = append(out.USD, item)
		} else {
			out.CNY = append(out.CNY, item)
		}
	}
	sortItems(out.CNY)
	sortItems(out.USD)
	return out
}

func sortItems(items []BreakdownItem) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Category != items[j].Category {
			return items[i].Category < items[j].Category
		}
		return items[i].Value > items[j].Value
	})
}
