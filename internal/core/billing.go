package core

import "time"

// NextBillDate returns the date of the next charge strictly after today.
//
// Custom cycles are a fixed day count: project ceil(elapsed/cycle) periods
// forward from the start date, then bump one more period if that still lands
// on or before today. Month-based cycles step the start date forward by the
// cycle's month count until the candidate is in the future.
//
// today is passed explicitly; callers pin it in tests and pass the current
// local date in production.
func NextBillDate(start Date, cycle BillingCycle, customDays int, today Date) Date {
	if cycle == CycleCustom && customDays > 0 {
		// Dates are UTC midnights, so day arithmetic via durations is exact.
		elapsed := today.Sub(start.Time)
		cycleLen := time.Duration(customDays) * 24 * time.Hour
		periods := elapsed / cycleLen
		if elapsed > 0 && elapsed%cycleLen != 0 {
			periods++
		}
		next := start.AddDays(int(periods) * customDays)
		if !next.After(today) {
			next = next.AddDays(customDays)
		}
		return next
	}

	months := cycleMonthStep(cycle)
	candidate := start
	for !candidate.After(today) {
		candidate = candidate.AddMonths(months)
	}
	return candidate
}

// GenerateBillingDates reconstructs every charge date from start through end,
// both bounds inclusive. The first charge is always the start date itself; a
// start date after end yields no dates.
func GenerateBillingDates(start Date, cycle BillingCycle, customDays int, end Date) []Date {
	if start.After(end) {
		return nil
	}

	dates := []Date{start}

	if cycle == CycleCustom && customDays > 0 {
		cursor := start
		for {
			cursor = cursor.AddDays(customDays)
			if cursor.After(end) {
				break
			}
			dates = append(dates, cursor)
		}
		return dates
	}

	months := cycleMonthStep(cycle)
	cursor := start
	for {
		cursor = cursor.AddMonths(months)
		if cursor.After(end) {
			break
		}
		dates = append(dates, cursor)
	}
	return dates
}

// GenerateBillingHistory is GenerateBillingDates with a constant amount per
// record. Price changes are not tracked historically: editing the amount
// regenerates the whole history at the new price.
func GenerateBillingHistory(start Date, cycle BillingCycle, customDays int, amount Money, end Date) []BillingRecord {
	dates := GenerateBillingDates(start, cycle, customDays, end)
	if dates == nil {
		return nil
	}
	records := make([]BillingRecord, len(dates))
	for i, d := range dates {
		records[i] = BillingRecord{Date: d, Amount: amount}
	}
	return records
}

// AdvanceBillingHistory brings a stale history current: it appends one record
// per missed charge between the last recorded date (or the start date for an
// empty history) and today, never touching what is already recorded. The
// returned next bill date is recomputed from the subscription's start date,
// the same anchor NextBillDate always uses.
//
// Cancelled subscriptions are returned unchanged.
func AdvanceBillingHistory(sub Subscription, today Date) ([]BillingRecord, Date) {
	if sub.Status == StatusCancelled {
		return sub.BillingHistory, sub.NextBillDate
	}

	anchor := sub.LastBillDate()
	if anchor.IsZero() {
		anchor = sub.StartDate
	}

	history := append([]BillingRecord(nil), sub.BillingHistory...)

	if sub.Cycle == CycleCustom && sub.CustomCycleDays > 0 {
		cursor := anchor
		for {
			cursor = cursor.AddDays(sub.CustomCycleDays)
			if cursor.After(today) {
				break
			}
			history = append(history, BillingRecord{Date: cursor, Amount: sub.Amount})
		}
	} else {
		months := cycleMonthStep(sub.Cycle)
		cursor := anchor
		for {
			cursor = cursor.AddMonths(months)
			if cursor.After(today) {
				break
			}
			history = append(history, BillingRecord{Date: cursor, Amount: sub.Amount})
		}
	}

	next := NextBillDate(sub.StartDate, sub.Cycle, sub.CustomCycleDays, today)
	return history, next
}
