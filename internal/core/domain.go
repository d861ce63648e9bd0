package core

import (
	"errors"
	"strings"
	"time"
)

const (
	CNY Currency = "CNY"
	USD Currency = "USD"
)

const (
	CycleMonthly   BillingCycle = "monthly"
	CycleQuarterly BillingCycle = "quarterly"
	CycleYearly    BillingCycle = "yearly"
	CycleCustom    BillingCycle = "custom"
)

const (
	StatusActive    SubscriptionStatus = "active"
	StatusCancelled SubscriptionStatus = "cancelled"
)

type (
	Currency           string
	BillingCycle       string
	SubscriptionStatus string

	// BillingRecord is one realized charge: an immutable fact of what was
	// billed on a given date.
	BillingRecord struct {
		Date   Date  `json:"date"`
		Amount Money `json:"amount"`
	}

	// Subscription is the aggregate entity. It is a plain value: every state
	// transition replaces the whole record, nothing mutates in place.
	Subscription struct {
		ID              string             `json:"id"`
		Name            string             `json:"name"`
		Amount          Money              `json:"amount"`
		Currency        Currency           `json:"currency"`
		Cycle           BillingCycle       `json:"cycle"`
		CustomCycleDays int                `json:"customCycleDays,omitempty"`
		StartDate       Date               `json:"startDate"`
		NextBillDate    Date               `json:"nextBillDate"`
		Category        string             `json:"category"`
		Color           string             `json:"color"`
		Status          SubscriptionStatus `json:"status"`
		CancelledDate   Date               `json:"cancelledDate"`
		Note            string             `json:"note,omitempty"`
		BillingHistory  []BillingRecord    `json:"billingHistory"`
		CreatedAt       time.Time          `json:"createdAt"`
		UpdatedAt       time.Time          `json:"updatedAt"`
	}

	// Category names a spending group and its display color. Identity is the
	// name, matched case-sensitively.
	Category struct {
		Name  string `json:"name"`
		Color string `json:"color"`
	}
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrEmptyName         = errors.New("empty name")
	ErrNameTooLong       = errors.New("name too long (max 100 characters)")
	ErrEmptyColor        = errors.New("empty color")
	ErrInvalidCurrency   = errors.New("invalid currency")
	ErrInvalidCycle      = errors.New("invalid billing cycle")
	ErrInvalidCustomDays = errors.New("custom cycle requires a positive day count")
	ErrMissingStartDate  = errors.New("missing start date")
	ErrHistoryOrder      = errors.New("billing history must be ordered by date with unique dates")
)

func (c Currency) Valid() bool {
	return c == CNY || c == USD
}

func (c BillingCycle) Valid() bool {
	switch c {
	case CycleMonthly, CycleQuarterly, CycleYearly, CycleCustom:
		return true
	}
	return false
}

// Validate checks a subscription as received from user input. Legacy records
// loaded from storage may predate some of these rules; validation happens at
// the boundary, not inside the calculators.
func (s Subscription) Validate() error {
	if len(strings.TrimSpace(s.Name)) == 0 {
		return ErrEmptyName
	}
	if len(s.Name) > 100 {
		return ErrNameTooLong
	}
	if err := s.Amount.Validate(); err != nil {
		return err
	}
	if !s.Currency.Valid() {
		return ErrInvalidCurrency
	}
	if !s.Cycle.Valid() {
		return ErrInvalidCycle
	}
	if s.Cycle == CycleCustom && s.CustomCycleDays <= 0 {
		return ErrInvalidCustomDays
	}
	if s.StartDate.IsZero() {
		return ErrMissingStartDate
	}
	return s.validateHistory()
}

// validateHistory enforces ascending order and at-most-one charge per date.
func (s Subscription) validateHistory() error {
	for i := 1; i < len(s.BillingHistory); i++ {
		if !s.BillingHistory[i].Date.After(s.BillingHistory[i-1].Date) {
			return ErrHistoryOrder
		}
	}
	for _, r := range s.BillingHistory {
		if r.Amount.Cents < 0 {
			return ErrInvalidAmount
		}
	}
	return nil
}

// LastBillDate returns the date of the most recent recorded charge, or the
// zero Date for an empty history.
func (s Subscription) LastBillDate() Date {
	if len(s.BillingHistory) == 0 {
		return Date{}
	}
	return s.BillingHistory[len(s.BillingHistory)-1].Date
}

// HasRecordOn reports whether the history already holds a charge for the given
// date. Used as the duplicate guard on reactivation.
func (s Subscription) HasRecordOn(date Date) bool {
	for _, r := range s.BillingHistory {
		if r.Date.Equal(date) {
			return true
		}
	}
	return false
}

func (c Category) Validate() error {
	if len(strings.TrimSpace(c.Name)) == 0 {
		return ErrEmptyName
	}
	if c.Color == "" {
		return ErrEmptyColor
	}
	return nil
}
