// Package services orchestrates the domain calculators, the store, and the
// renewal event publisher.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"subtracker/internal/amqp"
	"subtracker/internal/core"
	"subtracker/internal/store"
)

var (
	// ErrBuiltinCategory is returned when deleting one of the compiled-in
	// categories.
	ErrBuiltinCategory = errors.New("built-in categories cannot be deleted")

	// ErrAlreadyCancelled and ErrNotCancelled guard the status transitions.
	ErrAlreadyCancelled = errors.New("subscription is already cancelled")
	ErrNotCancelled     = errors.New("subscription is not cancelled")
)

// RenewalPublisher is the outbound port for renewal events. *amqp.Client
// implements it; a nil publisher disables publishing.
type RenewalPublisher interface {
	PublishRenewal(ctx context.Context, msg *amqp.RenewalMessage) error
}

// SubscriptionInput carries the user-editable fields of a subscription.
type SubscriptionInput struct {
	Name            string            `json:"name"`
	Amount          core.Money        `json:"amount"`
	Currency        core.Currency     `json:"currency"`
	Cycle           core.BillingCycle `json:"cycle"`
	CustomCycleDays int               `json:"customCycleDays,omitempty"`
	StartDate       core.Date         `json:"startDate"`
	Category        string            `json:"category"`
	Color           string            `json:"color"`
	Note            string            `json:"note,omitempty"`
}

// SubscriptionService implements the application operations. All writes go to
// the store first; event publishing is best-effort and never fails a request.
type SubscriptionService struct {
	store     store.Store
	publisher RenewalPublisher
	now       func() time.Time
}

func NewSubscriptionService(st store.Store, publisher RenewalPublisher) *SubscriptionService {
	return &SubscriptionService{
		store:     st,
		publisher: publisher,
		now:       time.Now,
	}
}

// WithClock overrides the time source, used by tests.
func (s *SubscriptionService) WithClock(now func() time.Time) *SubscriptionService {
	s.now = now
	return s
}

func (s *SubscriptionService) today() core.Date {
	return core.DateOf(s.now())
}

// List returns all subscriptions, newest first.
func (s *SubscriptionService) List(ctx context.Context) ([]core.Subscription, error) {
	return s.store.ListSubscriptions(ctx)
}

// Get returns one subscription by ID.
func (s *SubscriptionService) Get(ctx context.Context, id string) (core.Subscription, error) {
	return s.store.GetSubscription(ctx, id)
}

// Create builds a subscription from user input: the billing history is
// reconstructed from the start date through today and the next bill date is
// projected past today.
func (s *SubscriptionService) Create(ctx context.Context, input SubscriptionInput) (core.Subscription, error) {
	now := s.now()
	today := s.today()

	sub := core.Subscription{
		ID:              uuid.NewString(),
		Name:            input.Name,
		Amount:          input.Amount,
		Currency:        input.Currency,
		Cycle:           input.Cycle,
		CustomCycleDays: input.CustomCycleDays,
		StartDate:       input.StartDate,
		Category:        input.Category,
		Color:           input.Color,
		Note:            input.Note,
		Status:          core.StatusActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if sub.Color == "" {
		sub.Color = s.pickColor(ctx, sub.Name, sub.Category)
	}

	sub.BillingHistory = core.GenerateBillingHistory(sub.StartDate, sub.Cycle, sub.CustomCycleDays, sub.Amount, today)
	sub.NextBillDate = core.NextBillDate(sub.StartDate, sub.Cycle, sub.CustomCycleDays, today)

	if err := sub.Validate(); err != nil {
		return core.Subscription{}, err
	}
	if err := s.store.PutSubscription(ctx, sub); err != nil {
		return core.Subscription{}, fmt.Errorf("save subscription: %w", err)
	}

	slog.InfoContext(ctx, "Subscription created",
		"id", sub.ID,
		"name", sub.Name,
		"amount", core.FormatAmount(sub.Amount.Cents, sub.Currency),
		"cycle", sub.Cycle,
		"records", len(sub.BillingHistory))

	return sub, nil
}

// Update replaces the editable fields and regenerates the billing history
// from scratch: a changed amount or cycle rewrites past records at the new
// terms rather than tracking price history.
func (s *SubscriptionService) Update(ctx context.Context, id string, input SubscriptionInput) (core.Subscription, error) {
	sub, err := s.store.GetSubscription(ctx, id)
	if err != nil {
		return core.Subscription{}, err
	}
	today := s.today()

	sub.Name = input.Name
	sub.Amount = input.Amount
	sub.Currency = input.Currency
	sub.Cycle = input.Cycle
	sub.CustomCycleDays = input.CustomCycleDays
	sub.StartDate = input.StartDate
	sub.Category = input.Category
	sub.Note = input.Note
	if input.Color != "" {
		sub.Color = input.Color
	}
	sub.UpdatedAt = s.now()

	sub.BillingHistory = core.GenerateBillingHistory(sub.StartDate, sub.Cycle, sub.CustomCycleDays, sub.Amount, today)
	sub.NextBillDate = core.NextBillDate(sub.StartDate, sub.Cycle, sub.CustomCycleDays, today)

	if err := sub.Validate(); err != nil {
		return core.Subscription{}, err
	}
	if err := s.store.PutSubscription(ctx, sub); err != nil {
		return core.Subscription{}, fmt.Errorf("save subscription: %w", err)
	}
	return sub, nil
}

// Cancel marks a subscription cancelled as of today. History stays as a
// record of what was charged; the next bill date is cleared since nothing
// further will accrue.
func (s *SubscriptionService) Cancel(ctx context.Context, id string) (core.Subscription, error) {
	sub, err := s.store.GetSubscription(ctx, id)
	if err != nil {
		return core.Subscription{}, err
	}
	if sub.Status == core.StatusCancelled {
		return core.Subscription{}, ErrAlreadyCancelled
	}

	sub.Status = core.StatusCancelled
	sub.CancelledDate = s.today()
	sub.NextBillDate = core.Date{}
	sub.UpdatedAt = s.now()

	if err := s.store.PutSubscription(ctx, sub); err != nil {
		return core.Subscription{}, fmt.Errorf("save subscription: %w", err)
	}

	slog.InfoContext(ctx, "Subscription cancelled", "id", sub.ID, "name", sub.Name)
	return sub, nil
}

// Reactivate resumes a cancelled subscription. A charge for today is appended
// unless one is already recorded, so cancel/reactivate on the same day does
// not double-bill.
func (s *SubscriptionService) Reactivate(ctx context.Context, id string) (core.Subscription, error) {
	sub, err := s.store.GetSubscription(ctx, id)
	if err != nil {
		return core.Subscription{}, err
	}
	if sub.Status != core.StatusCancelled {
		return core.Subscription{}, ErrNotCancelled
	}
	today := s.today()

	sub.Status = core.StatusActive
	sub.CancelledDate = core.Date{}
	sub.UpdatedAt = s.now()

	var appended *core.BillingRecord
	if !sub.HasRecordOn(today) {
		record := core.BillingRecord{Date: today, Amount: sub.Amount}
		sub.BillingHistory = append(sub.BillingHistory, record)
		appended = &record
	}
	sub.NextBillDate = core.NextBillDate(sub.StartDate, sub.Cycle, sub.CustomCycleDays, today)

	if err := s.store.PutSubscription(ctx, sub); err != nil {
		return core.Subscription{}, fmt.Errorf("save subscription: %w", err)
	}

	if appended != nil {
		s.publish(ctx, sub, *appended)
	}

	slog.InfoContext(ctx, "Subscription reactivated",
		"id", sub.ID, "name", sub.Name, "charged_today", appended != nil)
	return sub, nil
}

// Delete removes a subscription and its history permanently.
func (s *SubscriptionService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteSubscription(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Subscription deleted", "id", id)
	return nil
}

// Categories returns the built-in set merged with user-added categories.
func (s *SubscriptionService) Categories(ctx context.Context) ([]core.Category, error) {
	custom, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return core.AllCategories(custom), nil
}

// AddCategory adds a user category. An empty color gets the first unused
// palette color.
func (s *SubscriptionService) AddCategory(ctx context.Context, cat core.Category) (core.Category, error) {
	all, err := s.Categories(ctx)
	if err != nil {
		return core.Category{}, err
	}
	for _, existing := range all {
		if existing.Name == cat.Name {
			return core.Category{}, store.ErrDuplicateCategory
		}
	}

	if cat.Color == "" {
		cat.Color = core.AssignCategoryColor(all)
	}
	if err := cat.Validate(); err != nil {
		return core.Category{}, err
	}
	if err := s.store.AddCategory(ctx, cat); err != nil {
		return core.Category{}, err
	}
	return cat, nil
}

// DeleteCategory removes a user category. Built-in categories are fixed.
// Subscriptions referencing the deleted name keep it; their breakdown color
// falls back to the default.
func (s *SubscriptionService) DeleteCategory(ctx context.Context, name string) error {
	for _, builtin := range core.DefaultCategories() {
		if builtin.Name == name {
			return ErrBuiltinCategory
		}
	}
	return s.store.DeleteCategory(ctx, name)
}

// Export assembles the portable document of all data.
func (s *SubscriptionService) Export(ctx context.Context) (core.ExportData, error) {
	subs, err := s.store.ListSubscriptions(ctx)
	if err != nil {
		return core.ExportData{}, fmt.Errorf("list subscriptions: %w", err)
	}
	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return core.ExportData{}, fmt.Errorf("list categories: %w", err)
	}
	return core.BuildExportData(subs, cats, s.now()), nil
}

// Import validates an export document and replaces the whole data set with
// it. There is no merge and no partial import.
func (s *SubscriptionService) Import(ctx context.Context, data []byte) (int, error) {
	doc, err := core.ParseImportData(data)
	if err != nil {
		return 0, err
	}

	if err := s.store.ReplaceAll(ctx, doc.Subscriptions, doc.Categories); err != nil {
		return 0, fmt.Errorf("replace data set: %w", err)
	}

	slog.InfoContext(ctx, "Data imported",
		"subscriptions", len(doc.Subscriptions),
		"categories", len(doc.Categories))
	return len(doc.Subscriptions), nil
}

// pickColor resolves a display color when the user did not choose one: a
// known brand color for the service name, else the category color.
func (s *SubscriptionService) pickColor(ctx context.Context, name, category string) string {
	if color := core.MatchBrandColor(name); color != "" {
		return color
	}
	cats, err := s.Categories(ctx)
	if err != nil {
		return core.DefaultCategoryColor
	}
	return core.CategoryColor(cats, category)
}

func (s *SubscriptionService) publish(ctx context.Context, sub core.Subscription, record core.BillingRecord) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishRenewal(ctx, amqp.NewRenewalMessage(sub, record)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish renewal message",
			"id", sub.ID, "date", record.Date.String(), "error", err)
		// The write already succeeded; events are best-effort.
	}
}
