package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"subtracker/internal/amqp"
	"subtracker/internal/core"
	"subtracker/internal/store"
)

// RenewalProcessor advances stale billing histories. It runs at startup and
// on a timer so that histories stay current even when the app sits unopened
// across several billing dates.
type RenewalProcessor struct {
	store     store.SubscriptionStore
	publisher RenewalPublisher
}

func NewRenewalProcessor(st store.SubscriptionStore, publisher RenewalPublisher) *RenewalProcessor {
	return &RenewalProcessor{
		store:     st,
		publisher: publisher,
	}
}

// ProcessDueRenewals appends missed charges to every active subscription and
// publishes one renewal event per appended record. A failing subscription is
// logged and skipped; the rest still advance.
func (p *RenewalProcessor) ProcessDueRenewals(ctx context.Context, now time.Time) (int, error) {
	if p.store == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}
	today := core.DateOf(now)

	subs, err := p.store.ListSubscriptions(ctx)
	if err != nil {
		return 0, fmt.Errorf("list subscriptions: %w", err)
	}

	slog.InfoContext(ctx, "Processing due renewals",
		"total", len(subs),
		"processing_date", today.String())

	processedCount := 0

	for _, sub := range subs {
		if sub.Status != core.StatusActive {
			continue
		}

		history, next := core.AdvanceBillingHistory(sub, today)
		appended := history[len(sub.BillingHistory):]
		if len(appended) == 0 && next.Equal(sub.NextBillDate) {
			continue
		}

		sub.BillingHistory = history
		sub.NextBillDate = next
		sub.UpdatedAt = now

		if err := p.store.PutSubscription(ctx, sub); err != nil {
			slog.ErrorContext(ctx, "Failed to save advanced subscription",
				"id", sub.ID,
				"name", sub.Name,
				"error", err)
			continue
		}

		for _, record := range appended {
			p.publish(ctx, sub, record)
		}

		processedCount++
		slog.InfoContext(ctx, "Advanced billing history",
			"id", sub.ID,
			"name", sub.Name,
			"appended", len(appended),
			"next_bill_date", next.String())
	}

	slog.InfoContext(ctx, "Renewal processing complete",
		"processed", processedCount,
		"total_checked", len(subs))

	return processedCount, nil
}

// Run blocks, processing renewals immediately and then on every tick until
// ctx is done.
func (p *RenewalProcessor) Run(ctx context.Context, interval time.Duration) error {
	if _, err := p.ProcessDueRenewals(ctx, time.Now()); err != nil {
		slog.ErrorContext(ctx, "Initial renewal processing failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := p.ProcessDueRenewals(ctx, time.Now()); err != nil {
				slog.ErrorContext(ctx, "Renewal processing failed", "error", err)
			}
		}
	}
}

func (p *RenewalProcessor) publish(ctx context.Context, sub core.Subscription, record core.BillingRecord) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.PublishRenewal(ctx, amqp.NewRenewalMessage(sub, record)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish renewal message",
			"id", sub.ID, "date", record.Date.String(), "error", err)
	}
}
