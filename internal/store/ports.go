// Package store defines the persistence ports the services depend on.
// Backends live in subpackages and in internal/storage.
package store

import (
	"context"
	"errors"

	"subtracker/internal/core"
)

var (
	// ErrNotFound is returned when a subscription ID has no record.
	ErrNotFound = errors.New("subscription not found")

	// ErrDuplicateCategory is returned when adding a category whose name
	// already exists, built-in or custom.
	ErrDuplicateCategory = errors.New("category already exists")
)

type (
	// SubscriptionStore persists subscriptions. PutSubscription is an
	// upsert keyed by ID.
	SubscriptionStore interface {
		ListSubscriptions(ctx context.Context) ([]core.Subscription, error)
		GetSubscription(ctx context.Context, id string) (core.Subscription, error)
		PutSubscription(ctx context.Context, sub core.Subscription) error
		DeleteSubscription(ctx context.Context, id string) error
	}

	// CategoryStore persists user-added categories only. The built-in set
	// is compiled in and merged at read time by the service layer.
	CategoryStore interface {
		ListCategories(ctx context.Context) ([]core.Category, error)
		AddCategory(ctx context.Context, cat core.Category) error
		DeleteCategory(ctx context.Context, name string) error
	}

	// Store bundles both ports; every backend implements it. ReplaceAll
	// swaps the whole data set in one atomic step so an import either
	// lands completely or not at all.
	Store interface {
		SubscriptionStore
		CategoryStore
		ReplaceAll(ctx context.Context, subs []core.Subscription, cats []core.Category) error
	}
)
