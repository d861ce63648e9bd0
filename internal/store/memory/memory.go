// Package memory is the in-memory store backend, used by tests and by the
// memory data backend for running without a database file.
package memory

import (
	"context"
	"sort"
	"sync"

	"subtracker/internal/core"
	"subtracker/internal/store"
)

type Store struct {
	mu   sync.Mutex
	subs map[string]core.Subscription
	cats []core.Category
}

func New() *Store {
	return &Store{subs: make(map[string]core.Subscription)}
}

// ListSubscriptions returns subscriptions ordered by creation time, newest
// first, matching the order the SQLite backend returns.
func (s *Store) ListSubscriptions(_ context.Context) ([]core.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.Subscription, 0, len(s.subs))
	for _, sub := range s.subs {
		out = append(out, sub)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) GetSubscription(_ context.Context, id string) (core.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.subs[id]
	if !ok {
		return core.Subscription{}, store.ErrNotFound
	}
	return sub, nil
}

func (s *Store) PutSubscription(_ context.Context, sub core.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subs[sub.ID] = sub
	return nil
}

func (s *Store) DeleteSubscription(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.subs[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.subs, id)
	return nil
}

// ReplaceAll swaps subscriptions and categories together under one lock.
func (s *Store) ReplaceAll(_ context.Context, subs []core.Subscription, cats []core.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subs = make(map[string]core.Subscription, len(subs))
	for _, sub := range subs {
		s.subs[sub.ID] = sub
	}
	s.cats = append([]core.Category(nil), cats...)
	return nil
}

func (s *Store) ListCategories(_ context.Context) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]core.Category(nil), s.cats...), nil
}

func (s *Store) AddCategory(_ context.Context, cat core.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.cats {
		if c.Name == cat.Name {
			return store.ErrDuplicateCategory
		}
	}
	s.cats = append(s.cats, cat)
	return nil
}

func (s *Store) DeleteCategory(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, c := range s.cats {
		if c.Name == name {
			s.cats = append(s.cats[:i], s.cats[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}
