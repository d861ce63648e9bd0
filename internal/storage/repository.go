// Package storage is the SQLite backend. Subscriptions are stored one row
// each with the billing history as a JSON column: histories are always read
// and written whole, never queried by record.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"subtracker/internal/core"
	"subtracker/internal/store"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const subscriptionColumns = `id, name, amount_cents, currency, cycle, custom_cycle_days,
	start_date, next_bill_date, category, color, status, cancelled_date, note,
	billing_history, created_at, updated_at`

func (r *SQLiteRepository) ListSubscriptions(ctx context.Context) ([]core.Subscription, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []core.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	return subs, nil
}

func (r *SQLiteRepository) GetSubscription(ctx context.Context, id string) (core.Subscription, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = ?`, id)
	sub, err := scanSubscription(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Subscription{}, store.ErrNotFound
	}
	return sub, err
}

func (r *SQLiteRepository) PutSubscription(ctx context.Context, sub core.Subscription) error {
	history, err := json.Marshal(sub.BillingHistory)
	if err != nil {
		return fmt.Errorf("encode billing history: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO subscriptions (`+subscriptionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			amount_cents = excluded.amount_cents,
			currency = excluded.currency,
			cycle = excluded.cycle,
			custom_cycle_days = excluded.custom_cycle_days,
			start_date = excluded.start_date,
			next_bill_date = excluded.next_bill_date,
			category = excluded.category,
			color = excluded.color,
			status = excluded.status,
			cancelled_date = excluded.cancelled_date,
			note = excluded.note,
			billing_history = excluded.billing_history,
			updated_at = excluded.updated_at`,
		sub.ID, sub.Name, sub.Amount.Cents, string(sub.Currency), string(sub.Cycle),
		sub.CustomCycleDays, sub.StartDate.String(), sub.NextBillDate.String(),
		sub.Category, sub.Color, string(sub.Status), sub.CancelledDate.String(),
		sub.Note, string(history), sub.CreatedAt, sub.UpdatedAt)
	if err != nil {
		return fmt.Errorf("put subscription: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteSubscription(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ReplaceAll swaps both tables inside one transaction so a failed import
// never leaves subscriptions and categories out of step.
func (r *SQLiteRepository) ReplaceAll(ctx context.Context, subs []core.Subscription, cats []core.Category) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM subscriptions`); err != nil {
		return fmt.Errorf("clear subscriptions: %w", err)
	}
	for _, sub := range subs {
		history, err := json.Marshal(sub.BillingHistory)
		if err != nil {
			return fmt.Errorf("encode billing history: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO subscriptions (`+subscriptionColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			sub.ID, sub.Name, sub.Amount.Cents, string(sub.Currency), string(sub.Cycle),
			sub.CustomCycleDays, sub.StartDate.String(), sub.NextBillDate.String(),
			sub.Category, sub.Color, string(sub.Status), sub.CancelledDate.String(),
			sub.Note, string(history), sub.CreatedAt, sub.UpdatedAt); err != nil {
			return fmt.Errorf("insert subscription %s: %w", sub.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM categories`); err != nil {
		return fmt.Errorf("clear categories: %w", err)
	}
	for _, cat := range cats {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO categories (name, color) VALUES (?, ?)`, cat.Name, cat.Color); err != nil {
			return fmt.Errorf("insert category %s: %w", cat.Name, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name, color FROM categories ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var cats []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.Name, &c.Color); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

func (r *SQLiteRepository) AddCategory(ctx context.Context, cat core.Category) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (name, color) VALUES (?, ?)`, cat.Name, cat.Color)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrDuplicateCategory
		}
		return fmt.Errorf("add category: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubscription(row rowScanner) (core.Subscription, error) {
	var (
		sub                                    core.Subscription
		currency, cycle, status                string
		startDate, nextBillDate, cancelledDate string
		history                                string
		createdAt, updatedAt                   time.Time
	)
	err := row.Scan(&sub.ID, &sub.Name, &sub.Amount.Cents, &currency, &cycle,
		&sub.CustomCycleDays, &startDate, &nextBillDate, &sub.Category, &sub.Color,
		&status, &cancelledDate, &sub.Note, &history, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Subscription{}, err
		}
		return core.Subscription{}, fmt.Errorf("scan subscription: %w", err)
	}

	sub.Currency = core.Currency(currency)
	sub.Cycle = core.BillingCycle(cycle)
	sub.Status = core.SubscriptionStatus(status)
	sub.CreatedAt = createdAt
	sub.UpdatedAt = updatedAt

	if sub.StartDate, err = parseStoredDate(startDate); err != nil {
		return core.Subscription{}, fmt.Errorf("subscription %s: start_date: %w", sub.ID, err)
	}
	if sub.NextBillDate, err = parseStoredDate(nextBillDate); err != nil {
		return core.Subscription{}, fmt.Errorf("subscription %s: next_bill_date: %w", sub.ID, err)
	}
	if sub.CancelledDate, err = parseStoredDate(cancelledDate); err != nil {
		return core.Subscription{}, fmt.Errorf("subscription %s: cancelled_date: %w", sub.ID, err)
	}
	if err := json.Unmarshal([]byte(history), &sub.BillingHistory); err != nil {
		return core.Subscription{}, fmt.Errorf("subscription %s: billing_history: %w", sub.ID, err)
	}
	return sub, nil
}

func parseStoredDate(s string) (core.Date, error) {
	if s == "" {
		return core.Date{}, nil
	}
	return core.ParseDate(s)
}
