package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/spendlog/spendlog/internal/database"
)

// PreferencesRepo handles the singleton user_preferences row, seeded
// during initialization and only ever updated after that.
type PreferencesRepo struct {
	db *sql.DB
}

func NewPreferencesRepo(db *sql.DB) *PreferencesRepo {
	return &PreferencesRepo{db: db}
}

// PreferencesUpdate mutates the fields that are non-nil.
type PreferencesUpdate struct {
	DefaultCurrencyCode *string
	Theme               *string
	Language            *string
	DateFormat          *string
	FirstDayOfWeek      *int
}

// Get returns the singleton preferences row.
func (r *PreferencesRepo) Get(ctx context.Context) (Preferences, error) {
	var p Preferences
	err := r.db.QueryRowContext(ctx, `
	SELECT default_currency_code, theme, language, date_format, first_day_of_week,
	       created_at, updated_at
	FROM user_preferences WHERE id = 1`).Scan(
		&p.DefaultCurrencyCode, &p.Theme, &p.Language, &p.DateFormat,
		&p.FirstDayOfWeek, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return Preferences{}, fmt.Errorf("get preferences: %w", ErrNotFound)
	}
	if err != nil {
		return Preferences{}, fmt.Errorf("get preferences: %w", err)
	}
	return p, nil
}

// Update applies the non-nil fields of u and refreshes updated_at.
func (r *PreferencesRepo) Update(ctx context.Context, u PreferencesUpdate) error {
	set := []string{"updated_at = ?"}
	args := []interface{}{database.Now()}
	if u.DefaultCurrencyCode != nil {
		set = append(set, "default_currency_code = ?")
		args = append(args, *u.DefaultCurrencyCode)
	}
	if u.Theme != nil {
		set = append(set, "theme = ?")
		args = append(args, *u.Theme)
	}
	if u.Language != nil {
		set = append(set, "language = ?")
		args = append(args, *u.Language)
	}
	if u.DateFormat != nil {
		set = append(set, "date_format = ?")
		args = append(args, *u.DateFormat)
	}
	if u.FirstDayOfWeek != nil {
		set = append(set, "first_day_of_week = ?")
		args = append(args, *u.FirstDayOfWeek)
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE user_preferences SET `+strings.Join(set, ", ")+` WHERE id = 1`, args...)
	if err != nil {
		return fmt.Errorf("update preferences: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update preferences: %w", ErrNotFound)
	}
	return nil
}
