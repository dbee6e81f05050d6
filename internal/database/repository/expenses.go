package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/spendlog/spendlog/internal/database"
)

// ExpenseRepo handles expenses, their tag associations, and the vendor
// registry side effects.
type ExpenseRepo struct {
	db *sql.DB
}

func NewExpenseRepo(db *sql.DB) *ExpenseRepo { return &ExpenseRepo{db: db} }

// NewExpense is the creation payload for an expense. Validation of
// amount/date ranges is the caller's job (ValidateExpense); Create
// itself only requires the references it cannot persist without.
type NewExpense struct {
	Amount          decimal.Decimal
	Description     *string
	Vendor          string
	CategoryID      string
	Date            time.Time
	CurrencyCode    string
	PaymentMethodID *string
	Location        *string
	Notes           *string
	TagIDs          []string
}

// ExpenseUpdate applies only the fields that are non-nil. A non-nil
// TagIDs fully replaces the existing associations, never merges.
type ExpenseUpdate struct {
	Amount          *decimal.Decimal
	Description     *string
	Vendor          *string
	CategoryID      *string
	Date            *time.Time
	CurrencyCode    *string
	PaymentMethodID *string
	Location        *string
	Notes           *string
	TagIDs          []string
}

const expenseSelect = `
	SELECT e.id, e.amount, e.description, e.vendor, e.category_id, c.name,
	       e.date, e.currency_code, cu.symbol, e.payment_method_id, pm.name,
	       e.location, e.notes, e.created_at, e.updated_at
	FROM expenses e
	JOIN categories c ON c.id = e.category_id
	JOIN currencies cu ON cu.code = e.currency_code
	LEFT JOIN payment_methods pm ON pm.id = e.payment_method_id`

// Create persists the expense, upserts its vendor, and links its tags,
// returning the new identifier.
func (r *ExpenseRepo) Create(ctx context.Context, e NewExpense) (string, error) {
	if strings.TrimSpace(e.Vendor) == "" {
		return "", fmt.Errorf("create expense: vendor: %w", ErrMissingField)
	}
	if e.CategoryID == "" {
		return "", fmt.Errorf("create expense: category: %w", ErrMissingField)
	}
	if e.CurrencyCode == "" {
		return "", fmt.Errorf("create expense: currency: %w", ErrMissingField)
	}
	id := uuid.NewString()
	now := database.Now()
	err := database.WithTx(r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
		INSERT INTO expenses
		 (id, amount, description, vendor, category_id, date, currency_code,
		  payment_method_id, location, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, e.Amount.String(), e.Description, strings.TrimSpace(e.Vendor),
			e.CategoryID, e.Date, e.CurrencyCode, e.PaymentMethodID,
			e.Location, e.Notes, now, now)
		if err != nil {
			return fmt.Errorf("insert expense: %w", err)
		}
		if err := upsertVendorTx(ctx, tx, strings.TrimSpace(e.Vendor)); err != nil {
			return err
		}
		return linkTagsTx(ctx, tx, id, e.TagIDs)
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// Update applies the present fields of u and always refreshes
// updated_at. An updated vendor is kept in sync with the registry.
func (r *ExpenseRepo) Update(ctx context.Context, id string, u ExpenseUpdate) error {
	set := []string{"updated_at = ?"}
	args := []interface{}{database.Now()}
	if u.Amount != nil {
		set = append(set, "amount = ?")
		args = append(args, u.Amount.String())
	}
	if u.Description != nil {
		set = append(set, "description = ?")
		args = append(args, *u.Description)
	}
	if u.Vendor != nil {
		if strings.TrimSpace(*u.Vendor) == "" {
			return fmt.Errorf("update expense: vendor: %w", ErrMissingField)
		}
		set = append(set, "vendor = ?")
		args = append(args, strings.TrimSpace(*u.Vendor))
	}
	if u.CategoryID != nil {
		set = append(set, "category_id = ?")
		args = append(args, *u.CategoryID)
	}
	if u.Date != nil {
		set = append(set, "date = ?")
		args = append(args, *u.Date)
	}
	if u.CurrencyCode != nil {
		set = append(set, "currency_code = ?")
		args = append(args, *u.CurrencyCode)
	}
	if u.PaymentMethodID != nil {
		set = append(set, "payment_method_id = ?")
		args = append(args, *u.PaymentMethodID)
	}
	if u.Location != nil {
		set = append(set, "location = ?")
		args = append(args, *u.Location)
	}
	if u.Notes != nil {
		set = append(set, "notes = ?")
		args = append(args, *u.Notes)
	}
	args = append(args, id)

	return database.WithTx(r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE expenses SET `+strings.Join(set, ", ")+` WHERE id = ?`, args...)
		if err != nil {
			return fmt.Errorf("update expense: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("update expense %s: %w", id, ErrNotFound)
		}
		if u.Vendor != nil {
			if err := upsertVendorTx(ctx, tx, strings.TrimSpace(*u.Vendor)); err != nil {
				return err
			}
		}
		if u.TagIDs != nil {
			// Replace, not merge.
			if _, err := tx.ExecContext(ctx, `DELETE FROM expense_tags WHERE expense_id = ?`, id); err != nil {
				return fmt.Errorf("clear expense tags: %w", err)
			}
			if err := linkTagsTx(ctx, tx, id, u.TagIDs); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes the expense and its tag associations.
func (r *ExpenseRepo) Delete(ctx context.Context, id string) error {
	return database.WithTx(r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM expense_tags WHERE expense_id = ?`, id); err != nil {
			return fmt.Errorf("delete expense tags: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete expense: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("delete expense %s: %w", id, ErrNotFound)
		}
		return nil
	})
}

// Get returns a single expense with its tag set, or nil when absent.
func (r *ExpenseRepo) Get(ctx context.Context, id string) (*Expense, error) {
	rows, err := r.db.QueryContext(ctx, expenseSelect+` WHERE e.id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("get expense: %w", err)
	}
	if !rows.Next() {
		err := rows.Err()
		rows.Close()
		return nil, err
	}
	e, err := scanExpense(rows)
	// The single connection must be released before the tag query runs.
	rows.Close()
	if err != nil {
		return nil, err
	}
	e.Tags, err = r.fetchTags(ctx, e.ID)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// List returns expenses joined with their reference rows and decorated
// with resolved tag sets, newest first. A non-nil filter is pushed
// into the WHERE clause; limit > 0 enables pagination.
func (r *ExpenseRepo) List(ctx context.Context, f *ExpenseFilter, limit, offset int) ([]Expense, error) {
	query := expenseSelect
	var args []interface{}
	if f != nil {
		where, whereArgs := f.whereClauses()
		if len(where) > 0 {
			query += " WHERE " + strings.Join(where, " AND ")
			args = append(args, whereArgs...)
		}
	}
	query += " ORDER BY e.date DESC, e.created_at DESC"
	if limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		tags, err := r.fetchTags(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Tags = tags
	}
	return out, nil
}

// CategoryCount is a per-category expense tally for summaries.
type CategoryCount struct {
	CategoryID   string
	CategoryName string
	Count        int
}

// CountByCategory tallies expenses per category, largest first.
func (r *ExpenseRepo) CountByCategory(ctx context.Context) ([]CategoryCount, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT e.category_id, c.name, COUNT(*) AS n
	FROM expenses e
	JOIN categories c ON c.id = e.category_id
	GROUP BY e.category_id
	ORDER BY n DESC, c.name`)
	if err != nil {
		return nil, fmt.Errorf("count by category: %w", err)
	}
	defer rows.Close()
	var out []CategoryCount
	for rows.Next() {
		var cc CategoryCount
		if err := rows.Scan(&cc.CategoryID, &cc.CategoryName, &cc.Count); err != nil {
			return nil, fmt.Errorf("scan category count: %w", err)
		}
		out = append(out, cc)
	}
	return out, rows.Err()
}

func (r *ExpenseRepo) fetchTags(ctx context.Context, expenseID string) ([]Tag, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT t.id, t.name, t.color, t.description, t.created_at, 0
	FROM tags t
	JOIN expense_tags et ON et.tag_id = t.id
	WHERE et.expense_id = ?
	ORDER BY t.name COLLATE NOCASE`, expenseID)
	if err != nil {
		return nil, fmt.Errorf("fetch expense tags: %w", err)
	}
	defer rows.Close()
	var tags []Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

func linkTagsTx(ctx context.Context, tx *sql.Tx, expenseID string, tagIDs []string) error {
	for _, tagID := range tagIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO expense_tags (expense_id, tag_id) VALUES (?, ?)`,
			expenseID, tagID); err != nil {
			return fmt.Errorf("link tag %s: %w", tagID, err)
		}
	}
	return nil
}

// scanExpense handles nullable fields for joined expense rows.
func scanExpense(rows *sql.Rows) (Expense, error) {
	var e Expense
	var amount string
	var desc, pmID, pmName, location, notes sql.NullString
	if err := rows.Scan(&e.ID, &amount, &desc, &e.Vendor, &e.CategoryID, &e.CategoryName,
		&e.Date, &e.CurrencyCode, &e.CurrencySymbol, &pmID, &pmName,
		&location, &notes, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return Expense{}, fmt.Errorf("scan expense: %w", err)
	}
	var err error
	e.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return Expense{}, fmt.Errorf("parse expense amount %q: %w", amount, err)
	}
	if desc.Valid {
		e.Description = &desc.String
	}
	if pmID.Valid {
		e.PaymentMethodID = &pmID.String
	}
	if pmName.Valid {
		e.PaymentMethodName = &pmName.String
	}
	if location.Valid {
		e.Location = &location.String
	}
	if notes.Valid {
		e.Notes = &notes.String
	}
	return e, nil
}
