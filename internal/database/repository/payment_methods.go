package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/spendlog/spendlog/internal/database"
)

// PaymentMethodRepo handles payment methods. At most one method holds
// the default flag at any time, enforced by clearing-then-setting
// inside one transaction. Deletion is a soft transition: the active
// flag is cleared, the row stays.
type PaymentMethodRepo struct {
	db *sql.DB
}

func NewPaymentMethodRepo(db *sql.DB) *PaymentMethodRepo {
	return &PaymentMethodRepo{db: db}
}

// NewPaymentMethod is the creation payload for a payment method.
type NewPaymentMethod struct {
	Type           PaymentMethodType
	Name           string
	Alias          *string
	LastFourDigits *string
	CardNetwork    *string
	BankName       *string
	Provider       *string
	IsDefault      bool
	Color          string
	Icon           string
}

// PaymentMethodUpdate mutates the fields that are non-nil.
type PaymentMethodUpdate struct {
	Type           *PaymentMethodType
	Name           *string
	Alias          *string
	LastFourDigits *string
	CardNetwork    *string
	BankName       *string
	Provider       *string
	IsDefault      *bool
	Color          *string
	Icon           *string
}

const paymentMethodSelect = `
	SELECT id, type, name, alias, last_four_digits, card_network, bank_name,
	       provider, is_default, is_active, color, icon, created_at, updated_at
	FROM payment_methods`

// List returns active payment methods, default first.
func (r *PaymentMethodRepo) List(ctx context.Context) ([]PaymentMethod, error) {
	return r.queryMethods(ctx, paymentMethodSelect+` WHERE is_active = 1 ORDER BY is_default DESC, name`)
}

// All returns every payment method including deactivated ones.
func (r *PaymentMethodRepo) All(ctx context.Context) ([]PaymentMethod, error) {
	return r.queryMethods(ctx, paymentMethodSelect+` ORDER BY is_default DESC, name`)
}

// Get returns a payment method by id, or nil when absent.
func (r *PaymentMethodRepo) Get(ctx context.Context, id string) (*PaymentMethod, error) {
	out, err := r.queryMethods(ctx, paymentMethodSelect+` WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return &out[0], nil
}

func (r *PaymentMethodRepo) queryMethods(ctx context.Context, query string, args ...interface{}) ([]PaymentMethod, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query payment methods: %w", err)
	}
	defer rows.Close()
	var out []PaymentMethod
	for rows.Next() {
		m, err := scanPaymentMethod(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Create inserts a new payment method and returns its identifier. When
// IsDefault is set, any previously default method is cleared first, in
// the same transaction.
func (r *PaymentMethodRepo) Create(ctx context.Context, m NewPaymentMethod) (string, error) {
	if !m.Type.Valid() {
		return "", fmt.Errorf("create payment method: unknown type %q", m.Type)
	}
	if strings.TrimSpace(m.Name) == "" {
		return "", fmt.Errorf("create payment method: name: %w", ErrMissingField)
	}
	id := uuid.NewString()
	now := database.Now()
	err := database.WithTx(r.db, func(tx *sql.Tx) error {
		if m.IsDefault {
			if _, err := tx.ExecContext(ctx, `UPDATE payment_methods SET is_default = 0 WHERE is_default = 1`); err != nil {
				return fmt.Errorf("clear default payment method: %w", err)
			}
		}
		_, err := tx.ExecContext(ctx, `
		INSERT INTO payment_methods
		 (id, type, name, alias, last_four_digits, card_network, bank_name,
		  provider, is_default, is_active, color, icon, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?, ?, ?)`,
			id, string(m.Type), m.Name, m.Alias, m.LastFourDigits, m.CardNetwork,
			m.BankName, m.Provider, boolToInt(m.IsDefault), m.Color, m.Icon, now, now)
		if err != nil {
			return fmt.Errorf("insert payment method: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// Update applies the non-nil fields of u. Promoting a method to
// default clears the previous default in the same transaction.
func (r *PaymentMethodRepo) Update(ctx context.Context, id string, u PaymentMethodUpdate) error {
	set := []string{"updated_at = ?"}
	args := []interface{}{database.Now()}
	if u.Type != nil {
		if !u.Type.Valid() {
			return fmt.Errorf("update payment method: unknown type %q", *u.Type)
		}
		set = append(set, "type = ?")
		args = append(args, string(*u.Type))
	}
	if u.Name != nil {
		set = append(set, "name = ?")
		args = append(args, *u.Name)
	}
	if u.Alias != nil {
		set = append(set, "alias = ?")
		args = append(args, *u.Alias)
	}
	if u.LastFourDigits != nil {
		set = append(set, "last_four_digits = ?")
		args = append(args, *u.LastFourDigits)
	}
	if u.CardNetwork != nil {
		set = append(set, "card_network = ?")
		args = append(args, *u.CardNetwork)
	}
	if u.BankName != nil {
		set = append(set, "bank_name = ?")
		args = append(args, *u.BankName)
	}
	if u.Provider != nil {
		set = append(set, "provider = ?")
		args = append(args, *u.Provider)
	}
	if u.IsDefault != nil {
		set = append(set, "is_default = ?")
		args = append(args, boolToInt(*u.IsDefault))
	}
	if u.Color != nil {
		set = append(set, "color = ?")
		args = append(args, *u.Color)
	}
	if u.Icon != nil {
		set = append(set, "icon = ?")
		args = append(args, *u.Icon)
	}
	args = append(args, id)

	return database.WithTx(r.db, func(tx *sql.Tx) error {
		if u.IsDefault != nil && *u.IsDefault {
			if _, err := tx.ExecContext(ctx, `UPDATE payment_methods SET is_default = 0 WHERE is_default = 1`); err != nil {
				return fmt.Errorf("clear default payment method: %w", err)
			}
		}
		res, err := tx.ExecContext(ctx,
			`UPDATE payment_methods SET `+strings.Join(set, ", ")+` WHERE id = ?`, args...)
		if err != nil {
			return fmt.Errorf("update payment method: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("update payment method %s: %w", id, ErrNotFound)
		}
		return nil
	})
}

// Delete deactivates the method; the row is never removed so
// historical expenses keep a valid reference.
func (r *PaymentMethodRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE payment_methods SET is_active = 0, is_default = 0, updated_at = ? WHERE id = ?`,
		database.Now(), id)
	if err != nil {
		return fmt.Errorf("deactivate payment method: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("deactivate payment method %s: %w", id, ErrNotFound)
	}
	return nil
}

func scanPaymentMethod(rows *sql.Rows) (PaymentMethod, error) {
	var m PaymentMethod
	var typ string
	var alias, lastFour, network, bank, provider sql.NullString
	var isDefault, isActive int
	if err := rows.Scan(&m.ID, &typ, &m.Name, &alias, &lastFour, &network, &bank,
		&provider, &isDefault, &isActive, &m.Color, &m.Icon, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return PaymentMethod{}, fmt.Errorf("scan payment method: %w", err)
	}
	m.Type = PaymentMethodType(typ)
	m.IsDefault = isDefault == 1
	m.IsActive = isActive == 1
	if alias.Valid {
		m.Alias = &alias.String
	}
	if lastFour.Valid {
		m.LastFourDigits = &lastFour.String
	}
	if network.Valid {
		m.CardNetwork = &network.String
	}
	if bank.Valid {
		m.BankName = &bank.String
	}
	if provider.Valid {
		m.Provider = &provider.String
	}
	return m, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
