package repository

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category represents a category row. Categories form a forest via
// ParentID; a nil parent marks a root.
type Category struct {
	ID        string
	Name      string
	Color     string
	Icon      string
	ParentID  *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CategoryNode is a category placed in its tree, annotated with depth
// (0 for roots).
type CategoryNode struct {
	Category
	Depth    int
	Children []*CategoryNode
}

// Currency represents a reference currency row.
type Currency struct {
	Code   string
	Symbol string
	Name   string
}

// PaymentMethodType enumerates supported payment method kinds.
type PaymentMethodType string

const (
	PaymentCash          PaymentMethodType = "cash"
	PaymentCreditCard    PaymentMethodType = "credit_card"
	PaymentDebitCard     PaymentMethodType = "debit_card"
	PaymentBankTransfer  PaymentMethodType = "bank_transfer"
	PaymentDigitalWallet PaymentMethodType = "digital_wallet"
	PaymentOther         PaymentMethodType = "other"
)

// Valid reports whether t is one of the known payment method types.
func (t PaymentMethodType) Valid() bool {
	switch t {
	case PaymentCash, PaymentCreditCard, PaymentDebitCard,
		PaymentBankTransfer, PaymentDigitalWallet, PaymentOther:
		return true
	}
	return false
}

// PaymentMethod represents a payment method row. Deletion is a soft
// state transition (IsActive cleared) so historical expenses keep a
// valid reference.
type PaymentMethod struct {
	ID             string
	Type           PaymentMethodType
	Name           string
	Alias          *string
	LastFourDigits *string
	CardNetwork    *string
	BankName       *string
	Provider       *string
	IsDefault      bool
	IsActive       bool
	Color          string
	Icon           string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Tag represents a tag row. UsageCount is derived from the junction
// table, not stored.
type Tag struct {
	ID          string
	Name        string
	Color       *string
	Description *string
	UsageCount  int
	CreatedAt   time.Time
}

// Vendor represents a vendor row, maintained as a side effect of
// expense writes.
type Vendor struct {
	ID         string
	Name       string
	UsageCount int
	LastUsed   time.Time
	CreatedAt  time.Time
}

// Expense represents an expense row joined with its reference data and
// resolved tag set. Vendor is a denormalized string, not a foreign key.
type Expense struct {
	ID                string
	Amount            decimal.Decimal
	Description       *string
	Vendor            string
	CategoryID        string
	CategoryName      string
	Date              time.Time
	CurrencyCode      string
	CurrencySymbol    string
	PaymentMethodID   *string
	PaymentMethodName *string
	Location          *string
	Notes             *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	Tags              []Tag
}

// TagNames returns the names of the expense's tags.
func (e Expense) TagNames() []string {
	out := make([]string, 0, len(e.Tags))
	for _, t := range e.Tags {
		out = append(out, t.Name)
	}
	return out
}

// Preferences is the singleton settings row. Exactly one instance
// exists after initialization; it is only ever updated.
type Preferences struct {
	DefaultCurrencyCode string
	Theme               string
	Language            string
	DateFormat          string
	FirstDayOfWeek      int
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
