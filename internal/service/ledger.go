package service

import (
	"context"

	"github.com/spendlog/spendlog/internal/database"
	"github.com/spendlog/spendlog/internal/database/repository"
)

// Ledger is the outward-facing surface over an initialized store. It
// bundles the repositories and applies validation before expense
// writes and the filter engine around reads; everything else passes
// through.
type Ledger struct {
	store *database.Store

	Expenses       *repository.ExpenseRepo
	Categories     *repository.CategoryRepo
	Tags           *repository.TagRepo
	Vendors        *repository.VendorRepo
	PaymentMethods *repository.PaymentMethodRepo
	Preferences    *repository.PreferencesRepo
	Currencies     *repository.CurrencyRepo
}

// NewLedger builds the repository set over an initialized store.
// Returns database.ErrNotInitialized when Initialize has not succeeded.
func NewLedger(st *database.Store) (*Ledger, error) {
	db, err := st.Handle()
	if err != nil {
		return nil, err
	}
	return &Ledger{
		store:          st,
		Expenses:       repository.NewExpenseRepo(db),
		Categories:     repository.NewCategoryRepo(db),
		Tags:           repository.NewTagRepo(db),
		Vendors:        repository.NewVendorRepo(db),
		PaymentMethods: repository.NewPaymentMethodRepo(db),
		Preferences:    repository.NewPreferencesRepo(db),
		Currencies:     repository.NewCurrencyRepo(db),
	}, nil
}

// CreateExpense validates the candidate and persists it. A failing
// validation surfaces every violation at once as a
// *repository.ValidationError.
func (l *Ledger) CreateExpense(ctx context.Context, e repository.NewExpense) (string, error) {
	if v := repository.ValidateExpense(e); len(v) > 0 {
		return "", &repository.ValidationError{Violations: v}
	}
	return l.Expenses.Create(ctx, e)
}

// UpdateExpense applies a partial update.
func (l *Ledger) UpdateExpense(ctx context.Context, id string, u repository.ExpenseUpdate) error {
	return l.Expenses.Update(ctx, id, u)
}

// DeleteExpense removes the expense and its tag associations.
func (l *Ledger) DeleteExpense(ctx context.Context, id string) error {
	return l.Expenses.Delete(ctx, id)
}

// GetExpenses lists expenses newest first, optionally filtered and
// paginated.
func (l *Ledger) GetExpenses(ctx context.Context, f *repository.ExpenseFilter, limit, offset int) ([]repository.Expense, error) {
	return l.Expenses.List(ctx, f, limit, offset)
}
