package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/spendlog/spendlog/internal/database"
	"github.com/spendlog/spendlog/internal/database/repository"
)

func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	st := database.NewStore(filepath.Join(t.TempDir(), "ledger.db"), zerolog.Nop())
	_, err := st.Initialize(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	ledger, err := NewLedger(st)
	require.NoError(t, err)
	return ledger
}

func TestNewLedgerRequiresInitializedStore(t *testing.T) {
	t.Parallel()
	st := database.NewStore(filepath.Join(t.TempDir(), "cold.db"), zerolog.Nop())
	_, err := NewLedger(st)
	require.ErrorIs(t, err, database.ErrNotInitialized)
}

func TestCreateExpenseRejectsInvalidCandidate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ledger := newTestLedger(t)

	_, err := ledger.CreateExpense(ctx, repository.NewExpense{Vendor: "  "})
	var verr *repository.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Violations, repository.MsgVendorRequired)
	require.Contains(t, verr.Violations, repository.MsgAmountMustBePositive)

	// Nothing may have been persisted.
	list, err := ledger.GetExpenses(ctx, nil, 0, 0)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestLedgerEndToEnd(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ledger := newTestLedger(t)

	catID, err := ledger.Categories.Create(ctx, repository.NewCategory{Name: "Food"})
	require.NoError(t, err)
	methods, err := ledger.PaymentMethods.List(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, methods)
	tagID, err := ledger.Tags.GetOrCreate(ctx, "morning")
	require.NoError(t, err)

	id, err := ledger.CreateExpense(ctx, repository.NewExpense{
		Amount:          decimal.NewFromFloat(12.5),
		Vendor:          "Cafe",
		CategoryID:      catID,
		Date:            time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		CurrencyCode:    "USD",
		PaymentMethodID: &methods[0].ID,
		TagIDs:          []string{tagID},
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	list, err := ledger.GetExpenses(ctx, nil, 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "Cafe", list[0].Vendor)
	require.Equal(t, []string{"morning"}, list[0].TagNames())

	vendors, err := ledger.Vendors.Search(ctx, "Caf", 5)
	require.NoError(t, err)
	require.Len(t, vendors, 1)
	require.Equal(t, "Cafe", vendors[0].Name)

	require.NoError(t, ledger.DeleteExpense(ctx, id))
	require.True(t, errors.Is(ledger.DeleteExpense(ctx, id), repository.ErrNotFound))
}
