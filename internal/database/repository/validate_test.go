package repository

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func validCandidate() NewExpense {
	pm := "pm-1"
	return NewExpense{
		Amount:          decimal.NewFromFloat(12.5),
		Vendor:          "Cafe",
		CategoryID:      "cat-1",
		Date:            time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		CurrencyCode:    "USD",
		PaymentMethodID: &pm,
	}
}

func TestValidateExpenseValid(t *testing.T) {
	t.Parallel()
	require.Empty(t, ValidateExpense(validCandidate()))
}

func TestValidateExpenseSingleViolations(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		mutate func(*NewExpense)
		want   string
	}{
		{"blank vendor", func(e *NewExpense) { e.Vendor = "   " }, MsgVendorRequired},
		{"zero amount", func(e *NewExpense) { e.Amount = decimal.Zero }, MsgAmountMustBePositive},
		{"negative amount", func(e *NewExpense) { e.Amount = decimal.NewFromInt(-3) }, MsgAmountMustBePositive},
		{"no category", func(e *NewExpense) { e.CategoryID = "" }, MsgCategoryRequired},
		{"no payment method", func(e *NewExpense) { e.PaymentMethodID = nil }, MsgPaymentMethodRequired},
		{"empty payment method", func(e *NewExpense) { e.PaymentMethodID = strptr("") }, MsgPaymentMethodRequired},
		{"zero date", func(e *NewExpense) { e.Date = time.Time{} }, MsgDateRequired},
		{"no currency", func(e *NewExpense) { e.CurrencyCode = "" }, MsgCurrencyRequired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := validCandidate()
			tc.mutate(&e)
			require.Equal(t, []string{tc.want}, ValidateExpense(e))
		})
	}
}

func TestValidateExpenseReportsAllViolations(t *testing.T) {
	t.Parallel()
	// Every check runs; nothing short-circuits.
	got := ValidateExpense(NewExpense{})
	require.ElementsMatch(t, []string{
		MsgVendorRequired,
		MsgAmountMustBePositive,
		MsgCategoryRequired,
		MsgPaymentMethodRequired,
		MsgDateRequired,
		MsgCurrencyRequired,
	}, got)
}
