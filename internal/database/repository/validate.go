package repository

import "strings"

// Violation messages are fixed strings; presentation is the caller's
// concern.
const (
	MsgVendorRequired        = "Vendor is required"
	MsgAmountMustBePositive  = "Amount must be greater than zero"
	MsgCategoryRequired      = "Category is required"
	MsgPaymentMethodRequired = "Payment method is required"
	MsgDateRequired          = "Date is required"
	MsgCurrencyRequired      = "Currency is required"
)

// ValidateExpense checks a candidate against the required-field and
// range constraints. Every check runs; the result lists every failing
// check's message, and an empty list means valid.
func ValidateExpense(e NewExpense) []string {
	var violations []string
	if strings.TrimSpace(e.Vendor) == "" {
		violations = append(violations, MsgVendorRequired)
	}
	if !e.Amount.IsPositive() {
		violations = append(violations, MsgAmountMustBePositive)
	}
	if e.CategoryID == "" {
		violations = append(violations, MsgCategoryRequired)
	}
	if e.PaymentMethodID == nil || *e.PaymentMethodID == "" {
		violations = append(violations, MsgPaymentMethodRequired)
	}
	if e.Date.IsZero() {
		violations = append(violations, MsgDateRequired)
	}
	if e.CurrencyCode == "" {
		violations = append(violations, MsgCurrencyRequired)
	}
	return violations
}
