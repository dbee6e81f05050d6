package repository

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseFilter is a record of optional predicates, all conjunctive
// when present. It can be applied to an in-memory list (Apply) or
// pushed into a query (whereClauses).
type ExpenseFilter struct {
	CategoryIDs      []string
	StartDate        *time.Time // inclusive
	EndDate          *time.Time // inclusive
	MinAmount        *decimal.Decimal
	MaxAmount        *decimal.Decimal
	Search           string
	TagIDs           []string
	PaymentMethodIDs []string
}

// IsEmpty reports whether no predicate is set.
func (f *ExpenseFilter) IsEmpty() bool {
	if f == nil {
		return true
	}
	return len(f.CategoryIDs) == 0 && f.StartDate == nil && f.EndDate == nil &&
		f.MinAmount == nil && f.MaxAmount == nil && f.Search == "" &&
		len(f.TagIDs) == 0 && len(f.PaymentMethodIDs) == 0
}

// Apply narrows expenses to those matching every present predicate.
// An empty filter returns the input unchanged; a nil input degrades to
// an empty result. The function is total and never errors.
func (f *ExpenseFilter) Apply(expenses []Expense) []Expense {
	if expenses == nil {
		return []Expense{}
	}
	if f.IsEmpty() {
		return expenses
	}
	out := make([]Expense, 0, len(expenses))
	for _, e := range expenses {
		if f.matches(e) {
			out = append(out, e)
		}
	}
	return out
}

func (f *ExpenseFilter) matches(e Expense) bool {
	if len(f.CategoryIDs) > 0 && !containsString(f.CategoryIDs, e.CategoryID) {
		return false
	}
	if f.StartDate != nil && e.Date.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && e.Date.After(*f.EndDate) {
		return false
	}
	if f.MinAmount != nil && e.Amount.LessThan(*f.MinAmount) {
		return false
	}
	if f.MaxAmount != nil && e.Amount.GreaterThan(*f.MaxAmount) {
		return false
	}
	if f.Search != "" && !matchesSearch(e, f.Search) {
		return false
	}
	if len(f.TagIDs) > 0 && !anyTagIn(e.Tags, f.TagIDs) {
		return false
	}
	if len(f.PaymentMethodIDs) > 0 {
		if e.PaymentMethodID == nil || !containsString(f.PaymentMethodIDs, *e.PaymentMethodID) {
			return false
		}
	}
	return true
}

// matchesSearch does a case-insensitive substring match against
// description, vendor, notes, and tag names; any hit matches.
func matchesSearch(e Expense, query string) bool {
	q := strings.ToLower(query)
	if e.Description != nil && strings.Contains(strings.ToLower(*e.Description), q) {
		return true
	}
	if strings.Contains(strings.ToLower(e.Vendor), q) {
		return true
	}
	if e.Notes != nil && strings.Contains(strings.ToLower(*e.Notes), q) {
		return true
	}
	for _, t := range e.Tags {
		if strings.Contains(strings.ToLower(t.Name), q) {
			return true
		}
	}
	return false
}

func containsString(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func anyTagIn(tags []Tag, ids []string) bool {
	for _, t := range tags {
		if containsString(ids, t.ID) {
			return true
		}
	}
	return false
}

// whereClauses translates the filter into SQL conditions against the
// joined expense query (alias e).
func (f *ExpenseFilter) whereClauses() ([]string, []interface{}) {
	var where []string
	var args []interface{}
	if len(f.CategoryIDs) > 0 {
		where = append(where, "e.category_id IN ("+placeholders(len(f.CategoryIDs))+")")
		for _, id := range f.CategoryIDs {
			args = append(args, id)
		}
	}
	if f.StartDate != nil {
		where = append(where, "e.date >= ?")
		args = append(args, *f.StartDate)
	}
	if f.EndDate != nil {
		where = append(where, "e.date <= ?")
		args = append(args, *f.EndDate)
	}
	if f.MinAmount != nil {
		where = append(where, "CAST(e.amount AS REAL) >= ?")
		f64, _ := f.MinAmount.Float64()
		args = append(args, f64)
	}
	if f.MaxAmount != nil {
		where = append(where, "CAST(e.amount AS REAL) <= ?")
		f64, _ := f.MaxAmount.Float64()
		args = append(args, f64)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		where = append(where, `(e.description LIKE ? OR e.vendor LIKE ? OR e.notes LIKE ?
		 OR EXISTS (SELECT 1 FROM expense_tags et JOIN tags t ON t.id = et.tag_id
		            WHERE et.expense_id = e.id AND t.name LIKE ?))`)
		args = append(args, like, like, like, like)
	}
	if len(f.TagIDs) > 0 {
		where = append(where, `EXISTS (SELECT 1 FROM expense_tags et
		 WHERE et.expense_id = e.id AND et.tag_id IN (`+placeholders(len(f.TagIDs))+`))`)
		for _, id := range f.TagIDs {
			args = append(args, id)
		}
	}
	if len(f.PaymentMethodIDs) > 0 {
		where = append(where, "e.payment_method_id IN ("+placeholders(len(f.PaymentMethodIDs))+")")
		for _, id := range f.PaymentMethodIDs {
			args = append(args, id)
		}
	}
	return where, args
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
