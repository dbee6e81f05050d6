package service

import (
	"context"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/spendlog/spendlog/internal/database/repository"
)

// maxSuggestDistance bounds how far a vendor name may drift from the
// query before it stops being a plausible near-miss.
const maxSuggestDistance = 2

// SuggestVendors returns autocomplete candidates for query: substring
// matches first, in registry ranking order, then near-miss names
// within a small edit distance of the query. Duplicates are dropped.
func SuggestVendors(ctx context.Context, vendors *repository.VendorRepo, query string, limit int) ([]repository.Vendor, error) {
	if limit <= 0 || strings.TrimSpace(query) == "" {
		return nil, nil
	}
	out, err := vendors.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	if len(out) >= limit {
		return out, nil
	}

	seen := make(map[string]bool, len(out))
	for _, v := range out {
		seen[v.ID] = true
	}
	all, err := vendors.All(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	for _, v := range all {
		if len(out) >= limit {
			break
		}
		if seen[v.ID] {
			continue
		}
		if levenshtein.ComputeDistance(q, strings.ToLower(v.Name)) <= maxSuggestDistance {
			out = append(out, v)
			seen[v.ID] = true
		}
	}
	return out, nil
}
