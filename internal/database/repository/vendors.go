package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/spendlog/spendlog/internal/database"
)

// VendorRepo tracks vendor names and their usage. Rows are upserted as
// a side effect of expense writes, not created directly in the common
// path.
type VendorRepo struct {
	db *sql.DB
}

func NewVendorRepo(db *sql.DB) *VendorRepo { return &VendorRepo{db: db} }

const vendorSelect = `SELECT id, name, usage_count, last_used, created_at FROM vendors`

// All returns every vendor, most used first.
func (r *VendorRepo) All(ctx context.Context) ([]Vendor, error) {
	return r.queryVendors(ctx, vendorSelect+` ORDER BY usage_count DESC, last_used DESC`)
}

// Search returns vendors whose name contains query, ranked by usage
// count descending then recency descending.
func (r *VendorRepo) Search(ctx context.Context, query string, limit int) ([]Vendor, error) {
	return r.queryVendors(ctx, vendorSelect+`
	WHERE name LIKE ?
	ORDER BY usage_count DESC, last_used DESC
	LIMIT ?`, "%"+query+"%", limit)
}

// Popular returns the most-used vendors, recency breaking ties.
func (r *VendorRepo) Popular(ctx context.Context, limit int) ([]Vendor, error) {
	return r.queryVendors(ctx, vendorSelect+` ORDER BY usage_count DESC, last_used DESC LIMIT ?`, limit)
}

func (r *VendorRepo) queryVendors(ctx context.Context, query string, args ...interface{}) ([]Vendor, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query vendors: %w", err)
	}
	defer rows.Close()
	var out []Vendor
	for rows.Next() {
		var v Vendor
		if err := rows.Scan(&v.ID, &v.Name, &v.UsageCount, &v.LastUsed, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan vendor: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// CreateOrUpdate increments the vendor's usage count and refreshes its
// last-used time, inserting it with a count of 1 when absent. Matching
// is case-insensitive on name.
func (r *VendorRepo) CreateOrUpdate(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("upsert vendor: name: %w", ErrMissingField)
	}
	now := database.Now()
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO vendors (id, name, usage_count, last_used, created_at)
	VALUES (?, ?, 1, ?, ?)
	ON CONFLICT(name) DO UPDATE SET
	 usage_count = usage_count + 1,
	 last_used = excluded.last_used`,
		uuid.NewString(), name, now, now)
	if err != nil {
		return fmt.Errorf("upsert vendor %q: %w", name, err)
	}
	return nil
}

// upsertVendorTx is the transactional form used by expense writes.
func upsertVendorTx(ctx context.Context, tx *sql.Tx, name string) error {
	now := database.Now()
	_, err := tx.ExecContext(ctx, `
	INSERT INTO vendors (id, name, usage_count, last_used, created_at)
	VALUES (?, ?, 1, ?, ?)
	ON CONFLICT(name) DO UPDATE SET
	 usage_count = usage_count + 1,
	 last_used = excluded.last_used`,
		uuid.NewString(), name, now, now)
	if err != nil {
		return fmt.Errorf("upsert vendor %q: %w", name, err)
	}
	return nil
}
