package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/spendlog/spendlog/internal/database"
)

// CategoryRepo maintains the category forest.
type CategoryRepo struct {
	db *sql.DB
}

func NewCategoryRepo(db *sql.DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

// NewCategory is the creation payload for a category.
type NewCategory struct {
	Name     string
	Color    string
	Icon     string
	ParentID *string
}

// CategoryUpdate mutates the fields that are non-nil. Parent moves go
// through Reparent so the cycle check always runs.
type CategoryUpdate struct {
	Name  *string
	Color *string
	Icon  *string
}

// List returns all categories flat, ordered by name.
func (r *CategoryRepo) List(ctx context.Context) ([]Category, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, name, color, icon, parent_id, created_at, updated_at
	FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()
	var out []Category
	for rows.Next() {
		var c Category
		var parent sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &c.Color, &c.Icon, &parent, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		if parent.Valid {
			c.ParentID = &parent.String
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Tree builds the forest from the flat list. Roots have depth 0; a
// node whose parent is missing from the list is treated as a root so a
// stray reference cannot hide a subtree.
func (r *CategoryRepo) Tree(ctx context.Context) ([]*CategoryNode, error) {
	cats, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	return buildTree(cats), nil
}

func buildTree(cats []Category) []*CategoryNode {
	known := make(map[string]bool, len(cats))
	for _, c := range cats {
		known[c.ID] = true
	}
	children := make(map[string][]Category)
	var roots []Category
	for _, c := range cats {
		if c.ParentID == nil || !known[*c.ParentID] {
			roots = append(roots, c)
			continue
		}
		children[*c.ParentID] = append(children[*c.ParentID], c)
	}

	var attach func(c Category, depth int) *CategoryNode
	attach = func(c Category, depth int) *CategoryNode {
		node := &CategoryNode{Category: c, Depth: depth}
		kids := children[c.ID]
		sort.Slice(kids, func(i, j int) bool { return kids[i].Name < kids[j].Name })
		for _, k := range kids {
			node.Children = append(node.Children, attach(k, depth+1))
		}
		return node
	}

	out := make([]*CategoryNode, 0, len(roots))
	for _, c := range roots {
		out = append(out, attach(c, 0))
	}
	return out
}

// Create inserts a new category under an optional parent and returns
// its identifier.
func (r *CategoryRepo) Create(ctx context.Context, c NewCategory) (string, error) {
	if c.Name == "" {
		return "", fmt.Errorf("create category: name: %w", ErrMissingField)
	}
	if c.ParentID != nil {
		if err := r.mustExist(ctx, *c.ParentID); err != nil {
			return "", fmt.Errorf("create category: parent: %w", err)
		}
	}
	id := uuid.NewString()
	now := database.Now()
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO categories (id, name, color, icon, parent_id, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, c.Name, c.Color, c.Icon, c.ParentID, now, now)
	if err != nil {
		return "", fmt.Errorf("create category: %w", err)
	}
	return id, nil
}

// Update applies the non-nil fields of u and refreshes updated_at.
func (r *CategoryRepo) Update(ctx context.Context, id string, u CategoryUpdate) error {
	set := "updated_at = ?"
	args := []interface{}{database.Now()}
	if u.Name != nil {
		set += ", name = ?"
		args = append(args, *u.Name)
	}
	if u.Color != nil {
		set += ", color = ?"
		args = append(args, *u.Color)
	}
	if u.Icon != nil {
		set += ", icon = ?"
		args = append(args, *u.Icon)
	}
	args = append(args, id)
	res, err := r.db.ExecContext(ctx, `UPDATE categories SET `+set+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update category %s: %w", id, ErrNotFound)
	}
	return nil
}

// Reparent moves a subtree under newParentID (nil makes it a root).
// The move is rejected with ErrCyclicReference when the new parent is
// the category itself or any of its descendants; the check runs before
// the mutation, never after.
func (r *CategoryRepo) Reparent(ctx context.Context, id string, newParentID *string) error {
	if err := r.mustExist(ctx, id); err != nil {
		return fmt.Errorf("reparent category: %w", err)
	}
	if newParentID != nil {
		if *newParentID == id {
			return fmt.Errorf("reparent category %s: %w", id, ErrCyclicReference)
		}
		if err := r.mustExist(ctx, *newParentID); err != nil {
			return fmt.Errorf("reparent category: parent: %w", err)
		}
		desc, err := r.descendants(ctx, id)
		if err != nil {
			return fmt.Errorf("reparent category: %w", err)
		}
		if desc[*newParentID] {
			return fmt.Errorf("reparent category %s: %w", id, ErrCyclicReference)
		}
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE categories SET parent_id = ?, updated_at = ? WHERE id = ?`,
		newParentID, database.Now(), id)
	if err != nil {
		return fmt.Errorf("reparent category: %w", err)
	}
	return nil
}

// descendants walks the child closure of id iteratively.
func (r *CategoryRepo) descendants(ctx context.Context, id string) (map[string]bool, error) {
	cats, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	children := make(map[string][]string)
	for _, c := range cats {
		if c.ParentID != nil {
			children[*c.ParentID] = append(children[*c.ParentID], c.ID)
		}
	}
	seen := make(map[string]bool)
	queue := append([]string(nil), children[id]...)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if seen[cur] {
			continue
		}
		seen[cur] = true
		queue = append(queue, children[cur]...)
	}
	return seen, nil
}

// Delete removes a category. It fails with ErrHasChildren if any
// category references id as parent, and ErrInUse if any expense
// references it; both checks run before the row is touched.
func (r *CategoryRepo) Delete(ctx context.Context, id string) error {
	var children int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM categories WHERE parent_id = ?`, id).Scan(&children); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if children > 0 {
		return fmt.Errorf("delete category %s: %w", id, ErrHasChildren)
	}
	var used int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM expenses WHERE category_id = ?`, id).Scan(&used); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if used > 0 {
		return fmt.Errorf("delete category %s: %w", id, ErrInUse)
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete category %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *CategoryRepo) mustExist(ctx context.Context, id string) error {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM categories WHERE id = ?`, id).Scan(&one)
	if err == sql.ErrNoRows {
		return fmt.Errorf("category %s: %w", id, ErrNotFound)
	}
	return err
}
