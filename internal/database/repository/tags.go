package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/spendlog/spendlog/internal/database"
)

// TagRepo is the deduplicating, usage-ranked registry for free-form
// labels.
type TagRepo struct {
	db *sql.DB
}

func NewTagRepo(db *sql.DB) *TagRepo { return &TagRepo{db: db} }

// NewTag is the creation payload for a tag.
type NewTag struct {
	Name        string
	Color       *string
	Description *string
}

// TagUpdate mutates the fields that are non-nil.
type TagUpdate struct {
	Name        *string
	Color       *string
	Description *string
}

const tagSelect = `
	SELECT t.id, t.name, t.color, t.description, t.created_at,
	       COUNT(et.expense_id) AS usage_count
	FROM tags t
	LEFT JOIN expense_tags et ON et.tag_id = t.id`

// List returns all tags with derived usage counts, ordered by name.
func (r *TagRepo) List(ctx context.Context) ([]Tag, error) {
	return r.queryTags(ctx, tagSelect+` GROUP BY t.id ORDER BY t.name COLLATE NOCASE`)
}

// Search returns tags whose name contains query (case-insensitive),
// ranked by usage count descending, then name ascending.
func (r *TagRepo) Search(ctx context.Context, query string, limit int) ([]Tag, error) {
	return r.queryTags(ctx, tagSelect+`
	WHERE t.name LIKE ?
	GROUP BY t.id
	ORDER BY usage_count DESC, t.name COLLATE NOCASE ASC
	LIMIT ?`, "%"+query+"%", limit)
}

func (r *TagRepo) queryTags(ctx context.Context, query string, args ...interface{}) ([]Tag, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tags: %w", err)
	}
	defer rows.Close()
	var out []Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTag(rows *sql.Rows) (Tag, error) {
	var t Tag
	var color, desc sql.NullString
	if err := rows.Scan(&t.ID, &t.Name, &color, &desc, &t.CreatedAt, &t.UsageCount); err != nil {
		return Tag{}, fmt.Errorf("scan tag: %w", err)
	}
	if color.Valid {
		t.Color = &color.String
	}
	if desc.Valid {
		t.Description = &desc.String
	}
	return t, nil
}

// Create inserts a new tag and returns its identifier. Names are
// unique case-insensitively.
func (r *TagRepo) Create(ctx context.Context, t NewTag) (string, error) {
	if strings.TrimSpace(t.Name) == "" {
		return "", fmt.Errorf("create tag: name: %w", ErrMissingField)
	}
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO tags (id, name, color, description, created_at)
	VALUES (?, ?, ?, ?, ?)`,
		id, strings.TrimSpace(t.Name), t.Color, t.Description, database.Now())
	if err != nil {
		return "", fmt.Errorf("create tag: %w", err)
	}
	return id, nil
}

// Update applies the non-nil fields of u.
func (r *TagRepo) Update(ctx context.Context, id string, u TagUpdate) error {
	var set []string
	var args []interface{}
	if u.Name != nil {
		set = append(set, "name = ?")
		args = append(args, *u.Name)
	}
	if u.Color != nil {
		set = append(set, "color = ?")
		args = append(args, *u.Color)
	}
	if u.Description != nil {
		set = append(set, "description = ?")
		args = append(args, *u.Description)
	}
	if len(set) == 0 {
		return nil
	}
	args = append(args, id)
	res, err := r.db.ExecContext(ctx,
		`UPDATE tags SET `+strings.Join(set, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update tag: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update tag %s: %w", id, ErrNotFound)
	}
	return nil
}

// Delete removes the tag and its junction rows.
func (r *TagRepo) Delete(ctx context.Context, id string) error {
	return database.WithTx(r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM expense_tags WHERE tag_id = ?`, id); err != nil {
			return fmt.Errorf("delete tag links: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM tags WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete tag: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("delete tag %s: %w", id, ErrNotFound)
		}
		return nil
	})
}

// GetOrCreate returns the id of the tag named name, matching
// case-insensitively, creating it when absent. Idempotent: the same
// name always resolves to the same row.
func (r *TagRepo) GetOrCreate(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("get or create tag: name: %w", ErrMissingField)
	}
	var id string
	err := r.db.QueryRowContext(ctx, `SELECT id FROM tags WHERE name = ?`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("get or create tag: %w", err)
	}
	return r.Create(ctx, NewTag{Name: name})
}
