package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/spendlog/spendlog/internal/database"
)

// newTestDB initializes a fresh store in a temp dir and returns its
// handle.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	st := database.NewStore(filepath.Join(t.TempDir(), "test.db"), zerolog.Nop())
	_, err := st.Initialize(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	db, err := st.Handle()
	require.NoError(t, err)
	return db
}

// mustCategory creates a category and returns its id.
func mustCategory(t *testing.T, db *sql.DB, name string, parentID *string) string {
	t.Helper()
	id, err := NewCategoryRepo(db).Create(context.Background(), NewCategory{
		Name: name, Color: "#888888", Icon: "folder", ParentID: parentID,
	})
	require.NoError(t, err)
	return id
}

func strptr(s string) *string { return &s }
