package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestCategoryTreeDepths(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewCategoryRepo(db)

	food := mustCategory(t, db, "Food", nil)
	groceries := mustCategory(t, db, "Groceries", &food)
	veg := mustCategory(t, db, "Vegetables", &groceries)
	mustCategory(t, db, "Transport", nil)

	tree, err := repo.Tree(ctx)
	require.NoError(t, err)
	require.Len(t, tree, 2)

	byName := map[string]*CategoryNode{}
	var walk func(nodes []*CategoryNode)
	walk = func(nodes []*CategoryNode) {
		for _, n := range nodes {
			byName[n.Name] = n
			walk(n.Children)
		}
	}
	walk(tree)

	require.Equal(t, 0, byName["Food"].Depth)
	require.Equal(t, 0, byName["Transport"].Depth)
	require.Equal(t, 1, byName["Groceries"].Depth)
	require.Equal(t, 2, byName["Vegetables"].Depth)
	require.Equal(t, veg, byName["Vegetables"].ID)
}

func TestReparentRejectsSelf(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewCategoryRepo(db)

	id := mustCategory(t, db, "Food", nil)
	err := repo.Reparent(ctx, id, &id)
	require.ErrorIs(t, err, ErrCyclicReference)
}

func TestReparentRejectsDescendant(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewCategoryRepo(db)

	food := mustCategory(t, db, "Food", nil)
	groceries := mustCategory(t, db, "Groceries", &food)
	veg := mustCategory(t, db, "Vegetables", &groceries)

	// Moving a node under its grandchild would close a cycle.
	err := repo.Reparent(ctx, food, &veg)
	require.ErrorIs(t, err, ErrCyclicReference)

	// The rejected move must not have mutated anything.
	cats, err := repo.List(ctx)
	require.NoError(t, err)
	for _, c := range cats {
		if c.ID == food {
			require.Nil(t, c.ParentID)
		}
	}
}

func TestReparentMovesSubtree(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewCategoryRepo(db)

	food := mustCategory(t, db, "Food", nil)
	groceries := mustCategory(t, db, "Groceries", &food)
	other := mustCategory(t, db, "Household", nil)

	require.NoError(t, repo.Reparent(ctx, groceries, &other))

	tree, err := repo.Tree(ctx)
	require.NoError(t, err)
	for _, n := range tree {
		switch n.Name {
		case "Household":
			require.Len(t, n.Children, 1)
			require.Equal(t, "Groceries", n.Children[0].Name)
			require.Equal(t, 1, n.Children[0].Depth)
		case "Food":
			require.Empty(t, n.Children)
		}
	}

	// Back to root.
	require.NoError(t, repo.Reparent(ctx, groceries, nil))
	tree, err = repo.Tree(ctx)
	require.NoError(t, err)
	require.Len(t, tree, 3)
}

func TestDeleteGuards(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewCategoryRepo(db)

	food := mustCategory(t, db, "Food", nil)
	groceries := mustCategory(t, db, "Groceries", &food)

	err := repo.Delete(ctx, food)
	require.ErrorIs(t, err, ErrHasChildren)

	// Reference the leaf from an expense; deletion must now fail InUse.
	expenses := NewExpenseRepo(db)
	_, err = expenses.Create(ctx, NewExpense{
		Amount:       decimal.NewFromFloat(9.99),
		Vendor:       "Market",
		CategoryID:   groceries,
		Date:         time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		CurrencyCode: "USD",
	})
	require.NoError(t, err)

	err = repo.Delete(ctx, groceries)
	require.ErrorIs(t, err, ErrInUse)

	// Remove the expense; the leaf is now deletable, then the root.
	list, err := expenses.List(ctx, nil, 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NoError(t, expenses.Delete(ctx, list[0].ID))

	require.NoError(t, repo.Delete(ctx, groceries))
	require.NoError(t, repo.Delete(ctx, food))

	cats, err := repo.List(ctx)
	require.NoError(t, err)
	require.Empty(t, cats)
}

func TestDeleteMissingCategory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)
	err := NewCategoryRepo(db).Delete(ctx, "nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateCategoryFields(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewCategoryRepo(db)

	id := mustCategory(t, db, "Food", nil)
	require.NoError(t, repo.Update(ctx, id, CategoryUpdate{
		Name:  strptr("Eating Out"),
		Color: strptr("#fab387"),
	}))

	cats, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	require.Equal(t, "Eating Out", cats[0].Name)
	require.Equal(t, "#fab387", cats[0].Color)
	require.Equal(t, "folder", cats[0].Icon)
}

func TestCreateWithMissingParent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newTestDB(t)
	_, err := NewCategoryRepo(db).Create(ctx, NewCategory{Name: "Orphan", ParentID: strptr("ghost")})
	require.ErrorIs(t, err, ErrNotFound)
}
