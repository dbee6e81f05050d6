package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSuggestVendorsSubstringFirst(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ledger := newTestLedger(t)

	for _, name := range []string{"Cafe Sol", "Cafeteria", "Garage"} {
		require.NoError(t, ledger.Vendors.CreateOrUpdate(ctx, name))
	}
	require.NoError(t, ledger.Vendors.CreateOrUpdate(ctx, "Cafe Sol"))

	got, err := SuggestVendors(ctx, ledger.Vendors, "Cafe", 5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "Cafe Sol", got[0].Name) // higher usage ranks first
	require.Equal(t, "Cafeteria", got[1].Name)
}

func TestSuggestVendorsNearMiss(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ledger := newTestLedger(t)

	require.NoError(t, ledger.Vendors.CreateOrUpdate(ctx, "Cafe"))
	require.NoError(t, ledger.Vendors.CreateOrUpdate(ctx, "Garage"))

	// "Caff" is no substring hit for "Cafe" but is one edit away.
	got, err := SuggestVendors(ctx, ledger.Vendors, "Caff", 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "Cafe", got[0].Name)
}

func TestSuggestVendorsEmptyQuery(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ledger := newTestLedger(t)

	got, err := SuggestVendors(ctx, ledger.Vendors, "   ", 5)
	require.NoError(t, err)
	require.Empty(t, got)

	got, err = SuggestVendors(ctx, ledger.Vendors, "x", 0)
	require.NoError(t, err)
	require.Empty(t, got)
}
