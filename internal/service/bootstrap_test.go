package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestBootstrapFreshStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "fresh.db")

	boot, err := Bootstrap(ctx, path, zerolog.Nop())
	require.NoError(t, err)
	defer boot.Store.Close()

	require.Equal(t, ModeReady, boot.Mode)
	require.True(t, boot.Store.Ready())
	require.NoError(t, boot.Store.HealthCheck(ctx))
}

func TestBootstrapRecoversByReset(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "mangled.db")
	require.NoError(t, os.WriteFile(path, []byte("definitely not a sqlite database, just filler text"), 0o644))

	boot, err := Bootstrap(ctx, path, zerolog.Nop())
	require.NoError(t, err)
	defer boot.Store.Close()

	// The garbage file forces the first Initialize to fail; the reset
	// deletes it and the retry succeeds.
	require.Equal(t, ModeRecovered, boot.Mode)
	require.NoError(t, boot.Store.HealthCheck(ctx))
}

func TestBootstrapFallsBackToMemory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	// A path inside a directory that does not exist can be neither
	// opened nor reset.
	path := filepath.Join(t.TempDir(), "missing", "deeper", "x.db")

	boot, err := Bootstrap(ctx, path, zerolog.Nop())
	require.NoError(t, err)
	defer boot.Store.Close()

	require.Equal(t, ModeMemory, boot.Mode)
	require.NoError(t, boot.Store.HealthCheck(ctx))

	// The fallback still carries seeded reference data.
	ledger, err := NewLedger(boot.Store)
	require.NoError(t, err)
	currencies, err := ledger.Currencies.List(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, currencies)
	methods, err := ledger.PaymentMethods.List(ctx)
	require.NoError(t, err)
	require.Len(t, methods, 1)
}

func TestModeString(t *testing.T) {
	t.Parallel()
	require.Equal(t, "ready", ModeReady.String())
	require.Equal(t, "recovered", ModeRecovered.String())
	require.Equal(t, "memory", ModeMemory.String())
}
