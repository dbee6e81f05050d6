package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/spendlog/spendlog/internal/database"
)

// Mode reports how far bootstrap had to fall down the recovery ladder.
type Mode int

const (
	// ModeReady: the on-disk store initialized on the first attempt.
	ModeReady Mode = iota
	// ModeRecovered: the first attempt failed, but a reset (discarding
	// the store file) brought it back.
	ModeRecovered
	// ModeMemory: the on-disk store is unrecoverable; the session runs
	// against an in-memory store seeded with reference data only.
	ModeMemory
)

func (m Mode) String() string {
	switch m {
	case ModeReady:
		return "ready"
	case ModeRecovered:
		return "recovered"
	case ModeMemory:
		return "memory"
	}
	return "unknown"
}

// BootResult is the outcome of the recovery ladder.
type BootResult struct {
	Mode   Mode
	Store  *database.Store
	Report database.InitReport
}

// Bootstrap drives the store from absent to usable: initialize; on
// failure reset (delete the store file) and retry once; on failure
// again fall back to an in-memory store so the session stays usable.
// Only when even the in-memory store cannot initialize does Bootstrap
// return an error.
func Bootstrap(ctx context.Context, path string, log zerolog.Logger) (BootResult, error) {
	st := database.NewStore(path, log)
	report, err := st.Initialize(ctx)
	if err == nil {
		return BootResult{Mode: ModeReady, Store: st, Report: report}, nil
	}
	log.Warn().Err(err).Str("path", path).Msg("store initialization failed, resetting")

	report, err = st.Reset(ctx)
	if err == nil {
		return BootResult{Mode: ModeRecovered, Store: st, Report: report}, nil
	}
	log.Error().Err(err).Str("path", path).Msg("store reset failed, falling back to memory")
	_ = st.Close()

	mem := database.NewMemoryStore(log)
	report, err = mem.Initialize(ctx)
	if err != nil {
		return BootResult{}, fmt.Errorf("in-memory fallback: %w", err)
	}
	return BootResult{Mode: ModeMemory, Store: mem, Report: report}, nil
}
