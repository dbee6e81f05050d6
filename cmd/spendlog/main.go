package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/spendlog/spendlog/internal/config"
	"github.com/spendlog/spendlog/internal/database"
	"github.com/spendlog/spendlog/internal/service"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	badStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, badStyle.Render("error: ")+err.Error())
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).With().Timestamp().Logger()

	cmd := "status"
	args := os.Args[1:]
	if len(args) > 0 {
		cmd = args[0]
		args = args[1:]
	}

	switch cmd {
	case "status":
		return runStatus(ctx, cfg, log)
	case "reset":
		return runReset(ctx, cfg, log, args)
	default:
		return fmt.Errorf("unknown command %q (want status or reset)", cmd)
	}
}

func runStatus(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return fmt.Errorf("mkdir db dir: %w", err)
	}

	boot, err := service.Bootstrap(ctx, cfg.Database.Path, log)
	if err != nil {
		return err
	}
	defer boot.Store.Close()

	fmt.Println(titleStyle.Render("spendlog store"))
	fmt.Println(dimStyle.Render("path: " + boot.Store.Path()))

	mode := okStyle
	if boot.Mode != service.ModeReady || boot.Report.Degraded() {
		mode = warnStyle
	}
	fmt.Println("mode: " + mode.Render(boot.Mode.String()))
	for _, w := range boot.Report.Warnings {
		fmt.Println(warnStyle.Render("warn: ") + w)
	}

	ledger, err := service.NewLedger(boot.Store)
	if err != nil {
		return err
	}
	expenses, err := ledger.GetExpenses(ctx, nil, 0, 0)
	if err != nil {
		return err
	}
	cats, err := ledger.Categories.List(ctx)
	if err != nil {
		return err
	}
	methods, err := ledger.PaymentMethods.List(ctx)
	if err != nil {
		return err
	}
	currencies, err := ledger.Currencies.List(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("expenses: %d  categories: %d  payment methods: %d  currencies: %d\n",
		len(expenses), len(cats), len(methods), len(currencies))

	counts, err := ledger.Expenses.CountByCategory(ctx)
	if err != nil {
		return err
	}
	for _, c := range counts {
		fmt.Printf("  %s %s\n", dimStyle.Render(fmt.Sprintf("%4d", c.Count)), c.CategoryName)
	}
	return nil
}

func runReset(ctx context.Context, cfg config.Config, log zerolog.Logger, args []string) error {
	fs := flag.NewFlagSet("reset", flag.ContinueOnError)
	confirm := fs.Bool("yes", false, "confirm discarding all data")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !*confirm {
		return fmt.Errorf("reset discards all data; re-run with -yes to confirm")
	}

	st := database.NewStore(cfg.Database.Path, log)
	report, err := st.Reset(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	fmt.Println(okStyle.Render("store reset"))
	for _, w := range report.Warnings {
		fmt.Println(warnStyle.Render("warn: ") + w)
	}
	return nil
}
