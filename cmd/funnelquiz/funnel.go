package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/funnelquiz/internal/config"
	"github.com/verte-zerg/funnelquiz/internal/dashboard"
	"github.com/verte-zerg/funnelquiz/internal/generator"
	"github.com/verte-zerg/funnelquiz/internal/model"
	"github.com/verte-zerg/funnelquiz/internal/quiz"
	"github.com/verte-zerg/funnelquiz/internal/stats"
	"github.com/verte-zerg/funnelquiz/internal/store"
)

const (
	defaultSeedVisitors = 500
	defaultSeedDays     = 14
)

var (
	funnelDBPath  string
	funnelSince   string
	funnelSource  string
	funnelVariant string
	funnelTZ      string

	reportWidth int
	reportColor bool

	seedVisitors int
	seedDays     int
	seedValue    int64
	seedVariant  string
)

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&funnelDBPath, "db", config.DefaultDBPath(), "SQLite database path")
	cmd.Flags().StringVar(&funnelSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&funnelSource, "source", "", "utm_source filter (\"direct\" for none)")
	cmd.Flags().StringVar(&funnelVariant, "variant", "", "A/B variant filter")
	cmd.Flags().StringVar(&funnelTZ, "tz", "", "time zone for day cohorts (default local)")
}

func newDashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Browse funnel metrics",
		Args:  cobra.NoArgs,
		RunE:  runDashboardCmd,
	}
	addFilterFlags(cmd)
	return cmd
}

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print funnel metrics",
		Args:  cobra.NoArgs,
		RunE:  runReportCmd,
	}
	addFilterFlags(cmd)
	cmd.Flags().IntVar(&reportWidth, "width", 0, "output width (default terminal width)")
	cmd.Flags().BoolVar(&reportColor, "color", false, "force colored bars")
	return cmd
}

func runDashboardCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := funnelReportConfig(cmd)
	if err != nil {
		return err
	}
	st, err := store.Open(funnelDBPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ui := dashboard.NewModel(st, cfg)
	program := tea.NewProgram(ui, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run dashboard: %w", err)
	}
	return nil
}

func runReportCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := funnelReportConfig(cmd)
	if err != nil {
		return err
	}
	st, err := store.Open(funnelDBPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	report, err := stats.BuildReport(context.Background(), st, cfg)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	if err := stats.RenderReport(cmd.OutOrStdout(), report, reportWidth, reportColor); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func funnelReportConfig(cmd *cobra.Command) (model.ReportConfig, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.ReportConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "db", &funnelDBPath, fileCfg.Store.Path)
	return parseReportConfig(funnelSince, funnelSource, funnelVariant, funnelTZ)
}

func parseReportConfig(since, source, variant, tz string) (model.ReportConfig, error) {
	cfg := model.ReportConfig{Location: time.Local}
	if tz = strings.TrimSpace(tz); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return cfg, fmt.Errorf("invalid --tz value: %w", err)
		}
		cfg.Location = loc
	}
	if since = strings.TrimSpace(since); since != "" {
		parsed, err := time.ParseInLocation(time.DateOnly, since, cfg.Location)
		if err != nil {
			return cfg, fmt.Errorf("invalid --since value: %w", err)
		}
		cfg.Filter.Since = &parsed
	}
	cfg.Filter.Source = strings.TrimSpace(source)
	cfg.Filter.Variant = strings.TrimSpace(variant)
	return cfg, nil
}

func newSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert synthetic visitor journeys",
		Args:  cobra.NoArgs,
		RunE:  runSeedCmd,
	}
	cmd.Flags().StringVar(&funnelDBPath, "db", config.DefaultDBPath(), "SQLite database path")
	cmd.Flags().IntVar(&seedVisitors, "visitors", defaultSeedVisitors, "number of visitors")
	cmd.Flags().IntVar(&seedDays, "days", defaultSeedDays, "spread visits over the last N days")
	cmd.Flags().Int64Var(&seedValue, "seed", 0, "random seed (0 for time based)")
	cmd.Flags().StringVar(&seedVariant, "variant", quiz.DefaultVariant, "quiz variant used for profiles")
	return cmd
}

func runSeedCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "db", &funnelDBPath, fileCfg.Store.Path)
	applyStringConfig(cmd, "variant", &seedVariant, fileCfg.Quiz.Variant)
	if seedVisitors <= 0 {
		return fmt.Errorf("--visitors must be > 0")
	}
	if seedDays <= 0 {
		return fmt.Errorf("--days must be > 0")
	}

	content, err := quiz.ResolveVariant(seedVariant, config.DefaultVariantDir())
	if err != nil {
		return fmt.Errorf("failed to load variant: %w", err)
	}
	records, err := generator.New(content, seedValue).Journeys(generator.Options{
		Visitors: seedVisitors,
		Days:     seedDays,
	})
	if err != nil {
		return err
	}

	st, err := store.Open(funnelDBPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	if err := st.InsertRecords(context.Background(), records); err != nil {
		return fmt.Errorf("failed to insert journeys: %w", err)
	}
	leads := 0
	for _, r := range records {
		if r.Email != "" {
			leads++
		}
	}
	logErrf("Inserted %s journeys (%s leads) into %s\n", humanize.Comma(int64(len(records))), humanize.Comma(int64(leads)), funnelDBPath)
	logErrln("Explore them with: funnelquiz dashboard")
	return nil
}
