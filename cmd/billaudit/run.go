package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Nehemiah-Career/billing-audit-pipeline/internal/catalog"
	"github.com/Nehemiah-Career/billing-audit-pipeline/internal/cli"
	"github.com/Nehemiah-Career/billing-audit-pipeline/internal/common"
	"github.com/Nehemiah-Career/billing-audit-pipeline/internal/config"
	"github.com/Nehemiah-Career/billing-audit-pipeline/internal/engine"
	"github.com/Nehemiah-Career/billing-audit-pipeline/internal/model"
	"github.com/Nehemiah-Career/billing-audit-pipeline/internal/storage"
	"github.com/Nehemiah-Career/billing-audit-pipeline/internal/workbook"
)

// driftThresholdPct flags a billing export whose row count moved more than
// this much from the previous run, which usually means a filtered export.
const driftThresholdPct = 30

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "run",
		Aliases: []string{"audit"},
		Short:   "Run the full audit pipeline",
		Long: `Run all three stages against one catalog and one billing export:

  1. normalize the price catalog workbook
  2. normalize the billing export
  3. classify every billing line and write the audit report

Nothing is written until every stage succeeds. The report lands in the
file given by --output (default billing_audit.xlsx).`,
		RunE: runAudit,
	}

	cmd.Flags().StringP("catalog", "c", "", "catalog workbook (.xlsx)")
	cmd.Flags().StringP("billing", "b", "", "billing export workbook (.xlsx)")
	cmd.Flags().StringP("output", "o", "", "audit report output file (.xlsx)")
	cmd.Flags().String("intermediate-dir", "", "also write per-stage snapshots to this directory")
	cmd.Flags().Bool("no-history", false, "skip recording this run in the history database")
	_ = viper.BindPFlag("catalog.file", cmd.Flags().Lookup("catalog"))
	_ = viper.BindPFlag("billing.file", cmd.Flags().Lookup("billing"))
	_ = viper.BindPFlag("output.file", cmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("output.intermediate_dir", cmd.Flags().Lookup("intermediate-dir"))
	_ = viper.BindPFlag("history.disabled", cmd.Flags().Lookup("no-history"))

	return cmd
}

func runAudit(cmd *cobra.Command, _ []string) error {
	started := time.Now()
	cfg := config.Load(viper.GetViper())
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.CatalogFile == "" || cfg.BillingFile == "" {
		return common.NewUserError(
			"both a catalog and a billing export are required",
			"pass --catalog and --billing, or set catalog.file and billing.file in the config",
			common.ErrMissingConfig)
	}

	out := cmd.OutOrStdout()
	warnings := &common.Warnings{}

	// Stage 1: catalog
	fmt.Fprintln(out, cli.FormatTitle("Stage 1/3: price catalog"))
	built, _, err := buildCatalog(cfg, warnings)
	if err != nil {
		return err
	}
	counts := built.Counts()
	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf(
		"%d items (%d priced entries, %d custom)",
		built.ItemCount(), counts.PricedEntries, counts.CustomEntries)))

	// Stage 2: billing export
	fmt.Fprintln(out, cli.FormatTitle("Stage 2/3: billing export"))
	lines, stats, err := normalizeBilling(cfg, warnings)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf(
		"%d clean billing lines from %d raw rows", stats.CleanRows, stats.RawRows)))

	if cfg.IntermediateDir != "" {
		if _, err := workbook.WriteCatalogSnapshot(cfg.IntermediateDir, built); err != nil {
			return err
		}
		if _, err := workbook.WriteBillingSnapshot(cfg.IntermediateDir, lines); err != nil {
			return err
		}
	}

	// Stage 3: classification
	fmt.Fprintln(out, cli.FormatTitle("Stage 3/3: audit"))
	auditor := engine.NewAuditor(cfg, built)
	bar := cli.NewProgressBar(len(lines), "classifying")
	auditor.OnProgress(func(done, _ int) { _ = bar.Set(done) })
	results, summary, err := auditor.Run(lines)
	if err != nil {
		return err
	}
	_ = bar.Finish()
	fmt.Fprintln(out)

	if err := workbook.NewWriter(cfg.OutputFile).Write(results); err != nil {
		return err
	}

	fmt.Fprintln(out, cli.RenderAuditSummary(summary))
	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf(
		"report written to %s in %s", cfg.OutputFile, time.Since(started).Round(time.Millisecond))))

	recordHistory(cmd.Context(), cfg, summary, warnings)
	printWarnings(warnings)
	return nil
}

func buildCatalog(cfg config.Config, warnings *common.Warnings) (*model.Catalog, []catalog.TabResult, error) {
	reader, err := workbook.Open(cfg.CatalogFile)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = reader.Close() }()

	return catalog.NewBuilder(cfg, warnings).Build(reader)
}

// recordHistory stores the run summary and raises a drift advisory against
// the previous run. History failures never fail the audit.
func recordHistory(ctx context.Context, cfg config.Config, summary engine.Summary, warnings *common.Warnings) {
	if cfg.HistoryDisabled {
		return
	}
	store, err := storage.NewRunStore(cfg.HistoryDBPath)
	if err != nil {
		slog.Warn("run history unavailable", "error", err)
		return
	}
	defer func() { _ = store.Close() }()

	if err := store.Migrate(ctx); err != nil {
		slog.Warn("run history unavailable", "error", err)
		return
	}

	if last, err := store.LastRun(ctx); err != nil {
		slog.Warn("could not load previous run", "error", err)
	} else if last != nil {
		if pct, drifted := storage.RowCountDrift(last.BillingRows, summary.Total, driftThresholdPct); drifted {
			warnings.Addf("billing row count moved %.0f%% since the last run on %s (%d -> %d); check for a filtered export",
				pct, last.RunAt.Format("2006-01-02"), last.BillingRows, summary.Total)
		}
	}

	record := storage.RunRecord{
		RunAt:        time.Now().UTC(),
		Version:      version,
		BillingRows:  summary.Total,
		CleanMatches: summary.CleanMatches,
		NoMatch:      summary.ByFlag[model.FlagNoMatch].Count,
		Custom:       summary.ByFlag[model.FlagCustomPricing].Count,
		OldPrice:     summary.ByFlag[model.FlagOldPrice].Count,
		TotalBilled:  summary.TotalBilled,
	}
	if err := store.RecordRun(ctx, record); err != nil {
		slog.Warn("could not record run", "error", err)
	}
}

func historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show the most recent recorded audit run",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load(viper.GetViper())
			store, err := storage.NewRunStore(cfg.HistoryDBPath)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.Migrate(cmd.Context()); err != nil {
				return err
			}
			last, err := store.LastRun(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if last == nil {
				fmt.Fprintln(out, "no recorded runs")
				return nil
			}
			fmt.Fprintf(out, "last run      %s (version %s)\n", last.RunAt.Format(time.RFC3339), last.Version)
			fmt.Fprintf(out, "billing rows  %d\n", last.BillingRows)
			fmt.Fprintf(out, "clean matches %d\n", last.CleanMatches)
			fmt.Fprintf(out, "no match      %d\n", last.NoMatch)
			fmt.Fprintf(out, "old price     %d\n", last.OldPrice)
			fmt.Fprintf(out, "custom        %d\n", last.Custom)
			fmt.Fprintf(out, "total billed  %.2f\n", last.TotalBilled)
			return nil
		},
	}
}
