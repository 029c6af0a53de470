package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Nehemiah-Career/billing-audit-pipeline/internal/cli"
	"github.com/Nehemiah-Career/billing-audit-pipeline/internal/common"
	"github.com/Nehemiah-Career/billing-audit-pipeline/internal/config"
	"github.com/Nehemiah-Career/billing-audit-pipeline/internal/workbook"
)

func catalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Normalize and inspect a price catalog workbook",
		Long: `Normalize a price catalog workbook without running an audit.

Walks every visible tab, discovers headers, classifies currency and year
columns, and reports what the audit stage would see. Use this to verify a
new catalog format before running the full pipeline.`,
		RunE: runCatalog,
	}

	cmd.Flags().StringP("file", "f", "", "catalog workbook (.xlsx)")
	cmd.Flags().String("intermediate-dir", "", "write the normalized catalog to this directory")
	_ = viper.BindPFlag("catalog.file", cmd.Flags().Lookup("file"))
	_ = viper.BindPFlag("output.intermediate_dir", cmd.Flags().Lookup("intermediate-dir"))

	return cmd
}

func runCatalog(cmd *cobra.Command, _ []string) error {
	cfg := config.Load(viper.GetViper())
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.CatalogFile == "" {
		return common.NewUserError(
			"no catalog file given",
			"pass --file or set catalog.file in the config",
			common.ErrMissingConfig)
	}

	warnings := &common.Warnings{}
	built, tabs, err := buildCatalog(cfg, warnings)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cli.FormatTitle("Catalog: "+cfg.CatalogFile))
	for _, tab := range tabs {
		if tab.SkipReason != "" {
			fmt.Fprintln(out, cli.SubtleStyle.Render(
				fmt.Sprintf("  %-30s skipped: %s", tab.Tab, tab.SkipReason)))
			continue
		}
		fmt.Fprintf(out, "  %-30s %6d priced entries, %d custom items\n",
			tab.Tab, len(tab.Entries), len(tab.CustomItems))
	}
	counts := built.Counts()
	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf(
		"%d items (%d priced entries, %d custom)",
		built.ItemCount(), counts.PricedEntries, counts.CustomEntries)))

	if cfg.IntermediateDir != "" {
		path, err := workbook.WriteCatalogSnapshot(cfg.IntermediateDir, built)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, cli.SubtleStyle.Render("wrote "+path))
	}

	printWarnings(warnings)
	return nil
}

func printWarnings(warnings *common.Warnings) {
	if warnings.Len() > 0 {
		fmt.Fprint(os.Stderr, cli.RenderWarnings(warnings.Items()))
	}
}
