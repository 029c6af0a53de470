package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Nehemiah-Career/billing-audit-pipeline/internal/billing"
	"github.com/Nehemiah-Career/billing-audit-pipeline/internal/cli"
	"github.com/Nehemiah-Career/billing-audit-pipeline/internal/common"
	"github.com/Nehemiah-Career/billing-audit-pipeline/internal/config"
	"github.com/Nehemiah-Career/billing-audit-pipeline/internal/model"
	"github.com/Nehemiah-Career/billing-audit-pipeline/internal/workbook"
)

func billingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "billing",
		Short: "Normalize and inspect a billing export workbook",
		Long: `Normalize a billing export without running an audit.

Locates the billing sheet, resolves the required columns, and reports how
many rows survive normalization and why the rest were dropped.`,
		RunE: runBilling,
	}

	cmd.Flags().StringP("file", "f", "", "billing export workbook (.xlsx)")
	cmd.Flags().String("intermediate-dir", "", "write the normalized lines to this directory")
	_ = viper.BindPFlag("billing.file", cmd.Flags().Lookup("file"))
	_ = viper.BindPFlag("output.intermediate_dir", cmd.Flags().Lookup("intermediate-dir"))

	return cmd
}

func runBilling(cmd *cobra.Command, _ []string) error {
	cfg := config.Load(viper.GetViper())
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.BillingFile == "" {
		return common.NewUserError(
			"no billing export given",
			"pass --file or set billing.file in the config",
			common.ErrMissingConfig)
	}

	warnings := &common.Warnings{}
	lines, stats, err := normalizeBilling(cfg, warnings)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cli.FormatTitle("Billing export: "+cfg.BillingFile))
	fmt.Fprintf(out, "  sheet             %s\n", stats.Sheet)
	fmt.Fprintf(out, "  raw rows          %d\n", stats.RawRows)
	fmt.Fprintf(out, "  subtotal rows     %d\n", stats.SubtotalRows)
	fmt.Fprintf(out, "  missing item id   %d\n", stats.MissingIdentity)
	fmt.Fprintf(out, "  missing net value %d\n", stats.MissingNetValue)
	fmt.Fprintf(out, "  zero quantity     %d (kept)\n", stats.ZeroQuantity)
	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("%d clean billing lines", stats.CleanRows)))

	if cfg.IntermediateDir != "" {
		path, err := workbook.WriteBillingSnapshot(cfg.IntermediateDir, lines)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, cli.SubtleStyle.Render("wrote "+path))
	}

	printWarnings(warnings)
	return nil
}

func normalizeBilling(cfg config.Config, warnings *common.Warnings) ([]model.BillingLine, billing.Stats, error) {
	reader, err := workbook.Open(cfg.BillingFile)
	if err != nil {
		return nil, billing.Stats{}, err
	}
	defer func() { _ = reader.Close() }()

	return billing.NewNormalizer(cfg, warnings).Normalize(reader)
}
