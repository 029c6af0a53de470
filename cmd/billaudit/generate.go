package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Nehemiah-Career/billing-audit-pipeline/internal/cli"
	"github.com/Nehemiah-Career/billing-audit-pipeline/internal/generate"
)

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate synthetic sample workbooks",
		Long: `Generate an anonymized sample catalog and billing export with a known
mix of correct lines, stale prices, quantity-scaled totals, unexplained
amounts, zero-value lines, and credits. Useful for demos and for testing
pipeline changes without customer data.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := cmd.Flags().GetString("dir")
			if err != nil {
				return err
			}
			catalogPath, billingPath, err := generate.New().Write(dir)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatSuccess("wrote "+catalogPath))
			fmt.Fprintln(out, cli.FormatSuccess("wrote "+billingPath))
			fmt.Fprintln(out, cli.SubtleStyle.Render(
				fmt.Sprintf("try: billaudit run -c %s -b %s", catalogPath, billingPath)))
			return nil
		},
	}

	cmd.Flags().StringP("dir", "d", ".", "directory to write the sample workbooks into")
	return cmd
}
