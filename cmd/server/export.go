package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcarvalho-pb/storefront-payments/internal/config"
	"github.com/rcarvalho-pb/storefront-payments/internal/report"
)

func exportHistoryCmd(flags *rootFlags) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export-history",
		Short: "Write the payment history as an XLSX workbook",
		Example: `  payments export-history -o history.xlsx
  payments export-history -o - > history.xlsx`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(flags.configFile, flags.envFile)
			if err != nil {
				return err
			}

			st, err := buildStore(cmd.Context(), cfg.Store)
			if err != nil {
				return err
			}
			defer st.Close()

			records, err := st.Repo.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("list payments: %w", err)
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			if err := report.WriteHistoryXLSX(w, records); err != nil {
				return err
			}

			if out != "-" {
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d payments to %s\n", len(records), out)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "payment-history.xlsx", `output file, "-" for stdout`)
	return cmd
}
