package main

import (
	"github.com/spf13/cobra"

	"github.com/rcarvalho-pb/storefront-payments/internal/config"
	"github.com/rcarvalho-pb/storefront-payments/internal/infra/logging"
)

func migrateCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the payment store schema and indexes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(flags.configFile, flags.envFile)
			if err != nil {
				return err
			}
			logger := logging.NewSlogLogger(newLogger(cfg))

			st, err := buildStore(cmd.Context(), cfg.Store)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Migrate(cmd.Context()); err != nil {
				return err
			}

			logger.Info("store migrated", map[string]any{"driver": cfg.Store.Driver})
			return nil
		},
	}
}
