package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	var catalogs bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the canonical and job tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.loadConfig()
			if err != nil {
				return err
			}
			cfg.MigrateCatalogs = cfg.MigrateCatalogs || catalogs
			a, err := ctx.ensureAppWithConfig(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Migrated %s database (catalogs=%t)\n", a.Cfg.DBDriver, cfg.MigrateCatalogs)
			return nil
		},
	}
	cmd.Flags().BoolVar(&catalogs, "catalogs", false, "Also create the source catalog tables (dev and test databases)")
	return cmd
}
