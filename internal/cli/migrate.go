package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prudhivi99/bookstore/internal/config"
	"github.com/prudhivi99/bookstore/internal/db"
)

// NewMigrateCommand creates the migrate command with up and down subcommands.
func NewMigrateCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or revert the database schema",
	}

	cmd.AddCommand(newMigrateStep(opts, "up", "Apply all pending migrations", db.MigrateUp))
	cmd.AddCommand(newMigrateStep(opts, "down", "Revert every migration", db.MigrateDown))

	return cmd
}

func newMigrateStep(opts *RootOptions, use, short string, step func(config.DatabaseConfig) (bool, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			changed, err := step(opts.Config.Database)
			if err != nil {
				return err
			}

			if changed {
				opts.Logger.Info().Str("direction", use).Str("driver", opts.Config.Database.Driver).Msg("✅ Migrations applied")
				fmt.Fprintf(cmd.OutOrStdout(), "migrate %s: applied\n", use)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "migrate %s: no change\n", use)
			}
			return nil
		},
	}
}
