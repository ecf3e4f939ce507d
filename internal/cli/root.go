package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/prudhivi99/bookstore/internal/config"
	"github.com/prudhivi99/bookstore/internal/logging"
)

// RootOptions holds global flags and the state every command shares.
type RootOptions struct {
	ConfigPath string

	// Filled in before any subcommand runs.
	Config config.Config
	Logger zerolog.Logger
}

// NewRootCommand creates the root command for the bookstore binary.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "bookstore",
		Short: "Bookstore checkout service",
		Long: `Bookstore serves the catalog, per-session carts and checkout over HTTP.

Settings come from built-in defaults, then the YAML file given with --config,
then BOOKSTORE_* environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				return err
			}
			opts.Config = cfg
			opts.Logger = logging.NewWithWriter(cfg.Log, cmd.ErrOrStderr())
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to YAML config file")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewReceiptCommand(opts))
	cmd.AddCommand(NewReceiptsCommand(opts))

	return cmd
}
