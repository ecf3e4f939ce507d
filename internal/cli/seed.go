package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prudhivi99/bookstore/internal/db"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the sample catalog into an empty database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := db.Open(opts.Config.Database, opts.Logger)
			if err != nil {
				return err
			}
			defer database.Close()

			n, err := db.Seed(cmd.Context(), db.NewBookRepository(database))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d books\n", n)
			return nil
		},
	}
}
