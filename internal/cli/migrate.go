package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Execute the embedded schema migrations and report how many ran",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.dsn == "" {
				return fmt.Errorf("no database configured: pass --dsn or set POSTGRES_DSN")
			}
			executed, err := opts.backend.Migrate(cmd.Context(), opts.dsn)
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), map[string]int{"migrations": executed})
		},
	}
}
