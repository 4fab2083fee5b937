package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pineda/postd/pkg/config"
	"github.com/pineda/postd/pkg/store/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the post table in PostgreSQL",
	Long: `Create the post table if it does not exist.

The connection string comes from --dsn or POSTD_DSN.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		v := config.NewViper()
		if err := bindFlags(v, cmd); err != nil {
			return err
		}
		dsn := v.GetString(config.KeyDSN)
		if dsn == "" {
			return errors.New("a PostgreSQL DSN is required (--dsn or POSTD_DSN)")
		}

		defaults := config.Default().Store
		s, err := postgres.Open(cmd.Context(), postgres.Config{
			DSN:            dsn,
			MaxConns:       1,
			ConnectTimeout: defaults.ConnectTimeout,
		})
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		if err := s.Migrate(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date.")
		return nil
	},
}

func init() {
	migrateCmd.Flags().String(config.KeyDSN, "", "PostgreSQL connection string")
	rootCmd.AddCommand(migrateCmd)
}
