package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pineda/postd/pkg/cli/internal/output"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that a postd server is up",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, baseURL, err := newClient(cmd)
		if err != nil {
			return err
		}
		if err := c.Health(cmd.Context()); err != nil {
			return fmt.Errorf("%s: %w", baseURL, err)
		}
		if jsonOutput {
			return output.JSON(cmd.OutOrStdout(), map[string]string{"status": "ok", "url": baseURL})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is healthy\n", baseURL)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
