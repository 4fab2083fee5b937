package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/pineda/postd/pkg/cli/internal/output"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if jsonOutput {
			return output.JSON(cmd.OutOrStdout(), struct {
				Version   string `json:"version"`
				Commit    string `json:"commit"`
				BuildDate string `json:"buildDate"`
				Go        string `json:"go"`
				Platform  string `json:"platform"`
			}{
				Version:   Version,
				Commit:    Commit,
				BuildDate: BuildDate,
				Go:        runtime.Version(),
				Platform:  runtime.GOOS + "/" + runtime.GOARCH,
			})
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "postd %s\n", Version)
		fmt.Fprintf(w, "  commit:     %s\n", Commit)
		fmt.Fprintf(w, "  built:      %s\n", BuildDate)
		fmt.Fprintf(w, "  go version: %s\n", runtime.Version())
		fmt.Fprintf(w, "  platform:   %s/%s\n", runtime.GOOS, runtime.GOARCH)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
