package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pineda/postd/pkg/config"
)

var (
	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

var (
	serverURL  string
	authToken  string
	jsonOutput bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "postd",
	Short: "postd is a REST backend for posts",
	Long: `postd serves a small REST API for posts with optimistic concurrency,
backed by an in-memory store or PostgreSQL.

Every flag can be set through an environment variable named POSTD_<FLAG>,
with dashes replaced by underscores (e.g. POSTD_LOG_LEVEL=debug).`,
	SilenceUsage:  true,
	SilenceErrors: true, // We handle errors in Execute()
	PersistentPreRun: func(*cobra.Command, []string) {
		config.LoadDotEnv()
	},
}

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, config.KeyURL, "http://localhost:8080", "postd server base URL (env POSTD_URL)")
	rootCmd.PersistentFlags().StringVar(&authToken, config.KeyToken, "", "Bearer token for write requests (env POSTD_TOKEN)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output command results in JSON format")
}

// clientSettings resolves --url and --token, falling back to POSTD_URL and
// POSTD_TOKEN when the flags were not given.
func clientSettings(cmd *cobra.Command) (string, string, error) {
	v := config.NewViper()
	if err := bindFlags(v, cmd); err != nil {
		return "", "", err
	}
	return v.GetString(config.KeyURL), v.GetString(config.KeyToken), nil
}

// bindFlags binds the command's flags, including inherited persistent ones.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	return v.BindPFlags(cmd.Flags())
}
