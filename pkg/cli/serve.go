package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/pineda/postd/pkg/config"
	"github.com/pineda/postd/pkg/logging"
)

var serveCfg config.Config

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the postd HTTP API",
	Long: `Run the postd HTTP API until SIGINT or SIGTERM.

Configuration is read from --config (YAML or JSON), then POSTD_* environment
variables, then flags; later sources win.`,
	Args:    cobra.NoArgs,
	PreRunE: processServeConfig,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return runServe(ctx, cmd, serveCfg)
	},
}

func init() {
	addServeFlags(serveCmd.Flags())
	rootCmd.AddCommand(serveCmd)
}

func addServeFlags(f *pflag.FlagSet) {
	f.String(config.KeyConfig, "", "Path to a YAML or JSON config file")
	f.String(config.KeyAddr, ":8080", "Listen address")
	f.Duration(config.KeyShutdownTimeout, 0, "Graceful shutdown timeout (default 10s)")
	f.Int64(config.KeyMaxBodyBytes, 0, "Maximum request body size in bytes (default 1MiB)")
	f.String(config.KeyStore, "memory", "Store backend: memory or postgres")
	f.String(config.KeyDSN, "", "PostgreSQL connection string")
	f.Int32(config.KeyMaxConns, 0, "Maximum PostgreSQL connections (default 10)")
	f.Bool(config.KeyMigrate, true, "Create the post table on start (postgres)")
	f.Bool(config.KeySeed, false, "Load the sample posts on start (memory)")
	f.String(config.KeyLogLevel, "info", "Log level: debug, info, warn, error")
	f.String(config.KeyLogFormat, "text", "Log format: text or json")
	f.String(config.KeyAuthSecret, "", "HS256 secret; when set, writes need a bearer token")
	f.Float64(config.KeyRateLimitRPS, 0, "Requests per second per client; 0 disables rate limiting")
	f.Int(config.KeyRateLimitBurst, 0, "Rate limit burst (default 2x rps)")
	f.String(config.KeyTrustedProxies, "", "Comma-separated proxy CIDRs whose X-Forwarded-For is trusted")
	f.Bool(config.KeyValidate, true, "Validate requests against the OpenAPI document")
}

// processServeConfig resolves defaults, the config file, the environment and
// flags into serveCfg.
func processServeConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveServeConfig(cmd)
	if err != nil {
		return err
	}
	serveCfg = cfg
	return nil
}

func resolveServeConfig(cmd *cobra.Command) (config.Config, error) {
	v := config.NewViper()
	if err := bindFlags(v, cmd); err != nil {
		return config.Config{}, err
	}

	cfg := config.Default()
	if path := v.GetString(config.KeyConfig); path != "" {
		fileCfg, err := config.LoadFile(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = *fileCfg
	}
	config.FromViper(v, &cfg)

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func runServe(ctx context.Context, cmd *cobra.Command, cfg config.Config) error {
	lc := cfg.LoggingConfig()
	lc.Output = cmd.ErrOrStderr()
	log := logging.New(lc)

	srv, err := newServer(ctx, cfg, log)
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}
