package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/pineda/postd/pkg/store"
)

// EnvPrefix prefixes every environment variable read by postd.
const EnvPrefix = "postd"

// Keys shared by flags and environment variables. The environment variable
// for a key is POSTD_ followed by the key upper-cased with "-" as "_".
const (
	KeyConfig          = "config"
	KeyAddr            = "addr"
	KeyShutdownTimeout = "shutdown-timeout"
	KeyMaxBodyBytes    = "max-body-bytes"
	KeyStore           = "store"
	KeyDSN             = "dsn"
	KeyMaxConns        = "max-conns"
	KeyMigrate         = "migrate"
	KeySeed            = "seed"
	KeyLogLevel        = "log-level"
	KeyLogFormat       = "log-format"
	KeyAuthSecret      = "auth-secret"
	KeyRateLimitRPS    = "rate-limit-rps"
	KeyRateLimitBurst  = "rate-limit-burst"
	KeyTrustedProxies  = "trusted-proxies"
	KeyValidate        = "validate"
	KeyURL             = "url"
	KeyToken           = "token"
)

// LoadDotEnv loads .env and .env.local from the working directory when they
// exist. Variables already set in the environment win.
func LoadDotEnv() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")
}

// NewViper returns a viper instance reading POSTD_* environment variables.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// FromViper overlays every key explicitly set in v (a changed flag or an
// environment variable) onto cfg.
func FromViper(v *viper.Viper, cfg *Config) {
	if v.IsSet(KeyAddr) {
		cfg.Server.Addr = v.GetString(KeyAddr)
	}
	if v.IsSet(KeyShutdownTimeout) {
		cfg.Server.ShutdownTimeout = v.GetDuration(KeyShutdownTimeout)
	}
	if v.IsSet(KeyMaxBodyBytes) {
		cfg.Server.MaxBodyBytes = v.GetInt64(KeyMaxBodyBytes)
	}
	if v.IsSet(KeyStore) {
		cfg.Store.Backend = store.Backend(strings.ToLower(v.GetString(KeyStore)))
	}
	if v.IsSet(KeyDSN) {
		cfg.Store.DSN = v.GetString(KeyDSN)
	}
	if v.IsSet(KeyMaxConns) {
		cfg.Store.MaxConns = v.GetInt32(KeyMaxConns)
	}
	if v.IsSet(KeyMigrate) {
		cfg.Store.Migrate = v.GetBool(KeyMigrate)
	}
	if v.IsSet(KeySeed) {
		cfg.Seed = v.GetBool(KeySeed)
	}
	if v.IsSet(KeyLogLevel) {
		cfg.Log.Level = v.GetString(KeyLogLevel)
	}
	if v.IsSet(KeyLogFormat) {
		cfg.Log.Format = v.GetString(KeyLogFormat)
	}
	if v.IsSet(KeyAuthSecret) {
		cfg.Auth.Secret = v.GetString(KeyAuthSecret)
	}
	if v.IsSet(KeyRateLimitRPS) {
		cfg.RateLimit.RPS = v.GetFloat64(KeyRateLimitRPS)
	}
	if v.IsSet(KeyRateLimitBurst) {
		cfg.RateLimit.Burst = v.GetInt(KeyRateLimitBurst)
	}
	if v.IsSet(KeyTrustedProxies) {
		cfg.RateLimit.TrustedProxies = splitList(v.GetString(KeyTrustedProxies))
	}
	if v.IsSet(KeyValidate) {
		cfg.Validation.Enabled = v.GetBool(KeyValidate)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
