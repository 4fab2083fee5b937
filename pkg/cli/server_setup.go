package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/pineda/postd/pkg/api"
	"github.com/pineda/postd/pkg/auth"
	"github.com/pineda/postd/pkg/config"
	"github.com/pineda/postd/pkg/metrics"
	"github.com/pineda/postd/pkg/ratelimit"
	"github.com/pineda/postd/pkg/store"
	"github.com/pineda/postd/pkg/store/memory"
	"github.com/pineda/postd/pkg/store/postgres"
	"github.com/pineda/postd/pkg/validation"
)

// server is one running postd instance: store, API and listener.
type server struct {
	cfg     config.Config
	log     *slog.Logger
	store   store.PostStore
	limiter *ratelimit.Limiter
	httpSrv *http.Server
	ln      net.Listener
}

// openStore opens the backend selected by cfg, migrating and seeding as
// configured.
func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (store.PostStore, error) {
	var s store.PostStore
	switch cfg.Store.Backend {
	case store.BackendPostgres:
		pg, err := postgres.Open(ctx, postgres.Config{
			DSN:            cfg.Store.DSN,
			MaxConns:       cfg.Store.MaxConns,
			ConnectTimeout: cfg.Store.ConnectTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		if cfg.Store.Migrate {
			if err := pg.Migrate(ctx); err != nil {
				_ = pg.Close()
				return nil, err
			}
			log.Info("schema migrated")
		}
		s = pg
	case store.BackendMemory, "":
		s = memory.New()
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	if cfg.Seed {
		seeder, ok := s.(store.Seeder)
		if !ok {
			_ = s.Close()
			return nil, fmt.Errorf("store backend %q cannot be seeded", cfg.Store.Backend)
		}
		if err := seeder.Seed(ctx, store.DefaultSeed()); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("seed store: %w", err)
		}
		log.Info("store seeded", "posts", len(store.DefaultSeed()))
	}
	return s, nil
}

// newServer opens the store, builds the API and binds the listener.
func newServer(ctx context.Context, cfg config.Config, log *slog.Logger) (*server, error) {
	s, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	reg := metrics.NewRegistry(metrics.WithProcessMetrics())
	if ms, ok := s.(*memory.Store); ok {
		reg.RegisterPostCount(func() float64 { return float64(ms.Count()) })
	}

	limiter := ratelimit.New(ratelimit.Config{
		RPS:            cfg.RateLimit.RPS,
		Burst:          cfg.RateLimit.Burst,
		TrustedProxies: cfg.RateLimit.TrustedProxies,
	})

	opts := []api.Option{
		api.WithLogger(log),
		api.WithMetrics(reg),
		api.WithRateLimiter(limiter),
		api.WithAuthenticator(auth.New(cfg.Auth.Secret)),
		api.WithMaxBodySize(cfg.Server.MaxBodyBytes),
		api.WithVersion(Version),
	}
	if cfg.Validation.Enabled {
		v, err := validation.New(api.OpenAPISpec)
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		opts = append(opts, api.WithValidator(v))
	}
	a := api.New(s, opts...)

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("listen on %s: %w", cfg.Server.Addr, err)
	}

	return &server{
		cfg:     cfg,
		log:     log,
		store:   s,
		limiter: limiter,
		ln:      ln,
		httpSrv: &http.Server{
			Handler:           a.Handler(),
			ReadTimeout:       cfg.Server.ReadTimeout,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      cfg.Server.WriteTimeout,
			IdleTimeout:       cfg.Server.IdleTimeout,
		},
	}, nil
}

// Addr returns the bound listen address.
func (s *server) Addr() string {
	return s.ln.Addr().String()
}

// Run serves until ctx is cancelled, then shuts down gracefully and closes
// the store.
func (s *server) Run(ctx context.Context) error {
	s.limiter.Start()
	defer s.limiter.Stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpSrv.Serve(s.ln)
	}()
	s.log.Info("postd listening",
		"addr", s.Addr(),
		"store", s.cfg.Store.Backend,
		"auth", s.cfg.Auth.Secret != "",
		"validation", s.cfg.Validation.Enabled,
	)

	var serveErr error
	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = err
		}
	case <-ctx.Done():
		s.log.Info("shutting down")
	}

	timeout := s.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = config.Default().Server.ShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
		s.log.Warn("graceful shutdown failed", "error", err)
	}
	if err := s.store.Close(); err != nil {
		s.log.Warn("error closing store", "error", err)
	}
	return serveErr
}
