package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pineda/postd/pkg/api"
	"github.com/pineda/postd/pkg/client"
	"github.com/pineda/postd/pkg/config"
	"github.com/pineda/postd/pkg/logging"
	"github.com/pineda/postd/pkg/post"
	"github.com/pineda/postd/pkg/store"
	"github.com/pineda/postd/pkg/store/memory"
)

func newServeCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "serve"}
	addServeFlags(cmd.Flags())
	require.NoError(t, cmd.Flags().Parse(args))
	return cmd
}

func TestResolveServeConfig_Defaults(t *testing.T) {
	cfg, err := resolveServeConfig(newServeCommand(t))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestResolveServeConfig_Precedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "postd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9000"
log:
  level: warn
  format: json
rateLimit:
  rps: 5
`), 0o600))

	t.Setenv("POSTD_LOG_LEVEL", "debug")
	t.Setenv("POSTD_ADDR", ":9100")

	cmd := newServeCommand(t, "--config", path, "--addr", ":9200")
	cfg, err := resolveServeConfig(cmd)
	require.NoError(t, err)

	assert.Equal(t, ":9200", cfg.Server.Addr, "flag beats env and file")
	assert.Equal(t, "debug", cfg.Log.Level, "env beats file")
	assert.Equal(t, "json", cfg.Log.Format, "file beats default")
	assert.Equal(t, 5.0, cfg.RateLimit.RPS)
}

func TestResolveServeConfig_Invalid(t *testing.T) {
	_, err := resolveServeConfig(newServeCommand(t, "--store", "postgres"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	t.Run("memory seeded", func(t *testing.T) {
		cfg := config.Default()
		cfg.Seed = true
		s, err := openStore(ctx, cfg, logging.Nop())
		require.NoError(t, err)
		defer s.Close()

		posts, err := s.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, posts, len(store.DefaultSeed()))
	})

	t.Run("memory empty", func(t *testing.T) {
		s, err := openStore(ctx, config.Default(), logging.Nop())
		require.NoError(t, err)
		defer s.Close()

		posts, err := s.FindAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, posts)
	})

	t.Run("unknown backend", func(t *testing.T) {
		cfg := config.Default()
		cfg.Store.Backend = "sqlite"
		_, err := openStore(ctx, cfg, logging.Nop())
		assert.Error(t, err)
	})
}

func TestServer_RunAndShutdown(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Addr = "127.0.0.1:0"
	cfg.Server.ShutdownTimeout = 2 * time.Second
	cfg.Seed = true
	cfg.RateLimit.RPS = 100

	ctx, cancel := context.WithCancel(context.Background())
	srv, err := newServer(ctx, cfg, logging.Nop())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	c := client.New("http://" + srv.Addr())
	require.NoError(t, c.Health(context.Background()))

	posts, err := c.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, posts, 2)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"1", 1, false},
		{"42", 42, false},
		{"0", 0, false},
		{"-3", -3, false},
		{"1.5", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseID(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func decodePost(t *testing.T, s string) *post.Post {
	t.Helper()
	var p post.Post
	require.NoError(t, json.Unmarshal([]byte(s), &p), s)
	return &p
}

func TestPostsCommands(t *testing.T) {
	s := memory.New()
	require.NoError(t, s.Seed(context.Background(), store.DefaultSeed()))
	ts := httptest.NewServer(api.New(s).Handler())
	defer ts.Close()

	out, err := execute(t, "posts", "create", "--url", ts.URL, "--json",
		"--user-id", "7", "--title", "From CLI", "--body", "created by a test")
	require.NoError(t, err)
	created := decodePost(t, out)
	assert.Equal(t, int64(3), created.ID)
	assert.Equal(t, int64(0), created.VersionOrZero())

	out, err = execute(t, "posts", "get", "3", "--url", ts.URL, "--json")
	require.NoError(t, err)
	assert.Equal(t, "From CLI", decodePost(t, out).Title)

	out, err = execute(t, "posts", "update", "3", "--url", ts.URL, "--json", "--title", "Renamed")
	require.NoError(t, err)
	updated := decodePost(t, out)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, "created by a test", updated.Body)
	assert.Equal(t, int64(7), updated.UserID)
	assert.Equal(t, int64(1), updated.VersionOrZero())

	out, err = execute(t, "posts", "list", "--url", ts.URL, "--json", "--title", "Renamed")
	require.NoError(t, err)
	var listed []*post.Post
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, int64(3), listed[0].ID)

	out, err = execute(t, "posts", "delete", "3", "--url", ts.URL, "--json=false")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted post 3")

	_, err = execute(t, "posts", "get", "3", "--url", ts.URL)
	assert.ErrorIs(t, err, client.ErrNotFound)

	_, err = execute(t, "posts", "get", "zero", "--url", ts.URL)
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version", "--json=false")
	require.NoError(t, err)
	assert.Contains(t, out, "postd "+Version)
}
