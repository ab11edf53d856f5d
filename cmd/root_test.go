package cmd

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-logr/logr/funcr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/moviesearch/internal/catalog"
	"github.com/oakwood-commons/moviesearch/internal/config"
	"github.com/oakwood-commons/moviesearch/internal/server"
	"github.com/oakwood-commons/moviesearch/pkg/settings"
)

// isolate keeps the user's config file and environment out of a test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(settings.ServerEnvVar, "")
}

func startService(t *testing.T) string {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	srv := httptest.NewServer(server.New(cat, server.Options{}).Handler())
	t.Cleanup(srv.Close)
	return srv.URL
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	return runContext(context.Background(), t, stdin, args...)
}

func runContext(ctx context.Context, t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestSearchCommand(t *testing.T) {
	isolate(t)
	url := startService(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "text",
			args: []string{"search", "bat"},
			want: "Batman Forever (1995)\nBatman (1989)\nBatman Returns (1992)\nBatman & Robin (1997)\nBatman Begins (2005)\n",
		},
		{
			name: "multi word query",
			args: []string{"search", "batman", "returns"},
			want: "Batman Returns (1992)\n",
		},
		{
			name: "where",
			args: []string{"search", "bat", "--where", `title.endsWith("(1995)")`},
			want: "Batman Forever (1995)\n",
		},
		{
			name: "tail",
			args: []string{"search", "bat", "--tail", "2"},
			want: "Batman & Robin (1997)\nBatman Begins (2005)\n",
		},
		{
			name: "offset and limit",
			args: []string{"search", "bat", "--offset", "1", "--limit", "1"},
			want: "Batman (1989)\n",
		},
		{
			name: "list",
			args: []string{"search", "godfather", "-o", "list", "--no-color"},
			want: "1. Godfather, The (1972)\n",
		},
		{
			name: "no hits",
			args: []string{"search", "zzz", "-o", "json"},
			want: "[]\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, "", append(tt.args, "--server", url)...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestSearchFlagErrors(t *testing.T) {
	isolate(t)
	tests := []struct {
		name   string
		args   []string
		errMsg string
	}{
		{name: "format", args: []string{"search", "bat", "-o", "xml"}, errMsg: "unknown output format"},
		{name: "limit and tail", args: []string{"search", "bat", "--limit", "1", "--tail", "1"}, errMsg: "mutually exclusive"},
		{name: "where", args: []string{"search", "bat", "--where", "title +"}, errMsg: "--where"},
		{name: "no query", args: []string{"search"}, errMsg: "requires at least 1 arg"},
		{name: "bad server", args: []string{"search", "bat", "--server", "ftp://x"}, errMsg: "scheme"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, "", tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestServerFromEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv(settings.ServerEnvVar, startService(t)+"/")

	out, err := run(t, "", "search", "matrix")
	require.NoError(t, err)
	assert.Equal(t, "Matrix, The (1999)\n", out)
}

func TestClientLogsNormalizedURL(t *testing.T) {
	var lines []string
	o := &rootOptions{
		run: &settings.Run{ServerURL: "http://movies.example:8080/"},
		log: funcr.New(func(_, args string) {
			lines = append(lines, args)
		}, funcr.Options{Verbosity: 1}),
	}
	c, err := o.client()
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "http://movies.example:8080", c.BaseURL())
	assert.Contains(t, lines[0], `"url"="http://movies.example:8080"`)
}

func TestResolveCommand(t *testing.T) {
	isolate(t)
	url := startService(t)

	out, err := run(t, "", "resolve", "godfater", "--server", url)
	require.NoError(t, err)
	assert.Equal(t, "Godfather, The (1972)\n", out)
}

func TestSimilarWithoutRatings(t *testing.T) {
	isolate(t)
	url := startService(t)

	_, err := run(t, "", "similar", "Heat (1995)", "--server", url)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No ratings loaded")
}

func TestSuggestLineMode(t *testing.T) {
	isolate(t)
	url := startService(t)

	out, err := run(t, "bat\n\nzzz\n", "suggest", "--server", url)
	require.NoError(t, err)
	assert.Equal(t, "Batman Forever (1995)\nBatman (1989)\nBatman Returns (1992)\nBatman & Robin (1997)\nBatman Begins (2005)\n\n", out)
}

func TestSuggestUnreachableService(t *testing.T) {
	isolate(t)
	srv := httptest.NewServer(nil)
	url := srv.URL
	srv.Close()

	out, err := run(t, "bat\n", "suggest", "--lines", "--server", url)
	require.NoError(t, err, "fetch failures are logged, not returned")
	assert.Empty(t, out)
}

func TestConfigCommand(t *testing.T) {
	isolate(t)

	out, err := run(t, "", "config", "--server", "http://example.com:8080/")
	require.NoError(t, err)
	var cfg config.Config
	require.NoError(t, yaml.Unmarshal([]byte(out), &cfg))
	assert.Equal(t, "http://example.com:8080", cfg.Client.BaseURL)
	assert.Equal(t, 10, cfg.Server.Limit)

	out, err = run(t, "", "config", "--default")
	require.NoError(t, err)
	assert.Equal(t, string(config.DefaultYAML()), out)
}

func TestConfigFile(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte("server:\n  limit: 3\n"), 0o600))
	out, err := run(t, "", "config", "--config-file", good)
	require.NoError(t, err)
	assert.Contains(t, out, "limit: 3")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("server: [\n"), 0o600))
	_, err = run(t, "", "config", "--config-file", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), bad)
}

func TestVersionCommand(t *testing.T) {
	isolate(t)
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "moviesearch "), out)
	assert.Contains(t, out, settings.VersionInformation.BuildVersion)
}

func TestServeCommand(t *testing.T) {
	isolate(t)

	t.Run("missing movies file", func(t *testing.T) {
		_, err := run(t, "", "serve", "--movies", filepath.Join(t.TempDir(), "nope.csv"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "load movies")
	})

	t.Run("stops on cancel", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()
		_, err := runContext(ctx, t, "", "serve", "--addr", "127.0.0.1:0")
		require.NoError(t, err)
	})
}
