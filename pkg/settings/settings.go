// Package settings provides build metadata, per-invocation options, and
// context helpers shared by the moviesearch commands.
package settings

import (
	"context"
	"os"
	"strings"
)

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "moviesearch"

// ServerEnvVar overrides the search service base URL used by client commands.
const ServerEnvVar = "MOVIESEARCH_SERVER"

// DefaultServerURL is where client commands look for the search service
// when neither the flag, the environment nor the config file says otherwise.
const DefaultServerURL = "http://127.0.0.1:5000"

// VersionInformation is populated at build time via ldflags.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// VersionInfo holds metadata about the build.
type VersionInfo struct {
	Commit       string
	BuildVersion string
	BuildTime    string
}

// Run holds the options of a single CLI invocation after flags, environment
// and config file have been merged.
type Run struct {
	MinLogLevel int8
	ConfigFile  string
	ServerURL   string
	NoColor     bool
	Debug       bool
}

// NewCliParams returns the defaults used before any flag is parsed.
func NewCliParams() *Run {
	return &Run{
		MinLogLevel: 0,
		ServerURL:   DefaultServerURL,
	}
}

// ResolveServerURL picks the base URL in precedence order: explicit flag,
// environment, config file, built-in default.
func ResolveServerURL(flagValue, configValue string) string {
	if v := strings.TrimSpace(flagValue); v != "" {
		return strings.TrimRight(v, "/")
	}
	if v := strings.TrimSpace(os.Getenv(ServerEnvVar)); v != "" {
		return strings.TrimRight(v, "/")
	}
	if v := strings.TrimSpace(configValue); v != "" {
		return strings.TrimRight(v, "/")
	}
	return DefaultServerURL
}

type contextKey string

const runContextKey contextKey = "settings"

// IntoContext stores the run settings in the context.
func IntoContext(ctx context.Context, s *Run) context.Context {
	return context.WithValue(ctx, runContextKey, s)
}

// FromContext retrieves the run settings from the context.
func FromContext(ctx context.Context) (*Run, bool) {
	s, ok := ctx.Value(runContextKey).(*Run)
	return s, ok
}
