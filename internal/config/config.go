// Package config loads the moviesearch YAML configuration: the embedded
// defaults merged with an optional user file.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var embeddedDefaultConfig []byte

// Config is the merged configuration.
type Config struct {
	App    AppConfig    `yaml:"app"`
	Server ServerConfig `yaml:"server"`
	Client ClientConfig `yaml:"client"`
	UI     UIConfig     `yaml:"ui"`
}

// AppConfig holds display metadata.
type AppConfig struct {
	Name string `yaml:"name"`
}

// ServerConfig configures `moviesearch serve`.
type ServerConfig struct {
	Addr        string `yaml:"addr"`
	MoviesPath  string `yaml:"moviesPath"`
	RatingsPath string `yaml:"ratingsPath"`
	Limit       int    `yaml:"limit"`
	SimilarK    int    `yaml:"similarK"`
}

// ClientConfig configures the commands that talk to the search service.
type ClientConfig struct {
	BaseURL string `yaml:"baseURL"`
	// DiscardStale drops suggestion responses that arrive after a newer
	// input event was issued. Off keeps arrival-order application.
	DiscardStale bool `yaml:"discardStale"`
	// Timeout bounds one-shot client commands. Zero means none; the
	// interactive binder never sets a timeout.
	Timeout time.Duration `yaml:"timeout"`
}

// UIConfig configures the terminal UI.
type UIConfig struct {
	NoColor     bool   `yaml:"noColor"`
	MaxVisible  int    `yaml:"maxVisible"`
	Placeholder string `yaml:"placeholder"`
}

// overlay mirrors Config with pointer leaves so a key missing from the
// user file keeps its default.
type overlay struct {
	App struct {
		Name *string `yaml:"name"`
	} `yaml:"app"`
	Server struct {
		Addr        *string `yaml:"addr"`
		MoviesPath  *string `yaml:"moviesPath"`
		RatingsPath *string `yaml:"ratingsPath"`
		Limit       *int    `yaml:"limit"`
		SimilarK    *int    `yaml:"similarK"`
	} `yaml:"server"`
	Client struct {
		BaseURL      *string        `yaml:"baseURL"`
		DiscardStale *bool          `yaml:"discardStale"`
		Timeout      *time.Duration `yaml:"timeout"`
	} `yaml:"client"`
	UI struct {
		NoColor     *bool   `yaml:"noColor"`
		MaxVisible  *int    `yaml:"maxVisible"`
		Placeholder *string `yaml:"placeholder"`
	} `yaml:"ui"`
}

// DefaultYAML returns a copy of the embedded default config.
func DefaultYAML() []byte {
	return append([]byte(nil), embeddedDefaultConfig...)
}

// Default decodes the embedded defaults.
func Default() (Config, error) {
	var cfg Config
	if len(embeddedDefaultConfig) == 0 {
		return cfg, errors.New("embedded default config is empty")
	}
	if err := yaml.Unmarshal(embeddedDefaultConfig, &cfg); err != nil {
		return cfg, fmt.Errorf("decode default config: %w", err)
	}
	return cfg, nil
}

// Load returns the defaults merged with the file at path. An empty path
// falls back to DefaultPath when that file exists.
func Load(path string) (Config, error) {
	cfg, err := Default()
	if err != nil {
		return cfg, err
	}

	if path == "" {
		path = DefaultPath()
		if path == "" {
			return cfg, nil
		}
		if _, statErr := os.Stat(path); statErr != nil {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := Merge(&cfg, data); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Merge applies the keys present in data on top of cfg and validates the result.
func Merge(cfg *Config, data []byte) error {
	var o overlay
	if err := yaml.Unmarshal(data, &o); err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	setString(&cfg.App.Name, o.App.Name)
	setString(&cfg.Server.Addr, o.Server.Addr)
	setString(&cfg.Server.MoviesPath, o.Server.MoviesPath)
	setString(&cfg.Server.RatingsPath, o.Server.RatingsPath)
	setInt(&cfg.Server.Limit, o.Server.Limit)
	setInt(&cfg.Server.SimilarK, o.Server.SimilarK)
	setString(&cfg.Client.BaseURL, o.Client.BaseURL)
	if o.Client.DiscardStale != nil {
		cfg.Client.DiscardStale = *o.Client.DiscardStale
	}
	if o.Client.Timeout != nil {
		cfg.Client.Timeout = *o.Client.Timeout
	}
	if o.UI.NoColor != nil {
		cfg.UI.NoColor = *o.UI.NoColor
	}
	setInt(&cfg.UI.MaxVisible, o.UI.MaxVisible)
	setString(&cfg.UI.Placeholder, o.UI.Placeholder)

	return cfg.Validate()
}

// Validate rejects values no command can run with.
func (c Config) Validate() error {
	if c.Server.Limit <= 0 {
		return fmt.Errorf("server.limit must be positive, got %d", c.Server.Limit)
	}
	if c.Server.SimilarK <= 0 {
		return fmt.Errorf("server.similarK must be positive, got %d", c.Server.SimilarK)
	}
	if c.UI.MaxVisible <= 0 {
		return fmt.Errorf("ui.maxVisible must be positive, got %d", c.UI.MaxVisible)
	}
	if c.Client.Timeout < 0 {
		return fmt.Errorf("client.timeout must be non-negative, got %s", c.Client.Timeout)
	}
	return nil
}

// DefaultPath is <user config dir>/moviesearch/config.yaml, or "" when the
// config dir cannot be determined.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "moviesearch", "config.yaml")
}

// Marshal renders cfg as YAML.
func Marshal(cfg Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}
