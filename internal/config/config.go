// Package config loads and validates the site configuration (_config.yml).
//
// The configuration is read once at process start, never rewritten mid-build,
// and passed explicitly to each pipeline stage.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	builderrors "github.com/kashifsoofi/kashifsoofi.github.io/internal/errors"
)

// Config is the typed site configuration. Unrecognized keys are preserved in
// Extra so templates can reference site-level custom values.
type Config struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	BaseURL     string `yaml:"base_url"`

	Source      string `yaml:"source"`
	Destination string `yaml:"destination"`
	LayoutsDir  string `yaml:"layouts_dir"`

	Permalink    string `yaml:"permalink"`
	Paginate     *int   `yaml:"paginate"`
	PaginatePath string `yaml:"paginate_path"`

	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`

	ShowDrafts bool `yaml:"show_drafts"`
	Future     bool `yaml:"future"`

	Serve     ServeConfig `yaml:"serve"`
	HistoryDB string      `yaml:"history_db"`

	Extra map[string]any `yaml:",inline"`
}

// ServeConfig configures the local preview server.
type ServeConfig struct {
	Port            int    `yaml:"port"`
	LiveReload      bool   `yaml:"livereload"`
	Metrics         bool   `yaml:"metrics"`
	RebuildInterval string `yaml:"rebuild_interval"` // Go duration string; empty disables periodic rebuilds
}

// Default returns a configuration with Jekyll-compatible defaults applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads, normalizes, and validates the configuration file at path. A
// missing file yields the defaults (a bare source tree is a valid site).
func Load(path string) (*Config, error) {
	// Env files feed the BLOGBUILDER_* overrides read where they are consumed.
	_ = loadEnvFiles()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, builderrors.WrapConfigError(err, fmt.Sprintf("read configuration %s", path))
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, builderrors.WrapConfigError(err, fmt.Sprintf("parse configuration %s", path))
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Source == "" {
		c.Source = "."
	}
	if c.Destination == "" {
		c.Destination = "_site"
	}
	if c.LayoutsDir == "" {
		c.LayoutsDir = "_layouts"
	}
	if c.Permalink == "" {
		c.Permalink = "pretty"
	}
	if c.PaginatePath == "" {
		c.PaginatePath = "/page:num/"
	}
	if c.Serve.Port == 0 {
		c.Serve.Port = 4000
	}
	if c.Extra == nil {
		c.Extra = map[string]any{}
	}
	c.BaseURL = strings.TrimSuffix(c.BaseURL, "/")
}

// Validate checks structural configuration invariants. Violations are fatal
// and abort the build before any rendering.
func (c *Config) Validate() error {
	if c.Paginate != nil && *c.Paginate <= 0 {
		return builderrors.NewConfigError(fmt.Sprintf("paginate must be a positive integer, got %d", *c.Paginate))
	}
	if c.PaginatePath != "" && !strings.Contains(c.PaginatePath, ":num") {
		return builderrors.NewConfigError(fmt.Sprintf("paginate_path %q must contain the :num token", c.PaginatePath))
	}
	if c.Serve.RebuildInterval != "" {
		if _, err := parseDuration(c.Serve.RebuildInterval); err != nil {
			return builderrors.NewConfigError(fmt.Sprintf("serve.rebuild_interval %q is not a valid duration", c.Serve.RebuildInterval))
		}
	}
	return nil
}

// RebuildEvery returns the periodic rebuild interval and whether periodic
// rebuilds are enabled. Validate has already checked the duration parses.
func (s ServeConfig) RebuildEvery() (time.Duration, bool) {
	if s.RebuildInterval == "" {
		return 0, false
	}
	d, err := parseDuration(s.RebuildInterval)
	if err != nil {
		return 0, false
	}
	return d, true
}

// PageSize returns the configured pagination size and whether pagination is
// enabled at all.
func (c *Config) PageSize() (int, bool) {
	if c.Paginate == nil {
		return 0, false
	}
	return *c.Paginate, true
}
