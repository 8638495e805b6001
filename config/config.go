// Package config loads iconview-mcp settings from ICONVIEW_* environment
// variables and lets command-line flags override them.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every runtime setting.
type Config struct {
	Root              string        `env:"ICONVIEW_ROOT"`
	HTTPAddr          string        `env:"ICONVIEW_HTTP_ADDR"`
	MCP               bool          `env:"ICONVIEW_MCP" envDefault:"true"`
	ExportDir         string        `env:"ICONVIEW_EXPORT_DIR"`
	Excludes          []string      `env:"ICONVIEW_EXCLUDE" envSeparator:","`
	MaxFileSizeBytes  int64         `env:"ICONVIEW_MAX_FILE_SIZE" envDefault:"4194304"`
	MaxResults        int           `env:"ICONVIEW_MAX_RESULTS" envDefault:"50"`
	ExportConcurrency int           `env:"ICONVIEW_EXPORT_CONCURRENCY" envDefault:"16"`
	SyncInterval      time.Duration `env:"ICONVIEW_SYNC_INTERVAL" envDefault:"60s"`
	Watch             bool          `env:"ICONVIEW_WATCH" envDefault:"true"`
	LogLevel          string        `env:"ICONVIEW_LOG_LEVEL" envDefault:"info"`
	LogFile           string        `env:"ICONVIEW_LOG_FILE"`
	OTelEndpoint      string        `env:"ICONVIEW_OTEL_ENDPOINT"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// patternList is a repeatable flag appending to a string slice.
type patternList struct {
	values *[]string
}

func (p patternList) String() string {
	if p.values == nil {
		return ""
	}
	return strings.Join(*p.values, ", ")
}

func (p patternList) Set(value string) error {
	*p.values = append(*p.values, value)
	return nil
}

// RegisterFlags binds the server flags to cfg. Values already loaded from
// the environment become the flag defaults, so flags win over variables.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Root, "root", c.Root, "Icon root directory (default: current working directory)")
	fs.StringVar(&c.HTTPAddr, "http", c.HTTPAddr, "Address of the local viewer, e.g. 127.0.0.1:8765 (default: disabled)")
	fs.BoolVar(&c.MCP, "mcp", c.MCP, "Serve MCP tools on stdio")
	fs.StringVar(&c.ExportDir, "export-dir", c.ExportDir, "Directory exports are saved to (default: root directory)")
	fs.Var(patternList{values: &c.Excludes}, "exclude", "Extra ignore pattern (repeatable)")
	fs.Int64Var(&c.MaxFileSizeBytes, "max-file-size", c.MaxFileSizeBytes, "Maximum icon file size in bytes")
	fs.IntVar(&c.MaxResults, "max-results", c.MaxResults, "Default max search results")
	fs.IntVar(&c.ExportConcurrency, "export-concurrency", c.ExportConcurrency, "Parallel fetch and encode tasks per export")
	fs.DurationVar(&c.SyncInterval, "sync-interval", c.SyncInterval, "How often the catalog is checked against disk (0 disables)")
	fs.BoolVar(&c.Watch, "watch", c.Watch, "Re-import when icons change on disk")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level: debug|info|warn|error")
	fs.StringVar(&c.LogFile, "log-file", c.LogFile, "Log file path (default: iconview-mcp.log in the root directory)")
}

// Resolve fills path defaults relative to the working directory and
// validates the combination of settings.
func (c *Config) Resolve() error {
	if c.Root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		c.Root = wd
	}
	root, err := filepath.Abs(c.Root)
	if err != nil {
		return fmt.Errorf("resolving root %s: %w", c.Root, err)
	}
	c.Root = root

	if c.ExportDir == "" {
		c.ExportDir = c.Root
	} else if c.ExportDir, err = filepath.Abs(c.ExportDir); err != nil {
		return fmt.Errorf("resolving export dir: %w", err)
	}

	if c.MaxFileSizeBytes <= 0 {
		return errors.New("max file size must be positive")
	}
	if c.MaxResults <= 0 {
		return errors.New("max results must be positive")
	}
	if c.ExportConcurrency <= 0 {
		return errors.New("export concurrency must be positive")
	}
	if c.SyncInterval < 0 {
		return errors.New("sync interval must not be negative")
	}
	return nil
}

// DefaultLogFile is where logs go when no log file is configured.
func (c *Config) DefaultLogFile() string {
	if c.LogFile != "" {
		return c.LogFile
	}
	return filepath.Join(c.Root, "iconview-mcp.log")
}
