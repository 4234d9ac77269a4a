// Package cli implements the hound command-line interface.
//
// This package provides commands for auditing package existence against an
// artifact repository server, checking server reachability, listing
// repositories and managing the probe-result cache. The CLI is built using
// cobra and supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - check: Audit a CSV of packages against the server
//   - ping: Verify server reachability
//   - repos: List the server's repositories
//   - cache: Manage the probe-result cache
//
// All commands support --verbose (-v) for debug-level logging and --config
// for a non-default config file location.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/hound/pkg/artifactory"
	"github.com/matzehuels/hound/pkg/buildinfo"
	"github.com/matzehuels/hound/pkg/cache"
	"github.com/matzehuels/hound/pkg/httputil"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "hound"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// ConfigPath overrides the default config file location (--config).
	ConfigPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "hound",
		Short:        "Hound audits package existence in artifact repositories",
		Long:         `Hound is a batch auditing tool that verifies whether packages listed in a CSV exist in an artifact repository server, reporting per package where it was found and at which version.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default ~/.config/hound/hound.toml)")

	// Register all subcommands
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.pingCommand())
	root.AddCommand(c.reposCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Client Factory
// =============================================================================

// clientOptions carries the per-command flag overrides applied on top of
// the loaded configuration.
type clientOptions struct {
	server  string
	timeout time.Duration
	refresh bool
	noCache bool
}

// newClient builds the artifact-server client from config and overrides.
// Probe results are cached under a server-scoped prefix so switching
// servers never replays another server's answers.
func (c *CLI) newClient(cfg Config, opts clientOptions) (*artifactory.Client, error) {
	server := cfg.Server.URL
	if opts.server != "" {
		server = opts.server
	}

	timeout := cfg.Check.Timeout.Duration
	if opts.timeout > 0 {
		timeout = opts.timeout
	}

	store, err := c.newCache(cfg, opts.noCache)
	if err != nil {
		c.Logger.Warn("cache unavailable, probing without one", "error", err)
		store = cache.NewNullCache()
	}
	scoped := cache.NewScoped(store, cache.Hash([]byte(server))[:12]+":")

	return artifactory.New(artifactory.Config{
		BaseURL:  server,
		APIKey:   cfg.Server.APIKey,
		Token:    cfg.Server.Token,
		Timeout:  timeout,
		TLS:      httputil.TLSOptions{CACert: cfg.TLS.CACert, Insecure: cfg.TLS.Insecure},
		Cache:    scoped,
		CacheTTL: cfg.Cache.TTL.Duration,
		Refresh:  opts.refresh,
		Logger:   c.Logger,
	})
}

// newCache creates the configured cache backend.
func (c *CLI) newCache(cfg Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache.Backend {
	case "", "file":
		dir := cfg.Cache.Dir
		if dir == "" {
			var err error
			if dir, err = cacheDir(); err != nil {
				return nil, err
			}
		}
		return cache.NewFileCache(dir)
	case "redis":
		return cache.NewRedisCache(cfg.Cache.RedisAddr)
	case "none":
		return cache.NewNullCache(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q (file, redis or none)", cfg.Cache.Backend)
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/hound/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
