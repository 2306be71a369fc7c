package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/autofilter/pkg/cache"
	"github.com/matzehuels/autofilter/pkg/config"
	"github.com/matzehuels/autofilter/pkg/manifest"
	"github.com/matzehuels/autofilter/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "autofilter"

	// redisPrefix namespaces server cache keys in a shared redis.
	redisPrefix = "autofilter:"
)

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

	// configPath is the --config flag; empty means defaults plus env.
	configPath string
	config     config.Options
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// loadConfig reads --config, or only the environment when it is unset.
func (c *CLI) loadConfig() error {
	var (
		cfg config.Options
		err error
	)
	if c.configPath == "" {
		cfg, err = config.FromMap(nil)
	} else {
		cfg, err = config.Load(c.configPath)
	}
	if err != nil {
		return err
	}
	c.config = cfg
	c.Logger.Debug("configuration loaded", "path", c.configPath, "url_search_param", cfg.URLSearchParam)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cache, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, nil, c.Logger), nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// newServerCache returns a redis cache when url is set, the file cache
// otherwise.
func (c *CLI) newServerCache(ctx context.Context, url string, noCache bool) (cache.Cache, cache.Keyer, error) {
	if url == "" {
		fc, err := newCache(noCache)
		return fc, nil, err
	}
	rc, err := cache.NewRedisCache(ctx, url, redisPrefix)
	if err != nil {
		return nil, nil, err
	}
	c.Logger.Info("using redis cache", "url", url)
	return rc, cache.NewScopedKeyer(nil, "srv:"), nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/autofilter/).
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

// =============================================================================
// Options Helpers
// =============================================================================

// loadManifest reads a manifest and logs its size.
func (c *CLI) loadManifest(path string) (*manifest.Manifest, error) {
	m, err := manifest.Load(path)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("manifest loaded", "path", path, "items", len(m.Items))
	return m, nil
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// outputPath derives "<input base>.<format>" unless output is set. With
// several formats an explicit output is used as the base name.
func outputPath(input, output, format string, multi bool) string {
	if output != "" && !multi {
		return output
	}
	base := output
	if base == "" {
		base = strings.TrimSuffix(input, filepath.Ext(input))
	} else {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return base + "." + format
}
