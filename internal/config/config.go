// Package config loads zimcatalog settings from defaults, a YAML file, the
// environment and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/takeshy/zimcatalog/internal/catalog"
	"github.com/takeshy/zimcatalog/internal/logging"
	"github.com/takeshy/zimcatalog/internal/source"
	"github.com/takeshy/zimcatalog/internal/store"
)

const (
	// EnvPrefix prefixes every environment override, e.g. ZIMCATALOG_PARALLELISM.
	EnvPrefix = "ZIMCATALOG"
	// FileName is the config file name without extension.
	FileName = "zimcatalog"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	URLs        []string      `mapstructure:"urls"`
	Format      string        `mapstructure:"format"`
	LogLevel    string        `mapstructure:"log_level"`
	LogFormat   string        `mapstructure:"log_format"`
	Verbose     bool          `mapstructure:"verbose"`
	SyncClient  string        `mapstructure:"sync_client"`
	NoSync      bool          `mapstructure:"no_sync"`
	Parallelism int           `mapstructure:"parallelism"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Retries     int           `mapstructure:"retries"`
	Serve       ServeConfig   `mapstructure:"serve"`

	capsOnce sync.Once
	caps     catalog.Capabilities
	lookPath func(string) (string, error)
}

type ServeConfig struct {
	Transport string `mapstructure:"transport"`
	Port      int    `mapstructure:"port"`
	APIKey    string `mapstructure:"api_key"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		URLs:        []string{source.DefaultURL},
		Format:      string(store.FormatJSONL),
		LogLevel:    "info",
		LogFormat:   logging.FormatJSON,
		SyncClient:  catalog.DefaultSyncClient,
		Parallelism: source.DefaultParallelism,
		Timeout:     source.DefaultTimeout,
		Retries:     source.DefaultRetries,
		Serve: ServeConfig{
			Transport: "stdio",
			Port:      8080,
		},
	}
}

// flagKeys maps config keys to the flag names that override them.
var flagKeys = map[string]string{
	"urls":            "url",
	"format":          "format",
	"log_level":       "log-level",
	"log_format":      "log-format",
	"verbose":         "verbose",
	"sync_client":     "sync-client",
	"no_sync":         "no-sync",
	"parallelism":     "parallelism",
	"timeout":         "timeout",
	"retries":         "retries",
	"serve.transport": "transport",
	"serve.port":      "port",
	"serve.api_key":   "serve-api-key",
}

// Load reads settings. cfgFile overrides the config search path; flags may be
// nil, and only flags present in the set are bound.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, FileName))
		}
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if flags != nil {
		for key, name := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("urls", d.URLs)
	v.SetDefault("format", d.Format)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("verbose", d.Verbose)
	v.SetDefault("sync_client", d.SyncClient)
	v.SetDefault("no_sync", d.NoSync)
	v.SetDefault("parallelism", d.Parallelism)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("retries", d.Retries)
	v.SetDefault("serve.transport", d.Serve.Transport)
	v.SetDefault("serve.port", d.Serve.Port)
	v.SetDefault("serve.api_key", d.Serve.APIKey)
}

// Validate reports the first problem found in c.
func (c *Config) Validate() error {
	if len(c.URLs) == 0 {
		return fmt.Errorf("%w: at least one url is required", ErrInvalidConfig)
	}
	for _, raw := range c.URLs {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: url %q must be an absolute http(s) URL", ErrInvalidConfig, raw)
		}
	}
	if _, err := store.ParseFormat(c.Format); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	switch c.LogFormat {
	case logging.FormatJSON, logging.FormatConsole:
	default:
		return fmt.Errorf("%w: log format %q", ErrInvalidConfig, c.LogFormat)
	}
	if c.Parallelism < 1 {
		return fmt.Errorf("%w: parallelism must be at least 1", ErrInvalidConfig)
	}
	if c.Retries < 0 {
		return fmt.Errorf("%w: retries must not be negative", ErrInvalidConfig)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidConfig)
	}
	switch c.Serve.Transport {
	case "stdio", "sse", "http":
	default:
		return fmt.Errorf("%w: transport %q (use stdio, sse or http)", ErrInvalidConfig, c.Serve.Transport)
	}
	if c.Serve.Port < 1 || c.Serve.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Serve.Port)
	}
	return nil
}

// Capabilities returns the host capability snapshot for the configured sync
// client. Detection runs on the first call only. NoSync reports sync as
// unsupported regardless of the host.
func (c *Config) Capabilities() catalog.Capabilities {
	c.capsOnce.Do(func() {
		switch {
		case c.NoSync:
			c.caps = catalog.DetectCapabilitiesFrom(runtime.GOOS, nil, "")
		case c.lookPath == nil && (c.SyncClient == "" || c.SyncClient == catalog.DefaultSyncClient):
			c.caps = catalog.DetectCapabilities()
		default:
			lookPath := c.lookPath
			if lookPath == nil {
				lookPath = exec.LookPath
			}
			c.caps = catalog.DetectCapabilitiesFrom(runtime.GOOS, lookPath, c.SyncClient)
		}
	})
	return c.caps
}
