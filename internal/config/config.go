// Package config holds the run configuration. A Config is built once per
// invocation from defaults, an optional config file, environment variables
// and CLI flags, then passed down unchanged.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultDelay        = 2 * time.Second
	DefaultTimeout      = 30 * time.Second
	DefaultProbeTimeout = 5 * time.Second
	DefaultPages        = 3
	DefaultPerPage      = 10
	DefaultOutputDir    = "output"
	DefaultPrefix       = "prospects"
	DefaultFingerprint  = "chrome"
)

// Config is the immutable configuration for one run.
type Config struct {
	// Input
	URLs       []string `mapstructure:"urls"`
	DomainFile string   `mapstructure:"domain_file"`

	// Discovery
	Industry      string   `mapstructure:"industry"`
	Keywords      []string `mapstructure:"keywords"`
	CustomQueries []string `mapstructure:"custom_queries"`
	Pages         int      `mapstructure:"pages"`
	PerPage       int      `mapstructure:"per_page"`
	MaxResults    int      `mapstructure:"max_results"`

	// Fetch behavior
	Delay         time.Duration `mapstructure:"delay"`
	Timeout       time.Duration `mapstructure:"timeout"`
	ProbeTimeout  time.Duration `mapstructure:"probe_timeout"`
	ProxyFile     string        `mapstructure:"proxy_file"`
	Fingerprint   string        `mapstructure:"fingerprint"`
	RespectRobots bool          `mapstructure:"respect_robots"`
	UseSitemaps   bool          `mapstructure:"use_sitemaps"`

	// Pipeline stages
	SkipValidation bool `mapstructure:"skip_validation"`
	SkipExtraction bool `mapstructure:"skip_extraction"`
	PlatformOnly   bool `mapstructure:"platform_only"`

	// Output
	OutputDir string `mapstructure:"output_dir"`
	Prefix    string `mapstructure:"prefix"`

	// Storage (optional)
	StorageDriver string `mapstructure:"storage_driver"`
	StorageDSN    string `mapstructure:"storage_dsn"`

	// Observability
	MetricsPort int  `mapstructure:"metrics_port"`
	Verbose     bool `mapstructure:"verbose"`
}

// Load builds a Config from defaults, an optional config file and HUNTER_*
// environment variables. An empty path means no config file is required; a
// named file that is missing is an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("delay", DefaultDelay)
	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("probe_timeout", DefaultProbeTimeout)
	v.SetDefault("pages", DefaultPages)
	v.SetDefault("per_page", DefaultPerPage)
	v.SetDefault("output_dir", DefaultOutputDir)
	v.SetDefault("prefix", DefaultPrefix)
	v.SetDefault("fingerprint", DefaultFingerprint)

	v.SetEnvPrefix("HUNTER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName(".client-hunter")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Validate rejects configurations that cannot produce a usable run.
func (c *Config) Validate() error {
	if c.Delay < 0 {
		return errors.New("delay must not be negative")
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	if c.Pages <= 0 {
		return errors.New("pages must be positive")
	}
	switch c.StorageDriver {
	case "", "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}
	if c.StorageDriver != "" && c.StorageDSN == "" {
		return errors.New("storage_dsn is required when storage_driver is set")
	}
	return nil
}
