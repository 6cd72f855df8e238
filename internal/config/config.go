package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	OutputDir     string `yaml:"output_dir"`
	Workers       int    `yaml:"workers"`
	Strict        bool   `yaml:"strict"`
	MissingMarker bool   `yaml:"missing_marker"`

	// Cache keeps finished chapters so a rerun only fetches what failed.
	// An empty CacheDir means the user cache directory.
	Cache    bool   `yaml:"cache"`
	CacheDir string `yaml:"cache_dir"`

	Retries      int           `yaml:"retries"`
	RetryBackoff time.Duration `yaml:"retry_backoff"`
	Timeout      time.Duration `yaml:"timeout"`
	// RateLimit is requests per second across all workers; 0 is unlimited.
	RateLimit        float64 `yaml:"rate_limit"`
	UserAgent        string  `yaml:"user_agent"`
	CloudflareBypass bool    `yaml:"cloudflare_bypass"`

	Debug    bool   `yaml:"debug"`
	LogLevel string `yaml:"log_level"`
}

// Options carries command line overrides. Zero values mean "not given",
// except Retries where -1 does.
type Options struct {
	IgnoreConfig bool
	Debug        bool

	OutputDir       string
	Workers         int
	FailFast        bool
	BestEffort      bool
	NoMissingMarker bool
	NoCache         bool
	Retries         int
	Timeout         time.Duration
	RateLimit       float64
	UserAgent       string
	Cloudflare      bool
}

const (
	defaultWorkers = 6
	defaultRetries = 3
	defaultBackoff = 500 * time.Millisecond
	defaultTimeout = 60 * time.Second
)

func DefaultConfig() *Config {
	return &Config{
		OutputDir:     ".",
		Workers:       defaultWorkers,
		Strict:        false,
		MissingMarker: true,
		Cache:         true,
		Retries:       defaultRetries,
		RetryBackoff:  defaultBackoff,
		Timeout:       defaultTimeout,
		LogLevel:      "info",
	}
}

func SaveYAML(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// loadYAML starts from the defaults so keys missing from the file keep
// their default value rather than the zero value.
func loadYAML(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	c := DefaultConfig()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, err
	}

	return c, nil
}

// LoadMerged applies defaults, then the active profile, then opts. The
// second result says where the profile came from.
func LoadMerged(opts Options) (*Config, string, error) {
	return DefaultStore().LoadMerged(opts)
}

func (s Store) LoadMerged(opts Options) (*Config, string, error) {
	if opts.IgnoreConfig {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(ignored config)", nil
	}

	activePath, err := s.ActivePath()
	if err == ErrNoConfig || activePath == "" {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(default config in memory)\nRun `noveld config init` to create an actual config", nil
	}
	if err != nil {
		return nil, "", err
	}

	cfg, err := loadYAML(activePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config %s: %w", activePath, err)
	}

	mergeConfig(cfg, opts)
	normalizeDefaults(cfg)

	return cfg, activePath, nil
}

func mergeConfig(c *Config, o Options) {
	if o.OutputDir != "" {
		c.OutputDir = o.OutputDir
	}
	if o.Workers > 0 {
		c.Workers = o.Workers
	}
	if o.FailFast {
		c.Strict = true
	}
	if o.BestEffort {
		c.Strict = false
	}
	if o.NoMissingMarker {
		c.MissingMarker = false
	}
	if o.NoCache {
		c.Cache = false
	}
	if o.Retries >= 0 {
		c.Retries = o.Retries
	}
	if o.Timeout > 0 {
		c.Timeout = o.Timeout
	}
	if o.RateLimit > 0 {
		c.RateLimit = o.RateLimit
	}
	if o.UserAgent != "" {
		c.UserAgent = o.UserAgent
	}
	if o.Cloudflare {
		c.CloudflareBypass = true
	}
	if o.Debug {
		c.Debug = true
	}
}

func normalizeDefaults(c *Config) {
	if c.OutputDir == "" {
		c.OutputDir = "."
	}
	if c.Workers <= 0 {
		c.Workers = defaultWorkers
	}
	if c.Retries < 0 {
		c.Retries = defaultRetries
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = defaultBackoff
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.RateLimit < 0 {
		c.RateLimit = 0
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (c *Config) Print(w io.Writer) {
	fmt.Fprintf(w, " -output_dir: %s\n", c.OutputDir)
	fmt.Fprintf(w, " -workers: %d\n", c.Workers)
	fmt.Fprintf(w, " -strict: %t\n", c.Strict)
	fmt.Fprintf(w, " -missing_marker: %t\n", c.MissingMarker)
	fmt.Fprintf(w, " -cache: %t\n", c.Cache)
	if c.CacheDir != "" {
		fmt.Fprintf(w, " -cache_dir: %s\n", c.CacheDir)
	}
	fmt.Fprintf(w, " -retries: %d (backoff %s)\n", c.Retries, c.RetryBackoff)
	fmt.Fprintf(w, " -timeout: %s\n", c.Timeout)
	if c.RateLimit > 0 {
		fmt.Fprintf(w, " -rate_limit: %g/s\n", c.RateLimit)
	}
	if c.UserAgent != "" {
		fmt.Fprintf(w, " -user_agent: %s\n", c.UserAgent)
	}
	if c.CloudflareBypass {
		fmt.Fprintf(w, " -cloudflare_bypass: %t\n", c.CloudflareBypass)
	}
	if c.Debug {
		fmt.Fprintf(w, " -debug: %t\n", c.Debug)
	}
	fmt.Fprintf(w, " -log_level: %s\n", c.LogLevel)
}
