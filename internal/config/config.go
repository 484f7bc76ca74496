package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/print-layout/internal/layout"
	"github.com/eugenenazirov/print-layout/internal/pricing"
)

const (
	defaultPort           = "8080"
	defaultPadding        = 0.5
	defaultRateLimitRPS   = 25.0
	defaultRateLimitBurst = 50
	defaultMaxCopies      = 5000
	defaultLogLevel       = "info"
)

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > YAML config > Environment variables > Defaults
type Config struct {
	Port                 string
	Page                 layout.PageSize
	Padding              float64
	Schedule             pricing.Schedule
	MaxCopies            int
	LogLevel             string
	ShutdownGracePeriod  time.Duration
	ReadHeaderTimeout    time.Duration
	WriteTimeout         time.Duration
	IdleTimeout          time.Duration
	EnableRequestLogging bool
	RateLimitRPS         float64
	RateLimitBurst       int
}

// yamlConfig represents the YAML configuration file structure. Pointer
// fields distinguish "absent" from an explicit zero.
type yamlConfig struct {
	Port                 string        `yaml:"port"`
	Page                 yamlPage      `yaml:"page"`
	Pricing              yamlPricing   `yaml:"pricing"`
	MaxCopies            *int          `yaml:"max_copies"`
	LogLevel             string        `yaml:"log_level"`
	ShutdownGracePeriod  string        `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    string        `yaml:"read_header_timeout"`
	WriteTimeout         string        `yaml:"write_timeout"`
	IdleTimeout          string        `yaml:"idle_timeout"`
	EnableRequestLogging *bool         `yaml:"enable_request_logging"`
	RateLimit            yamlRateLimit `yaml:"rate_limit"`
}

// yamlPage selects the sheet either by name or by explicit dimensions.
type yamlPage struct {
	Size    string   `yaml:"size"`
	Width   float64  `yaml:"width"`
	Height  float64  `yaml:"height"`
	Padding *float64 `yaml:"padding"`
}

// yamlPricing overrides parts of the default price schedule.
type yamlPricing struct {
	Tiers           []pricing.Tier     `yaml:"tiers"`
	DefaultPrice    *float64           `yaml:"default_price"`
	PaperAddons     map[string]float64 `yaml:"paper_addons"`
	DeliveryCharges map[string]float64 `yaml:"delivery_charges"`
}

// yamlRateLimit represents the rate limit section in YAML.
type yamlRateLimit struct {
	RPS   *float64 `yaml:"rps"`
	Burst *int     `yaml:"burst"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFile     string
	Port           *string
	PageSize       *string
	Padding        *float64
	LogLevel       *string
	RateLimitRPS   *float64
	RateLimitBurst *int
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > YAML config > Environment variables > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	// Environment first so that the YAML file and flags can override it.
	if err := applyEnvConfig(&cfg); err != nil {
		return Config{}, err
	}

	if overrides != nil && overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		if err := applyYAMLConfig(&cfg, yamlCfg); err != nil {
			return Config{}, fmt.Errorf("apply YAML config: %w", err)
		}
	}

	if overrides != nil {
		if err := applyCLIOverrides(&cfg, overrides); err != nil {
			return Config{}, err
		}
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	return Config{
		Port:                 defaultPort,
		Page:                 layout.A4,
		Padding:              defaultPadding,
		Schedule:             pricing.DefaultSchedule(),
		MaxCopies:            defaultMaxCopies,
		LogLevel:             defaultLogLevel,
		ShutdownGracePeriod:  10 * time.Second,
		ReadHeaderTimeout:    5 * time.Second,
		WriteTimeout:         15 * time.Second,
		IdleTimeout:          60 * time.Second,
		EnableRequestLogging: true,
		RateLimitRPS:         defaultRateLimitRPS,
		RateLimitBurst:       defaultRateLimitBurst,
	}
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	return &yamlCfg, nil
}

// applyYAMLConfig applies YAML configuration to the Config struct.
func applyYAMLConfig(cfg *Config, yamlCfg *yamlConfig) error {
	if yamlCfg.Port != "" {
		cfg.Port = yamlCfg.Port
	}

	if yamlCfg.Page.Size != "" {
		size, err := layout.ParsePageSize(yamlCfg.Page.Size)
		if err != nil {
			return fmt.Errorf("page size: %w", err)
		}
		cfg.Page = size
	}
	if yamlCfg.Page.Width != 0 || yamlCfg.Page.Height != 0 {
		cfg.Page = layout.PageSize{Width: yamlCfg.Page.Width, Height: yamlCfg.Page.Height}
	}
	if yamlCfg.Page.Padding != nil {
		cfg.Padding = *yamlCfg.Page.Padding
	}

	if len(yamlCfg.Pricing.Tiers) > 0 {
		cfg.Schedule.Tiers = yamlCfg.Pricing.Tiers
	}
	if yamlCfg.Pricing.DefaultPrice != nil {
		cfg.Schedule.DefaultPrice = *yamlCfg.Pricing.DefaultPrice
	}
	if len(yamlCfg.Pricing.PaperAddons) > 0 {
		cfg.Schedule.PaperAddons = yamlCfg.Pricing.PaperAddons
	}
	if len(yamlCfg.Pricing.DeliveryCharges) > 0 {
		cfg.Schedule.DeliveryCharges = yamlCfg.Pricing.DeliveryCharges
	}

	if yamlCfg.MaxCopies != nil {
		cfg.MaxCopies = *yamlCfg.MaxCopies
	}

	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}

	durations := []struct {
		raw    string
		target *time.Duration
	}{
		{yamlCfg.ShutdownGracePeriod, &cfg.ShutdownGracePeriod},
		{yamlCfg.ReadHeaderTimeout, &cfg.ReadHeaderTimeout},
		{yamlCfg.WriteTimeout, &cfg.WriteTimeout},
		{yamlCfg.IdleTimeout, &cfg.IdleTimeout},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", d.raw, err)
		}
		*d.target = parsed
	}

	if yamlCfg.EnableRequestLogging != nil {
		cfg.EnableRequestLogging = *yamlCfg.EnableRequestLogging
	}

	if yamlCfg.RateLimit.RPS != nil {
		cfg.RateLimitRPS = *yamlCfg.RateLimit.RPS
	}

	if yamlCfg.RateLimit.Burst != nil {
		cfg.RateLimitBurst = *yamlCfg.RateLimit.Burst
	}

	return nil
}

// applyEnvConfig applies environment variable configuration.
func applyEnvConfig(cfg *Config) error {
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		cfg.Port = port
	}

	if rawSize := strings.TrimSpace(os.Getenv("PAGE_SIZE")); rawSize != "" {
		size, err := layout.ParsePageSize(rawSize)
		if err != nil {
			return fmt.Errorf("PAGE_SIZE: %w", err)
		}
		cfg.Page = size
	}

	if padding := strings.TrimSpace(os.Getenv("PAGE_PADDING")); padding != "" {
		value, err := strconv.ParseFloat(padding, 64)
		if err != nil {
			return fmt.Errorf("PAGE_PADDING: invalid number %q", padding)
		}
		cfg.Padding = value
	}

	if maxCopies := strings.TrimSpace(os.Getenv("MAX_COPIES")); maxCopies != "" {
		if value, err := strconv.Atoi(maxCopies); err == nil {
			cfg.MaxCopies = value
		}
	}

	if level := strings.TrimSpace(os.Getenv("LOG_LEVEL")); level != "" {
		cfg.LogLevel = level
	}

	if rps := strings.TrimSpace(os.Getenv("RATE_LIMIT_RPS")); rps != "" {
		if value, err := strconv.ParseFloat(rps, 64); err == nil && value >= 0 {
			cfg.RateLimitRPS = value
		}
	}

	if burst := strings.TrimSpace(os.Getenv("RATE_LIMIT_BURST")); burst != "" {
		if value, err := strconv.Atoi(burst); err == nil && value >= 0 {
			cfg.RateLimitBurst = value
		}
	}

	return nil
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) error {
	if overrides.Port != nil && *overrides.Port != "" {
		cfg.Port = *overrides.Port
	}

	if overrides.PageSize != nil && *overrides.PageSize != "" {
		size, err := layout.ParsePageSize(*overrides.PageSize)
		if err != nil {
			return fmt.Errorf("parse page size: %w", err)
		}
		cfg.Page = size
	}

	if overrides.Padding != nil && *overrides.Padding >= 0 {
		cfg.Padding = *overrides.Padding
	}

	if overrides.LogLevel != nil && *overrides.LogLevel != "" {
		cfg.LogLevel = *overrides.LogLevel
	}

	if overrides.RateLimitRPS != nil && *overrides.RateLimitRPS >= 0 {
		cfg.RateLimitRPS = *overrides.RateLimitRPS
	}

	if overrides.RateLimitBurst != nil && *overrides.RateLimitBurst >= 0 {
		cfg.RateLimitBurst = *overrides.RateLimitBurst
	}

	return nil
}

// validateConfig validates the final configuration.
func validateConfig(cfg Config) error {
	if !cfg.Page.Valid() {
		return fmt.Errorf("page size %vx%v: %w", cfg.Page.Width, cfg.Page.Height, layout.ErrInvalidPage)
	}
	if !cfg.Page.Usable(cfg.Padding) {
		return fmt.Errorf("padding %v: %w", cfg.Padding, layout.ErrInvalidPadding)
	}
	if err := cfg.Schedule.Validate(); err != nil {
		return err
	}
	if cfg.MaxCopies <= 0 {
		return fmt.Errorf("MAX_COPIES must be > 0")
	}
	if _, err := zapcore.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	if cfg.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be >= 0")
	}
	if cfg.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be >= 0")
	}
	return nil
}
