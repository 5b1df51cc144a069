// Package config loads the batch configuration from a YAML file with
// environment-variable overrides for credentials and the Redis endpoint.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const dateLayout = "2006-01-02"

// Configuration validation errors.
var (
	ErrMissingCredentials = errors.New("amadeus.api_key and amadeus.api_secret are required")
	ErrMissingRoute       = errors.New("at least one origin and one destination are required")
	ErrMissingDates       = errors.New("fetch.start_date and fetch.end_date are required")
	ErrDatesReversed      = errors.New("fetch.start_date must not be after fetch.end_date")
	ErrInvalidAdults      = errors.New("fetch.adults must be at least 1")
	ErrInvalidCeiling     = errors.New("fetch.price_ceiling must be positive")
	ErrMissingRawPath     = errors.New("output.raw_path is required")
	ErrMissingReportPath  = errors.New("output.report_path is required")
	ErrMissingCitiesFile  = errors.New("fetch.cities_file is required")
	ErrInvalidRate        = errors.New("currency.rate must be positive")
)

type Config struct {
	Amadeus   AmadeusConfig   `yaml:"amadeus"`
	Fetch     FetchConfig     `yaml:"fetch"`
	Output    OutputConfig    `yaml:"output"`
	Cache     CacheConfig     `yaml:"cache"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Currency  CurrencyConfig  `yaml:"currency"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type AmadeusConfig struct {
	APIKey    string `yaml:"api_key"`
	APISecret string `yaml:"api_secret"`
	BaseURL   string `yaml:"base_url"`
}

type FetchConfig struct {
	Origins      []string `yaml:"origins"`
	Destinations []string `yaml:"destinations"`
	// OriginsFile names a JSON code->city side file whose keys stand in for
	// Origins when that list is empty.
	OriginsFile  string  `yaml:"origins_file"`
	CitiesFile   string  `yaml:"cities_file"`
	StartDate    string  `yaml:"start_date"`
	EndDate      string  `yaml:"end_date"`
	Adults       int     `yaml:"adults"`
	PriceCeiling float64 `yaml:"price_ceiling"`
}

type OutputConfig struct {
	RawPath    string `yaml:"raw_path"`
	ReportPath string `yaml:"report_path"`
}

type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    string `yaml:"port"`
	TTL     string `yaml:"ttl"`
}

// TTLDuration parses the cache TTL, defaulting to 12h when unset or invalid.
func (c CacheConfig) TTLDuration() time.Duration {
	if d, err := time.ParseDuration(c.TTL); err == nil && d > 0 {
		return d
	}
	return 12 * time.Hour
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

type CurrencyConfig struct {
	Source string  `yaml:"source"`
	Target string  `yaml:"target"`
	Rate   float64 `yaml:"rate"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Defaults returns the configuration the original batch runs used: price
// ceiling 400, EUR converted to ILS at 4.14, one adult.
func Defaults() *Config {
	return &Config{
		Fetch: FetchConfig{
			Adults:       1,
			PriceCeiling: 400,
		},
		Output: OutputConfig{
			RawPath:    "raw_offers.csv",
			ReportPath: "offers.csv",
		},
		Cache: CacheConfig{
			Host: "localhost",
			Port: "6379",
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 2,
			Burst:             1,
		},
		Currency: CurrencyConfig{
			Source: "EUR",
			Target: "ILS",
			Rate:   4.14,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads the YAML file at path on top of the defaults, applies
// environment overrides and validates the result. An empty path loads
// defaults and environment only.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv lets credentials and the Redis endpoint come from the environment
// so they stay out of the config file.
func applyEnv(cfg *Config) {
	if v := os.Getenv("AMADEUS_API_KEY"); v != "" {
		cfg.Amadeus.APIKey = v
	}
	if v := os.Getenv("AMADEUS_API_SECRET"); v != "" {
		cfg.Amadeus.APISecret = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		cfg.Cache.Host = v
	}
	if v := os.Getenv("REDIS_PORT"); v != "" {
		cfg.Cache.Port = v
	}
}

func (c *Config) Validate() error {
	if c.Amadeus.APIKey == "" || c.Amadeus.APISecret == "" {
		return ErrMissingCredentials
	}

	if (len(c.Fetch.Origins) == 0 && c.Fetch.OriginsFile == "") || len(c.Fetch.Destinations) == 0 {
		return ErrMissingRoute
	}
	if c.Fetch.CitiesFile == "" {
		return ErrMissingCitiesFile
	}
	if c.Fetch.StartDate == "" || c.Fetch.EndDate == "" {
		return ErrMissingDates
	}

	start, err := time.Parse(dateLayout, c.Fetch.StartDate)
	if err != nil {
		return fmt.Errorf("parse fetch.start_date: %w", err)
	}
	end, err := time.Parse(dateLayout, c.Fetch.EndDate)
	if err != nil {
		return fmt.Errorf("parse fetch.end_date: %w", err)
	}
	if start.After(end) {
		return ErrDatesReversed
	}

	if c.Fetch.Adults < 1 {
		return ErrInvalidAdults
	}
	if c.Fetch.PriceCeiling <= 0 {
		return ErrInvalidCeiling
	}
	if c.Output.RawPath == "" {
		return ErrMissingRawPath
	}
	if c.Output.ReportPath == "" {
		return ErrMissingReportPath
	}
	if c.Currency.Rate <= 0 {
		return ErrInvalidRate
	}

	return nil
}

// DateRange returns the parsed fetch window. Validate must have passed.
func (c *Config) DateRange() (start, end time.Time) {
	start, _ = time.Parse(dateLayout, c.Fetch.StartDate)
	end, _ = time.Parse(dateLayout, c.Fetch.EndDate)
	return start, end
}
