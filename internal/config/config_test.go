package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const validYAML = `
amadeus:
  api_key: key
  api_secret: secret
fetch:
  origins: [JFK, EWR]
  destinations: [TLV]
  cities_file: iata_codes.json
  start_date: "2025-01-03"
  end_date: "2025-01-04"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "faretrack.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Fetch.PriceCeiling != 400 {
		t.Errorf("price ceiling = %v, want default 400", cfg.Fetch.PriceCeiling)
	}
	if cfg.Fetch.Adults != 1 {
		t.Errorf("adults = %d, want default 1", cfg.Fetch.Adults)
	}
	if cfg.Currency.Source != "EUR" || cfg.Currency.Target != "ILS" || cfg.Currency.Rate != 4.14 {
		t.Errorf("currency defaults = %+v, want EUR->ILS at 4.14", cfg.Currency)
	}
	if cfg.Cache.Enabled {
		t.Error("cache must default to disabled")
	}
}

func TestLoadEnvOverridesCredentials(t *testing.T) {
	t.Setenv("AMADEUS_API_KEY", "env-key")
	t.Setenv("AMADEUS_API_SECRET", "env-secret")

	cfg, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Amadeus.APIKey != "env-key" || cfg.Amadeus.APISecret != "env-secret" {
		t.Errorf("credentials = %s/%s, want env values", cfg.Amadeus.APIKey, cfg.Amadeus.APISecret)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load(writeConfig(t, validYAML))
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"missing credentials", func(c *Config) { c.Amadeus.APIKey = "" }, ErrMissingCredentials},
		{"no destinations", func(c *Config) { c.Fetch.Destinations = nil }, ErrMissingRoute},
		{"no origins at all", func(c *Config) { c.Fetch.Origins = nil; c.Fetch.OriginsFile = "" }, ErrMissingRoute},
		{"no cities file", func(c *Config) { c.Fetch.CitiesFile = "" }, ErrMissingCitiesFile},
		{"missing dates", func(c *Config) { c.Fetch.StartDate = "" }, ErrMissingDates},
		{"reversed dates", func(c *Config) { c.Fetch.StartDate = "2025-02-01" }, ErrDatesReversed},
		{"zero adults", func(c *Config) { c.Fetch.Adults = 0 }, ErrInvalidAdults},
		{"zero ceiling", func(c *Config) { c.Fetch.PriceCeiling = 0 }, ErrInvalidCeiling},
		{"no raw path", func(c *Config) { c.Output.RawPath = "" }, ErrMissingRawPath},
		{"no report path", func(c *Config) { c.Output.ReportPath = "" }, ErrMissingReportPath},
		{"zero rate", func(c *Config) { c.Currency.Rate = 0 }, ErrInvalidRate},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tc.want) {
				t.Errorf("Validate() = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestDateRange(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	start, end := cfg.DateRange()
	if start.Format("2006-01-02") != "2025-01-03" || end.Format("2006-01-02") != "2025-01-04" {
		t.Errorf("DateRange = %v..%v, want 2025-01-03..2025-01-04", start, end)
	}
}

func TestCacheTTL(t *testing.T) {
	c := CacheConfig{TTL: "30m"}
	if got := c.TTLDuration(); got != 30*time.Minute {
		t.Errorf("TTLDuration = %v, want 30m", got)
	}
	if got := (CacheConfig{}).TTLDuration(); got != 12*time.Hour {
		t.Errorf("default TTLDuration = %v, want 12h", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load of a missing config file must fail")
	}
}
