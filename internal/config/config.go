package config

import (
	"embed"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed app.yaml
var appYAML embed.FS

// Config holds the application configuration. Defaults live in the embedded
// app.yaml; a handful of values can be overridden from the environment.
type Config struct {
	Geocoder GeocoderConfig `yaml:"geocoder"`
	Resolver ResolverConfig `yaml:"resolver"`
	Export   ExportConfig   `yaml:"export"`
}

// GeocoderConfig defines the Nominatim client behavior.
type GeocoderConfig struct {
	BaseURL         string `yaml:"base_url"`
	CountryHint     string `yaml:"country_hint"`  // appended to each segment query
	CountryCodes    string `yaml:"country_codes"` // countrycodes= filter
	UserAgent       string `yaml:"user_agent"`
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
	MinIntervalMS   int    `yaml:"min_interval_ms"`
	CacheMaxEntries int    `yaml:"cache_max_entries"`
}

// Timeout returns the per-request timeout.
func (g GeocoderConfig) Timeout() time.Duration {
	if g.TimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(g.TimeoutSeconds) * time.Second
}

// MinInterval returns the minimum delay between consecutive lookups.
func (g GeocoderConfig) MinInterval() time.Duration {
	if g.MinIntervalMS <= 0 {
		return time.Second
	}
	return time.Duration(g.MinIntervalMS) * time.Millisecond
}

type ResolverConfig struct {
	// FallbackTown is returned whenever an address cannot be resolved. The
	// export row's town default is the same constant.
	FallbackTown string `yaml:"fallback_town"`
}

// ExportConfig carries the fixed codes of the 16-column supplier row.
type ExportConfig struct {
	CountryCode  string `yaml:"country_code"`
	OrgUnit      string `yaml:"org_unit"`
	TrailingCode string `yaml:"trailing_code"`
	SheetName    string `yaml:"sheet_name"`
}

// Load parses the embedded defaults and applies environment overrides.
func Load() (*Config, error) {
	raw, err := appYAML.ReadFile("app.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse app.yaml: %w", err)
	}

	if v := os.Getenv("GEOCODER_BASE_URL"); v != "" {
		cfg.Geocoder.BaseURL = v
	}
	if v := os.Getenv("GEOCODER_USER_AGENT"); v != "" {
		cfg.Geocoder.UserAgent = v
	}
	if v := os.Getenv("FALLBACK_TOWN"); v != "" {
		cfg.Resolver.FallbackTown = v
	}
	if v := os.Getenv("GEOCODER_MIN_INTERVAL_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			cfg.Geocoder.MinIntervalMS = ms
		}
	}

	if cfg.Resolver.FallbackTown == "" {
		cfg.Resolver.FallbackTown = "UNKNOWN"
	}
	if cfg.Export.SheetName == "" {
		cfg.Export.SheetName = "Suppliers"
	}

	return &cfg, nil
}
