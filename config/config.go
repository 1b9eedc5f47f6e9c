// Package config loads directory configuration from a YAML file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	YelpAPIKey       string `yaml:"yelp_api_key"`
	GoogleMapsAPIKey string `yaml:"google_maps_api_key"`
	DBPath           string `yaml:"db_path"`
	SyncTime         string `yaml:"sync_time"`
	Timezone         string `yaml:"timezone"`
	PerSearchLimit   int    `yaml:"per_search_limit"`
	RecommendLimit   int    `yaml:"recommend_limit"`
	FetchTimeoutSec  int    `yaml:"fetch_timeout_secs"`
	LogLevel         string `yaml:"log_level"`
}

// Defaults returns a Config with all default values set. The API keys have
// no defaults: without a Yelp key the directory runs on seed data, and
// without a Maps key coordinate backfill is skipped.
func Defaults() Config {
	return Config{
		DBPath:          "./hidden-gems.db",
		SyncTime:        "06:00",
		Timezone:        "America/New_York",
		PerSearchLimit:  50,
		RecommendLimit:  20,
		FetchTimeoutSec: 15,
		LogLevel:        "info",
	}
}

// Load reads a YAML config file and returns a validated Config.
// Environment variables HIDDEN_GEMS_CONFIG and HIDDEN_GEMS_DB override the
// file path and db path.
func Load(path string) (Config, error) {
	if envPath := os.Getenv("HIDDEN_GEMS_CONFIG"); envPath != "" {
		path = envPath
	}

	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}

	if envDB := os.Getenv("HIDDEN_GEMS_DB"); envDB != "" {
		cfg.DBPath = envDB
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks that values are usable. API keys are optional by design.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}

	if err := ValidateTime(c.SyncTime); err != nil {
		return err
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}

	if c.PerSearchLimit < 1 || c.PerSearchLimit > 50 {
		return fmt.Errorf("per_search_limit must be 1-50, got %d", c.PerSearchLimit)
	}
	if c.RecommendLimit < 1 {
		return fmt.Errorf("recommend_limit must be positive, got %d", c.RecommendLimit)
	}

	return nil
}

// ValidateTime checks that a time string is in valid HH:MM 24-hour format.
func ValidateTime(t string) error {
	if len(t) != 5 || t[2] != ':' {
		return fmt.Errorf("invalid time format %q: must be HH:MM", t)
	}

	if t[0] < '0' || t[0] > '9' || t[1] < '0' || t[1] > '9' ||
		t[3] < '0' || t[3] > '9' || t[4] < '0' || t[4] > '9' {
		return fmt.Errorf("invalid time format %q: must be HH:MM", t)
	}

	hour := (int(t[0]-'0') * 10) + int(t[1]-'0')
	minute := (int(t[3]-'0') * 10) + int(t[4]-'0')

	if hour > 23 {
		return fmt.Errorf("invalid time %q: hour must be 0-23", t)
	}
	if minute > 59 {
		return fmt.Errorf("invalid time %q: minute must be 0-59", t)
	}

	return nil
}
