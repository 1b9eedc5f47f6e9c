package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
yelp_api_key: test-yelp-key
google_maps_api_key: test-maps-key
db_path: /tmp/gems.db
sync_time: "07:30"
timezone: America/New_York
per_search_limit: 25
recommend_limit: 10
fetch_timeout_secs: 20
log_level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.YelpAPIKey != "test-yelp-key" {
		t.Errorf("YelpAPIKey = %q", cfg.YelpAPIKey)
	}
	if cfg.SyncTime != "07:30" {
		t.Errorf("SyncTime = %q", cfg.SyncTime)
	}
	if cfg.PerSearchLimit != 25 {
		t.Errorf("PerSearchLimit = %d", cfg.PerSearchLimit)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestLoad_DefaultsApply(t *testing.T) {
	cfg, err := Load(writeConfig(t, `yelp_api_key: k`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	d := Defaults()
	if cfg.SyncTime != d.SyncTime || cfg.Timezone != d.Timezone {
		t.Errorf("schedule defaults not applied: %+v", cfg)
	}
	if cfg.PerSearchLimit != d.PerSearchLimit || cfg.RecommendLimit != d.RecommendLimit {
		t.Errorf("limit defaults not applied: %+v", cfg)
	}
}

func TestLoad_MissingAPIKeysAllowed(t *testing.T) {
	// Without a Yelp key the app runs on seed data; keys are not required.
	if _, err := Load(writeConfig(t, `db_path: /tmp/gems.db`)); err != nil {
		t.Fatalf("Load without keys: %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_EnvDBOverride(t *testing.T) {
	t.Setenv("HIDDEN_GEMS_DB", "/tmp/override.db")

	cfg, err := Load(writeConfig(t, `db_path: /tmp/gems.db`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath != "/tmp/override.db" {
		t.Errorf("DBPath = %q, want env override", cfg.DBPath)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"empty db path", func(c *Config) { c.DBPath = "" }, true},
		{"bad sync time", func(c *Config) { c.SyncTime = "25:00" }, true},
		{"bad timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }, true},
		{"per search limit too high", func(c *Config) { c.PerSearchLimit = 51 }, true},
		{"per search limit zero", func(c *Config) { c.PerSearchLimit = 0 }, true},
		{"recommend limit zero", func(c *Config) { c.RecommendLimit = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateTime(t *testing.T) {
	valid := []string{"00:00", "09:30", "23:59"}
	for _, v := range valid {
		if err := ValidateTime(v); err != nil {
			t.Errorf("ValidateTime(%q) = %v, want nil", v, err)
		}
	}

	invalid := []string{"", "9:30", "24:00", "12:60", "ab:cd", "12-30", "12:3"}
	for _, v := range invalid {
		if err := ValidateTime(v); err == nil {
			t.Errorf("ValidateTime(%q) = nil, want error", v)
		}
	}
}
