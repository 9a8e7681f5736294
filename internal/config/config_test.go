package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	// Test athlete defaults
	if cfg.Athlete.RestingHR != 50 {
		t.Errorf("Athlete.RestingHR = %v, want 50", cfg.Athlete.RestingHR)
	}
	if cfg.Athlete.MaxHR != 185 {
		t.Errorf("Athlete.MaxHR = %v, want 185", cfg.Athlete.MaxHR)
	}
	if cfg.Athlete.ThresholdHR != 165 {
		t.Errorf("Athlete.ThresholdHR = %v, want 165", cfg.Athlete.ThresholdHR)
	}

	if cfg.Engine.HistoryDays != 90 {
		t.Errorf("Engine.HistoryDays = %d, want 90", cfg.Engine.HistoryDays)
	}
	if cfg.Display.Units != "metric" {
		t.Errorf("Display.Units = %q, want %q", cfg.Display.Units, "metric")
	}

	// Strava config should be empty by default
	if cfg.Strava.ClientID != "" {
		t.Errorf("Strava.ClientID should be empty, got %q", cfg.Strava.ClientID)
	}
	if cfg.HasStrava() {
		t.Error("HasStrava() = true for default config")
	}
}

func TestConfigValidate(t *testing.T) {
	valid := DefaultConfig

	tests := []struct {
		name        string
		modify      func(*Config)
		errContains string
	}{
		{name: "default config", modify: func(*Config) {}},
		{name: "missing max HR", modify: func(c *Config) { c.Athlete.MaxHR = 0 }, errContains: "max_hr"},
		{name: "resting above max", modify: func(c *Config) { c.Athlete.RestingHR = 190 }, errContains: "resting_hr"},
		{name: "resting equals max", modify: func(c *Config) { c.Athlete.RestingHR = 185 }, errContains: "resting_hr"},
		{name: "threshold above max", modify: func(c *Config) { c.Athlete.ThresholdHR = 190 }, errContains: "threshold_hr"},
		{name: "negative FTP", modify: func(c *Config) { c.Athlete.FTP = -1 }, errContains: "ftp"},
		{name: "negative history", modify: func(c *Config) { c.Engine.HistoryDays = -5 }, errContains: "history_days"},
		{name: "bad units", modify: func(c *Config) { c.Display.Units = "furlongs" }, errContains: "units"},
		{name: "imperial units", modify: func(c *Config) { c.Display.Units = "imperial" }},
		{name: "bad timezone", modify: func(c *Config) { c.Engine.Timezone = "Mars/Olympus" }, errContains: "timezone"},
		{name: "valid timezone", modify: func(c *Config) { c.Engine.Timezone = "Europe/Oslo" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.errContains == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.errContains)
			}
			if !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("Validate() error = %q, want it to contain %q", err, tt.errContains)
			}
		})
	}
}

func TestValidateStrava(t *testing.T) {
	tests := []struct {
		name        string
		strava      StravaConfig
		errContains string
	}{
		{"valid", StravaConfig{ClientID: "12345", ClientSecret: "abc123secret"}, ""},
		{"empty client ID", StravaConfig{ClientSecret: "abc123secret"}, "client_id"},
		{"placeholder client ID", StravaConfig{ClientID: "YOUR_CLIENT_ID", ClientSecret: "abc123secret"}, "client_id"},
		{"empty client secret", StravaConfig{ClientID: "12345"}, "client_secret"},
		{"placeholder client secret", StravaConfig{ClientID: "12345", ClientSecret: "YOUR_CLIENT_SECRET"}, "client_secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Strava: tt.strava}
			err := cfg.ValidateStrava()
			if tt.errContains == "" {
				if err != nil {
					t.Errorf("ValidateStrava() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("ValidateStrava() error = %v, want it to contain %q", err, tt.errContains)
			}
		})
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "config.json"))
	if !errors.Is(err, ErrNoConfig) {
		t.Errorf("LoadFile() error = %v, want ErrNoConfig", err)
	}
}

func TestSaveAndLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")

	cfg := DefaultConfig()
	cfg.Athlete.FTP = 265
	cfg.Athlete.PreferStravaFTP = true
	cfg.Engine.Timezone = "UTC"
	if err := SaveFile(path, &cfg); err != nil {
		t.Fatalf("SaveFile() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("config permissions = %o, want 600", perm)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if loaded.Athlete.FTP != 265 || !loaded.Athlete.PreferStravaFTP {
		t.Errorf("athlete = %+v, want FTP 265 preferring Strava", loaded.Athlete)
	}
	if loaded.Engine.Timezone != "UTC" {
		t.Errorf("Timezone = %q, want UTC", loaded.Engine.Timezone)
	}
}

func TestLoadFileAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"athlete": {"ftp": 240}}`), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Athlete.MaxHR != 185 || cfg.Athlete.RestingHR != 50 {
		t.Errorf("heart rate defaults not applied: %+v", cfg.Athlete)
	}
	if cfg.Engine.HistoryDays != 90 {
		t.Errorf("HistoryDays = %d, want 90", cfg.Engine.HistoryDays)
	}
	if cfg.Athlete.FTP != 240 {
		t.Errorf("FTP = %v, want 240", cfg.Athlete.FTP)
	}
}

func TestLoadFileEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"athlete": {"ftp": 240}}`), 0600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("READINESS_FTP", "280")
	t.Setenv("READINESS_HISTORY_DAYS", "120")
	t.Setenv("READINESS_TIMEZONE", "Asia/Tokyo")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Athlete.FTP != 280 {
		t.Errorf("FTP = %v, want 280", cfg.Athlete.FTP)
	}
	if cfg.Engine.HistoryDays != 120 {
		t.Errorf("HistoryDays = %d, want 120", cfg.Engine.HistoryDays)
	}
	if cfg.Engine.Timezone != "Asia/Tokyo" {
		t.Errorf("Timezone = %q, want Asia/Tokyo", cfg.Engine.Timezone)
	}
}

func TestLoadFileDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{}`), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("READINESS_MAX_HR=192\n"), 0600); err != nil {
		t.Fatal(err)
	}
	// godotenv sets the variable process-wide; register cleanup through Setenv
	t.Setenv("READINESS_MAX_HR", "")
	os.Unsetenv("READINESS_MAX_HR")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Athlete.MaxHR != 192 {
		t.Errorf("MaxHR = %v, want 192 from .env", cfg.Athlete.MaxHR)
	}
}

func TestLoadFileBadEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{}`), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("READINESS_FTP", "lots")

	if _, err := LoadFile(path); err == nil || !strings.Contains(err.Error(), "READINESS_FTP") {
		t.Errorf("LoadFile() error = %v, want READINESS_FTP parse error", err)
	}
}

func TestThresholds(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Athlete.FTP = 250
	cfg.Athlete.PreferStravaFTP = true

	th := cfg.Thresholds(270)
	if th.FTP() != 270 {
		t.Errorf("FTP() = %v, want 270 when preferring Strava", th.FTP())
	}
	if manual := cfg.Thresholds(0); manual.FTP() != 250 {
		t.Errorf("FTP() = %v, want manual 250 when Strava has none", manual.FTP())
	}
	if th.MaxHR != 185 || th.RestingHR != 50 {
		t.Errorf("heart rate anchors = %v/%v, want 50/185", th.RestingHR, th.MaxHR)
	}
}

func TestLocation(t *testing.T) {
	cfg := DefaultConfig()
	loc, err := cfg.Location()
	if err != nil || loc == nil {
		t.Fatalf("Location() = %v, %v", loc, err)
	}

	cfg.Engine.Timezone = "America/New_York"
	loc, err = cfg.Location()
	if err != nil {
		t.Fatalf("Location() error = %v", err)
	}
	if loc.String() != "America/New_York" {
		t.Errorf("Location() = %v, want America/New_York", loc)
	}
}

func TestFITDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	cfg := DefaultConfig()
	if dir, _ := cfg.FITDir(); dir != "" {
		t.Errorf("FITDir() = %q, want empty", dir)
	}

	cfg.Engine.FITDir = "~/fit"
	dir, err := cfg.FITDir()
	if err != nil {
		t.Fatalf("FITDir() error = %v", err)
	}
	if dir != filepath.Join(home, "fit") {
		t.Errorf("FITDir() = %q, want %q", dir, filepath.Join(home, "fit"))
	}

	cfg.Engine.FITDir = "/data/fit"
	if dir, _ := cfg.FITDir(); dir != "/data/fit" {
		t.Errorf("FITDir() = %q, want /data/fit", dir)
	}
}
