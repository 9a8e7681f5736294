package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"readiness/internal/analysis"
)

// Config represents the application configuration
type Config struct {
	Strava  StravaConfig  `json:"strava"`
	Athlete AthleteConfig `json:"athlete"`
	Engine  EngineConfig  `json:"engine"`
	Display DisplayConfig `json:"display"`
}

// StravaConfig holds Strava API credentials
type StravaConfig struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// AthleteConfig holds athlete-specific thresholds
type AthleteConfig struct {
	RestingHR       float64 `json:"resting_hr"`
	MaxHR           float64 `json:"max_hr"`
	ThresholdHR     float64 `json:"threshold_hr"`
	FTP             float64 `json:"ftp"`               // manual FTP in watts
	PreferStravaFTP bool    `json:"prefer_strava_ftp"` // use the Strava profile FTP first

	// Threshold paces in seconds per km and per 100 m
	RunThresholdPace  float64 `json:"run_threshold_pace,omitempty"`
	SwimThresholdPace float64 `json:"swim_threshold_pace,omitempty"`
}

// EngineConfig controls the readiness engine
type EngineConfig struct {
	HistoryDays int    `json:"history_days"`
	Timezone    string `json:"timezone"` // IANA name; empty means the system zone
	FITDir      string `json:"fit_dir"`  // directory of FIT files used as the primary source
}

// DisplayConfig holds display preferences
type DisplayConfig struct {
	Units string `json:"units"` // "metric" or "imperial"
}

// ErrNoConfig is returned when the config file doesn't exist
var ErrNoConfig = errors.New("config file not found")

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Athlete: AthleteConfig{
			RestingHR:   50,
			MaxHR:       185,
			ThresholdHR: 165,
		},
		Engine: EngineConfig{
			HistoryDays: 90,
		},
		Display: DisplayConfig{
			Units: "metric",
		},
	}
}

// Load reads the configuration from ~/.readiness/config.json, then applies
// overrides from ~/.readiness/.env and READINESS_* environment variables
func Load() (*Config, error) {
	path, err := getConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads the configuration from path
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNoConfig
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// A missing .env is the normal case
	_ = godotenv.Load(filepath.Join(filepath.Dir(path), ".env"))
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// applyDefaults fills zero values from DefaultConfig
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Athlete.RestingHR == 0 {
		c.Athlete.RestingHR = defaults.Athlete.RestingHR
	}
	if c.Athlete.MaxHR == 0 {
		c.Athlete.MaxHR = defaults.Athlete.MaxHR
	}
	if c.Athlete.ThresholdHR == 0 {
		c.Athlete.ThresholdHR = defaults.Athlete.ThresholdHR
	}
	if c.Engine.HistoryDays == 0 {
		c.Engine.HistoryDays = defaults.Engine.HistoryDays
	}
	if c.Display.Units == "" {
		c.Display.Units = defaults.Display.Units
	}
}

// applyEnv overrides file values with READINESS_* environment variables
func (c *Config) applyEnv() error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	setFloat := func(key string, dst *float64) error {
		v, ok := os.LookupEnv(key)
		if !ok {
			return nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", key, err)
		}
		*dst = f
		return nil
	}

	setString("READINESS_STRAVA_CLIENT_ID", &c.Strava.ClientID)
	setString("READINESS_STRAVA_CLIENT_SECRET", &c.Strava.ClientSecret)
	setString("READINESS_TIMEZONE", &c.Engine.Timezone)
	setString("READINESS_FIT_DIR", &c.Engine.FITDir)
	setString("READINESS_UNITS", &c.Display.Units)

	if err := setFloat("READINESS_FTP", &c.Athlete.FTP); err != nil {
		return err
	}
	if err := setFloat("READINESS_MAX_HR", &c.Athlete.MaxHR); err != nil {
		return err
	}
	if err := setFloat("READINESS_RESTING_HR", &c.Athlete.RestingHR); err != nil {
		return err
	}
	if v, ok := os.LookupEnv("READINESS_HISTORY_DAYS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing READINESS_HISTORY_DAYS: %w", err)
		}
		c.Engine.HistoryDays = n
	}
	return nil
}

// Save writes the configuration to ~/.readiness/config.json
func Save(cfg *Config) error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}
	return SaveFile(path, cfg)
}

// SaveFile writes the configuration to path
func SaveFile(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// CreateExample creates an example config file if none exists
func CreateExample() error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil {
		return nil // Config exists, don't overwrite
	}

	example := DefaultConfig()
	example.Strava = StravaConfig{
		ClientID:     "YOUR_CLIENT_ID",
		ClientSecret: "YOUR_CLIENT_SECRET",
	}
	example.Athlete.FTP = 250
	example.Engine.FITDir = "~/fit"

	return Save(&example)
}

// Validate checks the config for values the engine cannot work with
func (c *Config) Validate() error {
	if c.Athlete.MaxHR <= 0 {
		return errors.New("athlete.max_hr is required")
	}
	if c.Athlete.RestingHR >= c.Athlete.MaxHR {
		return fmt.Errorf("athlete.resting_hr (%v) must be less than athlete.max_hr (%v)", c.Athlete.RestingHR, c.Athlete.MaxHR)
	}
	if c.Athlete.ThresholdHR > 0 && c.Athlete.ThresholdHR >= c.Athlete.MaxHR {
		return fmt.Errorf("athlete.threshold_hr (%v) must be less than athlete.max_hr (%v)", c.Athlete.ThresholdHR, c.Athlete.MaxHR)
	}
	if c.Athlete.FTP < 0 {
		return fmt.Errorf("athlete.ftp must not be negative, got %v", c.Athlete.FTP)
	}
	if c.Engine.HistoryDays < 0 {
		return fmt.Errorf("engine.history_days must not be negative, got %d", c.Engine.HistoryDays)
	}
	if c.Display.Units != "" && c.Display.Units != "metric" && c.Display.Units != "imperial" {
		return fmt.Errorf("display.units must be \"metric\" or \"imperial\", got %q", c.Display.Units)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// ValidateStrava checks that Strava credentials are filled in
func (c *Config) ValidateStrava() error {
	if c.Strava.ClientID == "" || c.Strava.ClientID == "YOUR_CLIENT_ID" {
		return errors.New("strava.client_id is required - get it from https://www.strava.com/settings/api")
	}
	if c.Strava.ClientSecret == "" || c.Strava.ClientSecret == "YOUR_CLIENT_SECRET" {
		return errors.New("strava.client_secret is required - get it from https://www.strava.com/settings/api")
	}
	return nil
}

// HasStrava reports whether Strava credentials are configured
func (c *Config) HasStrava() bool {
	return c.ValidateStrava() == nil
}

// Location resolves the configured timezone
func (c *Config) Location() (*time.Location, error) {
	if c.Engine.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Engine.Timezone)
	if err != nil {
		return nil, fmt.Errorf("engine.timezone %q: %w", c.Engine.Timezone, err)
	}
	return loc, nil
}

// Thresholds converts the athlete section into analysis thresholds.
// secondaryFTP is the FTP reported by the Strava profile, 0 if unknown.
func (c *Config) Thresholds(secondaryFTP float64) analysis.Thresholds {
	return analysis.Thresholds{
		ManualFTP:          c.Athlete.FTP,
		SecondaryFTP:       secondaryFTP,
		PreferSecondaryFTP: c.Athlete.PreferStravaFTP,
		RestingHR:          c.Athlete.RestingHR,
		MaxHR:              c.Athlete.MaxHR,
		ThresholdHR:        c.Athlete.ThresholdHR,
		RunThresholdPace:   c.Athlete.RunThresholdPace,
		SwimThresholdPace:  c.Athlete.SwimThresholdPace,
		Units:              analysis.UnitSystem(c.Display.Units),
	}
}

// FITDir returns the FIT directory with a leading ~ expanded
func (c *Config) FITDir() (string, error) {
	dir := c.Engine.FITDir
	if dir == "" {
		return "", nil
	}
	if dir == "~" || len(dir) > 1 && dir[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, dir[1:])
	}
	return dir, nil
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".readiness"), nil
}
