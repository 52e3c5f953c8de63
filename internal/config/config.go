package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Config represents the application configuration
type Config struct {
	Intervals IntervalsConfig `json:"intervals"`
	Strava    StravaConfig    `json:"strava"`
	Display   DisplayConfig   `json:"display"`
}

// IntervalsConfig holds intervals.icu API credentials
type IntervalsConfig struct {
	AthleteID string `json:"athlete_id"`
	APIKey    string `json:"api_key"`
}

// StravaConfig holds optional Strava import credentials
type StravaConfig struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// DisplayConfig holds display preferences
type DisplayConfig struct {
	DistanceUnit string `json:"distance_unit"`
	TrendDays    int    `json:"trend_days"`
}

// ErrNoConfig is returned when the config file doesn't exist
var ErrNoConfig = errors.New("config file not found")

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Display: DisplayConfig{
			DistanceUnit: "km",
			TrendDays:    90,
		},
	}
}

// Load reads the configuration from ~/.cycleiq/config.json
func Load() (*Config, error) {
	path, err := getConfigPath()
	if err != nil {
		return nil, err
	}

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

	// Apply defaults for missing values
	defaults := DefaultConfig()
	if cfg.Display.DistanceUnit == "" {
		cfg.Display.DistanceUnit = defaults.Display.DistanceUnit
	}
	if cfg.Display.TrendDays == 0 {
		cfg.Display.TrendDays = defaults.Display.TrendDays
	}

	return &cfg, nil
}

// Save writes the configuration to ~/.cycleiq/config.json
func Save(cfg *Config) error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
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

	example := Config{
		Intervals: IntervalsConfig{
			AthleteID: "YOUR_ATHLETE_ID",
			APIKey:    "YOUR_API_KEY",
		},
		Display: DisplayConfig{
			DistanceUnit: "km",
			TrendDays:    90,
		},
	}

	return Save(&example)
}

// Validate checks if the config has required fields
func (c *Config) Validate() error {
	if c.Intervals.AthleteID == "" || c.Intervals.AthleteID == "YOUR_ATHLETE_ID" {
		return errors.New("intervals.athlete_id is required - find it in your intervals.icu profile URL")
	}
	if c.Intervals.APIKey == "" || c.Intervals.APIKey == "YOUR_API_KEY" {
		return errors.New("intervals.api_key is required - generate one under intervals.icu Settings, Developer")
	}

	if c.Display.DistanceUnit != "" && c.Display.DistanceUnit != "km" && c.Display.DistanceUnit != "mi" {
		return fmt.Errorf("display.distance_unit must be \"km\" or \"mi\", got %q", c.Display.DistanceUnit)
	}
	if c.Display.TrendDays < 0 || c.Display.TrendDays > 365 {
		return fmt.Errorf("display.trend_days must be between 1 and 365, got %d", c.Display.TrendDays)
	}

	// Strava is optional, but partial credentials are a misconfiguration
	if (c.Strava.ClientID == "") != (c.Strava.ClientSecret == "") {
		return errors.New("strava.client_id and strava.client_secret must be set together")
	}

	return nil
}

// HasStrava reports whether Strava import credentials are configured
func (c *Config) HasStrava() bool {
	return c.Strava.ClientID != "" && c.Strava.ClientSecret != ""
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".cycleiq", "config.json"), nil
}
