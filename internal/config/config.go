package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type AppConfig struct {
	// DataSource is a local CSV path or an http(s) URL.
	DataSource string `toml:"data_source" validate:"required"`

	HTTPTimeout time.Duration `toml:"http_timeout" validate:"gt=0"`

	// ReloadInterval controls how often the dataset is reloaded (0 = never).
	ReloadInterval time.Duration `toml:"reload_interval" validate:"gte=0"`

	// WatchDataset reloads a local dataset as soon as the file changes.
	WatchDataset bool `toml:"watch_dataset"`

	// Periodic full-range workbook export; disabled when ExportDir is empty.
	ExportDir      string        `toml:"export_dir"`
	ExportInterval time.Duration `toml:"export_interval" validate:"gte=0"`

	StoreMaxHistory int `toml:"store_max_history" validate:"gte=0"` // dataset versions remembered (0 = unlimited)
	TopHours        int `toml:"top_hours" validate:"min=1,max=24"`

	Port string `toml:"port" validate:"required,numeric"`
}

// fileConfig mirrors AppConfig with durations as strings, as TOML has no duration type.
type fileConfig struct {
	DataSource      string `toml:"data_source"`
	HTTPTimeout     string `toml:"http_timeout"`
	ReloadInterval  string `toml:"reload_interval"`
	WatchDataset    *bool  `toml:"watch_dataset"`
	ExportDir       string `toml:"export_dir"`
	ExportInterval  string `toml:"export_interval"`
	StoreMaxHistory *int   `toml:"store_max_history"`
	TopHours        *int   `toml:"top_hours"`
	Port            string `toml:"port"`
}

var validate = validator.New()

// Defaults returns the configuration used when nothing overrides it.
func Defaults() *AppConfig {
	return &AppConfig{
		DataSource:      "data/hour.csv",
		HTTPTimeout:     15 * time.Second,
		ReloadInterval:  time.Hour,
		WatchDataset:    true,
		ExportInterval:  24 * time.Hour,
		StoreMaxHistory: 10,
		TopHours:        5,
		Port:            "8080",
	}
}

// Load reads configuration from defaults, an optional TOML file named by
// CONFIG_FILE, and the environment (highest precedence).
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := Defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func applyFile(cfg *AppConfig, path string) error {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Printf("INFO: config file %s not found, using defaults", path)
			return nil
		}
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	if fc.DataSource != "" {
		cfg.DataSource = fc.DataSource
	}
	if fc.ExportDir != "" {
		cfg.ExportDir = fc.ExportDir
	}
	if fc.Port != "" {
		cfg.Port = fc.Port
	}
	if fc.WatchDataset != nil {
		cfg.WatchDataset = *fc.WatchDataset
	}
	if fc.StoreMaxHistory != nil {
		cfg.StoreMaxHistory = *fc.StoreMaxHistory
	}
	if fc.TopHours != nil {
		cfg.TopHours = *fc.TopHours
	}

	for _, d := range []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"http_timeout", fc.HTTPTimeout, &cfg.HTTPTimeout},
		{"reload_interval", fc.ReloadInterval, &cfg.ReloadInterval},
		{"export_interval", fc.ExportInterval, &cfg.ExportInterval},
	} {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("invalid %s in %s: %w", d.key, path, err)
		}
		*d.dst = v
	}
	return nil
}

func applyEnv(cfg *AppConfig) error {
	cfg.DataSource = getenvDefault("DATA_SOURCE", cfg.DataSource)
	cfg.ExportDir = getenvDefault("EXPORT_DIR", cfg.ExportDir)
	cfg.Port = getenvDefault("PORT", cfg.Port)
	cfg.WatchDataset = getenvBool("WATCH_DATASET", cfg.WatchDataset)
	cfg.StoreMaxHistory = getenvInt("STORE_MAX_HISTORY", cfg.StoreMaxHistory)
	cfg.TopHours = getenvInt("TOP_HOURS", cfg.TopHours)

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", cfg.HTTPTimeout); err != nil {
		return err
	}
	if cfg.ReloadInterval, err = getenvDuration("RELOAD_INTERVAL", cfg.ReloadInterval); err != nil {
		return err
	}
	if cfg.ExportInterval, err = getenvDuration("EXPORT_INTERVAL", cfg.ExportInterval); err != nil {
		return err
	}
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
