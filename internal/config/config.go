package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/hperssn/genesis/internal/storage"
)

// StorageConfig selects where submitted documents are kept.
type StorageConfig struct {
	// Driver is one of file, sqlite, postgres
	Driver string `yaml:"driver" toml:"driver"`

	// Dir is the documents directory for the file driver and the database
	// location for sqlite
	Dir string `yaml:"dir" toml:"dir"`

	// DSN is the postgres connection string
	DSN string `yaml:"dsn" toml:"dsn"`
}

// RateConfig limits document submissions.
type RateConfig struct {
	PerSecond float64 `yaml:"per_second" toml:"per_second"`
	Burst     int     `yaml:"burst" toml:"burst"`
}

// DictationConfig names an external speech recognizer. Empty means dictation
// is unavailable in the terminal.
type DictationConfig struct {
	Command string   `yaml:"command" toml:"command"`
	Args    []string `yaml:"args" toml:"args"`
}

// Config represents genesis configuration options
type Config struct {
	// Listen is the HTTP listen address
	Listen string `yaml:"listen"`

	Storage StorageConfig `yaml:"storage"`

	// LocalStoreDir holds one answers store per client
	LocalStoreDir string `yaml:"local_store_dir"`

	// OutputDir is where the terminal front end writes downloaded documents
	OutputDir string `yaml:"output_dir"`

	// LogLevel sets the logging verbosity (debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogFormat is console or json
	LogFormat string `yaml:"log_format"`

	// SessionTTL is how long an idle session is kept by the server
	SessionTTL time.Duration `yaml:"session_ttl"`

	SaveRate RateConfig `yaml:"save_rate"`

	Dictation DictationConfig `yaml:"dictation"`

	// ServerURL makes the terminal front end submit to a running server
	// instead of the local repository
	ServerURL string `yaml:"server_url"`
}

// DefaultConfig returns a Config with the defaults of a local install
func DefaultConfig() *Config {
	return &Config{
		Listen: ":5005",
		Storage: StorageConfig{
			Driver: storage.DriverFile,
			Dir:    storage.DefaultDir,
		},
		LocalStoreDir: filepath.Join(".genesis", "store"),
		OutputDir:     ".",
		LogLevel:      "info",
		LogFormat:     "console",
		SessionTTL:    time.Hour,
		SaveRate: RateConfig{
			PerSecond: 2,
			Burst:     10,
		},
	}
}

// fileConfig mirrors Config with durations as strings.
type fileConfig struct {
	Listen        string          `yaml:"listen" toml:"listen"`
	Storage       StorageConfig   `yaml:"storage" toml:"storage"`
	LocalStoreDir string          `yaml:"local_store_dir" toml:"local_store_dir"`
	OutputDir     string          `yaml:"output_dir" toml:"output_dir"`
	LogLevel      string          `yaml:"log_level" toml:"log_level"`
	LogFormat     string          `yaml:"log_format" toml:"log_format"`
	SessionTTL    string          `yaml:"session_ttl" toml:"session_ttl"`
	SaveRate      RateConfig      `yaml:"save_rate" toml:"save_rate"`
	Dictation     DictationConfig `yaml:"dictation" toml:"dictation"`
	ServerURL     string          `yaml:"server_url" toml:"server_url"`
}

// LoadConfig loads configuration from path. Files ending in .toml are parsed
// as TOML, anything else as YAML. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, &fc)
	} else {
		err = yaml.Unmarshal(data, &fc)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.apply(fc); err != nil {
		return nil, err
	}
	return cfg, nil
}

// apply merges the non-zero values of fc over c.
func (c *Config) apply(fc fileConfig) error {
	if fc.Listen != "" {
		c.Listen = fc.Listen
	}
	if fc.Storage.Driver != "" {
		c.Storage.Driver = fc.Storage.Driver
	}
	if fc.Storage.Dir != "" {
		c.Storage.Dir = fc.Storage.Dir
	}
	if fc.Storage.DSN != "" {
		c.Storage.DSN = fc.Storage.DSN
	}
	if fc.LocalStoreDir != "" {
		c.LocalStoreDir = fc.LocalStoreDir
	}
	if fc.OutputDir != "" {
		c.OutputDir = fc.OutputDir
	}
	if fc.LogLevel != "" {
		c.LogLevel = fc.LogLevel
	}
	if fc.LogFormat != "" {
		c.LogFormat = fc.LogFormat
	}
	if fc.SessionTTL != "" {
		ttl, err := time.ParseDuration(fc.SessionTTL)
		if err != nil {
			return fmt.Errorf("invalid session_ttl format %q: %w", fc.SessionTTL, err)
		}
		c.SessionTTL = ttl
	}
	if fc.SaveRate.PerSecond != 0 {
		c.SaveRate.PerSecond = fc.SaveRate.PerSecond
	}
	if fc.SaveRate.Burst != 0 {
		c.SaveRate.Burst = fc.SaveRate.Burst
	}
	if fc.Dictation.Command != "" {
		c.Dictation = fc.Dictation
	}
	if fc.ServerURL != "" {
		c.ServerURL = fc.ServerURL
	}
	return nil
}

// MergeWithFlags merges CLI flags into the configuration.
// Non-nil flag values override configuration values.
func (c *Config) MergeWithFlags(listen, storageDriver, storageDSN, documentsDir, logLevel, serverURL *string) {
	if listen != nil {
		c.Listen = *listen
	}
	if storageDriver != nil {
		c.Storage.Driver = *storageDriver
	}
	if storageDSN != nil {
		c.Storage.DSN = *storageDSN
	}
	if documentsDir != nil {
		c.Storage.Dir = *documentsDir
	}
	if logLevel != nil {
		c.LogLevel = *logLevel
	}
	if serverURL != nil {
		c.ServerURL = *serverURL
	}
}

// Validate returns an error if any values are invalid
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen cannot be empty")
	}

	switch c.Storage.Driver {
	case storage.DriverFile, storage.DriverSQLite:
		if c.Storage.Dir == "" && c.Storage.DSN == "" {
			return fmt.Errorf("storage.dir cannot be empty for driver %q", c.Storage.Driver)
		}
	case storage.DriverPostgres:
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn cannot be empty for driver %q", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("invalid storage.driver %q, must be one of: file, sqlite, postgres", c.Storage.Driver)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: debug, info, warn, error", c.LogLevel)
	}

	if c.LogFormat != "console" && c.LogFormat != "json" {
		return fmt.Errorf("invalid log_format %q, must be console or json", c.LogFormat)
	}

	if c.SessionTTL <= 0 {
		return fmt.Errorf("session_ttl must be > 0, got %v", c.SessionTTL)
	}

	if c.SaveRate.PerSecond <= 0 {
		return fmt.Errorf("save_rate.per_second must be > 0, got %v", c.SaveRate.PerSecond)
	}
	if c.SaveRate.Burst < 1 {
		return fmt.Errorf("save_rate.burst must be >= 1, got %d", c.SaveRate.Burst)
	}

	return nil
}
