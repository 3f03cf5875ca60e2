package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Listen != ":5005" {
		t.Errorf("Listen = %q, want %q", cfg.Listen, ":5005")
	}
	if cfg.Storage.Driver != "file" {
		t.Errorf("Storage.Driver = %q, want %q", cfg.Storage.Driver, "file")
	}
	if cfg.Storage.Dir != "generated_prds" {
		t.Errorf("Storage.Dir = %q, want %q", cfg.Storage.Dir, "generated_prds")
	}
	if cfg.SessionTTL != time.Hour {
		t.Errorf("SessionTTL = %v, want 1h", cfg.SessionTTL)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid, got %v", err)
	}
}

func TestLoadConfigYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genesis.yaml")
	content := `listen: 127.0.0.1:8080
storage:
  driver: sqlite
  dir: /tmp/prds
log_level: debug
session_ttl: 30m
dictation:
  command: whisper-stream
  args: ["--lang", "en"]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Listen != "127.0.0.1:8080" {
		t.Errorf("Listen = %q", cfg.Listen)
	}
	if cfg.Storage.Driver != "sqlite" || cfg.Storage.Dir != "/tmp/prds" {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Errorf("SessionTTL = %v, want 30m", cfg.SessionTTL)
	}
	if cfg.Dictation.Command != "whisper-stream" || len(cfg.Dictation.Args) != 2 {
		t.Errorf("Dictation = %+v", cfg.Dictation)
	}
	// Untouched values keep their defaults.
	if cfg.LogFormat != "console" {
		t.Errorf("LogFormat = %q, want console", cfg.LogFormat)
	}
}

func TestLoadConfigTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genesis.toml")
	content := `listen = ":9000"
log_format = "json"
server_url = "http://localhost:5005"

[save_rate]
per_second = 0.5
burst = 3
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Listen != ":9000" {
		t.Errorf("Listen = %q, want :9000", cfg.Listen)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %q, want json", cfg.LogFormat)
	}
	if cfg.ServerURL != "http://localhost:5005" {
		t.Errorf("ServerURL = %q", cfg.ServerURL)
	}
	if cfg.SaveRate.PerSecond != 0.5 || cfg.SaveRate.Burst != 3 {
		t.Errorf("SaveRate = %+v", cfg.SaveRate)
	}
}

func TestLoadConfigFileNotExists(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/genesis.yaml")
	if err != nil {
		t.Fatalf("LoadConfig() should not error on missing file, got: %v", err)
	}
	if cfg.Listen != ":5005" {
		t.Errorf("Listen = %q, want default", cfg.Listen)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr string
	}{
		{"malformed yaml", "c.yaml", "listen: [unclosed", "failed to parse"},
		{"malformed toml", "c.toml", "listen = ", "failed to parse"},
		{"bad duration", "c.yaml", "session_ttl: soon", "invalid session_ttl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("failed to write test config: %v", err)
			}

			_, err := LoadConfig(path)
			if err == nil {
				t.Fatalf("LoadConfig() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestMergeWithFlags(t *testing.T) {
	cfg := DefaultConfig()
	listen := ":7000"
	driver := "postgres"
	dsn := "postgres://localhost/genesis"

	cfg.MergeWithFlags(&listen, &driver, &dsn, nil, nil, nil)

	if cfg.Listen != listen || cfg.Storage.Driver != driver || cfg.Storage.DSN != dsn {
		t.Errorf("flags not merged: %+v", cfg)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("nil flag overrode LogLevel: %q", cfg.LogLevel)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"empty listen", func(c *Config) { c.Listen = "" }, true},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "mongo" }, true},
		{"postgres without dsn", func(c *Config) { c.Storage.Driver = "postgres" }, true},
		{"postgres with dsn", func(c *Config) {
			c.Storage.Driver = "postgres"
			c.Storage.DSN = "postgres://x"
		}, false},
		{"sqlite with dsn only", func(c *Config) {
			c.Storage.Driver = "sqlite"
			c.Storage.Dir = ""
			c.Storage.DSN = "file:test.db"
		}, false},
		{"bad level", func(c *Config) { c.LogLevel = "trace" }, true},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }, true},
		{"zero ttl", func(c *Config) { c.SessionTTL = 0 }, true},
		{"zero rate", func(c *Config) { c.SaveRate.PerSecond = 0 }, true},
		{"zero burst", func(c *Config) { c.SaveRate.Burst = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
