package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// clearEnv blanks every variable Load reads; env ignores empty values.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		configPathEnv, "PORT", "LOG_LEVEL", "STORAGE_BACKEND", "DB_PATH", "REDIS_ADDR",
		"REDIS_PASSWORD", "KEY_PREFIX", "METRICS_PATH", "STATIC_PATH", "PUBLIC_URL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != DefaultPort || cfg.LogLevel != DefaultLogLevel {
		t.Errorf("Unexpected defaults: %+v", cfg)
	}
	if cfg.Storage != BackendSQLite || cfg.DBPath != DefaultDBPath {
		t.Errorf("Unexpected storage defaults: %+v", cfg)
	}
	if cfg.KeyPrefix != DefaultKeyPrefix || cfg.MetricsPath != DefaultMetricsPath {
		t.Errorf("Unexpected key/metrics defaults: %+v", cfg)
	}
	if cfg.Addr() != ":8080" {
		t.Errorf("Addr = %q", cfg.Addr())
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := writeConfigFile(t, `
port: 9090
log_level: debug
storage: memory
key_prefix: flat-3f
public_url: https://bills.example.com
`)
	t.Setenv(configPathEnv, path)
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090 from file", cfg.Port)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want env override", cfg.LogLevel)
	}
	if cfg.Storage != BackendMemory || cfg.KeyPrefix != "flat-3f" {
		t.Errorf("Unexpected storage settings: %+v", cfg)
	}
	if cfg.PublicURL != "https://bills.example.com" {
		t.Errorf("PublicURL = %q", cfg.PublicURL)
	}
	if cfg.DBPath != DefaultDBPath {
		t.Errorf("DBPath = %q, want default", cfg.DBPath)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		file    string
		wantErr string
		invalid bool
	}{
		{
			name:    "unparseable port",
			env:     map[string]string{"PORT": "not-a-port"},
			wantErr: "parse env:",
		},
		{
			name:    "port out of range",
			env:     map[string]string{"PORT": "70000"},
			invalid: true,
		},
		{
			name:    "unknown backend",
			env:     map[string]string{"STORAGE_BACKEND": "postgres"},
			invalid: true,
		},
		{
			name:    "redis without address",
			env:     map[string]string{"STORAGE_BACKEND": "redis"},
			invalid: true,
		},
		{
			name:    "bad metrics path",
			env:     map[string]string{"METRICS_PATH": "metrics"},
			invalid: true,
		},
		{
			name:    "malformed yaml",
			file:    "port: [",
			wantErr: "decode config file:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			if tt.file != "" {
				t.Setenv(configPathEnv, writeConfigFile(t, tt.file))
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			if err == nil {
				t.Fatal("Expected error")
			}
			if tt.invalid && !errors.Is(err, ErrInvalid) {
				t.Errorf("Expected ErrInvalid, got %v", err)
			}
			if tt.wantErr != "" && !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected %q in error, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(configPathEnv, filepath.Join(t.TempDir(), "absent.yaml"))
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "read config file:") {
		t.Errorf("Expected read error, got %v", err)
	}
}
