package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var configEnvKeys = []string{
	"CONFIG_FILE", "PORT", "SEED_FILE", "SEED_DB_URL", "SEED_TABLE", "SEED_URL", "SEED_TIMEOUT_SECS",
	"CORS_ALLOWED_ORIGINS",
	"SERVER_READ_TIMEOUT", "SERVER_WRITE_TIMEOUT", "SERVER_IDLE_TIMEOUT",
	"DB_MAX_CONNS", "DB_MIN_CONNS", "DB_CONN_TIMEOUT_SECS", "LOG_DEVELOPMENT",
}

// clearEnv unsets every key Load reads; t.Setenv restores them after the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnvKeys {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if diff := cmp.Diff(Defaults(), cfg); diff != "" {
		t.Fatalf("Load() mismatch (-want +got):\n%s", diff)
	}
	if cfg.Port != "1234" {
		t.Fatalf("Port = %s, want 1234", cfg.Port)
	}
}

func TestLoadSuccess(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("SEED_FILE", "/tmp/seed.json")
	t.Setenv("SERVER_READ_TIMEOUT", "30")
	t.Setenv("DB_MAX_CONNS", "40")
	t.Setenv("DB_MIN_CONNS", "5")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("LOG_DEVELOPMENT", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.Port != "9090" {
		t.Fatalf("Port = %s, want 9090", cfg.Port)
	}
	if cfg.SeedFile != "/tmp/seed.json" {
		t.Fatalf("SeedFile = %s", cfg.SeedFile)
	}
	if cfg.ReadTimeoutSecs != 30 {
		t.Fatalf("ReadTimeoutSecs = %d, want 30", cfg.ReadTimeoutSecs)
	}
	if cfg.DBMaxConns != 40 || cfg.DBMinConns != 5 {
		t.Fatalf("DB conns = %d/%d, want 40/5", cfg.DBMaxConns, cfg.DBMinConns)
	}
	if diff := cmp.Diff([]string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins); diff != "" {
		t.Fatalf("AllowedOrigins mismatch (-want +got):\n%s", diff)
	}
	if !cfg.LogDevelopment {
		t.Fatalf("LogDevelopment = false, want true")
	}
}

func TestLoadEmptyOriginListDisablesBrowsers(t *testing.T) {
	clearEnv(t)
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if len(cfg.AllowedOrigins) != 0 {
		t.Fatalf("AllowedOrigins = %v, want empty", cfg.AllowedOrigins)
	}
}

func TestLoadConfigFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "movies.yaml")
	content := "port: \"4321\"\nseed_file: seeds/dev.json\nallowed_origins:\n  - https://dev.example\nread_timeout_secs: 5\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("SERVER_READ_TIMEOUT", "7")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.Port != "4321" || cfg.SeedFile != "seeds/dev.json" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.ReadTimeoutSecs != 7 {
		t.Fatalf("env should override file, ReadTimeoutSecs = %d", cfg.ReadTimeoutSecs)
	}
	if cfg.WriteTimeoutSecs != 15 {
		t.Fatalf("defaults should survive, WriteTimeoutSecs = %d", cfg.WriteTimeoutSecs)
	}
	if diff := cmp.Diff([]string{"https://dev.example"}, cfg.AllowedOrigins); diff != "" {
		t.Fatalf("AllowedOrigins mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T)
		wantErr string
	}{
		{
			name: "invalid port",
			setup: func(t *testing.T) {
				t.Setenv("PORT", "http")
			},
			wantErr: "PORT",
		},
		{
			name: "trailing slash origin",
			setup: func(t *testing.T) {
				t.Setenv("CORS_ALLOWED_ORIGINS", "https://movies.com/")
			},
			wantErr: "CORS_ALLOWED_ORIGINS",
		},
		{
			name: "negative timeout",
			setup: func(t *testing.T) {
				t.Setenv("SERVER_WRITE_TIMEOUT", "-1")
			},
			wantErr: "SERVER_WRITE_TIMEOUT",
		},
		{
			name: "min greater than max connections",
			setup: func(t *testing.T) {
				t.Setenv("DB_MAX_CONNS", "5")
				t.Setenv("DB_MIN_CONNS", "10")
			},
			wantErr: "DB_MIN_CONNS",
		},
		{
			name: "no seed source",
			setup: func(t *testing.T) {
				path := filepath.Join(t.TempDir(), "empty-seed.yaml")
				if err := os.WriteFile(path, []byte("seed_file: \"\"\n"), 0o600); err != nil {
					t.Fatalf("write config: %v", err)
				}
				t.Setenv("CONFIG_FILE", path)
			},
			wantErr: "SEED_FILE",
		},
		{
			name: "zero seed timeout",
			setup: func(t *testing.T) {
				t.Setenv("SEED_TIMEOUT_SECS", "0")
			},
			wantErr: "SEED_TIMEOUT_SECS",
		},
		{
			name: "missing config file",
			setup: func(t *testing.T) {
				t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
			},
			wantErr: "CONFIG_FILE",
		},
		{
			name: "unknown config file key",
			setup: func(t *testing.T) {
				path := filepath.Join(t.TempDir(), "bad.yaml")
				if err := os.WriteFile(path, []byte("auth_token: secret\n"), 0o600); err != nil {
					t.Fatalf("write config: %v", err)
				}
				t.Setenv("CONFIG_FILE", path)
			},
			wantErr: "CONFIG_FILE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			tt.setup(t)
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Load() error = %v, want contains %q", err, tt.wantErr)
			}
		})
	}
}
