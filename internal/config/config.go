package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultAllowedOrigins are the browser origins accepted when none are configured.
var DefaultAllowedOrigins = []string{
	"http://localhost:8080",
	"http://localhost:1234",
	"https://movies.com",
	"https://midu.dev",
}

// Config captures all runtime configuration. Values come from an optional
// YAML file named by CONFIG_FILE, overridden by environment variables.
// The seed is read from SEED_DB_URL, else SEED_URL, else SEED_FILE.
type Config struct {
	Port              string   `yaml:"port"`
	SeedFile          string   `yaml:"seed_file"`
	SeedDBURL         string   `yaml:"seed_db_url"`
	SeedTable         string   `yaml:"seed_table"`
	SeedURL           string   `yaml:"seed_url"`
	SeedTimeoutSecs   int      `yaml:"seed_timeout_secs"`
	AllowedOrigins    []string `yaml:"allowed_origins"`
	ReadTimeoutSecs   int      `yaml:"read_timeout_secs"`
	WriteTimeoutSecs  int      `yaml:"write_timeout_secs"`
	IdleTimeoutSecs   int      `yaml:"idle_timeout_secs"`
	DBMaxConns        int      `yaml:"db_max_conns"`
	DBMinConns        int      `yaml:"db_min_conns"`
	DBConnTimeoutSecs int      `yaml:"db_conn_timeout_secs"`
	LogDevelopment    bool     `yaml:"log_development"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	origins := make([]string, len(DefaultAllowedOrigins))
	copy(origins, DefaultAllowedOrigins)
	return Config{
		Port:              "1234",
		SeedFile:          "data/movies.json",
		SeedTable:         "movies",
		SeedTimeoutSecs:   10,
		AllowedOrigins:    origins,
		ReadTimeoutSecs:   15,
		WriteTimeoutSecs:  15,
		IdleTimeoutSecs:   60,
		DBMaxConns:        4,
		DBMinConns:        0,
		DBConnTimeoutSecs: 10,
	}
}

// Load reads configuration, applying defaults and validation.
func Load() (Config, error) {
	cfg := Defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.SeedFile = getEnv("SEED_FILE", cfg.SeedFile)
	cfg.SeedDBURL = getEnv("SEED_DB_URL", cfg.SeedDBURL)
	cfg.SeedTable = getEnv("SEED_TABLE", cfg.SeedTable)
	cfg.SeedURL = getEnv("SEED_URL", cfg.SeedURL)
	cfg.SeedTimeoutSecs = getEnvInt("SEED_TIMEOUT_SECS", cfg.SeedTimeoutSecs)
	if val, ok := os.LookupEnv("CORS_ALLOWED_ORIGINS"); ok {
		cfg.AllowedOrigins = splitList(val)
	}
	cfg.ReadTimeoutSecs = getEnvInt("SERVER_READ_TIMEOUT", cfg.ReadTimeoutSecs)
	cfg.WriteTimeoutSecs = getEnvInt("SERVER_WRITE_TIMEOUT", cfg.WriteTimeoutSecs)
	cfg.IdleTimeoutSecs = getEnvInt("SERVER_IDLE_TIMEOUT", cfg.IdleTimeoutSecs)
	cfg.DBMaxConns = getEnvInt("DB_MAX_CONNS", cfg.DBMaxConns)
	cfg.DBMinConns = getEnvInt("DB_MIN_CONNS", cfg.DBMinConns)
	cfg.DBConnTimeoutSecs = getEnvInt("DB_CONN_TIMEOUT_SECS", cfg.DBConnTimeoutSecs)
	cfg.LogDevelopment = getEnvBool("LOG_DEVELOPMENT", cfg.LogDevelopment)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg Config) validate() error {
	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 0 || port > 65535 {
		return fmt.Errorf("PORT must be a valid TCP port, got %q", cfg.Port)
	}
	if cfg.SeedDBURL == "" && cfg.SeedURL == "" && cfg.SeedFile == "" {
		return fmt.Errorf("SEED_FILE is required when neither SEED_DB_URL nor SEED_URL is set")
	}
	if cfg.SeedTimeoutSecs <= 0 {
		return fmt.Errorf("SEED_TIMEOUT_SECS must be positive")
	}
	if cfg.SeedDBURL != "" && strings.TrimSpace(cfg.SeedTable) == "" {
		return fmt.Errorf("SEED_TABLE must not be empty")
	}
	for _, origin := range cfg.AllowedOrigins {
		if strings.HasSuffix(origin, "/") {
			return fmt.Errorf("CORS_ALLOWED_ORIGINS entry %q must not end with a slash", origin)
		}
	}
	if cfg.ReadTimeoutSecs <= 0 || cfg.WriteTimeoutSecs <= 0 || cfg.IdleTimeoutSecs <= 0 {
		return fmt.Errorf("SERVER_READ_TIMEOUT, SERVER_WRITE_TIMEOUT and SERVER_IDLE_TIMEOUT must be positive")
	}
	if cfg.DBMaxConns <= 0 {
		return fmt.Errorf("DB_MAX_CONNS must be positive")
	}
	if cfg.DBMinConns < 0 {
		return fmt.Errorf("DB_MIN_CONNS must be non-negative")
	}
	if cfg.DBMinConns > cfg.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS cannot exceed DB_MAX_CONNS")
	}
	if cfg.DBConnTimeoutSecs <= 0 {
		return fmt.Errorf("DB_CONN_TIMEOUT_SECS must be positive")
	}
	return nil
}

func loadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open CONFIG_FILE: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse CONFIG_FILE %s: %w", path, err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func splitList(val string) []string {
	out := make([]string, 0)
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
