package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/rwk-liga/rwk-engine/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultMigrationsPath = "file://migrations"
	DefaultServiceName    = "rwk-engine"
)

// logOutput is shared by both log formats; stdout is reserved for command output.
var logOutput io.Writer = os.Stderr

type Config struct {
	Database DatabaseConfig               `yaml:"database"`
	Rounds   map[models.DisciplineType]int `yaml:"rounds"`
	Log      LogConfig                    `yaml:"log"`
	Tracing  TracingConfig                `yaml:"tracing"`
}

type DatabaseConfig struct {
	URL        string `yaml:"url"`
	Migrations string `yaml:"migrations"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TracingConfig selects the OTLP/HTTP collector spans are exported to.
// Tracing stays off unless Enabled is set and an endpoint is given.
type TracingConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"serviceName"`
}

// DefaultRounds are the rounds per season of each discipline family.
func DefaultRounds() map[models.DisciplineType]int {
	return map[models.DisciplineType]int{
		models.DisciplineSmallBore:       4,
		models.DisciplineSmallBorePistol: 4,
		models.DisciplineAirRifle:        5,
		models.DisciplineAirPistol:       5,
	}
}

// Load reads the YAML file at path, then applies .env and environment overrides.
// A missing file is not an error: the configuration then comes from the environment only.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to unmarshal config: %w", err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	if c.Database.URL == "" {
		c.Database.URL = dsnFromParts()
	}
	if v := os.Getenv("MIGRATIONS_PATH"); v != "" {
		c.Database.Migrations = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	if v := os.Getenv("TRACING_ENDPOINT"); v != "" {
		c.Tracing.Endpoint = v
	}
	if v := os.Getenv("TRACING_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid TRACING_ENABLED environment variable: %w", err)
		}
		c.Tracing.Enabled = enabled
	}

	for _, d := range []models.DisciplineType{
		models.DisciplineSmallBore,
		models.DisciplineSmallBorePistol,
		models.DisciplineAirRifle,
		models.DisciplineAirPistol,
	} {
		key := "ROUNDS_" + strings.ToUpper(string(d))
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s environment variable: %w", key, err)
		}
		if c.Rounds == nil {
			c.Rounds = map[models.DisciplineType]int{}
		}
		c.Rounds[d] = n
	}
	return nil
}

// dsnFromParts builds a DSN from the split USER_NAME/DB_PASSWORD/... variables.
func dsnFromParts() string {
	host := os.Getenv("DB_HOST")
	if host == "" {
		return ""
	}
	port := os.Getenv("DB_PORT")
	if port == "" {
		port = "5432"
	}
	sslMode := os.Getenv("SSL_MODE")
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		os.Getenv("USER_NAME"),
		os.Getenv("DB_PASSWORD"),
		host,
		port,
		os.Getenv("DB_NAME"),
		sslMode,
	)
}

func (c *Config) applyDefaults() {
	if c.Database.Migrations == "" {
		c.Database.Migrations = DefaultMigrationsPath
	}
	rounds := DefaultRounds()
	for d, n := range c.Rounds {
		rounds[d] = n
	}
	c.Rounds = rounds
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = DefaultServiceName
	}
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return errors.New("database url is not set: use database.url, DATABASE_URL or DB_HOST")
	}
	for d, n := range c.Rounds {
		if !d.Valid() {
			return fmt.Errorf("rounds configured for unknown discipline %q", d)
		}
		if n <= 0 {
			return fmt.Errorf("rounds for %s must be positive, got %d", d, n)
		}
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log format must be text or json, got %q", c.Log.Format)
	}
	if c.Tracing.Enabled && c.Tracing.Endpoint == "" {
		return errors.New("tracing is enabled but no endpoint is set: use tracing.endpoint or TRACING_ENDPOINT")
	}
	return nil
}

// RoundsFor returns the configured round count of a discipline.
func (c *Config) RoundsFor(d models.DisciplineType) int {
	return c.Rounds[d]
}

func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", l.Level, err)
	}
	return level, nil
}

func (l LogConfig) NewLogger() *slog.Logger {
	level, err := l.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(logOutput, opts))
	}
	return slog.New(slog.NewTextHandler(logOutput, opts))
}
