// Package config loads service configuration from FITMATE_ prefixed
// environment variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
	_ "time/tzdata" // IANA zones on hosts without a zoneinfo database

	"github.com/kelseyhightower/envconfig"
)

// Prefix is the environment variable prefix.
const Prefix = "FITMATE"

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds the service configuration.
type Config struct {
	// HTTP. WebDir is optional; when set, its files are served and its
	// index.html answers every other non-API path.
	Addr   string `envconfig:"ADDR" default:":8080"`
	WebDir string `envconfig:"WEB_DIR" default:""`

	// Storage
	DBDriver    string `envconfig:"DB_DRIVER" default:"sqlite"`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"data/fitmate.db"`
	DatabaseURL string `envconfig:"DATABASE_URL" default:""`

	// Calendar. Timezone is an IANA name or "Local".
	Timezone  string `envconfig:"TIMEZONE" default:"Local"`
	WeekStart string `envconfig:"WEEK_START" default:"sunday"`

	// Nutrition and vision services
	NutritionURL  string        `envconfig:"NUTRITION_URL" default:""`
	VisionURL     string        `envconfig:"VISION_URL" default:""`
	ClientToken   string        `envconfig:"CLIENT_TOKEN" default:""`
	LookupTimeout time.Duration `envconfig:"LOOKUP_TIMEOUT" default:"15s"`
	LookupRetries uint64        `envconfig:"LOOKUP_RETRIES" default:"3"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Resolved by Validate.
	Location     *time.Location `ignored:"true"`
	FirstWeekday time.Weekday   `ignored:"true"`
}

// New parses the environment and validates the result.
func New() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the driver settings and resolves Location and
// FirstWeekday.
func (c *Config) Validate() error {
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
	switch c.DBDriver {
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("%s_SQLITE_PATH is required for the sqlite driver", Prefix)
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("%s_DATABASE_URL is required for the postgres driver", Prefix)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}

	loc, err := loadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	c.Location = loc

	wd, err := parseWeekday(c.WeekStart)
	if err != nil {
		return err
	}
	c.FirstWeekday = wd

	if c.VisionURL != "" && c.NutritionURL == "" {
		return fmt.Errorf("%s_VISION_URL requires %s_NUTRITION_URL", Prefix, Prefix)
	}
	return nil
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(name)
}

func parseWeekday(s string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(strings.TrimSpace(s), d.String()) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("invalid WEEK_START %q", s)
}

// LogAttrs returns the loaded configuration as log attributes, without
// secrets.
func (c *Config) LogAttrs() []any {
	return []any{
		"addr", c.Addr,
		"db_driver", c.DBDriver,
		"sqlite_path", c.SQLitePath,
		"database_url_present", c.DatabaseURL != "",
		"timezone", c.Location.String(),
		"week_start", c.FirstWeekday.String(),
		"nutrition_url", c.NutritionURL,
		"vision_url", c.VisionURL,
		"client_token_present", c.ClientToken != "",
		"log_level", c.LogLevel,
	}
}

// Log writes the configuration at info level.
func (c *Config) Log(l *slog.Logger) {
	l.Info("configuration loaded", c.LogAttrs()...)
}
