package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/FACorreiaa/bill-summary/pkg/money"
)

// Config holds all application configuration
type Config struct {
	Input         InputConfig
	Output        OutputConfig
	Totals        TotalsConfig
	Logging       LoggingConfig
	Observability ObservabilityConfig
	Schedule      ScheduleConfig
}

type InputConfig struct {
	// Dir is the directory holding one biller's PDF statements.
	Dir string
	// Page is the 1-based page carrying the billing details.
	Page int
	// KeepGoing isolates per-file failures instead of aborting the batch.
	KeepGoing bool
}

type OutputConfig struct {
	Path string
}

type TotalsConfig struct {
	Currency       string
	ToleranceCents int64
	Strict         bool
}

type LoggingConfig struct {
	Level  string
	Format string
}

type ObservabilityConfig struct {
	MetricsTextfile string
}

type ScheduleConfig struct {
	Cron string
	// Timeout bounds a single scheduled run.
	Timeout time.Duration
}

const (
	DefaultOutputPath = "output.xlsx"
	DefaultPage       = 2
	DefaultCron       = "0 6 1 * *"
	DefaultRunTimeout = 30 * time.Minute
)

// ErrMissingInputDir is returned when neither PDF_LOC nor pdf_loc is set.
var ErrMissingInputDir = errors.New("PDF_LOC is required")

// LoadDotEnv reads a .env file into the process environment. A missing file is
// not an error; variables already set in the environment win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv reads configuration from environment variables without validating,
// so callers can apply overrides (command line flags) first.
func FromEnv() *Config {
	return &Config{
		Input: InputConfig{
			Dir:       getEnv("PDF_LOC", getEnv("pdf_loc", "")),
			Page:      getEnvAsInt("STATEMENT_PAGE", DefaultPage),
			KeepGoing: getEnvAsBool("KEEP_GOING", false),
		},
		Output: OutputConfig{
			Path: getEnv("OUTPUT_PATH", DefaultOutputPath),
		},
		Totals: TotalsConfig{
			Currency:       strings.ToUpper(getEnv("CURRENCY", money.USD)),
			ToleranceCents: int64(getEnvAsInt("TOTALS_TOLERANCE_CENTS", 0)),
			Strict:         getEnvAsBool("STRICT_TOTALS", false),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		Observability: ObservabilityConfig{
			MetricsTextfile: getEnv("METRICS_TEXTFILE", ""),
		},
		Schedule: ScheduleConfig{
			Cron:    getEnv("SCHEDULE_CRON", DefaultCron),
			Timeout: getEnvAsDuration("SCHEDULE_TIMEOUT", DefaultRunTimeout),
		},
	}
}

// Validate checks required values and ranges.
func (c *Config) Validate() error {
	if c.Input.Dir == "" {
		return ErrMissingInputDir
	}

	if c.Input.Page < 1 {
		return fmt.Errorf("STATEMENT_PAGE must be >= 1, got %d", c.Input.Page)
	}

	if c.Totals.ToleranceCents < 0 {
		return fmt.Errorf("TOTALS_TOLERANCE_CENTS must be >= 0, got %d", c.Totals.ToleranceCents)
	}

	if c.Output.Path == "" {
		return fmt.Errorf("OUTPUT_PATH must not be empty")
	}

	if err := money.CheckCurrency(c.Totals.Currency); err != nil {
		return fmt.Errorf("CURRENCY: %w", err)
	}

	if c.Schedule.Timeout < 0 {
		return fmt.Errorf("SCHEDULE_TIMEOUT must be >= 0, got %s", c.Schedule.Timeout)
	}

	return nil
}

// SlogLevel maps the configured level name onto slog.
func (c *LoggingConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
