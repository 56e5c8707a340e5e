// Package shared holds process configuration shared by every binary.
package shared

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrInvalidValue    = errors.New("invalid configuration value")
	ErrInvalidTopN     = errors.New("top_n must be at least 1")
	ErrInvalidWorkers  = errors.New("worker counts must be at least 1")
	ErrInvalidRate     = errors.New("collect_rps must be at least 1")
	ErrUnknownStore    = errors.New("store_driver must be 'mysql' or 'sqlite'")
	ErrMissingDSN      = errors.New("mysql_dsn is required for the mysql store")
	ErrMissingSQLite   = errors.New("sqlite_path is required for the sqlite store")
	ErrNoCities        = errors.New("at least one city code is required")
	ErrInvalidAdults   = errors.New("adults must be at least 1")
	ErrInvalidDates    = errors.New("checkin and checkout must both be YYYYMMDD with checkout after checkin")
	ErrInvalidSchedule = errors.New("scrape_schedule is not a valid cron expression")
	ErrInvalidScroll   = errors.New("scroll_attempts must be at least 1")
)

const dateLayout = "20060102"

type Config struct {
	AppEnv      string `yaml:"app_env"`
	LogLevel    string `yaml:"log_level"`
	HTTPAddr    string `yaml:"http_addr"`
	MetricsAddr string `yaml:"metrics_addr"`

	StoreDriver string `yaml:"store_driver"` // mysql|sqlite
	MySQLDSN    string `yaml:"mysql_dsn"`
	SQLitePath  string `yaml:"sqlite_path"`

	RedisAddr       string `yaml:"redis_addr"`
	RedisPass       string `yaml:"redis_password"`
	RedisDB         int    `yaml:"redis_db"`
	CacheTTLSeconds int    `yaml:"cache_ttl_seconds"`

	// collector
	BaseURL        string   `yaml:"obilet_base_url"`
	CityCodes      []string `yaml:"city_codes"`
	Adults         int      `yaml:"adults"`
	Checkin        string   `yaml:"checkin"` // empty: next weekend
	Checkout       string   `yaml:"checkout"`
	CollectRPS     int      `yaml:"collect_rps"`
	CollectWorkers int      `yaml:"collect_workers"`
	UseBrowser     bool     `yaml:"use_browser"`
	Headless       bool     `yaml:"headless"`
	ScrollAttempts int      `yaml:"scroll_attempts"`
	ScrollWaitMS   int      `yaml:"scroll_wait_ms"`
	ScrapeSchedule string   `yaml:"scrape_schedule"` // empty: run once

	// analysis
	TopN             int    `yaml:"top_n"`
	NormalizeWorkers int    `yaml:"normalize_workers"`
	InputPath        string `yaml:"input_path"`
	OutputDir        string `yaml:"output_dir"`
}

func Defaults() Config {
	return Config{
		AppEnv:           "prod",
		LogLevel:         "info",
		HTTPAddr:         ":8080",
		MetricsAddr:      "",
		StoreDriver:      "sqlite",
		MySQLDSN:         "root:root@tcp(localhost:3306)/hotel_value?parseTime=true&charset=utf8mb4&loc=UTC",
		SQLitePath:       "hotel_value.db",
		RedisAddr:        "",
		CacheTTLSeconds:  900,
		BaseURL:          "https://www.obilet.com",
		CityCodes:        []string{"istanbul-250-60649-2"},
		Adults:           2,
		CollectRPS:       2,
		CollectWorkers:   2,
		UseBrowser:       true,
		Headless:         true,
		ScrollAttempts:   30,
		ScrollWaitMS:     2000,
		TopN:             10,
		NormalizeWorkers: 4,
		InputPath:        "hotels_data.json",
		OutputDir:        ".",
	}
}

// Load layers the defaults, the YAML file named by CONFIG_FILE (if any) and the environment, then validates.
func Load() (Config, error) {
	c := Defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := c.mergeFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := c.mergeEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return c, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

func (c *Config) mergeEnv(lookup func(string) (string, bool)) error {
	str := map[string]*string{
		"APP_ENV":         &c.AppEnv,
		"LOG_LEVEL":       &c.LogLevel,
		"HTTP_ADDR":       &c.HTTPAddr,
		"METRICS_ADDR":    &c.MetricsAddr,
		"STORE_DRIVER":    &c.StoreDriver,
		"MYSQL_DSN":       &c.MySQLDSN,
		"SQLITE_PATH":     &c.SQLitePath,
		"REDIS_ADDR":      &c.RedisAddr,
		"REDIS_PASSWORD":  &c.RedisPass,
		"OBILET_BASE_URL": &c.BaseURL,
		"CHECKIN":         &c.Checkin,
		"CHECKOUT":        &c.Checkout,
		"SCRAPE_SCHEDULE": &c.ScrapeSchedule,
		"INPUT_PATH":      &c.InputPath,
		"OUTPUT_DIR":      &c.OutputDir,
	}
	for k, dst := range str {
		if v, ok := lookup(k); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"REDIS_DB":          &c.RedisDB,
		"CACHE_TTL_SECONDS": &c.CacheTTLSeconds,
		"ADULTS":            &c.Adults,
		"COLLECT_RPS":       &c.CollectRPS,
		"COLLECT_WORKERS":   &c.CollectWorkers,
		"SCROLL_ATTEMPTS":   &c.ScrollAttempts,
		"SCROLL_WAIT_MS":    &c.ScrollWaitMS,
		"TOP_N":             &c.TopN,
		"NORMALIZE_WORKERS": &c.NormalizeWorkers,
	}
	for k, dst := range ints {
		v, ok := lookup(k)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidValue, k, v)
		}
		*dst = n
	}

	bools := map[string]*bool{
		"USE_BROWSER": &c.UseBrowser,
		"HEADLESS":    &c.Headless,
	}
	for k, dst := range bools {
		v, ok := lookup(k)
		if !ok || v == "" {
			continue
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a boolean", ErrInvalidValue, k, v)
		}
		*dst = b
	}

	if v, ok := lookup("CITY_CODES"); ok {
		c.CityCodes = splitList(v)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks the settings every binary relies on.
func (c *Config) Validate() error {
	if c.TopN < 1 {
		return ErrInvalidTopN
	}
	if c.NormalizeWorkers < 1 || c.CollectWorkers < 1 {
		return ErrInvalidWorkers
	}
	if c.CollectRPS < 1 {
		return ErrInvalidRate
	}
	switch c.StoreDriver {
	case "mysql":
		if c.MySQLDSN == "" {
			return ErrMissingDSN
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return ErrMissingSQLite
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStore, c.StoreDriver)
	}
	if len(c.CityCodes) == 0 {
		return ErrNoCities
	}
	if c.Adults < 1 {
		return ErrInvalidAdults
	}
	if c.ScrollAttempts < 1 {
		return ErrInvalidScroll
	}
	if c.Checkin != "" || c.Checkout != "" {
		in, err1 := time.Parse(dateLayout, c.Checkin)
		out, err2 := time.Parse(dateLayout, c.Checkout)
		if err1 != nil || err2 != nil || !out.After(in) {
			return ErrInvalidDates
		}
	}
	if c.ScrapeSchedule != "" {
		if _, err := cron.ParseStandard(c.ScrapeSchedule); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
		}
	}
	return nil
}

func (c Config) CacheTTL() time.Duration { return time.Duration(c.CacheTTLSeconds) * time.Second }

func (c Config) ScrollWait() time.Duration { return time.Duration(c.ScrollWaitMS) * time.Millisecond }

// IsDev reports whether the process runs in a development environment.
func (c Config) IsDev() bool { return c.AppEnv == "dev" || c.AppEnv == "development" }
