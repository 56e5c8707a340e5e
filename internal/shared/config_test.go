package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func env(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefaultsAreValid(t *testing.T) {
	c := Defaults()
	if err := c.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if c.TopN != 10 {
		t.Fatalf("default top_n should be 10, got %d", c.TopN)
	}
}

func TestMergeEnv(t *testing.T) {
	c := Defaults()
	err := c.mergeEnv(env(map[string]string{
		"TOP_N":        "25",
		"CITY_CODES":   " antalya-1 , ,izmir-2 ",
		"USE_BROWSER":  "false",
		"STORE_DRIVER": "mysql",
		"CHECKIN":      "20250321",
		"CHECKOUT":     "20250323",
	}))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if c.TopN != 25 || c.UseBrowser || c.StoreDriver != "mysql" {
		t.Fatalf("env not applied: %+v", c)
	}
	if len(c.CityCodes) != 2 || c.CityCodes[0] != "antalya-1" || c.CityCodes[1] != "izmir-2" {
		t.Fatalf("unexpected cities: %v", c.CityCodes)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("unexpected validation err: %v", err)
	}
}

func TestMergeEnv_BadNumber(t *testing.T) {
	c := Defaults()
	err := c.mergeEnv(env(map[string]string{"TOP_N": "ten"}))
	if !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"zero top n", func(c *Config) { c.TopN = 0 }, ErrInvalidTopN},
		{"negative top n", func(c *Config) { c.TopN = -3 }, ErrInvalidTopN},
		{"workers", func(c *Config) { c.NormalizeWorkers = 0 }, ErrInvalidWorkers},
		{"rate", func(c *Config) { c.CollectRPS = 0 }, ErrInvalidRate},
		{"store", func(c *Config) { c.StoreDriver = "postgres" }, ErrUnknownStore},
		{"dsn", func(c *Config) { c.StoreDriver = "mysql"; c.MySQLDSN = "" }, ErrMissingDSN},
		{"sqlite", func(c *Config) { c.SQLitePath = "" }, ErrMissingSQLite},
		{"cities", func(c *Config) { c.CityCodes = nil }, ErrNoCities},
		{"adults", func(c *Config) { c.Adults = 0 }, ErrInvalidAdults},
		{"scroll", func(c *Config) { c.ScrollAttempts = 0 }, ErrInvalidScroll},
		{"only checkin", func(c *Config) { c.Checkin = "20250321" }, ErrInvalidDates},
		{"reversed dates", func(c *Config) { c.Checkin, c.Checkout = "20250323", "20250321" }, ErrInvalidDates},
		{"schedule", func(c *Config) { c.ScrapeSchedule = "every tuesday" }, ErrInvalidSchedule},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := Defaults()
			tc.mutate(&c)
			if err := c.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	c := Defaults()
	c.ScrapeSchedule = "0 6 * * 1"
	if err := c.Validate(); err != nil {
		t.Fatalf("valid schedule rejected: %v", err)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
top_n: 50
city_codes: ["antalya-250-1-2", "izmir-250-2-2"]
store_driver: sqlite
sqlite_path: /tmp/hv.db
cache_ttl_seconds: 60
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("TOP_N", "20")

	c, err := Load()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if c.TopN != 20 {
		t.Fatalf("env should win over file, got top_n=%d", c.TopN)
	}
	if len(c.CityCodes) != 2 || c.SQLitePath != "/tmp/hv.db" {
		t.Fatalf("file not applied: %+v", c)
	}
	if c.CacheTTL().Seconds() != 60 {
		t.Fatalf("unexpected ttl %s", c.CacheTTL())
	}
	if c.Adults != 2 {
		t.Fatalf("defaults should survive the file, adults=%d", c.Adults)
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("top_n: [1"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)
	if _, err := Load(); err == nil {
		t.Fatalf("expected a parse error")
	}
}
