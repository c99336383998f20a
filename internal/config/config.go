package config

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	ListenAddr string `yaml:"listen_addr"`
	BaseURL    string `yaml:"base_url"`

	// Timezone is the IANA zone grid days are computed in. Empty means the host zone.
	Timezone string `yaml:"timezone"`

	Session struct {
		Secret      string        `yaml:"secret"`
		IdleTimeout time.Duration `yaml:"idle_timeout"`
		// Sweep is a cron spec for removing idle sessions, e.g. "@every 5m".
		Sweep string `yaml:"sweep"`
		// MaxSessions caps live sessions; the least recently used is evicted.
		MaxSessions int `yaml:"max_sessions"`
	} `yaml:"session"`

	Log struct {
		Level       string `yaml:"level"`
		Development bool   `yaml:"development"`
	} `yaml:"log"`

	Grid struct {
		// DayColumnWidth is the pixel width assumed before the page reports one.
		DayColumnWidth float64 `yaml:"day_column_width"`
	} `yaml:"grid"`

	RateLimit struct {
		RPS   float64 `yaml:"rps"`
		Burst int     `yaml:"burst"`
	} `yaml:"rate_limit"`

	PrometheusEnabled bool     `yaml:"prometheus_enabled"`
	TrustedProxies    []string `yaml:"trusted_proxies"`

	// GeneratedSecret is set when no session secret was configured and a
	// random one was created for this process.
	GeneratedSecret bool `yaml:"-"`

	loc *time.Location
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	cfg := &Config{
		ListenAddr: ":8080",
		BaseURL:    "http://localhost:8080",
	}
	cfg.Session.IdleTimeout = 2 * time.Hour
	cfg.Session.Sweep = "@every 5m"
	cfg.Session.MaxSessions = 10000
	cfg.Log.Level = "info"
	cfg.Grid.DayColumnWidth = 100
	cfg.RateLimit.RPS = 60
	cfg.RateLimit.Burst = 120
	return cfg
}

// Load builds the configuration from defaults, an optional YAML file, a .env
// file in the working directory and APP_* environment variables, in that order.
// An empty path falls back to APP_CONFIG_FILE; a missing file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if path == "" {
		path = os.Getenv("APP_CONFIG_FILE")
	}
	if path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.Normalize()

	if cfg.Session.Secret == "" {
		secret, err := randomSecret()
		if err != nil {
			return nil, fmt.Errorf("generate session secret: %w", err)
		}
		cfg.Session.Secret = secret
		cfg.GeneratedSecret = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.ListenAddr = getenvDefault("APP_LISTEN_ADDR", c.ListenAddr)
	c.BaseURL = getenvDefault("APP_BASE_URL", c.BaseURL)
	c.Timezone = getenvDefault("APP_TIMEZONE", c.Timezone)
	c.Session.Secret = getenvDefault("APP_SESSION_SECRET", c.Session.Secret)
	c.Session.Sweep = getenvDefault("APP_SESSION_SWEEP", c.Session.Sweep)
	c.Log.Level = getenvDefault("APP_LOG_LEVEL", c.Log.Level)
	c.Log.Development = getenvBool("APP_LOG_DEVELOPMENT", c.Log.Development)
	c.PrometheusEnabled = getenvBool("APP_PROMETHEUS_ENDPOINT_ENABLED", c.PrometheusEnabled)
	if proxies := getenvList("APP_TRUSTED_PROXIES"); proxies != nil {
		c.TrustedProxies = proxies
	}

	if v := os.Getenv("APP_SESSION_IDLE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("APP_SESSION_IDLE_TIMEOUT: %w", err)
		}
		c.Session.IdleTimeout = d
	}
	if v := os.Getenv("APP_SESSION_MAX"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("APP_SESSION_MAX: %w", err)
		}
		c.Session.MaxSessions = n
	}
	if v := os.Getenv("APP_DAY_COLUMN_WIDTH"); v != "" {
		w, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("APP_DAY_COLUMN_WIDTH: %w", err)
		}
		c.Grid.DayColumnWidth = w
	}
	if v := os.Getenv("APP_RATE_LIMIT"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("APP_RATE_LIMIT: %w", err)
		}
		c.RateLimit.RPS = rps
	}
	if v := os.Getenv("APP_RATE_BURST"); v != "" {
		burst, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("APP_RATE_BURST: %w", err)
		}
		c.RateLimit.Burst = burst
	}
	return nil
}

// Normalize replaces zero or nonsensical values with defaults.
func (c *Config) Normalize() {
	def := DefaultConfig()
	if c.ListenAddr == "" {
		c.ListenAddr = def.ListenAddr
	}
	if c.BaseURL == "" {
		c.BaseURL = def.BaseURL
	}
	if c.Session.IdleTimeout <= 0 {
		c.Session.IdleTimeout = def.Session.IdleTimeout
	}
	if strings.TrimSpace(c.Session.Sweep) == "" {
		c.Session.Sweep = def.Session.Sweep
	}
	if c.Session.MaxSessions <= 0 {
		c.Session.MaxSessions = def.Session.MaxSessions
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Grid.DayColumnWidth <= 0 {
		c.Grid.DayColumnWidth = def.Grid.DayColumnWidth
	}
	if c.RateLimit.RPS <= 0 {
		c.RateLimit.RPS = def.RateLimit.RPS
	}
	if c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = def.RateLimit.Burst
	}
}

// Validate checks values that cannot be defaulted and resolves the timezone.
func (c *Config) Validate() error {
	if len(c.Session.Secret) < 32 {
		return fmt.Errorf("APP_SESSION_SECRET must be at least 32 characters long (got %d)", len(c.Session.Secret))
	}
	loc := time.Local
	if c.Timezone != "" {
		l, err := time.LoadLocation(c.Timezone)
		if err != nil {
			return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
		}
		loc = l
	}
	c.loc = loc
	return nil
}

// Location returns the zone grid days are computed in.
func (c *Config) Location() *time.Location {
	if c.loc == nil {
		return time.Local
	}
	return c.loc
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(v) {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return def
}

func getenvList(key string) []string {
	if v := os.Getenv(key); v != "" {
		var result []string
		for _, item := range strings.Split(v, ",") {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return nil
}
