package brandkit

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/gommon/log"
	"gopkg.in/yaml.v3"

	"github.com/eringen/brandkit/record"
	"github.com/eringen/brandkit/record/s3store"
)

// Record store backends.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
	BackendS3     = "s3"
)

// Config holds all configuration for a brandkit server.
type Config struct {
	Name string `yaml:"name"` // Shown in the admin header (default "brandkit")
	Addr string `yaml:"addr"` // Listen address (default ":3000")

	Backend      string         `yaml:"backend"`       // sqlite, memory or s3 (default sqlite)
	DatabasePath string         `yaml:"database_path"` // SQLite path (default "data/brandkit.db")
	S3           s3store.Config `yaml:"s3"`

	AdminPassword string `yaml:"admin_password"` // Required: admin login password
	SessionSecret string `yaml:"session_secret"` // Required: session encryption secret
	CookieSecure  bool   `yaml:"cookie_secure"`  // Set true for HTTPS

	PresentationCacheTTL time.Duration `yaml:"presentation_cache_ttl"` // default 1m
	HeroCandidates       []string      `yaml:"hero_candidates"`
	MaxUploadSize        int64         `yaml:"max_upload_size"` // bytes per file (default 10MB)
	LogLevel             string        `yaml:"log_level"`       // debug, info, warn, error (default info)
}

func (c *Config) setDefaults() {
	if c.Name == "" {
		c.Name = "brandkit"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.Backend == "" {
		c.Backend = BackendSQLite
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/brandkit.db"
	}
	if c.S3.Prefix == "" {
		c.S3.Prefix = "brandkit"
	}
	if c.PresentationCacheTTL == 0 {
		c.PresentationCacheTTL = time.Minute
	}
	if c.MaxUploadSize == 0 {
		c.MaxUploadSize = 10 << 20
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// DefaultConfig returns a Config with every default filled in.
func DefaultConfig() Config {
	var c Config
	c.setDefaults()
	return c
}

// Validate reports settings the server cannot start without.
func (c Config) Validate() error {
	if c.AdminPassword == "" {
		return errors.New("brandkit: AdminPassword is required")
	}
	if c.SessionSecret == "" {
		return errors.New("brandkit: SessionSecret is required")
	}
	switch c.Backend {
	case BackendSQLite, BackendMemory:
	case BackendS3:
		if c.S3.Bucket == "" {
			return errors.New("brandkit: s3 backend needs a bucket")
		}
	default:
		return fmt.Errorf("brandkit: unknown backend %q", c.Backend)
	}
	return nil
}

// LoadConfig reads the YAML file at path, when path is not empty, and then
// applies BRANDKIT_* environment variables on top.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("BRANDKIT_NAME", &c.Name)
	str("BRANDKIT_ADDR", &c.Addr)
	str("BRANDKIT_BACKEND", &c.Backend)
	str("BRANDKIT_DATABASE_PATH", &c.DatabasePath)
	str("BRANDKIT_S3_BUCKET", &c.S3.Bucket)
	str("BRANDKIT_S3_REGION", &c.S3.Region)
	str("BRANDKIT_S3_PREFIX", &c.S3.Prefix)
	str("BRANDKIT_S3_ENDPOINT", &c.S3.Endpoint)
	str("AWS_ACCESS_KEY_ID", &c.S3.AccessKeyID)
	str("AWS_SECRET_ACCESS_KEY", &c.S3.SecretAccessKey)
	str("BRANDKIT_ADMIN_PASSWORD", &c.AdminPassword)
	str("BRANDKIT_SESSION_SECRET", &c.SessionSecret)
	str("BRANDKIT_LOG_LEVEL", &c.LogLevel)

	if v, ok := lookup("BRANDKIT_COOKIE_SECURE"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("BRANDKIT_COOKIE_SECURE: %w", err)
		}
		c.CookieSecure = b
	}
	if v, ok := lookup("BRANDKIT_CACHE_TTL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("BRANDKIT_CACHE_TTL: %w", err)
		}
		c.PresentationCacheTTL = d
	}
	if v, ok := lookup("BRANDKIT_MAX_UPLOAD_SIZE"); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("BRANDKIT_MAX_UPLOAD_SIZE: %w", err)
		}
		c.MaxUploadSize = n
	}
	if v, ok := lookup("BRANDKIT_HERO_CANDIDATES"); ok && v != "" {
		c.HeroCandidates = FilterEmpty(strings.Split(v, ","))
	}
	return nil
}

func (c Config) logLevel() log.Lvl {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return log.DEBUG
	case "warn":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	}
	return log.INFO
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory served under /public (default "public").
// Hero candidate images usually live there.
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithStore uses store instead of opening the configured backend.
func WithStore(store record.Store) Option {
	return func(a *App) {
		a.Store = store
	}
}

// WithViews replaces the built-in admin pages.
func WithViews(v ViewFuncs) Option {
	return func(a *App) {
		a.Views = v
	}
}
