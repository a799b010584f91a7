package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"gallery/internal/requestip"
)

type Config struct {
	ServerAddr      string        `yaml:"server_addr"`
	DatabasePath    string        `yaml:"database_path"`
	DataDir         string        `yaml:"data_dir"`
	ThumbnailWidth  int           `yaml:"thumbnail_width"`
	ThumbnailHeight int           `yaml:"thumbnail_height"`
	ImageQuality    int           `yaml:"image_quality"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes"`
	JanitorInterval time.Duration `yaml:"janitor_interval"`
	// APIKeyHash is a bcrypt hash of the key mutating requests must send.
	// Empty disables the check.
	APIKeyHash string `yaml:"api_key_hash"`
	// RateLimitPerMinute caps mutating requests per client address.
	RateLimitPerMinute int `yaml:"rate_limit_per_minute"`
	// TrustedProxyCIDRs lists proxies whose X-Forwarded-For is honored.
	TrustedProxyCIDRs string `yaml:"trusted_proxy_cidrs"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		ServerAddr:         ":8080",
		DatabasePath:       "./data/gallery.db",
		DataDir:            "./data",
		ThumbnailWidth:     300,
		ThumbnailHeight:    300,
		ImageQuality:       85,
		MaxUploadBytes:     50 << 20,
		JanitorInterval:    10 * time.Minute,
		RateLimitPerMinute: 120,
	}
}

// Load returns the defaults overridden by environment variables.
func Load() *Config {
	cfg := Default()
	cfg.applyEnv()
	return cfg
}

// FromFile reads a YAML file over the defaults, then applies environment
// overrides so deployments can patch single values.
func FromFile(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.applyEnv()
	return cfg, cfg.Validate()
}

// Resolve uses the file named by CONFIG_FILE when set, the environment
// otherwise.
func Resolve() (*Config, error) {
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		return FromFile(path)
	}
	cfg := Load()
	return cfg, cfg.Validate()
}

// Validate checks that values are usable.
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("database_path is required")
	}
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if c.ThumbnailWidth <= 0 || c.ThumbnailHeight <= 0 {
		return fmt.Errorf("thumbnail size must be > 0, got %dx%d", c.ThumbnailWidth, c.ThumbnailHeight)
	}
	if c.ImageQuality < 1 || c.ImageQuality > 100 {
		return fmt.Errorf("image_quality must be 1-100, got %d", c.ImageQuality)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be > 0")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("rate_limit_per_minute must be > 0, got %d", c.RateLimitPerMinute)
	}
	if _, err := requestip.NewResolver(c.TrustedProxyCIDRs); err != nil {
		return fmt.Errorf("trusted_proxy_cidrs: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.ServerAddr = getEnv("SERVER_ADDR", c.ServerAddr)
	c.DatabasePath = getEnv("DATABASE_PATH", c.DatabasePath)
	c.DataDir = getEnv("DATA_DIR", c.DataDir)
	c.ThumbnailWidth = getEnvInt("THUMBNAIL_WIDTH", c.ThumbnailWidth)
	c.ThumbnailHeight = getEnvInt("THUMBNAIL_HEIGHT", c.ThumbnailHeight)
	c.ImageQuality = getEnvInt("IMAGE_QUALITY", c.ImageQuality)
	c.MaxUploadBytes = int64(getEnvInt("MAX_UPLOAD_BYTES", int(c.MaxUploadBytes)))
	c.JanitorInterval = getEnvDuration("JANITOR_INTERVAL", c.JanitorInterval)
	c.APIKeyHash = getEnv("API_KEY_HASH", c.APIKeyHash)
	c.RateLimitPerMinute = getEnvInt("RATE_LIMIT_PER_MINUTE", c.RateLimitPerMinute)
	c.TrustedProxyCIDRs = getEnv("TRUSTED_PROXY_CIDRS", c.TrustedProxyCIDRs)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Config: ignoring %s=%q: %v", key, value, err)
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Config: ignoring %s=%q: %v", key, value, err)
		return defaultValue
	}
	return d
}
