package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gallery/internal/config"
)

func TestLoad_WithEnvVars(t *testing.T) {
	t.Setenv("SERVER_ADDR", ":9999")
	t.Setenv("DATABASE_PATH", "./tmp/db.sqlite")
	t.Setenv("DATA_DIR", "./tmp/data")
	t.Setenv("THUMBNAIL_WIDTH", "128")
	t.Setenv("JANITOR_INTERVAL", "90s")

	cfg := config.Load()
	if cfg.ServerAddr != ":9999" {
		t.Fatalf("expected SERVER_ADDR :9999, got %s", cfg.ServerAddr)
	}
	if cfg.DatabasePath != "./tmp/db.sqlite" {
		t.Fatalf("expected DATABASE_PATH ./tmp/db.sqlite, got %s", cfg.DatabasePath)
	}
	if cfg.DataDir != "./tmp/data" {
		t.Fatalf("expected DATA_DIR ./tmp/data, got %s", cfg.DataDir)
	}
	if cfg.ThumbnailWidth != 128 {
		t.Fatalf("expected THUMBNAIL_WIDTH 128, got %d", cfg.ThumbnailWidth)
	}
	if cfg.JanitorInterval != 90*time.Second {
		t.Fatalf("expected JANITOR_INTERVAL 90s, got %s", cfg.JanitorInterval)
	}
}

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"SERVER_ADDR", "DATABASE_PATH", "DATA_DIR", "IMAGE_QUALITY", "API_KEY_HASH"} {
		t.Setenv(k, "")
	}

	cfg := config.Load()
	if cfg.ServerAddr == "" || cfg.DatabasePath == "" || cfg.DataDir == "" {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
	if cfg.ImageQuality != 85 {
		t.Fatalf("expected default quality 85, got %d", cfg.ImageQuality)
	}
	if cfg.APIKeyHash != "" {
		t.Fatalf("expected auth disabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestLoad_BadNumberKeepsDefault(t *testing.T) {
	t.Setenv("IMAGE_QUALITY", "high")
	t.Setenv("JANITOR_INTERVAL", "often")
	cfg := config.Load()
	if cfg.ImageQuality != 85 || cfg.JanitorInterval != 10*time.Minute {
		t.Fatalf("invalid values should fall back to defaults, got %d %s", cfg.ImageQuality, cfg.JanitorInterval)
	}
}

func TestFromFile(t *testing.T) {
	t.Setenv("DATA_DIR", "")
	t.Setenv("SERVER_ADDR", ":7000")

	path := filepath.Join(t.TempDir(), "gallery.yaml")
	body := `
data_dir: /srv/gallery
thumbnail_width: 200
thumbnail_height: 150
image_quality: 70
janitor_interval: 5m
server_addr: ":1234"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.FromFile(path)
	if err != nil {
		t.Fatalf("FromFile: %v", err)
	}
	if cfg.DataDir != "/srv/gallery" || cfg.ThumbnailWidth != 200 || cfg.ThumbnailHeight != 150 || cfg.ImageQuality != 70 {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.JanitorInterval != 5*time.Minute {
		t.Fatalf("expected 5m interval, got %s", cfg.JanitorInterval)
	}
	if cfg.ServerAddr != ":7000" {
		t.Fatalf("environment should override the file, got %s", cfg.ServerAddr)
	}
	if cfg.DatabasePath == "" {
		t.Fatalf("unset keys should keep defaults")
	}
}

func TestFromFile_Invalid(t *testing.T) {
	dir := t.TempDir()
	if _, err := config.FromFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("image_quality: 500\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("IMAGE_QUALITY", "")
	if _, err := config.FromFile(bad); err == nil {
		t.Fatalf("expected validation error for quality 500")
	}
}

func TestResolve_UsesConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	if err := os.WriteFile(path, []byte("thumbnail_width: 64\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("THUMBNAIL_WIDTH", "")

	cfg, err := config.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.ThumbnailWidth != 64 {
		t.Fatalf("expected width from file, got %d", cfg.ThumbnailWidth)
	}
}

func TestValidate_TrustedProxyCIDRs(t *testing.T) {
	cfg := config.Default()
	cfg.TrustedProxyCIDRs = "10.0.0.0/8, 172.16.0.0/12"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid CIDRs rejected: %v", err)
	}
	cfg.TrustedProxyCIDRs = "10.0.0.0/33"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid CIDR")
	}
}

func TestValidate_RateLimit(t *testing.T) {
	cfg := config.Default()
	if cfg.RateLimitPerMinute != 120 {
		t.Fatalf("expected default rate limit 120, got %d", cfg.RateLimitPerMinute)
	}
	cfg.RateLimitPerMinute = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero rate limit")
	}
}
