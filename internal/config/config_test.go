package config

import (
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(NewViper())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.StoreDriver != "sqlite" || cfg.StorePath != "appraiser.db" {
		t.Errorf("unexpected store defaults %+v", cfg)
	}
	if cfg.ArchiveKey != "heritage_archive" {
		t.Errorf("expected default archive key, got %q", cfg.ArchiveKey)
	}
	if cfg.ImageMaxWidth != 1024 || cfg.ImageQuality != 75 {
		t.Errorf("unexpected image defaults %d/%d", cfg.ImageMaxWidth, cfg.ImageQuality)
	}
	if cfg.ShopifyAPIVersion != "2025-01" {
		t.Errorf("unexpected api version %q", cfg.ShopifyAPIVersion)
	}
	if cfg.ShopifyConfigured() {
		t.Errorf("shopify must not be configured by default")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("APPRAISER_STORE_DRIVER", "redis")
	t.Setenv("APPRAISER_REDIS_ADDR", "cache:6379")
	t.Setenv("APPRAISER_IMAGE_QUALITY", "90")
	t.Setenv("APPRAISER_SHOPIFY_DOMAIN", "bijoux.myshopify.com")
	t.Setenv("APPRAISER_SHOPIFY_TOKEN", "shpat_x")

	cfg, err := Load(NewViper())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.StoreDriver != "redis" || cfg.RedisAddr != "cache:6379" {
		t.Errorf("unexpected store config %+v", cfg)
	}
	if cfg.ImageQuality != 90 {
		t.Errorf("expected quality 90, got %d", cfg.ImageQuality)
	}
	if !cfg.ShopifyConfigured() {
		t.Errorf("expected shopify to be configured")
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   any
		wantErr string
	}{
		{name: "unknown driver", key: "store.driver", value: "postgres", wantErr: "store.driver"},
		{name: "empty sqlite path", key: "store.path", value: " ", wantErr: "store.path"},
		{name: "zero width", key: "image.max_width", value: 0, wantErr: "image.max_width"},
		{name: "quality too high", key: "image.quality", value: 101, wantErr: "image.quality"},
		{name: "no workers", key: "image.workers", value: 0, wantErr: "image.workers"},
		{name: "empty archive key", key: "archive.key", value: "", wantErr: "archive.key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewViper()
			v.Set(tt.key, tt.value)
			_, err := Load(v)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}
