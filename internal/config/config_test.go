package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("TABLE_PREFIX", "")
	t.Setenv("MAX_CHUNK_BYTES", "")
	t.Setenv("TENANT_CACHE_TTL", "")

	cfg := Load()
	if cfg.Environment != "dev" {
		t.Errorf("expected dev environment, got %q", cfg.Environment)
	}
	if cfg.TablePrefix != "dev_" {
		t.Errorf("expected dev_ prefix, got %q", cfg.TablePrefix)
	}
	if cfg.MaxChunkBytes != DefaultMaxChunkBytes {
		t.Errorf("expected default chunk limit, got %d", cfg.MaxChunkBytes)
	}
	if cfg.TenantCacheTTL != 5*time.Minute {
		t.Errorf("expected 5m tenant ttl, got %v", cfg.TenantCacheTTL)
	}
	if cfg.AuthCookie != "token" {
		t.Errorf("expected token cookie, got %q", cfg.AuthCookie)
	}
}

func TestTablePrefix(t *testing.T) {
	tests := []struct {
		env      string
		override string
		want     string
	}{
		{"prod", "", "prod_"},
		{"test", "", "test_"},
		{"staging", "", "dev_"},
		{"prod", "custom_", "custom_"},
	}

	for _, tt := range tests {
		t.Run(tt.env+"/"+tt.override, func(t *testing.T) {
			t.Setenv("TABLE_PREFIX", tt.override)
			if got := getTablePrefix(tt.env); got != tt.want {
				t.Errorf("getTablePrefix(%q) = %q, want %q", tt.env, got, tt.want)
			}
		})
	}
}

func TestInvalidNumbersFallBack(t *testing.T) {
	t.Setenv("MAX_CHUNK_BYTES", "lots")
	t.Setenv("TENANT_CACHE_TTL", "soon")

	cfg := Load()
	if cfg.MaxChunkBytes != DefaultMaxChunkBytes {
		t.Errorf("expected fallback chunk limit, got %d", cfg.MaxChunkBytes)
	}
	if cfg.TenantCacheTTL != 5*time.Minute {
		t.Errorf("expected fallback ttl, got %v", cfg.TenantCacheTTL)
	}
}
