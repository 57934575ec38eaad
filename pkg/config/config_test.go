package config

import (
	"os"
	"testing"
	"time"
)

// unsetenv clears keys for the duration of the test
func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		if prev, ok := os.LookupEnv(key); ok {
			os.Unsetenv(key)
			t.Cleanup(func() { os.Setenv(key, prev) })
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	unsetenv(t, "ASSET_STORE", "LOCALES", "DEFAULT_LOCALE", "ENVIRONMENT",
		"RENDERER_TIMEOUT", "RENDERER_LAUNCH_ATTEMPTS", "REPORT_ATTRIBUTION")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Storage.Type != "fs" {
		t.Fatalf("default asset store = %q", cfg.Storage.Type)
	}
	if cfg.Renderer.Timeout != 60*time.Second {
		t.Fatalf("default renderer timeout = %v", cfg.Renderer.Timeout)
	}
	if len(cfg.Report.Locales) != 2 || cfg.Report.Locales[1] != "fa" {
		t.Fatalf("default locales = %v", cfg.Report.Locales)
	}
	if cfg.Report.Attribution != "Powered by Rasha Press" {
		t.Fatalf("default attribution = %q", cfg.Report.Attribution)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ASSET_STORE", "minio")
	t.Setenv("RENDERER_TIMEOUT", "5s")
	t.Setenv("LOCALES", "fa,en,ar")
	t.Setenv("DEFAULT_LOCALE", "fa")
	t.Setenv("REDIS_ENABLED", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Storage.Type != "minio" || cfg.Renderer.Timeout != 5*time.Second {
		t.Fatalf("overrides not applied: %+v %+v", cfg.Storage, cfg.Renderer)
	}
	if !cfg.Redis.Enabled || cfg.Report.DefaultLocale != "fa" || len(cfg.Report.Locales) != 3 {
		t.Fatalf("overrides not applied: %+v %+v", cfg.Redis, cfg.Report)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Environment: "development"},
			JWT:      JWTConfig{AccessSecret: devAccessSecret},
			Storage:  StorageConfig{Type: "fs"},
			Renderer: RendererConfig{LaunchAttempts: 1},
			Report:   ReportConfig{Locales: []string{"en"}, DefaultLocale: "en"},
		}
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	prod := valid()
	prod.Server.Environment = "production"
	if err := prod.Validate(); err == nil {
		t.Fatal("placeholder secret must be rejected in production")
	}
	prod.JWT.AccessSecret = "s3cret"
	if err := prod.Validate(); err != nil {
		t.Fatalf("production with secret rejected: %v", err)
	}

	store := valid()
	store.Storage.Type = "s3"
	if err := store.Validate(); err == nil {
		t.Fatal("unknown asset store must be rejected")
	}

	loc := valid()
	loc.Report.DefaultLocale = "fa"
	if err := loc.Validate(); err == nil {
		t.Fatal("default locale outside the list must be rejected")
	}
}
