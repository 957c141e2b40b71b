package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(orig) })

	for _, key := range []string{
		"PORT", "APP_ENV", "DB_DRIVER", "POSTGRES_HOST", "REDIS_ADDR", "JOIN_RATE_LIMIT",
		"STREAM_PROVIDER", "PROVISION_LOCK_TTL", "DISCONNECT_ON_SUBMIT", "RECORDING_SWEEP_ENABLED",
		"CLOUDFLARE_ACCOUNT_ID", "CLOUDFLARE_API_TOKEN", "CLOUDFLARE_API_BASE_URL", "CLOUDFLARE_TIMEOUT",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	return dir
}

func TestLoadConfig_Defaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Fatalf("expected port 8080, got %s", cfg.Port)
	}
	if cfg.DBDriver != "postgres" {
		t.Fatalf("expected postgres driver, got %s", cfg.DBDriver)
	}
	if cfg.ProvisionLockTTL != 30*time.Second {
		t.Fatalf("expected 30s lock ttl, got %v", cfg.ProvisionLockTTL)
	}
	if cfg.RecordingSweepEnabled {
		t.Fatal("recording sweep should be disabled by default")
	}
	if cfg.Cloudflare.BaseURL != "https://api.cloudflare.com/client/v4" {
		t.Fatalf("unexpected cloudflare base url %s", cfg.Cloudflare.BaseURL)
	}
	if cfg.IsDevelopment() {
		t.Fatal("default environment should be production")
	}
}

func TestLoadConfig_Environment(t *testing.T) {
	chdirTemp(t)
	t.Setenv("PORT", "9000")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("CLOUDFLARE_ACCOUNT_ID", "acct")
	t.Setenv("CLOUDFLARE_API_TOKEN", "token")
	t.Setenv("CLOUDFLARE_TIMEOUT", "5s")
	t.Setenv("DISCONNECT_ON_SUBMIT", "true")
	t.Setenv("POSTGRES_HOST", "db")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if cfg.Port != "9000" || cfg.DBDriver != "sqlite" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Cloudflare.AccountID != "acct" || cfg.Cloudflare.APIToken != "token" {
		t.Fatalf("cloudflare credentials not loaded: %+v", cfg.Cloudflare)
	}
	if cfg.Cloudflare.Timeout != 5*time.Second {
		t.Fatalf("expected 5s timeout, got %v", cfg.Cloudflare.Timeout)
	}
	if !cfg.DisconnectOnSubmit {
		t.Fatal("expected disconnect on submit")
	}
	if cfg.Postgres.Host != "db" {
		t.Fatalf("expected postgres host db, got %s", cfg.Postgres.Host)
	}
}

func TestLoadConfig_DotEnvFile(t *testing.T) {
	dir := chdirTemp(t)
	content := "CLOUDFLARE_ACCOUNT_ID=from-file\nJOIN_RATE_LIMIT=5\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.Cloudflare.AccountID != "from-file" {
		t.Fatalf("expected account id from .env, got %q", cfg.Cloudflare.AccountID)
	}
	if cfg.JoinRateLimit != 5 {
		t.Fatalf("expected join rate limit 5, got %d", cfg.JoinRateLimit)
	}
}

func TestLoadConfig_UnsupportedDriver(t *testing.T) {
	chdirTemp(t)
	t.Setenv("DB_DRIVER", "mysql")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestLoadConfig_UnsupportedProvider(t *testing.T) {
	chdirTemp(t)
	t.Setenv("STREAM_PROVIDER", "mux")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for unsupported provider")
	}
}

func TestLoadConfig_LockTTLMustExceedProviderTimeout(t *testing.T) {
	chdirTemp(t)
	t.Setenv("CLOUDFLARE_TIMEOUT", "45s")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error when the provider timeout outlasts the lock ttl")
	}

	t.Setenv("PROVISION_LOCK_TTL", "45s")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error when the lock ttl equals the provider timeout")
	}

	t.Setenv("PROVISION_LOCK_TTL", "60s")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.ProvisionLockTTL != time.Minute {
		t.Fatalf("expected 1m lock ttl, got %v", cfg.ProvisionLockTTL)
	}
}

func TestPostgresDSN(t *testing.T) {
	p := Postgres{Host: "h", User: "u", Password: "p", DB: "d", Port: "1", SSLMode: "disable"}
	want := "host=h user=u password=p dbname=d port=1 sslmode=disable"
	if got := p.DSN(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
