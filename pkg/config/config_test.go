package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Success(t *testing.T) {
	setMinimalEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.App.Env != "production" {
		t.Fatalf("expected App.Env to be production, got %q", cfg.App.Env)
	}

	if cfg.Redis.URL != "redis://localhost:6379/0" {
		t.Fatalf("unexpected Redis URL: %q", cfg.Redis.URL)
	}

	if got := cfg.Cookies.TTL; got != 720*time.Hour {
		t.Fatalf("expected cookie TTL 720h, got %v", got)
	}

	if got := cfg.Checkout.AttemptTTL; got != 30*time.Minute {
		t.Fatalf("expected attempt TTL 30m, got %v", got)
	}

	if cfg.Backend.BaseURL != "http://localhost:9000" {
		t.Fatalf("unexpected backend base url %q", cfg.Backend.BaseURL)
	}

	if cfg.Razorpay.Currency != "INR" {
		t.Fatalf("expected default currency INR, got %q", cfg.Razorpay.Currency)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv("MAISON_APP_ENV"); err != nil {
		t.Fatalf("failed to unset MAISON_APP_ENV: %v", err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected missing required env to return an error")
	}
}

func TestLoad_RedisAddressWithoutURL(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv("MAISON_REDIS_URL"); err != nil {
		t.Fatalf("failed to unset MAISON_REDIS_URL: %v", err)
	}
	t.Setenv("MAISON_REDIS_ADDR", "localhost:6379")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if cfg.Redis.Address != "localhost:6379" {
		t.Fatalf("unexpected Redis address %q", cfg.Redis.Address)
	}
}

func TestLoad_RedisConnectionRequired(t *testing.T) {
	setMinimalEnv(t)
	if err := os.Unsetenv("MAISON_REDIS_URL"); err != nil {
		t.Fatalf("failed to unset MAISON_REDIS_URL: %v", err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("expected error when neither redis url nor address is set")
	}
}

func TestLoad_RazorpayCredentialsMustPair(t *testing.T) {
	setMinimalEnv(t)
	t.Setenv("MAISON_RAZORPAY_KEY_ID", "rzp_test_abc")
	t.Setenv("MAISON_RAZORPAY_KEY_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when only key id is set")
	}
}

func TestAppConfigEnvHelpers(t *testing.T) {
	dev := AppConfig{Env: "Development"}
	if !dev.IsDev() || dev.IsProd() {
		t.Fatalf("expected development env helpers to match case-insensitively")
	}

	prod := AppConfig{Env: "PRODUCTION"}
	if !prod.IsProd() || prod.IsDev() {
		t.Fatalf("expected production env helpers to match case-insensitively")
	}
}

func TestRazorpayEnabled(t *testing.T) {
	if (RazorpayConfig{}).Enabled() {
		t.Fatal("empty credentials should not be enabled")
	}
	if !(RazorpayConfig{KeyID: "k", KeySecret: "s"}).Enabled() {
		t.Fatal("paired credentials should be enabled")
	}
}

func setMinimalEnv(t *testing.T) {
	t.Helper()

	t.Setenv("MAISON_APP_ENV", "production")
	t.Setenv("MAISON_APP_PORT", "8081")
	t.Setenv("MAISON_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("MAISON_BACKEND_BASE_URL", "http://localhost:9000")
	t.Setenv("MAISON_RAZORPAY_KEY_ID", "rzp_test_abc")
	t.Setenv("MAISON_RAZORPAY_KEY_SECRET", "shhh")
}
