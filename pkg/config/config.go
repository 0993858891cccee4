package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "maison"

	AppEnvDev  = "development"
	AppEnvProd = "production"
)

type Config struct {
	App       AppConfig
	Backend   BackendConfig
	Redis     RedisConfig
	Razorpay  RazorpayConfig
	Cookies   CookieConfig
	Checkout  CheckoutConfig
	RateLimit RateLimitConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Redis.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Razorpay.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MAISON_APP_ENV" required:"true"`
	Port         string `envconfig:"MAISON_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"MAISON_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MAISON_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type BackendConfig struct {
	BaseURL        string        `envconfig:"MAISON_BACKEND_BASE_URL" default:"http://localhost:8080"`
	Timeout        time.Duration `envconfig:"MAISON_BACKEND_TIMEOUT" default:"10s"`
	MaxRetries     int           `envconfig:"MAISON_BACKEND_MAX_RETRIES" default:"3"`
	RetryWaitMin   time.Duration `envconfig:"MAISON_BACKEND_RETRY_WAIT_MIN" default:"250ms"`
	RetryWaitMax   time.Duration `envconfig:"MAISON_BACKEND_RETRY_WAIT_MAX" default:"2s"`
	BreakerTimeout time.Duration `envconfig:"MAISON_BACKEND_BREAKER_TIMEOUT" default:"30s"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MAISON_REDIS_URL"`
	Address      string        `envconfig:"MAISON_REDIS_ADDR"`
	Password     string        `envconfig:"MAISON_REDIS_PASSWORD"`
	DB           int           `envconfig:"MAISON_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MAISON_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MAISON_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MAISON_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MAISON_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MAISON_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) validate() error {
	if strings.TrimSpace(r.URL) == "" && strings.TrimSpace(r.Address) == "" {
		return fmt.Errorf("either MAISON_REDIS_URL or MAISON_REDIS_ADDR is required")
	}
	return nil
}

type RazorpayConfig struct {
	KeyID     string        `envconfig:"MAISON_RAZORPAY_KEY_ID"`
	KeySecret string        `envconfig:"MAISON_RAZORPAY_KEY_SECRET"`
	Currency  string        `envconfig:"MAISON_RAZORPAY_CURRENCY" default:"INR"`
	Timeout   time.Duration `envconfig:"MAISON_RAZORPAY_TIMEOUT" default:"15s"`
}

func (r RazorpayConfig) validate() error {
	if (r.KeyID == "") != (r.KeySecret == "") {
		return fmt.Errorf("razorpay key id and secret must be set together")
	}
	return nil
}

// Enabled reports whether gateway credentials were provided.
func (r RazorpayConfig) Enabled() bool {
	return r.KeyID != "" && r.KeySecret != ""
}

type CookieConfig struct {
	TTL    time.Duration `envconfig:"MAISON_COOKIE_TTL" default:"720h"`
	Domain string        `envconfig:"MAISON_COOKIE_DOMAIN"`
}

type CheckoutConfig struct {
	AttemptTTL time.Duration `envconfig:"MAISON_CHECKOUT_ATTEMPT_TTL" default:"30m"`
}

type RateLimitConfig struct {
	CheckoutWindow  time.Duration `envconfig:"MAISON_RATE_LIMIT_CHECKOUT_WINDOW" default:"1m"`
	CheckoutIPLimit int           `envconfig:"MAISON_RATE_LIMIT_CHECKOUT_IP_LIMIT" default:"10"`
}
