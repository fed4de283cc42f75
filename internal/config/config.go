package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server        ServerConfig        `envconfig:"SERVER"`
	Redis         RedisConfig         `envconfig:"REDIS"`
	JWT           JWTConfig           `envconfig:"JWT"`
	DynamoDB      DynamoDBConfig      `envconfig:"DYNAMODB"`
	Backend       BackendConfig       `envconfig:"BACKEND"`
	Session       SessionConfig       `envconfig:"SESSION"`
	Rating        RatingConfig        `envconfig:"RATING"`
	Analytics     AnalyticsConfig     `envconfig:"ANALYTICS"`
	RateLimit     RateLimitConfig     `envconfig:"RATE_LIMIT"`
	Observability ObservabilityConfig `envconfig:"OBSERVABILITY"`
	CORS          CORSConfig          `envconfig:"CORS"`
	Log           LogConfig           `envconfig:"LOG"`
	AWS           AWSConfig           `envconfig:"AWS"`
}

type AWSConfig struct {
	Region     string `envconfig:"REGION" default:"ap-northeast-2"`
	Profile    string `envconfig:"PROFILE" default:""`
	SecretName string `envconfig:"SECRET_NAME" default:""`
}

type ServerConfig struct {
	Port         string        `envconfig:"PORT" default:"8000"`
	Environment  string        `envconfig:"ENVIRONMENT" default:"development"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"30s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"30s"`
	IdleTimeout  time.Duration `envconfig:"IDLE_TIMEOUT" default:"120s"`
}

type RedisConfig struct {
	Enabled             bool          `envconfig:"ENABLED" default:"true"`
	Address             string        `envconfig:"ADDRESS" default:"localhost:6379"`
	Password            string        `envconfig:"PASSWORD" default:""`
	Database            int           `envconfig:"DATABASE" default:"0"`
	MaxRetries          int           `envconfig:"MAX_RETRIES" default:"3"`
	PoolSize            int           `envconfig:"POOL_SIZE" default:"100"`
	PoolTimeout         time.Duration `envconfig:"POOL_TIMEOUT" default:"4s"`
	MinIdleConns        int           `envconfig:"MIN_IDLE_CONNS" default:"10"`
	MaxConnAge          time.Duration `envconfig:"MAX_CONN_AGE" default:"30m"`
	TLSEnabled          bool          `envconfig:"TLS_ENABLED" default:"false"`
	PasswordFromSecrets bool          `envconfig:"PASSWORD_FROM_SECRETS" default:"false"`
}

// JWTConfig controls how the gateway reads bearer tokens issued by the backend.
// The gateway never issues tokens; without a JWKS endpoint it only decodes the expiry.
type JWTConfig struct {
	JWKSEndpoint string        `envconfig:"JWKS_ENDPOINT" required:"false"`
	CacheTTL     time.Duration `envconfig:"CACHE_TTL" default:"10m"`
	Issuer       string        `envconfig:"ISSUER" required:"false"`
	Audience     string        `envconfig:"AUDIENCE" required:"false"`
}

type DynamoDBConfig struct {
	RatingsTableName string `envconfig:"RATINGS_TABLE_NAME" default:"photobook-rating-ledger"`
	Region           string `envconfig:"REGION" default:"ap-northeast-2"`
	Endpoint         string `envconfig:"ENDPOINT" default:""`
}

type BackendConfig struct {
	BaseURL          string        `envconfig:"BASE_URL" default:"http://localhost:5000/api"`
	Timeout          time.Duration `envconfig:"TIMEOUT" default:"5s"`
	BreakerFailures  int           `envconfig:"BREAKER_FAILURES" default:"5"`
	BreakerResetTime time.Duration `envconfig:"BREAKER_RESET_TIME" default:"10s"`
}

type SessionConfig struct {
	Store      string        `envconfig:"STORE" default:"redis"` // redis or memory
	CookieName string        `envconfig:"COOKIE_NAME" default:"photobook_sid"`
	TTL        time.Duration `envconfig:"TTL" default:"168h"`
	Secure     bool          `envconfig:"SECURE" default:"false"`
}

type RatingConfig struct {
	Ledger string `envconfig:"LEDGER" default:"dynamodb"` // dynamodb, redis or memory
}

type AnalyticsConfig struct {
	TopN int `envconfig:"TOP_N" default:"5"`
}

type RateLimitConfig struct {
	RPS         int           `envconfig:"RPS" default:"50"`
	Burst       int           `envconfig:"BURST" default:"100"`
	WindowSize  time.Duration `envconfig:"WINDOW_SIZE" default:"1s"`
	Enabled     bool          `envconfig:"ENABLED" default:"true"`
	ExemptPaths []string      `envconfig:"EXEMPT_PATHS" default:"/healthz,/readyz,/metrics"`
}

type ObservabilityConfig struct {
	MetricsPath    string  `envconfig:"METRICS_PATH" default:"/metrics"`
	OTLPEndpoint   string  `envconfig:"OTLP_ENDPOINT" default:"http://localhost:4318"`
	TraceExporter  string  `envconfig:"TRACE_EXPORTER" default:"otlp"` // otlp or stdout
	TracingEnabled bool    `envconfig:"TRACING_ENABLED" default:"true"`
	SampleRate     float64 `envconfig:"SAMPLE_RATE" default:"0.1"`
}

type CORSConfig struct {
	AllowOrigins string `envconfig:"ALLOW_ORIGINS" default:"http://localhost:3000"`
}

type LogConfig struct {
	Level  string `envconfig:"LEVEL" default:"info"`
	Format string `envconfig:"FORMAT" default:"json"`
}

func Load() (*Config, error) {
	var cfg Config

	// Load from environment variables
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	// Additional processing for slice fields that envconfig doesn't handle well
	if exemptPaths := os.Getenv("RATE_LIMIT_EXEMPT_PATHS"); exemptPaths != "" {
		cfg.RateLimit.ExemptPaths = splitList(exemptPaths)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func validateConfig(cfg *Config) error {
	if port, err := strconv.Atoi(cfg.Server.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid server port: %s", cfg.Server.Port)
	}

	if cfg.Observability.SampleRate < 0 || cfg.Observability.SampleRate > 1 {
		return fmt.Errorf("invalid tracing sample rate: %f", cfg.Observability.SampleRate)
	}

	switch cfg.Observability.TraceExporter {
	case "otlp", "stdout":
	default:
		return fmt.Errorf("invalid trace exporter: %s", cfg.Observability.TraceExporter)
	}

	u, err := url.Parse(cfg.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid backend base url: %s", cfg.Backend.BaseURL)
	}

	switch cfg.Session.Store {
	case "redis", "memory":
	default:
		return fmt.Errorf("invalid session store: %s", cfg.Session.Store)
	}

	switch cfg.Rating.Ledger {
	case "dynamodb", "redis", "memory":
	default:
		return fmt.Errorf("invalid rating ledger: %s", cfg.Rating.Ledger)
	}

	// Redis-backed components cannot run with Redis switched off
	if !cfg.Redis.Enabled && (cfg.Session.Store == "redis" || cfg.Rating.Ledger == "redis") {
		return fmt.Errorf("redis is disabled but session store %q / rating ledger %q require it", cfg.Session.Store, cfg.Rating.Ledger)
	}

	if cfg.Analytics.TopN < 1 {
		return fmt.Errorf("invalid analytics top-n: %d", cfg.Analytics.TopN)
	}

	return nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
