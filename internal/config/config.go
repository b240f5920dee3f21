package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// RefreshTokenTTL is fixed: refresh tokens always live 7 days.
const RefreshTokenTTL = 7 * 24 * time.Hour

// Config is built once at startup and treated as immutable. Components
// receive it (or the fields they need) through constructors, never through
// ambient globals.
type Config struct {
	Profile  string
	HTTPAddr string

	DatabaseURL string

	JWTSecret      string
	AccessTokenTTL time.Duration

	LoginRateLimitRPM int
	RedisAddr         string

	OTELServiceName           string
	OTELEnvironment           string
	OTELExporterOTLPEndpoint  string
	OTELExporterOTLPInsecure  bool
	OTELMetricsEnabled        bool
	OTELTracingEnabled        bool
	OTELLogsEnabled           bool
	OTELMetricsExportInterval time.Duration
}

func Load(ctx context.Context) (*Config, error) {
	if path := os.Getenv("ENV_FILE"); path != "" {
		if err := LoadEnvFile(path); err != nil {
			recordConfigValidationEvent(ctx, os.Getenv("APP_PROFILE"), "failure", "load")
			return nil, fmt.Errorf("load env file: %w", err)
		}
	}

	cfg := &Config{
		Profile:                   getEnv("APP_PROFILE", "dev"),
		HTTPAddr:                  getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:               os.Getenv("DATABASE_URL"),
		JWTSecret:                 os.Getenv("JWT_SECRET"),
		RedisAddr:                 os.Getenv("REDIS_ADDR"),
		OTELServiceName:           getEnv("OTEL_SERVICE_NAME", "blogging-platform-api"),
		OTELEnvironment:           getEnv("OTEL_ENVIRONMENT", "dev"),
		OTELExporterOTLPEndpoint:  getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTELExporterOTLPInsecure:  getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		OTELMetricsEnabled:        getEnvBool("OTEL_METRICS_ENABLED", false),
		OTELTracingEnabled:        getEnvBool("OTEL_TRACING_ENABLED", false),
		OTELLogsEnabled:           getEnvBool("OTEL_LOGS_ENABLED", false),
		OTELMetricsExportInterval: 30 * time.Second,
	}

	accessMinutes, err := getEnvInt("ACCESS_TOKEN_TTL_MINUTES", 30)
	if err != nil {
		recordConfigValidationEvent(ctx, cfg.Profile, "failure", "parse")
		return nil, fmt.Errorf("parse ACCESS_TOKEN_TTL_MINUTES: %w", err)
	}
	cfg.AccessTokenTTL = time.Duration(accessMinutes) * time.Minute

	cfg.LoginRateLimitRPM, err = getEnvInt("LOGIN_RATE_LIMIT_RPM", 10)
	if err != nil {
		recordConfigValidationEvent(ctx, cfg.Profile, "failure", "parse")
		return nil, fmt.Errorf("parse LOGIN_RATE_LIMIT_RPM: %w", err)
	}

	if err := cfg.validate(); err != nil {
		recordConfigValidationEvent(ctx, cfg.Profile, "failure", "validation")
		return nil, fmt.Errorf("validate config: %w", err)
	}
	recordConfigValidationEvent(ctx, cfg.Profile, "success", "none")
	return cfg, nil
}

func (c *Config) validate() error {
	var problems []string
	if c.JWTSecret == "" {
		problems = append(problems, "JWT_SECRET is required")
	}
	if c.DatabaseURL == "" {
		problems = append(problems, "DATABASE_URL is required")
	}
	if c.AccessTokenTTL <= 0 {
		problems = append(problems, "ACCESS_TOKEN_TTL_MINUTES must be positive")
	}
	if c.LoginRateLimitRPM <= 0 {
		problems = append(problems, "LOGIN_RATE_LIMIT_RPM must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%s", strings.Join(problems, "; "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
