package config

import (
	"fmt"
	"strconv"
	"time"
)

// field одна настройка, задаваемая строкой из окружения или флага
type field struct {
	env   string
	flag  string
	usage string
	set   func(c *Config, v string) error
}

func str(dst func(c *Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error {
		*dst(c) = v
		return nil
	}
}

func integer(dst func(c *Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("must be an integer, got %q", v)
		}
		*dst(c) = n
		return nil
	}
}

func duration(dst func(c *Config) *time.Duration) func(*Config, string) error {
	return func(c *Config, v string) error {
		d, err := parseDuration(v)
		if err != nil {
			return err
		}
		*dst(c) = d
		return nil
	}
}

var fields = []field{
	{env: "BUDGET_ADDR", flag: "a", usage: "HTTP listen address", set: str(func(c *Config) *string { return &c.Addr })},
	{env: "BUDGET_DRIVER", flag: "driver", usage: "storage driver: sqlite or postgres", set: str(func(c *Config) *string { return &c.Driver })},
	{env: "BUDGET_DSN", flag: "d", usage: "database DSN or SQLite file path", set: str(func(c *Config) *string { return &c.DSN })},
	{env: "BUDGET_JWT_SECRET", flag: "jwt-secret", usage: "HMAC secret for bearer tokens", set: str(func(c *Config) *string { return &c.JWTSecret })},
	{env: "BUDGET_JWT_ISSUER", flag: "jwt-issuer", usage: "token issuer", set: str(func(c *Config) *string { return &c.JWTIssuer })},
	{env: "BUDGET_JWT_AUDIENCE", flag: "jwt-audience", usage: "token audience", set: str(func(c *Config) *string { return &c.JWTAudience })},
	{env: "BUDGET_JWT_EXPIRY_MINUTES", flag: "jwt-expiry", usage: "token lifetime in minutes", set: integer(func(c *Config) *int { return &c.JWTExpiryMinutes })},
	{env: "BUDGET_CLEANUP_INTERVAL", flag: "cleanup-interval", usage: "revoked token cleanup interval", set: duration(func(c *Config) *time.Duration { return &c.CleanupInterval })},
	{env: "BUDGET_RATE_LIMIT", flag: "rate-limit", usage: "auth requests per window per client", set: integer(func(c *Config) *int { return &c.RateLimit })},
	{env: "BUDGET_RATE_WINDOW", flag: "rate-window", usage: "rate limit window", set: duration(func(c *Config) *time.Duration { return &c.RateWindow })},
	{env: "BUDGET_SHUTDOWN_TIMEOUT", flag: "shutdown-timeout", usage: "graceful shutdown timeout", set: duration(func(c *Config) *time.Duration { return &c.ShutdownTimeout })},
	{env: "BUDGET_PUBLIC_URL", flag: "public-url", usage: "public base URL for activation links", set: str(func(c *Config) *string { return &c.PublicURL })},
	{env: "BUDGET_LOG_LEVEL", flag: "log-level", usage: "debug, info, warn or error", set: str(func(c *Config) *string { return &c.LogLevel })},
	{env: "BUDGET_LOG_FORMAT", flag: "log-format", usage: "json or text", set: str(func(c *Config) *string { return &c.LogFormat })},
	{env: "BUDGET_SMTP_HOST", flag: "smtp-host", usage: "SMTP host; empty logs mail instead", set: str(func(c *Config) *string { return &c.SMTP.Host })},
	{env: "BUDGET_SMTP_PORT", flag: "smtp-port", usage: "SMTP port", set: integer(func(c *Config) *int { return &c.SMTP.Port })},
	{env: "BUDGET_SMTP_USERNAME", flag: "smtp-user", usage: "SMTP username", set: str(func(c *Config) *string { return &c.SMTP.Username })},
	{env: "BUDGET_SMTP_PASSWORD", flag: "smtp-password", usage: "SMTP password", set: str(func(c *Config) *string { return &c.SMTP.Password })},
	{env: "BUDGET_SMTP_FROM", flag: "smtp-from", usage: "sender address", set: str(func(c *Config) *string { return &c.SMTP.From })},
	{env: "BUDGET_S3_ENDPOINT", flag: "s3-endpoint", usage: "S3 endpoint URL", set: str(func(c *Config) *string { return &c.S3.Endpoint })},
	{env: "BUDGET_S3_REGION", flag: "s3-region", usage: "S3 region", set: str(func(c *Config) *string { return &c.S3.Region })},
	{env: "BUDGET_S3_BUCKET", flag: "s3-bucket", usage: "S3 bucket; empty disables export", set: str(func(c *Config) *string { return &c.S3.Bucket })},
	{env: "BUDGET_S3_ACCESS_KEY", flag: "s3-access-key", usage: "S3 access key", set: str(func(c *Config) *string { return &c.S3.AccessKey })},
	{env: "BUDGET_S3_SECRET_KEY", flag: "s3-secret-key", usage: "S3 secret key", set: str(func(c *Config) *string { return &c.S3.SecretKey })},
	{env: "BUDGET_S3_URL_EXPIRY", flag: "s3-url-expiry", usage: "presigned URL lifetime", set: duration(func(c *Config) *time.Duration { return &c.S3.URLExpiry })},
}

// applyEnv применяет значения переменных BUDGET_*
func applyEnv(c *Config, lookup func(string) (string, bool)) error {
	for _, f := range fields {
		v, ok := lookup(f.env)
		if !ok || v == "" {
			continue
		}
		if err := f.set(c, v); err != nil {
			return fmt.Errorf("%s: %w", f.env, err)
		}
	}
	return nil
}
