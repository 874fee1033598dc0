package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv loads ./.env when present (without overriding variables that are
// already set) and then applies the process environment to config.
//
// Recognised variables:
//
//	PORT, DATABASE_URL, ACCESS_TOKEN_SECRET, REFRESH_TOKEN_SECRET,
//	ACCESS_TOKEN_EXPIRY, REFRESH_TOKEN_EXPIRY, CORS_ORIGIN, BODY_LIMIT,
//	MAX_UPLOAD_SIZE, STATIC_DIR, COOKIE_SECURE, S3_ROOT_USER,
//	S3_ROOT_PASSWORD, S3_BUCKET, S3_REGION, S3_BASE_ENDPOINT,
//	S3_PUBLIC_BASE_URL, REDIS_ADDR, RATE_LIMIT_PER_SECOND, RATE_LIMIT_BURST,
//	SHUTDOWN_TIMEOUT, LOG_LEVEL
//
// Values that fail to parse are ignored and the previous value is kept.
func parseEnv(config *Config) {
	_ = godotenv.Load()
	applyEnv(config, os.LookupEnv)
}

func applyEnv(config *Config, lookup func(string) (string, bool)) {
	e := envReader{lookup: lookup}

	if port := e.String("PORT", ""); port != "" {
		if !strings.Contains(port, ":") {
			port = ":" + port
		}
		config.EndpointAddrHTTP = port
	}
	config.DatabaseDSN = e.String("DATABASE_URL", config.DatabaseDSN)
	config.AccessTokenSecret = e.String("ACCESS_TOKEN_SECRET", config.AccessTokenSecret)
	config.RefreshTokenSecret = e.String("REFRESH_TOKEN_SECRET", config.RefreshTokenSecret)
	config.AccessTokenValidityDuration = e.Duration("ACCESS_TOKEN_EXPIRY", config.AccessTokenValidityDuration)
	config.RefreshTokenValidityDuration = e.Duration("REFRESH_TOKEN_EXPIRY", config.RefreshTokenValidityDuration)
	config.CORSOrigin = e.String("CORS_ORIGIN", config.CORSOrigin)
	config.BodyLimit = e.String("BODY_LIMIT", config.BodyLimit)
	config.MaxUploadSize = int64(e.Int("MAX_UPLOAD_SIZE", int(config.MaxUploadSize)))
	config.StaticDir = e.String("STATIC_DIR", config.StaticDir)
	config.CookieSecure = e.Bool("COOKIE_SECURE", config.CookieSecure)
	config.S3RootUser = e.String("S3_ROOT_USER", config.S3RootUser)
	config.S3RootPassword = e.String("S3_ROOT_PASSWORD", config.S3RootPassword)
	config.S3Bucket = e.String("S3_BUCKET", config.S3Bucket)
	config.S3Region = e.String("S3_REGION", config.S3Region)
	config.S3BaseEndpoint = e.String("S3_BASE_ENDPOINT", config.S3BaseEndpoint)
	config.S3PublicBaseURL = e.String("S3_PUBLIC_BASE_URL", config.S3PublicBaseURL)
	config.RedisAddr = e.String("REDIS_ADDR", config.RedisAddr)
	config.RateLimitPerSecond = e.Float("RATE_LIMIT_PER_SECOND", config.RateLimitPerSecond)
	config.RateLimitBurst = e.Int("RATE_LIMIT_BURST", config.RateLimitBurst)
	config.ShutdownTimeout = e.Duration("SHUTDOWN_TIMEOUT", config.ShutdownTimeout)
	config.LogLevel = e.String("LOG_LEVEL", config.LogLevel)
}

type envReader struct {
	lookup func(string) (string, bool)
}

func (e envReader) value(key string) (string, bool) {
	v, ok := e.lookup(key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// String gets environment variable as string with default value
func (e envReader) String(key, defaultValue string) string {
	if v, ok := e.value(key); ok {
		return v
	}
	return defaultValue
}

// Int gets environment variable as int with default value
func (e envReader) Int(key string, defaultValue int) int {
	if v, ok := e.value(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultValue
}

// Float gets environment variable as float64 with default value
func (e envReader) Float(key string, defaultValue float64) float64 {
	if v, ok := e.value(key); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// Bool gets environment variable as bool with default value
func (e envReader) Bool(key string, defaultValue bool) bool {
	if v, ok := e.value(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}

// Duration gets environment variable as duration with default value.
// A bare integer is read as seconds, "1d"-style day suffixes as 24h.
func (e envReader) Duration(key string, defaultValue time.Duration) time.Duration {
	v, ok := e.value(key)
	if !ok {
		return defaultValue
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	if days, ok := strings.CutSuffix(v, "d"); ok {
		if n, err := strconv.Atoi(days); err == nil {
			return time.Duration(n) * 24 * time.Hour
		}
	}
	return defaultValue
}
