package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func lookupFrom(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestApplyEnv(t *testing.T) {
	var c Config
	c.LoadDefaults()

	applyEnv(&c, lookupFrom(map[string]string{
		"PORT":                  "8080",
		"DATABASE_URL":          "postgres://env/vidtube",
		"ACCESS_TOKEN_SECRET":   "a",
		"REFRESH_TOKEN_SECRET":  "r",
		"ACCESS_TOKEN_EXPIRY":   "1d",
		"REFRESH_TOKEN_EXPIRY":  "10d",
		"CORS_ORIGIN":           "https://vidtube.example",
		"COOKIE_SECURE":         "false",
		"S3_BUCKET":             "uploads",
		"REDIS_ADDR":            "redis:6379",
		"RATE_LIMIT_PER_SECOND": "2.5",
		"RATE_LIMIT_BURST":      "4",
		"SHUTDOWN_TIMEOUT":      "30",
	}))

	assert.Equal(t, ":8080", c.EndpointAddrHTTP)
	assert.Equal(t, "postgres://env/vidtube", c.DatabaseDSN)
	assert.Equal(t, "a", c.AccessTokenSecret)
	assert.Equal(t, "r", c.RefreshTokenSecret)
	assert.Equal(t, 24*time.Hour, c.AccessTokenValidityDuration)
	assert.Equal(t, 240*time.Hour, c.RefreshTokenValidityDuration)
	assert.Equal(t, "https://vidtube.example", c.CORSOrigin)
	assert.False(t, c.CookieSecure)
	assert.Equal(t, "uploads", c.S3Bucket)
	assert.Equal(t, "redis:6379", c.RedisAddr)
	assert.Equal(t, 2.5, c.RateLimitPerSecond)
	assert.Equal(t, 4, c.RateLimitBurst)
	assert.Equal(t, 30*time.Second, c.ShutdownTimeout)
}

func TestApplyEnv_InvalidValuesKeepPrevious(t *testing.T) {
	var c Config
	c.LoadDefaults()

	applyEnv(&c, lookupFrom(map[string]string{
		"PORT":                "",
		"ACCESS_TOKEN_EXPIRY": "soon",
		"COOKIE_SECURE":       "maybe",
		"RATE_LIMIT_BURST":    "many",
	}))

	assert.Equal(t, ":8000", c.EndpointAddrHTTP)
	assert.Equal(t, 24*time.Hour, c.AccessTokenValidityDuration)
	assert.True(t, c.CookieSecure)
	assert.Equal(t, 10, c.RateLimitBurst)
}

func TestApplyEnv_PortWithHost(t *testing.T) {
	var c Config
	applyEnv(&c, lookupFrom(map[string]string{"PORT": "127.0.0.1:8001"}))
	assert.Equal(t, "127.0.0.1:8001", c.EndpointAddrHTTP)
}
