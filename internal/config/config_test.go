package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "dev-secret")

	cfg := Load()

	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "8090", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.True(t, cfg.DBAutoMigrate)
	assert.Equal(t, 168*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 10, cfg.CoverRateLimit)
	assert.False(t, cfg.CoversEnabled())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "dev-secret")
	t.Setenv("DB_DRIVER", "pgx")
	t.Setenv("DB_AUTO_MIGRATE", "false")
	t.Setenv("JWT_EXPIRY", "1h")
	t.Setenv("COVER_RATE_LIMIT", "3")
	t.Setenv("S3_BUCKET", "covers")
	t.Setenv("LOG_LEVEL", "warn")

	cfg := Load()

	assert.Equal(t, "pgx", cfg.DBDriver)
	assert.False(t, cfg.DBAutoMigrate)
	assert.Equal(t, time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 3, cfg.CoverRateLimit)
	assert.True(t, cfg.CoversEnabled())
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestEnvHelpers_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("TEST_INT", "many")
	t.Setenv("TEST_BOOL", "maybe")
	t.Setenv("TEST_DURATION", "soon")

	assert.Equal(t, 7, envInt("TEST_INT", 7))
	assert.True(t, envBool("TEST_BOOL", true))
	assert.Equal(t, time.Minute, envDuration("TEST_DURATION", time.Minute))
	assert.Equal(t, "fallback", envString("TEST_UNSET_STRING", "fallback"))
}

func TestValidateProduction(t *testing.T) {
	t.Parallel()

	err := validateProduction(&Config{JWTSecret: "short", DBDriver: "sqlite"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")

	err = validateProduction(&Config{JWTSecret: "0123456789abcdef0123456789abcdef", DBDriver: "sqlite", DBConnection: ":memory:"})
	assert.Error(t, err)

	err = validateProduction(&Config{JWTSecret: "0123456789abcdef0123456789abcdef", DBDriver: "pgx", DBConnection: "postgres://db/goals"})
	assert.NoError(t, err)
}
