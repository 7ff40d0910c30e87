package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"ANGOFACT_APP_NAME":                os.Getenv("ANGOFACT_APP_NAME"),
		"ANGOFACT_APP_ENV":                 os.Getenv("ANGOFACT_APP_ENV"),
		"ANGOFACT_APP_PORT":                os.Getenv("ANGOFACT_APP_PORT"),
		"ANGOFACT_DATABASE_HOST":           os.Getenv("ANGOFACT_DATABASE_HOST"),
		"ANGOFACT_DATABASE_PORT":           os.Getenv("ANGOFACT_DATABASE_PORT"),
		"ANGOFACT_DATABASE_USER":           os.Getenv("ANGOFACT_DATABASE_USER"),
		"ANGOFACT_DATABASE_PASSWORD":       os.Getenv("ANGOFACT_DATABASE_PASSWORD"),
		"ANGOFACT_DATABASE_DBNAME":         os.Getenv("ANGOFACT_DATABASE_DBNAME"),
		"ANGOFACT_DATABASE_SSLMODE":        os.Getenv("ANGOFACT_DATABASE_SSLMODE"),
		"ANGOFACT_DATABASE_MAX_OPEN_CONNS": os.Getenv("ANGOFACT_DATABASE_MAX_OPEN_CONNS"),
		"ANGOFACT_DATABASE_MAX_IDLE_CONNS": os.Getenv("ANGOFACT_DATABASE_MAX_IDLE_CONNS"),
		"ANGOFACT_BILLING_FISCAL_YEAR":     os.Getenv("ANGOFACT_BILLING_FISCAL_YEAR"),
		"ANGOFACT_IDEMPOTENCY_ENABLED":     os.Getenv("ANGOFACT_IDEMPOTENCY_ENABLED"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "angofact-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "postgres", cfg.Database.User)
		assert.Equal(t, "", cfg.Database.Password)
		assert.Equal(t, "angofact", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, "AOA", cfg.Billing.DefaultCurrency)
		assert.Equal(t, time.Now().Year(), cfg.Billing.FiscalYear)
		assert.True(t, cfg.Idempotency.Enabled)
		assert.Equal(t, 24*time.Hour, cfg.Idempotency.TTL)
	})

	t.Run("loads values from environment variables with ANGOFACT prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("ANGOFACT_APP_NAME", "test-app")
		os.Setenv("ANGOFACT_APP_ENV", "testing")
		os.Setenv("ANGOFACT_APP_PORT", "9000")
		os.Setenv("ANGOFACT_DATABASE_HOST", "testdb.local")
		os.Setenv("ANGOFACT_DATABASE_PORT", "5433")
		os.Setenv("ANGOFACT_DATABASE_USER", "testuser")
		os.Setenv("ANGOFACT_DATABASE_PASSWORD", "testpass")
		os.Setenv("ANGOFACT_DATABASE_DBNAME", "testdb")
		os.Setenv("ANGOFACT_DATABASE_SSLMODE", "require")
		os.Setenv("ANGOFACT_DATABASE_MAX_OPEN_CONNS", "50")
		os.Setenv("ANGOFACT_DATABASE_MAX_IDLE_CONNS", "10")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "testing", cfg.App.Env)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "testuser", cfg.Database.User)
		assert.Equal(t, "testpass", cfg.Database.Password)
		assert.Equal(t, "testdb", cfg.Database.DBName)
		assert.Equal(t, "require", cfg.Database.SSLMode)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv()
		os.Setenv("ANGOFACT_DATABASE_MAX_OPEN_CONNS", "10")
		os.Setenv("ANGOFACT_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("zero MaxOpenConns uses default", func(t *testing.T) {
		clearEnv()
		os.Setenv("ANGOFACT_DATABASE_MAX_OPEN_CONNS", "0")

		cfg, err := Load()
		require.NoError(t, err)
		// 0 is treated as "not set", so default (25) is used
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	})

	t.Run("validates MaxIdleConns cannot be negative", func(t *testing.T) {
		clearEnv()
		os.Setenv("ANGOFACT_DATABASE_MAX_IDLE_CONNS", "-1")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns cannot be negative")
	})

	t.Run("validates fiscal year range", func(t *testing.T) {
		clearEnv()
		os.Setenv("ANGOFACT_BILLING_FISCAL_YEAR", "1987")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "fiscal_year")
	})

	t.Run("idempotency can be disabled explicitly", func(t *testing.T) {
		clearEnv()
		os.Setenv("ANGOFACT_IDEMPOTENCY_ENABLED", "false")

		cfg, err := Load()
		require.NoError(t, err)
		assert.False(t, cfg.Idempotency.Enabled)
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	originalEnv := map[string]string{
		"ANGOFACT_APP_ENV":           os.Getenv("ANGOFACT_APP_ENV"),
		"ANGOFACT_DATABASE_PASSWORD": os.Getenv("ANGOFACT_DATABASE_PASSWORD"),
		"ANGOFACT_DATABASE_SSLMODE":  os.Getenv("ANGOFACT_DATABASE_SSLMODE"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("requires database.password in production", func(t *testing.T) {
		clearEnv()
		os.Setenv("ANGOFACT_APP_ENV", "production")
		os.Setenv("ANGOFACT_DATABASE_SSLMODE", "require")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("requires SSL enabled in production", func(t *testing.T) {
		clearEnv()
		os.Setenv("ANGOFACT_APP_ENV", "production")
		os.Setenv("ANGOFACT_DATABASE_PASSWORD", "secure-password")
		os.Setenv("ANGOFACT_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.sslmode cannot be 'disable' in production")
	})

	t.Run("passes validation with valid production config", func(t *testing.T) {
		clearEnv()
		os.Setenv("ANGOFACT_APP_ENV", "production")
		os.Setenv("ANGOFACT_DATABASE_PASSWORD", "secure-password")
		os.Setenv("ANGOFACT_DATABASE_SSLMODE", "require")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "testuser",
			Password: "testpass",
			DBName:   "testdb",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost")
		assert.Contains(t, dsn, "5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "db",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		// URL-encoded password should be in the DSN
		assert.Contains(t, dsn, "pass%40word%23123")
	})

	t.Run("handles empty password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "",
			DBName:   "db",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.NotEmpty(t, dsn)
	})
}
