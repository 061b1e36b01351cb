package config

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var managedEnv = []string{
	"AGENCY_APP_NAME",
	"AGENCY_APP_ENV",
	"AGENCY_APP_PORT",
	"AGENCY_DATABASE_HOST",
	"AGENCY_DATABASE_PORT",
	"AGENCY_DATABASE_PASSWORD",
	"AGENCY_DATABASE_SSLMODE",
	"AGENCY_DATABASE_MAX_OPEN_CONNS",
	"AGENCY_DATABASE_MAX_IDLE_CONNS",
	"AGENCY_JWT_SECRET",
	"AGENCY_STORAGE_DRIVER",
	"AGENCY_STORAGE_BUCKET",
	"AGENCY_CACHE_REDIS_L2",
	"AGENCY_REDIS_ENABLED",
	"AGENCY_SETTINGS_ENCRYPTION_KEY",
	"AGENCY_TELEMETRY_SAMPLING_RATIO",
	"AGENCY_TELEMETRY_PROFILING_ENABLED",
	"AGENCY_TELEMETRY_PROFILING_SERVER_ADDRESS",
	"AGENCY_HTTP_CORS_ALLOW_ORIGINS",
}

// withCleanEnv clears the managed variables and restores them afterwards
func withCleanEnv(t *testing.T) {
	t.Helper()
	saved := map[string]string{}
	for _, k := range managedEnv {
		if v, ok := os.LookupEnv(k); ok {
			saved[k] = v
		}
		os.Unsetenv(k)
	}
	t.Cleanup(func() {
		for _, k := range managedEnv {
			if v, ok := saved[k]; ok {
				os.Setenv(k, v)
			} else {
				os.Unsetenv(k)
			}
		}
	})
}

func validProductionEnv(t *testing.T) {
	t.Setenv("AGENCY_APP_ENV", "production")
	t.Setenv("AGENCY_JWT_SECRET", strings.Repeat("s", 32))
	t.Setenv("AGENCY_DATABASE_PASSWORD", "secret")
	t.Setenv("AGENCY_DATABASE_SSLMODE", "require")
	t.Setenv("AGENCY_SETTINGS_ENCRYPTION_KEY", strings.Repeat("ab", 32))
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		withCleanEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "agencydesk", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "agencydesk", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, "user-files", cfg.Storage.Bucket)
		assert.Equal(t, 5*time.Minute, cfg.Cache.UserDataTTL)
		assert.Equal(t, time.Minute, cfg.Cache.AnalyticsTTL)
		assert.Equal(t, time.Hour, cfg.Scheduler.OverdueSweepInterval)
		assert.Equal(t, "https://sandbox.plaid.com", cfg.Integrations.Plaid.BaseURL)
		assert.Equal(t, "https://api.xero.com", cfg.Integrations.Xero.APIBaseURL)
		assert.False(t, cfg.Telemetry.Profiling.Enabled)
		assert.Equal(t, "agencydesk", cfg.Telemetry.Profiling.ApplicationName)
		assert.Contains(t, cfg.Telemetry.Profiling.ProfileTypes, "cpu")
		assert.False(t, cfg.IsProduction())
	})

	t.Run("loads values from environment variables with AGENCY prefix", func(t *testing.T) {
		withCleanEnv(t)
		t.Setenv("AGENCY_APP_NAME", "test-app")
		t.Setenv("AGENCY_APP_PORT", "9000")
		t.Setenv("AGENCY_DATABASE_HOST", "db.local")
		t.Setenv("AGENCY_DATABASE_PORT", "5433")
		t.Setenv("AGENCY_STORAGE_DRIVER", "memory")
		t.Setenv("AGENCY_STORAGE_BUCKET", "other")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "db.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "memory", cfg.Storage.Driver)
		assert.Equal(t, "other", cfg.Storage.Bucket)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		withCleanEnv(t)
		t.Setenv("AGENCY_DATABASE_MAX_OPEN_CONNS", "5")
		t.Setenv("AGENCY_DATABASE_MAX_IDLE_CONNS", "10")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
	})

	t.Run("rejects unknown storage driver", func(t *testing.T) {
		withCleanEnv(t)
		t.Setenv("AGENCY_STORAGE_DRIVER", "ftp")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("redis L2 requires redis", func(t *testing.T) {
		withCleanEnv(t)
		t.Setenv("AGENCY_CACHE_REDIS_L2", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "redis")
	})

	t.Run("profiling requires a server address", func(t *testing.T) {
		withCleanEnv(t)
		t.Setenv("AGENCY_TELEMETRY_PROFILING_ENABLED", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "telemetry.profiling.server_address")

		t.Setenv("AGENCY_TELEMETRY_PROFILING_SERVER_ADDRESS", "http://pyroscope:4040")
		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.Telemetry.Profiling.Enabled)
	})

	t.Run("rejects sampling ratio above one", func(t *testing.T) {
		withCleanEnv(t)
		t.Setenv("AGENCY_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := Load()
		assert.Error(t, err)
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	t.Run("passes validation with valid production config", func(t *testing.T) {
		withCleanEnv(t)
		validProductionEnv(t)

		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.IsProduction())
	})

	cases := []struct {
		name    string
		key     string
		value   string
		wantErr string
	}{
		{"requires jwt.secret", "AGENCY_JWT_SECRET", "", "jwt.secret"},
		{"requires long jwt.secret", "AGENCY_JWT_SECRET", "short", "32 characters"},
		{"requires database.password", "AGENCY_DATABASE_PASSWORD", "", "database.password"},
		{"requires SSL", "AGENCY_DATABASE_SSLMODE", "disable", "sslmode"},
		{"rejects wildcard CORS", "AGENCY_HTTP_CORS_ALLOW_ORIGINS", "*", "cors_allow_origins"},
		{"rejects memory storage", "AGENCY_STORAGE_DRIVER", "memory", "storage.driver"},
		{"requires encryption key", "AGENCY_SETTINGS_ENCRYPTION_KEY", "", "encryption_key"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			withCleanEnv(t)
			validProductionEnv(t)
			t.Setenv(tc.key, tc.value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "pw", DBName: "agencydesk", SSLMode: "disable"}
		assert.Equal(t, "postgres://postgres:pw@localhost:5432/agencydesk?sslmode=disable", cfg.DSN())
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{Host: "localhost", Port: 5432, User: "postgres", Password: "p@ss/word", DBName: "db", SSLMode: "require"}
		dsn := cfg.DSN()
		assert.Contains(t, dsn, "p%40ss%2Fword")
		assert.Contains(t, dsn, "sslmode=require")
	})
}

func TestRedisConfig_Addr(t *testing.T) {
	r := RedisConfig{Host: "cache", Port: 6380}
	assert.Equal(t, "cache:6380", r.Addr())
}
