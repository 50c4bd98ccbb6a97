package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, EnvProduction, cfg.App.Env)
	assert.False(t, cfg.App.IsDevelopment(), "error details stay hidden unless development is explicit")
	assert.Equal(t, "3000", cfg.App.HTTPPort)
	assert.Equal(t, 10, cfg.App.ShutdownTimeoutSeconds)
	assert.Equal(t, DriverMongo, cfg.Store.Driver)
	assert.Equal(t, "mongodb://localhost:27017/ts_backend", cfg.Mongo.URI)
	assert.Equal(t, "users", cfg.Mongo.Collection)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 300, cfg.Redis.CacheTTL)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Format)
	assert.Equal(t, "user-crud-service", cfg.Logger.ServiceName)

	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "Production")
	t.Setenv("HTTP_PORT", "8081")
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DB_MAX_OPEN_CONNS", "7")
	t.Setenv("DB_MAX_IDLE_CONNS", "3")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, EnvProduction, cfg.App.Env)
	assert.False(t, cfg.App.IsDevelopment())
	assert.Equal(t, "8081", cfg.App.HTTPPort)
	assert.Equal(t, DriverPostgres, cfg.Store.Driver)
	assert.Equal(t, 7, cfg.DB.MaxOpenConns)
	assert.Equal(t, 3, cfg.DB.MaxIdleConns)
	assert.True(t, cfg.Redis.Enabled)
	assert.InDelta(t, 2.5, cfg.RateLimit.RequestsPerSecond, 0.0001)

	// Production switches logger defaults.
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Format)
	assert.True(t, cfg.Logger.EnableSampling)

	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_Development(t *testing.T) {
	t.Setenv("APP_ENV", "Development")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.App.Env)
	assert.True(t, cfg.App.IsDevelopment())
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "console", cfg.Logger.Format)
	assert.False(t, cfg.Logger.EnableSampling)
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	content := "HTTP_PORT=4000\nSTORE_DRIVER=sqlite\nSQLITE_PATH=/tmp/users.db\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte(content), 0o600))

	t.Setenv("HTTP_PORT", "5000")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.App.HTTPPort, "environment wins over file")
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "/tmp/users.db", cfg.DB.SQLitePath)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg, err := LoadConfig(t.TempDir())
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name      string
		mutate    func(*Config)
		expectErr string
	}{
		{"unknown env", func(c *Config) { c.App.Env = "staging" }, "APP_ENV"},
		{"missing port", func(c *Config) { c.App.HTTPPort = "" }, "HTTP_PORT"},
		{"zero shutdown timeout", func(c *Config) { c.App.ShutdownTimeoutSeconds = 0 }, "SHUTDOWN_TIMEOUT_SECONDS"},
		{"unknown driver", func(c *Config) { c.Store.Driver = "mysql" }, "STORE_DRIVER"},
		{"missing mongo uri", func(c *Config) { c.Mongo.URI = "" }, "MONGODB_URI"},
		{"postgres pool", func(c *Config) {
			c.Store.Driver = DriverPostgres
			c.DB.MaxOpenConns = 0
		}, "DB_MAX_OPEN_CONNS"},
		{"postgres idle above open", func(c *Config) {
			c.Store.Driver = DriverPostgres
			c.DB.MaxIdleConns = c.DB.MaxOpenConns + 1
		}, "DB_MAX_IDLE_CONNS"},
		{"sqlite path", func(c *Config) {
			c.Store.Driver = DriverSQLite
			c.DB.SQLitePath = ""
		}, "SQLITE_PATH"},
		{"redis pool", func(c *Config) {
			c.Redis.Enabled = true
			c.Redis.PoolSize = 0
		}, "REDIS_POOL_SIZE"},
		{"rate limit rps", func(c *Config) { c.RateLimit.RequestsPerSecond = 0 }, "RATE_LIMIT_RPS"},
		{"rate limit burst", func(c *Config) { c.RateLimit.BurstCapacity = -1 }, "RATE_LIMIT_BURST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectErr)
		})
	}

	t.Run("disabled rate limit skips its checks", func(t *testing.T) {
		cfg := valid()
		cfg.RateLimit.Enabled = false
		cfg.RateLimit.RequestsPerSecond = 0
		assert.NoError(t, cfg.Validate())
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", Name: "n", SSLMode: "disable", ConnectTimeoutSeconds: 2}
	assert.Equal(t, "host=db user=u password=p dbname=n port=5432 sslmode=disable connect_timeout=2", c.DSN())
}
