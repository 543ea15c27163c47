package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/plutus-backend/internal/domain/entity"
)

func writeConfig(t *testing.T, env, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, env+".yaml"), []byte(body), 0o600))
	return dir
}

func TestLoadConfigFrom_Defaults(t *testing.T) {
	cfg, err := LoadConfigFrom(Test, []string{t.TempDir()})
	require.NoError(t, err)

	assert.Equal(t, Test, cfg.Environment)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "local", cfg.Storage.Backend)
	assert.Equal(t, 30*time.Minute, cfg.Auth.AccessExpiry)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.RefreshExpiry)
	assert.Equal(t, 15*time.Minute, cfg.Auth.LockoutWindow())
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "plutus.events", cfg.Events.Exchange)
	assert.False(t, cfg.Events.Enabled)
	assert.Equal(t, "@every 1m", cfg.Scheduler.LeaseCleanup)
}

func TestLoadConfigFrom_FileAndEnvironment(t *testing.T) {
	dir := writeConfig(t, "staging", `
server:
  port: 9100
  corsOrigins: ["https://chat.example.com"]
storage:
  backend: blob
  blob:
    prefix: bank
    leaseDuration: 45s
database:
  host: db.internal
  username: plutus
auth:
  maxLoginAttempts: 3
banking:
  maxTransactionAmount: "25000"
`)
	t.Setenv("PLUTUS_SERVER_PORT", "9200")
	t.Setenv("PLUTUS_DB_PASSWORD", "s3cret")
	t.Setenv("PLUTUS_AUTH_JWT_SECRET", "override")

	cfg, err := LoadConfigFrom("staging", []string{dir})
	require.NoError(t, err)

	assert.Equal(t, 9200, cfg.Server.Port)
	assert.Equal(t, []string{"https://chat.example.com"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "blob", cfg.Storage.Backend)
	assert.Equal(t, 45*time.Second, cfg.Storage.Blob.LeaseDuration)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "s3cret", cfg.Database.Password)
	assert.Equal(t, "override", cfg.Auth.JWTSecret)
	assert.Equal(t, 3, cfg.Auth.MaxLoginAttempts)

	settings := cfg.StorageSettings()
	assert.Equal(t, "bank", settings.Blob.Prefix)
	assert.Equal(t, "0.0.0.0:9200", cfg.ServerAddr())

	policy, err := cfg.BankingPolicy()
	require.NoError(t, err)
	assert.Equal(t, "25000.00", entity.FormatAmount(policy.MaxTransactionAmount))
}

func TestLoadConfigFrom_InvalidYAML(t *testing.T) {
	dir := writeConfig(t, "broken", "server: [unclosed")

	_, err := LoadConfigFrom("broken", []string{dir})
	assert.Error(t, err)
}

func TestBankingPolicy_Invalid(t *testing.T) {
	testCases := map[string]BankingConfig{
		"Unparsable amount":   {MaxTransactionAmount: "lots"},
		"Inverted daily":      {MinDailyLimit: "5000", MaxDailyLimit: "1000"},
		"Inverted amounts":    {MinTransactionAmount: "100", MaxTransactionAmount: "10"},
		"Default out of band": {DefaultDailyLimit: "500"},
	}
	for name, banking := range testCases {
		t.Run(name, func(t *testing.T) {
			cfg := &Config{Banking: banking}
			_, err := cfg.BankingPolicy()
			assert.Error(t, err)
		})
	}
}

func TestGetEnvironment(t *testing.T) {
	t.Setenv("PLUTUS_ENV", "")
	assert.Equal(t, Development, getEnvironment())

	t.Setenv("PLUTUS_ENV", " Production ")
	assert.Equal(t, Production, getEnvironment())
}

func TestValidate(t *testing.T) {
	load := func(t *testing.T, env string) *Config {
		t.Helper()
		cfg, err := LoadConfigFrom(env, []string{t.TempDir()})
		require.NoError(t, err)
		return cfg
	}

	t.Run("defaults are valid outside production", func(t *testing.T) {
		warnings, err := load(t, Development).Validate()
		require.NoError(t, err)
		assert.Empty(t, warnings)
	})

	t.Run("production warns about unsafe defaults", func(t *testing.T) {
		warnings, err := load(t, Production).Validate()
		require.NoError(t, err)
		assert.Contains(t, warnings, "auth.jwtSecret is the development default")
		assert.Len(t, warnings, 2)
	})

	t.Run("blob backend needs a database", func(t *testing.T) {
		cfg := load(t, Development)
		cfg.Storage.Backend = "blob"
		_, err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.username")
	})

	t.Run("unknown values", func(t *testing.T) {
		cfg := load(t, Development)
		cfg.Auth.Limiter = "memcached"
		_, err := cfg.Validate()
		assert.ErrorContains(t, err, "auth.limiter")

		cfg = load(t, "staging")
		_, err = cfg.Validate()
		assert.ErrorContains(t, err, "invalid environment value")
	})

	t.Run("bad cron spec", func(t *testing.T) {
		cfg := load(t, Development)
		cfg.Scheduler.StorageHealth = "every so often"
		_, err := cfg.Validate()
		assert.ErrorContains(t, err, "scheduler.storageHealth")
	})
}
