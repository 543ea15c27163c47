package config

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/amirhossein-jamali/plutus-backend/internal/domain/entity"
	"github.com/amirhossein-jamali/plutus-backend/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/plutus-backend/internal/infrastructure/adapter/security"
	"github.com/amirhossein-jamali/plutus-backend/internal/infrastructure/adapter/storage"
)

// BankingPolicy parses the banking section into the limits used by the services
func (c *Config) BankingPolicy() (entity.BankingPolicy, error) {
	policy := entity.DefaultBankingPolicy()
	if c.Banking.Currency != "" {
		policy.Currency = c.Banking.Currency
	}
	if len(c.Banking.SupportedCurrencies) > 0 {
		policy.SupportedCurrencies = c.Banking.SupportedCurrencies
	}
	if c.Banking.DailyTransactionLimit > 0 {
		policy.DailyTransactionLimit = c.Banking.DailyTransactionLimit
	}

	amounts := []struct {
		key    string
		raw    string
		target *decimal.Decimal
	}{
		{"banking.defaultStartingBalance", c.Banking.DefaultStartingBalance, &policy.DefaultStartingBalance},
		{"banking.defaultDailyLimit", c.Banking.DefaultDailyLimit, &policy.DefaultDailyLimit},
		{"banking.minDailyLimit", c.Banking.MinDailyLimit, &policy.MinDailyLimit},
		{"banking.maxDailyLimit", c.Banking.MaxDailyLimit, &policy.MaxDailyLimit},
		{"banking.minTransactionAmount", c.Banking.MinTransactionAmount, &policy.MinTransactionAmount},
		{"banking.maxTransactionAmount", c.Banking.MaxTransactionAmount, &policy.MaxTransactionAmount},
	}
	for _, a := range amounts {
		if a.raw == "" {
			continue
		}
		value, err := decimal.NewFromString(a.raw)
		if err != nil {
			return entity.BankingPolicy{}, fmt.Errorf("%s: %w", a.key, err)
		}
		*a.target = value
	}

	if policy.MinDailyLimit.GreaterThan(policy.MaxDailyLimit) {
		return entity.BankingPolicy{}, fmt.Errorf("banking.minDailyLimit exceeds banking.maxDailyLimit")
	}
	if policy.MinTransactionAmount.GreaterThan(policy.MaxTransactionAmount) {
		return entity.BankingPolicy{}, fmt.Errorf("banking.minTransactionAmount exceeds banking.maxTransactionAmount")
	}
	if !policy.DailyLimitInRange(policy.DefaultDailyLimit) {
		return entity.BankingPolicy{}, fmt.Errorf("banking.defaultDailyLimit is outside the daily limit bounds")
	}
	return policy, nil
}

// StorageSettings builds the storage backend selection
func (c *Config) StorageSettings() storage.Config {
	return storage.Config{
		Backend:       c.Storage.Backend,
		BackupOnWrite: c.Storage.BackupOnWrite,
		Local: storage.LocalConfig{
			DataDir:         c.Storage.Local.DataDir,
			FileLock:        c.Storage.Local.FileLock,
			LockTimeout:     c.Storage.Local.LockTimeout,
			LockRetryPeriod: c.Storage.Local.LockRetryPeriod,
		},
		Blob: storage.BlobConfig{
			Prefix:          c.Storage.Blob.Prefix,
			LeaseDuration:   c.Storage.Blob.LeaseDuration,
			LeaseRetryDelay: c.Storage.Blob.LeaseRetryDelay,
			LeaseTimeout:    c.Storage.Blob.LeaseTimeout,
		},
	}
}

// JWTSettings builds the token manager configuration
func (c *Config) JWTSettings() security.JWTConfig {
	return security.JWTConfig{
		Secret:        c.Auth.JWTSecret,
		Issuer:        c.Auth.Issuer,
		AccessExpiry:  c.Auth.AccessExpiry,
		RefreshExpiry: c.Auth.RefreshExpiry,
	}
}

// LoggerOptions builds the zap adapter options
func (c *Config) LoggerOptions() logger.Options {
	return logger.Options{Level: c.Logger.Level, Format: c.Logger.Format}
}

// ServerAddr is the listen address
func (c *Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// IsProduction reports whether the production environment is loaded
func (c *Config) IsProduction() bool {
	return c.Environment == Production
}
