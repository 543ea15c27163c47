package config

import (
	"time"

	"github.com/amirhossein-jamali/plutus-backend/internal/infrastructure/adapter/database"
	"github.com/amirhossein-jamali/plutus-backend/internal/infrastructure/adapter/messaging"
)

// Config holds all configuration for the application
type Config struct {
	Environment string            `mapstructure:"environment"`
	Server      ServerConfig      `mapstructure:"server"`
	Logger      LoggerConfig      `mapstructure:"logger"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Database    database.Config   `mapstructure:"database"`
	Auth        AuthConfig        `mapstructure:"auth"`
	Banking     BankingConfig     `mapstructure:"banking"`
	Transaction TransactionConfig `mapstructure:"transaction"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Events      messaging.Config  `mapstructure:"events"`
	Scheduler   SchedulerConfig   `mapstructure:"scheduler"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"readTimeout"`
	WriteTimeout      time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout       time.Duration `mapstructure:"idleTimeout"`
	ReadHeaderTimeout time.Duration `mapstructure:"readHeaderTimeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdownTimeout"`
	CORSOrigins       []string      `mapstructure:"corsOrigins"`
}

// LoggerConfig contains logger settings
type LoggerConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json | console
}

// StorageConfig selects and tunes the CSV table backend
type StorageConfig struct {
	Backend             string             `mapstructure:"backend"` // local | blob
	BackupOnWrite       bool               `mapstructure:"backupOnWrite"`
	BackupRetentionDays int                `mapstructure:"backupRetentionDays"`
	Local               LocalStorageConfig `mapstructure:"local"`
	Blob                BlobStorageConfig  `mapstructure:"blob"`
}

// LocalStorageConfig configures the filesystem backend
type LocalStorageConfig struct {
	DataDir         string        `mapstructure:"dataDir"`
	FileLock        bool          `mapstructure:"fileLock"`
	LockTimeout     time.Duration `mapstructure:"lockTimeout"`
	LockRetryPeriod time.Duration `mapstructure:"lockRetryPeriod"`
}

// BlobStorageConfig configures the blob backend
type BlobStorageConfig struct {
	Prefix          string        `mapstructure:"prefix"`
	LeaseDuration   time.Duration `mapstructure:"leaseDuration"`
	LeaseRetryDelay time.Duration `mapstructure:"leaseRetryDelay"`
	LeaseTimeout    time.Duration `mapstructure:"leaseTimeout"`
}

// AuthConfig contains token and login lockout settings
type AuthConfig struct {
	JWTSecret        string        `mapstructure:"jwtSecret"`
	Algorithm        string        `mapstructure:"algorithm"`
	Issuer           string        `mapstructure:"issuer"`
	AccessExpiry     time.Duration `mapstructure:"accessExpiry"`
	RefreshExpiry    time.Duration `mapstructure:"refreshExpiry"`
	RequireToken     bool          `mapstructure:"requireToken"`
	BcryptCost       int           `mapstructure:"bcryptCost"`
	MaxLoginAttempts int           `mapstructure:"maxLoginAttempts"`
	LockoutMinutes   int           `mapstructure:"lockoutMinutes"`
	Limiter          string        `mapstructure:"limiter"` // memory | redis
}

// LockoutWindow is the login lockout window as a duration
func (a AuthConfig) LockoutWindow() time.Duration {
	return time.Duration(a.LockoutMinutes) * time.Minute
}

// BankingConfig holds the business limits; amounts are decimal strings
type BankingConfig struct {
	Currency               string   `mapstructure:"currency"`
	SupportedCurrencies    []string `mapstructure:"supportedCurrencies"`
	DefaultStartingBalance string   `mapstructure:"defaultStartingBalance"`
	DefaultDailyLimit      string   `mapstructure:"defaultDailyLimit"`
	MinDailyLimit          string   `mapstructure:"minDailyLimit"`
	MaxDailyLimit          string   `mapstructure:"maxDailyLimit"`
	MinTransactionAmount   string   `mapstructure:"minTransactionAmount"`
	MaxTransactionAmount   string   `mapstructure:"maxTransactionAmount"`
	DailyTransactionLimit  int      `mapstructure:"dailyTransactionLimit"`
}

// TransactionConfig contains transfer processing settings
type TransactionConfig struct {
	QueueSize      int           `mapstructure:"queueSize"`
	RequestTimeout time.Duration `mapstructure:"requestTimeout"`
}

// RedisConfig configures the shared login attempt store
type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"keyPrefix"`
}

// SchedulerConfig holds cron specs for the maintenance jobs; an empty spec disables the job
type SchedulerConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	BackupRetention string `mapstructure:"backupRetention"`
	LeaseCleanup    string `mapstructure:"leaseCleanup"`
	StorageHealth   string `mapstructure:"storageHealth"`
}

// MetricsConfig toggles the prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}
