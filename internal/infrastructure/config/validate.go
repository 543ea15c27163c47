package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Validate ensures all required configuration values are present.
// Warnings flag settings that work but are unsafe in production.
func (c *Config) Validate() ([]string, error) {
	var missingConfigs []string

	if c.Server.Port == 0 {
		missingConfigs = append(missingConfigs, "server.port")
	}
	if c.Server.ReadTimeout == 0 {
		missingConfigs = append(missingConfigs, "server.readTimeout")
	}
	if c.Server.WriteTimeout == 0 {
		missingConfigs = append(missingConfigs, "server.writeTimeout")
	}
	if c.Server.ShutdownTimeout == 0 {
		missingConfigs = append(missingConfigs, "server.shutdownTimeout")
	}
	if c.Logger.Level == "" {
		missingConfigs = append(missingConfigs, "logger.level")
	}
	if c.Auth.JWTSecret == "" {
		missingConfigs = append(missingConfigs, "auth.jwtSecret (or PLUTUS_AUTH_JWT_SECRET)")
	}
	if c.Auth.AccessExpiry == 0 {
		missingConfigs = append(missingConfigs, "auth.accessExpiry")
	}
	if c.Auth.RefreshExpiry == 0 {
		missingConfigs = append(missingConfigs, "auth.refreshExpiry")
	}

	switch c.Storage.Backend {
	case "local", "":
		if c.Storage.Local.DataDir == "" {
			missingConfigs = append(missingConfigs, "storage.local.dataDir")
		}
	case "blob":
		if c.Database.Host == "" {
			missingConfigs = append(missingConfigs, "database.host (or PLUTUS_DB_HOST)")
		}
		if c.Database.Username == "" {
			missingConfigs = append(missingConfigs, "database.username (or PLUTUS_DB_USERNAME)")
		}
		if c.Database.Database == "" {
			missingConfigs = append(missingConfigs, "database.database (or PLUTUS_DB_NAME)")
		}
	default:
		return nil, fmt.Errorf("invalid storage.backend %q, must be local or blob", c.Storage.Backend)
	}

	switch c.Auth.Limiter {
	case "memory", "":
	case "redis":
		if c.Redis.Addr == "" {
			missingConfigs = append(missingConfigs, "redis.addr")
		}
	default:
		return nil, fmt.Errorf("invalid auth.limiter %q, must be memory or redis", c.Auth.Limiter)
	}

	if c.Events.Enabled && c.Events.AMQPURL == "" {
		missingConfigs = append(missingConfigs, "events.amqpUrl (or PLUTUS_EVENTS_AMQP_URL)")
	}

	if c.Environment == "" {
		missingConfigs = append(missingConfigs, "environment")
	} else if c.Environment != Development && c.Environment != Production && c.Environment != Test {
		return nil, fmt.Errorf("invalid environment value: %s, must be one of: %s, %s, or %s",
			c.Environment, Development, Production, Test)
	}

	if len(missingConfigs) > 0 {
		return nil, fmt.Errorf("missing required configurations: %v", missingConfigs)
	}

	if _, err := c.BankingPolicy(); err != nil {
		return nil, err
	}

	if c.Scheduler.Enabled {
		parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
		specs := map[string]string{
			"scheduler.backupRetention": c.Scheduler.BackupRetention,
			"scheduler.leaseCleanup":    c.Scheduler.LeaseCleanup,
			"scheduler.storageHealth":   c.Scheduler.StorageHealth,
		}
		for key, spec := range specs {
			if spec == "" {
				continue
			}
			if _, err := parser.Parse(spec); err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
		}
	}

	if !c.IsProduction() {
		return nil, nil
	}

	var warnings []string
	if c.Auth.JWTSecret == DefaultJWTSecret {
		warnings = append(warnings, "auth.jwtSecret is the development default")
	}
	if !c.Auth.RequireToken {
		warnings = append(warnings, "auth.requireToken is disabled")
	}
	if c.Storage.Backend == "blob" {
		switch strings.ToLower(c.Database.SSLMode) {
		case "require", "verify-ca", "verify-full":
		default:
			warnings = append(warnings, "database.sslMode should be set to 'require', 'verify-ca', or 'verify-full' in production")
		}
	}
	if c.Server.ReadTimeout < 5*time.Second {
		warnings = append(warnings, "server.readTimeout is too low for production")
	}
	if c.Server.WriteTimeout < 5*time.Second {
		warnings = append(warnings, "server.writeTimeout is too low for production")
	}
	if c.Auth.Limiter != "redis" {
		warnings = append(warnings, "auth.limiter is per-process; lockouts are not shared between instances")
	}
	return warnings, nil
}
