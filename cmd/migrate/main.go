// Command migrate prepares the blob store schema and optionally copies the local CSV tables into it.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"

	coreport "github.com/amirhossein-jamali/plutus-backend/internal/domain/port/core"
	"github.com/amirhossein-jamali/plutus-backend/internal/infrastructure/adapter/database"
	"github.com/amirhossein-jamali/plutus-backend/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/plutus-backend/internal/infrastructure/adapter/repository"
	"github.com/amirhossein-jamali/plutus-backend/internal/infrastructure/adapter/storage"
	timeProvider "github.com/amirhossein-jamali/plutus-backend/internal/infrastructure/adapter/time"
	"github.com/amirhossein-jamali/plutus-backend/internal/infrastructure/config"
)

type options struct {
	env        string
	dataDir    string
	copyTables bool
	timeout    time.Duration
}

func parseFlags(args []string) (options, error) {
	opts := options{}
	fs := pflag.NewFlagSet("migrate", pflag.ContinueOnError)
	fs.StringVarP(&opts.env, "env", "e", os.Getenv(config.EnvPrefix+"_ENV"), "configuration environment (development, test, production)")
	fs.StringVar(&opts.dataDir, "data-dir", "", "local data directory to copy from (defaults to storage.local.dataDir)")
	fs.BoolVar(&opts.copyTables, "copy-tables", false, "copy every local CSV table into the blob store")
	fs.DurationVar(&opts.timeout, "timeout", 5*time.Minute, "overall deadline for the migration")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.env == "" {
		opts.env = config.Development
	}
	return opts, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	cfg, err := config.LoadConfigFrom(opts.env, config.ConfigPaths)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load configuration:", err)
		os.Exit(1)
	}
	if opts.dataDir != "" {
		cfg.Storage.Local.DataDir = opts.dataDir
	}

	appLogger, err := logger.NewZapLogger(cfg.LoggerOptions())
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to create logger:", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	err = run(ctx, cfg, opts, appLogger)
	cancel()
	if err != nil {
		appLogger.Error("Migration failed", map[string]any{"error": err.Error()})
		_ = appLogger.Flush()
		os.Exit(1)
	}
	_ = appLogger.Flush()
}

func run(ctx context.Context, cfg *config.Config, opts options, appLogger coreport.Logger) error {
	tp := timeProvider.NewRealTimeProvider()
	start := tp.Now()

	dbManager := database.NewManager(&cfg.Database, appLogger, tp)
	if _, err := dbManager.Connect(ctx); err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer func() { _ = dbManager.Close() }()

	if err := dbManager.Migrate(ctx); err != nil {
		return fmt.Errorf("migrating blob store schema: %w", err)
	}
	if !opts.copyTables {
		appLogger.Info("Blob store schema is up to date", nil)
		return nil
	}

	settings := cfg.StorageSettings()
	local, err := storage.NewLocalBackend(afero.NewOsFs(), settings.Local, tp, appLogger)
	if err != nil {
		return fmt.Errorf("opening local tables: %w", err)
	}
	source := storage.NewManager(local, storage.ManagerOptions{}, appLogger)
	repository.RegisterSchemas(source)
	if err := source.Initialize(ctx); err != nil {
		return fmt.Errorf("initializing local tables: %w", err)
	}

	target := storage.NewBlobBackend(database.NewBlobStore(dbManager, tp, appLogger), settings.Blob, tp, appLogger)
	result, err := source.MigrateTo(ctx, target)
	if err != nil {
		return fmt.Errorf("copying tables: %w", err)
	}

	rows := 0
	for _, n := range result.Tables {
		rows += n
	}
	appLogger.Info("Tables copied to blob storage", map[string]any{
		"tables":  len(result.Tables),
		"rows":    rows,
		"source":  settings.Local.DataDir,
		"prefix":  settings.Blob.Prefix,
		"elapsed": tp.Now().Sub(start).String(),
	})
	return nil
}
