package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"

	coreport "github.com/amirhossein-jamali/plutus-backend/internal/domain/port/core"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/usecase/audit"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/usecase/auth"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/usecase/balance"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/usecase/beneficiary"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/usecase/event"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/usecase/transaction"
	"github.com/amirhossein-jamali/plutus-backend/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/plutus-backend/internal/infrastructure/adapter/api/middleware"
	"github.com/amirhossein-jamali/plutus-backend/internal/infrastructure/adapter/api/routes"
	"github.com/amirhossein-jamali/plutus-backend/internal/infrastructure/adapter/api/validation"
	"github.com/amirhossein-jamali/plutus-backend/internal/infrastructure/adapter/database"
	"github.com/amirhossein-jamali/plutus-backend/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/plutus-backend/internal/infrastructure/adapter/messaging"
	"github.com/amirhossein-jamali/plutus-backend/internal/infrastructure/adapter/metrics"
	"github.com/amirhossein-jamali/plutus-backend/internal/infrastructure/adapter/ratelimit"
	"github.com/amirhossein-jamali/plutus-backend/internal/infrastructure/adapter/repository"
	"github.com/amirhossein-jamali/plutus-backend/internal/infrastructure/adapter/scheduler"
	"github.com/amirhossein-jamali/plutus-backend/internal/infrastructure/adapter/security"
	"github.com/amirhossein-jamali/plutus-backend/internal/infrastructure/adapter/storage"
	timeProvider "github.com/amirhossein-jamali/plutus-backend/internal/infrastructure/adapter/time"
	"github.com/amirhossein-jamali/plutus-backend/internal/infrastructure/config"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate essential configuration
	warnings, err := cfg.Validate()
	if err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	appLogger, err := logger.NewZapLogger(cfg.LoggerOptions())
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = appLogger.Flush() }()

	if len(warnings) > 0 {
		appLogger.Warn("Potential security issues in production configuration", map[string]any{
			"warnings": warnings,
		})
	}

	policy, err := cfg.BankingPolicy()
	if err != nil {
		exitWith(appLogger, "Invalid banking configuration", map[string]any{"error": err.Error()})
	}

	tp := timeProvider.NewRealTimeProvider()
	appMetrics := metrics.New()

	// Storage: the blob backend lives in PostgreSQL and is opened only when selected
	var (
		dbManager *database.Manager
		blobStore *database.BlobStore
	)
	newBlobClient := func() (storage.BlobClient, error) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		dbm := database.NewManager(&cfg.Database, appLogger, tp)
		if _, err := dbm.Connect(ctx); err != nil {
			return nil, err
		}
		if err := dbm.Migrate(ctx); err != nil {
			_ = dbm.Close()
			return nil, fmt.Errorf("migrating blob store: %w", err)
		}
		dbManager = dbm
		blobStore = database.NewBlobStore(dbm, tp, appLogger)
		return blobStore, nil
	}

	backend, err := storage.SelectBackend(cfg.StorageSettings(), afero.NewOsFs(), newBlobClient, tp, appLogger)
	if err != nil {
		exitWith(appLogger, "Failed to create storage backend", map[string]any{"error": err.Error()})
	}
	if dbManager != nil {
		defer func() { _ = dbManager.Close() }()
		if sqlDB, err := dbManager.SQLDB(); err == nil {
			if err := appMetrics.RegisterDBStats(sqlDB, cfg.Database.Database); err != nil {
				appLogger.Warn("Database pool metrics unavailable", map[string]any{"error": err.Error()})
			}
		}
	}

	tables := storage.NewManager(backend, storage.ManagerOptions{BackupOnWrite: cfg.Storage.BackupOnWrite}, appLogger)
	repository.RegisterSchemas(tables)
	if err := tables.Initialize(context.Background()); err != nil {
		exitWith(appLogger, "Failed to initialize tables", map[string]any{
			"backend": tables.BackendName(),
			"error":   err.Error(),
		})
	}
	store := storage.NewInstrumentedStore(tables, appMetrics)

	// Initialize repositories
	userRepo := repository.NewUserRepository(store, appLogger)
	beneficiaryRepo := repository.NewBeneficiaryRepository(store, appLogger)
	transactionRepo := repository.NewTransactionRepository(store, appLogger)
	auditRepo := repository.NewAuditRepository(store, appLogger)
	idempotencyRepo := repository.NewIdempotencyRepository(store)

	ids := security.NewIDGenerator()
	tokens := security.NewJWTManager(cfg.JWTSettings(), tp)
	limiter := newAttemptLimiter(cfg, tp, appLogger)

	publisher := metrics.NewCountingPublisher(messaging.NewEventPublisher(cfg.Events, appLogger), appMetrics)
	defer func() { _ = publisher.Close() }()

	recorder := audit.NewRecorder(auditRepo, ids, tp, appLogger)
	emitter := event.NewEmitter(publisher, ids, tp, appLogger)

	// Initialize use cases
	authUseCase := auth.NewAuthUseCase(auth.Dependencies{
		Users:   userRepo,
		Hasher:  security.NewBcryptHasher(cfg.Auth.BcryptCost),
		Tokens:  tokens,
		Limiter: limiter,
		IDs:     ids,
		Clock:   tp,
		Audit:   recorder,
		Events:  emitter,
		Logger:  appLogger,
	}, policy)
	balanceUseCase := balance.NewBalanceUseCase(balance.Dependencies{
		Users:        userRepo,
		Transactions: transactionRepo,
		IDs:          ids,
		Clock:        tp,
		Audit:        recorder,
		Events:       emitter,
		Logger:       appLogger,
	}, policy)
	beneficiaryUseCase := beneficiary.NewBeneficiaryUseCase(beneficiary.Dependencies{
		Users:         userRepo,
		Beneficiaries: beneficiaryRepo,
		IDs:           ids,
		Clock:         tp,
		Audit:         recorder,
		Logger:        appLogger,
	})
	transactionService := transaction.NewTransactionService(transaction.Dependencies{
		Users:           userRepo,
		Beneficiaries:   beneficiaryRepo,
		Transactions:    transactionRepo,
		IdempotencyKeys: idempotencyRepo,
		IDs:             ids,
		Clock:           tp,
		Audit:           recorder,
		Events:          emitter,
		Logger:          appLogger,
		QueueSize:       cfg.Transaction.QueueSize,
	}, policy)

	// Initialize Gin router
	if err := validation.RegisterWithGin(); err != nil {
		exitWith(appLogger, "Failed to register request validators", map[string]any{"error": err.Error()})
	}
	router := gin.New()

	middlewareOpts := routes.MiddlewareOptions{Clock: tp, CORSOrigins: cfg.Server.CORSOrigins}
	handlers := routes.Handlers{
		Auth:         handler.NewAuthHandler(authUseCase, tp, appLogger),
		Balance:      handler.NewBalanceHandler(balanceUseCase, tp, appLogger),
		Beneficiary:  handler.NewBeneficiaryHandler(beneficiaryUseCase, tp, appLogger),
		Transaction:  handler.NewTransactionHandler(transactionService, cfg.Transaction.RequestTimeout, tp, appLogger),
		Health:       handler.NewHealthHandler(tables, version, tp, appLogger),
		RequireToken: middleware.Auth(tokens, cfg.Auth.RequireToken, tp, appLogger),
		Clock:        tp,
	}
	if cfg.Metrics.Enabled {
		middlewareOpts.Metrics = appMetrics
		handlers.Metrics = appMetrics.Handler()
		handlers.MetricsPath = cfg.Metrics.Path
	}
	routes.SetupMiddlewares(router, appLogger, middlewareOpts)
	routes.SetupRoutes(router, handlers)

	// Maintenance jobs
	var jobScheduler *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		jobDeps := scheduler.JobDependencies{
			Backups:   tables,
			Health:    tables,
			Observer:  appMetrics,
			Clock:     tp,
			Logger:    appLogger,
			Retention: time.Duration(cfg.Storage.BackupRetentionDays) * 24 * time.Hour,
		}
		if blobStore != nil {
			jobDeps.Leases = blobStore
		}
		jobScheduler = scheduler.NewScheduler(scheduler.NewJobs(jobDeps), appLogger)
		if err := jobScheduler.Register(scheduler.Schedules{
			BackupRetention: cfg.Scheduler.BackupRetention,
			LeaseCleanup:    cfg.Scheduler.LeaseCleanup,
			StorageHealth:   cfg.Scheduler.StorageHealth,
		}); err != nil {
			exitWith(appLogger, "Failed to schedule maintenance jobs", map[string]any{"error": err.Error()})
		}
		jobScheduler.Start()
	}

	// Create HTTP server with configurable timeout values
	server := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info("Starting server", map[string]any{
			"addr":    server.Addr,
			"env":     cfg.Environment,
			"storage": tables.BackendName(),
			"version": version,
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		appLogger.Info("Shutting down server...", map[string]any{"signal": sig.String()})
	case err := <-serverErr:
		appLogger.Error("Failed to start server", map[string]any{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", map[string]any{
			"error": err.Error(),
		})
	}

	appLogger.Info("Draining transfer queues...", nil)
	transactionService.Shutdown()

	if jobScheduler != nil {
		select {
		case <-jobScheduler.Stop().Done():
		case <-ctx.Done():
			appLogger.Warn("Maintenance jobs still running at shutdown", nil)
		}
	}

	appLogger.Info("Server exited gracefully", nil)
}

// newAttemptLimiter picks the login lockout store; an unreachable Redis falls back to memory
func newAttemptLimiter(cfg *config.Config, clock coreport.TimeProvider, appLogger coreport.Logger) coreport.AttemptLimiter {
	if cfg.Auth.Limiter != "redis" {
		return ratelimit.NewMemoryLimiter(cfg.Auth.MaxLoginAttempts, cfg.Auth.LockoutWindow(), clock)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		appLogger.Warn("Redis unavailable, using in-memory login lockout", map[string]any{
			"addr":  cfg.Redis.Addr,
			"error": err.Error(),
		})
		_ = client.Close()
		return ratelimit.NewMemoryLimiter(cfg.Auth.MaxLoginAttempts, cfg.Auth.LockoutWindow(), clock)
	}

	appLogger.Info("Using Redis login lockout", map[string]any{"addr": cfg.Redis.Addr})
	return ratelimit.NewRedisLimiter(client, cfg.Redis.KeyPrefix, cfg.Auth.MaxLoginAttempts, cfg.Auth.LockoutWindow())
}

// exitWith logs the failure, flushes the logger and terminates the process
func exitWith(appLogger coreport.Logger, msg string, fields map[string]any) {
	appLogger.Error(msg, fields)
	_ = appLogger.Flush()
	os.Exit(1)
}
