package repository

import (
	"context"
	"testing"

	"github.com/spf13/afero"

	coreport "github.com/amirhossein-jamali/plutus-backend/internal/domain/port/core"
	"github.com/amirhossein-jamali/plutus-backend/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/plutus-backend/internal/infrastructure/adapter/storage"
	timeprovider "github.com/amirhossein-jamali/plutus-backend/internal/infrastructure/adapter/time"
)

// TestRepositories bundles every CSV repository over one in-memory table store
type TestRepositories struct {
	Store         *storage.Manager
	Users         *UserRepository
	Beneficiaries *BeneficiaryRepository
	Transactions  *TransactionRepository
	Audit         *AuditRepository
	Idempotency   *IdempotencyRepository
	Logger        coreport.Logger
}

// NewTestRepositories builds initialized repositories on an afero memory filesystem
func NewTestRepositories(t testing.TB) *TestRepositories {
	t.Helper()

	log := logger.NewNoopLogger()
	backend, err := storage.NewLocalBackend(afero.NewMemMapFs(), storage.LocalConfig{DataDir: "data"},
		timeprovider.NewRealTimeProvider(), log)
	if err != nil {
		t.Fatalf("creating local backend: %v", err)
	}

	store := storage.NewManager(backend, storage.ManagerOptions{}, log)
	RegisterSchemas(store)
	if err := store.Initialize(context.Background()); err != nil {
		t.Fatalf("initializing tables: %v", err)
	}

	return &TestRepositories{
		Store:         store,
		Users:         NewUserRepository(store, log),
		Beneficiaries: NewBeneficiaryRepository(store, log),
		Transactions:  NewTransactionRepository(store, log),
		Audit:         NewAuditRepository(store, log),
		Idempotency:   NewIdempotencyRepository(store),
		Logger:        log,
	}
}
