// Package testenv wires the business services to real CSV repositories on an
// in-memory filesystem for service-level tests.
package testenv

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/amirhossein-jamali/plutus-backend/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/plutus-backend/internal/domain/port/core"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/usecase/audit"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/usecase/event"
	"github.com/amirhossein-jamali/plutus-backend/internal/infrastructure/adapter/repository"
	"github.com/amirhossein-jamali/plutus-backend/internal/infrastructure/adapter/security"
	mockcore "github.com/amirhossein-jamali/plutus-backend/mocks/port/core"
)

// Start is the initial time of every Clock
var Start = time.Date(2025, 8, 29, 10, 0, 0, 0, time.UTC)

// Clock is a settable TimeProvider
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock creates a clock stopped at Start
func NewClock() *Clock {
	return &Clock{now: Start}
}

// Now returns the current fake time
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to t
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t.UTC()
}

// Advance moves the clock forward
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *Clock) Since(t time.Time) time.Duration {
	return c.Now().Sub(t)
}

// After fires immediately after advancing the clock
func (c *Clock) After(d time.Duration) <-chan time.Time {
	c.Advance(d)
	ch := make(chan time.Time, 1)
	ch <- c.Now()
	return ch
}

func (c *Clock) WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeout)
}

// Env bundles the collaborators shared by the business services
type Env struct {
	Repos     *repository.TestRepositories
	Clock     *Clock
	Publisher *mockcore.MockEventPublisher
	IDs       *security.IDGenerator
	Hasher    coreport.PasswordHasher
	Audit     *audit.Recorder
	Events    *event.Emitter
	Logger    coreport.Logger
	Policy    entity.BankingPolicy
}

// New builds an Env whose publisher accepts every event
func New(t *testing.T) *Env {
	t.Helper()

	repos := repository.NewTestRepositories(t)
	clock := NewClock()
	ids := security.NewIDGenerator()
	publisher := mockcore.NewMockEventPublisher(t)
	publisher.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()

	return &Env{
		Repos:     repos,
		Clock:     clock,
		Publisher: publisher,
		IDs:       ids,
		Hasher:    security.NewBcryptHasher(bcrypt.MinCost),
		Audit:     audit.NewRecorder(repos.Audit, ids, clock, repos.Logger),
		Events:    event.NewEmitter(publisher, ids, clock, repos.Logger),
		Logger:    repos.Logger,
		Policy:    entity.DefaultBankingPolicy(),
	}
}

// SeedUser stores a user with the password "Secur3!pass"
func (e *Env) SeedUser(t *testing.T, username, accountNumber, balance string) *entity.User {
	t.Helper()

	hash, err := e.Hasher.Hash(Password)
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	user := &entity.User{
		ID:            e.IDs.UserID(),
		Username:      username,
		PasswordHash:  hash,
		AccountNumber: accountNumber,
		Balance:       entity.MustAmount(balance),
		DailyLimit:    e.Policy.DefaultDailyLimit,
		CreatedAt:     e.Clock.Now(),
	}
	if err := e.Repos.Users.Create(context.Background(), user); err != nil {
		t.Fatalf("seeding user %s: %v", username, err)
	}
	return user
}

// Password is the password of seeded users
const Password = "Secur3!pass"

// SeedBeneficiary stores a beneficiary for the owner
func (e *Env) SeedBeneficiary(t *testing.T, ownerID, name, bank, accountNumber string) *entity.Beneficiary {
	t.Helper()

	b := &entity.Beneficiary{
		OwnerUserID:   ownerID,
		ID:            e.IDs.BeneficiaryID(),
		Name:          name,
		BankName:      bank,
		AccountNumber: accountNumber,
		AddedAt:       e.Clock.Now(),
	}
	if err := e.Repos.Beneficiaries.Create(context.Background(), b); err != nil {
		t.Fatalf("seeding beneficiary %s: %v", name, err)
	}
	return b
}

// Balance reads the stored balance of a user
func (e *Env) Balance(t *testing.T, userID string) string {
	t.Helper()

	user, err := e.Repos.Users.GetByID(context.Background(), userID)
	if err != nil {
		t.Fatalf("reading user %s: %v", userID, err)
	}
	return entity.FormatAmount(user.Balance)
}

// AuditActions lists the user's audited actions in order
func (e *Env) AuditActions(t *testing.T, userID string) []entity.AuditAction {
	t.Helper()

	entries, err := e.Repos.Audit.ListByUser(context.Background(), userID)
	if err != nil {
		t.Fatalf("reading audit log: %v", err)
	}
	actions := make([]entity.AuditAction, 0, len(entries))
	for _, entry := range entries {
		actions = append(actions, entry.Action)
	}
	return actions
}

// PublishedTypes lists the event types handed to the publisher
func (e *Env) PublishedTypes() []coreport.EventType {
	var types []coreport.EventType
	for _, call := range e.Publisher.Calls {
		if call.Method != "Publish" {
			continue
		}
		if evt, ok := call.Arguments.Get(1).(coreport.Event); ok {
			types = append(types, evt.Type)
		}
	}
	return types
}
