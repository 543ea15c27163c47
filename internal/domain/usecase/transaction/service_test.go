package transaction

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/plutus-backend/internal/domain/entity"
	errs "github.com/amirhossein-jamali/plutus-backend/internal/domain/error"
	coreport "github.com/amirhossein-jamali/plutus-backend/internal/domain/port/core"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/usecase/testenv"
)

func newService(t *testing.T) (*Service, *testenv.Env) {
	env := testenv.New(t)
	svc := NewTransactionService(Dependencies{
		Users:           env.Repos.Users,
		Beneficiaries:   env.Repos.Beneficiaries,
		Transactions:    env.Repos.Transactions,
		IdempotencyKeys: env.Repos.Idempotency,
		IDs:             env.IDs,
		Clock:           env.Clock,
		Audit:           env.Audit,
		Events:          env.Events,
		Logger:          env.Logger,
	}, env.Policy)
	t.Cleanup(svc.Shutdown)
	return svc, env
}

func amount(v string) decimal.Decimal {
	return entity.MustAmount(v)
}

func send(beneficiaryID, value string) usecase.SendMoneyRequest {
	return usecase.SendMoneyRequest{BeneficiaryID: beneficiaryID, Amount: amount(value)}
}

func countTransactions(t *testing.T, env *testenv.Env, userID string) int {
	t.Helper()
	txns, err := env.Repos.Transactions.ListByUser(context.Background(), userID)
	require.NoError(t, err)
	return len(txns)
}

func TestSend_InternalTransfer(t *testing.T) {
	ctx := context.Background()
	svc, env := newService(t)
	alice := env.SeedUser(t, "alice", "1234567890", "1000")
	bob := env.SeedUser(t, "bob", "9876543210", "200")
	payee := env.SeedBeneficiary(t, alice.ID, "Bob", "HBL", bob.AccountNumber)

	req := send(payee.ID, "250.50")
	req.Description = "rent"
	result, err := svc.Send(ctx, alice.ID, req)

	require.NoError(t, err)
	assert.False(t, result.Replayed)
	assert.Equal(t, "Bob", result.BeneficiaryName)
	assert.Equal(t, "HBL", result.BankName)
	assert.Equal(t, "749.50", entity.FormatAmount(result.NewBalance))

	txn := result.Transaction
	assert.Equal(t, entity.StatusSuccess, txn.Status)
	assert.Equal(t, bob.ID, txn.ToUserID)
	assert.Equal(t, alice.AccountNumber, txn.FromAccount)
	assert.Equal(t, bob.AccountNumber, txn.ToAccount)
	assert.Equal(t, "250.50", entity.FormatAmount(txn.DailyTotalSent))

	stored, err := env.Repos.Transactions.GetByID(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusSuccess, stored.Status)
	assert.Equal(t, "rent", stored.Description)

	assert.Equal(t, "749.50", env.Balance(t, alice.ID))
	assert.Equal(t, "450.50", env.Balance(t, bob.ID))

	assert.Contains(t, env.AuditActions(t, alice.ID), entity.ActionMoneySent)
	assert.Contains(t, env.PublishedTypes(), coreport.EventTransferCompleted)
}

func TestSend_ExternalTransfer(t *testing.T) {
	ctx := context.Background()
	svc, env := newService(t)
	alice := env.SeedUser(t, "alice", "1234567890", "1000")
	payee := env.SeedBeneficiary(t, alice.ID, "Carol", "Acme Savings", "5555666677")

	result, err := svc.Send(ctx, alice.ID, send(payee.ID, "100"))

	require.NoError(t, err)
	assert.Equal(t, entity.ExternalParty, result.Transaction.ToUserID)
	assert.Equal(t, "900.00", env.Balance(t, alice.ID))
}

func TestSend_Rejections(t *testing.T) {
	ctx := context.Background()
	svc, env := newService(t)
	alice := env.SeedUser(t, "alice", "1234567890", "100")
	bob := env.SeedUser(t, "bob", "9876543210", "0")
	payee := env.SeedBeneficiary(t, alice.ID, "Bob", "HBL", bob.AccountNumber)
	self := env.SeedBeneficiary(t, alice.ID, "Me", "HBL", alice.AccountNumber)
	otherPayee := env.SeedBeneficiary(t, bob.ID, "Alice", "HBL", alice.AccountNumber)

	testCases := []struct {
		name   string
		userID string
		req    usecase.SendMoneyRequest
		check  func(t *testing.T, err error)
	}{
		{
			name:   "Insufficient balance",
			userID: alice.ID,
			req:    send(payee.ID, "100.01"),
			check: func(t *testing.T, err error) {
				assert.True(t, errs.IsInsufficientBalanceError(err))
			},
		},
		{
			name:   "Below minimum",
			userID: alice.ID,
			req:    send(payee.ID, "0.50"),
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, errs.ErrAmountTooLow)
			},
		},
		{
			name:   "Too many decimals",
			userID: alice.ID,
			req:    send(payee.ID, "1.001"),
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, errs.ErrInvalidAmount)
			},
		},
		{
			name:   "Unknown beneficiary",
			userID: alice.ID,
			req:    send("BEN00000000", "10"),
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, errs.ErrBeneficiaryNotFound)
			},
		},
		{
			name:   "Beneficiary of another user",
			userID: alice.ID,
			req:    send(otherPayee.ID, "10"),
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, errs.ErrBeneficiaryNotFound)
			},
		},
		{
			name:   "Own account",
			userID: alice.ID,
			req:    send(self.ID, "10"),
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, errs.ErrInvalidAccount)
			},
		},
		{
			name:   "Unknown sender",
			userID: "USR00000000",
			req:    send(payee.ID, "10"),
			check: func(t *testing.T, err error) {
				assert.True(t, errs.IsUserNotFoundError(err))
			},
		},
		{
			name:   "Missing beneficiary",
			userID: alice.ID,
			req:    send("  ", "10"),
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, errs.ErrValidation)
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Send(ctx, tc.userID, tc.req)
			require.Error(t, err)
			tc.check(t, err)

			assert.Equal(t, "100.00", env.Balance(t, alice.ID))
			assert.Equal(t, "0.00", env.Balance(t, bob.ID))
			assert.Zero(t, countTransactions(t, env, alice.ID))
		})
	}

	assert.Contains(t, env.AuditActions(t, alice.ID), entity.ActionTransferFailed)
}

func TestSend_DailyLimits(t *testing.T) {
	ctx := context.Background()

	t.Run("Amount limit", func(t *testing.T) {
		svc, env := newService(t)
		alice := env.SeedUser(t, "alice", "1234567890", "50000")
		payee := env.SeedBeneficiary(t, alice.ID, "Carol", "HBL", "5555666677")

		_, err := svc.Send(ctx, alice.ID, send(payee.ID, "9000"))
		require.NoError(t, err)

		_, err = svc.Send(ctx, alice.ID, send(payee.ID, "1000.01"))
		assert.ErrorIs(t, err, errs.ErrDailyLimitExceeded)

		_, err = svc.Send(ctx, alice.ID, send(payee.ID, "1000"))
		require.NoError(t, err)

		// the limit resets at UTC midnight
		env.Clock.Set(entity.StartOfUTCDay(env.Clock.Now()).Add(24 * time.Hour))
		_, err = svc.Send(ctx, alice.ID, send(payee.ID, "5000"))
		assert.NoError(t, err)
	})

	t.Run("Count limit", func(t *testing.T) {
		svc, env := newService(t)
		alice := env.SeedUser(t, "alice", "1234567890", "1000")
		payee := env.SeedBeneficiary(t, alice.ID, "Carol", "HBL", "5555666677")

		for i := 0; i < env.Policy.DailyTransactionLimit; i++ {
			_, err := svc.Send(ctx, alice.ID, send(payee.ID, "1"))
			require.NoError(t, err)
		}

		_, err := svc.Send(ctx, alice.ID, send(payee.ID, "1"))

		var limitErr *errs.DailyLimitError
		require.True(t, errors.As(err, &limitErr))
		assert.True(t, limitErr.CountExceeded)
		assert.Equal(t, "990.00", env.Balance(t, alice.ID))
	})
}

func TestSend_Idempotency(t *testing.T) {
	ctx := context.Background()
	svc, env := newService(t)
	alice := env.SeedUser(t, "alice", "1234567890", "1000")
	payee := env.SeedBeneficiary(t, alice.ID, "Carol", "HBL", "5555666677")

	req := send(payee.ID, "100")
	req.IdempotencyKey = "invoice-42"

	first, err := svc.Send(ctx, alice.ID, req)
	require.NoError(t, err)

	t.Run("Replay returns the first transfer", func(t *testing.T) {
		again, err := svc.Send(ctx, alice.ID, req)

		require.NoError(t, err)
		assert.True(t, again.Replayed)
		assert.Equal(t, first.Transaction.ID, again.Transaction.ID)
		assert.Equal(t, "Carol", again.BeneficiaryName)
		assert.Equal(t, "900.00", env.Balance(t, alice.ID))
		assert.Equal(t, 1, countTransactions(t, env, alice.ID))
	})

	t.Run("Different request with the same key", func(t *testing.T) {
		changed := req
		changed.Amount = amount("200")

		_, err := svc.Send(ctx, alice.ID, changed)

		assert.ErrorIs(t, err, errs.ErrIdempotencyConflict)
		assert.Equal(t, "900.00", env.Balance(t, alice.ID))
	})

	t.Run("Concurrent duplicates run once", func(t *testing.T) {
		dup := send(payee.ID, "10")
		dup.IdempotencyKey = "invoice-43"

		var wg sync.WaitGroup
		ids := make([]string, 5)
		for i := range ids {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				result, err := svc.Send(ctx, alice.ID, dup)
				if assert.NoError(t, err) {
					ids[i] = result.Transaction.ID
				}
			}(i)
		}
		wg.Wait()

		for _, id := range ids {
			assert.Equal(t, ids[0], id)
		}
		assert.Equal(t, "890.00", env.Balance(t, alice.ID))
	})
}

func TestSend_ConcurrentTransfersConserveMoney(t *testing.T) {
	ctx := context.Background()
	svc, env := newService(t)
	alice := env.SeedUser(t, "alice", "1234567890", "100")
	bob := env.SeedUser(t, "bob", "9876543210", "0")
	payee := env.SeedBeneficiary(t, alice.ID, "Bob", "HBL", bob.AccountNumber)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Send(ctx, alice.ID, send(payee.ID, "10"))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errs.IsInsufficientBalanceError(err), errors.Is(err, errs.ErrDailyLimitExceeded):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, succeeded)
	assert.Equal(t, 10, rejected)
	assert.Equal(t, "0.00", env.Balance(t, alice.ID))
	assert.Equal(t, "100.00", env.Balance(t, bob.ID))
}

func TestHistoryAndQueries(t *testing.T) {
	ctx := context.Background()
	svc, env := newService(t)
	alice := env.SeedUser(t, "alice", "1234567890", "1000")
	bob := env.SeedUser(t, "bob", "9876543210", "1000")
	aliceToBob := env.SeedBeneficiary(t, alice.ID, "Bob", "HBL", bob.AccountNumber)
	aliceToCarol := env.SeedBeneficiary(t, alice.ID, "Carol", "UBL", "5555666677")
	bobToAlice := env.SeedBeneficiary(t, bob.ID, "Alice", "HBL", alice.AccountNumber)

	first, err := svc.Send(ctx, alice.ID, send(aliceToBob.ID, "100"))
	require.NoError(t, err)
	env.Clock.Advance(time.Minute)
	_, err = svc.Send(ctx, alice.ID, send(aliceToCarol.ID, "50"))
	require.NoError(t, err)
	env.Clock.Advance(time.Minute)
	_, err = svc.Send(ctx, bob.ID, send(bobToAlice.ID, "30"))
	require.NoError(t, err)

	// deposits never show up as transfers
	require.NoError(t, env.Repos.Transactions.Create(ctx, &entity.Transaction{
		ID: "TXNDEPOSIT", FromUserID: entity.SystemParty, ToUserID: alice.ID,
		Amount: amount("5"), Status: entity.StatusSuccess, Timestamp: env.Clock.Now(),
	}))

	t.Run("History", func(t *testing.T) {
		history, err := svc.History(ctx, alice.ID, usecase.TransactionHistoryRequest{})

		require.NoError(t, err)
		require.Len(t, history.Items, 3)
		assert.Equal(t, DirectionReceived, history.Items[0].Direction)
		assert.Equal(t, "Bob", history.Items[0].CounterpartyName)
		assert.Equal(t, DirectionSent, history.Items[2].Direction)
		assert.Equal(t, "150.00", entity.FormatAmount(history.Summary.TotalSent))
		assert.Equal(t, "30.00", entity.FormatAmount(history.Summary.TotalReceived))
		assert.Equal(t, 3, history.Summary.TransactionCount)
		assert.Equal(t, 3, history.Page.TotalItems)
	})

	t.Run("History filters", func(t *testing.T) {
		history, err := svc.History(ctx, alice.ID, usecase.TransactionHistoryRequest{BeneficiaryName: "car"})
		require.NoError(t, err)
		require.Len(t, history.Items, 1)
		assert.Equal(t, "5555666677", history.Items[0].Transaction.ToAccount)

		end := testenv.Start.Add(30 * time.Second)
		history, err = svc.History(ctx, alice.ID, usecase.TransactionHistoryRequest{EndDate: &end})
		require.NoError(t, err)
		require.Len(t, history.Items, 1)
		assert.Equal(t, first.Transaction.ID, history.Items[0].Transaction.ID)

		history, err = svc.History(ctx, alice.ID, usecase.TransactionHistoryRequest{
			Status: entity.StatusFailed,
			Page:   entity.PageRequest{Page: 1, PageSize: 2},
		})
		require.NoError(t, err)
		assert.Empty(t, history.Items)
	})

	t.Run("History validation", func(t *testing.T) {
		start := testenv.Start
		end := start.Add(-time.Hour)
		_, err := svc.History(ctx, alice.ID, usecase.TransactionHistoryRequest{StartDate: &start, EndDate: &end})
		assert.ErrorIs(t, err, errs.ErrInvalidDateRange)

		_, err = svc.History(ctx, alice.ID, usecase.TransactionHistoryRequest{Status: "completed"})
		assert.ErrorIs(t, err, errs.ErrValidation)
	})

	t.Run("Recent", func(t *testing.T) {
		recent, err := svc.Recent(ctx, alice.ID, 2)
		require.NoError(t, err)
		assert.Len(t, recent, 2)

		recent, err = svc.Recent(ctx, alice.ID, 0)
		require.NoError(t, err)
		assert.Len(t, recent, 3)

		_, err = svc.Recent(ctx, "USR00000000", 5)
		assert.True(t, errs.IsUserNotFoundError(err))
	})

	t.Run("Status", func(t *testing.T) {
		view, err := svc.Status(ctx, bob.ID, first.Transaction.ID)
		require.NoError(t, err)
		assert.Equal(t, DirectionReceived, view.Direction)
		assert.Equal(t, "Alice", view.CounterpartyName)

		carol := env.SeedUser(t, "carol", "5555666677", "0")
		_, err = svc.Status(ctx, carol.ID, first.Transaction.ID)
		assert.ErrorIs(t, err, errs.ErrTransactionNotFound)

		_, err = svc.Status(ctx, alice.ID, "TXNDEPOSIT")
		assert.ErrorIs(t, err, errs.ErrTransactionNotFound)
	})

	t.Run("Limits", func(t *testing.T) {
		limits, err := svc.Limits(ctx, alice.ID)

		require.NoError(t, err)
		assert.Equal(t, "150.00", entity.FormatAmount(limits.SpentToday))
		assert.Equal(t, "9850.00", entity.FormatAmount(limits.RemainingAmount))
		assert.Equal(t, 2, limits.TransactionsToday)
		assert.Equal(t, 8, limits.RemainingTransactions)
		assert.Equal(t, "PKR", limits.Currency)
	})
}

func TestShutdownRejectsTransfers(t *testing.T) {
	svc, env := newService(t)
	alice := env.SeedUser(t, "alice", "1234567890", "100")
	payee := env.SeedBeneficiary(t, alice.ID, "Carol", "HBL", "5555666677")

	svc.Shutdown()

	_, err := svc.Send(context.Background(), alice.ID, send(payee.ID, "10"))
	assert.ErrorIs(t, err, errs.ErrQueueClosed)
}
