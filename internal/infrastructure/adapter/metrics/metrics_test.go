package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	coreport "github.com/amirhossein-jamali/plutus-backend/internal/domain/port/core"
	"github.com/amirhossein-jamali/plutus-backend/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/plutus-backend/internal/infrastructure/adapter/storage"
	mocks "github.com/amirhossein-jamali/plutus-backend/mocks/port/core"
)

func TestObserveHTTP(t *testing.T) {
	m := New()

	m.ObserveHTTP(http.MethodPost, "/api/send-money", http.StatusOK, 20*time.Millisecond)
	m.ObserveHTTP(http.MethodPost, "/api/send-money", http.StatusOK, 30*time.Millisecond)
	m.ObserveHTTP(http.MethodPost, "/api/send-money", http.StatusPaymentRequired, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("POST", "/api/send-money", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("POST", "/api/send-money", "402")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.httpRequestDuration))
}

func TestObserveTableOp(t *testing.T) {
	m := New()

	m.ObserveTableOp("users", "read", "ok", time.Millisecond)
	m.ObserveTableOp("users", "mutate", "error", time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.tableOpsTotal.WithLabelValues("users", "read", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.tableOpsTotal.WithLabelValues("users", "mutate", "error")))
}

func TestObserveStorageHealth(t *testing.T) {
	m := New()

	m.ObserveStorageHealth(&storage.HealthReport{
		Status: storage.StatusHealthy,
		Tables: map[string]*persistence.TableInfo{
			"users": {Name: "users", Exists: true, Rows: 3},
		},
	})
	assert.Equal(t, 1.0, testutil.ToFloat64(m.storageHealthy))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.storageTableRows.WithLabelValues("users")))

	m.ObserveStorageHealth(&storage.HealthReport{Status: storage.StatusDegraded})
	assert.Equal(t, 0.0, testutil.ToFloat64(m.storageHealthy))
}

func TestCountingPublisher(t *testing.T) {
	m := New()
	next := new(mocks.MockEventPublisher)
	next.On("Publish", mock.Anything, mock.MatchedBy(func(e coreport.Event) bool {
		return e.Type == coreport.EventTransferCompleted
	})).Return(nil)
	next.On("Publish", mock.Anything, mock.MatchedBy(func(e coreport.Event) bool {
		return e.Type == coreport.EventTransferFailed
	})).Return(errors.New("broker down"))
	next.On("Close").Return(nil)

	publisher := NewCountingPublisher(next, m)
	ctx := context.Background()

	require.NoError(t, publisher.Publish(ctx, coreport.Event{Type: coreport.EventTransferCompleted}))
	assert.Error(t, publisher.Publish(ctx, coreport.Event{Type: coreport.EventTransferFailed}))
	require.NoError(t, publisher.Close())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.eventsTotal.WithLabelValues("transfer.completed", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.eventsTotal.WithLabelValues("transfer.failed", "error")))
	next.AssertExpectations(t)
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveHTTP(http.MethodGet, "/api/balance", http.StatusOK, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `plutus_http_requests_total{endpoint="/api/balance",method="GET",status="200"} 1`)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestNew_IndependentRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New()
		New()
	})
}
