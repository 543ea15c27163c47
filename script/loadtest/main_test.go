package main

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentile(t *testing.T) {
	sorted := []time.Duration{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	assert.Equal(t, time.Duration(6), percentile(sorted, 50))
	assert.Equal(t, time.Duration(10), percentile(sorted, 99))
	assert.Equal(t, time.Duration(10), percentile(sorted, 100))
	assert.Zero(t, percentile(nil, 50))
}

func TestStatsAdd(t *testing.T) {
	s := newStats()
	s.add(result{status: http.StatusCreated, elapsed: time.Millisecond})
	s.add(result{status: http.StatusOK, elapsed: time.Millisecond, replay: true})
	s.add(result{status: http.StatusTooManyRequests, elapsed: time.Millisecond})
	s.add(result{err: errors.New("connection refused")})

	assert.Equal(t, 2, s.succeeded)
	assert.Equal(t, 1, s.replays)
	assert.Equal(t, 1, s.byStatus[http.StatusTooManyRequests])
	assert.Equal(t, 1, s.errors["connection refused"])
	assert.Len(t, s.elapsed, 4)
}

func TestParseFlags(t *testing.T) {
	cfg, err := parseFlags([]string{"-c", "8", "-n", "50", "--replay-rate", "0.5", "--amounts", "1.00,2.00"})
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.concurrency)
	assert.Equal(t, 50, cfg.requests)
	assert.Equal(t, []string{"1.00", "2.00"}, cfg.amounts)

	_, err = parseFlags([]string{"--replay-rate", "2"})
	assert.Error(t, err)
	_, err = parseFlags([]string{"-c", "0"})
	assert.Error(t, err)
}

func TestCallUnwrapsEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key-1", r.Header.Get("Idempotency-Key"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"status":"success","data":{"user_id":"USR_1"}}`))
	}))
	defer srv.Close()

	status, data, err := call(srv.Client(), http.MethodPost, srv.URL, map[string]any{}, map[string]string{"Idempotency-Key": "key-1"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, status)
	assert.JSONEq(t, `{"user_id":"USR_1"}`, string(data))
}

func TestAccountNumber(t *testing.T) {
	for i := 0; i < 20; i++ {
		n := accountNumber(i)
		assert.Len(t, n, 12)
		assert.NotEqual(t, byte('0'), n[0])
	}
}
