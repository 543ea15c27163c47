package metrics

import (
	"context"
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	coreport "github.com/amirhossein-jamali/plutus-backend/internal/domain/port/core"
	"github.com/amirhossein-jamali/plutus-backend/internal/infrastructure/adapter/storage"
)

const namespace = "plutus"

// Metrics owns the registry and every collector the service exports
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	tableOpsTotal       *prometheus.CounterVec
	tableOpDuration     *prometheus.HistogramVec
	eventsTotal         *prometheus.CounterVec
	storageHealthy      prometheus.Gauge
	storageTableRows    *prometheus.GaugeVec
}

var _ storage.OpObserver = (*Metrics)(nil)

// New registers the collectors on a fresh registry together with the Go and process collectors
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		httpRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests processed, labeled by status code",
		}, []string{"method", "endpoint", "status"}),
		httpRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latency distribution of HTTP requests",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"method", "endpoint"}),
		tableOpsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "table_operations_total",
			Help:      "Table store operations, labeled by table, operation and result",
		}, []string{"table", "op", "result"}),
		tableOpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "table_operation_duration_seconds",
			Help:      "Latency distribution of table store operations",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"table", "op"}),
		eventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "domain_events_total",
			Help:      "Domain events emitted, labeled by type and publish result",
		}, []string{"type", "result"}),
		storageHealthy: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "storage_healthy",
			Help:      "1 when every table is present, 0 when storage is degraded",
		}),
		storageTableRows: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "storage_table_rows",
			Help:      "Data rows per table at the last health check",
		}, []string{"table"}),
	}
}

// Registry exposes the registry for tests and extra collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveHTTP records one served request; endpoint is the route pattern, not the raw path
func (m *Metrics) ObserveHTTP(method, endpoint string, status int, elapsed time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(elapsed.Seconds())
}

// ObserveTableOp records one table store operation
func (m *Metrics) ObserveTableOp(table, op, result string, elapsed time.Duration) {
	m.tableOpsTotal.WithLabelValues(table, op, result).Inc()
	m.tableOpDuration.WithLabelValues(table, op).Observe(elapsed.Seconds())
}

// ObserveStorageHealth exports the result of a storage health check
func (m *Metrics) ObserveStorageHealth(health *storage.HealthReport) {
	if health.Status == storage.StatusHealthy {
		m.storageHealthy.Set(1)
	} else {
		m.storageHealthy.Set(0)
	}
	for name, table := range health.Tables {
		m.storageTableRows.WithLabelValues(name).Set(float64(table.Rows))
	}
}

// RegisterDBStats exports connection pool statistics of the blob store database
func (m *Metrics) RegisterDBStats(db *sql.DB, name string) error {
	return m.registry.Register(collectors.NewDBStatsCollector(db, name))
}

// CountingPublisher decorates an EventPublisher with a per-type event counter
type CountingPublisher struct {
	next    coreport.EventPublisher
	metrics *Metrics
}

var _ coreport.EventPublisher = (*CountingPublisher)(nil)

// NewCountingPublisher wraps next
func NewCountingPublisher(next coreport.EventPublisher, m *Metrics) *CountingPublisher {
	return &CountingPublisher{next: next, metrics: m}
}

// Publish forwards the event and counts the outcome
func (p *CountingPublisher) Publish(ctx context.Context, event coreport.Event) error {
	err := p.next.Publish(ctx, event)
	result := "ok"
	if err != nil {
		result = "error"
	}
	p.metrics.eventsTotal.WithLabelValues(string(event.Type), result).Inc()
	return err
}

func (p *CountingPublisher) Close() error {
	return p.next.Close()
}
