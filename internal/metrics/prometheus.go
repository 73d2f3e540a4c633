package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the ingestion service

var (
	// API Call metrics
	APICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nbacap_api_calls_total",
			Help: "Total number of upstream API calls",
		},
		[]string{"upstream", "endpoint", "status"},
	)

	APICallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nbacap_api_call_duration_seconds",
			Help:    "Duration of upstream API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"upstream", "endpoint"},
	)

	APIRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nbacap_api_retries_total",
			Help: "Total number of in-client retries on retryable statuses",
		},
		[]string{"upstream", "status"},
	)

	// Query tool batch executor metrics
	BatchCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nbacap_querytool_batch_calls_total",
			Help: "Total number of query tool batch calls by outcome",
		},
		[]string{"path", "outcome"},
	)

	BatchSplitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nbacap_querytool_batch_splits_total",
			Help: "Total number of batch bisections by reason",
		},
		[]string{"path", "reason"},
	)

	BatchRequeuesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nbacap_querytool_batch_requeues_total",
			Help: "Total number of single-identifier batches re-enqueued after backoff",
		},
		[]string{"path"},
	)

	BatchWarningsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nbacap_querytool_batch_warnings_total",
			Help: "Total number of skipped or possibly truncated batches",
		},
		[]string{"path", "kind"},
	)

	BatchRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nbacap_querytool_rows_total",
			Help: "Total number of rows accepted from the query tool",
		},
		[]string{"path"},
	)

	// Database metrics
	DBRowsUpserted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nbacap_db_rows_upserted_total",
			Help: "Total number of rows upserted into the warehouse",
		},
		[]string{"table"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nbacap_db_query_duration_seconds",
			Help:    "Duration of database statements in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nbacap_db_connections_active",
			Help: "Number of active database connections",
		},
	)

	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nbacap_db_connections_idle",
			Help: "Number of idle database connections",
		},
	)

	// Cache metrics
	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nbacap_cache_hits_total",
			Help: "Total number of cache hits",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nbacap_cache_misses_total",
			Help: "Total number of cache misses",
		},
	)

	// Ingest pass metrics
	PassOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nbacap_pass_operations_total",
			Help: "Total number of ingest passes",
		},
		[]string{"pass", "status"},
	)

	PassDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nbacap_pass_duration_seconds",
			Help:    "Duration of ingest passes in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"pass"},
	)

	LastSuccessfulPass = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nbacap_last_successful_pass_timestamp",
			Help: "Timestamp of last successful ingest pass",
		},
		[]string{"pass"},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nbacap_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)
)

// RecordAPICall records an API call metric
func RecordAPICall(upstream, endpoint, status string, duration float64) {
	APICallsTotal.WithLabelValues(upstream, endpoint, status).Inc()
	APICallDuration.WithLabelValues(upstream, endpoint).Observe(duration)
}

// RecordAPIRetry records an in-client retry
func RecordAPIRetry(upstream string, status int) {
	APIRetriesTotal.WithLabelValues(upstream, strconv.Itoa(status)).Inc()
}

// RecordBatchCall records the outcome of one batch executor call
func RecordBatchCall(path, outcome string) {
	BatchCallsTotal.WithLabelValues(path, outcome).Inc()
}

// RecordBatchSplit records a bisection
func RecordBatchSplit(path, reason string) {
	BatchSplitsTotal.WithLabelValues(path, reason).Inc()
}

// RecordBatchRequeue records a size-1 backoff requeue
func RecordBatchRequeue(path string) {
	BatchRequeuesTotal.WithLabelValues(path).Inc()
}

// RecordBatchWarning records a skipped or truncated batch
func RecordBatchWarning(path, kind string) {
	BatchWarningsTotal.WithLabelValues(path, kind).Inc()
}

// RecordBatchRows records rows merged into the accumulator
func RecordBatchRows(path string, n int) {
	BatchRowsTotal.WithLabelValues(path).Add(float64(n))
}

// RecordUpsert records rows written to a table
func RecordUpsert(table string, rows int64, duration float64) {
	DBRowsUpserted.WithLabelValues(table).Add(float64(rows))
	DBQueryDuration.WithLabelValues("upsert", table).Observe(duration)
}

// RecordCacheHit records a cache hit
func RecordCacheHit() {
	CacheHitsTotal.Inc()
}

// RecordCacheMiss records a cache miss
func RecordCacheMiss() {
	CacheMissesTotal.Inc()
}

// RecordPass records an ingest pass
func RecordPass(pass, status string, duration float64) {
	PassOperationsTotal.WithLabelValues(pass, status).Inc()
	PassDuration.WithLabelValues(pass).Observe(duration)

	if status == "success" {
		LastSuccessfulPass.WithLabelValues(pass).SetToCurrentTime()
	}
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

// UpdateDBConnectionStats updates database connection pool statistics
func UpdateDBConnectionStats(active, idle int32) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}
