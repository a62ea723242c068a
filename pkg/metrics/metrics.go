package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Gateway metrics
	GatewayRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "driftbase_gateway_requests_total",
			Help: "Total number of gateway requests by method and status",
		},
		[]string{"method", "status"},
	)

	GatewayRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "driftbase_gateway_request_duration_seconds",
			Help:    "Gateway request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// Ingestion metrics
	IngestPutDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "driftbase_ingest_put_duration_seconds",
			Help:    "Time taken to complete an object PUT",
			Buckets: prometheus.DefBuckets,
		},
	)

	IngestBlocksWritten = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "driftbase_ingest_blocks_written_total",
			Help: "Total number of blocks written during ingestion",
		},
	)

	IngestFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "driftbase_ingest_failures_total",
			Help: "Total number of failed ingestion attempts by reason",
		},
		[]string{"reason"},
	)

	// Retrieval metrics
	RetrieveGetDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "driftbase_retrieve_get_duration_seconds",
			Help:    "Time taken to locate and begin streaming an object GET",
			Buckets: prometheus.DefBuckets,
		},
	)

	RetrieveBlocksRead = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "driftbase_retrieve_blocks_read_total",
			Help: "Total number of blocks read during retrieval",
		},
	)

	// Block RPC metrics
	BlockPutDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "driftbase_blockrpc_put_duration_seconds",
			Help:    "Time taken for a quorum PutBlock round",
			Buckets: prometheus.DefBuckets,
		},
	)

	BlockGetDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "driftbase_blockrpc_get_duration_seconds",
			Help:    "Time taken for a GetBlock round including replica fallback",
			Buckets: prometheus.DefBuckets,
		},
	)

	BlockDigestMismatchTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "driftbase_blockrpc_digest_mismatch_total",
			Help: "Total number of blocks rejected for failing digest verification",
		},
	)

	// Replicated table metrics
	TableInsertDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "driftbase_table_insert_duration_seconds",
			Help:    "Time taken for a quorum table insert, by entity kind",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	TableQuorumFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "driftbase_table_quorum_failures_total",
			Help: "Total number of table inserts that failed to reach quorum, by entity kind",
		},
		[]string{"kind"},
	)

	// Ring metrics
	RingMembersTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "driftbase_ring_members_total",
			Help: "Number of nodes currently in the membership view",
		},
	)
)

func init() {
	prometheus.MustRegister(GatewayRequestsTotal)
	prometheus.MustRegister(GatewayRequestDuration)
	prometheus.MustRegister(IngestPutDuration)
	prometheus.MustRegister(IngestBlocksWritten)
	prometheus.MustRegister(IngestFailuresTotal)
	prometheus.MustRegister(RetrieveGetDuration)
	prometheus.MustRegister(RetrieveBlocksRead)
	prometheus.MustRegister(BlockPutDuration)
	prometheus.MustRegister(BlockGetDuration)
	prometheus.MustRegister(BlockDigestMismatchTotal)
	prometheus.MustRegister(TableInsertDuration)
	prometheus.MustRegister(TableQuorumFailuresTotal)
	prometheus.MustRegister(RingMembersTotal)
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for timing operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	duration := time.Since(t.start).Seconds()
	histogram.Observe(duration)
}

// ObserveDurationVec records the duration to a histogram vec with labels.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	duration := time.Since(t.start).Seconds()
	histogram.WithLabelValues(labels...).Observe(duration)
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
