// Package metrics provides Prometheus metrics for polykv.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every metric polykv exposes, each registered against its
// own prometheus.Registerer so a caller can mount more than one Registry
// (e.g. in tests) without colliding on the global default registry.
type Registry struct {
	reg *prometheus.Registry

	// Transaction metrics
	TxnsCommitted prometheus.Counter
	TxnsAborted   prometheus.Counter
	TxnConflicts  prometheus.Counter
	TxnDuration   prometheus.Histogram

	// Operation metrics, labeled by modality (blob/document/graph/path)
	// and op (read/write/scan/sample/measure).
	OpsTotal    *prometheus.CounterVec
	OpDuration  *prometheus.HistogramVec
	OpTaskCount *prometheus.HistogramVec

	// Substrate / durability metrics
	SubstrateSize  prometheus.Gauge
	WALSegmentSize prometheus.Gauge
	WALAppends     prometheus.Counter

	// Snapshot / arena metrics
	SnapshotsOpen prometheus.Gauge
	ArenaBytes    prometheus.Gauge
}

// NewRegistry creates and registers every polykv metric against a fresh
// prometheus.Registry.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		reg: reg,

		TxnsCommitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "polykv",
			Subsystem: "txn",
			Name:      "committed_total",
			Help:      "Total number of transactions successfully committed.",
		}),
		TxnsAborted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "polykv",
			Subsystem: "txn",
			Name:      "aborted_total",
			Help:      "Total number of transactions explicitly aborted.",
		}),
		TxnConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "polykv",
			Subsystem: "txn",
			Name:      "conflicts_total",
			Help:      "Total number of commits rejected due to a watch-set conflict.",
		}),
		TxnDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "polykv",
			Subsystem: "txn",
			Name:      "duration_seconds",
			Help:      "Wall-clock duration of a transaction from Stage to Commit/Abort.",
			Buckets:   prometheus.DefBuckets,
		}),

		OpsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "polykv",
			Subsystem: "op",
			Name:      "total",
			Help:      "Total number of batched operations, by modality and op name.",
		}, []string{"modality", "op"}),
		OpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "polykv",
			Subsystem: "op",
			Name:      "duration_seconds",
			Help:      "Duration of a batched operation, by modality and op name.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"modality", "op"}),
		OpTaskCount: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "polykv",
			Subsystem: "op",
			Name:      "task_count",
			Help:      "Number of strided tasks in a single batched operation call.",
			Buckets:   []float64{1, 8, 64, 256, 1024, 8192, 65536},
		}, []string{"modality", "op"}),

		SubstrateSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "polykv",
			Subsystem: "substrate",
			Name:      "size_bytes",
			Help:      "Approximate size in bytes of data held by the active substrate.",
		}),
		WALSegmentSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "polykv",
			Subsystem: "wal",
			Name:      "segment_size_bytes",
			Help:      "Size in bytes of the current WAL segment file.",
		}),
		WALAppends: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "polykv",
			Subsystem: "wal",
			Name:      "appends_total",
			Help:      "Total number of entries appended to the WAL.",
		}),

		SnapshotsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "polykv",
			Subsystem: "snapshot",
			Name:      "open",
			Help:      "Number of snapshots currently pinned open.",
		}),
		ArenaBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "polykv",
			Subsystem: "arena",
			Name:      "bytes_in_use",
			Help:      "Bytes currently checked out from the response arena pool.",
		}),
	}

	reg.MustRegister(
		r.TxnsCommitted, r.TxnsAborted, r.TxnConflicts, r.TxnDuration,
		r.OpsTotal, r.OpDuration, r.OpTaskCount,
		r.SubstrateSize, r.WALSegmentSize, r.WALAppends,
		r.SnapshotsOpen, r.ArenaBytes,
	)

	return r
}

// Register adds an additional prometheus.Collector (e.g. a Collector
// sampling live substrate/WAL state) to the registry.
func (r *Registry) Register(c prometheus.Collector) error {
	return r.reg.Register(c)
}

// Handler returns an HTTP handler exposing every registered metric in
// Prometheus text exposition format, mountable at /metrics.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
