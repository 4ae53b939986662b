// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "call_review"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Rating store metrics
	EditsApplied prometheus.Counter
	FlagToggles  prometheus.Counter

	// Snapshot cache metrics
	CacheLoadFailures prometheus.Counter
	CacheSaveFailures prometheus.Counter

	// Remote sync metrics
	RemoteFetchFailures  prometheus.Counter
	RemoteUpsertFailures prometheus.Counter
	RemoteRowsMerged     prometheus.Counter

	// Export metrics
	ExportsBuilt  prometheus.Counter
	ExportUploads prometheus.Counter
}

// Default is the global metrics instance.
var Default = NewMetrics()

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		EditsApplied: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "edits_applied_total",
			Help:      "Total number of rating field edits applied in memory",
		}),
		FlagToggles: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flag_toggles_total",
			Help:      "Total number of per-call completion flag toggles",
		}),
		CacheLoadFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_load_failures_total",
			Help:      "Snapshot cache reads that degraded to an empty collection",
		}),
		CacheSaveFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_save_failures_total",
			Help:      "Snapshot cache writes that were logged and swallowed",
		}),
		RemoteFetchFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_fetch_failures_total",
			Help:      "Bulk remote rating fetches that failed after retries",
		}),
		RemoteUpsertFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_upsert_failures_total",
			Help:      "Fire-and-forget remote upserts that failed",
		}),
		RemoteRowsMerged: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_rows_merged_total",
			Help:      "Remote rating rows merged into the local collection",
		}),
		ExportsBuilt: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_built_total",
			Help:      "Annotated exports materialized",
		}),
		ExportUploads: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "export_uploads_total",
			Help:      "Annotated exports uploaded to object storage",
		}),
	}
}
