package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metric definitions for the AuditReady data layer

var (
	// Mapper metrics
	MappingsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "auditready",
			Subsystem: "mapper",
			Name:      "mappings_created_total",
			Help:      "Unified requirement mappings created",
		},
	)

	MappingsRemapped = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "auditready",
			Subsystem: "mapper",
			Name:      "mappings_remapped_total",
			Help:      "Mappings moved between unified requirements",
		},
	)

	ReconcileBackfills = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "auditready",
			Subsystem: "mapper",
			Name:      "reconcile_backfills_total",
			Help:      "Requirements whose category FK was backfilled by name match",
		},
	)

	ReconcileDisagreements = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "auditready",
			Subsystem: "mapper",
			Name:      "reconcile_disagreements_total",
			Help:      "Category text/FK disagreements queued for human review",
		},
	)

	// Guidance pipeline metrics
	VersionsPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "auditready",
			Subsystem: "guidance",
			Name:      "versions_published_total",
			Help:      "Guidance versions published",
		},
	)

	SuggestionsProposed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "auditready",
			Subsystem: "guidance",
			Name:      "suggestions_proposed_total",
			Help:      "AI suggestions proposed, by review outcome at proposal time",
		},
		[]string{"result"},
	)

	AIGenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "auditready",
			Subsystem: "guidance",
			Name:      "ai_generation_duration_seconds",
			Help:      "Latency of AI guidance generation calls",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		},
	)

	// Benchmark metrics
	CohortsSuppressed = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "auditready",
			Subsystem: "benchmark",
			Name:      "cohorts_suppressed_total",
			Help:      "Benchmark cohorts withheld for falling below the anonymity floor",
		},
	)
)
