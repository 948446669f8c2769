// Package metrics provides Prometheus metrics for the Clover service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SyncPassesTotal tracks completed sync passes by outcome
	SyncPassesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "sync",
			Name:      "passes_total",
			Help:      "Total number of sync passes by outcome",
		},
		[]string{"status"},
	)

	// SyncPassDuration tracks sync pass duration in seconds
	SyncPassDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "clover",
			Subsystem: "sync",
			Name:      "pass_duration_seconds",
			Help:      "Duration of sync passes in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
	)

	// GuestsCreatedTotal tracks new canonical guests created
	GuestsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "sync",
			Name:      "guests_created_total",
			Help:      "Total number of new canonical guests created",
		},
	)

	// GuestsUpdatedTotal tracks canonical guests updated by a pass
	GuestsUpdatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "sync",
			Name:      "guests_updated_total",
			Help:      "Total number of canonical guest updates",
		},
	)

	// GroupErrorsTotal tracks per-group write failures
	GroupErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "sync",
			Name:      "group_errors_total",
			Help:      "Total number of guest groups that failed to upsert",
		},
	)

	// AllocationFallbacksTotal tracks degraded customer number allocations
	AllocationFallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "sync",
			Name:      "allocation_fallbacks_total",
			Help:      "Total number of customer numbers issued via the random fallback",
		},
	)

	// ProfilesSeen tracks raw profiles read in the latest pass
	ProfilesSeen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "clover",
			Subsystem: "sync",
			Name:      "profiles_seen",
			Help:      "Raw guest profiles read in the most recent pass",
		},
	)

	// GroupsSeen tracks groups formed in the latest pass
	GroupsSeen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "clover",
			Subsystem: "sync",
			Name:      "groups_seen",
			Help:      "Guest groups formed in the most recent pass",
		},
	)
)
