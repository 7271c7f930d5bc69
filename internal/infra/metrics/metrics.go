package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "deadline"

var (
	ScanPasses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scan_passes_total",
		Help:      "Number of scan passes by result.",
	}, []string{"result"})

	ScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "scan_duration_seconds",
		Help:      "Duration of a full scan pass over all active users.",
		Buckets:   prometheus.DefBuckets,
	})

	Candidates = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "candidates_total",
		Help:      "Number of notification candidates produced by the scanner.",
	}, []string{"category"})

	AlertsSuppressed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "alerts_suppressed_total",
		Help:      "Number of candidates not surfaced, by reason.",
	}, []string{"reason"})

	AlertsDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "alerts_dispatched_total",
		Help:      "Number of alerts surfaced to users.",
	}, []string{"category"})

	DismissalWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dismissal_writes_total",
		Help:      "Number of snooze, dismiss and undismiss writes by result.",
	}, []string{"action", "result"})
)

// Suppression reasons.
const (
	ReasonDismissed = "dismissed"
	ReasonSurfaced  = "surfaced"
)

// Write and pass results.
const (
	ResultOK    = "ok"
	ResultError = "error"
)
