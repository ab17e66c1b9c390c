// Package metrics provides Prometheus metrics for parameter sessions.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Tubbz-alt/thor/internal/events"
)

var (
	sessionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "thor",
		Subsystem: "params",
		Name:      "sessions_total",
		Help:      "Parameter sessions by caller and result",
	}, []string{"source", "result"})

	sessionFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "thor",
		Subsystem: "params",
		Name:      "session_failures_total",
		Help:      "Failed parameter sessions by tier and error code",
	}, []string{"tier", "code"})

	sessionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "thor",
		Subsystem: "params",
		Name:      "session_duration_seconds",
		Help:      "Wall time to resolve and validate a parameter set",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
	}, []string{"source"})

	includesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "thor",
		Subsystem: "params",
		Name:      "includes_total",
		Help:      "Configuration files read through -cf",
	})

	includeDepth = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "thor",
		Subsystem: "params",
		Name:      "include_depth",
		Help:      "Nesting depth of configuration files when entered",
		Buckets:   prometheus.LinearBuckets(1, 1, 8),
	})

	headersTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "thor",
		Subsystem: "y4m",
		Name:      "headers_applied_total",
		Help:      "YUV4MPEG2 headers that overrode configured geometry",
	})

	warningsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "thor",
		Subsystem: "params",
		Name:      "validation_warnings_total",
		Help:      "Parameters adjusted by validation instead of rejected",
	})

	// Local snapshot for the health endpoint.
	stats   Stats
	statsMu sync.RWMutex
)

// Stats summarizes the sessions seen by this process.
type Stats struct {
	Sessions  int
	Failures  int
	Warnings  int
	LastError string
}

// RecordSession counts a completed session.
func RecordSession(e events.SessionCompletedEvent) {
	result := "ok"
	if !e.Success {
		result = "failed"
		sessionFailures.WithLabelValues(e.Tier, e.Code).Inc()
	}
	sessionsTotal.WithLabelValues(e.Source, result).Inc()
	sessionDuration.WithLabelValues(e.Source).Observe(e.Seconds)

	statsMu.Lock()
	defer statsMu.Unlock()
	stats.Sessions++
	if !e.Success {
		stats.Failures++
		stats.LastError = e.Error
	}
}

// RecordInclude counts a configuration file entered through -cf.
func RecordInclude(e events.IncludeEnteredEvent) {
	includesTotal.Inc()
	includeDepth.Observe(float64(e.Depth))
}

// RecordHeader counts an applied container header.
func RecordHeader(_ events.HeaderProbedEvent) {
	headersTotal.Inc()
}

// RecordWarning counts a validation warning.
func RecordWarning(_ events.ValidationWarningEvent) {
	warningsTotal.Inc()

	statsMu.Lock()
	stats.Warnings++
	statsMu.Unlock()
}

// GetStats returns a copy of the session summary.
func GetStats() Stats {
	statsMu.RLock()
	defer statsMu.RUnlock()
	return stats
}

// Subscribe feeds the metrics from bus. The returned function detaches all handlers.
func Subscribe(bus *events.Bus) func() {
	unsubs := []func(){
		bus.Subscribe(RecordSession),
		bus.Subscribe(RecordInclude),
		bus.Subscribe(RecordHeader),
		bus.Subscribe(RecordWarning),
	}
	return func() {
		for _, unsub := range unsubs {
			unsub()
		}
	}
}
