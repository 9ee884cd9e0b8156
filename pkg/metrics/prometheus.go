// Package metrics provides Prometheus metrics for the Vero growth toolkit.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Label values shared by callers.
const (
	OutcomeEstimated    = "estimated"
	OutcomeTooFew       = "too_few_samples"
	OutcomeNoQualifying = "no_qualifying_pair"

	SourceManual    = "manual"
	SourceEstimated = "estimated"
	SourceNone      = "none"
)

// Manager owns every Prometheus collector of the toolkit.
type Manager struct {
	namespace       string
	subsystem       string
	durationBuckets []float64
	rateBuckets     []float64
	enabled         bool
	constLabels     prometheus.Labels
	registry        prometheus.Registerer

	// Estimation
	phvEstimates     *prometheus.CounterVec
	phvSkippedPairs  prometheus.Counter
	phvSegmentRate   prometheus.Histogram
	effectivePHVUsed *prometheus.CounterVec

	// Window evaluation
	windowEvaluations *prometheus.CounterVec
	windowActive      *prometheus.CounterVec

	// Assessment
	assessments        prometheus.Counter
	assessmentDuration prometheus.Histogram
	staleAthletes      prometheus.Gauge
	rosterAthletes     prometheus.Gauge

	// Errors
	errorsByComponent *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:       "vero",
		subsystem:       "growth",
		durationBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
		rateBuckets:     []float64{2, 4, 6, 8, 10, 12, 16},
		enabled:         true,
		constLabels:     prometheus.Labels{},
		registry:        prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	m.phvEstimates = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "phv_estimates_total",
		Help:        "PHV estimation attempts by outcome",
		ConstLabels: m.constLabels,
	}, []string{"outcome"})

	m.phvSkippedPairs = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "phv_skipped_pairs_total",
		Help:        "Consecutive sample pairs skipped for spanning less than the minimum span",
		ConstLabels: m.constLabels,
	})

	m.phvSegmentRate = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "phv_peak_rate_cm",
		Help:        "Winning normalized growth rate in centimetres per normalization window",
		Buckets:     m.rateBuckets,
		ConstLabels: m.constLabels,
	})

	m.effectivePHVUsed = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "effective_phv_total",
		Help:        "Effective PHV resolutions by source (manual, estimated, none)",
		ConstLabels: m.constLabels,
	}, []string{"source"})

	m.windowEvaluations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "window_evaluations_total",
		Help:        "Sensitive window evaluations by status",
		ConstLabels: m.constLabels,
	}, []string{"status"})

	m.windowActive = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "window_active_total",
		Help:        "Number of times each sensitive window was found active",
		ConstLabels: m.constLabels,
	}, []string{"window"})

	m.assessments = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "assessments_total",
		Help:        "Athlete assessments computed",
		ConstLabels: m.constLabels,
	})

	m.assessmentDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "assessment_duration_milliseconds",
		Help:        "Time spent computing one athlete assessment",
		Buckets:     m.durationBuckets,
		ConstLabels: m.constLabels,
	})

	m.staleAthletes = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "stale_athletes",
		Help:        "Athletes whose latest growth sample is older than the staleness threshold",
		ConstLabels: m.constLabels,
	})

	m.rosterAthletes = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "roster_athletes",
		Help:        "Athletes currently held in the store",
		ConstLabels: m.constLabels,
	})

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "errors_total",
		Help:        "Errors by component and type",
		ConstLabels: m.constLabels,
	}, []string{"component", "type"})
}

// RecordPHVEstimate counts an estimation attempt with its outcome.
func (m *Manager) RecordPHVEstimate(outcome string) {
	if !m.enabled {
		return
	}
	m.phvEstimates.WithLabelValues(outcome).Inc()
}

// RecordSkippedPairs adds n skipped pairs.
func (m *Manager) RecordSkippedPairs(n int) {
	if !m.enabled || n <= 0 {
		return
	}
	m.phvSkippedPairs.Add(float64(n))
}

// ObservePeakRate records the winning segment rate.
func (m *Manager) ObservePeakRate(rate float64) {
	if !m.enabled {
		return
	}
	m.phvSegmentRate.Observe(rate)
}

// RecordEffectivePHV counts which source supplied the effective PHV.
func (m *Manager) RecordEffectivePHV(source string) {
	if !m.enabled {
		return
	}
	m.effectivePHVUsed.WithLabelValues(source).Inc()
}

// RecordWindowEvaluation counts an evaluation and each active window.
func (m *Manager) RecordWindowEvaluation(status string, active []string) {
	if !m.enabled {
		return
	}
	m.windowEvaluations.WithLabelValues(status).Inc()
	for _, w := range active {
		m.windowActive.WithLabelValues(w).Inc()
	}
}

// RecordAssessment counts an assessment and its duration.
func (m *Manager) RecordAssessment(durationMs float64) {
	if !m.enabled {
		return
	}
	m.assessments.Inc()
	m.assessmentDuration.Observe(durationMs)
}

// UpdateStaleAthletes sets the stale athlete gauge.
func (m *Manager) UpdateStaleAthletes(count int) {
	if !m.enabled {
		return
	}
	m.staleAthletes.Set(float64(count))
}

// UpdateRosterAthletes sets the roster size gauge.
func (m *Manager) UpdateRosterAthletes(count int) {
	if !m.enabled {
		return
	}
	m.rosterAthletes.Set(float64(count))
}

// RecordError counts an error for a component.
func (m *Manager) RecordError(component, errorType string) {
	if !m.enabled {
		return
	}
	m.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// Package-level helpers bound to the global manager.

// RecordPHVEstimate counts an estimation attempt on the global manager.
func RecordPHVEstimate(outcome string) { globalManager.RecordPHVEstimate(outcome) }

// RecordSkippedPairs adds skipped pairs on the global manager.
func RecordSkippedPairs(n int) { globalManager.RecordSkippedPairs(n) }

// ObservePeakRate records the winning rate on the global manager.
func ObservePeakRate(rate float64) { globalManager.ObservePeakRate(rate) }

// RecordEffectivePHV counts the PHV source on the global manager.
func RecordEffectivePHV(source string) { globalManager.RecordEffectivePHV(source) }

// RecordWindowEvaluation counts an evaluation on the global manager.
func RecordWindowEvaluation(status string, active []string) {
	globalManager.RecordWindowEvaluation(status, active)
}

// RecordAssessment counts an assessment on the global manager.
func RecordAssessment(durationMs float64) { globalManager.RecordAssessment(durationMs) }

// UpdateStaleAthletes sets the stale gauge on the global manager.
func UpdateStaleAthletes(count int) { globalManager.UpdateStaleAthletes(count) }

// UpdateRosterAthletes sets the roster gauge on the global manager.
func UpdateRosterAthletes(count int) { globalManager.UpdateRosterAthletes(count) }

// RecordError counts an error on the global manager.
func RecordError(component, errorType string) { globalManager.RecordError(component, errorType) }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// WriteTextfile writes every metric of the custom registry to path in the
// text exposition format, for pickup by a textfile collector.
func WriteTextfile(path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty path", ErrWriteFailed)
	}
	if err := prometheus.WriteToTextfile(path, customRegistry); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteFailed, err)
	}
	return nil
}
