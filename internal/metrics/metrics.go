package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects Prometheus counters and histograms for the survey service.
type Metrics struct {
	registry                *prometheus.Registry
	missionTransitionsTotal *prometheus.CounterVec
	transitionFailuresTotal *prometheus.CounterVec
	progressReportsTotal    prometheus.Counter
	missionDurationMinutes  prometheus.Histogram
}

// New constructs a metrics registry and registers all collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	missionTransitionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dronesurvey",
			Subsystem: "mission",
			Name:      "transitions_total",
			Help:      "Total number of mission state transitions.",
		},
		[]string{"event", "to"},
	)
	transitionFailuresTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dronesurvey",
			Subsystem: "mission",
			Name:      "transition_failures_total",
			Help:      "Total rejected mission transitions by reason.",
		},
		[]string{"reason"},
	)
	progressReportsTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "dronesurvey",
			Subsystem: "mission",
			Name:      "progress_reports_total",
			Help:      "Total accepted mission progress reports.",
		},
	)
	missionDurationMinutes := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "dronesurvey",
			Subsystem: "mission",
			Name:      "duration_minutes",
			Help:      "Actual mission duration from start to completion.",
			Buckets:   []float64{1, 5, 10, 15, 30, 45, 60, 90, 120, 240},
		},
	)

	registry.MustRegister(
		missionTransitionsTotal,
		transitionFailuresTotal,
		progressReportsTotal,
		missionDurationMinutes,
	)

	return &Metrics{
		registry:                registry,
		missionTransitionsTotal: missionTransitionsTotal,
		transitionFailuresTotal: transitionFailuresTotal,
		progressReportsTotal:    progressReportsTotal,
		missionDurationMinutes:  missionDurationMinutes,
	}
}

// ObserveTransition records a successful mission transition.
func (m *Metrics) ObserveTransition(event, to string) {
	if m == nil {
		return
	}
	m.missionTransitionsTotal.WithLabelValues(event, to).Inc()
}

// ObserveTransitionFailure records a rejected transition by reason.
func (m *Metrics) ObserveTransitionFailure(reason string) {
	if m == nil {
		return
	}
	m.transitionFailuresTotal.WithLabelValues(reason).Inc()
}

// ObserveProgressReport records one accepted progress report.
func (m *Metrics) ObserveProgressReport() {
	if m == nil {
		return
	}
	m.progressReportsTotal.Inc()
}

// ObserveMissionDuration records the actual duration of a completed mission.
func (m *Metrics) ObserveMissionDuration(minutes float64) {
	if m == nil {
		return
	}
	m.missionDurationMinutes.Observe(minutes)
}

// Handler returns an HTTP handler serving the registry in Prometheus format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
