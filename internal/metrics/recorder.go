// Package metrics exposes Prometheus instrumentation for the scoring service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aristath/pulse/internal/domain"
)

const namespace = "pulse"

// Recorder holds the service metrics. A nil *Recorder is valid and records nothing,
// which keeps the engine usable from the CLI without a registry.
type Recorder struct {
	registry *prometheus.Registry

	observationsIngested  prometheus.Counter
	observationsDuplicate prometheus.Counter
	scoringPasses         *prometheus.CounterVec
	scoringDuration       prometheus.Histogram
	averageScore          *prometheus.GaugeVec
	assessments           *prometheus.CounterVec
	httpDuration          *prometheus.HistogramVec
	jobRuns               *prometheus.CounterVec
}

// NewRecorder creates a recorder on its own registry, including Go runtime and
// process collectors
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		observationsIngested: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "observations_ingested_total",
			Help:      "Observations appended to the history log",
		}),
		observationsDuplicate: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "observations_duplicate_total",
			Help:      "Observations ignored as exact duplicates",
		}),
		scoringPasses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scoring_passes_total",
			Help:      "Scoreboard computations by period",
		}, []string{"period"}),
		scoringDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scoring_duration_seconds",
			Help:      "Time spent computing a scoreboard",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		averageScore: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scoreboard_average_score",
			Help:      "Average composite score of the last computed scoreboard",
		}, []string{"period"}),
		assessments: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "risk_assessments_total",
			Help:      "Risk assessments by strategy and tier",
		}, []string{"strategy", "tier"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		jobRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_runs_total",
			Help:      "Scheduled job runs by job and outcome",
		}, []string{"job", "outcome"}),
	}
}

// ObservationsIngested records appended and duplicate observations
func (r *Recorder) ObservationsIngested(inserted, received int) {
	if r == nil {
		return
	}
	r.observationsIngested.Add(float64(inserted))
	if received > inserted {
		r.observationsDuplicate.Add(float64(received - inserted))
	}
}

// ScoringPass records one scoreboard computation
func (r *Recorder) ScoringPass(period string, average float64, took time.Duration) {
	if r == nil {
		return
	}
	r.scoringPasses.WithLabelValues(period).Inc()
	r.scoringDuration.Observe(took.Seconds())
	r.averageScore.WithLabelValues(period).Set(average)
}

// Assessment records one risk assessment
func (r *Recorder) Assessment(a domain.RiskAssessment) {
	if r == nil {
		return
	}
	r.assessments.WithLabelValues(string(a.Strategy), string(a.Tier)).Inc()
}

// HTTPRequest records one served request
func (r *Recorder) HTTPRequest(method, route string, status int, took time.Duration) {
	if r == nil {
		return
	}
	r.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(took.Seconds())
}

// JobRun records one scheduled job run
func (r *Recorder) JobRun(job string, err error) {
	if r == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	r.jobRuns.WithLabelValues(job, outcome).Inc()
}

// Registry returns the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler returns the /metrics HTTP handler
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
