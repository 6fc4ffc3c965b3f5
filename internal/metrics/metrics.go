// Package metrics exposes Prometheus instrumentation for the rate engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder records engine metrics. A nil *Recorder is valid and records nothing.
type Recorder struct {
	upstreamFetches *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec
	cacheLookups    *prometheus.CounterVec
	modelOutcomes   *prometheus.CounterVec
	archiveSubmits  *prometheus.CounterVec
	httpLatency     *prometheus.HistogramVec
}

// New creates a Recorder whose collectors are registered on reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		upstreamFetches: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartrate_upstream_fetches_total",
				Help: "Upstream rate and history fetches by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
		upstreamLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "smartrate_upstream_fetch_duration_seconds",
				Help:    "Duration of upstream fetches in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider"},
		),
		cacheLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartrate_rate_cache_lookups_total",
				Help: "Rate cache lookups by source kind and result",
			},
			[]string{"kind", "result"},
		),
		modelOutcomes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartrate_forecast_model_runs_total",
				Help: "Forecast model runs by model and outcome",
			},
			[]string{"model", "outcome"},
		),
		archiveSubmits: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartrate_archive_submissions_total",
				Help: "Quote archive submissions by outcome",
			},
			[]string{"outcome"},
		),
		httpLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "smartrate_http_request_duration_seconds",
				Help:    "HTTP request latency by route pattern and status",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "status"},
		),
	}
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordFetch records one upstream call.
func (r *Recorder) RecordFetch(provider string, d time.Duration, err error) {
	if r == nil {
		return
	}
	r.upstreamFetches.WithLabelValues(provider, outcome(err)).Inc()
	r.upstreamLatency.WithLabelValues(provider).Observe(d.Seconds())
}

// RecordCacheLookup records a rate cache hit or miss.
func (r *Recorder) RecordCacheLookup(kind string, hit bool) {
	if r == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(kind, result).Inc()
}

// RecordModel records a forecast model fit+forecast outcome.
func (r *Recorder) RecordModel(model string, err error) {
	if r == nil {
		return
	}
	r.modelOutcomes.WithLabelValues(model, outcome(err)).Inc()
}

// RecordArchive records an archive submission outcome.
func (r *Recorder) RecordArchive(err error) {
	if r == nil {
		return
	}
	r.archiveSubmits.WithLabelValues(outcome(err)).Inc()
}

// RecordHTTP records the latency of a served request.
func (r *Recorder) RecordHTTP(route, status string, d time.Duration) {
	if r == nil {
		return
	}
	r.httpLatency.WithLabelValues(route, status).Observe(d.Seconds())
}
