// Package metrics exposes engine and HTTP counters to Prometheus.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/seo-optimizer/contentscore/scoring"
)

const namespace = "seoscore"

// Recorder owns a private registry so tests and multiple servers never
// collide on the global one.
type Recorder struct {
	registry    *prometheus.Registry
	evaluations prometheus.Counter
	criteria    *prometheus.CounterVec
	score       prometheus.Histogram
	requests    *prometheus.CounterVec
}

// NewRecorder registers every collector, plus Go runtime and process
// collectors when runtime is set.
func NewRecorder(runtime bool) *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		evaluations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      "Number of full form evaluations.",
		}),
		criteria: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "criterion_status_total",
			Help:      "Criterion results by status.",
		}, []string{"status"}),
		score: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "overall_score",
			Help:      "Distribution of overall scores.",
			Buckets:   prometheus.LinearBuckets(10, 10, 10),
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
	}
	r.registry.MustRegister(r.evaluations, r.criteria, r.score, r.requests)
	if runtime {
		r.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return r
}

// CriterionEvaluated counts one criterion result
func (r *Recorder) CriterionEvaluated(_ scoring.Rule, res scoring.CriterionResult) {
	r.criteria.WithLabelValues(string(res.Status)).Inc()
}

// Evaluated counts one evaluation and observes its score
func (r *Recorder) Evaluated(res scoring.Result) {
	r.evaluations.Inc()
	r.score.Observe(float64(res.Overall.Score))
}

// ObserveRequest counts one HTTP request. route should be the route
// template, not the raw path.
func (r *Recorder) ObserveRequest(route string, code int) {
	if route == "" {
		route = "unmatched"
	}
	r.requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// Registry returns the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
