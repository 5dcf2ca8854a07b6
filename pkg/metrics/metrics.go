// Package metrics exposes Prometheus collectors for the assistant service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "echo"

// Metrics groups the collectors registered on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	Interpretations   *prometheus.CounterVec
	InterpretDuration *prometheus.HistogramVec
	EngineFallbacks   prometheus.Counter
	DraftsCommitted   *prometheus.CounterVec
	HTTPRequests      *prometheus.CounterVec
}

// New creates and registers all collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		Interpretations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "interpretations_total",
			Help:      "Interpreted utterances by engine, intent and language.",
		}, []string{"engine", "intent", "lang"}),
		InterpretDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "interpret_duration_seconds",
			Help:      "Time spent interpreting one utterance.",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 2.5, 5, 10},
		}, []string{"engine"}),
		EngineFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "engine_fallbacks_total",
			Help:      "Remote interpretations that fell back to the local engine.",
		}),
		DraftsCommitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "drafts_committed_total",
			Help:      "Drafts persisted to the ledger by type.",
		}, []string{"type"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Interpretations,
		m.InterpretDuration,
		m.EngineFallbacks,
		m.DraftsCommitted,
		m.HTTPRequests,
	)
	return m
}

// ObserveInterpretation records one finished interpretation.
func (m *Metrics) ObserveInterpretation(engine, intent, lang string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Interpretations.WithLabelValues(engine, intent, lang).Inc()
	m.InterpretDuration.WithLabelValues(engine).Observe(elapsed.Seconds())
}

// IncFallback counts a fallback to the local engine.
func (m *Metrics) IncFallback() {
	if m == nil {
		return
	}
	m.EngineFallbacks.Inc()
}

// IncCommitted counts a committed draft.
func (m *Metrics) IncCommitted(draftType string) {
	if m == nil {
		return
	}
	m.DraftsCommitted.WithLabelValues(draftType).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware counts requests under the given route label.
func (m *Metrics) Middleware(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		if m != nil {
			m.HTTPRequests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		}
	})
}
