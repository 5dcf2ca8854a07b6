package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counterValue sums a counter family, optionally filtered by one label.
func counterValue(t *testing.T, m *Metrics, name, label, value string) float64 {
	t.Helper()
	families, err := m.Registry.Gather()
	require.NoError(t, err)

	total := 0.0
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if label != "" && !hasLabel(metric.GetLabel(), label, value) {
				continue
			}
			total += metric.GetCounter().GetValue()
		}
	}
	return total
}

func hasLabel(pairs []*dto.LabelPair, name, value string) bool {
	for _, p := range pairs {
		if p.GetName() == name && p.GetValue() == value {
			return true
		}
	}
	return false
}

func TestObserveInterpretation(t *testing.T) {
	m := New()
	m.ObserveInterpretation("local", "create", "es", 3*time.Millisecond)
	m.ObserveInterpretation("local", "create", "es", time.Millisecond)
	m.ObserveInterpretation("remote", "query", "en", time.Second)

	assert.Equal(t, 3.0, counterValue(t, m, "echo_interpretations_total", "", ""))
	assert.Equal(t, 2.0, counterValue(t, m, "echo_interpretations_total", "engine", "local"))
}

func TestCounters(t *testing.T) {
	m := New()
	m.IncFallback()
	m.IncCommitted("goal")

	assert.Equal(t, 1.0, counterValue(t, m, "echo_engine_fallbacks_total", "", ""))
	assert.Equal(t, 1.0, counterValue(t, m, "echo_drafts_committed_total", "type", "goal"))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveInterpretation("local", "query", "en", time.Second)
		m.IncFallback()
		m.IncCommitted("transaction")
	})
}

func TestMiddlewareAndHandler(t *testing.T) {
	m := New()
	h := m.Middleware("/v1/interpret", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/v1/interpret", nil))
	assert.Equal(t, 1.0, counterValue(t, m, "echo_http_requests_total", "code", "400"))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "echo_http_requests_total")
}
