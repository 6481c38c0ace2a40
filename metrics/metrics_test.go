package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seo-optimizer/contentscore/scoring"
)

func TestRecorderObservesEngine(t *testing.T) {
	rec := NewRecorder(false)
	e, err := scoring.NewEngine(scoring.WithObserver(rec))
	require.NoError(t, err)

	e.Evaluate(scoring.FormFieldValues{})
	e.Evaluate(scoring.FormFieldValues{})

	assert.Equal(t, 2.0, testutil.ToFloat64(rec.evaluations))
	assert.Equal(t, 42.0, testutil.ToFloat64(rec.criteria.WithLabelValues("pending")))
	assert.Equal(t, 2.0, testutil.ToFloat64(rec.criteria.WithLabelValues("inactive")))
	assert.Equal(t, 1, testutil.CollectAndCount(rec.score))
}

func TestRecorderRequests(t *testing.T) {
	rec := NewRecorder(false)
	rec.ObserveRequest("/api/score", 200)
	rec.ObserveRequest("/api/score", 200)
	rec.ObserveRequest("", 404)

	assert.Equal(t, 2.0, testutil.ToFloat64(rec.requests.WithLabelValues("/api/score", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.requests.WithLabelValues("unmatched", "404")))
}

func TestHandler(t *testing.T) {
	rec := NewRecorder(true)
	rec.ObserveRequest("/api/health", 200)

	w := httptest.NewRecorder()
	rec.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, w.Code)
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `seoscore_http_requests_total{code="200",route="/api/health"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
