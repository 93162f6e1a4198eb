package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsolatedRegistries(t *testing.T) {
	a := New()
	b := New()

	a.RecordSubmit(1.5)
	assert.Equal(t, 1.0, testutil.ToFloat64(a.JobsSubmitted))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.JobsSubmitted))
}

func TestRecordCounters(t *testing.T) {
	m := New()
	m.RecordTransition("completed")
	m.RecordTransition("completed")
	m.RecordCompletion(90, 2)
	m.RecordGateDecision("transcription", "deny")
	m.RecordSweep(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.JobTransitions.WithLabelValues("completed")))
	assert.Equal(t, 90.0, testutil.ToFloat64(m.AudioSeconds))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ResultsFetched))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GateDecisions.WithLabelValues("transcription", "deny")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.JobsSwept))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.RecordHTTPRequest("GET", "/health", "200", 0.01)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `lexscribe_http_requests_total{endpoint="/health",method="GET",status_code="200"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
