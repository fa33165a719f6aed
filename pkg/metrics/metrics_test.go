package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveParse(t *testing.T) {
	m := New()

	m.ObserveParse(OutcomeSuccess, 120*time.Millisecond, 42)
	m.ObserveParse(OutcomeSuccess, 80*time.Millisecond, 3)
	m.ObserveParse(OutcomeWrongPassword, 5*time.Millisecond, 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.parseTotal.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.parseTotal.WithLabelValues(OutcomeWrongPassword)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.parseTotal.WithLabelValues(OutcomeMalformed)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.parseDuration))
}

func TestFilesPurged(t *testing.T) {
	m := New()
	m.FilesPurged(3)
	m.FilesPurged(2)

	assert.Equal(t, 5.0, testutil.ToFloat64(m.filesPurged))
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveParse(OutcomeSuccess, time.Millisecond, 1)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, string(body), `pesa_statement_parse_total{outcome="success"} 1`)
	assert.Contains(t, string(body), "pesa_statement_parse_duration_seconds_bucket")
}
