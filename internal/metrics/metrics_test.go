package metrics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_RegistersOnOwnRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.TicksTotal.Inc()
	m.PredictionsTotal.WithLabelValues("result").Add(2)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TicksTotal))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.PredictionsTotal.WithLabelValues("result")))

	// A second registry must not collide with the first.
	assert.NotPanics(t, func() { NewMetrics(prometheus.NewRegistry()) })
}

func TestHealth_Statuses(t *testing.T) {
	h := NewHealthStatus()
	now := time.Date(2025, 8, 15, 9, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return now }
	h.StartedAt = now.Add(-time.Minute)

	assert.Equal(t, "unhealthy", h.Report().Status)

	h.SetLoopRunning(true)
	assert.Equal(t, "degraded", h.Report().Status)

	h.SetDataLoaded(true)
	assert.Equal(t, "healthy", h.Report().Status)

	h.SetRedisEnabled(true)
	assert.Equal(t, "degraded", h.Report().Status)

	h.SetLastTickTime(now.Add(-2 * time.Second))
	assert.Equal(t, "2s", h.Report().TickAge)
}

func TestHealth_ServeHTTP(t *testing.T) {
	h := NewHealthStatus()
	h.SetLoopRunning(true)
	h.SetDataLoaded(true)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var rep Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	assert.Equal(t, "healthy", rep.Status)

	h.SetLoopRunning(false)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
