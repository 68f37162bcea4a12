package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/deniskrds/tixplore-app/internal/models/domain"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveScrape(t *testing.T) {
	m := New()

	m.ObserveScrape(domain.ScrapeReport{
		Vendor:    "passo",
		Created:   2,
		Updated:   3,
		Failed:    1,
		StartedAt: time.Unix(1700000000, 0),
		Duration:  time.Second,
	})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.scrapedEvents.WithLabelValues("passo", "created")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.scrapedEvents.WithLabelValues("passo", "updated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.scrapedEvents.WithLabelValues("passo", "failed")))
	assert.Equal(t, 1700000001.0, testutil.ToFloat64(m.lastSuccessTS.WithLabelValues("passo")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveRequest(http.MethodGet, "/ping", http.StatusOK, 10*time.Millisecond)
	m.IncRateLimited()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `tixplore_http_requests_total{method="GET",route="/ping",status="200"} 1`)
	assert.Contains(t, rec.Body.String(), "tixplore_http_rate_limited_total 1")
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveScrape(domain.ScrapeReport{Vendor: "bubilet"})
		m.ObserveRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
		m.IncRateLimited()
	})
	assert.Nil(t, m.Registry())
}
