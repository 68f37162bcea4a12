package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/deniskrds/tixplore-app/internal/models/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tixplore"

// Metrics — коллекторы приложения на собственном реестре.
// Методы безопасны для nil, тогда метрики просто не пишутся.
type Metrics struct {
	registry *prometheus.Registry

	scrapedEvents *prometheus.CounterVec
	scrapeDur     *prometheus.SummaryVec
	lastSuccessTS *prometheus.GaugeVec
	reqTotal      *prometheus.CounterVec
	reqDur        *prometheus.HistogramVec
	rateLimited   prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.scrapedEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scraped_events_total",
		Help:      "Events processed by scraper runs by vendor and result",
	}, []string{"vendor", "result"})
	m.scrapeDur = prometheus.NewSummaryVec(prometheus.SummaryOpts{
		Namespace: namespace,
		Name:      "scrape_duration_seconds",
		Help:      "Duration of a full vendor scrape run",
	}, []string{"vendor"})
	m.lastSuccessTS = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "scrape_last_success_timestamp_seconds",
		Help:      "Unix timestamp of the last scrape run finished without a run-level error",
	}, []string{"vendor"})
	m.reqTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status",
	}, []string{"method", "route", "status"})
	m.reqDur = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
	m.rateLimited = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_rate_limited_total",
		Help:      "Requests rejected by the rate limiter",
	})

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.scrapedEvents, m.scrapeDur, m.lastSuccessTS,
		m.reqTotal, m.reqDur, m.rateLimited,
	)

	return m
}

func (m *Metrics) ObserveScrape(report domain.ScrapeReport) {
	if m == nil {
		return
	}

	m.scrapedEvents.WithLabelValues(report.Vendor, "created").Add(float64(report.Created))
	m.scrapedEvents.WithLabelValues(report.Vendor, "updated").Add(float64(report.Updated))
	m.scrapedEvents.WithLabelValues(report.Vendor, "failed").Add(float64(report.Failed))
	m.scrapeDur.WithLabelValues(report.Vendor).Observe(report.Duration.Seconds())

	if report.Err == nil {
		m.lastSuccessTS.WithLabelValues(report.Vendor).Set(float64(report.StartedAt.Add(report.Duration).Unix()))
	}
}

func (m *Metrics) ObserveRequest(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}

	m.reqTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.reqDur.WithLabelValues(method, route).Observe(dur.Seconds())
}

func (m *Metrics) IncRateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}

// Handler отдаёт метрики в формате prometheus.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}
