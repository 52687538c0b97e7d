// internal/monitoring/metrics.go

// Package monitoring exposes crawl metrics and a small status API.
package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments the crawl runner drives.
type Metrics struct {
	pagesVisited    *prometheus.CounterVec
	itemsCollected  *prometheus.CounterVec
	itemErrors      *prometheus.CounterVec
	itemsInvalid    *prometheus.CounterVec
	urlsEnqueued    *prometheus.CounterVec
	gateTimeouts    *prometheus.CounterVec
	extractDuration *prometheus.HistogramVec
	queueDepth      prometheus.Gauge
}

// NewMetrics registers the crawl metrics on the default registry.
func NewMetrics(namespace string) *Metrics {
	return NewMetricsOn(namespace, prometheus.DefaultRegisterer)
}

// NewMetricsOn registers the crawl metrics on a specific registry.
func NewMetricsOn(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "shelfscraper"
	}
	promauto := promauto.With(reg)

	return &Metrics{
		pagesVisited: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pages_visited_total",
				Help:      "Pages navigated and processed, by site and outcome",
			},
			[]string{"site", "outcome"},
		),
		itemsCollected: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "items_collected_total",
				Help:      "Product records assembled, by site",
			},
			[]string{"site"},
		),
		itemErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "item_errors_total",
				Help:      "Per-item extraction failures, by site",
			},
			[]string{"site"},
		),
		itemsInvalid: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "items_invalid_total",
				Help:      "Records failing one or more validity checks, by site",
			},
			[]string{"site"},
		),
		urlsEnqueued: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "urls_enqueued_total",
				Help:      "URLs accepted into the crawl frontier, by site",
			},
			[]string{"site"},
		),
		gateTimeouts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "gate_timeouts_total",
				Help:      "Product-page gates that timed out, by site",
			},
			[]string{"site"},
		),
		extractDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "extraction_duration_seconds",
				Help:      "Time spent assembling records from one page",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"site"},
		),
		queueDepth: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "queue_depth",
				Help:      "Pending requests in the crawl frontier",
			},
		),
	}
}

// PageVisited records a processed page. Outcome is "ok", "gate_timeout",
// or "error".
func (m *Metrics) PageVisited(site, outcome string) {
	m.pagesVisited.WithLabelValues(site, outcome).Inc()
}

// ItemCollected records one assembled product record.
func (m *Metrics) ItemCollected(site string) {
	m.itemsCollected.WithLabelValues(site).Inc()
}

// ItemError records one per-item extraction failure.
func (m *Metrics) ItemError(site string) {
	m.itemErrors.WithLabelValues(site).Inc()
}

// ItemInvalid records a record failing validation.
func (m *Metrics) ItemInvalid(site string) {
	m.itemsInvalid.WithLabelValues(site).Inc()
}

// URLEnqueued records a URL accepted into the frontier.
func (m *Metrics) URLEnqueued(site string) {
	m.urlsEnqueued.WithLabelValues(site).Inc()
}

// GateTimeout records a product-page gate timeout.
func (m *Metrics) GateTimeout(site string) {
	m.gateTimeouts.WithLabelValues(site).Inc()
}

// ExtractionDone records how long one page's extraction took.
func (m *Metrics) ExtractionDone(site string, d time.Duration) {
	m.extractDuration.WithLabelValues(site).Observe(d.Seconds())
}

// SetQueueDepth updates the frontier gauge.
func (m *Metrics) SetQueueDepth(depth int) {
	m.queueDepth.Set(float64(depth))
}
