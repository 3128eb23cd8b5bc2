package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "foodifusion"

// Verification outcomes.
const (
	OutcomeApproved     = "approved"
	OutcomeRejected     = "rejected"
	OutcomeServiceError = "service_error"
	OutcomeInvalid      = "invalid_upload"
)

type Metrics struct {
	registry *prometheus.Registry

	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec

	Verifications       *prometheus.CounterVec
	VerificationLatency prometheus.Histogram
	VerificationsActive prometheus.Gauge

	OrdersPlaced   prometheus.Counter
	OrdersFailed   *prometheus.CounterVec
	EvidenceOrphan prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"handler", "status"}),
		LatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"handler"}),
		Verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payment",
			Name:      "verifications_total",
			Help:      "Payment screenshot verifications by outcome.",
		}, []string{"outcome"}),
		VerificationLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "payment",
			Name:      "verification_duration_seconds",
			Help:      "Time spent waiting on the vision model.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 45, 60},
		}),
		VerificationsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "payment",
			Name:      "verifications_in_flight",
			Help:      "Vision calls currently in progress.",
		}),
		OrdersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "order",
			Name:      "placed_total",
			Help:      "Orders committed.",
		}),
		OrdersFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "order",
			Name:      "failed_total",
			Help:      "Order placements that did not commit, by reason.",
		}, []string{"reason"}),
		EvidenceOrphan: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "order",
			Name:      "evidence_orphans_total",
			Help:      "Relocated payment screenshots left without an order.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Requests,
		m.LatencyMS,
		m.Verifications,
		m.VerificationLatency,
		m.VerificationsActive,
		m.OrdersPlaced,
		m.OrdersFailed,
		m.EvidenceOrphan,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware records one request count and latency sample per route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.Requests.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
		m.LatencyMS.WithLabelValues(route).Observe(float64(time.Since(start).Milliseconds()))
	}
}
