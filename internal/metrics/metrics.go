package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "farmmarket"

// Metrics groups the HTTP and checkout collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	Requests          *prometheus.CounterVec
	LatencyMS         *prometheus.HistogramVec
	OrdersPlaced      prometheus.Counter
	OrdersFailed      *prometheus.CounterVec
	OrderLines        prometheus.Counter
	UnattributedLines prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"handler", "status"}),
		LatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"handler"}),
		OrdersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "orders_placed_total",
			Help:      "Orders committed.",
		}),
		OrdersFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "orders_failed_total",
			Help:      "Checkout attempts that did not commit, by reason.",
		}, []string{"reason"}),
		OrderLines: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "order_lines_total",
			Help:      "Order lines committed.",
		}),
		UnattributedLines: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "unattributed_lines_total",
			Help:      "Order lines committed without a seller because the product was gone.",
		}),
	}

	reg.MustRegister(m.Requests, m.LatencyMS, m.OrdersPlaced, m.OrdersFailed, m.OrderLines, m.UnattributedLines)
	return m
}

func (m *Metrics) OrderPlaced(lines, unattributed int) {
	if m == nil {
		return
	}
	m.OrdersPlaced.Inc()
	m.OrderLines.Add(float64(lines))
	m.UnattributedLines.Add(float64(unattributed))
}

func (m *Metrics) OrderFailed(reason string) {
	if m == nil {
		return
	}
	m.OrdersFailed.WithLabelValues(reason).Inc()
}

// Middleware records request counts and latency per route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		handler := c.FullPath()
		if handler == "" {
			handler = "unmatched"
		}
		m.Requests.WithLabelValues(handler, strconv.Itoa(c.Writer.Status())).Inc()
		m.LatencyMS.WithLabelValues(handler).Observe(float64(time.Since(start).Milliseconds()))
	}
}

func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
