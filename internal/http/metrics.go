package httpserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
)

// Metrics holds the request collectors. Each router gets its own registry so
// tests can build several routers in one process.
type Metrics struct {
	Registry *prometheus.Registry
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	denied   *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crm",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "crm",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		denied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crm",
			Name:      "access_denied_total",
			Help:      "Requests rejected with 403, by route.",
		}, []string{"route"}),
	}
	m.Registry.MustRegister(
		m.requests,
		m.latency,
		m.denied,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Middleware records every request and writes one access log line.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)

		m.requests.WithLabelValues(route, c.Request.Method, strconv.Itoa(status)).Inc()
		m.latency.WithLabelValues(route, c.Request.Method).Observe(elapsed.Seconds())
		if status == http.StatusForbidden {
			m.denied.WithLabelValues(route).Inc()
		}

		evt := log.Info()
		if status >= 500 {
			evt = log.Error()
		}
		evt.Str("method", c.Request.Method).
			Str("route", route).
			Int("status", status).
			Dur("elapsed", elapsed).
			Str("ip", c.ClientIP()).
			Msg("request")
	}
}
