package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "voxconsole",
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, path and status.",
	}, []string{"method", "path", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "voxconsole",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})

	logBackendUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "voxconsole",
		Name:      "log_backend_up",
		Help:      "1 if the external log backend answered the last health probe.",
	})

	logQueryErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "voxconsole",
		Name:      "log_query_errors_total",
		Help:      "Failed queries against the external log backend.",
	})
)

// Middleware records request count and latency per route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		requestTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		requestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the prometheus scrape endpoint.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// SetLogBackendUp records the result of the log backend health probe.
func SetLogBackendUp(up bool) {
	if up {
		logBackendUp.Set(1)
	} else {
		logBackendUp.Set(0)
	}
}

// IncLogQueryErrors counts a failed log backend query.
func IncLogQueryErrors() {
	logQueryErrors.Inc()
}
