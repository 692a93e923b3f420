package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stibap_http_requests_total",
			Help: "Total number of portal HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stibap_http_request_duration_seconds",
			Help:    "Duration of portal HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	GatewayRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stibap_gateway_requests_total",
			Help: "Backend calls issued by the gateway client, by outcome",
		},
		[]string{"endpoint", "method", "outcome"},
	)

	GatewayRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stibap_gateway_request_duration_seconds",
			Help:    "Duration of backend calls issued by the gateway client",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"endpoint", "method"},
	)

	StoreEventCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stibap_local_store_writes_total",
			Help: "Writes to locally persisted lists, by topic",
		},
		[]string{"topic"},
	)
)

var initOnce sync.Once

func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestCounter)
		prometheus.MustRegister(RequestDuration)
		prometheus.MustRegister(GatewayRequestCounter)
		prometheus.MustRegister(GatewayRequestDuration)
		prometheus.MustRegister(StoreEventCounter)
	})
}

// ObserveGateway endpoint 使用路由模板而不是实际路径，避免标签基数膨胀
func ObserveGateway(endpoint, method, outcome string, elapsed time.Duration) {
	GatewayRequestCounter.WithLabelValues(endpoint, method, outcome).Inc()
	GatewayRequestDuration.WithLabelValues(endpoint, method).Observe(elapsed.Seconds())
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
